package http

import (
	"errors"
	nethttp "net/http"

	"github.com/gin-gonic/gin"

	"github.com/planmark/review-backend/internal/auth"
	"github.com/planmark/review-backend/internal/files"
	"github.com/planmark/review-backend/internal/review/domain"
	"github.com/planmark/review-backend/internal/review/session"
	"github.com/planmark/review-backend/internal/review/store"
)

// Handler bundles the dependencies for review HTTP endpoints.
type Handler struct {
	store    *store.Store
	sessions *session.Manager
	files    files.Store
}

func New(st *store.Store, sessions *session.Manager, fs files.Store) *Handler {
	return &Handler{store: st, sessions: sessions, files: fs}
}

func reviewer(c *gin.Context) store.Author {
	return store.Author{
		UID:  c.GetString(auth.KeyReviewerUID),
		Name: c.GetString(auth.KeyReviewerName),
	}
}

// fail maps the error taxonomy onto HTTP statuses: bad input 400, missing
// records 404, guarded deletes 409, collaborator failures 502.
func fail(c *gin.Context, err error) {
	status := nethttp.StatusInternalServerError
	switch {
	case domain.IsValidation(err):
		status = nethttp.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound), errors.Is(err, session.ErrSessionNotFound):
		status = nethttp.StatusNotFound
	case errors.Is(err, domain.ErrLastVersion), errors.Is(err, session.ErrNotOpen):
		status = nethttp.StatusConflict
	case domain.IsPersistence(err):
		status = nethttp.StatusBadGateway
	}
	c.JSON(status, gin.H{"ok": false, "error": err.Error()})
}
