package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/planmark/review-backend/internal/auth"
)

func (h *Handler) startSession(c *gin.Context) {
	st, err := h.sessions.Start(c.Request.Context(), c.GetString(auth.KeyReviewerUID))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"ok": true, "session": st})
}

func (h *Handler) getSession(c *gin.Context) {
	st, err := h.sessions.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "session": st})
}

type sessionDocReq struct {
	DocumentID string `json:"document_id"`
	Page       int    `json:"page"`
}

func (h *Handler) openInSession(c *gin.Context) {
	var req sessionDocReq
	if err := c.ShouldBindJSON(&req); err != nil || req.DocumentID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid body"})
		return
	}
	// opening a deleted document is a 404, not a silent tab
	if _, err := h.store.GetDocument(c.Request.Context(), req.DocumentID); err != nil {
		fail(c, err)
		return
	}

	st, err := h.sessions.Open(c.Request.Context(), c.Param("id"), req.DocumentID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "session": st})
}

func (h *Handler) activateInSession(c *gin.Context) {
	var req sessionDocReq
	if err := c.ShouldBindJSON(&req); err != nil || req.DocumentID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid body"})
		return
	}

	st, err := h.sessions.Activate(c.Request.Context(), c.Param("id"), req.DocumentID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "session": st})
}

func (h *Handler) closeInSession(c *gin.Context) {
	var req sessionDocReq
	if err := c.ShouldBindJSON(&req); err != nil || req.DocumentID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid body"})
		return
	}

	st, err := h.sessions.Close(c.Request.Context(), c.Param("id"), req.DocumentID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "session": st})
}

func (h *Handler) rememberPage(c *gin.Context) {
	var req sessionDocReq
	if err := c.ShouldBindJSON(&req); err != nil || req.DocumentID == "" || req.Page < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid body"})
		return
	}

	if err := h.sessions.RememberPage(c.Request.Context(), c.Param("id"), req.DocumentID, req.Page); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *Handler) endSession(c *gin.Context) {
	if err := h.sessions.End(c.Request.Context(), c.Param("id")); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}
