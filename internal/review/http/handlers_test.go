package http

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/planmark/review-backend/internal/auth"
	"github.com/planmark/review-backend/internal/files"
	"github.com/planmark/review-backend/internal/review/domain"
	"github.com/planmark/review-backend/internal/review/repository"
	"github.com/planmark/review-backend/internal/review/session"
	"github.com/planmark/review-backend/internal/review/store"
)

func newTestRouter(t *testing.T) (*gin.Engine, *store.Store) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	st := store.New(repository.NewMemory())

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	sessions := session.NewManager(client)

	fs, err := files.NewLocalStore(t.TempDir())
	require.NoError(t, err)

	r := gin.New()
	api := r.Group("/api/v1")
	api.Use(func(c *gin.Context) {
		c.Set(auth.KeyReviewerUID, "uid-test")
		c.Set(auth.KeyReviewerName, "Test Reviewer")
		c.Next()
	})
	New(st, sessions, fs).Register(api)
	return r, st
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body any) (*httptest.ResponseRecorder, map[string]json.RawMessage) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	out := map[string]json.RawMessage{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return w, out
}

func decode[T any](t *testing.T, raw json.RawMessage) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(raw, &v))
	return v
}

func seedVersionedDoc(t *testing.T, st *store.Store) (string, string) {
	t.Helper()
	ctx := context.Background()
	doc, err := st.CreateDocument(ctx, "Floor Plan", "FP-1", store.Author{UID: "uid-test", Name: "Test Reviewer"})
	require.NoError(t, err)
	result, err := st.CreateVersion(ctx, doc.PublicID, "file:///plans/v1.pdf", 3)
	require.NoError(t, err)
	return doc.PublicID, result.Version.ID
}

func TestCreateDocumentEndpoint(t *testing.T) {
	r, _ := newTestRouter(t)

	w, body := doJSON(t, r, http.MethodPost, "/api/v1/documents",
		gin.H{"name": "Floor Plan", "external_code": "FP-1"})
	require.Equal(t, http.StatusCreated, w.Code)

	doc := decode[domain.Document](t, body["document"])
	assert.NotEmpty(t, doc.PublicID)
	assert.Equal(t, "Floor Plan", doc.Name)
	assert.Equal(t, "uid-test", doc.AuthorUID)

	t.Run("blank name rejected", func(t *testing.T) {
		w, _ := doJSON(t, r, http.MethodPost, "/api/v1/documents", gin.H{"name": "  "})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestGetDocument_NotFound(t *testing.T) {
	r, _ := newTestRouter(t)

	w, _ := doJSON(t, r, http.MethodGet, "/api/v1/documents/doc-missing", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestVersionEndpoints(t *testing.T) {
	r, st := newTestRouter(t)
	docID, v1 := seedVersionedDoc(t, st)

	_, err := st.CreateAnnotation(context.Background(), v1, 1, 50, 50, "open issue",
		domain.CategoryError, store.Author{UID: "uid-test", Name: "Test Reviewer"})
	require.NoError(t, err)

	w, body := doJSON(t, r, http.MethodPost, "/api/v1/documents/"+docID+"/versions",
		gin.H{"page_resource": "file:///plans/v2.pdf", "page_count": 3})
	require.Equal(t, http.StatusCreated, w.Code)
	v2 := decode[domain.Version](t, body["version"])
	assert.Equal(t, 2, v2.VersionNumber)
	carryover := decode[[]store.CarryoverItem](t, body["carryover"])
	require.Len(t, carryover, 1)
	assert.Empty(t, carryover[0].Error)

	t.Run("current points at the newest", func(t *testing.T) {
		w, body := doJSON(t, r, http.MethodGet, "/api/v1/documents/"+docID+"/versions/current", nil)
		require.Equal(t, http.StatusOK, w.Code)
		cur := decode[domain.Version](t, body["version"])
		assert.Equal(t, v2.ID, cur.ID)
	})

	t.Run("deleting the only remaining version conflicts", func(t *testing.T) {
		w, _ := doJSON(t, r, http.MethodDelete, "/api/v1/versions/"+v1, nil)
		require.Equal(t, http.StatusOK, w.Code)
		w, _ = doJSON(t, r, http.MethodDelete, "/api/v1/versions/"+v2.ID, nil)
		assert.Equal(t, http.StatusConflict, w.Code)
	})
}

func TestCreateVersion_MultipartUpload(t *testing.T) {
	r, st := newTestRouter(t)
	docID, _ := seedVersionedDoc(t, st)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", "rev2.pdf")
	require.NoError(t, err)
	_, err = part.Write([]byte("%PDF-1.7 stub"))
	require.NoError(t, err)
	require.NoError(t, mw.WriteField("page_count", "2"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/documents/"+docID+"/versions", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusCreated, w.Code)

	out := map[string]json.RawMessage{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	v := decode[domain.Version](t, out["version"])
	assert.Equal(t, 2, v.VersionNumber)
	assert.Contains(t, v.PageResource, "file://")
}

func TestAnnotationEndpoints(t *testing.T) {
	r, st := newTestRouter(t)
	_, versionID := seedVersionedDoc(t, st)

	w, body := doJSON(t, r, http.MethodPost, "/api/v1/versions/"+versionID+"/annotations",
		gin.H{"page": 1, "x": 42.5, "y": 17.0, "body": "missing dimension", "category": "error"})
	require.Equal(t, http.StatusCreated, w.Code)
	a := decode[domain.Annotation](t, body["annotation"])
	assert.Equal(t, domain.StatusOpen, a.Status)

	t.Run("out-of-range position is a bad request", func(t *testing.T) {
		w, _ := doJSON(t, r, http.MethodPost, "/api/v1/versions/"+versionID+"/annotations",
			gin.H{"page": 1, "x": 120.0, "y": 10.0, "body": "text"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("resolve and reopen", func(t *testing.T) {
		w, body := doJSON(t, r, http.MethodPost, "/api/v1/annotations/"+a.ID+"/resolve", nil)
		require.Equal(t, http.StatusOK, w.Code)
		resolved := decode[domain.Annotation](t, body["annotation"])
		assert.Equal(t, domain.StatusResolved, resolved.Status)
		assert.Equal(t, "uid-test", resolved.ResolvedBy)

		w, body = doJSON(t, r, http.MethodPost, "/api/v1/annotations/"+a.ID+"/reopen", nil)
		require.Equal(t, http.StatusOK, w.Code)
		reopened := decode[domain.Annotation](t, body["annotation"])
		assert.Equal(t, domain.StatusOpen, reopened.Status)
		assert.Empty(t, reopened.ResolvedBy)
	})

	t.Run("edit keeps position", func(t *testing.T) {
		w, body := doJSON(t, r, http.MethodPatch, "/api/v1/annotations/"+a.ID,
			gin.H{"body": "updated", "category": "suggestion"})
		require.Equal(t, http.StatusOK, w.Code)
		edited := decode[domain.Annotation](t, body["annotation"])
		assert.Equal(t, "updated", edited.Body)
		assert.Equal(t, a.X, edited.X)
		assert.Equal(t, a.Y, edited.Y)
	})

	t.Run("delete twice stays ok", func(t *testing.T) {
		w, _ := doJSON(t, r, http.MethodDelete, "/api/v1/annotations/"+a.ID, nil)
		assert.Equal(t, http.StatusOK, w.Code)
		w, _ = doJSON(t, r, http.MethodDelete, "/api/v1/annotations/"+a.ID, nil)
		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestDrawingEndpoints(t *testing.T) {
	r, st := newTestRouter(t)
	_, versionID := seedVersionedDoc(t, st)

	w, body := doJSON(t, r, http.MethodPost, "/api/v1/versions/"+versionID+"/drawings",
		gin.H{
			"page":       1,
			"shape_type": "rectangle",
			"shape_data": gin.H{"x": 10, "y": 10, "w": 20, "h": 10},
			"color":      "#ff0000",
		})
	require.Equal(t, http.StatusCreated, w.Code)
	d := decode[domain.Drawing](t, body["drawing"])
	require.NotEmpty(t, d.ID)

	t.Run("unknown shape type is a bad request", func(t *testing.T) {
		w, _ := doJSON(t, r, http.MethodPost, "/api/v1/versions/"+versionID+"/drawings",
			gin.H{"page": 1, "shape_type": "triangle", "shape_data": gin.H{}})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("restore rejects off-page geometry", func(t *testing.T) {
		bad := d
		bad.Shape.X = 250
		w, _ := doJSON(t, r, http.MethodPost, "/api/v1/drawings/restore", bad)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("delete returns the record for undo", func(t *testing.T) {
		w, body := doJSON(t, r, http.MethodDelete, "/api/v1/drawings/"+d.ID, nil)
		require.Equal(t, http.StatusOK, w.Code)
		deleted := decode[domain.Drawing](t, body["drawing"])
		assert.Equal(t, d.ID, deleted.ID)

		w, body = doJSON(t, r, http.MethodPost, "/api/v1/drawings/restore", deleted)
		require.Equal(t, http.StatusCreated, w.Code)
		restored := decode[domain.Drawing](t, body["drawing"])
		assert.NotEqual(t, d.ID, restored.ID)

		list, err := st.ListDrawings(context.Background(), versionID, 1)
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, restored.ID, list[0].ID)
	})
}

func TestSessionEndpoints(t *testing.T) {
	r, st := newTestRouter(t)
	docID, _ := seedVersionedDoc(t, st)

	w, body := doJSON(t, r, http.MethodPost, "/api/v1/sessions", nil)
	require.Equal(t, http.StatusCreated, w.Code)
	st0 := decode[session.State](t, body["session"])
	require.NotEmpty(t, st0.SessionID)
	assert.Equal(t, "uid-test", st0.UserUID)

	t.Run("opening an unknown document is a 404", func(t *testing.T) {
		w, _ := doJSON(t, r, http.MethodPost, "/api/v1/sessions/"+st0.SessionID+"/open",
			gin.H{"document_id": "doc-missing"})
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	w, body = doJSON(t, r, http.MethodPost, "/api/v1/sessions/"+st0.SessionID+"/open",
		gin.H{"document_id": docID})
	require.Equal(t, http.StatusOK, w.Code)
	opened := decode[session.State](t, body["session"])
	assert.Equal(t, docID, opened.ActiveDoc)

	t.Run("activating a closed tab conflicts", func(t *testing.T) {
		w, _ := doJSON(t, r, http.MethodPost, "/api/v1/sessions/"+st0.SessionID+"/activate",
			gin.H{"document_id": "doc-other"})
		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("remember page round-trips", func(t *testing.T) {
		w, _ := doJSON(t, r, http.MethodPost, "/api/v1/sessions/"+st0.SessionID+"/page",
			gin.H{"document_id": docID, "page": 3})
		require.Equal(t, http.StatusOK, w.Code)

		w, body := doJSON(t, r, http.MethodGet, "/api/v1/sessions/"+st0.SessionID, nil)
		require.Equal(t, http.StatusOK, w.Code)
		got := decode[session.State](t, body["session"])
		assert.Equal(t, 3, got.LastPage[docID])
	})

	t.Run("end then get is a 404", func(t *testing.T) {
		w, _ := doJSON(t, r, http.MethodDelete, "/api/v1/sessions/"+st0.SessionID, nil)
		require.Equal(t, http.StatusOK, w.Code)
		w, _ = doJSON(t, r, http.MethodGet, "/api/v1/sessions/"+st0.SessionID, nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}
