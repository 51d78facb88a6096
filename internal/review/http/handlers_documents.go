package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

type createDocumentReq struct {
	Name         string `json:"name"`
	ExternalCode string `json:"external_code"`
}

func (h *Handler) createDocument(c *gin.Context) {
	var req createDocumentReq
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Name) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid body"})
		return
	}

	doc, err := h.store.CreateDocument(c.Request.Context(), req.Name, req.ExternalCode, reviewer(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"ok": true, "document": doc})
}

func (h *Handler) listDocuments(c *gin.Context) {
	docs, err := h.store.ListDocuments(c.Request.Context(), c.Query("author"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "documents": docs})
}

func (h *Handler) getDocument(c *gin.Context) {
	doc, err := h.store.GetDocument(c.Request.Context(), c.Param("public_id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "document": doc})
}

type renameDocumentReq struct {
	Name string `json:"name"`
}

func (h *Handler) renameDocument(c *gin.Context) {
	var req renameDocumentReq
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Name) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid body"})
		return
	}

	doc, err := h.store.RenameDocument(c.Request.Context(), c.Param("public_id"), req.Name)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "document": doc})
}

func (h *Handler) deleteDocument(c *gin.Context) {
	ok, err := h.store.DeleteDocument(c.Request.Context(), c.Param("public_id"))
	if err != nil {
		fail(c, err)
		return
	}
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"ok": false, "error": "document not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}
