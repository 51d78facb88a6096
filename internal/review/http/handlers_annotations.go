package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (h *Handler) listAnnotations(c *gin.Context) {
	annotations, err := h.store.ListAnnotations(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "annotations": annotations})
}

type createAnnotationReq struct {
	Page     int     `json:"page"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Body     string  `json:"body"`
	Category string  `json:"category"`
}

func (h *Handler) createAnnotation(c *gin.Context) {
	var req createAnnotationReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid body"})
		return
	}

	a, err := h.store.CreateAnnotation(c.Request.Context(), c.Param("id"),
		req.Page, req.X, req.Y, req.Body, req.Category, reviewer(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"ok": true, "annotation": a})
}

type editAnnotationReq struct {
	Body     string `json:"body"`
	Category string `json:"category"`
}

func (h *Handler) editAnnotation(c *gin.Context) {
	var req editAnnotationReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid body"})
		return
	}

	a, err := h.store.EditAnnotation(c.Request.Context(), c.Param("id"), req.Body, req.Category)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "annotation": a})
}

func (h *Handler) resolveAnnotation(c *gin.Context) {
	a, err := h.store.ResolveAnnotation(c.Request.Context(), c.Param("id"), reviewer(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "annotation": a})
}

func (h *Handler) reopenAnnotation(c *gin.Context) {
	a, err := h.store.ReopenAnnotation(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "annotation": a})
}

func (h *Handler) deleteAnnotation(c *gin.Context) {
	if err := h.store.DeleteAnnotation(c.Request.Context(), c.Param("id")); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}
