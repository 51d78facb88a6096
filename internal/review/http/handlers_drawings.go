package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/planmark/review-backend/internal/review/domain"
)

func (h *Handler) listDrawings(c *gin.Context) {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid page"})
		return
	}

	drawings, err := h.store.ListDrawings(c.Request.Context(), c.Param("id"), page)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "drawings": drawings})
}

type createDrawingReq struct {
	Page        int              `json:"page"`
	ShapeType   string           `json:"shape_type"`
	Shape       domain.ShapeData `json:"shape_data"`
	Color       string           `json:"color"`
	StrokeWidth float64          `json:"stroke_width"`
}

func (h *Handler) createDrawing(c *gin.Context) {
	var req createDrawingReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid body"})
		return
	}

	d, err := h.store.CreateDrawing(c.Request.Context(), c.Param("id"),
		req.Page, req.ShapeType, req.Shape, req.Color, req.StrokeWidth, reviewer(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"ok": true, "drawing": d})
}

// deleteDrawing returns the deleted record so the client can offer undo.
func (h *Handler) deleteDrawing(c *gin.Context) {
	deleted, err := h.store.DeleteDrawing(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	if deleted == nil {
		// already gone; idempotent
		c.JSON(http.StatusOK, gin.H{"ok": true})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "drawing": deleted})
}

// restoreDrawing re-inserts a previously deleted drawing under a new id,
// appended as the newest item on its page.
func (h *Handler) restoreDrawing(c *gin.Context) {
	var req domain.Drawing
	if err := c.ShouldBindJSON(&req); err != nil || req.VersionID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid body"})
		return
	}

	restored, err := h.store.RestoreDrawing(c.Request.Context(), &req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"ok": true, "drawing": restored})
}
