package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

func (h *Handler) listVersions(c *gin.Context) {
	versions, err := h.store.ListVersions(c.Request.Context(), c.Param("public_id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "versions": versions})
}

type createVersionReq struct {
	PageResource string `json:"page_resource"`
	PageCount    int    `json:"page_count"`
}

// createVersion accepts either a multipart upload (field "file" plus
// "page_count") which goes through the file store first, or a JSON body
// carrying an already-durable page_resource URI. The response includes the
// carryover report so the client can warn about partially copied issues.
func (h *Handler) createVersion(c *gin.Context) {
	documentID := c.Param("public_id")
	ctx := c.Request.Context()

	var req createVersionReq
	if file, err := c.FormFile("file"); err == nil {
		req.PageCount, _ = strconv.Atoi(c.PostForm("page_count"))
		src, err := file.Open()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "unreadable upload"})
			return
		}
		defer src.Close()

		uri, err := h.files.Put(ctx, documentID, file.Filename, file.Header.Get("Content-Type"), src)
		if err != nil {
			c.JSON(http.StatusBadGateway, gin.H{"ok": false, "error": err.Error()})
			return
		}
		req.PageResource = uri
	} else if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid body"})
		return
	}

	result, err := h.store.CreateVersion(ctx, documentID, req.PageResource, req.PageCount)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"ok": true, "version": result.Version, "carryover": result.Carryover})
}

func (h *Handler) currentVersion(c *gin.Context) {
	v, err := h.store.CurrentVersion(c.Request.Context(), c.Param("public_id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "version": v})
}

func (h *Handler) deleteVersion(c *gin.Context) {
	if err := h.store.DeleteVersion(c.Request.Context(), c.Param("id")); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}
