package http

import "github.com/gin-gonic/gin"

// Register attaches all review routes to the given router group.
func (h *Handler) Register(rg *gin.RouterGroup) {
	docs := rg.Group("/documents")
	docs.POST("", h.createDocument)
	docs.GET("", h.listDocuments)
	docs.GET("/:public_id", h.getDocument)
	docs.PATCH("/:public_id", h.renameDocument)
	docs.DELETE("/:public_id", h.deleteDocument)
	docs.GET("/:public_id/versions", h.listVersions)
	docs.POST("/:public_id/versions", h.createVersion)
	docs.GET("/:public_id/versions/current", h.currentVersion)

	versions := rg.Group("/versions")
	versions.DELETE("/:id", h.deleteVersion)
	versions.GET("/:id/annotations", h.listAnnotations)
	versions.POST("/:id/annotations", h.createAnnotation)
	versions.GET("/:id/drawings", h.listDrawings)
	versions.POST("/:id/drawings", h.createDrawing)

	annotations := rg.Group("/annotations")
	annotations.PATCH("/:id", h.editAnnotation)
	annotations.POST("/:id/resolve", h.resolveAnnotation)
	annotations.POST("/:id/reopen", h.reopenAnnotation)
	annotations.DELETE("/:id", h.deleteAnnotation)

	drawings := rg.Group("/drawings")
	drawings.DELETE("/:id", h.deleteDrawing)
	drawings.POST("/restore", h.restoreDrawing)

	sessions := rg.Group("/sessions")
	sessions.POST("", h.startSession)
	sessions.GET("/:id", h.getSession)
	sessions.POST("/:id/open", h.openInSession)
	sessions.POST("/:id/activate", h.activateInSession)
	sessions.POST("/:id/close", h.closeInSession)
	sessions.POST("/:id/page", h.rememberPage)
	sessions.DELETE("/:id", h.endSession)
}
