// Package router binds the document-engine HTTP resource shape (§6) onto a
// gin engine, delegating every handler to the pkg/internal/handle package.
package router

import (
	"github.com/gin-gonic/gin"

	"github.com/foliva/docengine/pkg/internal/handle"
)

// Register binds every route in §6's resource table under the engine's
// root group.
func Register(engine *gin.Engine, h *handle.Handlers) {
	api := engine.Group("/api")

	collections := api.Group("/collections")
	{
		collections.GET("", h.ListCollections)
		collections.POST("", h.CreateCollection)
		collections.GET("/:c", h.ListDocuments)
		collections.POST("/:c", h.InsertDocument)
		collections.PUT("/:c", h.ReplaceDocument)
		collections.POST("/:c/search", h.SearchDocuments)
		collections.GET("/:c/:id", h.GetDocument)
	}

	api.POST("/events", h.PostEvent)
	api.GET("/recoverables/:c", h.Recoverables)
	api.POST("/maintenance/:c/rebuild-grants", h.RebuildGrants)
}
