package http

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes mounts the catalog routes; guards run before every handler.
func RegisterRoutes(router gin.IRouter, handler *Handler, guards ...gin.HandlerFunc) {
	group := router.Group("/products", guards...)
	group.GET("", handler.ListProducts)
	group.POST("", handler.CreateProduct)
	group.DELETE("/:id", handler.DeleteProduct)
}
