package http

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes mounts the account routes. The router must already run the
// Sessions middleware; requireLogin guards everything but register and login.
func RegisterRoutes(router gin.IRouter, handler *Handler, requireLogin gin.HandlerFunc) {
	router.POST("/register", handler.Register)
	router.POST("/login", handler.Login)

	authed := router.Group("", requireLogin)
	authed.POST("/logout", handler.Logout)
	authed.GET("/me", handler.Me)
	authed.GET("/accounts", handler.ListAccounts)
	authed.DELETE("/accounts/:id", handler.DeleteAccount)
}
