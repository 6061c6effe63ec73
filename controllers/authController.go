package controllers

import (
	"RxClinic/handlers"

	"github.com/gin-gonic/gin"
)

type AuthController struct {
	Handler *handlers.AuthHandler
}

// NewAuthController creates a new AuthController with the given AuthHandler
func NewAuthController(authHandler *handlers.AuthHandler) *AuthController {
	return &AuthController{
		Handler: authHandler,
	}
}

// RegisterRoutes mounts the authentication routes. auth guards the routes
// that need a logged in user.
func (ac *AuthController) RegisterRoutes(router gin.IRouter, auth gin.HandlerFunc) {
	group := router.Group("/auth")

	// Public routes: No authentication required
	group.POST("/register", ac.Handler.Register)
	group.POST("/login", ac.Handler.Login)
	group.POST("/refresh-token", ac.Handler.RefreshToken)
	group.POST("/send-reset-code", ac.Handler.SendResetCode)
	group.POST("/change-password", ac.Handler.ChangePassword)
	group.POST("/logoff", ac.Handler.Logoff)

	// Protected routes: Requires a valid token
	group.GET("/user/profile", auth, ac.Handler.GetUserProfile)
}
