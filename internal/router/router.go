package router

import (
	"updoot/internal/handlers"
	"updoot/internal/middleware"

	"github.com/gin-gonic/gin"
)

// RegisterRoutes wires the API surface onto the engine.
func RegisterRoutes(r *gin.Engine, auth *handlers.AuthHandler, posts *handlers.PostHandler, votes *handlers.VoteHandler) {
	// Public routes
	r.POST("/signup", auth.Register)
	r.POST("/login", auth.Login)
	r.POST("/logout", auth.Logout)
	r.GET("/me", auth.Me)
	r.POST("/forgot-password", auth.ForgotPassword)
	r.POST("/change-password", auth.ChangePassword)

	r.GET("/posts", posts.List)
	r.GET("/posts/:id", posts.Detail)

	// Protected routes
	authorized := r.Group("/")
	authorized.Use(middleware.AuthRequired())
	{
		authorized.POST("/posts", posts.Create)
		authorized.DELETE("/posts/:id", posts.Delete)
		authorized.POST("/posts/:id/vote", votes.Vote)
	}
}
