package routes

import (
	"github.com/gin-gonic/gin"

	"auraleen/internal/handlers"
	"auraleen/internal/middleware"
)

func SetupRoutes(
	r *gin.Engine,
	authHandler *handlers.AuthHandler,
	accountHandler *handlers.AccountHandler,
	orderHandler *handlers.OrderHandler,
) *gin.Engine {

	// ---- public
	auth := r.Group("/auth")
	{
		auth.POST("/signup", authHandler.Signup)
		auth.POST("/resend-otp", authHandler.ResendOTP)
		auth.POST("/verify-otp", authHandler.VerifyOTP)
		auth.POST("/login", authHandler.Login)
		auth.POST("/refresh", authHandler.RefreshToken)
		auth.POST("/forgot-password", authHandler.ForgotPassword)
		auth.POST("/reset-password", authHandler.ResetPassword)
	}

	// ---- protected
	account := r.Group("/account", middleware.AuthMiddleware())
	{
		account.GET("/profile", accountHandler.GetProfile)
		account.PUT("/profile", accountHandler.UpdateProfile)
	}

	orders := r.Group("/orders", middleware.AuthMiddleware())
	{
		orders.POST("", orderHandler.Create)
		orders.GET("", orderHandler.List)
		orders.GET("/:id/invoice", orderHandler.Invoice)
	}

	return r
}
