package app

import (
	"fmt"
	"log"

	"auraleen/internal/config"
	"auraleen/internal/db"
	"auraleen/internal/handlers"
	"auraleen/internal/middleware"
	"auraleen/internal/pdf"
	"auraleen/internal/repositories"
	"auraleen/internal/routes"
	"auraleen/internal/services"

	"github.com/gin-gonic/gin"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "auraleen/docs"
)

func Run() {
	cfg := config.LoadConfig()

	if cfg.App.JWTSecret != "" {
		middleware.JWTKey = []byte(cfg.App.JWTSecret)
	} else if cfg.IsProduction() {
		log.Fatal("JWT_SECRET is required in production")
	}

	// === DB ===
	database, err := db.Connect(cfg.Database.DSN)
	if err != nil {
		log.Fatal("Failed to connect to the database: ", err)
	}
	defer func() {
		if err := database.Close(); err != nil {
			log.Printf("Failed to close the database: %v", err)
		}
	}()

	// === Repos ===
	userRepo := repositories.NewUserRepository(database)
	orderRepo := repositories.NewOrderRepository(database)

	// === Services ===
	authService := services.NewAuthService()
	emailService := services.NewEmailService(
		cfg.Email.SMTPHost,
		cfg.Email.SMTPPort,
		cfg.Email.SMTPUser,
		cfg.Email.SMTPPassword,
		cfg.Email.FromEmail,
	)
	accountService := services.NewAccountService(userRepo, emailService, authService, cfg.IsProduction())
	resetService := services.NewPasswordResetService(userRepo, emailService, authService, cfg.App.BaseURL, cfg.IsProduction())

	// Telegram-уведомления о заказах опциональны: без токена просто nil
	telegramService := services.NewTelegramService(cfg.Telegram.BotToken, cfg.Telegram.ChatID)
	orderService := services.NewOrderService(orderRepo, telegramService, cfg.App.AdminEmail)

	pdfGen := pdf.NewInvoiceGenerator(cfg.Files.RootDir)

	// === Handlers ===
	authHandler := handlers.NewAuthHandler(accountService, resetService)
	accountHandler := handlers.NewAccountHandler(accountService)
	orderHandler := handlers.NewOrderHandler(orderService, pdfGen)

	// === Gin ===
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()
	router.Use(gin.Recovery())
	router.Use(corsMiddleware())

	// Swagger
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	routes.SetupRoutes(router, authHandler, accountHandler, orderHandler)

	// === Run ===
	listenAddr := fmt.Sprintf(":%d", cfg.Server.Port)
	log.Printf("Server listening on %s (production=%v)", listenAddr, cfg.IsProduction())
	if err := router.Run(listenAddr); err != nil {
		log.Fatal("Failed to start the server: ", err)
	}
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Authorization")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	}
}
