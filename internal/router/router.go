package router

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/TranKhoaa/AITChatbot/internal/handlers"
	"github.com/TranKhoaa/AITChatbot/internal/middleware"
	"github.com/TranKhoaa/AITChatbot/internal/services"
	"github.com/TranKhoaa/AITChatbot/internal/services/auth"
	"github.com/TranKhoaa/AITChatbot/internal/services/ingest"
)

// SetupRouter configures the Gin router with all API routes
func SetupRouter(
	authService *auth.AuthService,
	fileService *services.FileService,
	chatService *services.ChatService,
	coordinator *ingest.Coordinator,
	sseHub *services.SSEHub,
) *gin.Engine {
	// Set Gin mode
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	r.Use(gin.Recovery())
	r.Use(middleware.Logger())

	// Configure CORS
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	bearerTokenMiddleware := middleware.NewBearerTokenMiddleware(authService)

	authHandler := handlers.NewAuthHandler(authService)
	fileHandler := handlers.NewFileHandler(fileService, coordinator, sseHub)
	chatHandler := handlers.NewChatHandler(chatService)

	// API v1 routes
	api := r.Group("/api/v1")
	{
		// Health check
		api.GET("/health", func(c *gin.Context) {
			c.JSON(200, gin.H{
				"status": "ok",
				"time":   time.Now().Format(time.RFC3339),
			})
		})

		// Auth routes (public)
		authRoutes := api.Group("/auth")
		{
			authRoutes.POST("/login", authHandler.Login)
			authRoutes.POST("/refresh", authHandler.Refresh)
		}

		// File routes (admin only)
		fileRoutes := api.Group("/files")
		fileRoutes.Use(bearerTokenMiddleware.BearerTokenAuthMiddleware())
		{
			fileRoutes.POST("/upload", fileHandler.Upload)
			fileRoutes.POST("/retrain", fileHandler.Retrain)
			fileRoutes.GET("", fileHandler.List)
			fileRoutes.GET("/:id/download", fileHandler.Download)
			fileRoutes.DELETE("/:id", fileHandler.Delete)
			fileRoutes.GET("/events", fileHandler.Events)
		}

		// Chat routes
		chatRoutes := api.Group("/chat")
		{
			chatRoutes.POST("", chatHandler.Ask)
		}
	}

	return r
}
