package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/TranKhoaa/AITChatbot/internal/config"
	"github.com/TranKhoaa/AITChatbot/internal/database"
	"github.com/TranKhoaa/AITChatbot/internal/database/repository"
	"github.com/TranKhoaa/AITChatbot/internal/models"
	"github.com/TranKhoaa/AITChatbot/internal/router"
	"github.com/TranKhoaa/AITChatbot/internal/services"
	"github.com/TranKhoaa/AITChatbot/internal/services/auth"
	"github.com/TranKhoaa/AITChatbot/internal/services/chunker"
	"github.com/TranKhoaa/AITChatbot/internal/services/embedding"
	"github.com/TranKhoaa/AITChatbot/internal/services/ingest"
	"github.com/TranKhoaa/AITChatbot/internal/utils"
	"github.com/TranKhoaa/AITChatbot/internal/vectorstore"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	// Configure logging
	configureLogging()

	// Initialize Sentry
	utils.InitSentry()

	cfg := config.Load()

	// Initialize database connection
	db, err := database.InitDB()
	if err != nil {
		logrus.Fatalf("Failed to initialize database: %v", err)
	}

	// Initialize auth service and bootstrap admin
	authService := auth.NewAuthService(db)
	if err := authService.CreateDefaultAdmin(); err != nil {
		logrus.Warnf("Failed to create default admin: %v", err)
	}

	// Embedding and generation backends
	embedder := embedding.NewOllamaEmbedder(cfg.EmbeddingBaseURL, cfg.EmbeddingModel, models.EmbeddingDim)
	llm := services.NewOllamaService(cfg.EmbeddingBaseURL, cfg.LLMModel)

	// Vector store over pgvector
	vecStore, err := vectorstore.NewPGStore(db, cfg.HNSWEfSearch, cfg.IVFFlatProbes)
	if err != nil {
		logrus.Fatalf("Failed to initialize vector store: %v", err)
	}

	// Ingestion pipeline and worker pool
	ingestStore := repository.NewIngestStore(db)
	splitter := chunker.NewSplitter(cfg.ChunkSize, cfg.ChunkOverlap)
	pipeline := ingest.NewPipeline(ingestStore, splitter, embedder, cfg.UploadDir, cfg.PathAttempts)

	coordinator, err := ingest.NewCoordinator(pipeline, ingestStore, cfg.WorkerCount)
	if err != nil {
		logrus.Fatalf("Failed to initialize ingestion coordinator: %v", err)
	}
	defer coordinator.Release()

	// SSE hub for per-admin completion events
	sseHub := services.NewSSEHub()

	// RabbitMQ is optional; completions still reach SSE clients without it
	var rabbitMQService *services.RabbitMQService
	if mq, err := services.NewRabbitMQService(); err != nil {
		logrus.Warnf("Failed to initialize RabbitMQ: %v", err)
	} else {
		logrus.Info("RabbitMQ service initialized")
		rabbitMQService = mq
		defer rabbitMQService.Close()
	}

	// Fan completion events out to RabbitMQ and SSE
	notifier := services.NewNotifier(sseHub, rabbitMQService)
	notifier.Start(coordinator.Events())

	// Services behind the HTTP surface
	fileRepo := repository.NewFileRepository(db)
	chunkRepo := repository.NewChunkRepository(db)
	fileService := services.NewFileService(fileRepo, chunkRepo, cfg.MaxFileSize)
	chatService := services.NewChatService(embedder, vecStore, llm, cfg.SearchTopK, cfg.SearchThreshold)

	r := router.SetupRouter(authService, fileService, chatService, coordinator, sseHub)

	// Configure HTTP server
	port := getEnv("PORT", "8080")
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", port),
		Handler: r,
	}

	// Start server in a goroutine
	go func() {
		logrus.Infof("Server starting on port %s", port)
		logrus.Infof("API Health Check: http://localhost:%s/api/v1/health", port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logrus.Info("Shutting down server...")

	// Create a deadline for server shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Shutdown the server
	if err := srv.Shutdown(ctx); err != nil {
		logrus.Fatalf("Server forced to shutdown: %v", err)
	}

	logrus.Info("Server exited properly")
}

func configureLogging() {
	logLevel := getEnv("LOG_LEVEL", "info")
	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)
	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}
