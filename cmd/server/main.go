package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"

	"github.com/sendright/ai-backend/internal/ai"
	"github.com/sendright/ai-backend/internal/ai/gemini"
	"github.com/sendright/ai-backend/internal/ai/openaichat"
	"github.com/sendright/ai-backend/internal/api"
	"github.com/sendright/ai-backend/internal/cache/redis"
	"github.com/sendright/ai-backend/internal/config"
	"github.com/sendright/ai-backend/internal/emoji"
	"github.com/sendright/ai-backend/internal/service"
	"github.com/sendright/ai-backend/internal/service/chat"
	"github.com/sendright/ai-backend/internal/service/router"
	"github.com/sendright/ai-backend/internal/storage"
	"github.com/sendright/ai-backend/internal/storage/kvstore"
	"github.com/sendright/ai-backend/internal/storage/postgres"
	"github.com/sendright/ai-backend/internal/storage/prefs"
	"github.com/sendright/ai-backend/internal/types"
)

func main() {
	// Initialize logger
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(os.Stdout)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.WithError(err).Fatal("failed to load configuration")
	}

	// Configure log format
	if cfg.LogFormat == "text" {
		logger.SetFormatter(&logrus.TextFormatter{})
	}

	logger.Info("starting keyboard AI backend")

	ctx := context.Background()

	// Initialize Redis client. Redis always backs preferences, usage
	// counters and the emoji cache, even when conversations live in
	// Postgres.
	redisClient, err := redis.New(cfg.Redis.URI)
	if err != nil {
		logger.WithError(err).Fatal("failed to connect to redis")
	}
	defer redisClient.Close()

	// Select the conversation storage backend.
	var convStore storage.ConversationStore
	switch cfg.Storage.Backend {
	case "postgres":
		db, err := postgres.New(ctx, cfg.Database.DSN)
		if err != nil {
			logger.WithError(err).Fatal("failed to connect to database")
		}
		defer db.Close()
		convStore = postgres.NewStore(db.Pool())
	default:
		convStore = kvstore.New(redisClient)
	}
	logger.WithField("backend", cfg.Storage.Backend).Info("conversation storage ready")

	// Initialize provider clients and credentials.
	clients := map[types.ProviderID]ai.Client{
		types.ProviderGemini: gemini.NewClient(cfg.Gemini.Models),
	}
	creds := map[types.ProviderID]router.Credentials{
		types.ProviderGemini: {Primary: cfg.Gemini.APIKey, Backups: cfg.Gemini.BackupKeys},
	}
	if cfg.GPT5.APIKey != "" {
		clients[types.ProviderGPT5] = openaichat.NewClient(cfg.GPT5.BaseURL, cfg.GPT5.Models)
		creds[types.ProviderGPT5] = router.Credentials{Primary: cfg.GPT5.APIKey, Backups: cfg.GPT5.BackupKeys}
	}

	// Initialize repositories and services
	prefsRepo := prefs.New(redisClient)

	retryPolicy := router.RetryPolicy{
		MaxAttempts: cfg.Retry.MaxAttempts,
		Backoff:     cfg.Retry.Backoff,
		IsTransient: func(kind ai.Kind) bool { return kind.Transient() },
	}
	aiRouter := router.New(clients, creds, retryPolicy, prefsRepo, logger)

	chatService := chat.New(aiRouter, convStore, prefsRepo, logger, cfg.Context)

	authService := service.NewAuthService(cfg.Server.JWTSecret)

	emojiClient := emoji.New(cfg.Emoji.BaseURL, cfg.Emoji.AccessKey, redisClient, cfg.Emoji.CacheTTL, logger)

	// Initialize API server
	server := api.NewServer(authService, aiRouter, chatService, prefsRepo, emojiClient, logger)

	// Create Echo server
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Add middleware
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	e.Use(middleware.RequestID())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:    true,
		LogStatus: true,
		LogMethod: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			logger.WithFields(logrus.Fields{
				"method":     v.Method,
				"uri":        v.URI,
				"status":     v.Status,
				"request_id": c.Response().Header().Get(echo.HeaderXRequestID),
			}).Info("request")
			return nil
		},
	}))

	// Health check endpoint (public)
	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status": "ok",
		})
	})

	// Device registration (public)
	e.POST("/auth/register", server.Register)

	// Keyboard routes (authenticated)
	kb := e.Group("/keyboard", server.AuthMiddleware)
	kb.GET("/actions", server.ListActions)
	kb.POST("/actions/:action", server.RunAction)

	kb.POST("/chat/messages", server.SendMessage)
	kb.POST("/chat/conversations", server.CreateConversation)
	kb.GET("/chat/conversations", server.ListConversations)
	kb.GET("/chat/conversations/current", server.CurrentConversation)
	kb.POST("/chat/conversations/:id/activate", server.ActivateConversation)
	kb.DELETE("/chat/conversations/:id", server.DeleteConversation)

	kb.GET("/emoji/categories", server.ListEmojiCategories)
	kb.GET("/emoji/categories/:slug", server.ListCategoryEmojis)
	kb.GET("/emoji/search", server.SearchEmojis)

	kb.GET("/prefs", server.GetPreferences)
	kb.PATCH("/prefs", server.UpdatePreferences)
	kb.GET("/usage", server.GetUsage)

	// Start server
	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	go func() {
		logger.WithField("addr", addr).Info("server listening")
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.WithError(err).Fatal("server error")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("server shutdown error")
	}

	logger.Info("server stopped")
}
