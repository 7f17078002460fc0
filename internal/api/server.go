package api

import (
	"github.com/sirupsen/logrus"

	"github.com/sendright/ai-backend/internal/emoji"
	"github.com/sendright/ai-backend/internal/service"
	"github.com/sendright/ai-backend/internal/service/chat"
	"github.com/sendright/ai-backend/internal/service/router"
	"github.com/sendright/ai-backend/internal/storage/prefs"
)

// Server holds API dependencies.
type Server struct {
	authService *service.AuthService
	aiRouter    *router.Router
	chatService *chat.Service
	prefsRepo   *prefs.Repository
	emojiClient *emoji.Client
	logger      *logrus.Logger
}

// NewServer creates a new API server.
func NewServer(authService *service.AuthService, aiRouter *router.Router, chatService *chat.Service, prefsRepo *prefs.Repository, emojiClient *emoji.Client, logger *logrus.Logger) *Server {
	return &Server{
		authService: authService,
		aiRouter:    aiRouter,
		chatService: chatService,
		prefsRepo:   prefsRepo,
		emojiClient: emojiClient,
		logger:      logger,
	}
}
