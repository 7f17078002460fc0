package api

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/sendright/ai-backend/internal/storage"
)

// SendMessageRequest is the request body for sending a chat message.
type SendMessageRequest struct {
	Content string `json:"content"`
}

// SendMessage appends a user message to the active conversation and returns
// the assistant reply.
func (s *Server) SendMessage(c echo.Context) error {
	var req SendMessageRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
	}
	if req.Content == "" {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "message content is empty"})
	}

	result, err := s.chatService.SendMessage(c.Request().Context(), GetPublicKey(c), req.Content)
	if err != nil {
		s.logger.WithError(err).Warn("chat message failed")
		return aiErrorResponse(c, err)
	}

	return c.JSON(http.StatusOK, result)
}

// CreateConversation starts a fresh conversation and makes it current.
func (s *Server) CreateConversation(c echo.Context) error {
	conv, err := s.chatService.NewConversation(c.Request().Context(), GetPublicKey(c))
	if err != nil {
		s.logger.WithError(err).Error("failed to create conversation")
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "failed to create conversation"})
	}
	return c.JSON(http.StatusCreated, conv)
}

// CurrentConversation returns the active conversation, creating one if none
// exists yet.
func (s *Server) CurrentConversation(c echo.Context) error {
	conv, err := s.chatService.Current(c.Request().Context(), GetPublicKey(c))
	if err != nil {
		s.logger.WithError(err).Error("failed to load current conversation")
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "failed to load conversation"})
	}
	return c.JSON(http.StatusOK, conv)
}

// ListConversations returns the device's conversation history, most recently
// updated first.
func (s *Server) ListConversations(c echo.Context) error {
	summaries, err := s.chatService.List(c.Request().Context(), GetPublicKey(c))
	if err != nil {
		s.logger.WithError(err).Error("failed to list conversations")
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "failed to list conversations"})
	}
	return c.JSON(http.StatusOK, summaries)
}

// ActivateConversation switches the active conversation to a historical one.
func (s *Server) ActivateConversation(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid conversation id"})
	}

	conv, err := s.chatService.Activate(c.Request().Context(), GetPublicKey(c), id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return c.JSON(http.StatusNotFound, ErrorResponse{Error: "conversation not found"})
		}
		s.logger.WithError(err).Error("failed to activate conversation")
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "failed to activate conversation"})
	}
	return c.JSON(http.StatusOK, conv)
}

// DeleteConversation removes a conversation from the history.
func (s *Server) DeleteConversation(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid conversation id"})
	}

	if err := s.chatService.Delete(c.Request().Context(), GetPublicKey(c), id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return c.JSON(http.StatusNotFound, ErrorResponse{Error: "conversation not found"})
		}
		s.logger.WithError(err).Error("failed to delete conversation")
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "failed to delete conversation"})
	}
	return c.JSON(http.StatusOK, SuccessResponse{Success: true})
}
