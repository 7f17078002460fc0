package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/sendright/ai-backend/internal/service/router"
)

// ActionRequest is the request body for running a smart-bar action.
type ActionRequest struct {
	Text string `json:"text"`
}

// ActionResponse carries the transformed text back to the keyboard.
type ActionResponse struct {
	Action router.Action `json:"action"`
	Result string        `json:"result"`
}

// ListActions returns the smart-bar action catalog.
func (s *Server) ListActions(c echo.Context) error {
	return c.JSON(http.StatusOK, router.Actions())
}

// RunAction executes one smart-bar action over the submitted text.
func (s *Server) RunAction(c echo.Context) error {
	action := router.Action(c.Param("action"))
	instruction, err := router.Prompt(action)
	if err != nil {
		return c.JSON(http.StatusNotFound, ErrorResponse{Error: "unknown action"})
	}

	var req ActionRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
	}
	if req.Text == "" {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "no text to process"})
	}

	publicKey := GetPublicKey(c)
	ctx := c.Request().Context()

	verbosity, err := s.prefsRepo.ResponseMode(ctx, publicKey)
	if err != nil {
		s.logger.WithError(err).Error("failed to resolve response mode")
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "failed to load preferences"})
	}
	provider, err := s.prefsRepo.Provider(ctx, publicKey)
	if err != nil {
		s.logger.WithError(err).Error("failed to resolve provider")
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "failed to load preferences"})
	}

	result, err := s.aiRouter.Execute(ctx, publicKey, provider, instruction, req.Text, verbosity)
	if err != nil {
		s.logger.WithError(err).WithField("action", action).Warn("action failed")
		return aiErrorResponse(c, err)
	}

	return c.JSON(http.StatusOK, ActionResponse{Action: action, Result: result})
}
