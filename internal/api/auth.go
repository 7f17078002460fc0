package api

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// RegisterRequest is the request body for device registration.
type RegisterRequest struct {
	PublicKey string `json:"public_key"`
}

// RegisterResponse carries the issued access token.
type RegisterResponse struct {
	Token string `json:"token"`
}

// Register issues an access token for a device public key. The keyboard
// calls this once at setup and caches the token.
func (s *Server) Register(c echo.Context) error {
	var req RegisterRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
	}
	if req.PublicKey == "" {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "public key required"})
	}

	token, err := s.authService.IssueToken(req.PublicKey)
	if err != nil {
		s.logger.WithError(err).Error("failed to issue token")
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "failed to issue token"})
	}

	return c.JSON(http.StatusOK, RegisterResponse{Token: token})
}
