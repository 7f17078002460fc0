package api

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/sendright/ai-backend/internal/ai"
)

// ErrorResponse represents an error response. Kind carries the classified
// provider failure for AI endpoints so the keyboard can render a specific
// toast.
type ErrorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}

// SuccessResponse represents a generic success response.
type SuccessResponse struct {
	Success bool `json:"success"`
}

// aiErrorResponse maps a classified provider failure onto an HTTP status
// plus the short human message the keyboard shows.
func aiErrorResponse(c echo.Context, err error) error {
	var aiErr *ai.Error
	if !errors.As(err, &aiErr) {
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "an unexpected error occurred, please try again"})
	}

	status := http.StatusBadGateway
	message := "AI request failed, please try again"

	switch aiErr.Kind {
	case ai.KindNetworkUnavailable:
		message = "no internet connection, please check your network and try again"
	case ai.KindTimeout:
		status = http.StatusGatewayTimeout
		message = "request timed out, please try again"
	case ai.KindRateLimited:
		status = http.StatusTooManyRequests
		message = "rate limit exceeded, please try again later"
	case ai.KindAuthOrQuota:
		message = "AI service authorization failed"
	case ai.KindServiceUnavailable:
		message = "AI service temporarily unavailable"
	case ai.KindDegenerateResponse:
		message = "AI returned an unusable response, please try again"
	}

	return c.JSON(status, ErrorResponse{Error: message, Kind: aiErr.Kind.String()})
}
