package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/sendright/ai-backend/internal/types"
)

// UpdatePreferencesRequest is the request body for updating preferences.
// Absent fields are left unchanged.
type UpdatePreferencesRequest struct {
	ResponseMode *types.Verbosity  `json:"response_mode,omitempty"`
	Provider     *types.ProviderID `json:"provider,omitempty"`
	ProUser      *bool             `json:"pro_user,omitempty"`
}

// GetPreferences returns the device's settings blob.
func (s *Server) GetPreferences(c echo.Context) error {
	prefs, err := s.prefsRepo.Get(c.Request().Context(), GetPublicKey(c))
	if err != nil {
		s.logger.WithError(err).Error("failed to load preferences")
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "failed to load preferences"})
	}
	return c.JSON(http.StatusOK, prefs)
}

// UpdatePreferences applies a partial settings update and returns the new
// blob.
func (s *Server) UpdatePreferences(c echo.Context) error {
	var req UpdatePreferencesRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
	}

	publicKey := GetPublicKey(c)
	ctx := c.Request().Context()

	if req.ResponseMode != nil {
		mode := *req.ResponseMode
		if mode != types.VerbosityNormal && mode != types.VerbosityDetailed {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid response mode"})
		}
		if err := s.prefsRepo.SetResponseMode(ctx, publicKey, mode); err != nil {
			s.logger.WithError(err).Error("failed to set response mode")
			return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "failed to update preferences"})
		}
	}
	if req.Provider != nil {
		if !req.Provider.Valid() {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid provider"})
		}
		if err := s.prefsRepo.SetProvider(ctx, publicKey, *req.Provider); err != nil {
			s.logger.WithError(err).Error("failed to set provider")
			return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "failed to update preferences"})
		}
	}
	if req.ProUser != nil {
		if err := s.prefsRepo.SetProUser(ctx, publicKey, *req.ProUser); err != nil {
			s.logger.WithError(err).Error("failed to set pro flag")
			return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "failed to update preferences"})
		}
	}

	prefs, err := s.prefsRepo.Get(ctx, publicKey)
	if err != nil {
		s.logger.WithError(err).Error("failed to load preferences")
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "failed to load preferences"})
	}
	return c.JSON(http.StatusOK, prefs)
}

// GetUsage returns today's informational usage counter.
func (s *Server) GetUsage(c echo.Context) error {
	report, err := s.prefsRepo.Usage(c.Request().Context(), GetPublicKey(c))
	if err != nil {
		s.logger.WithError(err).Error("failed to load usage")
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "failed to load usage"})
	}
	return c.JSON(http.StatusOK, report)
}
