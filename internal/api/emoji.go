package api

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// ListEmojiCategories returns the emoji picker's category list. This never
// fails: upstream outages fall back to the hardcoded set.
func (s *Server) ListEmojiCategories(c echo.Context) error {
	return c.JSON(http.StatusOK, s.emojiClient.Categories(c.Request().Context()))
}

// ListCategoryEmojis returns the emojis in one category.
func (s *Server) ListCategoryEmojis(c echo.Context) error {
	emojis, err := s.emojiClient.CategoryEmojis(c.Request().Context(), c.Param("slug"))
	if err != nil {
		s.logger.WithError(err).Warn("emoji category fetch failed")
		return c.JSON(http.StatusBadGateway, ErrorResponse{Error: "emoji service unavailable"})
	}
	return c.JSON(http.StatusOK, emojis)
}

// SearchEmojis looks up emojis matching a query string.
func (s *Server) SearchEmojis(c echo.Context) error {
	query := c.QueryParam("q")
	if query == "" {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "missing search query"})
	}

	emojis, err := s.emojiClient.Search(c.Request().Context(), query)
	if err != nil {
		s.logger.WithError(err).Warn("emoji search failed")
		return c.JSON(http.StatusBadGateway, ErrorResponse{Error: "emoji service unavailable"})
	}
	return c.JSON(http.StatusOK, emojis)
}
