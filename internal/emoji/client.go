// Package emoji provides the read-only emoji catalog client backed by
// emoji-api.com, with a hardcoded fallback dataset and key-value response
// caching. Catalog lookups tolerate total upstream failure.
package emoji

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/sendright/ai-backend/internal/storage/kv"
)

const requestTimeout = 10 * time.Second

// Emoji is one catalog entry as returned by the API.
type Emoji struct {
	Slug        string `json:"slug"`
	Character   string `json:"character"`
	UnicodeName string `json:"unicodeName"`
	CodePoint   string `json:"codePoint"`
	Group       string `json:"group"`
	SubGroup    string `json:"subGroup"`
}

// Category is an emoji group with its client-facing display name.
type Category struct {
	Slug          string   `json:"slug"`
	DisplayName   string   `json:"display_name"`
	SubCategories []string `json:"sub_categories"`
}

// Client fetches emoji metadata, caching responses in the kv store.
type Client struct {
	baseURL    string
	accessKey  string
	cache      kv.Store
	cacheTTL   time.Duration
	httpClient *http.Client
	logger     *logrus.Logger
}

// New creates an emoji client. cache may be nil to disable caching.
func New(baseURL, accessKey string, cache kv.Store, cacheTTL time.Duration, logger *logrus.Logger) *Client {
	return &Client{
		baseURL:   baseURL,
		accessKey: accessKey,
		cache:     cache,
		cacheTTL:  cacheTTL,
		httpClient: &http.Client{
			Timeout: requestTimeout,
		},
		logger: logger,
	}
}

// Categories returns the supported category list. Unknown upstream
// categories are dropped so the picker never shows duplicates; on any
// failure the hardcoded fallback set is returned.
func (c *Client) Categories(ctx context.Context) []Category {
	var raw []struct {
		Slug          string   `json:"slug"`
		SubCategories []string `json:"subCategories"`
	}
	if err := c.getJSON(ctx, "/categories", nil, "emoji:categories", &raw); err != nil {
		c.logger.WithError(err).Warn("emoji categories fetch failed, using fallback")
		return FallbackCategories()
	}

	var categories []Category
	for _, entry := range raw {
		name, ok := categoryNames[entry.Slug]
		if !ok {
			continue
		}
		categories = append(categories, Category{
			Slug:          entry.Slug,
			DisplayName:   name,
			SubCategories: entry.SubCategories,
		})
	}
	if len(categories) == 0 {
		return FallbackCategories()
	}
	return categories
}

// CategoryEmojis returns the emojis in one category.
func (c *Client) CategoryEmojis(ctx context.Context, slug string) ([]Emoji, error) {
	var raw []Emoji
	cacheKey := "emoji:category:" + slug
	if err := c.getJSON(ctx, "/categories/"+url.PathEscape(slug), nil, cacheKey, &raw); err != nil {
		return nil, err
	}
	return validEmojis(raw), nil
}

// Search looks up emojis matching the query. Search results are not cached:
// the query space is unbounded.
func (c *Client) Search(ctx context.Context, query string) ([]Emoji, error) {
	var raw []Emoji
	params := url.Values{"search": {query}}
	if err := c.getJSON(ctx, "/emojis", params, "", &raw); err != nil {
		return nil, err
	}
	return validEmojis(raw), nil
}

// getJSON performs a GET with the access key, consulting and filling the
// cache when a cacheKey is given.
func (c *Client) getJSON(ctx context.Context, path string, params url.Values, cacheKey string, out any) error {
	if cacheKey != "" && c.cache != nil {
		if cached, err := c.cache.Get(ctx, cacheKey); err == nil {
			if err := json.Unmarshal([]byte(cached), out); err == nil {
				return nil
			}
			// Corrupt cache entries are ignored and refetched.
		}
	}

	if params == nil {
		params = url.Values{}
	}
	params.Set("access_key", c.accessKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", "SendRight-Backend")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("emoji api: status %d", resp.StatusCode)
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("unmarshal response: %w", err)
	}

	if cacheKey != "" && c.cache != nil {
		if err := c.cache.Set(ctx, cacheKey, string(body), c.cacheTTL); err != nil {
			c.logger.WithError(err).Debug("emoji cache write failed")
		}
	}
	return nil
}

// validEmojis drops records missing the fields the keyboard needs.
func validEmojis(in []Emoji) []Emoji {
	out := in[:0]
	for _, e := range in {
		if e.Slug != "" && e.Character != "" && e.CodePoint != "" {
			out = append(out, e)
		}
	}
	return out
}
