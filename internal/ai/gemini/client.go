// Package gemini implements the Google-style generateContent API client.
package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sendright/ai-backend/internal/ai"
	"github.com/sendright/ai-backend/internal/types"
)

const (
	defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"
	defaultTimeout = 30 * time.Second

	// Fixed generation parameters: favor determinism and consistency
	// over creativity for keyboard text transformations.
	temperature = 0.3
	topP        = 0.9
	topK        = 40

	normalMaxTokens   = 256
	detailedMaxTokens = 512
)

// DefaultModels is the fallback chain attempted by the router, primary
// first. Legacy 1.5 models stay at the tail until fully deprecated.
var DefaultModels = []string{
	"gemini-2.0-flash-exp",
	"gemini-2.0-flash",
	"models/gemini-2.0-flash-exp",
	"models/gemini-2.0-flash",
	"gemini-1.5-flash",
	"gemini-1.5-pro",
}

// Client calls the Gemini generateContent endpoint.
type Client struct {
	baseURL    string
	models     []string
	httpClient *http.Client
}

// generationConfig mirrors the API's generation parameters object.
type generationConfig struct {
	Temperature     float64 `json:"temperature"`
	TopK            int     `json:"topK"`
	TopP            float64 `json:"topP"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
}

type part struct {
	Text string `json:"text"`
}

type content struct {
	Parts []part `json:"parts"`
	Role  string `json:"role,omitempty"`
}

type generateRequest struct {
	Contents         []content        `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
}

type generateResponse struct {
	Candidates []struct {
		Content      content `json:"content"`
		FinishReason string  `json:"finishReason"`
	} `json:"candidates"`
}

// NewClient creates a Gemini client. An empty models list falls back to
// DefaultModels.
func NewClient(models []string) *Client {
	if len(models) == 0 {
		models = DefaultModels
	}
	return &Client{
		baseURL: defaultBaseURL,
		models:  models,
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
	}
}

// NewClientWithBaseURL creates a client against a custom endpoint, used by
// tests to point at a local fake.
func NewClientWithBaseURL(baseURL string, models []string) *Client {
	c := NewClient(models)
	c.baseURL = baseURL
	return c
}

// Name implements ai.Client.
func (c *Client) Name() string {
	return "gemini"
}

// Models implements ai.Client.
func (c *Client) Models() []string {
	return c.models
}

// Generate implements ai.Client. One HTTP round-trip, no retries.
func (c *Client) Generate(ctx context.Context, req *ai.Request) (string, error) {
	maxTokens := normalMaxTokens
	if req.Verbosity == types.VerbosityDetailed {
		maxTokens = detailedMaxTokens
	}

	body, err := json.Marshal(&generateRequest{
		Contents: []content{
			{Parts: []part{{Text: ai.BuildPrompt(req)}}},
		},
		GenerationConfig: generationConfig{
			Temperature:     temperature,
			TopK:            topK,
			TopP:            topP,
			MaxOutputTokens: maxTokens,
		},
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", c.baseURL, req.Model, req.APIKey)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", ai.ClassifyTransport(c.Name(), err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", ai.ClassifyStatus(c.Name(), resp.StatusCode, string(respBody))
	}

	var result generateResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return "", fmt.Errorf("unmarshal response: %w", err)
	}

	var text string
	if len(result.Candidates) > 0 {
		for _, p := range result.Candidates[0].Content.Parts {
			text += p.Text
		}
	}

	return ai.ValidateResponse(text)
}
