// Package openaichat implements the OpenAI-chat-style client used for the
// GPT-5 endpoint (AI/ML API).
package openaichat

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
	defaultBaseURL = "https://api.aimlapi.com/v1"
	defaultModel   = "openai/gpt-5-mini-2025-08-07"
	defaultTimeout = 30 * time.Second

	temperature = 0.3
	topP        = 0.9

	normalMaxTokens   = 256
	detailedMaxTokens = 1024
)

// Client calls a chat/completions endpoint with bearer auth.
type Client struct {
	baseURL    string
	models     []string
	httpClient *http.Client
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
	TopP        float64       `json:"top_p"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// NewClient creates a GPT-5 client. Empty baseURL and models fall back to
// the AI/ML API defaults.
func NewClient(baseURL string, models []string) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if len(models) == 0 {
		models = []string{defaultModel}
	}
	return &Client{
		baseURL: baseURL,
		models:  models,
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
	}
}

// Name implements ai.Client.
func (c *Client) Name() string {
	return "gpt5"
}

// Models implements ai.Client.
func (c *Client) Models() []string {
	return c.models
}

// Generate implements ai.Client. The instruction and output discipline go
// in a system message; the raw user text is the user message.
func (c *Client) Generate(ctx context.Context, req *ai.Request) (string, error) {
	maxTokens := normalMaxTokens
	if req.Verbosity == types.VerbosityDetailed {
		maxTokens = detailedMaxTokens
	}

	var messages []chatMessage
	if system := ai.BuildSystemPrompt(req); system != "" {
		messages = append(messages, chatMessage{Role: "system", Content: system})
	}
	messages = append(messages, chatMessage{Role: "user", Content: req.Input})

	body, err := json.Marshal(&chatRequest{
		Model:       req.Model,
		Messages:    messages,
		MaxTokens:   maxTokens,
		Temperature: temperature,
		TopP:        topP,
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+req.APIKey)

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

	var result chatResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return "", fmt.Errorf("unmarshal response: %w", err)
	}
	if len(result.Choices) == 0 {
		return "", &ai.Error{Kind: ai.KindDegenerateResponse, Provider: c.Name(), Message: "no choices in response"}
	}

	return ai.ValidateResponse(result.Choices[0].Message.Content)
}
