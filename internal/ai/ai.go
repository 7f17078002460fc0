// Package ai defines the provider client contract shared by the concrete
// LLM backends. Clients are pure translators: they turn one request into one
// cleaned text response or a classified error, and never retry. All retry
// and fallback policy lives in the router.
package ai

import (
	"context"
	"strings"

	"github.com/sendright/ai-backend/internal/types"
)

// Request is a single generation attempt against one (credential, model)
// candidate. The router fills Model and APIKey per candidate.
type Request struct {
	Model       string
	APIKey      string
	Instruction string
	Input       string
	Verbosity   types.Verbosity
}

// Client is implemented by each provider backend.
type Client interface {
	// Generate performs one generation call. A successful result is
	// trimmed and at least MinResponseLength characters long; anything
	// shorter is returned as a KindDegenerateResponse error.
	Generate(ctx context.Context, req *Request) (string, error)

	// Models returns the model names to attempt for this provider,
	// primary first.
	Models() []string

	// Name returns the provider identifier for logging.
	Name() string
}

// MinResponseLength is the minimum trimmed length of a usable completion.
// Shorter payloads are treated as degenerate rather than surfaced as
// success, so near-empty completions never propagate downstream.
const MinResponseLength = 3

// ValidateResponse trims text and classifies empty or too-short payloads as
// degenerate. Shared by the provider clients.
func ValidateResponse(text string) (string, error) {
	trimmed := strings.TrimSpace(text)
	if len(trimmed) < MinResponseLength {
		return "", &Error{Kind: KindDegenerateResponse, Message: "response too short from AI model"}
	}
	return trimmed, nil
}
