// Package router dispatches AI requests to the selected provider with a
// bounded retry and fallback search over (API key, model) candidates.
package router

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/sendright/ai-backend/internal/ai"
	"github.com/sendright/ai-backend/internal/types"
)

// RetryPolicy bounds the per-candidate retry loop. Tests inject zero-backoff
// policies.
type RetryPolicy struct {
	// MaxAttempts is the attempt budget per (key, model) candidate.
	MaxAttempts int
	// Backoff is the fixed pause before each retry. No exponential
	// growth: the attempt bound is small and the caller is interactive.
	Backoff time.Duration
	// IsTransient decides which failures are worth retrying on the same
	// candidate.
	IsTransient func(kind ai.Kind) bool
}

// DefaultRetryPolicy matches the keyboard client's behavior: three attempts,
// one second apart, for service-unavailable and deadline-style failures.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: 3,
		Backoff:     time.Second,
		IsTransient: func(kind ai.Kind) bool { return kind.Transient() },
	}
}

// Credentials is the ordered API key list for one provider: primary first,
// then backups.
type Credentials struct {
	Primary string
	Backups []string
}

// Keys returns all keys in attempt order.
func (c Credentials) Keys() []string {
	return append([]string{c.Primary}, c.Backups...)
}

// UsageRecorder counts routed attempts for the informational daily display.
type UsageRecorder interface {
	IncrementUsage(ctx context.Context, publicKey string) error
}

// Router runs the candidate search for one or more providers.
type Router struct {
	clients map[types.ProviderID]ai.Client
	creds   map[types.ProviderID]Credentials
	policy  RetryPolicy
	usage   UsageRecorder
	logger  *logrus.Logger
}

// New creates a router over the given provider clients and credentials.
func New(clients map[types.ProviderID]ai.Client, creds map[types.ProviderID]Credentials, policy RetryPolicy, usage UsageRecorder, logger *logrus.Logger) *Router {
	return &Router{
		clients: clients,
		creds:   creds,
		policy:  policy,
		usage:   usage,
		logger:  logger,
	}
}

// Execute runs an instruction over input text against the selected provider
// and returns the cleaned response.
func (r *Router) Execute(ctx context.Context, publicKey string, provider types.ProviderID, instruction, input string, verbosity types.Verbosity) (string, error) {
	if input == "" {
		return "", fmt.Errorf("no text to process")
	}

	client, ok := r.clients[provider]
	if !ok {
		return "", fmt.Errorf("unknown provider: %s", provider)
	}

	// Accounting happens per routed call, not per success: the counter
	// informs the "today's usage" display only.
	if r.usage != nil {
		if err := r.usage.IncrementUsage(ctx, publicKey); err != nil {
			r.logger.WithError(err).Warn("failed to record usage")
		}
	}

	raw, err := r.search(ctx, client, provider, instruction, input, verbosity)
	if err != nil {
		return "", err
	}
	return Clean(raw), nil
}

// ExecuteChat runs the no-instruction conversational path.
func (r *Router) ExecuteChat(ctx context.Context, publicKey string, provider types.ProviderID, message string) (string, error) {
	return r.Execute(ctx, publicKey, provider, "", message, types.VerbosityNormal)
}

// search walks the candidate list credential-major: every model is tried
// under the primary key before any backup key is touched, since a model
// incompatibility is more likely transient-per-model than the key itself
// being revoked. The first success short-circuits the whole search.
func (r *Router) search(ctx context.Context, client ai.Client, provider types.ProviderID, instruction, input string, verbosity types.Verbosity) (string, error) {
	creds, ok := r.creds[provider]
	if !ok || creds.Primary == "" {
		return "", fmt.Errorf("no credentials configured for provider %s", provider)
	}

	keys := creds.Keys()
	models := client.Models()

	var worst ai.Kind
	var lastErr error
	attempts := 0

keyLoop:
	for keyIdx, apiKey := range keys {
		rotate := false

		for _, model := range models {
			for attempt := 1; attempt <= r.policy.MaxAttempts; attempt++ {
				attempts++

				result, err := client.Generate(ctx, &ai.Request{
					Model:       model,
					APIKey:      apiKey,
					Instruction: instruction,
					Input:       input,
					Verbosity:   verbosity,
				})
				if err == nil {
					r.logger.WithFields(logrus.Fields{
						"provider": provider,
						"model":    model,
						"key":      keyLabel(keyIdx),
						"attempts": attempts,
					}).Debug("generation succeeded")
					return result, nil
				}

				kind := ai.KindOf(err)
				lastErr = err
				if kind.MoreSevere(worst) {
					worst = kind
				}

				r.logger.WithFields(logrus.Fields{
					"provider": provider,
					"model":    model,
					"key":      keyLabel(keyIdx),
					"attempt":  attempt,
					"kind":     kind.String(),
				}).Warn("generation attempt failed")

				// An auth/quota failure indicts the credential, not
				// the model: skip its remaining models and rotate.
				if kind == ai.KindAuthOrQuota {
					rotate = true
					continue keyLoop
				}

				// A rejected model name never recovers on retry.
				if kind == ai.KindModelUnsupported {
					break
				}

				if r.policy.IsTransient(kind) && attempt < r.policy.MaxAttempts {
					select {
					case <-time.After(r.policy.Backoff):
					case <-ctx.Done():
						return "", ctx.Err()
					}
					continue
				}

				// Non-transient, non-auth: move on to the next model.
				break
			}
		}

		// Exhausting the primary key's models on non-auth failures
		// terminates the search: backups share the same systemic fault
		// and are not worth burning.
		if !rotate {
			break
		}
	}

	r.logger.WithFields(logrus.Fields{
		"provider": provider,
		"attempts": attempts,
		"kind":     worst.String(),
	}).Error("all keys and models failed")

	return "", &ai.Error{
		Kind:     worst,
		Provider: string(provider),
		Message:  fmt.Sprintf("all available API keys and models failed after %d attempts", attempts),
		Err:      lastErr,
	}
}

func keyLabel(idx int) string {
	if idx == 0 {
		return "primary"
	}
	return fmt.Sprintf("backup-%d", idx)
}
