// Package prefs persists per-device keyboard settings and daily usage
// counters in the key-value store, using the same key names the keyboard
// client used locally.
package prefs

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/sendright/ai-backend/internal/storage/kv"
	"github.com/sendright/ai-backend/internal/types"
)

// FreeTierDailyLimit is the informational daily action cap for non-pro
// devices. The router does not enforce it; it only feeds the usage display.
const FreeTierDailyLimit = 15

// Repository reads and writes device preferences.
type Repository struct {
	kv  kv.Store
	now func() time.Time
}

// New creates a preferences repository.
func New(kvs kv.Store) *Repository {
	return &Repository{kv: kvs, now: time.Now}
}

// NewWithClock creates a repository with an injected clock for tests.
func NewWithClock(kvs kv.Store, now func() time.Time) *Repository {
	return &Repository{kv: kvs, now: now}
}

func key(publicKey, name string) string {
	return fmt.Sprintf("prefs:%s:%s", publicKey, name)
}

// ResponseMode returns the device's verbosity setting, defaulting to normal.
func (r *Repository) ResponseMode(ctx context.Context, publicKey string) (types.Verbosity, error) {
	raw, err := r.kv.Get(ctx, key(publicKey, "response_mode"))
	if err != nil {
		if errors.Is(err, kv.ErrNotFound) {
			return types.VerbosityNormal, nil
		}
		return "", fmt.Errorf("get response mode: %w", err)
	}
	if types.Verbosity(raw) == types.VerbosityDetailed {
		return types.VerbosityDetailed, nil
	}
	return types.VerbosityNormal, nil
}

// SetResponseMode stores the verbosity setting.
func (r *Repository) SetResponseMode(ctx context.Context, publicKey string, mode types.Verbosity) error {
	return r.kv.Set(ctx, key(publicKey, "response_mode"), string(mode), 0)
}

// Provider returns the selected provider, defaulting to Gemini. The flag
// layout mirrors the client's boolean per-provider keys.
func (r *Repository) Provider(ctx context.Context, publicKey string) (types.ProviderID, error) {
	raw, err := r.kv.Get(ctx, key(publicKey, fmt.Sprintf("is_%s_enabled", types.ProviderGPT5)))
	if err != nil {
		if errors.Is(err, kv.ErrNotFound) {
			return types.ProviderGemini, nil
		}
		return "", fmt.Errorf("get provider flag: %w", err)
	}
	if raw == "true" {
		return types.ProviderGPT5, nil
	}
	return types.ProviderGemini, nil
}

// SetProvider stores the provider selection.
func (r *Repository) SetProvider(ctx context.Context, publicKey string, p types.ProviderID) error {
	if !p.Valid() {
		return fmt.Errorf("unknown provider: %s", p)
	}
	return r.kv.Set(ctx, key(publicKey, fmt.Sprintf("is_%s_enabled", types.ProviderGPT5)),
		strconv.FormatBool(p == types.ProviderGPT5), 0)
}

// ProUser reports whether the device is marked pro (unlimited usage).
func (r *Repository) ProUser(ctx context.Context, publicKey string) (bool, error) {
	raw, err := r.kv.Get(ctx, key(publicKey, "is_pro_user"))
	if err != nil {
		if errors.Is(err, kv.ErrNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("get pro flag: %w", err)
	}
	return raw == "true", nil
}

// SetProUser stores the pro flag.
func (r *Repository) SetProUser(ctx context.Context, publicKey string, pro bool) error {
	return r.kv.Set(ctx, key(publicKey, "is_pro_user"), strconv.FormatBool(pro), 0)
}

// Get returns the full preferences blob.
func (r *Repository) Get(ctx context.Context, publicKey string) (*types.Preferences, error) {
	mode, err := r.ResponseMode(ctx, publicKey)
	if err != nil {
		return nil, err
	}
	provider, err := r.Provider(ctx, publicKey)
	if err != nil {
		return nil, err
	}
	pro, err := r.ProUser(ctx, publicKey)
	if err != nil {
		return nil, err
	}
	return &types.Preferences{ResponseMode: mode, Provider: provider, ProUser: pro}, nil
}

// dateString renders the day key under which usage counters live.
func (r *Repository) dateString() string {
	return r.now().UTC().Format("2006-01-02")
}

func (r *Repository) usageKey(publicKey string) string {
	return key(publicKey, "usage_count_"+r.dateString())
}

// IncrementUsage bumps today's counter. Called on every routed attempt that
// reaches a provider, success or not. Counters reset by date rollover; old
// keys are left to expire, not cleaned up explicitly.
func (r *Repository) IncrementUsage(ctx context.Context, publicKey string) error {
	if _, err := r.kv.Incr(ctx, r.usageKey(publicKey)); err != nil {
		return fmt.Errorf("increment usage: %w", err)
	}
	return nil
}

// TodayUsage returns today's counter value.
func (r *Repository) TodayUsage(ctx context.Context, publicKey string) (int, error) {
	raw, err := r.kv.Get(ctx, r.usageKey(publicKey))
	if err != nil {
		if errors.Is(err, kv.ErrNotFound) {
			return 0, nil
		}
		return 0, fmt.Errorf("get usage: %w", err)
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("parse usage count: %w", err)
	}
	return n, nil
}

// Usage builds the informational usage report. Remaining is -1 for pro
// devices.
func (r *Repository) Usage(ctx context.Context, publicKey string) (*types.UsageReport, error) {
	used, err := r.TodayUsage(ctx, publicKey)
	if err != nil {
		return nil, err
	}
	pro, err := r.ProUser(ctx, publicKey)
	if err != nil {
		return nil, err
	}

	remaining := FreeTierDailyLimit - used
	if remaining < 0 {
		remaining = 0
	}
	if pro {
		remaining = -1
	}

	return &types.UsageReport{
		Date:      r.dateString(),
		Used:      used,
		Remaining: remaining,
		Limit:     FreeTierDailyLimit,
	}, nil
}
