package prefs

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/sendright/ai-backend/internal/storage/kv"
	"github.com/sendright/ai-backend/internal/types"
)

func TestDefaults(t *testing.T) {
	r := New(kv.NewMemory())
	ctx := context.Background()

	mode, err := r.ResponseMode(ctx, "pk")
	require.NoError(t, err)
	require.Equal(t, types.VerbosityNormal, mode)

	provider, err := r.Provider(ctx, "pk")
	require.NoError(t, err)
	require.Equal(t, types.ProviderGemini, provider)

	pro, err := r.ProUser(ctx, "pk")
	require.NoError(t, err)
	require.False(t, pro)
}

func TestSetAndGetPreferences(t *testing.T) {
	r := New(kv.NewMemory())
	ctx := context.Background()

	require.NoError(t, r.SetResponseMode(ctx, "pk", types.VerbosityDetailed))
	require.NoError(t, r.SetProvider(ctx, "pk", types.ProviderGPT5))
	require.NoError(t, r.SetProUser(ctx, "pk", true))

	prefs, err := r.Get(ctx, "pk")
	require.NoError(t, err)
	require.Equal(t, types.VerbosityDetailed, prefs.ResponseMode)
	require.Equal(t, types.ProviderGPT5, prefs.Provider)
	require.True(t, prefs.ProUser)

	// Switching back to Gemini clears the flag.
	require.NoError(t, r.SetProvider(ctx, "pk", types.ProviderGemini))
	provider, err := r.Provider(ctx, "pk")
	require.NoError(t, err)
	require.Equal(t, types.ProviderGemini, provider)
}

func TestSetProvider_RejectsUnknown(t *testing.T) {
	r := New(kv.NewMemory())
	require.Error(t, r.SetProvider(context.Background(), "pk", types.ProviderID("claude")))
}

func TestUsage_CountsAndRollsOverByDate(t *testing.T) {
	now := time.Date(2025, 6, 1, 23, 0, 0, 0, time.UTC)
	r := NewWithClock(kv.NewMemory(), func() time.Time { return now })
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		require.NoError(t, r.IncrementUsage(ctx, "pk"))
	}

	used, err := r.TodayUsage(ctx, "pk")
	require.NoError(t, err)
	require.Equal(t, 3, used)

	// Midnight passes: the counter starts fresh under the new date key.
	now = now.Add(2 * time.Hour)
	used, err = r.TodayUsage(ctx, "pk")
	require.NoError(t, err)
	require.Zero(t, used)

	require.NoError(t, r.IncrementUsage(ctx, "pk"))
	used, err = r.TodayUsage(ctx, "pk")
	require.NoError(t, err)
	require.Equal(t, 1, used)
}

func TestUsage_Report(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	r := NewWithClock(kv.NewMemory(), func() time.Time { return now })
	ctx := context.Background()

	for i := 0; i < 4; i++ {
		require.NoError(t, r.IncrementUsage(ctx, "pk"))
	}

	report, err := r.Usage(ctx, "pk")
	require.NoError(t, err)
	require.Equal(t, "2025-06-01", report.Date)
	require.Equal(t, 4, report.Used)
	require.Equal(t, FreeTierDailyLimit-4, report.Remaining)
	require.Equal(t, FreeTierDailyLimit, report.Limit)
}

func TestUsage_RemainingNeverNegative(t *testing.T) {
	r := New(kv.NewMemory())
	ctx := context.Background()

	for i := 0; i < FreeTierDailyLimit+5; i++ {
		require.NoError(t, r.IncrementUsage(ctx, "pk"))
	}

	report, err := r.Usage(ctx, "pk")
	require.NoError(t, err)
	require.Equal(t, FreeTierDailyLimit+5, report.Used)
	require.Zero(t, report.Remaining)
}

func TestUsage_ProUserUnlimited(t *testing.T) {
	r := New(kv.NewMemory())
	ctx := context.Background()

	require.NoError(t, r.SetProUser(ctx, "pk", true))
	require.NoError(t, r.IncrementUsage(ctx, "pk"))

	report, err := r.Usage(ctx, "pk")
	require.NoError(t, err)
	require.Equal(t, 1, report.Used)
	require.Equal(t, -1, report.Remaining)
}
