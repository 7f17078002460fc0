package router

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestClean(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "plain text untouched",
			in:   "The quick brown fox.",
			want: "The quick brown fox.",
		},
		{
			name: "lead-in prefix stripped",
			in:   "Here's the corrected text: The quick brown fox.",
			want: "The quick brown fox.",
		},
		{
			name: "only first matching prefix stripped",
			in:   "Corrected: Summary: both look like prefixes",
			want: "Summary: both look like prefixes",
		},
		{
			name: "markdown emphasis removed everywhere",
			in:   "This is **very** important and __also__ this `code`",
			want: "This is very important and also this code",
		},
		{
			name: "wrapping quotes unwrapped",
			in:   `"All fixed now."`,
			want: "All fixed now.",
		},
		{
			name: "prefix then quotes then markdown",
			in:   `Here's the improved version: "A **much** better sentence."`,
			want: "A much better sentence.",
		},
		{
			name: "interior quotes preserved",
			in:   `She said "hello" to me`,
			want: `She said "hello" to me`,
		},
		{
			name: "surrounding whitespace trimmed",
			in:   "   tidy   ",
			want: "tidy",
		},
		{
			name: "prefix mid-text not stripped",
			in:   "I think Summary: is a label",
			want: "I think Summary: is a label",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, Clean(tt.in))
		})
	}
}

// Cleaning must never turn a non-empty response into an empty one: when the
// strip removes everything, the original comes back.
func TestClean_NeverProducesEmpty(t *testing.T) {
	inputs := []string{
		"Summary:",
		`""`,
		"**",
		"`` ",
		"Corrected: **",
	}
	for _, in := range inputs {
		require.NotEmpty(t, Clean(in), "input %q", in)
		require.Equal(t, in, Clean(in), "degraded-to-empty input %q must round-trip unchanged", in)
	}
}

func TestActions_CatalogStable(t *testing.T) {
	first := Actions()
	second := Actions()
	require.Equal(t, first, second)
	require.Len(t, first, 12)
	require.Equal(t, ActionRewrite, first[0].ID)

	for _, info := range first {
		prompt, err := Prompt(info.ID)
		require.NoError(t, err)
		require.NotEmpty(t, prompt)
		require.NotEmpty(t, info.DisplayName)
	}
}

func TestPrompt_UnknownAction(t *testing.T) {
	_, err := Prompt(Action("definitely-not-an-action"))
	require.Error(t, err)
}
