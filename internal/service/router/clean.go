package router

import "strings"

// leadInPrefixes is the catalog of boilerplate openers providers emit
// despite the output discipline instructions. Ordered: the first match wins
// and only one prefix is stripped.
var leadInPrefixes = []string{
	"Here's the corrected text:",
	"Here's the improved version:",
	"Here's the formal version:",
	"Here's the creative version:",
	"Here's the summary:",
	"Here's the translation:",
	"Sure, here's",
	"Translation:",
	"Corrected:",
	"Improved:",
	"Summary:",
	"Answer:",
	"Response:",
	"Result:",
}

// markdownTokens are removed globally, not just at the start.
var markdownTokens = []string{"**", "__", "`"}

// Clean strips known boilerplate lead-ins and markdown emphasis from a
// provider response. If cleaning would reduce a non-empty response to
// nothing, the original text is returned instead: an over-aggressive strip
// must never degrade an answer into emptiness.
func Clean(response string) string {
	cleaned := strings.TrimSpace(response)

	for _, prefix := range leadInPrefixes {
		if strings.HasPrefix(cleaned, prefix) {
			cleaned = strings.TrimSpace(strings.TrimPrefix(cleaned, prefix))
			break
		}
	}

	for _, token := range markdownTokens {
		cleaned = strings.ReplaceAll(cleaned, token, "")
	}

	// Stray wrapping quotes left behind once the prefix is gone.
	cleaned = strings.TrimSpace(cleaned)
	if len(cleaned) >= 2 && cleaned[0] == '"' && cleaned[len(cleaned)-1] == '"' {
		cleaned = strings.TrimSpace(cleaned[1 : len(cleaned)-1])
	}

	if cleaned == "" {
		return response
	}
	return cleaned
}
