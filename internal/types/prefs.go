package types

// Verbosity controls the requested output length of a generation.
type Verbosity string

const (
	// VerbosityNormal caps output at a small token budget and asks the
	// model for key points only.
	VerbosityNormal Verbosity = "normal"
	// VerbosityDetailed allows a larger token budget with no extra
	// length instruction.
	VerbosityDetailed Verbosity = "detailed"
)

// ProviderID identifies an LLM provider the router can dispatch to.
type ProviderID string

const (
	ProviderGemini ProviderID = "gemini"
	ProviderGPT5   ProviderID = "gpt5"
)

// Valid reports whether p names a known provider.
func (p ProviderID) Valid() bool {
	return p == ProviderGemini || p == ProviderGPT5
}

// Preferences is the per-device settings blob the keyboard client reads and
// writes through the API.
type Preferences struct {
	ResponseMode Verbosity  `json:"response_mode"`
	Provider     ProviderID `json:"provider"`
	ProUser      bool       `json:"pro_user"`
}

// UsageReport describes today's AI usage for the informational counter shown
// in the keyboard. Remaining is -1 for pro users (unlimited).
type UsageReport struct {
	Date      string `json:"date"`
	Used      int    `json:"used"`
	Remaining int    `json:"remaining"`
	Limit     int    `json:"limit"`
}
