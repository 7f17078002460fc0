package ai

import (
	"strings"

	"github.com/sendright/ai-backend/internal/types"
)

// outputDiscipline is the format contract appended to every generation
// prompt. Providers do not reliably obey free-text instructions, so the
// router additionally strips known violating prefixes from responses.
const outputDiscipline = `CRITICAL OUTPUT REQUIREMENTS:
- Output ONLY the converted/processed text
- NO prefixes like "Answer:", "Response:", "Result:", "Converted:", "Translation:", "Corrected:", "Summary:", etc.
- NO explanatory sentences, instructions, or commentary
- NO formatting markers, quotes, or extra punctuation
- NO phrases like "Here's", "Sure,", "I'll help you", "The result is", etc.
- Start immediately with the actual content`

// concisionInstruction is added in normal verbosity only.
const concisionInstruction = `
- Keep response concise and under 300 words
- Focus on key points only`

// BuildPrompt combines the action instruction, the user text and the output
// discipline block into the single prompt string sent to combined-prompt
// providers.
func BuildPrompt(req *Request) string {
	var sb strings.Builder
	if req.Instruction != "" {
		sb.WriteString(req.Instruction)
		sb.WriteString("\n\n")
	}
	sb.WriteString("User Input: ")
	sb.WriteString(req.Input)
	sb.WriteString("\n\n")
	sb.WriteString(outputDiscipline)
	if req.Verbosity == types.VerbosityNormal {
		sb.WriteString(concisionInstruction)
	}
	return sb.String()
}

// BuildSystemPrompt renders the instruction plus discipline block as a
// system message for chat-style providers. Returns empty when there is no
// instruction, in which case the provider gets the user text alone.
func BuildSystemPrompt(req *Request) string {
	if req.Instruction == "" {
		return ""
	}
	var sb strings.Builder
	sb.WriteString(req.Instruction)
	sb.WriteString("\n\n")
	sb.WriteString(outputDiscipline)
	if req.Verbosity == types.VerbosityNormal {
		sb.WriteString(concisionInstruction)
	}
	return sb.String()
}
