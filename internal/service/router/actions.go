package router

import "fmt"

// Action identifies one of the keyboard's smart-bar text transformations.
type Action string

const (
	ActionRewrite    Action = "rewrite"
	ActionSummarize  Action = "summarize"
	ActionExplain    Action = "explain"
	ActionListify    Action = "listify"
	ActionEmojify    Action = "emojify"
	ActionMakeFormal Action = "make_formal"
	ActionTweetify   Action = "tweetify"
	ActionPromptify  Action = "promptify"
	ActionTranslate  Action = "translate"
	ActionCreative   Action = "creative"
	ActionAnswer     Action = "answer"
	ActionLetter     Action = "letter"
)

// ActionInfo describes an action for the catalog endpoint.
type ActionInfo struct {
	ID          Action `json:"id"`
	DisplayName string `json:"display_name"`
}

// actionPrompts maps each action to its instruction prompt.
var actionPrompts = map[Action]struct {
	displayName string
	prompt      string
}{
	ActionRewrite: {"Rewrite", `Fix grammar, spelling, and punctuation errors. Keep the original text style and tone intact.

Text to correct:`},
	ActionSummarize: {"Summarize", `Create a concise summary with the main points.

Text to summarize:`},
	ActionExplain: {"Explain", `Explain this concept clearly and simply.

Text/concept to explain:`},
	ActionListify: {"Listify", `Convert this into a clean bullet point list.

Text to convert to list:`},
	ActionEmojify: {"Emojify", `Add relevant emojis to enhance the text naturally.

Text to emojify:`},
	ActionMakeFormal: {"Make Formal", `Rewrite in a professional, formal tone.

Text to make formal:`},
	ActionTweetify: {"Tweetify", `Rewrite for Twitter under 280 characters. Make it engaging and punchy.

Text to tweetify:`},
	ActionPromptify: {"Promptify", `Improve this as a clear, specific AI prompt with better instructions.

Text to improve as a prompt:`},
	ActionTranslate: {"Translate", `Translate accurately. If English, translate to the most appropriate language. If foreign, translate to English.

Text to translate:`},
	ActionCreative: {"Creative", `Rewrite creatively with vivid, engaging language while keeping the core meaning.

Text to rewrite creatively:`},
	ActionAnswer: {"Answer", `Provide a helpful, accurate answer.

Question/statement to respond to:`},
	ActionLetter: {"Letter", `Transform this text into a well-structured letter format. Include:
- Appropriate greeting (Dear/Hi/Hello based on context)
- Properly formatted body with clear paragraphs
- Professional closing (Sincerely/Best regards/etc.)
- Proper spacing and letter structure
- Maintain the original message content and tone

Text to format as a letter:`},
}

// Actions lists the catalog in a stable order.
func Actions() []ActionInfo {
	order := []Action{
		ActionRewrite, ActionSummarize, ActionExplain, ActionListify,
		ActionEmojify, ActionMakeFormal, ActionTweetify, ActionPromptify,
		ActionTranslate, ActionCreative, ActionAnswer, ActionLetter,
	}
	infos := make([]ActionInfo, 0, len(order))
	for _, a := range order {
		infos = append(infos, ActionInfo{ID: a, DisplayName: actionPrompts[a].displayName})
	}
	return infos
}

// Prompt returns the instruction prompt for an action.
func Prompt(a Action) (string, error) {
	entry, ok := actionPrompts[a]
	if !ok {
		return "", fmt.Errorf("unknown action: %s", a)
	}
	return entry.prompt, nil
}
