package types

import (
	"time"

	"github.com/google/uuid"
)

// MessageType distinguishes user-visible chat text from derived entries.
// Only TEXT messages participate in context windows; SUMMARY and SYSTEM
// entries are display-only.
type MessageType string

const (
	MessageTypeText    MessageType = "text"
	MessageTypeSummary MessageType = "summary"
	MessageTypeSystem  MessageType = "system"
)

// Message represents a single message in a conversation. Messages are
// immutable once created and are only removed with their conversation.
type Message struct {
	ID             uuid.UUID   `json:"id"`
	ConversationID uuid.UUID   `json:"conversation_id"`
	Content        string      `json:"content"`
	IsFromUser     bool        `json:"is_from_user"`
	MessageType    MessageType `json:"message_type"`
	CreatedAt      time.Time   `json:"created_at"`
}

// NewMessage creates a TEXT message for the given conversation.
func NewMessage(convID uuid.UUID, content string, fromUser bool) Message {
	return Message{
		ID:             uuid.New(),
		ConversationID: convID,
		Content:        content,
		IsFromUser:     fromUser,
		MessageType:    MessageTypeText,
		CreatedAt:      time.Now().UTC(),
	}
}

// Conversation is an append-only message log plus derived state. The message
// order is semantic: it defines recency for context windowing.
type Conversation struct {
	ID        uuid.UUID `json:"id"`
	Title     string    `json:"title"`
	Messages  []Message `json:"messages"`
	Summary   *string   `json:"summary,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Append adds msg to the log and refreshes UpdatedAt. Existing messages are
// never reordered or mutated in place.
func (c *Conversation) Append(msg Message) {
	c.Messages = append(c.Messages, msg)
	c.UpdatedAt = time.Now().UTC()
}

// TextMessages returns the TEXT-typed messages in append order.
func (c *Conversation) TextMessages() []Message {
	var out []Message
	for _, m := range c.Messages {
		if m.MessageType == MessageTypeText {
			out = append(out, m)
		}
	}
	return out
}

// ConversationSummary is the list-view projection of a conversation,
// returned when browsing history without message bodies.
type ConversationSummary struct {
	ID           uuid.UUID `json:"id"`
	Title        string    `json:"title"`
	MessageCount int       `json:"message_count"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Summarize projects a conversation into its list form.
func (c *Conversation) Summarize() ConversationSummary {
	return ConversationSummary{
		ID:           c.ID,
		Title:        c.Title,
		MessageCount: len(c.Messages),
		CreatedAt:    c.CreatedAt,
		UpdatedAt:    c.UpdatedAt,
	}
}

// NewConversation creates an empty conversation titled for the current time
// of day, matching the keyboard client's "Morning Chat" style labels.
func NewConversation(now time.Time) *Conversation {
	return &Conversation{
		ID:        uuid.New(),
		Title:     titleForHour(now.Hour()),
		CreatedAt: now.UTC(),
		UpdatedAt: now.UTC(),
	}
}

func titleForHour(hour int) string {
	switch {
	case hour >= 5 && hour <= 11:
		return "Morning Chat"
	case hour >= 12 && hour <= 16:
		return "Afternoon Chat"
	case hour >= 17 && hour <= 20:
		return "Evening Chat"
	default:
		return "Night Chat"
	}
}
