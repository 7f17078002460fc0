// Package storage defines the conversation persistence contract. Two
// backends implement it: the key-value store (Redis) mirroring the keyboard
// client's blob layout, and Postgres for durable deployments.
package storage

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/sendright/ai-backend/internal/types"
)

// ErrNotFound is returned when a conversation does not exist.
var ErrNotFound = errors.New("not found")

// MaxConversations caps the per-device history list. Older conversations
// fall off the end, most-recently-updated first.
const MaxConversations = 50

// ConversationStore persists conversations per device public key. There is
// a single "current conversation" slot plus a bounded history list.
type ConversationStore interface {
	// Current returns the active conversation, or ErrNotFound when the
	// device has none yet.
	Current(ctx context.Context, publicKey string) (*types.Conversation, error)

	// SaveCurrent writes the conversation into the current slot and
	// mirrors it into the history list, trimming past MaxConversations.
	SaveCurrent(ctx context.Context, publicKey string, conv *types.Conversation) error

	// List returns history summaries, most recently updated first.
	List(ctx context.Context, publicKey string) ([]types.ConversationSummary, error)

	// Load fetches a conversation from history and makes it current.
	Load(ctx context.Context, publicKey string, id uuid.UUID) (*types.Conversation, error)

	// Delete removes a conversation. Deleting the current conversation
	// clears the current slot.
	Delete(ctx context.Context, publicKey string, id uuid.UUID) error

	// Clear removes all conversations for the device.
	Clear(ctx context.Context, publicKey string) error
}
