// Package kvstore persists conversations as JSON blobs in a kv.Store,
// mirroring the keyboard client's preference-storage layout: one current
// conversation slot plus a capped most-recently-updated history list.
package kvstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/sendright/ai-backend/internal/storage"
	"github.com/sendright/ai-backend/internal/storage/kv"
	"github.com/sendright/ai-backend/internal/types"
)

const (
	currentKeyFmt = "chat:%s:current_conversation"
	listKeyFmt    = "chat:%s:conversations_list"
)

// Store implements storage.ConversationStore on a kv.Store.
type Store struct {
	kv kv.Store
}

// New creates a conversation store backed by the given key-value store.
func New(kvs kv.Store) *Store {
	return &Store{kv: kvs}
}

func currentKey(publicKey string) string {
	return fmt.Sprintf(currentKeyFmt, publicKey)
}

func listKey(publicKey string) string {
	return fmt.Sprintf(listKeyFmt, publicKey)
}

// Current implements storage.ConversationStore.
func (s *Store) Current(ctx context.Context, publicKey string) (*types.Conversation, error) {
	raw, err := s.kv.Get(ctx, currentKey(publicKey))
	if err != nil {
		if errors.Is(err, kv.ErrNotFound) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get current conversation: %w", err)
	}

	var conv types.Conversation
	if err := json.Unmarshal([]byte(raw), &conv); err != nil {
		return nil, fmt.Errorf("decode current conversation: %w", err)
	}
	return &conv, nil
}

// SaveCurrent implements storage.ConversationStore.
func (s *Store) SaveCurrent(ctx context.Context, publicKey string, conv *types.Conversation) error {
	raw, err := json.Marshal(conv)
	if err != nil {
		return fmt.Errorf("encode conversation: %w", err)
	}
	if err := s.kv.Set(ctx, currentKey(publicKey), string(raw), 0); err != nil {
		return fmt.Errorf("save current conversation: %w", err)
	}
	return s.saveToList(ctx, publicKey, conv)
}

// saveToList mirrors conv into the history blob under a guarded
// read-modify-write, replacing any entry with the same id, sorting by
// UpdatedAt descending and trimming to MaxConversations.
func (s *Store) saveToList(ctx context.Context, publicKey string, conv *types.Conversation) error {
	return s.kv.Update(ctx, listKey(publicKey), func(current string, exists bool) (string, error) {
		convs, err := decodeList(current, exists)
		if err != nil {
			return "", err
		}

		replaced := false
		for i := range convs {
			if convs[i].ID == conv.ID {
				convs[i] = *conv
				replaced = true
				break
			}
		}
		if !replaced {
			convs = append(convs, *conv)
		}

		sort.SliceStable(convs, func(i, j int) bool {
			return convs[i].UpdatedAt.After(convs[j].UpdatedAt)
		})
		if len(convs) > storage.MaxConversations {
			convs = convs[:storage.MaxConversations]
		}

		raw, err := json.Marshal(convs)
		if err != nil {
			return "", fmt.Errorf("encode conversations list: %w", err)
		}
		return string(raw), nil
	})
}

// List implements storage.ConversationStore.
func (s *Store) List(ctx context.Context, publicKey string) ([]types.ConversationSummary, error) {
	convs, err := s.loadList(ctx, publicKey)
	if err != nil {
		return nil, err
	}
	summaries := make([]types.ConversationSummary, len(convs))
	for i := range convs {
		summaries[i] = convs[i].Summarize()
	}
	return summaries, nil
}

// Load implements storage.ConversationStore.
func (s *Store) Load(ctx context.Context, publicKey string, id uuid.UUID) (*types.Conversation, error) {
	convs, err := s.loadList(ctx, publicKey)
	if err != nil {
		return nil, err
	}
	for i := range convs {
		if convs[i].ID == id {
			conv := convs[i]
			raw, err := json.Marshal(&conv)
			if err != nil {
				return nil, fmt.Errorf("encode conversation: %w", err)
			}
			if err := s.kv.Set(ctx, currentKey(publicKey), string(raw), 0); err != nil {
				return nil, fmt.Errorf("set current conversation: %w", err)
			}
			return &conv, nil
		}
	}
	return nil, storage.ErrNotFound
}

// Delete implements storage.ConversationStore.
func (s *Store) Delete(ctx context.Context, publicKey string, id uuid.UUID) error {
	found := false
	err := s.kv.Update(ctx, listKey(publicKey), func(current string, exists bool) (string, error) {
		convs, err := decodeList(current, exists)
		if err != nil {
			return "", err
		}

		kept := convs[:0]
		for _, c := range convs {
			if c.ID == id {
				found = true
				continue
			}
			kept = append(kept, c)
		}

		raw, err := json.Marshal(kept)
		if err != nil {
			return "", fmt.Errorf("encode conversations list: %w", err)
		}
		return string(raw), nil
	})
	if err != nil {
		return err
	}
	if !found {
		return storage.ErrNotFound
	}

	// Clear the current slot if it pointed at the deleted conversation.
	cur, err := s.Current(ctx, publicKey)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil
		}
		return err
	}
	if cur.ID == id {
		return s.kv.Delete(ctx, currentKey(publicKey))
	}
	return nil
}

// Clear implements storage.ConversationStore.
func (s *Store) Clear(ctx context.Context, publicKey string) error {
	if err := s.kv.Delete(ctx, currentKey(publicKey)); err != nil {
		return fmt.Errorf("clear current conversation: %w", err)
	}
	if err := s.kv.Delete(ctx, listKey(publicKey)); err != nil {
		return fmt.Errorf("clear conversations list: %w", err)
	}
	return nil
}

func (s *Store) loadList(ctx context.Context, publicKey string) ([]types.Conversation, error) {
	raw, err := s.kv.Get(ctx, listKey(publicKey))
	if err != nil {
		if errors.Is(err, kv.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get conversations list: %w", err)
	}
	return decodeList(raw, true)
}

func decodeList(raw string, exists bool) ([]types.Conversation, error) {
	if !exists || raw == "" {
		return nil, nil
	}
	var convs []types.Conversation
	if err := json.Unmarshal([]byte(raw), &convs); err != nil {
		return nil, fmt.Errorf("decode conversations list: %w", err)
	}
	return convs, nil
}
