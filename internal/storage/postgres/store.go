package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sendright/ai-backend/internal/storage"
	"github.com/sendright/ai-backend/internal/types"
)

// Store implements storage.ConversationStore on Postgres. Messages are
// append-only rows keyed by their position in the conversation; saving a
// conversation inserts only the rows that are new.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore creates a conversation store on the given pool.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Current implements storage.ConversationStore.
func (s *Store) Current(ctx context.Context, publicKey string) (*types.Conversation, error) {
	var convID uuid.UUID
	err := s.pool.QueryRow(ctx,
		`SELECT conversation_id FROM current_conversations WHERE public_key = $1`,
		publicKey,
	).Scan(&convID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get current pointer: %w", err)
	}
	return s.get(ctx, publicKey, convID)
}

// SaveCurrent implements storage.ConversationStore.
func (s *Store) SaveCurrent(ctx context.Context, publicKey string, conv *types.Conversation) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO conversations (id, public_key, title, summary, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE
		SET title = EXCLUDED.title, summary = EXCLUDED.summary, updated_at = EXCLUDED.updated_at`,
		conv.ID, publicKey, conv.Title, conv.Summary, conv.CreatedAt, conv.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert conversation: %w", err)
	}

	// Messages are immutable: only rows not yet present are inserted.
	for seq, msg := range conv.Messages {
		_, err = tx.Exec(ctx, `
			INSERT INTO messages (id, conversation_id, content, is_from_user, message_type, created_at, seq)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			ON CONFLICT (id) DO NOTHING`,
			msg.ID, conv.ID, msg.Content, msg.IsFromUser, string(msg.MessageType), msg.CreatedAt, seq,
		)
		if err != nil {
			return fmt.Errorf("insert message: %w", err)
		}
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO current_conversations (public_key, conversation_id)
		VALUES ($1, $2)
		ON CONFLICT (public_key) DO UPDATE SET conversation_id = EXCLUDED.conversation_id`,
		publicKey, conv.ID,
	)
	if err != nil {
		return fmt.Errorf("set current pointer: %w", err)
	}

	// Trim history past the cap, oldest-updated first.
	_, err = tx.Exec(ctx, `
		DELETE FROM conversations
		WHERE public_key = $1 AND id NOT IN (
			SELECT id FROM conversations
			WHERE public_key = $1
			ORDER BY updated_at DESC
			LIMIT $2
		)`,
		publicKey, storage.MaxConversations,
	)
	if err != nil {
		return fmt.Errorf("trim conversations: %w", err)
	}

	return tx.Commit(ctx)
}

// List implements storage.ConversationStore.
func (s *Store) List(ctx context.Context, publicKey string) ([]types.ConversationSummary, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT c.id, c.title, c.created_at, c.updated_at,
		       (SELECT count(*) FROM messages m WHERE m.conversation_id = c.id)
		FROM conversations c
		WHERE c.public_key = $1
		ORDER BY c.updated_at DESC
		LIMIT $2`,
		publicKey, storage.MaxConversations,
	)
	if err != nil {
		return nil, fmt.Errorf("list conversations: %w", err)
	}
	defer rows.Close()

	var summaries []types.ConversationSummary
	for rows.Next() {
		var cs types.ConversationSummary
		if err := rows.Scan(&cs.ID, &cs.Title, &cs.CreatedAt, &cs.UpdatedAt, &cs.MessageCount); err != nil {
			return nil, fmt.Errorf("scan conversation: %w", err)
		}
		summaries = append(summaries, cs)
	}
	return summaries, rows.Err()
}

// Load implements storage.ConversationStore.
func (s *Store) Load(ctx context.Context, publicKey string, id uuid.UUID) (*types.Conversation, error) {
	conv, err := s.get(ctx, publicKey, id)
	if err != nil {
		return nil, err
	}

	_, err = s.pool.Exec(ctx, `
		INSERT INTO current_conversations (public_key, conversation_id)
		VALUES ($1, $2)
		ON CONFLICT (public_key) DO UPDATE SET conversation_id = EXCLUDED.conversation_id`,
		publicKey, id,
	)
	if err != nil {
		return nil, fmt.Errorf("set current pointer: %w", err)
	}
	return conv, nil
}

// Delete implements storage.ConversationStore. The current pointer and
// messages go with the conversation via ON DELETE CASCADE.
func (s *Store) Delete(ctx context.Context, publicKey string, id uuid.UUID) error {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM conversations WHERE id = $1 AND public_key = $2`,
		id, publicKey,
	)
	if err != nil {
		return fmt.Errorf("delete conversation: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// Clear implements storage.ConversationStore.
func (s *Store) Clear(ctx context.Context, publicKey string) error {
	_, err := s.pool.Exec(ctx,
		`DELETE FROM conversations WHERE public_key = $1`,
		publicKey,
	)
	if err != nil {
		return fmt.Errorf("clear conversations: %w", err)
	}
	return nil
}

func (s *Store) get(ctx context.Context, publicKey string, id uuid.UUID) (*types.Conversation, error) {
	var conv types.Conversation
	err := s.pool.QueryRow(ctx, `
		SELECT id, title, summary, created_at, updated_at
		FROM conversations
		WHERE id = $1 AND public_key = $2`,
		id, publicKey,
	).Scan(&conv.ID, &conv.Title, &conv.Summary, &conv.CreatedAt, &conv.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get conversation: %w", err)
	}

	rows, err := s.pool.Query(ctx, `
		SELECT id, content, is_from_user, message_type, created_at
		FROM messages
		WHERE conversation_id = $1
		ORDER BY seq`,
		id,
	)
	if err != nil {
		return nil, fmt.Errorf("get messages: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		msg := types.Message{ConversationID: id}
		var msgType string
		if err := rows.Scan(&msg.ID, &msg.Content, &msg.IsFromUser, &msgType, &msg.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		msg.MessageType = types.MessageType(msgType)
		conv.Messages = append(conv.Messages, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &conv, nil
}
