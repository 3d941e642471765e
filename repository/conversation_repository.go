package repository

import (
	"context"
	"errors"
	"time"

	"aurora-backend/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ConversationRepository handles database operations for conversations and
// their messages. Every operation except Create is scoped by
// (conversation id, owner id): a miss for any reason surfaces as
// models.ErrConversationNotFound, so callers cannot tell a foreign
// conversation from a missing one.
type ConversationRepository struct {
	db *pgxpool.Pool
}

// NewConversationRepository creates a new conversation repository
func NewConversationRepository(db *pgxpool.Pool) *ConversationRepository {
	return &ConversationRepository{db: db}
}

// Create inserts a conversation together with its initial messages in one
// transaction.
func (r *ConversationRepository) Create(ctx context.Context, conv *models.Conversation) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	err = tx.QueryRow(ctx, `
		INSERT INTO conversations (user_id, title, last_activity)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at`,
		conv.UserID, conv.Title, conv.LastActivity,
	).Scan(&conv.ID, &conv.CreatedAt, &conv.UpdatedAt)
	if err != nil {
		return err
	}

	for _, msg := range conv.Messages {
		_, err = tx.Exec(ctx, `
			INSERT INTO messages (conversation_id, role, content, created_at)
			VALUES ($1, $2, $3, $4)`,
			conv.ID, msg.Role, msg.Content, msg.Timestamp,
		)
		if err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

// AppendMessages appends messages to a conversation owned by userID and bumps
// last_activity, all in a single transaction so no partial append is ever
// observable. Returns the new last_activity timestamp.
func (r *ConversationRepository) AppendMessages(ctx context.Context, convID, userID uuid.UUID, messages ...models.Message) (time.Time, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return time.Time{}, err
	}
	defer tx.Rollback(ctx)

	// The update doubles as the ownership check and locks the row for the
	// duration of the append.
	var lastActivity time.Time
	err = tx.QueryRow(ctx, `
		UPDATE conversations
		SET last_activity = NOW(), updated_at = NOW()
		WHERE id = $1 AND user_id = $2
		RETURNING last_activity`,
		convID, userID,
	).Scan(&lastActivity)
	if errors.Is(err, pgx.ErrNoRows) {
		return time.Time{}, models.ErrConversationNotFound
	}
	if err != nil {
		return time.Time{}, err
	}

	for _, msg := range messages {
		_, err = tx.Exec(ctx, `
			INSERT INTO messages (conversation_id, role, content, created_at)
			VALUES ($1, $2, $3, $4)`,
			convID, msg.Role, msg.Content, msg.Timestamp,
		)
		if err != nil {
			return time.Time{}, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return time.Time{}, err
	}
	return lastActivity, nil
}

// ListByUser retrieves conversation summaries for a user, most recently
// active first. Message bodies are not loaded.
func (r *ConversationRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.ConversationSummary, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, title, last_activity, created_at
		FROM conversations
		WHERE user_id = $1
		ORDER BY last_activity DESC`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	summaries := []models.ConversationSummary{}
	for rows.Next() {
		var s models.ConversationSummary
		if err := rows.Scan(&s.ID, &s.Title, &s.LastActivity, &s.CreatedAt); err != nil {
			return nil, err
		}
		summaries = append(summaries, s)
	}

	return summaries, rows.Err()
}

// GetByIDAndUser retrieves a conversation with its full message list
func (r *ConversationRepository) GetByIDAndUser(ctx context.Context, convID, userID uuid.UUID) (*models.Conversation, error) {
	conv := &models.Conversation{}
	err := r.db.QueryRow(ctx, `
		SELECT id, user_id, title, last_activity, created_at, updated_at
		FROM conversations
		WHERE id = $1 AND user_id = $2`,
		convID, userID,
	).Scan(&conv.ID, &conv.UserID, &conv.Title, &conv.LastActivity, &conv.CreatedAt, &conv.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrConversationNotFound
	}
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, `
		SELECT role, content, created_at
		FROM messages
		WHERE conversation_id = $1
		ORDER BY id`,
		convID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	conv.Messages = []models.Message{}
	for rows.Next() {
		var msg models.Message
		if err := rows.Scan(&msg.Role, &msg.Content, &msg.Timestamp); err != nil {
			return nil, err
		}
		conv.Messages = append(conv.Messages, msg)
	}

	return conv, rows.Err()
}

// DeleteByIDAndUser deletes a conversation owned by userID. Messages go with
// it via ON DELETE CASCADE.
func (r *ConversationRepository) DeleteByIDAndUser(ctx context.Context, convID, userID uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM conversations WHERE id = $1 AND user_id = $2`, convID, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return models.ErrConversationNotFound
	}
	return nil
}
