package postgres

import (
	"context"
	"fmt"

	"github.com/vietddude/chatpulse/internal/core/domain"
)

// MessageRepo implements storage.MessageRepository using PostgreSQL.
type MessageRepo struct {
	db *DB
}

// NewMessageRepo creates a new PostgreSQL message repository.
func NewMessageRepo(db *DB) *MessageRepo {
	return &MessageRepo{db: db}
}

// Save saves a message to the database.
func (r *MessageRepo) Save(ctx context.Context, msg *domain.Message) error {
	query := `
		INSERT INTO messages (id, chat_id, user_id, username, body, message_timestamp)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
			body = EXCLUDED.body,
			message_timestamp = EXCLUDED.message_timestamp
	`

	_, err := r.db.ExecContext(ctx, query,
		msg.ID,
		string(msg.ChatID),
		string(msg.UserID),
		msg.Username,
		msg.Text,
		msg.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("failed to save message: %w", err)
	}
	return nil
}

// SaveBatch saves multiple messages to the database.
func (r *MessageRepo) SaveBatch(ctx context.Context, msgs []*domain.Message) error {
	if len(msgs) == 0 {
		return nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := `
		INSERT INTO messages (id, chat_id, user_id, username, body, message_timestamp)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
			body = EXCLUDED.body,
			message_timestamp = EXCLUDED.message_timestamp
	`

	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, msg := range msgs {
		_, err := stmt.ExecContext(ctx,
			msg.ID,
			string(msg.ChatID),
			string(msg.UserID),
			msg.Username,
			msg.Text,
			msg.Timestamp,
		)
		if err != nil {
			return fmt.Errorf("failed to save message %s: %w", msg.ID, err)
		}
	}

	return tx.Commit()
}

// GetRecent retrieves the most recent messages for a chat, newest first.
func (r *MessageRepo) GetRecent(ctx context.Context, chatID domain.ChatID, limit int) ([]*domain.Message, error) {
	query := `
		SELECT id, chat_id, user_id, username, body, message_timestamp
		FROM messages
		WHERE chat_id = $1
		ORDER BY message_timestamp DESC
		LIMIT $2
	`

	rows, err := r.db.QueryxContext(ctx, query, string(chatID), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query messages: %w", err)
	}
	defer rows.Close()

	var msgs []*domain.Message
	for rows.Next() {
		var m domain.Message
		if err := rows.Scan(&m.ID, &m.ChatID, &m.UserID, &m.Username, &m.Text, &m.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		msgs = append(msgs, &m)
	}
	return msgs, rows.Err()
}

// CountByChat counts stored messages for a chat.
func (r *MessageRepo) CountByChat(ctx context.Context, chatID domain.ChatID) (int64, error) {
	var count int64
	err := r.db.GetContext(ctx, &count,
		`SELECT COUNT(*) FROM messages WHERE chat_id = $1`, string(chatID))
	if err != nil {
		return 0, fmt.Errorf("failed to count messages: %w", err)
	}
	return count, nil
}

// DeleteOlderThan deletes messages older than the given unix timestamp.
func (r *MessageRepo) DeleteOlderThan(ctx context.Context, threshold int64) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM messages WHERE message_timestamp < $1`, threshold)
	if err != nil {
		return fmt.Errorf("failed to delete old messages: %w", err)
	}
	return nil
}
