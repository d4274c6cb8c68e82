package storage

import (
	"context"

	"github.com/vietddude/chatpulse/internal/core/domain"
)

// MessageRepository handles message storage operations
type MessageRepository interface {
	// Save saves a single message
	Save(ctx context.Context, msg *domain.Message) error

	// SaveBatch saves multiple messages in one transaction
	SaveBatch(ctx context.Context, msgs []*domain.Message) error

	// GetRecent retrieves the most recent messages for a chat
	GetRecent(ctx context.Context, chatID domain.ChatID, limit int) ([]*domain.Message, error)

	// CountByChat counts stored messages per chat
	CountByChat(ctx context.Context, chatID domain.ChatID) (int64, error)

	// DeleteOlderThan deletes messages older than the given unix timestamp
	DeleteOlderThan(ctx context.Context, threshold int64) error
}

// ProfanityStatRepository handles aggregated profanity counts
type ProfanityStatRepository interface {
	// Record bumps the count for one flagged word
	Record(ctx context.Context, stat *domain.ProfanityStat) error

	// TopWords retrieves the most frequent flagged words for a chat
	TopWords(ctx context.Context, chatID domain.ChatID, limit int) ([]*domain.ProfanityStat, error)
}
