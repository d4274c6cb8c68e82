package postgres

import (
	"context"
	"fmt"

	"github.com/vietddude/chatpulse/internal/core/domain"
)

// ProfanityStatRepo implements storage.ProfanityStatRepository using PostgreSQL.
type ProfanityStatRepo struct {
	db *DB
}

// NewProfanityStatRepo creates a new PostgreSQL profanity stat repository.
func NewProfanityStatRepo(db *DB) *ProfanityStatRepo {
	return &ProfanityStatRepo{db: db}
}

// Record bumps the count for one flagged word.
func (r *ProfanityStatRepo) Record(ctx context.Context, stat *domain.ProfanityStat) error {
	query := `
		INSERT INTO profanity_stats (chat_id, user_id, word, count)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (chat_id, user_id, word) DO UPDATE SET
			count = profanity_stats.count + EXCLUDED.count
	`

	count := stat.Count
	if count <= 0 {
		count = 1
	}

	_, err := r.db.ExecContext(ctx, query,
		string(stat.ChatID),
		string(stat.UserID),
		stat.Word,
		count,
	)
	if err != nil {
		return fmt.Errorf("failed to record profanity stat: %w", err)
	}
	return nil
}

// TopWords retrieves the most frequent flagged words for a chat.
func (r *ProfanityStatRepo) TopWords(ctx context.Context, chatID domain.ChatID, limit int) ([]*domain.ProfanityStat, error) {
	query := `
		SELECT chat_id, user_id, word, count
		FROM profanity_stats
		WHERE chat_id = $1
		ORDER BY count DESC
		LIMIT $2
	`

	var stats []*domain.ProfanityStat
	if err := r.db.SelectContext(ctx, &stats, query, string(chatID), limit); err != nil {
		return nil, fmt.Errorf("failed to query profanity stats: %w", err)
	}
	return stats, nil
}
