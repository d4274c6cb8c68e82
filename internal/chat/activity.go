package chat

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/vietddude/chatpulse/internal/core/domain"
	"github.com/vietddude/chatpulse/internal/infra/storage"
	"github.com/vietddude/chatpulse/internal/metrics"
)

// messageTTL keeps KV message records around long enough for summaries
// while the relational store holds the long-term copy.
const messageTTL = 7 * 24 * time.Hour

// activityTTL keeps daily counters for a month.
const activityTTL = 31 * 24 * time.Hour

// Counters is the per-chat atomic activity counter surface.
type Counters interface {
	IncrActivity(ctx context.Context, chatID, userID, date string, ttl time.Duration) error
	GetActivity(ctx context.Context, chatID, date string) (int64, map[string]int64, error)
}

// ActivityService records incoming messages and serves activity stats.
type ActivityService struct {
	store    Store
	counters Counters
	messages storage.MessageRepository
	log      *slog.Logger
}

// NewActivityService creates an activity service. messages may be nil when
// no relational store is configured.
func NewActivityService(store Store, counters Counters, messages storage.MessageRepository, log *slog.Logger) *ActivityService {
	return &ActivityService{store: store, counters: counters, messages: messages, log: log}
}

// Record stores one incoming message in the KV record set, mirrors it into
// the relational store, and bumps the day's counters.
func (s *ActivityService) Record(ctx context.Context, msg *domain.Message) error {
	raw, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("encode message: %w", err)
	}

	key := fmt.Sprintf("message:%s:%s", msg.ChatID, msg.ID)
	if err := s.store.Put(ctx, key, string(raw), messageTTL); err != nil {
		return fmt.Errorf("store message: %w", err)
	}

	date := time.Unix(msg.Timestamp, 0).UTC().Format("2006-01-02")
	if err := s.counters.IncrActivity(ctx, string(msg.ChatID), string(msg.UserID), date, activityTTL); err != nil {
		// Counters are best effort; the message itself is already stored.
		s.log.Warn("failed to bump activity counters", "chat_id", msg.ChatID, "error", err)
	}

	if s.messages != nil {
		if err := s.messages.Save(ctx, msg); err != nil {
			s.log.Warn("failed to mirror message to database", "chat_id", msg.ChatID, "error", err)
		}
	}

	metrics.MessagesStored.WithLabelValues(string(msg.ChatID)).Inc()
	return nil
}

// Stats returns the day's activity for a chat.
func (s *ActivityService) Stats(ctx context.Context, chatID domain.ChatID, date string) (*domain.ActivityStats, error) {
	total, perUser, err := s.counters.GetActivity(ctx, string(chatID), date)
	if err != nil {
		return nil, fmt.Errorf("get activity: %w", err)
	}

	stats := &domain.ActivityStats{
		ChatID:       chatID,
		Date:         date,
		MessageCount: total,
		PerUser:      make(map[domain.UserID]int64, len(perUser)),
	}
	for user, n := range perUser {
		stats.PerUser[domain.UserID(user)] = n
	}
	return stats, nil
}
