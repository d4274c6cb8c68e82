// Package chat composes the resilient call layer with the KV store, the
// relational store, and the AI providers into the bot-facing services.
package chat

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/vietddude/chatpulse/internal/batch"
	"github.com/vietddude/chatpulse/internal/core/domain"
	"github.com/vietddude/chatpulse/internal/metrics"
)

// Store is the hosted key-value record set the history layer reads from.
type Store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	List(ctx context.Context, prefix string, cursor uint64) ([]string, uint64, error)
	Put(ctx context.Context, key, value string, ttl time.Duration) error
}

// HistoryResult is a chat history fetch plus its degradation flags, which
// the bot layer turns into user-facing messaging.
type HistoryResult struct {
	Messages    []domain.Message
	Partial     bool // some records could not be fetched
	Degraded    bool // the run aborted on critical failure
	RateLimited bool // the store pushed back during the run
}

// HistoryService bulk-fetches chat history from the KV store without
// exceeding the store's per-invocation call ceiling.
type HistoryService struct {
	store Store
	cfg   batch.Config
	log   *slog.Logger
}

// NewHistoryService creates a history service. A zero cfg falls back to
// batch.DefaultConfig.
func NewHistoryService(store Store, cfg batch.Config, log *slog.Logger) *HistoryService {
	if cfg.Concurrency <= 0 {
		cfg = batch.DefaultConfig
	}
	return &HistoryService{store: store, cfg: cfg, log: log}
}

// Fetch lists all message keys for a chat and bulk-fetches their records.
// Individual fetch failures degrade the result instead of failing it; only
// a key-listing failure is returned as an error.
func (s *HistoryService) Fetch(ctx context.Context, chatID domain.ChatID) (*HistoryResult, error) {
	prefix := fmt.Sprintf("message:%s:", chatID)

	var keys []string
	var cursor uint64
	for {
		page, next, err := s.store.List(ctx, prefix, cursor)
		if err != nil {
			return nil, fmt.Errorf("list message keys: %w", err)
		}
		keys = append(keys, page...)
		if next == 0 {
			break
		}
		cursor = next
	}

	res := batch.Run(ctx, keys, s.fetchOne, s.cfg)

	metrics.BatchItemsTotal.WithLabelValues("success").Add(float64(res.TotalProcessed - res.TotalFailed))
	metrics.BatchItemsTotal.WithLabelValues("failure").Add(float64(res.TotalFailed))
	for i := range res.Errors {
		metrics.BatchFailuresTotal.WithLabelValues(string(res.Errors[i].Kind)).Inc()
	}
	if res.HasCriticalFailures {
		metrics.BatchAbortsTotal.Inc()
	}

	if res.TotalFailed > 0 {
		s.log.Warn("history fetch degraded",
			"chat_id", chatID,
			"keys", len(keys),
			"failed", res.TotalFailed,
			"success_rate", res.SuccessRate,
			"rate_limited", res.HasRateLimitErrors,
			"critical", res.HasCriticalFailures,
		)
	}

	msgs := make([]domain.Message, 0, len(res.Results))
	for _, m := range res.Results {
		if m != nil {
			msgs = append(msgs, *m)
		}
	}
	sort.Slice(msgs, func(i, j int) bool { return msgs[i].Timestamp < msgs[j].Timestamp })

	return &HistoryResult{
		Messages:    msgs,
		Partial:     res.TotalFailed > 0,
		Degraded:    res.HasCriticalFailures,
		RateLimited: res.HasRateLimitErrors,
	}, nil
}

// fetchOne fetches and decodes a single message record. An absent key is
// not a failure: the record may have expired between listing and fetching.
func (s *HistoryService) fetchOne(ctx context.Context, key string) (*domain.Message, error) {
	raw, found, err := s.store.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}

	var msg domain.Message
	if err := json.Unmarshal([]byte(raw), &msg); err != nil {
		return nil, fmt.Errorf("decode message %s: %w", key, err)
	}
	return &msg, nil
}
