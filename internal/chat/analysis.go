package chat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/vietddude/chatpulse/internal/breaker"
	"github.com/vietddude/chatpulse/internal/core/domain"
	"github.com/vietddude/chatpulse/internal/infra/ai"
	"github.com/vietddude/chatpulse/internal/infra/storage"
	"github.com/vietddude/chatpulse/internal/metrics"
)

// DefaultAnalysisTimeout bounds one guarded provider call. A timed-out call
// counts as a breaker failure like any other.
const DefaultAnalysisTimeout = 10 * time.Second

// ErrAnalysisUnavailable is returned when analysis is skipped because the
// provider is degraded (open breaker).
var ErrAnalysisUnavailable = errors.New("analysis temporarily unavailable")

// AnalysisService runs breaker-guarded profanity analysis and aggregates
// flagged words into the relational store.
type AnalysisService struct {
	provider ai.Provider
	breaker  *breaker.Breaker
	stats    storage.ProfanityStatRepository
	timeout  time.Duration
	log      *slog.Logger
}

// NewAnalysisService creates an analysis service with its own breaker
// instance; breaker state is never shared across call sites.
func NewAnalysisService(provider ai.Provider, stats storage.ProfanityStatRepository, log *slog.Logger) *AnalysisService {
	return &AnalysisService{
		provider: provider,
		breaker:  breaker.New(breaker.DefaultConfig),
		stats:    stats,
		timeout:  DefaultAnalysisTimeout,
		log:      log,
	}
}

// Analyze runs one guarded analysis call for a message and records any
// flagged words. When the breaker is open the provider is never touched and
// ErrAnalysisUnavailable is returned immediately.
func (s *AnalysisService) Analyze(ctx context.Context, msg *domain.Message) (domain.Analysis, error) {
	start := time.Now()

	analysis, err := breaker.Execute(ctx, s.breaker, func(ctx context.Context) (domain.Analysis, error) {
		ctx, cancel := context.WithTimeout(ctx, s.timeout)
		defer cancel()
		return s.provider.Analyze(ctx, msg.Text)
	})

	metrics.AILatency.WithLabelValues("analyze").Observe(time.Since(start).Seconds())
	if s.breaker.Stats().Open {
		metrics.BreakerOpen.Set(1)
	} else {
		metrics.BreakerOpen.Set(0)
	}

	if err != nil {
		if errors.Is(err, breaker.ErrCircuitOpen) {
			metrics.BreakerShortCircuitsTotal.Inc()
			return domain.Analysis{}, ErrAnalysisUnavailable
		}
		metrics.AICallsTotal.WithLabelValues("analyze", "error").Inc()
		return domain.Analysis{}, fmt.Errorf("analyze message: %w", err)
	}
	metrics.AICallsTotal.WithLabelValues("analyze", "ok").Inc()

	if analysis.HasFlag {
		for _, item := range analysis.Items {
			stat := &domain.ProfanityStat{
				ChatID: msg.ChatID,
				UserID: msg.UserID,
				Word:   item.Word,
				Count:  1,
			}
			if err := s.stats.Record(ctx, stat); err != nil {
				s.log.Warn("failed to record profanity stat",
					"chat_id", msg.ChatID, "word", item.Word, "error", err)
			}
		}
	}

	return analysis, nil
}

// TopWords returns the chat's most frequent flagged words.
func (s *AnalysisService) TopWords(ctx context.Context, chatID domain.ChatID, limit int) ([]*domain.ProfanityStat, error) {
	return s.stats.TopWords(ctx, chatID, limit)
}
