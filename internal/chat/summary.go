package chat

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/vietddude/chatpulse/internal/core/domain"
	"github.com/vietddude/chatpulse/internal/infra/ai"
	"github.com/vietddude/chatpulse/internal/metrics"
)

// maxSummaryMessages caps how much history goes into one prompt.
const maxSummaryMessages = 200

// SummaryService produces AI-generated summaries of recent chat history.
type SummaryService struct {
	history  *HistoryService
	provider ai.Provider
	log      *slog.Logger
}

// NewSummaryService creates a summary service.
func NewSummaryService(history *HistoryService, provider ai.Provider, log *slog.Logger) *SummaryService {
	return &SummaryService{history: history, provider: provider, log: log}
}

// Summarize fetches the chat's history and asks the provider for a summary.
// A partial history still produces a summary; the degradation flags ride
// along so the bot layer can annotate the reply.
func (s *SummaryService) Summarize(ctx context.Context, chatID domain.ChatID) (string, *HistoryResult, error) {
	hist, err := s.history.Fetch(ctx, chatID)
	if err != nil {
		return "", nil, fmt.Errorf("fetch history: %w", err)
	}
	if len(hist.Messages) == 0 {
		return "", hist, nil
	}

	msgs := hist.Messages
	if len(msgs) > maxSummaryMessages {
		msgs = msgs[len(msgs)-maxSummaryMessages:]
	}

	var b strings.Builder
	b.WriteString("Summarize the following chat conversation in a few sentences:\n\n")
	for _, m := range msgs {
		fmt.Fprintf(&b, "%s: %s\n", m.Username, m.Text)
	}

	start := time.Now()
	summary, err := s.provider.Complete(ctx, b.String())
	metrics.AILatency.WithLabelValues("complete").Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.AICallsTotal.WithLabelValues("complete", "error").Inc()
		return "", hist, fmt.Errorf("complete summary: %w", err)
	}
	metrics.AICallsTotal.WithLabelValues("complete", "ok").Inc()

	return summary, hist, nil
}
