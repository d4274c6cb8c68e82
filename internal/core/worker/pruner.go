package worker

import (
	"context"
	"log/slog"
	"time"

	"github.com/vietddude/chatpulse/internal/core/config"
	"github.com/vietddude/chatpulse/internal/infra/storage"
)

// Pruner deletes old messages based on retention policy.
type Pruner struct {
	cfg      config.RetentionConfig
	messages storage.MessageRepository
}

// NewPruner creates a new Pruner worker.
func NewPruner(cfg config.RetentionConfig, messages storage.MessageRepository) *Pruner {
	return &Pruner{cfg: cfg, messages: messages}
}

// Start runs the pruner loop.
func (p *Pruner) Start(ctx context.Context) {
	if p.cfg.Period <= 0 || p.messages == nil {
		return // Retention disabled
	}

	// Calculate check interval (e.g., 10% of retention period, but max 1 hour)
	interval := min(p.cfg.Period/10, 1*time.Hour)
	interval = max(interval, 1*time.Minute)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	// Initial prune
	p.prune(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.prune(ctx)
		}
	}
}

func (p *Pruner) prune(ctx context.Context) {
	threshold := time.Now().Add(-p.cfg.Period).Unix()

	if err := p.messages.DeleteOlderThan(ctx, threshold); err != nil {
		slog.Error("pruner failed to delete old messages", "error", err)
	}
}
