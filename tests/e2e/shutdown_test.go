package e2e

import (
	"context"
	"testing"
	"time"

	"github.com/vietddude/chatpulse/internal/control"
	"github.com/vietddude/chatpulse/internal/core/config"
)

func TestGracefulShutdown(t *testing.T) {
	// Empty Redis and database URLs keep everything in memory so the app
	// starts without external services.
	cfg := control.Config{
		Port: 0, // random free port
		Batch: config.BatchConfig{
			Concurrency: 5,
			BatchDelay:  10 * time.Millisecond,
		},
		Retention: config.RetentionConfig{
			Period: time.Hour,
		},
	}

	app, err := control.NewApp(cfg)
	if err != nil {
		t.Fatalf("Failed to create app: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())

	if err := app.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	// Let it run for a bit
	time.Sleep(500 * time.Millisecond)

	cancel()

	stopCtx, stopCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer stopCancel()

	if err := app.Stop(stopCtx); err != nil {
		t.Errorf("Stop failed: %v", err)
	}
}
