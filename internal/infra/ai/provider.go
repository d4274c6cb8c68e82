// Package ai wraps the hosted AI completion providers. Calls are fallible
// and potentially slow; callers are expected to guard them with timeouts
// and a breaker.
package ai

import (
	"context"

	"github.com/vietddude/chatpulse/internal/core/domain"
)

// Provider is a hosted AI completion/analysis backend.
type Provider interface {
	// Complete returns the model's completion for a prompt.
	Complete(ctx context.Context, prompt string) (string, error)

	// Analyze runs profanity analysis over a text.
	Analyze(ctx context.Context, text string) (domain.Analysis, error)
}

// Config holds provider connection configuration.
type Config struct {
	Endpoint string `yaml:"endpoint"`
	APIKey   string `yaml:"api_key"`
	Model    string `yaml:"model"`
}
