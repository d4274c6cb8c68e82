package config

import (
	"time"

	"github.com/vietddude/chatpulse/internal/bot"
	"github.com/vietddude/chatpulse/internal/infra/ai"
	"github.com/vietddude/chatpulse/internal/infra/kv"
	"github.com/vietddude/chatpulse/internal/infra/storage/postgres"
)

// AppConfig represents the top-level configuration.
type AppConfig struct {
	Server    ServerConfig    `yaml:"server"`
	Redis     kv.Config       `yaml:"redis"`
	Database  postgres.Config `yaml:"database"`
	AI        ai.Config       `yaml:"ai"`
	Bot       bot.Config      `yaml:"bot"`
	Batch     BatchConfig     `yaml:"batch"`
	Retention RetentionConfig `yaml:"retention"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port int `yaml:"port"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, text
}

// BatchConfig holds bulk-fetch settings.
type BatchConfig struct {
	Concurrency int           `yaml:"concurrency"`
	BatchDelay  time.Duration `yaml:"batch_delay"`
}

// RetentionConfig holds message retention settings.
type RetentionConfig struct {
	Period time.Duration `yaml:"period"` // 0 = infinite
}
