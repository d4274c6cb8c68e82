package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/vietddude/chatpulse/internal/core/config"
	"github.com/vietddude/chatpulse/internal/infra/kv"
)

var resetStatsCmd = &cobra.Command{
	Use:   "reset-stats [chat_id] [date]",
	Short: "Clear the activity counters for a chat on a given date (YYYY-MM-DD)",
	Args:  cobra.ExactArgs(2),
	Run:   runResetStats,
}

func init() {
	rootCmd.AddCommand(resetStatsCmd)
}

func runResetStats(cmd *cobra.Command, args []string) {
	chatID, date := args[0], args[1]

	cfg, err := config.Load(cfgPath)
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}
	if cfg.Redis.URL == "" {
		fmt.Println("No redis URL configured; nothing to reset")
		os.Exit(1)
	}

	ctx := context.Background()
	client, err := kv.NewClient(cfg.Redis)
	if err != nil {
		slog.Error("Failed to connect to redis", "error", err)
		os.Exit(1)
	}
	defer func() {
		_ = client.Close()
	}()

	if err := client.ClearActivity(ctx, chatID, date); err != nil {
		slog.Error("Failed to clear activity counters", "error", err)
		os.Exit(1)
	}

	fmt.Printf("Successfully cleared activity counters for %s on %s\n", chatID, date)
}
