package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/vietddude/chatpulse/internal/core/config"
	"github.com/vietddude/chatpulse/internal/infra/storage/postgres"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show stored message counts per chat",
	Run:   runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}
	if cfg.Database.URL == "" {
		fmt.Println("No database URL configured")
		os.Exit(1)
	}

	ctx := context.Background()
	db, err := postgres.NewDB(ctx, cfg.Database)
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer func() {
		_ = db.Close()
	}()

	rows, err := db.QueryContext(ctx,
		`SELECT chat_id, COUNT(*), MAX(message_timestamp) FROM messages GROUP BY chat_id ORDER BY chat_id`)
	if err != nil {
		slog.Error("Failed to query messages", "error", err)
		os.Exit(1)
	}
	defer func() {
		_ = rows.Close()
	}()

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', tabwriter.Debug)
	_, _ = fmt.Fprintln(w, "CHAT\tMESSAGES\tLATEST")

	for rows.Next() {
		var chatID string
		var count int64
		var latest int64
		if err := rows.Scan(&chatID, &count, &latest); err != nil {
			continue
		}
		_, _ = fmt.Fprintf(w, "%s\t%d\t%d\n", chatID, count, latest)
	}
	_ = w.Flush()
}
