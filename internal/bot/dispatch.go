package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/vietddude/chatpulse/internal/chart"
	"github.com/vietddude/chatpulse/internal/chat"
	"github.com/vietddude/chatpulse/internal/core/domain"
)

// User-facing replies for degraded operation.
const (
	replyDegraded    = "Service temporarily degraded, please try again later."
	replyRateLimited = "Too much history to fetch right now. Try a smaller request or try again later."
	replyEmptyChat   = "Nothing recorded for this chat yet."
)

// Handler dispatches parsed updates to the chat services.
type Handler struct {
	activity *chat.ActivityService
	summary  *chat.SummaryService
	analysis *chat.AnalysisService
	charts   *chart.Builder
	sender   Sender
	log      *slog.Logger
}

// NewHandler creates a webhook handler.
func NewHandler(
	activity *chat.ActivityService,
	summary *chat.SummaryService,
	analysis *chat.AnalysisService,
	charts *chart.Builder,
	sender Sender,
	log *slog.Logger,
) *Handler {
	return &Handler{
		activity: activity,
		summary:  summary,
		analysis: analysis,
		charts:   charts,
		sender:   sender,
		log:      log,
	}
}

// HandleUpdate records the message and dispatches any command. Analysis
// runs for every plain message; its unavailability never fails the update.
func (h *Handler) HandleUpdate(ctx context.Context, upd *Update) error {
	msg := upd.ToDomain()

	switch upd.Command() {
	case "/stats":
		return h.handleStats(ctx, msg.ChatID)
	case "/summary":
		return h.handleSummary(ctx, msg.ChatID)
	case "/profanity":
		return h.handleProfanity(ctx, msg.ChatID)
	case "":
		// Plain message: store it, then analyze.
	default:
		return h.reply(ctx, msg.ChatID, fmt.Sprintf("Unknown command %s", upd.Command()))
	}

	if err := h.activity.Record(ctx, msg); err != nil {
		return fmt.Errorf("record message: %w", err)
	}

	if _, err := h.analysis.Analyze(ctx, msg); err != nil {
		if errors.Is(err, chat.ErrAnalysisUnavailable) {
			// Open breaker: skip silently, the /profanity command surfaces
			// the degraded state when asked.
			h.log.Debug("analysis skipped, breaker open", "chat_id", msg.ChatID)
			return nil
		}
		h.log.Warn("analysis failed", "chat_id", msg.ChatID, "error", err)
	}
	return nil
}

func (h *Handler) handleStats(ctx context.Context, chatID domain.ChatID) error {
	date := time.Now().UTC().Format("2006-01-02")
	stats, err := h.activity.Stats(ctx, chatID, date)
	if err != nil {
		h.log.Error("stats fetch failed", "chat_id", chatID, "error", err)
		return h.reply(ctx, chatID, replyDegraded)
	}
	if stats.MessageCount == 0 {
		return h.reply(ctx, chatID, replyEmptyChat)
	}

	url, err := h.charts.ActivityURL(stats)
	if err != nil {
		return fmt.Errorf("build chart: %w", err)
	}
	text := fmt.Sprintf("%d messages today.\n%s", stats.MessageCount, url)
	return h.reply(ctx, chatID, text)
}

func (h *Handler) handleSummary(ctx context.Context, chatID domain.ChatID) error {
	summary, hist, err := h.summary.Summarize(ctx, chatID)
	if err != nil {
		h.log.Error("summary failed", "chat_id", chatID, "error", err)
		return h.reply(ctx, chatID, replyDegraded)
	}
	if hist != nil && hist.Degraded {
		return h.reply(ctx, chatID, replyDegraded)
	}
	if summary == "" {
		return h.reply(ctx, chatID, replyEmptyChat)
	}
	if hist.RateLimited {
		summary += "\n\n(Some history was skipped: " + replyRateLimited + ")"
	}
	return h.reply(ctx, chatID, summary)
}

func (h *Handler) handleProfanity(ctx context.Context, chatID domain.ChatID) error {
	stats, err := h.analysis.TopWords(ctx, chatID, 10)
	if err != nil {
		h.log.Error("profanity stats failed", "chat_id", chatID, "error", err)
		return h.reply(ctx, chatID, replyDegraded)
	}
	if len(stats) == 0 {
		return h.reply(ctx, chatID, "No flagged words recorded.")
	}

	text := "Top flagged words:\n"
	for i, s := range stats {
		text += fmt.Sprintf("%d. %s: %d\n", i+1, s.Word, s.Count)
	}
	return h.reply(ctx, chatID, text)
}

func (h *Handler) reply(ctx context.Context, chatID domain.ChatID, text string) error {
	if err := h.sender.SendMessage(ctx, string(chatID), text); err != nil {
		return fmt.Errorf("send reply: %w", err)
	}
	return nil
}
