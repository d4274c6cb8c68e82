package chat

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/vietddude/chatpulse/internal/batch"
)

func TestSummarize_BuildsPromptFromHistory(t *testing.T) {
	store := &fakeStore{data: map[string]string{}}
	for i := 1; i <= 3; i++ {
		k, v := storedMessage(t, "c1", i)
		store.data[k] = v
	}
	provider := &fakeProvider{completeText: "they talked about lunch"}

	history := NewHistoryService(store, batch.Config{Concurrency: 2}, testLogger())
	svc := NewSummaryService(history, provider, testLogger())

	summary, hist, err := svc.Summarize(context.Background(), "c1")
	if err != nil {
		t.Fatalf("Summarize failed: %v", err)
	}
	if summary != "they talked about lunch" {
		t.Errorf("summary = %q", summary)
	}
	if hist.Partial {
		t.Error("unexpected Partial flag")
	}
	if !strings.Contains(provider.lastPrompt, "alice: message 2") {
		t.Errorf("prompt missing history line:\n%s", provider.lastPrompt)
	}
}

func TestSummarize_EmptyChat(t *testing.T) {
	store := &fakeStore{data: map[string]string{}}
	provider := &fakeProvider{completeText: "should not be used"}

	history := NewHistoryService(store, batch.Config{Concurrency: 2}, testLogger())
	svc := NewSummaryService(history, provider, testLogger())

	summary, hist, err := svc.Summarize(context.Background(), "empty")
	if err != nil {
		t.Fatalf("Summarize failed: %v", err)
	}
	if summary != "" {
		t.Errorf("summary = %q, want empty", summary)
	}
	if hist == nil {
		t.Fatal("expected a history result even for an empty chat")
	}
	if provider.lastPrompt != "" {
		t.Error("provider must not be called for an empty chat")
	}
}

func TestSummarize_ProviderFailureKeepsHistory(t *testing.T) {
	store := &fakeStore{data: map[string]string{}}
	k, v := storedMessage(t, "c1", 1)
	store.data[k] = v
	provider := &fakeProvider{completeErr: errors.New("timeout")}

	history := NewHistoryService(store, batch.Config{Concurrency: 2}, testLogger())
	svc := NewSummaryService(history, provider, testLogger())

	_, hist, err := svc.Summarize(context.Background(), "c1")
	if err == nil {
		t.Fatal("expected error from provider failure")
	}
	if hist == nil || len(hist.Messages) != 1 {
		t.Error("history result should ride along with the error")
	}
}
