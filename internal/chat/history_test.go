package chat

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/vietddude/chatpulse/internal/batch"
	"github.com/vietddude/chatpulse/internal/core/domain"
)

// fakeStore scripts per-key outcomes for the history service.
type fakeStore struct {
	data     map[string]string
	failWith map[string]error
	phantom  []string // listed but absent on Get, like an expired record
}

func (f *fakeStore) Get(ctx context.Context, key string) (string, bool, error) {
	if err, ok := f.failWith[key]; ok {
		return "", false, err
	}
	v, ok := f.data[key]
	return v, ok, nil
}

func (f *fakeStore) List(ctx context.Context, prefix string, cursor uint64) ([]string, uint64, error) {
	var keys []string
	for k := range f.data {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	for k := range f.failWith {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	for _, k := range f.phantom {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys, 0, nil
}

func (f *fakeStore) Put(ctx context.Context, key, value string, ttl time.Duration) error {
	f.data[key] = value
	return nil
}

func storedMessage(t *testing.T, chatID string, n int) (string, string) {
	t.Helper()
	msg := domain.Message{
		ID:        fmt.Sprintf("m%03d", n),
		ChatID:    domain.ChatID(chatID),
		UserID:    "u1",
		Username:  "alice",
		Text:      fmt.Sprintf("message %d", n),
		Timestamp: int64(1700000000 + n),
	}
	raw, err := json.Marshal(msg)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return fmt.Sprintf("message:%s:%s", chatID, msg.ID), string(raw)
}

func testLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func TestHistoryFetch_AllRecords(t *testing.T) {
	store := &fakeStore{data: map[string]string{}}
	for i := 1; i <= 7; i++ {
		k, v := storedMessage(t, "c1", i)
		store.data[k] = v
	}

	svc := NewHistoryService(store, batch.Config{Concurrency: 3}, testLogger())
	res, err := svc.Fetch(context.Background(), "c1")
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}

	if len(res.Messages) != 7 {
		t.Fatalf("got %d messages, want 7", len(res.Messages))
	}
	if res.Partial || res.Degraded || res.RateLimited {
		t.Errorf("unexpected degradation flags: %+v", res)
	}
	for i := 1; i < len(res.Messages); i++ {
		if res.Messages[i].Timestamp < res.Messages[i-1].Timestamp {
			t.Fatal("messages not in timestamp order")
		}
	}
}

func TestHistoryFetch_PartialFailure(t *testing.T) {
	store := &fakeStore{data: map[string]string{}, failWith: map[string]error{}}
	for i := 1; i <= 5; i++ {
		k, v := storedMessage(t, "c1", i)
		store.data[k] = v
	}
	store.failWith["message:c1:m999"] = errors.New("connection refused")

	svc := NewHistoryService(store, batch.Config{Concurrency: 2}, testLogger())
	res, err := svc.Fetch(context.Background(), "c1")
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}

	if len(res.Messages) != 5 {
		t.Errorf("got %d messages, want 5 despite one failing key", len(res.Messages))
	}
	if !res.Partial {
		t.Error("expected Partial flag")
	}
	if res.RateLimited {
		t.Error("connection error must not set RateLimited")
	}
}

func TestHistoryFetch_RateLimitFlag(t *testing.T) {
	store := &fakeStore{data: map[string]string{}, failWith: map[string]error{}}
	k, v := storedMessage(t, "c1", 1)
	store.data[k] = v
	store.failWith["message:c1:m998"] = errors.New("429 too many requests")

	cfg := batch.Config{
		Concurrency: 2,
		Backoff:     batch.RateLimitBackoff{Floor: time.Millisecond},
	}
	svc := NewHistoryService(store, cfg, testLogger())
	res, err := svc.Fetch(context.Background(), "c1")
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}

	if !res.RateLimited {
		t.Error("expected RateLimited flag")
	}
}

func TestHistoryFetch_ExpiredKeyIsNotAFailure(t *testing.T) {
	store := &fakeStore{data: map[string]string{}}
	k, v := storedMessage(t, "c1", 1)
	store.data[k] = v
	// Listed but already gone by fetch time.
	store.phantom = []string{"message:c1:gone"}

	svc := NewHistoryService(store, batch.Config{Concurrency: 2}, testLogger())
	res, err := svc.Fetch(context.Background(), "c1")
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if res.Partial {
		t.Error("absent record must not count as a failure")
	}
}
