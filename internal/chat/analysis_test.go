package chat

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/vietddude/chatpulse/internal/core/domain"
)

// fakeProvider scripts AI call outcomes.
type fakeProvider struct {
	analyzeErr   error
	analysis     domain.Analysis
	analyzeCalls int
	completeText string
	completeErr  error
	lastPrompt   string
}

func (f *fakeProvider) Complete(ctx context.Context, prompt string) (string, error) {
	f.lastPrompt = prompt
	if f.completeErr != nil {
		return "", f.completeErr
	}
	return f.completeText, nil
}

func (f *fakeProvider) Analyze(ctx context.Context, text string) (domain.Analysis, error) {
	f.analyzeCalls++
	if f.analyzeErr != nil {
		return domain.Analysis{}, f.analyzeErr
	}
	return f.analysis, nil
}

// fakeStatRepo collects recorded stats.
type fakeStatRepo struct {
	mu    sync.Mutex
	stats []*domain.ProfanityStat
}

func (f *fakeStatRepo) Record(ctx context.Context, stat *domain.ProfanityStat) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stats = append(f.stats, stat)
	return nil
}

func (f *fakeStatRepo) TopWords(ctx context.Context, chatID domain.ChatID, limit int) ([]*domain.ProfanityStat, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.stats, nil
}

func testMessage() *domain.Message {
	return &domain.Message{
		ID:     "m1",
		ChatID: "c1",
		UserID: "u1",
		Text:   "some text",
	}
}

func TestAnalyze_RecordsFlaggedWords(t *testing.T) {
	provider := &fakeProvider{
		analysis: domain.Analysis{
			HasFlag: true,
			Items: []domain.AnalysisItem{
				{Word: "darn", Severity: "low"},
				{Word: "heck", Severity: "low"},
			},
		},
	}
	repo := &fakeStatRepo{}
	svc := NewAnalysisService(provider, repo, testLogger())

	analysis, err := svc.Analyze(context.Background(), testMessage())
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	if !analysis.HasFlag {
		t.Error("expected HasFlag")
	}
	if len(repo.stats) != 2 {
		t.Errorf("recorded %d stats, want 2", len(repo.stats))
	}
}

func TestAnalyze_BreakerOpensAndShortCircuits(t *testing.T) {
	provider := &fakeProvider{analyzeErr: errors.New("provider down")}
	svc := NewAnalysisService(provider, &fakeStatRepo{}, testLogger())
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		if _, err := svc.Analyze(ctx, testMessage()); err == nil {
			t.Fatalf("call %d unexpectedly succeeded", i+1)
		}
	}
	if provider.analyzeCalls != 5 {
		t.Fatalf("provider invoked %d times, want 5", provider.analyzeCalls)
	}

	// Breaker is open now: the provider must not see the 6th call.
	_, err := svc.Analyze(ctx, testMessage())
	if !errors.Is(err, ErrAnalysisUnavailable) {
		t.Fatalf("error = %v, want ErrAnalysisUnavailable", err)
	}
	if provider.analyzeCalls != 5 {
		t.Errorf("provider invoked %d times after opening, want 5", provider.analyzeCalls)
	}
}

func TestAnalyze_CleanTextRecordsNothing(t *testing.T) {
	provider := &fakeProvider{analysis: domain.Analysis{HasFlag: false}}
	repo := &fakeStatRepo{}
	svc := NewAnalysisService(provider, repo, testLogger())

	if _, err := svc.Analyze(context.Background(), testMessage()); err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	if len(repo.stats) != 0 {
		t.Errorf("recorded %d stats, want 0", len(repo.stats))
	}
}
