package batch

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sync/atomic"
	"testing"
	"time"
)

func TestRun_AllSucceed(t *testing.T) {
	items := []int{1, 2, 3, 4, 5, 6, 7}
	double := func(ctx context.Context, n int) (int, error) { return n * 2, nil }

	for _, concurrency := range []int{1, 2, 3, 10} {
		res := Run(context.Background(), items, double, Config{Concurrency: concurrency})

		if res.SuccessRate != 100 {
			t.Errorf("concurrency %d: success rate = %v, want 100", concurrency, res.SuccessRate)
		}
		want := []int{2, 4, 6, 8, 10, 12, 14}
		if !reflect.DeepEqual(res.Results, want) {
			t.Errorf("concurrency %d: results = %v, want %v (input order)", concurrency, res.Results, want)
		}
		if res.TotalProcessed != len(items) || res.TotalFailed != 0 {
			t.Errorf("concurrency %d: processed=%d failed=%d", concurrency, res.TotalProcessed, res.TotalFailed)
		}
	}
}

func TestRun_EmptyInput(t *testing.T) {
	res := Run(context.Background(), nil, func(ctx context.Context, s string) (string, error) {
		return s, nil
	}, Config{Concurrency: 2})

	if res.SuccessRate != 100 {
		t.Errorf("success rate = %v, want 100", res.SuccessRate)
	}
	if res.TotalProcessed != 0 || len(res.Errors) != 0 {
		t.Errorf("processed=%d errors=%d, want 0/0", res.TotalProcessed, len(res.Errors))
	}
}

func TestRun_SingleItemFailure(t *testing.T) {
	items := []int{10, 20, 30, 40, 50}
	fn := func(ctx context.Context, n int) (int, error) {
		if n == 30 {
			return 0, errors.New("boom")
		}
		return n, nil
	}

	res := Run(context.Background(), items, fn, Config{Concurrency: 2})

	if len(res.Results) != 4 {
		t.Errorf("results length = %d, want 4", len(res.Results))
	}
	if res.TotalFailed != 1 {
		t.Errorf("total failed = %d, want 1", res.TotalFailed)
	}
	if res.SuccessRate != 80 {
		t.Errorf("success rate = %v, want 80", res.SuccessRate)
	}
	if len(res.Errors) != 1 || res.Errors[0].ItemIndex != 3 {
		t.Fatalf("errors = %+v, want one failure at item 3", res.Errors)
	}
	if res.Errors[0].BatchIndex != 2 {
		t.Errorf("batch index = %d, want 2", res.Errors[0].BatchIndex)
	}
	if res.HasCriticalFailures {
		t.Error("one item failure must not flag critical failure")
	}
}

func TestRun_PanicIsCapturedAsUnknown(t *testing.T) {
	items := []int{1, 2, 3}
	fn := func(ctx context.Context, n int) (int, error) {
		if n == 2 {
			panic("worker blew up")
		}
		return n, nil
	}

	res := Run(context.Background(), items, fn, Config{Concurrency: 3})

	if res.TotalFailed != 1 {
		t.Fatalf("total failed = %d, want 1", res.TotalFailed)
	}
	if res.Errors[0].Kind != KindUnknown {
		t.Errorf("kind = %v, want %v", res.Errors[0].Kind, KindUnknown)
	}
}

func TestRun_RateLimitBackoffSlowsRun(t *testing.T) {
	const floor = 150 * time.Millisecond
	cfg := Config{
		Concurrency: 2,
		BatchDelay:  time.Millisecond,
		Backoff:     RateLimitBackoff{Base: time.Millisecond, Floor: floor},
	}
	items := []int{1, 2, 3, 4}

	clean := func(ctx context.Context, n int) (int, error) { return n, nil }
	limited := func(ctx context.Context, n int) (int, error) {
		if n == 1 {
			return 0, errors.New("429 too many requests")
		}
		return n, nil
	}

	start := time.Now()
	Run(context.Background(), items, clean, cfg)
	baseline := time.Since(start)

	start = time.Now()
	res := Run(context.Background(), items, limited, cfg)
	slowed := time.Since(start)

	if !res.HasRateLimitErrors {
		t.Fatal("expected HasRateLimitErrors")
	}
	if slowed-baseline < floor/2 {
		t.Errorf("rate-limited run took %v vs %v baseline, expected at least %v extra",
			slowed, baseline, floor)
	}
}

func TestRun_CriticalAbort(t *testing.T) {
	// Every call fails: the first batch fails completely and the run
	// stops instead of burning through the remaining batches.
	var calls atomic.Int32
	fn := func(ctx context.Context, n int) (int, error) {
		calls.Add(1)
		return 0, errors.New("dependency down")
	}
	items := make([]int, 20)

	res := Run(context.Background(), items, fn, Config{Concurrency: 5})

	if !res.HasCriticalFailures {
		t.Error("expected HasCriticalFailures")
	}
	if res.TotalProcessed == len(items) {
		t.Error("expected early abort before processing all items")
	}
	if calls.Load() > 5 {
		t.Errorf("made %d calls, want at most one batch (5)", calls.Load())
	}
}

func TestRun_SuccessListPlusFailuresEqualsProcessed(t *testing.T) {
	fn := func(ctx context.Context, n int) (int, error) {
		if n%3 == 0 {
			return 0, fmt.Errorf("item %d failed", n)
		}
		return n, nil
	}
	items := []int{1, 2, 3, 4, 5, 6, 7, 8}

	res := Run(context.Background(), items, fn, Config{Concurrency: 4})

	if len(res.Results)+res.TotalFailed != res.TotalProcessed {
		t.Errorf("invariant broken: %d successes + %d failures != %d processed",
			len(res.Results), res.TotalFailed, res.TotalProcessed)
	}
}

func TestRun_Idempotent(t *testing.T) {
	fn := func(ctx context.Context, n int) (string, error) {
		if n == 4 {
			return "", errors.New("fetch failed")
		}
		return fmt.Sprintf("v%d", n), nil
	}
	items := []int{1, 2, 3, 4, 5}
	cfg := Config{Concurrency: 2}

	a := Run(context.Background(), items, fn, cfg)
	b := Run(context.Background(), items, fn, cfg)

	if !reflect.DeepEqual(a.Results, b.Results) {
		t.Errorf("results differ across runs: %v vs %v", a.Results, b.Results)
	}
	if a.TotalProcessed != b.TotalProcessed || a.TotalFailed != b.TotalFailed || a.SuccessRate != b.SuccessRate {
		t.Error("counts differ across identical runs")
	}
}

func TestRun_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var calls atomic.Int32
	res := Run(ctx, []int{1, 2, 3}, func(ctx context.Context, n int) (int, error) {
		calls.Add(1)
		return n, nil
	}, Config{Concurrency: 2})

	if calls.Load() != 0 {
		t.Errorf("fn called %d times after cancellation, want 0", calls.Load())
	}
	if !res.HasCriticalFailures {
		t.Error("cancelled run should flag critical failure")
	}
	if res.TotalFailed == 0 {
		t.Error("cancelled run should record failures")
	}
}
