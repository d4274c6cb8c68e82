package batch

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Config controls how a bulk run is carved into batches.
type Config struct {
	Concurrency int           // max in-flight calls at any instant
	BatchDelay  time.Duration // pause between consecutive batches
	Backoff     BackoffPolicy // overrides the pause after a batch with failures
}

// DefaultConfig matches the hosted store's per-invocation ceiling on
// simultaneous outstanding calls.
var DefaultConfig = Config{
	Concurrency: 10,
	BatchDelay:  100 * time.Millisecond,
}

// Result aggregates the outcome of one bulk run. Item failures are data,
// not errors: a run over 1000 keys where 3 fail yields 997 results.
type Result[R any] struct {
	Results             []R // successful values, in input order
	TotalProcessed      int
	TotalFailed         int
	SuccessRate         float64 // percent of the full input, 100 for empty input
	Errors              []ClassifiedError
	HasRateLimitErrors  bool
	HasCriticalFailures bool
	Elapsed             time.Duration
}

type outcome[R any] struct {
	value R
	fail  *ClassifiedError
	ok    bool
}

// Run drives fn over items in sequential batches of cfg.Concurrency.
// Items within a batch run concurrently; batch k+1 never starts before
// batch k has fully settled, which keeps the concurrency bound hard.
//
// A batch in which every item failed counts as a critical batch. Once
// critical batches reach half of the batches processed so far, the
// remaining batches are skipped rather than hammering a dependency that
// is systemically down.
func Run[T, R any](ctx context.Context, items []T, fn func(context.Context, T) (R, error), cfg Config) Result[R] {
	start := time.Now()

	if cfg.Concurrency <= 0 {
		cfg.Concurrency = DefaultConfig.Concurrency
	}
	backoff := cfg.Backoff
	if backoff == nil {
		backoff = RateLimitBackoff{Base: cfg.BatchDelay, Floor: RateLimitFloor}
	}

	res := Result[R]{SuccessRate: 100}
	if len(items) == 0 {
		res.Elapsed = time.Since(start)
		return res
	}

	outcomes := make([]outcome[R], len(items))
	processed := 0
	batchesRun := 0
	criticalBatches := 0

	for lo := 0; lo < len(items); lo += cfg.Concurrency {
		hi := min(lo+cfg.Concurrency, len(items))
		batchNum := batchesRun + 1

		if err := ctx.Err(); err != nil {
			// Run cut off mid-flight: the batch never dispatched, so every
			// item in it is recorded as failed.
			kind, retryable := Classify(err)
			for i := lo; i < hi; i++ {
				outcomes[i].fail = &ClassifiedError{
					Kind:       kind,
					Retryable:  retryable,
					BatchIndex: batchNum,
					ItemIndex:  i + 1,
					Cause:      err,
				}
			}
			processed = hi
			batchesRun++
			criticalBatches++
			break
		}

		var wg sync.WaitGroup
		for i := lo; i < hi; i++ {
			wg.Add(1)
			go func(idx int) {
				defer wg.Done()
				defer func() {
					if r := recover(); r != nil {
						outcomes[idx].fail = &ClassifiedError{
							Kind:       KindUnknown,
							Retryable:  true,
							BatchIndex: batchNum,
							ItemIndex:  idx + 1,
							Cause:      fmt.Errorf("panic: %v", r),
						}
					}
				}()

				v, err := fn(ctx, items[idx])
				if err != nil {
					kind, retryable := Classify(err)
					outcomes[idx].fail = &ClassifiedError{
						Kind:       kind,
						Retryable:  retryable,
						BatchIndex: batchNum,
						ItemIndex:  idx + 1,
						Cause:      err,
					}
					return
				}
				outcomes[idx].value = v
				outcomes[idx].ok = true
			}(i)
		}
		wg.Wait()

		processed = hi
		batchesRun++

		var batchFailures []ClassifiedError
		allFailed := true
		for i := lo; i < hi; i++ {
			if outcomes[i].ok {
				allFailed = false
			} else {
				batchFailures = append(batchFailures, *outcomes[i].fail)
			}
		}
		if allFailed {
			criticalBatches++
			if criticalBatches*2 >= batchesRun {
				break
			}
		}

		if hi < len(items) {
			if d := backoff.Delay(batchFailures); d > 0 {
				select {
				case <-ctx.Done():
				case <-time.After(d):
				}
			}
		}
	}

	res.Results = make([]R, 0, processed)
	for i := 0; i < processed; i++ {
		if outcomes[i].ok {
			res.Results = append(res.Results, outcomes[i].value)
			continue
		}
		res.Errors = append(res.Errors, *outcomes[i].fail)
		if outcomes[i].fail.Kind == KindRateLimited {
			res.HasRateLimitErrors = true
		}
	}

	res.TotalProcessed = processed
	res.TotalFailed = len(res.Errors)
	res.SuccessRate = float64(processed-res.TotalFailed) / float64(len(items)) * 100
	res.HasCriticalFailures = criticalBatches > 0 && criticalBatches*2 >= batchesRun
	res.Elapsed = time.Since(start)
	return res
}
