package batch

import "time"

// RateLimitFloor is the minimum pause before the next batch once the
// previous one saw a rate-limit failure.
const RateLimitFloor = 1 * time.Second

// BackoffPolicy decides how long to pause before the next batch, given the
// classified failures of the batch that just settled.
type BackoffPolicy interface {
	Delay(failures []ClassifiedError) time.Duration
}

// RateLimitBackoff is the default policy: pause for Base between batches,
// raised to at least Floor whenever the previous batch was rate limited.
type RateLimitBackoff struct {
	Base  time.Duration
	Floor time.Duration
}

func (p RateLimitBackoff) Delay(failures []ClassifiedError) time.Duration {
	for i := range failures {
		if failures[i].Kind == KindRateLimited {
			return max(p.Base, p.Floor)
		}
	}
	return p.Base
}
