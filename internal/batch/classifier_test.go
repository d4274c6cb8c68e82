package batch

import (
	"errors"
	"testing"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		err       error
		kind      ErrorKind
		retryable bool
	}{
		{errors.New("Too many API requests"), KindRateLimited, false},
		{errors.New("429 Too Many Requests"), KindRateLimited, false},
		{errors.New("project rate limit exceeded"), KindRateLimited, false},
		{errors.New("daily quota exceeded"), KindRateLimited, false},
		{errors.New("TIMEOUT waiting for response"), KindTimeout, true},
		{errors.New("context deadline exceeded"), KindTimeout, true},
		{errors.New("network is unreachable"), KindNetwork, true},
		{errors.New("fetch failed"), KindNetwork, true},
		{errors.New("connection reset by peer"), KindNetwork, true},
		{errors.New("500 Internal Server Error"), KindUnknown, true},
		{errors.New("something odd"), KindUnknown, true},
	}

	for _, tt := range tests {
		kind, retryable := Classify(tt.err)
		if kind != tt.kind || retryable != tt.retryable {
			t.Errorf("Classify(%q) = (%v, %v), want (%v, %v)",
				tt.err, kind, retryable, tt.kind, tt.retryable)
		}
	}
}

func TestClassify_RateLimitWinsOverTimeout(t *testing.T) {
	// Rate-limit indicators are checked first: a message carrying both
	// markers must back off, not retry.
	kind, retryable := Classify(errors.New("rate limit hit, request timeout"))
	if kind != KindRateLimited || retryable {
		t.Errorf("got (%v, %v), want (%v, false)", kind, retryable, KindRateLimited)
	}
}
