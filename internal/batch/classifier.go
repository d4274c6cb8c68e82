package batch

import (
	"fmt"
	"strings"
)

// ErrorKind is the stable failure class assigned to a remote-call error.
type ErrorKind string

const (
	KindRateLimited ErrorKind = "rate_limited"
	KindTimeout     ErrorKind = "timeout"
	KindNetwork     ErrorKind = "network"
	KindUnknown     ErrorKind = "unknown"
)

// ClassifiedError pairs a raw failure with its kind, retry eligibility,
// and the position of the item that produced it. BatchIndex and ItemIndex
// are 1-based ordinals within one Run invocation.
type ClassifiedError struct {
	Kind       ErrorKind
	Retryable  bool
	BatchIndex int
	ItemIndex  int
	Cause      error
}

func (e *ClassifiedError) Error() string {
	return fmt.Sprintf("item %d (batch %d) %s: %v", e.ItemIndex, e.BatchIndex, e.Kind, e.Cause)
}

func (e *ClassifiedError) Unwrap() error {
	return e.Cause
}

// Classify determines the kind and retry eligibility for a given error.
//
// Rate-limit errors are deliberately not retryable: the correct reaction is
// to slow the whole run down, not to retry the item and make the limit worse.
// Unknown errors default to retryable.
func Classify(err error) (ErrorKind, bool) {
	if err == nil {
		return KindUnknown, true // Should not happen
	}

	s := err.Error()
	sLower := strings.ToLower(s)

	// The split "too many" / "requests" match covers wordings like
	// "Too many API requests" as well as the plain 429 status text.
	if strings.Contains(s, "429") ||
		(strings.Contains(sLower, "too many") && strings.Contains(sLower, "requests")) ||
		strings.Contains(sLower, "rate limit") ||
		strings.Contains(sLower, "quota") {
		return KindRateLimited, false
	}

	if strings.Contains(sLower, "timeout") ||
		strings.Contains(sLower, "deadline exceeded") {
		return KindTimeout, true
	}

	if strings.Contains(sLower, "network") ||
		strings.Contains(sLower, "fetch") ||
		strings.Contains(sLower, "connection") {
		return KindNetwork, true
	}

	return KindUnknown, true
}
