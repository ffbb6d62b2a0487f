package collector

import (
	"errors"
	"fmt"
)

// FailureKind tags the reason a per-symbol fetch failed. The screener treats
// every kind as a skip-and-continue condition; only symbol discovery errors
// abort a run.
type FailureKind string

const (
	FailNetwork       FailureKind = "network"
	FailHTTPStatus    FailureKind = "http-status"
	FailDataIntegrity FailureKind = "data-integrity"
)

// FetchError wraps a per-symbol failure with its taxonomy tag.
type FetchError struct {
	Kind   FailureKind
	Symbol string
	Err    error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s: %s: %v", e.Symbol, e.Kind, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// StatusError is a non-retryable HTTP response (4xx other than 429).
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("status %d: %s", e.Code, e.Body)
}

// RetryExhaustedError signals that the retry ceiling was hit. It is
// distinguishable from StatusError so callers can decide between
// skip-and-continue and propagation.
type RetryExhaustedError struct {
	Attempts int
	Last     error
}

func (e *RetryExhaustedError) Error() string {
	return fmt.Sprintf("retries exhausted after %d attempts: %v", e.Attempts, e.Last)
}

func (e *RetryExhaustedError) Unwrap() error { return e.Last }

// classify maps a client-level error to the fetch failure taxonomy. A
// StatusError anywhere in the chain (direct, or as the last error before the
// retry ceiling) tags the failure http-status; everything else is network.
func classify(symbol string, err error) *FetchError {
	var se *StatusError
	if errors.As(err, &se) {
		return &FetchError{Kind: FailHTTPStatus, Symbol: symbol, Err: err}
	}
	return &FetchError{Kind: FailNetwork, Symbol: symbol, Err: err}
}
