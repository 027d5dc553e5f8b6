package retry

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Operation is a single attempt, the context carries the per-attempt timeout.
type Operation func(ctx context.Context) error

// FinalError is returned once all attempts are exhausted. It means the data source is
// temporarily unavailable, never that the requested entity does not exist.
type FinalError struct {
	Name     string
	Attempts int
	Err      error
}

func (e *FinalError) Error() string {
	return fmt.Sprintf("%s failed after %d attempts: %v", e.Name, e.Attempts, e.Err)
}

func (e *FinalError) Unwrap() error { return e.Err }

// IsFinal reports whether err is a FinalError.
func IsFinal(err error) bool {
	var final *FinalError
	return errors.As(err, &final)
}

type permanentError struct {
	err error
}

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

// Permanent marks err as non-transient so the executor surfaces it without retrying.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err}
}

// Executor retries an operation with exponential backoff. Every attempt runs under its
// own timeout, the backoff delay between attempts is BaseDelay * 2^(attempt-1).
type Executor struct {
	MaxRetries int           //total attempts
	BaseDelay  time.Duration //first backoff delay
	Timeout    time.Duration //per attempt timeout
	OnRetry    func(attempt int, err error)
}

// Do runs op until it succeeds, fails permanently, or MaxRetries attempts are used up.
// The OnRetry callback fires before each retry for diagnostics only.
func (e *Executor) Do(ctx context.Context, name string, op Operation) error {
	delay := e.BaseDelay
	var lastErr error
	for attempt := 1; attempt <= e.MaxRetries; attempt++ {
		attemptCtx := ctx
		cancel := func() {}
		if e.Timeout > 0 {
			attemptCtx, cancel = context.WithTimeout(ctx, e.Timeout)
		}
		err := op(attemptCtx)
		cancel()
		if err == nil {
			return nil
		}

		var perm *permanentError
		if errors.As(err, &perm) {
			return perm.err
		}
		if !isTransient(err) {
			return err
		}
		lastErr = err
		if attempt == e.MaxRetries {
			break
		}
		if e.OnRetry != nil {
			e.OnRetry(attempt, err)
		}

		select {
		case <-ctx.Done():
			return &FinalError{Name: name, Attempts: attempt, Err: ctx.Err()}
		case <-time.After(delay):
			delay *= 2
		}
	}
	return &FinalError{Name: name, Attempts: e.MaxRetries, Err: lastErr}
}

// transient error patterns worth retrying, anything else fails fast
var transientPatterns = []string{
	"timeout",
	"timed out",
	"deadline exceeded",
	"connection reset by peer",
	"connection refused",
	"temporary failure",
	"network is unreachable",
	"broken pipe",
	"eof",
	"no such host",
	"dial tcp",
	"too many requests",
	"rate limit",
}

func isTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	msg := strings.ToLower(err.Error())
	for _, pattern := range transientPatterns {
		if strings.Contains(msg, pattern) {
			return true
		}
	}
	return false
}
