package rest

import (
	"context"
	"errors"
	"time"

	"github.com/straye-as/erp-gateway/internal/domain"
)

const (
	defaultMaxAttempts    = 3
	defaultInitialBackoff = 1 * time.Second
	defaultMaxBackoff     = 30 * time.Second
	defaultBackoffFactor  = 2.0
)

// Policy controls the retry behavior of a backend client. The zero value is
// not usable; construct with DefaultPolicy and override fields as needed.
type Policy struct {
	MaxAttempts    int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
	Factor         float64

	// Retryable decides whether a failed attempt is worth repeating.
	Retryable func(error) bool
}

// DefaultPolicy returns the standard exponential-backoff policy: three
// attempts, 1s initial backoff doubling up to 30s, retrying only generic
// backend communication failures.
func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts:    defaultMaxAttempts,
		InitialBackoff: defaultInitialBackoff,
		MaxBackoff:     defaultMaxBackoff,
		Factor:         defaultBackoffFactor,
		Retryable:      IsRetryable,
	}
}

// IsRetryable reports whether err is a transient backend failure. Only the
// generic AdapterError qualifies; authentication failures, missing entities
// and rate limits carry their own semantics and must propagate immediately.
func IsRetryable(err error) bool {
	var rateLimit *domain.RateLimitError
	if errors.As(err, &rateLimit) {
		return false
	}
	var adapterErr *domain.AdapterError
	return errors.As(err, &adapterErr)
}

// backoffFor returns the sleep duration before the given 1-based retry.
func (p Policy) backoffFor(attempt int) time.Duration {
	backoff := p.InitialBackoff
	for i := 1; i < attempt; i++ {
		backoff = time.Duration(float64(backoff) * p.Factor)
		if backoff > p.MaxBackoff {
			return p.MaxBackoff
		}
	}
	if backoff > p.MaxBackoff {
		return p.MaxBackoff
	}
	return backoff
}

// sleep waits out the backoff, aborting early when the context is done.
func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
