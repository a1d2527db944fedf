package llm

import (
	"context"
	"errors"
	"math"
	"math/rand/v2"
	"time"

	"github.com/abhisek/learnhub/internal/logging"
)

// RetryProvider resends requests that failed for a transient reason:
// rate limits, provider outages and transport errors, plus a single
// retry of an empty answer. Everything else is returned at once.
type RetryProvider struct {
	inner  Provider
	config RetryConfig
}

// WithRetry wraps p with cfg's backoff policy.
func WithRetry(p Provider, cfg RetryConfig) Provider {
	return &RetryProvider{inner: p, config: cfg}
}

func (r *RetryProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	var (
		lastErr      error
		emptyRetried bool
	)
	log := logging.WithContext(ctx)

	for attempt := 0; attempt < r.config.MaxAttempts; attempt++ {
		resp, err := r.inner.Generate(ctx, req)
		if err == nil {
			return resp, nil
		}
		lastErr = err

		switch retryable(err) {
		case retryNever:
			return nil, err
		case retryOnce:
			if emptyRetried {
				return nil, err
			}
			emptyRetried = true
		}

		if attempt == r.config.MaxAttempts-1 {
			break
		}

		wait := r.backoff(attempt, err)
		log.WithError(err).
			WithField("attempt", attempt+1).
			WithField("wait_ms", wait.Milliseconds()).
			Debug("retrying llm request")

		t := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			t.Stop()
			return nil, ctx.Err()
		case <-t.C:
		}
	}

	return nil, lastErr
}

func (r *RetryProvider) ModelID() string {
	return r.inner.ModelID()
}

type retryClass int

const (
	retryNever retryClass = iota
	retryOnce
	retryBackoff
)

// retryable classifies err. Unrecognized errors are not retried.
func retryable(err error) retryClass {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return retryNever
	}

	var (
		rejected *ErrRequestRejected
		maxTok   *ErrMaxTokensExceeded
		invalid  *ErrInvalidResponse
		rl       *ErrRateLimit
		unavail  *ErrProviderUnavailable
	)
	switch {
	case errors.As(err, &rejected), errors.As(err, &maxTok):
		return retryNever
	case errors.As(err, &invalid):
		return retryOnce
	case errors.As(err, &rl), errors.As(err, &unavail):
		return retryBackoff
	default:
		return retryNever
	}
}

// backoff returns how long to wait before attempt+1. A rate limit's
// RetryAfter wins; otherwise the wait grows by Multiplier up to MaxWait
// with ±20% jitter.
func (r *RetryProvider) backoff(attempt int, err error) time.Duration {
	var rl *ErrRateLimit
	if errors.As(err, &rl) && rl.RetryAfter > 0 {
		return rl.RetryAfter
	}

	wait := math.Min(
		float64(r.config.InitialWait)*math.Pow(r.config.Multiplier, float64(attempt)),
		float64(r.config.MaxWait),
	)
	wait *= 1 + 0.2*(2*rand.Float64()-1)
	return time.Duration(math.Max(wait, 0))
}
