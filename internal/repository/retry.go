package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/andresuchdata/stockbin/internal/domain"
	"github.com/googleapis/gax-go/v2"
	"github.com/rs/zerolog/log"
)

// RetryPolicy configures exponential backoff for data access calls.
type RetryPolicy struct {
	Attempts   int
	Initial    time.Duration
	Max        time.Duration
	Multiplier float64
}

func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		Attempts:   3,
		Initial:    200 * time.Millisecond,
		Max:        2 * time.Second,
		Multiplier: 2,
	}
}

// permanentMarkers are message fragments of errors retrying cannot fix.
var permanentMarkers = []string{"invalid", "unauthorized", "forbidden", "not found", "permission denied", "violates"}

// IsTransient reports whether err looks like it may resolve by retrying.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	if errors.Is(err, sql.ErrNoRows) || errors.Is(err, domain.ErrNotFound) ||
		errors.Is(err, domain.ErrValidation) || errors.Is(err, domain.ErrStoreUnavailable) {
		return false
	}
	msg := strings.ToLower(err.Error())
	for _, marker := range permanentMarkers {
		if strings.Contains(msg, marker) {
			return false
		}
	}
	return true
}

type boundedRetryer struct {
	backoff  gax.Backoff
	attempts int
	max      int
}

func (r *boundedRetryer) Retry(err error) (time.Duration, bool) {
	r.attempts++
	if r.attempts >= r.max || !IsTransient(err) {
		return 0, false
	}
	pause := r.backoff.Pause()
	log.Warn().Err(err).Int("attempt", r.attempts).Dur("pause", pause).Msg("data access failed, retrying")
	return pause, true
}

// Retry runs fn until it succeeds, fails permanently or the policy is exhausted.
func Retry(ctx context.Context, policy RetryPolicy, fn func(ctx context.Context) error) error {
	if policy.Attempts <= 1 {
		return fn(ctx)
	}
	return gax.Invoke(ctx, func(ctx context.Context, _ gax.CallSettings) error {
		return fn(ctx)
	}, gax.WithRetry(func() gax.Retryer {
		return &boundedRetryer{
			backoff: gax.Backoff{
				Initial:    policy.Initial,
				Max:        policy.Max,
				Multiplier: policy.Multiplier,
			},
			max: policy.Attempts,
		}
	}))
}
