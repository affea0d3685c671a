// pkg/retry/retry.go
package retry

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// Policy describes a bounded retry/poll loop. The zero value retries forever
// with no wait, so every caller should set at least Interval and one bound
// (MaxAttempts or Timeout).
type Policy struct {
	MaxAttempts uint64        // total attempts; 0 means bounded by Timeout only
	Interval    time.Duration // wait between attempts
	Multiplier  float64       // <=1 keeps Interval constant, >1 grows it
	MaxInterval time.Duration // cap for a grown interval; 0 means uncapped
	Timeout     time.Duration // overall ceiling across all attempts; 0 means none
}

// Abort marks err as permanent: Do stops immediately and returns it unwrapped.
func Abort(err error) error { return backoff.Permanent(err) }

// Do runs op until it returns nil, the policy is exhausted, or ctx is done.
// The error returned is op's last error (or ctx.Err() on cancellation).
func (p Policy) Do(ctx context.Context, op func() error) error {
	if p.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.Timeout)
		defer cancel()
	}
	var b backoff.BackOff
	if p.Multiplier > 1 {
		eb := backoff.NewExponentialBackOff()
		eb.InitialInterval = p.Interval
		eb.Multiplier = p.Multiplier
		eb.RandomizationFactor = 0
		if p.MaxInterval > 0 {
			eb.MaxInterval = p.MaxInterval
		}
		eb.MaxElapsedTime = p.Timeout
		b = eb
	} else {
		b = backoff.NewConstantBackOff(p.Interval)
	}
	if p.MaxAttempts > 0 {
		b = backoff.WithMaxRetries(b, p.MaxAttempts-1)
	}
	return backoff.Retry(op, backoff.WithContext(b, ctx))
}
