package tocbuilder

import (
	"context"
	"math/rand"
	"time"

	"github.com/recall-memory/recall/go/recallerr"
)

// maxRetryableAttempts bounds retries of a RateLimited or
// TransientUpstream summarizer call, per the error-handling table's
// "retry with exponential backoff and jitter, capped".
const maxRetryableAttempts = 3

// withRetry runs op, retrying per recallerr's documented policy:
// RateLimited/TransientUpstream retry with capped exponential backoff,
// MalformedResponse retries exactly once, anything else (including a
// Storage or InvalidInput disposition) returns immediately. The final
// error, if any, is whatever op last returned.
func withRetry[T any](ctx context.Context, op func() (T, error)) (T, error) {
	var malformedRetried bool
	for attempt := 0; ; attempt++ {
		var result, err = op()
		if err == nil {
			return result, nil
		}

		switch recallerr.KindOf(err) {
		case recallerr.RateLimited, recallerr.TransientUpstream:
			if attempt+1 >= maxRetryableAttempts {
				return result, err
			}
			if !sleepBackoff(ctx, attempt) {
				return result, recallerr.New(recallerr.Cancelled, "tocbuilder.retry", ctx.Err())
			}
		case recallerr.MalformedResponse:
			if malformedRetried {
				return result, err
			}
			malformedRetried = true
		default:
			return result, err
		}
	}
}

// sleepBackoff waits an exponentially increasing delay (100ms * 2^attempt,
// capped at 2s) with jitter: the actual wait is drawn uniformly from
// the upper half of that delay. It returns false if ctx is cancelled
// first.
func sleepBackoff(ctx context.Context, attempt int) bool {
	var delay = 100 * time.Millisecond
	for i := 0; i < attempt; i++ {
		delay *= 2
		if delay > 2*time.Second {
			delay = 2 * time.Second
			break
		}
	}
	delay = delay/2 + time.Duration(rand.Int63n(int64(delay/2)+1))
	select {
	case <-ctx.Done():
		return false
	case <-time.After(delay):
		return true
	}
}
