package tocbuilder

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/recall-memory/recall/go/recallerr"
)

func TestWithRetrySucceedsWithoutRetryOnNilError(t *testing.T) {
	var calls int
	var result, err = withRetry(context.Background(), func() (string, error) {
		calls++
		return "ok", nil
	})
	require.NoError(t, err)
	require.Equal(t, "ok", result)
	require.Equal(t, 1, calls)
}

func TestWithRetryRetriesRateLimitedUpToCap(t *testing.T) {
	var calls int
	var _, err = withRetry(context.Background(), func() (string, error) {
		calls++
		return "", recallerr.New(recallerr.RateLimited, "op", nil)
	})
	require.Error(t, err)
	require.Equal(t, maxRetryableAttempts, calls)
}

func TestWithRetryRetriesMalformedResponseExactlyOnce(t *testing.T) {
	var calls int
	var _, err = withRetry(context.Background(), func() (string, error) {
		calls++
		return "", recallerr.New(recallerr.MalformedResponse, "op", nil)
	})
	require.Error(t, err)
	require.Equal(t, 2, calls, "malformed response retries exactly once")
}

func TestWithRetryNeverRetriesInvalidInput(t *testing.T) {
	var calls int
	var _, err = withRetry(context.Background(), func() (string, error) {
		calls++
		return "", recallerr.New(recallerr.InvalidInput, "op", nil)
	})
	require.Error(t, err)
	require.Equal(t, 1, calls)
}

func TestWithRetrySucceedsAfterTransientFailure(t *testing.T) {
	var calls int
	var result, err = withRetry(context.Background(), func() (string, error) {
		calls++
		if calls < 2 {
			return "", recallerr.New(recallerr.TransientUpstream, "op", nil)
		}
		return "recovered", nil
	})
	require.NoError(t, err)
	require.Equal(t, "recovered", result)
	require.Equal(t, 2, calls)
}

func TestWithRetryStopsOnContextCancellation(t *testing.T) {
	var ctx, cancel = context.WithCancel(context.Background())
	cancel()
	var calls int
	var _, err = withRetry(ctx, func() (string, error) {
		calls++
		return "", recallerr.New(recallerr.RateLimited, "op", nil)
	})
	require.Error(t, err)
	require.Equal(t, recallerr.Cancelled, recallerr.KindOf(err))
	require.Equal(t, 1, calls)
}
