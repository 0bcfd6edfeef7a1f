package recallerr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRetryablePolicy(t *testing.T) {
	require.True(t, New(RateLimited, "op", nil).Retryable())
	require.True(t, New(TransientUpstream, "op", nil).Retryable())
	require.False(t, New(MalformedResponse, "op", nil).Retryable())
	require.False(t, New(InvalidInput, "op", nil).Retryable())
	require.False(t, New(NotFound, "op", nil).Retryable())
}

func TestKindOfUnwrapsWrappedError(t *testing.T) {
	var base = New(NotFound, "store.get_node", nil)
	var wrapped = errors.New("context: " + base.Error())
	require.Equal(t, Storage, KindOf(wrapped), "an unclassified error reports Storage")
	require.Equal(t, NotFound, KindOf(base))
	require.Equal(t, NotFound, KindOf(fmt.Errorf("context: %w", base)), "a %w-wrapped *Error keeps its Kind")

	var doubleWrapped error = New(IndexUnavailable, "router.query", base)
	require.Equal(t, IndexUnavailable, KindOf(doubleWrapped))
}

func TestErrorIsComparesKindNotCause(t *testing.T) {
	var a = New(NotFound, "store.get_node", errors.New("boom"))
	var b = Sentinel(NotFound)
	require.True(t, errors.Is(a, b))

	var c = Sentinel(Storage)
	require.False(t, errors.Is(a, c))
}

func TestUnwrapExposesCause(t *testing.T) {
	var cause = errors.New("disk full")
	var e = New(Storage, "store.put", cause)
	require.ErrorIs(t, e, cause)
}

func TestErrorMessageIncludesOpAndKind(t *testing.T) {
	var e = New(InvalidInput, "segmenter.push", nil)
	require.Equal(t, "segmenter.push: InvalidInput", e.Error())
}
