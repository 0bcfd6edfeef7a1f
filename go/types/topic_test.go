package types

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

const dayMs = int64(24 * 60 * 60 * 1000)

func TestTopicImportanceDecay(t *testing.T) {
	// 10 mentions 60 days ago, half-life 30 days -> importance ~= 2.5.
	var topic = Topic{MentionCount: 10, LastSeenMs: 0}
	var got = topic.Importance(60*dayMs, 30*dayMs)
	require.InDelta(t, 2.5, got, 0.01)
}

func TestTopicImportanceFreshMentionRestoresFull(t *testing.T) {
	var topic = Topic{MentionCount: 10, LastSeenMs: 60 * dayMs}
	// A mention today (nowMs == lastSeenMs, no age) is full strength.
	var got = topic.Importance(60*dayMs, 30*dayMs)
	require.InDelta(t, 10, got, 0.01)
}

func TestTopicImportanceNegativeAgeClampsToZero(t *testing.T) {
	// last_seen in the future relative to now (clock skew) must not
	// produce importance above mention_count.
	var topic = Topic{MentionCount: 5, LastSeenMs: 100}
	var got = topic.Importance(0, 30*dayMs)
	require.Equal(t, float64(5), got)
}

func TestTopicImportanceZeroHalfLifeIsClamped(t *testing.T) {
	var topic = Topic{MentionCount: 4, LastSeenMs: 0}
	require.False(t, math.IsNaN(topic.Importance(dayMs, 0)))
	require.False(t, math.IsInf(topic.Importance(dayMs, 0), 0))
}
