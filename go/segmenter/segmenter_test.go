package segmenter

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/recall-memory/recall/go/types"
)

// constCounter counts tokens as a fixed number per event, so boundary
// tests can reason about exact thresholds without depending on a real
// tokenizer's output.
type constCounter struct{ n uint32 }

func (c constCounter) Count(string) uint32 { return c.n }

func ev(id uint64, tsMs int64, role types.Role, text string) types.Event {
	return types.Event{EventID: id, TimestampMs: tsMs, SessionID: "s1", Role: role, Text: text}
}

func TestTimeGapForcesCut(t *testing.T) {
	var cfg = DefaultConfig()
	cfg.TimeGapThreshold = 30 * time.Minute
	var seg = New(cfg, constCounter{n: 10})

	var base = int64(1_700_000_000_000)
	_, ok := seg.Push(ev(1, base, types.RoleUser, "hi"))
	require.False(t, ok)

	// Exactly at threshold: must NOT force a cut (strict >).
	_, ok = seg.Push(ev(2, base+int64(cfg.TimeGapThreshold/time.Millisecond), types.RoleUser, "still here"))
	require.False(t, ok, "gap exactly equal to threshold must not force a cut")

	// One ms past threshold: must force a cut.
	closed, ok := seg.Push(ev(3, base+int64(cfg.TimeGapThreshold/time.Millisecond)*2+1, types.RoleUser, "later"))
	require.True(t, ok)
	require.Len(t, closed.Events, 2)
	require.Equal(t, uint64(1), closed.Events[0].EventID)
	require.Equal(t, uint64(2), closed.Events[1].EventID)
}

func TestTokenBudgetForcesCut(t *testing.T) {
	var cfg = DefaultConfig()
	cfg.TokenThreshold = 25
	cfg.TimeGapThreshold = time.Hour
	var seg = New(cfg, constCounter{n: 10})

	var base = int64(1_700_000_000_000)
	_, ok := seg.Push(ev(1, base, types.RoleUser, "a"))
	require.False(t, ok)
	_, ok = seg.Push(ev(2, base+1000, types.RoleUser, "b"))
	require.False(t, ok)

	// Adding a third 10-token event would push body to 30 > 25: cut.
	closed, ok := seg.Push(ev(3, base+2000, types.RoleUser, "c"))
	require.True(t, ok)
	require.Len(t, closed.Events, 2)
	require.Equal(t, uint32(20), closed.TokenCount)
}

func TestSingleOversizedEventIsItsOwnSegment(t *testing.T) {
	var cfg = DefaultConfig()
	cfg.TokenThreshold = 5
	var seg = New(cfg, constCounter{n: 100})

	var base = int64(1_700_000_000_000)
	_, ok := seg.Push(ev(1, base, types.RoleUser, "huge"))
	require.False(t, ok, "a single event never force-closes an empty body")

	closed, ok := seg.Flush()
	require.True(t, ok)
	require.Len(t, closed.Events, 1)
	require.Equal(t, uint32(100), closed.TokenCount)
}

func TestOverlapDrawnFromTail(t *testing.T) {
	var cfg = DefaultConfig()
	cfg.TimeGapThreshold = time.Hour
	cfg.TokenThreshold = 15 // two 10-token events always exceed this, forcing a cut every event
	cfg.OverlapDuration = time.Minute
	cfg.OverlapTokens = 100
	var seg = New(cfg, constCounter{n: 10})

	var base = int64(1_700_000_000_000)
	_, ok := seg.Push(ev(1, base, types.RoleUser, "a"))
	require.False(t, ok)

	first, ok := seg.Push(ev(2, base+1000, types.RoleUser, "b"))
	require.True(t, ok, "event 2's tokens push the body over threshold")
	require.Len(t, first.Events, 1)
	require.Equal(t, uint64(1), first.Events[0].EventID)
	require.Empty(t, first.OverlapEvents, "nothing preceded the very first segment")

	second, ok := seg.Push(ev(3, base+2000, types.RoleUser, "c"))
	require.True(t, ok)
	require.Len(t, second.Events, 1)
	require.Equal(t, uint64(2), second.Events[0].EventID)
	require.Len(t, second.OverlapEvents, 1, "the closed segment's overlap is drawn from the previous segment's tail")
	require.Equal(t, uint64(1), second.OverlapEvents[0].EventID)
}

func TestMaxToolResultSizeTruncatesCountingOnly(t *testing.T) {
	var cfg = DefaultConfig()
	cfg.MaxToolResultSize = 4
	var seg = New(cfg, DefaultTokenCounter{})

	var big = "this text is much longer than four bytes"
	seg.Push(ev(1, 1_700_000_000_000, types.RoleToolResult, big))
	closed, ok := seg.Flush()
	require.True(t, ok)
	require.Equal(t, big, closed.Events[0].Text, "storage copy of text is never truncated")
	require.Equal(t, DefaultTokenCounter{}.Count(big[:4]), closed.TokenCount, "only the first MaxToolResultSize bytes are counted")
}

func TestFlushOnEmptyBodyIsNoop(t *testing.T) {
	var seg = New(DefaultConfig(), constCounter{n: 1})
	_, ok := seg.Flush()
	require.False(t, ok)
}
