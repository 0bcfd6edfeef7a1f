package tocbuilder

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/recall-memory/recall/go/ops"
	"github.com/recall-memory/recall/go/recallerr"
	"github.com/recall-memory/recall/go/store"
	"github.com/recall-memory/recall/go/summarizer"
	"github.com/recall-memory/recall/go/tocid"
	"github.com/recall-memory/recall/go/types"
)

func openTestStore(t *testing.T) *store.Store {
	t.Helper()
	var dbPath = filepath.Join(t.TempDir(), "recall.db")
	var st, err = store.Open(dbPath, ops.StdLogger(), store.DefaultOptions())
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	return st
}

func TestRunOnceBuildsSegmentAndCascadesRollups(t *testing.T) {
	var st = openTestStore(t)
	var b = New(st, summarizer.Local{}, summarizer.Rollup{}, nil, ops.StdLogger(), nil, Config{})

	var day = time.Date(2024, time.January, 10, 9, 0, 0, 0, time.UTC)
	require.NoError(t, st.IngestEvents([]types.Event{
		{EventID: 1, SessionID: "s1", TimestampMs: day.UnixMilli(), Role: types.RoleUser, Text: "Deploying the payments service."},
		{EventID: 2, SessionID: "s1", TimestampMs: day.Add(time.Minute).UnixMilli(), Role: types.RoleAssistant, Text: "Deploy succeeded."},
		{EventID: 3, SessionID: "s1", TimestampMs: day.Add(2 * time.Minute).UnixMilli(), Role: types.RoleSessionEnd, Text: ""},
	}))

	var ctx = context.Background()
	require.NoError(t, b.RunOnce(ctx))

	var segmentID = tocid.NodeID(types.LevelSegment, day)
	segNode, found, err := st.GetNode(segmentID)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, types.StateRolledUp, segNode.CheckpointState, "the day rollup built in this same RunOnce marks its segment child rolled_up")
	require.NotEmpty(t, segNode.Bullets)

	var dayID = tocid.NodeID(types.LevelDay, day)
	_, found, err = st.GetNode(dayID)
	require.NoError(t, err)
	require.True(t, found, "the day rollup should be built in the same RunOnce once its only child is summarized")

	// Cascade the remaining levels (week/month/year) which may lag by
	// one RunOnce call each, since sweeps at different levels run
	// concurrently against whatever the store holds at launch time.
	for i := 0; i < 3; i++ {
		require.NoError(t, b.RunOnce(ctx))
	}

	var yearID = tocid.NodeID(types.LevelYear, day)
	yearNode, found, err := st.GetNode(yearID)
	require.NoError(t, err)
	require.True(t, found, "the year node should exist after the rollups cascade")
	require.Equal(t, types.StateRolledUp, yearNode.CheckpointState)
}

func TestRunOnceLeavesWindowUnrolledWhileChildIsPending(t *testing.T) {
	var st = openTestStore(t)
	var day = time.Date(2024, time.January, 10, 9, 0, 0, 0, time.UTC)
	var segNodeID = tocid.NodeID(types.LevelSegment, day)
	require.NoError(t, st.PutTocNodeWithGrips(types.TocNode{
		NodeID: segNodeID, Level: types.LevelSegment, StartMs: day.UnixMilli(), EndMs: day.UnixMilli(),
		CheckpointState: types.StatePending,
	}, nil))

	var b = New(st, summarizer.Local{}, summarizer.Rollup{}, nil, ops.StdLogger(), nil, Config{})
	require.NoError(t, b.RunOnce(context.Background()))

	var dayID = tocid.NodeID(types.LevelDay, day)
	_, found, err := st.GetNode(dayID)
	require.Error(t, err)
	require.False(t, found)
	require.Equal(t, recallerr.NotFound, recallerr.KindOf(err))
}

func TestRunOnceDrainsIsIdempotentOnRepeatedCalls(t *testing.T) {
	var st = openTestStore(t)
	var b = New(st, summarizer.Local{}, summarizer.Rollup{}, nil, ops.StdLogger(), nil, Config{})

	var day = time.Date(2024, time.January, 10, 9, 0, 0, 0, time.UTC)
	require.NoError(t, st.IngestEvents([]types.Event{
		{EventID: 1, SessionID: "s1", TimestampMs: day.UnixMilli(), Role: types.RoleUser, Text: "hello"},
		{EventID: 2, SessionID: "s1", TimestampMs: day.Add(time.Minute).UnixMilli(), Role: types.RoleSessionEnd, Text: ""},
	}))

	require.NoError(t, b.RunOnce(context.Background()))
	require.NoError(t, b.RunOnce(context.Background()), "a second call with nothing new in the outbox is a no-op, not an error")
}
