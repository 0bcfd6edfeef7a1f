package gripexpander

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/recall-memory/recall/go/ops"
	"github.com/recall-memory/recall/go/recallerr"
	"github.com/recall-memory/recall/go/store"
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

func seedEvents(t *testing.T, st *store.Store) {
	t.Helper()
	require.NoError(t, st.IngestEvents([]types.Event{
		{EventID: 1, SessionID: "s1", TimestampMs: 1000, Role: types.RoleUser, Text: "a"},
		{EventID: 2, SessionID: "s1", TimestampMs: 2000, Role: types.RoleAssistant, Text: "b"},
		{EventID: 3, SessionID: "s1", TimestampMs: 3000, Role: types.RoleUser, Text: "c"},
		{EventID: 4, SessionID: "s1", TimestampMs: 4000, Role: types.RoleAssistant, Text: "d"},
		{EventID: 5, SessionID: "s1", TimestampMs: 5000, Role: types.RoleUser, Text: "e"},
	}))
}

func TestExpandDefaultWindow(t *testing.T) {
	var st = openTestStore(t)
	seedEvents(t, st)
	require.NoError(t, st.PutTocNodeWithGrips(
		types.TocNode{NodeID: "toc:segment:s1", Level: types.LevelSegment},
		[]types.Grip{{GripID: "grip:3000:01ARZ3NDEKTSV4RRFFQ69G5FAV", Excerpt: "c", EventIDStart: 3, EventIDEnd: 3, TimestampMs: 3000, Source: "toc:segment:s1", TocNodeID: "toc:segment:s1"}},
	))

	var exp = New(st)
	var expansion, err = exp.Expand(context.Background(), "grip:3000:01ARZ3NDEKTSV4RRFFQ69G5FAV", -1, -1)
	require.NoError(t, err)
	require.Len(t, expansion.ExcerptEvents, 1)
	require.Equal(t, uint64(3), expansion.ExcerptEvents[0].EventID)
	require.Len(t, expansion.Before, DefaultWindow)
	require.Len(t, expansion.After, DefaultWindow)
	require.Equal(t, uint64(1), expansion.Before[0].EventID)
	require.Equal(t, uint64(5), expansion.After[1].EventID)
	require.Equal(t, "s1", expansion.SessionID)
}

func TestExpandExplicitZeroWindowMeansNoContext(t *testing.T) {
	var st = openTestStore(t)
	seedEvents(t, st)
	require.NoError(t, st.PutTocNodeWithGrips(
		types.TocNode{NodeID: "toc:segment:s1", Level: types.LevelSegment},
		[]types.Grip{{GripID: "grip:3000:01ARZ3NDEKTSV4RRFFQ69G5FAW", Excerpt: "c", EventIDStart: 3, EventIDEnd: 3, TimestampMs: 3000, Source: "toc:segment:s1", TocNodeID: "toc:segment:s1"}},
	))

	var exp = New(st)
	var expansion, err = exp.Expand(context.Background(), "grip:3000:01ARZ3NDEKTSV4RRFFQ69G5FAW", 0, 0)
	require.NoError(t, err)
	require.Empty(t, expansion.Before)
	require.Empty(t, expansion.After)
}

func TestExpandWindowClampedToMax(t *testing.T) {
	require.Equal(t, MaxWindow, clampWindow(MaxWindow+100))
	require.Equal(t, DefaultWindow, clampWindow(-5))
	require.Equal(t, 0, clampWindow(0))
}

func TestExpandUnknownGripReturnsNotFound(t *testing.T) {
	var st = openTestStore(t)
	var exp = New(st)
	_, err := exp.Expand(context.Background(), "grip:0:doesnotexist", -1, -1)
	require.Error(t, err)
	require.Equal(t, recallerr.NotFound, recallerr.KindOf(err))
}
