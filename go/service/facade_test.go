package service

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/recall-memory/recall/go/gripexpander"
	"github.com/recall-memory/recall/go/index"
	"github.com/recall-memory/recall/go/ops"
	"github.com/recall-memory/recall/go/recallerr"
	"github.com/recall-memory/recall/go/router"
	"github.com/recall-memory/recall/go/store"
	"github.com/recall-memory/recall/go/types"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	var dbPath = filepath.Join(t.TempDir(), "recall.db")
	var st, err = store.Open(dbPath, ops.StdLogger(), store.DefaultOptions())
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	var bm25 = index.NewBM25Index(index.DefaultRetention())
	var rtr = router.New(st, bm25, nil, nil, nil, ops.StdLogger(), router.DefaultConfig())
	var expander = gripexpander.New(st)
	return New(st, expander, rtr, ops.StdLogger())
}

func TestServiceIngestEventAssignsCorrelationID(t *testing.T) {
	var svc = newTestService(t)
	var ack, err = svc.IngestEvent(context.Background(), types.Event{
		EventID: 1, SessionID: "s1", TimestampMs: 1000, Role: types.RoleUser, Text: "hello",
	})
	require.NoError(t, err)
	require.Equal(t, uint64(1), ack.EventID)
	require.NotEmpty(t, ack.CorrelationID)
}

func TestServiceGetNodeNotFoundReturnsRecallErr(t *testing.T) {
	var svc = newTestService(t)
	_, err := svc.GetNode(context.Background(), "toc:day:2099-01-01")
	require.Error(t, err)
	require.Equal(t, recallerr.NotFound, recallerr.KindOf(err))
}

func TestServiceBrowseTocAndGetTocRoot(t *testing.T) {
	var svc = newTestService(t)
	require.NoError(t, svc.store.PutTocNodeWithGrips(types.TocNode{NodeID: "toc:year:2026", Level: types.LevelYear, Title: "2026"}, nil))
	require.NoError(t, svc.store.PutTocNodeWithGrips(types.TocNode{NodeID: "toc:month:2026-03", Level: types.LevelMonth, ParentID: "toc:year:2026", StartMs: 100}, nil))

	roots, err := svc.GetTocRoot(context.Background())
	require.NoError(t, err)
	require.Len(t, roots, 1)

	page, err := svc.BrowseToc(context.Background(), "toc:year:2026", 10, "")
	require.NoError(t, err)
	require.Len(t, page.Children, 1)
	require.Empty(t, page.Next)
}

func TestServiceGetEventsRangeScans(t *testing.T) {
	var svc = newTestService(t)
	require.NoError(t, svc.store.IngestEvents([]types.Event{
		{EventID: 1, SessionID: "s1", TimestampMs: 1000, Role: types.RoleUser, Text: "a"},
	}))
	events, err := svc.GetEvents(context.Background(), 0, 2000, 10)
	require.NoError(t, err)
	require.Len(t, events, 1)
}

func TestServiceSearchRoutesThroughRouter(t *testing.T) {
	var svc = newTestService(t)
	require.NoError(t, svc.store.PutTocNodeWithGrips(types.TocNode{NodeID: "toc:year:2026", Level: types.LevelYear, Title: "2026"}, nil))

	env, err := svc.Search(context.Background(), "anything", router.Filters{}, 1000)
	require.NoError(t, err)
	require.Equal(t, router.TierAgentic, env.TierUsed)
}
