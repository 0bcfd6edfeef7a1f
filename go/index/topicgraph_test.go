package index

import (
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

func TestTopicGraphPromotesAfterMinClusterSize(t *testing.T) {
	var st = openTestStore(t)
	var cfg = TopicGraphConfig{HalfLifeMs: 30 * 24 * 60 * 60 * 1000, MinClusterSize: 3}
	var tg = NewTopicGraph(st, cfg)

	for i := 0; i < 2; i++ {
		require.NoError(t, tg.ObserveNode(types.TocNode{StartMs: int64(i), Keywords: []string{"payments"}}))
	}
	_, found, err := st.GetTopic(TopicID("payments"))
	require.Equal(t, recallerr.NotFound, recallerr.KindOf(err))
	require.False(t, found, "below MinClusterSize, no Topic should be persisted yet")

	require.NoError(t, tg.ObserveNode(types.TocNode{StartMs: 3, Keywords: []string{"payments"}}))
	topic, found, err := st.GetTopic(TopicID("payments"))
	require.NoError(t, err)
	require.True(t, found, "the third mention crosses MinClusterSize and promotes the topic")
	require.Equal(t, uint64(3), topic.MentionCount)
}

func TestTopicGraphObserveNodeRecordsCoOccurringEdges(t *testing.T) {
	var st = openTestStore(t)
	var tg = NewTopicGraph(st, TopicGraphConfig{HalfLifeMs: 1000, MinClusterSize: 1})

	require.NoError(t, tg.ObserveNode(types.TocNode{StartMs: 1, Keywords: []string{"payments", "outage"}}))

	edges, err := st.ListTopicEdges(TopicID("payments"))
	require.NoError(t, err)
	require.Len(t, edges, 1)
	require.Equal(t, TopicID("outage"), edges[0].DstTopicID)
	require.Equal(t, types.RelationCoOccurring, edges[0].Relation)
}

func TestTopicGraphSearchRanksByImportance(t *testing.T) {
	var st = openTestStore(t)
	var tg = NewTopicGraph(st, TopicGraphConfig{HalfLifeMs: 30 * 24 * 60 * 60 * 1000, MinClusterSize: 1})

	require.NoError(t, tg.ObserveNode(types.TocNode{StartMs: 0, Keywords: []string{"payments"}}))
	require.NoError(t, tg.ObserveNode(types.TocNode{StartMs: 0, Keywords: []string{"outage"}}))
	require.NoError(t, tg.ObserveNode(types.TocNode{StartMs: 0, Keywords: []string{"outage"}}))

	results, err := tg.Search("payments outage", 0, 10)
	require.NoError(t, err)
	require.Len(t, results, 2)
	require.Equal(t, TopicID("outage"), results[0].TopicID, "more mentions at equal age ranks higher")
}

func TestTopicGraphRefreshStatesMarksDormant(t *testing.T) {
	var st = openTestStore(t)
	const dayMs = int64(24 * 60 * 60 * 1000)
	require.NoError(t, st.PutTopic(types.Topic{TopicID: "topic:stale", Label: "stale", MentionCount: 1, LastSeenMs: 0, State: types.TopicActive}))

	var tg = NewTopicGraph(st, TopicGraphConfig{HalfLifeMs: 1 * dayMs, MinClusterSize: 1})
	require.NoError(t, tg.RefreshStates(1000*dayMs))

	got, found, err := st.GetTopic("topic:stale")
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, types.TopicDormant, got.State)
}
