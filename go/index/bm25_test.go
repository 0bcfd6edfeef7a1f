package index

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBM25SearchRanksMoreRelevantDocHigher(t *testing.T) {
	var idx = NewBM25Index(DefaultRetention())
	idx.Put(TargetSegment, "s1", "deploy the payments service to production", 1000)
	idx.Put(TargetSegment, "s2", "discuss lunch plans for the team offsite", 2000)
	idx.Put(TargetSegment, "s3", "production deploy rollback for payments service failure", 3000)

	var results = idx.Search("payments production deploy", 10)
	require.NotEmpty(t, results)
	require.Equal(t, "s1", results[0].TargetID, "s1 and s3 both match all three query terms; length normalization ranks the shorter s1 first")

	var ids = make(map[string]bool)
	for _, r := range results {
		ids[r.TargetID] = true
	}
	require.False(t, ids["s2"], "unrelated doc must not match any query term")
}

func TestBM25PutReindexesExistingDoc(t *testing.T) {
	var idx = NewBM25Index(DefaultRetention())
	idx.Put(TargetSegment, "s1", "alpha beta", 1000)
	idx.Put(TargetSegment, "s1", "gamma delta", 1000)

	require.Empty(t, idx.Search("alpha", 10), "stale terms must not remain queryable")
	var results = idx.Search("gamma", 10)
	require.Len(t, results, 1)
	require.Equal(t, "s1", results[0].TargetID)
}

func TestBM25RemoveDeletesDocument(t *testing.T) {
	var idx = NewBM25Index(DefaultRetention())
	idx.Put(TargetSegment, "s1", "alpha beta", 1000)
	idx.Remove(TargetSegment, "s1")
	require.Empty(t, idx.Search("alpha", 10))
}

func TestBM25PruneRespectsRetentionByKind(t *testing.T) {
	var idx = NewBM25Index(Retention{SegmentOrGripDays: 30, DayDays: 180, WeekDays: 1825})
	const dayMs = int64(24 * 60 * 60 * 1000)
	var now = int64(1_000_000) * dayMs

	idx.Put(TargetSegment, "old-seg", "alpha", now-40*dayMs)
	idx.Put(TargetSegment, "fresh-seg", "alpha", now-1*dayMs)
	idx.Put(TargetYear, "y2020", "alpha", 0) // never pruned regardless of age

	var removed = idx.Prune(now)
	require.Equal(t, 1, removed)

	var results = idx.Search("alpha", 10)
	var ids = make(map[string]bool)
	for _, r := range results {
		ids[r.TargetID] = true
	}
	require.True(t, ids["fresh-seg"])
	require.True(t, ids["y2020"])
	require.False(t, ids["old-seg"])
}

func TestBM25SearchOnEmptyIndexReturnsNil(t *testing.T) {
	var idx = NewBM25Index(DefaultRetention())
	require.Nil(t, idx.Search("anything", 10))
}

func TestBM25SearchTopKCapsResults(t *testing.T) {
	var idx = NewBM25Index(DefaultRetention())
	for i := 0; i < 5; i++ {
		idx.Put(TargetSegment, string(rune('a'+i)), "common term", int64(i))
	}
	var results = idx.Search("common", 2)
	require.Len(t, results, 2)
}
