package index

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestVectorSearchRanksByCosineSimilarity(t *testing.T) {
	var idx = NewVectorIndex()
	idx.Put(TargetSegment, "same", []float32{1, 0, 0})
	idx.Put(TargetSegment, "orthogonal", []float32{0, 1, 0})
	idx.Put(TargetSegment, "opposite", []float32{-1, 0, 0})

	var results = idx.Search([]float32{1, 0, 0}, 10)
	require.Len(t, results, 3)
	require.Equal(t, "same", results[0].TargetID)
	require.InDelta(t, 1.0, results[0].Score, 1e-9)
	require.Equal(t, "opposite", results[len(results)-1].TargetID)
}

func TestVectorRemoveDeletesEmbedding(t *testing.T) {
	var idx = NewVectorIndex()
	idx.Put(TargetSegment, "s1", []float32{1, 0})
	idx.Remove(TargetSegment, "s1")
	require.Equal(t, 0, idx.Len())
	require.Empty(t, idx.Search([]float32{1, 0}, 10))
}

func TestVectorLenTracksDocCount(t *testing.T) {
	var idx = NewVectorIndex()
	require.Equal(t, 0, idx.Len())
	idx.Put(TargetSegment, "s1", []float32{1, 0})
	idx.Put(TargetSegment, "s2", []float32{0, 1})
	require.Equal(t, 2, idx.Len())
}

func TestVectorSearchMismatchedDimensionsScoresZero(t *testing.T) {
	var idx = NewVectorIndex()
	idx.Put(TargetSegment, "s1", []float32{1, 0, 0})
	var results = idx.Search([]float32{1, 0}, 10)
	require.Len(t, results, 1)
	require.Equal(t, 0.0, results[0].Score)
}

func TestVectorSearchTopKCapsResults(t *testing.T) {
	var idx = NewVectorIndex()
	idx.Put(TargetSegment, "a", []float32{1, 0})
	idx.Put(TargetSegment, "b", []float32{0, 1})
	idx.Put(TargetSegment, "c", []float32{1, 1})
	require.Len(t, idx.Search([]float32{1, 0}, 1), 1)
}
