package types

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTocNodeContainsRequiresFullCalendarContainment(t *testing.T) {
	var month = TocNode{Level: LevelMonth, StartMs: 1000, EndMs: 5000}

	require.True(t, month.Contains(TocNode{Level: LevelWeek, StartMs: 1000, EndMs: 5000}), "a child spanning exactly the parent's window is contained")
	require.True(t, month.Contains(TocNode{Level: LevelWeek, StartMs: 2000, EndMs: 3000}), "a strictly interior child is contained")
	require.False(t, month.Contains(TocNode{Level: LevelWeek, StartMs: 999, EndMs: 5000}), "a child starting before the parent is not contained")
	require.False(t, month.Contains(TocNode{Level: LevelWeek, StartMs: 1000, EndMs: 5001}), "a child ending after the parent is not contained")
}

func TestLevelChildrenAndParentWalkTheFiveLevelHierarchy(t *testing.T) {
	require.Equal(t, LevelMonth, LevelYear.Children())
	require.Equal(t, LevelWeek, LevelMonth.Children())
	require.Equal(t, LevelDay, LevelWeek.Children())
	require.Equal(t, LevelSegment, LevelDay.Children())
	require.Equal(t, Level(""), LevelSegment.Children(), "segment is the leaf level")

	require.Equal(t, Level(""), LevelYear.Parent(), "year is the root level")
	require.Equal(t, LevelYear, LevelMonth.Parent())
	require.Equal(t, LevelMonth, LevelWeek.Parent())
	require.Equal(t, LevelWeek, LevelDay.Parent())
	require.Equal(t, LevelDay, LevelSegment.Parent())
}
