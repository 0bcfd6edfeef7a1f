package admin

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/recall-memory/recall/go/types"
)

func TestDiffNodeVersionsIgnoresVersionAndFingerprintChurn(t *testing.T) {
	var old = types.TocNode{NodeID: "toc:day:2026-03-05", Title: "a day", SummaryVersion: 1, Fingerprint: 111}
	var next = types.TocNode{NodeID: "toc:day:2026-03-05", Title: "a day", SummaryVersion: 2, Fingerprint: 222}

	var diff, err = DiffNodeVersions(old, next)
	require.NoError(t, err)
	require.True(t, diff.Identical)
	require.Empty(t, diff.Detail)
}

func TestDiffNodeVersionsReportsSubstantiveChange(t *testing.T) {
	var old = types.TocNode{NodeID: "toc:day:2026-03-05", Title: "a day", SummaryVersion: 1}
	var next = types.TocNode{NodeID: "toc:day:2026-03-05", Title: "a very different day", SummaryVersion: 2}

	var diff, err = DiffNodeVersions(old, next)
	require.NoError(t, err)
	require.False(t, diff.Identical)
	require.NotEmpty(t, diff.Detail)
}
