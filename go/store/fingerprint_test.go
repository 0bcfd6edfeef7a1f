package store

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/recall-memory/recall/go/types"
)

func TestComputeFingerprintIsDeterministic(t *testing.T) {
	var node = types.TocNode{
		Title:    "payments deploy",
		Bullets:  []types.TocBullet{{Text: "deploy succeeded"}},
		Keywords: []string{"payments", "deploy"},
	}
	require.Equal(t, ComputeFingerprint(node), ComputeFingerprint(node))
}

func TestComputeFingerprintChangesWithContent(t *testing.T) {
	var a = types.TocNode{Title: "payments deploy"}
	var b = types.TocNode{Title: "payments rollback"}
	require.NotEqual(t, ComputeFingerprint(a), ComputeFingerprint(b))
}

func TestComputeFingerprintIgnoresVersionAndFingerprintFields(t *testing.T) {
	var a = types.TocNode{Title: "a day", SummaryVersion: 1, Fingerprint: 111}
	var b = types.TocNode{Title: "a day", SummaryVersion: 2, Fingerprint: 222}
	require.Equal(t, ComputeFingerprint(a), ComputeFingerprint(b), "fingerprint only hashes Title+Bullets+Keywords, not bookkeeping fields")
}
