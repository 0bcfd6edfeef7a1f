// Package admin holds small operator-facing helpers that sit outside
// the RPC surface proper: comparing TocNode summary versions across a
// rebuild, primarily for debugging a rollup or re-summarization pass
// that produced an unexpected change.
package admin

import (
	"encoding/json"

	"github.com/nsf/jsondiff"

	"github.com/recall-memory/recall/go/types"
)

// diffOptions mirrors the teacher's console-diff configuration
// (estuary-flow's materialize test fixture): tolerant of numeric
// representation differences, since summary_version bumps and
// fingerprint recomputation are exactly that kind of noise.
var diffOptions = jsondiff.DefaultConsoleOptions()

// NodeDiff reports whether two versions of the same TocNode are
// semantically identical (FullMatch/SupersetMatch) and, if not, a
// human-readable diff an operator can paste into a bug report.
type NodeDiff struct {
	Identical bool
	Detail    string
}

// DiffNodeVersions compares old and next, the same node id's state
// before and after a rebuild, ignoring SummaryVersion and Fingerprint
// (which are expected to change on every rebuild by design) and
// reporting whether anything else did.
func DiffNodeVersions(old, next types.TocNode) (NodeDiff, error) {
	old.SummaryVersion, next.SummaryVersion = 0, 0
	old.Fingerprint, next.Fingerprint = 0, 0

	oldJSON, err := json.Marshal(old)
	if err != nil {
		return NodeDiff{}, err
	}
	nextJSON, err := json.Marshal(next)
	if err != nil {
		return NodeDiff{}, err
	}

	mode, detail := jsondiff.Compare(oldJSON, nextJSON, &diffOptions)
	switch mode {
	case jsondiff.FullMatch, jsondiff.SupersetMatch:
		return NodeDiff{Identical: true}, nil
	default:
		return NodeDiff{Identical: false, Detail: detail}, nil
	}
}
