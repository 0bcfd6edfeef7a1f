package summarizer

import (
	"context"
	"fmt"

	"github.com/recall-memory/recall/go/types"
)

// Rollup aggregates already-built child summaries into a parent
// Summary. It never extracts new grips — rollup bullets inherit the
// grip pointers their child bullets already carry, per the spec.
type Rollup struct {
	// MaxBullets caps how many child bullets are inherited per parent;
	// zero means unbounded. A child with no bullets contributes none.
	MaxBullets int
}

var _ Summarizer = Rollup{}

// SummarizeEvents is not meaningful for Rollup; callers use a segment
// summarizer (e.g. Local or an LLM-backed variant) for that operation.
func (r Rollup) SummarizeEvents(_ context.Context, seg types.Segment) (Summary, error) {
	return Summary{}, fmt.Errorf("rollup summarizer does not summarize segments directly")
}

func (r Rollup) SummarizeChildren(_ context.Context, window ChildWindow, children []ChildSummary) (Summary, error) {
	if len(children) == 0 {
		return Summary{Title: fmt.Sprintf("%s %d", window.Level, window.StartMs)}, nil
	}

	var title = children[0].Title
	if len(children) > 1 {
		title = fmt.Sprintf("%s (+%d more)", title, len(children)-1)
	}

	var bullets []Bullet
	var keywordSeen = make(map[string]bool)
	var keywords []string

	for _, c := range children {
		for _, b := range c.Bullets {
			if r.MaxBullets > 0 && len(bullets) >= r.MaxBullets {
				break
			}
			// Inherited pointers: the rollup bullet carries the same
			// grip ids the child bullet already had, but no fresh
			// Grip values — the caller resolves them from the Store
			// by id rather than duplicating excerpt data.
			bullets = append(bullets, Bullet{Text: b.Text, Grips: gripStubs(b.GripIDs)})
		}
		for _, kw := range c.Keywords {
			if !keywordSeen[kw] {
				keywordSeen[kw] = true
				keywords = append(keywords, kw)
			}
		}
	}

	return Summary{Title: title, Bullets: bullets, Keywords: keywords}, nil
}

// gripStubs builds placeholder Grip values carrying only the id, so
// the TocBuilder can distinguish "inherit this existing grip" from
// "here is a freshly extracted excerpt" when persisting bullets: a
// stub has an empty Excerpt and is never written to the grips column
// family, only referenced by id.
func gripStubs(ids []string) []types.Grip {
	var out = make([]types.Grip, len(ids))
	for i, id := range ids {
		out[i] = types.Grip{GripID: id}
	}
	return out
}
