// Package summarizer defines the pluggable summarization capability
// and ships two concrete variants that don't require a network call:
// a deterministic Local summarizer usable in tests and as a
// no-dependency default, and a Rollup summarizer that aggregates
// child summaries into a parent. An LLM-backed variant is left as a
// capability interface only — concrete provider wiring is out of
// scope for this repo — but its request/response shape follows this
// same contract.
package summarizer

import (
	"context"

	"github.com/recall-memory/recall/go/types"
)

// Summary is the output of either operation below: a title, an
// ordered list of bullets each anchored to zero or more grips, and a
// set of keywords.
type Summary struct {
	Title    string
	Bullets  []Bullet
	Keywords []string
}

// Bullet pairs one claim with the Grips that back it. Grips carry
// their own ids (assigned by the summarizer via tocid.NewGripID) and
// TocNodeID is filled in by the caller once the owning node id is
// known.
type Bullet struct {
	Text  string
	Grips []types.Grip
}

// Summarizer is the capability every TocBuilder job depends on. No
// variant may hold state shared mutably between calls; a *local*
// struct field configuring behavior (e.g. a bullet-length cutoff) is
// fine, shared mutable state across concurrent calls is not.
type Summarizer interface {
	// SummarizeEvents builds a Summary from one segment's events. The
	// summarizer chooses evidentiary spans and emits a Grip per
	// bullet from the segment's own events; it may emit zero grips
	// per bullet only when acting as a rollup variant.
	SummarizeEvents(ctx context.Context, seg types.Segment) (Summary, error)
	// SummarizeChildren aggregates a parent window's already-built
	// child summaries into a parent-level Summary. Grips on rollup
	// bullets are inherited pointers to the children's grips, never
	// freshly extracted excerpts.
	SummarizeChildren(ctx context.Context, window ChildWindow, children []ChildSummary) (Summary, error)
}

// ChildWindow describes the calendar window a rollup is being built
// for.
type ChildWindow struct {
	Level   types.Level
	StartMs int64
	EndMs   int64
}

// ChildSummary is the minimal view of a child TocNode a rollup needs:
// its own summary plus enough of its grips to inherit pointers from.
type ChildSummary struct {
	NodeID   string
	Title    string
	Bullets  []types.TocBullet
	Keywords []string
}
