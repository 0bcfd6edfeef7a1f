// Package index implements recall's three cooperating indexers — BM25,
// vector, and topic graph — as concrete, in-process reference
// implementations of the pluggable capability contracts the router
// depends on. None of them wraps an external search engine or ANN
// library: a naive inverted-index BM25 scorer and a brute-force
// cosine-similarity vector scorer keep the router and TocBuilder
// wiring exercisable end-to-end without a network dependency, exactly
// as the capability boundary intends. BM25 and vector are rebuildable
// from the Store alone, by replaying TocNode and Grip rows through the
// same Put methods a live outbox consumer would call; the topic graph
// is not replayed, since it persists directly in the Store's topics
// and topic_edges column families.
package index

import (
	"context"

	"github.com/recall-memory/recall/go/types"
)

// TargetKind discriminates what an indexed document or search result
// points at.
type TargetKind string

const (
	TargetSegment TargetKind = "segment"
	TargetDay     TargetKind = "day"
	TargetWeek    TargetKind = "week"
	TargetMonth   TargetKind = "month"
	TargetYear    TargetKind = "year"
	TargetGrip    TargetKind = "grip"
)

// Result is one hit from a BM25 or vector search.
type Result struct {
	TargetKind TargetKind `json:"target_kind"`
	TargetID   string     `json:"target_id"`
	Score      float64    `json:"score"`
	Snippet    string     `json:"snippet,omitempty"`
}

// LayerStatus reports one retrieval layer's health, recorded by the
// router on every query for the response envelope's layers_tried.
type LayerStatus struct {
	Name      string `json:"name"`
	Available bool   `json:"available"`
	Reason    string `json:"reason,omitempty"`
}

// Embedder is the injected capability behind the vector index: given
// text, return its embedding. No concrete provider is wired here; a
// test or caller substitutes a deterministic stub.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

func docKey(kind TargetKind, id string) string {
	return string(kind) + ":" + id
}

// TargetKindForLevel maps a TocNode's calendar Level to the TargetKind
// its indexed documents and search results carry.
func TargetKindForLevel(level types.Level) TargetKind {
	switch level {
	case types.LevelYear:
		return TargetYear
	case types.LevelMonth:
		return TargetMonth
	case types.LevelWeek:
		return TargetWeek
	case types.LevelDay:
		return TargetDay
	default:
		return TargetSegment
	}
}
