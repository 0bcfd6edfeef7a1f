package router

import (
	"context"

	"github.com/recall-memory/recall/go/index"
	"github.com/recall-memory/recall/go/ops"
	"github.com/recall-memory/recall/go/store"
)

// Config tunes the router's layer-composition thresholds.
type Config struct {
	// TauLocate is the BM25 confidence floor below which Locate also
	// consults the vector layer. Default 0.5.
	TauLocate float64
	// TopK bounds how many candidates each layer contributes before
	// rerank/intersect. Default 10.
	TopK int
}

// DefaultConfig returns the router's stated defaults.
func DefaultConfig() Config {
	return Config{TauLocate: 0.5, TopK: 10}
}

// Filters narrows a query to an explicit time window, bypassing the
// TimeBoxed intent's own phrase resolution when the caller already
// knows the range (e.g. a UI date picker).
type Filters struct {
	FromMs *int64
	ToMs   *int64
}

// Envelope is the router's response contract: ranked results plus
// enough diagnostics to explain why a given tier was used.
type Envelope struct {
	Results       []index.Result      `json:"results"`
	TierUsed      Tier                `json:"tier_used"`
	Intent        Intent              `json:"intent"`
	LayersTried   []index.LayerStatus `json:"layers_tried"`
	FallbackCount int                 `json:"fallback_count"`
	Confidence    float64             `json:"confidence"`
}

// Router composes the BM25, vector, and topic-graph indexers with
// TOC-navigation as a terminal fallback that never itself goes
// Unavailable, since it reads straight from the Store.
type Router struct {
	bm25     *index.BM25Index
	vector   *index.VectorIndex
	topics   *index.TopicGraph
	embedder index.Embedder
	store    *store.Store
	log      ops.Logger
	cfg      Config
}

// New constructs a Router. embedder may be nil, in which case the
// vector layer is always reported unavailable (per tier detection,
// this degrades the router to Keyword or Agentic depending on bm25).
func New(st *store.Store, bm25 *index.BM25Index, vector *index.VectorIndex, topics *index.TopicGraph, embedder index.Embedder, log ops.Logger, cfg Config) *Router {
	if cfg.TopK <= 0 {
		cfg = DefaultConfig()
	}
	return &Router{store: st, bm25: bm25, vector: vector, topics: topics, embedder: embedder, log: log, cfg: cfg}
}

func (r *Router) layerAvailability() (bm25Available, vectorAvailable, topicsAvailable bool) {
	return r.bm25 != nil, r.embedder != nil && r.vector != nil, r.topics != nil
}

// Query classifies the query's intent, composes the layers that
// intent calls for, and falls back through progressively cheaper
// layers (down to TOC navigation) until it has a non-empty result set
// or has exhausted every layer.
func (r *Router) Query(ctx context.Context, query string, filters Filters, nowMs int64) (Envelope, error) {
	var bm25Available, vectorAvailable, topicsAvailable = r.layerAvailability()
	var tier = detectTier(bm25Available, vectorAvailable, topicsAvailable)
	var intent = ClassifyIntent(query)

	var tried []index.LayerStatus
	var results []index.Result
	var confidence float64
	var err error

	switch intent {
	case IntentLocate:
		results, confidence, tried, err = r.locate(ctx, query, bm25Available, vectorAvailable)
	case IntentAnswer:
		results, confidence, tried, err = r.answer(ctx, query, bm25Available, vectorAvailable)
	case IntentExplore:
		results, confidence, tried, err = r.explore(ctx, query, nowMs, topicsAvailable, vectorAvailable, bm25Available)
	case IntentTimeBoxed:
		var fromMs, toMs int64
		if filters.FromMs != nil && filters.ToMs != nil {
			fromMs, toMs = *filters.FromMs, *filters.ToMs
		} else if resolvedFrom, resolvedTo, ok := resolveTimePhrase(query, nowMs); ok {
			fromMs, toMs = resolvedFrom, resolvedTo
		}
		results, confidence, tried, err = r.timeBoxed(ctx, query, fromMs, toMs, bm25Available, vectorAvailable)
	}
	if err != nil {
		return Envelope{}, err
	}

	var fallbackCount int
	if len(results) == 0 {
		fallbackCount = len(tried)
		var navResults, navErr = r.tocNavFallback(ctx)
		if navErr != nil {
			return Envelope{}, navErr
		}
		results = navResults
		tried = append(tried, index.LayerStatus{Name: "toc_nav", Available: true})
		tier = TierAgentic
		confidence = 0
	}

	return Envelope{
		Results:       results,
		TierUsed:      tier,
		Intent:        intent,
		LayersTried:   tried,
		FallbackCount: fallbackCount,
		Confidence:    confidence,
	}, nil
}

// QueryTopK behaves like Query but, when topK > 0, overrides Config.TopK
// for this call only — the RPC surface's top_k input narrows each
// layer's candidate count without mutating the router's shared config.
func (r *Router) QueryTopK(ctx context.Context, query string, filters Filters, nowMs int64, topK int) (Envelope, error) {
	if topK <= 0 {
		return r.Query(ctx, query, filters, nowMs)
	}
	var scoped = *r
	scoped.cfg.TopK = topK
	return scoped.Query(ctx, query, filters, nowMs)
}

// tocNavFallback walks from the TOC roots, the terminal fallback when
// every index layer has failed or returned nothing: it is never
// itself Unavailable since it reads directly from the Store.
func (r *Router) tocNavFallback(ctx context.Context) ([]index.Result, error) {
	var roots, err = r.store.GetRootNodes()
	if err != nil {
		return nil, err
	}
	var out = make([]index.Result, 0, len(roots))
	for _, root := range roots {
		out = append(out, index.Result{TargetKind: index.TargetYear, TargetID: root.NodeID, Score: 0, Snippet: root.Title})
	}
	return out, nil
}
