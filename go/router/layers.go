package router

import (
	"context"
	"sort"

	"github.com/recall-memory/recall/go/index"
	"github.com/recall-memory/recall/go/recallerr"
)

// locate implements the Locate composition rule: BM25 first; if its
// confidence is below TauLocate, union with the vector layer and
// rerank by BM25 score then vector cosine.
func (r *Router) locate(ctx context.Context, query string, bm25Available, vectorAvailable bool) ([]index.Result, float64, []index.LayerStatus, error) {
	if !bm25Available {
		var tried = []index.LayerStatus{{Name: "bm25", Available: false, Reason: "unavailable"}}
		if !vectorAvailable {
			return nil, 0, append(tried, index.LayerStatus{Name: "vector", Available: false, Reason: "unavailable"}), nil
		}
		var vecResults, err = r.vectorSearch(ctx, query)
		if err != nil {
			return nil, 0, append(tried, index.LayerStatus{Name: "vector", Available: false, Reason: err.Error()}), nil
		}
		return vecResults, topConfidence(vecResults), append(tried, index.LayerStatus{Name: "vector", Available: true}), nil
	}

	var bm25Results = r.bm25.Search(query, r.cfg.TopK)
	var confidence = topConfidence(bm25Results)
	var tried = []index.LayerStatus{{Name: "bm25", Available: true}}

	if confidence >= r.cfg.TauLocate || !vectorAvailable {
		if !vectorAvailable {
			tried = append(tried, index.LayerStatus{Name: "vector", Available: false, Reason: "unavailable"})
		}
		return bm25Results, confidence, tried, nil
	}

	var vecResults, err = r.vectorSearch(ctx, query)
	if err != nil {
		return bm25Results, confidence, append(tried, index.LayerStatus{Name: "vector", Available: false, Reason: err.Error()}), nil
	}
	tried = append(tried, index.LayerStatus{Name: "vector", Available: true})
	return unionRerank(bm25Results, vecResults), confidence, tried, nil
}

// answer implements the Answer composition rule: vector first,
// intersect with BM25 top-K, rerank by a weighted sum of cosine and
// normalized BM25 score.
func (r *Router) answer(ctx context.Context, query string, bm25Available, vectorAvailable bool) ([]index.Result, float64, []index.LayerStatus, error) {
	if !vectorAvailable {
		var tried = []index.LayerStatus{{Name: "vector", Available: false, Reason: "unavailable"}}
		if !bm25Available {
			return nil, 0, append(tried, index.LayerStatus{Name: "bm25", Available: false, Reason: "unavailable"}), nil
		}
		var bm25Results = r.bm25.Search(query, r.cfg.TopK)
		return bm25Results, topConfidence(bm25Results), append(tried, index.LayerStatus{Name: "bm25", Available: true}), nil
	}

	var vecResults, err = r.vectorSearch(ctx, query)
	if err != nil {
		return nil, 0, []index.LayerStatus{{Name: "vector", Available: false, Reason: err.Error()}}, nil
	}
	var tried = []index.LayerStatus{{Name: "vector", Available: true}}

	if !bm25Available {
		tried = append(tried, index.LayerStatus{Name: "bm25", Available: false, Reason: "unavailable"})
		return vecResults, topConfidence(vecResults), tried, nil
	}

	var bm25Results = r.bm25.Search(query, r.cfg.TopK)
	tried = append(tried, index.LayerStatus{Name: "bm25", Available: true})
	var merged = intersectWeighted(vecResults, bm25Results)
	return merged, topConfidence(merged), tried, nil
}

// explore implements the Explore composition rule: topic graph first
// (top topics by query similarity, then a keyword search against
// each topic's own label stands in for "their TOC nodes" since no
// topic→node index is maintained separately); falls back to vector
// then BM25 when no topics match.
func (r *Router) explore(ctx context.Context, query string, nowMs int64, topicsAvailable, vectorAvailable, bm25Available bool) ([]index.Result, float64, []index.LayerStatus, error) {
	var tried []index.LayerStatus

	if topicsAvailable {
		var topics, err = r.topics.Search(query, nowMs, r.cfg.TopK)
		if err != nil {
			tried = append(tried, index.LayerStatus{Name: "topic_graph", Available: false, Reason: err.Error()})
		} else if len(topics) > 0 && bm25Available {
			tried = append(tried, index.LayerStatus{Name: "topic_graph", Available: true})
			// topics is already ordered by read-time Importance (TopicGraph.Search
			// sorts with the real configured half-life); preserve that order into results.
			var results []index.Result
			for _, t := range topics {
				results = append(results, r.bm25.Search(t.Label, r.cfg.TopK)...)
			}
			results = dedupeByKey(results)
			if len(results) > 0 {
				tried = append(tried, index.LayerStatus{Name: "bm25", Available: true})
				return results, topConfidence(results), tried, nil
			}
		} else {
			var reason = "no matching topics"
			if len(topics) > 0 {
				reason = "bm25 unavailable"
			}
			tried = append(tried, index.LayerStatus{Name: "topic_graph", Available: true, Reason: reason})
		}
	} else {
		tried = append(tried, index.LayerStatus{Name: "topic_graph", Available: false, Reason: "unavailable"})
	}

	if vectorAvailable {
		var vecResults, err = r.vectorSearch(ctx, query)
		if err == nil && len(vecResults) > 0 {
			return vecResults, topConfidence(vecResults), append(tried, index.LayerStatus{Name: "vector", Available: true}), nil
		}
		if err != nil {
			tried = append(tried, index.LayerStatus{Name: "vector", Available: false, Reason: err.Error()})
		} else {
			tried = append(tried, index.LayerStatus{Name: "vector", Available: true, Reason: "no results"})
		}
	} else {
		tried = append(tried, index.LayerStatus{Name: "vector", Available: false, Reason: "unavailable"})
	}

	if bm25Available {
		var bm25Results = r.bm25.Search(query, r.cfg.TopK)
		return bm25Results, topConfidence(bm25Results), append(tried, index.LayerStatus{Name: "bm25", Available: true}), nil
	}
	return nil, 0, append(tried, index.LayerStatus{Name: "bm25", Available: false, Reason: "unavailable"}), nil
}

// timeBoxed resolves the query's time expression (done by the caller)
// and restricts whichever other layers are available to nodes/grips
// whose own timestamp falls in [fromMs, toMs).
func (r *Router) timeBoxed(ctx context.Context, query string, fromMs, toMs int64, bm25Available, vectorAvailable bool) ([]index.Result, float64, []index.LayerStatus, error) {
	var tried []index.LayerStatus
	var candidates []index.Result

	if bm25Available {
		candidates = append(candidates, r.bm25.Search(query, r.cfg.TopK*2)...)
		tried = append(tried, index.LayerStatus{Name: "bm25", Available: true})
	} else {
		tried = append(tried, index.LayerStatus{Name: "bm25", Available: false, Reason: "unavailable"})
	}
	if vectorAvailable {
		var vecResults, err = r.vectorSearch(ctx, query)
		if err == nil {
			candidates = append(candidates, vecResults...)
			tried = append(tried, index.LayerStatus{Name: "vector", Available: true})
		} else {
			tried = append(tried, index.LayerStatus{Name: "vector", Available: false, Reason: err.Error()})
		}
	} else {
		tried = append(tried, index.LayerStatus{Name: "vector", Available: false, Reason: "unavailable"})
	}

	candidates = dedupeByKey(candidates)
	if fromMs == 0 && toMs == 0 {
		return candidates, topConfidence(candidates), tried, nil
	}

	var filtered, err = r.filterByWindow(candidates, fromMs, toMs)
	if err != nil {
		return nil, 0, tried, err
	}
	sort.Slice(filtered, func(i, j int) bool { return filtered[i].Score > filtered[j].Score })
	return filtered, topConfidence(filtered), tried, nil
}

// filterByWindow keeps only results whose own start time (a TocNode's
// StartMs, or a Grip's TimestampMs) falls in [fromMs, toMs).
func (r *Router) filterByWindow(results []index.Result, fromMs, toMs int64) ([]index.Result, error) {
	var out = make([]index.Result, 0, len(results))
	for _, res := range results {
		var ts int64
		var found bool
		if res.TargetKind == index.TargetGrip {
			var grip, ok, err = r.store.GetGrip(res.TargetID)
			if err != nil && recallerr.KindOf(err) != recallerr.NotFound {
				return nil, err
			}
			ts, found = grip.TimestampMs, ok
		} else {
			var node, ok, err = r.store.GetNode(res.TargetID)
			if err != nil && recallerr.KindOf(err) != recallerr.NotFound {
				return nil, err
			}
			ts, found = node.StartMs, ok
		}
		if found && ts >= fromMs && ts < toMs {
			out = append(out, res)
		}
	}
	return out, nil
}
