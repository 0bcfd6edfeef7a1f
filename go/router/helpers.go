package router

import (
	"context"
	"sort"

	"github.com/recall-memory/recall/go/index"
)

func resultKey(r index.Result) string {
	return string(r.TargetKind) + ":" + r.TargetID
}

// vectorSearch embeds query and runs it through the vector index; it
// is an error for the router to call this when r.embedder is nil, so
// callers must check layerAvailability first.
func (r *Router) vectorSearch(ctx context.Context, query string) ([]index.Result, error) {
	var vec, err = r.embedder.Embed(ctx, query)
	if err != nil {
		return nil, err
	}
	return r.vector.Search(vec, r.cfg.TopK), nil
}

// topConfidence squashes the top result's raw score into (0, 1) via a
// logistic-shaped transform; BM25 and cosine scores live on different
// scales, so the router never compares raw scores across layers,
// only this normalized confidence.
func topConfidence(results []index.Result) float64 {
	if len(results) == 0 {
		return 0
	}
	var top = results[0].Score
	if top < 0 {
		top = 0
	}
	return top / (top + 1)
}

// unionRerank merges two result sets, ranking primarily by bm25 score
// (0 for a document only the vector layer found) and secondarily by
// vector cosine, per Locate's composition rule.
func unionRerank(bm25Results, vectorResults []index.Result) []index.Result {
	type merged struct {
		result    index.Result
		bm25Score float64
		vecScore  float64
	}
	var byKey = make(map[string]*merged)
	var order []string
	for _, r := range bm25Results {
		var k = resultKey(r)
		byKey[k] = &merged{result: r, bm25Score: r.Score}
		order = append(order, k)
	}
	for _, r := range vectorResults {
		var k = resultKey(r)
		if m, ok := byKey[k]; ok {
			m.vecScore = r.Score
		} else {
			byKey[k] = &merged{result: r, vecScore: r.Score}
			order = append(order, k)
		}
	}
	var out = make([]index.Result, 0, len(order))
	for _, k := range order {
		var m = byKey[k]
		var res = m.result
		res.Score = m.bm25Score // bm25 score remains the reported score; ranking below also weighs vecScore
		out = append(out, res)
	}
	sort.SliceStable(out, func(i, j int) bool {
		var mi, mj = byKey[resultKey(out[i])], byKey[resultKey(out[j])]
		if mi.bm25Score != mj.bm25Score {
			return mi.bm25Score > mj.bm25Score
		}
		return mi.vecScore > mj.vecScore
	})
	return out
}

// intersectWeighted keeps only documents present in both result sets
// and rescoer as 0.6*cosine + 0.4*normalized_bm25, per Answer's
// composition rule. bm25 scores are max-normalized across bm25Results
// before weighting, since raw BM25 scores are unbounded.
func intersectWeighted(vectorResults, bm25Results []index.Result) []index.Result {
	var bm25ByKey = make(map[string]float64, len(bm25Results))
	var maxBM25 float64
	for _, r := range bm25Results {
		bm25ByKey[resultKey(r)] = r.Score
		if r.Score > maxBM25 {
			maxBM25 = r.Score
		}
	}
	if maxBM25 == 0 {
		maxBM25 = 1
	}

	var out []index.Result
	for _, r := range vectorResults {
		var bm25Score, ok = bm25ByKey[resultKey(r)]
		if !ok {
			continue
		}
		var merged = r
		merged.Score = 0.6*r.Score + 0.4*(bm25Score/maxBM25)
		out = append(out, merged)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	return out
}

func dedupeByKey(results []index.Result) []index.Result {
	var seen = make(map[string]bool, len(results))
	var out = make([]index.Result, 0, len(results))
	for _, r := range results {
		var k = resultKey(r)
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, r)
	}
	return out
}
