package router

// Tier names which set of layers a query was actually served from,
// per the tier-detection table: each tier is named by the layer that
// dropped out relative to the one above it, with TOC navigation the
// terminal fallback present in every tier.
type Tier string

const (
	TierFull     Tier = "full"     // topics + bm25 + vector + toc-nav
	TierHybrid   Tier = "hybrid"   // bm25 + vector + toc-nav (topics missing)
	TierSemantic Tier = "semantic" // vector + toc-nav (bm25 missing)
	TierKeyword  Tier = "keyword"  // bm25 + toc-nav (vector missing)
	TierAgentic  Tier = "agentic"  // toc-nav only (no index)
)

// detectTier implements the tier-detection table from the available
// flags of each layer.
func detectTier(bm25Available, vectorAvailable, topicsAvailable bool) Tier {
	switch {
	case bm25Available && vectorAvailable && topicsAvailable:
		return TierFull
	case bm25Available && vectorAvailable:
		return TierHybrid
	case vectorAvailable:
		return TierSemantic
	case bm25Available:
		return TierKeyword
	default:
		return TierAgentic
	}
}
