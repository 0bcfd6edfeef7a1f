package index

import (
	"math"
	"sort"
	"sync"
)

type vectorDoc struct {
	kind   TargetKind
	id     string
	vector []float32
}

// VectorIndex is a brute-force nearest-neighbor scorer: every Search
// computes cosine similarity against every stored vector. Fine at the
// scale of one user's conversation history; rebuilding means
// re-embedding and re-calling Put for every document, same as BM25Index.
type VectorIndex struct {
	mu   sync.RWMutex
	docs map[string]*vectorDoc
}

// NewVectorIndex constructs an empty index.
func NewVectorIndex() *VectorIndex {
	return &VectorIndex{docs: make(map[string]*vectorDoc)}
}

// Put stores or replaces the embedding for (kind, id).
func (idx *VectorIndex) Put(kind TargetKind, id string, vector []float32) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.docs[docKey(kind, id)] = &vectorDoc{kind: kind, id: id, vector: vector}
}

// Remove deletes a document's embedding if present.
func (idx *VectorIndex) Remove(kind TargetKind, id string) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	delete(idx.docs, docKey(kind, id))
}

// Search returns the topK documents by cosine similarity to query,
// descending.
func (idx *VectorIndex) Search(query []float32, topK int) []Result {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	var out = make([]Result, 0, len(idx.docs))
	for _, doc := range idx.docs {
		out = append(out, Result{TargetKind: doc.kind, TargetID: doc.id, Score: cosineSimilarity(query, doc.vector)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	if topK > 0 && len(out) > topK {
		out = out[:topK]
	}
	return out
}

// Len reports how many documents are currently embedded.
func (idx *VectorIndex) Len() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return len(idx.docs)
}

func cosineSimilarity(a, b []float32) float64 {
	if len(a) == 0 || len(b) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, magA, magB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		magA += float64(a[i]) * float64(a[i])
		magB += float64(b[i]) * float64(b[i])
	}
	if magA == 0 || magB == 0 {
		return 0
	}
	return dot / (math.Sqrt(magA) * math.Sqrt(magB))
}
