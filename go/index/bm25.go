package index

import (
	"math"
	"sort"
	"strings"
	"sync"
	"unicode"
)

// bm25K1 and bm25B are the classic Okapi BM25 tuning constants (Robertson
// et al.), unchanged from their usual textbook defaults.
const (
	bm25K1 = 1.2
	bm25B  = 0.75
)

// Retention bounds how long a document survives Prune, per target kind,
// matching the lifecycle table: segment/grip documents are pruned
// after 30 days, day after 180, week after 1825 (5 years), and
// month/year are never pruned (protected).
type Retention struct {
	SegmentOrGripDays int
	DayDays           int
	WeekDays          int
}

// DefaultRetention returns the spec's stated defaults.
func DefaultRetention() Retention {
	return Retention{SegmentOrGripDays: 30, DayDays: 180, WeekDays: 1825}
}

func (r Retention) maxAgeMs(kind TargetKind) (ageMs int64, pruned bool) {
	const dayMs = int64(24 * 60 * 60 * 1000)
	switch kind {
	case TargetSegment, TargetGrip:
		return int64(r.SegmentOrGripDays) * dayMs, true
	case TargetDay:
		return int64(r.DayDays) * dayMs, true
	case TargetWeek:
		return int64(r.WeekDays) * dayMs, true
	default: // month, year: never pruned
		return 0, false
	}
}

type bm25Doc struct {
	kind        TargetKind
	id          string
	snippet     string
	termFreq    map[string]int
	length      int
	timestampMs int64
}

// BM25Index is a naive inverted-index full-text scorer over the fields
// the spec names: TocNode title/summary/bullets/keywords, and grip
// excerpts. It holds no external process or on-disk format of its own
// beyond what a caller chooses to persist; Put is idempotent per
// (kind, id), so replaying the Store's TocNode/Grip rows rebuilds it
// exactly.
type BM25Index struct {
	mu        sync.RWMutex
	docs      map[string]*bm25Doc
	postings  map[string]map[string]int // term -> docKey -> term freq
	totalLen  int64
	retention Retention
}

// NewBM25Index constructs an empty index.
func NewBM25Index(retention Retention) *BM25Index {
	return &BM25Index{
		docs:      make(map[string]*bm25Doc),
		postings:  make(map[string]map[string]int),
		retention: retention,
	}
}

// Put indexes or re-indexes one document. text is the concatenation of
// whichever fields the caller wants searchable (title+bullets+keywords
// for a TocNode, or the excerpt for a Grip); timestampMs anchors the
// document for Prune.
func (idx *BM25Index) Put(kind TargetKind, id, text string, timestampMs int64) {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	var key = docKey(kind, id)
	if existing, ok := idx.docs[key]; ok {
		idx.removeLocked(key, existing)
	}

	var terms = tokenize(text)
	var tf = make(map[string]int, len(terms))
	for _, t := range terms {
		tf[t]++
	}

	var doc = &bm25Doc{kind: kind, id: id, snippet: snippetOf(text), termFreq: tf, length: len(terms), timestampMs: timestampMs}
	idx.docs[key] = doc
	idx.totalLen += int64(doc.length)
	for term, freq := range tf {
		if idx.postings[term] == nil {
			idx.postings[term] = make(map[string]int)
		}
		idx.postings[term][key] = freq
	}
}

// Remove deletes a document if present; rebuilding with a newer
// version calls Put instead, which removes the stale entry itself.
func (idx *BM25Index) Remove(kind TargetKind, id string) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	var key = docKey(kind, id)
	if doc, ok := idx.docs[key]; ok {
		idx.removeLocked(key, doc)
	}
}

func (idx *BM25Index) removeLocked(key string, doc *bm25Doc) {
	delete(idx.docs, key)
	idx.totalLen -= int64(doc.length)
	for term := range doc.termFreq {
		delete(idx.postings[term], key)
		if len(idx.postings[term]) == 0 {
			delete(idx.postings, term)
		}
	}
}

// Search scores every document containing at least one query term and
// returns the topK highest-scoring, descending.
func (idx *BM25Index) Search(query string, topK int) []Result {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	if len(idx.docs) == 0 {
		return nil
	}
	var n = float64(len(idx.docs))
	var avgdl = float64(idx.totalLen) / n

	var terms = tokenize(query)
	var scores = make(map[string]float64)
	for _, term := range terms {
		var postings = idx.postings[term]
		if len(postings) == 0 {
			continue
		}
		var df = float64(len(postings))
		var idf = idfOf(n, df)
		for key, tf := range postings {
			var doc = idx.docs[key]
			var denom = float64(tf) + bm25K1*(1-bm25B+bm25B*float64(doc.length)/avgdl)
			scores[key] += idf * (float64(tf) * (bm25K1 + 1)) / denom
		}
	}

	var out = make([]Result, 0, len(scores))
	for key, score := range scores {
		var doc = idx.docs[key]
		out = append(out, Result{TargetKind: doc.kind, TargetID: doc.id, Score: score, Snippet: doc.snippet})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	if topK > 0 && len(out) > topK {
		out = out[:topK]
	}
	return out
}

// Prune removes documents past their kind's retention window, per the
// lifecycle table; month/year documents are never removed.
func (idx *BM25Index) Prune(nowMs int64) int {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	var removed int
	for key, doc := range idx.docs {
		var maxAge, bounded = idx.retention.maxAgeMs(doc.kind)
		if !bounded {
			continue
		}
		if nowMs-doc.timestampMs > maxAge {
			idx.removeLocked(key, doc)
			removed++
		}
	}
	return removed
}

// idfOf is the BM25+ smoothed IDF term, which stays positive even when
// a term appears in every document.
func idfOf(n, df float64) float64 {
	var v = (n-df+0.5)/(df+0.5) + 1
	if v <= 0 {
		v = 1
	}
	return math.Log(v)
}

func tokenize(text string) []string {
	var fields = strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	var out = make([]string, len(fields))
	for i, f := range fields {
		out[i] = strings.ToLower(f)
	}
	return out
}

func snippetOf(text string) string {
	const maxLen = 200
	text = strings.TrimSpace(text)
	if len(text) <= maxLen {
		return text
	}
	return text[:maxLen]
}
