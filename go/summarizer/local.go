package summarizer

import (
	"context"
	"strings"
	"unicode"

	"github.com/recall-memory/recall/go/tocid"
	"github.com/recall-memory/recall/go/types"
)

// Local is a deterministic, network-free Summarizer used as the
// default and in tests: it derives one bullet per event whose text is
// non-empty, using the first sentence (or the whole text if it has no
// terminal punctuation) as the bullet, and emits one grip covering
// exactly that event. Keywords are the most frequent non-trivial
// words across the segment, ties broken alphabetically. Grip ids come
// from tocid.NewGripID, so they differ between calls.
type Local struct {
	// MaxBullets caps bullets emitted per segment; events past the cap
	// get no bullet and no grip (their words still count toward
	// keywords). Zero means unbounded.
	MaxBullets int
	// MaxKeywords caps the keyword list length. Default 8 if zero.
	MaxKeywords int
}

var _ Summarizer = Local{}

func (l Local) SummarizeEvents(_ context.Context, seg types.Segment) (Summary, error) {
	var bullets []Bullet
	var wordFreq = make(map[string]int)

	for _, ev := range seg.Events {
		var text = strings.TrimSpace(ev.Text)
		if text == "" {
			continue
		}
		countWords(text, wordFreq)

		if l.MaxBullets > 0 && len(bullets) >= l.MaxBullets {
			continue
		}
		var sentence = firstSentence(text)
		var grip = types.Grip{
			GripID:       tocid.NewGripID(ev.TimestampMs),
			Excerpt:      sentence,
			EventIDStart: ev.EventID,
			EventIDEnd:   ev.EventID,
			TimestampMs:  ev.TimestampMs,
			Source:       seg.SegmentID,
		}
		bullets = append(bullets, Bullet{Text: sentence, Grips: []types.Grip{grip}})
	}

	var title = "Segment " + seg.SegmentID
	if len(bullets) > 0 {
		title = bullets[0].Text
	}

	return Summary{
		Title:    title,
		Bullets:  bullets,
		Keywords: topKeywords(wordFreq, l.maxKeywords()),
	}, nil
}

// SummarizeChildren delegates to Rollup{}.SummarizeChildren.
func (l Local) SummarizeChildren(ctx context.Context, window ChildWindow, children []ChildSummary) (Summary, error) {
	return Rollup{}.SummarizeChildren(ctx, window, children)
}

func (l Local) maxKeywords() int {
	if l.MaxKeywords > 0 {
		return l.MaxKeywords
	}
	return 8
}

func firstSentence(text string) string {
	var idx = strings.IndexAny(text, ".!?\n")
	if idx < 0 {
		return text
	}
	return strings.TrimSpace(text[:idx+1])
}

var stopwords = map[string]bool{
	"the": true, "a": true, "an": true, "and": true, "or": true, "of": true,
	"to": true, "is": true, "it": true, "in": true, "on": true, "for": true,
	"that": true, "this": true, "with": true, "was": true, "i": true,
	"you": true, "we": true, "be": true, "are": true, "as": true, "at": true,
}

func countWords(text string, into map[string]int) {
	var fields = strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	for _, f := range fields {
		var w = strings.ToLower(f)
		if len(w) < 3 || stopwords[w] {
			continue
		}
		into[w]++
	}
}

func topKeywords(freq map[string]int, max int) []string {
	type kv struct {
		word  string
		count int
	}
	var all = make([]kv, 0, len(freq))
	for w, c := range freq {
		all = append(all, kv{w, c})
	}
	// Simple selection sort bounded by max; these lists are small
	// (one segment's vocabulary), so O(max*n) is fine.
	var out []string
	for len(out) < max && len(all) > 0 {
		var bestIdx = 0
		for i := 1; i < len(all); i++ {
			if all[i].count > all[bestIdx].count ||
				(all[i].count == all[bestIdx].count && all[i].word < all[bestIdx].word) {
				bestIdx = i
			}
		}
		out = append(out, all[bestIdx].word)
		all = append(all[:bestIdx], all[bestIdx+1:]...)
	}
	return out
}
