// Package segmenter partitions an unbounded, timestamp-ordered event
// stream into coherent, token-bounded, overlapping Segments — the
// unit the Summarizer consumes. It holds no Store dependency: callers
// feed it events and drain emitted Segments, and are responsible for
// snapshotting their own input cursor, since a Segmenter is not
// restartable mid-stream.
package segmenter

import (
	"time"

	"github.com/recall-memory/recall/go/types"
)

// TokenCounter counts the tokens a piece of text would cost the
// summarizer. Injected so the segmenter never hard-codes a tokenizer;
// the default is a BPE-style approximation (see DefaultTokenCounter).
type TokenCounter interface {
	Count(text string) uint32
}

// Config enumerates the segmenter's boundary thresholds, with the
// spec's defaults.
type Config struct {
	// TimeGapThreshold is the inter-event gap that forces a cut.
	// Default 30 minutes.
	TimeGapThreshold time.Duration
	// TokenThreshold is the soft cap on a segment body's token count.
	// Default 4000.
	TokenThreshold uint32
	// OverlapDuration bounds the duration of carryover into the next
	// segment. Default 5 minutes.
	OverlapDuration time.Duration
	// OverlapTokens bounds the token count of carryover. Default 500.
	OverlapTokens uint32
	// MaxToolResultSize truncates tool_result event text for token
	// counting only, never for storage. Default 1000 bytes.
	MaxToolResultSize int
}

// DefaultConfig returns the configuration table's defaults.
func DefaultConfig() Config {
	return Config{
		TimeGapThreshold:  30 * time.Minute,
		TokenThreshold:    4000,
		OverlapDuration:   5 * time.Minute,
		OverlapTokens:     500,
		MaxToolResultSize: 1000,
	}
}

// Segmenter consumes events in timestamp order, one session at a
// time, and emits Segments as boundaries are crossed. It is not safe
// for concurrent use by multiple goroutines feeding the same instance;
// the concurrency model assigns one Segmenter per session.
type Segmenter struct {
	cfg     Config
	counter TokenCounter

	body       []types.Event
	bodyTokens uint32
	lastEvent  *types.Event

	pendingOverlap []types.Event
}

// New constructs a Segmenter. counter may be nil, in which case
// DefaultTokenCounter is used.
func New(cfg Config, counter TokenCounter) *Segmenter {
	if counter == nil {
		counter = DefaultTokenCounter{}
	}
	return &Segmenter{cfg: cfg, counter: counter}
}

// Push feeds one event, in session timestamp order, and returns a
// closed Segment if this event forced one shut, or ok=false if the
// event was simply appended to the open body.
func (s *Segmenter) Push(ev types.Event) (seg types.Segment, ok bool) {
	var tokens = s.countTokens(ev)

	if s.lastEvent != nil {
		var gap = time.Duration(ev.TimestampMs-s.lastEvent.TimestampMs) * time.Millisecond
		if gap > s.cfg.TimeGapThreshold { // strict >, per boundary rule 1
			seg, ok = s.closeSegment()
			s.appendOpen(ev, tokens)
			return seg, ok
		}
	}

	if len(s.body) > 0 && s.bodyTokens+tokens > s.cfg.TokenThreshold {
		seg, ok = s.closeSegment()
		s.appendOpen(ev, tokens)
		return seg, ok
	}

	s.appendOpen(ev, tokens)
	return types.Segment{}, false
}

// Flush closes and returns the currently open body as a final
// Segment, if one is open. Callers invoke this once their input
// stream is exhausted (e.g. end of a backlog drain, or a session_end
// event).
func (s *Segmenter) Flush() (seg types.Segment, ok bool) {
	if len(s.body) == 0 {
		return types.Segment{}, false
	}
	return s.closeSegment()
}

func (s *Segmenter) appendOpen(ev types.Event, tokens uint32) {
	s.body = append(s.body, ev)
	s.bodyTokens += tokens
	var copyEv = ev
	s.lastEvent = &copyEv
}

func (s *Segmenter) closeSegment() (types.Segment, bool) {
	if len(s.body) == 0 {
		return types.Segment{}, false
	}
	var seg = types.Segment{
		SegmentID:     segmentID(s.body[0].TimestampMs),
		OverlapEvents: s.pendingOverlap,
		Events:        s.body,
		TokenCount:    s.bodyTokens,
	}

	s.pendingOverlap = s.buildOverlap(s.body)
	s.body = nil
	s.bodyTokens = 0
	s.lastEvent = nil
	return seg, true
}

// buildOverlap selects the longest suffix of closed whose combined
// duration and combined tokens both stay within the configured
// bounds. A single oversized final event still produces an overlap of
// at most that one event (never zero-length if it alone fits the
// budgets; if it doesn't fit either budget, overlap is empty).
func (s *Segmenter) buildOverlap(closed []types.Event) []types.Event {
	var lastTs = closed[len(closed)-1].TimestampMs
	var tokens uint32
	var i = len(closed)
	for i > 0 {
		var cand = closed[i-1]
		var duration = time.Duration(lastTs-cand.TimestampMs) * time.Millisecond
		var candTokens = s.countTokens(cand)
		if duration > s.cfg.OverlapDuration || tokens+candTokens > s.cfg.OverlapTokens {
			break
		}
		tokens += candTokens
		i--
	}
	if i == len(closed) {
		return nil
	}
	var out = make([]types.Event, len(closed)-i)
	copy(out, closed[i:])
	return out
}

func (s *Segmenter) countTokens(ev types.Event) uint32 {
	var text = ev.Text
	if ev.Role == types.RoleToolResult && len(text) > s.cfg.MaxToolResultSize {
		text = text[:s.cfg.MaxToolResultSize]
	}
	return s.counter.Count(text)
}

func segmentID(startMs int64) string {
	return "toc:segment:" + time.UnixMilli(startMs).UTC().Format("2006-01-02T15:04:05")
}
