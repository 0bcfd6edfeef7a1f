package types

// Segment is a bounded, overlap-tolerant window of events: the unit
// the Summarizer consumes to produce a segment-level TocNode.
type Segment struct {
	// SegmentID is "toc:segment:<YYYY-MM-DDTHH:MM:SS start, UTC>" — see the node id
	// grammar in package tocid.
	SegmentID string `json:"segment_id"`
	// OverlapEvents are drawn from the tail of the preceding segment;
	// OverlapEvents[last].TimestampMs <= Events[0].TimestampMs.
	OverlapEvents []Event `json:"overlap_events"`
	// Events is the segment body, always non-empty.
	Events []Event `json:"events"`
	// TokenCount is the token count of Events only, excluding overlap.
	TokenCount uint32 `json:"token_count"`
}
