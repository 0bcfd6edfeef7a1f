package types

import "fmt"

// Grip is a verifiable excerpt anchored to a contiguous range of
// events. It is created once and never mutated.
type Grip struct {
	GripID       string `json:"grip_id"`
	Excerpt      string `json:"excerpt"`
	EventIDStart uint64 `json:"event_id_start"`
	EventIDEnd   uint64 `json:"event_id_end"`
	TimestampMs  int64  `json:"timestamp_ms"`
	// Source is the segment-level TocNode id the excerpt was drawn
	// from.
	Source string `json:"source"`
	// TocNodeID is the node whose bullet this grip is attached to,
	// which may be a rollup ancestor of Source when the grip was
	// inherited rather than freshly extracted.
	TocNodeID string `json:"toc_node_id"`
}

// Validate enforces the Grip invariants from the data model:
// event_id_start <= event_id_end.
func (g Grip) Validate() error {
	if g.EventIDStart > g.EventIDEnd {
		return fmt.Errorf("grip %s: event_id_start %d > event_id_end %d", g.GripID, g.EventIDStart, g.EventIDEnd)
	}
	return nil
}
