package tocbuilder

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/recall-memory/recall/go/store"
	"github.com/recall-memory/recall/go/summarizer"
	"github.com/recall-memory/recall/go/tocid"
	"github.com/recall-memory/recall/go/types"
)

// buildSegmentNode summarizes one closed Segment and atomically
// persists its segment-level TocNode plus Grips. A summarizer failure
// that survives withRetry is not propagated as a fatal error: the
// segment is instead persisted as a failed node, which blocks its
// parent's rollup until the failure is resolved (e.g. by a later
// reprocessing pass), matching the error-handling table's disposition
// for MalformedResponse and exhausted-retry cases.
func (b *Builder) buildSegmentNode(ctx context.Context, seg types.Segment) error {
	var nodeID = seg.SegmentID
	var startMs, endMs = segmentBounds(seg)
	var parentID = tocid.NodeID(types.LevelDay, time.UnixMilli(startMs))

	var summary, err = withRetry(ctx, func() (summarizer.Summary, error) {
		return b.eventSummarizer.SummarizeEvents(ctx, seg)
	})
	if err != nil {
		b.log.Log(log.WarnLevel, log.Fields{"node_id": nodeID, "err": err.Error()}, "segment summarization failed, recording failed node")
		if b.metrics != nil {
			b.metrics.JobsFailedTotal.WithLabelValues("segment").Inc()
		}
		var failedNode = types.TocNode{
			NodeID:          nodeID,
			Level:           types.LevelSegment,
			ParentID:        parentID,
			StartMs:         startMs,
			EndMs:           endMs,
			SummaryVersion:  1,
			CheckpointState: types.StateFailed,
		}
		if perr := b.store.PutTocNodeWithGrips(failedNode, nil); perr != nil {
			return perr
		}
		return nil
	}

	var bullets = make([]types.TocBullet, 0, len(summary.Bullets))
	var grips []types.Grip
	for _, bullet := range summary.Bullets {
		var gripIDs = make([]string, 0, len(bullet.Grips))
		for _, g := range bullet.Grips {
			g.TocNodeID = nodeID
			gripIDs = append(gripIDs, g.GripID)
			if g.Excerpt != "" { // a non-stub grip, freshly extracted from this segment
				grips = append(grips, g)
			}
		}
		bullets = append(bullets, types.TocBullet{Text: bullet.Text, GripIDs: gripIDs})
	}

	var node = types.TocNode{
		NodeID:          nodeID,
		Level:           types.LevelSegment,
		ParentID:        parentID,
		StartMs:         startMs,
		EndMs:           endMs,
		Title:           summary.Title,
		Bullets:         bullets,
		Keywords:        summary.Keywords,
		SummaryVersion:  1,
		CheckpointState: types.StateSummarized,
	}
	node.Fingerprint = store.ComputeFingerprint(node)

	if err := b.store.PutTocNodeWithGrips(node, grips); err != nil {
		return err
	}
	if b.metrics != nil {
		b.metrics.JobsCompletedTotal.WithLabelValues("segment").Inc()
	}
	return nil
}

// segmentBounds returns the first and last event timestamps in the
// segment's own body, excluding OverlapEvents carried over from the
// previous segment.
func segmentBounds(seg types.Segment) (startMs, endMs int64) {
	if len(seg.Events) == 0 {
		return 0, 0
	}
	return seg.Events[0].TimestampMs, seg.Events[len(seg.Events)-1].TimestampMs
}
