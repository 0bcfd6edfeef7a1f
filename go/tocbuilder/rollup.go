package tocbuilder

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/recall-memory/recall/go/recallerr"
	"github.com/recall-memory/recall/go/store"
	"github.com/recall-memory/recall/go/summarizer"
	"github.com/recall-memory/recall/go/tocid"
	"github.com/recall-memory/recall/go/types"
)

// sweepLevel enumerates every child-level node, rolled up or not,
// groups them by the calendar window they fall into at level, and
// rolls up each window whose children are all ready and whose
// calendar bound has closed. One worker runs per level (the caller
// launches sweepLevel once per configured level inside an errgroup),
// so distinct levels build concurrently; sibling windows at the same
// level build one at a time here, but writes across windows never
// conflict since Store.PutTocNodeWithGrips locks per node id.
func (b *Builder) sweepLevel(ctx context.Context, level types.Level) error {
	var childLevel = level.Children()
	if childLevel == "" {
		return recallerr.New(recallerr.InvalidInput, "tocbuilder.sweep_level", errUnrollableLevel(level))
	}

	var children, err = b.store.ListNodesByLevel(childLevel)
	if err != nil {
		return err
	}
	if len(children) == 0 {
		return nil
	}

	var byParent = make(map[string][]types.TocNode)
	var order []string
	for _, child := range children {
		var parentID = tocid.NodeID(level, time.UnixMilli(child.StartMs))
		if _, seen := byParent[parentID]; !seen {
			order = append(order, parentID)
		}
		byParent[parentID] = append(byParent[parentID], child)
	}

	var now = time.Now().UnixMilli()
	for _, parentID := range order {
		if err := ctx.Err(); err != nil {
			return nil // cancellation unwinds without side effects, not treated as a sweep failure
		}
		if err := b.rollupWindow(ctx, level, parentID, byParent[parentID], now); err != nil {
			return err
		}
	}
	return nil
}

type errUnrollableLevel types.Level

func (e errUnrollableLevel) Error() string {
	return "tocbuilder: level " + string(e) + " has no children to roll up"
}

// rollupWindow builds (or rebuilds) the parent node for one calendar
// window once every known child is summarized or rolled_up and the
// window's calendar bound has closed past the configured grace period.
// A window with a pending or failed child is left alone: the failed
// child is a barrier until a later pass resolves it.
func (b *Builder) rollupWindow(ctx context.Context, level types.Level, parentID string, children []types.TocNode, nowMs int64) error {
	var windowStartMs, windowEndMs = tocid.Window(level, parentIDTime(children))
	if nowMs < windowEndMs+b.cfg.RollupGraceMs {
		return nil
	}

	for _, c := range children {
		if c.CheckpointState != types.StateSummarized && c.CheckpointState != types.StateRolledUp {
			return nil
		}
	}

	existing, found, err := b.store.GetNode(parentID)
	if err != nil && recallerr.KindOf(err) != recallerr.NotFound {
		return err
	}
	if found && existing.CheckpointState == types.StateRolledUp && sameChildSet(existing.ChildIDs, children) {
		return nil // already rolled up with exactly this child set; nothing changed
	}

	var childSummaries = make([]summarizer.ChildSummary, 0, len(children))
	var childIDs = make([]string, 0, len(children))
	for _, c := range children {
		childSummaries = append(childSummaries, summarizer.ChildSummary{
			NodeID:   c.NodeID,
			Title:    c.Title,
			Bullets:  c.Bullets,
			Keywords: c.Keywords,
		})
		childIDs = append(childIDs, c.NodeID)
	}

	var started = time.Now()
	summary, serr := b.rollupSummarizer.SummarizeChildren(ctx, summarizer.ChildWindow{
		Level:   level,
		StartMs: windowStartMs,
		EndMs:   windowEndMs,
	}, childSummaries)
	if b.metrics != nil {
		b.metrics.RollupDuration.WithLabelValues(string(level)).Observe(time.Since(started).Seconds())
	}
	if serr != nil {
		b.log.Log(log.WarnLevel, log.Fields{"node_id": parentID, "err": serr.Error()}, "rollup summarization failed")
		if b.metrics != nil {
			b.metrics.JobsFailedTotal.WithLabelValues(string(level)).Inc()
		}
		return nil
	}

	var node = types.TocNode{
		NodeID:          parentID,
		Level:           level,
		ParentID:        grandparentID(level, windowStartMs),
		ChildIDs:        childIDs,
		StartMs:         windowStartMs,
		EndMs:           windowEndMs,
		Title:           summary.Title,
		Bullets:         rollupBullets(summary),
		Keywords:        summary.Keywords,
		SummaryVersion:  1,
		CheckpointState: types.StateRolledUp,
	}
	node.Fingerprint = store.ComputeFingerprint(node)

	if err := b.store.PutTocNodeWithGrips(node, nil); err != nil {
		return err
	}
	if b.metrics != nil {
		b.metrics.JobsCompletedTotal.WithLabelValues(string(level)).Inc()
	}

	for _, c := range children {
		if c.CheckpointState == types.StateRolledUp {
			continue
		}
		if err := b.store.SetCheckpointState(c.NodeID, types.StateRolledUp); err != nil {
			return err
		}
	}
	return nil
}

func rollupBullets(summary summarizer.Summary) []types.TocBullet {
	var out = make([]types.TocBullet, 0, len(summary.Bullets))
	for _, bullet := range summary.Bullets {
		var ids = make([]string, 0, len(bullet.Grips))
		for _, g := range bullet.Grips {
			ids = append(ids, g.GripID)
		}
		out = append(out, types.TocBullet{Text: bullet.Text, GripIDs: ids})
	}
	return out
}

func parentIDTime(children []types.TocNode) time.Time {
	return time.UnixMilli(children[0].StartMs)
}

// grandparentID returns the node id of the window at level.Parent()
// containing windowStartMs, or "" for LevelYear which has no parent.
func grandparentID(level types.Level, windowStartMs int64) string {
	var parentLevel = level.Parent()
	if parentLevel == "" {
		return ""
	}
	return tocid.NodeID(parentLevel, time.UnixMilli(windowStartMs))
}

func sameChildSet(existing []string, children []types.TocNode) bool {
	if len(existing) != len(children) {
		return false
	}
	var have = make(map[string]bool, len(existing))
	for _, id := range existing {
		have[id] = true
	}
	for _, c := range children {
		if !have[c.NodeID] {
			return false
		}
	}
	return true
}
