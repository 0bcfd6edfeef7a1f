package indexer

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/recall-memory/recall/go/types"
)

// rebuildLevels lists every level Rebuild walks, in no particular
// dependency order: indexing is idempotent per node, so levels can be
// replayed in any order or even concurrently; this walks them
// sequentially for a predictable, low-memory rebuild.
var rebuildLevels = []types.Level{
	types.LevelYear, types.LevelMonth, types.LevelWeek, types.LevelDay, types.LevelSegment,
}

// Rebuild repopulates the BM25 and vector indexes from the Store
// alone, by replaying every TocNode (and, for segment nodes, their
// Grips) through the same Put calls RunOnce uses. This is what makes
// those two in-process structures "rebuildable from the Store alone"
// (go/index's package doc): they hold no durable state of their own,
// so a process restart calls Rebuild once before Run starts draining
// new outbox entries. The topic graph is excluded: it already
// persists directly to the Store on every live ObserveNode call, so
// it needs no separate rebuild path and replaying it here would
// double-count mention_count.
func (c *Consumer) Rebuild(ctx context.Context) error {
	var started = time.Now()
	var nodeCount int

	for _, level := range rebuildLevels {
		if err := ctx.Err(); err != nil {
			return nil
		}
		var nodes, err = c.store.ListNodesByLevel(level)
		if err != nil {
			return err
		}
		for _, node := range nodes {
			c.indexNodeSearchFields(ctx, node)
			nodeCount++

			if level != types.LevelSegment {
				continue
			}
			grips, gerr := c.store.GetGripsByNode(node.NodeID)
			if gerr != nil {
				return gerr
			}
			for _, grip := range grips {
				c.indexGrip(ctx, grip)
			}
		}
	}

	var elapsed = time.Since(started).Seconds()
	if c.metrics != nil {
		if c.bm25 != nil {
			c.metrics.IndexRebuildSecs.WithLabelValues("bm25").Observe(elapsed)
		}
		if c.vector != nil && c.embedder != nil {
			c.metrics.IndexRebuildSecs.WithLabelValues("vector").Observe(elapsed)
		}
	}
	c.log.Log(log.InfoLevel, log.Fields{"nodes": nodeCount, "seconds": elapsed}, "index rebuild complete")
	return nil
}
