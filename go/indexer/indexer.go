// Package indexer is the outbox consumer that keeps the BM25, vector,
// and topic-graph indexes in sync with the Store: it drains
// OutboxTocNodeWritten entries, loads the written TocNode and its
// Grips, and feeds them into whichever index engines are configured.
// It runs as a second, independent consumer of the same outbox the
// TocBuilder drains, tracking its own cursor in the checkpoints column
// family so the two consumers never interfere with each other's
// progress (spec §9's per-consumer-cursor pattern).
package indexer

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/recall-memory/recall/go/index"
	"github.com/recall-memory/recall/go/ops"
	"github.com/recall-memory/recall/go/recallerr"
	"github.com/recall-memory/recall/go/store"
	"github.com/recall-memory/recall/go/types"
)

// outboxConsumer names this consumer's cursor in the checkpoints
// column family, distinct from the TocBuilder's "tocbuilder" cursor.
const outboxConsumer = "indexer"

// Config enumerates the Consumer's operating parameters.
type Config struct {
	// OutboxBatchSize bounds how many outbox entries RunOnce reads per
	// call. Default 500.
	OutboxBatchSize int
	// PollInterval is how long Run sleeps between RunOnce calls that
	// drained nothing. Default 5s.
	PollInterval time.Duration
}

func (c Config) withDefaults() Config {
	if c.OutboxBatchSize <= 0 {
		c.OutboxBatchSize = 500
	}
	if c.PollInterval <= 0 {
		c.PollInterval = 5 * time.Second
	}
	return c
}

// Consumer drains OutboxTocNodeWritten entries into the BM25, vector,
// and topic-graph indexes. Vector and topic-graph are optional: a nil
// vector/embedder pair or a nil topics simply skips that layer for
// every node, the same degraded-but-working posture the router
// already tolerates.
type Consumer struct {
	store    *store.Store
	bm25     *index.BM25Index
	vector   *index.VectorIndex
	embedder index.Embedder
	topics   *index.TopicGraph
	log      ops.Logger
	metrics  *ops.Metrics
	cfg      Config
}

// New constructs a Consumer. bm25 may be nil to run without a keyword
// layer; vector/embedder and topics are independently optional.
func New(st *store.Store, bm25 *index.BM25Index, vector *index.VectorIndex, embedder index.Embedder, topics *index.TopicGraph, log ops.Logger, metrics *ops.Metrics, cfg Config) *Consumer {
	return &Consumer{
		store:    st,
		bm25:     bm25,
		vector:   vector,
		embedder: embedder,
		topics:   topics,
		log:      log,
		metrics:  metrics,
		cfg:      cfg.withDefaults(),
	}
}

// RunOnce drains and indexes this consumer's pending
// OutboxTocNodeWritten entries, acking through the last entry it read
// (including entries of other kinds, e.g. OutboxEventIngested, which
// this consumer has no use for but must still advance past).
func (c *Consumer) RunOnce(ctx context.Context) error {
	var cursor, err = c.store.OutboxCursor(outboxConsumer)
	if err != nil {
		return err
	}

	var entries []types.OutboxEntry
	entries, err = c.store.OutboxRead(cursor+1, c.cfg.OutboxBatchSize)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		return nil
	}

	var lastSeq = cursor
	for _, e := range entries {
		lastSeq = e.Seq
		if e.Kind != types.OutboxTocNodeWritten {
			continue
		}
		var payload types.TocNodeWrittenPayload
		if err := json.Unmarshal(e.Payload, &payload); err != nil {
			return recallerr.New(recallerr.Storage, "indexer.run_once", err)
		}
		if err := c.indexWrite(ctx, payload); err != nil {
			return err
		}
	}

	if c.metrics != nil {
		var tail, terr = c.store.OutboxRead(lastSeq+1, 1)
		if terr == nil {
			if len(tail) > 0 {
				c.metrics.OutboxLagSeqs.Set(1)
			} else {
				c.metrics.OutboxLagSeqs.Set(0)
			}
		}
	}

	return c.store.OutboxAck(outboxConsumer, lastSeq)
}

// Run calls RunOnce repeatedly until ctx is cancelled, sleeping
// cfg.PollInterval after every run, whether or not it found outbox
// work.
func (c *Consumer) Run(ctx context.Context) error {
	for {
		if err := c.RunOnce(ctx); err != nil {
			if recallerr.KindOf(err) == recallerr.Cancelled {
				return nil
			}
			return err
		}
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(c.cfg.PollInterval):
		}
	}
}

// indexWrite loads the node a OutboxTocNodeWritten entry announces,
// along with its grips, and feeds both into every configured index.
// A node or grip that no longer exists (pruned since the entry was
// written) is skipped rather than failing the drain.
func (c *Consumer) indexWrite(ctx context.Context, payload types.TocNodeWrittenPayload) error {
	var node, found, err = c.store.GetNode(payload.NodeID)
	if err != nil {
		if recallerr.KindOf(err) == recallerr.NotFound {
			return nil
		}
		return err
	}
	if !found {
		return nil
	}

	c.indexNode(ctx, node)

	for _, gripID := range payload.GripIDs {
		var grip, gerr = c.loadGrip(gripID)
		if gerr != nil {
			return gerr
		}
		if grip == nil {
			continue
		}
		c.indexGrip(ctx, *grip)
	}
	return nil
}

func (c *Consumer) loadGrip(gripID string) (*types.Grip, error) {
	var grip, found, err = c.store.GetGrip(gripID)
	if err != nil {
		if recallerr.KindOf(err) == recallerr.NotFound {
			return nil, nil
		}
		return nil, err
	}
	if !found {
		return nil, nil
	}
	return &grip, nil
}

// indexNode feeds one TocNode into BM25 (title+bullets+keywords),
// vector (same text, embedded, when an embedder is configured), and
// the topic graph (keyword co-occurrence). A node whose Fingerprint
// hasn't changed since it was last indexed is still re-Put: Put is
// idempotent, and checking the fingerprint here would only save CPU,
// not correctness, so it's left as a future optimization rather than
// built speculatively.
func (c *Consumer) indexNode(ctx context.Context, node types.TocNode) {
	c.indexNodeSearchFields(ctx, node)
	c.observeNodeTopics(node)
}

// indexNodeSearchFields feeds a TocNode into BM25 and vector only.
// Unlike BM25Index/VectorIndex, the topic graph already persists
// directly to the Store on every live ObserveNode call (it is not an
// ephemeral in-process structure), so Rebuild calls this instead of
// indexNode to avoid double-counting mention_count for nodes the live
// consumer already observed.
func (c *Consumer) indexNodeSearchFields(ctx context.Context, node types.TocNode) {
	var kind = index.TargetKindForLevel(node.Level)
	var text = nodeText(node)

	if c.bm25 != nil {
		c.bm25.Put(kind, node.NodeID, text, node.StartMs)
	}
	if c.vector != nil && c.embedder != nil {
		c.embedOne(ctx, kind, node.NodeID, text)
	}
}

func (c *Consumer) observeNodeTopics(node types.TocNode) {
	if c.topics == nil {
		return
	}
	if err := c.topics.ObserveNode(node); err != nil {
		c.log.Log(log.WarnLevel, log.Fields{"node_id": node.NodeID, "err": err.Error()}, "topic graph observe failed")
	}
}

func (c *Consumer) indexGrip(ctx context.Context, grip types.Grip) {
	if c.bm25 != nil {
		c.bm25.Put(index.TargetGrip, grip.GripID, grip.Excerpt, grip.TimestampMs)
	}
	if c.vector != nil && c.embedder != nil {
		c.embedOne(ctx, index.TargetGrip, grip.GripID, grip.Excerpt)
	}
}

// embedOne calls the embedder and stores the result, logging (rather
// than failing the drain) on an embedder error: a down embedding
// service degrades the vector layer to unavailable, which the router
// already tolerates, rather than stalling every other index.
func (c *Consumer) embedOne(ctx context.Context, kind index.TargetKind, id, text string) {
	var vec, err = c.embedder.Embed(ctx, text)
	if err != nil {
		c.log.Log(log.WarnLevel, log.Fields{"target_id": id, "err": err.Error()}, "embed failed")
		return
	}
	c.vector.Put(kind, id, vec)
}

// nodeText concatenates a TocNode's searchable fields the same way
// BM25Index.Put documents: title, then each bullet, then keywords.
func nodeText(node types.TocNode) string {
	var b strings.Builder
	b.WriteString(node.Title)
	for _, bullet := range node.Bullets {
		b.WriteByte('\n')
		b.WriteString(bullet.Text)
	}
	for _, kw := range node.Keywords {
		b.WriteByte('\n')
		b.WriteString(kw)
	}
	return b.String()
}
