// Package tocbuilder orchestrates segmentation, summarization, and
// rollup into the five-level TocNode hierarchy. It is the only writer
// of TocNodes: it drains the Store's outbox, feeds each session's
// events through a per-session Segmenter, summarizes closed segments
// into segment-level TocNodes, and periodically sweeps each level
// above segment for windows whose children are all summarized and
// ready to roll up.
package tocbuilder

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/recall-memory/recall/go/ops"
	"github.com/recall-memory/recall/go/recallerr"
	"github.com/recall-memory/recall/go/segmenter"
	"github.com/recall-memory/recall/go/store"
	"github.com/recall-memory/recall/go/summarizer"
	"github.com/recall-memory/recall/go/types"
)

// outboxConsumer names this builder's cursor in the checkpoints column
// family; only one tocbuilder process may run against a Store at a
// time, matching the spec's single-writer invariant for TocNodes.
const outboxConsumer = "tocbuilder"

// Builder holds the per-process state a build loop needs: one
// Segmenter per active session (never torn down, since a session may
// resume after an arbitrarily long gap) and the capabilities it calls
// into.
type Builder struct {
	store            *store.Store
	cfg              Config
	counter          segmenter.TokenCounter
	eventSummarizer  summarizer.Summarizer
	rollupSummarizer summarizer.Summarizer
	log              ops.Logger
	metrics          *ops.Metrics

	sessions sessionRegistry
}

// New constructs a Builder. eventSummarizer is typically summarizer.Local{};
// rollupSummarizer is typically summarizer.Rollup{}. counter may be nil
// (segmenter.DefaultTokenCounter is used).
func New(
	st *store.Store,
	eventSummarizer summarizer.Summarizer,
	rollupSummarizer summarizer.Summarizer,
	counter segmenter.TokenCounter,
	log ops.Logger,
	metrics *ops.Metrics,
	cfg Config,
) *Builder {
	cfg = cfg.withDefaults()
	return &Builder{
		store:            st,
		cfg:              cfg,
		counter:          counter,
		eventSummarizer:  eventSummarizer,
		rollupSummarizer: rollupSummarizer,
		log:              log,
		metrics:          metrics,
		sessions:         newSessionRegistry(),
	}
}

// RunOnce drains the outbox once, summarizing every segment that
// closes as a result, then sweeps every configured rollup level. It
// returns the first error encountered; a segment-level summarization
// failure is not fatal to the run (the node is marked failed and
// RunOnce continues), but a Store failure is.
func (b *Builder) RunOnce(ctx context.Context) error {
	if err := b.drainOutbox(ctx); err != nil {
		return err
	}

	var g, gctx = errgroup.WithContext(ctx)
	for _, level := range b.cfg.RollupLevels {
		var level = level // capture
		g.Go(func() error {
			return b.sweepLevel(gctx, level)
		})
	}
	return g.Wait()
}

// Run calls RunOnce repeatedly until ctx is cancelled, sleeping
// cfg.PollInterval after every run, whether or not it found outbox
// work. Callers
// that want their own scheduling loop should call RunOnce directly
// instead.
func (b *Builder) Run(ctx context.Context) error {
	for {
		if err := b.RunOnce(ctx); err != nil {
			if recallerr.KindOf(err) == recallerr.Cancelled {
				return nil
			}
			return err
		}
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(b.cfg.PollInterval):
		}
	}
}

// Config enumerates the Builder's operating parameters, with the
// stated defaults applied by withDefaults where a caller leaves a
// field zero.
type Config struct {
	// OutboxBatchSize bounds how many outbox entries drainOutbox reads
	// per call. Default 500.
	OutboxBatchSize int
	// SummarizerWorkers bounds the number of segments summarized
	// concurrently. Default 4.
	SummarizerWorkers int
	// SegmenterConfig configures every per-session Segmenter this
	// Builder constructs.
	SegmenterConfig segmenter.Config
	// RollupLevels lists the levels (above segment) swept by RunOnce,
	// in the order their sweeps are launched; sweeps run concurrently
	// regardless of this order. Default [day, week, month, year].
	RollupLevels []types.Level
	// RollupGraceMs delays rolling up a window until its calendar
	// bound has been closed for at least this long, so a late-arriving
	// event in the same window doesn't force a re-open. Default 0
	// (roll up as soon as a window's children are all ready); callers
	// backfilling historical data typically raise this.
	RollupGraceMs int64
	// PollInterval is how long Run sleeps after each RunOnce call,
	// including calls that drained work. Default 5s.
	PollInterval time.Duration
}

func (c Config) withDefaults() Config {
	if c.OutboxBatchSize <= 0 {
		c.OutboxBatchSize = 500
	}
	if c.SummarizerWorkers <= 0 {
		c.SummarizerWorkers = 4
	}
	if len(c.RollupLevels) == 0 {
		c.RollupLevels = []types.Level{types.LevelDay, types.LevelWeek, types.LevelMonth, types.LevelYear}
	}
	if c.PollInterval <= 0 {
		c.PollInterval = 5 * time.Second
	}
	if c.SegmenterConfig == (segmenter.Config{}) {
		c.SegmenterConfig = segmenter.DefaultConfig()
	}
	return c
}
