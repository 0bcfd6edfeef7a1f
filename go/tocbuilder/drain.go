package tocbuilder

import (
	"context"
	"encoding/json"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/recall-memory/recall/go/recallerr"
	"github.com/recall-memory/recall/go/types"
)

// drainOutbox reads this builder's pending OutboxEventIngested entries,
// feeds each session's events through that session's Segmenter in
// timestamp order, and summarizes every segment the feed closes. It
// acks through the last entry it read, including entries of other
// kinds (e.g. OutboxTocNodeWritten), which this consumer has no
// further use for but must still advance past.
func (b *Builder) drainOutbox(ctx context.Context) error {
	var cursor, err = b.store.OutboxCursor(outboxConsumer)
	if err != nil {
		return err
	}

	var entries []types.OutboxEntry
	entries, err = b.store.OutboxRead(cursor+1, b.cfg.OutboxBatchSize)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		return nil
	}

	var eventIDs []uint64
	var lastSeq = cursor
	for _, e := range entries {
		lastSeq = e.Seq
		if e.Kind != types.OutboxEventIngested {
			continue
		}
		var payload types.EventIngestedPayload
		if err := json.Unmarshal(e.Payload, &payload); err != nil {
			return recallerr.New(recallerr.Storage, "tocbuilder.drain_outbox", err)
		}
		eventIDs = append(eventIDs, payload.EventIDs...)
	}

	var events, gerr = b.fetchEvents(eventIDs)
	if gerr != nil {
		return gerr
	}

	var bySession = make(map[string][]types.Event, len(events))
	var order []string
	for _, ev := range events {
		if _, seen := bySession[ev.SessionID]; !seen {
			order = append(order, ev.SessionID)
		}
		bySession[ev.SessionID] = append(bySession[ev.SessionID], ev)
	}

	var segs []types.Segment
	for _, sessionID := range order {
		var evs = bySession[sessionID]
		sort.Slice(evs, func(i, j int) bool {
			if evs[i].TimestampMs != evs[j].TimestampMs {
				return evs[i].TimestampMs < evs[j].TimestampMs
			}
			return evs[i].EventID < evs[j].EventID
		})
		segs = append(segs, b.pushSession(sessionID, evs)...)
	}

	if err := b.summarizeSegments(ctx, segs); err != nil {
		return err
	}

	return b.store.OutboxAck(outboxConsumer, lastSeq)
}

// fetchEvents resolves every event id via the Store, in no particular
// order; order is re-established per session by the caller.
func (b *Builder) fetchEvents(ids []uint64) ([]types.Event, error) {
	var out = make([]types.Event, 0, len(ids))
	for _, id := range ids {
		var ev, found, err = b.store.GetEventByID(id)
		if err != nil {
			return nil, err
		}
		if !found {
			continue // the outbox entry outlived whatever wrote it; skip rather than fail the whole drain.
		}
		out = append(out, ev)
	}
	return out, nil
}

// pushSession feeds one session's events (already sorted) through its
// Segmenter, flushing immediately on a session_end event since no
// further events are expected for that session's open body.
func (b *Builder) pushSession(sessionID string, events []types.Event) []types.Segment {
	var actor = b.sessions.actor(sessionID, b.cfg.SegmenterConfig, b.counter)
	actor.mu.Lock()
	defer actor.mu.Unlock()

	var out []types.Segment
	for _, ev := range events {
		if seg, ok := actor.seg.Push(ev); ok {
			out = append(out, seg)
		}
		if ev.Role == types.RoleSessionEnd {
			if seg, ok := actor.seg.Flush(); ok {
				out = append(out, seg)
			}
		}
	}
	return out
}

// summarizeSegments summarizes and persists every closed segment,
// bounded to cfg.SummarizerWorkers concurrent summarizer calls. A
// segment whose summarizer call ultimately fails is recorded as a
// failed node rather than aborting the whole drain.
func (b *Builder) summarizeSegments(ctx context.Context, segs []types.Segment) error {
	if len(segs) == 0 {
		return nil
	}

	var g, gctx = errgroup.WithContext(ctx)
	g.SetLimit(b.cfg.SummarizerWorkers)

	for _, seg := range segs {
		var seg = seg // capture
		g.Go(func() error {
			return b.buildSegmentNode(gctx, seg)
		})
	}
	return g.Wait()
}
