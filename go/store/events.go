package store

import (
	"encoding/json"
	"sort"

	"github.com/jgraettinger/gorocksdb"

	"github.com/recall-memory/recall/go/recallerr"
	"github.com/recall-memory/recall/go/types"
)

// IngestEvents atomically writes event records, their events_by_id
// pointer, and one outbox entry per event. It fails only if the
// underlying engine fails or an event fails validation/uniqueness;
// partial visibility is never possible since all rows go through one
// WriteBatch.
func (s *Store) IngestEvents(events []types.Event) error {
	if len(events) == 0 {
		return nil
	}
	for i := range events {
		if err := events[i].Validate(); err != nil {
			return err
		}
	}

	// Reject duplicate event ids up front (open question: event_id is
	// assumed globally unique, per the events_by_id index).
	for i := range events {
		var k = eventByIDKey(events[i].EventID)
		if _, found, err := get(s.db, s.ro, s.cf(cfEventsByID), k); err != nil {
			return recallerr.New(recallerr.Storage, "store.ingest_events", err)
		} else if found {
			return recallerr.New(recallerr.InvalidInput, "store.ingest_events",
				duplicateEventError(events[i].EventID))
		}
	}

	var batch = gorocksdb.NewWriteBatch()
	defer batch.Destroy()

	var firstSeq = s.reserveSeqs(uint64(len(events)))

	for i, ev := range events {
		var value, err = json.Marshal(ev)
		if err != nil {
			return recallerr.New(recallerr.InvalidInput, "store.ingest_events", err)
		}
		var k = eventKey(ev.SessionID, ev.TimestampMs, ev.EventID)
		batch.PutCF(s.cf(cfEvents), k, value)
		batch.PutCF(s.cf(cfEventsByID), eventByIDKey(ev.EventID), k)

		var payload, _ = json.Marshal(types.EventIngestedPayload{
			SessionID: ev.SessionID,
			EventIDs:  []uint64{ev.EventID},
		})
		var entry = types.OutboxEntry{Seq: firstSeq + uint64(i), Kind: types.OutboxEventIngested, Payload: payload}
		var entryBytes, _ = json.Marshal(entry)
		batch.PutCF(s.cf(cfOutbox), outboxKey(entry.Seq), entryBytes)
	}

	if err := s.db.Write(s.wo, batch); err != nil {
		return recallerr.New(recallerr.Storage, "store.ingest_events", err)
	}
	return nil
}

// RangeScanEvents returns events ordered by timestamp then event id,
// bounded by limit. When sessionID is empty the scan spans all
// sessions; because the events column family is keyed
// session-major, a cross-session scan reads every session's events in
// [fromMs, toMs] and merge-sorts them in memory. That is the documented
// simplification for an embedded, single-node deployment.
func (s *Store) RangeScanEvents(sessionID string, fromMs, toMs int64, limit int) ([]types.Event, error) {
	if sessionID != "" {
		return s.rangeScanSession(sessionID, fromMs, toMs, limit)
	}

	var iter = s.db.NewIteratorCF(s.ro, s.cf(cfEvents))
	defer iter.Close()

	var out []types.Event
	for iter.SeekToFirst(); iter.Valid(); iter.Next() {
		var ev types.Event
		var val = iter.Value()
		if err := json.Unmarshal(val.Data(), &ev); err != nil {
			val.Free()
			return nil, recallerr.New(recallerr.Storage, "store.range_scan_events", err)
		}
		val.Free()
		if ev.TimestampMs >= fromMs && ev.TimestampMs <= toMs {
			out = append(out, ev)
		}
	}
	if err := iter.Err(); err != nil {
		return nil, recallerr.New(recallerr.Storage, "store.range_scan_events", err)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].TimestampMs != out[j].TimestampMs {
			return out[i].TimestampMs < out[j].TimestampMs
		}
		return out[i].EventID < out[j].EventID
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *Store) rangeScanSession(sessionID string, fromMs, toMs int64, limit int) ([]types.Event, error) {
	var iter = s.db.NewIteratorCF(s.ro, s.cf(cfEvents))
	defer iter.Close()

	var prefix = eventKeyPrefix(sessionID)
	var lower = eventKey(sessionID, fromMs, 0)
	var out []types.Event

	for iter.Seek(lower); iter.ValidForPrefix(prefix); iter.Next() {
		var ev types.Event
		var val = iter.Value()
		if err := json.Unmarshal(val.Data(), &ev); err != nil {
			val.Free()
			return nil, recallerr.New(recallerr.Storage, "store.range_scan_events", err)
		}
		val.Free()
		if ev.TimestampMs > toMs {
			break
		}
		out = append(out, ev)
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	if err := iter.Err(); err != nil {
		return nil, recallerr.New(recallerr.Storage, "store.range_scan_events", err)
	}
	return out, nil
}

// GetEventByID resolves a single event by its global id, following the
// events_by_id pointer into the events column family.
func (s *Store) GetEventByID(eventID uint64) (types.Event, bool, error) {
	var ptr, found, err = get(s.db, s.ro, s.cf(cfEventsByID), eventByIDKey(eventID))
	if err != nil {
		return types.Event{}, false, recallerr.New(recallerr.Storage, "store.get_event_by_id", err)
	}
	if !found {
		return types.Event{}, false, nil
	}
	var raw, found2, err2 = get(s.db, s.ro, s.cf(cfEvents), ptr)
	if err2 != nil {
		return types.Event{}, false, recallerr.New(recallerr.Storage, "store.get_event_by_id", err2)
	}
	if !found2 {
		return types.Event{}, false, nil
	}
	var ev types.Event
	if err := json.Unmarshal(raw, &ev); err != nil {
		return types.Event{}, false, recallerr.New(recallerr.Storage, "store.get_event_by_id", err)
	}
	return ev, true, nil
}

func duplicateEventError(eventID uint64) error {
	return &dupEventErr{eventID: eventID}
}

type dupEventErr struct{ eventID uint64 }

func (e *dupEventErr) Error() string {
	return "duplicate event_id " + eventByIDKeyString(e.eventID)
}

func eventByIDKeyString(eventID uint64) string {
	return string(eventByIDKey(eventID))
}
