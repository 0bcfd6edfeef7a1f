package store

import (
	"encoding/json"
	"fmt"

	"github.com/recall-memory/recall/go/recallerr"
	"github.com/recall-memory/recall/go/types"
)

// EventsBefore returns up to limit events immediately preceding
// anchorEventID within its own session, in chronological order. Used
// by the grip expander to build the "before" context window.
func (s *Store) EventsBefore(anchorEventID uint64, limit int) ([]types.Event, error) {
	var anchor, found, err = s.GetEventByID(anchorEventID)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, recallerr.New(recallerr.NotFound, "store.events_before", fmt.Errorf("event %d not found", anchorEventID))
	}

	var prefix = eventKeyPrefix(anchor.SessionID)
	var iter = s.db.NewIteratorCF(s.ro, s.cf(cfEvents))
	defer iter.Close()

	iter.Seek(eventKey(anchor.SessionID, anchor.TimestampMs, anchor.EventID))
	if !iter.ValidForPrefix(prefix) {
		return nil, nil
	}
	iter.Prev()

	var out []types.Event
	for ; len(out) < limit && iter.ValidForPrefix(prefix); iter.Prev() {
		var ev types.Event
		var val = iter.Value()
		if err := json.Unmarshal(val.Data(), &ev); err != nil {
			val.Free()
			return nil, recallerr.New(recallerr.Storage, "store.events_before", err)
		}
		val.Free()
		out = append(out, ev)
	}
	if err := iter.Err(); err != nil {
		return nil, recallerr.New(recallerr.Storage, "store.events_before", err)
	}

	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out, nil
}

// EventsAfter returns up to limit events immediately following
// anchorEventID within its own session, in chronological order.
func (s *Store) EventsAfter(anchorEventID uint64, limit int) ([]types.Event, error) {
	var anchor, found, err = s.GetEventByID(anchorEventID)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, recallerr.New(recallerr.NotFound, "store.events_after", fmt.Errorf("event %d not found", anchorEventID))
	}

	var prefix = eventKeyPrefix(anchor.SessionID)
	var iter = s.db.NewIteratorCF(s.ro, s.cf(cfEvents))
	defer iter.Close()

	iter.Seek(eventKey(anchor.SessionID, anchor.TimestampMs, anchor.EventID))
	if !iter.ValidForPrefix(prefix) {
		return nil, nil
	}
	iter.Next()

	var out []types.Event
	for ; len(out) < limit && iter.ValidForPrefix(prefix); iter.Next() {
		var ev types.Event
		var val = iter.Value()
		if err := json.Unmarshal(val.Data(), &ev); err != nil {
			val.Free()
			return nil, recallerr.New(recallerr.Storage, "store.events_after", err)
		}
		val.Free()
		out = append(out, ev)
	}
	if err := iter.Err(); err != nil {
		return nil, recallerr.New(recallerr.Storage, "store.events_after", err)
	}
	return out, nil
}
