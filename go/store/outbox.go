package store

import (
	"encoding/json"
	"strconv"

	"github.com/recall-memory/recall/go/recallerr"
	"github.com/recall-memory/recall/go/types"
)

const outboxConsumerJobKind = "outbox_consumer"

// loadNextSeq scans the outbox's last key on Open to recover the next
// sequence number to allocate, so restart never reuses a seq.
func (s *Store) loadNextSeq() error {
	var iter = s.db.NewIteratorCF(s.ro, s.cf(cfOutbox))
	defer iter.Close()

	iter.SeekToLast()
	if !iter.Valid() {
		s.nextSeq = 1
		return nil
	}
	var key = iter.Key()
	var seq = outboxKeySeq(key.Data())
	key.Free()
	if err := iter.Err(); err != nil {
		return recallerr.New(recallerr.Storage, "store.load_next_seq", err)
	}
	s.nextSeq = seq + 1
	return nil
}

// reserveSeqs atomically reserves n consecutive sequence numbers and
// returns the first one.
func (s *Store) reserveSeqs(n uint64) uint64 {
	s.seqMu.Lock()
	defer s.seqMu.Unlock()
	var first = s.nextSeq
	s.nextSeq += n
	return first
}

// OutboxRead returns up to max entries with seq >= fromSeq, ordered by
// seq.
func (s *Store) OutboxRead(fromSeq uint64, max int) ([]types.OutboxEntry, error) {
	var iter = s.db.NewIteratorCF(s.ro, s.cf(cfOutbox))
	defer iter.Close()

	var out []types.OutboxEntry
	for iter.Seek(outboxKey(fromSeq)); iter.Valid(); iter.Next() {
		var entry types.OutboxEntry
		var val = iter.Value()
		if err := json.Unmarshal(val.Data(), &entry); err != nil {
			val.Free()
			return nil, recallerr.New(recallerr.Storage, "store.outbox_read", err)
		}
		val.Free()
		out = append(out, entry)
		if max > 0 && len(out) >= max {
			break
		}
	}
	if err := iter.Err(); err != nil {
		return nil, recallerr.New(recallerr.Storage, "store.outbox_read", err)
	}
	return out, nil
}

// OutboxAck advances consumer's cursor to throughSeq (inclusive),
// recorded as a checkpoint so a restarted consumer resumes from its
// own last-acked position rather than at-most-once skipping work.
func (s *Store) OutboxAck(consumer string, throughSeq uint64) error {
	return s.CheckpointSet(outboxConsumerJobKind, consumer, strconv.FormatUint(throughSeq, 10))
}

// OutboxCursor returns the last seq consumer acked, or 0 if it has
// never acked.
func (s *Store) OutboxCursor(consumer string) (uint64, error) {
	var marker, found, err = s.CheckpointGet(outboxConsumerJobKind, consumer)
	if err != nil {
		return 0, err
	}
	if !found {
		return 0, nil
	}
	var seq, perr = strconv.ParseUint(marker, 10, 64)
	if perr != nil {
		return 0, recallerr.New(recallerr.Storage, "store.outbox_cursor", perr)
	}
	return seq, nil
}
