package store

import "github.com/recall-memory/recall/go/recallerr"

// CheckpointGet returns the last-completed marker for (jobKind,
// scopeKey), or found=false if the job has never completed.
func (s *Store) CheckpointGet(jobKind, scopeKey string) (marker string, found bool, err error) {
	var raw, ok, gerr = get(s.db, s.ro, s.cf(cfCheckpoints), checkpointKey(jobKind, scopeKey))
	if gerr != nil {
		return "", false, recallerr.New(recallerr.Storage, "store.checkpoint_get", gerr)
	}
	if !ok {
		return "", false, nil
	}
	return string(raw), true, nil
}

// CheckpointSet idempotently records marker as the last-completed
// state for (jobKind, scopeKey).
func (s *Store) CheckpointSet(jobKind, scopeKey, marker string) error {
	if err := s.db.PutCF(s.wo, s.cf(cfCheckpoints), checkpointKey(jobKind, scopeKey), []byte(marker)); err != nil {
		return recallerr.New(recallerr.Storage, "store.checkpoint_set", err)
	}
	return nil
}
