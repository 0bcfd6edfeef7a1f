package store

import (
	"encoding/json"
	"fmt"

	"github.com/recall-memory/recall/go/recallerr"
	"github.com/recall-memory/recall/go/types"
)

// GetGrip resolves a single Grip by id.
func (s *Store) GetGrip(gripID string) (types.Grip, bool, error) {
	var raw, found, err = get(s.db, s.ro, s.cf(cfGrips), []byte(gripID))
	if err != nil {
		return types.Grip{}, false, recallerr.New(recallerr.Storage, "store.get_grip", err)
	}
	if !found {
		return types.Grip{}, false, recallerr.New(recallerr.NotFound, "store.get_grip", fmt.Errorf("grip %s not found", gripID))
	}
	var g types.Grip
	if err := json.Unmarshal(raw, &g); err != nil {
		return types.Grip{}, false, recallerr.New(recallerr.Storage, "store.get_grip", err)
	}
	return g, true, nil
}

// GetGripsByNode returns every Grip attached to nodeID's bullets, in
// grip_id order.
func (s *Store) GetGripsByNode(nodeID string) ([]types.Grip, error) {
	var iter = s.db.NewIteratorCF(s.ro, s.cf(cfGripsByNode))
	defer iter.Close()

	var prefix = gripByNodePrefix(nodeID)
	var out []types.Grip
	for iter.Seek(prefix); iter.ValidForPrefix(prefix); iter.Next() {
		var key = string(iter.Key().Data())
		var gripID = key[len(prefix):]
		g, found, err := s.GetGrip(gripID)
		if err != nil && recallerr.KindOf(err) != recallerr.NotFound {
			return nil, err
		}
		if found {
			out = append(out, g)
		}
	}
	if err := iter.Err(); err != nil {
		return nil, recallerr.New(recallerr.Storage, "store.get_grips_by_node", err)
	}
	return out, nil
}
