package store

import (
	"encoding/json"
	"fmt"

	"github.com/jgraettinger/gorocksdb"

	"github.com/recall-memory/recall/go/recallerr"
	"github.com/recall-memory/recall/go/types"
)

// PutTocNodeWithGrips atomically writes node, its parent's
// child-index row, every grip, and their node-index rows, plus one
// outbox entry announcing the write for the indexers. The write for a
// given node.NodeID is serialized against concurrent writers of the
// same node (see Store.nodeLock); rollup siblings in different
// windows proceed independently.
func (s *Store) PutTocNodeWithGrips(node types.TocNode, grips []types.Grip) error {
	for i := range grips {
		if err := grips[i].Validate(); err != nil {
			return recallerr.New(recallerr.InvalidInput, "store.put_toc_node_with_grips", err)
		}
		if err := s.rejectCrossSessionGrip(grips[i]); err != nil {
			return err
		}
	}

	var lock = s.nodeLock(node.NodeID)
	lock.Lock()
	defer lock.Unlock()

	var batch = gorocksdb.NewWriteBatch()
	defer batch.Destroy()

	nodeBytes, err := json.Marshal(node)
	if err != nil {
		return recallerr.New(recallerr.InvalidInput, "store.put_toc_node_with_grips", err)
	}
	batch.PutCF(s.cf(cfTocNodes), []byte(node.NodeID), nodeBytes)

	if node.ParentID != "" {
		batch.PutCF(s.cf(cfTocChildren), tocChildKey(node.ParentID, node.StartMs, node.NodeID), nil)
	}

	var gripIDs = make([]string, 0, len(grips))
	for _, g := range grips {
		gripBytes, gerr := json.Marshal(g)
		if gerr != nil {
			return recallerr.New(recallerr.InvalidInput, "store.put_toc_node_with_grips", gerr)
		}
		batch.PutCF(s.cf(cfGrips), []byte(g.GripID), gripBytes)
		batch.PutCF(s.cf(cfGripsByNode), gripByNodeKey(g.TocNodeID, g.GripID), nil)
		gripIDs = append(gripIDs, g.GripID)
	}

	var seq = s.reserveSeqs(1)
	var payload, _ = json.Marshal(types.TocNodeWrittenPayload{NodeID: node.NodeID, GripIDs: gripIDs})
	var entry = types.OutboxEntry{Seq: seq, Kind: types.OutboxTocNodeWritten, Payload: payload}
	var entryBytes, _ = json.Marshal(entry)
	batch.PutCF(s.cf(cfOutbox), outboxKey(seq), entryBytes)

	if err := s.db.Write(s.wo, batch); err != nil {
		return recallerr.New(recallerr.Storage, "store.put_toc_node_with_grips", err)
	}
	s.hot.Remove(node.NodeID)
	return nil
}

// rejectCrossSessionGrip enforces "a grip range crossing session
// boundaries is rejected at creation": the events at the range's
// endpoints must belong to the same session. Events in between are
// trusted to share that session too, since a grip's range is only
// ever built from one session's contiguous segment. A missing
// endpoint event is not itself an error here — GetEventByID / ingest
// ordering is responsible for that — so the check only fires once
// both endpoints resolve.
func (s *Store) rejectCrossSessionGrip(g types.Grip) error {
	var start, startFound, err = s.GetEventByID(g.EventIDStart)
	if err != nil {
		return err
	}
	var end, endFound, err2 = s.GetEventByID(g.EventIDEnd)
	if err2 != nil {
		return err2
	}
	if startFound && endFound && start.SessionID != end.SessionID {
		return recallerr.New(recallerr.InvalidInput, "store.put_toc_node_with_grips",
			fmt.Errorf("grip %s spans sessions %q and %q", g.GripID, start.SessionID, end.SessionID))
	}
	return nil
}

// GetNode returns the TocNode with the given id, consulting the hot
// cache before RocksDB.
func (s *Store) GetNode(nodeID string) (types.TocNode, bool, error) {
	if cached, ok := s.hot.Get(nodeID); ok {
		var node types.TocNode
		if err := json.Unmarshal(cached, &node); err != nil {
			return types.TocNode{}, false, recallerr.New(recallerr.Storage, "store.get_node", err)
		}
		return node, true, nil
	}

	var raw, found, err = get(s.db, s.ro, s.cf(cfTocNodes), []byte(nodeID))
	if err != nil {
		return types.TocNode{}, false, recallerr.New(recallerr.Storage, "store.get_node", err)
	}
	if !found {
		return types.TocNode{}, false, recallerr.New(recallerr.NotFound, "store.get_node", fmt.Errorf("node %s not found", nodeID))
	}
	var node types.TocNode
	if err := json.Unmarshal(raw, &node); err != nil {
		return types.TocNode{}, false, recallerr.New(recallerr.Storage, "store.get_node", err)
	}
	s.hot.Add(nodeID, raw)
	return node, true, nil
}

// BrowseChildren returns up to limit children of parentID ordered by
// start time, starting after the continuation token (the previous
// page's last child id), plus the token for the next page or "" if
// exhausted.
func (s *Store) BrowseChildren(parentID string, limit int, continuation string) (children []types.TocNode, next string, err error) {
	if limit <= 0 {
		limit = 100
	}

	var iter = s.db.NewIteratorCF(s.ro, s.cf(cfTocChildren))
	defer iter.Close()

	var prefix = tocChildPrefix(parentID)
	if continuation != "" {
		iter.Seek([]byte(continuation))
		if iter.ValidForPrefix(prefix) && string(iter.Key().Data()) == continuation {
			iter.Next()
		}
	} else {
		iter.Seek(prefix)
	}

	for ; iter.ValidForPrefix(prefix); iter.Next() {
		childID, ok := splitTocChildKey(iter.Key().Data(), parentID)
		if !ok {
			continue
		}
		node, found, gerr := s.GetNode(childID)
		if gerr != nil && recallerr.KindOf(gerr) != recallerr.NotFound {
			return nil, "", gerr
		}
		if found {
			children = append(children, node)
		}
		if len(children) >= limit {
			next = string(iter.Key().Data())
			iter.Next()
			if !iter.ValidForPrefix(prefix) {
				next = ""
			}
			break
		}
	}
	if err := iter.Err(); err != nil {
		return nil, "", recallerr.New(recallerr.Storage, "store.browse_children", err)
	}
	return children, next, nil
}

// ListNodesByLevel returns every TocNode at level, in key order (which
// is also start-time order, since segment/day/week/month/year ids all
// embed a zero-padded calendar field). Used by rollup sweeps to find
// rollup candidates; not meant for hot read paths.
func (s *Store) ListNodesByLevel(level types.Level) ([]types.TocNode, error) {
	var iter = s.db.NewIteratorCF(s.ro, s.cf(cfTocNodes))
	defer iter.Close()

	var prefix = []byte("toc:" + string(level) + ":")
	var out []types.TocNode
	for iter.Seek(prefix); iter.ValidForPrefix(prefix); iter.Next() {
		var node types.TocNode
		var val = iter.Value()
		if err := json.Unmarshal(val.Data(), &node); err != nil {
			val.Free()
			return nil, recallerr.New(recallerr.Storage, "store.list_nodes_by_level", err)
		}
		val.Free()
		out = append(out, node)
	}
	if err := iter.Err(); err != nil {
		return nil, recallerr.New(recallerr.Storage, "store.list_nodes_by_level", err)
	}
	return out, nil
}

// SetCheckpointState updates just the checkpoint_state field of an
// existing node, read-modify-write under the same per-node lock
// PutTocNodeWithGrips uses, so it never races a concurrent rollup
// write of the same node.
func (s *Store) SetCheckpointState(nodeID string, state types.CheckpointState) error {
	var lock = s.nodeLock(nodeID)
	lock.Lock()
	defer lock.Unlock()

	var raw, found, err = get(s.db, s.ro, s.cf(cfTocNodes), []byte(nodeID))
	if err != nil {
		return recallerr.New(recallerr.Storage, "store.set_checkpoint_state", err)
	}
	if !found {
		return recallerr.New(recallerr.NotFound, "store.set_checkpoint_state", fmt.Errorf("node %s not found", nodeID))
	}
	var node types.TocNode
	if err := json.Unmarshal(raw, &node); err != nil {
		return recallerr.New(recallerr.Storage, "store.set_checkpoint_state", err)
	}
	node.CheckpointState = state

	var updated, merr = json.Marshal(node)
	if merr != nil {
		return recallerr.New(recallerr.Storage, "store.set_checkpoint_state", merr)
	}
	if err := s.db.PutCF(s.wo, s.cf(cfTocNodes), []byte(nodeID), updated); err != nil {
		return recallerr.New(recallerr.Storage, "store.set_checkpoint_state", err)
	}
	s.hot.Remove(nodeID)
	return nil
}

// GetRootNodes returns all year-level nodes, the roots of the TOC.
func (s *Store) GetRootNodes() ([]types.TocNode, error) {
	var iter = s.db.NewIteratorCF(s.ro, s.cf(cfTocNodes))
	defer iter.Close()

	var out []types.TocNode
	for iter.Seek([]byte("toc:year:")); iter.ValidForPrefix([]byte("toc:year:")); iter.Next() {
		var node types.TocNode
		var val = iter.Value()
		if err := json.Unmarshal(val.Data(), &node); err != nil {
			val.Free()
			return nil, recallerr.New(recallerr.Storage, "store.get_root_nodes", err)
		}
		val.Free()
		out = append(out, node)
	}
	if err := iter.Err(); err != nil {
		return nil, recallerr.New(recallerr.Storage, "store.get_root_nodes", err)
	}
	return out, nil
}
