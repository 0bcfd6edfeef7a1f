// Package store implements recall's durable column-family key/value
// layout over an embedded RocksDB engine (github.com/jgraettinger/gorocksdb),
// with atomic multi-CF write batches, an append-only outbox, and
// per-(job_kind, scope_key) checkpoints. Any write either fully
// persists and becomes visible to subsequent reads, or has no effect;
// a crash mid-write leaves the store at its last fully persisted
// state, because every multi-row change here goes through exactly one
// gorocksdb.WriteBatch committed in one gorocksdb.DB.Write call.
package store

import (
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/jgraettinger/gorocksdb"

	"github.com/recall-memory/recall/go/ops"
	"github.com/recall-memory/recall/go/recallerr"
)

// cfEvents and its siblings name the column families from the wire
// contract. Order here fixes the order OpenDbColumnFamilies is called
// with, which must include "default" as RocksDB always creates it.
const (
	cfDefault      = "default"
	cfEvents       = "events"
	cfEventsByID   = "events_by_id"
	cfTocNodes     = "toc_nodes"
	cfTocChildren  = "toc_children"
	cfGrips        = "grips"
	cfGripsByNode  = "grips_by_node"
	cfOutbox       = "outbox"
	cfCheckpoints  = "checkpoints"
	cfTopics       = "topics"
	cfTopicEdges   = "topic_edges"
)

var cfNames = []string{
	cfDefault, cfEvents, cfEventsByID, cfTocNodes, cfTocChildren,
	cfGrips, cfGripsByNode, cfOutbox, cfCheckpoints, cfTopics, cfTopicEdges,
}

// Store is a handle on one RocksDB instance with one column family
// per table in the wire contract.
type Store struct {
	db  *gorocksdb.DB
	cfs map[string]*gorocksdb.ColumnFamilyHandle
	ro  *gorocksdb.ReadOptions
	wo  *gorocksdb.WriteOptions

	log ops.Logger

	// nodeLocks serializes writers for a given TocNode id: "TocNode
	// writes for a given node_id are serialized (a single writer per
	// node owns it for the duration of build)" (concurrency model).
	nodeLocks sync.Map // node_id -> *sync.Mutex

	// seqMu serializes outbox sequence allocation; the outbox is the
	// only cross-component mutable queue and is ordered by this
	// ever-increasing seq.
	seqMu   sync.Mutex
	nextSeq uint64

	// hot is a bounded read cache over toc_nodes and topics, the
	// hottest read path for the retrieval router and topic decay
	// queries.
	hot *lru.Cache[string, []byte]
}

// Options configures Open.
type Options struct {
	// HotCacheSize bounds the number of cached toc_nodes/topics rows.
	HotCacheSize int
}

// DefaultOptions returns the Options Open uses when none are given.
func DefaultOptions() Options {
	return Options{HotCacheSize: 4096}
}

// Open creates or opens the RocksDB instance rooted at dbPath, with
// create-if-missing semantics for both the database and its column
// families so first-run and upgrade both work through the same path.
func Open(dbPath string, log ops.Logger, opts Options) (*Store, error) {
	if opts.HotCacheSize <= 0 {
		opts = DefaultOptions()
	}

	var dbOpts = gorocksdb.NewDefaultOptions()
	dbOpts.SetCreateIfMissing(true)
	dbOpts.SetCreateIfMissingColumnFamilies(true)

	var cfOpts = make([]*gorocksdb.Options, len(cfNames))
	for i := range cfNames {
		cfOpts[i] = gorocksdb.NewDefaultOptions()
	}

	db, handles, err := gorocksdb.OpenDbColumnFamilies(dbOpts, dbPath, cfNames, cfOpts)
	if err != nil {
		return nil, recallerr.New(recallerr.Storage, "store.open", err)
	}

	var cfs = make(map[string]*gorocksdb.ColumnFamilyHandle, len(cfNames))
	for i, name := range cfNames {
		cfs[name] = handles[i]
	}

	cache, err := lru.New[string, []byte](opts.HotCacheSize)
	if err != nil {
		return nil, recallerr.New(recallerr.Storage, "store.open", err)
	}

	var s = &Store{
		db:  db,
		cfs: cfs,
		ro:  gorocksdb.NewDefaultReadOptions(),
		wo:  gorocksdb.NewDefaultWriteOptions(),
		log: log,
		hot: cache,
	}
	if err := s.loadNextSeq(); err != nil {
		return nil, err
	}
	return s, nil
}

// Close releases the underlying RocksDB handles. It does not flush any
// OS-level write cache beyond what RocksDB itself guarantees on Write.
func (s *Store) Close() error {
	for _, cf := range s.cfs {
		cf.Destroy()
	}
	s.ro.Destroy()
	s.wo.Destroy()
	s.db.Close()
	return nil
}

func (s *Store) cf(name string) *gorocksdb.ColumnFamilyHandle {
	var h, ok = s.cfs[name]
	if !ok {
		panic("store: unknown column family " + name)
	}
	return h
}

// nodeLock returns the mutex guarding writes to nodeID, creating it on
// first use. Locks are never removed; the cardinality of distinct
// node ids over a process lifetime is bounded by the calendar, so this
// does not unboundedly grow in practice.
func (s *Store) nodeLock(nodeID string) *sync.Mutex {
	var v, _ = s.nodeLocks.LoadOrStore(nodeID, &sync.Mutex{})
	return v.(*sync.Mutex)
}

func get(db *gorocksdb.DB, ro *gorocksdb.ReadOptions, cf *gorocksdb.ColumnFamilyHandle, key []byte) ([]byte, bool, error) {
	slice, err := db.GetCF(ro, cf, key)
	if err != nil {
		return nil, false, err
	}
	defer slice.Free()
	if !slice.Exists() {
		return nil, false, nil
	}
	var out = make([]byte, len(slice.Data()))
	copy(out, slice.Data())
	return out, true, nil
}
