package types

import "encoding/json"

// OutboxKind discriminates the payload carried by an OutboxEntry.
type OutboxKind string

const (
	// OutboxEventIngested announces one or more newly-ingested Events
	// for a session, consumed by the TocBuilder's segmenter feed.
	OutboxEventIngested OutboxKind = "event_ingested"
	// OutboxTocNodeWritten announces a TocNode (and its Grips) were
	// durably written, consumed by the BM25/vector/topic indexers.
	OutboxTocNodeWritten OutboxKind = "toc_node_written"
)

// OutboxEntry is a durable work item written in the same atomic batch
// as the state change it describes. Entries are never lost across
// restarts; each consumer tracks its own cursor in the checkpoints
// column family.
type OutboxEntry struct {
	Seq     uint64          `json:"seq"`
	Kind    OutboxKind      `json:"kind"`
	Payload json.RawMessage `json:"payload"`
}

// EventIngestedPayload is the Payload shape for OutboxEventIngested.
type EventIngestedPayload struct {
	SessionID string   `json:"session_id"`
	EventIDs  []uint64 `json:"event_ids"`
}

// TocNodeWrittenPayload is the Payload shape for OutboxTocNodeWritten.
type TocNodeWrittenPayload struct {
	NodeID  string   `json:"node_id"`
	GripIDs []string `json:"grip_ids"`
}

// Checkpoint records the last-completed marker for one (job_kind,
// scope_key) pair, enabling idempotent resumption of background jobs
// and per-consumer outbox cursors.
type Checkpoint struct {
	JobKind  string `json:"job_kind"`
	ScopeKey string `json:"scope_key"`
	Marker   string `json:"marker"`
}
