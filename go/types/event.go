// Package types holds the value objects shared by every recall
// component: Event, Segment, TocNode, TocBullet, Grip, Topic, and the
// durable Outbox/Checkpoint records. Types here carry json tags and
// are the Store's on-disk wire format; they hold no behavior beyond
// validation and the pure derivations the spec calls for (e.g. topic
// importance decay).
package types

import (
	"fmt"

	"github.com/recall-memory/recall/go/recallerr"
)

// Role is the kind of conversation activity an Event records.
type Role string

const (
	RoleUser           Role = "user"
	RoleAssistant      Role = "assistant"
	RoleToolResult     Role = "tool_result"
	RoleSessionStart   Role = "session_start"
	RoleSessionEnd     Role = "session_end"
	RoleSubagentStart  Role = "subagent_start"
	RoleSubagentStop   Role = "subagent_stop"
)

func (r Role) valid() bool {
	switch r {
	case RoleUser, RoleAssistant, RoleToolResult, RoleSessionStart, RoleSessionEnd, RoleSubagentStart, RoleSubagentStop:
		return true
	default:
		return false
	}
}

// Event is an immutable, append-only record of one unit of
// conversation activity. Once written its content never mutates.
type Event struct {
	EventID     uint64            `json:"event_id"`
	TimestampMs int64             `json:"timestamp_ms"`
	SessionID   string            `json:"session_id"`
	AgentID     string            `json:"agent_id,omitempty"`
	Role        Role              `json:"role"`
	Text        string            `json:"text"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

// Validate checks the invariants IngestEvent must enforce before the
// Store ever sees the event: a session id, a recognized role, and a
// positive timestamp.
func (e Event) Validate() error {
	if e.SessionID == "" {
		return recallerr.New(recallerr.InvalidInput, "event.validate", fmt.Errorf("session_id is required"))
	}
	if !e.Role.valid() {
		return recallerr.New(recallerr.InvalidInput, "event.validate", fmt.Errorf("unrecognized role %q", e.Role))
	}
	if e.TimestampMs <= 0 {
		return recallerr.New(recallerr.InvalidInput, "event.validate", fmt.Errorf("timestamp_ms must be positive"))
	}
	return nil
}
