package tocbuilder

import (
	"sync"

	"github.com/recall-memory/recall/go/segmenter"
)

// sessionRegistry owns one Segmenter per session id. A session's
// Segmenter is never discarded once created: a conversation may resume
// after an arbitrarily long gap, and the segmenter's pending overlap
// and open body are exactly the state a resumed session needs to
// rejoin correctly. Concurrency model: the registry's own mutex only
// guards map access; each sessionActor's mutex then serializes pushes
// to that one session's Segmenter, since the outbox drain processes
// sessions in whatever order their events arrived and never assumes
// only one goroutine touches a given session at a time.
type sessionRegistry struct {
	mu   sync.Mutex
	byID map[string]*sessionActor
}

type sessionActor struct {
	mu  sync.Mutex
	seg *segmenter.Segmenter
}

func newSessionRegistry() sessionRegistry {
	return sessionRegistry{byID: make(map[string]*sessionActor)}
}

func (r *sessionRegistry) actor(sessionID string, cfg segmenter.Config, counter segmenter.TokenCounter) *sessionActor {
	r.mu.Lock()
	defer r.mu.Unlock()
	var a, ok = r.byID[sessionID]
	if !ok {
		a = &sessionActor{seg: segmenter.New(cfg, counter)}
		r.byID[sessionID] = a
	}
	return a
}
