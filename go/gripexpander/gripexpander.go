// Package gripexpander resolves a Grip back into the conversation
// window it was drawn from: the excerpt's own events plus a bounded
// number of events immediately before and after it, so a caller that
// only has a grip_id can recover enough surrounding context to judge
// whether the excerpt means what it appears to mean.
package gripexpander

import (
	"context"
	"fmt"

	"github.com/recall-memory/recall/go/recallerr"
	"github.com/recall-memory/recall/go/store"
	"github.com/recall-memory/recall/go/types"
)

// DefaultWindow is how many events are pulled on each side of the
// excerpt when a caller does not specify its own N.
const DefaultWindow = 2

// MaxWindow bounds how many events a caller may request on either
// side, so a single ExpandGrip call can never force an unbounded scan.
const MaxWindow = 50

// Expansion is the grip expander's response contract.
type Expansion struct {
	Before        []types.Event `json:"before"`
	ExcerptEvents []types.Event `json:"excerpt_events"`
	After         []types.Event `json:"after"`
	SourceNodeID  string        `json:"source_node_id"`
	SessionID     string        `json:"session_id"`
}

// Expander reads Store directly; it holds no state of its own.
type Expander struct {
	store *store.Store
}

// New constructs an Expander over st.
func New(st *store.Store) *Expander {
	return &Expander{store: st}
}

// Expand resolves gripID into its excerpt plus nBefore/nAfter
// surrounding events. A negative nBefore/nAfter selects DefaultWindow;
// non-negative values are clamped to [0, MaxWindow] (0 is a valid,
// explicit "no context on this side").
func (e *Expander) Expand(ctx context.Context, gripID string, nBefore, nAfter int) (Expansion, error) {
	nBefore = clampWindow(nBefore)
	nAfter = clampWindow(nAfter)

	var grip, found, err = e.store.GetGrip(gripID)
	if err != nil {
		return Expansion{}, err
	}
	if !found {
		return Expansion{}, recallerr.New(recallerr.NotFound, "gripexpander.expand", fmt.Errorf("grip %s not found", gripID))
	}

	var excerpt []types.Event
	for id := grip.EventIDStart; id <= grip.EventIDEnd; id++ {
		var ev, ok, evErr = e.store.GetEventByID(id)
		if evErr != nil {
			return Expansion{}, evErr
		}
		if !ok {
			continue
		}
		excerpt = append(excerpt, ev)
	}
	if len(excerpt) == 0 {
		return Expansion{}, recallerr.New(recallerr.NotFound, "gripexpander.expand", fmt.Errorf("grip %s: no events in range [%d,%d]", gripID, grip.EventIDStart, grip.EventIDEnd))
	}

	var before []types.Event
	if nBefore > 0 {
		before, err = e.store.EventsBefore(grip.EventIDStart, nBefore)
		if err != nil {
			return Expansion{}, err
		}
	}

	var after []types.Event
	if nAfter > 0 {
		after, err = e.store.EventsAfter(grip.EventIDEnd, nAfter)
		if err != nil {
			return Expansion{}, err
		}
	}

	return Expansion{
		Before:        before,
		ExcerptEvents: excerpt,
		After:         after,
		SourceNodeID:  grip.Source,
		SessionID:     excerpt[0].SessionID,
	}, nil
}

func clampWindow(n int) int {
	if n < 0 {
		return DefaultWindow
	}
	if n > MaxWindow {
		return MaxWindow
	}
	return n
}
