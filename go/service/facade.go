// Package service implements the Facade the wire-service shell calls
// into: one method per RPC in the external-interfaces table, with
// inputs/outputs/errors exactly as specified there. It holds no
// framing of its own (no gRPC/protobuf generated code lives here, per
// the wire-service-shell Non-goal) — just the Store, Router, and
// Expander wiring a concrete transport would sit in front of.
package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/recall-memory/recall/go/gripexpander"
	"github.com/recall-memory/recall/go/ops"
	"github.com/recall-memory/recall/go/recallerr"
	"github.com/recall-memory/recall/go/router"
	"github.com/recall-memory/recall/go/store"
	"github.com/recall-memory/recall/go/types"
)

// Ack is IngestEvent's success response: the event id accepted and a
// process-local correlation id for tying together the log lines one
// ingest call produced.
type Ack struct {
	EventID       uint64 `json:"event_id"`
	CorrelationID string `json:"correlation_id"`
}

// TocPage is BrowseToc's response: one page of children plus a
// continuation token for the next, empty when exhausted.
type TocPage struct {
	Children []types.TocNode `json:"children"`
	Next     string          `json:"next,omitempty"`
}

// Facade is the service boundary the wire-service shell (out of scope
// here) calls into. Every method maps 1:1 to a row in the RPC surface
// table; errors are always *recallerr.Error so a transport layer can
// translate Kind into its own status codes without string-sniffing.
type Facade interface {
	IngestEvent(ctx context.Context, ev types.Event) (Ack, error)
	GetTocRoot(ctx context.Context) ([]types.TocNode, error)
	GetNode(ctx context.Context, nodeID string) (types.TocNode, error)
	BrowseToc(ctx context.Context, parentID string, limit int, continuation string) (TocPage, error)
	GetEvents(ctx context.Context, fromMs, toMs int64, limit int) ([]types.Event, error)
	ExpandGrip(ctx context.Context, gripID string, before, after int) (gripexpander.Expansion, error)
	Search(ctx context.Context, query string, filters router.Filters, nowMs int64) (router.Envelope, error)
	RouteQuery(ctx context.Context, query string, topK int, nowMs int64) (router.Envelope, error)
}

// Service is the concrete Facade: a thin fan-out to the Store, the
// grip Expander, and the retrieval Router, plus per-call correlation
// logging. It holds no state of its own beyond those three handles.
type Service struct {
	store    *store.Store
	expander *gripexpander.Expander
	router   *router.Router
	log      ops.Logger
}

var _ Facade = (*Service)(nil)

// New constructs a Service over the given Store, Expander, and Router.
func New(st *store.Store, expander *gripexpander.Expander, rtr *router.Router, log ops.Logger) *Service {
	return &Service{store: st, expander: expander, router: rtr, log: log}
}

func (s *Service) IngestEvent(_ context.Context, ev types.Event) (Ack, error) {
	var correlationID = uuid.NewString()
	var reqLog = ops.NewLoggerWithFields(s.log, log.Fields{"correlation_id": correlationID, "op": "ingest_event"})

	if err := s.store.IngestEvents([]types.Event{ev}); err != nil {
		reqLog.Log(log.WarnLevel, log.Fields{"err": err.Error()}, "ingest rejected")
		return Ack{}, err
	}
	reqLog.Log(log.DebugLevel, log.Fields{"event_id": ev.EventID}, "ingest accepted")
	return Ack{EventID: ev.EventID, CorrelationID: correlationID}, nil
}

func (s *Service) GetTocRoot(_ context.Context) ([]types.TocNode, error) {
	return s.store.GetRootNodes()
}

func (s *Service) GetNode(_ context.Context, nodeID string) (types.TocNode, error) {
	var node, found, err = s.store.GetNode(nodeID)
	if err != nil {
		return types.TocNode{}, err
	}
	if !found {
		return types.TocNode{}, recallerr.New(recallerr.NotFound, "service.get_node", fmt.Errorf("node %s not found", nodeID))
	}
	return node, nil
}

func (s *Service) BrowseToc(_ context.Context, parentID string, limit int, continuation string) (TocPage, error) {
	var children, next, err = s.store.BrowseChildren(parentID, limit, continuation)
	if err != nil {
		return TocPage{}, err
	}
	return TocPage{Children: children, Next: next}, nil
}

func (s *Service) GetEvents(_ context.Context, fromMs, toMs int64, limit int) ([]types.Event, error) {
	return s.store.RangeScanEvents("", fromMs, toMs, limit)
}

func (s *Service) ExpandGrip(ctx context.Context, gripID string, before, after int) (gripexpander.Expansion, error) {
	return s.expander.Expand(ctx, gripID, before, after)
}

func (s *Service) Search(ctx context.Context, query string, filters router.Filters, nowMs int64) (router.Envelope, error) {
	return s.router.Query(ctx, query, filters, nowMs)
}

func (s *Service) RouteQuery(ctx context.Context, query string, topK int, nowMs int64) (router.Envelope, error) {
	return s.router.QueryTopK(ctx, query, router.Filters{}, nowMs, topK)
}
