// Package recallerr defines the error taxonomy shared by every
// component boundary in recall: the Store, the Summarizer and
// Embedder capabilities, the indexers, and the retrieval router all
// translate their underlying failures into a *recallerr.Error before
// the error crosses into caller code, so no component ever has to
// sniff a driver-specific error string to decide how to react.
package recallerr

import (
	"errors"
	"fmt"
)

// Kind is the closed set of error dispositions a component boundary
// may report.
type Kind int

const (
	// InvalidInput indicates a request failed validation; surface to
	// the caller immediately, never retry.
	InvalidInput Kind = iota
	// NotFound indicates a lookup had no result; surface to the caller.
	NotFound
	// Storage indicates the KV engine failed. Error.Retryable reports
	// false for every Storage error: no transient subset is told apart,
	// so callers treat it as fatal.
	Storage
	// RateLimited indicates a summarizer or embedder call was
	// throttled; retry with exponential backoff and jitter, capped.
	RateLimited
	// TransientUpstream indicates a summarizer or embedder call failed
	// in a way expected to succeed on retry.
	TransientUpstream
	// MalformedResponse indicates a summarizer returned a response the
	// caller could not parse; retry once, then mark the node failed.
	MalformedResponse
	// IndexUnavailable indicates a BM25, vector, or topic index could
	// not serve a query; the router records this and falls back.
	IndexUnavailable
	// Cancelled indicates the calling context was cancelled or its
	// deadline passed; unwind without side effects.
	Cancelled
)

func (k Kind) String() string {
	switch k {
	case InvalidInput:
		return "InvalidInput"
	case NotFound:
		return "NotFound"
	case Storage:
		return "Storage"
	case RateLimited:
		return "RateLimited"
	case TransientUpstream:
		return "TransientUpstream"
	case MalformedResponse:
		return "MalformedResponse"
	case IndexUnavailable:
		return "IndexUnavailable"
	case Cancelled:
		return "Cancelled"
	default:
		return "Unknown"
	}
}

// Error is the concrete error type carried across every capability
// boundary. Op names the operation that failed (e.g.
// "store.put_toc_node_with_grips", "summarizer.summarize_events") so
// logs and admin queries can group failures without parsing messages.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Kind)
}

func (e *Error) Unwrap() error { return e.Err }

// New constructs an Error of the given kind for operation op, wrapping
// cause. cause may be nil.
func New(kind Kind, op string, cause error) *Error {
	return &Error{Kind: kind, Op: op, Err: cause}
}

// Retryable reports whether a disposition is ever safe to retry
// without caller-visible side effects beyond delay. RateLimited and
// TransientUpstream are retryable by policy; MalformedResponse is
// retryable exactly once by the caller's own bookkeeping, which this
// helper does not track.
func (e *Error) Retryable() bool {
	switch e.Kind {
	case RateLimited, TransientUpstream:
		return true
	default:
		return false
	}
}

// Is supports errors.Is(err, recallerr.Sentinel(recallerr.NotFound)) style checks by
// comparing Kind via a sentinel wrapper — callers more commonly use
// KindOf below, but this keeps the type compatible with errors.Is
// against another *Error of the same Kind.
func (e *Error) Is(target error) bool {
	var other *Error
	if errors.As(target, &other) {
		return e.Kind == other.Kind
	}
	return false
}

// KindOf extracts the Kind from err if it is, or wraps, a *Error.
// Errors that were never classified at a capability boundary report
// Storage, since that is the catch-all disposition for the store's
// own engine failures.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Storage
}

// Sentinel constructs a zero-cause *Error of the given kind, useful
// for errors.Is comparisons in tests: errors.Is(err, recallerr.Sentinel(recallerr.NotFound)).
func Sentinel(kind Kind) *Error {
	return &Error{Kind: kind}
}
