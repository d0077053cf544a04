// Package storedoc declares the contract a backing indexed document store
// must satisfy for the native user store to sit on top of it, mirroring
// the small slice of an Elasticsearch-style client the original store
// depends on: point lookups, whole-document indexing, deletes, and a
// scroll cursor for full scans.
//
// # What this package must NOT do
//
//   - Encode domain semantics (user records, roles, versions-as-users) —
//     it deals only in opaque documents and cursors.
//   - Retry or cache on the caller's behalf.
package storedoc

import (
	"context"
	"errors"
	"time"
)

// ErrIndexNotFound is returned by any operation against an index that does
// not exist yet. Callers on the read path are expected to treat this as
// "nothing found" rather than a hard failure.
var ErrIndexNotFound = errors.New("storedoc: index not found")

// ErrUnavailable wraps a transport-level failure talking to the backing
// store (connection refused, timeout, etc.) as distinct from a well-formed
// "not found" response.
var ErrUnavailable = errors.New("storedoc: backing store unavailable")

// SearchRequest describes a scroll-backed full or filtered scan of an
// index. IgnoreUnavailable is implicit: every implementation must treat a
// missing index as an empty result rather than an error from Search
// itself (callers still treat an ErrIndexNotFound from Search as an
// empty result).
type SearchRequest struct {
	Index       string
	DocType     string
	IDs         []string // when empty, matches every document of DocType
	Size        int
	KeepAlive   time.Duration
	WithVersion bool
}

// Hit is a single document returned by a search or scroll continuation.
type Hit struct {
	ID      string
	Source  map[string]any
	Version int64
}

// ScrollResult is one page of a scrolled search.
type ScrollResult struct {
	ScrollID string
	Hits     []Hit
}

// DocumentStore is the minimal capability set the native user store needs
// from its backing index: get, index (whole-document put), delete, and a
// scroll cursor (search + searchScroll + clearScroll).
type DocumentStore interface {
	// Get performs a point lookup by primary key. It returns
	// ErrIndexNotFound when the index does not exist, and (nil, 0, nil)
	// when the index exists but the document does not.
	Get(ctx context.Context, index, docType, id string) (source map[string]any, version int64, err error)

	// Index writes source as the entire document at id, replacing any
	// prior value. created reports whether this call created the
	// document (true) or overwrote an existing one (false).
	Index(ctx context.Context, index, docType, id string, source map[string]any, refresh bool) (created bool, version int64, err error)

	// Delete removes the document at id. found reports whether a
	// document existed to delete.
	Delete(ctx context.Context, index, docType, id string, refresh bool) (found bool, err error)

	// Search opens a scroll cursor over req. When req.IDs is empty every
	// document of req.DocType is matched.
	Search(ctx context.Context, req SearchRequest) (ScrollResult, error)

	// SearchScroll continues a cursor previously opened by Search or a
	// prior SearchScroll call.
	SearchScroll(ctx context.Context, scrollID string, keepAlive time.Duration) (ScrollResult, error)

	// ClearScroll releases one or more scroll cursors. Implementations
	// must treat clearing an already-expired or unknown cursor as a
	// success — callers call this best-effort during cleanup.
	ClearScroll(ctx context.Context, scrollIDs ...string) error
}
