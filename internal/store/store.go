// Package store implements the backing-store adapter for work items and
// dependency edges.
//
// The engine only ever sees the Store interface: the narrow
// request/response contract of an external, possibly eventually-consistent
// service. All row decoding happens here: nothing above this package
// parses field blobs or embedded identifiers. The parent of each item is
// an explicit indexed column, never text encoded in a description.
package store

import (
	"context"

	"github.com/gantry-mcp/gantry/internal/item"
)

// CreateFields holds the caller-supplied fields for a new item.
// Status defaults to Backlog when empty.
type CreateFields struct {
	Title       string
	Description string
	Priority    string
	Status      item.Status
}

// Store is the abstract capability set the engine needs from the backing
// store. Every call is bounded by the passed context plus the adapter's
// own per-request timeout; none blocks indefinitely.
//
// The engine treats every read as a fresh snapshot that may be partially
// stale; implementations make no ordering guarantees across calls.
type Store interface {
	// Get returns the item with the given id, including its ordered
	// ChildrenIDs, or a not-found error.
	Get(ctx context.Context, id string) (*item.WorkItem, error)

	// Create persists a new item under parentID (empty for Projects)
	// and returns it with its store-assigned id.
	Create(ctx context.Context, parentID string, typ item.ItemType, fields CreateFields) (*item.WorkItem, error)

	// Update applies the non-nil fields to the item and returns the
	// updated snapshot.
	Update(ctx context.Context, id string, fields item.Fields) (*item.WorkItem, error)

	// Delete removes a single item. It does not touch children or
	// dependency edges; that policy belongs to the engine.
	Delete(ctx context.Context, id string) error

	// ListChildren returns the direct children of parentID in insertion
	// order. A missing or childless parent yields an empty slice.
	ListChildren(ctx context.Context, parentID string) ([]*item.WorkItem, error)

	// ListAll returns a snapshot of every item, for full-tree passes
	// (consistency scans, queries, progress synchronization).
	ListAll(ctx context.Context) ([]*item.WorkItem, error)

	// AddEdge commits a dependency edge. Uniqueness of (from, to) is
	// enforced here; acyclicity is the engine's responsibility and is
	// checked before this call.
	AddEdge(ctx context.Context, fromID, toID string) (*item.DependencyEdge, error)

	// RemoveEdge deletes the edge (fromID, toID) if present.
	RemoveEdge(ctx context.Context, fromID, toID string) error

	// ListEdges returns a snapshot of the whole dependency edge set.
	ListEdges(ctx context.Context) ([]item.DependencyEdge, error)

	// ListEdgesTo returns every edge pointing at toID: the items that
	// depend on it.
	ListEdgesTo(ctx context.Context, toID string) ([]item.DependencyEdge, error)
}
