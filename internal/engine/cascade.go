package engine

import (
	"context"

	"github.com/gantry-mcp/gantry/internal/item"
	"github.com/gantry-mcp/gantry/internal/store"
)

// CascadeEngine propagates completion upward through the tree: when the
// last child of a node turns Done, the node itself is marked Done and
// the check repeats one level up, uniformly through Project.
//
// Cascade is the only system-initiated status mutation, and it only ever
// moves a node forward into Done; never backward, never downward into
// children. Marking an already-Done parent is a no-op, which makes the
// whole pass idempotent under duplicate triggers and safe to re-run on a
// stale snapshot.
type CascadeEngine struct {
	store store.Store
}

// NewCascadeEngine creates a CascadeEngine over the given store.
func NewCascadeEngine(s store.Store) *CascadeEngine {
	return &CascadeEngine{store: s}
}

// CascadeResult reports what a cascade pass did: which ancestors were
// completed, and whether a branch was abandoned mid-walk. An abandoned
// branch never invalidates already-applied ancestor updates; each one
// stands alone as a valid state.
type CascadeResult struct {
	Completed []string `json:"completed"`
	Abandoned string   `json:"abandoned,omitempty"`
}

// OnChildStatusChange re-evaluates completion eligibility of childID's
// ancestors. Eligibility is always re-derived from freshly read children,
// never from state cached earlier in the request: two racing completion
// events may both run the check, but only one observable transition
// happens and the second pass is a no-op.
//
// A childless node is never auto-completed; cascade fires only in
// response to an actual child completion event, so an empty container is
// left at its current status.
func (c *CascadeEngine) OnChildStatusChange(ctx context.Context, childID string) (CascadeResult, error) {
	result := CascadeResult{Completed: []string{}}

	child, err := c.store.Get(ctx, childID)
	if err != nil {
		if item.IsKind(err, item.KindNotFound) {
			// The child disappeared before the walk started; nothing to do.
			result.Abandoned = childID
			return result, nil
		}
		return result, err
	}

	currentID := child.ParentID
	for currentID != "" {
		parent, err := c.store.Get(ctx, currentID)
		if err != nil {
			if item.IsKind(err, item.KindNotFound) {
				// A node vanished mid-cascade: abandon this branch and
				// report it. Ancestor updates already applied stand.
				result.Abandoned = currentID
				return result, nil
			}
			return result, err
		}

		if parent.IsDone() {
			// Idempotence: a duplicate trigger stops here.
			return result, nil
		}

		children, err := c.store.ListChildren(ctx, parent.ID)
		if err != nil {
			return result, err
		}
		if len(children) == 0 || !allDone(children) {
			return result, nil
		}

		done := item.StatusDone
		if _, err := c.store.Update(ctx, parent.ID, item.Fields{Status: &done}); err != nil {
			if item.IsKind(err, item.KindNotFound) {
				result.Abandoned = parent.ID
				return result, nil
			}
			return result, err
		}
		result.Completed = append(result.Completed, parent.ID)

		currentID = parent.ParentID
	}

	return result, nil
}

func allDone(children []*item.WorkItem) bool {
	for _, c := range children {
		if !c.IsDone() {
			return false
		}
	}
	return true
}
