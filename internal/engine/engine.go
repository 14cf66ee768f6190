package engine

import (
	"context"
	"fmt"
	"strings"

	"github.com/gantry-mcp/gantry/internal/item"
	"github.com/gantry-mcp/gantry/internal/store"
)

// Engine ties the components together and runs the mutation control
// flow: validate → write → cascade → recompute. Tools talk to the
// Engine; the Engine talks to the store.
//
// There is no engine-owned lock manager; the store is the single source
// of truth, and every multi-step operation here is safe to re-run
// against a possibly-stale snapshot.
type Engine struct {
	store    store.Store
	Cascade  *CascadeEngine
	Progress *ProgressCalculator
	Graph    *DependencyGraph
	Query    *QueryEngine
}

// New creates an Engine over the given store with the given dependency
// edge policy.
func New(s store.Store, policy DependencyPolicy) *Engine {
	return &Engine{
		store:    s,
		Cascade:  NewCascadeEngine(s),
		Progress: NewProgressCalculator(s),
		Graph:    NewDependencyGraph(s, policy),
		Query:    NewQueryEngine(s),
	}
}

// GetItem returns a single item.
func (e *Engine) GetItem(ctx context.Context, id string) (*item.WorkItem, error) {
	return e.store.Get(ctx, id)
}

// CreateItem validates the parent/child relationship against a fresh
// snapshot, then creates the item. Projects take no parent; every other
// type requires one exactly one level senior.
func (e *Engine) CreateItem(ctx context.Context, parentID string, typ item.ItemType, fields store.CreateFields) (*item.WorkItem, error) {
	if err := item.ValidateType(typ); err != nil {
		return nil, item.Validation(err.Error(), "use one of: Project, PRD, Task, Subtask")
	}

	if typ == item.TypeProject {
		if parentID != "" {
			return nil, item.Validation("Projects must not have a parent",
				"omit parent_id when creating a Project", parentID)
		}
		return e.store.Create(ctx, "", typ, fields)
	}

	if parentID == "" {
		return nil, item.Validation(
			fmt.Sprintf("a %s requires a parent %s", typ, typ.ParentType()),
			"supply parent_id")
	}

	parent, err := e.store.Get(ctx, parentID)
	if err != nil {
		return nil, err
	}

	candidate := &item.WorkItem{Type: typ, ParentID: parentID}
	if res := ValidateParentChild(parent, candidate); !res.OK {
		return nil, validationError(res, parentID)
	}

	return e.store.Create(ctx, parentID, typ, fields)
}

// UpdateItem applies a partial update. Status values are validated
// against the fixed vocabulary before the write. Manual transitions may
// move in either direction; a backward move never reopens ancestors that
// cascade already completed; those stay Done until moved by hand.
// Forward moves into Done trigger the upward cascade.
func (e *Engine) UpdateItem(ctx context.Context, id string, fields item.Fields) (*item.WorkItem, CascadeResult, error) {
	cascade := CascadeResult{Completed: []string{}}

	if fields.Status != nil {
		if _, err := item.ParseStatus(string(*fields.Status)); err != nil {
			return nil, cascade, err
		}
	}

	updated, err := e.store.Update(ctx, id, fields)
	if err != nil {
		return nil, cascade, err
	}

	if fields.Status != nil && *fields.Status == item.StatusDone {
		cascade, err = e.Cascade.OnChildStatusChange(ctx, id)
		if err != nil {
			return updated, cascade, err
		}
	}

	return updated, cascade, nil
}

// CompleteItem marks the item Done and runs the upward cascade.
// Completing an already-Done item is a no-op, not an error; the Done
// transition is idempotent so racing duplicate completions cannot double
// a cascade to the grandparent.
func (e *Engine) CompleteItem(ctx context.Context, id string) (*item.WorkItem, CascadeResult, error) {
	current, err := e.store.Get(ctx, id)
	if err != nil {
		return nil, CascadeResult{Completed: []string{}}, err
	}
	if current.IsDone() {
		return current, CascadeResult{Completed: []string{}}, nil
	}

	done := item.StatusDone
	return e.UpdateItem(ctx, id, item.Fields{Status: &done})
}

// DeleteReport tells the caller exactly what a deletion removed;
// dependent-edge removal is always reported, never silent.
type DeleteReport struct {
	DeletedIDs   []string              `json:"deleted_ids"`
	RemovedEdges []item.DependencyEdge `json:"removed_edges"`
}

// DeleteItem removes an item. Without force, deletion is refused when
// other items depend on it or when it still has children, and nothing is
// touched. With force, the subtree and every edge on its members are
// removed and reported.
func (e *Engine) DeleteItem(ctx context.Context, id string, force bool) (DeleteReport, error) {
	report := DeleteReport{DeletedIDs: []string{}, RemovedEdges: []item.DependencyEdge{}}

	node, err := e.store.Get(ctx, id)
	if err != nil {
		return report, err
	}

	dependents, err := e.Graph.Dependents(ctx, id)
	if err != nil {
		return report, err
	}
	if !force {
		if len(dependents) > 0 {
			ids := make([]string, 0, len(dependents)+1)
			ids = append(ids, id)
			for _, d := range dependents {
				ids = append(ids, d.FromID)
			}
			return report, item.Validation(
				fmt.Sprintf("%d item(s) depend on this one", len(dependents)),
				"remove the dependencies first, or pass force=true to delete them along with the item",
				ids...)
		}
		if len(node.ChildrenIDs) > 0 {
			return report, item.Validation(
				fmt.Sprintf("item still has %d child item(s)", len(node.ChildrenIDs)),
				"delete or move the children first, or pass force=true to delete the whole subtree",
				id)
		}
	}

	// Deletion approved: remove the subtree bottom-up along with every
	// edge touching its members.
	subtree, err := e.collectSubtree(ctx, node)
	if err != nil {
		return report, err
	}

	edges, err := e.store.ListEdges(ctx)
	if err != nil {
		return report, err
	}
	inSubtree := map[string]bool{}
	for _, w := range subtree {
		inSubtree[w.ID] = true
	}
	for _, edge := range edges {
		if !inSubtree[edge.FromID] && !inSubtree[edge.ToID] {
			continue
		}
		if err := e.store.RemoveEdge(ctx, edge.FromID, edge.ToID); err != nil {
			return report, err
		}
		report.RemovedEdges = append(report.RemovedEdges, edge)
	}

	// Leaves first so a failure mid-way never orphans survivors.
	for i := len(subtree) - 1; i >= 0; i-- {
		if err := e.store.Delete(ctx, subtree[i].ID); err != nil {
			if item.IsKind(err, item.KindNotFound) {
				continue // raced a concurrent delete; already gone
			}
			return report, err
		}
		report.DeletedIDs = append(report.DeletedIDs, subtree[i].ID)
	}

	return report, nil
}

// collectSubtree returns node and all its descendants, parents before
// children.
func (e *Engine) collectSubtree(ctx context.Context, node *item.WorkItem) ([]*item.WorkItem, error) {
	result := []*item.WorkItem{node}
	queue := []*item.WorkItem{node}
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		children, err := e.store.ListChildren(ctx, n.ID)
		if err != nil {
			return nil, err
		}
		result = append(result, children...)
		queue = append(queue, children...)
	}
	return result, nil
}

// ValidateHierarchy runs the full-tree consistency scan against a fresh
// snapshot and returns every inconsistency plus the orphan list.
func (e *Engine) ValidateHierarchy(ctx context.Context) (ValidationResult, []*item.WorkItem, error) {
	items, err := e.store.ListAll(ctx)
	if err != nil {
		return ValidationResult{}, nil, err
	}
	return ValidateHierarchyConsistency(items), Orphans(items), nil
}

// validationError folds a ValidationResult into an engine error.
func validationError(res ValidationResult, nodeIDs ...string) error {
	reasons := make([]string, len(res.Violations))
	for i, v := range res.Violations {
		reasons[i] = v.Detail
	}
	return item.Validation(strings.Join(reasons, "; "),
		"fix the reported violations and retry", nodeIDs...)
}
