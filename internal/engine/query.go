package engine

import (
	"context"
	"sort"
	"strings"

	"github.com/gantry-mcp/gantry/internal/item"
	"github.com/gantry-mcp/gantry/internal/store"
)

// QueryEngine answers structural and text queries over the materialized
// hierarchy. Every query reads a fresh snapshot; the store's own
// indexes are the only index layer, so there is no cache to refresh or
// to go stale.
type QueryEngine struct {
	store store.Store
}

// NewQueryEngine creates a QueryEngine over the given store.
func NewQueryEngine(s store.Store) *QueryEngine {
	return &QueryEngine{store: s}
}

// SortKey selects the ordering of query results.
type SortKey string

const (
	SortByCreated  SortKey = "created"
	SortByUpdated  SortKey = "updated"
	SortByTitle    SortKey = "title"
	SortByPriority SortKey = "priority"
)

// Query carries the filters for ItemsWhere. Zero values mean "no filter".
// ScopeID restricts results to the subtree rooted there (inclusive);
// empty means the whole hierarchy.
type Query struct {
	Status        item.Status
	Type          item.ItemType
	Priority      string
	TitleContains string
	CreatedAfter  string
	CreatedBefore string
	ScopeID       string
	Sort          SortKey
}

// ItemsWhere returns the nodes matching every set filter, ordered by
// creation time unless a different sort key is given.
func (q *QueryEngine) ItemsWhere(ctx context.Context, query Query) ([]*item.WorkItem, error) {
	items, err := q.snapshot(ctx, query.ScopeID)
	if err != nil {
		return nil, err
	}

	matched := []*item.WorkItem{}
	for _, w := range items {
		if query.Status != "" && w.Status != query.Status {
			continue
		}
		if query.Type != "" && w.Type != query.Type {
			continue
		}
		if query.Priority != "" && !strings.EqualFold(w.Priority, query.Priority) {
			continue
		}
		if query.TitleContains != "" &&
			!strings.Contains(strings.ToLower(w.Title), strings.ToLower(query.TitleContains)) {
			continue
		}
		// RFC 3339 timestamps compare correctly as strings.
		if query.CreatedAfter != "" && w.CreatedAt < query.CreatedAfter {
			continue
		}
		if query.CreatedBefore != "" && w.CreatedAt > query.CreatedBefore {
			continue
		}
		matched = append(matched, w)
	}

	sortItems(matched, query.Sort)
	return matched, nil
}

// ItemsByStatus returns the nodes in the given status within scope.
func (q *QueryEngine) ItemsByStatus(ctx context.Context, status item.Status, scopeID string, sortKey SortKey) ([]*item.WorkItem, error) {
	return q.ItemsWhere(ctx, Query{Status: status, ScopeID: scopeID, Sort: sortKey})
}

// SearchByTitle matches node titles case-insensitively by substring
// within scope.
func (q *QueryEngine) SearchByTitle(ctx context.Context, text, scopeID string) ([]*item.WorkItem, error) {
	return q.ItemsWhere(ctx, Query{TitleContains: text, ScopeID: scopeID})
}

// snapshot loads either the whole hierarchy or the subtree rooted at
// scopeID (inclusive).
func (q *QueryEngine) snapshot(ctx context.Context, scopeID string) ([]*item.WorkItem, error) {
	all, err := q.store.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	if scopeID == "" {
		return all, nil
	}

	byID := make(map[string]*item.WorkItem, len(all))
	for _, w := range all {
		byID[w.ID] = w
	}
	root, ok := byID[scopeID]
	if !ok {
		return nil, item.NotFound(scopeID)
	}

	// Collect the subtree in creation order by filtering the snapshot
	// against the reachable id set.
	inScope := map[string]bool{root.ID: true}
	queue := []*item.WorkItem{root}
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		for _, childID := range n.ChildrenIDs {
			child, ok := byID[childID]
			if !ok || inScope[childID] {
				continue
			}
			inScope[childID] = true
			queue = append(queue, child)
		}
	}

	scoped := []*item.WorkItem{}
	for _, w := range all {
		if inScope[w.ID] {
			scoped = append(scoped, w)
		}
	}
	return scoped, nil
}

func sortItems(items []*item.WorkItem, key SortKey) {
	less := func(a, b *item.WorkItem) bool { return a.CreatedAt < b.CreatedAt }
	switch key {
	case SortByUpdated:
		less = func(a, b *item.WorkItem) bool { return a.UpdatedAt < b.UpdatedAt }
	case SortByTitle:
		less = func(a, b *item.WorkItem) bool {
			return strings.ToLower(a.Title) < strings.ToLower(b.Title)
		}
	case SortByPriority:
		less = func(a, b *item.WorkItem) bool { return priorityRank(a.Priority) < priorityRank(b.Priority) }
	}
	sort.SliceStable(items, func(i, j int) bool { return less(items[i], items[j]) })
}

// priorityRank orders the conventional High/Medium/Low labels; unknown
// labels sort last.
func priorityRank(p string) int {
	switch strings.ToLower(p) {
	case "high":
		return 0
	case "medium":
		return 1
	case "low":
		return 2
	default:
		return 3
	}
}

// TreeNode is one node in a nested hierarchy view. Missing optional
// intermediate levels simply yield an empty Children slice.
type TreeNode struct {
	Item     *item.WorkItem `json:"item"`
	Children []TreeNode     `json:"children"`
}

// HierarchyTree materializes the subtree rooted at rootID as a nested
// view. Children appear in insertion order.
func (q *QueryEngine) HierarchyTree(ctx context.Context, rootID string) (TreeNode, error) {
	all, err := q.store.ListAll(ctx)
	if err != nil {
		return TreeNode{}, err
	}

	byID := make(map[string]*item.WorkItem, len(all))
	for _, w := range all {
		byID[w.ID] = w
	}
	root, ok := byID[rootID]
	if !ok {
		return TreeNode{}, item.NotFound(rootID)
	}
	return buildTree(root, byID, map[string]bool{}), nil
}

func buildTree(node *item.WorkItem, byID map[string]*item.WorkItem, visiting map[string]bool) TreeNode {
	visiting[node.ID] = true
	tree := TreeNode{Item: node, Children: []TreeNode{}}
	for _, childID := range node.ChildrenIDs {
		child, ok := byID[childID]
		if !ok || visiting[childID] {
			// Dangling reference or corrupt self-reference: represent
			// the gap gracefully instead of failing the whole view.
			continue
		}
		tree.Children = append(tree.Children, buildTree(child, byID, visiting))
	}
	return tree
}
