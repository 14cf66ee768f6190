package engine

import (
	"context"
	"fmt"

	"github.com/gantry-mcp/gantry/internal/item"
	"github.com/gantry-mcp/gantry/internal/store"
)

// DependencyPolicy restricts which type levels may hold dependency edges
// between them.
type DependencyPolicy string

const (
	// PolicySameLevel allows edges only between nodes at the same
	// hierarchy level. This is the default.
	PolicySameLevel DependencyPolicy = "same_level"
	// PolicyAnyLevel allows edges across levels.
	PolicyAnyLevel DependencyPolicy = "any_level"
)

// ValidatePolicy returns an error if p is not a recognized policy.
func ValidatePolicy(p DependencyPolicy) error {
	if p != PolicySameLevel && p != PolicyAnyLevel {
		return fmt.Errorf("invalid dependency policy %q: must be one of: same_level, any_level", p)
	}
	return nil
}

// DependencyGraph maintains the non-tree "depends-on" edge set. The edge
// relation must stay acyclic at all times, so the cycle check runs
// synchronously before any commit; rejecting after the fact cannot undo
// a write already visible to other readers.
type DependencyGraph struct {
	store  store.Store
	policy DependencyPolicy
}

// NewDependencyGraph creates a DependencyGraph with the given edge-level
// policy. An empty policy means same_level.
func NewDependencyGraph(s store.Store, policy DependencyPolicy) *DependencyGraph {
	if policy == "" {
		policy = PolicySameLevel
	}
	return &DependencyGraph{store: s, policy: policy}
}

// AddDependency records "fromID depends on toID". It rejects self-edges,
// unknown ids, policy-violating level combinations, and any edge that
// would close a cycle. On rejection the stored edge set is left
// completely unchanged.
func (g *DependencyGraph) AddDependency(ctx context.Context, fromID, toID string) (*item.DependencyEdge, error) {
	if fromID == toID {
		return nil, item.Validation("an item cannot depend on itself", "pick two distinct items", fromID)
	}

	from, err := g.store.Get(ctx, fromID)
	if err != nil {
		return nil, err
	}
	to, err := g.store.Get(ctx, toID)
	if err != nil {
		return nil, err
	}

	if g.policy == PolicySameLevel && from.Type != to.Type {
		return nil, item.Validation(
			fmt.Sprintf("cross-level dependency not allowed: %s → %s", from.Type, to.Type),
			"dependencies may only connect items at the same hierarchy level",
			fromID, toID)
	}

	// Reachability from toID back to fromID over existing edges means
	// the new edge would close a cycle.
	edges, err := g.store.ListEdges(ctx)
	if err != nil {
		return nil, err
	}
	if path := reachPath(adjacency(edges), toID, fromID); path != nil {
		return nil, item.CycleDetected(append([]string{fromID}, path...))
	}

	return g.store.AddEdge(ctx, fromID, toID)
}

// RemoveDependency deletes an edge.
func (g *DependencyGraph) RemoveDependency(ctx context.Context, fromID, toID string) error {
	return g.store.RemoveEdge(ctx, fromID, toID)
}

// Cycle is a closed loop discovered in the edge set.
type Cycle struct {
	Path []string `json:"path"`
}

// CheckCycles audits the full edge set and returns the first cycle path
// found, or nil if the graph is acyclic. With AddDependency guarding
// every commit this should never fire; it exists as a diagnostic.
func (g *DependencyGraph) CheckCycles(ctx context.Context) (*Cycle, error) {
	edges, err := g.store.ListEdges(ctx)
	if err != nil {
		return nil, err
	}

	adj := adjacency(edges)
	// DFS with coloring: white (unvisited), gray (on stack), black (done).
	const (
		white = 0
		gray  = 1
		black = 2
	)
	color := map[string]int{}
	var stack []string

	var visit func(n string) []string
	visit = func(n string) []string {
		color[n] = gray
		stack = append(stack, n)
		for _, next := range adj[n] {
			switch color[next] {
			case gray:
				// Close the loop from next's position on the stack.
				for i, s := range stack {
					if s == next {
						return append(append([]string{}, stack[i:]...), next)
					}
				}
			case white:
				if cycle := visit(next); cycle != nil {
					return cycle
				}
			}
		}
		color[n] = black
		stack = stack[:len(stack)-1]
		return nil
	}

	for _, e := range edges {
		if color[e.FromID] == white {
			if cycle := visit(e.FromID); cycle != nil {
				return &Cycle{Path: cycle}, nil
			}
		}
	}
	return nil, nil
}

// Dependents returns every item holding an edge into nodeID: the items
// that would be broken by its deletion.
func (g *DependencyGraph) Dependents(ctx context.Context, nodeID string) ([]item.DependencyEdge, error) {
	return g.store.ListEdgesTo(ctx, nodeID)
}

// DependencyChain walks outward from nodeID following "depends on" edges
// and returns the ids in visit order, nodeID first. The walk terminates
// because the committed edge set is acyclic.
func (g *DependencyGraph) DependencyChain(ctx context.Context, nodeID string) ([]string, error) {
	edges, err := g.store.ListEdges(ctx)
	if err != nil {
		return nil, err
	}

	adj := adjacency(edges)
	seen := map[string]bool{nodeID: true}
	chain := []string{nodeID}
	queue := []string{nodeID}
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		for _, next := range adj[n] {
			if seen[next] {
				continue
			}
			seen[next] = true
			chain = append(chain, next)
			queue = append(queue, next)
		}
	}
	return chain, nil
}

// adjacency builds a from→to adjacency map over the edge snapshot.
func adjacency(edges []item.DependencyEdge) map[string][]string {
	adj := map[string][]string{}
	for _, e := range edges {
		adj[e.FromID] = append(adj[e.FromID], e.ToID)
	}
	return adj
}

// reachPath returns the path from src to dst over adj, or nil when dst
// is unreachable. BFS with parent links keeps the path shortest, which
// makes rejection messages readable.
func reachPath(adj map[string][]string, src, dst string) []string {
	if src == dst {
		return []string{src}
	}
	parent := map[string]string{src: ""}
	queue := []string{src}
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		for _, next := range adj[n] {
			if _, seen := parent[next]; seen {
				continue
			}
			parent[next] = n
			if next == dst {
				path := []string{dst}
				for at := n; at != ""; at = parent[at] {
					path = append([]string{at}, path...)
				}
				return path
			}
			queue = append(queue, next)
		}
	}
	return nil
}
