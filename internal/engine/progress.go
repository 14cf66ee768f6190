package engine

import (
	"context"
	"fmt"

	"github.com/gantry-mcp/gantry/internal/item"
	"github.com/gantry-mcp/gantry/internal/store"
)

// ProgressCalculator derives completion ratios from child state. It is
// a pure read/recompute layer: it never writes statuses or any other
// node field.
type ProgressCalculator struct {
	store store.Store
}

// NewProgressCalculator creates a ProgressCalculator over the given store.
func NewProgressCalculator(s store.Store) *ProgressCalculator {
	return &ProgressCalculator{store: s}
}

// Progress is the derived completion figure for one node.
//
// Ratio for a container with zero children is 0, not vacuously 1:
// completion requires at least one completed unit of work. This is a
// deliberate policy, not a platform default.
type Progress struct {
	NodeID        string        `json:"node_id"`
	Title         string        `json:"title"`
	Type          item.ItemType `json:"type"`
	Status        item.Status   `json:"status"`
	TotalChildren int           `json:"total_children"`
	DoneChildren  int           `json:"done_children"`
	Ratio         float64       `json:"ratio"`
}

// childProgress computes the Done-to-total ratio of a node's direct
// children, at that one level of granularity.
func (p *ProgressCalculator) childProgress(ctx context.Context, node *item.WorkItem) (Progress, error) {
	children, err := p.store.ListChildren(ctx, node.ID)
	if err != nil {
		return Progress{}, err
	}

	prog := Progress{
		NodeID: node.ID,
		Title:  node.Title,
		Type:   node.Type,
		Status: node.Status,
	}
	for _, c := range children {
		prog.TotalChildren++
		if c.IsDone() {
			prog.DoneChildren++
		}
	}
	if prog.TotalChildren > 0 {
		prog.Ratio = float64(prog.DoneChildren) / float64(prog.TotalChildren)
	}
	return prog, nil
}

// nodeProgress loads the node, checks its expected type, and computes
// its direct-children ratio.
func (p *ProgressCalculator) nodeProgress(ctx context.Context, id string, want item.ItemType) (Progress, error) {
	node, err := p.store.Get(ctx, id)
	if err != nil {
		return Progress{}, err
	}
	if node.Type != want {
		return Progress{}, item.Validation(
			fmt.Sprintf("expected a %s, got %s", want, node.Type),
			fmt.Sprintf("pass the id of a %s", want), id)
	}
	return p.childProgress(ctx, node)
}

// TaskProgress is the ratio of Done subtasks to total subtasks.
// A task with zero subtasks reports 0.
func (p *ProgressCalculator) TaskProgress(ctx context.Context, taskID string) (Progress, error) {
	return p.nodeProgress(ctx, taskID, item.TypeTask)
}

// PRDProgress is the ratio of Done tasks to total tasks; task-level
// granularity, not subtask-weighted.
func (p *ProgressCalculator) PRDProgress(ctx context.Context, prdID string) (Progress, error) {
	return p.nodeProgress(ctx, prdID, item.TypePRD)
}

// ProjectProgress is the ratio of Done PRDs to total PRDs.
func (p *ProgressCalculator) ProjectProgress(ctx context.Context, projectID string) (Progress, error) {
	return p.nodeProgress(ctx, projectID, item.TypeProject)
}

// ProgressReport is the recursive output of a hierarchy synchronization
// pass: derived figures only, no status writes.
type ProgressReport struct {
	Progress
	Children []ProgressReport `json:"children,omitempty"`
}

// SynchronizeHierarchy re-derives progress for every node in the subtree
// rooted at rootID, top-down. Used after any leaf-level mutation to keep
// aggregate figures current.
func (p *ProgressCalculator) SynchronizeHierarchy(ctx context.Context, rootID string) (ProgressReport, error) {
	root, err := p.store.Get(ctx, rootID)
	if err != nil {
		return ProgressReport{}, err
	}
	return p.reportFor(ctx, root)
}

func (p *ProgressCalculator) reportFor(ctx context.Context, node *item.WorkItem) (ProgressReport, error) {
	prog, err := p.childProgress(ctx, node)
	if err != nil {
		return ProgressReport{}, err
	}

	report := ProgressReport{Progress: prog}
	children, err := p.store.ListChildren(ctx, node.ID)
	if err != nil {
		return ProgressReport{}, err
	}
	for _, c := range children {
		sub, err := p.reportFor(ctx, c)
		if err != nil {
			return ProgressReport{}, err
		}
		report.Children = append(report.Children, sub)
	}
	return report, nil
}

// StatusCounts tallies items per status per hierarchy level across a
// whole snapshot: the project-wide completion statistics view.
type StatusCounts struct {
	ByType    map[item.ItemType]map[item.Status]int `json:"by_type"`
	Total     int                                   `json:"total"`
	TotalDone int                                   `json:"total_done"`
}

// CompletionStatistics aggregates status counts for every item in the
// store snapshot.
func (p *ProgressCalculator) CompletionStatistics(ctx context.Context) (StatusCounts, error) {
	items, err := p.store.ListAll(ctx)
	if err != nil {
		return StatusCounts{}, err
	}

	counts := StatusCounts{ByType: map[item.ItemType]map[item.Status]int{}}
	for _, w := range items {
		counts.Total++
		if w.IsDone() {
			counts.TotalDone++
		}
		if counts.ByType[w.Type] == nil {
			counts.ByType[w.Type] = map[item.Status]int{}
		}
		counts.ByType[w.Type][w.Status]++
	}
	return counts, nil
}
