// Package engine implements the relationship-and-consistency core over
// the four-level work-item hierarchy: structural validation, bottom-up
// completion cascade, progress aggregation, the non-tree dependency
// graph, and structural/text queries.
//
// The engine owns no long-lived state. Every operation runs against a
// fresh snapshot read from the backing store, and every multi-step
// operation is safe to re-run against a possibly-stale one.
package engine

import (
	"fmt"

	"github.com/gantry-mcp/gantry/internal/item"
)

// Violation is a single structural inconsistency, with enough detail
// for the caller to decide whether to block or merely log.
type Violation struct {
	NodeID string `json:"node_id"`
	Rule   string `json:"rule"`
	Detail string `json:"detail"`
}

// ValidationResult reports every violation found; expected violations
// are values, never errors.
type ValidationResult struct {
	OK         bool        `json:"ok"`
	Violations []Violation `json:"violations"`
}

func (r *ValidationResult) add(nodeID, rule, detail string) {
	r.OK = false
	r.Violations = append(r.Violations, Violation{NodeID: nodeID, Rule: rule, Detail: detail})
}

// Validation rule names surfaced in results.
const (
	RuleTypeOrder        = "type-order"
	RuleSingleParent     = "single-parent"
	RuleParentExists     = "parent-exists"
	RuleOrphan           = "orphan"
	RuleChildrenMismatch = "children-mismatch"
)

// ValidateParentChild confirms that child may be attached under parent:
// the child's type must be exactly one level junior, the parent must
// exist, and the child must not already belong to a different parent.
// Pure function of the given snapshot.
func ValidateParentChild(parent, child *item.WorkItem) ValidationResult {
	res := ValidationResult{OK: true, Violations: []Violation{}}

	if parent == nil {
		res.add("", RuleParentExists, "parent does not exist")
		return res
	}

	if want := parent.Type.ChildType(); want == "" {
		res.add(parent.ID, RuleTypeOrder,
			fmt.Sprintf("%s items cannot have children", parent.Type))
	} else if child.Type != want {
		res.add(child.ID, RuleTypeOrder,
			fmt.Sprintf("a %s can only contain %s items, got %s; levels may not be skipped",
				parent.Type, want, child.Type))
	}

	if child.ParentID != "" && child.ParentID != parent.ID {
		res.add(child.ID, RuleSingleParent,
			fmt.Sprintf("item already belongs to parent %s", child.ParentID))
	}

	return res
}

// ValidateHierarchyConsistency scans a full snapshot and reports every
// inconsistency found rather than stopping at the first: orphans,
// type-order violations, duplicate parentage, and children/parent
// mismatches. A clean result means every non-Project node has exactly
// one parent exactly one type-level senior to it.
func ValidateHierarchyConsistency(items []*item.WorkItem) ValidationResult {
	res := ValidationResult{OK: true, Violations: []Violation{}}

	byID := make(map[string]*item.WorkItem, len(items))
	for _, w := range items {
		byID[w.ID] = w
	}

	claimedBy := map[string][]string{} // child id → parents listing it
	for _, w := range items {
		for _, childID := range w.ChildrenIDs {
			claimedBy[childID] = append(claimedBy[childID], w.ID)
		}
	}

	for _, w := range items {
		switch {
		case w.Type == item.TypeProject:
			if w.ParentID != "" {
				res.add(w.ID, RuleTypeOrder, "Projects must not have a parent")
			}
		case w.ParentID == "":
			res.add(w.ID, RuleOrphan,
				fmt.Sprintf("%s has no parent; every non-Project item needs exactly one", w.Type))
		default:
			parent, ok := byID[w.ParentID]
			if !ok {
				res.add(w.ID, RuleOrphan,
					fmt.Sprintf("parent %s does not exist in the snapshot", w.ParentID))
				break
			}
			if parent.Type.ChildType() != w.Type {
				res.add(w.ID, RuleTypeOrder,
					fmt.Sprintf("%s cannot be a child of %s", w.Type, parent.Type))
			}
		}

		// Cross-check children listings against each child's parent_id.
		for _, childID := range w.ChildrenIDs {
			child, ok := byID[childID]
			if !ok {
				res.add(w.ID, RuleChildrenMismatch,
					fmt.Sprintf("children list references missing item %s", childID))
				continue
			}
			if child.ParentID != w.ID {
				res.add(childID, RuleChildrenMismatch,
					fmt.Sprintf("listed as child of %s but its parent_id is %q", w.ID, child.ParentID))
			}
		}
	}

	for childID, parents := range claimedBy {
		if len(parents) > 1 {
			res.add(childID, RuleSingleParent,
				fmt.Sprintf("claimed by %d parents", len(parents)))
		}
	}

	return res
}

// Orphans returns the items whose parent reference does not resolve in
// the snapshot. Projects are never orphans.
func Orphans(items []*item.WorkItem) []*item.WorkItem {
	byID := make(map[string]bool, len(items))
	for _, w := range items {
		byID[w.ID] = true
	}

	orphans := []*item.WorkItem{}
	for _, w := range items {
		if w.Type == item.TypeProject {
			continue
		}
		if w.ParentID == "" || !byID[w.ParentID] {
			orphans = append(orphans, w)
		}
	}
	return orphans
}
