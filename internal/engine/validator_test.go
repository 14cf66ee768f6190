package engine

import (
	"testing"

	"github.com/gantry-mcp/gantry/internal/item"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func wi(id string, typ item.ItemType, parentID string, children ...string) *item.WorkItem {
	if children == nil {
		children = []string{}
	}
	return &item.WorkItem{
		ID:          id,
		Type:        typ,
		ParentID:    parentID,
		Status:      item.StatusBacklog,
		ChildrenIDs: children,
		Title:       id,
	}
}

func TestValidateParentChild_Accepts(t *testing.T) {
	cases := []struct {
		parent item.ItemType
		child  item.ItemType
	}{
		{item.TypeProject, item.TypePRD},
		{item.TypePRD, item.TypeTask},
		{item.TypeTask, item.TypeSubtask},
	}
	for _, tc := range cases {
		res := ValidateParentChild(wi("p", tc.parent, ""), wi("c", tc.child, ""))
		assert.True(t, res.OK, "%s under %s", tc.child, tc.parent)
		assert.Empty(t, res.Violations)
	}
}

func TestValidateParentChild_RejectsSkipAndInversion(t *testing.T) {
	cases := []struct {
		parent item.ItemType
		child  item.ItemType
	}{
		{item.TypeProject, item.TypeTask},    // skipped level
		{item.TypeProject, item.TypeSubtask}, // skipped two levels
		{item.TypePRD, item.TypeSubtask},     // skipped level
		{item.TypeTask, item.TypePRD},        // inverted
		{item.TypeSubtask, item.TypeSubtask}, // leaf cannot contain
	}
	for _, tc := range cases {
		res := ValidateParentChild(wi("p", tc.parent, ""), wi("c", tc.child, ""))
		assert.False(t, res.OK, "%s under %s must be rejected", tc.child, tc.parent)
		require.NotEmpty(t, res.Violations)
		assert.Equal(t, RuleTypeOrder, res.Violations[0].Rule)
	}
}

func TestValidateParentChild_NilParent(t *testing.T) {
	res := ValidateParentChild(nil, wi("c", item.TypeTask, ""))
	assert.False(t, res.OK)
	assert.Equal(t, RuleParentExists, res.Violations[0].Rule)
}

func TestValidateParentChild_AlreadyParented(t *testing.T) {
	res := ValidateParentChild(wi("p", item.TypePRD, ""), wi("c", item.TypeTask, "other-parent"))
	assert.False(t, res.OK)
	assert.Equal(t, RuleSingleParent, res.Violations[0].Rule)
}

func TestValidateHierarchyConsistency_CleanIFFWellParented(t *testing.T) {
	items := []*item.WorkItem{
		wi("proj", item.TypeProject, "", "prd"),
		wi("prd", item.TypePRD, "proj", "task"),
		wi("task", item.TypeTask, "prd", "sub"),
		wi("sub", item.TypeSubtask, "task"),
	}
	res := ValidateHierarchyConsistency(items)
	assert.True(t, res.OK)
	assert.Empty(t, res.Violations)
}

func TestValidateHierarchyConsistency_ReportsEveryViolation(t *testing.T) {
	items := []*item.WorkItem{
		wi("proj", item.TypeProject, "ghost"),    // project with a parent
		wi("orphan", item.TypeTask, ""),          // non-project without parent
		wi("dangling", item.TypeTask, "missing"), // parent absent from snapshot
		wi("prd", item.TypePRD, "proj", "wrongchild"),
		wi("wrongchild", item.TypeSubtask, "prd"), // Subtask directly under PRD
	}
	res := ValidateHierarchyConsistency(items)
	require.False(t, res.OK)

	rules := map[string]int{}
	for _, v := range res.Violations {
		rules[v.Rule]++
	}
	assert.GreaterOrEqual(t, rules[RuleTypeOrder], 2, "project-with-parent and subtask-under-prd")
	assert.GreaterOrEqual(t, rules[RuleOrphan], 2, "orphan and dangling")
}

func TestValidateHierarchyConsistency_DuplicateParentage(t *testing.T) {
	items := []*item.WorkItem{
		wi("p1", item.TypePRD, "", "t"),
		wi("p2", item.TypePRD, "", "t"),
		wi("t", item.TypeTask, "p1"),
	}
	res := ValidateHierarchyConsistency(items)
	require.False(t, res.OK)

	found := false
	for _, v := range res.Violations {
		if v.Rule == RuleSingleParent && v.NodeID == "t" {
			found = true
		}
	}
	assert.True(t, found, "duplicate parentage of t must be reported")
}

func TestValidateHierarchyConsistency_ChildrenMismatch(t *testing.T) {
	items := []*item.WorkItem{
		wi("prd", item.TypePRD, "", "t", "missing"),
		wi("t", item.TypeTask, "someone-else"),
	}
	res := ValidateHierarchyConsistency(items)
	require.False(t, res.OK)

	rules := map[string]int{}
	for _, v := range res.Violations {
		rules[v.Rule]++
	}
	assert.GreaterOrEqual(t, rules[RuleChildrenMismatch], 2,
		"missing reference and parent_id disagreement must both be reported")
}

func TestOrphans(t *testing.T) {
	items := []*item.WorkItem{
		wi("proj", item.TypeProject, ""),
		wi("ok", item.TypePRD, "proj"),
		wi("lost", item.TypeTask, "nowhere"),
		wi("bare", item.TypeSubtask, ""),
	}
	orphans := Orphans(items)
	require.Len(t, orphans, 2)
	assert.Equal(t, "lost", orphans[0].ID)
	assert.Equal(t, "bare", orphans[1].ID)
}
