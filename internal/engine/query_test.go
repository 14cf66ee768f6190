package engine

import (
	"context"
	"testing"

	"github.com/gantry-mcp/gantry/internal/item"
	"github.com/gantry-mcp/gantry/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// seedHierarchy builds two projects with some structure and statuses.
func seedHierarchy(t *testing.T, e *Engine) (p1, p2, prd1, task1 *item.WorkItem) {
	t.Helper()
	ctx := context.Background()

	p1 = mustCreate(t, e, "", item.TypeProject, "Payments platform")
	p2 = mustCreate(t, e, "", item.TypeProject, "Search platform")
	prd1 = mustCreate(t, e, p1.ID, item.TypePRD, "Checkout flow")
	task1 = mustCreate(t, e, prd1.ID, item.TypeTask, "Validate card numbers")
	mustCreate(t, e, prd1.ID, item.TypeTask, "Persist payment intents")

	inProgress := item.StatusInProgress
	_, _, err := e.UpdateItem(ctx, task1.ID, item.Fields{Status: &inProgress})
	require.NoError(t, err)
	return p1, p2, prd1, task1
}

func TestItemsByStatus_WholeHierarchy(t *testing.T) {
	e := newTestEngine(t)
	_, _, _, task1 := seedHierarchy(t, e)

	got, err := e.Query.ItemsByStatus(context.Background(), item.StatusInProgress, "", "")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, task1.ID, got[0].ID)
}

func TestItemsByStatus_ScopedToSubtree(t *testing.T) {
	e := newTestEngine(t)
	_, p2, prd1, _ := seedHierarchy(t, e)

	// Everything under p1 is Backlog except task1; p2 itself is Backlog.
	got, err := e.Query.ItemsByStatus(context.Background(), item.StatusBacklog, prd1.ID, "")
	require.NoError(t, err)
	assert.Len(t, got, 2, "the PRD and its Backlog task, not the projects")
	for _, w := range got {
		assert.NotEqual(t, p2.ID, w.ID)
	}
}

func TestItemsByStatus_DefaultCreationOrder(t *testing.T) {
	e := newTestEngine(t)
	p1, p2, _, _ := seedHierarchy(t, e)

	got, err := e.Query.ItemsWhere(context.Background(), Query{Type: item.TypeProject})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, p1.ID, got[0].ID)
	assert.Equal(t, p2.ID, got[1].ID)
}

func TestItemsWhere_SortByTitle(t *testing.T) {
	e := newTestEngine(t)
	seedHierarchy(t, e)

	got, err := e.Query.ItemsWhere(context.Background(), Query{Type: item.TypeProject, Sort: SortByTitle})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Payments platform", got[0].Title)
	assert.Equal(t, "Search platform", got[1].Title)
}

func TestItemsWhere_PriorityFilterAndSort(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	proj := mustCreate(t, e, "", item.TypeProject, "P")
	prd := mustCreate(t, e, proj.ID, item.TypePRD, "D")

	for _, tc := range []struct{ title, prio string }{
		{"low one", "Low"}, {"high one", "High"}, {"medium one", "Medium"},
	} {
		_, err := e.CreateItem(ctx, prd.ID, item.TypeTask,
			store.CreateFields{Title: tc.title, Priority: tc.prio})
		require.NoError(t, err)
	}

	got, err := e.Query.ItemsWhere(ctx, Query{Priority: "high"})
	require.NoError(t, err)
	require.Len(t, got, 1, "priority match is case-insensitive")
	assert.Equal(t, "high one", got[0].Title)

	got, err = e.Query.ItemsWhere(ctx, Query{Type: item.TypeTask, Sort: SortByPriority})
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "high one", got[0].Title)
	assert.Equal(t, "medium one", got[1].Title)
	assert.Equal(t, "low one", got[2].Title)
}

func TestItemsWhere_CreatedDateRange(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	p := mustCreate(t, e, "", item.TypeProject, "P")

	got, err := e.Query.ItemsWhere(ctx, Query{CreatedAfter: "2100-01-01T00:00:00Z"})
	require.NoError(t, err)
	assert.Empty(t, got)

	got, err = e.Query.ItemsWhere(ctx, Query{
		CreatedAfter:  "2000-01-01T00:00:00Z",
		CreatedBefore: "2100-01-01T00:00:00Z",
	})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, p.ID, got[0].ID)
}

func TestSearchByTitle_CaseInsensitiveSubstring(t *testing.T) {
	e := newTestEngine(t)
	p1, _, _, _ := seedHierarchy(t, e)

	got, err := e.Query.SearchByTitle(context.Background(), "PLATFORM", "")
	require.NoError(t, err)
	assert.Len(t, got, 2)

	got, err = e.Query.SearchByTitle(context.Background(), "checkout", p1.ID)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Checkout flow", got[0].Title)
}

func TestSearchByTitle_UnknownScope(t *testing.T) {
	e := newTestEngine(t)
	seedHierarchy(t, e)

	_, err := e.Query.SearchByTitle(context.Background(), "x", "no-such-scope")
	assert.Equal(t, item.KindNotFound, item.KindOf(err))
}

func TestHierarchyTree_NestedViewInInsertionOrder(t *testing.T) {
	e := newTestEngine(t)
	p1, _, prd1, task1 := seedHierarchy(t, e)

	tree, err := e.Query.HierarchyTree(context.Background(), p1.ID)
	require.NoError(t, err)

	assert.Equal(t, p1.ID, tree.Item.ID)
	require.Len(t, tree.Children, 1)
	assert.Equal(t, prd1.ID, tree.Children[0].Item.ID)
	require.Len(t, tree.Children[0].Children, 2)
	assert.Equal(t, task1.ID, tree.Children[0].Children[0].Item.ID)
}

func TestHierarchyTree_ToleratesEmptyIntermediateLevels(t *testing.T) {
	e := newTestEngine(t)

	proj := mustCreate(t, e, "", item.TypeProject, "P")
	mustCreate(t, e, proj.ID, item.TypePRD, "PRD with zero tasks")

	tree, err := e.Query.HierarchyTree(context.Background(), proj.ID)
	require.NoError(t, err)
	require.Len(t, tree.Children, 1)
	assert.Empty(t, tree.Children[0].Children)
}

func TestHierarchyTree_UnknownRoot(t *testing.T) {
	e := newTestEngine(t)

	_, err := e.Query.HierarchyTree(context.Background(), "ghost")
	assert.Equal(t, item.KindNotFound, item.KindOf(err))
}
