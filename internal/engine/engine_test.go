package engine

import (
	"context"
	"testing"

	"github.com/gantry-mcp/gantry/internal/item"
	"github.com/gantry-mcp/gantry/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestEngine builds an Engine over a fresh SQLite store in a temp dir.
func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	s, err := store.Open(store.Options{DataDir: t.TempDir()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return New(s, PolicySameLevel)
}

// mustCreate creates an item or fails the test.
func mustCreate(t *testing.T, e *Engine, parentID string, typ item.ItemType, title string) *item.WorkItem {
	t.Helper()
	w, err := e.CreateItem(context.Background(), parentID, typ, store.CreateFields{Title: title})
	require.NoError(t, err, "create %s %q", typ, title)
	return w
}

// buildChain creates Project → PRD → Task and returns all three.
func buildChain(t *testing.T, e *Engine) (proj, prd, task *item.WorkItem) {
	t.Helper()
	proj = mustCreate(t, e, "", item.TypeProject, "Platform")
	prd = mustCreate(t, e, proj.ID, item.TypePRD, "Search PRD")
	task = mustCreate(t, e, prd.ID, item.TypeTask, "Build index")
	return proj, prd, task
}

func TestCreateItem_ProjectTakesNoParent(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	proj := mustCreate(t, e, "", item.TypeProject, "Platform")

	_, err := e.CreateItem(ctx, proj.ID, item.TypeProject, store.CreateFields{Title: "Nested"})
	require.Error(t, err)
	assert.Equal(t, item.KindValidation, item.KindOf(err))
}

func TestCreateItem_RejectsLevelSkip(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	proj := mustCreate(t, e, "", item.TypeProject, "Platform")

	// A Task directly under a Project skips the PRD level.
	_, err := e.CreateItem(ctx, proj.ID, item.TypeTask, store.CreateFields{Title: "skips"})
	require.Error(t, err)
	assert.Equal(t, item.KindValidation, item.KindOf(err))
	assert.Contains(t, err.Error(), "PRD")
}

func TestCreateItem_RejectsMissingParent(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	_, err := e.CreateItem(ctx, "", item.TypeTask, store.CreateFields{Title: "floating"})
	assert.Equal(t, item.KindValidation, item.KindOf(err))

	_, err = e.CreateItem(ctx, "no-such-id", item.TypeTask, store.CreateFields{Title: "dangling"})
	assert.Equal(t, item.KindNotFound, item.KindOf(err))
}

func TestCreateItem_RejectsUnknownType(t *testing.T) {
	e := newTestEngine(t)

	_, err := e.CreateItem(context.Background(), "", item.ItemType("Epic"), store.CreateFields{Title: "x"})
	assert.Equal(t, item.KindValidation, item.KindOf(err))
}

func TestUpdateItem_RejectsUnknownStatus(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	proj := mustCreate(t, e, "", item.TypeProject, "Platform")

	bad := item.Status("Doing")
	_, _, err := e.UpdateItem(ctx, proj.ID, item.Fields{Status: &bad})
	require.Error(t, err)
	assert.Equal(t, item.KindValidation, item.KindOf(err))

	// The item is unchanged.
	got, err := e.GetItem(ctx, proj.ID)
	require.NoError(t, err)
	assert.Equal(t, item.StatusBacklog, got.Status)
}

func TestUpdateItem_BackwardMoveAllowedManually(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	proj := mustCreate(t, e, "", item.TypeProject, "Platform")

	forward := item.StatusInProgress
	_, _, err := e.UpdateItem(ctx, proj.ID, item.Fields{Status: &forward})
	require.NoError(t, err)

	backward := item.StatusBacklog
	got, _, err := e.UpdateItem(ctx, proj.ID, item.Fields{Status: &backward})
	require.NoError(t, err)
	assert.Equal(t, item.StatusBacklog, got.Status)
}

func TestUpdateItem_BackwardMoveNeverReopensCascadedAncestors(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	proj, prd, task := buildChain(t, e)
	sub := mustCreate(t, e, task.ID, item.TypeSubtask, "only subtask")

	// Completing the only subtask cascades all the way up.
	_, cascade, err := e.CompleteItem(ctx, sub.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{task.ID, prd.ID, proj.ID}, cascade.Completed)

	// Reopening the subtask leaves the Done ancestors untouched.
	reopened := item.StatusInProgress
	_, _, err = e.UpdateItem(ctx, sub.ID, item.Fields{Status: &reopened})
	require.NoError(t, err)

	for _, id := range []string{task.ID, prd.ID, proj.ID} {
		got, err := e.GetItem(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, item.StatusDone, got.Status, "ancestor %s must stay Done", id)
	}
}

func TestCompleteItem_IsIdempotent(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	_, _, task := buildChain(t, e)
	sub := mustCreate(t, e, task.ID, item.TypeSubtask, "S1")

	_, first, err := e.CompleteItem(ctx, sub.ID)
	require.NoError(t, err)
	assert.NotEmpty(t, first.Completed)

	// Second completion: no status change, no duplicate cascade.
	w, second, err := e.CompleteItem(ctx, sub.ID)
	require.NoError(t, err)
	assert.Equal(t, item.StatusDone, w.Status)
	assert.Empty(t, second.Completed)
}

func TestDeleteItem_RefusedWithDependents(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	proj := mustCreate(t, e, "", item.TypeProject, "P")
	prd := mustCreate(t, e, proj.ID, item.TypePRD, "D")
	t1 := mustCreate(t, e, prd.ID, item.TypeTask, "T1")
	t2 := mustCreate(t, e, prd.ID, item.TypeTask, "T2")

	_, err := e.Graph.AddDependency(ctx, t1.ID, t2.ID)
	require.NoError(t, err)

	// t1 depends on t2: deleting t2 without force is refused.
	_, err = e.DeleteItem(ctx, t2.ID, false)
	require.Error(t, err)
	assert.Equal(t, item.KindValidation, item.KindOf(err))
	assert.Contains(t, err.Error(), t1.ID, "error must name the dependent")

	// Tree and edge set unchanged.
	_, err = e.GetItem(ctx, t2.ID)
	require.NoError(t, err)
	deps, err := e.Graph.Dependents(ctx, t2.ID)
	require.NoError(t, err)
	assert.Len(t, deps, 1)
}

func TestDeleteItem_ForceRemovesEdgesAndReports(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	proj := mustCreate(t, e, "", item.TypeProject, "P")
	prd := mustCreate(t, e, proj.ID, item.TypePRD, "D")
	t1 := mustCreate(t, e, prd.ID, item.TypeTask, "T1")
	t2 := mustCreate(t, e, prd.ID, item.TypeTask, "T2")

	_, err := e.Graph.AddDependency(ctx, t1.ID, t2.ID)
	require.NoError(t, err)

	report, err := e.DeleteItem(ctx, t2.ID, true)
	require.NoError(t, err)
	assert.Equal(t, []string{t2.ID}, report.DeletedIDs)
	require.Len(t, report.RemovedEdges, 1)
	assert.Equal(t, t1.ID, report.RemovedEdges[0].FromID)

	_, err = e.GetItem(ctx, t2.ID)
	assert.Equal(t, item.KindNotFound, item.KindOf(err))
}

func TestDeleteItem_ForceRemovesSubtree(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	proj, prd, task := buildChain(t, e)
	sub := mustCreate(t, e, task.ID, item.TypeSubtask, "S")

	// Non-force refuses because children exist.
	_, err := e.DeleteItem(ctx, prd.ID, false)
	assert.Equal(t, item.KindValidation, item.KindOf(err))

	report, err := e.DeleteItem(ctx, prd.ID, true)
	require.NoError(t, err)
	assert.Len(t, report.DeletedIDs, 3)

	for _, id := range []string{prd.ID, task.ID, sub.ID} {
		_, err := e.GetItem(ctx, id)
		assert.Equal(t, item.KindNotFound, item.KindOf(err), "id %s must be gone", id)
	}

	// The project itself survives.
	_, err = e.GetItem(ctx, proj.ID)
	require.NoError(t, err)
}

// End-to-end scenario: create PRD → Task → two Subtasks; completing them
// one by one moves task progress 0 → 0.5 → cascade to Done all the way up.
func TestEndToEnd_CascadeAndProgress(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	proj := mustCreate(t, e, "", item.TypeProject, "Platform")
	p1 := mustCreate(t, e, proj.ID, item.TypePRD, "P1")
	t1 := mustCreate(t, e, p1.ID, item.TypeTask, "T1")
	s1 := mustCreate(t, e, t1.ID, item.TypeSubtask, "S1")
	s2 := mustCreate(t, e, t1.ID, item.TypeSubtask, "S2")

	// Mark S1 Done: half way, T1 unchanged.
	_, cascade, err := e.CompleteItem(ctx, s1.ID)
	require.NoError(t, err)
	assert.Empty(t, cascade.Completed)

	prog, err := e.Progress.TaskProgress(ctx, t1.ID)
	require.NoError(t, err)
	assert.InDelta(t, 0.5, prog.Ratio, 1e-9)

	gotT1, err := e.GetItem(ctx, t1.ID)
	require.NoError(t, err)
	assert.Equal(t, item.StatusBacklog, gotT1.Status)

	// Mark S2 Done: cascade completes T1, then P1 (its only task), then
	// the project (its only PRD).
	_, cascade, err = e.CompleteItem(ctx, s2.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{t1.ID, p1.ID, proj.ID}, cascade.Completed)

	prdProg, err := e.Progress.PRDProgress(ctx, p1.ID)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, prdProg.Ratio, 1e-9)

	_ = s2
}

func TestValidateHierarchy_CleanTree(t *testing.T) {
	e := newTestEngine(t)

	buildChain(t, e)

	res, orphans, err := e.ValidateHierarchy(context.Background())
	require.NoError(t, err)
	assert.True(t, res.OK)
	assert.Empty(t, res.Violations)
	assert.Empty(t, orphans)
}
