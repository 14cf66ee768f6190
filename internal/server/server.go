// Package server wires all MCP components and creates the server instance.
//
// This is the composition root: it opens the store, decorates it with the
// retry policy, builds the engine and injects it into every tool. No
// business logic lives here, only wiring.
package server

import (
	"fmt"
	"log"

	"github.com/gantry-mcp/gantry/internal/config"
	"github.com/gantry-mcp/gantry/internal/engine"
	"github.com/gantry-mcp/gantry/internal/prompts"
	"github.com/gantry-mcp/gantry/internal/resources"
	"github.com/gantry-mcp/gantry/internal/store"
	"github.com/gantry-mcp/gantry/internal/tools"
	"github.com/mark3labs/mcp-go/server"
)

// Version is set at build time via ldflags.
var Version = "dev"

// New creates and configures the MCP server with all tools registered.
// This is the single place where all dependencies are resolved.
//
// The returned cleanup function closes the store's database connection
// and must be called on shutdown (typically via defer). It is always
// non-nil and safe to call.
func New(cfg config.Config) (*server.MCPServer, func(), error) {
	sqlStore, err := store.Open(store.Options{
		DataDir:        cfg.DataDir,
		RequestTimeout: cfg.RequestTimeout,
	})
	if err != nil {
		return nil, noop, fmt.Errorf("opening store: %w", err)
	}
	cleanup := func() {
		if err := sqlStore.Close(); err != nil {
			log.Printf("WARNING: store close: %v", err)
		}
	}

	// Transient store failures are retried with exponential backoff;
	// every other error kind passes straight through.
	retrying := store.WithRetry(sqlStore, store.RetryPolicy{
		Attempts:  cfg.RetryAttempts,
		BaseDelay: cfg.RetryBaseDelay,
		MaxDelay:  cfg.RetryMaxDelay,
	})

	policy := engine.DependencyPolicy(cfg.DependencyPolicy)
	if err := engine.ValidatePolicy(policy); err != nil {
		cleanup()
		return nil, noop, fmt.Errorf("dependency policy: %w", err)
	}

	eng := engine.New(retrying, policy)

	s := server.NewMCPServer(
		"gantry",
		Version,
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(false, true),
		server.WithPromptCapabilities(true),
		server.WithRecovery(),
		server.WithInstructions(serverInstructions()),
	)

	registerTools(s, eng)

	// --- Register prompts ---

	planPrompt := prompts.NewPlanPrompt()
	s.AddPrompt(planPrompt.Definition(), planPrompt.Handle)

	standupPrompt := prompts.NewStandupPrompt()
	s.AddPrompt(standupPrompt.Definition(), standupPrompt.Handle)

	// --- Register resources ---

	resourceHandler := resources.NewHandler(eng)
	s.AddResource(resourceHandler.StatsResource(), resourceHandler.HandleStats)

	return s, cleanup, nil
}

// noop is the default cleanup when initialization fails before the
// store is open.
func noop() {}

// registerTools registers all 15 hierarchy MCP tools with the server.
func registerTools(s *server.MCPServer, eng *engine.Engine) {
	// --- Item lifecycle ---
	itemCreate := tools.NewItemCreateTool(eng)
	s.AddTool(itemCreate.Definition(), itemCreate.Handle)

	itemGet := tools.NewItemGetTool(eng)
	s.AddTool(itemGet.Definition(), itemGet.Handle)

	itemUpdate := tools.NewItemUpdateTool(eng)
	s.AddTool(itemUpdate.Definition(), itemUpdate.Handle)

	itemComplete := tools.NewItemCompleteTool(eng)
	s.AddTool(itemComplete.Definition(), itemComplete.Handle)

	itemDelete := tools.NewItemDeleteTool(eng)
	s.AddTool(itemDelete.Definition(), itemDelete.Handle)

	// --- Queries ---
	itemList := tools.NewItemListTool(eng)
	s.AddTool(itemList.Definition(), itemList.Handle)

	itemSearch := tools.NewItemSearchTool(eng)
	s.AddTool(itemSearch.Definition(), itemSearch.Handle)

	hierarchyTree := tools.NewHierarchyTreeTool(eng)
	s.AddTool(hierarchyTree.Definition(), hierarchyTree.Handle)

	hierarchyValidate := tools.NewHierarchyValidateTool(eng)
	s.AddTool(hierarchyValidate.Definition(), hierarchyValidate.Handle)

	// --- Dependencies ---
	depAdd := tools.NewDepAddTool(eng)
	s.AddTool(depAdd.Definition(), depAdd.Handle)

	depRemove := tools.NewDepRemoveTool(eng)
	s.AddTool(depRemove.Definition(), depRemove.Handle)

	depAudit := tools.NewDepAuditTool(eng)
	s.AddTool(depAudit.Definition(), depAudit.Handle)

	depImpact := tools.NewDepImpactTool(eng)
	s.AddTool(depImpact.Definition(), depImpact.Handle)

	// --- Progress ---
	progressReport := tools.NewProgressReportTool(eng)
	s.AddTool(progressReport.Definition(), progressReport.Handle)

	progressSync := tools.NewProgressSyncTool(eng)
	s.AddTool(progressSync.Definition(), progressSync.Handle)
}

// serverInstructions returns the system instructions that tell the AI
// client how to use Gantry effectively.
func serverInstructions() string {
	return `You have access to Gantry, a hierarchical work-item tracker MCP server.

## The hierarchy

Work items form a strict four-level tree:

  Project → PRD → Task → Subtask

Every non-Project item has exactly one parent, exactly one level senior
to it. Level-skipping (a Task directly under a Project) is rejected.
Projects have no parent.

## Statuses

Every item is in exactly one status column:
Backlog, This Sprint, Up Next, In Progress, Done.

## Completion cascade

When you complete an item (item_complete, or item_update with
status=Done), Gantry walks UP the tree: if every child of the parent is
now Done, the parent completes too, and so on. The response lists each
ancestor the cascade completed; relay that to the user so completions
are never silent. Completing an already-Done item is a safe no-op.

An item with no children is never auto-completed, and a container with
zero children reports 0% progress, never 100%.

## Dependencies

dep_add records "from depends on to". Edges must not form cycles; an
edge closing a cycle is rejected with the full cycle path before
anything is written. By default both endpoints must be the same item
type. Before deleting anything load-bearing, call dep_impact; item
deletion is refused while other items depend on it unless force=true,
in which case the whole subtree and its edges are removed and reported.

## Typical workflows

- Plan: item_create the Project, then PRDs, Tasks, Subtasks.
- Execute: item_update to move items across status columns; complete
  leaves with item_complete and let the cascade handle ancestors.
- Review: hierarchy_tree for structure, progress_report for ratios
  (or hierarchy-wide statistics when called without an id),
  progress_sync for a full nested recompute, item_list/item_search to
  find work.
- Maintain: hierarchy_validate reports structural inconsistencies and
  orphans; dep_audit double-checks the graph stays acyclic.

Prefer the dedicated tools over guessing state: read with item_get or
item_list before mutating, and always surface cascade results and
deletion reports to the user.`
}
