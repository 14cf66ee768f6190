package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gantry-mcp/gantry/internal/item"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// openDB is a package-level var to allow test injection.
var openDB = sql.Open

// DefaultRequestTimeout bounds a single backing-store request when the
// caller's context carries no deadline of its own.
const DefaultRequestTimeout = 5 * time.Second

// SQLite is the Store implementation backed by a local SQLite database.
// It stands in for the remote project store: the engine never learns
// which one it is talking to.
type SQLite struct {
	db      *sql.DB
	timeout time.Duration
}

// Options configures the SQLite store.
type Options struct {
	// DataDir is where gantry.db lives. Created if missing.
	DataDir string
	// RequestTimeout bounds each store call. Zero means
	// DefaultRequestTimeout.
	RequestTimeout time.Duration
}

// Open creates the data directory, opens SQLite with WAL mode, and runs
// migrations.
func Open(opts Options) (*SQLite, error) {
	if err := os.MkdirAll(opts.DataDir, 0o700); err != nil {
		return nil, fmt.Errorf("store: create data dir: %w", err)
	}

	dbPath := filepath.Join(opts.DataDir, "gantry.db")
	db, err := openDB("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("store: open database: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA foreign_keys = ON",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return nil, fmt.Errorf("store: pragma %q: %w", p, err)
		}
	}

	timeout := opts.RequestTimeout
	if timeout <= 0 {
		timeout = DefaultRequestTimeout
	}

	s := &SQLite{db: db, timeout: timeout}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("store: migration: %w", err)
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *SQLite) Close() error {
	return s.db.Close()
}

func (s *SQLite) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS items (
			id          TEXT PRIMARY KEY,
			type        TEXT NOT NULL,
			parent_id   TEXT,
			status      TEXT NOT NULL,
			title       TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			priority    TEXT NOT NULL DEFAULT '',
			position    INTEGER NOT NULL DEFAULT 0,
			created_at  TEXT NOT NULL,
			updated_at  TEXT NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_items_parent  ON items(parent_id, position);
		CREATE INDEX IF NOT EXISTS idx_items_status  ON items(status);
		CREATE INDEX IF NOT EXISTS idx_items_created ON items(created_at);

		CREATE TABLE IF NOT EXISTS edges (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			from_id    TEXT NOT NULL,
			to_id      TEXT NOT NULL,
			created_at TEXT NOT NULL,
			UNIQUE(from_id, to_id)
		);

		CREATE INDEX IF NOT EXISTS idx_edges_from ON edges(from_id);
		CREATE INDEX IF NOT EXISTS idx_edges_to   ON edges(to_id);
	`
	_, err := s.db.Exec(schema)
	return err
}

// bound attaches the per-request timeout unless the caller already set
// a tighter deadline.
func (s *SQLite) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.timeout)
}

// now returns the canonical timestamp format used in item rows.
func now() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}

// wrap classifies a driver error at the adapter boundary: row absence is
// not-found, everything else is treated as a transient store failure the
// retry layer may attempt again.
func wrap(op, id string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return item.NotFound(id)
	}
	ids := []string{}
	if id != "" {
		ids = append(ids, id)
	}
	return item.Transient(op+" failed", err, ids...)
}

const itemColumns = "id, type, parent_id, status, title, description, priority, created_at, updated_at"

func scanItem(row interface{ Scan(...any) error }) (*item.WorkItem, error) {
	var w item.WorkItem
	var parent sql.NullString
	err := row.Scan(&w.ID, &w.Type, &parent, &w.Status, &w.Title, &w.Description, &w.Priority, &w.CreatedAt, &w.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if parent.Valid {
		w.ParentID = parent.String
	}
	w.ChildrenIDs = []string{}
	return &w, nil
}

// Get returns the item with its ordered ChildrenIDs.
func (s *SQLite) Get(ctx context.Context, id string) (*item.WorkItem, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()

	row := s.db.QueryRowContext(ctx, "SELECT "+itemColumns+" FROM items WHERE id = ?", id)
	w, err := scanItem(row)
	if err != nil {
		return nil, wrap("get", id, err)
	}

	children, err := s.childIDs(ctx, id)
	if err != nil {
		return nil, wrap("get children", id, err)
	}
	w.ChildrenIDs = children
	return w, nil
}

func (s *SQLite) childIDs(ctx context.Context, parentID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id FROM items WHERE parent_id = ? ORDER BY position", parentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Create persists a new item under parentID. The id is assigned here:
// UUIDv7 so that lexical order roughly follows creation order.
func (s *SQLite) Create(ctx context.Context, parentID string, typ item.ItemType, fields CreateFields) (*item.WorkItem, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()

	status := fields.Status
	if status == "" {
		status = item.StatusBacklog
	}

	uid, err := uuid.NewV7()
	if err != nil {
		uid = uuid.New()
	}
	id := uid.String()
	ts := now()

	var parent any
	if parentID != "" {
		parent = parentID
	}

	// Position is max+1 within the parent, preserving insertion order.
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO items (id, type, parent_id, status, title, description, priority, position, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?,
			COALESCE((SELECT MAX(position) + 1 FROM items WHERE parent_id IS ?), 0),
			?, ?)`,
		id, typ, parent, status, fields.Title, fields.Description, fields.Priority, parent, ts, ts)
	if err != nil {
		return nil, wrap("create", id, err)
	}

	return &item.WorkItem{
		ID:          id,
		Type:        typ,
		ParentID:    parentID,
		Status:      status,
		ChildrenIDs: []string{},
		Title:       fields.Title,
		Description: fields.Description,
		Priority:    fields.Priority,
		CreatedAt:   ts,
		UpdatedAt:   ts,
	}, nil
}

// Update applies the non-nil fields and returns the fresh snapshot.
func (s *SQLite) Update(ctx context.Context, id string, fields item.Fields) (*item.WorkItem, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()

	sets := []string{"updated_at = ?"}
	args := []any{now()}

	if fields.Title != nil {
		sets = append(sets, "title = ?")
		args = append(args, *fields.Title)
	}
	if fields.Description != nil {
		sets = append(sets, "description = ?")
		args = append(args, *fields.Description)
	}
	if fields.Priority != nil {
		sets = append(sets, "priority = ?")
		args = append(args, *fields.Priority)
	}
	if fields.Status != nil {
		sets = append(sets, "status = ?")
		args = append(args, *fields.Status)
	}
	args = append(args, id)

	res, err := s.db.ExecContext(ctx,
		"UPDATE items SET "+strings.Join(sets, ", ")+" WHERE id = ?", args...)
	if err != nil {
		return nil, wrap("update", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, wrap("update", id, err)
	}
	if n == 0 {
		return nil, item.NotFound(id)
	}

	return s.Get(ctx, id)
}

// Delete removes a single item row. Unknown ids are a not-found error so
// callers can distinguish a raced double-delete.
func (s *SQLite) Delete(ctx context.Context, id string) error {
	ctx, cancel := s.bound(ctx)
	defer cancel()

	res, err := s.db.ExecContext(ctx, "DELETE FROM items WHERE id = ?", id)
	if err != nil {
		return wrap("delete", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return wrap("delete", id, err)
	}
	if n == 0 {
		return item.NotFound(id)
	}
	return nil
}

// ListChildren returns direct children in insertion order.
func (s *SQLite) ListChildren(ctx context.Context, parentID string) ([]*item.WorkItem, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()

	rows, err := s.db.QueryContext(ctx,
		"SELECT "+itemColumns+" FROM items WHERE parent_id = ? ORDER BY position", parentID)
	if err != nil {
		return nil, wrap("list children", parentID, err)
	}
	defer rows.Close()

	return collectItems(rows)
}

// ListAll returns a snapshot of every item, ordered by creation time.
func (s *SQLite) ListAll(ctx context.Context) ([]*item.WorkItem, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()

	rows, err := s.db.QueryContext(ctx,
		"SELECT "+itemColumns+" FROM items ORDER BY created_at, id")
	if err != nil {
		return nil, wrap("list all", "", err)
	}
	defer rows.Close()

	items, err := collectItems(rows)
	if err != nil {
		return nil, err
	}

	// Populate children from the snapshot itself in one pass, no N+1.
	byID := make(map[string]*item.WorkItem, len(items))
	for _, w := range items {
		byID[w.ID] = w
	}
	for _, w := range items {
		if w.ParentID == "" {
			continue
		}
		if p, ok := byID[w.ParentID]; ok {
			p.ChildrenIDs = append(p.ChildrenIDs, w.ID)
		}
	}
	return items, nil
}

func collectItems(rows *sql.Rows) ([]*item.WorkItem, error) {
	items := []*item.WorkItem{}
	for rows.Next() {
		w, err := scanItem(rows)
		if err != nil {
			return nil, wrap("scan item", "", err)
		}
		items = append(items, w)
	}
	if err := rows.Err(); err != nil {
		return nil, wrap("iterate items", "", err)
	}
	return items, nil
}

// AddEdge commits a dependency edge. Duplicate edges are a validation
// error, not a driver failure.
func (s *SQLite) AddEdge(ctx context.Context, fromID, toID string) (*item.DependencyEdge, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()

	ts := now()
	res, err := s.db.ExecContext(ctx,
		"INSERT INTO edges (from_id, to_id, created_at) VALUES (?, ?, ?)",
		fromID, toID, ts)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE") {
			return nil, item.Validation("dependency already exists",
				"the edge is already recorded; no action needed", fromID, toID)
		}
		return nil, wrap("add edge", fromID, err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, wrap("add edge", fromID, err)
	}
	return &item.DependencyEdge{ID: id, FromID: fromID, ToID: toID, CreatedAt: ts}, nil
}

// RemoveEdge deletes the (fromID, toID) edge if present.
func (s *SQLite) RemoveEdge(ctx context.Context, fromID, toID string) error {
	ctx, cancel := s.bound(ctx)
	defer cancel()

	res, err := s.db.ExecContext(ctx,
		"DELETE FROM edges WHERE from_id = ? AND to_id = ?", fromID, toID)
	if err != nil {
		return wrap("remove edge", fromID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return wrap("remove edge", fromID, err)
	}
	if n == 0 {
		return item.NotFound(fromID)
	}
	return nil
}

// ListEdges returns the whole edge set.
func (s *SQLite) ListEdges(ctx context.Context) ([]item.DependencyEdge, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()

	rows, err := s.db.QueryContext(ctx,
		"SELECT id, from_id, to_id, created_at FROM edges ORDER BY id")
	if err != nil {
		return nil, wrap("list edges", "", err)
	}
	defer rows.Close()

	return collectEdges(rows)
}

// ListEdgesTo returns every edge pointing at toID.
func (s *SQLite) ListEdgesTo(ctx context.Context, toID string) ([]item.DependencyEdge, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()

	rows, err := s.db.QueryContext(ctx,
		"SELECT id, from_id, to_id, created_at FROM edges WHERE to_id = ? ORDER BY id", toID)
	if err != nil {
		return nil, wrap("list edges to", toID, err)
	}
	defer rows.Close()

	return collectEdges(rows)
}

func collectEdges(rows *sql.Rows) ([]item.DependencyEdge, error) {
	edges := []item.DependencyEdge{}
	for rows.Next() {
		var e item.DependencyEdge
		if err := rows.Scan(&e.ID, &e.FromID, &e.ToID, &e.CreatedAt); err != nil {
			return nil, wrap("scan edge", "", err)
		}
		edges = append(edges, e)
	}
	if err := rows.Err(); err != nil {
		return nil, wrap("iterate edges", "", err)
	}
	return edges, nil
}
