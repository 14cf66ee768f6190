// Package item defines the work-item data model shared by the store,
// the engine, and the MCP tool surface.
//
// The hierarchy has four fixed levels (Project → PRD → Task → Subtask)
// and a fixed status vocabulary. Both enums are closed sets: anything
// outside them is rejected at validation, never coerced.
package item

import "fmt"

// --- Item type enum ---

// ItemType is the level of a work item in the hierarchy.
type ItemType string

const (
	TypeProject ItemType = "Project"
	TypePRD     ItemType = "PRD"
	TypeTask    ItemType = "Task"
	TypeSubtask ItemType = "Subtask"
)

// TypeOrder lists the hierarchy levels from most to least senior.
var TypeOrder = []ItemType{TypeProject, TypePRD, TypeTask, TypeSubtask}

// typeLevel maps each type to its depth (Project = 0).
var typeLevel = map[ItemType]int{
	TypeProject: 0,
	TypePRD:     1,
	TypeTask:    2,
	TypeSubtask: 3,
}

// ValidateType returns an error if t is not a recognized hierarchy level.
func ValidateType(t ItemType) error {
	if _, ok := typeLevel[t]; !ok {
		return fmt.Errorf("invalid item type %q: must be one of: Project, PRD, Task, Subtask", t)
	}
	return nil
}

// Level returns the hierarchy depth of t (Project = 0, Subtask = 3)
// and false if t is unknown.
func (t ItemType) Level() (int, bool) {
	l, ok := typeLevel[t]
	return l, ok
}

// ChildType returns the type exactly one level junior to t, or "" if t
// is a Subtask (leaf) or unknown.
func (t ItemType) ChildType() ItemType {
	l, ok := typeLevel[t]
	if !ok || l == len(TypeOrder)-1 {
		return ""
	}
	return TypeOrder[l+1]
}

// ParentType returns the type exactly one level senior to t, or "" if t
// is a Project (root) or unknown.
func (t ItemType) ParentType() ItemType {
	l, ok := typeLevel[t]
	if !ok || l == 0 {
		return ""
	}
	return TypeOrder[l-1]
}

// --- Status enum ---

// Status is a workflow column. The sequence Backlog → This Sprint →
// Up Next → In Progress → Done is totally ordered, but direct updates
// may move an item in either direction; only the cascade engine performs
// automatic transitions, and only forward into Done.
type Status string

const (
	StatusBacklog    Status = "Backlog"
	StatusThisSprint Status = "This Sprint"
	StatusUpNext     Status = "Up Next"
	StatusInProgress Status = "In Progress"
	StatusDone       Status = "Done"
)

// StatusOrder lists the workflow columns in sequence.
var StatusOrder = []Status{StatusBacklog, StatusThisSprint, StatusUpNext, StatusInProgress, StatusDone}

var statusRank = map[Status]int{
	StatusBacklog:    0,
	StatusThisSprint: 1,
	StatusUpNext:     2,
	StatusInProgress: 3,
	StatusDone:       4,
}

// ParseStatus validates a raw status token against the fixed vocabulary.
func ParseStatus(raw string) (Status, error) {
	s := Status(raw)
	if _, ok := statusRank[s]; !ok {
		return "", &Error{
			Kind:    KindValidation,
			Message: fmt.Sprintf("invalid status %q", raw),
			Hint:    "valid statuses: Backlog, This Sprint, Up Next, In Progress, Done",
		}
	}
	return s, nil
}

// Rank returns the position of s in the workflow sequence and false if
// s is unknown.
func (s Status) Rank() (int, bool) {
	r, ok := statusRank[s]
	return r, ok
}

// --- Core data structures ---

// WorkItem is the single generic node type for all four hierarchy levels.
// ParentID is empty only for Projects. ChildrenIDs preserves insertion
// order, significant for display but not for correctness.
type WorkItem struct {
	ID          string   `json:"id"`
	Type        ItemType `json:"type"`
	ParentID    string   `json:"parent_id,omitempty"`
	Status      Status   `json:"status"`
	ChildrenIDs []string `json:"children_ids"`
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Priority    string   `json:"priority,omitempty"`
	CreatedAt   string   `json:"created_at"`
	UpdatedAt   string   `json:"updated_at"`
}

// IsDone reports whether the item sits in the Done column.
func (w *WorkItem) IsDone() bool {
	return w.Status == StatusDone
}

// Fields carries a partial update. Nil pointers mean "leave unchanged".
// Type and ParentID are immutable after creation and deliberately absent.
type Fields struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Priority    *string `json:"priority,omitempty"`
	Status      *Status `json:"status,omitempty"`
}

// DependencyEdge is a directed "from depends on to" edge. Edges are kept
// apart from the parent/child tree and must never form a cycle.
type DependencyEdge struct {
	ID        int64  `json:"id"`
	FromID    string `json:"from_id"`
	ToID      string `json:"to_id"`
	CreatedAt string `json:"created_at"`
}
