package domain

import "fmt"

// Status is the lifecycle stage of a project. Only the five enumerated
// values are valid state.
type Status string

const (
	StatusPlanned       Status = "planned"
	StatusInProgress    Status = "in-progress"
	StatusSubmitted     Status = "submitted"
	StatusWaitingReview Status = "waiting-review"
	StatusCompleted     Status = "completed"
)

// Statuses returns all valid statuses in presentation order.
func Statuses() []Status {
	return []Status{StatusPlanned, StatusInProgress, StatusSubmitted, StatusWaitingReview, StatusCompleted}
}

func (s Status) Valid() bool {
	switch s {
	case StatusPlanned, StatusInProgress, StatusSubmitted, StatusWaitingReview, StatusCompleted:
		return true
	}
	return false
}

// Priority of a project.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// Project represents a single tracked work item. ID and CreatedAt are
// immutable after creation: the ID is assigned by the remote service, or by
// a client-side timestamp generator when the project is created offline.
type Project struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Status      Status   `json:"status"`
	Priority    Priority `json:"priority"`
	Progress    int      `json:"progress"`
	Assignee    string   `json:"assignee"`
	Manager     string   `json:"manager"`
	Deadline    string   `json:"deadline"`
	CreatedAt   string   `json:"createdAt"`
	UserID      string   `json:"userId,omitempty"`
	UpdatedAt   string   `json:"updatedAt,omitempty"`
}

// Validate checks a project that is about to be written back (update path).
// A stored project has no defaulting step, so status and priority must
// already hold one of the enumerated values; empty is invalid state here.
func (p Project) Validate() error {
	if p.ID == "" {
		return &ValidationError{Field: "id", Reason: "required"}
	}
	if p.Status == "" {
		return &ValidationError{Field: "status", Reason: "required"}
	}
	if p.Priority == "" {
		return &ValidationError{Field: "priority", Reason: "required"}
	}
	return validateFields(p.Title, p.Assignee, p.Manager, p.Deadline, p.Status, p.Priority, p.Progress)
}

// Draft carries the user-supplied fields of a new project. ID, CreatedAt and
// UserID are assigned by whoever persists it.
type Draft struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Status      Status   `json:"status"`
	Priority    Priority `json:"priority"`
	Progress    int      `json:"progress"`
	Assignee    string   `json:"assignee"`
	Manager     string   `json:"manager"`
	Deadline    string   `json:"deadline"`
}

// Validate rejects a draft before any state mutation or network call.
// Title, assignee, manager and deadline are required; empty status and
// priority get defaults later, anything else must be a known enum value.
func (d Draft) Validate() error {
	return validateFields(d.Title, d.Assignee, d.Manager, d.Deadline, d.Status, d.Priority, d.Progress)
}

// Normalized returns the draft with enum defaults applied.
func (d Draft) Normalized() Draft {
	if d.Status == "" {
		d.Status = StatusPlanned
	}
	if d.Priority == "" {
		d.Priority = PriorityMedium
	}
	return d
}

func validateFields(title, assignee, manager, deadline string, status Status, priority Priority, progress int) error {
	if title == "" {
		return &ValidationError{Field: "title", Reason: "required"}
	}
	if assignee == "" {
		return &ValidationError{Field: "assignee", Reason: "required"}
	}
	if manager == "" {
		return &ValidationError{Field: "manager", Reason: "required"}
	}
	if deadline == "" {
		return &ValidationError{Field: "deadline", Reason: "required"}
	}
	if status != "" && !status.Valid() {
		return &ValidationError{Field: "status", Reason: fmt.Sprintf("unknown value %q", status)}
	}
	if priority != "" && !priority.Valid() {
		return &ValidationError{Field: "priority", Reason: fmt.Sprintf("unknown value %q", priority)}
	}
	if progress < 0 || progress > 100 {
		return &ValidationError{Field: "progress", Reason: "must be between 0 and 100"}
	}
	return nil
}
