package reminder

import (
	"fmt"
	"strings"
)

// Priority is the urgency of a reminder.
type Priority string

// Priority levels for reminders.
const (
	PriorityLow    Priority = "LOW"
	PriorityMedium Priority = "MEDIUM"
	PriorityHigh   Priority = "HIGH"
)

// Priorities lists the priority levels from most to least urgent.
var Priorities = []Priority{PriorityHigh, PriorityMedium, PriorityLow}

// ParsePriority accepts any casing of a priority name. Blank input and the
// literal "null" return the empty Priority, meaning "no priority filter".
func ParsePriority(s string) (Priority, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "null") || strings.EqualFold(s, "none") {
		return "", nil
	}
	p := Priority(strings.ToUpper(s))
	if !p.Valid() {
		return "", fmt.Errorf("unknown priority %q (use low, medium or high)", s)
	}
	return p, nil
}

// Valid reports whether p is one of the three priority levels.
func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

func (p Priority) String() string {
	return string(p)
}

// Tab selects which side of the completion split the dashboard shows.
type Tab string

const (
	TabActive    Tab = "ACTIVE"
	TabCompleted Tab = "COMPLETED"
)

// ParseTab accepts "active", "completed" and the short forms "a"/"c"/"done".
func ParseTab(s string) (Tab, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "active", "a", "open", "pending":
		return TabActive, nil
	case "completed", "c", "done":
		return TabCompleted, nil
	}
	return "", fmt.Errorf("unknown tab %q (use active or completed)", s)
}

// Reminder is a time-bound item as returned by the reminder service.
type Reminder struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	DueDate     Timestamp `json:"dueDate"`
	Priority    Priority  `json:"priority"`
	Completed   bool      `json:"completed"`
	CreatedAt   Timestamp `json:"createdAt,omitzero"`
	UpdatedAt   Timestamp `json:"updatedAt,omitzero"`
}

// Draft holds user-submitted fields before the server assigns an id.
type Draft struct {
	Title       string    `json:"title" validate:"notblank,max=255"`
	Description string    `json:"description" validate:"max=1000"`
	DueDate     Timestamp `json:"dueDate" validate:"notpast"`
	Priority    Priority  `json:"priority" validate:"oneof=LOW MEDIUM HIGH"`
}

// Normalize fills in defaults. An empty priority becomes MEDIUM.
func (d Draft) Normalize() Draft {
	if d.Priority == "" {
		d.Priority = PriorityMedium
	}
	return d
}

// DraftFrom copies the editable fields of r into a Draft.
func DraftFrom(r Reminder) Draft {
	return Draft{
		Title:       r.Title,
		Description: r.Description,
		DueDate:     r.DueDate,
		Priority:    r.Priority,
	}
}

// Page is one page of a listing.
type Page struct {
	Items      []Reminder
	TotalPages int
	Total      int
}
