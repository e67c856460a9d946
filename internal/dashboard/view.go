package dashboard

import (
	"github.com/notexe/reminder-dash/internal/reminder"
)

// FetchErrorMessage is shown whenever a list fetch fails.
const FetchErrorMessage = "Failed to fetch reminders. Is the backend running?"

// Status is the state of the current fetch cycle.
type Status int

const (
	StatusLoading Status = iota
	StatusReady
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusLoading:
		return "loading"
	case StatusReady:
		return "ready"
	case StatusError:
		return "error"
	}
	return "unknown"
}

// Layout selects how the current page is presented.
type Layout string

const (
	// LayoutTabs splits active and completed reminders on the server
	// through the isCompleted filter and shows a flat list.
	LayoutTabs Layout = "tabs"
	// LayoutGrouped fetches without a completion filter and groups the
	// page into today, upcoming and completed.
	LayoutGrouped Layout = "grouped"
)

// ParseLayout validates a layout name.
func ParseLayout(s string) (Layout, bool) {
	switch Layout(s) {
	case LayoutTabs, LayoutGrouped:
		return Layout(s), true
	case "":
		return LayoutTabs, true
	}
	return "", false
}

// EmptyState tells the presentation which empty message to show.
type EmptyState int

const (
	EmptyNone EmptyState = iota
	// EmptyNoData means nothing exists yet.
	EmptyNoData
	// EmptyNoMatches means the current filters exclude everything.
	EmptyNoMatches
)

// Severity of a notification.
type Severity string

const (
	SeveritySuccess Severity = "success"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Notification is the single transient message slot.
type Notification struct {
	Visible  bool
	Severity Severity
	Message  string
}

// QueryState is what the user has asked to see. Page is 1-based.
type QueryState struct {
	Search   string
	Priority reminder.Priority
	Tab      reminder.Tab
	Page     int
	PageSize int
}

// Filtered reports whether anything narrows the default view.
func (q QueryState) Filtered(layout Layout) bool {
	if q.Search != "" || q.Priority != "" {
		return true
	}
	return layout == LayoutTabs && q.Tab == reminder.TabCompleted
}

// Form identifies one of the dialogs the controller tracks.
type Form int

const (
	FormAdd Form = iota
	FormEdit
	FormDelete
)

func (f Form) String() string {
	switch f {
	case FormAdd:
		return "add"
	case FormEdit:
		return "edit"
	case FormDelete:
		return "delete"
	}
	return "unknown"
}

// Dialogs is the open/closed state of the add form, the edit form and the
// delete confirmation. Draft and Errors belong to whichever form is open.
type Dialogs struct {
	AddOpen    bool
	EditOpen   bool
	EditID     int64
	DeleteOpen bool
	DeleteID   int64
	Draft      reminder.Draft
	Errors     reminder.FieldErrors
}

// View is an immutable snapshot of everything the presentation needs.
type View struct {
	// Version increases with every state change; renderers can drop
	// snapshots older than the last one they drew.
	Version      uint64
	Status       Status
	Error        string
	Query        QueryState
	Layout       Layout
	Items        []reminder.Reminder
	Groups       []reminder.Group
	TotalPages   int
	Total        int
	Empty        EmptyState
	Dialogs      Dialogs
	Notification Notification
}
