package mcptools

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notexe/reminder-dash/internal/reminder"
)

var testNow = time.Date(2025, 3, 10, 12, 0, 0, 0, time.Local)

type memService struct {
	mu     sync.Mutex
	nextID int64
	items  map[int64]reminder.Reminder
	lists  []reminder.Query
}

func newMemService(items ...reminder.Reminder) *memService {
	m := &memService{items: map[int64]reminder.Reminder{}}
	for _, r := range items {
		m.items[r.ID] = r
		if r.ID > m.nextID {
			m.nextID = r.ID
		}
	}
	return m
}

func (m *memService) List(_ context.Context, q reminder.Query) (*reminder.Page, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lists = append(m.lists, q)

	var all []reminder.Reminder
	for _, r := range m.items {
		if q.Completed != nil && r.Completed != *q.Completed {
			continue
		}
		if q.Priority != "" && r.Priority != q.Priority {
			continue
		}
		if q.Title != "" && !strings.Contains(strings.ToLower(r.Title), strings.ToLower(q.Title)) {
			continue
		}
		all = append(all, r)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })

	pages := (len(all) + q.PageSize - 1) / q.PageSize
	start := (q.Page - 1) * q.PageSize
	end := start + q.PageSize
	if start > len(all) {
		start = len(all)
	}
	if end > len(all) {
		end = len(all)
	}
	return &reminder.Page{Items: all[start:end], TotalPages: pages, Total: len(all)}, nil
}

func (m *memService) Get(_ context.Context, id int64) (*reminder.Reminder, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.items[id]
	if !ok {
		return nil, errors.New("reminder not found")
	}
	return &r, nil
}

func (m *memService) Create(_ context.Context, d reminder.Draft) (*reminder.Reminder, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	r := reminder.Reminder{ID: m.nextID, Title: d.Title, Description: d.Description, DueDate: d.DueDate, Priority: d.Priority}
	m.items[r.ID] = r
	return &r, nil
}

func (m *memService) Update(_ context.Context, id int64, d reminder.Draft) (*reminder.Reminder, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.items[id]
	if !ok {
		return nil, errors.New("reminder not found")
	}
	r.Title, r.Description, r.DueDate, r.Priority = d.Title, d.Description, d.DueDate, d.Priority
	m.items[id] = r
	return &r, nil
}

func (m *memService) Delete(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.items[id]; !ok {
		return errors.New("reminder not found")
	}
	delete(m.items, id)
	return nil
}

func (m *memService) Complete(_ context.Context, id int64) (*reminder.Reminder, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.items[id]
	if !ok {
		return nil, errors.New("reminder not found")
	}
	r.Completed = true
	m.items[id] = r
	return &r, nil
}

func due(d time.Duration) reminder.Timestamp {
	return reminder.NewTimestamp(testNow.Add(d))
}

func newTestServer(items ...reminder.Reminder) (*Server, *memService) {
	svc := newMemService(items...)
	return NewServer(svc, Options{PageSize: 2, Now: func() time.Time { return testNow }}), svc
}

func call(args map[string]any) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Arguments = args
	return req
}

func text(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.NotNil(t, res)
	require.NotEmpty(t, res.Content)
	tc, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok, "expected text content, got %T", res.Content[0])
	return tc.Text
}

func TestServerRegistersTools(t *testing.T) {
	s, _ := newTestServer()

	tools := s.MCPServer().ListTools()
	assert.Len(t, tools, 7)
	for _, name := range []string{"add_reminder", "list_reminders", "get_reminder", "get_due_reminders", "complete_reminder", "delete_reminder", "update_reminder"} {
		assert.NotNil(t, s.MCPServer().GetTool(name), name)
	}
}

func TestAddReminder(t *testing.T) {
	s, svc := newTestServer()

	res, err := s.handleAddReminder(context.Background(), call(map[string]any{
		"title":    "Call the dentist",
		"due_date": "2025-03-11 09:30",
		"priority": "high",
	}))
	require.NoError(t, err)
	require.False(t, res.IsError, text(t, res))

	var got reminder.Reminder
	require.NoError(t, json.Unmarshal([]byte(text(t, res)), &got))
	assert.Equal(t, int64(1), got.ID)
	assert.Equal(t, reminder.PriorityHigh, got.Priority)
	assert.Equal(t, "2025-03-11T09:30:00", got.DueDate.String())
	assert.Len(t, svc.items, 1)
}

func TestAddReminderDefaultsPriority(t *testing.T) {
	s, svc := newTestServer()

	res, err := s.handleAddReminder(context.Background(), call(map[string]any{
		"title":    "Water plants",
		"due_date": "2025-03-12T08:00:00",
	}))
	require.NoError(t, err)
	require.False(t, res.IsError, text(t, res))
	assert.Equal(t, reminder.PriorityMedium, svc.items[1].Priority)
}

func TestAddReminderRejectsBadInput(t *testing.T) {
	s, svc := newTestServer()

	tests := []struct {
		name string
		args map[string]any
		want string
	}{
		{"missing title", map[string]any{"due_date": "2025-03-11 09:00"}, "title is required"},
		{"missing due", map[string]any{"title": "x"}, "due_date is required"},
		{"bad date", map[string]any{"title": "x", "due_date": "tomorrow"}, "invalid due_date"},
		{"past date", map[string]any{"title": "x", "due_date": "2025-03-01 09:00"}, "past"},
		{"bad priority", map[string]any{"title": "x", "due_date": "2025-03-11 09:00", "priority": "urgent"}, "unknown priority"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := s.handleAddReminder(context.Background(), call(tt.args))
			require.NoError(t, err)
			assert.True(t, res.IsError)
			assert.Contains(t, text(t, res), tt.want)
		})
	}
	assert.Empty(t, svc.items)
}

func TestListRemindersFilters(t *testing.T) {
	s, svc := newTestServer(
		reminder.Reminder{ID: 1, Title: "Pay rent", DueDate: due(time.Hour), Priority: reminder.PriorityHigh},
		reminder.Reminder{ID: 2, Title: "Pay taxes", DueDate: due(48 * time.Hour), Priority: reminder.PriorityLow},
		reminder.Reminder{ID: 3, Title: "Old chore", DueDate: due(-time.Hour), Priority: reminder.PriorityHigh, Completed: true},
	)

	res, err := s.handleListReminders(context.Background(), call(map[string]any{
		"status":   "active",
		"search":   "pay",
		"priority": "high",
	}))
	require.NoError(t, err)
	require.False(t, res.IsError, text(t, res))
	assert.Contains(t, text(t, res), "Pay rent")
	assert.NotContains(t, text(t, res), "Pay taxes")

	q := svc.lists[len(svc.lists)-1]
	require.NotNil(t, q.Completed)
	assert.False(t, *q.Completed)
	assert.Equal(t, "pay", q.Title)
	assert.Equal(t, reminder.PriorityHigh, q.Priority)
	assert.Equal(t, 1, q.Page)
}

func TestListRemindersPagesAndEmpty(t *testing.T) {
	s, svc := newTestServer(
		reminder.Reminder{ID: 1, Title: "a", DueDate: due(time.Hour)},
		reminder.Reminder{ID: 2, Title: "b", DueDate: due(time.Hour)},
		reminder.Reminder{ID: 3, Title: "c", DueDate: due(time.Hour)},
	)

	res, err := s.handleListReminders(context.Background(), call(map[string]any{"page": float64(2)}))
	require.NoError(t, err)

	var body struct {
		Page       int                 `json:"page"`
		TotalPages int                 `json:"totalPages"`
		Reminders  []reminder.Reminder `json:"reminders"`
	}
	require.NoError(t, json.Unmarshal([]byte(text(t, res)), &body))
	assert.Equal(t, 2, body.Page)
	assert.Equal(t, 2, body.TotalPages)
	require.Len(t, body.Reminders, 1)
	assert.Equal(t, int64(3), body.Reminders[0].ID)
	assert.Nil(t, svc.lists[0].Completed)

	res, err = s.handleListReminders(context.Background(), call(map[string]any{"status": "completed"}))
	require.NoError(t, err)
	assert.Equal(t, "No reminders found.", text(t, res))

	res, err = s.handleListReminders(context.Background(), call(map[string]any{"status": "someday"}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
}

func TestGetDueReminders(t *testing.T) {
	s, svc := newTestServer(
		reminder.Reminder{ID: 1, Title: "overdue", DueDate: due(-26 * time.Hour)},
		reminder.Reminder{ID: 2, Title: "later today", DueDate: due(3 * time.Hour)},
		reminder.Reminder{ID: 3, Title: "next week", DueDate: due(7 * 24 * time.Hour)},
		reminder.Reminder{ID: 4, Title: "done", DueDate: due(-time.Hour), Completed: true},
	)

	res, err := s.handleGetDueReminders(context.Background(), call(nil))
	require.NoError(t, err)

	var got []reminder.Reminder
	require.NoError(t, json.Unmarshal([]byte(text(t, res)), &got))
	require.Len(t, got, 2)
	assert.Equal(t, "overdue", got[0].Title)
	assert.Equal(t, "later today", got[1].Title)

	for _, q := range svc.lists {
		require.NotNil(t, q.Completed)
		assert.False(t, *q.Completed)
	}
}

func TestGetDueRemindersNone(t *testing.T) {
	s, _ := newTestServer(reminder.Reminder{ID: 1, Title: "next week", DueDate: due(7 * 24 * time.Hour)})

	res, err := s.handleGetDueReminders(context.Background(), call(nil))
	require.NoError(t, err)
	assert.Equal(t, "No due reminders.", text(t, res))
}

func TestCompleteAndDeleteReminder(t *testing.T) {
	s, svc := newTestServer(reminder.Reminder{ID: 5, Title: "x", DueDate: due(time.Hour)})

	res, err := s.handleCompleteReminder(context.Background(), call(map[string]any{"id": float64(5)}))
	require.NoError(t, err)
	assert.Equal(t, "Reminder 5 marked as completed.", text(t, res))
	assert.True(t, svc.items[5].Completed)

	res, err = s.handleDeleteReminder(context.Background(), call(map[string]any{"id": float64(5)}))
	require.NoError(t, err)
	assert.Equal(t, "Reminder 5 deleted.", text(t, res))
	assert.Empty(t, svc.items)

	res, err = s.handleDeleteReminder(context.Background(), call(map[string]any{"id": float64(5)}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Contains(t, text(t, res), "not found")
}

func TestToolsRequirePositiveID(t *testing.T) {
	s, _ := newTestServer()

	for _, args := range []map[string]any{nil, {"id": float64(0)}, {"id": "abc"}} {
		res, err := s.handleGetReminder(context.Background(), call(args))
		require.NoError(t, err)
		assert.True(t, res.IsError)
		assert.Contains(t, text(t, res), "id is required")
	}
}

func TestUpdateReminderMergesFields(t *testing.T) {
	s, svc := newTestServer(reminder.Reminder{
		ID: 7, Title: "Old title", Description: "keep me", DueDate: due(time.Hour), Priority: reminder.PriorityLow,
	})

	res, err := s.handleUpdateReminder(context.Background(), call(map[string]any{
		"id":       float64(7),
		"title":    "New title",
		"priority": "HIGH",
	}))
	require.NoError(t, err)
	require.False(t, res.IsError, text(t, res))

	got := svc.items[7]
	assert.Equal(t, "New title", got.Title)
	assert.Equal(t, "keep me", got.Description)
	assert.Equal(t, reminder.PriorityHigh, got.Priority)
	assert.Equal(t, due(time.Hour), got.DueDate)

	res, err = s.handleUpdateReminder(context.Background(), call(map[string]any{"id": float64(7), "description": ""}))
	require.NoError(t, err)
	require.False(t, res.IsError, text(t, res))
	assert.Empty(t, svc.items[7].Description)
}

func TestUpdateReminderValidates(t *testing.T) {
	s, svc := newTestServer(reminder.Reminder{ID: 7, Title: "t", DueDate: due(time.Hour), Priority: reminder.PriorityLow})

	res, err := s.handleUpdateReminder(context.Background(), call(map[string]any{"id": float64(7), "due_date": "2025-03-01 08:00"}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Equal(t, due(time.Hour), svc.items[7].DueDate)

	res, err = s.handleUpdateReminder(context.Background(), call(map[string]any{"id": float64(99), "title": "x"}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
}
