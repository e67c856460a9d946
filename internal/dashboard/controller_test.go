package dashboard

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notexe/reminder-dash/internal/reminder"
)

func ts(t *testing.T, s string) reminder.Timestamp {
	t.Helper()
	v, err := reminder.ParseTimestamp(s)
	require.NoError(t, err)
	return v
}

func clock(t *testing.T) func() time.Time {
	now := ts(t, "2025-03-10T12:00:00").Time
	return func() time.Time { return now }
}

func newController(t *testing.T, svc Service, opts Options) *Controller {
	t.Helper()
	if opts.Debounce == 0 {
		opts.Debounce = 20 * time.Millisecond
	}
	if opts.Now == nil {
		opts.Now = clock(t)
	}
	c := New(svc, opts)
	t.Cleanup(func() {
		c.Close()
		c.Wait()
	})
	return c
}

func sample(t *testing.T) []reminder.Reminder {
	return []reminder.Reminder{
		{ID: 7, Title: "Water plants", DueDate: ts(t, "2025-03-10T18:00:00"), Priority: reminder.PriorityLow},
		{ID: 42, Title: "Pay rent", DueDate: ts(t, "2025-03-11T09:00:00"), Priority: reminder.PriorityHigh},
	}
}

func last(t *testing.T, calls []reminder.Query) reminder.Query {
	t.Helper()
	require.NotEmpty(t, calls)
	return calls[len(calls)-1]
}

func TestStartFetchesDefaultQuery(t *testing.T) {
	svc := newFakeService(sample(t)...)
	c := newController(t, svc, Options{})

	assert.Equal(t, StatusLoading, c.View().Status)
	c.Start(context.Background())
	c.Wait()

	calls := svc.listCalls()
	require.Len(t, calls, 1)
	q := calls[0]
	assert.Equal(t, 1, q.Page)
	assert.Equal(t, DefaultPageSize, q.PageSize)
	assert.Equal(t, "dueDate,asc", q.Sort.String())
	assert.Empty(t, q.Title)
	assert.Empty(t, q.Priority)
	require.NotNil(t, q.Completed)
	assert.False(t, *q.Completed)

	v := c.View()
	assert.Equal(t, StatusReady, v.Status)
	assert.Empty(t, v.Error)
	assert.Len(t, v.Items, 2)
	assert.Equal(t, 1, v.TotalPages)
	assert.Equal(t, EmptyNone, v.Empty)
	assert.Equal(t, reminder.TabActive, v.Query.Tab)
}

func TestFilterChangeResetsPage(t *testing.T) {
	svc := newFakeService(sample(t)...)
	svc.setListFn(func(_ int, q reminder.Query) (*reminder.Page, error) {
		return &reminder.Page{Items: sample(t), TotalPages: 5}, nil
	})
	c := newController(t, svc, Options{})
	c.Start(context.Background())
	c.Wait()

	c.SetPage(3)
	c.Wait()
	assert.Equal(t, 3, last(t, svc.listCalls()).Page)

	c.SetSearch("rent")
	assert.Equal(t, 1, c.View().Query.Page)
	c.Wait()
	q := last(t, svc.listCalls())
	assert.Equal(t, 1, q.Page)
	assert.Equal(t, "rent", q.Title)

	c.SetPage(2)
	c.Wait()
	c.TogglePriority(reminder.PriorityHigh)
	c.Wait()
	q = last(t, svc.listCalls())
	assert.Equal(t, 1, q.Page)
	assert.Equal(t, reminder.PriorityHigh, q.Priority)

	c.SetPage(4)
	c.Wait()
	c.SetTab(reminder.TabCompleted)
	c.Wait()
	q = last(t, svc.listCalls())
	assert.Equal(t, 1, q.Page)
	require.NotNil(t, q.Completed)
	assert.True(t, *q.Completed)

	c.TogglePriority(reminder.PriorityHigh)
	c.Wait()
	assert.Empty(t, last(t, svc.listCalls()).Priority)
}

func TestDebounceCollapsesRapidChanges(t *testing.T) {
	svc := newFakeService(sample(t)...)
	c := newController(t, svc, Options{Debounce: 50 * time.Millisecond})
	c.Start(context.Background())
	c.Wait()
	before := len(svc.listCalls())

	for _, term := range []string{"p", "pa", "pay", "pay r", "pay rent"} {
		c.SetSearch(term)
	}
	c.Wait()

	calls := svc.listCalls()
	require.Len(t, calls, before+1)
	assert.Equal(t, "pay rent", last(t, calls).Title)
}

func TestUnchangedFilterDoesNotFetch(t *testing.T) {
	svc := newFakeService(sample(t)...)
	c := newController(t, svc, Options{})
	c.Start(context.Background())
	c.Wait()

	c.SetSearch("")
	c.SetTab(reminder.TabActive)
	c.SetPriority("")
	c.Wait()

	assert.Len(t, svc.listCalls(), 1)
}

func TestPageChangeIsImmediate(t *testing.T) {
	svc := newFakeService(sample(t)...)
	svc.setListFn(func(_ int, q reminder.Query) (*reminder.Page, error) {
		return &reminder.Page{Items: sample(t), TotalPages: 3}, nil
	})
	c := newController(t, svc, Options{Debounce: time.Hour})
	c.Start(context.Background())
	c.Wait()

	c.SetPage(2)
	c.Wait()
	assert.Equal(t, 2, last(t, svc.listCalls()).Page)

	// the page change carries the pending search, so the debounce is dropped
	c.SetSearch("rent")
	c.SetPage(2)
	c.Wait()

	calls := svc.listCalls()
	require.Len(t, calls, 3)
	assert.Equal(t, "rent", calls[2].Title)
	assert.Equal(t, 2, calls[2].Page)
}

func TestPageIsClamped(t *testing.T) {
	svc := newFakeService()
	svc.setListFn(func(_ int, q reminder.Query) (*reminder.Page, error) {
		return &reminder.Page{Items: sample(t), TotalPages: 3}, nil
	})
	c := newController(t, svc, Options{})
	c.Start(context.Background())
	c.Wait()

	c.SetPage(10)
	c.Wait()
	assert.Equal(t, 3, c.View().Query.Page)

	c.NextPage()
	c.Wait()
	assert.Equal(t, 3, c.View().Query.Page)

	c.SetPage(-4)
	c.Wait()
	assert.Equal(t, 1, c.View().Query.Page)

	c.PrevPage()
	c.Wait()
	assert.Len(t, svc.listCalls(), 3)
}

func TestStaleResponseIsDiscarded(t *testing.T) {
	release := make(chan struct{})
	slow := []reminder.Reminder{{ID: 1, Title: "slow page"}}
	fast := []reminder.Reminder{{ID: 2, Title: "fast page"}}

	svc := newFakeService()
	svc.setListFn(func(_ int, q reminder.Query) (*reminder.Page, error) {
		switch q.Page {
		case 2:
			<-release
			return &reminder.Page{Items: slow, TotalPages: 5}, nil
		case 3:
			return &reminder.Page{Items: fast, TotalPages: 5}, nil
		}
		return &reminder.Page{Items: sample(t), TotalPages: 5}, nil
	})
	c := newController(t, svc, Options{})
	c.Start(context.Background())
	c.Wait()

	c.SetPage(2)
	c.SetPage(3)
	require.Eventually(t, func() bool {
		v := c.View()
		return v.Status == StatusReady && len(v.Items) == 1 && v.Items[0].ID == 2
	}, time.Second, 5*time.Millisecond)

	close(release)
	c.Wait()

	v := c.View()
	require.Len(t, v.Items, 1)
	assert.Equal(t, "fast page", v.Items[0].Title)
	assert.Equal(t, 3, v.Query.Page)
}

func TestFetchFailureShowsError(t *testing.T) {
	svc := newFakeService(sample(t)...)
	c := newController(t, svc, Options{})
	c.Start(context.Background())
	c.Wait()
	require.Len(t, c.View().Items, 2)

	svc.setListFn(func(int, reminder.Query) (*reminder.Page, error) {
		return nil, errBackendDown
	})
	c.Refresh()
	c.Wait()

	v := c.View()
	assert.Equal(t, StatusError, v.Status)
	assert.Equal(t, FetchErrorMessage, v.Error)
	assert.Empty(t, v.Items)
	assert.Equal(t, EmptyNone, v.Empty)

	svc.setListFn(func(int, reminder.Query) (*reminder.Page, error) {
		return &reminder.Page{Items: sample(t), TotalPages: 1}, nil
	})
	c.Refresh()
	c.Wait()
	assert.Equal(t, StatusReady, c.View().Status)
	assert.Empty(t, c.View().Error)
}

func TestEmptyStates(t *testing.T) {
	svc := newFakeService()
	c := newController(t, svc, Options{})
	c.Start(context.Background())
	c.Wait()
	assert.Equal(t, EmptyNoData, c.View().Empty)

	c.SetSearch("zzz-no-match")
	c.Wait()
	assert.Equal(t, "zzz-no-match", last(t, svc.listCalls()).Title)
	assert.Equal(t, EmptyNoMatches, c.View().Empty)

	c.SetSearch("")
	c.SetTab(reminder.TabCompleted)
	c.Wait()
	assert.Equal(t, EmptyNoMatches, c.View().Empty)
}

func TestEmptyPageStepsBack(t *testing.T) {
	svc := newFakeService()
	svc.setListFn(func(call int, q reminder.Query) (*reminder.Page, error) {
		switch {
		case call == 1:
			return &reminder.Page{Items: sample(t), TotalPages: 3}, nil
		case q.Page > 2:
			return &reminder.Page{Items: []reminder.Reminder{}, TotalPages: 2}, nil
		}
		return &reminder.Page{Items: sample(t), TotalPages: 2}, nil
	})
	c := newController(t, svc, Options{})
	c.Start(context.Background())
	c.Wait()

	c.SetPage(3)
	c.Wait()

	v := c.View()
	assert.Equal(t, 2, v.Query.Page)
	assert.Equal(t, 2, v.TotalPages)
	assert.Len(t, v.Items, 2)
}

func TestEmptyPageDuringSearchDoesNotStepBack(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	svc := newFakeService()
	svc.setListFn(func(call int, q reminder.Query) (*reminder.Page, error) {
		switch {
		case call == 1:
			return &reminder.Page{Items: sample(t), TotalPages: 3, Total: 25}, nil
		case q.Page == 3:
			close(started)
			<-release
			return &reminder.Page{Items: []reminder.Reminder{}, TotalPages: 2, Total: 15}, nil
		}
		return &reminder.Page{Items: sample(t)[1:], TotalPages: 1, Total: 1}, nil
	})
	c := newController(t, svc, Options{Debounce: 200 * time.Millisecond})
	c.Start(context.Background())
	c.Wait()

	c.SetPage(3)
	<-started
	c.SetSearch("rent")
	close(release)
	c.Wait()

	var searched []reminder.Query
	for _, q := range svc.listCalls() {
		if q.Title == "rent" {
			searched = append(searched, q)
		}
	}
	require.NotEmpty(t, searched)
	for _, q := range searched {
		assert.Equal(t, 1, q.Page, "search must start from the first page")
	}
	v := c.View()
	assert.Equal(t, 1, v.Query.Page)
	assert.Equal(t, "rent", v.Query.Search)
	assert.Equal(t, StatusReady, v.Status)
	assert.Len(t, v.Items, 1)
}

func TestCreateScenario(t *testing.T) {
	svc := newFakeService(sample(t)...)
	c := newController(t, svc, Options{})
	c.Start(context.Background())
	c.Wait()
	before := len(svc.listCalls())

	draft := reminder.Draft{Title: "Pay rent", DueDate: ts(t, "2025-03-11T09:00:00"), Priority: reminder.PriorityHigh}
	c.OpenAdd()
	require.True(t, c.View().Dialogs.AddOpen)

	require.NoError(t, c.SubmitAdd(context.Background(), draft))
	c.Wait()

	assert.Equal(t, []reminder.Draft{draft}, svc.createCalls())
	v := c.View()
	assert.False(t, v.Dialogs.AddOpen)
	assert.Equal(t, Notification{Visible: true, Severity: SeveritySuccess, Message: MsgCreated}, v.Notification)
	assert.Len(t, svc.listCalls(), before+1)
}

func TestCreateFailureKeepsDraft(t *testing.T) {
	svc := newFakeService(sample(t)...)
	svc.createErr = errBackendDown
	c := newController(t, svc, Options{})
	c.Start(context.Background())
	c.Wait()
	before := len(svc.listCalls())

	draft := reminder.Draft{Title: "Pay rent", Description: "by transfer", DueDate: ts(t, "2025-03-11T09:00:00")}
	err := c.SubmitAdd(context.Background(), draft)
	assert.True(t, errors.Is(err, errBackendDown))

	v := c.View()
	assert.True(t, v.Dialogs.AddOpen)
	assert.Equal(t, draft, v.Dialogs.Draft)
	assert.Equal(t, SeverityError, v.Notification.Severity)
	assert.Equal(t, MsgCreateFailed, v.Notification.Message)
	assert.Len(t, svc.listCalls(), before)
}

func TestValidationGate(t *testing.T) {
	svc := newFakeService(sample(t)...)
	c := newController(t, svc, Options{})
	c.Start(context.Background())
	c.Wait()

	bad := []reminder.Draft{
		{Title: "", DueDate: ts(t, "2025-03-11T09:00:00")},
		{Title: "   ", DueDate: ts(t, "2025-03-11T09:00:00")},
		{Title: "Late", DueDate: ts(t, "2025-03-09T09:00:00")},
	}
	for _, d := range bad {
		err := c.SubmitAdd(context.Background(), d)
		var fe reminder.FieldErrors
		require.True(t, errors.As(err, &fe), "draft %+v", d)

		v := c.View()
		assert.True(t, v.Dialogs.AddOpen)
		assert.NotEmpty(t, v.Dialogs.Errors)
		assert.False(t, v.Notification.Visible)
	}
	assert.Empty(t, svc.createCalls())

	require.NoError(t, c.OpenEdit(42))
	err := c.SubmitEdit(context.Background(), reminder.Draft{Title: " ", DueDate: ts(t, "2025-03-01T09:00:00")})
	var fe reminder.FieldErrors
	require.True(t, errors.As(err, &fe))
	require.Len(t, fe, 2)
	assert.Equal(t, "dueDate", fe[0].Field)
	assert.Equal(t, "title", fe[1].Field)
	assert.Empty(t, svc.updates)
}

func TestEditFlow(t *testing.T) {
	svc := newFakeService(sample(t)...)
	c := newController(t, svc, Options{})
	c.Start(context.Background())
	c.Wait()

	assert.True(t, errors.Is(c.OpenEdit(999), ErrNotOnPage))
	assert.Equal(t, ErrNoEdit, c.SubmitEdit(context.Background(), reminder.Draft{}))

	require.NoError(t, c.OpenEdit(42))
	v := c.View()
	assert.True(t, v.Dialogs.EditOpen)
	assert.Equal(t, "Pay rent", v.Dialogs.Draft.Title)
	assert.Equal(t, reminder.PriorityHigh, v.Dialogs.Draft.Priority)

	d := v.Dialogs.Draft
	d.Title = "Pay rent early"
	require.NoError(t, c.SubmitEdit(context.Background(), d))
	c.Wait()

	assert.Equal(t, "Pay rent early", svc.updates[42].Title)
	v = c.View()
	assert.False(t, v.Dialogs.EditOpen)
	assert.Equal(t, MsgUpdated, v.Notification.Message)
}

func TestCompleteScenario(t *testing.T) {
	svc := newFakeService(sample(t)...)
	updatedAt := ts(t, "2025-03-10T12:00:05")
	svc.completeFn = func(id int64) (*reminder.Reminder, error) {
		return &reminder.Reminder{ID: id, Title: "Pay rent", DueDate: ts(t, "2025-03-11T09:00:00"), Priority: reminder.PriorityHigh, Completed: true, UpdatedAt: updatedAt}, nil
	}
	c := newController(t, svc, Options{})
	c.Start(context.Background())
	c.Wait()
	before := len(svc.listCalls())

	require.NoError(t, c.Complete(context.Background(), 42))
	c.Wait()

	r, ok := c.Lookup(42)
	require.True(t, ok)
	assert.True(t, r.Completed)
	assert.Equal(t, updatedAt, r.UpdatedAt)
	assert.Len(t, svc.listCalls(), before, "completion must not refetch")

	v := c.View()
	require.Len(t, v.Items, 1, "completed item leaves the active tab")
	assert.Equal(t, int64(7), v.Items[0].ID)
	assert.Equal(t, Notification{Visible: true, Severity: SeveritySuccess, Message: MsgCompleted}, v.Notification)
}

func TestCompletingLastVisibleItemReloads(t *testing.T) {
	svc := newFakeService()
	svc.setListFn(func(call int, q reminder.Query) (*reminder.Page, error) {
		if call == 1 {
			return &reminder.Page{Items: sample(t)[:1], TotalPages: 3, Total: 25}, nil
		}
		return &reminder.Page{Items: sample(t)[1:], TotalPages: 3, Total: 24}, nil
	})
	svc.completeFn = func(id int64) (*reminder.Reminder, error) {
		return &reminder.Reminder{ID: id, Title: "Water plants", DueDate: ts(t, "2025-03-10T18:00:00"), Completed: true}, nil
	}
	c := newController(t, svc, Options{})
	c.Start(context.Background())
	c.Wait()

	var (
		mu   sync.Mutex
		seen []View
	)
	c.OnChange(func(v View) {
		mu.Lock()
		seen = append(seen, v)
		mu.Unlock()
	})

	require.NoError(t, c.Complete(context.Background(), 7))
	c.Wait()

	mu.Lock()
	defer mu.Unlock()
	for _, v := range seen {
		assert.NotEqual(t, EmptyNoData, v.Empty, "server still holds reminders")
	}
	assert.Len(t, svc.listCalls(), 2, "an emptied page is reloaded")
	v := c.View()
	require.Len(t, v.Items, 1)
	assert.Equal(t, int64(42), v.Items[0].ID)
	assert.Equal(t, EmptyNone, v.Empty)
}

func TestEmptyStateWithRemindersElsewhere(t *testing.T) {
	svc := newFakeService()
	svc.setListFn(func(int, reminder.Query) (*reminder.Page, error) {
		return &reminder.Page{Items: []reminder.Reminder{}, TotalPages: 0, Total: 4}, nil
	})
	c := newController(t, svc, Options{})
	c.Start(context.Background())
	c.Wait()

	assert.Equal(t, EmptyNoMatches, c.View().Empty)
}

func TestCompleteFailureLeavesState(t *testing.T) {
	svc := newFakeService(sample(t)...)
	svc.completeFn = func(int64) (*reminder.Reminder, error) { return nil, errBackendDown }
	c := newController(t, svc, Options{})
	c.Start(context.Background())
	c.Wait()

	assert.Error(t, c.Complete(context.Background(), 42))

	r, ok := c.Lookup(42)
	require.True(t, ok)
	assert.False(t, r.Completed)
	v := c.View()
	assert.Len(t, v.Items, 2)
	assert.Equal(t, SeverityError, v.Notification.Severity)
	assert.Equal(t, MsgCompleteFailed, v.Notification.Message)
}

func TestDeleteCancel(t *testing.T) {
	svc := newFakeService(sample(t)...)
	c := newController(t, svc, Options{})
	c.Start(context.Background())
	c.Wait()
	before := c.View().Items

	c.RequestDelete(7)
	v := c.View()
	assert.True(t, v.Dialogs.DeleteOpen)
	assert.Equal(t, int64(7), v.Dialogs.DeleteID)

	c.CancelDelete()
	c.Wait()

	assert.Empty(t, svc.deleteCalls())
	v = c.View()
	assert.False(t, v.Dialogs.DeleteOpen)
	assert.Equal(t, before, v.Items)
	assert.Equal(t, ErrNoPendingDelete, c.ConfirmDelete(context.Background()))
}

func TestDeleteConfirm(t *testing.T) {
	svc := newFakeService(sample(t)...)
	svc.deleteErr = errBackendDown
	c := newController(t, svc, Options{})
	c.Start(context.Background())
	c.Wait()
	before := len(svc.listCalls())

	c.RequestDelete(7)
	assert.Error(t, c.ConfirmDelete(context.Background()))
	v := c.View()
	assert.True(t, v.Dialogs.DeleteOpen, "confirmation stays open for retry")
	assert.Equal(t, MsgDeleteFailed, v.Notification.Message)

	svc.mu.Lock()
	svc.deleteErr = nil
	svc.mu.Unlock()

	require.NoError(t, c.ConfirmDelete(context.Background()))
	c.Wait()

	assert.Equal(t, []int64{7, 7}, svc.deleteCalls())
	v = c.View()
	assert.False(t, v.Dialogs.DeleteOpen)
	assert.Equal(t, Notification{Visible: true, Severity: SeverityWarning, Message: MsgDeleted}, v.Notification)
	assert.Len(t, svc.listCalls(), before+1)
}

func TestNotificationDismissal(t *testing.T) {
	svc := newFakeService(sample(t)...)
	c := newController(t, svc, Options{NotifyTimeout: 30 * time.Millisecond})
	c.Start(context.Background())
	c.Wait()

	require.NoError(t, c.Complete(context.Background(), 7))
	assert.True(t, c.View().Notification.Visible)
	require.Eventually(t, func() bool {
		return !c.View().Notification.Visible
	}, time.Second, 5*time.Millisecond)

	require.NoError(t, c.Complete(context.Background(), 42))
	c.DismissNotification()
	assert.False(t, c.View().Notification.Visible)
}

func TestGroupedLayout(t *testing.T) {
	items := append(sample(t), reminder.Reminder{
		ID: 9, Title: "Done", DueDate: ts(t, "2025-03-08T09:00:00"), Completed: true, UpdatedAt: ts(t, "2025-03-09T09:00:00"),
	})
	svc := newFakeService(items...)
	c := newController(t, svc, Options{Layout: LayoutGrouped})
	c.Start(context.Background())
	c.Wait()

	assert.Nil(t, svc.listCalls()[0].Completed, "grouped layout never filters on completion")

	v := c.View()
	require.Len(t, v.Groups, 3)
	assert.Equal(t, reminder.GroupToday, v.Groups[0].Name)
	assert.Equal(t, int64(7), v.Groups[0].Items[0].ID)
	assert.Equal(t, reminder.GroupUpcoming, v.Groups[1].Name)
	assert.Equal(t, reminder.GroupCompleted, v.Groups[2].Name)
	assert.Len(t, v.Items, 3)
}

func TestOnChangeReceivesSnapshots(t *testing.T) {
	svc := newFakeService(sample(t)...)
	c := newController(t, svc, Options{})

	var latest atomic.Uint64
	var ready atomic.Bool
	c.OnChange(func(v View) {
		latest.Store(v.Version)
		if v.Status == StatusReady {
			ready.Store(true)
		}
	})

	c.Start(context.Background())
	c.Wait()

	require.Eventually(t, ready.Load, time.Second, 5*time.Millisecond)
	assert.NotZero(t, latest.Load())
}

func TestClosedControllerDropsResponses(t *testing.T) {
	release := make(chan struct{})
	svc := newFakeService()
	svc.setListFn(func(int, reminder.Query) (*reminder.Page, error) {
		<-release
		return &reminder.Page{Items: sample(t), TotalPages: 1}, nil
	})
	c := New(svc, Options{Now: clock(t)})
	c.Start(context.Background())
	c.Close()
	close(release)
	c.Wait()

	v := c.View()
	assert.Equal(t, StatusLoading, v.Status)
	assert.Empty(t, v.Items)
}
