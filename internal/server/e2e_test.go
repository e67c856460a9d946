package server

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notexe/reminder-dash/internal/api"
	"github.com/notexe/reminder-dash/internal/dashboard"
	"github.com/notexe/reminder-dash/internal/logging"
	"github.com/notexe/reminder-dash/internal/reminder"
)

// TestDashboardAgainstServer drives the controller through the HTTP client
// against the development backend.
func TestDashboardAgainstServer(t *testing.T) {
	f := newFixture(t)
	srv := httptest.NewServer(f.server.Handler())
	t.Cleanup(srv.Close)

	client := api.NewClient(srv.URL+"/api/v1/reminders", 5*time.Second, logging.Discard())
	ctrl := dashboard.New(client, dashboard.Options{PageSize: 2, Debounce: 10 * time.Millisecond})
	t.Cleanup(func() {
		ctrl.Close()
		ctrl.Wait()
	})
	ctx := context.Background()

	ctrl.Start(ctx)
	ctrl.Wait()
	assert.Equal(t, dashboard.EmptyNoData, ctrl.View().Empty)

	due := reminder.NewTimestamp(tomorrow())
	for _, title := range []string{"Pay rent", "Call plumber", "Renew passport"} {
		require.NoError(t, ctrl.SubmitAdd(ctx, reminder.Draft{Title: title, DueDate: due, Priority: reminder.PriorityHigh}))
		ctrl.Wait()
	}

	v := ctrl.View()
	assert.Equal(t, dashboard.StatusReady, v.Status)
	assert.Equal(t, 2, v.TotalPages)
	assert.Len(t, v.Items, 2)

	ctrl.NextPage()
	ctrl.Wait()
	v = ctrl.View()
	require.Len(t, v.Items, 1)
	last := v.Items[0]

	require.NoError(t, ctrl.Complete(ctx, last.ID))
	r, ok := ctrl.Lookup(last.ID)
	require.True(t, ok)
	assert.True(t, r.Completed)
	assert.Empty(t, ctrl.View().Items)

	ctrl.SetTab(reminder.TabCompleted)
	ctrl.Wait()
	v = ctrl.View()
	assert.Equal(t, 1, v.Query.Page)
	require.Len(t, v.Items, 1)
	assert.Equal(t, last.ID, v.Items[0].ID)

	ctrl.RequestDelete(last.ID)
	require.NoError(t, ctrl.ConfirmDelete(ctx))
	ctrl.Wait()
	assert.Equal(t, dashboard.EmptyNoMatches, ctrl.View().Empty)

	_, err := client.Get(ctx, last.ID)
	assert.True(t, api.IsNotFound(err))
}
