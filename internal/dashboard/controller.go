package dashboard

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/notexe/reminder-dash/internal/reminder"
)

// Defaults for Options.
const (
	DefaultPageSize = 9
	DefaultDebounce = 500 * time.Millisecond
)

var (
	// ErrNotOnPage is returned when an action names a reminder that is not
	// in the current page.
	ErrNotOnPage = errors.New("reminder is not on the current page")
	// ErrNoEdit is returned by SubmitEdit when the edit form is closed.
	ErrNoEdit = errors.New("no reminder is being edited")
	// ErrNoPendingDelete is returned by ConfirmDelete without a request.
	ErrNoPendingDelete = errors.New("no delete is awaiting confirmation")
)

// Options configures a Controller. Zero values take the defaults.
type Options struct {
	PageSize      int
	Debounce      time.Duration
	Sort          reminder.Sort
	NotifyTimeout time.Duration
	Layout        Layout
	Now           func() time.Time
	Logger        logrus.FieldLogger
}

func (o Options) withDefaults() Options {
	if o.PageSize <= 0 {
		o.PageSize = DefaultPageSize
	}
	if o.Debounce <= 0 {
		o.Debounce = DefaultDebounce
	}
	if o.Sort.Field == "" {
		o.Sort = reminder.DefaultSort
	}
	if o.NotifyTimeout <= 0 {
		o.NotifyTimeout = DefaultNotifyTimeout
	}
	if o.Layout == "" {
		o.Layout = LayoutTabs
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	if o.Logger == nil {
		o.Logger = discardLogger()
	}
	return o
}

// Controller owns the query state and the current page of reminders. It
// debounces filter changes, fetches pages in the background and applies
// only the response to the most recently issued fetch.
//
// All methods are safe for concurrent use.
type Controller struct {
	svc      Service
	opts     Options
	log      logrus.FieldLogger
	coord    *Coordinator
	notifier *Notifier

	mu         sync.Mutex
	idle       *sync.Cond
	ctx        context.Context
	cancel     context.CancelFunc
	closed     bool
	version    uint64
	query      QueryState
	status     Status
	errMsg     string
	items      []reminder.Reminder
	totalPages int
	total      int
	dialogs    Dialogs
	listeners  []func(View)

	// seq is the sequence number of the latest issued fetch.
	seq         uint64
	inflight    int
	debounce    *time.Timer
	debounceGen uint64
}

// New creates a controller over svc. Call Start to issue the first fetch.
func New(svc Service, opts Options) *Controller {
	opts = opts.withDefaults()
	ctx, cancel := context.WithCancel(context.Background())

	c := &Controller{
		svc:    svc,
		opts:   opts,
		log:    opts.Logger.WithField("component", "dashboard"),
		ctx:    ctx,
		cancel: cancel,
		status: StatusLoading,
		query: QueryState{
			Tab:      reminder.TabActive,
			Page:     1,
			PageSize: opts.PageSize,
		},
	}
	c.idle = sync.NewCond(&c.mu)
	c.notifier = NewNotifier(opts.NotifyTimeout, c.changed)
	c.coord = NewCoordinator(svc, reminder.NewValidator(opts.Now), effects{c}, opts.Logger)
	return c
}

// Start resets to the default query and fetches immediately.
func (c *Controller) Start(ctx context.Context) {
	c.mu.Lock()
	c.cancel()
	c.ctx, c.cancel = context.WithCancel(ctx)
	c.closed = false
	c.query = QueryState{Tab: reminder.TabActive, Page: 1, PageSize: c.opts.PageSize}
	c.stopDebounceLocked()
	c.fetchLocked()
	c.mu.Unlock()

	c.emit()
}

// OnChange registers fn to receive a snapshot after every state change.
// fn runs on whichever goroutine made the change and must not block.
func (c *Controller) OnChange(fn func(View)) {
	c.mu.Lock()
	c.listeners = append(c.listeners, fn)
	c.mu.Unlock()
}

// SetSearch changes the title search term.
func (c *Controller) SetSearch(term string) {
	c.updateFilter(func(q *QueryState) bool {
		if q.Search == term {
			return false
		}
		q.Search = term
		return true
	})
}

// SetPriority sets the priority filter; "" clears it.
func (c *Controller) SetPriority(p reminder.Priority) {
	c.updateFilter(func(q *QueryState) bool {
		if q.Priority == p {
			return false
		}
		q.Priority = p
		return true
	})
}

// TogglePriority selects p, or clears the filter if p is already selected.
func (c *Controller) TogglePriority(p reminder.Priority) {
	c.updateFilter(func(q *QueryState) bool {
		if q.Priority == p {
			q.Priority = ""
		} else {
			q.Priority = p
		}
		return true
	})
}

// SetTab switches between active and completed reminders.
func (c *Controller) SetTab(tab reminder.Tab) {
	c.updateFilter(func(q *QueryState) bool {
		if q.Tab == tab {
			return false
		}
		q.Tab = tab
		return true
	})
}

// updateFilter applies a filter change: back to page 1 and a debounced
// fetch.
func (c *Controller) updateFilter(apply func(q *QueryState) bool) {
	c.mu.Lock()
	if c.closed || !apply(&c.query) {
		c.mu.Unlock()
		return
	}
	c.query.Page = 1
	c.armDebounceLocked()
	c.version++
	c.mu.Unlock()

	c.emit()
}

// SetPage fetches page p immediately. p is clamped to [1, totalPages].
func (c *Controller) SetPage(p int) {
	c.mu.Lock()
	if c.totalPages > 0 && p > c.totalPages {
		p = c.totalPages
	}
	if p < 1 {
		p = 1
	}
	if c.closed || p == c.query.Page {
		c.mu.Unlock()
		return
	}
	c.query.Page = p
	c.stopDebounceLocked()
	c.fetchLocked()
	c.mu.Unlock()

	c.emit()
}

// NextPage moves one page forward.
func (c *Controller) NextPage() {
	c.SetPage(c.page() + 1)
}

// PrevPage moves one page back.
func (c *Controller) PrevPage() {
	c.SetPage(c.page() - 1)
}

func (c *Controller) page() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.query.Page
}

// Refresh refetches the current query immediately.
func (c *Controller) Refresh() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.stopDebounceLocked()
	c.fetchLocked()
	c.mu.Unlock()

	c.emit()
}

// Lookup returns the reminder with id from the current page, as stored,
// including items hidden by the active tab.
func (c *Controller) Lookup(id int64) (reminder.Reminder, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, r := range c.items {
		if r.ID == id {
			return r, true
		}
	}
	return reminder.Reminder{}, false
}

// OpenAdd opens the add form with an empty draft.
func (c *Controller) OpenAdd() {
	c.mutate(func() {
		c.dialogs.AddOpen = true
		c.dialogs.Draft = reminder.Draft{Priority: reminder.PriorityMedium}
		c.dialogs.Errors = nil
	})
}

// CloseAdd closes the add form and drops its draft.
func (c *Controller) CloseAdd() {
	c.closeForm(FormAdd)
}

// SubmitAdd validates and creates d. The form stays open with d on failure.
func (c *Controller) SubmitAdd(ctx context.Context, d reminder.Draft) error {
	c.mutate(func() {
		c.dialogs.AddOpen = true
		c.dialogs.Draft = d
		c.dialogs.Errors = nil
	})
	return c.coord.Create(ctx, d)
}

// OpenEdit opens the edit form pre-filled from reminder id.
func (c *Controller) OpenEdit(id int64) error {
	r, ok := c.Lookup(id)
	if !ok {
		return fmt.Errorf("edit %d: %w", id, ErrNotOnPage)
	}
	c.mutate(func() {
		c.dialogs.EditOpen = true
		c.dialogs.EditID = id
		c.dialogs.Draft = reminder.DraftFrom(r)
		c.dialogs.Errors = nil
	})
	return nil
}

// CloseEdit closes the edit form.
func (c *Controller) CloseEdit() {
	c.closeForm(FormEdit)
}

// SubmitEdit validates d and updates the reminder being edited.
func (c *Controller) SubmitEdit(ctx context.Context, d reminder.Draft) error {
	c.mu.Lock()
	if !c.dialogs.EditOpen {
		c.mu.Unlock()
		return ErrNoEdit
	}
	id := c.dialogs.EditID
	c.dialogs.Draft = d
	c.dialogs.Errors = nil
	c.version++
	c.mu.Unlock()
	c.emit()

	return c.coord.Update(ctx, id, d)
}

// RequestDelete opens the delete confirmation for id.
func (c *Controller) RequestDelete(id int64) {
	c.mutate(func() {
		c.dialogs.DeleteOpen = true
		c.dialogs.DeleteID = id
	})
}

// CancelDelete closes the confirmation without calling the service.
func (c *Controller) CancelDelete() {
	c.closeForm(FormDelete)
}

// ConfirmDelete deletes the reminder awaiting confirmation.
func (c *Controller) ConfirmDelete(ctx context.Context) error {
	c.mu.Lock()
	open, id := c.dialogs.DeleteOpen, c.dialogs.DeleteID
	c.mu.Unlock()
	if !open {
		return ErrNoPendingDelete
	}
	return c.coord.Delete(ctx, id)
}

// Complete marks reminder id as completed.
func (c *Controller) Complete(ctx context.Context, id int64) error {
	return c.coord.Complete(ctx, id)
}

// DismissNotification hides the current notification.
func (c *Controller) DismissNotification() {
	c.notifier.Dismiss()
}

// View returns a snapshot of the current state.
func (c *Controller) View() View {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewLocked()
}

// Wait blocks until no fetch is in flight and no debounced fetch is
// pending.
func (c *Controller) Wait() {
	c.mu.Lock()
	for c.inflight > 0 || c.debounce != nil {
		c.idle.Wait()
	}
	c.mu.Unlock()
}

// Close stops timers and cancels outstanding requests. Responses that
// arrive afterwards are dropped.
func (c *Controller) Close() {
	c.mu.Lock()
	c.closed = true
	c.stopDebounceLocked()
	c.cancel()
	c.mu.Unlock()

	c.notifier.Stop()
}

func (c *Controller) viewLocked() View {
	q := c.query
	items := c.visibleLocked()

	v := View{
		Version:      c.version,
		Status:       c.status,
		Error:        c.errMsg,
		Query:        q,
		Layout:       c.opts.Layout,
		Items:        items,
		TotalPages:   c.totalPages,
		Total:        c.total,
		Dialogs:      c.dialogs,
		Notification: c.notifier.Current(),
	}
	v.Dialogs.Errors = append(reminder.FieldErrors(nil), c.dialogs.Errors...)

	if c.opts.Layout == LayoutGrouped {
		v.Groups = reminder.Classify(c.opts.Now(), items).Ordered()
	}
	if c.status == StatusReady && len(items) == 0 {
		if c.total == 0 && !q.Filtered(c.opts.Layout) {
			v.Empty = EmptyNoData
		} else {
			v.Empty = EmptyNoMatches
		}
	}
	return v
}

// visibleLocked is the loaded page minus completed items on the active tab.
func (c *Controller) visibleLocked() []reminder.Reminder {
	hideCompleted := c.opts.Layout == LayoutTabs && c.query.Tab == reminder.TabActive
	items := make([]reminder.Reminder, 0, len(c.items))
	for _, r := range c.items {
		if hideCompleted && r.Completed {
			continue
		}
		items = append(items, r)
	}
	return items
}

func (c *Controller) request() reminder.Query {
	q := reminder.Query{
		Page:     c.query.Page,
		PageSize: c.query.PageSize,
		Sort:     c.opts.Sort,
		Title:    c.query.Search,
		Priority: c.query.Priority,
	}
	if c.opts.Layout == LayoutTabs {
		q.Completed = reminder.CompletedFilter(c.query.Tab == reminder.TabCompleted)
	}
	return q
}

// fetchLocked issues a fetch for the current query. c.mu must be held.
func (c *Controller) fetchLocked() {
	c.seq++
	seq := c.seq
	q := c.request()
	c.status = StatusLoading
	c.inflight++
	c.version++

	c.log.WithFields(logrus.Fields{
		"seq":      seq,
		"page":     q.Page,
		"search":   q.Title,
		"priority": q.Priority,
	}).Debug("fetch issued")

	go c.runFetch(c.ctx, seq, q)
}

func (c *Controller) runFetch(ctx context.Context, seq uint64, q reminder.Query) {
	page, err := c.svc.List(ctx, q)

	c.mu.Lock()
	applied := c.applyLocked(seq, q, page, err)
	c.inflight--
	c.idle.Broadcast()
	c.mu.Unlock()

	if applied {
		c.emit()
	}
}

func (c *Controller) applyLocked(seq uint64, q reminder.Query, page *reminder.Page, err error) bool {
	if c.closed {
		return false
	}
	if seq != c.seq {
		c.log.WithFields(logrus.Fields{"seq": seq, "latest": c.seq}).Debug("discarding stale response")
		return false
	}

	if err != nil {
		c.log.WithError(err).Error("fetch failed")
		c.status = StatusError
		c.errMsg = FetchErrorMessage
		c.items = nil
		c.totalPages = 0
		c.total = 0
		c.version++
		return true
	}

	// the page shrank under us, e.g. the last item of the last page was
	// deleted; step back instead of showing an empty page
	if len(page.Items) == 0 && page.TotalPages > 0 && q.Page > page.TotalPages {
		if c.debounce != nil {
			// a filter changed since q was issued; its fetch supersedes this one
			c.log.WithField("page", q.Page).Debug("skipping step back, fetch pending")
			return false
		}
		if !c.request().Equal(q) {
			c.fetchLocked()
			return true
		}
		c.query.Page = page.TotalPages
		c.totalPages = page.TotalPages
		c.fetchLocked()
		return true
	}

	c.items = append([]reminder.Reminder(nil), page.Items...)
	c.totalPages = page.TotalPages
	c.total = page.Total
	c.status = StatusReady
	c.errMsg = ""
	c.version++
	return true
}

func (c *Controller) armDebounceLocked() {
	c.stopDebounceLocked()
	gen := c.debounceGen
	c.debounce = time.AfterFunc(c.opts.Debounce, func() {
		c.mu.Lock()
		if gen != c.debounceGen || c.closed {
			c.mu.Unlock()
			return
		}
		c.debounce = nil
		c.fetchLocked()
		c.mu.Unlock()

		c.emit()
	})
}

func (c *Controller) stopDebounceLocked() {
	c.debounceGen++
	if c.debounce != nil {
		c.debounce.Stop()
		c.debounce = nil
		c.idle.Broadcast()
	}
}

func (c *Controller) closeForm(f Form) {
	c.mutate(func() {
		switch f {
		case FormAdd:
			c.dialogs.AddOpen = false
			c.dialogs.Draft = reminder.Draft{}
			c.dialogs.Errors = nil
		case FormEdit:
			c.dialogs.EditOpen = false
			c.dialogs.EditID = 0
			c.dialogs.Draft = reminder.Draft{}
			c.dialogs.Errors = nil
		case FormDelete:
			c.dialogs.DeleteOpen = false
			c.dialogs.DeleteID = 0
		}
	})
}

func (c *Controller) mutate(fn func()) {
	c.mu.Lock()
	fn()
	c.version++
	c.mu.Unlock()

	c.emit()
}

// changed is called by the notifier.
func (c *Controller) changed() {
	c.mu.Lock()
	c.version++
	c.mu.Unlock()

	c.emit()
}

func (c *Controller) emit() {
	c.mu.Lock()
	v := c.viewLocked()
	listeners := make([]func(View), len(c.listeners))
	copy(listeners, c.listeners)
	c.mu.Unlock()

	for _, fn := range listeners {
		fn(v)
	}
}

// effects applies coordinator outcomes to the controller.
type effects struct{ c *Controller }

func (e effects) Reject(f Form, d reminder.Draft, errs reminder.FieldErrors) {
	e.c.mutate(func() {
		e.c.dialogs.Draft = d
		e.c.dialogs.Errors = errs
	})
}

func (e effects) CloseForm(f Form)                { e.c.closeForm(f) }
func (e effects) Notify(sev Severity, msg string) { e.c.notifier.Notify(sev, msg) }
func (e effects) Refresh()                        { e.c.Refresh() }

// Patch replaces the loaded copy of r. When that leaves the visible page
// empty while the server still has reminders, the page is reloaded.
func (e effects) Patch(r reminder.Reminder) {
	c := e.c
	c.mutate(func() {
		found := false
		for i := range c.items {
			if c.items[i].ID == r.ID {
				c.items[i] = r
				found = true
				break
			}
		}
		if found && !c.closed && c.total > 0 && len(c.visibleLocked()) == 0 {
			c.fetchLocked()
		}
	})
}

func discardLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}
