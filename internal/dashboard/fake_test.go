package dashboard

import (
	"context"
	"errors"
	"sync"

	"github.com/notexe/reminder-dash/internal/reminder"
)

var errBackendDown = errors.New("connection refused")

// fakeService records every call. listFn decides list responses; the
// mutation results come from the matching fields.
type fakeService struct {
	mu sync.Mutex

	lists     []reminder.Query
	creates   []reminder.Draft
	updates   map[int64]reminder.Draft
	deletes   []int64
	completes []int64

	listFn     func(call int, q reminder.Query) (*reminder.Page, error)
	createErr  error
	deleteErr  error
	completeFn func(id int64) (*reminder.Reminder, error)
}

func newFakeService(items ...reminder.Reminder) *fakeService {
	return &fakeService{
		updates: map[int64]reminder.Draft{},
		listFn: func(int, reminder.Query) (*reminder.Page, error) {
			return &reminder.Page{Items: items, TotalPages: 1, Total: len(items)}, nil
		},
	}
}

func (f *fakeService) List(ctx context.Context, q reminder.Query) (*reminder.Page, error) {
	f.mu.Lock()
	f.lists = append(f.lists, q)
	call := len(f.lists)
	fn := f.listFn
	f.mu.Unlock()

	return fn(call, q)
}

func (f *fakeService) Get(_ context.Context, id int64) (*reminder.Reminder, error) {
	return &reminder.Reminder{ID: id}, nil
}

func (f *fakeService) Create(_ context.Context, d reminder.Draft) (*reminder.Reminder, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.creates = append(f.creates, d)
	if f.createErr != nil {
		return nil, f.createErr
	}
	return &reminder.Reminder{ID: int64(100 + len(f.creates)), Title: d.Title, DueDate: d.DueDate, Priority: d.Priority}, nil
}

func (f *fakeService) Update(_ context.Context, id int64, d reminder.Draft) (*reminder.Reminder, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updates[id] = d
	return &reminder.Reminder{ID: id, Title: d.Title, DueDate: d.DueDate, Priority: d.Priority}, nil
}

func (f *fakeService) Delete(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deletes = append(f.deletes, id)
	return f.deleteErr
}

func (f *fakeService) Complete(_ context.Context, id int64) (*reminder.Reminder, error) {
	f.mu.Lock()
	f.completes = append(f.completes, id)
	fn := f.completeFn
	f.mu.Unlock()

	if fn != nil {
		return fn(id)
	}
	return &reminder.Reminder{ID: id, Completed: true}, nil
}

func (f *fakeService) listCalls() []reminder.Query {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]reminder.Query(nil), f.lists...)
}

func (f *fakeService) createCalls() []reminder.Draft {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]reminder.Draft(nil), f.creates...)
}

func (f *fakeService) deleteCalls() []int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]int64(nil), f.deletes...)
}

func (f *fakeService) setListFn(fn func(call int, q reminder.Query) (*reminder.Page, error)) {
	f.mu.Lock()
	f.listFn = fn
	f.mu.Unlock()
}
