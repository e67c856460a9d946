package reminder

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when no reminder has the requested id.
var ErrNotFound = errors.New("reminder not found")

// sortColumns maps API sort fields to columns. Anything else is rejected.
var sortColumns = map[string]string{
	"id":        "id",
	"title":     "title",
	"dueDate":   "due_date",
	"priority":  "priority",
	"completed": "completed",
	"createdAt": "created_at",
	"updatedAt": "updated_at",
}

// Sortable reports whether the store can order by s.Field.
func Sortable(s Sort) bool {
	_, ok := sortColumns[s.Field]
	return ok
}

// Store provides SQLite-backed storage for reminders. It backs the
// development server.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Filter selects a page of reminders. Page is zero-based here, matching
// the wire protocol.
type Filter struct {
	Title     string
	Priority  Priority
	Completed *bool
	Sort      Sort
	Page      int
	Size      int
}

// NewStore opens (or creates) the SQLite database at dbPath and
// ensures the reminders table exists.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Enable WAL mode for better concurrency
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set WAL mode: %w", err)
	}

	if err := createTable(db); err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db, now: time.Now}, nil
}

// SetClock replaces the time source used for createdAt/updatedAt.
func (s *Store) SetClock(now func() time.Time) {
	s.now = now
}

func createTable(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS reminders (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			title       TEXT    NOT NULL,
			description TEXT    NOT NULL DEFAULT '',
			due_date    TEXT    NOT NULL,
			priority    TEXT    NOT NULL DEFAULT 'MEDIUM',
			completed   INTEGER NOT NULL DEFAULT 0,
			created_at  TEXT    NOT NULL,
			updated_at  TEXT    NOT NULL
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create table: %w", err)
	}
	return nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Add inserts a new reminder and returns it with the assigned ID.
func (s *Store) Add(ctx context.Context, d Draft) (*Reminder, error) {
	now := NewTimestamp(s.now())
	d = d.Normalize()

	result, err := s.db.ExecContext(ctx, `
		INSERT INTO reminders (title, description, due_date, priority, completed, created_at, updated_at)
		VALUES (?, ?, ?, ?, 0, ?, ?)
	`, d.Title, d.Description, d.DueDate.String(), string(d.Priority), now.String(), now.String())
	if err != nil {
		return nil, fmt.Errorf("failed to insert reminder: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get inserted ID: %w", err)
	}

	return &Reminder{
		ID:          id,
		Title:       d.Title,
		Description: d.Description,
		DueDate:     d.DueDate,
		Priority:    d.Priority,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// List returns one page of reminders matching f and the total match count.
func (s *Store) List(ctx context.Context, f Filter) ([]Reminder, int, error) {
	var where []string
	var args []interface{}

	if title := strings.TrimSpace(f.Title); title != "" {
		where = append(where, "LOWER(title) LIKE ?")
		args = append(args, "%"+strings.ToLower(title)+"%")
	}
	if f.Priority != "" {
		where = append(where, "priority = ?")
		args = append(args, string(f.Priority))
	}
	if f.Completed != nil {
		where = append(where, "completed = ?")
		args = append(args, boolToInt(*f.Completed))
	}

	clause := ""
	if len(where) > 0 {
		clause = " WHERE " + strings.Join(where, " AND ")
	}

	var total int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM reminders"+clause, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count reminders: %w", err)
	}

	sortSpec := f.Sort
	if sortSpec.Field == "" {
		sortSpec = DefaultSort
	}
	column, ok := sortColumns[sortSpec.Field]
	if !ok {
		return nil, 0, fmt.Errorf("unsupported sort field %q", sortSpec.Field)
	}
	dir := "ASC"
	if sortSpec.Desc {
		dir = "DESC"
	}

	size := f.Size
	if size <= 0 {
		size = 10
	}
	page := f.Page
	if page < 0 {
		page = 0
	}

	query := fmt.Sprintf(`
		SELECT id, title, description, due_date, priority, completed, created_at, updated_at
		FROM reminders%s ORDER BY %s %s, id ASC LIMIT ? OFFSET ?
	`, clause, column, dir)
	rows, err := s.db.QueryContext(ctx, query, append(args, size, page*size)...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list reminders: %w", err)
	}
	defer rows.Close()

	reminders, err := scanReminders(rows)
	if err != nil {
		return nil, 0, err
	}
	return reminders, total, nil
}

// GetByID returns a single reminder by ID.
func (s *Store) GetByID(ctx context.Context, id int64) (*Reminder, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, title, description, due_date, priority, completed, created_at, updated_at
		FROM reminders WHERE id = ?
	`, id)

	r, err := scanReminder(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("reminder %d: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get reminder: %w", err)
	}
	return r, nil
}

// Update replaces the editable fields of a reminder.
func (s *Store) Update(ctx context.Context, id int64, d Draft) (*Reminder, error) {
	d = d.Normalize()
	now := NewTimestamp(s.now())

	result, err := s.db.ExecContext(ctx, `
		UPDATE reminders SET title = ?, description = ?, due_date = ?, priority = ?, updated_at = ?
		WHERE id = ?
	`, d.Title, d.Description, d.DueDate.String(), string(d.Priority), now.String(), id)
	if err != nil {
		return nil, fmt.Errorf("failed to update reminder: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return nil, fmt.Errorf("reminder %d: %w", id, ErrNotFound)
	}

	return s.GetByID(ctx, id)
}

// Complete marks a reminder as completed and returns the updated record.
func (s *Store) Complete(ctx context.Context, id int64) (*Reminder, error) {
	now := NewTimestamp(s.now())

	result, err := s.db.ExecContext(ctx, `
		UPDATE reminders SET completed = 1, updated_at = ? WHERE id = ?
	`, now.String(), id)
	if err != nil {
		return nil, fmt.Errorf("failed to complete reminder: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return nil, fmt.Errorf("reminder %d: %w", id, ErrNotFound)
	}

	return s.GetByID(ctx, id)
}

// Delete removes a reminder by ID.
func (s *Store) Delete(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM reminders WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete reminder: %w", err)
	}

	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("reminder %d: %w", id, ErrNotFound)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

// scanReminders reads multiple rows into a slice of Reminder.
func scanReminders(rows *sql.Rows) ([]Reminder, error) {
	reminders := []Reminder{}
	for rows.Next() {
		r, err := scanReminder(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan reminder: %w", err)
		}
		reminders = append(reminders, *r)
	}
	return reminders, rows.Err()
}

// scanReminder reads a single row into a Reminder.
func scanReminder(row rowScanner) (*Reminder, error) {
	var r Reminder
	var dueDate, createdAt, updatedAt, priority string
	var completed int

	if err := row.Scan(&r.ID, &r.Title, &r.Description,
		&dueDate, &priority, &completed,
		&createdAt, &updatedAt); err != nil {
		return nil, err
	}

	r.Priority = Priority(priority)
	r.Completed = completed != 0

	var err error
	if r.DueDate, err = ParseTimestamp(dueDate); err != nil {
		return nil, fmt.Errorf("reminder %d: due_date: %w", r.ID, err)
	}
	if r.CreatedAt, err = ParseTimestamp(createdAt); err != nil {
		return nil, fmt.Errorf("reminder %d: created_at: %w", r.ID, err)
	}
	if r.UpdatedAt, err = ParseTimestamp(updatedAt); err != nil {
		return nil, fmt.Errorf("reminder %d: updated_at: %w", r.ID, err)
	}

	return &r, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
