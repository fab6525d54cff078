// Package store provides the local SQLite queue of pending tasks.
//
// Tasks land here when the board is unreachable or rejects a card, and
// leave it when they are uploaded or explicitly removed. The database is a
// single file under the per-user data directory:
//
//	pending_tasks(id, description UNIQUE, due_date, priority, category, parent_id)
//
// Every operation runs as its own implicit transaction on a single
// connection. Older databases are upgraded in place by adding any missing
// column with its default value; rows are never rewritten or dropped.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
	"go.uber.org/zap"

	"github.com/tasklist/tasklist/internal/schema"
)

// Store wraps the SQLite connection holding the pending queue.
type Store struct {
	conn   *sql.DB
	path   string
	logger *zap.Logger
}

// Open opens (creating if needed) the queue database at path and brings its
// schema up to date.
//
// The caller MUST call Close() when done.
func Open(ctx context.Context, path string, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	conn, err := sql.Open("sqlite3", "file:"+path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// One process, one caller: a single connection keeps every statement
	// serialized without extra locking.
	conn.SetMaxOpenConns(1)

	if err := conn.PingContext(ctx); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if _, err := conn.ExecContext(ctx, "PRAGMA busy_timeout=5000"); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}

	s := &Store{
		conn:   conn,
		path:   path,
		logger: logger.Named("store"),
	}

	if err := s.migrate(ctx); err != nil {
		_ = s.Close()
		return nil, err
	}

	return s, nil
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.conn == nil {
		return nil
	}
	if err := s.conn.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}
	s.conn = nil
	return nil
}

// column is an optional column that may be missing from databases created
// by older releases.
type column struct {
	name string
	ddl  string
}

var optionalColumns = []column{
	{name: "due_date", ddl: "due_date TEXT"},
	{name: "priority", ddl: "priority INTEGER DEFAULT 1"},
	{name: "category", ddl: "category TEXT DEFAULT 'General'"},
	{name: "parent_id", ddl: "parent_id INTEGER REFERENCES pending_tasks(id)"},
}

// migrate creates the table if needed and adds any optional column an older
// schema lacks. Foreign keys stay disabled so that a sub-task may outlive its
// uploaded parent.
func (s *Store) migrate(ctx context.Context) error {
	ddl := `
	CREATE TABLE IF NOT EXISTS pending_tasks (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		description TEXT NOT NULL UNIQUE,
		due_date TEXT,
		priority INTEGER DEFAULT 1,
		category TEXT DEFAULT 'General',
		parent_id INTEGER REFERENCES pending_tasks(id)
	)`
	if _, err := s.conn.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}

	existing, err := s.columns(ctx)
	if err != nil {
		return err
	}

	for _, col := range optionalColumns {
		if existing[col.name] {
			continue
		}
		if _, err := s.conn.ExecContext(ctx, "ALTER TABLE pending_tasks ADD COLUMN "+col.ddl); err != nil {
			return fmt.Errorf("failed to add column %s: %w", col.name, err)
		}
		s.logger.Info("added missing column", zap.String("column", col.name))
	}

	return nil
}

func (s *Store) columns(ctx context.Context) (map[string]bool, error) {
	rows, err := s.conn.QueryContext(ctx, "PRAGMA table_info(pending_tasks)")
	if err != nil {
		return nil, fmt.Errorf("failed to read table info: %w", err)
	}
	defer rows.Close()

	cols := make(map[string]bool)
	for rows.Next() {
		var (
			cid       int
			name      string
			ctype     string
			notNull   int
			dfltValue sql.NullString
			pk        int
		)
		if err := rows.Scan(&cid, &name, &ctype, &notNull, &dfltValue, &pk); err != nil {
			return nil, fmt.Errorf("failed to scan table info: %w", err)
		}
		cols[name] = true
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating table info: %w", err)
	}
	return cols, nil
}

// Insert queues a task. A task whose description is already queued is
// ignored without error.
func (s *Store) Insert(ctx context.Context, task *schema.Task) error {
	query := `
	INSERT OR IGNORE INTO pending_tasks (description, due_date, priority, category, parent_id)
	VALUES (?, ?, ?, ?, ?)
	`

	res, err := s.conn.ExecContext(ctx, query,
		task.Description,
		stringToNull(task.DueDate),
		task.Priority,
		task.Category,
		idToNull(task.ParentID),
	)
	if err != nil {
		return fmt.Errorf("failed to save task locally: %w", err)
	}

	if n, err := res.RowsAffected(); err == nil && n == 0 {
		s.logger.Debug("duplicate task ignored", zap.String("description", task.Description))
		return nil
	}

	s.logger.Info("task saved locally", zap.String("description", task.Description))
	return nil
}

// Sort orders for ListTopLevel.
const (
	SortByPriority = "priority"
	SortByDueDate  = "due_date"
)

// ListOptions configures ListTopLevel.
type ListOptions struct {
	// SortBy is SortByPriority or SortByDueDate; anything else leaves the
	// queue order.
	SortBy string
	// Category filters by exact category (empty = all)
	Category string
	// Priority filters by exact priority (0 = all)
	Priority int
}

// ListTopLevel returns the queued tasks that are not sub-tasks.
func (s *Store) ListTopLevel(ctx context.Context, opts ListOptions) ([]*schema.Task, error) {
	conditions := []string{"parent_id IS NULL"}
	var args []any

	if opts.Category != "" {
		conditions = append(conditions, "category = ?")
		args = append(args, opts.Category)
	}
	if opts.Priority != 0 {
		conditions = append(conditions, "priority = ?")
		args = append(args, opts.Priority)
	}

	query := selectColumns + " WHERE " + strings.Join(conditions, " AND ")

	switch opts.SortBy {
	case SortByPriority, SortByDueDate:
		query += " ORDER BY " + opts.SortBy + ", id"
	default:
		query += " ORDER BY id"
	}

	return s.query(ctx, query, args...)
}

// ListChildren returns the sub-tasks of parentID.
func (s *Store) ListChildren(ctx context.Context, parentID int64) ([]*schema.Task, error) {
	return s.query(ctx, selectColumns+" WHERE parent_id = ? ORDER BY id", parentID)
}

// HasChildren reports whether taskID has any queued sub-task.
func (s *Store) HasChildren(ctx context.Context, taskID int64) (bool, error) {
	var count int
	err := s.conn.QueryRowContext(ctx, "SELECT COUNT(id) FROM pending_tasks WHERE parent_id = ?", taskID).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to count sub-tasks: %w", err)
	}
	return count > 0, nil
}

// Search returns every queued task, sub-tasks included, whose description
// contains substr (ASCII case-insensitive).
func (s *Store) Search(ctx context.Context, substr string) ([]*schema.Task, error) {
	pattern := "%" + escapeLike(substr) + "%"
	return s.query(ctx, selectColumns+` WHERE description LIKE ? ESCAPE '\' ORDER BY id`, pattern)
}

// Delete removes the task with the given description and reports whether
// a row was removed.
func (s *Store) Delete(ctx context.Context, description string) (bool, error) {
	res, err := s.conn.ExecContext(ctx, "DELETE FROM pending_tasks WHERE description = ?", description)
	if err != nil {
		return false, fmt.Errorf("failed to delete pending task: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read affected rows: %w", err)
	}
	return n > 0, nil
}

// Edit updates the supplied fields of task id and reports whether a row was
// changed. An empty edit is a no-op that returns false.
func (s *Store) Edit(ctx context.Context, id int64, edit schema.Edit) (bool, error) {
	var (
		sets []string
		args []any
	)

	if edit.Description != nil {
		sets = append(sets, "description = ?")
		args = append(args, *edit.Description)
	}
	if edit.DueDate != nil {
		sets = append(sets, "due_date = ?")
		args = append(args, stringToNull(*edit.DueDate))
	}
	if edit.Priority != nil {
		sets = append(sets, "priority = ?")
		args = append(args, *edit.Priority)
	}
	if edit.Category != nil {
		sets = append(sets, "category = ?")
		args = append(args, *edit.Category)
	}

	if len(sets) == 0 {
		s.logger.Warn("no fields provided to update", zap.Int64("id", id))
		return false, nil
	}

	args = append(args, id)
	query := "UPDATE pending_tasks SET " + strings.Join(sets, ", ") + " WHERE id = ?"

	res, err := s.conn.ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("failed to edit pending task %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read affected rows: %w", err)
	}
	return n > 0, nil
}

// HasAny reports whether the queue holds at least one task.
func (s *Store) HasAny(ctx context.Context) (bool, error) {
	count, err := s.Count(ctx)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// Count returns the number of queued tasks.
func (s *Store) Count(ctx context.Context) (int, error) {
	var count int
	if err := s.conn.QueryRowContext(ctx, "SELECT COUNT(id) FROM pending_tasks").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to get task count: %w", err)
	}
	return count, nil
}

// LoadAll returns the whole queue in insertion order.
func (s *Store) LoadAll(ctx context.Context) ([]*schema.Task, error) {
	return s.query(ctx, selectColumns+" ORDER BY id")
}

// Clear deletes the tasks with the given ids in a single statement.
func (s *Store) Clear(ctx context.Context, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(ids)), ", ")
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	query := "DELETE FROM pending_tasks WHERE id IN (" + placeholders + ")"
	if _, err := s.conn.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to clear tasks: %w", err)
	}
	return nil
}

const selectColumns = `SELECT id, description, due_date, priority, category, parent_id FROM pending_tasks`

func (s *Store) query(ctx context.Context, query string, args ...any) ([]*schema.Task, error) {
	rows, err := s.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query pending tasks: %w", err)
	}
	defer rows.Close()

	return scanTasks(rows)
}

// scanTasks is a helper function to scan multiple tasks from query results.
func scanTasks(rows *sql.Rows) ([]*schema.Task, error) {
	tasks := []*schema.Task{}

	for rows.Next() {
		var (
			task     schema.Task
			dueDate  sql.NullString
			priority sql.NullInt64
			category sql.NullString
			parentID sql.NullInt64
		)

		if err := rows.Scan(&task.ID, &task.Description, &dueDate, &priority, &category, &parentID); err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}

		task.DueDate = dueDate.String
		task.Priority = schema.DefaultPriority
		if priority.Valid {
			task.Priority = int(priority.Int64)
		}
		task.Category = schema.DefaultCategory
		if category.Valid {
			task.Category = category.String
		}
		if parentID.Valid {
			id := parentID.Int64
			task.ParentID = &id
		}

		tasks = append(tasks, &task)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tasks: %w", err)
	}

	return tasks, nil
}

// stringToNull maps the empty string to SQL NULL.
func stringToNull(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func idToNull(id *int64) sql.NullInt64 {
	if id == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *id, Valid: true}
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
