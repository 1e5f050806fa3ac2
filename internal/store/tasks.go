package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aisle-dev/aisle/internal/sanitize"
)

// AddTaskIfAbsent inserts a sanitized task unless a task with the same
// identity key already exists for the wedding. This is the
// cross-invocation half of task dedup: the sanitizer collapses duplicates
// within one pass, the store keeps separate passes from re-inserting the
// same task. Returns true on insert.
func (s *Store) AddTaskIfAbsent(ctx context.Context, weddingID int64, t sanitize.Task) (bool, error) {
	nameKey := strings.ToLower(t.Name)
	dueKey := t.DueDate
	if dueKey == "" {
		dueKey = "none"
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO tasks (wedding_id, name, name_key, category, status,
		                   priority, due_date, due_key, notes, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(wedding_id, name_key, due_key) DO NOTHING`,
		weddingID, t.Name, nameKey, t.Category, t.Status, t.Priority,
		t.DueDate, dueKey, t.Notes, time.Now().UTC(),
	)
	if err != nil {
		return false, fmt.Errorf("inserting task %q: %w", t.Name, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("checking task insert: %w", err)
	}
	return n > 0, nil
}

// ListTasks returns all tasks for a wedding, dated tasks first in due
// order, then undated ones in insertion order.
func (s *Store) ListTasks(ctx context.Context, weddingID int64) ([]*Task, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, wedding_id, name, category, status, priority, due_date,
		       notes, created_at
		FROM tasks WHERE wedding_id = ?
		ORDER BY due_date = '', due_date, id`, weddingID)
	if err != nil {
		return nil, fmt.Errorf("listing tasks: %w", err)
	}
	defer rows.Close()

	var out []*Task
	for rows.Next() {
		t := &Task{}
		err := rows.Scan(&t.ID, &t.WeddingID, &t.Name, &t.Category, &t.Status,
			&t.Priority, &t.DueDate, &t.Notes, &t.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("scanning task: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}
