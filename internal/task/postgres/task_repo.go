// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TaskHive Contributors

// Package postgres implements the task repository on PostgreSQL.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/taskhive/taskhive/internal/store"
	"github.com/taskhive/taskhive/internal/task"
)

// TaskRepository implements task.Repository using PostgreSQL.
type TaskRepository struct {
	pool store.Querier
}

// NewTaskRepository creates a new TaskRepository.
func NewTaskRepository(pool store.Querier) *TaskRepository {
	return &TaskRepository{pool: pool}
}

// Create stores a new task.
func (r *TaskRepository) Create(ctx context.Context, t *task.Task) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO tasks (id, owner_id, title, description, status, priority, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`,
		t.ID.String(),
		t.OwnerID.String(),
		t.Title,
		t.Description,
		string(t.Status),
		t.Priority,
		t.CreatedAt,
		t.UpdatedAt,
	)
	if err != nil {
		return oops.Code("TASK_INSERT_FAILED").
			With("operation", "insert task").
			With("task_id", t.ID.String()).
			Wrap(err)
	}
	return nil
}

// Get retrieves a task by ID.
func (r *TaskRepository) Get(ctx context.Context, id ulid.ULID) (*task.Task, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, owner_id, title, description, status, priority, created_at, updated_at
		FROM tasks
		WHERE id = $1
	`, id.String())

	t, err := scanTask(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("TASK_NOT_FOUND").
			With("task_id", id.String()).
			Wrap(task.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("TASK_GET_FAILED").
			With("operation", "get task").
			With("task_id", id.String()).
			Wrap(err)
	}
	return t, nil
}

// ListByOwner returns the owner's tasks matching the filter, highest
// priority first, then most recently created.
func (r *TaskRepository) ListByOwner(ctx context.Context, ownerID ulid.ULID, filter task.Filter) ([]*task.Task, error) {
	var sb strings.Builder
	sb.WriteString(`
		SELECT id, owner_id, title, description, status, priority, created_at, updated_at
		FROM tasks
		WHERE owner_id = $1`)

	args := []any{ownerID.String()}
	if filter.Status != "" {
		args = append(args, string(filter.Status))
		fmt.Fprintf(&sb, " AND status = $%d", len(args))
	}
	if filter.MinPriority != nil {
		args = append(args, *filter.MinPriority)
		fmt.Fprintf(&sb, " AND priority >= $%d", len(args))
	}
	sb.WriteString(" ORDER BY priority DESC, created_at DESC")

	rows, err := r.pool.Query(ctx, sb.String(), args...)
	if err != nil {
		return nil, oops.Code("TASK_LIST_FAILED").
			With("operation", "list tasks").
			With("owner_id", ownerID.String()).
			Wrap(err)
	}
	defer rows.Close()

	tasks := make([]*task.Task, 0)
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, oops.Code("TASK_LIST_FAILED").
				With("operation", "scan task row").
				With("owner_id", ownerID.String()).
				Wrap(err)
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, oops.Code("TASK_LIST_FAILED").
			With("operation", "iterate task rows").
			With("owner_id", ownerID.String()).
			Wrap(err)
	}
	return tasks, nil
}

// Update persists task field changes.
func (r *TaskRepository) Update(ctx context.Context, t *task.Task) error {
	result, err := r.pool.Exec(ctx, `
		UPDATE tasks
		SET title = $2, description = $3, status = $4, priority = $5, updated_at = $6
		WHERE id = $1
	`,
		t.ID.String(),
		t.Title,
		t.Description,
		string(t.Status),
		t.Priority,
		t.UpdatedAt,
	)
	if err != nil {
		return oops.Code("TASK_UPDATE_FAILED").
			With("operation", "update task").
			With("task_id", t.ID.String()).
			Wrap(err)
	}
	if result.RowsAffected() == 0 {
		return oops.Code("TASK_NOT_FOUND").
			With("task_id", t.ID.String()).
			Wrap(task.ErrNotFound)
	}
	return nil
}

// Delete removes a task.
func (r *TaskRepository) Delete(ctx context.Context, id ulid.ULID) error {
	result, err := r.pool.Exec(ctx, `
		DELETE FROM tasks WHERE id = $1
	`, id.String())
	if err != nil {
		return oops.Code("TASK_DELETE_FAILED").
			With("operation", "delete task").
			With("task_id", id.String()).
			Wrap(err)
	}
	if result.RowsAffected() == 0 {
		return oops.Code("TASK_NOT_FOUND").
			With("task_id", id.String()).
			Wrap(task.ErrNotFound)
	}
	return nil
}

// scanTask scans a single row into a Task.
// Callers are responsible for handling pgx.ErrNoRows.
func scanTask(row pgx.Row) (*task.Task, error) {
	var (
		idStr      string
		ownerIDStr string
		title      string
		desc       string
		status     string
		priority   int
		createdAt  time.Time
		updatedAt  time.Time
	)

	err := row.Scan(&idStr, &ownerIDStr, &title, &desc, &status, &priority, &createdAt, &updatedAt)
	if err != nil {
		// Propagate pgx.ErrNoRows unchanged for callers to handle with context.
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err //nolint:wrapcheck // Callers wrap with context-specific info
		}
		return nil, oops.Code("TASK_SCAN_FAILED").
			With("operation", "scan task").
			Wrap(err)
	}

	id, err := ulid.Parse(idStr)
	if err != nil {
		return nil, oops.Code("TASK_INVALID_ID").
			With("operation", "parse task id").
			With("id", idStr).
			Wrap(err)
	}
	ownerID, err := ulid.Parse(ownerIDStr)
	if err != nil {
		return nil, oops.Code("TASK_INVALID_ID").
			With("operation", "parse owner id").
			With("id", ownerIDStr).
			Wrap(err)
	}

	return &task.Task{
		ID:          id,
		OwnerID:     ownerID,
		Title:       title,
		Description: desc,
		Status:      task.Status(status),
		Priority:    priority,
		CreatedAt:   createdAt,
		UpdatedAt:   updatedAt,
	}, nil
}

// Compile-time interface check.
var _ task.Repository = (*TaskRepository)(nil)
