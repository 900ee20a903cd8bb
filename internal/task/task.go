// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TaskHive Contributors

// Package task provides the task domain: records, validation, and the
// service coordinating persistence and ownership rules.
package task

import (
	"context"
	"errors"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// ErrNotFound is returned when a requested task does not exist.
var ErrNotFound = errors.New("not found")

// Status is the lifecycle state of a task.
type Status string

// Task statuses.
const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted:
		return true
	}
	return false
}

// Field constraints.
const (
	MaxTitleLength       = 255
	MaxDescriptionLength = 2000
	MinPriority          = 0
	MaxPriority          = 10
)

// Task represents a unit of work owned by a user.
type Task struct {
	ID          ulid.ULID `json:"id"`
	OwnerID     ulid.ULID `json:"owner_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Status      Status    `json:"status"`
	Priority    int       `json:"priority"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Draft holds validated input for creating a task.
type Draft struct {
	Title       string
	Description string
	Status      Status
	Priority    int
}

// Patch holds a partial update. Nil fields are left unchanged.
type Patch struct {
	Title       *string
	Description *string
	Status      *Status
	Priority    *int
}

// Filter narrows task listings.
type Filter struct {
	// Status limits results to one status when non-empty.
	Status Status

	// MinPriority drops tasks below the given priority when non-nil.
	MinPriority *int
}

// Validate checks a draft against field rules.
func (d *Draft) Validate() error {
	if d.Title == "" {
		return oops.Code("TASK_INVALID_TITLE").Errorf("title cannot be empty")
	}
	if len(d.Title) > MaxTitleLength {
		return oops.Code("TASK_INVALID_TITLE").
			With("max", MaxTitleLength).
			Errorf("title must be at most %d characters", MaxTitleLength)
	}
	if len(d.Description) > MaxDescriptionLength {
		return oops.Code("TASK_INVALID_DESCRIPTION").
			With("max", MaxDescriptionLength).
			Errorf("description must be at most %d characters", MaxDescriptionLength)
	}
	if d.Status != "" && !d.Status.Valid() {
		return oops.Code("TASK_INVALID_STATUS").
			With("status", string(d.Status)).
			Errorf("status must be one of pending, in_progress, completed")
	}
	if d.Priority < MinPriority || d.Priority > MaxPriority {
		return oops.Code("TASK_INVALID_PRIORITY").
			With("min", MinPriority).
			With("max", MaxPriority).
			Errorf("priority must be between %d and %d", MinPriority, MaxPriority)
	}
	return nil
}

// Validate checks a patch against field rules.
func (p *Patch) Validate() error {
	if p.Title != nil {
		if *p.Title == "" {
			return oops.Code("TASK_INVALID_TITLE").Errorf("title cannot be empty")
		}
		if len(*p.Title) > MaxTitleLength {
			return oops.Code("TASK_INVALID_TITLE").
				With("max", MaxTitleLength).
				Errorf("title must be at most %d characters", MaxTitleLength)
		}
	}
	if p.Description != nil && len(*p.Description) > MaxDescriptionLength {
		return oops.Code("TASK_INVALID_DESCRIPTION").
			With("max", MaxDescriptionLength).
			Errorf("description must be at most %d characters", MaxDescriptionLength)
	}
	if p.Status != nil && !p.Status.Valid() {
		return oops.Code("TASK_INVALID_STATUS").
			With("status", string(*p.Status)).
			Errorf("status must be one of pending, in_progress, completed")
	}
	if p.Priority != nil && (*p.Priority < MinPriority || *p.Priority > MaxPriority) {
		return oops.Code("TASK_INVALID_PRIORITY").
			With("min", MinPriority).
			With("max", MaxPriority).
			Errorf("priority must be between %d and %d", MinPriority, MaxPriority)
	}
	return nil
}

// Apply overlays the patch onto the task and bumps UpdatedAt.
func (p *Patch) Apply(t *Task) {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.Status != nil {
		t.Status = *p.Status
	}
	if p.Priority != nil {
		t.Priority = *p.Priority
	}
	t.UpdatedAt = time.Now().UTC()
}

// Repository manages task persistence.
type Repository interface {
	// Create stores a new task.
	Create(ctx context.Context, task *Task) error

	// Get retrieves a task by ID.
	Get(ctx context.Context, id ulid.ULID) (*Task, error)

	// ListByOwner returns the owner's tasks matching the filter, ordered by
	// priority descending then creation time descending.
	ListByOwner(ctx context.Context, ownerID ulid.ULID, filter Filter) ([]*Task, error)

	// Update persists task field changes.
	Update(ctx context.Context, task *Task) error

	// Delete removes a task.
	Delete(ctx context.Context, id ulid.ULID) error
}
