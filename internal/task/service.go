// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TaskHive Contributors

package task

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// Service coordinates task operations and enforces ownership.
type Service struct {
	tasks  Repository
	logger *slog.Logger
}

// NewService creates a Service with the default logger.
func NewService(tasks Repository) (*Service, error) {
	return NewServiceWithLogger(tasks, slog.Default())
}

// NewServiceWithLogger creates a Service with an explicit logger.
func NewServiceWithLogger(tasks Repository, logger *slog.Logger) (*Service, error) {
	if tasks == nil {
		return nil, oops.Code("TASK_SERVICE_CONFIG").Errorf("task repository is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{tasks: tasks, logger: logger}, nil
}

// Create validates the draft and stores a new task for the owner.
// An empty status defaults to pending.
func (s *Service) Create(ctx context.Context, ownerID ulid.ULID, draft Draft) (*Task, error) {
	if err := draft.Validate(); err != nil {
		return nil, err
	}

	status := draft.Status
	if status == "" {
		status = StatusPending
	}

	now := time.Now().UTC()
	task := &Task{
		ID:          ulid.Make(),
		OwnerID:     ownerID,
		Title:       draft.Title,
		Description: draft.Description,
		Status:      status,
		Priority:    draft.Priority,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.tasks.Create(ctx, task); err != nil {
		return nil, oops.Code("TASK_CREATE_FAILED").
			With("owner_id", ownerID.String()).
			Wrap(err)
	}

	s.logger.InfoContext(ctx, "task created",
		"task_id", task.ID.String(),
		"owner_id", ownerID.String())

	return task, nil
}

// List returns the owner's tasks matching the filter.
func (s *Service) List(ctx context.Context, ownerID ulid.ULID, filter Filter) ([]*Task, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, oops.Code("TASK_INVALID_STATUS").
			With("status", string(filter.Status)).
			Errorf("status must be one of pending, in_progress, completed")
	}
	if filter.MinPriority != nil && (*filter.MinPriority < MinPriority || *filter.MinPriority > MaxPriority) {
		return nil, oops.Code("TASK_INVALID_PRIORITY").
			With("min", MinPriority).
			With("max", MaxPriority).
			Errorf("priority must be between %d and %d", MinPriority, MaxPriority)
	}

	tasks, err := s.tasks.ListByOwner(ctx, ownerID, filter)
	if err != nil {
		return nil, oops.Code("TASK_LIST_FAILED").
			With("owner_id", ownerID.String()).
			Wrap(err)
	}
	return tasks, nil
}

// Get retrieves a task, enforcing that the requester owns it. A task owned
// by someone else reports TASK_FORBIDDEN rather than pretending absence.
func (s *Service) Get(ctx context.Context, requesterID, taskID ulid.ULID) (*Task, error) {
	task, err := s.loadOwned(ctx, requesterID, taskID)
	if err != nil {
		return nil, err
	}
	return task, nil
}

// Update applies a partial update to a task the requester owns.
func (s *Service) Update(ctx context.Context, requesterID, taskID ulid.ULID, patch Patch) (*Task, error) {
	if err := patch.Validate(); err != nil {
		return nil, err
	}

	task, err := s.loadOwned(ctx, requesterID, taskID)
	if err != nil {
		return nil, err
	}

	patch.Apply(task)

	if err := s.tasks.Update(ctx, task); err != nil {
		return nil, oops.Code("TASK_UPDATE_FAILED").
			With("task_id", taskID.String()).
			Wrap(err)
	}

	s.logger.InfoContext(ctx, "task updated",
		"task_id", task.ID.String(),
		"owner_id", task.OwnerID.String())

	return task, nil
}

// Delete removes a task the requester owns.
func (s *Service) Delete(ctx context.Context, requesterID, taskID ulid.ULID) error {
	if _, err := s.loadOwned(ctx, requesterID, taskID); err != nil {
		return err
	}

	if err := s.tasks.Delete(ctx, taskID); err != nil {
		if errors.Is(err, ErrNotFound) {
			return notFound(taskID)
		}
		return oops.Code("TASK_DELETE_FAILED").
			With("task_id", taskID.String()).
			Wrap(err)
	}

	s.logger.InfoContext(ctx, "task deleted",
		"task_id", taskID.String(),
		"owner_id", requesterID.String())

	return nil
}

// loadOwned fetches a task and verifies ownership.
func (s *Service) loadOwned(ctx context.Context, requesterID, taskID ulid.ULID) (*Task, error) {
	task, err := s.tasks.Get(ctx, taskID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, notFound(taskID)
		}
		return nil, oops.Code("TASK_GET_FAILED").
			With("task_id", taskID.String()).
			Wrap(err)
	}
	if task.OwnerID != requesterID {
		return nil, oops.Code("TASK_FORBIDDEN").
			With("task_id", taskID.String()).
			With("owner_id", task.OwnerID.String()).
			With("requester_id", requesterID.String()).
			Errorf("task belongs to another user")
	}
	return task, nil
}

func notFound(taskID ulid.ULID) error {
	return oops.Code("TASK_NOT_FOUND").
		With("task_id", taskID.String()).
		Wrap(ErrNotFound)
}
