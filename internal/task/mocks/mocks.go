// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TaskHive Contributors

// Package mocks provides testify mocks for the task package interfaces.
package mocks

import (
	"context"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/mock"

	"github.com/taskhive/taskhive/internal/task"
)

// mockConstructorTestingT is the subset of *testing.T the constructors need.
type mockConstructorTestingT interface {
	mock.TestingT
	Cleanup(func())
}

// MockRepository is a mock implementation of task.Repository.
type MockRepository struct {
	mock.Mock
}

// NewMockRepository creates a mock wired to the test lifecycle.
func NewMockRepository(t mockConstructorTestingT) *MockRepository {
	m := &MockRepository{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockRepository) Create(ctx context.Context, t *task.Task) error {
	args := m.Called(ctx, t)
	return args.Error(0)
}

func (m *MockRepository) Get(ctx context.Context, id ulid.ULID) (*task.Task, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*task.Task), args.Error(1)
}

func (m *MockRepository) ListByOwner(ctx context.Context, ownerID ulid.ULID, filter task.Filter) ([]*task.Task, error) {
	args := m.Called(ctx, ownerID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*task.Task), args.Error(1)
}

func (m *MockRepository) Update(ctx context.Context, t *task.Task) error {
	args := m.Called(ctx, t)
	return args.Error(0)
}

func (m *MockRepository) Delete(ctx context.Context, id ulid.ULID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// Compile-time interface check.
var _ task.Repository = (*MockRepository)(nil)
