// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TaskHive Contributors

package httpapi

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/oklog/ulid/v2"

	"github.com/taskhive/taskhive/internal/auth"
	"github.com/taskhive/taskhive/internal/task"
)

type createTaskRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Status      string `json:"status"`
	Priority    int    `json:"priority"`
}

type updateTaskRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Status      *string `json:"status"`
	Priority    *int    `json:"priority"`
}

// handleCreateTask creates a task owned by the caller.
func (s *Server) handleCreateTask(c *gin.Context) {
	user, ok := CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse{Error: msgUnauthorized})
		return
	}

	var req createTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	created, err := s.tasks.Create(c.Request.Context(), user.ID, task.Draft{
		Title:       req.Title,
		Description: req.Description,
		Status:      task.Status(req.Status),
		Priority:    req.Priority,
	})
	if err != nil {
		respondError(c, s.logger, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

// handleListTasks lists the caller's tasks. Supports status and min_priority
// query filters.
func (s *Server) handleListTasks(c *gin.Context) {
	user, ok := CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse{Error: msgUnauthorized})
		return
	}

	var filter task.Filter
	filter.Status = task.Status(c.Query("status"))
	if raw := c.Query("min_priority"); raw != "" {
		minPriority, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, errorResponse{Error: "min_priority must be an integer"})
			return
		}
		filter.MinPriority = &minPriority
	}

	tasks, err := s.tasks.List(c.Request.Context(), user.ID, filter)
	if err != nil {
		respondError(c, s.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tasks": tasks})
}

// handleGetTask returns one of the caller's tasks.
func (s *Server) handleGetTask(c *gin.Context) {
	user, taskID, ok := s.taskRequest(c)
	if !ok {
		return
	}

	got, err := s.tasks.Get(c.Request.Context(), user.ID, taskID)
	if err != nil {
		respondError(c, s.logger, err)
		return
	}
	c.JSON(http.StatusOK, got)
}

// handleUpdateTask applies a partial update to one of the caller's tasks.
func (s *Server) handleUpdateTask(c *gin.Context) {
	user, taskID, ok := s.taskRequest(c)
	if !ok {
		return
	}

	var req updateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	patch := task.Patch{
		Title:       req.Title,
		Description: req.Description,
		Priority:    req.Priority,
	}
	if req.Status != nil {
		status := task.Status(*req.Status)
		patch.Status = &status
	}

	updated, err := s.tasks.Update(c.Request.Context(), user.ID, taskID, patch)
	if err != nil {
		respondError(c, s.logger, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

// handleDeleteTask removes one of the caller's tasks.
func (s *Server) handleDeleteTask(c *gin.Context) {
	user, taskID, ok := s.taskRequest(c)
	if !ok {
		return
	}

	if err := s.tasks.Delete(c.Request.Context(), user.ID, taskID); err != nil {
		respondError(c, s.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// taskRequest extracts the caller and the task ID path parameter.
// An unparseable ID gets 404: such a task cannot exist, and the response
// matches a well-formed ID that simply is not there.
func (s *Server) taskRequest(c *gin.Context) (*auth.User, ulid.ULID, bool) {
	user, ok := CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse{Error: msgUnauthorized})
		return nil, ulid.ULID{}, false
	}

	taskID, err := ulid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, errorResponse{Error: "task not found"})
		return nil, ulid.ULID{}, false
	}
	return user, taskID, true
}
