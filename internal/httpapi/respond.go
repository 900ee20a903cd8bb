// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TaskHive Contributors

package httpapi

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/taskhive/taskhive/pkg/errutil"
)

// errorResponse is the JSON error envelope.
type errorResponse struct {
	Error string `json:"error"`
}

// Generic messages for responses that must not leak detail.
const (
	msgUnauthorized = "unauthorized"
	msgInternal     = "internal server error"
)

// statusForCode maps domain error codes onto HTTP status codes. Every
// authentication failure collapses to 401 so callers cannot tell an expired
// token from a forged one, or a wrong password from an unknown username.
func statusForCode(code string) int {
	switch code {
	case "AUTH_INVALID_USERNAME", "AUTH_INVALID_PASSWORD",
		"TASK_INVALID_TITLE", "TASK_INVALID_DESCRIPTION",
		"TASK_INVALID_STATUS", "TASK_INVALID_PRIORITY":
		return http.StatusBadRequest
	case "AUTH_INVALID_CREDENTIALS", "AUTH_TOKEN_EXPIRED",
		"AUTH_TOKEN_SIGNATURE", "AUTH_TOKEN_MALFORMED", "AUTH_SUBJECT_GONE":
		return http.StatusUnauthorized
	case "TASK_FORBIDDEN":
		return http.StatusForbidden
	case "TASK_NOT_FOUND", "USER_NOT_FOUND", "AUTH_USER_NOT_FOUND":
		return http.StatusNotFound
	case "AUTH_USERNAME_TAKEN":
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes the JSON error for err. The original error, including
// its code and context, is logged server-side; 401 and 500 responses carry
// only a generic message.
func respondError(c *gin.Context, logger *slog.Logger, err error) {
	status := statusForCode(errutil.Code(err))

	var msg string
	switch status {
	case http.StatusUnauthorized:
		msg = msgUnauthorized
	case http.StatusInternalServerError:
		msg = msgInternal
	default:
		msg = err.Error()
	}

	level := slog.LevelInfo
	if status == http.StatusInternalServerError {
		level = slog.LevelError
	}
	logger.Log(c.Request.Context(), level, "request failed",
		"method", c.Request.Method,
		"path", c.FullPath(),
		"status", status,
		"error", err,
	)

	c.AbortWithStatusJSON(status, errorResponse{Error: msg})
}
