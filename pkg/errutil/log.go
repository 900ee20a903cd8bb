// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TaskHive Contributors

// Package errutil provides helpers for working with oops-coded errors.
package errutil

import (
	"log/slog"

	"github.com/samber/oops"
)

// LogError logs an error with structured context if it's an oops error.
// For oops errors, it extracts and logs the message, code, and context.
// For standard errors, it logs the error string.
func LogError(logger *slog.Logger, msg string, err error) {
	if oopsErr, ok := oops.AsOops(err); ok {
		attrs := []any{
			"error", oopsErr.Error(),
		}
		if code := oopsErr.Code(); code != nil {
			attrs = append(attrs, "code", code)
		}
		if ctx := oopsErr.Context(); len(ctx) > 0 {
			attrs = append(attrs, "context", ctx)
		}
		logger.Error(msg, attrs...)
	} else {
		logger.Error(msg, "error", err)
	}
}

// Code returns the oops code attached to err, or "" for plain errors.
func Code(err error) string {
	if oopsErr, ok := oops.AsOops(err); ok {
		if code, isString := oopsErr.Code().(string); isString {
			return code
		}
	}
	return ""
}

// ContextValue returns the value stored under key in err's structured
// context, reporting whether the key is present.
func ContextValue(err error, key string) (any, bool) {
	oopsErr, ok := oops.AsOops(err)
	if !ok {
		return nil, false
	}
	value, present := oopsErr.Context()[key]
	return value, present
}
