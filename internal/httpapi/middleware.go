// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TaskHive Contributors

package httpapi

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/oklog/ulid/v2"

	"github.com/taskhive/taskhive/internal/auth"
	"github.com/taskhive/taskhive/internal/logging"
)

// Context keys for values attached by middleware.
const (
	ctxKeyUser      = "taskhive.user"
	ctxKeyRequestID = "taskhive.request_id"
)

// requestIDHeader is echoed back to clients and accepted on the way in so
// upstream proxies can correlate logs.
const requestIDHeader = "X-Request-ID"

// RequestID attaches a ULID request ID to the context and response. The ID
// also rides the request context so every log line emitted while handling
// the request carries it.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = ulid.Make().String()
		}
		c.Set(ctxKeyRequestID, id)
		c.Request = c.Request.WithContext(logging.WithRequestID(c.Request.Context(), id))
		c.Writer.Header().Set(requestIDHeader, id)
		c.Next()
	}
}

// RequestLogger logs one line per request. The request ID comes in through
// the context, added by the logging handler.
func RequestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.InfoContext(c.Request.Context(), "http request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration_ms", time.Since(start).Milliseconds(),
		)
	}
}

// RequireAuth guards a route group with bearer-token authentication.
// The checks run in order: header present, bearer scheme, token verifies,
// subject still exists. The first failure aborts with a generic 401; the
// concrete reason is only logged. Handlers behind this middleware can rely
// on CurrentUser returning a valid account.
func RequireAuth(authSvc *auth.Service, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			unauthorized(c, logger, "missing authorization header")
			return
		}

		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			unauthorized(c, logger, "malformed authorization header")
			return
		}

		user, err := authSvc.ResolveToken(c.Request.Context(), token)
		if err != nil {
			logger.InfoContext(c.Request.Context(), "token rejected",
				"path", c.Request.URL.Path,
				"error", err,
			)
			c.AbortWithStatusJSON(http.StatusUnauthorized, errorResponse{Error: msgUnauthorized})
			return
		}

		c.Set(ctxKeyUser, user)
		c.Next()
	}
}

func unauthorized(c *gin.Context, logger *slog.Logger, reason string) {
	logger.InfoContext(c.Request.Context(), "request unauthorized",
		"path", c.Request.URL.Path,
		"reason", reason,
	)
	c.AbortWithStatusJSON(http.StatusUnauthorized, errorResponse{Error: msgUnauthorized})
}

// CurrentUser returns the authenticated user attached by RequireAuth.
func CurrentUser(c *gin.Context) (*auth.User, bool) {
	value, exists := c.Get(ctxKeyUser)
	if !exists {
		return nil, false
	}
	user, ok := value.(*auth.User)
	return user, ok
}
