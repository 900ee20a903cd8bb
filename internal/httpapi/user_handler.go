// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TaskHive Contributors

package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// handleGetMe returns the authenticated account.
func (s *Server) handleGetMe(c *gin.Context) {
	user, ok := CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse{Error: msgUnauthorized})
		return
	}
	c.JSON(http.StatusOK, user.Sanitized())
}

// handleDeleteMe removes the authenticated account. Owned tasks go with it
// via the store's cascade.
func (s *Server) handleDeleteMe(c *gin.Context) {
	user, ok := CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse{Error: msgUnauthorized})
		return
	}

	if err := s.auth.DeleteAccount(c.Request.Context(), user.ID); err != nil {
		respondError(c, s.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}
