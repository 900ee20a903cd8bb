// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TaskHive Contributors

package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type signUpRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type signInRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type signInResponse struct {
	Token string `json:"token"`
	User  any    `json:"user"`
}

// handleSignUp registers a new account.
func (s *Server) handleSignUp(c *gin.Context) {
	var req signUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	user, err := s.auth.SignUp(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		s.metrics.ObserveAuthAttempt("signup", false)
		respondError(c, s.logger, err)
		return
	}

	s.metrics.ObserveAuthAttempt("signup", true)
	c.JSON(http.StatusCreated, user.Sanitized())
}

// handleSignIn authenticates a user and returns a bearer token.
func (s *Server) handleSignIn(c *gin.Context) {
	var req signInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	user, token, err := s.auth.SignIn(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		s.metrics.ObserveAuthAttempt("signin", false)
		respondError(c, s.logger, err)
		return
	}

	s.metrics.ObserveAuthAttempt("signin", true)
	c.JSON(http.StatusOK, signInResponse{
		Token: token,
		User:  user.Sanitized(),
	})
}
