// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TaskHive Contributors

// Package httpapi provides the REST surface: authentication endpoints,
// the task CRUD API, and the bearer-token guard in front of it.
package httpapi

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/samber/oops"

	"github.com/taskhive/taskhive/internal/auth"
	"github.com/taskhive/taskhive/internal/task"
)

// Server is the REST API server.
type Server struct {
	addr       string
	engine     *gin.Engine
	listener   net.Listener
	httpServer *http.Server
	auth       *auth.Service
	tasks      *task.Service
	metrics    *Metrics
	logger     *slog.Logger
	running    atomic.Bool
}

// NewServer creates the API server and wires all routes.
// addr: listen address in "host:port" format (e.g., ":8080").
func NewServer(addr string, authSvc *auth.Service, taskSvc *task.Service, reg prometheus.Registerer, logger *slog.Logger) (*Server, error) {
	if authSvc == nil {
		return nil, oops.Errorf("auth service is required")
	}
	if taskSvc == nil {
		return nil, oops.Errorf("task service is required")
	}
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	if logger == nil {
		logger = slog.Default()
	}

	metrics, err := NewMetrics(reg)
	if err != nil {
		return nil, err
	}

	s := &Server{
		addr:    addr,
		auth:    authSvc,
		tasks:   taskSvc,
		metrics: metrics,
		logger:  logger,
	}

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(RequestID())
	engine.Use(RequestLogger(logger))
	engine.Use(metrics.Middleware())

	api := engine.Group("/api")
	{
		api.POST("/auth/signup", s.handleSignUp)
		api.POST("/auth/signin", s.handleSignIn)

		guarded := api.Group("")
		guarded.Use(RequireAuth(authSvc, logger))
		{
			guarded.GET("/users/me", s.handleGetMe)
			guarded.DELETE("/users/me", s.handleDeleteMe)

			guarded.POST("/tasks", s.handleCreateTask)
			guarded.GET("/tasks", s.handleListTasks)
			guarded.GET("/tasks/:id", s.handleGetTask)
			guarded.PATCH("/tasks/:id", s.handleUpdateTask)
			guarded.DELETE("/tasks/:id", s.handleDeleteTask)
		}
	}

	s.engine = engine
	return s, nil
}

// Handler returns the HTTP handler for the API routes.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Start begins serving the API.
// It returns an error channel that receives any serve error after startup.
// The channel is closed when the server stops gracefully.
func (s *Server) Start() (<-chan error, error) {
	if !s.running.CompareAndSwap(false, true) {
		return nil, oops.Errorf("api server already running")
	}

	listener, err := net.Listen("tcp", s.addr)
	if err != nil {
		s.running.Store(false)
		return nil, oops.With("addr", s.addr).Wrap(err)
	}
	s.listener = listener

	httpSrv := &http.Server{
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.httpServer = httpSrv

	errCh := make(chan error, 1)

	go func() {
		defer close(errCh)
		if serveErr := httpSrv.Serve(listener); serveErr != nil && serveErr != http.ErrServerClosed {
			s.logger.Error("api server error", "error", serveErr)
			errCh <- serveErr
		}
	}()

	s.logger.Info("api server started", "addr", listener.Addr().String())
	return errCh, nil
}

// Stop gracefully shuts down the API server.
func (s *Server) Stop(ctx context.Context) error {
	if !s.running.CompareAndSwap(true, false) {
		return nil
	}

	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			s.running.Store(true)
			return oops.With("operation", "shutdown_api_server").Wrap(err)
		}
	}

	s.logger.Info("api server stopped")
	return nil
}

// Addr returns the address the server is listening on.
// Returns empty string if not running.
func (s *Server) Addr() string {
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return ""
}
