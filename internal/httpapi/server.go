// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Iris Backend Contributors

// Package httpapi exposes the account backend over HTTP/JSON. It is thin
// routing glue: authentication, authorization, and account semantics all
// live in internal/auth; this layer decodes requests, invokes the service,
// and maps error codes to statuses.
package httpapi

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/samber/oops"

	"github.com/Projet-EDP-Iris/irisBackend/internal/auth"
	"github.com/Projet-EDP-Iris/irisBackend/internal/observability"
)

// Server serves the account API.
type Server struct {
	addr       string
	service    *auth.AccountService
	guard      *auth.Guard
	logger     *slog.Logger
	metrics    *observability.Metrics
	listener   net.Listener
	httpServer *http.Server
	running    atomic.Bool
}

// NewServer creates an API server. metrics may be nil.
func NewServer(addr string, service *auth.AccountService, guard *auth.Guard, logger *slog.Logger, metrics *observability.Metrics) (*Server, error) {
	if addr == "" {
		return nil, oops.Code("CONFIG_INVALID").Errorf("listen address is required")
	}
	if service == nil {
		return nil, oops.Code("CONFIG_INVALID").Errorf("account service is required")
	}
	if guard == nil {
		return nil, oops.Code("CONFIG_INVALID").Errorf("guard is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		addr:    addr,
		service: service,
		guard:   guard,
		logger:  logger,
		metrics: metrics,
	}, nil
}

// Handler builds the route table. Exposed for tests.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", s.instrument("welcome", s.handleWelcome))
	mux.HandleFunc("GET /health", s.instrument("health", s.handleHealth))
	mux.HandleFunc("POST /users", s.instrument("register", s.handleRegister))
	mux.HandleFunc("POST /auth/login", s.instrument("login", s.handleLogin))
	mux.HandleFunc("GET /users/me", s.instrument("me", s.withAuth(s.handleMe)))
	mux.HandleFunc("GET /users/{id}", s.instrument("get_account", s.withAuth(s.handleGet)))
	mux.HandleFunc("PATCH /users/{id}", s.instrument("update_account", s.withAuth(s.handleUpdate)))
	mux.HandleFunc("DELETE /users/{id}", s.instrument("delete_account", s.withAuth(s.handleDelete)))

	return mux
}

// authedHandler is a handler that requires an authenticated account.
type authedHandler func(w http.ResponseWriter, r *http.Request, actor *auth.Account)

// withAuth resolves the bearer token to an account before invoking next.
// Missing header, malformed header, invalid token, and unknown account all
// produce the same 401.
func (s *Server) withAuth(next authedHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			writeError(w, s.logger, auth.ErrUnauthenticated)
			return
		}

		actor, err := s.guard.Authenticate(r.Context(), token)
		if err != nil {
			writeError(w, s.logger, err)
			return
		}

		next(w, r, actor)
	}
}

// statusRecorder captures the response status for metrics.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// instrument records a request counter sample per route and status.
func (s *Server) instrument(route string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next(rec, r)
		s.metrics.RecordRequest(route, strconv.Itoa(rec.status))
	}
}

// Start begins serving the API. It returns an error channel that receives
// any serve error and is closed on graceful stop.
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
		Handler:           s.Handler(),
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

// Stop gracefully shuts down the API server, draining in-flight requests
// until ctx expires.
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

// Addr returns the address the server is listening on, or "" if not running.
func (s *Server) Addr() string {
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return ""
}
