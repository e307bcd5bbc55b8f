// Package server provides the HTTP REST API for the job portal.
package server

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/jonathan/job-portal/internal/accounts"
	"github.com/jonathan/job-portal/internal/applications"
	"github.com/jonathan/job-portal/internal/catalog"
	"github.com/jonathan/job-portal/internal/dashboard"
	"github.com/jonathan/job-portal/internal/jobs"
	"github.com/jonathan/job-portal/internal/observability"
	"github.com/jonathan/job-portal/internal/preferences"
	"github.com/jonathan/job-portal/internal/server/middleware"
	"github.com/jonathan/job-portal/internal/server/ratelimit"
	"go.uber.org/zap"
)

// Services are the domain operations the API exposes.
type Services struct {
	Accounts     *accounts.Service
	Jobs         *jobs.Service
	Applications *applications.Service
	Catalog      *catalog.Service
	Preferences  *preferences.Service
	Dashboard    *dashboard.Service
	// Ping reports store health. Optional.
	Ping func(ctx context.Context) error
}

// Config holds listener settings.
type Config struct {
	Port            int
	AllowedOrigin   string
	ShutdownTimeout time.Duration
	// MaxUploadBytes caps each attachment in an application upload.
	MaxUploadBytes int64
}

// Server represents the HTTP server.
type Server struct {
	httpServer *http.Server
	handler    http.Handler
	svc        Services
	cfg        Config
	limiter    ratelimit.Allower
	logger     *zap.SugaredLogger
}

// New wires routes and middleware. limiter may be nil to disable rate limiting.
func New(cfg Config, svc Services, tokens middleware.TokenValidator, limiter ratelimit.Allower, logger *zap.SugaredLogger) *Server {
	if cfg.AllowedOrigin == "" {
		cfg.AllowedOrigin = "*"
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = 30 * time.Second
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = applications.DefaultMaxAttachmentBytes
	}
	s := &Server{
		svc:     svc,
		cfg:     cfg,
		limiter: limiter,
		logger:  observability.Component(logger, "server"),
	}

	mux := http.NewServeMux()
	s.routes(mux)

	s.handler = s.withRateLimit(s.withLogging(s.withCORS(middleware.Authenticate(tokens)(mux))))
	s.httpServer = &http.Server{
		Addr:              ":" + strconv.Itoa(cfg.Port),
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return s
}

func (s *Server) routes(mux *http.ServeMux) {
	mux.HandleFunc("GET /health", s.handleHealth)

	mux.HandleFunc("POST /auth/register/candidate", s.handleRegisterCandidate)
	mux.HandleFunc("POST /auth/register/employer", s.handleRegisterEmployer)
	mux.HandleFunc("POST /auth/login", s.handleLogin)
	mux.HandleFunc("GET /profile", s.handleGetProfile)
	mux.HandleFunc("PUT /profile", s.handleUpdateProfile)
	mux.HandleFunc("GET /employers", s.handleListEmployers)
	mux.HandleFunc("GET /candidates", s.handleListCandidates)

	mux.HandleFunc("GET /jobs", s.handleListOpenJobs)
	mux.HandleFunc("POST /jobs", s.handleCreateJob)
	mux.HandleFunc("GET /jobs/created", s.handleListCreatedJobs)
	mux.HandleFunc("GET /jobs/{id}", s.handleGetJob)
	mux.HandleFunc("PUT /jobs/{id}", s.handleUpdateJob)
	mux.HandleFunc("DELETE /jobs/{id}", s.handleDeleteJob)
	mux.HandleFunc("GET /employers/{id}/jobs", s.handleListJobsByEmployer)

	mux.HandleFunc("POST /jobs/{id}/applications", s.handleApply)
	mux.HandleFunc("GET /jobs/{id}/applications", s.handleListJobApplications)
	mux.HandleFunc("GET /jobs/{id}/applications/count", s.handleCountJobApplications)
	mux.HandleFunc("GET /applications", s.handleListAllApplications)
	mux.HandleFunc("GET /applications/mine", s.handleListMyApplications)
	mux.HandleFunc("GET /applications/{id}", s.handleGetApplication)
	mux.HandleFunc("GET /applications/{id}/attachments/{kind}", s.handleDownloadAttachment)
	mux.HandleFunc("PUT /applications/{id}/status", s.handleChangeStatus)
	mux.HandleFunc("POST /applications/{id}/withdraw", s.handleWithdraw)

	mux.HandleFunc("GET /statuses", s.handleListStatuses)
	mux.HandleFunc("POST /statuses", s.handleCreateStatus)
	mux.HandleFunc("GET /statuses/{id}", s.handleGetStatus)
	mux.HandleFunc("PUT /statuses/{id}", s.handleRenameStatus)

	mux.HandleFunc("GET /skills", s.handleListSkills)
	mux.HandleFunc("POST /skills", s.handleCreateSkill)
	mux.HandleFunc("GET /skills/{id}", s.handleGetSkill)
	mux.HandleFunc("PUT /skills/{id}", s.handleUpdateSkill)
	mux.HandleFunc("DELETE /skills/{id}", s.handleDeleteSkill)
	mux.HandleFunc("GET /categories", s.handleListCategories)
	mux.HandleFunc("POST /categories", s.handleCreateCategory)
	mux.HandleFunc("GET /categories/{id}", s.handleGetCategory)
	mux.HandleFunc("PUT /categories/{id}", s.handleUpdateCategory)
	mux.HandleFunc("DELETE /categories/{id}", s.handleDeleteCategory)

	mux.HandleFunc("GET /preferences", s.handleListPreferences)
	mux.HandleFunc("POST /preferences", s.handleCreatePreference)
	mux.HandleFunc("GET /preferences/{id}", s.handleGetPreference)
	mux.HandleFunc("PUT /preferences/{id}", s.handleUpdatePreference)
	mux.HandleFunc("DELETE /preferences/{id}", s.handleDeletePreference)

	mux.HandleFunc("GET /dashboard/admin", s.handleAdminDashboard)
	mux.HandleFunc("GET /dashboard/employer", s.handleEmployerDashboard)
}

// Handler returns the fully wrapped handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Run serves until ctx is cancelled, then shuts down gracefully and runs
// closers in order (notification queue, limiter, store).
func (s *Server) Run(ctx context.Context, closers ...func(context.Context) error) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Infow("server starting", "addr", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return errors.Wrap(err, "server error")
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Infow("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()

	var result error
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		result = errors.Wrap(err, "server shutdown failed")
	}
	for _, closeFn := range closers {
		if err := closeFn(shutdownCtx); err != nil {
			result = errors.CombineErrors(result, err)
		}
	}
	s.logger.Infow("server stopped")
	return result
}

// withCORS adds CORS headers
func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", s.cfg.AllowedOrigin)
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// statusRecorder captures the status written by a handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// withLogging tags the request with an id and logs its outcome.
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r.WithContext(observability.WithRequestID(r.Context(), id)))

		s.logger.Infow("request",
			observability.FieldRequestID, id,
			observability.FieldMethod, r.Method,
			observability.FieldPath, r.URL.Path,
			observability.FieldStatus, rec.status,
			observability.FieldDurationMS, time.Since(start).Milliseconds(),
		)
	})
}

// withRateLimit rejects requests over their endpoint's limit.
func (s *Server) withRateLimit(next http.Handler) http.Handler {
	if s.limiter == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		allowed, info := s.limiter.Allow(r.Context(), clientID(r), r.URL.Path, r.Method)
		setRateLimitHeaders(w, info)
		if !allowed {
			s.rateLimitResponse(w, info)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// clientID uses the connection's remote IP.
func clientID(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

func setRateLimitHeaders(w http.ResponseWriter, info ratelimit.Info) {
	if info.Limit > 0 {
		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(info.Limit))
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(info.Remaining))
		w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(info.ResetTime.Unix(), 10))
	}
}

func (s *Server) rateLimitResponse(w http.ResponseWriter, info ratelimit.Info) {
	if info.RetryAfter > 0 {
		w.Header().Set("Retry-After", strconv.Itoa(int(info.RetryAfter.Seconds())+1))
	}
	s.logger.Warnw("rate limit exceeded", "limit", info.Limit, "reset_at", info.ResetTime.Format(time.RFC3339))
	s.jsonResponse(w, http.StatusTooManyRequests, ErrorResponse{
		Error: "rate limit exceeded, please try again later",
		Code:  "rate_limit_exceeded",
	})
}

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.svc.Ping != nil {
		if err := s.svc.Ping(r.Context()); err != nil {
			s.logger.Warnw("health check failed", observability.FieldError, err)
			s.jsonResponse(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

// jsonResponse writes a JSON response
func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if status == http.StatusNoContent {
		return
	}
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Warnw("failed to encode response", observability.FieldError, err)
	}
}
