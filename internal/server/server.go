package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/jonathan/cv-admin/internal/config"
	"github.com/jonathan/cv-admin/internal/enhance"
	"github.com/jonathan/cv-admin/internal/logging"
	"github.com/jonathan/cv-admin/internal/media"
	"github.com/jonathan/cv-admin/internal/server/middleware"
	"github.com/jonathan/cv-admin/internal/server/ratelimit"
	"github.com/jonathan/cv-admin/internal/store"
	"go.uber.org/zap"
)

// RequestIDHeader carries the per-request correlation ID
const RequestIDHeader = "X-Request-ID"

// maxJSONBody bounds every JSON request body
const maxJSONBody = 2 << 20

// Server represents the HTTP server
type Server struct {
	httpServer  *http.Server
	cfg         *config.Config
	store       *store.Gateway
	enhancer    *enhance.Service
	media       *media.Pipeline
	sessions    *SessionService
	adminHash   string
	rateLimiter *ratelimit.Limiter
	validator   *validator.Validate
	logger      *zap.Logger
}

// Deps holds the components the server routes requests to
type Deps struct {
	Config   *config.Config
	Store    *store.Gateway
	Enhancer *enhance.Service
	Media    *media.Pipeline
	Logger   *zap.Logger
}

// New creates a new server instance
func New(deps Deps) (*Server, error) {
	if deps.Config == nil || deps.Store == nil || deps.Enhancer == nil || deps.Media == nil {
		return nil, fmt.Errorf("server: config, store, enhancer and media are required")
	}
	cfg := deps.Config

	adminHash, err := cfg.AdminHash()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve admin password: %w", err)
	}

	s := &Server{
		cfg:       cfg,
		store:     deps.Store,
		enhancer:  deps.Enhancer,
		media:     deps.Media,
		sessions:  NewSessionService(&cfg.Session),
		adminHash: adminHash,
		rateLimiter: ratelimit.NewLimiter(ratelimit.NewConfig(
			cfg.RateLimit.Enabled,
			cfg.RateLimit.DefaultLimit,
			time.Duration(cfg.RateLimit.DefaultWindow),
			cfg.RateLimit.Whitelist,
			cfg.RateLimit.Blacklist,
		)),
		validator: validator.New(),
		logger:    logging.OrNop(deps.Logger),
	}

	if adminHash == "" {
		s.logger.Warn("no admin password configured, admin authentication is disabled")
	}
	if cfg.Session.Ephemeral {
		s.logger.Warn("SESSION_SECRET not set, sessions will not survive a restart")
	}

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: cfg.AITimeout() + 30*time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s, nil
}

// Handler returns the complete middleware-wrapped router
func (s *Server) Handler() http.Handler {
	admin := middleware.AuthMiddleware(s.sessions, middleware.Options{
		Cookie: SessionCookie,
		Open:   s.adminHash == "",
	})
	ai := middleware.AuthMiddleware(s.sessions, middleware.Options{
		Cookie: SessionCookie,
		APIKey: s.cfg.LLM.APIKey,
		Open:   s.cfg.Development() || (s.adminHash == "" && s.cfg.LLM.APIKey == ""),
	})

	// gated routes fail with ModeRestricted before authentication
	gated := func(h http.HandlerFunc) http.Handler {
		return s.withDevelopmentMode(admin(h))
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)

	mux.Handle("POST /api/admin/login", s.withDevelopmentMode(http.HandlerFunc(s.handleLogin)))
	mux.Handle("POST /api/admin/logout", http.HandlerFunc(s.handleLogout))

	mux.Handle("GET /api/admin", gated(s.handleLoad))
	mux.Handle("POST /api/admin", gated(s.handleSave))
	mux.Handle("POST /api/admin/autoskills", gated(s.handleAutoSkills))
	mux.Handle("GET /api/admin/json/{resource}", gated(s.handleEditorLoad))
	mux.Handle("PUT /api/admin/json/{resource}", gated(s.handleEditorApply))
	mux.Handle("PUT /api/admin/profile/{field}", gated(s.handleProfileField))

	mux.Handle("POST /api/admin/collections/{collection}", gated(s.handleCollectionAdd))
	mux.Handle("PUT /api/admin/collections/{collection}/{index}", gated(s.handleCollectionEdit))
	mux.Handle("DELETE /api/admin/collections/{collection}/{index}", gated(s.handleCollectionDelete))
	mux.Handle("POST /api/admin/collections/{collection}/{index}/move", gated(s.handleCollectionMove))
	mux.Handle("POST /api/admin/experiences/{index}/tags", gated(s.handleAddExperienceTag))
	mux.Handle("DELETE /api/admin/experiences/{index}/tags", gated(s.handleRemoveExperienceTag))
	mux.Handle("POST /api/admin/topskills", gated(s.handleAddTopSkill))
	mux.Handle("DELETE /api/admin/topskills", gated(s.handleRemoveTopSkill))

	mux.Handle("POST /api/upload", gated(s.handleUpload))
	mux.Handle("DELETE /api/upload", gated(s.handleDeleteUpload))

	mux.Handle("POST /api/ai", ai(http.HandlerFunc(s.handleEnhance)))

	return s.withRequestID(s.withLogging(s.withRateLimit(s.withCORS(mux))))
}

// Start listens until ctx is cancelled, then shuts down gracefully
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server starting",
			zap.String("addr", s.httpServer.Addr),
			zap.String("mode", s.cfg.Mode),
			zap.Bool("development", s.cfg.Development()))
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		s.Close()
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	err := s.httpServer.Shutdown(shutdownCtx)
	s.Close()
	if err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	s.logger.Info("server stopped")
	return nil
}

// Close releases background resources. It does not stop a running listener.
func (s *Server) Close() {
	if s.rateLimiter != nil {
		s.rateLimiter.Stop()
	}
}

type requestIDKey struct{}

// RequestID returns the correlation ID assigned to r
func RequestID(r *http.Request) string {
	id, _ := r.Context().Value(requestIDKey{}).(string)
	return id
}

// withRequestID assigns a request ID, keeping a well-formed one supplied by the client
func (s *Server) withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey{}, id)))
	})
}

// statusRecorder captures the status code written by a handler
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}

// withLogging adds request logging
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		fields := []zap.Field{
			zap.String("request_id", RequestID(r)),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.String("remote", r.RemoteAddr),
		}
		s.logger.Debug("request started", fields...)

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		fields = append(fields, zap.Int("status", rec.status), zap.Duration("duration", time.Since(start)))
		switch {
		case rec.status >= 500:
			s.logger.Error("request completed", fields...)
		case rec.status >= 400:
			s.logger.Warn("request completed", fields...)
		default:
			s.logger.Info("request completed", fields...)
		}
	})
}

// withCORS adds CORS headers. With no configured origins every origin is allowed without credentials.
func (s *Server) withCORS(next http.Handler) http.Handler {
	allowed := make(map[string]bool, len(s.cfg.CORSOrigins))
	for _, o := range s.cfg.CORSOrigins {
		allowed[o] = true
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		switch {
		case len(allowed) == 0:
			w.Header().Set("Access-Control-Allow-Origin", "*")
		case allowed[origin]:
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Credentials", "true")
			w.Header().Add("Vary", "Origin")
		}
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, "+middleware.APIKeyHeader+", "+RequestIDHeader)

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// withRateLimit adds rate limiting middleware
func (s *Server) withRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		allowed, info := s.rateLimiter.Allow(extractClientID(r), r.URL.Path, r.Method)
		setRateLimitHeaders(w, info)
		if !allowed {
			s.rateLimitResponse(w, r, info)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// withDevelopmentMode rejects requests outside development mode before doing any work
func (s *Server) withDevelopmentMode(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.cfg.Development() {
			s.errorResponse(w, r, &store.ModeRestrictedError{Mode: s.cfg.Mode})
			return
		}
		next.ServeHTTP(w, r)
	})
}

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.jsonResponse(w, r, http.StatusOK, map[string]any{
		"status":      "ok",
		"development": s.cfg.Development(),
	})
}

// jsonResponse writes a JSON response
func (s *Server) jsonResponse(w http.ResponseWriter, r *http.Request, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Warn("failed to encode JSON response", zap.String("request_id", RequestID(r)), zap.Error(err))
	}
}

// errorResponse maps err to its status and writes the error body
func (s *Server) errorResponse(w http.ResponseWriter, r *http.Request, err error) {
	status := HTTPStatus(err)
	message := err.Error()
	if status >= 500 {
		s.logger.Error("request failed",
			zap.String("request_id", RequestID(r)),
			zap.String("path", r.URL.Path),
			zap.Error(err))
		if ErrorCode(err) == "InternalError" {
			message = "internal server error"
		}
	}
	s.jsonResponse(w, r, status, ErrorResponse{Error: ErrorCode(err), Message: message})
}

// readBody reads a bounded request body
func (s *Server) readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxJSONBody))
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return nil, &ErrValidation{Field: "body", Message: fmt.Sprintf("request body exceeds %d bytes", maxErr.Limit)}
		}
		return nil, &ErrValidation{Field: "body", Message: "failed to read request body"}
	}
	return data, nil
}

// decodeJSON reads a bounded JSON body into v
func (s *Server) decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	data, err := s.readBody(w, r)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return &ErrValidation{Field: "body", Message: "invalid JSON: " + err.Error()}
	}
	return nil
}

// extractClientID extracts the client identifier (IP address) from the request.
func extractClientID(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// setRateLimitHeaders sets standard rate limit headers on the response.
func setRateLimitHeaders(w http.ResponseWriter, info ratelimit.Info) {
	if info.Limit > 0 {
		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(info.Limit))
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(info.Remaining))
		w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(info.ResetTime.Unix(), 10))
	}
}

// rateLimitResponse writes a 429 Too Many Requests response with rate limit information.
func (s *Server) rateLimitResponse(w http.ResponseWriter, r *http.Request, info ratelimit.Info) {
	retryAfter := int(info.RetryAfter.Round(time.Second).Seconds())
	if info.RetryAfter > 0 && retryAfter == 0 {
		retryAfter = 1
	}
	if retryAfter > 0 {
		w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
	}

	s.logger.Warn("rate limit exceeded",
		zap.String("request_id", RequestID(r)),
		zap.String("client", extractClientID(r)),
		zap.String("path", r.URL.Path),
		zap.Int("limit", info.Limit))

	s.jsonResponse(w, r, http.StatusTooManyRequests, map[string]any{
		"error":       "RateLimited",
		"message":     "Rate limit exceeded. Please try again later.",
		"limit":       info.Limit,
		"retry_after": retryAfter,
	})
}

// pathIndex parses the {index} path value
func pathIndex(r *http.Request) (int, error) {
	raw := strings.TrimSpace(r.PathValue("index"))
	index, err := strconv.Atoi(raw)
	if err != nil || index < 0 {
		return 0, &ErrValidation{Field: "index", Message: fmt.Sprintf("%q is not a non-negative integer", raw)}
	}
	return index, nil
}
