// Package server provides the HTTP REST API for the retrieval and selection engine.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"slices"
	"strconv"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/jonathan/resume-rag/internal/config"
	"github.com/jonathan/resume-rag/internal/observability"
	"github.com/jonathan/resume-rag/internal/pipeline"
	"github.com/jonathan/resume-rag/internal/server/middleware"
	"github.com/jonathan/resume-rag/internal/server/ratelimit"
	"go.uber.org/zap"
)

const (
	maxBodyBytes    = 10 << 20
	shutdownTimeout = 30 * time.Second
)

// Config holds server configuration
type Config struct {
	Port              int
	AllowedOrigins    []string
	AdminPasswordHash string
	// JWT is nil when no signing secret is configured; admin routes then
	// answer 503.
	JWT       *config.JWTConfig
	Password  *config.PasswordConfig
	RateLimit *ratelimit.Config
}

// Server represents the HTTP server
type Server struct {
	httpServer  *http.Server
	service     *pipeline.Service
	rateLimiter *ratelimit.Limiter
	tokens      *TokenService
	password    *config.PasswordConfig
	adminHash   string
	origins     []string
	metrics     *observability.Metrics
	logger      *zap.Logger

	// adminMu serializes index mutations.
	adminMu sync.Mutex
}

// New creates a new server instance. metrics and logger may be nil.
func New(cfg Config, service *pipeline.Service, metrics *observability.Metrics, logger *zap.Logger) *Server {
	logger = observability.OrNop(logger)
	s := &Server{
		service:     service,
		rateLimiter: ratelimit.NewLimiter(cfg.RateLimit),
		password:    cfg.Password,
		adminHash:   cfg.AdminPasswordHash,
		origins:     cfg.AllowedOrigins,
		metrics:     metrics,
		logger:      logger,
	}
	if cfg.JWT != nil {
		s.tokens = NewTokenService(cfg.JWT)
	}
	if s.password == nil {
		s.password = &config.PasswordConfig{BcryptCost: 12}
	}

	requireAdmin := s.requireAdmin()

	mux := http.NewServeMux()
	mux.HandleFunc("POST /optimize/flat", s.handleOptimizeFlat)
	mux.HandleFunc("POST /optimize/flat/stream", s.handleOptimizeFlatStream)
	mux.HandleFunc("POST /select", s.handleSelect)
	mux.HandleFunc("POST /optimize", s.handleOptimize)
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /stats", s.handleStats)
	mux.HandleFunc("GET /results", s.handleResults)
	mux.Handle("GET /metrics", metrics.Handler())

	mux.HandleFunc("POST /admin/token", s.handleAdminToken)
	mux.Handle("POST /admin/index", requireAdmin(http.HandlerFunc(s.handleIndex)))
	mux.Handle("DELETE /admin/index", requireAdmin(http.HandlerFunc(s.handleClear)))

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.withRateLimit(middleware.Logging(logger, metrics, routeLabel)(s.withCORS(mux))),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 300 * time.Second, // optimization calls are slow
		IdleTimeout:  60 * time.Second,
	}
	return s
}

// Handler returns the root handler with the full middleware chain.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start serves until SIGINT or SIGTERM, then shuts down gracefully.
func (s *Server) Start() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return s.Run(ctx)
}

// Run serves until ctx is canceled, then drains in-flight requests.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.httpServer.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve is Run on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server starting", zap.String("addr", ln.Addr().String()))
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		s.rateLimiter.Stop()
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	defer s.rateLimiter.Stop()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	s.service.Wait()
	s.logger.Info("server stopped")
	return nil
}

// routeLabel returns the matched mux pattern so metric labels stay bounded.
func routeLabel(r *http.Request) string {
	if r.Pattern == "" {
		return "unmatched"
	}
	return r.Pattern
}

// withCORS adds CORS headers
func (s *Server) withCORS(next http.Handler) http.Handler {
	allowAll := len(s.origins) == 0 || slices.Contains(s.origins, "*")
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		switch {
		case allowAll:
			w.Header().Set("Access-Control-Allow-Origin", "*")
		case origin != "" && slices.Contains(s.origins, origin):
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Add("Vary", "Origin")
		}
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, "+middleware.RequestIDHeader)

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// withRateLimit adds rate limiting middleware
func (s *Server) withRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		allowed, info := s.rateLimiter.Allow(s.extractClientID(r), r.URL.Path, r.Method)
		s.setRateLimitHeaders(w, info)
		if !allowed {
			s.rateLimitResponse(w, r, info)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// requireAdmin guards a handler with bearer-token authentication.
func (s *Server) requireAdmin() func(http.Handler) http.Handler {
	if s.tokens == nil {
		return func(http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				s.errorFromErr(w, &ErrAdminDisabled{})
			})
		}
	}
	return middleware.AuthMiddleware(s.tokens.AsTokenValidator())
}

// extractClientID uses the IP from RemoteAddr. X-Forwarded-For is ignored
// since it is client controlled without a trusted proxy.
func (s *Server) extractClientID(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// setRateLimitHeaders sets standard rate limit headers on the response.
func (s *Server) setRateLimitHeaders(w http.ResponseWriter, info ratelimit.Info) {
	if info.Limit > 0 {
		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(info.Limit))
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(info.Remaining))
		w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(info.ResetTime.Unix(), 10))
	}
}

// rateLimitResponse writes a 429 Too Many Requests response with rate limit information.
func (s *Server) rateLimitResponse(w http.ResponseWriter, r *http.Request, info ratelimit.Info) {
	response := map[string]any{
		"error":     "rate_limit_exceeded",
		"message":   "Rate limit exceeded. Please try again later.",
		"limit":     info.Limit,
		"remaining": info.Remaining,
		"reset_at":  info.ResetTime.Format(time.RFC3339),
	}

	if info.RetryAfter > 0 {
		seconds := int(info.RetryAfter.Seconds())
		response["retry_after"] = seconds
		w.Header().Set("Retry-After", strconv.Itoa(seconds))
	}

	s.logger.Warn("rate limit exceeded",
		zap.String("client", s.extractClientID(r)),
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.Int("limit", info.Limit))
	s.metrics.RecordRequest(r.Method, "rate_limited", http.StatusTooManyRequests, 0)

	s.jsonResponse(w, http.StatusTooManyRequests, response)
}

// decodeJSON reads a size-limited JSON body into v.
func (s *Server) decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		return &ErrDecode{Cause: err}
	}
	return nil
}

// jsonResponse writes a JSON response
func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Error("failed to encode response", zap.Error(err))
	}
}

// errorResponse writes an error JSON response
func (s *Server) errorResponse(w http.ResponseWriter, status int, message string) {
	s.jsonResponse(w, status, map[string]string{"error": message})
}

// errorFromErr maps err to a status code. Internal errors are logged and
// their message is not returned to the client.
func (s *Server) errorFromErr(w http.ResponseWriter, err error) {
	status := HTTPStatus(err)
	if status >= http.StatusInternalServerError && status != http.StatusServiceUnavailable {
		s.logger.Error("request error", zap.Error(err))
		if status == http.StatusInternalServerError {
			s.errorResponse(w, status, "internal server error")
			return
		}
	}
	s.errorResponse(w, status, strings.TrimSpace(err.Error()))
}
