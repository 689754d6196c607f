// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/goccy/go-json"

	"github.com/okian/freshpoint/internal/adapters/http/site"
	"github.com/okian/freshpoint/internal/domain/types"
	"github.com/okian/freshpoint/pkg/logger"
)

const defaultMaxBodyBytes = 1 << 20

// Dependencies required by HTTP handlers.
type Dependencies interface {
	FreshPointDependencies
	CommentDependencies
	JoinDependencies
	StatsProvider
}

// FreshPointDependencies serves GET /freshpoint/{id}.
type FreshPointDependencies interface {
	FreshPoint(ctx context.Context, index int) (types.Envelope, error)
}

// CommentDependencies serves POST /comment.
type CommentDependencies interface {
	Comment(ctx context.Context, message string) string
}

// JoinDependencies serves POST /join.
type JoinDependencies interface {
	Join(ctx context.Context, a, b any) (string, error)
}

// StatsProvider serves GET /stats.
type StatsProvider interface {
	GetStats() map[string]interface{}
}

// Server wires HTTP routes for the site and the API.
type Server struct {
	deps           Dependencies
	site           *site.Site
	logger         logger.Logger
	maxBodyBytes   int64
	allowedOrigins []string
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger used by middleware and the error handler.
func WithLogger(l logger.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithSite sets the static site served on /, /favicon.ico and assets.
func WithSite(st *site.Site) Option {
	return func(s *Server) {
		if st != nil {
			s.site = st
		}
	}
}

// WithMaxBodyBytes caps POST bodies.
func WithMaxBodyBytes(n int64) Option {
	return func(s *Server) {
		if n > 0 {
			s.maxBodyBytes = n
		}
	}
}

// WithAllowedOrigins sets the CORS allow list. "*" allows every origin.
func WithAllowedOrigins(origins []string) Option {
	return func(s *Server) {
		if len(origins) > 0 {
			s.allowedOrigins = origins
		}
	}
}

// NewServer creates a new API server.
func NewServer(deps Dependencies, opts ...Option) *Server {
	s := &Server{
		deps:           deps,
		maxBodyBytes:   defaultMaxBodyBytes,
		allowedOrigins: []string{"*"},
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Named("http")
	}
	if s.site == nil {
		s.site = site.New(nil)
	}
	return s
}

// Register attaches middleware and all routes to r.
func (s *Server) Register(_ context.Context, r chi.Router) {
	if r == nil {
		panic("router is nil")
	}

	r.Use(s.chain()...)

	r.Get("/", s.handle("site.index", s.site.Index))
	r.Get("/favicon.ico", s.handle("site.favicon", s.site.Favicon))

	r.Get("/freshpoint/{id}", s.handle("api.get_freshpoint", s.handleGetFreshPoint))
	r.Post("/comment", s.handle("api.post_comment", s.handlePostComment))
	r.Post("/join", s.handle("api.post_join", s.handlePostJoin))

	r.Get("/healthz", handleHealth)
	r.Handle("/metrics", metricsHandler())
	r.Get("/stats", s.handleStats)

	r.Get("/*", s.site.Assets().ServeHTTP)
}

// chain is the middleware applied to every route. Recoverer stays inside
// AccessLog and MetricsMiddleware: a recovered panic is logged and counted
// with its 500 status. GetHead serves HEAD through the GET routes.
func (s *Server) chain() []func(http.Handler) http.Handler {
	return []func(http.Handler) http.Handler{
		RequestID,
		AccessLog(s.logger),
		MetricsMiddleware,
		Recoverer(s.logger, s.handleError),
		cors.Handler(cors.Options{
			AllowedOrigins: s.allowedOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodHead, http.MethodPost, http.MethodOptions},
			AllowedHeaders: []string{"Accept", "Content-Type", RequestIDHeader},
			ExposedHeaders: []string{RequestIDHeader},
			MaxAge:         300,
		}),
		middleware.GetHead,
	}
}

// handlerFunc is an http.HandlerFunc that reports failure by returning an
// error instead of writing a response.
type handlerFunc func(w http.ResponseWriter, r *http.Request) error

// handle adapts fn so every returned error goes through handleError.
func (s *Server) handle(op string, fn handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := fn(w, r); err != nil {
			s.handleError(w, r, op, err)
		}
	}
}

// handleError is the single error sink: it logs, counts and answers with
// the error contract for the error's kind.
func (s *Server) handleError(w http.ResponseWriter, r *http.Request, op string, err error) {
	ctx := r.Context()
	class := classify(err)
	recordError(r, class)

	fields := []logger.Field{
		logger.String("op", op),
		logger.String("method", r.Method),
		logger.String("path", r.URL.Path),
		logger.Int("status", class.status),
		logger.String("code", class.code),
		logger.String("request_id", RequestIDFromContext(ctx)),
		logger.Error(err),
	}
	if class.status >= http.StatusInternalServerError {
		s.logger.Error(ctx, "request failed", fields...)
	} else {
		s.logger.Warn(ctx, "request rejected", fields...)
	}

	writeError(w, class.status, class.code, publicMessage(class, err))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}
