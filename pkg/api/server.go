package api

import (
	"net/http"

	"github.com/gorilla/mux"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/npsexplorer/explorer/pkg/auth"
	"github.com/npsexplorer/explorer/pkg/comments"
	"github.com/npsexplorer/explorer/pkg/favorites"
	"github.com/npsexplorer/explorer/pkg/httputil"
	"github.com/npsexplorer/explorer/pkg/middleware"
	"github.com/npsexplorer/explorer/pkg/observability"
	"github.com/npsexplorer/explorer/pkg/sanitize"
	"github.com/npsexplorer/explorer/pkg/users"
)

const defaultMaxBodyBytes = 1 << 20

// Dependencies are the collaborators of the API server
type Dependencies struct {
	Authenticator *auth.Authenticator
	Hasher        auth.PasswordHasher
	StaticToken   *auth.StaticToken

	Users     users.Store
	Comments  comments.Store
	Favorites favorites.Store

	// LoginLimiter throttles POST /api/auth/login per client IP. Nil disables it.
	LoginLimiter middleware.Limiter

	Logger    *observability.Logger
	Metrics   *observability.Metrics
	Sanitizer *sanitize.Sanitizer
}

// Options tune the HTTP surface
type Options struct {
	CORSOrigins  []string
	TrustProxy   bool
	MaxBodyBytes int64
	// Tracing wraps the handler with otelhttp
	Tracing bool
}

// Server is the REST API
type Server struct {
	router  *mux.Router
	handler http.Handler
	logger  *observability.Logger
}

// NewServer wires the routes and the middleware stack
func NewServer(deps Dependencies, opts Options) *Server {
	if deps.Logger == nil {
		deps.Logger = observability.NopLogger()
	}
	if deps.Sanitizer == nil {
		deps.Sanitizer = sanitize.New()
	}
	if deps.StaticToken == nil {
		deps.StaticToken = auth.NewStaticToken("")
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = defaultMaxBodyBytes
	}

	s := &Server{
		router: mux.NewRouter(),
		logger: deps.Logger,
	}

	s.router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		httputil.WriteNotFoundError(w, "Not found")
	})
	if deps.Metrics != nil {
		s.router.Use(observability.HTTPMetricsMiddleware(deps.Metrics))
	}

	bearer := middleware.NewBearerAuth(deps.Authenticator, deps.Logger, deps.Metrics)
	static := middleware.NewStaticToken(deps.StaticToken, deps.Logger, deps.Metrics)
	out := serializer{s: deps.Sanitizer}

	var loginLimit func(http.Handler) http.Handler
	if deps.LoginLimiter != nil {
		loginLimit = middleware.NewRateLimitMiddleware("login", deps.LoginLimiter, opts.TrustProxy, deps.Logger, deps.Metrics).Handler
	}

	api := s.router.PathPrefix("/api").Subrouter()

	NewAuthHandlers(deps.Authenticator, loginLimit, deps.Logger, deps.Metrics).RegisterRoutes(api)
	NewUserHandlers(deps.Users, deps.Favorites, deps.Hasher, static.Handler, bearer.Handler, out, deps.Logger).RegisterRoutes(api)
	NewCommentHandlers(deps.Comments, bearer.Handler, out, deps.Logger).RegisterRoutes(api)
	NewFavoriteHandlers(deps.Favorites, bearer.Handler, out, deps.Logger).RegisterRoutes(api)

	handler := httputil.Chain(
		httputil.RecoveryMiddleware(deps.Logger),
		httputil.RequestIDMiddleware,
		httputil.LoggingMiddleware(deps.Logger),
		httputil.SecurityHeadersMiddleware,
		httputil.CORSMiddleware(opts.CORSOrigins),
		httputil.MaxBytesMiddleware(opts.MaxBodyBytes),
	)(s.router)

	if opts.Tracing {
		handler = otelhttp.NewHandler(handler, "npsexplorer-api",
			otelhttp.WithSpanNameFormatter(func(operation string, r *http.Request) string {
				return r.Method + " " + r.URL.Path
			}),
		)
	}
	s.handler = handler

	return s
}

// Router exposes the route table
func (s *Server) Router() *mux.Router {
	return s.router
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

// serverError logs err with the request scoped logger and writes the generic 500
func serverError(w http.ResponseWriter, r *http.Request, logger *observability.Logger, err error, message string) {
	observability.FromContext(r.Context(), logger).WithError(err).Error(message)
	httputil.WriteServerError(w)
}
