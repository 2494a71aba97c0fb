package api

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"go.opentelemetry.io/otel/attribute"

	"github.com/npsexplorer/explorer/pkg/auth"
	"github.com/npsexplorer/explorer/pkg/httputil"
	"github.com/npsexplorer/explorer/pkg/observability"
)

const msgIncorrectCredentials = "Incorrect username or password"

// wrapper is a route level middleware such as bearer auth or a rate limiter
type wrapper func(http.Handler) http.Handler

// guard applies mw to fn. A nil mw leaves the route open.
func guard(mw wrapper, fn http.HandlerFunc) http.Handler {
	if mw == nil {
		return fn
	}
	return mw(fn)
}

// AuthHandlers handles the login endpoint
type AuthHandlers struct {
	authenticator *auth.Authenticator
	limit         wrapper
	logger        *observability.Logger
	metrics       *observability.Metrics
}

// NewAuthHandlers creates the login handlers. limit and metrics may be nil.
func NewAuthHandlers(authenticator *auth.Authenticator, limit wrapper, logger *observability.Logger, metrics *observability.Metrics) *AuthHandlers {
	return &AuthHandlers{
		authenticator: authenticator,
		limit:         limit,
		logger:        logger,
		metrics:       metrics,
	}
}

// RegisterRoutes registers authentication routes
func (h *AuthHandlers) RegisterRoutes(router *mux.Router) {
	router.Handle("/auth/login", guard(h.limit, h.login)).Methods(http.MethodPost)
}

// login handles POST /api/auth/login
func (h *AuthHandlers) login(w http.ResponseWriter, r *http.Request) {
	var req auth.LoginRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}

	ctx, span := observability.Tracer().Start(r.Context(), "auth.login")
	defer span.End()

	token, err := h.authenticator.Login(ctx, req)
	outcome := loginOutcome(err)
	h.metrics.RecordLogin(outcome)
	span.SetAttributes(attribute.String("login.outcome", outcome))

	logger := observability.FromContext(ctx, h.logger)
	var missing *auth.MissingFieldError
	switch {
	case err == nil:
		_ = httputil.WriteSuccess(w, LoginResponse{AuthToken: token})
	case errors.As(err, &missing):
		httputil.WriteBadRequest(w, missing.Error())
	case errors.Is(err, auth.ErrInvalidCredentials):
		logger.WithError(err).Warn("Login rejected")
		httputil.WriteBadRequest(w, msgIncorrectCredentials)
	default:
		span.RecordError(err)
		logger.WithError(err).Error("Login failed")
		httputil.WriteServerError(w)
	}
}

func loginOutcome(err error) string {
	switch {
	case err == nil:
		return observability.LoginSuccess
	case errors.Is(err, auth.ErrMissingField):
		return observability.LoginMissingField
	case errors.Is(err, auth.ErrInvalidCredentials):
		return observability.LoginInvalidCredentials
	default:
		return observability.LoginError
	}
}
