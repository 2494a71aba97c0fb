package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/npsexplorer/explorer/pkg/auth"
	"github.com/npsexplorer/explorer/pkg/contextkeys"
	"github.com/npsexplorer/explorer/pkg/httputil"
	"github.com/npsexplorer/explorer/pkg/observability"
)

// Authenticator resolves a raw bearer token to an authorization context
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*auth.AuthContext, error)
}

// BearerAuth protects routes with a signed credential token.
//
// The steps run in order and stop at the first failure:
//
//	no header          -> no_header
//	wrong scheme/empty -> malformed
//	verify fails       -> bad_signature
//	account missing    -> unknown_subject
//	store error        -> store_error
//
// Every failure answers 401 {"error":"Unauthorized request"} and never reaches next.
type BearerAuth struct {
	authenticator Authenticator
	logger        *observability.Logger
	metrics       *observability.Metrics
}

// NewBearerAuth creates the bearer middleware. metrics may be nil.
func NewBearerAuth(authenticator Authenticator, logger *observability.Logger, metrics *observability.Metrics) *BearerAuth {
	return &BearerAuth{
		authenticator: authenticator,
		logger:        logger,
		metrics:       metrics,
	}
}

// Handler wraps an HTTP handler with bearer authentication
func (m *BearerAuth) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, outcome := bearerToken(r)
		if outcome != "" {
			m.reject(w, r, outcome, nil)
			return
		}

		authCtx, err := m.authenticator.Authenticate(r.Context(), token)
		if err != nil {
			m.reject(w, r, outcomeFor(err), err)
			return
		}

		m.metrics.RecordAuthDecision(observability.AuthModeBearer, observability.OutcomeAuthorized)

		ctx := contextkeys.WithAuth(r.Context(), authCtx)
		ctx = contextkeys.WithUserID(ctx, authCtx.AccountID())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (m *BearerAuth) reject(w http.ResponseWriter, r *http.Request, outcome string, err error) {
	m.metrics.RecordAuthDecision(observability.AuthModeBearer, outcome)

	entry := observability.FromContext(r.Context(), m.logger).
		WithField("auth_mode", observability.AuthModeBearer).
		WithField("outcome", outcome).
		WithError(err)
	if outcome == observability.OutcomeStoreError {
		entry.Error("Bearer authentication failed on account lookup")
	} else {
		entry.Warn("Bearer authentication rejected")
	}

	httputil.WriteUnauthorized(w)
}

func outcomeFor(err error) string {
	switch {
	case errors.Is(err, auth.ErrUnknownSubject):
		return observability.OutcomeUnknownSubject
	case errors.Is(err, auth.ErrInvalidToken):
		return observability.OutcomeBadSignature
	default:
		return observability.OutcomeStoreError
	}
}

// bearerToken extracts the credential of an "Authorization: Bearer <token>" header.
// The scheme is matched case-insensitively. A non-empty outcome means rejection.
func bearerToken(r *http.Request) (string, string) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", observability.OutcomeNoHeader
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", observability.OutcomeMalformed
	}

	token := strings.TrimSpace(parts[1])
	if token == "" {
		return "", observability.OutcomeMalformed
	}

	return token, ""
}

// GetAuthContext extracts auth context from request
func GetAuthContext(r *http.Request) *auth.AuthContext {
	authCtx, ok := r.Context().Value(contextkeys.AuthKey).(*auth.AuthContext)
	if !ok {
		return nil
	}
	return authCtx
}
