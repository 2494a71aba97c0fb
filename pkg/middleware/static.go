package middleware

import (
	"net/http"

	"github.com/npsexplorer/explorer/pkg/auth"
	"github.com/npsexplorer/explorer/pkg/contextkeys"
	"github.com/npsexplorer/explorer/pkg/httputil"
	"github.com/npsexplorer/explorer/pkg/observability"
)

// StaticToken protects service routes with the shared API token.
// No account is looked up; authorized requests carry AuthContext{Service: true}.
type StaticToken struct {
	token   *auth.StaticToken
	logger  *observability.Logger
	metrics *observability.Metrics
}

// NewStaticToken creates the static token middleware. metrics may be nil.
func NewStaticToken(token *auth.StaticToken, logger *observability.Logger, metrics *observability.Metrics) *StaticToken {
	return &StaticToken{
		token:   token,
		logger:  logger,
		metrics: metrics,
	}
}

// Handler wraps an HTTP handler with the static token check
func (m *StaticToken) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		presented, outcome := bearerToken(r)
		if outcome == "" && !m.token.Verify(presented) {
			outcome = observability.OutcomeBadSignature
		}

		if outcome != "" {
			m.metrics.RecordAuthDecision(observability.AuthModeStatic, outcome)
			observability.FromContext(r.Context(), m.logger).
				WithField("auth_mode", observability.AuthModeStatic).
				WithField("outcome", outcome).
				Warn("Static token rejected")
			httputil.WriteUnauthorized(w)
			return
		}

		m.metrics.RecordAuthDecision(observability.AuthModeStatic, observability.OutcomeAuthorized)
		ctx := contextkeys.WithAuth(r.Context(), &auth.AuthContext{Service: true})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
