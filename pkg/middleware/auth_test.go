package middleware

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/npsexplorer/explorer/pkg/auth"
	"github.com/npsexplorer/explorer/pkg/contextkeys"
	"github.com/npsexplorer/explorer/pkg/observability"
)

type stubAccounts struct {
	accounts map[string]*auth.Account
	err      error
}

func (s *stubAccounts) GetAccountByEmail(ctx context.Context, email string) (*auth.Account, error) {
	if s.err != nil {
		return nil, s.err
	}
	if acc, ok := s.accounts[email]; ok {
		return acc, nil
	}
	return nil, auth.ErrAccountNotFound
}

type plainHasher struct{}

func (plainHasher) Hash(p string) (string, error)     { return p, nil }
func (plainHasher) Compare(h, p string) (bool, error) { return h == p, nil }

const bearerSecret = "middleware-test-secret"

func newBearerFixture(t *testing.T) (*BearerAuth, *stubAccounts, *auth.TokenCodec, *observability.Metrics, *bytes.Buffer) {
	t.Helper()

	store := &stubAccounts{accounts: map[string]*auth.Account{
		"ann@example.com": {ID: 11, Email: "ann@example.com", FirstName: "Ann"},
	}}
	codec := auth.NewTokenCodec(bearerSecret, time.Hour)
	authenticator := auth.NewAuthenticator(store, plainHasher{}, codec)

	var buf bytes.Buffer
	metrics := observability.NewMetrics(prometheus.NewRegistry())
	mw := NewBearerAuth(authenticator, observability.NewLogger(observability.InfoLevel, &buf), metrics)
	return mw, store, codec, metrics, &buf
}

func TestBearerAuth_Rejections(t *testing.T) {
	mw, store, codec, metrics, _ := newBearerFixture(t)

	valid, err := codec.Sign("ann@example.com", auth.TokenPayload{UserID: 11, FirstName: "Ann"})
	if err != nil {
		t.Fatalf("Sign() error = %v", err)
	}
	ghost, _ := codec.Sign("ghost@example.com", auth.TokenPayload{UserID: 99})
	forged, _ := auth.NewTokenCodec("wrong-secret", time.Hour).Sign("ann@example.com", auth.TokenPayload{UserID: 11})

	expiredCodec := auth.NewTokenCodec(bearerSecret, time.Nanosecond)
	expired, _ := expiredCodec.Sign("ann@example.com", auth.TokenPayload{UserID: 11})
	time.Sleep(2 * time.Millisecond)

	tests := []struct {
		name     string
		header   string
		storeErr error
		outcome  string
	}{
		{name: "no header", header: "", outcome: observability.OutcomeNoHeader},
		{name: "basic scheme", header: "Basic " + valid, outcome: observability.OutcomeMalformed},
		{name: "no scheme", header: valid, outcome: observability.OutcomeMalformed},
		{name: "empty token", header: "Bearer ", outcome: observability.OutcomeMalformed},
		{name: "garbage token", header: "Bearer not.a.jwt", outcome: observability.OutcomeBadSignature},
		{name: "wrong secret", header: "Bearer " + forged, outcome: observability.OutcomeBadSignature},
		{name: "expired", header: "Bearer " + expired, outcome: observability.OutcomeBadSignature},
		{name: "unknown subject", header: "Bearer " + ghost, outcome: observability.OutcomeUnknownSubject},
		{name: "store error", header: "Bearer " + valid, storeErr: errors.New("db down"), outcome: observability.OutcomeStoreError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store.err = tt.storeErr
			defer func() { store.err = nil }()

			called := false
			handler := mw.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				called = true
			}))

			req := httptest.NewRequest(http.MethodGet, "/api/comments", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)

			if called {
				t.Error("downstream handler must not run")
			}
			if rr.Code != http.StatusUnauthorized {
				t.Errorf("status = %d, want 401", rr.Code)
			}
			if body := strings.TrimSpace(rr.Body.String()); body != `{"error":"Unauthorized request"}` {
				t.Errorf("body = %s", body)
			}
			if got := testutil.ToFloat64(metrics.AuthDecisionsTotal.WithLabelValues(observability.AuthModeBearer, tt.outcome)); got < 1 {
				t.Errorf("outcome %s not counted", tt.outcome)
			}
		})
	}
}

func TestBearerAuth_Authorized(t *testing.T) {
	mw, _, codec, metrics, _ := newBearerFixture(t)

	token, _ := codec.Sign("ann@example.com", auth.TokenPayload{UserID: 11, FirstName: "Ann"})

	for _, scheme := range []string{"Bearer", "bearer", "BEARER"} {
		t.Run(scheme, func(t *testing.T) {
			var got *auth.AuthContext
			var userID int64
			handler := mw.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				got = GetAuthContext(r)
				userID = contextkeys.GetUserID(r.Context())
				w.WriteHeader(http.StatusOK)
			}))

			req := httptest.NewRequest(http.MethodGet, "/api/comments", nil)
			req.Header.Set("Authorization", fmt.Sprintf("%s %s", scheme, token))
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)

			if rr.Code != http.StatusOK {
				t.Fatalf("status = %d, want 200", rr.Code)
			}
			if got == nil || got.Account == nil || got.Account.Email != "ann@example.com" {
				t.Errorf("auth context = %+v", got)
			}
			if userID != 11 {
				t.Errorf("user id in context = %d, want 11", userID)
			}
		})
	}

	if n := testutil.ToFloat64(metrics.AuthDecisionsTotal.WithLabelValues(observability.AuthModeBearer, observability.OutcomeAuthorized)); n != 3 {
		t.Errorf("authorized count = %v, want 3", n)
	}
}

func TestBearerAuth_LogsReasonNotToClient(t *testing.T) {
	mw, _, _, _, buf := newBearerFixture(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Token abc")
	rr := httptest.NewRecorder()
	mw.Handler(http.NotFoundHandler()).ServeHTTP(rr, req)

	if !strings.Contains(buf.String(), `"outcome":"malformed"`) {
		t.Errorf("log should carry the outcome, got %s", buf.String())
	}
	if strings.Contains(rr.Body.String(), "malformed") {
		t.Error("response must not reveal the failure reason")
	}
}

func TestGetAuthContext_Missing(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if GetAuthContext(req) != nil {
		t.Error("expected nil auth context")
	}
}
