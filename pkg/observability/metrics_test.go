package observability

import (
	"database/sql"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNewMetrics_RegistersAll(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := NewMetrics(registry)

	m.RecordAuthDecision(AuthModeBearer, OutcomeAuthorized)
	m.RecordLogin("success")
	m.RecordRateLimited("login")
	m.RecordRedisError("incr")
	m.ObserveStore("users", "get", time.Now(), nil)

	families, err := registry.Gather()
	if err != nil {
		t.Fatalf("Gather() error = %v", err)
	}

	names := make(map[string]bool)
	for _, f := range families {
		names[f.GetName()] = true
	}
	for _, want := range []string{
		"npsexplorer_auth_decisions_total",
		"npsexplorer_login_attempts_total",
		"npsexplorer_rate_limited_total",
		"npsexplorer_redis_errors_total",
		"npsexplorer_store_operation_duration_seconds",
		"npsexplorer_db_connections_open",
	} {
		if !names[want] {
			t.Errorf("metric %s not registered", want)
		}
	}
}

func TestNewMetrics_DuplicateRegistrationPanics(t *testing.T) {
	registry := prometheus.NewRegistry()
	NewMetrics(registry)

	defer func() {
		if recover() == nil {
			t.Error("expected panic on duplicate registration")
		}
	}()
	NewMetrics(registry)
}

func TestMetrics_NilReceiver(t *testing.T) {
	var m *Metrics
	m.RecordAuthDecision(AuthModeStatic, OutcomeMalformed)
	m.RecordLogin("failure")
	m.RecordRateLimited("login")
	m.RecordRedisError("incr")
	m.ObserveStore("users", "get", time.Now(), errors.New("x"))
	m.RecordDBStats(sql.DBStats{})
}

func TestMetrics_RecordAuthDecision(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())

	m.RecordAuthDecision(AuthModeBearer, OutcomeBadSignature)
	m.RecordAuthDecision(AuthModeBearer, OutcomeBadSignature)
	m.RecordAuthDecision(AuthModeStatic, OutcomeAuthorized)

	if got := testutil.ToFloat64(m.AuthDecisionsTotal.WithLabelValues(AuthModeBearer, OutcomeBadSignature)); got != 2 {
		t.Errorf("bearer/bad_signature = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.AuthDecisionsTotal.WithLabelValues(AuthModeStatic, OutcomeAuthorized)); got != 1 {
		t.Errorf("static/authorized = %v, want 1", got)
	}
}

func TestMetrics_ObserveStoreCountsErrors(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())

	m.ObserveStore("comments", "create", time.Now(), nil)
	m.ObserveStore("comments", "create", time.Now(), errors.New("db down"))

	if got := testutil.ToFloat64(m.StoreErrorsTotal.WithLabelValues("comments", "create")); got != 1 {
		t.Errorf("store errors = %v, want 1", got)
	}
}

func TestMetrics_RecordDBStats(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())

	m.RecordDBStats(sql.DBStats{
		OpenConnections: 5,
		InUse:           2,
		Idle:            3,
		WaitCount:       7,
		WaitDuration:    1500 * time.Millisecond,
	})

	if got := testutil.ToFloat64(m.DBConnectionsOpen); got != 5 {
		t.Errorf("open = %v", got)
	}
	if got := testutil.ToFloat64(m.DBConnectionsInUse); got != 2 {
		t.Errorf("in use = %v", got)
	}
	if got := testutil.ToFloat64(m.DBConnectionsIdle); got != 3 {
		t.Errorf("idle = %v", got)
	}
	if got := testutil.ToFloat64(m.DBConnectionsWaitCount); got != 7 {
		t.Errorf("wait count = %v", got)
	}
	if got := testutil.ToFloat64(m.DBConnectionsWaitDuration); got != 1.5 {
		t.Errorf("wait duration = %v", got)
	}
}

func TestHTTPMetricsMiddleware_UsesRouteTemplate(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())

	router := mux.NewRouter()
	router.Use(HTTPMetricsMiddleware(m))
	router.HandleFunc("/api/users/{user_id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte("nope"))
	})

	for _, id := range []string{"1", "2", "3"} {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/users/"+id, nil))
	}

	got := testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues(http.MethodGet, "/api/users/{user_id}", "404"))
	if got != 3 {
		t.Errorf("requests for route = %v, want 3", got)
	}
}

func TestRouteLabel_Unmatched(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/nowhere", nil)
	if got := routeLabel(req); got != "unmatched" {
		t.Errorf("routeLabel() = %q, want unmatched", got)
	}
}

func TestRegisterMetricsEndpoint(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := NewMetrics(registry)
	m.RecordLogin("success")

	serveMux := http.NewServeMux()
	RegisterMetricsEndpoint(serveMux, registry)

	rec := httptest.NewRecorder()
	serveMux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body, _ := io.ReadAll(rec.Body)
	if !strings.Contains(string(body), `npsexplorer_login_attempts_total{outcome="success"} 1`) {
		t.Errorf("metrics output missing login counter:\n%s", body)
	}
}
