package monitoring

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestMetrics_HTTPMiddlewareUsesRoutePattern(t *testing.T) {
	m := NewMetrics(zap.NewNop())

	r := chi.NewRouter()
	r.Use(m.HTTPMiddleware)
	r.Get("/foods/{id}/edit", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	for _, path := range []string{"/foods/1/edit", "/foods/2/edit"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	got := testutil.ToFloat64(m.httpRequestsTotal.WithLabelValues(http.MethodGet, "/foods/{id}/edit", "418"))
	assert.Equal(t, 2.0, got)
}

func TestMetrics_BusinessCounters(t *testing.T) {
	m := NewMetrics(zap.NewNop())

	m.ObserveBackend(http.MethodGet, "/food", 200, 10*time.Millisecond)
	m.ObserveBackend(http.MethodGet, "/food", 0, time.Millisecond)
	m.RecordLedgerOperation("add", nil)
	m.RecordLedgerOperation("add", errors.New("bad"))
	m.RecordSave("partial")
	m.RecordLogin(nil)
	m.RecordStaleLoad()

	assert.Equal(t, 1.0, testutil.ToFloat64(m.backendRequestsTotal.WithLabelValues("GET", "/food", "error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ledgerOperationsTotal.WithLabelValues("add", "error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.recipeSavesTotal.WithLabelValues("partial")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.staleLoadsTotal))
}

func TestMetrics_Handler(t *testing.T) {
	m := NewMetrics(zap.NewNop())
	m.RecordLogin(nil)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `trackeats_logins_total{result="ok"} 1`)
}
