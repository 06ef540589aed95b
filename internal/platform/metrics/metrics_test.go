package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestInstrumentCountsByStatus(t *testing.T) {
	m := New()
	handler := m.Instrument("GET /things", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("fail") != "" {
			w.WriteHeader(http.StatusConflict)
			return
		}
		_, _ = w.Write([]byte("ok"))
	})

	for _, target := range []string{"/things", "/things", "/things?fail=1"} {
		handler(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, target, nil))
	}

	require.Equal(t, 2.0, testutil.ToFloat64(m.requests.WithLabelValues("GET /things", http.MethodGet, "200")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.requests.WithLabelValues("GET /things", http.MethodGet, "409")))
}

func TestEngineSequenceGaugeIsScraped(t *testing.T) {
	m := New()
	sequence := uint64(7)
	require.NoError(t, m.WatchEngineSequence(func() uint64 { return sequence }))
	m.AddPublished(3)
	m.AddFinalized(0)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	require.True(t, strings.Contains(body, "dao_engine_sequence 7"), body)
	require.True(t, strings.Contains(body, "dao_outbox_published_total 3"), body)
	require.True(t, strings.Contains(body, "dao_proposals_finalized_total 0"), body)
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	called := false
	m.Instrument("x", func(http.ResponseWriter, *http.Request) { called = true })(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	m.AddPublished(1)
	m.WorkerFailed("relay")
	require.True(t, called)
	require.NoError(t, m.WatchEngineSequence(func() uint64 { return 1 }))
}
