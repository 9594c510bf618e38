package observability

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAPIArea(t *testing.T) {
	tests := []struct {
		route string
		want  string
	}{
		{"/api/lists/{listID}/gifts/{giftID}/claim", "lists"},
		{"/api/connections/{connectionID}/accept", "connections"},
		{"/api/health", "health"},
		{"/health", "health"},
		{"/ws", "ws"},
		{"/", "root"},
	}
	for _, tt := range tests {
		t.Run(tt.route, func(t *testing.T) {
			assert.Equal(t, tt.want, apiArea(tt.route))
		})
	}
}

func TestStatusClass(t *testing.T) {
	assert.Equal(t, "2xx", statusClass(http.StatusCreated))
	assert.Equal(t, "4xx", statusClass(http.StatusConflict))
	assert.Equal(t, "5xx", statusClass(http.StatusServiceUnavailable))
	assert.Equal(t, "1xx", statusClass(http.StatusSwitchingProtocols))
}

func TestMiddlewareRecordsRoutePattern(t *testing.T) {
	metrics, err := NewHTTPMetrics()
	require.NoError(t, err)

	var seenRoute string
	r := chi.NewRouter()
	r.Use(TracingMiddleware("boone-test"))
	r.Use(MetricsMiddleware(metrics))
	r.Post("/api/lists/{listID}/gifts/{giftID}/claim", func(w http.ResponseWriter, req *http.Request) {
		seenRoute = routePattern(req)
		w.WriteHeader(http.StatusConflict)
		w.Write([]byte(`{"detail":"Gift is already claimed."}`))
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/lists/l1/gifts/g1/claim", nil))

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "/api/lists/{listID}/gifts/{giftID}/claim", seenRoute)
}

func TestStatusRecorder(t *testing.T) {
	rw := newStatusRecorder(httptest.NewRecorder())
	assert.Equal(t, http.StatusOK, rw.status)

	rw.WriteHeader(http.StatusForbidden)
	n, err := rw.Write([]byte("denied"))
	require.NoError(t, err)

	assert.Equal(t, http.StatusForbidden, rw.status)
	assert.Equal(t, int64(n), rw.size)

	_, _, err = rw.Hijack()
	assert.Error(t, err)
}
