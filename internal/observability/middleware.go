package observability

import (
	"bufio"
	"errors"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/boonegifts/server/observability"

// HTTPMetrics holds the API's request instruments
type HTTPMetrics struct {
	requests     metric.Int64Counter
	duration     metric.Float64Histogram
	responseSize metric.Int64Histogram
	inFlight     metric.Int64UpDownCounter
}

// NewHTTPMetrics registers the request instruments on the global meter
func NewHTTPMetrics() (*HTTPMetrics, error) {
	meter := otel.Meter(instrumentationName)
	m := &HTTPMetrics{}

	var err error
	if m.requests, err = meter.Int64Counter("boone.http.requests",
		metric.WithDescription("API requests by area, route and status class"),
		metric.WithUnit("{request}")); err != nil {
		return nil, err
	}
	if m.duration, err = meter.Float64Histogram("boone.http.duration",
		metric.WithDescription("API request latency"),
		metric.WithUnit("ms")); err != nil {
		return nil, err
	}
	if m.responseSize, err = meter.Int64Histogram("boone.http.response.size",
		metric.WithDescription("API response body size"),
		metric.WithUnit("By")); err != nil {
		return nil, err
	}
	if m.inFlight, err = meter.Int64UpDownCounter("boone.http.in_flight",
		metric.WithDescription("API requests being served"),
		metric.WithUnit("{request}")); err != nil {
		return nil, err
	}
	return m, nil
}

// statusRecorder remembers the status and body size a handler produced
type statusRecorder struct {
	http.ResponseWriter
	status int
	size   int64
}

func newStatusRecorder(w http.ResponseWriter) *statusRecorder {
	return &statusRecorder{ResponseWriter: w, status: http.StatusOK}
}

func (rw *statusRecorder) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *statusRecorder) Write(b []byte) (int, error) {
	n, err := rw.ResponseWriter.Write(b)
	rw.size += int64(n)
	return n, err
}

func (rw *statusRecorder) Flush() {
	if f, ok := rw.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// Hijack lets /ws upgrade through the recorder
func (rw *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := rw.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("response writer does not support hijacking")
	}
	rw.status = http.StatusSwitchingProtocols
	return h.Hijack()
}

// routePattern returns the matched chi pattern, or the raw path outside a chi router
func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if p := rctx.RoutePattern(); p != "" {
			return p
		}
	}
	return r.URL.Path
}

// apiArea names the resource family a route belongs to: "lists" for
// /api/lists/{listID}/gifts, "ws" for /ws
func apiArea(route string) string {
	parts := strings.Split(strings.Trim(route, "/"), "/")
	if len(parts) > 1 && parts[0] == "api" {
		return parts[1]
	}
	if parts[0] == "" {
		return "root"
	}
	return parts[0]
}

func statusClass(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	case status >= 200:
		return "2xx"
	}
	return "1xx"
}

// Health checks and websocket sessions would swamp the latency histogram
func excludedFromLatency(area string) bool {
	return area == "health" || area == "ws"
}

// TracingMiddleware opens a server span per request, continuing any trace
// the caller propagated. Only 5xx responses mark the span as failed; denials
// and claim conflicts are ordinary outcomes.
func TracingMiddleware(serviceName string) func(http.Handler) http.Handler {
	tracer := otel.Tracer(instrumentationName)
	propagator := otel.GetTextMapPropagator()

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := propagator.Extract(r.Context(), propagation.HeaderCarrier(r.Header))
			ctx, span := tracer.Start(ctx, r.Method+" "+r.URL.Path,
				trace.WithSpanKind(trace.SpanKindServer),
				trace.WithAttributes(
					attribute.String("service.name", serviceName),
					attribute.String("http.method", r.Method),
					attribute.String("http.target", r.URL.Path),
					attribute.String("http.scheme", requestScheme(r)),
					attribute.String("http.user_agent", r.UserAgent()),
					attribute.String("net.peer.ip", r.RemoteAddr),
				),
			)
			defer span.End()

			if id := chimw.GetReqID(r.Context()); id != "" {
				span.SetAttributes(attribute.String("http.request_id", id))
			}
			propagator.Inject(ctx, propagation.HeaderCarrier(w.Header()))

			rw := newStatusRecorder(w)
			next.ServeHTTP(rw, r.WithContext(ctx))

			route := routePattern(r)
			span.SetName(r.Method + " " + route)
			span.SetAttributes(
				attribute.String("http.route", route),
				attribute.String("api.area", apiArea(route)),
				attribute.Int("http.status_code", rw.status),
				attribute.Int64("http.response_content_length", rw.size),
			)
			if rw.status >= 500 {
				span.SetStatus(codes.Error, http.StatusText(rw.status))
			} else {
				span.SetStatus(codes.Ok, "")
			}
		})
	}
}

// MetricsMiddleware counts requests and records latency per area and route
func MetricsMiddleware(metrics *HTTPMetrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			method := metric.WithAttributes(attribute.String("http.method", r.Method))

			metrics.inFlight.Add(r.Context(), 1, method)
			defer metrics.inFlight.Add(r.Context(), -1, method)

			rw := newStatusRecorder(w)
			next.ServeHTTP(rw, r)

			route := routePattern(r)
			area := apiArea(route)
			attrs := metric.WithAttributes(
				attribute.String("http.method", r.Method),
				attribute.String("http.route", route),
				attribute.String("api.area", area),
				attribute.String("http.status_class", statusClass(rw.status)),
			)
			metrics.requests.Add(r.Context(), 1, attrs)
			metrics.responseSize.Record(r.Context(), rw.size, attrs)
			if !excludedFromLatency(area) {
				metrics.duration.Record(r.Context(), float64(time.Since(start).Microseconds())/1000, attrs)
			}
		})
	}
}

func requestScheme(r *http.Request) string {
	if r.TLS != nil {
		return "https"
	}
	if scheme := r.Header.Get("X-Forwarded-Proto"); scheme != "" {
		return scheme
	}
	return "http"
}
