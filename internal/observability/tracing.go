package observability

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// StartSpan starts a new span from context
func StartSpan(ctx context.Context, name string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	return otel.Tracer(instrumentationName).Start(ctx, name, opts...)
}

// StartServiceSpan starts a span for service operations
func StartServiceSpan(ctx context.Context, service, operation string) (context.Context, trace.Span) {
	return StartSpan(ctx, fmt.Sprintf("%s.%s", service, operation),
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("service.component", service),
			attribute.String("service.operation", operation),
		),
	)
}

// RecordError records an error on the span
func RecordError(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
}

// SetSuccess marks the span as successful
func SetSuccess(span trace.Span) {
	span.SetStatus(codes.Ok, "")
}

// AddEvent adds an event to the span
func AddEvent(span trace.Span, name string, attrs ...attribute.KeyValue) {
	span.AddEvent(name, trace.WithAttributes(attrs...))
}

// DatabaseMetrics holds database-related metrics
type DatabaseMetrics struct {
	queryDuration metric.Float64Histogram
	queryCount    metric.Int64Counter
	errorCount    metric.Int64Counter
}

// NewDatabaseMetrics creates database metrics instruments
func NewDatabaseMetrics() (*DatabaseMetrics, error) {
	meter := otel.Meter(instrumentationName)

	queryDuration, err := meter.Float64Histogram(
		"db.query.duration",
		metric.WithDescription("Database query duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	queryCount, err := meter.Int64Counter(
		"db.query.count",
		metric.WithDescription("Total number of database queries"),
		metric.WithUnit("{queries}"),
	)
	if err != nil {
		return nil, err
	}

	errorCount, err := meter.Int64Counter(
		"db.error.count",
		metric.WithDescription("Total number of database errors"),
		metric.WithUnit("{errors}"),
	)
	if err != nil {
		return nil, err
	}

	return &DatabaseMetrics{
		queryDuration: queryDuration,
		queryCount:    queryCount,
		errorCount:    errorCount,
	}, nil
}

// RecordQuery records metrics for one statement
func (m *DatabaseMetrics) RecordQuery(ctx context.Context, system, operation string, duration time.Duration, err error) {
	attrs := []attribute.KeyValue{
		attribute.String("db.system", system),
		attribute.String("db.operation", operation),
	}

	m.queryCount.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.queryDuration.Record(ctx, float64(duration.Milliseconds()), metric.WithAttributes(attrs...))

	if err != nil {
		m.errorCount.Add(ctx, 1, metric.WithAttributes(attrs...))
	}
}

// Executor is the query surface shared by *sql.DB and *sql.Tx
type Executor interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// TraceDB wraps an Executor with spans and query metrics
type TraceDB struct {
	ex      Executor
	system  string
	metrics *DatabaseMetrics
}

// NewTraceDB wraps ex. system is the db.system attribute value.
func NewTraceDB(ex Executor, system string, metrics *DatabaseMetrics) *TraceDB {
	return &TraceDB{ex: ex, system: system, metrics: metrics}
}

func (t *TraceDB) start(ctx context.Context, name, query string) (context.Context, trace.Span) {
	return StartSpan(ctx, name,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("db.system", t.system),
			attribute.String("db.statement", truncateQuery(query)),
		),
	)
}

func (t *TraceDB) record(ctx context.Context, query string, start time.Time, err error) {
	if t.metrics != nil {
		t.metrics.RecordQuery(ctx, t.system, statementVerb(query), time.Since(start), err)
	}
}

// QueryContext executes a query with tracing
func (t *TraceDB) QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error) {
	ctx, span := t.start(ctx, "DB Query", query)
	defer span.End()

	start := time.Now()
	rows, err := t.ex.QueryContext(ctx, query, args...)
	t.record(ctx, query, start, err)

	if err != nil {
		RecordError(span, err)
	} else {
		SetSuccess(span)
	}
	return rows, err
}

// ExecContext executes a statement with tracing
func (t *TraceDB) ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	ctx, span := t.start(ctx, "DB Exec", query)
	defer span.End()

	start := time.Now()
	result, err := t.ex.ExecContext(ctx, query, args...)
	t.record(ctx, query, start, err)

	if err != nil {
		RecordError(span, err)
	} else {
		SetSuccess(span)
		if rowsAffected, raErr := result.RowsAffected(); raErr == nil {
			span.SetAttributes(attribute.Int64("db.rows_affected", rowsAffected))
		}
	}
	return result, err
}

// QueryRowContext executes a single-row query with tracing. The span ends
// before the row is scanned; sql.Row defers its error until Scan.
func (t *TraceDB) QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row {
	ctx, span := t.start(ctx, "DB QueryRow", query)
	defer span.End()

	start := time.Now()
	row := t.ex.QueryRowContext(ctx, query, args...)
	t.record(ctx, query, start, row.Err())
	return row
}

func statementVerb(query string) string {
	fields := strings.Fields(query)
	if len(fields) == 0 {
		return ""
	}
	return strings.ToUpper(fields[0])
}

func truncateQuery(query string) string {
	if len(query) > 500 {
		return query[:500] + "..."
	}
	return query
}

// BusinessMetrics holds domain counters
type BusinessMetrics struct {
	giftClaims   metric.Int64Counter
	connections  metric.Int64Counter
	disconnects  metric.Int64Counter
	authAttempts metric.Int64Counter
	invitesSent  metric.Int64Counter
}

// NewBusinessMetrics creates business metrics instruments
func NewBusinessMetrics() (*BusinessMetrics, error) {
	meter := otel.Meter(instrumentationName)

	giftClaims, err := meter.Int64Counter(
		"boone.gift.claims",
		metric.WithDescription("Claim and unclaim attempts by outcome"),
		metric.WithUnit("{claims}"),
	)
	if err != nil {
		return nil, err
	}

	connections, err := meter.Int64Counter(
		"boone.connection.transitions",
		metric.WithDescription("Connection requests and acceptances"),
		metric.WithUnit("{transitions}"),
	)
	if err != nil {
		return nil, err
	}

	disconnects, err := meter.Int64Counter(
		"boone.connection.cascade_rows",
		metric.WithDescription("Rows touched by disconnect cascades"),
		metric.WithUnit("{rows}"),
	)
	if err != nil {
		return nil, err
	}

	authAttempts, err := meter.Int64Counter(
		"boone.auth.attempts",
		metric.WithDescription("Total number of authentication attempts"),
		metric.WithUnit("{attempts}"),
	)
	if err != nil {
		return nil, err
	}

	invitesSent, err := meter.Int64Counter(
		"boone.invite.emails",
		metric.WithDescription("Invite emails by outcome"),
		metric.WithUnit("{emails}"),
	)
	if err != nil {
		return nil, err
	}

	return &BusinessMetrics{
		giftClaims:   giftClaims,
		connections:  connections,
		disconnects:  disconnects,
		authAttempts: authAttempts,
		invitesSent:  invitesSent,
	}, nil
}

// The Record methods accept a nil receiver so callers can run without metrics.

// RecordClaim records a claim or unclaim attempt
func (m *BusinessMetrics) RecordClaim(ctx context.Context, action string, success bool) {
	if m == nil {
		return
	}
	m.giftClaims.Add(ctx, 1, metric.WithAttributes(
		attribute.String("action", action),
		attribute.Bool("success", success),
	))
}

// RecordConnection records a connection state transition
func (m *BusinessMetrics) RecordConnection(ctx context.Context, transition string) {
	if m == nil {
		return
	}
	m.connections.Add(ctx, 1, metric.WithAttributes(attribute.String("transition", transition)))
}

// RecordCascade records rows touched by a disconnect cascade
func (m *BusinessMetrics) RecordCascade(ctx context.Context, gifts, shares, items int64) {
	if m == nil {
		return
	}
	m.disconnects.Add(ctx, gifts, metric.WithAttributes(attribute.String("kind", "gift_unclaimed")))
	m.disconnects.Add(ctx, shares, metric.WithAttributes(attribute.String("kind", "share_revoked")))
	m.disconnects.Add(ctx, items, metric.WithAttributes(attribute.String("kind", "collection_item_removed")))
}

// RecordAuthAttempt records an authentication attempt
func (m *BusinessMetrics) RecordAuthAttempt(ctx context.Context, method string, success bool) {
	if m == nil {
		return
	}
	m.authAttempts.Add(ctx, 1, metric.WithAttributes(
		attribute.String("auth_method", method),
		attribute.Bool("success", success),
	))
}

// RecordInviteEmail records an invite email delivery attempt
func (m *BusinessMetrics) RecordInviteEmail(ctx context.Context, success bool) {
	if m == nil {
		return
	}
	m.invitesSent.Add(ctx, 1, metric.WithAttributes(attribute.Bool("success", success)))
}
