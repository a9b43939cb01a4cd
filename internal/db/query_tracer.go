package db

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/gitshopapp/gemcart/internal/logging"
)

const slowQueryThreshold = 250 * time.Millisecond

type queryStartContextKey struct{}

type queryStart struct {
	at    time.Time
	query string
}

// queryTracer logs every query at debug level and slow or failed queries at
// warn level, using the request logger when one is in context.
type queryTracer struct {
	logger *slog.Logger
	now    func() time.Time
}

func newQueryTracer(logger *slog.Logger) *queryTracer {
	return &queryTracer{logger: logger, now: time.Now}
}

func (t *queryTracer) TraceQueryStart(ctx context.Context, _ *pgx.Conn, data pgx.TraceQueryStartData) context.Context {
	return context.WithValue(ctx, queryStartContextKey{}, queryStart{
		at:    t.now(),
		query: normalizeQuery(data.SQL),
	})
}

func (t *queryTracer) TraceQueryEnd(ctx context.Context, _ *pgx.Conn, data pgx.TraceQueryEndData) {
	start, ok := ctx.Value(queryStartContextKey{}).(queryStart)
	if !ok {
		return
	}

	elapsed := t.now().Sub(start.at)
	logger := logging.FromContext(ctx, t.logger).With(
		"db.operation", queryOperation(start.query),
		"duration_ms", elapsed.Milliseconds(),
	)

	switch {
	case data.Err != nil:
		logger.Warn("query failed", "query", start.query, "error", data.Err)
	case elapsed >= slowQueryThreshold:
		logger.Warn("slow query", "query", start.query, "rows_affected", data.CommandTag.RowsAffected())
	default:
		logger.Debug("query completed", "rows_affected", data.CommandTag.RowsAffected())
	}
}

func normalizeQuery(query string) string {
	normalized := strings.TrimSpace(query)
	if normalized == "" {
		return "sql.query"
	}

	normalized = strings.Join(strings.Fields(normalized), " ")
	const maxLen = 512
	if len(normalized) > maxLen {
		return normalized[:maxLen]
	}
	return normalized
}

func queryOperation(query string) string {
	if query == "" {
		return ""
	}

	parts := strings.Fields(query)
	if len(parts) == 0 {
		return ""
	}
	return strings.ToUpper(parts[0])
}
