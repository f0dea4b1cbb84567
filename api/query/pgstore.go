package query

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/agrostats/faostat-api/api/metrics"
)

// DefaultQueryTimeout bounds every statement sent through PgStore.
const DefaultQueryTimeout = 30 * time.Second

// PgStore adapts a pgx connection pool to the engine's Store interface,
// scanning result rows into generic maps keyed by column name.
type PgStore struct {
	pool    *pgxpool.Pool
	timeout time.Duration
}

func NewPgStore(pool *pgxpool.Pool, timeout time.Duration) *PgStore {
	if timeout <= 0 {
		timeout = DefaultQueryTimeout
	}
	return &PgStore{pool: pool, timeout: timeout}
}

func (s *PgStore) Select(ctx context.Context, sql string, args ...any) (rowsOut []map[string]any, errOut error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	defer func() { metrics.RecordStoreQuery(time.Since(start), errOut) }()

	rows, err := s.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to execute query: %w", err)
	}
	defer rows.Close()

	fields := rows.FieldDescriptions()
	var out []map[string]any
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		row := make(map[string]any, len(fields))
		for i, fd := range fields {
			row[fd.Name] = values[i]
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}
	return out, nil
}
