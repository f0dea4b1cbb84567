package query

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
)

// Store is the minimal surface the engine needs from the relational store.
// Implemented by PgStore for production and by stubs in tests.
type Store interface {
	Select(ctx context.Context, sql string, args ...any) ([]map[string]any, error)
}

// Result is a page of projected rows plus the unpaginated total.
type Result struct {
	Rows  []map[string]any
	Total int64
}

// Engine executes compiled dataset queries. It is stateless per request;
// the configurations it consumes are immutable after startup.
type Engine struct {
	store Store
	log   *slog.Logger
}

func NewEngine(store Store, log *slog.Logger) *Engine {
	return &Engine{store: store, log: log}
}

// Store exposes the underlying store for reshapers that issue their own
// aggregate statements.
func (e *Engine) Store() Store {
	return e.store
}

// List validates params against cfg, compiles the statement pair and runs
// both against the store. Client errors pass through unwrapped; store
// failures are wrapped without exposing SQL.
func (e *Engine) List(ctx context.Context, cfg *DatasetConfig, params url.Values, page Page) (*Result, error) {
	compiled, err := Compile(cfg, params, page)
	if err != nil {
		return nil, err
	}

	rows, err := e.store.Select(ctx, compiled.SelectSQL, compiled.SelectArgs...)
	if err != nil {
		return nil, fmt.Errorf("dataset %s select: %w", cfg.Name, err)
	}

	total, err := e.count(ctx, cfg, compiled)
	if err != nil {
		return nil, err
	}

	e.log.Debug("dataset query",
		"dataset", cfg.Name, "rows", len(rows), "total", total, "joins", compiled.JoinCount)
	return &Result{Rows: rows, Total: total}, nil
}

func (e *Engine) count(ctx context.Context, cfg *DatasetConfig, compiled *Compiled) (int64, error) {
	rows, err := e.store.Select(ctx, compiled.CountSQL, compiled.CountArgs...)
	if err != nil {
		return 0, fmt.Errorf("dataset %s count: %w", cfg.Name, err)
	}
	if len(rows) == 0 {
		return 0, nil
	}
	for _, v := range rows[0] {
		switch n := v.(type) {
		case int64:
			return n, nil
		case int:
			return int64(n), nil
		case int32:
			return int64(n), nil
		}
	}
	return 0, fmt.Errorf("dataset %s count: unexpected result shape", cfg.Name)
}
