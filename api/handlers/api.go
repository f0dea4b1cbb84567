// Package handlers implements the HTTP surface of the FAOSTAT API: the
// generic dataset listing endpoint driven by the query engine, the
// dimension catalog endpoints, and the price analytics reshapers.
package handlers

import (
	"log/slog"

	"github.com/jonboulle/clockwork"

	"github.com/agrostats/faostat-api/api/catalog"
	"github.com/agrostats/faostat-api/api/query"
)

// API carries the process-lifetime dependencies shared by all handlers.
// Everything here is immutable after startup.
type API struct {
	Engine  *query.Engine
	Configs map[string]*query.DatasetConfig
	Codes   *catalog.Codes
	Log     *slog.Logger
	Clock   clockwork.Clock
}

func New(engine *query.Engine, configs map[string]*query.DatasetConfig,
	codes *catalog.Codes, log *slog.Logger) *API {
	return &API{
		Engine:  engine,
		Configs: configs,
		Codes:   codes,
		Log:     log,
		Clock:   clockwork.NewRealClock(),
	}
}

// Config returns the dataset configuration with the given name. Missing
// configs are a wiring bug; the router only mounts names returned by
// datasets.Build.
func (a *API) Config(name string) *query.DatasetConfig {
	return a.Configs[name]
}
