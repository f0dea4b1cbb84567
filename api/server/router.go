package server

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/agrostats/faostat-api/api/catalog"
	"github.com/agrostats/faostat-api/api/handlers"
	"github.com/agrostats/faostat-api/api/metrics"
)

func (s *Server) router(api *handlers.API) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.corsOrigins(),
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))
	r.Use(metrics.Middleware)

	r.Get("/healthz", s.healthz)
	r.Get("/readyz", s.readyz)
	r.Get("/version", s.version)
	r.Handle("/metrics", promhttp.Handler())

	r.Route(s.cfg.VersionPrefix, func(r chi.Router) {
		r.Use(handlers.RateLimitMiddleware(handlers.QueryRateLimiter))

		r.Route("/data", func(r chi.Router) {
			r.Get("/overview", api.Overview)
			for _, d := range []string{"area", "item", "element", "flag"} {
				dim, ok := catalog.DimensionByName(d)
				if !ok {
					continue
				}
				h := api.DimensionListing(dim)
				r.Get("/"+dim.Name+"s", h)
				// keep the table name as an alias where it differs
				if dim.Table != dim.Name+"s" {
					r.Get("/"+dim.Table, h)
				}
			}
		})

		r.Route("/prices", func(r chi.Router) {
			s.listing(r, api, "/prices", "prices")
			r.Get("/multi-line/price-data", api.MultiLinePriceData)
			r.Get("/multi-line/available-areas", api.MultiLineAvailableAreas)
			r.Get("/rankings/most-expensive", api.MostExpensive)
			r.Get("/rankings/least-expensive", api.LeastExpensive)
			r.Get("/rankings/most-volatile", api.MostVolatile)
			r.Get("/inflation", api.Inflation)
			r.Get("/summary-stats", api.SummaryStats)
			r.Get("/anomalies", api.Anomalies)
		})

		r.Route("/trade", func(r chi.Router) {
			s.listing(r, api, "/trade_crops_livestock", "trade_crops_livestock")
			s.listing(r, api, "/trade_crops_livestock_indicators", "trade_crops_livestock_indicators")
		})
		r.Route("/food", func(r chi.Router) {
			s.listing(r, api, "/food_balance_sheets", "food_balance_sheets")
			s.listing(r, api, "/food_balance_sheets_historic", "food_balance_sheets_historic")
		})
		r.Route("/employment", func(r chi.Router) {
			s.listing(r, api, "/employment_indicators_rural", "employment_indicators_rural")
		})
		r.Route("/macro", func(r chi.Router) {
			s.listing(r, api, "/exchange_rates", "exchange_rates")
			s.listing(r, api, "/food_price_inflation", "food_price_inflation")
			s.listing(r, api, "/investment_machinery", "investment_machinery")
		})
		r.Route("/water", func(r chi.Router) {
			s.listing(r, api, "/aquastat", "aquastat")
		})
		r.Route("/surveys", func(r chi.Router) {
			s.listing(r, api, "/individual_quantitative_dietary_data", "individual_quantitative_dietary_data")
		})
	})

	return r
}

// listing mounts a declarative dataset listing route. Unknown dataset
// names are a wiring bug, caught at boot by datasets.Build, so a nil
// config here panics on first request rather than silently 404ing.
func (s *Server) listing(r chi.Router, api *handlers.API, pattern, dataset string) {
	cfg := api.Config(dataset)
	if cfg == nil {
		s.log.Error("dataset not registered", "dataset", dataset)
		return
	}
	r.Get(pattern, api.Listing(cfg))
}

func (s *Server) corsOrigins() []string {
	if len(s.cfg.CORSOrigins) == 0 {
		return []string{"*"}
	}
	return s.cfg.CORSOrigins
}

func (s *Server) version(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(s.cfg.VersionInfo)
}
