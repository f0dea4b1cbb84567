package handlers

import (
	"net/http"

	"github.com/agrostats/faostat-api/api/metrics"
	"github.com/agrostats/faostat-api/api/query"
)

// Listing returns the default dataset endpoint: engine-compiled, filtered,
// paginated rows under the dataset's own key.
func (a *API) Listing(cfg *query.DatasetConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page, err := ParsePagination(r, DefaultLimit)
		if err != nil {
			writeError(w, a.Log, err)
			return
		}

		metrics.DatasetRequestsTotal.WithLabelValues(cfg.Name).Inc()

		res, err := a.Engine.List(r.Context(), cfg, r.URL.Query(), page)
		if err != nil {
			writeError(w, a.Log, err)
			return
		}

		rows := res.Rows
		if rows == nil {
			rows = []map[string]any{}
		}
		writeJSON(w, http.StatusOK, map[string]any{
			cfg.Name: rows,
			"total":  res.Total,
			"limit":  page.Limit,
			"offset": page.Offset,
		})
	}
}
