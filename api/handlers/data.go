package handlers

import (
	"fmt"
	"net/http"
	"sort"

	"github.com/agrostats/faostat-api/api/catalog"
)

// DimensionListing serves a reference table: natural codes and display
// names, with optional case-insensitive substring search on the display
// column.
func (a *API) DimensionListing(d catalog.Dimension) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page, err := ParsePagination(r, DefaultLimit)
		if err != nil {
			writeError(w, a.Log, err)
			return
		}

		var (
			where string
			args  []any
		)
		if search := r.URL.Query().Get("search"); search != "" {
			where = fmt.Sprintf(" WHERE %s ILIKE $1", d.DisplayColumn)
			args = append(args, "%"+search+"%")
		}

		sql := fmt.Sprintf("SELECT %s, %s FROM %s%s ORDER BY %s LIMIT $%d OFFSET $%d",
			d.CodeColumn, d.DisplayColumn, d.Table, where, d.CodeColumn, len(args)+1, len(args)+2)
		rows, err := a.Engine.Store().Select(r.Context(), sql, append(args, page.Limit, page.Offset)...)
		if err != nil {
			writeError(w, a.Log, err)
			return
		}

		countSQL := fmt.Sprintf("SELECT COUNT(*) AS total FROM %s%s", d.Table, where)
		countRows, err := a.Engine.Store().Select(r.Context(), countSQL, args...)
		if err != nil {
			writeError(w, a.Log, err)
			return
		}
		total := 0
		if len(countRows) > 0 {
			total = asInt(countRows[0]["total"])
		}

		if rows == nil {
			rows = []map[string]any{}
		}
		writeJSON(w, http.StatusOK, map[string]any{
			d.Table:  rows,
			"total":  total,
			"limit":  page.Limit,
			"offset": page.Offset,
		})
	}
}

// DatasetSummary describes one dataset in the overview response.
type DatasetSummary struct {
	Name       string   `json:"name"`
	Table      string   `json:"table"`
	Rows       int      `json:"rows"`
	Parameters []string `json:"parameters"`
	Fields     []string `json:"fields"`
}

// OverviewResponse lists every configured dataset with its row count and
// recognized parameters.
type OverviewResponse struct {
	Datasets      []DatasetSummary `json:"datasets"`
	TotalDatasets int              `json:"total_datasets"`
}

// Overview reports the configured datasets and their sizes.
func (a *API) Overview(w http.ResponseWriter, r *http.Request) {
	names := make([]string, 0, len(a.Configs))
	for name := range a.Configs {
		names = append(names, name)
	}
	sort.Strings(names)

	resp := OverviewResponse{TotalDatasets: len(names)}
	for _, name := range names {
		cfg := a.Configs[name]
		rows, err := a.Engine.Store().Select(r.Context(),
			fmt.Sprintf("SELECT COUNT(*) AS total FROM %s", cfg.Table))
		if err != nil {
			writeError(w, a.Log, err)
			return
		}
		count := 0
		if len(rows) > 0 {
			count = asInt(rows[0]["total"])
		}
		resp.Datasets = append(resp.Datasets, DatasetSummary{
			Name:       cfg.Name,
			Table:      cfg.Table,
			Rows:       count,
			Parameters: cfg.ParamFields(),
			Fields:     cfg.DataFields,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}
