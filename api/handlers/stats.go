package handlers

import (
	"net/http"
	"strconv"

	"github.com/agrostats/faostat-api/api/catalog"
	"github.com/agrostats/faostat-api/api/datasets"
)

// SummaryStatsResponse reports per (item, area, unit) aggregates of official
// producer prices over a year window.
type SummaryStatsResponse struct {
	YearStart int              `json:"year_start,omitempty"`
	YearEnd   int              `json:"year_end,omitempty"`
	Groups    []map[string]any `json:"groups"`
	Total     int              `json:"total"`
}

// SummaryStats aggregates producer prices: count, avg, min, max, stddev per
// (item, area, unit).
func (a *API) SummaryStats(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	yearStart, yearEnd, err := parseYearWindow(q.Get("year_start"), q.Get("year_end"))
	if err != nil {
		writeError(w, a.Log, err)
		return
	}

	sql := `
		SELECT a.area_code, a.area, i.item_code, i.item, t.unit,
		       COUNT(t.value) AS observations,
		       AVG(t.value) AS avg_value,
		       MIN(t.value) AS min_value,
		       MAX(t.value) AS max_value,
		       STDDEV(t.value) AS stddev_value
		FROM prices t
		JOIN area_codes a ON t.area_code_id = a.id
		JOIN item_codes i ON t.item_code_id = i.id
		JOIN element_codes e ON t.element_code_id = e.id
		WHERE e.element_code = $1`
	args := []any{datasets.ElementCodeProducerPrice}

	if yearStart != 0 {
		args = append(args, yearStart)
		sql += " AND t.year >= $" + strconv.Itoa(len(args))
	}
	if yearEnd != 0 {
		args = append(args, yearEnd)
		sql += " AND t.year <= $" + strconv.Itoa(len(args))
	}
	if areaCode := q.Get("area_code"); areaCode != "" {
		if !a.Codes.IsValidAreaCode(areaCode) {
			writeError(w, a.Log, catalog.InvalidAreaCode(areaCode))
			return
		}
		args = append(args, areaCode)
		sql += " AND a.area_code = $" + strconv.Itoa(len(args))
	}
	if itemCode := q.Get("item_code"); itemCode != "" {
		if !a.Codes.IsValidItemCode(itemCode) {
			writeError(w, a.Log, catalog.InvalidItemCode(itemCode))
			return
		}
		args = append(args, itemCode)
		sql += " AND i.item_code = $" + strconv.Itoa(len(args))
	}

	sql += `
		GROUP BY a.area_code, a.area, i.item_code, i.item, t.unit
		ORDER BY a.area_code, i.item_code, t.unit`

	rows, err := a.Engine.Store().Select(r.Context(), sql, args...)
	if err != nil {
		writeError(w, a.Log, err)
		return
	}
	if rows == nil {
		rows = []map[string]any{}
	}
	writeJSON(w, http.StatusOK, SummaryStatsResponse{
		YearStart: yearStart, YearEnd: yearEnd, Groups: rows, Total: len(rows),
	})
}
