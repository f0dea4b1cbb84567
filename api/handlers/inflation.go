package handlers

import (
	"net/http"
	"strconv"

	"github.com/agrostats/faostat-api/api/datasets"
	"github.com/agrostats/faostat-api/api/query"
)

// InflationEntry is the computed price change for one (item, area) pair.
type InflationEntry struct {
	AreaCode      string  `json:"area_code"`
	Area          string  `json:"area"`
	ItemCode      string  `json:"item_code"`
	Item          string  `json:"item"`
	BasePrice     float64 `json:"base_price"`
	CurrentPrice  float64 `json:"current_price"`
	InflationRate float64 `json:"inflation_rate"`
}

// InflationResponse reports producer price inflation between two years.
type InflationResponse struct {
	CurrentYear int              `json:"current_year"`
	BaseYear    int              `json:"base_year"`
	Entries     []InflationEntry `json:"entries"`
	Total       int              `json:"total"`
}

// Inflation computes per (item, area) producer price inflation between
// current_year - years_back and current_year, ordered by absolute rate.
// Pairs missing either observation are dropped, as are zero base prices.
func (a *API) Inflation(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	currentYear, err := parseRequiredYear(q.Get("current_year"))
	if err != nil {
		if q.Get("current_year") == "" {
			err = query.Validation("missing_parameter", "current_year is required")
		}
		writeError(w, a.Log, err)
		return
	}

	yearsBack := 1
	if raw := q.Get("years_back"); raw != "" {
		yearsBack, err = strconv.Atoi(raw)
		if err != nil || yearsBack <= 0 {
			writeError(w, a.Log, query.Validation("invalid_parameter",
				"years_back must be a positive integer"))
			return
		}
	}
	limit, err := parseRankingLimit(q.Get("limit"))
	if err != nil {
		writeError(w, a.Log, err)
		return
	}

	baseYear := currentYear - yearsBack
	rows, err := a.Engine.Store().Select(r.Context(), `
		SELECT a.area_code, a.area, i.item_code, i.item,
		       base.value AS base_price,
		       cur.value AS current_price,
		       (cur.value - base.value) / base.value * 100 AS inflation_rate
		FROM prices cur
		JOIN prices base
		  ON base.area_code_id = cur.area_code_id
		 AND base.item_code_id = cur.item_code_id
		 AND base.element_code_id = cur.element_code_id
		JOIN area_codes a ON cur.area_code_id = a.id
		JOIN item_codes i ON cur.item_code_id = i.id
		JOIN element_codes e ON cur.element_code_id = e.id
		WHERE e.element_code = $1
		  AND cur.year = $2
		  AND base.year = $3
		  AND base.value <> 0
		ORDER BY ABS((cur.value - base.value) / base.value * 100) DESC, a.area_code, i.item_code
		LIMIT `+strconv.Itoa(limit),
		datasets.ElementCodeProducerPrice, currentYear, baseYear)
	if err != nil {
		writeError(w, a.Log, err)
		return
	}

	resp := InflationResponse{
		CurrentYear: currentYear,
		BaseYear:    baseYear,
		Entries:     []InflationEntry{},
	}
	for _, row := range rows {
		base, _ := asFloat(row["base_price"])
		current, _ := asFloat(row["current_price"])
		rate, _ := asFloat(row["inflation_rate"])
		resp.Entries = append(resp.Entries, InflationEntry{
			AreaCode:      asString(row["area_code"]),
			Area:          asString(row["area"]),
			ItemCode:      asString(row["item_code"]),
			Item:          asString(row["item"]),
			BasePrice:     base,
			CurrentPrice:  current,
			InflationRate: round2(rate),
		})
	}
	resp.Total = len(resp.Entries)
	writeJSON(w, http.StatusOK, resp)
}
