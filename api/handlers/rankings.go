package handlers

import (
	"net/http"
	"strconv"

	"github.com/agrostats/faostat-api/api/catalog"
	"github.com/agrostats/faostat-api/api/datasets"
	"github.com/agrostats/faostat-api/api/query"
)

const (
	defaultRankingLimit = 10
	maxRankingLimit     = 100
	volatilityYears     = 5
	volatilityMinYears  = 3
)

// RankingsResponse lists the ranked (item, area) pairs for one ranking type.
type RankingsResponse struct {
	Type     string           `json:"type"`
	Year     int              `json:"year"`
	Rankings []map[string]any `json:"rankings"`
	Total    int              `json:"total"`
}

// MostExpensive ranks official producer prices for a year, descending.
func (a *API) MostExpensive(w http.ResponseWriter, r *http.Request) {
	a.priceRanking(w, r, "most_expensive", "DESC")
}

// LeastExpensive ranks official producer prices for a year, ascending.
func (a *API) LeastExpensive(w http.ResponseWriter, r *http.Request) {
	a.priceRanking(w, r, "least_expensive", "ASC")
}

func (a *API) priceRanking(w http.ResponseWriter, r *http.Request, rankingType, direction string) {
	q := r.URL.Query()

	year, err := parseRequiredYear(q.Get("year"))
	if err != nil {
		writeError(w, a.Log, err)
		return
	}
	limit, err := parseRankingLimit(q.Get("limit"))
	if err != nil {
		writeError(w, a.Log, err)
		return
	}

	sql := `
		SELECT a.area_code, a.area, i.item_code, i.item, t.year, t.unit, t.value
		FROM prices t
		JOIN area_codes a ON t.area_code_id = a.id
		JOIN item_codes i ON t.item_code_id = i.id
		JOIN element_codes e ON t.element_code_id = e.id
		WHERE e.element_code = $1 AND t.year = $2`
	args := []any{datasets.ElementCodeProducerPrice, year}

	if areaCode := q.Get("area_code"); areaCode != "" {
		if !a.Codes.IsValidAreaCode(areaCode) {
			writeError(w, a.Log, catalog.InvalidAreaCode(areaCode))
			return
		}
		sql += " AND a.area_code = $3"
		args = append(args, areaCode)
	}
	sql += " ORDER BY t.value " + direction + ", a.area_code, i.item_code LIMIT " + strconv.Itoa(limit)

	rows, err := a.Engine.Store().Select(r.Context(), sql, args...)
	if err != nil {
		writeError(w, a.Log, err)
		return
	}
	if rows == nil {
		rows = []map[string]any{}
	}
	writeJSON(w, http.StatusOK, RankingsResponse{
		Type: rankingType, Year: year, Rankings: rows, Total: len(rows),
	})
}

// MostVolatile ranks (item, area) pairs by coefficient of variation over the
// five years ending at the requested year. Pairs with fewer than three
// observations or a zero mean are dropped.
func (a *API) MostVolatile(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	year, err := parseRequiredYear(q.Get("year"))
	if err != nil {
		writeError(w, a.Log, err)
		return
	}
	limit, err := parseRankingLimit(q.Get("limit"))
	if err != nil {
		writeError(w, a.Log, err)
		return
	}

	rows, err := a.Engine.Store().Select(r.Context(), `
		SELECT a.area_code, a.area, i.item_code, i.item,
		       COUNT(t.value) AS observations,
		       AVG(t.value) AS avg_price,
		       STDDEV(t.value) AS stddev_price,
		       STDDEV(t.value) / AVG(t.value) AS coefficient_of_variation
		FROM prices t
		JOIN area_codes a ON t.area_code_id = a.id
		JOIN item_codes i ON t.item_code_id = i.id
		JOIN element_codes e ON t.element_code_id = e.id
		WHERE e.element_code = $1 AND t.year BETWEEN $2 AND $3
		GROUP BY a.area_code, a.area, i.item_code, i.item
		HAVING COUNT(t.value) >= $4 AND AVG(t.value) <> 0
		ORDER BY STDDEV(t.value) / AVG(t.value) DESC, a.area_code, i.item_code
		LIMIT `+strconv.Itoa(limit),
		datasets.ElementCodeProducerPrice, year-volatilityYears+1, year, volatilityMinYears)
	if err != nil {
		writeError(w, a.Log, err)
		return
	}
	if rows == nil {
		rows = []map[string]any{}
	}
	writeJSON(w, http.StatusOK, RankingsResponse{
		Type: "most_volatile", Year: year, Rankings: rows, Total: len(rows),
	})
}

func parseRequiredYear(raw string) (int, error) {
	if raw == "" {
		return 0, query.Validation("missing_parameter", "year is required")
	}
	year, err := strconv.Atoi(raw)
	if err != nil {
		return 0, query.Validation("invalid_parameter", "year must be an integer, got %q", raw)
	}
	return year, nil
}

func parseRankingLimit(raw string) (int, error) {
	if raw == "" {
		return defaultRankingLimit, nil
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit <= 0 {
		return 0, query.BadRequest("limit must be a positive integer, got %q", raw)
	}
	if limit > maxRankingLimit {
		return 0, query.Validation("limit_over_cap", "limit must be at most %d", maxRankingLimit)
	}
	return limit, nil
}
