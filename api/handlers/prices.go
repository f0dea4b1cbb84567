package handlers

import (
	"net/http"
	"net/url"
	"strconv"

	"github.com/agrostats/faostat-api/api/datasets"
	"github.com/agrostats/faostat-api/api/query"
)

const (
	minItemCode = 10
	maxItemCode = 9999
	maxAreas    = 5

	kgPerTonne = 1000.0
	lbPerTonne = 2204.6

	// currencyNote warns consumers that historical redenominations are not
	// corrected in local-currency series.
	currencyNote = "Prices are reported as stored; historical currency redenominations are not normalized."
)

// PricePoint is one observation on a multi-line chart, with unit
// conversions pre-computed for the client.
type PricePoint struct {
	Year       int     `json:"year"`
	PricePerT  float64 `json:"price_per_t"`
	PricePerKg float64 `json:"price_per_kg"`
	PricePerLb float64 `json:"price_per_lb"`
}

// PriceLine is the per-area series of a multi-line chart.
type PriceLine struct {
	AreaName   string       `json:"area_name"`
	AreaCode   string       `json:"area_code"`
	Currency   string       `json:"currency"`
	DataPoints []PricePoint `json:"data_points"`
}

// MultiLineSummary aggregates the chart for axis scaling.
type MultiLineSummary struct {
	MinPrice        float64 `json:"min_price"`
	MaxPrice        float64 `json:"max_price"`
	MinYear         int     `json:"min_year"`
	MaxYear         int     `json:"max_year"`
	AreasFound      int     `json:"areas_found"`
	TotalDataPoints int     `json:"total_data_points"`
}

// ItemRef identifies the item a chart was built for.
type ItemRef struct {
	Code int    `json:"code"`
	Name string `json:"name"`
}

// MultiLineResponse is the reshaped payload of the price-data endpoint.
type MultiLineResponse struct {
	Item    ItemRef               `json:"item"`
	Lines   map[string]*PriceLine `json:"lines"`
	Summary MultiLineSummary      `json:"summary"`
	Note    string                `json:"note"`
}

// MultiLinePriceData serves producer price series for one item across up to
// five areas, grouped by area for charting. Only official producer prices
// (element 5532, flag A) are included.
func (a *API) MultiLinePriceData(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	itemCode, err := parseItemCode(q.Get("item_code"))
	if err != nil {
		writeError(w, a.Log, err)
		return
	}
	areaCodes := q["area_codes"]
	if len(areaCodes) == 0 {
		writeError(w, a.Log, query.Validation("missing_parameter", "At least one area_code is required"))
		return
	}
	if len(areaCodes) > maxAreas {
		writeError(w, a.Log, query.Validation("too_many_areas", "Maximum %d area_codes allowed", maxAreas))
		return
	}
	yearStart, yearEnd, err := parseYearWindow(q.Get("year_start"), q.Get("year_end"))
	if err != nil {
		writeError(w, a.Log, err)
		return
	}

	params := url.Values{
		"item_code":    {strconv.Itoa(itemCode)},
		"area_code":    areaCodes,
		"element_code": {datasets.ElementCodeProducerPrice},
		"flag":         {datasets.FlagOfficialFigure},
	}
	if yearStart != 0 {
		params.Set("year_min", strconv.Itoa(yearStart))
	}
	if yearEnd != 0 {
		params.Set("year_max", strconv.Itoa(yearEnd))
	}

	res, err := a.Engine.List(r.Context(), a.Config("prices"), params,
		query.Page{Limit: 10000, Offset: 0})
	if err != nil {
		writeError(w, a.Log, err)
		return
	}
	if len(res.Rows) == 0 {
		writeError(w, a.Log, query.NotFound(
			"No price data found for item %d in the requested areas", itemCode))
		return
	}

	resp := reshapeMultiLine(itemCode, res.Rows)
	writeJSON(w, http.StatusOK, resp)
}

func reshapeMultiLine(itemCode int, rows []map[string]any) *MultiLineResponse {
	resp := &MultiLineResponse{
		Item:  ItemRef{Code: itemCode},
		Lines: make(map[string]*PriceLine),
		Note:  currencyNote,
	}

	first := true
	for _, row := range rows {
		price, ok := asFloat(row["value"])
		if !ok {
			continue
		}
		areaName := asString(row["area"])
		year := asInt(row["year"])

		if resp.Item.Name == "" {
			resp.Item.Name = asString(row["item"])
		}

		line, exists := resp.Lines[areaName]
		if !exists {
			line = &PriceLine{
				AreaName: areaName,
				AreaCode: asString(row["area_code"]),
				Currency: asString(row["unit"]),
			}
			resp.Lines[areaName] = line
		}
		line.DataPoints = append(line.DataPoints, PricePoint{
			Year:       year,
			PricePerT:  price,
			PricePerKg: round4(price / kgPerTonne),
			PricePerLb: round4(price / lbPerTonne),
		})

		s := &resp.Summary
		if first || price < s.MinPrice {
			s.MinPrice = price
		}
		if first || price > s.MaxPrice {
			s.MaxPrice = price
		}
		if first || year < s.MinYear {
			s.MinYear = year
		}
		if first || year > s.MaxYear {
			s.MaxYear = year
		}
		s.TotalDataPoints++
		first = false
	}
	resp.Summary.AreasFound = len(resp.Lines)
	return resp
}

// AreaRef is one area with price coverage for an item.
type AreaRef struct {
	AreaCode string `json:"area_code"`
	Area     string `json:"area"`
}

// AvailableAreasResponse lists the areas with official producer price data
// for an item.
type AvailableAreasResponse struct {
	ItemCode int       `json:"item_code"`
	Areas    []AreaRef `json:"areas"`
	Total    int       `json:"total"`
}

// MultiLineAvailableAreas reports which areas have official producer price
// data for a numeric item code. Of the two historical variants of this
// endpoint, this keeps the stricter one: item_code must be numeric and the
// producer-price element is always enforced.
func (a *API) MultiLineAvailableAreas(w http.ResponseWriter, r *http.Request) {
	itemCode, err := parseItemCode(r.URL.Query().Get("item_code"))
	if err != nil {
		writeError(w, a.Log, err)
		return
	}

	rows, err := a.Engine.Store().Select(r.Context(), `
		SELECT DISTINCT a.area_code, a.area
		FROM prices t
		JOIN area_codes a ON t.area_code_id = a.id
		JOIN item_codes i ON t.item_code_id = i.id
		JOIN element_codes e ON t.element_code_id = e.id
		WHERE i.item_code = $1 AND e.element_code = $2
		ORDER BY a.area`,
		strconv.Itoa(itemCode), datasets.ElementCodeProducerPrice)
	if err != nil {
		writeError(w, a.Log, err)
		return
	}
	if len(rows) == 0 {
		writeError(w, a.Log, query.NotFound("No price data found for item %d", itemCode))
		return
	}

	resp := AvailableAreasResponse{ItemCode: itemCode, Total: len(rows)}
	for _, row := range rows {
		resp.Areas = append(resp.Areas, AreaRef{
			AreaCode: asString(row["area_code"]),
			Area:     asString(row["area"]),
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

func parseItemCode(raw string) (int, error) {
	if raw == "" {
		return 0, query.Validation("missing_parameter", "item_code is required")
	}
	code, err := strconv.Atoi(raw)
	if err != nil || code < minItemCode || code > maxItemCode {
		return 0, query.Validation("invalid_item_code",
			"item_code must be between %d and %d", minItemCode, maxItemCode)
	}
	return code, nil
}

// parseYearWindow parses the optional [year_start, year_end] bounds; zero
// means unbounded.
func parseYearWindow(rawStart, rawEnd string) (int, int, error) {
	var start, end int
	var err error
	if rawStart != "" {
		if start, err = strconv.Atoi(rawStart); err != nil {
			return 0, 0, query.Validation("invalid_parameter", "year_start must be an integer")
		}
	}
	if rawEnd != "" {
		if end, err = strconv.Atoi(rawEnd); err != nil {
			return 0, 0, query.Validation("invalid_parameter", "year_end must be an integer")
		}
	}
	if start != 0 && end != 0 && start > end {
		return 0, 0, query.Validation("invalid_range",
			"year_start must be less than or equal to year_end")
	}
	return start, end, nil
}
