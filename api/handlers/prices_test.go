package handlers

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func priceRow(areaCode, area string, year int, value float64) map[string]any {
	return map[string]any{
		"area_code": areaCode, "area": area,
		"item_code": "236", "item": "Wheat",
		"element_code": "5532", "element": "Producer Price (USD/tonne)",
		"year": year, "unit": "USD", "value": value, "flag": "A",
		"note": nil, "months_code": "7021",
	}
}

func TestMultiLinePriceData(t *testing.T) {
	store := &stubStore{
		responses: [][]map[string]any{
			{
				priceRow("33", "France", 2019, 250),
				priceRow("33", "France", 2020, 260),
				priceRow("68", "Germany", 2020, 240),
			},
			{{"count": int64(3)}},
		},
	}
	api := newTestAPI(t, store)

	rec := doRequest(t, api.MultiLinePriceData,
		"/v1/prices/multi-line/price-data?item_code=236&area_codes=33&area_codes=68")
	require.Equal(t, http.StatusOK, rec.Code)

	var body MultiLineResponse
	decodeBody(t, rec, &body)

	assert.Equal(t, 236, body.Item.Code)
	assert.Equal(t, "Wheat", body.Item.Name)
	require.Len(t, body.Lines, 2)

	france := body.Lines["France"]
	require.NotNil(t, france)
	assert.Equal(t, "33", france.AreaCode)
	assert.Equal(t, "USD", france.Currency)
	require.Len(t, france.DataPoints, 2)
	assert.Equal(t, 2019, france.DataPoints[0].Year)
	assert.Equal(t, 250.0, france.DataPoints[0].PricePerT)
	assert.Equal(t, 0.25, france.DataPoints[0].PricePerKg)
	assert.Equal(t, 0.1134, france.DataPoints[0].PricePerLb)

	assert.Equal(t, 240.0, body.Summary.MinPrice)
	assert.Equal(t, 260.0, body.Summary.MaxPrice)
	assert.Equal(t, 2019, body.Summary.MinYear)
	assert.Equal(t, 2020, body.Summary.MaxYear)
	assert.Equal(t, 2, body.Summary.AreasFound)
	assert.Equal(t, 3, body.Summary.TotalDataPoints)
	assert.NotEmpty(t, body.Note)

	// Only official producer prices are queried.
	require.NotEmpty(t, store.queries)
	assert.Contains(t, store.queries[0], "element_code.element_code IN")
	assert.Contains(t, store.queries[0], "flag.flag IN")
}

func TestMultiLinePriceData_ItemCodeBounds(t *testing.T) {
	store := &stubStore{}
	api := newTestAPI(t, store)

	rec := doRequest(t, api.MultiLinePriceData,
		"/v1/prices/multi-line/price-data?item_code=5&area_codes=33")
	requireErrorEnvelope(t, rec, http.StatusUnprocessableEntity,
		"item_code must be between 10 and 9999")

	rec = doRequest(t, api.MultiLinePriceData,
		"/v1/prices/multi-line/price-data?item_code=10000&area_codes=33")
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = doRequest(t, api.MultiLinePriceData,
		"/v1/prices/multi-line/price-data?area_codes=33")
	requireErrorEnvelope(t, rec, http.StatusUnprocessableEntity, "item_code is required")

	assert.Empty(t, store.queries, "invalid requests must not issue SQL")
}

func TestMultiLinePriceData_AreaRules(t *testing.T) {
	store := &stubStore{}
	api := newTestAPI(t, store)

	rec := doRequest(t, api.MultiLinePriceData,
		"/v1/prices/multi-line/price-data?item_code=236")
	requireErrorEnvelope(t, rec, http.StatusUnprocessableEntity,
		"At least one area_code is required")

	rec = doRequest(t, api.MultiLinePriceData,
		"/v1/prices/multi-line/price-data?item_code=236"+
			"&area_codes=1&area_codes=2&area_codes=3&area_codes=4&area_codes=5&area_codes=6")
	requireErrorEnvelope(t, rec, http.StatusUnprocessableEntity,
		"Maximum 5 area_codes allowed")

	assert.Empty(t, store.queries)
}

func TestMultiLinePriceData_YearWindow(t *testing.T) {
	store := &stubStore{}
	api := newTestAPI(t, store)

	rec := doRequest(t, api.MultiLinePriceData,
		"/v1/prices/multi-line/price-data?item_code=236&area_codes=33&year_start=2020&year_end=2010")
	requireErrorEnvelope(t, rec, http.StatusUnprocessableEntity,
		"year_start must be less than or equal to year_end")
	assert.Empty(t, store.queries)
}

func TestMultiLinePriceData_NotFound(t *testing.T) {
	store := &stubStore{
		responses: [][]map[string]any{nil, {{"count": int64(0)}}},
	}
	api := newTestAPI(t, store)

	rec := doRequest(t, api.MultiLinePriceData,
		"/v1/prices/multi-line/price-data?item_code=236&area_codes=33")
	requireErrorEnvelope(t, rec, http.StatusNotFound,
		"No price data found for item 236 in the requested areas")
}

func TestMultiLineAvailableAreas(t *testing.T) {
	store := &stubStore{
		responses: [][]map[string]any{
			{
				{"area_code": "33", "area": "France"},
				{"area_code": "68", "area": "Germany"},
			},
		},
	}
	api := newTestAPI(t, store)

	rec := doRequest(t, api.MultiLineAvailableAreas,
		"/v1/prices/multi-line/available-areas?item_code=236")
	require.Equal(t, http.StatusOK, rec.Code)

	var body AvailableAreasResponse
	decodeBody(t, rec, &body)
	assert.Equal(t, 236, body.ItemCode)
	assert.Equal(t, 2, body.Total)
	require.Len(t, body.Areas, 2)
	assert.Equal(t, "France", body.Areas[0].Area)
}

func TestMultiLineAvailableAreas_Errors(t *testing.T) {
	store := &stubStore{}
	api := newTestAPI(t, store)

	rec := doRequest(t, api.MultiLineAvailableAreas,
		"/v1/prices/multi-line/available-areas?item_code=abc")
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Empty(t, store.queries)

	rec = doRequest(t, api.MultiLineAvailableAreas,
		"/v1/prices/multi-line/available-areas?item_code=236")
	requireErrorEnvelope(t, rec, http.StatusNotFound, "No price data found for item 236")
}
