package handlers

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInflation(t *testing.T) {
	store := &stubStore{
		responses: [][]map[string]any{{
			{"area_code": "33", "area": "France", "item_code": "236", "item": "Wheat",
				"base_price": 200.0, "current_price": 300.0, "inflation_rate": 50.0},
			{"area_code": "68", "area": "Germany", "item_code": "236", "item": "Wheat",
				"base_price": 240.0, "current_price": 250.0, "inflation_rate": 4.16667},
		}},
	}
	api := newTestAPI(t, store)

	rec := doRequest(t, api.Inflation, "/v1/prices/inflation?current_year=2020&years_back=2")
	require.Equal(t, http.StatusOK, rec.Code)

	var body InflationResponse
	decodeBody(t, rec, &body)
	assert.Equal(t, 2020, body.CurrentYear)
	assert.Equal(t, 2018, body.BaseYear)
	assert.Equal(t, 2, body.Total)
	require.Len(t, body.Entries, 2)
	assert.Equal(t, 50.0, body.Entries[0].InflationRate)
	assert.Equal(t, 4.17, body.Entries[1].InflationRate, "rates are rounded to two decimals")

	require.Len(t, store.queries, 1)
	sql := store.queries[0]
	assert.Contains(t, sql, "base.value <> 0")
	assert.Contains(t, sql, "ORDER BY ABS((cur.value - base.value) / base.value * 100) DESC")
	assert.Equal(t, []any{"5532", 2020, 2018}, store.args[0])
}

func TestInflation_Defaults(t *testing.T) {
	store := &stubStore{responses: [][]map[string]any{nil}}
	api := newTestAPI(t, store)

	rec := doRequest(t, api.Inflation, "/v1/prices/inflation?current_year=2020")
	require.Equal(t, http.StatusOK, rec.Code)

	var body InflationResponse
	decodeBody(t, rec, &body)
	assert.Equal(t, 2019, body.BaseYear, "years_back defaults to one")
	assert.Equal(t, 0, body.Total)
	assert.Contains(t, rec.Body.String(), `"entries":[]`,
		"empty result serializes as an empty array")
}

func TestInflation_Validation(t *testing.T) {
	store := &stubStore{}
	api := newTestAPI(t, store)

	rec := doRequest(t, api.Inflation, "/v1/prices/inflation")
	requireErrorEnvelope(t, rec, http.StatusUnprocessableEntity, "current_year is required")

	rec = doRequest(t, api.Inflation, "/v1/prices/inflation?current_year=2020&years_back=0")
	requireErrorEnvelope(t, rec, http.StatusUnprocessableEntity,
		"years_back must be a positive integer")

	rec = doRequest(t, api.Inflation, "/v1/prices/inflation?current_year=2020&years_back=x")
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	assert.Empty(t, store.queries)
}
