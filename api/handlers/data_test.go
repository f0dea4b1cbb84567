package handlers

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agrostats/faostat-api/api/catalog"
)

func TestDimensionListing(t *testing.T) {
	store := &stubStore{
		responses: [][]map[string]any{
			{
				{"area_code": "33", "area": "France"},
				{"area_code": "68", "area": "Germany"},
			},
			{{"total": int64(2)}},
		},
	}
	api := newTestAPI(t, store)

	dim, ok := catalog.DimensionByName("area")
	require.True(t, ok)

	rec := doRequest(t, api.DimensionListing(dim), "/v1/data/area_codes")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		AreaCodes []map[string]any `json:"area_codes"`
		Total     int              `json:"total"`
	}
	decodeBody(t, rec, &body)
	assert.Len(t, body.AreaCodes, 2)
	assert.Equal(t, 2, body.Total)

	require.Len(t, store.queries, 2)
	assert.Contains(t, store.queries[0], "FROM area_codes")
	assert.Contains(t, store.queries[0], "ORDER BY area_code")
	assert.NotContains(t, store.queries[0], "WHERE")
}

func TestDimensionListing_Search(t *testing.T) {
	store := &stubStore{
		responses: [][]map[string]any{
			{{"area_code": "68", "area": "Germany"}},
			{{"total": int64(1)}},
		},
	}
	api := newTestAPI(t, store)

	dim, ok := catalog.DimensionByName("area")
	require.True(t, ok)

	rec := doRequest(t, api.DimensionListing(dim), "/v1/data/area_codes?search=ger")
	require.Equal(t, http.StatusOK, rec.Code)

	require.Len(t, store.queries, 2)
	assert.Contains(t, store.queries[0], "area ILIKE $1")
	assert.Equal(t, "%ger%", store.args[0][0])
	assert.Contains(t, store.queries[1], "COUNT(*)")
	assert.Contains(t, store.queries[1], "ILIKE")
}

func TestOverview(t *testing.T) {
	// One count query per configured dataset, answered in turn.
	var responses [][]map[string]any
	for i := 0; i < 11; i++ {
		responses = append(responses, []map[string]any{{"total": int64(100 * (i + 1))}})
	}
	store := &stubStore{responses: responses}
	api := newTestAPI(t, store)

	rec := doRequest(t, api.Overview, "/v1/data/overview")
	require.Equal(t, http.StatusOK, rec.Code)

	var body OverviewResponse
	decodeBody(t, rec, &body)
	assert.Equal(t, 11, body.TotalDatasets)
	require.Len(t, body.Datasets, 11)

	// Deterministic order: dataset names ascending.
	assert.Equal(t, "aquastat", body.Datasets[0].Name)
	for _, d := range body.Datasets {
		assert.NotEmpty(t, d.Parameters)
		assert.NotEmpty(t, d.Fields)
	}
	assert.Len(t, store.queries, 11)
}
