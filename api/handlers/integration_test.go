package handlers_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agrostats/faostat-api/api/catalog"
	"github.com/agrostats/faostat-api/api/datasets"
	"github.com/agrostats/faostat-api/api/handlers"
	"github.com/agrostats/faostat-api/api/query"
	apitesting "github.com/agrostats/faostat-api/api/testing"
)

// TestPricesEndToEnd runs the full stack against a real PostgreSQL: embedded
// migrations, seeded dimensions and facts, catalog load, declarative listing
// and the multi-line reshaper.
func TestPricesEndToEnd(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}

	ctx := context.Background()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	db, err := apitesting.NewDB(ctx, log, nil)
	require.NoError(t, err)
	t.Cleanup(db.Close)

	apitesting.MigrateTestDB(t, db)
	pool := apitesting.NewTestPool(t, db)

	franceID := apitesting.SeedArea(t, pool, "33", "France")
	germanyID := apitesting.SeedArea(t, pool, "68", "Germany")
	wheatID := apitesting.SeedItem(t, pool, "236", "Wheat")
	elementID := apitesting.SeedElement(t, pool, datasets.ElementCodeProducerPrice, "Producer Price (USD/tonne)")
	flagID := apitesting.SeedFlag(t, pool, datasets.FlagOfficialFigure, "Official figure")

	for _, row := range []apitesting.PriceRow{
		{AreaID: franceID, ItemID: wheatID, ElementID: elementID, FlagID: flagID, Year: 2019, Value: 250},
		{AreaID: franceID, ItemID: wheatID, ElementID: elementID, FlagID: flagID, Year: 2020, Value: 260},
		{AreaID: germanyID, ItemID: wheatID, ElementID: elementID, FlagID: flagID, Year: 2020, Value: 240},
	} {
		apitesting.SeedPrice(t, pool, row)
	}

	store := query.NewPgStore(pool, query.DefaultQueryTimeout)
	codes, err := catalog.Load(ctx, store, log)
	require.NoError(t, err)
	require.True(t, codes.IsValidAreaCode("33"))

	configs, err := datasets.Build(codes)
	require.NoError(t, err)
	api := handlers.New(query.NewEngine(store, log), configs, codes, log)

	t.Run("listing", func(t *testing.T) {
		rec := httptest.NewRecorder()
		api.Listing(api.Config("prices"))(rec,
			httptest.NewRequest(http.MethodGet, "/v1/prices/prices?area_code=33&year_min=2019", nil))
		require.Equal(t, http.StatusOK, rec.Code)

		var body struct {
			Prices []map[string]any `json:"prices"`
			Total  int64            `json:"total"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		require.Len(t, body.Prices, 2)
		assert.Equal(t, int64(2), body.Total)
		assert.Equal(t, "France", body.Prices[0]["area"])
	})

	t.Run("multi-line reshaper", func(t *testing.T) {
		rec := httptest.NewRecorder()
		api.MultiLinePriceData(rec, httptest.NewRequest(http.MethodGet,
			"/v1/prices/multi-line/price-data?item_code=236&area_codes=33&area_codes=68", nil))
		require.Equal(t, http.StatusOK, rec.Code)

		var body handlers.MultiLineResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "Wheat", body.Item.Name)
		assert.Len(t, body.Lines, 2)
		assert.Equal(t, 3, body.Summary.TotalDataPoints)
	})

	t.Run("invalid code rejected from the snapshot", func(t *testing.T) {
		rec := httptest.NewRecorder()
		api.Listing(api.Config("prices"))(rec,
			httptest.NewRequest(http.MethodGet, "/v1/prices/prices?area_code=999", nil))
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	})
}
