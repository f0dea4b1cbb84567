package datasets

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agrostats/faostat-api/api/catalog"
	"github.com/agrostats/faostat-api/api/query"
)

func testCodes() *catalog.Codes {
	return catalog.NewCodes(map[string][]string{
		"area":                 {"33", "68", "100"},
		"item":                 {"236", "15"},
		"element":              {ElementCodeProducerPrice, "5622"},
		"flag":                 {FlagOfficialFigure, "E"},
		"source":               {"3050"},
		"indicator":            {"21144"},
		"sex":                  {"1", "2"},
		"survey":               {"BGD2011"},
		"geographic_level":     {"1"},
		"population_age_group": {"3"},
		"food_group":           {"AS01"},
		"currency":             {"USD"},
	})
}

func TestBuild_AllDatasetsValidate(t *testing.T) {
	configs, err := Build(testCodes())
	require.NoError(t, err)

	expected := []string{
		"prices",
		"trade_crops_livestock",
		"trade_crops_livestock_indicators",
		"food_balance_sheets",
		"food_balance_sheets_historic",
		"employment_indicators_rural",
		"exchange_rates",
		"food_price_inflation",
		"aquastat",
		"investment_machinery",
		"individual_quantitative_dietary_data",
	}
	assert.Len(t, configs, len(expected))
	for _, name := range expected {
		cfg, ok := configs[name]
		require.True(t, ok, "missing dataset %s", name)
		assert.Equal(t, name, cfg.Name)
		assert.NotEmpty(t, cfg.OrderBy, "dataset %s has no ordering", name)
	}
}

func TestBuild_EveryDatasetCompiles(t *testing.T) {
	configs, err := Build(testCodes())
	require.NoError(t, err)

	// A bare request must compile for every dataset: full projection, the
	// joins its fields need, deterministic order.
	for name, cfg := range configs {
		compiled, err := query.Compile(cfg, url.Values{}, query.Page{Limit: 100})
		require.NoError(t, err, "dataset %s", name)
		assert.Equal(t, len(cfg.ForeignKeys), compiled.JoinCount,
			"dataset %s should join every configured dimension for its projection", name)
		assert.Contains(t, compiled.SelectSQL, "ORDER BY")
	}
}

func TestPricesConfig(t *testing.T) {
	configs, err := Build(testCodes())
	require.NoError(t, err)
	cfg := configs["prices"]

	compiled, err := query.Compile(cfg, url.Values{
		"item_code":    {"236"},
		"area_code":    {"33", "68"},
		"element_code": {ElementCodeProducerPrice},
		"flag":         {FlagOfficialFigure},
		"year_min":     {"2010"},
		"year_max":     {"2020"},
	}, query.Page{Limit: 10000})
	require.NoError(t, err)

	assert.Contains(t, compiled.SelectSQL, "area_code.area_code IN")
	assert.Contains(t, compiled.SelectSQL, "item_code.item_code IN")
	assert.Contains(t, compiled.SelectSQL, "element_code.element_code IN")
	assert.Contains(t, compiled.SelectSQL, "flag.flag IN")
	assert.Contains(t, compiled.SelectSQL, "t.year >=")
	assert.Contains(t, compiled.SelectSQL, "t.year <=")
	assert.Equal(t, 4, compiled.JoinCount)

	_, err = query.Compile(cfg, url.Values{"item_code": {"9998"}}, query.Page{Limit: 100})
	ce, ok := query.AsClientError(err)
	require.True(t, ok)
	assert.Equal(t, "invalid_item_code", ce.Kind)
}

func TestTradeIndicatorsRejectsYearRangeViolation(t *testing.T) {
	configs, err := Build(testCodes())
	require.NoError(t, err)
	cfg := configs["trade_crops_livestock_indicators"]

	_, err = query.Compile(cfg, url.Values{
		"year_min": {"2021"},
		"year_max": {"2019"},
	}, query.Page{Limit: 100})
	ce, ok := query.AsClientError(err)
	require.True(t, ok)
	assert.Equal(t, 422, ce.Errcode)
	assert.Equal(t, "invalid_range", ce.Kind)
}

func TestDietaryDataOrdering(t *testing.T) {
	configs, err := Build(testCodes())
	require.NoError(t, err)
	cfg := configs["individual_quantitative_dietary_data"]

	compiled, err := query.Compile(cfg, url.Values{}, query.Page{Limit: 100})
	require.NoError(t, err)
	assert.Contains(t, compiled.SelectSQL,
		"ORDER BY survey_code.survey_code, indicator_code.indicator_code")
}
