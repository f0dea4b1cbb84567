// Package datasets declares the per-dataset query configurations: which
// fields a listing returns, which parameters it accepts, and how each
// parameter binds to a predicate. One record per dataset, built once at
// startup and validated before the server accepts traffic.
package datasets

import (
	"fmt"

	"github.com/agrostats/faostat-api/api/catalog"
	"github.com/agrostats/faostat-api/api/query"
)

const (
	// ElementCodeProducerPrice is the element for "Producer Price (USD/tonne)".
	ElementCodeProducerPrice = "5532"
	// FlagOfficialFigure marks an official figure.
	FlagOfficialFigure = "A"
)

// Build constructs and validates every dataset configuration. A validation
// failure is a programmer error and must abort boot.
func Build(codes *catalog.Codes) (map[string]*query.DatasetConfig, error) {
	all := []*query.DatasetConfig{
		prices(codes),
		tradeCropsLivestock(codes),
		tradeCropsLivestockIndicators(codes),
		foodBalanceSheets(codes, "food_balance_sheets"),
		foodBalanceSheets(codes, "food_balance_sheets_historic"),
		employmentIndicatorsRural(codes),
		exchangeRates(codes),
		foodPriceInflation(codes),
		aquastat(codes),
		investmentMachinery(codes),
		dietaryData(codes),
	}

	configs := make(map[string]*query.DatasetConfig, len(all))
	for _, cfg := range all {
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("invalid dataset configuration: %w", err)
		}
		if _, dup := configs[cfg.Name]; dup {
			return nil, fmt.Errorf("duplicate dataset name %q", cfg.Name)
		}
		configs[cfg.Name] = cfg
	}
	return configs, nil
}

// Foreign key descriptors shared across datasets.

func fkArea() query.ForeignKey {
	return query.ForeignKey{
		Column: "area_code_id",
		Parent: "area_codes",
		Fields: []query.ParentField{
			{Name: "area_code", Column: "area_code"},
			{Name: "area", Column: "area"},
		},
	}
}

func fkItem() query.ForeignKey {
	return query.ForeignKey{
		Column: "item_code_id",
		Parent: "item_codes",
		Fields: []query.ParentField{
			{Name: "item_code", Column: "item_code"},
			{Name: "item", Column: "item"},
		},
	}
}

func fkElement() query.ForeignKey {
	return query.ForeignKey{
		Column: "element_code_id",
		Parent: "element_codes",
		Fields: []query.ParentField{
			{Name: "element_code", Column: "element_code"},
			{Name: "element", Column: "element"},
		},
	}
}

func fkFlag() query.ForeignKey {
	return query.ForeignKey{
		Column: "flag_id",
		Parent: "flags",
		Fields: []query.ParentField{
			{Name: "flag", Column: "flag"},
			{Name: "flag_description", Column: "description"},
		},
	}
}

// Filter descriptor helpers.

func multiDim(param, table, column, anchor string,
	valid func(string) bool, invalid func(string) *query.ClientError) query.FilterConfig {
	return query.FilterConfig{
		Param: param, Kind: query.FilterMulti,
		Table: table, Column: column, JoinColumn: anchor,
		Validate: valid, Invalid: invalid,
	}
}

func likeDim(param, table, column, anchor string) query.FilterConfig {
	return query.FilterConfig{
		Param: param, Kind: query.FilterLike,
		Table: table, Column: column, JoinColumn: anchor,
	}
}

func yearFilters(table string) []query.FilterConfig {
	return []query.FilterConfig{
		{Param: "year", Kind: query.FilterExact, Table: table, Column: "year", Numeric: true},
		{Param: "year_min", Kind: query.FilterRangeMin, Table: table, Column: "year"},
		{Param: "year_max", Kind: query.FilterRangeMax, Table: table, Column: "year"},
	}
}

func valueFilters(table string) []query.FilterConfig {
	return []query.FilterConfig{
		{Param: "value_min", Kind: query.FilterRangeMin, Table: table, Column: "value"},
		{Param: "value_max", Kind: query.FilterRangeMax, Table: table, Column: "value"},
	}
}

func standardRanges() []query.RangeConfig {
	return []query.RangeConfig{
		{Name: "year", MinParam: "year_min", MaxParam: "year_max"},
		{Name: "value", MinParam: "value_min", MaxParam: "value_max"},
	}
}

// standardFilters covers the area/item/element/flag dimensions plus year and
// value windows, the common shape of most FAOSTAT fact tables.
func standardFilters(codes *catalog.Codes, table string) []query.FilterConfig {
	filters := []query.FilterConfig{
		multiDim("area_code", "area_codes", "area_code", "area_code_id",
			codes.IsValidAreaCode, catalog.InvalidAreaCode),
		likeDim("area", "area_codes", "area", "area_code_id"),
		multiDim("item_code", "item_codes", "item_code", "item_code_id",
			codes.IsValidItemCode, catalog.InvalidItemCode),
		likeDim("item", "item_codes", "item", "item_code_id"),
		multiDim("element_code", "element_codes", "element_code", "element_code_id",
			codes.IsValidElementCode, catalog.InvalidElementCode),
		multiDim("flag", "flags", "flag", "flag_id",
			codes.IsValidFlag, catalog.InvalidFlag),
	}
	filters = append(filters, yearFilters(table)...)
	filters = append(filters, valueFilters(table)...)
	return filters
}

func standardFields() []string {
	return []string{
		"area_code", "area", "item_code", "item", "element_code", "element",
		"year", "unit", "value", "flag", "note",
	}
}

func prices(codes *catalog.Codes) *query.DatasetConfig {
	table := "prices"
	filters := standardFilters(codes, table)
	filters = append(filters, query.FilterConfig{
		Param: "months_code", Kind: query.FilterExact, Table: table, Column: "months_code",
	})
	return &query.DatasetConfig{
		Name:  "prices",
		Table: table,
		// Historical redenominations are not corrected; the note field
		// carries the caveat to consumers.
		DataFields:  append(standardFields(), "months_code"),
		ForeignKeys: []query.ForeignKey{fkArea(), fkItem(), fkElement(), fkFlag()},
		Filters:     filters,
		Ranges:      standardRanges(),
		OrderBy:     []string{"area_code", "year"},
	}
}

func tradeCropsLivestock(codes *catalog.Codes) *query.DatasetConfig {
	table := "trade_crops_livestock"
	return &query.DatasetConfig{
		Name:        "trade_crops_livestock",
		Table:       table,
		DataFields:  standardFields(),
		ForeignKeys: []query.ForeignKey{fkArea(), fkItem(), fkElement(), fkFlag()},
		Filters:     standardFilters(codes, table),
		Ranges:      standardRanges(),
		OrderBy:     []string{"area_code", "year"},
	}
}

func tradeCropsLivestockIndicators(codes *catalog.Codes) *query.DatasetConfig {
	table := "trade_crops_livestock_indicators"
	filters := []query.FilterConfig{
		multiDim("area_code", "area_codes", "area_code", "area_code_id",
			codes.IsValidAreaCode, catalog.InvalidAreaCode),
		likeDim("area", "area_codes", "area", "area_code_id"),
		multiDim("item_code", "item_codes", "item_code", "item_code_id",
			codes.IsValidItemCode, catalog.InvalidItemCode),
		multiDim("element_code", "element_codes", "element_code", "element_code_id",
			codes.IsValidElementCode, catalog.InvalidElementCode),
	}
	filters = append(filters, yearFilters(table)...)
	return &query.DatasetConfig{
		Name:  "trade_crops_livestock_indicators",
		Table: table,
		DataFields: []string{
			"area_code", "area", "item_code", "item", "element_code", "element",
			"year", "unit", "value",
		},
		ForeignKeys: []query.ForeignKey{fkArea(), fkItem(), fkElement()},
		Filters:     filters,
		Ranges:      []query.RangeConfig{{Name: "year", MinParam: "year_min", MaxParam: "year_max"}},
		OrderBy:     []string{"area_code", "year"},
	}
}

func foodBalanceSheets(codes *catalog.Codes, table string) *query.DatasetConfig {
	return &query.DatasetConfig{
		Name:        table,
		Table:       table,
		DataFields:  standardFields(),
		ForeignKeys: []query.ForeignKey{fkArea(), fkItem(), fkElement(), fkFlag()},
		Filters:     standardFilters(codes, table),
		Ranges:      standardRanges(),
		OrderBy:     []string{"area_code", "year"},
	}
}

func employmentIndicatorsRural(codes *catalog.Codes) *query.DatasetConfig {
	table := "employment_indicators_rural"
	fkIndicator := query.ForeignKey{
		Column: "indicator_code_id",
		Parent: "indicators",
		Fields: []query.ParentField{
			{Name: "indicator_code", Column: "indicator_code"},
			{Name: "indicator", Column: "indicator"},
		},
	}
	fkSex := query.ForeignKey{
		Column: "sex_code_id",
		Parent: "sexs",
		Fields: []query.ParentField{
			{Name: "sex_code", Column: "sex_code"},
			{Name: "sex", Column: "sex"},
		},
	}
	fkSource := query.ForeignKey{
		Column: "source_code_id",
		Parent: "sources",
		Fields: []query.ParentField{
			{Name: "source_code", Column: "source_code"},
			{Name: "source", Column: "source"},
		},
	}
	filters := []query.FilterConfig{
		multiDim("area_code", "area_codes", "area_code", "area_code_id",
			codes.IsValidAreaCode, catalog.InvalidAreaCode),
		likeDim("area", "area_codes", "area", "area_code_id"),
		multiDim("indicator_code", "indicators", "indicator_code", "indicator_code_id",
			codes.IsValidIndicatorCode, func(code string) *query.ClientError {
				return catalog.InvalidCode("indicator", code)
			}),
		likeDim("indicator", "indicators", "indicator", "indicator_code_id"),
		multiDim("sex_code", "sexs", "sex_code", "sex_code_id",
			codes.IsValidSexCode, func(code string) *query.ClientError {
				return catalog.InvalidCode("sex", code)
			}),
		multiDim("source_code", "sources", "source_code", "source_code_id",
			codes.IsValidSourceCode, func(code string) *query.ClientError {
				return catalog.InvalidCode("source", code)
			}),
		multiDim("flag", "flags", "flag", "flag_id",
			codes.IsValidFlag, catalog.InvalidFlag),
	}
	filters = append(filters, yearFilters(table)...)
	return &query.DatasetConfig{
		Name:  table,
		Table: table,
		DataFields: []string{
			"area_code", "area", "indicator_code", "indicator", "source_code", "source",
			"sex_code", "sex", "year", "unit", "value", "flag", "note",
		},
		ForeignKeys: []query.ForeignKey{fkArea(), fkIndicator, fkSex, fkSource, fkFlag()},
		Filters:     filters,
		Ranges:      []query.RangeConfig{{Name: "year", MinParam: "year_min", MaxParam: "year_max"}},
		OrderBy:     []string{"area_code", "year"},
	}
}

func exchangeRates(codes *catalog.Codes) *query.DatasetConfig {
	table := "exchange_rates"
	fkCurrency := query.ForeignKey{
		Column: "currency_code_id",
		Parent: "currencies",
		Fields: []query.ParentField{
			{Name: "currency_code", Column: "currency_code"},
			{Name: "currency", Column: "currency"},
		},
	}
	filters := []query.FilterConfig{
		multiDim("area_code", "area_codes", "area_code", "area_code_id",
			codes.IsValidAreaCode, catalog.InvalidAreaCode),
		likeDim("area", "area_codes", "area", "area_code_id"),
		multiDim("currency_code", "currencies", "currency_code", "currency_code_id",
			codes.IsValidCurrencyCode, func(code string) *query.ClientError {
				return catalog.InvalidCode("currency", code)
			}),
		likeDim("currency", "currencies", "currency", "currency_code_id"),
		multiDim("flag", "flags", "flag", "flag_id",
			codes.IsValidFlag, catalog.InvalidFlag),
		{Param: "months_code", Kind: query.FilterExact, Table: table, Column: "months_code"},
	}
	filters = append(filters, yearFilters(table)...)
	filters = append(filters, valueFilters(table)...)
	return &query.DatasetConfig{
		Name:  table,
		Table: table,
		DataFields: []string{
			"area_code", "area", "currency_code", "currency", "year", "months_code",
			"unit", "value", "flag", "note",
		},
		ForeignKeys: []query.ForeignKey{fkArea(), fkCurrency, fkFlag()},
		Filters:     filters,
		Ranges:      standardRanges(),
		OrderBy:     []string{"area_code", "year"},
	}
}

func foodPriceInflation(codes *catalog.Codes) *query.DatasetConfig {
	table := "food_price_inflation"
	filters := []query.FilterConfig{
		multiDim("area_code", "area_codes", "area_code", "area_code_id",
			codes.IsValidAreaCode, catalog.InvalidAreaCode),
		likeDim("area", "area_codes", "area", "area_code_id"),
		multiDim("element_code", "element_codes", "element_code", "element_code_id",
			codes.IsValidElementCode, catalog.InvalidElementCode),
		multiDim("flag", "flags", "flag", "flag_id",
			codes.IsValidFlag, catalog.InvalidFlag),
		{Param: "months_code", Kind: query.FilterExact, Table: table, Column: "months_code"},
	}
	filters = append(filters, yearFilters(table)...)
	filters = append(filters, valueFilters(table)...)
	return &query.DatasetConfig{
		Name:  table,
		Table: table,
		DataFields: []string{
			"area_code", "area", "element_code", "element", "year", "months_code",
			"unit", "value", "flag", "note",
		},
		ForeignKeys: []query.ForeignKey{fkArea(), fkElement(), fkFlag()},
		Filters:     filters,
		Ranges:      standardRanges(),
		OrderBy:     []string{"area_code", "year"},
	}
}

func aquastat(codes *catalog.Codes) *query.DatasetConfig {
	table := "aquastat"
	filters := []query.FilterConfig{
		multiDim("area_code", "area_codes", "area_code", "area_code_id",
			codes.IsValidAreaCode, catalog.InvalidAreaCode),
		likeDim("area", "area_codes", "area", "area_code_id"),
		multiDim("element_code", "element_codes", "element_code", "element_code_id",
			codes.IsValidElementCode, catalog.InvalidElementCode),
		likeDim("element", "element_codes", "element", "element_code_id"),
	}
	filters = append(filters, yearFilters(table)...)
	filters = append(filters, valueFilters(table)...)
	return &query.DatasetConfig{
		Name:  table,
		Table: table,
		DataFields: []string{
			"area_code", "area", "element_code", "element", "year", "unit", "value",
		},
		ForeignKeys: []query.ForeignKey{fkArea(), fkElement()},
		Filters:     filters,
		Ranges:      standardRanges(),
		OrderBy:     []string{"area_code", "year"},
	}
}

func investmentMachinery(codes *catalog.Codes) *query.DatasetConfig {
	table := "investment_machinery"
	return &query.DatasetConfig{
		Name:        table,
		Table:       table,
		DataFields:  standardFields(),
		ForeignKeys: []query.ForeignKey{fkArea(), fkItem(), fkElement(), fkFlag()},
		Filters:     standardFilters(codes, table),
		Ranges:      standardRanges(),
		OrderBy:     []string{"area_code", "year"},
	}
}

func dietaryData(codes *catalog.Codes) *query.DatasetConfig {
	table := "individual_quantitative_dietary_data"
	fks := []query.ForeignKey{
		{
			Column: "survey_code_id",
			Parent: "surveys",
			Fields: []query.ParentField{
				{Name: "survey_code", Column: "survey_code"},
				{Name: "survey", Column: "survey"},
			},
		},
		{
			Column: "geographic_level_code_id",
			Parent: "geographic_levels",
			Fields: []query.ParentField{
				{Name: "geographic_level_code", Column: "geographic_level_code"},
				{Name: "geographic_level", Column: "geographic_level"},
			},
		},
		{
			Column: "population_age_group_code_id",
			Parent: "population_age_groups",
			Fields: []query.ParentField{
				{Name: "population_age_group_code", Column: "population_age_group_code"},
				{Name: "population_age_group", Column: "population_age_group"},
			},
		},
		{
			Column: "indicator_code_id",
			Parent: "indicators",
			Fields: []query.ParentField{
				{Name: "indicator_code", Column: "indicator_code"},
				{Name: "indicator", Column: "indicator"},
			},
		},
		{
			Column: "food_group_code_id",
			Parent: "food_groups",
			Fields: []query.ParentField{
				{Name: "food_group_code", Column: "food_group_code"},
				{Name: "food_group", Column: "food_group"},
			},
		},
		{
			Column: "sex_code_id",
			Parent: "sexs",
			Fields: []query.ParentField{
				{Name: "sex_code", Column: "sex_code"},
				{Name: "sex", Column: "sex"},
			},
		},
	}
	invalid := func(dim string) func(string) *query.ClientError {
		return func(code string) *query.ClientError { return catalog.InvalidCode(dim, code) }
	}
	filters := []query.FilterConfig{
		multiDim("survey_code", "surveys", "survey_code", "survey_code_id",
			codes.IsValidSurveyCode, invalid("survey")),
		likeDim("survey", "surveys", "survey", "survey_code_id"),
		multiDim("geographic_level_code", "geographic_levels", "geographic_level_code",
			"geographic_level_code_id", codes.IsValidGeographicLevelCode, invalid("geographic_level")),
		multiDim("population_age_group_code", "population_age_groups", "population_age_group_code",
			"population_age_group_code_id", codes.IsValidPopulationAgeGroupCode, invalid("population_age_group")),
		multiDim("indicator_code", "indicators", "indicator_code", "indicator_code_id",
			codes.IsValidIndicatorCode, invalid("indicator")),
		multiDim("food_group_code", "food_groups", "food_group_code", "food_group_code_id",
			codes.IsValidFoodGroupCode, invalid("food_group")),
		multiDim("sex_code", "sexs", "sex_code", "sex_code_id",
			codes.IsValidSexCode, invalid("sex")),
	}
	filters = append(filters, valueFilters(table)...)
	return &query.DatasetConfig{
		Name:  table,
		Table: table,
		DataFields: []string{
			"survey_code", "survey", "geographic_level_code", "geographic_level",
			"population_age_group_code", "population_age_group", "indicator_code",
			"indicator", "food_group_code", "food_group", "sex_code", "sex",
			"unit", "value",
		},
		ForeignKeys: fks,
		Filters:     filters,
		Ranges:      []query.RangeConfig{{Name: "value", MinParam: "value_min", MaxParam: "value_max"}},
		OrderBy:     []string{"survey_code", "indicator_code"},
	}
}
