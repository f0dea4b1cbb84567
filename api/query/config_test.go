package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func minimalConfig() *DatasetConfig {
	return &DatasetConfig{
		Name:       "things",
		Table:      "things",
		DataFields: []string{"year", "value"},
		OrderBy:    []string{"year"},
	}
}

func TestDatasetConfigValidate(t *testing.T) {
	t.Run("accepts minimal config", func(t *testing.T) {
		require.NoError(t, minimalConfig().Validate())
	})

	t.Run("rejects foreign key without _id suffix", func(t *testing.T) {
		cfg := minimalConfig()
		cfg.ForeignKeys = []ForeignKey{{Column: "area_code", Parent: "area_codes"}}
		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "must end in _id")
	})

	t.Run("rejects field exposed by two foreign keys", func(t *testing.T) {
		cfg := minimalConfig()
		cfg.ForeignKeys = []ForeignKey{
			{Column: "reporter_id", Parent: "area_codes",
				Fields: []ParentField{{Name: "area", Column: "area"}}},
			{Column: "partner_id", Parent: "area_codes",
				Fields: []ParentField{{Name: "area", Column: "area"}}},
		}
		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "exposed by two foreign keys")
	})

	t.Run("rejects dimension filter without join anchor", func(t *testing.T) {
		cfg := minimalConfig()
		cfg.Filters = []FilterConfig{
			{Param: "area", Kind: FilterLike, Table: "area_codes", Column: "area"},
		}
		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "without a join anchor")
	})

	t.Run("rejects join anchor resolving to the wrong parent", func(t *testing.T) {
		cfg := minimalConfig()
		cfg.ForeignKeys = []ForeignKey{{Column: "item_code_id", Parent: "item_codes"}}
		cfg.Filters = []FilterConfig{
			{Param: "area", Kind: FilterLike, Table: "area_codes", Column: "area",
				JoinColumn: "item_code_id"},
		}
		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "does not resolve to area_codes")
	})

	t.Run("rejects numeric like filter", func(t *testing.T) {
		cfg := minimalConfig()
		cfg.Filters = []FilterConfig{
			{Param: "year", Kind: FilterLike, Table: "things", Column: "year", Numeric: true},
		}
		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "like filter \"year\" cannot be numeric")
	})

	t.Run("rejects validator without error constructor", func(t *testing.T) {
		cfg := minimalConfig()
		cfg.Filters = []FilterConfig{
			{Param: "year", Kind: FilterExact, Table: "things", Column: "year",
				Validate: func(string) bool { return true }},
		}
		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "pair validator with error constructor")
	})

	t.Run("rejects duplicate filter parameter", func(t *testing.T) {
		cfg := minimalConfig()
		cfg.Filters = []FilterConfig{
			{Param: "year", Kind: FilterExact, Table: "things", Column: "year"},
			{Param: "year", Kind: FilterRangeMin, Table: "things", Column: "year"},
		}
		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "duplicate filter parameter")
	})

	t.Run("rejects range naming unknown parameter", func(t *testing.T) {
		cfg := minimalConfig()
		cfg.Ranges = []RangeConfig{{Name: "year", MinParam: "year_min", MaxParam: "year_max"}}
		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unknown parameter")
	})

	t.Run("rejects order column outside data fields", func(t *testing.T) {
		cfg := minimalConfig()
		cfg.OrderBy = []string{"area_code"}
		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "not a data field")
	})
}

func TestForeignKeyAlias(t *testing.T) {
	assert.Equal(t, "area_code", ForeignKey{Column: "area_code_id"}.Alias())
	assert.Equal(t, "reporter_country_code",
		ForeignKey{Column: "reporter_country_code_id"}.Alias())
}
