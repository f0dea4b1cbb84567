package apitesting

import (
	"strconv"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
)

// SeedArea inserts an area dimension row and returns its surrogate id.
func SeedArea(t *testing.T, pool *pgxpool.Pool, code, name string) int64 {
	return seedDim(t, pool,
		`INSERT INTO area_codes (area_code, area) VALUES ($1, $2) RETURNING id`,
		code, name)
}

// SeedItem inserts an item dimension row and returns its surrogate id.
func SeedItem(t *testing.T, pool *pgxpool.Pool, code, name string) int64 {
	return seedDim(t, pool,
		`INSERT INTO item_codes (item_code, item) VALUES ($1, $2) RETURNING id`,
		code, name)
}

// SeedElement inserts an element dimension row and returns its surrogate id.
func SeedElement(t *testing.T, pool *pgxpool.Pool, code, name string) int64 {
	return seedDim(t, pool,
		`INSERT INTO element_codes (element_code, element) VALUES ($1, $2) RETURNING id`,
		code, name)
}

// SeedFlag inserts a flag dimension row and returns its surrogate id.
func SeedFlag(t *testing.T, pool *pgxpool.Pool, flag, description string) int64 {
	return seedDim(t, pool,
		`INSERT INTO flags (flag, description) VALUES ($1, $2) RETURNING id`,
		flag, description)
}

func seedDim(t *testing.T, pool *pgxpool.Pool, sql string, args ...any) int64 {
	t.Helper()
	var id int64
	err := pool.QueryRow(t.Context(), sql, args...).Scan(&id)
	require.NoError(t, err, "failed to seed dimension row")
	return id
}

// PriceRow describes one producer price fact for seeding.
type PriceRow struct {
	AreaID    int64
	ItemID    int64
	ElementID int64
	FlagID    int64
	Year      int
	Value     float64
	Unit      string
}

// SeedPrice inserts a prices fact row.
func SeedPrice(t *testing.T, pool *pgxpool.Pool, row PriceRow) {
	t.Helper()
	unit := row.Unit
	if unit == "" {
		unit = "USD"
	}
	_, err := pool.Exec(t.Context(), `
		INSERT INTO prices
			(area_code_id, item_code_id, element_code_id, flag_id,
			 year_code, year, months_code, unit, value)
		VALUES ($1, $2, $3, $4, $5, $6, '7021', $7, $8)`,
		row.AreaID, row.ItemID, row.ElementID, row.FlagID,
		strconv.Itoa(row.Year), row.Year, unit, row.Value)
	require.NoError(t, err, "failed to seed price row")
}
