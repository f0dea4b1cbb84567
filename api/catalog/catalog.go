// Package catalog holds the dimension reference tables: their SQL names and
// an in-memory snapshot of their natural codes used to validate query
// parameters before any fact query runs.
package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/agrostats/faostat-api/api/handlers/dberror"
	"github.com/agrostats/faostat-api/api/query"
)

// Dimension describes one reference table.
type Dimension struct {
	// Name is the short dimension name used in error kinds ("area").
	Name string
	// Table is the SQL table name ("area_codes").
	Table string
	// CodeColumn is the natural key column ("area_code").
	CodeColumn string
	// DisplayColumn is the human-readable column ("area").
	DisplayColumn string
}

// Dimensions enumerates every reference table in the catalog.
var Dimensions = []Dimension{
	{Name: "area", Table: "area_codes", CodeColumn: "area_code", DisplayColumn: "area"},
	{Name: "item", Table: "item_codes", CodeColumn: "item_code", DisplayColumn: "item"},
	{Name: "element", Table: "element_codes", CodeColumn: "element_code", DisplayColumn: "element"},
	{Name: "flag", Table: "flags", CodeColumn: "flag", DisplayColumn: "description"},
	{Name: "source", Table: "sources", CodeColumn: "source_code", DisplayColumn: "source"},
	{Name: "indicator", Table: "indicators", CodeColumn: "indicator_code", DisplayColumn: "indicator"},
	{Name: "sex", Table: "sexs", CodeColumn: "sex_code", DisplayColumn: "sex"},
	{Name: "survey", Table: "surveys", CodeColumn: "survey_code", DisplayColumn: "survey"},
	{Name: "purpose", Table: "purposes", CodeColumn: "purpose_code", DisplayColumn: "purpose"},
	{Name: "release", Table: "releases", CodeColumn: "release_code", DisplayColumn: "release"},
	{Name: "geographic_level", Table: "geographic_levels", CodeColumn: "geographic_level_code", DisplayColumn: "geographic_level"},
	{Name: "population_age_group", Table: "population_age_groups", CodeColumn: "population_age_group_code", DisplayColumn: "population_age_group"},
	{Name: "food_group", Table: "food_groups", CodeColumn: "food_group_code", DisplayColumn: "food_group"},
	{Name: "currency", Table: "currencies", CodeColumn: "currency_code", DisplayColumn: "currency"},
}

// DimensionByName returns the dimension with the given short name.
func DimensionByName(name string) (Dimension, bool) {
	for _, d := range Dimensions {
		if d.Name == name {
			return d, true
		}
	}
	return Dimension{}, false
}

// Codes is a snapshot of the natural codes of every dimension, loaded once
// at process start and authoritative for the process lifetime.
type Codes struct {
	sets map[string]map[string]struct{}
}

// loadConcurrency caps the parallel snapshot reads at startup.
const loadConcurrency = 4

// Load reads every dimension's natural codes from the store.
func Load(ctx context.Context, store query.Store, log *slog.Logger) (*Codes, error) {
	start := time.Now()

	sets := make([]map[string]struct{}, len(Dimensions))
	retryCfg := dberror.DefaultRetryConfig()
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(loadConcurrency)
	for i, d := range Dimensions {
		g.Go(func() error {
			// the snapshot load often races the database coming up, so
			// transient connectivity errors get a few attempts
			rows, err := dberror.Retry(gctx, retryCfg, func() ([]map[string]any, error) {
				return store.Select(gctx, fmt.Sprintf("SELECT %s FROM %s", d.CodeColumn, d.Table))
			})
			if err != nil {
				return fmt.Errorf("failed to load %s codes: %w", d.Name, err)
			}
			set := make(map[string]struct{}, len(rows))
			for _, row := range rows {
				if code, ok := row[d.CodeColumn].(string); ok {
					set[code] = struct{}{}
				}
			}
			sets[i] = set
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	c := &Codes{sets: make(map[string]map[string]struct{}, len(Dimensions))}
	total := 0
	for i, d := range Dimensions {
		c.sets[d.Name] = sets[i]
		total += len(sets[i])
	}
	log.Info("catalog: loaded dimension codes",
		"dimensions", len(Dimensions), "codes", total, "duration", time.Since(start))
	return c, nil
}

// NewCodes builds a snapshot from literal code sets. Used by tests and by
// callers that already hold the codes.
func NewCodes(sets map[string][]string) *Codes {
	c := &Codes{sets: make(map[string]map[string]struct{}, len(sets))}
	for dim, codes := range sets {
		set := make(map[string]struct{}, len(codes))
		for _, code := range codes {
			set[code] = struct{}{}
		}
		c.sets[dim] = set
	}
	return c
}

func (c *Codes) has(dim, code string) bool {
	_, ok := c.sets[dim][code]
	return ok
}

// IsValid reports whether code exists as a natural code of the named
// dimension.
func (c *Codes) IsValid(dim, code string) bool { return c.has(dim, code) }

func (c *Codes) IsValidAreaCode(code string) bool    { return c.has("area", code) }
func (c *Codes) IsValidItemCode(code string) bool    { return c.has("item", code) }
func (c *Codes) IsValidElementCode(code string) bool { return c.has("element", code) }
func (c *Codes) IsValidFlag(code string) bool        { return c.has("flag", code) }
func (c *Codes) IsValidSourceCode(code string) bool  { return c.has("source", code) }
func (c *Codes) IsValidIndicatorCode(code string) bool {
	return c.has("indicator", code)
}
func (c *Codes) IsValidSexCode(code string) bool    { return c.has("sex", code) }
func (c *Codes) IsValidSurveyCode(code string) bool { return c.has("survey", code) }
func (c *Codes) IsValidGeographicLevelCode(code string) bool {
	return c.has("geographic_level", code)
}
func (c *Codes) IsValidPopulationAgeGroupCode(code string) bool {
	return c.has("population_age_group", code)
}
func (c *Codes) IsValidFoodGroupCode(code string) bool {
	return c.has("food_group", code)
}
func (c *Codes) IsValidCurrencyCode(code string) bool {
	return c.has("currency", code)
}

// InvalidCode builds the client error paired with a failed code validation.
// The kind is stable per dimension ("invalid_area_code").
func InvalidCode(dim, code string) *query.ClientError {
	return query.Validation("invalid_"+dim+"_code", "Invalid %s code: %s", dim, code)
}

func InvalidAreaCode(code string) *query.ClientError    { return InvalidCode("area", code) }
func InvalidItemCode(code string) *query.ClientError    { return InvalidCode("item", code) }
func InvalidElementCode(code string) *query.ClientError { return InvalidCode("element", code) }
func InvalidFlag(code string) *query.ClientError        { return InvalidCode("flag", code) }
