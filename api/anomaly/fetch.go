package anomaly

import (
	"context"
	"fmt"

	"github.com/agrostats/faostat-api/api/datasets"
	"github.com/agrostats/faostat-api/api/query"
)

// Fetch loads the official producer price series ordered by
// (area, item, year), the order Scan requires.
func Fetch(ctx context.Context, store query.Store) ([]Observation, error) {
	rows, err := store.Select(ctx, `
		SELECT a.area, i.item, t.year, t.value
		FROM prices t
		JOIN area_codes a ON t.area_code_id = a.id
		JOIN item_codes i ON t.item_code_id = i.id
		JOIN element_codes e ON t.element_code_id = e.id
		WHERE e.element_code = $1 AND t.value IS NOT NULL
		ORDER BY a.area, i.item, t.year`,
		datasets.ElementCodeProducerPrice)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch price observations: %w", err)
	}

	observations := make([]Observation, 0, len(rows))
	for _, row := range rows {
		price, ok := toFloat(row["value"])
		if !ok {
			continue
		}
		observations = append(observations, Observation{
			Area:  toString(row["area"]),
			Item:  toString(row["item"]),
			Year:  toInt(row["year"]),
			Price: price,
		})
	}
	return observations, nil
}

func toString(v any) string {
	s, _ := v.(string)
	return s
}

func toInt(v any) int {
	switch n := v.(type) {
	case int:
		return n
	case int16:
		return int(n)
	case int32:
		return int(n)
	case int64:
		return int(n)
	case float64:
		return int(n)
	default:
		return 0
	}
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int64:
		return float64(n), true
	case int32:
		return float64(n), true
	default:
		return 0, false
	}
}
