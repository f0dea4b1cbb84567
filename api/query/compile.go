package query

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// factAlias is the alias the fact table is selected under.
const factAlias = "t"

// Page is a pagination window. Caps are enforced by the HTTP layer before
// compilation.
type Page struct {
	Limit  int
	Offset int
}

// Compiled is an executable pair of statements for one request: the
// projected, ordered, paginated SELECT and the matching COUNT.
type Compiled struct {
	SelectSQL  string
	SelectArgs []any
	CountSQL   string
	CountArgs  []any
	// JoinCount is the number of dimension joins in the compiled statement.
	JoinCount int
}

// Compile turns a dataset configuration and a raw parameter map into an
// executable statement pair. Unknown parameters are ignored. The first value
// failing its validator aborts compilation with the paired client error, so
// no statement reaches the store for an invalid request.
func Compile(cfg *DatasetConfig, params url.Values, page Page) (*Compiled, error) {
	used, err := acceptParams(cfg, params)
	if err != nil {
		return nil, err
	}
	if err := checkRanges(cfg, used); err != nil {
		return nil, err
	}

	joins := joinClosure(cfg, used)

	var where []string
	var args []any
	for _, u := range used {
		pred, predArgs, err := u.predicate(len(args))
		if err != nil {
			return nil, err
		}
		where = append(where, pred)
		args = append(args, predArgs...)
	}

	var sel strings.Builder
	sel.WriteString("SELECT ")
	for i, name := range cfg.DataFields {
		if i > 0 {
			sel.WriteString(", ")
		}
		fmt.Fprintf(&sel, "%s AS %s", cfg.fieldSources[name].qualified(), name)
	}
	from := fromClause(cfg, joins)
	sel.WriteString(from)

	var cnt strings.Builder
	cnt.WriteString("SELECT COUNT(*)")
	cnt.WriteString(from)

	if len(where) > 0 {
		clause := " WHERE " + strings.Join(where, " AND ")
		sel.WriteString(clause)
		cnt.WriteString(clause)
	}

	sel.WriteString(" ORDER BY ")
	for i, name := range cfg.OrderBy {
		if i > 0 {
			sel.WriteString(", ")
		}
		sel.WriteString(cfg.fieldSources[name].qualified())
	}
	fmt.Fprintf(&sel, " LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)

	selectArgs := make([]any, 0, len(args)+2)
	selectArgs = append(selectArgs, args...)
	selectArgs = append(selectArgs, page.Limit, page.Offset)

	return &Compiled{
		SelectSQL:  sel.String(),
		SelectArgs: selectArgs,
		CountSQL:   cnt.String(),
		CountArgs:  args,
		JoinCount:  len(joins),
	}, nil
}

// usedFilter is one presented parameter with its validated values.
type usedFilter struct {
	cfg    FilterConfig
	values []any
}

func acceptParams(cfg *DatasetConfig, params url.Values) ([]usedFilter, error) {
	var used []usedFilter
	for _, f := range cfg.Filters {
		raw := params[f.Param]
		var vals []string
		for _, v := range raw {
			if v != "" {
				vals = append(vals, v)
			}
		}
		if len(vals) == 0 {
			continue
		}
		if f.Kind != FilterMulti && len(vals) > 1 {
			return nil, BadRequest("parameter %s may only be given once", f.Param)
		}
		u := usedFilter{cfg: f}
		for _, v := range vals {
			if f.Validate != nil && !f.Validate(v) {
				return nil, f.Invalid(v)
			}
			val, err := coerce(f, v)
			if err != nil {
				return nil, err
			}
			u.values = append(u.values, val)
		}
		used = append(used, u)
	}
	return used, nil
}

// coerce parses numeric parameters so the store compares them natively.
func coerce(f FilterConfig, v string) (any, error) {
	numeric := f.Numeric || f.Kind == FilterRangeMin || f.Kind == FilterRangeMax
	if !numeric {
		return v, nil
	}
	if n, err := strconv.Atoi(v); err == nil {
		return n, nil
	}
	if fv, err := strconv.ParseFloat(v, 64); err == nil {
		return fv, nil
	}
	return nil, Validation("invalid_parameter", "%s must be numeric, got %q", f.Param, v)
}

func checkRanges(cfg *DatasetConfig, used []usedFilter) error {
	byParam := make(map[string]any, len(used))
	for _, u := range used {
		if len(u.values) == 1 {
			byParam[u.cfg.Param] = u.values[0]
		}
	}
	for _, r := range cfg.Ranges {
		minV, okMin := byParam[r.MinParam]
		maxV, okMax := byParam[r.MaxParam]
		if !okMin || !okMax {
			continue
		}
		if asFloat(minV) > asFloat(maxV) {
			return Validation("invalid_range",
				"%s must be less than or equal to %s", r.MinParam, r.MaxParam)
		}
	}
	return nil
}

func asFloat(v any) float64 {
	switch n := v.(type) {
	case int:
		return float64(n)
	case float64:
		return n
	default:
		return 0
	}
}

// joinClosure collects the minimum set of dimension joins: one per distinct
// join anchor across the used filters and the projected dimension fields
// (the order columns are data fields, so they are already covered).
func joinClosure(cfg *DatasetConfig, used []usedFilter) []*ForeignKey {
	var joins []*ForeignKey
	seen := make(map[string]bool)
	add := func(fk *ForeignKey) {
		if fk == nil || seen[fk.Column] {
			return
		}
		seen[fk.Column] = true
		joins = append(joins, fk)
	}
	for _, u := range used {
		if u.cfg.JoinColumn != "" {
			add(cfg.foreignKeyFor(u.cfg.JoinColumn))
		}
	}
	for _, name := range cfg.DataFields {
		add(cfg.fieldSources[name].fk)
	}
	return joins
}

func fromClause(cfg *DatasetConfig, joins []*ForeignKey) string {
	var b strings.Builder
	fmt.Fprintf(&b, " FROM %s %s", cfg.Table, factAlias)
	for _, fk := range joins {
		fmt.Fprintf(&b, " JOIN %s %s ON %s.%s = %s.id",
			fk.Parent, fk.Alias(), factAlias, fk.Column, fk.Alias())
	}
	return b.String()
}

// predicate renders one filter into SQL with positional args starting after
// offset existing arguments.
func (u usedFilter) predicate(argOffset int) (string, []any, error) {
	f := u.cfg
	col := f.Column
	if f.JoinColumn != "" {
		col = strings.TrimSuffix(f.JoinColumn, "_id") + "." + col
	} else {
		col = factAlias + "." + col
	}

	switch f.Kind {
	case FilterMulti:
		placeholders := make([]string, len(u.values))
		for i := range u.values {
			placeholders[i] = fmt.Sprintf("$%d", argOffset+i+1)
		}
		return fmt.Sprintf("%s IN (%s)", col, strings.Join(placeholders, ", ")), u.values, nil
	case FilterLike:
		pattern := "%" + u.values[0].(string) + "%"
		return fmt.Sprintf("%s ILIKE $%d", col, argOffset+1), []any{pattern}, nil
	case FilterExact:
		return fmt.Sprintf("%s = $%d", col, argOffset+1), u.values, nil
	case FilterRangeMin:
		return fmt.Sprintf("%s >= $%d", col, argOffset+1), u.values, nil
	case FilterRangeMax:
		return fmt.Sprintf("%s <= $%d", col, argOffset+1), u.values, nil
	default:
		return "", nil, fmt.Errorf("unknown filter kind %v for %s", f.Kind, f.Param)
	}
}
