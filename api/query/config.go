package query

import (
	"fmt"
	"strings"
)

// FilterKind enumerates the recognized filter descriptor kinds.
type FilterKind int

const (
	// FilterMulti builds "col IN (v1, ..., vn)" from a repeatable parameter.
	FilterMulti FilterKind = iota
	// FilterLike builds a case-insensitive substring match.
	FilterLike
	// FilterExact builds "col = v".
	FilterExact
	// FilterRangeMin builds "col >= v".
	FilterRangeMin
	// FilterRangeMax builds "col <= v".
	FilterRangeMax
)

func (k FilterKind) String() string {
	switch k {
	case FilterMulti:
		return "multi"
	case FilterLike:
		return "like"
	case FilterExact:
		return "exact"
	case FilterRangeMin:
		return "range_min"
	case FilterRangeMax:
		return "range_max"
	default:
		return fmt.Sprintf("FilterKind(%d)", int(k))
	}
}

// FilterConfig describes one externally visible query parameter and the
// predicate it maps to. Table and Column are SQL names resolved at startup;
// JoinColumn is the fact-side FK column anchoring the join when Table is a
// dimension rather than the fact table itself.
type FilterConfig struct {
	Param      string
	Kind       FilterKind
	Table      string
	Column     string
	JoinColumn string
	// Numeric requires each value to parse as a number before any validator
	// runs. Range kinds are always numeric.
	Numeric bool
	// Validate gates each presented value; Invalid builds the paired client
	// error for the first failing value. Both are nil for unvalidated params.
	Validate func(code string) bool
	Invalid  func(code string) *ClientError
}

// ParentField maps an exposed output field name to a column on the parent
// dimension table.
type ParentField struct {
	Name   string
	Column string
}

// ForeignKey describes a fact-side FK column and the dimension it resolves
// to. The join alias is the FK column with its "_id" suffix dropped, so two
// FKs into the same parent (reporter/partner into area_codes) stay distinct.
type ForeignKey struct {
	Column string
	Parent string
	Fields []ParentField
}

// Alias returns the SQL alias used when joining this foreign key.
func (fk ForeignKey) Alias() string {
	return strings.TrimSuffix(fk.Column, "_id")
}

// RangeConfig pairs the min/max filter parameters that bound one logical
// column, under the canonical name reshapers use ("year", "value").
type RangeConfig struct {
	Name     string
	MinParam string
	MaxParam string
}

// DatasetConfig is the declarative description of one dataset: the fact
// table, the fields a listing returns, the parameters it accepts, and how
// each parameter binds to a predicate. Configs are built once at startup and
// are immutable afterwards.
type DatasetConfig struct {
	Name        string
	Table       string
	DataFields  []string
	ForeignKeys []ForeignKey
	Filters     []FilterConfig
	Ranges      []RangeConfig
	// OrderBy lists data field names; the compiled statement orders by them
	// in sequence. The first entry is the dataset's primary dimension code.
	OrderBy []string

	// resolved at Validate time: field name -> source
	fieldSources map[string]fieldSource
}

type fieldSource struct {
	fk     *ForeignKey // nil when the field lives on the fact table
	column string
}

// qualified returns the SQL expression selecting this field.
func (fs fieldSource) qualified() string {
	if fs.fk == nil {
		return factAlias + "." + fs.column
	}
	return fs.fk.Alias() + "." + fs.column
}

// ParamFields returns the names of all recognized query parameters.
func (c *DatasetConfig) ParamFields() []string {
	params := make([]string, 0, len(c.Filters))
	for _, f := range c.Filters {
		params = append(params, f.Param)
	}
	return params
}

// Range returns the range config with the given canonical name.
func (c *DatasetConfig) Range(name string) (RangeConfig, bool) {
	for _, r := range c.Ranges {
		if r.Name == name {
			return r, true
		}
	}
	return RangeConfig{}, false
}

func (c *DatasetConfig) filter(param string) (FilterConfig, bool) {
	for _, f := range c.Filters {
		if f.Param == param {
			return f, true
		}
	}
	return FilterConfig{}, false
}

// Validate checks the configuration invariants that would otherwise surface
// as malformed SQL at request time. It is called for every dataset at boot;
// a failure is a programmer error and aborts startup.
func (c *DatasetConfig) Validate() error {
	if c.Name == "" || c.Table == "" {
		return fmt.Errorf("dataset config needs name and table, got %q/%q", c.Name, c.Table)
	}
	if len(c.DataFields) == 0 {
		return fmt.Errorf("dataset %s: no data fields", c.Name)
	}

	c.fieldSources = make(map[string]fieldSource, len(c.DataFields))
	exposed := make(map[string]fieldSource)
	for i := range c.ForeignKeys {
		fk := &c.ForeignKeys[i]
		if !strings.HasSuffix(fk.Column, "_id") {
			return fmt.Errorf("dataset %s: foreign key column %q must end in _id", c.Name, fk.Column)
		}
		for _, pf := range fk.Fields {
			if _, dup := exposed[pf.Name]; dup {
				return fmt.Errorf("dataset %s: field %q exposed by two foreign keys", c.Name, pf.Name)
			}
			exposed[pf.Name] = fieldSource{fk: fk, column: pf.Column}
		}
	}
	for _, name := range c.DataFields {
		if src, ok := exposed[name]; ok {
			c.fieldSources[name] = src
			continue
		}
		// anything not exposed by a foreign key is a fact column
		c.fieldSources[name] = fieldSource{column: name}
	}

	seen := make(map[string]bool, len(c.Filters))
	for _, f := range c.Filters {
		if f.Param == "" {
			return fmt.Errorf("dataset %s: filter with empty parameter name", c.Name)
		}
		if seen[f.Param] {
			return fmt.Errorf("dataset %s: duplicate filter parameter %q", c.Name, f.Param)
		}
		seen[f.Param] = true
		if f.Table != c.Table && f.JoinColumn == "" {
			return fmt.Errorf("dataset %s: filter %q targets %s.%s without a join anchor",
				c.Name, f.Param, f.Table, f.Column)
		}
		if f.JoinColumn != "" {
			if fk := c.foreignKeyFor(f.JoinColumn); fk == nil || fk.Parent != f.Table {
				return fmt.Errorf("dataset %s: filter %q join anchor %q does not resolve to %s",
					c.Name, f.Param, f.JoinColumn, f.Table)
			}
		}
		if f.Kind == FilterLike && f.Numeric {
			return fmt.Errorf("dataset %s: like filter %q cannot be numeric", c.Name, f.Param)
		}
		if (f.Validate == nil) != (f.Invalid == nil) {
			return fmt.Errorf("dataset %s: filter %q must pair validator with error constructor", c.Name, f.Param)
		}
	}

	for _, r := range c.Ranges {
		if _, ok := c.filter(r.MinParam); !ok {
			return fmt.Errorf("dataset %s: range %q names unknown parameter %q", c.Name, r.Name, r.MinParam)
		}
		if _, ok := c.filter(r.MaxParam); !ok {
			return fmt.Errorf("dataset %s: range %q names unknown parameter %q", c.Name, r.Name, r.MaxParam)
		}
	}

	for _, name := range c.OrderBy {
		if _, ok := c.fieldSources[name]; !ok {
			return fmt.Errorf("dataset %s: order column %q is not a data field", c.Name, name)
		}
	}
	return nil
}

func (c *DatasetConfig) foreignKeyFor(column string) *ForeignKey {
	for i := range c.ForeignKeys {
		if c.ForeignKeys[i].Column == column {
			return &c.ForeignKeys[i]
		}
	}
	return nil
}
