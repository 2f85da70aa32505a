package stats

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// AggRule combines member values into a roster value.
type AggRule int

const (
	AggUnset AggRule = iota
	AggSum
	AggMean
)

func ParseAggRule(s string) (AggRule, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "sum":
		return AggSum, nil
	case "mean":
		return AggMean, nil
	default:
		return AggUnset, fmt.Errorf("%w: unknown aggregation %q", ErrInvalidConfig, s)
	}
}

func (a AggRule) String() string {
	switch a {
	case AggSum:
		return "sum"
	case AggMean:
		return "mean"
	default:
		return "unset"
	}
}

// Apply skips NaN values. A slice with no valid values yields NaN.
func (a AggRule) Apply(values []float64) float64 {
	var sum float64
	n := 0
	for _, v := range values {
		if math.IsNaN(v) {
			continue
		}
		sum += v
		n++
	}
	if n == 0 {
		return math.NaN()
	}
	switch a {
	case AggSum:
		return sum
	case AggMean:
		return sum / float64(n)
	default:
		return math.NaN()
	}
}

// RelevanceRule turns a player z-score and a reference roster z-score into a
// relevance value for one category.
type RelevanceRule int

const (
	RelevanceZScore RelevanceRule = iota
	RelevanceMarginal
	RelevanceWeighted
)

func ParseRelevanceRule(s string) (RelevanceRule, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "zscore":
		return RelevanceZScore, nil
	case "marginal":
		return RelevanceMarginal, nil
	case "weighted":
		return RelevanceWeighted, nil
	default:
		return RelevanceZScore, fmt.Errorf("%w: unknown relevance rule %q", ErrInvalidConfig, s)
	}
}

func (r RelevanceRule) String() string {
	switch r {
	case RelevanceZScore:
		return "zscore"
	case RelevanceMarginal:
		return "marginal"
	case RelevanceWeighted:
		return "weighted"
	default:
		return "unknown"
	}
}

func (r RelevanceRule) Score(player, reference, weight float64) float64 {
	switch r {
	case RelevanceZScore:
		return player
	case RelevanceMarginal:
		return player - reference
	case RelevanceWeighted:
		return player * weight
	default:
		return math.NaN()
	}
}

// Category is a configured ESPN stat. Name markers: an empty name hides the
// stat, '*' marks it redundant and '?' marks it unknown.
type Category struct {
	Key       string
	Name      string
	Agg       AggRule
	Relevance RelevanceRule
	Weight    float64
}

func (c Category) Hidden() bool    { return len(c.Name) == 0 }
func (c Category) Redundant() bool { return strings.Contains(c.Name, "*") }
func (c Category) Unknown() bool   { return strings.Contains(c.Name, "?") }

type FilterOptions struct {
	DropRedundant bool
	DropUnknown   bool
}

func (c Category) Included(opts FilterOptions) bool {
	if c.Hidden() {
		return false
	}
	if c.Redundant() && opts.DropRedundant {
		return false
	}
	if c.Unknown() && opts.DropUnknown {
		return false
	}
	return true
}

// Catalog is the validated category and window configuration of a league.
// Every table in this package is built from a catalog's columns so player
// and roster tables stay category aligned.
type Catalog struct {
	categories []Category
	byKey      map[string]Category
	columns    []Category
	windows    map[int]Window
	filter     FilterOptions
}

func NewCatalog(categories []Category, windows map[int]Window, filter FilterOptions) (*Catalog, error) {
	c := &Catalog{
		byKey:   make(map[string]Category, len(categories)),
		windows: make(map[int]Window, len(windows)),
		filter:  filter,
	}

	names := make(map[string]string)
	for _, cat := range categories {
		if cat.Key == "" {
			return nil, fmt.Errorf("%w: category with empty key", ErrInvalidConfig)
		}
		if _, dup := c.byKey[cat.Key]; dup {
			return nil, fmt.Errorf("%w: duplicate stat key %s", ErrInvalidConfig, cat.Key)
		}
		if !cat.Included(filter) {
			c.byKey[cat.Key] = cat
			c.categories = append(c.categories, cat)
			continue
		}
		if other, dup := names[cat.Name]; dup {
			return nil, fmt.Errorf("%w: stat keys %s and %s share name %q", ErrInvalidConfig, other, cat.Key, cat.Name)
		}
		if cat.Agg != AggSum && cat.Agg != AggMean {
			return nil, fmt.Errorf("%w: category %q has no aggregation rule", ErrInvalidConfig, cat.Name)
		}
		names[cat.Name] = cat.Key
		c.byKey[cat.Key] = cat
		c.categories = append(c.categories, cat)
	}

	sort.SliceStable(c.categories, func(i, j int) bool {
		return keyLess(c.categories[i].Key, c.categories[j].Key)
	})
	for _, cat := range c.categories {
		if cat.Included(filter) {
			c.columns = append(c.columns, cat)
		}
	}
	if len(c.columns) == 0 {
		return nil, fmt.Errorf("%w: no categories left after filtering", ErrInvalidConfig)
	}

	seen := make(map[Window]int, len(windows))
	for idx, w := range windows {
		if idx < 0 {
			return nil, fmt.Errorf("%w: negative window index %d", ErrInvalidConfig, idx)
		}
		if !w.Valid() {
			return nil, fmt.Errorf("%w: invalid window at index %d", ErrInvalidConfig, idx)
		}
		if other, dup := seen[w]; dup {
			return nil, fmt.Errorf("%w: window %s mapped by indexes %d and %d", ErrInvalidConfig, w, other, idx)
		}
		seen[w] = idx
		c.windows[idx] = w
	}
	if len(c.windows) == 0 {
		return nil, fmt.Errorf("%w: no windows configured", ErrInvalidConfig)
	}

	return c, nil
}

func keyLess(a, b string) bool {
	ai, aerr := strconv.Atoi(a)
	bi, berr := strconv.Atoi(b)
	switch {
	case aerr == nil && berr == nil:
		return ai < bi
	case aerr == nil:
		return true
	case berr == nil:
		return false
	default:
		return a < b
	}
}

// Columns returns the included categories ordered by stat key.
func (c *Catalog) Columns() []Category {
	out := make([]Category, len(c.columns))
	copy(out, c.columns)
	return out
}

// ColumnNames returns the display names of Columns.
func (c *Catalog) ColumnNames() []string {
	out := make([]string, len(c.columns))
	for i, cat := range c.columns {
		out[i] = cat.Name
	}
	return out
}

func (c *Catalog) Category(key string) (Category, bool) {
	cat, ok := c.byKey[key]
	return cat, ok
}

func (c *Catalog) Column(name string) (Category, bool) {
	for _, cat := range c.columns {
		if cat.Name == name {
			return cat, true
		}
	}
	return Category{}, false
}

func (c *Catalog) WindowAt(index int) (Window, bool) {
	w, ok := c.windows[index]
	return w, ok
}

func (c *Catalog) Filter() FilterOptions {
	return c.filter
}

// EmptyRow returns a row holding NaN for every column.
func (c *Catalog) EmptyRow() Row {
	row := make(Row, len(c.columns))
	for _, cat := range c.columns {
		row[cat.Name] = math.NaN()
	}
	return row
}

// EmptyProfile returns a profile with a NaN row for every window.
func (c *Catalog) EmptyProfile() Profile {
	p := make(Profile, len(Windows))
	for _, w := range Windows {
		p[w] = c.EmptyRow()
	}
	return p
}

// ReadableStats maps raw ESPN stat ids to display names. Keys without a
// configured category are an error; hidden and filtered keys are dropped.
func (c *Catalog) ReadableStats(raw map[string]float64) (Row, error) {
	row := c.EmptyRow()
	for key, value := range raw {
		cat, ok := c.byKey[key]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownStatKey, key)
		}
		if !cat.Included(c.filter) {
			continue
		}
		row[cat.Name] = value
	}
	return row, nil
}
