package stats

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strings"
)

// Row maps a category name to a value. Missing data is NaN.
type Row map[string]float64

// MarshalJSON writes NaN and infinities as null.
func (r Row) MarshalJSON() ([]byte, error) {
	out := make(map[string]*float64, len(r))
	for k, v := range r {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			out[k] = nil
			continue
		}
		v := v
		out[k] = &v
	}
	return json.Marshal(out)
}

func (r *Row) UnmarshalJSON(data []byte) error {
	var in map[string]*float64
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	row := make(Row, len(in))
	for k, v := range in {
		if v == nil {
			row[k] = math.NaN()
			continue
		}
		row[k] = *v
	}
	*r = row
	return nil
}

// Profile holds one row per window.
type Profile map[Window]Row

// Value returns NaN when the window or category is absent.
func (p Profile) Value(w Window, category string) float64 {
	row, ok := p[w]
	if !ok {
		return math.NaN()
	}
	v, ok := row[category]
	if !ok {
		return math.NaN()
	}
	return v
}

// Table is keyed by player full name or team abbreviation.
type Table map[string]Profile

func (t Table) Names() []string {
	names := make([]string, 0, len(t))
	for name := range t {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Slice returns the row of every entity for one window.
func (t Table) Slice(w Window) map[string]Row {
	out := make(map[string]Row, len(t))
	for name, p := range t {
		if row, ok := p[w]; ok {
			out[name] = row
		}
	}
	return out
}

// Distribution is the league-wide mean and sample deviation per window and
// category.
type Distribution struct {
	Mean      Profile `json:"mean"`
	Deviation Profile `json:"deviation"`
}

// Pair is an unordered pair of team abbreviations stored in canonical order.
type Pair struct {
	A string
	B string
}

func NewPair(a, b string) Pair {
	if b < a {
		a, b = b, a
	}
	return Pair{A: a, B: b}
}

func (p Pair) String() string {
	return p.A + "|" + p.B
}

// Other returns the team of the pair that is not team.
func (p Pair) Other(team string) string {
	if team == p.A {
		return p.B
	}
	return p.A
}

func (p Pair) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

func (p *Pair) UnmarshalText(text []byte) error {
	a, b, ok := strings.Cut(string(text), "|")
	if !ok {
		return fmt.Errorf("malformed team pair %q", text)
	}
	*p = NewPair(a, b)
	return nil
}

// TeamRelevances maps a team to the relevance profiles of a set of players.
type TeamRelevances map[string]Table

// TradeRelevance scores the players of both teams of a pair against the
// other team's roster.
type TradeRelevance struct {
	Pair    Pair              `json:"pair"`
	Owners  map[string]string `json:"owners"`
	Players Table             `json:"players"`
}

type TradeTable map[Pair]TradeRelevance

// Lookup is order independent. A miss means no comparison is available.
func (t TradeTable) Lookup(a, b string) (TradeRelevance, bool) {
	tr, ok := t[NewPair(a, b)]
	return tr, ok
}
