package config

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/omarshaarawi/courtside/internal/stats"
)

// LeagueFile is the on-disk league category configuration.
//
//	stats_map          ESPN stat id -> display name ("" hides, '*' redundant, '?' unknown)
//	stats_index_map    index in a player's stats list -> window name
//	stats_agg_map      display name -> "sum" or "mean"
//	relevance_map      display name -> "zscore", "marginal" or "weighted"
//	relevance_weights  display name -> weight used by "weighted"
type LeagueFile struct {
	StatsMap         map[string]string  `json:"stats_map"`
	StatsIndexMap    map[string]string  `json:"stats_index_map"`
	StatsAggMap      map[string]string  `json:"stats_agg_map"`
	RelevanceMap     map[string]string  `json:"relevance_map"`
	RelevanceWeights map[string]float64 `json:"relevance_weights"`
	FilterRedundant  *bool              `json:"filter_redundant"`
	FilterUnknown    *bool              `json:"filter_unknown"`
}

func LoadLeague(path string) (*stats.Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening league config: %w", err)
	}
	defer f.Close()

	catalog, err := ParseLeague(f)
	if err != nil {
		return nil, fmt.Errorf("loading league config %s: %w", path, err)
	}
	return catalog, nil
}

func ParseLeague(r io.Reader) (*stats.Catalog, error) {
	var lf LeagueFile
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&lf); err != nil {
		return nil, fmt.Errorf("decoding league config: %w", err)
	}
	return lf.Catalog()
}

// Catalog validates the file and builds the typed category set. Names in
// the aggregation and relevance maps must refer to a configured stat.
func (lf LeagueFile) Catalog() (*stats.Catalog, error) {
	if len(lf.StatsMap) == 0 {
		return nil, fmt.Errorf("%w: stats_map is empty", stats.ErrInvalidConfig)
	}

	filter := stats.FilterOptions{DropRedundant: true, DropUnknown: true}
	if lf.FilterRedundant != nil {
		filter.DropRedundant = *lf.FilterRedundant
	}
	if lf.FilterUnknown != nil {
		filter.DropUnknown = *lf.FilterUnknown
	}

	known := make(map[string]bool, len(lf.StatsMap))
	for _, name := range lf.StatsMap {
		if name != "" {
			known[name] = true
		}
	}
	for name := range lf.StatsAggMap {
		if !known[name] {
			return nil, fmt.Errorf("%w: stats_agg_map names unknown stat %q", stats.ErrInvalidConfig, name)
		}
	}
	for name := range lf.RelevanceMap {
		if !known[name] {
			return nil, fmt.Errorf("%w: relevance_map names unknown stat %q", stats.ErrInvalidConfig, name)
		}
	}
	for name := range lf.RelevanceWeights {
		if !known[name] {
			return nil, fmt.Errorf("%w: relevance_weights names unknown stat %q", stats.ErrInvalidConfig, name)
		}
	}

	categories := make([]stats.Category, 0, len(lf.StatsMap))
	for key, name := range lf.StatsMap {
		cat := stats.Category{Key: key, Name: name, Weight: 1}
		if rule, ok := lf.StatsAggMap[name]; ok {
			agg, err := stats.ParseAggRule(rule)
			if err != nil {
				return nil, fmt.Errorf("stat %q: %w", name, err)
			}
			cat.Agg = agg
		}
		rel, err := stats.ParseRelevanceRule(lf.RelevanceMap[name])
		if err != nil {
			return nil, fmt.Errorf("stat %q: %w", name, err)
		}
		cat.Relevance = rel
		if w, ok := lf.RelevanceWeights[name]; ok {
			cat.Weight = w
		}
		categories = append(categories, cat)
	}

	windows := make(map[int]stats.Window, len(lf.StatsIndexMap))
	for idx, name := range lf.StatsIndexMap {
		i, err := strconv.Atoi(idx)
		if err != nil {
			return nil, fmt.Errorf("%w: stats_index_map key %q is not an integer", stats.ErrInvalidConfig, idx)
		}
		w, err := stats.ParseWindow(name)
		if err != nil {
			return nil, err
		}
		windows[i] = w
	}

	return stats.NewCatalog(categories, windows, filter)
}
