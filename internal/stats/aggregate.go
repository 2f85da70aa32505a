package stats

import (
	"fmt"
	"sort"

	"github.com/omarshaarawi/courtside/internal/models"
)

// ParsePlayerStatistics builds the player table from ESPN player records.
// Each entry of a player's stats list is mapped to a window by its index;
// indexes without a configured window are ignored. A window without average
// stats stays NaN so every profile has the same shape. Later records with
// the same name replace earlier ones.
func ParsePlayerStatistics(players []models.Player, catalog *Catalog) (Table, error) {
	table := make(Table, len(players))
	for _, player := range players {
		if player.FullName == "" {
			return nil, fmt.Errorf("%w: player %d has no fullName", ErrMissingField, player.ID)
		}

		profile := catalog.EmptyProfile()
		for i, stat := range player.Stats {
			w, ok := catalog.WindowAt(i)
			if !ok || stat.AverageStats == nil {
				continue
			}
			row, err := catalog.ReadableStats(stat.AverageStats)
			if err != nil {
				return nil, fmt.Errorf("parsing %s %s stats: %w", player.FullName, w, err)
			}
			profile[w] = row
		}
		table[player.FullName] = profile
	}
	return table, nil
}

// AggregateRosterStatistics combines the member profiles of each roster with
// every category's aggregation rule. A member absent from the player table
// fails the whole computation.
func AggregateRosterStatistics(players Table, rosters map[string][]string, catalog *Catalog) (Table, error) {
	teams := make([]string, 0, len(rosters))
	for team := range rosters {
		teams = append(teams, team)
	}
	sort.Strings(teams)

	columns := catalog.Columns()
	out := make(Table, len(rosters))
	for _, team := range teams {
		members := rosters[team]
		for _, name := range members {
			if _, ok := players[name]; !ok {
				return nil, fmt.Errorf("%w: %q on roster %s", ErrMissingPlayer, name, team)
			}
		}

		profile := make(Profile, len(Windows))
		values := make([]float64, len(members))
		for _, w := range Windows {
			row := make(Row, len(columns))
			for _, cat := range columns {
				for i, name := range members {
					values[i] = players[name].Value(w, cat.Name)
				}
				row[cat.Name] = cat.Agg.Apply(values)
			}
			profile[w] = row
		}
		out[team] = profile
	}
	return out, nil
}
