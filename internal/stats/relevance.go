package stats

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
)

// ScorePlayerRelevance applies each category's relevance rule to a
// normalized player profile against a normalized reference roster.
func ScorePlayerRelevance(player, reference Profile, catalog *Catalog) Profile {
	columns := catalog.Columns()
	out := make(Profile, len(Windows))
	for _, w := range Windows {
		row := make(Row, len(columns))
		for _, cat := range columns {
			row[cat.Name] = cat.Relevance.Score(player.Value(w, cat.Name), reference.Value(w, cat.Name), cat.Weight)
		}
		out[w] = row
	}
	return out
}

func scoreMembers(members []string, reference Profile, players Table, catalog *Catalog, team string) (Table, error) {
	out := make(Table, len(members))
	for _, name := range members {
		profile, ok := players[name]
		if !ok {
			return nil, fmt.Errorf("%w: %q on roster %s", ErrMissingPlayer, name, team)
		}
		out[name] = ScorePlayerRelevance(profile, reference, catalog)
	}
	return out, nil
}

func sortedTeams(rosters map[string][]string) []string {
	teams := make([]string, 0, len(rosters))
	for team := range rosters {
		teams = append(teams, team)
	}
	sort.Strings(teams)
	return teams
}

// ScoreTeamRelevances scores every rostered player against their own team.
func ScoreTeamRelevances(rosters map[string][]string, players, teamStats Table, catalog *Catalog) (TeamRelevances, error) {
	out := make(TeamRelevances, len(rosters))
	for _, team := range sortedTeams(rosters) {
		reference, ok := teamStats[team]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingTeam, team)
		}
		scored, err := scoreMembers(rosters[team], reference, players, catalog, team)
		if err != nil {
			return nil, err
		}
		out[team] = scored
	}
	return out, nil
}

// ScoreTradeRelevances scores, for every pair of distinct teams, each player
// against the other team's roster. Pairs are stored in canonical order.
func ScoreTradeRelevances(rosters map[string][]string, players, teamStats Table, catalog *Catalog) (TradeTable, error) {
	teams := sortedTeams(rosters)
	for _, team := range teams {
		if _, ok := teamStats[team]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingTeam, team)
		}
	}

	out := make(TradeTable, len(teams)*(len(teams)-1)/2)
	for i, a := range teams {
		for _, b := range teams[i+1:] {
			pair := NewPair(a, b)
			tr := TradeRelevance{
				Pair:    pair,
				Owners:  make(map[string]string, len(rosters[a])+len(rosters[b])),
				Players: make(Table, len(rosters[a])+len(rosters[b])),
			}
			for _, owner := range []string{a, b} {
				scored, err := scoreMembers(rosters[owner], teamStats[pair.Other(owner)], players, catalog, owner)
				if err != nil {
					return nil, err
				}
				for name, p := range scored {
					tr.Players[name] = p
					tr.Owners[name] = owner
				}
			}
			out[pair] = tr
		}
	}
	return out, nil
}

// FreeAgents returns the players of the table that are on no roster.
func FreeAgents(players Table, rosters map[string][]string) []string {
	rostered := make(map[string]struct{})
	for _, members := range rosters {
		for _, name := range members {
			rostered[name] = struct{}{}
		}
	}
	var out []string
	for _, name := range players.Names() {
		if _, ok := rostered[name]; !ok {
			out = append(out, name)
		}
	}
	return out
}

// ScoreFreeAgentRelevances scores every unrostered player against each team.
func ScoreFreeAgentRelevances(rosters map[string][]string, players, teamStats Table, catalog *Catalog) (TeamRelevances, error) {
	agents := FreeAgents(players, rosters)
	out := make(TeamRelevances, len(rosters))
	for _, team := range sortedTeams(rosters) {
		reference, ok := teamStats[team]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingTeam, team)
		}
		scored, err := scoreMembers(agents, reference, players, catalog, team)
		if err != nil {
			return nil, err
		}
		out[team] = scored
	}
	return out, nil
}

// Ranked is an entity with the sum of its non-NaN values for one window.
type Ranked struct {
	Name  string
	Total float64
	Row   Row
}

func (r Ranked) MarshalJSON() ([]byte, error) {
	var total *float64
	if !math.IsNaN(r.Total) {
		t := r.Total
		total = &t
	}
	return json.Marshal(struct {
		Name  string   `json:"name"`
		Total *float64 `json:"total"`
		Row   Row      `json:"values"`
	}{r.Name, total, r.Row})
}

// Rank orders the entities of a table by total, highest first. Entities
// without any value sort last.
func Rank(table Table, w Window) []Ranked {
	out := make([]Ranked, 0, len(table))
	for name, p := range table {
		row := p[w]
		total := math.NaN()
		for _, v := range row {
			if math.IsNaN(v) {
				continue
			}
			if math.IsNaN(total) {
				total = 0
			}
			total += v
		}
		out = append(out, Ranked{Name: name, Total: total, Row: row})
	}
	sort.Slice(out, func(i, j int) bool {
		ti, tj := out[i].Total, out[j].Total
		switch {
		case math.IsNaN(ti) && math.IsNaN(tj):
			return out[i].Name < out[j].Name
		case math.IsNaN(ti):
			return false
		case math.IsNaN(tj):
			return true
		case ti != tj:
			return ti > tj
		default:
			return out[i].Name < out[j].Name
		}
	})
	return out
}
