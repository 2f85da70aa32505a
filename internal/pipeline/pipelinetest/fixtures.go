// Package pipelinetest provides a canned league for tests of the pipeline
// and the packages built on it.
package pipelinetest

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/omarshaarawi/courtside/internal/models"
	"github.com/omarshaarawi/courtside/internal/stats"
)

// Catalog tracks points and field goal percentage over every window.
func Catalog() *stats.Catalog {
	c, err := stats.NewCatalog([]stats.Category{
		{Key: "0", Name: "PTS", Agg: stats.AggSum},
		{Key: "19", Name: "FG%", Agg: stats.AggMean},
		{Key: "4", Name: "OREB*", Agg: stats.AggSum},
	}, map[int]stats.Window{0: stats.Last7, 1: stats.Last15, 2: stats.Last30, 3: stats.Season},
		stats.FilterOptions{DropRedundant: true, DropUnknown: true})
	if err != nil {
		panic(err)
	}
	return c
}

func player(id int, name string, pts, fg float64, windows int) models.Player {
	p := models.Player{ID: id, FullName: name}
	for i := 0; i < 4; i++ {
		stat := models.Stat{}
		if i >= 4-windows {
			stat.AverageStats = map[string]float64{"0": pts, "19": fg, "4": 1}
		}
		p.Stats = append(p.Stats, stat)
	}
	return p
}

// Fetcher serves a two team league with one free agent and counts calls.
type Fetcher struct {
	mu    sync.Mutex
	Calls map[string]int

	Teams   []models.TeamInfo
	Players []models.Player
	Rosters map[string][]string
	Err     error
}

func NewFetcher() *Fetcher {
	return &Fetcher{
		Calls: make(map[string]int),
		Teams: []models.TeamInfo{
			{ID: 1, Abbreviation: "BOS", Name: "Boston Bruisers"},
			{ID: 2, Abbreviation: "DAL", Name: "Dallas Dunkers"},
		},
		Players: []models.Player{
			player(1, "Jayson Tatum", 27, 0.47, 4),
			player(2, "Jrue Holiday", 12, 0.48, 4),
			player(3, "Luka Doncic", 33, 0.49, 4),
			player(4, "Kyrie Irving", 25, 0.50, 4),
			player(5, "Gordon Hayward", 14, 0.45, 3),
		},
		Rosters: map[string][]string{
			"BOS": {"Jayson Tatum", "Jrue Holiday"},
			"DAL": {"Luka Doncic", "Kyrie Irving"},
		},
	}
}

func (f *Fetcher) call(name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls[name]++
	return f.Err
}

func (f *Fetcher) Count(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.Calls[name]
}

func (f *Fetcher) GetLeagueMetadata(ctx context.Context) (*models.LeagueMetadata, error) {
	if err := f.call("league"); err != nil {
		return nil, err
	}
	return &models.LeagueMetadata{LeagueID: 42, Name: "Hardwood", SeasonID: 2024}, nil
}

func (f *Fetcher) GetTeams(ctx context.Context) ([]models.TeamInfo, error) {
	if err := f.call("teams"); err != nil {
		return nil, err
	}
	return f.Teams, nil
}

func (f *Fetcher) GetPlayers(ctx context.Context) ([]models.Player, error) {
	if err := f.call("players"); err != nil {
		return nil, err
	}
	return f.Players, nil
}

func (f *Fetcher) GetRosters(ctx context.Context, teams []models.TeamInfo) (map[string][]string, error) {
	if err := f.call("rosters"); err != nil {
		return nil, err
	}
	return f.Rosters, nil
}

// Checkpoints keeps JSON encoded checkpoints in memory.
type Checkpoints struct {
	mu      sync.Mutex
	payload map[string][]byte
}

func NewCheckpoints() *Checkpoints {
	return &Checkpoints{payload: make(map[string][]byte)}
}

func (c *Checkpoints) Load(ctx context.Context, asOf, name string, v any) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	data, ok := c.payload[asOf+"/"+name]
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, fmt.Errorf("decoding %s/%s: %w", asOf, name, err)
	}
	return true, nil
}

func (c *Checkpoints) Save(ctx context.Context, asOf, name string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.payload[asOf+"/"+name] = data
	return nil
}

func (c *Checkpoints) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.payload)
}
