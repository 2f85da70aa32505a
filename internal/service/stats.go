package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/omarshaarawi/courtside/internal/pipeline"
	"github.com/omarshaarawi/courtside/internal/repository/memory"
	"github.com/omarshaarawi/courtside/internal/stats"
)

const staleAfter = 24 * time.Hour

var (
	ErrTeamNotFound   = errors.New("team not found")
	ErrPlayerNotFound = errors.New("player not found")
)

type StatsService struct {
	pipeline *pipeline.Pipeline
	repo     *memory.Repository
	now      func() time.Time
	mu       sync.Mutex
}

func NewStatsService(p *pipeline.Pipeline, repo *memory.Repository) *StatsService {
	return &StatsService{pipeline: p, repo: repo, now: time.Now}
}

// Refresh runs the pipeline for asOf and caches the results.
func (s *StatsService) Refresh(ctx context.Context, asOf time.Time, force bool) (*pipeline.Results, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.pipeline.Run(ctx, asOf, force)
	if err != nil {
		return nil, fmt.Errorf("refreshing statistics: %w", err)
	}
	s.repo.SaveResults(res)
	return res, nil
}

// Results returns the cached results, refreshing them for today when they
// are missing or older than a day.
func (s *StatsService) Results(ctx context.Context) (*pipeline.Results, error) {
	res, updated := s.repo.GetResults()
	if res == nil || s.now().Sub(updated) > staleAfter {
		slog.Info("Statistics stale, refreshing", "last_updated", updated)
		return s.Refresh(ctx, s.now(), false)
	}
	return res, nil
}

func (s *StatsService) Columns() []string {
	return s.pipeline.Catalog().ColumnNames()
}

func similarity(a, b string) float64 {
	a, b = strings.ToLower(a), strings.ToLower(b)
	maxLen := max(len(a), len(b))
	if maxLen == 0 {
		return 0
	}
	distance := fuzzy.LevenshteinDistance(a, b)
	return 1 - float64(distance)/float64(maxLen)
}

// ResolveTeam matches a query against team abbreviations and names.
func ResolveTeam(res *pipeline.Results, query string) (string, error) {
	query = strings.TrimSpace(query)
	for _, team := range res.Teams {
		if strings.EqualFold(team.Abbreviation, query) || strings.EqualFold(team.Name, query) {
			return team.Abbreviation, nil
		}
	}

	best := ""
	bestScore := 0.6
	for _, team := range res.Teams {
		for _, candidate := range []string{team.Abbreviation, team.Name} {
			if score := similarity(query, candidate); score > bestScore {
				best = team.Abbreviation
				bestScore = score
			}
		}
	}
	if best == "" {
		return "", fmt.Errorf("%w: %s", ErrTeamNotFound, query)
	}
	return best, nil
}

// ResolvePlayer matches a query against the player table. Substring matches
// win over edit distance.
func ResolvePlayer(res *pipeline.Results, query string) (string, error) {
	query = strings.TrimSpace(query)
	names := res.PlayerStatistics.Names()
	for _, name := range names {
		if strings.EqualFold(name, query) {
			return name, nil
		}
	}

	if ranks := fuzzy.RankFindNormalizedFold(query, names); len(ranks) > 0 {
		sort.Sort(ranks)
		return ranks[0].Target, nil
	}

	best := ""
	bestScore := 0.7
	for _, name := range names {
		if score := similarity(query, name); score > bestScore {
			best = name
			bestScore = score
		}
	}
	if best == "" {
		return "", fmt.Errorf("%w: %s", ErrPlayerNotFound, query)
	}
	return best, nil
}

// Owner returns the team abbreviation of a player, or "" for free agents.
func Owner(res *pipeline.Results, player string) string {
	for team, members := range res.Rosters {
		for _, name := range members {
			if name == player {
				return team
			}
		}
	}
	return ""
}

type TeamRanking struct {
	Team    string         `json:"team"`
	Name    string         `json:"name"`
	Window  stats.Window   `json:"window"`
	Players []stats.Ranked `json:"players"`
}

func (s *StatsService) TeamRanking(ctx context.Context, query string, w stats.Window) (*TeamRanking, error) {
	res, err := s.Results(ctx)
	if err != nil {
		return nil, err
	}
	team, err := ResolveTeam(res, query)
	if err != nil {
		return nil, err
	}
	return &TeamRanking{
		Team:    team,
		Name:    res.TeamName(team),
		Window:  w,
		Players: stats.Rank(res.TeamRelevances[team], w),
	}, nil
}

type TradeEntry struct {
	Owner  string       `json:"owner"`
	Player stats.Ranked `json:"player"`
}

type TradeRanking struct {
	Teams   [2]string    `json:"teams"`
	Window  stats.Window `json:"window"`
	Players []TradeEntry `json:"players"`
}

// TradeRanking reports ok == false when the two teams have no comparison.
func (s *StatsService) TradeRanking(ctx context.Context, teamA, teamB string, w stats.Window) (*TradeRanking, bool, error) {
	res, err := s.Results(ctx)
	if err != nil {
		return nil, false, err
	}
	a, err := ResolveTeam(res, teamA)
	if err != nil {
		return nil, false, err
	}
	b, err := ResolveTeam(res, teamB)
	if err != nil {
		return nil, false, err
	}

	tr, ok := res.TradeRelevances.Lookup(a, b)
	if !ok {
		return nil, false, nil
	}

	ranked := stats.Rank(tr.Players, w)
	entries := make([]TradeEntry, len(ranked))
	for i, r := range ranked {
		entries[i] = TradeEntry{Owner: tr.Owners[r.Name], Player: r}
	}
	return &TradeRanking{Teams: [2]string{a, b}, Window: w, Players: entries}, true, nil
}

func (s *StatsService) WaiverRanking(ctx context.Context, query string, w stats.Window, limit int) (*TeamRanking, error) {
	res, err := s.Results(ctx)
	if err != nil {
		return nil, err
	}
	team, err := ResolveTeam(res, query)
	if err != nil {
		return nil, err
	}
	ranked := stats.Rank(res.FreeAgents[team], w)
	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return &TeamRanking{Team: team, Name: res.TeamName(team), Window: w, Players: ranked}, nil
}
