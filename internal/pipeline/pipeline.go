package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/omarshaarawi/courtside/internal/models"
	"github.com/omarshaarawi/courtside/internal/stats"
)

// DateLayout is the layout of the as-of date accepted on the command line
// and shown by the dashboards.
const DateLayout = "01-02-2006"

// keyLayout keeps checkpoint keys sortable.
const keyLayout = "2006-01-02"

type Fetcher interface {
	GetLeagueMetadata(ctx context.Context) (*models.LeagueMetadata, error)
	GetTeams(ctx context.Context) ([]models.TeamInfo, error)
	GetPlayers(ctx context.Context) ([]models.Player, error)
	GetRosters(ctx context.Context, teams []models.TeamInfo) (map[string][]string, error)
}

type Checkpointer interface {
	Load(ctx context.Context, asOf, name string, v any) (bool, error)
	Save(ctx context.Context, asOf, name string, v any) error
}

type Pipeline struct {
	fetcher Fetcher
	store   Checkpointer
	catalog *stats.Catalog
}

func New(fetcher Fetcher, store Checkpointer, catalog *stats.Catalog) *Pipeline {
	return &Pipeline{fetcher: fetcher, store: store, catalog: catalog}
}

func (p *Pipeline) Catalog() *stats.Catalog {
	return p.catalog
}

// Results holds every table the dashboards read for one as-of date.
type Results struct {
	AsOf               time.Time
	League             *models.LeagueMetadata
	Teams              []models.TeamInfo
	Rosters            map[string][]string
	PlayerStatistics   stats.Table
	PlayerDistribution stats.Distribution
	RosterStatistics   stats.Table
	LeagueDistribution stats.Distribution
	NormalizedPlayers  stats.Table
	NormalizedRosters  stats.Table
	TeamRelevances     stats.TeamRelevances
	TradeRelevances    stats.TradeTable
	FreeAgents         stats.TeamRelevances
}

// TeamName returns the display name of a team abbreviation.
func (r *Results) TeamName(abbrev string) string {
	for _, t := range r.Teams {
		if t.Abbreviation == abbrev {
			return t.Name
		}
	}
	return abbrev
}

type run struct {
	p     *Pipeline
	key   string
	force bool
}

// checkpoint returns the stored stage result or computes and stores it.
func checkpoint[T any](ctx context.Context, r run, name string, compute func() (T, error)) (T, error) {
	var v T
	if !r.force {
		found, err := r.p.store.Load(ctx, r.key, name, &v)
		if err != nil {
			return v, err
		}
		if found {
			slog.Debug("Loaded checkpoint", "date", r.key, "stage", name)
			return v, nil
		}
	}

	start := time.Now()
	v, err := compute()
	if err != nil {
		return v, fmt.Errorf("computing %s: %w", name, err)
	}
	if err := r.p.store.Save(ctx, r.key, name, v); err != nil {
		return v, err
	}
	slog.Info("Computed stage", "date", r.key, "stage", name, "duration", time.Since(start))
	return v, nil
}

// Run computes every table for the as-of date. Stages already checkpointed
// for that date are reused unless force is set.
func (p *Pipeline) Run(ctx context.Context, asOf time.Time, force bool) (*Results, error) {
	r := run{p: p, key: asOf.Format(keyLayout), force: force}
	res := &Results{AsOf: asOf}
	var err error

	if res.League, err = checkpoint(ctx, r, "league", func() (*models.LeagueMetadata, error) {
		return p.fetcher.GetLeagueMetadata(ctx)
	}); err != nil {
		return nil, err
	}

	if res.Teams, err = checkpoint(ctx, r, "teams", func() ([]models.TeamInfo, error) {
		return p.fetcher.GetTeams(ctx)
	}); err != nil {
		return nil, err
	}

	if res.PlayerStatistics, err = checkpoint(ctx, r, "player_statistics", func() (stats.Table, error) {
		players, err := p.fetcher.GetPlayers(ctx)
		if err != nil {
			return nil, err
		}
		return stats.ParsePlayerStatistics(players, p.catalog)
	}); err != nil {
		return nil, err
	}

	if res.PlayerDistribution, err = checkpoint(ctx, r, "player_distribution", func() (stats.Distribution, error) {
		return stats.ComputeDistribution(res.PlayerStatistics), nil
	}); err != nil {
		return nil, err
	}

	if res.Rosters, err = checkpoint(ctx, r, "team_rosters", func() (map[string][]string, error) {
		return p.fetcher.GetRosters(ctx, res.Teams)
	}); err != nil {
		return nil, err
	}

	if res.RosterStatistics, err = checkpoint(ctx, r, "roster_statistics", func() (stats.Table, error) {
		return stats.AggregateRosterStatistics(res.PlayerStatistics, res.Rosters, p.catalog)
	}); err != nil {
		return nil, err
	}

	if res.LeagueDistribution, err = checkpoint(ctx, r, "league_distribution", func() (stats.Distribution, error) {
		return stats.ComputeDistribution(res.RosterStatistics), nil
	}); err != nil {
		return nil, err
	}

	if res.NormalizedPlayers, err = checkpoint(ctx, r, "normalized_player_statistics", func() (stats.Table, error) {
		return stats.Normalize(res.PlayerStatistics, res.PlayerDistribution), nil
	}); err != nil {
		return nil, err
	}

	if res.NormalizedRosters, err = checkpoint(ctx, r, "normalized_roster_statistics", func() (stats.Table, error) {
		return stats.Normalize(res.RosterStatistics, res.LeagueDistribution), nil
	}); err != nil {
		return nil, err
	}

	if res.TeamRelevances, err = checkpoint(ctx, r, "team_roster_relevances", func() (stats.TeamRelevances, error) {
		return stats.ScoreTeamRelevances(res.Rosters, res.NormalizedPlayers, res.NormalizedRosters, p.catalog)
	}); err != nil {
		return nil, err
	}

	if res.TradeRelevances, err = checkpoint(ctx, r, "trade_relevances", func() (stats.TradeTable, error) {
		return stats.ScoreTradeRelevances(res.Rosters, res.NormalizedPlayers, res.NormalizedRosters, p.catalog)
	}); err != nil {
		return nil, err
	}

	if res.FreeAgents, err = checkpoint(ctx, r, "free_agent_relevances", func() (stats.TeamRelevances, error) {
		return stats.ScoreFreeAgentRelevances(res.Rosters, res.NormalizedPlayers, res.NormalizedRosters, p.catalog)
	}); err != nil {
		return nil, err
	}

	slog.Info("Statistics written",
		"date", asOf.Format(DateLayout),
		"players", len(res.PlayerStatistics),
		"teams", len(res.Rosters),
	)
	return res, nil
}
