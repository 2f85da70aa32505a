package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/omarshaarawi/courtside/internal/pipeline"
	"github.com/omarshaarawi/courtside/internal/pipeline/pipelinetest"
	"github.com/omarshaarawi/courtside/internal/repository/memory"
	"github.com/omarshaarawi/courtside/internal/stats"
)

func newTestService(t *testing.T) (*StatsService, *pipelinetest.Fetcher) {
	t.Helper()
	fetcher := pipelinetest.NewFetcher()
	p := pipeline.New(fetcher, pipelinetest.NewCheckpoints(), pipelinetest.Catalog())
	svc := NewStatsService(p, memory.NewRepository())
	if _, err := svc.Refresh(context.Background(), time.Date(2024, time.January, 15, 0, 0, 0, 0, time.UTC), false); err != nil {
		t.Fatalf("refreshing: %v", err)
	}
	return svc, fetcher
}

func TestResolveTeam(t *testing.T) {
	svc, _ := newTestService(t)
	res, err := svc.Results(context.Background())
	if err != nil {
		t.Fatalf("results: %v", err)
	}

	tests := []struct {
		query string
		want  string
		err   error
	}{
		{"bos", "BOS", nil},
		{"Dallas Dunkers", "DAL", nil},
		{"Dallas Dunkrs", "DAL", nil},
		{"Seattle", "", ErrTeamNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			got, err := ResolveTeam(res, tt.query)
			if !errors.Is(err, tt.err) {
				t.Fatalf("error = %v, want %v", err, tt.err)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestResolvePlayer(t *testing.T) {
	svc, _ := newTestService(t)
	res, err := svc.Results(context.Background())
	if err != nil {
		t.Fatalf("results: %v", err)
	}

	tests := []struct {
		query string
		want  string
		err   error
	}{
		{"luka doncic", "Luka Doncic", nil},
		{"luka", "Luka Doncic", nil},
		{"Jayson Tatun", "Jayson Tatum", nil},
		{"Wilt Chamberlain", "", ErrPlayerNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			got, err := ResolvePlayer(res, tt.query)
			if !errors.Is(err, tt.err) {
				t.Fatalf("error = %v, want %v", err, tt.err)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}

	if owner := Owner(res, "Kyrie Irving"); owner != "DAL" {
		t.Errorf("Owner = %q, want DAL", owner)
	}
	if owner := Owner(res, "Gordon Hayward"); owner != "" {
		t.Errorf("free agent owner = %q", owner)
	}
}

func TestResultsRefreshesWhenStale(t *testing.T) {
	svc, fetcher := newTestService(t)
	ctx := context.Background()

	if _, err := svc.Results(ctx); err != nil {
		t.Fatalf("results: %v", err)
	}
	if fetcher.Count("players") != 1 {
		t.Fatalf("fresh results should not refetch, got %d fetches", fetcher.Count("players"))
	}

	svc.now = func() time.Time { return time.Now().Add(48 * time.Hour) }
	if _, err := svc.Results(ctx); err != nil {
		t.Fatalf("results: %v", err)
	}
	if fetcher.Count("players") != 2 {
		t.Errorf("stale results should refetch, got %d fetches", fetcher.Count("players"))
	}
}

func TestTradeRanking(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	ranking, ok, err := svc.TradeRanking(ctx, "dal", "bos", stats.Season)
	if err != nil || !ok {
		t.Fatalf("TradeRanking: ok=%v err=%v", ok, err)
	}
	if ranking.Teams != [2]string{"DAL", "BOS"} {
		t.Errorf("teams = %v", ranking.Teams)
	}
	if len(ranking.Players) != 4 {
		t.Fatalf("got %d players, want 4", len(ranking.Players))
	}
	for _, e := range ranking.Players {
		if want := Owner(mustResults(t, svc), e.Player.Name); e.Owner != want {
			t.Errorf("%s owner = %q, want %q", e.Player.Name, e.Owner, want)
		}
	}

	if _, ok, err := svc.TradeRanking(ctx, "BOS", "BOS", stats.Season); err != nil || ok {
		t.Errorf("same team trade: ok=%v err=%v", ok, err)
	}
	msg, err := svc.TradeRelevances(ctx, "BOS", "Boston Bruisers", stats.Season)
	if err != nil {
		t.Fatalf("TradeRelevances: %v", err)
	}
	if msg != noTradeMessage {
		t.Errorf("message = %q", msg)
	}
}

func mustResults(t *testing.T, svc *StatsService) *pipeline.Results {
	t.Helper()
	res, err := svc.Results(context.Background())
	if err != nil {
		t.Fatalf("results: %v", err)
	}
	return res
}

func TestWaiverRanking(t *testing.T) {
	svc, _ := newTestService(t)

	ranking, err := svc.WaiverRanking(context.Background(), "BOS", stats.Season, 10)
	if err != nil {
		t.Fatalf("WaiverRanking: %v", err)
	}
	if len(ranking.Players) != 1 || ranking.Players[0].Name != "Gordon Hayward" {
		t.Errorf("players = %+v", ranking.Players)
	}

	ranking, err = svc.WaiverRanking(context.Background(), "BOS", stats.Season, 0)
	if err != nil || len(ranking.Players) != 1 {
		t.Errorf("unlimited ranking: %+v, %v", ranking, err)
	}
}

func TestTeamRankingOrdersByTotal(t *testing.T) {
	svc, _ := newTestService(t)

	ranking, err := svc.TeamRanking(context.Background(), "DAL", stats.Season)
	if err != nil {
		t.Fatalf("TeamRanking: %v", err)
	}
	if ranking.Name != "Dallas Dunkers" || len(ranking.Players) != 2 {
		t.Fatalf("ranking = %+v", ranking)
	}
	if ranking.Players[0].Total < ranking.Players[1].Total {
		t.Errorf("players not ordered: %+v", ranking.Players)
	}
}

func TestFormatting(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	tests := []struct {
		name   string
		render func() (string, error)
		want   []string
	}{
		{"teams", func() (string, error) { return svc.Teams(ctx) }, []string{"*BOS* Boston Bruisers (2 players)", "*DAL*"}},
		{"player", func() (string, error) { return svc.PlayerStats(ctx, "kyrie", stats.Season) }, []string{"*Kyrie Irving* (DAL)", "PTS: 25.00"}},
		{"free agent", func() (string, error) { return svc.PlayerStats(ctx, "hayward", stats.Last7) }, []string{"(Free Agent)", "PTS: - (-)"}},
		{"unknown player", func() (string, error) { return svc.PlayerStats(ctx, "Wilt Chamberlain", stats.Season) }, []string{"No player found"}},
		{"team", func() (string, error) { return svc.TeamRelevances(ctx, "BOS", stats.Last30) }, []string{"Team Roster Relevances", "Last 30 Days"}},
		{"trade", func() (string, error) { return svc.TradeRelevances(ctx, "BOS", "DAL", stats.Season) }, []string{"Trade Relevances", "[DAL]", "[BOS]"}},
		{"waivers", func() (string, error) { return svc.Waivers(ctx, "DAL", stats.Season) }, []string{"Gordon Hayward"}},
		{"summary", func() (string, error) { return svc.LeagueSummary(ctx, stats.Season) }, []string{"Hardwood", "Dallas Dunkers", "best"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.render()
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			for _, want := range tt.want {
				if !strings.Contains(got, want) {
					t.Errorf("output missing %q:\n%s", want, got)
				}
			}
		})
	}
}

func TestEscape(t *testing.T) {
	if got := escape("FG% *_[`"); got != "FG% \\*\\_\\[\\`" {
		t.Errorf("escape = %q", got)
	}
}
