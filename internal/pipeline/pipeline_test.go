package pipeline

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/omarshaarawi/courtside/internal/pipeline/pipelinetest"
	"github.com/omarshaarawi/courtside/internal/stats"
)

var asOf = time.Date(2024, time.January, 15, 0, 0, 0, 0, time.UTC)

func TestRunComputesEveryStage(t *testing.T) {
	fetcher := pipelinetest.NewFetcher()
	store := pipelinetest.NewCheckpoints()
	p := New(fetcher, store, pipelinetest.Catalog())

	res, err := p.Run(context.Background(), asOf, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if store.Len() != 12 {
		t.Errorf("stored %d checkpoints, want 12", store.Len())
	}
	if len(res.PlayerStatistics) != 5 {
		t.Errorf("player table has %d rows", len(res.PlayerStatistics))
	}
	if _, ok := res.PlayerStatistics["Gordon Hayward"][stats.Season]["OREB*"]; ok {
		t.Error("redundant category should be filtered")
	}
	if !math.IsNaN(res.PlayerStatistics["Gordon Hayward"].Value(stats.Last7, "PTS")) {
		t.Error("missing window should be NaN")
	}

	if got := res.RosterStatistics["BOS"].Value(stats.Season, "PTS"); got != 39 {
		t.Errorf("BOS PTS = %v, want 39", got)
	}
	if got := res.NormalizedRosters["DAL"].Value(stats.Season, "PTS"); math.Abs(got-0.7071) > 1e-3 {
		t.Errorf("DAL normalized PTS = %v", got)
	}

	if _, ok := res.TradeRelevances.Lookup("DAL", "BOS"); !ok {
		t.Error("expected trade comparison for DAL and BOS")
	}
	if _, ok := res.FreeAgents["BOS"]["Gordon Hayward"]; !ok {
		t.Error("expected free agent relevance for BOS")
	}
	if got := res.TeamName("DAL"); got != "Dallas Dunkers" {
		t.Errorf("TeamName = %q", got)
	}
}

func TestRunReusesCheckpoints(t *testing.T) {
	fetcher := pipelinetest.NewFetcher()
	store := pipelinetest.NewCheckpoints()
	p := New(fetcher, store, pipelinetest.Catalog())
	ctx := context.Background()

	first, err := p.Run(ctx, asOf, false)
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	second, err := p.Run(ctx, asOf, false)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if fetcher.Count("players") != 1 {
		t.Errorf("players fetched %d times, want 1", fetcher.Count("players"))
	}
	if got, want := second.NormalizedRosters["BOS"].Value(stats.Season, "FG%"), first.NormalizedRosters["BOS"].Value(stats.Season, "FG%"); math.Abs(got-want) > 1e-9 {
		t.Errorf("reloaded FG%% = %v, want %v", got, want)
	}

	if _, err := p.Run(ctx, asOf, true); err != nil {
		t.Fatalf("forced run: %v", err)
	}
	if fetcher.Count("players") != 2 {
		t.Errorf("forced run should refetch, got %d fetches", fetcher.Count("players"))
	}

	if _, err := p.Run(ctx, asOf.AddDate(0, 0, 1), false); err != nil {
		t.Fatalf("next day: %v", err)
	}
	if fetcher.Count("players") != 3 {
		t.Errorf("a new date should refetch, got %d fetches", fetcher.Count("players"))
	}
}

func TestRunFailsOnUnknownRosterPlayer(t *testing.T) {
	fetcher := pipelinetest.NewFetcher()
	fetcher.Rosters["BOS"] = append(fetcher.Rosters["BOS"], "Bill Russell")
	store := pipelinetest.NewCheckpoints()
	p := New(fetcher, store, pipelinetest.Catalog())

	_, err := p.Run(context.Background(), asOf, false)
	if !errors.Is(err, stats.ErrMissingPlayer) {
		t.Fatalf("expected ErrMissingPlayer, got %v", err)
	}
}

func TestRunPropagatesFetchErrors(t *testing.T) {
	fetcher := pipelinetest.NewFetcher()
	fetcher.Err = errors.New("espn unavailable")
	p := New(fetcher, pipelinetest.NewCheckpoints(), pipelinetest.Catalog())

	if _, err := p.Run(context.Background(), asOf, false); !errors.Is(err, fetcher.Err) {
		t.Fatalf("expected fetch error, got %v", err)
	}
}
