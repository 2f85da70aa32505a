package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/omarshaarawi/courtside/internal/config"
	"github.com/omarshaarawi/courtside/internal/service"
	"github.com/omarshaarawi/courtside/internal/stats"
)

type Pruner interface {
	Prune(ctx context.Context, keep int) (int64, error)
}

type Scheduler struct {
	s            gocron.Scheduler
	cfg          config.Schedule
	statsService *service.StatsService
	pruner       Pruner
	keepDays     int
	sendMessage  func(string) error
}

// NewScheduler builds the refresh job scheduler. sendMessage may be nil, in
// which case summaries are only logged.
func NewScheduler(cfg config.Schedule, statsService *service.StatsService, pruner Pruner, keepDays int, sendMessage func(string) error) (*Scheduler, error) {
	location, err := time.LoadLocation(cfg.Location)
	if err != nil {
		slog.Error("Failed to load location", "location", cfg.Location, "error", err)
		location = time.Local
	}

	s, err := gocron.NewScheduler(
		gocron.WithLocation(location),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}

	return &Scheduler{
		s:            s,
		cfg:          cfg,
		statsService: statsService,
		pruner:       pruner,
		keepDays:     keepDays,
		sendMessage:  sendMessage,
	}, nil
}

func (s *Scheduler) Start() error {
	_, err := s.s.NewJob(
		gocron.CronJob(s.cfg.Cron, false),
		gocron.NewTask(s.refreshStatistics),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return fmt.Errorf("failed to create refresh job: %w", err)
	}

	s.s.Start()
	return nil
}

func (s *Scheduler) Stop() error {
	return s.s.Shutdown()
}

func (s *Scheduler) refreshStatistics() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	if _, err := s.statsService.Refresh(ctx, time.Now(), true); err != nil {
		slog.Error("Failed to refresh statistics", "error", err)
		return
	}

	if s.pruner != nil {
		removed, err := s.pruner.Prune(ctx, s.keepDays)
		if err != nil {
			slog.Error("Failed to prune checkpoints", "error", err)
		} else if removed > 0 {
			slog.Info("Pruned checkpoints", "rows", removed)
		}
	}

	summary, err := s.statsService.LeagueSummary(ctx, stats.Season)
	if err != nil {
		slog.Error("Failed to get league summary", "error", err)
		return
	}
	if s.sendMessage == nil {
		slog.Info("League summary", "summary", summary)
		return
	}
	if err := s.sendMessage(summary); err != nil {
		slog.Error("Failed to send league summary", "error", err)
	}
}
