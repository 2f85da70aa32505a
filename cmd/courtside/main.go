package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/omarshaarawi/courtside/internal/api/espn"
	"github.com/omarshaarawi/courtside/internal/api/fantasy"
	"github.com/omarshaarawi/courtside/internal/bot"
	"github.com/omarshaarawi/courtside/internal/config"
	"github.com/omarshaarawi/courtside/internal/dashboard"
	"github.com/omarshaarawi/courtside/internal/pipeline"
	"github.com/omarshaarawi/courtside/internal/repository/memory"
	"github.com/omarshaarawi/courtside/internal/repository/sqlite"
	"github.com/omarshaarawi/courtside/internal/scheduler"
	"github.com/omarshaarawi/courtside/internal/service"
	"github.com/omarshaarawi/courtside/internal/stats"
	flag "github.com/spf13/pflag"
)

func main() {
	if err := run(); err != nil {
		slog.Error("Error running application", "error", err)
		os.Exit(1)
	}
}

func run() error {
	date := flag.StringP("date", "d", "", "as-of date (MM-DD-YYYY), defaults to today")
	once := flag.Bool("once", false, "write all statistics for the date and exit")
	flag.Parse()

	asOf := time.Now()
	if *date != "" {
		parsed, err := time.ParseInLocation(pipeline.DateLayout, *date, time.Local)
		if err != nil {
			return fmt.Errorf("invalid --date %q: %w", *date, err)
		}
		asOf = parsed
	}

	if err := godotenv.Load(); err != nil {
		slog.Error("Error loading .env file", "error", err)
	}

	cfg, err := config.New()
	if err != nil {
		return err
	}

	catalog, err := config.LoadLeague(cfg.League.ConfigPath)
	if err != nil {
		return err
	}

	store, err := sqlite.Open(cfg.Store.Path)
	if err != nil {
		return err
	}
	defer store.Close()

	espnClient := espn.NewClient(cfg.ESPNAPI)
	espnAPI := espn.NewAPI(espnClient)
	fantasyAPI := fantasy.NewAPI(espnAPI)

	statsPipeline := pipeline.New(fantasyAPI, store, catalog)
	repo := memory.NewRepository()
	statsService := service.NewStatsService(statsPipeline, repo)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *once {
		if _, err := statsService.Refresh(ctx, asOf, true); err != nil {
			return err
		}
		summary, err := statsService.LeagueSummary(ctx, stats.Season)
		if err != nil {
			return err
		}
		fmt.Println(summary)
		return nil
	}

	if _, err := statsService.Refresh(ctx, asOf, false); err != nil {
		slog.Error("Initial refresh failed", "error", err)
	}

	var sendMessage func(string) error
	if cfg.TelegramBot.Token != "" {
		telegramBot, err := bot.NewTelegramBot(cfg.TelegramBot.Token, cfg.TelegramBot.ChatID, statsService)
		if err != nil {
			return err
		}
		sendMessage = telegramBot.SendMessage

		go func() {
			if err := telegramBot.Start(ctx); err != nil {
				slog.Error("Error running telegram bot", "error", err)
			}
		}()
	} else {
		slog.Info("TELEGRAM_TOKEN not set, bot disabled")
	}

	sched, err := scheduler.NewScheduler(cfg.Schedule, statsService, store, cfg.Store.KeepDays, sendMessage)
	if err != nil {
		return err
	}

	if err := sched.Start(); err != nil {
		return err
	}
	defer func() {
		err := sched.Stop()
		if err != nil {
			slog.Error("Error stopping scheduler", "error", err)
		}
	}()

	server := dashboard.NewServer(statsService)
	go func() {
		if err := server.Start(cfg.Dashboard.Addr); err != nil {
			slog.Error("Error starting dashboard server", "error", err)
		}
	}()

	<-ctx.Done()
	slog.Info("Shutting down gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("Error stopping dashboard server", "error", err)
	}

	return nil
}
