package config

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
	"github.com/robfig/cron/v3"
)

type Config struct {
	ESPNAPI     ESPNAPI
	League      League
	TelegramBot TelegramBot
	Dashboard   Dashboard
	Store       Store
	Schedule    Schedule
}

type ESPNAPI struct {
	Season   string `envconfig:"SEASON" required:"true"`
	LeagueID string `envconfig:"LEAGUE_ID" required:"true"`
	SWID     string `envconfig:"SWID" required:"true"`
	ESPNS2   string `envconfig:"ESPN_S2" required:"true"`
}

type League struct {
	ConfigPath string `envconfig:"LEAGUE_CONFIG" default:"league_config.json"`
}

// TelegramBot is optional; an empty token disables the bot.
type TelegramBot struct {
	Token  string `envconfig:"TELEGRAM_TOKEN"`
	ChatID int64  `envconfig:"CHAT_ID"`
}

type Dashboard struct {
	Addr string `envconfig:"DASHBOARD_ADDR" default:":8080"`
}

type Store struct {
	Path     string `envconfig:"STORE_PATH" default:"data/courtside.db"`
	KeepDays int    `envconfig:"STORE_KEEP_DAYS" default:"30"`
}

type Schedule struct {
	Cron     string `envconfig:"REFRESH_CRON" default:"30 7 * * *"`
	Location string `envconfig:"TIMEZONE" default:"America/Chicago"`
}

func New() (*Config, error) {
	var c Config
	err := envconfig.Process("", &c)
	if err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Config) Validate() error {
	if _, err := cron.ParseStandard(c.Schedule.Cron); err != nil {
		return fmt.Errorf("invalid REFRESH_CRON %q: %w", c.Schedule.Cron, err)
	}
	if c.Store.KeepDays < 1 {
		return fmt.Errorf("STORE_KEEP_DAYS must be positive, got %d", c.Store.KeepDays)
	}
	if c.TelegramBot.Token != "" && c.TelegramBot.ChatID == 0 {
		return fmt.Errorf("CHAT_ID is required when TELEGRAM_TOKEN is set")
	}
	return nil
}
