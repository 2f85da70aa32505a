package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/omarshaarawi/courtside/internal/service"
	"github.com/omarshaarawi/courtside/internal/stats"
)

const helpText = "Available commands:\n" +
	"/teams - List league teams\n" +
	"/player <name> [window] - Normalized statistics of a player\n" +
	"/team <team> [window] - Roster relevances of a team\n" +
	"/trade <team> <team> [window] - Trade relevances between two teams\n" +
	"/waivers <team> [window] - Most relevant free agents for a team\n" +
	"/summary [window] - Normalized roster statistics\n" +
	"/refresh - Recompute today's statistics\n\n" +
	"Windows: last\\_7, last\\_15, last\\_30, season (default)"

type Handler struct {
	statsService *service.StatsService
}

func NewHandler(statsService *service.StatsService) *Handler {
	return &Handler{statsService: statsService}
}

func (h *Handler) HandleCommand(ctx context.Context, update tgbotapi.Update) tgbotapi.MessageConfig {
	msg := tgbotapi.NewMessage(update.Message.Chat.ID, "")
	command := strings.ToLower(update.Message.Command())
	args := update.Message.CommandArguments()
	msg.ParseMode = "Markdown"

	switch command {
	case "start":
		msg.Text = "Welcome to Courtside! Use /help to see available commands."
	case "help":
		msg.Text = helpText
	case "teams":
		h.handleTeams(ctx, &msg)
	case "player":
		h.handlePlayer(ctx, &msg, args)
	case "team":
		h.handleTeam(ctx, &msg, args)
	case "trade":
		h.handleTrade(ctx, &msg, args)
	case "waivers":
		h.handleWaivers(ctx, &msg, args)
	case "summary":
		h.handleSummary(ctx, &msg, args)
	case "refresh":
		h.handleRefresh(ctx, &msg)
	default:
		msg.Text = "Unknown command. Use /help to see available commands."
	}

	return msg
}

// splitWindow strips a trailing window name from the arguments.
func splitWindow(args string) (string, stats.Window) {
	fields := strings.Fields(args)
	if len(fields) > 0 {
		if w, err := stats.ParseWindow(strings.ToLower(fields[len(fields)-1])); err == nil {
			return strings.Join(fields[:len(fields)-1], " "), w
		}
	}
	return strings.Join(fields, " "), stats.Season
}

// splitTeams accepts "A B", "A, B" and "A vs B".
func splitTeams(args string) (string, string, bool) {
	for _, sep := range []string{",", " vs ", " VS ", " Vs "} {
		if a, b, ok := strings.Cut(args, sep); ok {
			a, b = strings.TrimSpace(a), strings.TrimSpace(b)
			return a, b, a != "" && b != ""
		}
	}
	fields := strings.Fields(args)
	if len(fields) != 2 {
		return "", "", false
	}
	return fields[0], fields[1], true
}

func errorText(action string, err error) string {
	if errors.Is(err, service.ErrTeamNotFound) {
		return fmt.Sprintf("🔍 %v", err)
	}
	return fmt.Sprintf("Error %s: %v", action, err)
}

func (h *Handler) handleTeams(ctx context.Context, msg *tgbotapi.MessageConfig) {
	teams, err := h.statsService.Teams(ctx)
	if err != nil {
		msg.Text = errorText("fetching teams", err)
	} else {
		msg.Text = teams
	}
}

func (h *Handler) handlePlayer(ctx context.Context, msg *tgbotapi.MessageConfig, args string) {
	name, w := splitWindow(args)
	if name == "" {
		msg.Text = "Please provide a player name. Usage: /player <player name> [window]"
		return
	}
	result, err := h.statsService.PlayerStats(ctx, name, w)
	if err != nil {
		msg.Text = errorText("fetching player statistics", err)
	} else {
		msg.Text = result
	}
}

func (h *Handler) handleTeam(ctx context.Context, msg *tgbotapi.MessageConfig, args string) {
	team, w := splitWindow(args)
	if team == "" {
		msg.Text = "Please provide a team. Usage: /team <team> [window]"
		return
	}
	result, err := h.statsService.TeamRelevances(ctx, team, w)
	if err != nil {
		msg.Text = errorText("getting team relevances", err)
	} else {
		msg.Text = result
	}
}

func (h *Handler) handleTrade(ctx context.Context, msg *tgbotapi.MessageConfig, args string) {
	rest, w := splitWindow(args)
	a, b, ok := splitTeams(rest)
	if !ok {
		msg.Text = "Please provide two teams. Usage: /trade <team> <team> [window]"
		return
	}
	result, err := h.statsService.TradeRelevances(ctx, a, b, w)
	if err != nil {
		msg.Text = errorText("getting trade relevances", err)
	} else {
		msg.Text = result
	}
}

func (h *Handler) handleWaivers(ctx context.Context, msg *tgbotapi.MessageConfig, args string) {
	team, w := splitWindow(args)
	if team == "" {
		msg.Text = "Please provide a team. Usage: /waivers <team> [window]"
		return
	}
	result, err := h.statsService.Waivers(ctx, team, w)
	if err != nil {
		msg.Text = errorText("getting free agents", err)
	} else {
		msg.Text = result
	}
}

func (h *Handler) handleSummary(ctx context.Context, msg *tgbotapi.MessageConfig, args string) {
	_, w := splitWindow(args)
	result, err := h.statsService.LeagueSummary(ctx, w)
	if err != nil {
		msg.Text = errorText("generating league summary", err)
	} else {
		msg.Text = result
	}
}

func (h *Handler) handleRefresh(ctx context.Context, msg *tgbotapi.MessageConfig) {
	res, err := h.statsService.Refresh(ctx, time.Now(), true)
	if err != nil {
		msg.Text = errorText("refreshing statistics", err)
		return
	}
	msg.Text = fmt.Sprintf("✅ Statistics refreshed: %d players, %d teams.", len(res.PlayerStatistics), len(res.Rosters))
}
