package service

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/omarshaarawi/courtside/internal/pipeline"
	"github.com/omarshaarawi/courtside/internal/stats"
)

const (
	waiverLimit     = 10
	noTradeMessage  = "Please select a different team to trade with."
	relevanceIntro  = "Player relevances, computed roughly by assessing how important a player is relative to each category."
	tradeIntro      = "The most relevant players between the two teams when considering how they would impact the other team's category scores."
	markdownSpecial = "_*`["
)

var markdownEscaper = func() *strings.Replacer {
	var pairs []string
	for _, c := range markdownSpecial {
		pairs = append(pairs, string(c), `\`+string(c))
	}
	return strings.NewReplacer(pairs...)
}()

func escape(s string) string {
	return markdownEscaper.Replace(s)
}

func formatZ(v float64) string {
	if math.IsNaN(v) {
		return "-"
	}
	return fmt.Sprintf("%+.2f", v)
}

func formatRaw(v float64) string {
	if math.IsNaN(v) {
		return "-"
	}
	return fmt.Sprintf("%.2f", v)
}

func formatRow(sb *strings.Builder, row stats.Row, columns []string) {
	parts := make([]string, 0, len(columns))
	for _, c := range columns {
		v, ok := row[c]
		if !ok {
			v = math.NaN()
		}
		parts = append(parts, fmt.Sprintf("%s %s", escape(c), formatZ(v)))
	}
	sb.WriteString("   ")
	sb.WriteString(strings.Join(parts, " · "))
	sb.WriteString("\n")
}

func header(res *pipeline.Results, w stats.Window) string {
	name := "League"
	season := 0
	if res.League != nil {
		name = res.League.Name
		season = res.League.SeasonID
	}
	return fmt.Sprintf("_%s · Season %d · %s · %s_\n\n", escape(name), season, res.AsOf.Format(pipeline.DateLayout), w.Label())
}

func (s *StatsService) Teams(ctx context.Context) (string, error) {
	res, err := s.Results(ctx)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	sb.WriteString("🏀 *Teams*\n\n")
	for _, team := range res.Teams {
		sb.WriteString(fmt.Sprintf("*%s* %s (%d players)\n", escape(team.Abbreviation), escape(team.Name), len(res.Rosters[team.Abbreviation])))
	}
	return sb.String(), nil
}

func (s *StatsService) PlayerStats(ctx context.Context, query string, w stats.Window) (string, error) {
	res, err := s.Results(ctx)
	if err != nil {
		return "", err
	}
	name, err := ResolvePlayer(res, query)
	if err != nil {
		return fmt.Sprintf("🔍 No player found matching '%s'.", escape(query)), nil
	}

	var sb strings.Builder
	sb.WriteString(header(res, w))
	owner := Owner(res, name)
	if owner == "" {
		sb.WriteString(fmt.Sprintf("*%s* (Free Agent)\n", escape(name)))
	} else {
		sb.WriteString(fmt.Sprintf("*%s* (%s)\n", escape(name), escape(owner)))
	}
	sb.WriteString("━━━━━━━━━━━━━━━━\n")

	raw := res.PlayerStatistics[name]
	norm := res.NormalizedPlayers[name]
	for _, c := range s.Columns() {
		sb.WriteString(fmt.Sprintf("%s: %s (%s)\n", escape(c), formatRaw(raw.Value(w, c)), formatZ(norm.Value(w, c))))
	}
	return sb.String(), nil
}

func (s *StatsService) TeamRelevances(ctx context.Context, query string, w stats.Window) (string, error) {
	res, err := s.Results(ctx)
	if err != nil {
		return "", err
	}
	ranking, err := s.TeamRanking(ctx, query, w)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	sb.WriteString(header(res, w))
	sb.WriteString(fmt.Sprintf("📋 *Team Roster Relevances*: %s\n", escape(ranking.Name)))
	sb.WriteString(relevanceIntro + "\n\n")
	columns := s.Columns()
	for i, p := range ranking.Players {
		sb.WriteString(fmt.Sprintf("%d. *%s* (%s)\n", i+1, escape(p.Name), formatZ(p.Total)))
		formatRow(&sb, p.Row, columns)
	}
	return sb.String(), nil
}

func (s *StatsService) TradeRelevances(ctx context.Context, teamA, teamB string, w stats.Window) (string, error) {
	res, err := s.Results(ctx)
	if err != nil {
		return "", err
	}
	ranking, ok, err := s.TradeRanking(ctx, teamA, teamB, w)
	if err != nil {
		return "", err
	}
	if !ok {
		return noTradeMessage, nil
	}

	var sb strings.Builder
	sb.WriteString(header(res, w))
	sb.WriteString(fmt.Sprintf("🔁 *Trade Relevances*: %s ⇄ %s\n", escape(res.TeamName(ranking.Teams[0])), escape(res.TeamName(ranking.Teams[1]))))
	sb.WriteString(tradeIntro + "\n\n")
	columns := s.Columns()
	for i, e := range ranking.Players {
		sb.WriteString(fmt.Sprintf("%d. *%s* [%s] (%s)\n", i+1, escape(e.Player.Name), escape(e.Owner), formatZ(e.Player.Total)))
		formatRow(&sb, e.Player.Row, columns)
	}
	return sb.String(), nil
}

func (s *StatsService) Waivers(ctx context.Context, query string, w stats.Window) (string, error) {
	res, err := s.Results(ctx)
	if err != nil {
		return "", err
	}
	ranking, err := s.WaiverRanking(ctx, query, w, waiverLimit)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	sb.WriteString(header(res, w))
	sb.WriteString(fmt.Sprintf("🧾 *Top Free Agents for* %s\n\n", escape(ranking.Name)))
	if len(ranking.Players) == 0 {
		sb.WriteString("No free agents available.")
		return sb.String(), nil
	}
	columns := s.Columns()
	for i, p := range ranking.Players {
		sb.WriteString(fmt.Sprintf("%d. *%s* (%s)\n", i+1, escape(p.Name), formatZ(p.Total)))
		formatRow(&sb, p.Row, columns)
	}
	return sb.String(), nil
}

// LeagueSummary ranks the normalized rosters and names each team's
// strongest and weakest category.
func (s *StatsService) LeagueSummary(ctx context.Context, w stats.Window) (string, error) {
	res, err := s.Results(ctx)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	sb.WriteString(header(res, w))
	sb.WriteString("📊 *Normalized Roster Statistics*\n\n")
	for i, r := range stats.Rank(res.NormalizedRosters, w) {
		best, worst := extremes(r.Row)
		sb.WriteString(fmt.Sprintf("%d. *%s* %s", i+1, escape(res.TeamName(r.Name)), formatZ(r.Total)))
		if best != "" {
			sb.WriteString(fmt.Sprintf(" · best %s %s · worst %s %s", escape(best), formatZ(r.Row[best]), escape(worst), formatZ(r.Row[worst])))
		}
		sb.WriteString("\n")
	}
	return sb.String(), nil
}

func extremes(row stats.Row) (best, worst string) {
	for c, v := range row {
		if math.IsNaN(v) {
			continue
		}
		if best == "" || v > row[best] || (v == row[best] && c < best) {
			best = c
		}
		if worst == "" || v < row[worst] || (v == row[worst] && c < worst) {
			worst = c
		}
	}
	return best, worst
}
