package service

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/yonasstephen/shams-sub000/internal/insights"
	"github.com/yonasstephen/shams-sub000/internal/models"
	"github.com/yonasstephen/shams-sub000/internal/projection"
	"github.com/yonasstephen/shams-sub000/internal/repository/memory"
)

func (s *FantasyService) GetMatchupReport(ctx context.Context, opts MatchupOptions) (string, error) {
	p, err := s.ProjectMatchup(ctx, opts)
	if err != nil {
		return "", err
	}
	return FormatMatchup(p), nil
}

func (s *FantasyService) GetLeagueReport(ctx context.Context, opts MatchupOptions) (string, error) {
	ps, err := s.ProjectLeague(ctx, opts)
	if err != nil {
		return "", err
	}
	return FormatLeague(ps), nil
}

// GetDailyReport is the scheduled morning message: the configured team's
// matchup followed by the league overview.
func (s *FantasyService) GetDailyReport(ctx context.Context) (string, error) {
	league, err := s.GetLeagueReport(ctx, MatchupOptions{})
	if err != nil {
		return "", err
	}
	if s.defaults.TeamID == 0 {
		return league, nil
	}
	mine, err := s.GetMatchupReport(ctx, MatchupOptions{})
	if err != nil {
		s.logger.Warn("Skipping own matchup in daily report", "error", err)
		return league, nil
	}
	return mine + "\n" + league, nil
}

func FormatMatchup(p *projection.MatchupProjection) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("🏀 *%s vs %s*\n", p.TeamA.Name, p.TeamB.Name))
	sb.WriteString(fmt.Sprintf("%s to %s, as of %s (%s", p.WeekStart, p.WeekEnd, p.AsOf, p.Window))
	if p.TeamA.Optimized {
		sb.WriteString(", optimized")
	}
	sb.WriteString(")\n\n")

	sb.WriteString(fmt.Sprintf("Current: %s\n", formatOutcome(p.TeamA.CurrentOutcome)))
	sb.WriteString(fmt.Sprintf("Projected: *%s*\n\n", formatOutcome(p.TeamA.Outcome)))

	sb.WriteString("```\n")
	sb.WriteString(fmt.Sprintf("%-5s %9s %9s\n", "CAT", abbreviate(p.TeamA.Name), abbreviate(p.TeamB.Name)))
	for _, r := range p.Results {
		cat := categoryByID(p.Categories, r.CategoryID)
		markA, markB := " ", " "
		switch r.Winner {
		case projection.SideA:
			markA = "*"
		case projection.SideB:
			markB = "*"
		}
		sb.WriteString(fmt.Sprintf("%-5s %8s%s %8s%s\n", r.DisplayName, formatValue(cat, r.A), markA, formatValue(cat, r.B), markB))
	}
	sb.WriteString("```\n")

	sb.WriteString(fmt.Sprintf("\nGames: %s %d played, %d left | %s %d played, %d left\n",
		p.TeamA.Name, gamesPlayed(p.TeamA), gamesLeft(p.TeamA),
		p.TeamB.Name, gamesPlayed(p.TeamB), gamesLeft(p.TeamB)))
	return sb.String()
}

func FormatLeague(ps []*projection.MatchupProjection) string {
	var sb strings.Builder
	if len(ps) == 0 {
		sb.WriteString("No matchups this week.")
		return sb.String()
	}
	sb.WriteString(fmt.Sprintf("🏀 *League Projections* (%s to %s)\n\n", ps[0].WeekStart, ps[0].WeekEnd))

	sorted := append([]*projection.MatchupProjection(nil), ps...)
	sort.SliceStable(sorted, func(i, j int) bool { return margin(sorted[i]) < margin(sorted[j]) })
	for _, p := range sorted {
		sb.WriteString(fmt.Sprintf("*%s* %s *%s*\n", p.TeamA.Name, formatOutcome(p.TeamA.Outcome), p.TeamB.Name))
	}

	closest, widest := sorted[0], sorted[len(sorted)-1]
	sb.WriteString("\n🏆 *Highlights:*\n")
	sb.WriteString(fmt.Sprintf("Closest Matchup: %s vs %s (%s)\n", closest.TeamA.Name, closest.TeamB.Name, formatOutcome(closest.TeamA.Outcome)))
	if len(sorted) > 1 {
		sb.WriteString(fmt.Sprintf("Most Lopsided: %s vs %s (%s)\n", widest.TeamA.Name, widest.TeamB.Name, formatOutcome(widest.TeamA.Outcome)))
	}
	return sb.String()
}

func formatOutcome(o projection.Outcome) string {
	return fmt.Sprintf("%.0f-%.0f-%.0f", o.Win, o.Loss, o.Tie)
}

func formatValue(cat models.StatCategory, v float64) string {
	if cat.IsPercentage {
		return strings.TrimPrefix(fmt.Sprintf("%.3f", v), "0")
	}
	return fmt.Sprintf("%.1f", v)
}

func categoryByID(cats []models.StatCategory, id string) models.StatCategory {
	for _, c := range cats {
		if c.ID == id {
			return c
		}
	}
	return models.StatCategory{ID: id}
}

func abbreviate(name string) string {
	r := []rune(name)
	if len(r) > 9 {
		return string(r[:9])
	}
	return name
}

func margin(p *projection.MatchupProjection) float64 {
	return math.Abs(p.TeamA.Outcome.Win - p.TeamA.Outcome.Loss)
}

func gamesPlayed(t projection.TeamProjection) int {
	n := 0
	for _, p := range t.Players {
		n += p.GamesPlayed
	}
	return n
}

func gamesLeft(t projection.TeamProjection) int {
	n := 0
	for _, p := range t.Players {
		n += p.RemainingGames
	}
	return n
}

func (s *FantasyService) GetWaiverReport(ctx context.Context, opts WaiverOptions) (string, error) {
	r, err := s.Waiver(ctx, opts)
	if err != nil {
		return "", err
	}
	return FormatWaiver(r), nil
}

func (s *FantasyService) GetPlayerReport(ctx context.Context, opts PlayerOptions) (string, error) {
	r, err := s.Player(ctx, opts)
	if err != nil {
		return "", err
	}
	return FormatPlayer(r), nil
}

// FormatWaiver renders the ranked free agents with one column per scored
// category.
func FormatWaiver(r *WaiverReport) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("📋 *Waiver Wire* (%s %s, as of %s)\n", r.Window, r.Agg, r.AsOf))
	if len(r.Players) == 0 {
		sb.WriteString("\nNo free agents available.")
		return sb.String()
	}
	var cats []models.StatCategory
	for _, c := range r.Categories {
		if _, ok := c.Field(); ok && c.Scored() {
			cats = append(cats, c)
		}
	}

	sb.WriteString("```\n")
	sb.WriteString(fmt.Sprintf("%-3s %-16s %5s %5s %3s", "#", "PLAYER", "Z", "MIN", "G"))
	for _, c := range cats {
		sb.WriteString(fmt.Sprintf(" %6s", c.DisplayName))
	}
	sb.WriteString("\n")
	for _, p := range r.Players {
		name := p.Name
		if p.InjuryStatus != "" {
			name += " (" + p.InjuryStatus + ")"
		}
		if p.Availability == models.AvailabilityWaivers {
			name += " W"
		}
		games := fmt.Sprintf("%d", p.RemainingGames)
		if p.BackToBack {
			games += "+"
		}
		sb.WriteString(fmt.Sprintf("%-3d %-16s %5.1f %5.1f %3s", p.Rank, truncate(name, 16), p.ZScore, p.Stats.Minutes, games))
		for _, c := range cats {
			field, _ := c.Field()
			sb.WriteString(fmt.Sprintf(" %6s", formatValue(c, p.Stats.Value(field))))
		}
		sb.WriteString("\n")
	}
	sb.WriteString("```\n")
	sb.WriteString(fmt.Sprintf("G = games left %s to %s, + = back-to-back\n", r.Week.Start, r.Week.End))
	return sb.String()
}

func FormatPlayer(r *PlayerReport) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("👤 *%s*\n", r.Name))
	if r.Week != nil {
		sb.WriteString(fmt.Sprintf("Week %d: %d games, %d left\n", r.Week.Period, r.WeekGames, r.RemainingGames))
	}
	if r.Minutes != nil {
		sb.WriteString(fmt.Sprintf("Minutes: %.1f last, %.1f prior, trend %+.1f\n", r.Minutes.Last, r.Minutes.Prior, r.Minutes.Trend))
	}

	sb.WriteString("```\n")
	sb.WriteString(fmt.Sprintf("%-8s %3s %5s %5s %5s %5s %5s %5s %4s %5s %5s\n",
		"", "G", "MIN", "PTS", "REB", "AST", "STL", "BLK", "3PM", "FG%", "FT%"))
	writeRow := func(label string, st insights.PlayerStats) {
		l := st.Line
		sb.WriteString(fmt.Sprintf("%-8s %3d %5.1f %5.1f %5.1f %5.1f %5.1f %5.1f %4.1f %5s %5s\n",
			truncate(label, 8), st.Games, st.Minutes, l.PTS, l.REB, l.AST, l.STL, l.BLK, l.FG3M,
			pct(st.FGPct), pct(st.FTPct)))
	}
	writeRow(r.Window, r.Stats)
	writeRow("season", r.Season)
	sb.WriteString("```\n")

	if len(r.RecentGames) > 0 {
		sb.WriteString("\nRecent games:\n```\n")
		for _, g := range r.RecentGames {
			if g.DNP {
				sb.WriteString(fmt.Sprintf("%s  DNP\n", g.Date))
				continue
			}
			l := g.Line
			sb.WriteString(fmt.Sprintf("%s %4.0fm %3.0fp %3.0fr %3.0fa %2.0f/%-2.0f\n",
				g.Date, l.MIN, l.PTS, l.REB, l.AST, l.FGM, l.FGA))
		}
		sb.WriteString("```\n")
	}
	return sb.String()
}

func FormatBoxScores(date models.Date, lines []memory.BoxScoreLine) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("📦 *Box scores* %s\n", date))
	if len(lines) == 0 {
		sb.WriteString("\nNo games recorded.")
		return sb.String()
	}
	sb.WriteString("```\n")
	current := -1
	for _, ln := range lines {
		if ln.Game.GameID != current {
			current = ln.Game.GameID
			sb.WriteString(fmt.Sprintf("Game %d\n", current))
		}
		if ln.Game.DNP {
			sb.WriteString(fmt.Sprintf("  %-20s DNP\n", truncate(ln.Name, 20)))
			continue
		}
		l := ln.Game.Line
		sb.WriteString(fmt.Sprintf("  %-20s %3.0fm %3.0fp %3.0fr %3.0fa\n", truncate(ln.Name, 20), l.MIN, l.PTS, l.REB, l.AST))
	}
	sb.WriteString("```\n")
	return sb.String()
}

func pct(v float64) string {
	return strings.TrimPrefix(fmt.Sprintf("%.3f", v), "0")
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) > n {
		return string(r[:n])
	}
	return s
}
