package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/yonasstephen/shams-sub000/internal/insights"
	"github.com/yonasstephen/shams-sub000/internal/models"
	"github.com/yonasstephen/shams-sub000/internal/projection"
	"github.com/yonasstephen/shams-sub000/internal/repository/memory"
)

var (
	ErrPlayerNotFound = errors.New("player not found")
	ErrInvalidSort    = errors.New("invalid sort column")
)

const (
	defaultWaiverCount = 25
	freeAgentPool      = 150
	recentGameCount    = 5
)

type WaiverOptions struct {
	Mode string
	Agg  string
	// Count caps the list. Zero means 25.
	Count int
	// Sort is "rank" (z-score), "minutes", "trend", "games" or a category
	// name such as "PTS" or "3PM".
	Sort string
	AsOf models.Date
}

type WaiverPlayer struct {
	Rank              int                  `json:"rank"`
	PlayerKey         string               `json:"player_key"`
	Name              string               `json:"name"`
	Availability      string               `json:"availability"`
	InjuryStatus      string               `json:"injury_status,omitempty"`
	EligiblePositions []string             `json:"eligible_positions"`
	ESPNRank          int                  `json:"espn_rank,omitempty"`
	StatsID           int                  `json:"stats_id,omitempty"`
	Stats             insights.PlayerStats `json:"stats"`
	Minutes           insights.MinuteTrend `json:"minutes"`
	ZScore            float64              `json:"z_score"`
	RemainingGames    int                  `json:"remaining_games"`
	TotalGames        int                  `json:"total_games"`
	NextWeekGames     int                  `json:"next_week_games"`
	BackToBack        bool                 `json:"back_to_back"`
}

type WaiverReport struct {
	Week       models.Week           `json:"week"`
	AsOf       models.Date           `json:"as_of"`
	Window     string                `json:"window"`
	Agg        insights.Aggregation  `json:"agg"`
	Categories []models.StatCategory `json:"categories"`
	Players    []WaiverPlayer        `json:"players"`
}

// Waiver ranks the league's free agents by z-score over the scoring
// categories, using each player's stats in the requested window.
func (s *FantasyService) Waiver(ctx context.Context, opts WaiverOptions) (*WaiverReport, error) {
	if !s.repo.HasData() {
		return nil, projection.ErrNoStatsData
	}
	window, agg, err := s.parseStatOptions(opts.Mode, opts.Agg)
	if err != nil {
		return nil, err
	}
	metadata, err := s.getLeagueMetadata(ctx)
	if err != nil {
		return nil, fmt.Errorf("error fetching league metadata: %w", err)
	}
	less, err := waiverOrder(opts.Sort, metadata.Categories)
	if err != nil {
		return nil, err
	}

	asOf := s.asOf(opts.AsOf)
	period := s.api.PeriodFor(asOf, metadata)
	if period == 0 {
		period = metadata.CurrentMatchupPeriod
	}
	week := s.api.Week(period, metadata)
	var nextWeek *models.Week
	if _, ok := metadata.MatchupPeriods[period+1]; ok {
		w := s.api.Week(period+1, metadata)
		nextWeek = &w
	}

	agents, err := s.api.GetFreeAgents(ctx, asOf, freeAgentPool)
	if err != nil {
		return nil, fmt.Errorf("error fetching free agents: %w", err)
	}

	players := make([]WaiverPlayer, 0, len(agents))
	for _, fa := range agents {
		wp := WaiverPlayer{
			PlayerKey:         fa.PlayerKey,
			Name:              fa.Name,
			Availability:      fa.Availability,
			InjuryStatus:      fa.InjuryStatus,
			EligiblePositions: fa.EligiblePositions,
			ESPNRank:          fa.Rank,
		}
		id, ok := s.repo.ResolveIdentity(fa.Name)
		if !ok {
			s.logger.Debug("No stats identity for free agent", "player_key", fa.PlayerKey, "name", fa.Name)
			players = append(players, wp)
			continue
		}
		wp.StatsID = id
		games := s.repo.Games(id, "", asOf)
		wp.Stats = insights.Summarize(games, window, asOf, agg)
		wp.Minutes, _ = insights.Minutes(games, asOf)

		schedule := s.repo.GameDates(id, week.Start, week.End)
		wp.TotalGames = schedule.Len()
		wp.RemainingGames = projection.RemainingDates(schedule, games, asOf).Len()
		if nextWeek != nil {
			wp.NextWeekGames = s.repo.GameDates(id, nextWeek.Start, nextWeek.End).Len()
		}
		wp.BackToBack = s.repo.GameDates(id, asOf, asOf.AddDays(1)).Len() == 2
		players = append(players, wp)
	}

	pool := make([]insights.PlayerStats, len(players))
	for i, p := range players {
		pool[i] = p.Stats
	}
	scores := insights.ZScores(pool, metadata.Categories)
	ranked := make([]WaiverPlayer, 0, len(players))
	for n, i := range insights.RankOrder(pool, scores) {
		p := players[i]
		p.ZScore = scores[i]
		p.Rank = n + 1
		ranked = append(ranked, p)
	}
	if less != nil {
		sort.SliceStable(ranked, func(i, j int) bool {
			a, b := ranked[i], ranked[j]
			if (a.Stats.Games > 0) != (b.Stats.Games > 0) {
				return a.Stats.Games > 0
			}
			return less(a, b)
		})
	}

	count := opts.Count
	if count <= 0 {
		count = defaultWaiverCount
	}
	if len(ranked) > count {
		ranked = ranked[:count]
	}
	s.logger.Info("Ranked free agents", "pool", len(agents), "returned", len(ranked), "window", window.String(), "agg", agg)
	return &WaiverReport{
		Week:       week,
		AsOf:       asOf,
		Window:     window.String(),
		Agg:        agg,
		Categories: metadata.Categories,
		Players:    ranked,
	}, nil
}

// waiverOrder returns the comparison for a sort column, or nil to keep the
// z-score order.
func waiverOrder(column string, cats []models.StatCategory) (func(a, b WaiverPlayer) bool, error) {
	switch strings.ToLower(strings.TrimSpace(column)) {
	case "", "rank", "z", "zscore":
		return nil, nil
	case "min", "minutes":
		return func(a, b WaiverPlayer) bool { return a.Stats.Minutes > b.Stats.Minutes }, nil
	case "trend":
		return func(a, b WaiverPlayer) bool { return a.Minutes.Trend > b.Minutes.Trend }, nil
	case "games":
		return func(a, b WaiverPlayer) bool { return a.RemainingGames > b.RemainingGames }, nil
	}

	cat := models.StatCategory{DisplayName: column}
	for _, c := range cats {
		if strings.EqualFold(c.DisplayName, strings.TrimSpace(column)) {
			cat = c
			break
		}
	}
	field, ok := cat.Field()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrInvalidSort, column)
	}
	if cat.Ascending {
		return func(a, b WaiverPlayer) bool { return a.Stats.Value(field) < b.Stats.Value(field) }, nil
	}
	return func(a, b WaiverPlayer) bool { return a.Stats.Value(field) > b.Stats.Value(field) }, nil
}

type PlayerOptions struct {
	Name string
	Mode string
	Agg  string
	AsOf models.Date
}

type PlayerReport struct {
	StatsID        int                   `json:"stats_id"`
	Name           string                `json:"name"`
	TeamID         int                   `json:"team_id"`
	AsOf           models.Date           `json:"as_of"`
	Window         string                `json:"window"`
	Agg            insights.Aggregation  `json:"agg"`
	Stats          insights.PlayerStats  `json:"stats"`
	Season         insights.PlayerStats  `json:"season"`
	Minutes        *insights.MinuteTrend `json:"minutes,omitempty"`
	RecentGames    []models.GameRecord   `json:"recent_games"`
	Week           *models.Week          `json:"week,omitempty"`
	WeekGames      int                   `json:"week_games"`
	RemainingGames int                   `json:"remaining_games"`
}

// Player looks a player up by name and summarizes their recent form. The
// league week is best effort: without it the schedule counts stay zero.
func (s *FantasyService) Player(ctx context.Context, opts PlayerOptions) (*PlayerReport, error) {
	if !s.repo.HasData() {
		return nil, projection.ErrNoStatsData
	}
	window, agg, err := s.parseStatOptions(opts.Mode, opts.Agg)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(opts.Name) == "" {
		return nil, fmt.Errorf("%w: empty name", ErrPlayerNotFound)
	}
	id, ok := s.repo.ResolveIdentity(opts.Name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrPlayerNotFound, opts.Name)
	}
	record, _ := s.repo.Player(id)
	asOf := s.asOf(opts.AsOf)
	games := s.repo.Games(id, "", asOf)

	report := &PlayerReport{
		StatsID: id,
		Name:    record.Name,
		TeamID:  record.TeamID,
		AsOf:    asOf,
		Window:  window.String(),
		Agg:     agg,
		Stats:   insights.Summarize(games, window, asOf, agg),
		Season:  insights.Summarize(games, projection.SeasonWindow, asOf, agg),
	}
	if mt, ok := insights.Minutes(games, asOf); ok {
		report.Minutes = &mt
	}
	for i := len(games) - 1; i >= 0 && len(report.RecentGames) < recentGameCount; i-- {
		if games[i].Final {
			report.RecentGames = append(report.RecentGames, games[i])
		}
	}

	metadata, err := s.getLeagueMetadata(ctx)
	if err != nil {
		s.logger.Warn("Player report without league week", "player", record.Name, "error", err)
		return report, nil
	}
	period := s.api.PeriodFor(asOf, metadata)
	if period == 0 {
		period = metadata.CurrentMatchupPeriod
	}
	week := s.api.Week(period, metadata)
	schedule := s.repo.GameDates(id, week.Start, week.End)
	report.Week = &week
	report.WeekGames = schedule.Len()
	report.RemainingGames = projection.RemainingDates(schedule, games, asOf).Len()
	return report, nil
}

// BoxScores lists every cached player line for date. Zero means yesterday.
func (s *FantasyService) BoxScores(_ context.Context, date models.Date) ([]memory.BoxScoreLine, error) {
	if !s.repo.HasData() {
		return nil, projection.ErrNoStatsData
	}
	if date.IsZero() {
		date = models.Today(s.defaults.Location).AddDays(-1)
	}
	return s.repo.BoxScores(date), nil
}

func (s *FantasyService) parseStatOptions(mode, aggMode string) (projection.Window, insights.Aggregation, error) {
	if mode == "" {
		mode = s.defaults.Mode
	}
	window, err := projection.ParseWindow(mode)
	if err != nil {
		return projection.Window{}, "", err
	}
	agg, err := insights.ParseAggregation(aggMode)
	if err != nil {
		return projection.Window{}, "", err
	}
	return window, agg, nil
}

func (s *FantasyService) asOf(d models.Date) models.Date {
	if d.IsZero() {
		return models.Today(s.defaults.Location)
	}
	return d
}
