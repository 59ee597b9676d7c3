package projection

import (
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/yonasstephen/shams-sub000/internal/models"
)

// ErrNoStatsData means nothing has ever been loaded into the stats cache.
var ErrNoStatsData = errors.New("no stats data available, run a refresh first")

// StatsSource is read-only access to the box-score and schedule caches.
// A zero start date in Games means from the first game on record.
type StatsSource interface {
	HasData() bool
	ResolveIdentity(name string) (int, bool)
	GameDates(playerID int, start, end models.Date) models.DateSet
	SeasonProfile(playerID int) *models.AverageProfile
	Games(playerID int, start, end models.Date) []models.GameRecord
}

type TeamInput struct {
	Key      string
	Name     string
	Roster   models.RosterByDate
	Optimize bool
}

type Request struct {
	TeamA      TeamInput
	TeamB      TeamInput
	WeekStart  models.Date
	WeekEnd    models.Date
	AsOf       models.Date
	Window     Window
	Categories []models.StatCategory
	Inventory  models.SlotInventory
}

type DailyProjection struct {
	Slot   string             `json:"slot"`
	Active bool               `json:"active"`
	Stats  map[string]float64 `json:"stats,omitempty"`
}

type PlayerProjection struct {
	PlayerKey      string                          `json:"player_key"`
	Name           string                          `json:"name"`
	StatsID        int                             `json:"stats_id,omitempty"`
	Positions      map[models.Date]string          `json:"positions"`
	Current        Contribution                    `json:"current"`
	Remaining      Contribution                    `json:"remaining"`
	Daily          map[models.Date]DailyProjection `json:"daily,omitempty"`
	GamesPlayed    int                             `json:"games_played"`
	RemainingGames int                             `json:"remaining_games"`
	TotalGames     int                             `json:"total_games"`
	OnRosterToday  bool                            `json:"on_roster_today"`
}

type TeamProjection struct {
	Key            string             `json:"key"`
	Name           string             `json:"name"`
	Optimized      bool               `json:"optimized"`
	Current        Contribution       `json:"current"`
	Projected      Contribution       `json:"projected"`
	CurrentOutcome Outcome            `json:"current_outcome"`
	Outcome        Outcome            `json:"outcome"`
	Players        []PlayerProjection `json:"players"`
}

type MatchupProjection struct {
	ID         string                `json:"id"`
	WeekStart  models.Date           `json:"week_start"`
	WeekEnd    models.Date           `json:"week_end"`
	AsOf       models.Date           `json:"as_of"`
	Window     string                `json:"window"`
	Categories []models.StatCategory `json:"categories"`
	TeamA      TeamProjection        `json:"team_a"`
	TeamB      TeamProjection        `json:"team_b"`
	Results    []CategoryResult      `json:"results"`
}

type Engine struct {
	source StatsSource
	logger *slog.Logger
}

func NewEngine(source StatsSource, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{source: source, logger: logger}
}

// ProjectMatchup combines each team's actual stats so far with projected
// stats for its remaining active games and scores the two teams against
// each other. The only error returned is ErrNoStatsData; problems with a
// single player reduce that player to zero.
func (e *Engine) ProjectMatchup(req Request) (*MatchupProjection, error) {
	if !e.source.HasData() {
		return nil, ErrNoStatsData
	}

	id := uuid.New().String()
	logger := e.logger.With("request_id", id, "week_start", req.WeekStart, "week_end", req.WeekEnd)
	logger.Info("Projecting matchup", "team_a", req.TeamA.Name, "team_b", req.TeamB.Name, "window", req.Window.String())

	run := &projectionRun{
		req:       req,
		source:    e.source,
		logger:    logger,
		schedules: newScheduleCache(e.source, req.WeekStart, req.WeekEnd),
		ids:       make(map[string]identity),
	}

	teamA := run.projectTeam(req.TeamA)
	teamB := run.projectTeam(req.TeamB)

	teamA.CurrentOutcome, teamB.CurrentOutcome, _ = ScoreCategories(teamA.Current, teamB.Current, req.Categories)
	outA, outB, results := ScoreCategories(teamA.Projected, teamB.Projected, req.Categories)
	teamA.Outcome, teamB.Outcome = outA, outB

	return &MatchupProjection{
		ID:         id,
		WeekStart:  req.WeekStart,
		WeekEnd:    req.WeekEnd,
		AsOf:       req.AsOf,
		Window:     req.Window.String(),
		Categories: req.Categories,
		TeamA:      teamA,
		TeamB:      teamB,
		Results:    results,
	}, nil
}

type identity struct {
	id int
	ok bool
}

// projectionRun holds the lookups memoized for a single request.
type projectionRun struct {
	req       Request
	source    StatsSource
	logger    *slog.Logger
	schedules *scheduleCache
	ids       map[string]identity
}

func (r *projectionRun) resolve(name string) (int, bool) {
	if cached, ok := r.ids[name]; ok {
		return cached.id, cached.ok
	}
	id, ok := 0, false
	if name != "" {
		id, ok = r.source.ResolveIdentity(name)
	}
	r.ids[name] = identity{id: id, ok: ok}
	return id, ok
}

func (r *projectionRun) projectTeam(team TeamInput) TeamProjection {
	req := r.req
	roster := FillForward(team.Roster, req.WeekEnd)
	players := roster.Players()

	gameDates := make(map[string]models.DateSet, len(players))
	for _, p := range players {
		if id, ok := r.resolve(p.Name); ok {
			gameDates[p.PlayerKey] = r.schedules.gameDates(id)
		}
	}

	var daily DailySlots
	if team.Optimize {
		daily = OptimizedDailySlots(roster, req.Inventory, gameDates, roster.Ranks())
	} else {
		daily = AssignedDailySlots(roster)
	}
	active := ActiveDates(daily, req.WeekStart, req.WeekEnd)

	out := TeamProjection{Key: team.Key, Name: team.Name, Optimized: team.Optimize}
	var current, all []Contribution
	for _, p := range players {
		pp := r.projectPlayer(p, roster, daily, active[p.PlayerKey], gameDates[p.PlayerKey])
		out.Players = append(out.Players, pp)
		current = append(current, pp.Current)
		all = append(all, pp.Current, pp.Remaining)
	}
	out.Current = SumContributions(req.Categories, current...)
	out.Projected = SumContributions(req.Categories, all...)
	return out
}

func (r *projectionRun) projectPlayer(p models.RosterPlayer, roster models.RosterByDate, daily DailySlots, active, schedule models.DateSet) PlayerProjection {
	req := r.req
	pp := PlayerProjection{
		PlayerKey: p.PlayerKey,
		Name:      p.Name,
		Positions: make(map[models.Date]string),
		Current:   emptyContribution(req.Categories),
		Remaining: emptyContribution(req.Categories),
	}
	for d, slots := range daily {
		if slot, ok := slots[p.PlayerKey]; ok && !d.Before(req.WeekStart) && !d.After(req.WeekEnd) {
			pp.Positions[d] = slot
		}
	}
	for _, rp := range roster[req.AsOf] {
		if rp.PlayerKey == p.PlayerKey {
			pp.OnRosterToday = true
			break
		}
	}

	id, ok := r.resolve(p.Name)
	if !ok {
		r.logger.Warn("No stats identity for player", "player_key", p.PlayerKey, "name", p.Name)
		return pp
	}
	pp.StatsID = id
	if schedule.Len() == 0 {
		r.logger.Debug("No games scheduled for player", "player_key", p.PlayerKey, "stats_id", id)
		return pp
	}
	pp.TotalGames = schedule.Len()

	activeGames := active.Intersect(schedule)
	games := r.source.Games(id, req.WeekStart, req.WeekEnd)
	pp.Current = AggregateActual(games, activeGames, req.AsOf, req.WeekStart, req.Categories)
	pp.GamesPlayed = pp.Current.Games

	remaining := RemainingDates(activeGames, games, req.AsOf)
	profile := ProfileFor(req.Window, r.source.SeasonProfile(id), r.source.Games(id, "", req.AsOf), req.AsOf)
	if profile == nil {
		r.logger.Warn("No average profile for player", "player_key", p.PlayerKey, "stats_id", id, "window", req.Window.String())
		return pp
	}
	pp.Remaining = Project(profile, remaining, req.Categories)
	pp.RemainingGames = remaining.Len()

	pp.Daily = make(map[models.Date]DailyProjection)
	for d := range RemainingDates(schedule, games, req.AsOf) {
		slot, rostered := pp.Positions[d]
		if !rostered {
			continue
		}
		day := DailyProjection{Slot: slot, Active: activeGames.Has(d)}
		if day.Active {
			day.Stats = Project(profile, models.NewDateSet(d), req.Categories).Stats
		}
		pp.Daily[d] = day
	}
	return pp
}
