package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/yonasstephen/shams-sub000/internal/identity"
	"github.com/yonasstephen/shams-sub000/internal/models"
	"github.com/yonasstephen/shams-sub000/internal/projection"
	"github.com/yonasstephen/shams-sub000/internal/repository/memory"
)

var (
	ErrTeamNotFound = errors.New("team not found")
	ErrNoMatchup    = errors.New("team has no matchup this week")
)

const (
	teamMatchThreshold = 0.6
	rosterFetchWorkers = 4
	metadataMaxAge     = 24 * time.Hour
)

// LeagueAPI is the fantasy platform as the service sees it.
type LeagueAPI interface {
	GetLeagueMetadata(ctx context.Context) (*models.LeagueMetadata, error)
	GetRosters(ctx context.Context, date models.Date) (map[int][]models.RosterPlayer, error)
	GetMatchups(ctx context.Context, matchupPeriod int) ([]models.Matchup, error)
	Week(period int, metadata *models.LeagueMetadata) models.Week
	PeriodFor(date models.Date, metadata *models.LeagueMetadata) int
	GetFreeAgents(ctx context.Context, date models.Date, limit int) ([]models.FreeAgent, error)
}

type Defaults struct {
	TeamID   int
	Mode     string
	Optimize bool
	Location *time.Location
}

type MatchupOptions struct {
	// Team is matched loosely against team names and abbreviations. Empty
	// means the configured team.
	Team     string
	Mode     string
	Optimize *bool
	// Period defaults to the matchup period containing AsOf.
	Period int
	// AsOf defaults to today in the configured timezone.
	AsOf models.Date
}

type FantasyService struct {
	api      LeagueAPI
	repo     *memory.Repository
	engine   *projection.Engine
	defaults Defaults
	logger   *slog.Logger
}

func NewFantasyService(api LeagueAPI, repo *memory.Repository, engine *projection.Engine, defaults Defaults, logger *slog.Logger) *FantasyService {
	if defaults.Location == nil {
		defaults.Location = time.Local
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &FantasyService{api: api, repo: repo, engine: engine, defaults: defaults, logger: logger}
}

func (s *FantasyService) getLeagueMetadata(ctx context.Context) (*models.LeagueMetadata, error) {
	metadata := s.repo.GetMetadata()
	if metadata == nil || time.Since(metadata.LastUpdated) > metadataMaxAge {
		newMetadata, err := s.api.GetLeagueMetadata(ctx)
		if err != nil {
			return nil, err
		}
		s.repo.SaveMetadata(newMetadata)
		return newMetadata, nil
	}
	return metadata, nil
}

// weekState is everything shared by the projections of one matchup period.
type weekState struct {
	metadata *models.LeagueMetadata
	week     models.Week
	asOf     models.Date
	window   projection.Window
	optimize bool
	matchups []models.Matchup
	rosters  map[int]models.RosterByDate
}

func (s *FantasyService) loadWeek(ctx context.Context, opts MatchupOptions) (*weekState, error) {
	mode := opts.Mode
	if mode == "" {
		mode = s.defaults.Mode
	}
	window, err := projection.ParseWindow(mode)
	if err != nil {
		return nil, err
	}
	optimize := s.defaults.Optimize
	if opts.Optimize != nil {
		optimize = *opts.Optimize
	}

	metadata, err := s.getLeagueMetadata(ctx)
	if err != nil {
		return nil, fmt.Errorf("error fetching league metadata: %w", err)
	}

	asOf := opts.AsOf
	if asOf.IsZero() {
		asOf = models.Today(s.defaults.Location)
	}
	period := opts.Period
	if period == 0 {
		period = s.api.PeriodFor(asOf, metadata)
	}
	if period == 0 {
		period = metadata.CurrentMatchupPeriod
	}
	week := s.api.Week(period, metadata)

	matchups, err := s.api.GetMatchups(ctx, period)
	if err != nil {
		return nil, fmt.Errorf("error fetching matchups: %w", err)
	}

	rosters, err := s.collectRosters(ctx, week, asOf)
	if err != nil {
		return nil, err
	}

	return &weekState{
		metadata: metadata,
		week:     week,
		asOf:     asOf,
		window:   window,
		optimize: optimize,
		matchups: matchups,
		rosters:  rosters,
	}, nil
}

// collectRosters fetches the roster of every team for each day of the week
// up to asOf. For a week that has not started the current roster is keyed
// at asOf and carried forward by the engine.
func (s *FantasyService) collectRosters(ctx context.Context, week models.Week, asOf models.Date) (map[int]models.RosterByDate, error) {
	var dates []models.Date
	switch {
	case asOf.Before(week.Start):
		dates = []models.Date{asOf}
	case asOf.After(week.End):
		dates = models.DateRange(week.Start, week.End)
	default:
		dates = models.DateRange(week.Start, asOf)
	}

	var mu sync.Mutex
	rosters := make(map[int]models.RosterByDate)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(rosterFetchWorkers)
	for _, d := range dates {
		g.Go(func() error {
			byTeam, err := s.api.GetRosters(gctx, d)
			if err != nil {
				return fmt.Errorf("error fetching rosters for %s: %w", d, err)
			}
			mu.Lock()
			defer mu.Unlock()
			for teamID, players := range byTeam {
				if rosters[teamID] == nil {
					rosters[teamID] = make(models.RosterByDate)
				}
				rosters[teamID][d] = players
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	s.logger.Info("Collected rosters", "week", week.Period, "days", len(dates), "teams", len(rosters))
	return rosters, nil
}

// FindTeam matches a query against team names and abbreviations.
func FindTeam(teams []models.LeagueTeam, query string) (models.LeagueTeam, error) {
	q := identity.Normalize(query)
	if q == "" {
		return models.LeagueTeam{}, fmt.Errorf("%w: empty name", ErrTeamNotFound)
	}
	var best models.LeagueTeam
	bestScore := 0.0
	for _, t := range teams {
		if strings.EqualFold(t.Abbreviation, strings.TrimSpace(query)) || identity.Normalize(t.Name) == q {
			return t, nil
		}
		name := identity.Normalize(t.Name)
		score := identity.Similarity(name, q)
		if strings.Contains(name, q) {
			score = max(score, 0.9)
		}
		if score > bestScore {
			best, bestScore = t, score
		}
	}
	if bestScore < teamMatchThreshold {
		return models.LeagueTeam{}, fmt.Errorf("%w: %q", ErrTeamNotFound, query)
	}
	return best, nil
}

func (s *FantasyService) resolveTeam(metadata *models.LeagueMetadata, query string) (models.LeagueTeam, error) {
	if query == "" {
		for _, t := range metadata.Teams {
			if t.ID == s.defaults.TeamID {
				return t, nil
			}
		}
		return models.LeagueTeam{}, fmt.Errorf("%w: no team given and TEAM_ID %d is not in the league", ErrTeamNotFound, s.defaults.TeamID)
	}
	return FindTeam(metadata.Teams, query)
}

// ProjectMatchup projects the matchup of one team, which is always reported
// as team A.
func (s *FantasyService) ProjectMatchup(ctx context.Context, opts MatchupOptions) (*projection.MatchupProjection, error) {
	metadata, err := s.getLeagueMetadata(ctx)
	if err != nil {
		return nil, fmt.Errorf("error fetching league metadata: %w", err)
	}
	team, err := s.resolveTeam(metadata, opts.Team)
	if err != nil {
		return nil, err
	}

	ws, err := s.loadWeek(ctx, opts)
	if err != nil {
		return nil, err
	}
	for _, m := range ws.matchups {
		switch team.ID {
		case m.HomeTeamID:
			return s.project(ws, m.HomeTeamID, m.AwayTeamID)
		case m.AwayTeamID:
			return s.project(ws, m.AwayTeamID, m.HomeTeamID)
		}
	}
	return nil, fmt.Errorf("%w: %s in period %d", ErrNoMatchup, team.Name, ws.week.Period)
}

// ProjectLeague projects every matchup of the period, home team first.
func (s *FantasyService) ProjectLeague(ctx context.Context, opts MatchupOptions) ([]*projection.MatchupProjection, error) {
	ws, err := s.loadWeek(ctx, opts)
	if err != nil {
		return nil, err
	}

	results := make([]*projection.MatchupProjection, len(ws.matchups))
	g := new(errgroup.Group)
	for i, m := range ws.matchups {
		g.Go(func() error {
			p, err := s.project(ws, m.HomeTeamID, m.AwayTeamID)
			if err != nil {
				return err
			}
			results[i] = p
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func (s *FantasyService) project(ws *weekState, teamA, teamB int) (*projection.MatchupProjection, error) {
	req := projection.Request{
		TeamA:      s.teamInput(ws, teamA),
		TeamB:      s.teamInput(ws, teamB),
		WeekStart:  ws.week.Start,
		WeekEnd:    ws.week.End,
		AsOf:       ws.asOf,
		Window:     ws.window,
		Categories: ws.metadata.Categories,
		Inventory:  ws.metadata.Inventory,
	}
	return s.engine.ProjectMatchup(req)
}

func (s *FantasyService) teamInput(ws *weekState, teamID int) projection.TeamInput {
	name := fmt.Sprintf("Team %d", teamID)
	for _, t := range ws.metadata.Teams {
		if t.ID == teamID {
			name = t.Name
			break
		}
	}
	return projection.TeamInput{
		Key:      fmt.Sprintf("%d", teamID),
		Name:     name,
		Roster:   ws.rosters[teamID],
		Optimize: ws.optimize,
	}
}

// TeamNames lists the league's teams for help text.
func (s *FantasyService) TeamNames(ctx context.Context) ([]string, error) {
	metadata, err := s.getLeagueMetadata(ctx)
	if err != nil {
		return nil, fmt.Errorf("error fetching league metadata: %w", err)
	}
	names := make([]string, 0, len(metadata.Teams))
	for _, t := range metadata.Teams {
		names = append(names, t.Name)
	}
	sort.Strings(names)
	return names, nil
}
