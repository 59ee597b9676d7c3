// Package refresh rebuilds the stats snapshot from the box-score provider.
package refresh

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/yonasstephen/shams-sub000/internal/api/bdl"
	"github.com/yonasstephen/shams-sub000/internal/models"
	"github.com/yonasstephen/shams-sub000/internal/repository"
)

var ErrRefreshInProgress = errors.New("refresh already in progress")

// overlapDays re-reads the last few days on every refresh to pick up
// box-score corrections and games that finished after the last run.
const overlapDays = 2

type StatsProvider interface {
	GetGames(ctx context.Context, season int, fn func(bdl.Game) error) error
	GetStats(ctx context.Context, season int, since models.Date, fn func(bdl.StatRow) error) error
}

// SnapshotSink receives every snapshot that becomes current.
type SnapshotSink interface {
	Snapshot() *models.StatsSnapshot
	SetSnapshot(snapshot *models.StatsSnapshot)
}

type Summary struct {
	Season    int
	Players   int
	Games     int
	Since     models.Date
	UpdatedAt time.Time
	Duration  time.Duration
}

type Refresher struct {
	provider StatsProvider
	store    repository.SnapshotStore
	sink     SnapshotSink
	season   int
	logger   *slog.Logger
	mu       sync.Mutex
}

func NewRefresher(provider StatsProvider, store repository.SnapshotStore, sink SnapshotSink, season int, logger *slog.Logger) *Refresher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Refresher{provider: provider, store: store, sink: sink, season: season, logger: logger}
}

// Load makes the persisted snapshot current. A missing snapshot is not an
// error; projections report the empty cache until a refresh runs.
func (r *Refresher) Load(ctx context.Context) error {
	snapshot, err := r.store.LoadSnapshot(ctx, r.season)
	if errors.Is(err, repository.ErrSnapshotNotFound) {
		r.logger.Warn("No stats snapshot on disk, run a refresh", "season", r.season)
		return nil
	}
	if err != nil {
		return fmt.Errorf("loading snapshot: %w", err)
	}
	r.sink.SetSnapshot(snapshot)
	r.logger.Info("Loaded stats snapshot", "season", r.season, "players", len(snapshot.Players), "games", snapshot.GameCount(), "updated_at", snapshot.UpdatedAt)
	return nil
}

// Refresh pulls new games and box scores, rebuilds averages, persists the
// result and swaps it in.
func (r *Refresher) Refresh(ctx context.Context, full bool) (Summary, error) {
	if !r.mu.TryLock() {
		return Summary{}, ErrRefreshInProgress
	}
	defer r.mu.Unlock()

	start := time.Now()
	base := r.sink.Snapshot()
	if full || base == nil || base.Season != r.season {
		base = nil
	}
	since := latestFinal(base)
	if !since.IsZero() {
		since = since.AddDays(-overlapDays)
	}
	r.logger.Info("Refreshing stats", "season", r.season, "since", since, "full", base == nil)

	var games []bdl.Game
	var rows []bdl.StatRow
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return r.provider.GetGames(gctx, r.season, func(game bdl.Game) error {
			games = append(games, game)
			return nil
		})
	})
	g.Go(func() error {
		return r.provider.GetStats(gctx, r.season, since, func(row bdl.StatRow) error {
			rows = append(rows, row)
			return nil
		})
	})
	if err := g.Wait(); err != nil {
		return Summary{}, fmt.Errorf("fetching stats: %w", err)
	}

	snapshot := Build(base, r.season, games, rows, time.Now().UTC())
	if err := r.store.SaveSnapshot(ctx, snapshot); err != nil {
		return Summary{}, fmt.Errorf("saving snapshot: %w", err)
	}
	r.sink.SetSnapshot(snapshot)

	summary := Summary{
		Season:    r.season,
		Players:   len(snapshot.Players),
		Games:     snapshot.GameCount(),
		Since:     since,
		UpdatedAt: snapshot.UpdatedAt,
		Duration:  time.Since(start),
	}
	r.logger.Info("Stats refresh finished", "players", summary.Players, "games", summary.Games, "duration", summary.Duration.Round(time.Millisecond))
	return summary, nil
}

// Build merges new schedule and box-score rows into a copy of base. Rows
// replace earlier rows for the same player and game.
func Build(base *models.StatsSnapshot, season int, games []bdl.Game, rows []bdl.StatRow, now time.Time) *models.StatsSnapshot {
	snapshot := &models.StatsSnapshot{
		Season:        season,
		UpdatedAt:     now,
		Players:       make(map[int]models.PlayerRecord),
		TeamSchedules: make(map[int][]models.Date),
	}

	byPlayer := make(map[int]map[int]models.GameRecord)
	if base != nil {
		for id, p := range base.Players {
			snapshot.Players[id] = models.PlayerRecord{ID: p.ID, Name: p.Name, TeamID: p.TeamID}
			byPlayer[id] = make(map[int]models.GameRecord, len(p.Games))
			for _, g := range p.Games {
				byPlayer[id][g.GameID] = g
			}
		}
		for team, dates := range base.TeamSchedules {
			snapshot.TeamSchedules[team] = append([]models.Date(nil), dates...)
		}
	}

	if len(games) > 0 {
		schedules := make(map[int]models.DateSet)
		for _, g := range games {
			for _, team := range []int{g.HomeTeamID, g.VisitorTeamID} {
				if team == 0 {
					continue
				}
				if schedules[team] == nil {
					schedules[team] = make(models.DateSet)
				}
				schedules[team].Add(g.Date)
			}
		}
		snapshot.TeamSchedules = make(map[int][]models.Date, len(schedules))
		for team, dates := range schedules {
			snapshot.TeamSchedules[team] = dates.Sorted()
		}
	}

	for _, row := range rows {
		p := snapshot.Players[row.PlayerID]
		p.ID = row.PlayerID
		p.Name = row.PlayerName
		if row.TeamID != 0 {
			p.TeamID = row.TeamID
		}
		snapshot.Players[row.PlayerID] = p
		if byPlayer[row.PlayerID] == nil {
			byPlayer[row.PlayerID] = make(map[int]models.GameRecord)
		}
		byPlayer[row.PlayerID][row.GameID] = models.GameRecord{
			Date:   row.Date,
			GameID: row.GameID,
			Final:  row.Final,
			DNP:    row.Final && row.Line.MIN == 0,
			Line:   row.Line,
		}
	}

	for id, p := range snapshot.Players {
		var log, played []models.GameRecord
		for _, g := range byPlayer[id] {
			log = append(log, g)
		}
		sort.Slice(log, func(i, j int) bool { return log[i].Date < log[j].Date })
		for _, g := range log {
			if g.Played() {
				played = append(played, g)
			}
		}
		p.Games = log
		p.Season = models.NewAverageProfile(played)
		snapshot.Players[id] = p
	}
	return snapshot
}

func latestFinal(s *models.StatsSnapshot) models.Date {
	var latest models.Date
	if s == nil {
		return latest
	}
	for _, p := range s.Players {
		for _, g := range p.Games {
			if g.Final && g.Date.After(latest) {
				latest = g.Date
			}
		}
	}
	return latest
}
