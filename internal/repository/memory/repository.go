package memory

import (
	"sort"
	"sync"

	"github.com/yonasstephen/shams-sub000/internal/identity"
	"github.com/yonasstephen/shams-sub000/internal/models"
)

// Repository keeps the league metadata and the active stats snapshot in
// memory. A refresh swaps the whole snapshot so readers always see a
// consistent copy.
type Repository struct {
	metadata *models.LeagueMetadata
	snapshot *models.StatsSnapshot
	resolver *identity.Resolver
	mu       sync.RWMutex
}

func NewRepository() *Repository {
	return &Repository{}
}

func (r *Repository) SaveMetadata(metadata *models.LeagueMetadata) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.metadata = metadata
}

func (r *Repository) GetMetadata() *models.LeagueMetadata {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.metadata
}

func (r *Repository) SetSnapshot(snapshot *models.StatsSnapshot) {
	var candidates []identity.Candidate
	if snapshot != nil {
		for id, p := range snapshot.Players {
			candidates = append(candidates, identity.Candidate{ID: id, Name: p.Name})
		}
	}
	resolver := identity.NewResolver(candidates, identity.DefaultThreshold)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.snapshot = snapshot
	r.resolver = resolver
}

func (r *Repository) Snapshot() *models.StatsSnapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.snapshot
}

func (r *Repository) HasData() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return !r.snapshot.Empty()
}

func (r *Repository) ResolveIdentity(name string) (int, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.resolver == nil {
		return 0, false
	}
	return r.resolver.Resolve(name)
}

// GameDates returns the dates in [start, end] on which the player's team plays.
func (r *Repository) GameDates(playerID int, start, end models.Date) models.DateSet {
	r.mu.RLock()
	defer r.mu.RUnlock()
	dates := make(models.DateSet)
	if r.snapshot.Empty() {
		return dates
	}
	player, ok := r.snapshot.Players[playerID]
	if !ok {
		return dates
	}
	for _, d := range r.snapshot.TeamSchedules[player.TeamID] {
		if !d.Before(start) && !d.After(end) {
			dates.Add(d)
		}
	}
	return dates
}

func (r *Repository) SeasonProfile(playerID int) *models.AverageProfile {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.snapshot.Empty() {
		return nil
	}
	return r.snapshot.Players[playerID].Season
}

func (r *Repository) Games(playerID int, start, end models.Date) []models.GameRecord {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.snapshot.Empty() {
		return nil
	}
	var games []models.GameRecord
	for _, g := range r.snapshot.Players[playerID].Games {
		if (start.IsZero() || !g.Date.Before(start)) && !g.Date.After(end) {
			games = append(games, g)
		}
	}
	sort.Slice(games, func(i, j int) bool { return games[i].Date < games[j].Date })
	return games
}

func (r *Repository) Player(id int) (models.PlayerRecord, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.snapshot.Empty() {
		return models.PlayerRecord{}, false
	}
	p, ok := r.snapshot.Players[id]
	return p, ok
}

// BoxScoreLine is one player's record for one game.
type BoxScoreLine struct {
	PlayerID int               `json:"player_id"`
	Name     string            `json:"name"`
	TeamID   int               `json:"team_id"`
	Game     models.GameRecord `json:"game"`
}

// BoxScores returns every player's record on date, grouped by game and then
// by points scored.
func (r *Repository) BoxScores(date models.Date) []BoxScoreLine {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.snapshot.Empty() {
		return nil
	}
	var lines []BoxScoreLine
	for id, p := range r.snapshot.Players {
		for _, g := range p.Games {
			if g.Date == date {
				lines = append(lines, BoxScoreLine{PlayerID: id, Name: p.Name, TeamID: p.TeamID, Game: g})
			}
		}
	}
	sort.Slice(lines, func(i, j int) bool {
		a, b := lines[i], lines[j]
		if a.Game.GameID != b.Game.GameID {
			return a.Game.GameID < b.Game.GameID
		}
		if a.Game.Line.PTS != b.Game.Line.PTS {
			return a.Game.Line.PTS > b.Game.Line.PTS
		}
		return a.PlayerID < b.PlayerID
	})
	return lines
}
