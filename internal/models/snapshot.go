package models

import "time"

// PlayerRecord is everything cached about one player of the stats provider.
type PlayerRecord struct {
	ID     int             `json:"id"`
	Name   string          `json:"name"`
	TeamID int             `json:"team_id"`
	Games  []GameRecord    `json:"games"`
	Season *AverageProfile `json:"season,omitempty"`
}

// StatsSnapshot is a consistent copy of the box-score and schedule caches.
type StatsSnapshot struct {
	Season        int                  `json:"season"`
	UpdatedAt     time.Time            `json:"updated_at"`
	Players       map[int]PlayerRecord `json:"players"`
	TeamSchedules map[int][]Date       `json:"team_schedules"`
}

func (s *StatsSnapshot) Empty() bool {
	return s == nil || len(s.Players) == 0
}

func (s *StatsSnapshot) GameCount() int {
	if s == nil {
		return 0
	}
	n := 0
	for _, p := range s.Players {
		n += len(p.Games)
	}
	return n
}
