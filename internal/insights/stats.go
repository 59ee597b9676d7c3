// Package insights summarizes player game logs for waiver and player
// lookups: windowed averages or totals, the minute trend and a z-score
// ranking over the league's scoring categories.
package insights

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/yonasstephen/shams-sub000/internal/models"
	"github.com/yonasstephen/shams-sub000/internal/projection"
)

var ErrInvalidAggregation = errors.New("invalid aggregation")

type Aggregation string

const (
	AggAverage Aggregation = "avg"
	AggSum     Aggregation = "sum"
)

func ParseAggregation(s string) (Aggregation, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "avg", "average":
		return AggAverage, nil
	case "sum", "total":
		return AggSum, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidAggregation, s)
}

// PlayerStats is a player's line over a window. Counting stats are per game
// or totals depending on the aggregation. Percentages are always made over
// attempted across the window, and Minutes is always per game.
type PlayerStats struct {
	Games    int             `json:"games"`
	Line     models.StatLine `json:"line"`
	FGPct    float64         `json:"fg_pct"`
	FTPct    float64         `json:"ft_pct"`
	FG3Pct   float64         `json:"fg3_pct"`
	Minutes  float64         `json:"minutes"`
	LastGame models.Date     `json:"last_game,omitempty"`
}

// Summarize aggregates the played games inside the window as of asOf.
func Summarize(games []models.GameRecord, w projection.Window, asOf models.Date, agg Aggregation) PlayerStats {
	played := w.Select(games, asOf)
	if len(played) == 0 {
		return PlayerStats{}
	}
	var total models.StatLine
	for _, g := range played {
		total = total.Add(g.Line)
	}
	n := float64(len(played))
	stats := PlayerStats{
		Games:    len(played),
		Line:     total,
		FGPct:    total.FGPct(),
		FTPct:    total.FTPct(),
		FG3Pct:   total.FG3Pct(),
		Minutes:  total.MIN / n,
		LastGame: played[0].Date,
	}
	if agg == AggAverage {
		stats.Line = total.Scale(1 / n)
	}
	return stats
}

// Value reads one category off the summarized line.
func (s PlayerStats) Value(f models.StatField) float64 {
	switch f {
	case models.FieldFGPct:
		return s.FGPct
	case models.FieldFTPct:
		return s.FTPct
	case models.FieldThreePct:
		return s.FG3Pct
	case models.FieldMinutes:
		return s.Minutes
	}
	return s.Line.Get(f)
}

type MinuteTrend struct {
	Last  float64 `json:"last"`
	Prior float64 `json:"prior"`
	Trend float64 `json:"trend"`
}

// Minutes compares the minutes of the most recent played game with the
// average of up to three games before it. Missing prior games leave the
// average at zero. ok is false when the player has not played by asOf.
func Minutes(games []models.GameRecord, asOf models.Date) (MinuteTrend, bool) {
	played := projection.Window{Kind: projection.WindowGames, N: 4}.Select(games, asOf)
	if len(played) == 0 {
		return MinuteTrend{}, false
	}
	mt := MinuteTrend{Last: played[0].Line.MIN}
	if prior := played[1:]; len(prior) > 0 {
		sum := 0.0
		for _, g := range prior {
			sum += g.Line.MIN
		}
		mt.Prior = sum / float64(len(prior))
	}
	mt.Trend = mt.Last - mt.Prior
	return mt, true
}

// ZScores scores every player against the pool: for each scored category
// the player's distance from the pool mean in population standard
// deviations, inverted where lower is better. Categories with no spread add
// nothing.
func ZScores(pool []PlayerStats, cats []models.StatCategory) []float64 {
	scores := make([]float64, len(pool))
	var withGames []int
	for i, p := range pool {
		if p.Games > 0 {
			withGames = append(withGames, i)
		}
	}
	if len(withGames) == 0 {
		return scores
	}
	for _, cat := range cats {
		field, ok := cat.Field()
		if !ok || !cat.Scored() {
			continue
		}
		mean, sd := meanStdDev(pool, withGames, field)
		if sd == 0 {
			continue
		}
		for _, i := range withGames {
			z := (pool[i].Value(field) - mean) / sd
			if cat.Ascending {
				z = -z
			}
			scores[i] += z
		}
	}
	return scores
}

func meanStdDev(pool []PlayerStats, idx []int, field models.StatField) (float64, float64) {
	if len(idx) < 2 {
		return 0, 0
	}
	sum := 0.0
	for _, i := range idx {
		sum += pool[i].Value(field)
	}
	mean := sum / float64(len(idx))
	variance := 0.0
	for _, i := range idx {
		d := pool[i].Value(field) - mean
		variance += d * d
	}
	variance /= float64(len(idx))
	return mean, math.Sqrt(variance)
}

// RankOrder returns pool indexes best first: players with games by z-score
// descending, then players without games, ties kept in input order.
func RankOrder(pool []PlayerStats, scores []float64) []int {
	order := make([]int, len(pool))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		pa, pb := pool[order[a]], pool[order[b]]
		if (pa.Games > 0) != (pb.Games > 0) {
			return pa.Games > 0
		}
		return scores[order[a]] > scores[order[b]]
	})
	return order
}
