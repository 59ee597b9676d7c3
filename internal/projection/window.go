package projection

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/yonasstephen/shams-sub000/internal/models"
)

var ErrInvalidWindow = errors.New("invalid window mode")

type WindowKind int

const (
	WindowSeason WindowKind = iota
	WindowGames
	WindowDays
)

// Window is the averaging horizon used to project remaining games.
type Window struct {
	Kind WindowKind
	N    int
}

var SeasonWindow = Window{Kind: WindowSeason}

// ParseWindow accepts "season", "last", "lastN" (games) and "lastNd" (days).
func ParseWindow(mode string) (Window, error) {
	m := strings.ToLower(strings.TrimSpace(mode))
	switch m {
	case "", "season":
		return SeasonWindow, nil
	case "last":
		return Window{Kind: WindowGames, N: 1}, nil
	}
	if !strings.HasPrefix(m, "last") {
		return Window{}, fmt.Errorf("%w: %q", ErrInvalidWindow, mode)
	}

	kind, digits := WindowGames, m[len("last"):]
	if strings.HasSuffix(digits, "d") {
		kind, digits = WindowDays, strings.TrimSuffix(digits, "d")
	}
	n, err := strconv.Atoi(digits)
	if err != nil {
		return Window{}, fmt.Errorf("%w: %q", ErrInvalidWindow, mode)
	}
	if n <= 0 {
		n = 1
	}
	return Window{Kind: kind, N: n}, nil
}

func (w Window) IsSeason() bool { return w.Kind == WindowSeason }

func (w Window) String() string {
	switch w.Kind {
	case WindowGames:
		return fmt.Sprintf("last%d", w.N)
	case WindowDays:
		return fmt.Sprintf("last%dd", w.N)
	}
	return "season"
}

// Select picks the completed games that fall inside the window as of asOf.
func (w Window) Select(games []models.GameRecord, asOf models.Date) []models.GameRecord {
	var played []models.GameRecord
	for _, g := range games {
		if g.Played() && !g.Date.After(asOf) {
			played = append(played, g)
		}
	}
	sort.SliceStable(played, func(i, j int) bool { return played[i].Date > played[j].Date })

	switch w.Kind {
	case WindowGames:
		if len(played) > w.N {
			played = played[:w.N]
		}
	case WindowDays:
		cutoff := asOf.AddDays(-w.N)
		n := 0
		for _, g := range played {
			if !g.Date.Before(cutoff) {
				n++
			}
		}
		played = played[:n]
	}
	return played
}

// ProfileFor returns the averages to project with. Recent windows are
// rebuilt from the game log and fall back to the season averages when the
// window holds no games.
func ProfileFor(w Window, season *models.AverageProfile, games []models.GameRecord, asOf models.Date) *models.AverageProfile {
	if w.IsSeason() {
		return season
	}
	if profile := models.NewAverageProfile(w.Select(games, asOf)); profile != nil {
		return profile
	}
	return season
}
