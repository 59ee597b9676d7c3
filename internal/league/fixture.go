// Package league loads offline matchup fixtures so a projection can run
// without the fantasy platform or the stats provider.
package league

import (
	"fmt"
	"os"
	"sort"
	"time"

	"gopkg.in/yaml.v2"

	"github.com/yonasstephen/shams-sub000/internal/models"
	"github.com/yonasstephen/shams-sub000/internal/projection"
)

type Fixture struct {
	WeekStart  models.Date           `yaml:"week_start"`
	WeekEnd    models.Date           `yaml:"week_end"`
	AsOf       models.Date           `yaml:"as_of"`
	Window     string                `yaml:"window"`
	Categories []models.StatCategory `yaml:"categories"`
	Inventory  models.SlotInventory  `yaml:"inventory"`
	TeamA      FixtureTeam           `yaml:"team_a"`
	TeamB      FixtureTeam           `yaml:"team_b"`
	Stats      FixtureStats          `yaml:"stats"`
}

type FixtureTeam struct {
	Key      string              `yaml:"key"`
	Name     string              `yaml:"name"`
	Optimize bool                `yaml:"optimize"`
	Roster   models.RosterByDate `yaml:"roster"`
}

type FixtureStats struct {
	Season    int                   `yaml:"season"`
	Players   []FixturePlayer       `yaml:"players"`
	Schedules map[int][]models.Date `yaml:"schedules"`
}

type FixturePlayer struct {
	ID     int                 `yaml:"id"`
	Name   string              `yaml:"name"`
	TeamID int                 `yaml:"team_id"`
	Games  []models.GameRecord `yaml:"games"`
}

func LoadFixture(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading fixture: %w", err)
	}
	return ParseFixture(data)
}

func ParseFixture(data []byte) (*Fixture, error) {
	var f Fixture
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing fixture: %w", err)
	}
	if err := f.validateDates(); err != nil {
		return nil, err
	}
	if f.WeekStart.IsZero() || f.WeekEnd.IsZero() {
		return nil, fmt.Errorf("fixture needs week_start and week_end")
	}
	if f.WeekEnd.Before(f.WeekStart) {
		return nil, fmt.Errorf("fixture week_end %s is before week_start %s", f.WeekEnd, f.WeekStart)
	}
	if f.AsOf.IsZero() {
		f.AsOf = f.WeekStart
	}
	if len(f.Categories) == 0 {
		return nil, fmt.Errorf("fixture has no categories")
	}
	return &f, nil
}

// validateDates checks every date in the fixture. Map keys are checked here
// because they bypass the Date unmarshaler.
func (f *Fixture) validateDates() error {
	check := func(field string, d models.Date) error {
		if err := d.Validate(); err != nil {
			return fmt.Errorf("fixture %s: %w", field, err)
		}
		return nil
	}
	for field, d := range map[string]models.Date{"week_start": f.WeekStart, "week_end": f.WeekEnd, "as_of": f.AsOf} {
		if err := check(field, d); err != nil {
			return err
		}
	}
	for _, team := range []FixtureTeam{f.TeamA, f.TeamB} {
		for d := range team.Roster {
			if d.IsZero() {
				return fmt.Errorf("fixture %s roster: empty date key", team.Key)
			}
			if err := check(team.Key+" roster", d); err != nil {
				return err
			}
		}
	}
	for team, dates := range f.Stats.Schedules {
		for _, d := range dates {
			if err := check(fmt.Sprintf("schedule for team %d", team), d); err != nil {
				return err
			}
		}
	}
	for _, p := range f.Stats.Players {
		for _, g := range p.Games {
			if g.Date.IsZero() {
				return fmt.Errorf("fixture game for %s: missing date", p.Name)
			}
			if err := check("game for "+p.Name, g.Date); err != nil {
				return err
			}
		}
	}
	return nil
}

// Request turns the fixture into an engine request. A non-empty mode
// overrides the fixture's window.
func (f *Fixture) Request(mode string) (projection.Request, error) {
	if mode == "" {
		mode = f.Window
	}
	window, err := projection.ParseWindow(mode)
	if err != nil {
		return projection.Request{}, err
	}
	return projection.Request{
		TeamA:      f.TeamA.input(),
		TeamB:      f.TeamB.input(),
		WeekStart:  f.WeekStart,
		WeekEnd:    f.WeekEnd,
		AsOf:       f.AsOf,
		Window:     window,
		Categories: f.Categories,
		Inventory:  f.Inventory,
	}, nil
}

func (t FixtureTeam) input() projection.TeamInput {
	return projection.TeamInput{Key: t.Key, Name: t.Name, Roster: t.Roster, Optimize: t.Optimize}
}

// Snapshot builds a stats snapshot from the fixture's players. Team
// schedules include every game date on a player's log in addition to the
// listed schedule.
func (f *Fixture) Snapshot() *models.StatsSnapshot {
	snap := &models.StatsSnapshot{
		Season:        f.Stats.Season,
		UpdatedAt:     time.Now().UTC(),
		Players:       make(map[int]models.PlayerRecord, len(f.Stats.Players)),
		TeamSchedules: make(map[int][]models.Date),
	}

	schedules := make(map[int]models.DateSet)
	addDate := func(team int, d models.Date) {
		if schedules[team] == nil {
			schedules[team] = make(models.DateSet)
		}
		schedules[team].Add(d)
	}
	for team, dates := range f.Stats.Schedules {
		for _, d := range dates {
			addDate(team, d)
		}
	}

	for _, p := range f.Stats.Players {
		games := append([]models.GameRecord(nil), p.Games...)
		sort.Slice(games, func(i, j int) bool { return games[i].Date < games[j].Date })
		var final []models.GameRecord
		for _, g := range games {
			addDate(p.TeamID, g.Date)
			if g.Played() {
				final = append(final, g)
			}
		}
		snap.Players[p.ID] = models.PlayerRecord{
			ID:     p.ID,
			Name:   p.Name,
			TeamID: p.TeamID,
			Games:  games,
			Season: models.NewAverageProfile(final),
		}
	}
	for team, dates := range schedules {
		snap.TeamSchedules[team] = dates.Sorted()
	}
	return snap
}
