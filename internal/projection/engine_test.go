package projection

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yonasstephen/shams-sub000/internal/models"
)

type fakeSource struct {
	empty         bool
	ids           map[string]int
	schedules     map[int][]models.Date
	games         map[int][]models.GameRecord
	profiles      map[int]*models.AverageProfile
	scheduleCalls map[int]int
}

func (f *fakeSource) HasData() bool { return !f.empty }

func (f *fakeSource) ResolveIdentity(name string) (int, bool) {
	id, ok := f.ids[name]
	return id, ok
}

func (f *fakeSource) GameDates(id int, start, end models.Date) models.DateSet {
	f.scheduleCalls[id]++
	out := make(models.DateSet)
	for _, d := range f.schedules[id] {
		if !d.Before(start) && !d.After(end) {
			out.Add(d)
		}
	}
	return out
}

func (f *fakeSource) SeasonProfile(id int) *models.AverageProfile { return f.profiles[id] }

func (f *fakeSource) Games(id int, start, end models.Date) []models.GameRecord {
	var out []models.GameRecord
	for _, g := range f.games[id] {
		if (start.IsZero() || !g.Date.Before(start)) && !g.Date.After(end) {
			out = append(out, g)
		}
	}
	return out
}

func newFakeSource() *fakeSource {
	return &fakeSource{
		ids: map[string]int{"Alpha Guard": 1, "Bench Guy": 2, "Beta Center": 3},
		schedules: map[int][]models.Date{
			1: {"2025-01-06", "2025-01-08", "2025-01-10"},
			2: {"2025-01-07"},
			3: {"2025-01-07", "2025-01-09", "2025-01-11"},
		},
		games: map[int][]models.GameRecord{
			1: {
				{Date: "2025-01-06", Final: true, Line: models.StatLine{PTS: 20, FGM: 8, FGA: 16}},
				{Date: "2025-01-08", Final: false, Line: models.StatLine{PTS: 5, FGM: 2, FGA: 3}},
			},
			2: {{Date: "2025-01-07", Final: true, Line: models.StatLine{PTS: 30, FGM: 12, FGA: 20}}},
			3: {{Date: "2025-01-07", Final: true, Line: models.StatLine{PTS: 12, FGM: 6, FGA: 9}}},
		},
		profiles: map[int]*models.AverageProfile{
			1: {Games: 30, PerGame: models.StatLine{PTS: 25, FGM: 10, FGA: 20}},
			2: {Games: 30, PerGame: models.StatLine{PTS: 30, FGM: 11, FGA: 20}},
			3: {Games: 30, PerGame: models.StatLine{PTS: 10, FGM: 4, FGA: 8}},
		},
		scheduleCalls: make(map[int]int),
	}
}

func teamARoster() models.RosterByDate {
	day := []models.RosterPlayer{
		{PlayerKey: "k.alpha", Name: "Alpha Guard", EligiblePositions: []string{"PG", "G", "Util"}, AssignedSlot: "PG", Rank: 10},
		{PlayerKey: "k.bench", Name: "Bench Guy", EligiblePositions: []string{"PG", "G", "Util"}, AssignedSlot: "BN", Rank: 40},
		{PlayerKey: "k.mystery", Name: "Mystery Man", EligiblePositions: []string{"C"}, AssignedSlot: "C"},
	}
	return models.RosterByDate{"2025-01-06": day, "2025-01-07": day, "2025-01-08": day}
}

func teamBRoster() models.RosterByDate {
	day := []models.RosterPlayer{
		{PlayerKey: "k.beta", Name: "Beta Center", EligiblePositions: []string{"C", "Util"}, AssignedSlot: "C"},
	}
	return models.RosterByDate{"2025-01-06": day, "2025-01-07": day, "2025-01-08": day}
}

func baseRequest() Request {
	return Request{
		TeamA:      TeamInput{Key: "t.1", Name: "Alphas", Roster: teamARoster()},
		TeamB:      TeamInput{Key: "t.2", Name: "Betas", Roster: teamBRoster()},
		WeekStart:  "2025-01-06",
		WeekEnd:    "2025-01-12",
		AsOf:       "2025-01-08",
		Window:     SeasonWindow,
		Categories: []models.StatCategory{{ID: "5", DisplayName: "FG%", IsPercentage: true}, {ID: "12", DisplayName: "PTS"}},
		Inventory:  models.SlotInventory{{Label: "PG", Count: 1}, {Label: "C", Count: 1}, {Label: "Util", Count: 1}, {Label: "BN", Count: 3}},
	}
}

func findPlayer(t *testing.T, team TeamProjection, key string) PlayerProjection {
	t.Helper()
	for _, p := range team.Players {
		if p.PlayerKey == key {
			return p
		}
	}
	t.Fatalf("player %s not in projection", key)
	return PlayerProjection{}
}

func TestProjectMatchup_NoData(t *testing.T) {
	src := newFakeSource()
	src.empty = true

	_, err := NewEngine(src, nil).ProjectMatchup(baseRequest())

	assert.ErrorIs(t, err, ErrNoStatsData)
}

func TestProjectMatchup_LeagueSlots(t *testing.T) {
	src := newFakeSource()

	got, err := NewEngine(src, nil).ProjectMatchup(baseRequest())
	require.NoError(t, err)

	assert.NotEmpty(t, got.ID)
	assert.Equal(t, "season", got.Window)

	a := got.TeamA
	assert.InDelta(t, 20.0, a.Current.Stats["12"], 1e-9)
	assert.InDelta(t, 70.0, a.Projected.Stats["12"], 1e-9)
	assert.InDelta(t, 28.0/56.0, a.Projected.Stats["5"], 1e-9)

	alpha := findPlayer(t, a, "k.alpha")
	assert.Equal(t, 1, alpha.GamesPlayed)
	assert.Equal(t, 2, alpha.RemainingGames)
	assert.Equal(t, 3, alpha.TotalGames)
	assert.True(t, alpha.OnRosterToday)
	assert.Equal(t, "PG", alpha.Positions["2025-01-12"])
	require.Contains(t, alpha.Daily, models.Date("2025-01-10"))
	assert.InDelta(t, 25.0, alpha.Daily["2025-01-10"].Stats["12"], 1e-9)

	bench := findPlayer(t, a, "k.bench")
	assert.Zero(t, bench.Current.Stats["12"])
	assert.Zero(t, bench.Remaining.Stats["12"])

	mystery := findPlayer(t, a, "k.mystery")
	assert.Zero(t, mystery.StatsID)
	assert.Zero(t, mystery.Remaining.Stats["12"])

	b := got.TeamB
	assert.InDelta(t, 12.0, b.Current.Stats["12"], 1e-9)
	assert.InDelta(t, 32.0, b.Projected.Stats["12"], 1e-9)

	assert.Equal(t, Outcome{Win: 1, Loss: 1, Total: 1}, a.Outcome)
	assert.Equal(t, Outcome{Win: 1, Loss: 1, Total: 1}, b.Outcome)
	assert.Equal(t, 1, src.scheduleCalls[1])
}

func TestProjectMatchup_Optimized(t *testing.T) {
	req := baseRequest()
	req.TeamA.Optimize = true

	got, err := NewEngine(newFakeSource(), nil).ProjectMatchup(req)
	require.NoError(t, err)

	a := got.TeamA
	assert.True(t, a.Optimized)
	bench := findPlayer(t, a, "k.bench")
	assert.Equal(t, "PG", bench.Positions["2025-01-07"])
	assert.InDelta(t, 30.0, bench.Current.Stats["12"], 1e-9)
	assert.InDelta(t, 50.0, a.Current.Stats["12"], 1e-9)

	alpha := findPlayer(t, a, "k.alpha")
	assert.Equal(t, "BN", alpha.Positions["2025-01-07"])
	assert.Equal(t, "PG", alpha.Positions["2025-01-08"])
}

func TestProjectMatchup_RemainingNeverNegative(t *testing.T) {
	got, err := NewEngine(newFakeSource(), nil).ProjectMatchup(baseRequest())
	require.NoError(t, err)

	for _, team := range []TeamProjection{got.TeamA, got.TeamB} {
		for _, p := range team.Players {
			for id, v := range p.Remaining.Stats {
				assert.GreaterOrEqual(t, p.Current.Stats[id]+v, p.Current.Stats[id], "%s %s", p.PlayerKey, id)
			}
		}
	}
}

func TestProjectMatchup_FinishedDNPIsNotProjected(t *testing.T) {
	src := newFakeSource()
	src.games[1][1] = models.GameRecord{Date: "2025-01-08", Final: true, DNP: true}

	got, err := NewEngine(src, nil).ProjectMatchup(baseRequest())
	require.NoError(t, err)

	alpha := findPlayer(t, got.TeamA, "k.alpha")
	assert.Equal(t, 1, alpha.GamesPlayed)
	assert.Equal(t, 1, alpha.RemainingGames)
	assert.InDelta(t, 20.0, alpha.Current.Stats["12"], 1e-9)
	assert.InDelta(t, 25.0, alpha.Remaining.Stats["12"], 1e-9)
	assert.NotContains(t, alpha.Daily, models.Date("2025-01-08"))
	assert.InDelta(t, 45.0, got.TeamA.Projected.Stats["12"], 1e-9)
}

func TestProjectMatchup_PastWeekUsesActualsOnly(t *testing.T) {
	req := baseRequest()
	req.AsOf = "2025-01-20"

	got, err := NewEngine(newFakeSource(), nil).ProjectMatchup(req)
	require.NoError(t, err)

	assert.Equal(t, got.TeamA.Current.Stats["12"], got.TeamA.Projected.Stats["12"])
	assert.Equal(t, got.TeamB.Current.Stats["12"], got.TeamB.Projected.Stats["12"])
}

func TestProjectMatchup_FutureWeekIsAllProjection(t *testing.T) {
	req := baseRequest()
	req.AsOf = "2025-01-05"
	req.TeamA.Roster = models.RosterByDate{"2025-01-05": teamARoster()["2025-01-06"]}
	req.TeamB.Roster = models.RosterByDate{"2025-01-05": teamBRoster()["2025-01-06"]}

	got, err := NewEngine(newFakeSource(), nil).ProjectMatchup(req)
	require.NoError(t, err)

	assert.Zero(t, got.TeamA.Current.Stats["12"])
	assert.InDelta(t, 75.0, got.TeamA.Projected.Stats["12"], 1e-9)
	assert.InDelta(t, 30.0, got.TeamB.Projected.Stats["12"], 1e-9)
}
