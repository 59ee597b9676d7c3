package service

import (
	"context"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yonasstephen/shams-sub000/internal/models"
	"github.com/yonasstephen/shams-sub000/internal/projection"
	"github.com/yonasstephen/shams-sub000/internal/repository/memory"
)

type fakeLeagueAPI struct {
	mu            sync.Mutex
	metadataCalls int
	rosterDates   []models.Date
	agents        []models.FreeAgent
}

func (f *fakeLeagueAPI) GetLeagueMetadata(context.Context) (*models.LeagueMetadata, error) {
	f.mu.Lock()
	f.metadataCalls++
	f.mu.Unlock()
	return &models.LeagueMetadata{
		CurrentMatchupPeriod: 1,
		Categories:           []models.StatCategory{{ID: "19", DisplayName: "FG%", IsPercentage: true}, {ID: "0", DisplayName: "PTS"}},
		Inventory:            models.SlotInventory{{Label: "PG", Count: 1}, {Label: "C", Count: 1}, {Label: "Util", Count: 1}, {Label: "BN", Count: 2}},
		MatchupPeriods:       map[int][]int{1: {1}},
		Teams: []models.LeagueTeam{
			{ID: 1, Name: "Mavs Fans", Abbreviation: "MAV"},
			{ID: 2, Name: "Joker Club", Abbreviation: "JOK"},
			{ID: 3, Name: "Hoop Dreams", Abbreviation: "HOOP"},
			{ID: 4, Name: "Brick City", Abbreviation: "BRK"},
		},
		LastUpdated: time.Now(),
	}, nil
}

func (f *fakeLeagueAPI) GetRosters(_ context.Context, date models.Date) (map[int][]models.RosterPlayer, error) {
	f.mu.Lock()
	f.rosterDates = append(f.rosterDates, date)
	f.mu.Unlock()
	return map[int][]models.RosterPlayer{
		1: {{PlayerKey: "3945274", Name: "Luka Doncic", EligiblePositions: []string{"PG", "G", "Util"}, AssignedSlot: "PG"}},
		2: {{PlayerKey: "3112335", Name: "Nikola Jokic", EligiblePositions: []string{"C", "Util"}, AssignedSlot: "C"}},
		3: {{PlayerKey: "1", Name: "Alpha Scorer", EligiblePositions: []string{"C", "Util"}, AssignedSlot: "Util"}},
		4: {{PlayerKey: "2", Name: "Beta Shooter", EligiblePositions: []string{"PG", "Util"}, AssignedSlot: "BN"}},
	}, nil
}

func (f *fakeLeagueAPI) GetMatchups(_ context.Context, period int) ([]models.Matchup, error) {
	return []models.Matchup{
		{ID: 1, MatchupPeriod: period, HomeTeamID: 1, AwayTeamID: 2},
		{ID: 2, MatchupPeriod: period, HomeTeamID: 3, AwayTeamID: 4},
	}, nil
}

func (f *fakeLeagueAPI) Week(period int, _ *models.LeagueMetadata) models.Week {
	return models.Week{Period: period, Start: "2025-01-06", End: "2025-01-12"}
}

func (f *fakeLeagueAPI) PeriodFor(models.Date, *models.LeagueMetadata) int { return 1 }

func (f *fakeLeagueAPI) GetFreeAgents(_ context.Context, _ models.Date, limit int) ([]models.FreeAgent, error) {
	if len(f.agents) > limit {
		return f.agents[:limit], nil
	}
	return f.agents, nil
}

func (f *fakeLeagueAPI) requestedDates() []models.Date {
	f.mu.Lock()
	defer f.mu.Unlock()
	dates := append([]models.Date(nil), f.rosterDates...)
	sort.Slice(dates, func(i, j int) bool { return dates[i] < dates[j] })
	return dates
}

func game(id int, date models.Date, pts, fgm, fga float64) models.GameRecord {
	return models.GameRecord{Date: date, GameID: id, Final: true, Line: models.StatLine{PTS: pts, FGM: fgm, FGA: fga, MIN: 30}}
}

func player(id, team int, name string, games ...models.GameRecord) models.PlayerRecord {
	return models.PlayerRecord{ID: id, Name: name, TeamID: team, Games: games, Season: models.NewAverageProfile(games)}
}

func testSnapshot() *models.StatsSnapshot {
	return &models.StatsSnapshot{
		Season: 2024,
		Players: map[int]models.PlayerRecord{
			15:  player(15, 7, "Luka Dončić", game(1, "2025-01-02", 30, 10, 20), game(2, "2025-01-06", 40, 14, 25)),
			246: player(246, 9, "Nikola Jokić", game(3, "2025-01-03", 30, 12, 20), game(4, "2025-01-07", 26, 10, 18)),
			30:  player(30, 11, "Alpha Scorer", game(5, "2025-01-03", 20, 8, 16)),
			31:  player(31, 12, "Beta Shooter", game(6, "2025-01-03", 10, 4, 10)),
		},
		TeamSchedules: map[int][]models.Date{
			7:  {"2025-01-02", "2025-01-06", "2025-01-08", "2025-01-10", "2025-01-12"},
			9:  {"2025-01-03", "2025-01-07", "2025-01-09"},
			11: {"2025-01-03", "2025-01-10"},
			12: {"2025-01-03", "2025-01-11"},
		},
	}
}

func newTestService(t *testing.T, snapshot *models.StatsSnapshot) (*FantasyService, *fakeLeagueAPI) {
	t.Helper()
	api := &fakeLeagueAPI{}
	repo := memory.NewRepository()
	if snapshot != nil {
		repo.SetSnapshot(snapshot)
	}
	engine := projection.NewEngine(repo, nil)
	return NewFantasyService(api, repo, engine, Defaults{TeamID: 1, Mode: "season", Location: time.UTC}, nil), api
}

func TestProjectMatchup_NamedTeamIsTeamA(t *testing.T) {
	svc, api := newTestService(t, testSnapshot())

	got, err := svc.ProjectMatchup(context.Background(), MatchupOptions{Team: "joker", AsOf: "2025-01-08"})
	require.NoError(t, err)

	assert.Equal(t, "Joker Club", got.TeamA.Name)
	assert.Equal(t, "Mavs Fans", got.TeamB.Name)
	assert.InDelta(t, 54.0, got.TeamA.Projected.Stats["0"], 1e-9)
	assert.InDelta(t, 145.0, got.TeamB.Projected.Stats["0"], 1e-9)
	assert.Equal(t, projection.Outcome{Win: 1, Loss: 1, Total: 1}, got.TeamA.Outcome)
	assert.Equal(t, []models.Date{"2025-01-06", "2025-01-07", "2025-01-08"}, api.requestedDates())
}

func TestProjectMatchup_DefaultTeam(t *testing.T) {
	svc, _ := newTestService(t, testSnapshot())

	got, err := svc.ProjectMatchup(context.Background(), MatchupOptions{AsOf: "2025-01-08"})
	require.NoError(t, err)
	assert.Equal(t, "Mavs Fans", got.TeamA.Name)
}

func TestProjectMatchup_FutureWeekUsesCurrentRoster(t *testing.T) {
	svc, api := newTestService(t, testSnapshot())

	got, err := svc.ProjectMatchup(context.Background(), MatchupOptions{AsOf: "2025-01-04"})
	require.NoError(t, err)

	assert.Equal(t, []models.Date{"2025-01-04"}, api.requestedDates())
	assert.Zero(t, got.TeamA.Current.Stats["0"])
	// four Mavs games at a 35 point average
	assert.InDelta(t, 140.0, got.TeamA.Projected.Stats["0"], 1e-9)
}

func TestProjectMatchup_PastWeekFetchesWholeWeek(t *testing.T) {
	svc, api := newTestService(t, testSnapshot())

	_, err := svc.ProjectMatchup(context.Background(), MatchupOptions{AsOf: "2025-01-20"})
	require.NoError(t, err)
	assert.Len(t, api.requestedDates(), 7)
}

func TestProjectMatchup_Errors(t *testing.T) {
	svc, _ := newTestService(t, testSnapshot())
	ctx := context.Background()

	_, err := svc.ProjectMatchup(ctx, MatchupOptions{Team: "zzzzzz"})
	assert.ErrorIs(t, err, ErrTeamNotFound)

	_, err = svc.ProjectMatchup(ctx, MatchupOptions{Mode: "nonsense"})
	assert.ErrorIs(t, err, projection.ErrInvalidWindow)

	empty, _ := newTestService(t, nil)
	_, err = empty.ProjectMatchup(ctx, MatchupOptions{AsOf: "2025-01-08"})
	assert.ErrorIs(t, err, projection.ErrNoStatsData)
}

func TestProjectLeague(t *testing.T) {
	svc, api := newTestService(t, testSnapshot())

	got, err := svc.ProjectLeague(context.Background(), MatchupOptions{AsOf: "2025-01-08"})
	require.NoError(t, err)

	require.Len(t, got, 2)
	assert.Equal(t, "Mavs Fans", got[0].TeamA.Name)
	assert.Equal(t, "Hoop Dreams", got[1].TeamA.Name)
	// Beta Shooter sits on the bench all week
	assert.Zero(t, got[1].TeamB.Projected.Stats["0"])
	assert.InDelta(t, 20.0, got[1].TeamA.Projected.Stats["0"], 1e-9)
	assert.Equal(t, 1, api.metadataCalls)
}

func TestProjectLeague_Optimized(t *testing.T) {
	svc, _ := newTestService(t, testSnapshot())
	optimize := true

	got, err := svc.ProjectLeague(context.Background(), MatchupOptions{AsOf: "2025-01-08", Optimize: &optimize})
	require.NoError(t, err)

	require.Len(t, got, 2)
	assert.True(t, got[1].TeamB.Optimized)
	assert.InDelta(t, 10.0, got[1].TeamB.Projected.Stats["0"], 1e-9)
}

func TestFindTeam(t *testing.T) {
	teams := []models.LeagueTeam{
		{ID: 1, Name: "Mavs Fans", Abbreviation: "MAV"},
		{ID: 2, Name: "Joker Club", Abbreviation: "JOK"},
	}

	got, err := FindTeam(teams, "jok")
	require.NoError(t, err)
	assert.Equal(t, 2, got.ID)

	got, err = FindTeam(teams, "Mavs Fan")
	require.NoError(t, err)
	assert.Equal(t, 1, got.ID)

	got, err = FindTeam(teams, "joker clb")
	require.NoError(t, err)
	assert.Equal(t, 2, got.ID)

	_, err = FindTeam(teams, "")
	assert.ErrorIs(t, err, ErrTeamNotFound)
}

func TestFormatMatchup(t *testing.T) {
	svc, _ := newTestService(t, testSnapshot())

	report, err := svc.GetMatchupReport(context.Background(), MatchupOptions{AsOf: "2025-01-08"})
	require.NoError(t, err)

	assert.Contains(t, report, "*Mavs Fans vs Joker Club*")
	assert.Contains(t, report, "Projected: *1-1-0*")
	assert.Contains(t, report, "145.0*")
	assert.Contains(t, report, ".568*")
}

func TestFormatLeague(t *testing.T) {
	svc, _ := newTestService(t, testSnapshot())

	report, err := svc.GetLeagueReport(context.Background(), MatchupOptions{AsOf: "2025-01-08"})
	require.NoError(t, err)

	assert.Contains(t, report, "League Projections")
	assert.Contains(t, report, "Closest Matchup: Mavs Fans vs Joker Club")
	assert.Contains(t, report, "Most Lopsided: Hoop Dreams vs Brick City")
	assert.Equal(t, "No matchups this week.", FormatLeague(nil))
}
