package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yonasstephen/shams-sub000/internal/insights"
	"github.com/yonasstephen/shams-sub000/internal/models"
	"github.com/yonasstephen/shams-sub000/internal/projection"
)

func freeAgents() []models.FreeAgent {
	return []models.FreeAgent{
		{PlayerKey: "99", Name: "Zed Unmatched", Availability: models.AvailabilityFreeAgent, Rank: 1},
		{PlayerKey: "31", Name: "Beta Shooter", Availability: models.AvailabilityWaivers, Rank: 2},
		{PlayerKey: "30", Name: "Alpha Scorer", Availability: models.AvailabilityFreeAgent, Rank: 3, InjuryStatus: "DTD"},
	}
}

func TestWaiver_RanksByZScore(t *testing.T) {
	svc, api := newTestService(t, testSnapshot())
	api.agents = freeAgents()

	r, err := svc.Waiver(context.Background(), WaiverOptions{AsOf: "2025-01-09"})
	require.NoError(t, err)

	require.Len(t, r.Players, 3)
	assert.Equal(t, "Alpha Scorer", r.Players[0].Name)
	assert.Equal(t, 1, r.Players[0].Rank)
	assert.InDelta(t, 2.0, r.Players[0].ZScore, 1e-9)
	assert.Equal(t, 30, r.Players[0].StatsID)
	assert.Equal(t, "DTD", r.Players[0].InjuryStatus)
	assert.Equal(t, 1, r.Players[0].TotalGames)
	assert.Equal(t, 1, r.Players[0].RemainingGames)
	assert.False(t, r.Players[0].BackToBack)

	assert.Equal(t, "Beta Shooter", r.Players[1].Name)
	assert.InDelta(t, -2.0, r.Players[1].ZScore, 1e-9)

	// no stats identity ranks last with an empty line
	assert.Equal(t, "Zed Unmatched", r.Players[2].Name)
	assert.Zero(t, r.Players[2].StatsID)
	assert.Zero(t, r.Players[2].Stats.Games)

	assert.Equal(t, "season", r.Window)
	assert.Equal(t, insights.AggAverage, r.Agg)
	assert.Equal(t, models.Date("2025-01-06"), r.Week.Start)
}

func TestWaiver_SortAndCount(t *testing.T) {
	svc, api := newTestService(t, testSnapshot())
	api.agents = freeAgents()

	r, err := svc.Waiver(context.Background(), WaiverOptions{AsOf: "2025-01-09", Sort: "fg%", Agg: "sum", Count: 2})
	require.NoError(t, err)

	require.Len(t, r.Players, 2)
	assert.Equal(t, "Alpha Scorer", r.Players[0].Name)
	assert.Equal(t, "Beta Shooter", r.Players[1].Name)
	assert.Equal(t, insights.AggSum, r.Agg)

	_, err = svc.Waiver(context.Background(), WaiverOptions{Sort: "height"})
	assert.ErrorIs(t, err, ErrInvalidSort)
	_, err = svc.Waiver(context.Background(), WaiverOptions{Agg: "median"})
	assert.ErrorIs(t, err, insights.ErrInvalidAggregation)
	_, err = svc.Waiver(context.Background(), WaiverOptions{Mode: "yesterday"})
	assert.ErrorIs(t, err, projection.ErrInvalidWindow)
}

func TestWaiver_NoData(t *testing.T) {
	svc, _ := newTestService(t, nil)

	_, err := svc.Waiver(context.Background(), WaiverOptions{})
	assert.ErrorIs(t, err, projection.ErrNoStatsData)
}

func TestWaiverOrder_AscendingCategory(t *testing.T) {
	less, err := waiverOrder("to", []models.StatCategory{{ID: "11", DisplayName: "TO", Ascending: true}})
	require.NoError(t, err)

	careful := WaiverPlayer{Stats: insights.PlayerStats{Games: 1, Line: models.StatLine{TOV: 1}}}
	sloppy := WaiverPlayer{Stats: insights.PlayerStats{Games: 1, Line: models.StatLine{TOV: 4}}}
	assert.True(t, less(careful, sloppy))
	assert.False(t, less(sloppy, careful))

	less, err = waiverOrder("", nil)
	require.NoError(t, err)
	assert.Nil(t, less)
}

func TestPlayer(t *testing.T) {
	svc, _ := newTestService(t, testSnapshot())

	r, err := svc.Player(context.Background(), PlayerOptions{Name: "luka doncic", Mode: "last1", AsOf: "2025-01-09"})
	require.NoError(t, err)

	assert.Equal(t, 15, r.StatsID)
	assert.Equal(t, "Luka Dončić", r.Name)
	assert.Equal(t, "last1", r.Window)
	assert.Equal(t, 1, r.Stats.Games)
	assert.Equal(t, 40.0, r.Stats.Line.PTS)
	assert.Equal(t, 2, r.Season.Games)
	assert.Equal(t, 35.0, r.Season.Line.PTS)
	require.NotNil(t, r.Minutes)
	assert.Zero(t, r.Minutes.Trend)
	require.Len(t, r.RecentGames, 2)
	assert.Equal(t, models.Date("2025-01-06"), r.RecentGames[0].Date)

	require.NotNil(t, r.Week)
	assert.Equal(t, 4, r.WeekGames)
	assert.Equal(t, 2, r.RemainingGames)

	text := FormatPlayer(r)
	assert.Contains(t, text, "Luka Dončić")
	assert.Contains(t, text, "Week 1: 4 games, 2 left")
}

func TestPlayer_NotFound(t *testing.T) {
	svc, _ := newTestService(t, testSnapshot())

	_, err := svc.Player(context.Background(), PlayerOptions{Name: "Qwxz Plmn"})
	assert.ErrorIs(t, err, ErrPlayerNotFound)
	_, err = svc.Player(context.Background(), PlayerOptions{Name: "  "})
	assert.ErrorIs(t, err, ErrPlayerNotFound)
}

func TestBoxScores(t *testing.T) {
	svc, _ := newTestService(t, testSnapshot())

	lines, err := svc.BoxScores(context.Background(), "2025-01-03")
	require.NoError(t, err)
	require.Len(t, lines, 3)
	assert.Equal(t, "Nikola Jokić", lines[0].Name)

	text := FormatBoxScores("2025-01-03", lines)
	assert.Contains(t, text, "Game 3")
	assert.Contains(t, text, "Alpha Scorer")

	empty, _ := newTestService(t, nil)
	_, err = empty.BoxScores(context.Background(), "2025-01-03")
	assert.ErrorIs(t, err, projection.ErrNoStatsData)
}

func TestFormatWaiver(t *testing.T) {
	svc, api := newTestService(t, testSnapshot())
	api.agents = freeAgents()
	r, err := svc.Waiver(context.Background(), WaiverOptions{AsOf: "2025-01-09"})
	require.NoError(t, err)

	text := FormatWaiver(r)

	assert.Contains(t, text, "Waiver Wire")
	assert.Contains(t, text, "Alpha Scorer (D")
	assert.Contains(t, text, "Beta Shooter W")
	assert.Contains(t, text, "PTS")
	assert.Contains(t, FormatWaiver(&WaiverReport{}), "No free agents")
}
