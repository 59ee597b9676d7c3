package bdl

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yonasstephen/shams-sub000/internal/models"
)

func TestGetStats_Paginates(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		assert.Equal(t, "/stats", r.URL.Path)
		assert.Equal(t, "secret", r.Header.Get("Authorization"))
		assert.Equal(t, "2024", r.URL.Query().Get("seasons[]"))
		assert.Equal(t, "2025-01-01", r.URL.Query().Get("start_date"))
		if r.URL.Query().Get("cursor") == "" {
			w.Write([]byte(`{"data": [{"min": "35:30", "fgm": 10, "fga": 20, "ftm": 5, "fta": 6, "fg3m": 3, "pts": 28, "reb": 7, "ast": 9, "stl": 2, "blk": 1, "turnover": 4,
				"player": {"id": 15, "first_name": "Luka", "last_name": "Doncic", "team_id": 7},
				"team": {"id": 7},
				"game": {"id": 100, "date": "2025-01-02", "status": "Final", "season": 2024, "home_team_id": 7, "visitor_team_id": 9}}],
				"meta": {"next_cursor": 42}}`))
			return
		}
		assert.Equal(t, "42", r.URL.Query().Get("cursor"))
		w.Write([]byte(`{"data": [{"min": "", "pts": null,
			"player": {"id": 16, "first_name": "Kyrie", "last_name": "Irving", "team_id": 7},
			"game": {"id": 101, "date": "2025-01-04T00:00:00.000Z", "status": "3rd Qtr", "season": 2024}}],
			"meta": {}}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "secret", 6000, nil)
	var rows []StatRow
	err := c.GetStats(context.Background(), 2024, "2025-01-01", func(r StatRow) error {
		rows = append(rows, r)
		return nil
	})
	require.NoError(t, err)

	assert.Equal(t, 2, calls)
	require.Len(t, rows, 2)
	assert.Equal(t, "Luka Doncic", rows[0].PlayerName)
	assert.True(t, rows[0].Final)
	assert.InDelta(t, 35.5, rows[0].Line.MIN, 1e-9)
	assert.Equal(t, 4.0, rows[0].Line.TOV)
	assert.Equal(t, models.Date("2025-01-04"), rows[1].Date)
	assert.False(t, rows[1].Final)
	assert.Equal(t, 7, rows[1].TeamID)
	assert.Zero(t, rows[1].Line.PTS)
}

func TestGetGames(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data": [
			{"id": 1, "date": "2025-01-02", "status": "Final", "home_team": {"id": 7}, "visitor_team": {"id": 9}},
			{"id": 2, "date": "not-a-date", "status": "Final"},
			{"id": 3, "date": "2025-01-05", "status": "7:30 pm ET", "home_team_id": 9, "visitor_team_id": 7}
		], "meta": {}}`))
	}))
	defer srv.Close()

	var games []Game
	err := NewClient(srv.URL, "", 6000, nil).GetGames(context.Background(), 2024, func(g Game) error {
		games = append(games, g)
		return nil
	})
	require.NoError(t, err)

	require.Len(t, games, 2)
	assert.Equal(t, Game{ID: 1, Date: "2025-01-02", Final: true, HomeTeamID: 7, VisitorTeamID: 9}, games[0])
	assert.False(t, games[1].Final)
}

func TestGet_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte("slow down"))
	}))
	defer srv.Close()

	err := NewClient(srv.URL, "", 6000, nil).GetGames(context.Background(), 2024, func(Game) error { return nil })
	assert.ErrorContains(t, err, "429")
}

func TestParseMinutes(t *testing.T) {
	assert.Equal(t, 34.0, parseMinutes("34"))
	assert.InDelta(t, 34.2, parseMinutes("34:12"), 1e-9)
	assert.Zero(t, parseMinutes(""))
	assert.Zero(t, parseMinutes("DNP"))
}
