package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yonasstephen/shams-sub000/internal/models"
	"github.com/yonasstephen/shams-sub000/internal/insights"
	"github.com/yonasstephen/shams-sub000/internal/projection"
	"github.com/yonasstephen/shams-sub000/internal/repository/memory"
	"github.com/yonasstephen/shams-sub000/internal/server/respond"
	"github.com/yonasstephen/shams-sub000/internal/service"
)

type fakeProjector struct {
	last       service.MatchupOptions
	lastWaiver service.WaiverOptions
	lastPlayer service.PlayerOptions
	lastDate   models.Date
	err        error
}

func (f *fakeProjector) ProjectMatchup(_ context.Context, opts service.MatchupOptions) (*projection.MatchupProjection, error) {
	f.last = opts
	if f.err != nil {
		return nil, f.err
	}
	return &projection.MatchupProjection{
		WeekStart: "2025-01-06",
		WeekEnd:   "2025-01-12",
		TeamA:     projection.TeamProjection{Name: "Mavs Fans", Outcome: projection.Outcome{Win: 5, Loss: 4, Total: 5}},
		TeamB:     projection.TeamProjection{Name: "Joker Club"},
	}, nil
}

func (f *fakeProjector) ProjectLeague(_ context.Context, opts service.MatchupOptions) ([]*projection.MatchupProjection, error) {
	f.last = opts
	if f.err != nil {
		return nil, f.err
	}
	p, _ := f.ProjectMatchup(context.Background(), opts)
	return []*projection.MatchupProjection{p, p}, nil
}

func (f *fakeProjector) Waiver(_ context.Context, opts service.WaiverOptions) (*service.WaiverReport, error) {
	f.lastWaiver = opts
	if f.err != nil {
		return nil, f.err
	}
	return &service.WaiverReport{Window: "season", Players: []service.WaiverPlayer{{Rank: 1, Name: "Alpha Scorer"}}}, nil
}

func (f *fakeProjector) Player(_ context.Context, opts service.PlayerOptions) (*service.PlayerReport, error) {
	f.lastPlayer = opts
	if f.err != nil {
		return nil, f.err
	}
	return &service.PlayerReport{StatsID: 246, Name: "Nikola Jokić"}, nil
}

func (f *fakeProjector) BoxScores(_ context.Context, date models.Date) ([]memory.BoxScoreLine, error) {
	f.lastDate = date
	if f.err != nil {
		return nil, f.err
	}
	return nil, nil
}

type fakeSnapshots struct {
	snap *models.StatsSnapshot
}

func (f fakeSnapshots) Snapshot() *models.StatsSnapshot { return f.snap }

func newTestRouter(p *fakeProjector, snap *models.StatsSnapshot, cfg Config) http.Handler {
	if cfg.CORSAllowOrigins == nil {
		cfg.CORSAllowOrigins = []string{"*"}
	}
	return NewRouter(NewHandler(p, p, fakeSnapshots{snap: snap}), cfg)
}

func get(t *testing.T, h http.Handler, url string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, url, nil))
	return rec
}

func TestHealthCheck(t *testing.T) {
	snap := &models.StatsSnapshot{
		Season:    2024,
		UpdatedAt: time.Date(2025, 1, 8, 6, 0, 0, 0, time.UTC),
		Players:   map[int]models.PlayerRecord{15: {ID: 15, Games: []models.GameRecord{{Date: "2025-01-06"}}}},
	}
	rec := get(t, newTestRouter(&fakeProjector{}, snap, Config{}), "/health")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Process-Time"))

	var body struct {
		Status string `json:"status"`
		Stats  struct {
			Loaded    bool   `json:"loaded"`
			Players   int    `json:"players"`
			Games     int    `json:"games"`
			UpdatedAt string `json:"updated_at"`
		} `json:"stats"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body.Status)
	assert.True(t, body.Stats.Loaded)
	assert.Equal(t, 1, body.Stats.Players)
	assert.Equal(t, 1, body.Stats.Games)
	assert.Equal(t, "2025-01-08T06:00:00Z", body.Stats.UpdatedAt)
}

func TestHealthCheck_NoStats(t *testing.T) {
	rec := get(t, newTestRouter(&fakeProjector{}, nil, Config{}), "/health")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"loaded":false`)
}

func TestGetMatchup(t *testing.T) {
	p := &fakeProjector{}
	rec := get(t, newTestRouter(p, nil, Config{}), "/api/v1/matchup?team=mavs&mode=last7d&optimize=true&period=12&as_of=2025-01-08")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "mavs", p.last.Team)
	assert.Equal(t, "last7d", p.last.Mode)
	require.NotNil(t, p.last.Optimize)
	assert.True(t, *p.last.Optimize)
	assert.Equal(t, 12, p.last.Period)
	assert.Equal(t, models.Date("2025-01-08"), p.last.AsOf)

	var got projection.MatchupProjection
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "Mavs Fans", got.TeamA.Name)
	assert.Equal(t, 5.0, got.TeamA.Outcome.Win)
}

func TestGetMatchup_BadParameters(t *testing.T) {
	h := newTestRouter(&fakeProjector{}, nil, Config{})

	for _, url := range []string{
		"/api/v1/matchup?optimize=maybe",
		"/api/v1/matchup?period=0",
		"/api/v1/matchup?as_of=yesterday",
		"/api/v1/matchup?mode=forever",
	} {
		rec := get(t, h, url)
		assert.Equal(t, http.StatusBadRequest, rec.Code, url)

		var body respond.ErrorResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "INVALID_PARAMETER", body.Error.Code, url)
	}
}

func TestGetMatchup_ErrorStatus(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   string
	}{
		{projection.ErrNoStatsData, http.StatusServiceUnavailable, "NO_STATS_DATA"},
		{fmt.Errorf("%w: \"nobody\"", service.ErrTeamNotFound), http.StatusNotFound, "TEAM_NOT_FOUND"},
		{service.ErrNoMatchup, http.StatusNotFound, "NO_MATCHUP"},
		{fmt.Errorf("error fetching matchups: timeout"), http.StatusBadGateway, "UPSTREAM_ERROR"},
	}
	for _, tc := range cases {
		rec := get(t, newTestRouter(&fakeProjector{err: tc.err}, nil, Config{}), "/api/v1/matchup")
		assert.Equal(t, tc.status, rec.Code)

		var body respond.ErrorResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, tc.code, body.Error.Code)
	}
}

func TestGetLeagueMatchups(t *testing.T) {
	p := &fakeProjector{}
	rec := get(t, newTestRouter(p, nil, Config{}), "/api/v1/league/matchups?team=ignored&mode=season")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, p.last.Team)

	var body struct {
		Count    int                            `json:"count"`
		Matchups []projection.MatchupProjection `json:"matchups"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 2, body.Count)
	assert.Len(t, body.Matchups, 2)
}

func TestRateLimit(t *testing.T) {
	h := newTestRouter(&fakeProjector{}, nil, Config{RateLimitRequests: 2, RateLimitWindow: time.Hour})

	assert.Equal(t, http.StatusOK, get(t, h, "/health").Code)
	rec := get(t, h, "/health")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "3600", rec.Header().Get("Retry-After"))
}

func TestIPLimiter_EvictsIdleClients(t *testing.T) {
	l := newIPLimiter(2, time.Minute)
	now := time.Date(2025, 1, 8, 12, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }

	first := l.getLimiter("10.0.0.1")
	assert.Same(t, first, l.getLimiter("10.0.0.1"))
	now = now.Add(5 * time.Minute)
	l.getLimiter("10.0.0.2")

	now = now.Add(6 * time.Minute)
	l.getLimiter("10.0.0.3")

	assert.Len(t, l.clients, 2)
	assert.NotContains(t, l.clients, "10.0.0.1")
	assert.Contains(t, l.clients, "10.0.0.2")
}

func TestCORS(t *testing.T) {
	h := newTestRouter(&fakeProjector{}, nil, Config{CORSAllowOrigins: []string{"https://example.com"}})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "https://example.com")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, "https://example.com", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestGetWaiver(t *testing.T) {
	p := &fakeProjector{}
	rec := get(t, newTestRouter(p, nil, Config{}), "/api/v1/waiver?mode=last7d&agg=sum&count=10&sort=3PM&as_of=2025-01-08")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, service.WaiverOptions{Mode: "last7d", Agg: "sum", Count: 10, Sort: "3PM", AsOf: "2025-01-08"}, p.lastWaiver)

	var got service.WaiverReport
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Len(t, got.Players, 1)
	assert.Equal(t, "Alpha Scorer", got.Players[0].Name)
}

func TestGetPlayer(t *testing.T) {
	p := &fakeProjector{}
	rec := get(t, newTestRouter(p, nil, Config{}), "/api/v1/players/nikola%20jokic?mode=last5")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "nikola jokic", p.lastPlayer.Name)
	assert.Equal(t, "last5", p.lastPlayer.Mode)
	assert.Contains(t, rec.Body.String(), `"stats_id":246`)
}

func TestGetBoxScores(t *testing.T) {
	p := &fakeProjector{}
	rec := get(t, newTestRouter(p, nil, Config{}), "/api/v1/boxscores?date=2025-01-07")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, models.Date("2025-01-07"), p.lastDate)
	assert.Contains(t, rec.Body.String(), `"lines":[]`)
}

func TestScoutRoutes_Errors(t *testing.T) {
	cases := []struct {
		url    string
		err    error
		status int
		code   string
	}{
		{"/api/v1/waiver?count=0", nil, http.StatusBadRequest, "INVALID_PARAMETER"},
		{"/api/v1/waiver?as_of=2025-13-01", nil, http.StatusBadRequest, "INVALID_PARAMETER"},
		{"/api/v1/boxscores?date=Jan7", nil, http.StatusBadRequest, "INVALID_PARAMETER"},
		{"/api/v1/waiver", fmt.Errorf("%w: \"median\"", insights.ErrInvalidAggregation), http.StatusBadRequest, "INVALID_PARAMETER"},
		{"/api/v1/waiver", service.ErrInvalidSort, http.StatusBadRequest, "INVALID_PARAMETER"},
		{"/api/v1/players/nobody", fmt.Errorf("%w: \"nobody\"", service.ErrPlayerNotFound), http.StatusNotFound, "PLAYER_NOT_FOUND"},
		{"/api/v1/boxscores", projection.ErrNoStatsData, http.StatusServiceUnavailable, "NO_STATS_DATA"},
	}
	for _, tc := range cases {
		rec := get(t, newTestRouter(&fakeProjector{err: tc.err}, nil, Config{}), tc.url)
		assert.Equal(t, tc.status, rec.Code, tc.url)

		var body respond.ErrorResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, tc.code, body.Error.Code, tc.url)
	}
}
