package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/yonasstephen/shams-sub000/internal/insights"
	"github.com/yonasstephen/shams-sub000/internal/models"
	"github.com/yonasstephen/shams-sub000/internal/projection"
	"github.com/yonasstephen/shams-sub000/internal/repository/memory"
	"github.com/yonasstephen/shams-sub000/internal/server/respond"
	"github.com/yonasstephen/shams-sub000/internal/service"
)

type Projector interface {
	ProjectMatchup(ctx context.Context, opts service.MatchupOptions) (*projection.MatchupProjection, error)
	ProjectLeague(ctx context.Context, opts service.MatchupOptions) ([]*projection.MatchupProjection, error)
}

// Scout answers free-agent, player and box-score lookups.
type Scout interface {
	Waiver(ctx context.Context, opts service.WaiverOptions) (*service.WaiverReport, error)
	Player(ctx context.Context, opts service.PlayerOptions) (*service.PlayerReport, error)
	BoxScores(ctx context.Context, date models.Date) ([]memory.BoxScoreLine, error)
}

type SnapshotReader interface {
	Snapshot() *models.StatsSnapshot
}

type Handler struct {
	projector Projector
	scout     Scout
	snapshots SnapshotReader
}

func NewHandler(projector Projector, scout Scout, snapshots SnapshotReader) *Handler {
	return &Handler{projector: projector, scout: scout, snapshots: snapshots}
}

// HealthCheck reports liveness and the state of the stats cache.
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	stats := map[string]interface{}{"loaded": false}
	if snap := h.snapshots.Snapshot(); !snap.Empty() {
		stats = map[string]interface{}{
			"loaded":     true,
			"season":     snap.Season,
			"players":    len(snap.Players),
			"games":      snap.GameCount(),
			"updated_at": snap.UpdatedAt.UTC().Format(time.RFC3339),
		}
	}
	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"stats":     stats,
	})
}

// GetMatchup projects one team's matchup.
// Query: team, mode, optimize, period, as_of.
func (h *Handler) GetMatchup(w http.ResponseWriter, r *http.Request) {
	opts, err := parseOptions(r)
	if err != nil {
		respond.WriteErrorDetail(w, http.StatusBadRequest, "INVALID_PARAMETER", "Invalid query parameter", err.Error())
		return
	}
	p, err := h.projector.ProjectMatchup(r.Context(), opts)
	if err != nil {
		writeProjectionError(w, err)
		return
	}
	respond.WriteJSONObject(w, http.StatusOK, p)
}

func (h *Handler) GetLeagueMatchups(w http.ResponseWriter, r *http.Request) {
	opts, err := parseOptions(r)
	if err != nil {
		respond.WriteErrorDetail(w, http.StatusBadRequest, "INVALID_PARAMETER", "Invalid query parameter", err.Error())
		return
	}
	opts.Team = ""
	ps, err := h.projector.ProjectLeague(r.Context(), opts)
	if err != nil {
		writeProjectionError(w, err)
		return
	}
	if ps == nil {
		ps = []*projection.MatchupProjection{}
	}
	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{
		"matchups": ps,
		"count":    len(ps),
	})
}

// GetWaiver ranks free agents.
// Query: mode, agg, count, sort, as_of.
func (h *Handler) GetWaiver(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	opts := service.WaiverOptions{Mode: q.Get("mode"), Agg: q.Get("agg"), Sort: q.Get("sort")}
	if v := q.Get("count"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			respond.WriteErrorDetail(w, http.StatusBadRequest, "INVALID_PARAMETER", "Invalid query parameter", "count must be a positive integer")
			return
		}
		opts.Count = n
	}
	asOf, err := parseDateParam(q.Get("as_of"), "as_of")
	if err != nil {
		respond.WriteErrorDetail(w, http.StatusBadRequest, "INVALID_PARAMETER", "Invalid query parameter", err.Error())
		return
	}
	opts.AsOf = asOf

	report, err := h.scout.Waiver(r.Context(), opts)
	if err != nil {
		writeProjectionError(w, err)
		return
	}
	respond.WriteJSONObject(w, http.StatusOK, report)
}

// GetPlayer looks a player up by name.
// Query: mode, agg, as_of.
func (h *Handler) GetPlayer(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	asOf, err := parseDateParam(q.Get("as_of"), "as_of")
	if err != nil {
		respond.WriteErrorDetail(w, http.StatusBadRequest, "INVALID_PARAMETER", "Invalid query parameter", err.Error())
		return
	}
	report, err := h.scout.Player(r.Context(), service.PlayerOptions{
		Name: chi.URLParam(r, "name"),
		Mode: q.Get("mode"),
		Agg:  q.Get("agg"),
		AsOf: asOf,
	})
	if err != nil {
		writeProjectionError(w, err)
		return
	}
	respond.WriteJSONObject(w, http.StatusOK, report)
}

// GetBoxScores lists every cached player line for a day.
// Query: date, defaulting to yesterday.
func (h *Handler) GetBoxScores(w http.ResponseWriter, r *http.Request) {
	date, err := parseDateParam(r.URL.Query().Get("date"), "date")
	if err != nil {
		respond.WriteErrorDetail(w, http.StatusBadRequest, "INVALID_PARAMETER", "Invalid query parameter", err.Error())
		return
	}
	lines, err := h.scout.BoxScores(r.Context(), date)
	if err != nil {
		writeProjectionError(w, err)
		return
	}
	if lines == nil {
		lines = []memory.BoxScoreLine{}
	}
	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{
		"date":  date,
		"lines": lines,
		"count": len(lines),
	})
}

func parseDateParam(v, name string) (models.Date, error) {
	if v == "" {
		return "", nil
	}
	d, err := models.ParseDate(v)
	if err != nil {
		return "", fmt.Errorf("%s must be YYYY-MM-DD", name)
	}
	return d, nil
}

func parseOptions(r *http.Request) (service.MatchupOptions, error) {
	q := r.URL.Query()
	opts := service.MatchupOptions{
		Team: q.Get("team"),
		Mode: q.Get("mode"),
	}
	if v := q.Get("optimize"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return opts, errors.New("optimize must be true or false")
		}
		opts.Optimize = &b
	}
	if v := q.Get("period"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return opts, errors.New("period must be a positive integer")
		}
		opts.Period = n
	}
	asOf, err := parseDateParam(q.Get("as_of"), "as_of")
	if err != nil {
		return opts, err
	}
	opts.AsOf = asOf
	if opts.Mode != "" {
		if _, err := projection.ParseWindow(opts.Mode); err != nil {
			return opts, err
		}
	}
	return opts, nil
}

func writeProjectionError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, projection.ErrNoStatsData):
		respond.WriteError(w, http.StatusServiceUnavailable, "NO_STATS_DATA", "Stats have not been loaded yet")
	case errors.Is(err, projection.ErrInvalidWindow):
		respond.WriteErrorDetail(w, http.StatusBadRequest, "INVALID_PARAMETER", "Invalid mode", err.Error())
	case errors.Is(err, insights.ErrInvalidAggregation), errors.Is(err, service.ErrInvalidSort):
		respond.WriteErrorDetail(w, http.StatusBadRequest, "INVALID_PARAMETER", "Invalid query parameter", err.Error())
	case errors.Is(err, service.ErrPlayerNotFound):
		respond.WriteErrorDetail(w, http.StatusNotFound, "PLAYER_NOT_FOUND", "Player not found", err.Error())
	case errors.Is(err, service.ErrTeamNotFound):
		respond.WriteErrorDetail(w, http.StatusNotFound, "TEAM_NOT_FOUND", "Team not found", err.Error())
	case errors.Is(err, service.ErrNoMatchup):
		respond.WriteErrorDetail(w, http.StatusNotFound, "NO_MATCHUP", "Team has no matchup this week", err.Error())
	default:
		slog.Error("Projection failed", "error", err)
		respond.WriteErrorDetail(w, http.StatusBadGateway, "UPSTREAM_ERROR", "Could not build projection", err.Error())
	}
}
