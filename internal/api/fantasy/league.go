package fantasy

import (
	"context"
	"fmt"

	"github.com/yonasstephen/shams-sub000/internal/api/espn"
	"github.com/yonasstephen/shams-sub000/internal/models"
)

type API struct {
	espnAPI *espn.API
}

func NewAPI(espnAPI *espn.API) *API {
	return &API{espnAPI: espnAPI}
}

func (a *API) GetLeagueMetadata(ctx context.Context) (*models.LeagueMetadata, error) {
	return a.espnAPI.GetLeagueMetadata(ctx)
}

// GetRosters returns every team's roster as it stood on the given date.
func (a *API) GetRosters(ctx context.Context, date models.Date) (map[int][]models.RosterPlayer, error) {
	period := a.espnAPI.Calendar().ScoringPeriod(date)
	if period < 1 {
		return nil, fmt.Errorf("date %s is before the season start", date)
	}
	return a.espnAPI.GetRosters(ctx, period)
}

// GetFreeAgents returns the players teams can add on the given date.
func (a *API) GetFreeAgents(ctx context.Context, date models.Date, limit int) ([]models.FreeAgent, error) {
	period := a.espnAPI.Calendar().ScoringPeriod(date)
	if period < 1 {
		return nil, fmt.Errorf("date %s is before the season start", date)
	}
	return a.espnAPI.GetFreeAgents(ctx, period, limit)
}

func (a *API) GetMatchups(ctx context.Context, matchupPeriod int) ([]models.Matchup, error) {
	return a.espnAPI.GetMatchups(ctx, matchupPeriod)
}

func (a *API) Week(period int, metadata *models.LeagueMetadata) models.Week {
	return a.espnAPI.Calendar().Week(period, metadata.MatchupPeriods)
}

func (a *API) PeriodFor(date models.Date, metadata *models.LeagueMetadata) int {
	return a.espnAPI.Calendar().PeriodFor(date, metadata.MatchupPeriods)
}
