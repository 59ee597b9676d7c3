package espn

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/yonasstephen/shams-sub000/internal/models"
)

type API struct {
	client   *Client
	calendar Calendar
}

func NewAPI(client *Client, seasonStart models.Date) *API {
	return &API{client: client, calendar: Calendar{SeasonStart: seasonStart}}
}

func (a *API) Calendar() Calendar {
	return a.calendar
}

func (a *API) GetLeagueMetadata(ctx context.Context) (*models.LeagueMetadata, error) {
	var espnResponse models.LeagueResponse
	if err := a.client.League(ctx, Query{Views: []string{"mSettings", "mTeam"}}, &espnResponse); err != nil {
		return nil, fmt.Errorf("fetching league metadata: %w", err)
	}

	periods := make(map[int][]int, len(espnResponse.Settings.ScheduleSettings.MatchupPeriods))
	for key, weeks := range espnResponse.Settings.ScheduleSettings.MatchupPeriods {
		p, err := strconv.Atoi(key)
		if err != nil {
			slog.Warn("Skipping malformed matchup period", "key", key)
			continue
		}
		periods[p] = weeks
	}

	teams := make([]models.LeagueTeam, 0, len(espnResponse.Teams))
	for _, t := range espnResponse.Teams {
		teams = append(teams, models.LeagueTeam{ID: t.ID, Name: teamName(t), Abbreviation: t.Abbreviation})
	}

	metadata := &models.LeagueMetadata{
		LeagueID:             espnResponse.ID,
		Name:                 espnResponse.Settings.Name,
		SeasonID:             espnResponse.SeasonID,
		CurrentMatchupPeriod: espnResponse.Status.CurrentMatchupPeriod,
		CurrentScoringPeriod: espnResponse.ScoringPeriodID,
		FirstScoringPeriod:   espnResponse.Status.FirstScoringPeriod,
		FinalScoringPeriod:   espnResponse.Status.FinalScoringPeriod,
		IsActive:             espnResponse.Status.IsActive,
		Categories:           toCategories(espnResponse.Settings.ScoringSettings.ScoringItems),
		Inventory:            toInventory(espnResponse.Settings.RosterSettings.LineupSlotCounts),
		MatchupPeriods:       periods,
		Teams:                teams,
		LastUpdated:          time.Now(),
	}

	return metadata, nil
}

// GetRosters returns every team's roster for one scoring period, keyed by
// team id.
func (a *API) GetRosters(ctx context.Context, scoringPeriod int) (map[int][]models.RosterPlayer, error) {
	var leagueResponse models.LeagueResponse
	q := Query{Views: []string{"mRoster"}, ScoringPeriod: scoringPeriod}
	if err := a.client.League(ctx, q, &leagueResponse); err != nil {
		return nil, fmt.Errorf("fetching league rosters: %w", err)
	}

	rosters := make(map[int][]models.RosterPlayer, len(leagueResponse.Teams))
	for _, team := range leagueResponse.Teams {
		players := make([]models.RosterPlayer, 0, len(team.Roster.Entries))
		for _, entry := range team.Roster.Entries {
			p, ok := toRosterPlayer(entry)
			if !ok {
				slog.Warn("Skipping malformed roster entry", "team_id", team.ID, "player_id", entry.PlayerID)
				continue
			}
			players = append(players, p)
		}
		rosters[team.ID] = players
	}
	return rosters, nil
}

func (a *API) GetMatchups(ctx context.Context, matchupPeriod int) ([]models.Matchup, error) {
	var scheduleResponse models.LeagueResponse
	q := Query{
		Views: []string{"mMatchup"},
		Filter: map[string]any{
			"schedule": map[string]any{
				"filterMatchupPeriodIds": map[string]any{"value": []int{matchupPeriod}},
			},
		},
	}
	if err := a.client.League(ctx, q, &scheduleResponse); err != nil {
		return nil, fmt.Errorf("fetching matchups: %w", err)
	}

	var matchups []models.Matchup
	for _, match := range scheduleResponse.Schedule {
		if match.MatchupPeriodID != matchupPeriod || match.Home.TeamID == 0 || match.Away.TeamID == 0 {
			continue
		}
		matchups = append(matchups, models.Matchup{
			ID:            match.ID,
			MatchupPeriod: match.MatchupPeriodID,
			HomeTeamID:    match.Home.TeamID,
			AwayTeamID:    match.Away.TeamID,
		})
	}
	return matchups, nil
}

// GetFreeAgents returns up to limit unrostered players available in the
// scoring period, most owned across ESPN first.
func (a *API) GetFreeAgents(ctx context.Context, scoringPeriod, limit int) ([]models.FreeAgent, error) {
	q := Query{
		Views:         []string{"kona_player_info"},
		ScoringPeriod: scoringPeriod,
		Filter: map[string]any{
			"players": map[string]any{
				"filterStatus":  map[string]any{"value": []string{"FREEAGENT", "WAIVERS"}},
				"limit":         limit,
				"sortPercOwned": map[string]any{"sortPriority": 1, "sortAsc": false},
			},
		},
	}
	var pool models.PlayerPoolResponse
	if err := a.client.League(ctx, q, &pool); err != nil {
		return nil, fmt.Errorf("fetching free agents: %w", err)
	}

	agents := make([]models.FreeAgent, 0, len(pool.Players))
	for _, entry := range pool.Players {
		if entry.OnTeamID != 0 {
			continue
		}
		fa, ok := toFreeAgent(entry)
		if !ok {
			slog.Warn("Skipping malformed player pool entry", "player_id", entry.ID)
			continue
		}
		agents = append(agents, fa)
	}
	return agents, nil
}
