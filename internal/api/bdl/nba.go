package bdl

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/yonasstephen/shams-sub000/internal/models"
)

type Game struct {
	ID            int
	Date          models.Date
	Season        int
	Final         bool
	HomeTeamID    int
	VisitorTeamID int
}

// StatRow is one player's box score in one game.
type StatRow struct {
	GameID     int
	Date       models.Date
	Final      bool
	PlayerID   int
	PlayerName string
	TeamID     int
	Line       models.StatLine
}

type bdlTeamRef struct {
	ID int `json:"id"`
}

type bdlGameRaw struct {
	ID            int        `json:"id"`
	Date          string     `json:"date"`
	Season        int        `json:"season"`
	Status        string     `json:"status"`
	HomeTeamID    int        `json:"home_team_id"`
	VisitorTeamID int        `json:"visitor_team_id"`
	HomeTeam      bdlTeamRef `json:"home_team"`
	VisitorTeam   bdlTeamRef `json:"visitor_team"`
}

type bdlStatRaw struct {
	Min      string   `json:"min"`
	FGM      *float64 `json:"fgm"`
	FGA      *float64 `json:"fga"`
	FG3M     *float64 `json:"fg3m"`
	FG3A     *float64 `json:"fg3a"`
	FTM      *float64 `json:"ftm"`
	FTA      *float64 `json:"fta"`
	REB      *float64 `json:"reb"`
	AST      *float64 `json:"ast"`
	STL      *float64 `json:"stl"`
	BLK      *float64 `json:"blk"`
	Turnover *float64 `json:"turnover"`
	PTS      *float64 `json:"pts"`
	Player   struct {
		ID        int    `json:"id"`
		FirstName string `json:"first_name"`
		LastName  string `json:"last_name"`
		TeamID    int    `json:"team_id"`
	} `json:"player"`
	Team bdlTeamRef `json:"team"`
	Game bdlGameRaw `json:"game"`
}

// GetGames iterates every game of a season, calling fn for each.
func (c *Client) GetGames(ctx context.Context, season int, fn func(Game) error) error {
	params := url.Values{"seasons[]": {strconv.Itoa(season)}}
	err := c.paginate(ctx, "/games", params, func(data json.RawMessage) error {
		var raw []bdlGameRaw
		if err := json.Unmarshal(data, &raw); err != nil {
			return fmt.Errorf("decode games: %w", err)
		}
		for _, g := range raw {
			game, ok := normalizeGame(g)
			if !ok {
				c.logger.Warn("Skipping game with bad date", "game_id", g.ID, "date", g.Date)
				continue
			}
			if err := fn(game); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("fetch games: %w", err)
	}
	return nil
}

// GetStats iterates every box-score row of a season on or after since,
// calling fn for each. A zero since fetches the whole season.
func (c *Client) GetStats(ctx context.Context, season int, since models.Date, fn func(StatRow) error) error {
	params := url.Values{"seasons[]": {strconv.Itoa(season)}}
	if !since.IsZero() {
		params.Set("start_date", since.String())
	}
	err := c.paginate(ctx, "/stats", params, func(data json.RawMessage) error {
		var raw []bdlStatRaw
		if err := json.Unmarshal(data, &raw); err != nil {
			return fmt.Errorf("decode stats: %w", err)
		}
		for _, s := range raw {
			row, ok := normalizeStat(s)
			if !ok {
				continue
			}
			if err := fn(row); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("fetch stats: %w", err)
	}
	return nil
}

func normalizeGame(raw bdlGameRaw) (Game, bool) {
	d, err := parseBDLDate(raw.Date)
	if err != nil {
		return Game{}, false
	}
	home, visitor := raw.HomeTeamID, raw.VisitorTeamID
	if home == 0 {
		home = raw.HomeTeam.ID
	}
	if visitor == 0 {
		visitor = raw.VisitorTeam.ID
	}
	return Game{
		ID:            raw.ID,
		Date:          d,
		Season:        raw.Season,
		Final:         strings.EqualFold(raw.Status, "Final"),
		HomeTeamID:    home,
		VisitorTeamID: visitor,
	}, true
}

func normalizeStat(raw bdlStatRaw) (StatRow, bool) {
	game, ok := normalizeGame(raw.Game)
	if !ok || raw.Player.ID == 0 {
		return StatRow{}, false
	}
	teamID := raw.Team.ID
	if teamID == 0 {
		teamID = raw.Player.TeamID
	}
	return StatRow{
		GameID:     game.ID,
		Date:       game.Date,
		Final:      game.Final,
		PlayerID:   raw.Player.ID,
		PlayerName: strings.TrimSpace(raw.Player.FirstName + " " + raw.Player.LastName),
		TeamID:     teamID,
		Line: models.StatLine{
			FGM:  val(raw.FGM),
			FGA:  val(raw.FGA),
			FTM:  val(raw.FTM),
			FTA:  val(raw.FTA),
			FG3M: val(raw.FG3M),
			FG3A: val(raw.FG3A),
			PTS:  val(raw.PTS),
			REB:  val(raw.REB),
			AST:  val(raw.AST),
			STL:  val(raw.STL),
			BLK:  val(raw.BLK),
			TOV:  val(raw.Turnover),
			MIN:  parseMinutes(raw.Min),
		},
	}, true
}

func val(p *float64) float64 {
	if p == nil {
		return 0
	}
	return *p
}

// parseBDLDate accepts both "2024-10-22" and full ISO timestamps.
func parseBDLDate(s string) (models.Date, error) {
	if len(s) >= len(models.DateLayout) {
		s = s[:len(models.DateLayout)]
	}
	return models.ParseDate(s)
}

// parseMinutes reads "34", "34:12" or "" as minutes played.
func parseMinutes(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	mins, secs, _ := strings.Cut(s, ":")
	m, err := strconv.ParseFloat(mins, 64)
	if err != nil {
		return 0
	}
	if sec, err := strconv.ParseFloat(secs, 64); err == nil {
		m += sec / 60
	}
	return m
}
