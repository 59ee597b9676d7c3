package models

type LeagueResponse struct {
	ID              int            `json:"id"`
	ScoringPeriodID int            `json:"scoringPeriodId"`
	SeasonID        int            `json:"seasonId"`
	SegmentID       int            `json:"segmentId"`
	Status          Status         `json:"status"`
	Teams           []Team         `json:"teams"`
	Settings        Settings       `json:"settings"`
	Schedule        []ScheduleItem `json:"schedule"`
}

type Settings struct {
	Name             string           `json:"name"`
	Size             int              `json:"size"`
	RosterSettings   RosterSettings   `json:"rosterSettings"`
	ScoringSettings  ScoringSettings  `json:"scoringSettings"`
	ScheduleSettings ScheduleSettings `json:"scheduleSettings"`
}

type RosterSettings struct {
	LineupSlotCounts map[string]int `json:"lineupSlotCounts"`
}

type ScoringSettings struct {
	ScoringType  string        `json:"scoringType"`
	ScoringItems []ScoringItem `json:"scoringItems"`
}

type ScoringItem struct {
	StatID        int  `json:"statId"`
	IsReverseItem bool `json:"isReverseItem"`
}

type ScheduleSettings struct {
	MatchupPeriods map[string][]int `json:"matchupPeriods"`
}

type Status struct {
	CurrentMatchupPeriod int  `json:"currentMatchupPeriod"`
	FinalScoringPeriod   int  `json:"finalScoringPeriod"`
	FirstScoringPeriod   int  `json:"firstScoringPeriod"`
	IsActive             bool `json:"isActive"`
}

type Team struct {
	ID           int    `json:"id"`
	Abbreviation string `json:"abbrev"`
	Name         string `json:"name"`
	Location     string `json:"location"`
	Nickname     string `json:"nickname"`
	Roster       Roster `json:"roster"`
}

type Roster struct {
	Entries []RosterEntry `json:"entries"`
}

type ScheduleItem struct {
	ID              int          `json:"id"`
	MatchupPeriodID int          `json:"matchupPeriodId"`
	Home            ScheduleSide `json:"home"`
	Away            ScheduleSide `json:"away"`
	Winner          string       `json:"winner"`
}

type ScheduleSide struct {
	TeamID int `json:"teamId"`
}

type RosterEntry struct {
	PlayerID        int             `json:"playerId"`
	LineupSlotID    int             `json:"lineupSlotId"`
	PlayerPoolEntry PlayerPoolEntry `json:"playerPoolEntry"`
}

type PlayerPoolEntry struct {
	ID       int               `json:"id"`
	OnTeamID int               `json:"onTeamId"`
	Status   string            `json:"status"`
	Player   Player            `json:"player"`
	Ratings  map[string]Rating `json:"ratings"`
}

type Rating struct {
	PositionalRanking int     `json:"positionalRanking"`
	TotalRanking      int     `json:"totalRanking"`
	TotalRating       float64 `json:"totalRating"`
}

type Player struct {
	ID                int    `json:"id"`
	FullName          string `json:"fullName"`
	DefaultPositionID int    `json:"defaultPositionId"`
	EligibleSlots     []int  `json:"eligibleSlots"`
	ProTeamID         int    `json:"proTeamId"`
	InjuryStatus      string `json:"injuryStatus"`
	Injured           bool   `json:"injured"`
}

// PlayerPoolResponse is the kona_player_info view of the league's player pool.
type PlayerPoolResponse struct {
	Players []PlayerPoolEntry `json:"players"`
}
