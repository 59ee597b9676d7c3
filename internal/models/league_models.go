package models

import "time"

type LeagueMetadata struct {
	LeagueID             int
	Name                 string
	SeasonID             int
	CurrentMatchupPeriod int
	CurrentScoringPeriod int
	FirstScoringPeriod   int
	FinalScoringPeriod   int
	IsActive             bool
	Categories           []StatCategory
	Inventory            SlotInventory
	MatchupPeriods       map[int][]int
	Teams                []LeagueTeam
	LastUpdated          time.Time
}

type LeagueTeam struct {
	ID           int
	Name         string
	Abbreviation string
}

// Matchup pairs two league teams within one matchup period.
type Matchup struct {
	ID            int
	MatchupPeriod int
	HomeTeamID    int
	AwayTeamID    int
}

// Week is the first and last calendar day of a matchup period.
type Week struct {
	Period int
	Start  Date
	End    Date
}
