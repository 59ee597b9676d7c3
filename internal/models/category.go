package models

import "strings"

// StatField names a box-score quantity a category can be scored on.
type StatField string

const (
	FieldFGPct           StatField = "FG%"
	FieldFTPct           StatField = "FT%"
	FieldThreePct        StatField = "3PT%"
	FieldThrees          StatField = "3PM"
	FieldThreesAttempted StatField = "3PA"
	FieldPoints          StatField = "PTS"
	FieldRebounds        StatField = "REB"
	FieldAssists         StatField = "AST"
	FieldSteals          StatField = "STL"
	FieldBlocks          StatField = "BLK"
	FieldTurnovers       StatField = "TO"
	FieldFGM             StatField = "FGM"
	FieldFGA             StatField = "FGA"
	FieldFTM             StatField = "FTM"
	FieldFTA             StatField = "FTA"
	FieldMinutes         StatField = "MIN"
)

var fieldAliases = map[string]StatField{
	"FG%":  FieldFGPct,
	"FT%":  FieldFTPct,
	"3PT%": FieldThreePct,
	"3P%":  FieldThreePct,
	"3PA":  FieldThreesAttempted,
	"3PM":  FieldThrees,
	"3PTM": FieldThrees,
	"3PT":  FieldThrees,
	"3-PT": FieldThrees,
	"PTS":  FieldPoints,
	"REB":  FieldRebounds,
	"AST":  FieldAssists,
	"ST":   FieldSteals,
	"STL":  FieldSteals,
	"BLK":  FieldBlocks,
	"TO":   FieldTurnovers,
	"TOV":  FieldTurnovers,
	"FGM":  FieldFGM,
	"FGA":  FieldFGA,
	"FTM":  FieldFTM,
	"FTA":  FieldFTA,
	"MIN":  FieldMinutes,
}

type StatCategory struct {
	ID           string `json:"id" yaml:"id"`
	DisplayName  string `json:"display_name" yaml:"display_name"`
	Ascending    bool   `json:"ascending" yaml:"ascending"`
	IsPercentage bool   `json:"is_percentage" yaml:"is_percentage"`
	DisplayOnly  bool   `json:"display_only" yaml:"display_only"`
}

// Field maps the category's display name onto a box-score field.
func (c StatCategory) Field() (StatField, bool) {
	f, ok := fieldAliases[strings.ToUpper(strings.TrimSpace(c.DisplayName))]
	return f, ok
}

// Scored reports whether the category takes part in the win/loss tally.
func (c StatCategory) Scored() bool {
	return c.ID != "" && !c.DisplayOnly
}
