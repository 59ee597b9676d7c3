package models

// StatLine holds box-score values for one game, a per-game average or a sum.
type StatLine struct {
	FGM  float64 `json:"fgm"`
	FGA  float64 `json:"fga"`
	FTM  float64 `json:"ftm"`
	FTA  float64 `json:"fta"`
	FG3M float64 `json:"fg3m"`
	FG3A float64 `json:"fg3a"`
	PTS  float64 `json:"pts"`
	REB  float64 `json:"reb"`
	AST  float64 `json:"ast"`
	STL  float64 `json:"stl"`
	BLK  float64 `json:"blk"`
	TOV  float64 `json:"tov"`
	MIN  float64 `json:"min"`
}

// Ratio returns makes/attempts, or 0 when there were no attempts.
func Ratio(makes, attempts float64) float64 {
	if attempts == 0 {
		return 0
	}
	return makes / attempts
}

func (l StatLine) FGPct() float64 { return Ratio(l.FGM, l.FGA) }
func (l StatLine) FTPct() float64 { return Ratio(l.FTM, l.FTA) }
func (l StatLine) FG3Pct() float64 { return Ratio(l.FG3M, l.FG3A) }

func (l StatLine) Get(f StatField) float64 {
	switch f {
	case FieldFGPct:
		return l.FGPct()
	case FieldFTPct:
		return l.FTPct()
	case FieldThreePct:
		return l.FG3Pct()
	case FieldThrees:
		return l.FG3M
	case FieldThreesAttempted:
		return l.FG3A
	case FieldPoints:
		return l.PTS
	case FieldRebounds:
		return l.REB
	case FieldAssists:
		return l.AST
	case FieldSteals:
		return l.STL
	case FieldBlocks:
		return l.BLK
	case FieldTurnovers:
		return l.TOV
	case FieldFGM:
		return l.FGM
	case FieldFGA:
		return l.FGA
	case FieldFTM:
		return l.FTM
	case FieldFTA:
		return l.FTA
	case FieldMinutes:
		return l.MIN
	}
	return 0
}

func (l StatLine) Add(o StatLine) StatLine {
	return StatLine{
		FGM:  l.FGM + o.FGM,
		FGA:  l.FGA + o.FGA,
		FTM:  l.FTM + o.FTM,
		FTA:  l.FTA + o.FTA,
		FG3M: l.FG3M + o.FG3M,
		FG3A: l.FG3A + o.FG3A,
		PTS:  l.PTS + o.PTS,
		REB:  l.REB + o.REB,
		AST:  l.AST + o.AST,
		STL:  l.STL + o.STL,
		BLK:  l.BLK + o.BLK,
		TOV:  l.TOV + o.TOV,
		MIN:  l.MIN + o.MIN,
	}
}

func (l StatLine) Scale(k float64) StatLine {
	return StatLine{
		FGM:  l.FGM * k,
		FGA:  l.FGA * k,
		FTM:  l.FTM * k,
		FTA:  l.FTA * k,
		FG3M: l.FG3M * k,
		FG3A: l.FG3A * k,
		PTS:  l.PTS * k,
		REB:  l.REB * k,
		AST:  l.AST * k,
		STL:  l.STL * k,
		BLK:  l.BLK * k,
		TOV:  l.TOV * k,
		MIN:  l.MIN * k,
	}
}

// GameRecord is one real game's box-score line for a player. A final
// record with DNP set marks a finished game the player sat out.
type GameRecord struct {
	Date   Date     `json:"date" yaml:"date"`
	GameID int      `json:"game_id" yaml:"game_id"`
	Final  bool     `json:"final" yaml:"final"`
	DNP    bool     `json:"dnp,omitempty" yaml:"dnp"`
	Line   StatLine `json:"line" yaml:"line"`
}

// Played reports whether the record is a completed game with minutes.
func (g GameRecord) Played() bool { return g.Final && !g.DNP }

// AverageProfile is a player's per-game averages over some window of games.
type AverageProfile struct {
	Games    int      `json:"games"`
	PerGame  StatLine `json:"per_game"`
	LastGame Date     `json:"last_game,omitempty"`
}

// NewAverageProfile averages the given games, skipping DNP records. It
// returns nil when nothing is left to average.
func NewAverageProfile(games []GameRecord) *AverageProfile {
	var total StatLine
	var last Date
	n := 0
	for _, g := range games {
		if g.DNP {
			continue
		}
		total = total.Add(g.Line)
		n++
		if g.Date.After(last) {
			last = g.Date
		}
	}
	if n == 0 {
		return nil
	}
	return &AverageProfile{
		Games:    n,
		PerGame:  total.Scale(1 / float64(n)),
		LastGame: last,
	}
}
