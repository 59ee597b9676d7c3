package projection

import "github.com/yonasstephen/shams-sub000/internal/models"

// Volume carries the shot makes and attempts behind the percentage
// categories so they can be recombined across players.
type Volume struct {
	FGM  float64 `json:"fgm"`
	FGA  float64 `json:"fga"`
	FTM  float64 `json:"ftm"`
	FTA  float64 `json:"fta"`
	FG3M float64 `json:"fg3m"`
	FG3A float64 `json:"fg3a"`
}

func (v Volume) Add(o Volume) Volume {
	return Volume{
		FGM:  v.FGM + o.FGM,
		FGA:  v.FGA + o.FGA,
		FTM:  v.FTM + o.FTM,
		FTA:  v.FTA + o.FTA,
		FG3M: v.FG3M + o.FG3M,
		FG3A: v.FG3A + o.FG3A,
	}
}

// Contribution is a set of category values keyed by category id. It is used
// both for a single player and for a whole team.
type Contribution struct {
	Stats  map[string]float64 `json:"stats"`
	Volume Volume             `json:"volume"`
	Games  int                `json:"games"`
}

func emptyContribution(cats []models.StatCategory) Contribution {
	c := Contribution{Stats: make(map[string]float64, len(cats))}
	for _, cat := range cats {
		if cat.ID != "" {
			c.Stats[cat.ID] = 0
		}
	}
	return c
}

// contributionFromLine turns summed box-score values into category values.
func contributionFromLine(line models.StatLine, games int, cats []models.StatCategory) Contribution {
	c := emptyContribution(cats)
	c.Games = games
	c.Volume = Volume{FGM: line.FGM, FGA: line.FGA, FTM: line.FTM, FTA: line.FTA, FG3M: line.FG3M, FG3A: line.FG3A}
	for _, cat := range cats {
		if cat.ID == "" {
			continue
		}
		if field, ok := cat.Field(); ok {
			c.Stats[cat.ID] = line.Get(field)
		}
	}
	return c
}

// volumeFor returns the makes and attempts a percentage category is built from.
func volumeFor(cat models.StatCategory, v Volume) (makes, attempts float64, ok bool) {
	field, _ := cat.Field()
	switch field {
	case models.FieldFGPct:
		return v.FGM, v.FGA, true
	case models.FieldFTPct:
		return v.FTM, v.FTA, true
	case models.FieldThreePct:
		return v.FG3M, v.FG3A, true
	}
	return 0, 0, false
}

func isPercentage(cat models.StatCategory) bool {
	if cat.IsPercentage {
		return true
	}
	field, _ := cat.Field()
	return field == models.FieldFGPct || field == models.FieldFTPct || field == models.FieldThreePct
}

// SumContributions adds counting categories and rebuilds every percentage
// category from the summed makes and attempts.
func SumContributions(cats []models.StatCategory, contributions ...Contribution) Contribution {
	total := emptyContribution(cats)
	for _, c := range contributions {
		total.Volume = total.Volume.Add(c.Volume)
		total.Games += c.Games
		for _, cat := range cats {
			if cat.ID == "" || isPercentage(cat) {
				continue
			}
			total.Stats[cat.ID] += c.Stats[cat.ID]
		}
	}
	for _, cat := range cats {
		if cat.ID == "" || !isPercentage(cat) {
			continue
		}
		makes, attempts, ok := volumeFor(cat, total.Volume)
		if !ok {
			continue
		}
		total.Stats[cat.ID] = models.Ratio(makes, attempts)
	}
	return total
}
