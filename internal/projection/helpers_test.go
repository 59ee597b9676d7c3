package projection

import "github.com/yonasstephen/shams-sub000/internal/models"

func nineCats() []models.StatCategory {
	return []models.StatCategory{
		{ID: "9004003", DisplayName: "FGM/A", DisplayOnly: true},
		{ID: "5", DisplayName: "FG%", IsPercentage: true},
		{ID: "8", DisplayName: "FT%", IsPercentage: true},
		{ID: "10", DisplayName: "3PTM"},
		{ID: "12", DisplayName: "PTS"},
		{ID: "15", DisplayName: "REB"},
		{ID: "16", DisplayName: "AST"},
		{ID: "17", DisplayName: "ST"},
		{ID: "18", DisplayName: "BLK"},
		{ID: "19", DisplayName: "TO", Ascending: true},
	}
}

func scoredCount(cats []models.StatCategory) int {
	n := 0
	for _, c := range cats {
		if c.Scored() {
			n++
		}
	}
	return n
}
