package projection

import (
	"math"

	"github.com/yonasstephen/shams-sub000/internal/models"
)

const tieEpsilon = 0.001

type Side string

const (
	SideA   Side = "a"
	SideB   Side = "b"
	SideTie Side = "tie"
)

// Outcome is one team's category tally. Total counts wins only.
type Outcome struct {
	Win   float64 `json:"win"`
	Loss  float64 `json:"loss"`
	Tie   float64 `json:"tie"`
	Total float64 `json:"total"`
}

type CategoryResult struct {
	CategoryID  string  `json:"category_id"`
	DisplayName string  `json:"display_name"`
	A           float64 `json:"a"`
	B           float64 `json:"b"`
	Winner      Side    `json:"winner"`
}

// ScoreCategories compares two team totals category by category.
func ScoreCategories(a, b Contribution, cats []models.StatCategory) (Outcome, Outcome, []CategoryResult) {
	var outA, outB Outcome
	var results []CategoryResult
	for _, cat := range cats {
		if !cat.Scored() {
			continue
		}
		winner := compareCategory(cat, a, b)
		switch winner {
		case SideA:
			outA.Win++
			outB.Loss++
		case SideB:
			outB.Win++
			outA.Loss++
		default:
			outA.Tie++
			outB.Tie++
		}
		results = append(results, CategoryResult{
			CategoryID:  cat.ID,
			DisplayName: cat.DisplayName,
			A:           a.Stats[cat.ID],
			B:           b.Stats[cat.ID],
			Winner:      winner,
		})
	}
	outA.Total = outA.Win
	outB.Total = outB.Win
	return outA, outB, results
}

func compareCategory(cat models.StatCategory, a, b Contribution) Side {
	va, vb := a.Stats[cat.ID], b.Stats[cat.ID]
	if math.Abs(va-vb) < tieEpsilon {
		if !isPercentage(cat) {
			return SideTie
		}
		_, attA, okA := volumeFor(cat, a.Volume)
		_, attB, okB := volumeFor(cat, b.Volume)
		switch {
		case !okA || !okB || attA == attB:
			return SideTie
		case attA > attB:
			return SideA
		default:
			return SideB
		}
	}
	aBetter := va > vb
	if cat.Ascending {
		aBetter = va < vb
	}
	if aBetter {
		return SideA
	}
	return SideB
}

// CombineAndScore builds each team's totals from its players' actual and
// projected contributions and scores the result.
func CombineAndScore(teamA, teamB []Contribution, cats []models.StatCategory) (Contribution, Contribution, Outcome, Outcome) {
	totalA := SumContributions(cats, teamA...)
	totalB := SumContributions(cats, teamB...)
	outA, outB, _ := ScoreCategories(totalA, totalB, cats)
	return totalA, totalB, outA, outB
}
