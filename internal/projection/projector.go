package projection

import "github.com/yonasstephen/shams-sub000/internal/models"

// Project multiplies per-game averages by the number of active game dates.
// Percentages stay rates and the shot volume is scaled with the counting
// stats. A nil profile projects zero.
func Project(profile *models.AverageProfile, activeGameDates models.DateSet, cats []models.StatCategory) Contribution {
	if profile == nil || activeGameDates.Len() == 0 {
		return emptyContribution(cats)
	}
	n := activeGameDates.Len()
	return contributionFromLine(profile.PerGame.Scale(float64(n)), n, cats)
}

// AggregateActual sums the box scores of games already played this week
// while the player was active. A game on asOf only counts once its box
// score is final, so an in-progress game is never counted here and in the
// remaining projection at the same time.
func AggregateActual(games []models.GameRecord, activeDates models.DateSet, asOf, weekStart models.Date, cats []models.StatCategory) Contribution {
	if asOf.Before(weekStart) {
		return emptyContribution(cats)
	}
	var total models.StatLine
	n := 0
	for _, g := range games {
		if g.DNP || g.Date.Before(weekStart) || !activeDates.Has(g.Date) {
			continue
		}
		if g.Date.Before(asOf) || (g.Date == asOf && g.Final) {
			total = total.Add(g.Line)
			n++
		}
	}
	return contributionFromLine(total, n, cats)
}

// RemainingDates returns the active game dates not yet covered by actual
// stats: everything after asOf plus asOf itself while its game is unfinished.
// A final DNP record still closes its date.
func RemainingDates(activeGameDates models.DateSet, games []models.GameRecord, asOf models.Date) models.DateSet {
	final := make(models.DateSet)
	for _, g := range games {
		if g.Final {
			final.Add(g.Date)
		}
	}
	remaining := make(models.DateSet)
	for d := range activeGameDates {
		if d.After(asOf) || (d == asOf && !final.Has(d)) {
			remaining.Add(d)
		}
	}
	return remaining
}
