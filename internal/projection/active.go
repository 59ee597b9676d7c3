package projection

import "github.com/yonasstephen/shams-sub000/internal/models"

// DailySlots maps each date to the slot every rostered player holds on it.
type DailySlots map[models.Date]map[string]string

// FillForward copies the latest fetched roster onto every later date up to
// end. Gaps before the latest snapshot are left empty since a missing past
// roster means the player was not on the team.
func FillForward(roster models.RosterByDate, end models.Date) models.RosterByDate {
	out := make(models.RosterByDate, len(roster))
	dates := roster.Dates()
	if len(dates) == 0 {
		return out
	}
	for _, d := range dates {
		out[d] = roster[d]
	}
	latest := dates[len(dates)-1]
	for d := latest.AddDays(1); !d.After(end); d = d.AddDays(1) {
		out[d] = roster[latest]
	}
	return out
}

// AssignedDailySlots takes the league-assigned slots as they are.
func AssignedDailySlots(roster models.RosterByDate) DailySlots {
	daily := make(DailySlots, len(roster))
	for d, players := range roster {
		slots := make(map[string]string, len(players))
		for _, p := range players {
			if p.PlayerKey != "" {
				slots[p.PlayerKey] = p.AssignedSlot
			}
		}
		daily[d] = slots
	}
	return daily
}

// OptimizedDailySlots runs the slot optimizer for every date of the roster.
// Players the league placed on IL or IL+ keep that slot and are never
// offered to the optimizer.
func OptimizedDailySlots(roster models.RosterByDate, inventory models.SlotInventory, gameDates map[string]models.DateSet, ranks map[string]int) DailySlots {
	daily := make(DailySlots, len(roster))
	for d, players := range roster {
		var candidates []SlotCandidate
		withGames := make(map[string]bool)
		injured := make(map[string]string)
		for _, p := range players {
			if p.PlayerKey == "" {
				continue
			}
			if models.IsInjuredSlot(p.AssignedSlot) {
				injured[p.PlayerKey] = p.AssignedSlot
				continue
			}
			candidates = append(candidates, SlotCandidate{
				PlayerKey:         p.PlayerKey,
				EligiblePositions: p.EligiblePositions,
			})
			if gameDates[p.PlayerKey].Has(d) {
				withGames[p.PlayerKey] = true
			}
		}

		slots := OptimizeSlots(candidates, inventory, withGames, ranks)
		for key, slot := range injured {
			slots[key] = slot
		}
		daily[d] = slots
	}
	return daily
}

// ActiveDates returns, per player, the dates in [start, end] on which the
// player is rostered in a scoring slot.
func ActiveDates(daily DailySlots, start, end models.Date) map[string]models.DateSet {
	active := make(map[string]models.DateSet)
	for d, slots := range daily {
		if d.Before(start) || d.After(end) {
			continue
		}
		for key, slot := range slots {
			if models.IsInactiveSlot(slot) {
				continue
			}
			if active[key] == nil {
				active[key] = make(models.DateSet)
			}
			active[key].Add(d)
		}
	}
	return active
}
