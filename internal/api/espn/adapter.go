package espn

import (
	"log/slog"
	"sort"
	"strconv"
	"time"

	"github.com/yonasstephen/shams-sub000/internal/models"
)

var lineupSlots = map[int]string{
	0:  "PG",
	1:  "SG",
	2:  "SF",
	3:  "PF",
	4:  "C",
	5:  models.SlotGuard,
	6:  models.SlotForward,
	7:  "SG/SF",
	8:  "G/F",
	9:  "PF/C",
	10: "F/C",
	11: models.SlotUtil,
	12: models.SlotBench,
	13: models.SlotIL,
}

type statInfo struct {
	name       string
	percentage bool
}

var statIDs = map[int]statInfo{
	0:  {name: "PTS"},
	1:  {name: "BLK"},
	2:  {name: "STL"},
	3:  {name: "AST"},
	6:  {name: "REB"},
	11: {name: "TO"},
	13: {name: "FGM"},
	14: {name: "FGA"},
	15: {name: "FTM"},
	16: {name: "FTA"},
	17: {name: "3PM"},
	18: {name: "3PA"},
	19: {name: "FG%", percentage: true},
	20: {name: "FT%", percentage: true},
	21: {name: "3PT%", percentage: true},
	40: {name: "MIN"},
}

func SlotLabel(id int) (string, bool) {
	label, ok := lineupSlots[id]
	return label, ok
}

// toInventory orders slots by ESPN slot id so specific positions come
// before flex, utility and inactive slots.
func toInventory(counts map[string]int) models.SlotInventory {
	var ids []int
	for key, n := range counts {
		id, err := strconv.Atoi(key)
		if err != nil || n <= 0 {
			continue
		}
		if _, ok := lineupSlots[id]; ok {
			ids = append(ids, id)
		}
	}
	sort.Ints(ids)

	inv := make(models.SlotInventory, 0, len(ids))
	for _, id := range ids {
		inv = append(inv, models.SlotCount{Label: lineupSlots[id], Count: counts[strconv.Itoa(id)]})
	}
	return inv
}

// toCategories maps the league's scoring items. A category with no box-score
// field can never move and always ties, so it is logged.
func toCategories(items []models.ScoringItem) []models.StatCategory {
	cats := make([]models.StatCategory, 0, len(items))
	for _, item := range items {
		info, ok := statIDs[item.StatID]
		if !ok {
			info = statInfo{name: "STAT" + strconv.Itoa(item.StatID)}
		}
		cat := models.StatCategory{
			ID:           strconv.Itoa(item.StatID),
			DisplayName:  info.name,
			Ascending:    item.IsReverseItem,
			IsPercentage: info.percentage,
		}
		if _, ok := cat.Field(); !ok {
			slog.Warn("Scoring category has no stat mapping and will always tie", "stat_id", item.StatID, "name", info.name)
		}
		cats = append(cats, cat)
	}
	return cats
}

func toRosterPlayer(entry models.RosterEntry) (models.RosterPlayer, bool) {
	p := entry.PlayerPoolEntry.Player
	id := entry.PlayerID
	if id == 0 {
		id = p.ID
	}
	if id == 0 || p.FullName == "" {
		return models.RosterPlayer{}, false
	}

	slot, ok := lineupSlots[entry.LineupSlotID]
	if !ok {
		slot = models.SlotBench
	}

	var eligible []string
	for _, sid := range p.EligibleSlots {
		label, ok := lineupSlots[sid]
		if !ok || models.IsInactiveSlot(label) {
			continue
		}
		eligible = append(eligible, label)
	}

	rank := 0
	if r, ok := entry.PlayerPoolEntry.Ratings["0"]; ok {
		rank = r.TotalRanking
	}

	return models.RosterPlayer{
		PlayerKey:         strconv.Itoa(id),
		Name:              p.FullName,
		EligiblePositions: eligible,
		AssignedSlot:      slot,
		Rank:              rank,
		InjuryStatus:      p.InjuryStatus,
	}, true
}

func teamName(t models.Team) string {
	if t.Name != "" {
		return t.Name
	}
	if t.Location != "" || t.Nickname != "" {
		return t.Location + " " + t.Nickname
	}
	return "Team " + strconv.Itoa(t.ID)
}

// Calendar converts between ESPN scoring periods, one per day starting at
// the season start, and calendar dates.
type Calendar struct {
	SeasonStart models.Date
}

func (c Calendar) Date(scoringPeriod int) models.Date {
	return c.SeasonStart.AddDays(scoringPeriod - 1)
}

func (c Calendar) ScoringPeriod(d models.Date) int {
	return c.SeasonStart.DaysBetween(d) + 1
}

// Week returns the calendar span of a matchup period. Periods run Monday
// through Sunday except the first, which starts on opening night. A period
// listed in matchupPeriods with several weeks spans all of them.
func (c Calendar) Week(period int, matchupPeriods map[int][]int) models.Week {
	weeks := matchupPeriods[period]
	if len(weeks) == 0 {
		weeks = []int{period}
	}
	first, last := weeks[0], weeks[0]
	for _, w := range weeks {
		first, last = min(first, w), max(last, w)
	}
	start, _ := c.calendarWeek(first)
	_, end := c.calendarWeek(last)
	return models.Week{Period: period, Start: start, End: end}
}

func (c Calendar) calendarWeek(n int) (models.Date, models.Date) {
	opening := c.SeasonStart.Time()
	daysToSunday := (int(time.Sunday) - int(opening.Weekday()) + 7) % 7
	firstEnd := c.SeasonStart.AddDays(daysToSunday)
	if n <= 1 {
		return c.SeasonStart, firstEnd
	}
	start := firstEnd.AddDays(1 + 7*(n-2))
	return start, start.AddDays(6)
}

// PeriodFor returns the matchup period whose week contains d.
func (c Calendar) PeriodFor(d models.Date, matchupPeriods map[int][]int) int {
	var periods []int
	for p := range matchupPeriods {
		periods = append(periods, p)
	}
	sort.Ints(periods)
	for _, p := range periods {
		w := c.Week(p, matchupPeriods)
		if !d.Before(w.Start) && !d.After(w.End) {
			return p
		}
	}
	return 0
}

func toFreeAgent(entry models.PlayerPoolEntry) (models.FreeAgent, bool) {
	rp, ok := toRosterPlayer(models.RosterEntry{PlayerID: entry.ID, PlayerPoolEntry: entry})
	if !ok {
		return models.FreeAgent{}, false
	}
	availability := models.AvailabilityFreeAgent
	if entry.Status == "WAIVERS" {
		availability = models.AvailabilityWaivers
	}
	return models.FreeAgent{
		PlayerKey:         rp.PlayerKey,
		Name:              rp.Name,
		Availability:      availability,
		EligiblePositions: rp.EligiblePositions,
		Rank:              rp.Rank,
		InjuryStatus:      rp.InjuryStatus,
	}, true
}
