package projection

import (
	"slices"
	"sort"

	"github.com/yonasstephen/shams-sub000/internal/models"
)

// unrankedRank sorts players without a rank after every ranked player.
const unrankedRank = 9999

const (
	priorityExact = 1
	priorityFlex  = 2
	priorityUtil  = 3
	notEligible   = 999
)

var flexPositions = map[string][]string{
	models.SlotGuard:   {"PG", "SG"},
	models.SlotForward: {"SF", "PF"},
}

type SlotCandidate struct {
	PlayerKey         string
	EligiblePositions []string
}

// OptimizeSlots greedily places players who have a game into the league's
// scoring slots. The least flexible players are placed first so that
// single-position players are not crowded out. The result is a heuristic,
// not an optimal matching. Every input player gets an entry; unplaced
// players get BN.
func OptimizeSlots(players []SlotCandidate, inventory models.SlotInventory, withGames map[string]bool, ranks map[string]int) map[string]string {
	assignments := make(map[string]string, len(players))

	var candidates []SlotCandidate
	for _, p := range players {
		if p.PlayerKey == "" {
			continue
		}
		if !withGames[p.PlayerKey] || len(p.EligiblePositions) == 0 {
			assignments[p.PlayerKey] = models.SlotBench
			continue
		}
		candidates = append(candidates, p)
	}

	rankOf := func(key string) int {
		if r, ok := ranks[key]; ok {
			return r
		}
		return unrankedRank
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if len(a.EligiblePositions) != len(b.EligiblePositions) {
			return len(a.EligiblePositions) < len(b.EligiblePositions)
		}
		if ra, rb := rankOf(a.PlayerKey), rankOf(b.PlayerKey); ra != rb {
			return ra < rb
		}
		return a.PlayerKey < b.PlayerKey
	})

	slots := inventory.ScoringSlots()
	taken := make([]bool, len(slots))
	for _, p := range candidates {
		best, bestPriority := -1, notEligible
		for i, label := range slots {
			if taken[i] {
				continue
			}
			if pr := slotPriority(p.EligiblePositions, label); pr < bestPriority {
				best, bestPriority = i, pr
			}
		}
		if best < 0 {
			assignments[p.PlayerKey] = models.SlotBench
			continue
		}
		taken[best] = true
		assignments[p.PlayerKey] = slots[best]
	}

	return assignments
}

func slotPriority(eligible []string, label string) int {
	if slices.Contains(eligible, label) {
		return priorityExact
	}
	if positions, ok := flexPositions[label]; ok {
		for _, pos := range positions {
			if slices.Contains(eligible, pos) {
				return priorityFlex
			}
		}
		return notEligible
	}
	if label == models.SlotUtil {
		return priorityUtil
	}
	return notEligible
}
