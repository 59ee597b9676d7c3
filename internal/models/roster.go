package models

import "sort"

const (
	SlotBench   = "BN"
	SlotIL      = "IL"
	SlotILPlus  = "IL+"
	SlotUtil    = "Util"
	SlotGuard   = "G"
	SlotForward = "F"
)

// IsInactiveSlot reports whether a player in this slot does not score.
func IsInactiveSlot(label string) bool {
	switch label {
	case SlotBench, SlotIL, SlotILPlus, "":
		return true
	}
	return false
}

func IsInjuredSlot(label string) bool {
	return label == SlotIL || label == SlotILPlus
}

type SlotCount struct {
	Label string `json:"label" yaml:"label"`
	Count int    `json:"count" yaml:"count"`
}

// SlotInventory is a league's ordered list of roster slots.
type SlotInventory []SlotCount

func (inv SlotInventory) Capacity(label string) int {
	total := 0
	for _, s := range inv {
		if s.Label == label {
			total += s.Count
		}
	}
	return total
}

// ScoringSlots expands the inventory into one entry per assignable slot,
// keeping inventory order and dropping inactive labels.
func (inv SlotInventory) ScoringSlots() []string {
	var slots []string
	for _, s := range inv {
		if IsInactiveSlot(s.Label) {
			continue
		}
		for i := 0; i < s.Count; i++ {
			slots = append(slots, s.Label)
		}
	}
	return slots
}

type RosterPlayer struct {
	PlayerKey         string   `json:"player_key" yaml:"player_key"`
	Name              string   `json:"name" yaml:"name"`
	EligiblePositions []string `json:"eligible_positions" yaml:"eligible_positions"`
	AssignedSlot      string   `json:"assigned_slot" yaml:"assigned_slot"`
	Rank              int      `json:"rank,omitempty" yaml:"rank"`
	InjuryStatus      string   `json:"injury_status,omitempty" yaml:"injury_status"`
}

// RosterByDate is a team's roster snapshot for each day it was fetched.
type RosterByDate map[Date][]RosterPlayer

func (r RosterByDate) Dates() []Date {
	dates := make([]Date, 0, len(r))
	for d := range r {
		dates = append(dates, d)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i] < dates[j] })
	return dates
}

// Players returns each distinct player once, first appearance wins.
func (r RosterByDate) Players() []RosterPlayer {
	seen := make(map[string]bool)
	var players []RosterPlayer
	for _, d := range r.Dates() {
		for _, p := range r[d] {
			if p.PlayerKey == "" || seen[p.PlayerKey] {
				continue
			}
			seen[p.PlayerKey] = true
			players = append(players, p)
		}
	}
	return players
}

// Ranks collects the non-zero ranks carried on roster entries.
func (r RosterByDate) Ranks() map[string]int {
	ranks := make(map[string]int)
	for _, p := range r.Players() {
		if p.Rank > 0 {
			ranks[p.PlayerKey] = p.Rank
		}
	}
	return ranks
}

// Availability of an unrostered player.
const (
	AvailabilityFreeAgent = "FA"
	AvailabilityWaivers   = "W"
)

// FreeAgent is an unrostered player the league lets teams add.
type FreeAgent struct {
	PlayerKey         string   `json:"player_key"`
	Name              string   `json:"name"`
	Availability      string   `json:"availability"`
	EligiblePositions []string `json:"eligible_positions"`
	Rank              int      `json:"rank,omitempty"`
	InjuryStatus      string   `json:"injury_status,omitempty"`
}
