package session

import (
	"errors"
	"strings"
)

// Result recording uses a fixed shape: four doubles teams playing three
// round-robin sets of two simultaneous matchups. Scores are informal point
// totals, not validated against tennis scoring.
const (
	NumTeams       = 4
	NumSets        = 3
	MatchupsPerSet = 2
)

var (
	ErrInvalidTeam        = errors.New("team index must be between 0 and 3")
	ErrInvalidSlot        = errors.New("slot must be 0 or 1")
	ErrDuplicateAssign    = errors.New("a player may occupy at most one team slot")
	ErrInvalidPoints      = errors.New("points must be a non-negative whole number")
	ErrPlayerNotConfirmed = errors.New("only confirmed players can be placed in a team")
)

// Team is one doubles pairing; empty strings mark unfilled slots.
type Team struct {
	Player1 string `json:"player1"`
	Player2 string `json:"player2"`
}

// Teams holds the four fixed pairings used when recording results.
type Teams [NumTeams]Team

// Matchup holds the two point totals of one team-vs-team pairing, stored as
// the numeric text the players typed in.
type Matchup struct {
	Points1 string `json:"points1"`
	Points2 string `json:"points2"`
}

// Set groups the two matchups played simultaneously in one round.
type Set struct {
	Matchups [MatchupsPerSet]Matchup `json:"matchups"`
}

// Scores records the three round-robin sets.
type Scores [NumSets]Set

// RoundRobin maps [set][matchup] to the zero-based indexes of the two teams
// playing it. The schedule is static:
// set 1 = T1 v T2, T3 v T4; set 2 = T1 v T3, T2 v T4; set 3 = T1 v T4, T2 v T3.
var RoundRobin = [NumSets][MatchupsPerSet][2]int{
	{{0, 1}, {2, 3}},
	{{0, 2}, {1, 3}},
	{{0, 3}, {1, 2}},
}

// AssignPlayer places name into the given team slot. The player is first
// cleared from any slot they currently occupy, so no player can hold two
// slots at once.
// PRE: team in [0,NumTeams), slot 0 or 1
// POST: name occupies exactly one slot
func (t *Teams) AssignPlayer(team, slot int, name string) error {
	if team < 0 || team >= NumTeams {
		return ErrInvalidTeam
	}
	if slot != 0 && slot != 1 {
		return ErrInvalidSlot
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrEmptyPlayerName
	}
	t.ClearPlayer(name)
	if slot == 0 {
		t[team].Player1 = name
	} else {
		t[team].Player2 = name
	}
	return nil
}

// ClearPlayer removes name from any slot it occupies.
func (t *Teams) ClearPlayer(name string) {
	for i := range t {
		if t[i].Player1 == name {
			t[i].Player1 = ""
		}
		if t[i].Player2 == name {
			t[i].Player2 = ""
		}
	}
}

// Assigned returns every name currently placed in a slot, team by team.
func (t *Teams) Assigned() []string {
	var names []string
	for i := range t {
		if t[i].Player1 != "" {
			names = append(names, t[i].Player1)
		}
		if t[i].Player2 != "" {
			names = append(names, t[i].Player2)
		}
	}
	return names
}

// Validate checks that no player occupies more than one slot. Assignments
// arriving wholesale (rather than via AssignPlayer) must pass through here.
func (t *Teams) Validate() error {
	seen := make(map[string]bool)
	for _, name := range t.Assigned() {
		if seen[name] {
			return ErrDuplicateAssign
		}
		seen[name] = true
	}
	return nil
}

// AvailablePlayers returns the confirmed players of s not yet placed in a
// team slot. Waiting-list players are never eligible for assignment.
func AvailablePlayers(s *Session, t *Teams) []string {
	assigned := make(map[string]bool)
	for _, name := range t.Assigned() {
		assigned[name] = true
	}
	var available []string
	for _, name := range s.Confirmed() {
		if !assigned[name] {
			available = append(available, name)
		}
	}
	return available
}

// ValidPoints reports whether text is an acceptable point total: empty
// (unplayed) or any non-negative whole number. No tennis scoring rule is
// applied.
func ValidPoints(text string) bool {
	if text == "" {
		return true
	}
	for _, r := range text {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// Validate checks every recorded point total.
func (sc *Scores) Validate() error {
	for _, set := range sc {
		for _, m := range set.Matchups {
			if !ValidPoints(m.Points1) || !ValidPoints(m.Points2) {
				return ErrInvalidPoints
			}
		}
	}
	return nil
}
