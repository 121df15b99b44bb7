// Package state defines the entities the territory engine manages:
// states, sectors, camps, and the transient diplomacy records between them.
package state

import "strings"

// PlayerID is a stable identity for a player in the host world.
type PlayerID string

// Location is a world anchor for a placed sector.
type Location struct {
	World string  `json:"world"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Z     float64 `json:"z"`
}

// Boundary is the rectangular half-extent of a sector's claim, centered on
// its anchor location. Used for zone detection by collaborators.
type Boundary struct {
	HalfX float64 `json:"half_x"`
	HalfZ float64 `json:"half_z"`
}

// Contains reports whether the point (x, z) falls inside the boundary
// centered at the given anchor.
func (b Boundary) Contains(anchor Location, x, z float64) bool {
	dx := x - anchor.X
	dz := z - anchor.Z
	if dx < 0 {
		dx = -dx
	}
	if dz < 0 {
		dz = -dz
	}
	return dx <= b.HalfX && dz <= b.HalfZ
}

// Key normalizes a state or sector name for lookup. Display names keep
// their original casing; every map is keyed on the lowercased form.
func Key(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
