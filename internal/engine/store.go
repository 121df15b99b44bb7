// Entity store: registry and query surface over states, sectors, and camps.
// All name lookups are case-insensitive; display casing is preserved on the
// entities themselves.
package engine

import (
	"time"

	"github.com/talgya/statecraft/internal/state"
)

// FindState looks up a state by name, case-insensitive. Returns nil if
// absent. The pointer is live engine state; callers reading it outside a
// command must use StateView instead.
func (e *Engine) FindState(name string) *state.State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.states[state.Key(name)]
}

// ListStates returns all states in creation order. Like FindState, the
// pointers are live; concurrent readers use StatesView.
func (e *Engine) ListStates() []*state.State {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]*state.State, 0, len(e.order))
	for _, k := range e.order {
		out = append(out, e.states[k])
	}
	return out
}

// StateView returns a detached copy of the named state, safe to read while
// the engine keeps mutating. Returns nil if absent.
func (e *Engine) StateView(name string) *state.State {
	e.mu.Lock()
	defer e.mu.Unlock()
	st := e.states[state.Key(name)]
	if st == nil {
		return nil
	}
	return copyState(st)
}

// StatesView returns detached copies of all states in creation order.
func (e *Engine) StatesView() []*state.State {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]*state.State, 0, len(e.order))
	for _, k := range e.order {
		out = append(out, copyState(e.states[k]))
	}
	return out
}

// StateOf returns the state the player belongs to, or nil.
func (e *Engine) StateOf(p state.PlayerID) *state.State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.stateOf(p)
}

func (e *Engine) stateOf(p state.PlayerID) *state.State {
	k, ok := e.memberOf[p]
	if !ok {
		return nil
	}
	return e.states[k]
}

// StateNameOf returns the display name of the player's state, or "".
func (e *Engine) StateNameOf(p state.PlayerID) string {
	e.mu.Lock()
	defer e.mu.Unlock()
	if st := e.stateOf(p); st != nil {
		return st.Name
	}
	return ""
}

// IsCaptain reports whether the player captains any state.
func (e *Engine) IsCaptain(p state.PlayerID) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	st := e.stateOf(p)
	return st != nil && st.Captain == p
}

// GetCamp returns the camp of the named sector, or nil.
func (e *Engine) GetCamp(stateName, sectorName string) *state.Camp {
	e.mu.Lock()
	defer e.mu.Unlock()
	st := e.states[state.Key(stateName)]
	if st == nil {
		return nil
	}
	sec := st.Sector(sectorName)
	if sec == nil {
		return nil
	}
	return sec.Camp
}

// SetCampFuel sets the fuel units on a sector's camp. Fuel gates
// condemnation; it is produced by collaborators (placement/item events), the
// engine only stores and consumes it. Returns false if the sector is absent.
func (e *Engine) SetCampFuel(stateName, sectorName string, fuel int) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	st := e.states[state.Key(stateName)]
	if st == nil {
		return false
	}
	sec := st.Sector(sectorName)
	if sec == nil || sec.Camp == nil {
		return false
	}
	if fuel < 0 {
		fuel = 0
	}
	sec.Camp.Fuel = fuel
	return true
}

// CampRef identifies a camp by its owning state and sector.
type CampRef struct {
	StateName  string
	SectorName string
	Camp       *state.Camp
	Location   state.Location
}

// FindCampByLocation returns the placed camp whose sector boundary contains
// the point, or nil.
func (e *Engine) FindCampByLocation(world string, x, z float64) *CampRef {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, k := range e.order {
		st := e.states[k]
		for _, sec := range st.OrderedSectors() {
			if !sec.Placed() || sec.Location.World != world {
				continue
			}
			if sec.Boundary.Contains(*sec.Location, x, z) {
				return &CampRef{
					StateName:  st.Name,
					SectorName: sec.Name,
					Camp:       sec.Camp,
					Location:   *sec.Location,
				}
			}
		}
	}
	return nil
}

// FindCampsInRadius returns all placed camps within radius of the point,
// in state creation order.
func (e *Engine) FindCampsInRadius(world string, x, z, radius float64) []*CampRef {
	e.mu.Lock()
	defer e.mu.Unlock()
	var out []*CampRef
	r2 := radius * radius
	for _, k := range e.order {
		st := e.states[k]
		for _, sec := range st.OrderedSectors() {
			if !sec.Placed() || sec.Location.World != world {
				continue
			}
			dx := sec.Location.X - x
			dz := sec.Location.Z - z
			if dx*dx+dz*dz <= r2 {
				out = append(out, &CampRef{
					StateName:  st.Name,
					SectorName: sec.Name,
					Camp:       sec.Camp,
					Location:   *sec.Location,
				})
			}
		}
	}
	return out
}

// GetSectorLocation returns the sector's world anchor, or nil if the sector
// is absent or unplaced.
func (e *Engine) GetSectorLocation(stateName, sectorName string) *state.Location {
	e.mu.Lock()
	defer e.mu.Unlock()
	st := e.states[state.Key(stateName)]
	if st == nil {
		return nil
	}
	sec := st.Sector(sectorName)
	if sec == nil || !sec.Placed() {
		return nil
	}
	loc := *sec.Location
	return &loc
}

// GetSectorBoundary returns the sector's claim half-extents.
func (e *Engine) GetSectorBoundary(stateName, sectorName string) (state.Boundary, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	st := e.states[state.Key(stateName)]
	if st == nil {
		return state.Boundary{}, false
	}
	sec := st.Sector(sectorName)
	if sec == nil {
		return state.Boundary{}, false
	}
	return sec.Boundary, true
}

// IsCapitalSector reports whether the named sector is its state's capital.
func (e *Engine) IsCapitalSector(stateName, sectorName string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	st := e.states[state.Key(stateName)]
	return st != nil && st.Capital != "" && st.Capital == state.Key(sectorName)
}

// registerState adds a state to the registry and indexes its members.
// Caller holds e.mu and has verified the name is free.
func (e *Engine) registerState(st *state.State) {
	k := st.Key()
	e.states[k] = st
	e.order = append(e.order, k)
	for _, m := range st.Members {
		e.memberOf[m] = k
	}
}

// removeState deletes a state and cascade-invalidates everything referencing
// it: member index, wars (with drop-override restoration for opponents),
// condemnations, surrender and gift requests, invites, join requests, and
// placements targeting it. Caller holds e.mu.
func (e *Engine) removeState(st *state.State) {
	k := st.Key()
	delete(e.states, k)
	for i, o := range e.order {
		if o == k {
			e.order = append(e.order[:i], e.order[i+1:]...)
			break
		}
	}
	for _, m := range st.Members {
		if e.memberOf[m] == k {
			delete(e.memberOf, m)
		}
	}

	// Wars involving the state end immediately; opponents get their
	// inventory rules back if nothing else keeps them at war.
	kept := e.wars[:0]
	var opponents []string
	for _, w := range e.wars {
		if w.Involves(k) {
			opponents = append(opponents, w.Opponent(k))
			continue
		}
		kept = append(kept, w)
	}
	e.wars = kept
	for _, op := range opponents {
		e.gravesRestoreIfIdle(op)
	}

	delete(e.condemnations, k)
	for attacker, c := range e.condemnations {
		if c.Target == k {
			delete(e.condemnations, attacker)
		}
	}
	delete(e.surrenders, k)
	for initiator, r := range e.surrenders {
		if r.Opponent == k {
			delete(e.surrenders, initiator)
		}
	}
	giftsKept := e.gifts[:0]
	for _, g := range e.gifts {
		if g.Source != k && g.Target != k {
			giftsKept = append(giftsKept, g)
		}
	}
	e.gifts = giftsKept
	for target, inv := range e.invites {
		if inv.StateKey == k {
			delete(e.invites, target)
		}
	}
	for player, jr := range e.joinRequests {
		if jr.StateKey == k {
			delete(e.joinRequests, player)
		}
	}
	for player, p := range e.placements {
		if state.Key(p.StateName) == k || p.OriginState == k {
			delete(e.placements, player)
		}
	}
	delete(e.cooldowns, k)
}

// warFor returns the active war involving the state, or nil. Caller holds
// e.mu. A state is in at most one war.
func (e *Engine) warFor(key string) *state.WarRecord {
	for _, w := range e.wars {
		if w.Involves(key) {
			return w
		}
	}
	return nil
}

// warBetween returns the war between the two states, or nil. Caller holds
// e.mu.
func (e *Engine) warBetween(a, b string) *state.WarRecord {
	for _, w := range e.wars {
		if w.Involves(a) && w.Involves(b) {
			return w
		}
	}
	return nil
}

// Wars returns a snapshot of all active wars.
func (e *Engine) Wars() []*state.WarRecord {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]*state.WarRecord, len(e.wars))
	for i, w := range e.wars {
		cp := *w
		out[i] = &cp
	}
	return out
}

// AtWar reports whether the two named states are at war with each other.
func (e *Engine) AtWar(a, b string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.warBetween(state.Key(a), state.Key(b)) != nil
}

// cooldownRemaining returns how long the state's post-war cooldown still
// runs; zero when none. Caller holds e.mu. Lapsed entries are reclaimed.
func (e *Engine) cooldownRemaining(key string) time.Duration {
	until, ok := e.cooldowns[key]
	if !ok {
		return 0
	}
	rem := until.Sub(e.now())
	if rem <= 0 {
		delete(e.cooldowns, key)
		return 0
	}
	return rem
}
