// Snapshot export/import for persistence. Pending placements, invites, and
// join requests are session-scoped and deliberately excluded — they do not
// survive a restart.
package engine

import (
	"time"

	"github.com/talgya/statecraft/internal/state"
)

// Snapshot is a point-in-time copy of everything the engine persists.
type Snapshot struct {
	States        []*state.State
	Wars          []*state.WarRecord
	Condemnations []*state.Condemnation
	Surrenders    []*state.SurrenderRequest
	Gifts         []*state.SectorGiftRequest
	Cooldowns     map[string]time.Time
	TakenAt       time.Time
}

// Snapshot copies the persisted portion of the engine state. States are in
// creation order.
func (e *Engine) Snapshot() *Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()

	snap := &Snapshot{
		Cooldowns: make(map[string]time.Time, len(e.cooldowns)),
		TakenAt:   e.now(),
	}
	for _, k := range e.order {
		snap.States = append(snap.States, copyState(e.states[k]))
	}
	for _, w := range e.wars {
		cp := *w
		snap.Wars = append(snap.Wars, &cp)
	}
	for _, c := range e.condemnations {
		cp := *c
		snap.Condemnations = append(snap.Condemnations, &cp)
	}
	for _, r := range e.surrenders {
		cp := *r
		snap.Surrenders = append(snap.Surrenders, &cp)
	}
	for _, g := range e.gifts {
		cp := *g
		snap.Gifts = append(snap.Gifts, &cp)
	}
	for k, v := range e.cooldowns {
		snap.Cooldowns[k] = v
	}
	return snap
}

// Restore replaces the engine's persisted state with the snapshot and
// rebuilds every index. Transient session records are cleared.
func (e *Engine) Restore(snap *Snapshot) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.states = make(map[string]*state.State, len(snap.States))
	e.order = e.order[:0]
	e.memberOf = make(map[state.PlayerID]string)
	for _, st := range snap.States {
		e.registerState(copyState(st))
	}

	e.wars = nil
	for _, w := range snap.Wars {
		cp := *w
		e.wars = append(e.wars, &cp)
	}
	e.condemnations = make(map[string]*state.Condemnation, len(snap.Condemnations))
	for _, c := range snap.Condemnations {
		cp := *c
		e.condemnations[c.Attacker] = &cp
	}
	e.surrenders = make(map[string]*state.SurrenderRequest, len(snap.Surrenders))
	for _, r := range snap.Surrenders {
		cp := *r
		e.surrenders[r.Initiator] = &cp
	}
	e.gifts = nil
	for _, g := range snap.Gifts {
		cp := *g
		e.gifts = append(e.gifts, &cp)
	}
	e.cooldowns = make(map[string]time.Time, len(snap.Cooldowns))
	for k, v := range snap.Cooldowns {
		e.cooldowns[k] = v
	}

	e.placements = make(map[state.PlayerID]*state.PendingCampPlacement)
	e.invites = make(map[state.PlayerID]*state.Invite)
	e.joinRequests = make(map[state.PlayerID]*state.JoinRequest)
}

func copyState(st *state.State) *state.State {
	cp := *st
	cp.Members = append([]state.PlayerID(nil), st.Members...)
	cp.SectorOrder = append([]string(nil), st.SectorOrder...)
	cp.Transactions = append([]state.BankTransaction(nil), st.Transactions...)
	cp.Sectors = make(map[string]*state.Sector, len(st.Sectors))
	for k, sec := range st.Sectors {
		sc := *sec
		if sec.Location != nil {
			loc := *sec.Location
			sc.Location = &loc
		}
		if sec.Governor != nil {
			gov := *sec.Governor
			sc.Governor = &gov
		}
		if sec.Camp != nil {
			camp := *sec.Camp
			sc.Camp = &camp
		}
		cp.Sectors[k] = &sc
	}
	return &cp
}
