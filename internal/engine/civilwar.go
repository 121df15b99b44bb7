// Civil war secession: a governor of a non-capital sector founds a rebel
// state centered on that sector, then fights the origin state.
package engine

import (
	"fmt"

	"github.com/talgya/statecraft/internal/state"
)

// CivilWarStatus is the outcome of starting a secession.
type CivilWarStatus int

const (
	CivilWarOK CivilWarStatus = iota
	CivilWarNotEligible
	CivilWarPending
	CivilWarNameTaken
	CivilWarInvalidName
	CivilWarOriginAtWar
)

// String returns the outcome label.
func (s CivilWarStatus) String() string {
	switch s {
	case CivilWarOK:
		return "OK"
	case CivilWarNotEligible:
		return "NOT_ELIGIBLE"
	case CivilWarPending:
		return "CIVIL_WAR_PENDING"
	case CivilWarNameTaken:
		return "NAME_TAKEN"
	case CivilWarInvalidName:
		return "INVALID_NAME"
	case CivilWarOriginAtWar:
		return "ORIGIN_AT_WAR"
	default:
		return "UNKNOWN"
	}
}

// InitiateCivilWar begins a secession. The member must govern a non-capital
// sector of their state; that sector becomes the rebellion's seat. A
// placement workflow parallel to founding follows — the rebel state
// materializes when the placement completes, and the civil war starts
// immediately after.
func (e *Engine) InitiateCivilWar(member state.PlayerID, rebelName string) CivilWarStatus {
	e.mu.Lock()
	defer e.mu.Unlock()

	if state.Key(rebelName) == "" {
		return CivilWarInvalidName
	}
	origin := e.stateOf(member)
	if origin == nil || origin.Captain == member {
		return CivilWarNotEligible
	}
	sec := origin.GovernorOf(member)
	if sec == nil || origin.Capital == state.Key(sec.Name) {
		return CivilWarNotEligible
	}
	// One rebellion per lineage at a time, pending or fighting.
	for _, p := range e.placements {
		if p.Kind == state.PlacementCivilWar && p.OriginState == origin.Key() && !p.Expired(e.now()) {
			return CivilWarPending
		}
	}
	for _, w := range e.wars {
		if !w.Involves(origin.Key()) {
			continue
		}
		if w.CivilWar {
			return CivilWarPending
		}
		// The rebel would be born into ALREADY_AT_WAR; refuse upfront.
		return CivilWarOriginAtWar
	}
	if _, taken := e.states[state.Key(rebelName)]; taken {
		return CivilWarNameTaken
	}
	if p, ok := e.placements[member]; ok && !p.Expired(e.now()) {
		return CivilWarNotEligible
	}

	now := e.now()
	e.placements[member] = &state.PendingCampPlacement{
		Player:       member,
		Kind:         state.PlacementCivilWar,
		StateName:    rebelName,
		SectorName:   sec.Name,
		ItemID:       e.cfg.FoundingItem,
		OriginState:  origin.Key(),
		OriginSector: state.Key(sec.Name),
		CreatedAt:    now,
		ExpiresAt:    now.Add(e.cfg.PlacementExpiry),
	}
	return CivilWarOK
}

// completeSecession materializes the rebel state: the secessionist becomes
// captain, the rebellion sector transfers from the origin state as the
// rebel capital, and the civil war begins. Caller holds e.mu.
func (e *Engine) completeSecession(p *state.PendingCampPlacement, loc state.Location) *PlacementResult {
	origin := e.states[p.OriginState]
	if origin == nil {
		return nil // origin dissolved while pending; nothing to secede from
	}

	name := p.StateName
	if _, taken := e.states[state.Key(name)]; taken {
		name = e.freeStateName(name)
	}

	rebel := state.NewState(name, origin.Ideology, p.Player)
	origin.RemoveMember(p.Player)
	delete(e.memberOf, p.Player)

	sec := origin.Sectors[p.OriginSector]
	if sec != nil {
		origin.DeleteSector(sec.Name)
		e.dropGiftsForSector(origin.Key(), p.OriginSector)
		sec.Governor = nil
		if sec.Location == nil {
			l := loc
			sec.Location = &l
		}
	} else {
		// Rebellion sector was lost in the meantime; found fresh at loc.
		sec = e.newSector(p.SectorName, loc)
	}
	rebel.AddSector(sec)
	rebel.Capital = state.Key(sec.Name)
	e.registerState(rebel)

	// The origin may have entered a war while the placement was pending;
	// the secession still completes, but the failed declaration is reported
	// rather than swallowed.
	war := e.startWar(rebel, origin, true)
	e.emit("diplomacy", fmt.Sprintf("%s seceded from %s, founding %s", p.Player, origin.Name, rebel.Name), map[string]any{
		"origin":      origin.Name,
		"rebel":       rebel.Name,
		"sector":      sec.Name,
		"captain":     string(p.Player),
		"war_started": war.Status == StartWarOK,
	})

	return &PlacementResult{
		Kind:        state.PlacementCivilWar,
		StateName:   rebel.Name,
		SectorName:  sec.Name,
		IsCapital:   true,
		NewState:    true,
		OriginState: origin.Name,
		WarStarted:  war.Status == StartWarOK,
	}
}
