// Governor assignment and sector administration.
package engine

import (
	"fmt"

	"github.com/talgya/statecraft/internal/state"
)

// AssignGovernorStatus is the outcome of delegating a sector.
type AssignGovernorStatus int

const (
	AssignGovernorOK AssignGovernorStatus = iota
	AssignGovernorNotCaptain
	AssignGovernorPlayerNotFound
	AssignGovernorNotMember
	AssignGovernorSectorNotFound
	AssignGovernorAlreadyAssigned
)

// String returns the outcome label.
func (s AssignGovernorStatus) String() string {
	switch s {
	case AssignGovernorOK:
		return "OK"
	case AssignGovernorNotCaptain:
		return "NOT_CAPTAIN"
	case AssignGovernorPlayerNotFound:
		return "PLAYER_NOT_FOUND"
	case AssignGovernorNotMember:
		return "NOT_MEMBER"
	case AssignGovernorSectorNotFound:
		return "SECTOR_NOT_FOUND"
	case AssignGovernorAlreadyAssigned:
		return "ALREADY_ASSIGNED"
	default:
		return "UNKNOWN"
	}
}

// AssignGovernorResult reports the assignment plus any prior assignment that
// was displaced, for collaborator notification.
type AssignGovernorResult struct {
	Status AssignGovernorStatus

	// PreviousSector is the sector the player governed before, cleared by
	// this assignment. Empty when none.
	PreviousSector string

	// ReplacedGovernor is the member who previously governed the target
	// sector. Empty when none.
	ReplacedGovernor state.PlayerID
}

// AssignGovernor delegates a sector to a member. Replaces any previous
// governor of that sector; if the player governed a different sector, that
// assignment is cleared and reported back.
func (e *Engine) AssignGovernor(captain state.PlayerID, player state.PlayerID, sectorName string) AssignGovernorResult {
	e.mu.Lock()
	defer e.mu.Unlock()

	st := e.stateOf(captain)
	if st == nil || st.Captain != captain {
		return AssignGovernorResult{Status: AssignGovernorNotCaptain}
	}
	if player == "" {
		return AssignGovernorResult{Status: AssignGovernorPlayerNotFound}
	}
	if !st.HasMember(player) {
		return AssignGovernorResult{Status: AssignGovernorNotMember}
	}
	sec := st.Sector(sectorName)
	if sec == nil {
		return AssignGovernorResult{Status: AssignGovernorSectorNotFound}
	}
	if sec.Governor != nil && *sec.Governor == player {
		return AssignGovernorResult{Status: AssignGovernorAlreadyAssigned}
	}

	res := AssignGovernorResult{Status: AssignGovernorOK}
	if sec.Governor != nil {
		res.ReplacedGovernor = *sec.Governor
	}
	if prev := st.ClearGovernorOf(player); prev != nil {
		res.PreviousSector = prev.Name
	}
	p := player
	sec.Governor = &p

	e.emit("territory", fmt.Sprintf("%s now governs %s of %s", player, sec.Name, st.Name), map[string]any{
		"state":    st.Name,
		"sector":   sec.Name,
		"governor": string(player),
	})
	return res
}

// RemoveGovernorStatus is the outcome of clearing a governor.
type RemoveGovernorStatus int

const (
	RemoveGovernorOK RemoveGovernorStatus = iota
	RemoveGovernorNotCaptain
	RemoveGovernorPlayerNotFound
	RemoveGovernorNotGovernor
)

// String returns the outcome label.
func (s RemoveGovernorStatus) String() string {
	switch s {
	case RemoveGovernorOK:
		return "OK"
	case RemoveGovernorNotCaptain:
		return "NOT_CAPTAIN"
	case RemoveGovernorPlayerNotFound:
		return "PLAYER_NOT_FOUND"
	case RemoveGovernorNotGovernor:
		return "NOT_GOVERNOR"
	default:
		return "UNKNOWN"
	}
}

// RemoveGovernorResult reports which sector lost its governor.
type RemoveGovernorResult struct {
	Status RemoveGovernorStatus
	Sector string
}

// RemoveGovernor clears the player's governor assignment in the captain's
// state.
func (e *Engine) RemoveGovernor(captain state.PlayerID, player state.PlayerID) RemoveGovernorResult {
	e.mu.Lock()
	defer e.mu.Unlock()

	st := e.stateOf(captain)
	if st == nil || st.Captain != captain {
		return RemoveGovernorResult{Status: RemoveGovernorNotCaptain}
	}
	if player == "" {
		return RemoveGovernorResult{Status: RemoveGovernorPlayerNotFound}
	}
	sec := st.GovernorOf(player)
	if sec == nil {
		return RemoveGovernorResult{Status: RemoveGovernorNotGovernor}
	}
	sec.Governor = nil

	e.emit("territory", fmt.Sprintf("%s no longer governs %s of %s", player, sec.Name, st.Name), map[string]any{
		"state":  st.Name,
		"sector": sec.Name,
		"player": string(player),
	})
	return RemoveGovernorResult{Status: RemoveGovernorOK, Sector: sec.Name}
}

// RemoveSectorStatus is the outcome of removing a sector claim.
type RemoveSectorStatus int

const (
	RemoveSectorOK RemoveSectorStatus = iota
	RemoveSectorNotAuthorized
	RemoveSectorNotFound
	RemoveSectorCapital
)

// String returns the outcome label.
func (s RemoveSectorStatus) String() string {
	switch s {
	case RemoveSectorOK:
		return "OK"
	case RemoveSectorNotAuthorized:
		return "NOT_AUTHORIZED"
	case RemoveSectorNotFound:
		return "NOT_FOUND"
	case RemoveSectorCapital:
		return "CAPITAL_SECTOR"
	default:
		return "UNKNOWN"
	}
}

// RemoveSectorResult reports the removal and any capital promotion that
// followed it.
type RemoveSectorResult struct {
	Status RemoveSectorStatus
	Sector string

	// NewCapital is set when removal left the state without a capital and
	// the oldest remaining sector was promoted. Empty otherwise.
	NewCapital string
}

// RemoveSector unclaims a sector. The requester must be the captain or that
// sector's own governor. Capital sectors are removal-protected.
func (e *Engine) RemoveSector(requester state.PlayerID, sectorName string) RemoveSectorResult {
	e.mu.Lock()
	defer e.mu.Unlock()

	st := e.stateOf(requester)
	if st == nil {
		return RemoveSectorResult{Status: RemoveSectorNotAuthorized}
	}
	sec := st.Sector(sectorName)
	if sec == nil {
		return RemoveSectorResult{Status: RemoveSectorNotFound}
	}
	isGovernor := sec.Governor != nil && *sec.Governor == requester
	if st.Captain != requester && !isGovernor {
		return RemoveSectorResult{Status: RemoveSectorNotAuthorized}
	}
	if st.Capital == state.Key(sec.Name) {
		return RemoveSectorResult{Status: RemoveSectorCapital}
	}

	st.DeleteSector(sec.Name)
	e.dropGiftsForSector(st.Key(), state.Key(sec.Name))

	res := RemoveSectorResult{Status: RemoveSectorOK, Sector: sec.Name}
	if st.Capital == "" && len(st.SectorOrder) > 0 {
		st.Capital = st.SectorOrder[0]
		res.NewCapital = st.Sectors[st.Capital].Name
	}

	e.emit("territory", fmt.Sprintf("%s unclaimed the sector %s", st.Name, sec.Name), map[string]any{
		"state":       st.Name,
		"sector":      sec.Name,
		"new_capital": res.NewCapital,
	})
	return res
}

// TeleportStatus is the outcome of resolving a sector anchor for travel.
type TeleportStatus int

const (
	TeleportOK TeleportStatus = iota
	TeleportNotInState
	TeleportSectorNotFound
	TeleportNotPlaced
)

// String returns the outcome label.
func (s TeleportStatus) String() string {
	switch s {
	case TeleportOK:
		return "OK"
	case TeleportNotInState:
		return "NOT_IN_STATE"
	case TeleportSectorNotFound:
		return "SECTOR_NOT_FOUND"
	case TeleportNotPlaced:
		return "NOT_PLACED"
	default:
		return "UNKNOWN"
	}
}

// TeleportResult carries the anchor location for the command layer to
// execute the actual movement.
type TeleportResult struct {
	Status   TeleportStatus
	Location state.Location
}

// TeleportToSector resolves the world anchor of one of the player's state's
// sectors. Movement itself is a collaborator concern.
func (e *Engine) TeleportToSector(p state.PlayerID, sectorName string) TeleportResult {
	e.mu.Lock()
	defer e.mu.Unlock()

	st := e.stateOf(p)
	if st == nil {
		return TeleportResult{Status: TeleportNotInState}
	}
	sec := st.Sector(sectorName)
	if sec == nil {
		return TeleportResult{Status: TeleportSectorNotFound}
	}
	if !sec.Placed() {
		return TeleportResult{Status: TeleportNotPlaced}
	}
	return TeleportResult{Status: TeleportOK, Location: *sec.Location}
}
