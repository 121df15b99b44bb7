// Membership workflows: founding, placement completion, invites, join
// requests, leaving, kicking, and state deletion.
package engine

import (
	"fmt"

	"github.com/talgya/statecraft/internal/state"
)

// CreateStateStatus is the outcome of a founding attempt.
type CreateStateStatus int

const (
	CreateStateOK CreateStateStatus = iota
	CreateStateAlreadyInState
	CreateStateAlreadyPending
	CreateStateNoItem
	CreateStateNameTaken
	CreateStateInvalidName
)

// String returns the outcome label.
func (s CreateStateStatus) String() string {
	switch s {
	case CreateStateOK:
		return "OK"
	case CreateStateAlreadyInState:
		return "ALREADY_IN_STATE"
	case CreateStateAlreadyPending:
		return "ALREADY_PENDING"
	case CreateStateNoItem:
		return "NO_ITEM"
	case CreateStateNameTaken:
		return "NAME_TAKEN"
	case CreateStateInvalidName:
		return "INVALID_NAME"
	default:
		return "UNKNOWN"
	}
}

// CreateStateResult reports the founding outcome. On OK the state does not
// exist yet; it materializes when the pending placement completes.
type CreateStateResult struct {
	Status    CreateStateStatus
	StateName string
	ItemID    string // placement item required to complete
}

// CreateState begins founding a new state. The state record and its capital
// sector materialize only when CompletePendingPlacement resolves the
// registered placement.
func (e *Engine) CreateState(founder state.PlayerID, name, ideology string) CreateStateResult {
	e.mu.Lock()
	defer e.mu.Unlock()

	if state.Key(name) == "" {
		return CreateStateResult{Status: CreateStateInvalidName}
	}
	if e.stateOf(founder) != nil {
		return CreateStateResult{Status: CreateStateAlreadyInState}
	}
	if p, ok := e.placements[founder]; ok && !p.Expired(e.now()) {
		return CreateStateResult{Status: CreateStateAlreadyPending}
	}
	if _, taken := e.states[state.Key(name)]; taken {
		return CreateStateResult{Status: CreateStateNameTaken}
	}
	if !e.hasItem(founder, e.cfg.FoundingItem) {
		return CreateStateResult{Status: CreateStateNoItem}
	}

	now := e.now()
	e.placements[founder] = &state.PendingCampPlacement{
		Player:     founder,
		Kind:       state.PlacementFoundState,
		StateName:  name,
		SectorName: name, // capital sector defaults to the state name
		Ideology:   ideology,
		ItemID:     e.cfg.FoundingItem,
		CreatedAt:  now,
		ExpiresAt:  now.Add(e.cfg.PlacementExpiry),
	}
	return CreateStateResult{Status: CreateStateOK, StateName: name, ItemID: e.cfg.FoundingItem}
}

// PrepareSectorStatus is the outcome of staging an additional sector.
type PrepareSectorStatus int

const (
	PrepareSectorOK PrepareSectorStatus = iota
	PrepareSectorNotInState
	PrepareSectorNotAuthorized
	PrepareSectorAlreadyPending
	PrepareSectorNoItem
	PrepareSectorNameTaken
	PrepareSectorInvalidName
)

// String returns the outcome label.
func (s PrepareSectorStatus) String() string {
	switch s {
	case PrepareSectorOK:
		return "OK"
	case PrepareSectorNotInState:
		return "NOT_IN_STATE"
	case PrepareSectorNotAuthorized:
		return "NOT_AUTHORIZED"
	case PrepareSectorAlreadyPending:
		return "ALREADY_PENDING"
	case PrepareSectorNoItem:
		return "NO_ITEM"
	case PrepareSectorNameTaken:
		return "NAME_TAKEN"
	case PrepareSectorInvalidName:
		return "INVALID_NAME"
	default:
		return "UNKNOWN"
	}
}

// PrepareNewSector stages a placement for an additional sector of the
// player's state. Captain-only.
func (e *Engine) PrepareNewSector(p state.PlayerID, sectorName string) PrepareSectorStatus {
	e.mu.Lock()
	defer e.mu.Unlock()

	if state.Key(sectorName) == "" {
		return PrepareSectorInvalidName
	}
	st := e.stateOf(p)
	if st == nil {
		return PrepareSectorNotInState
	}
	if st.Captain != p {
		return PrepareSectorNotAuthorized
	}
	if pending, ok := e.placements[p]; ok && !pending.Expired(e.now()) {
		return PrepareSectorAlreadyPending
	}
	if st.Sector(sectorName) != nil {
		return PrepareSectorNameTaken
	}
	if !e.hasItem(p, e.cfg.FoundingItem) {
		return PrepareSectorNoItem
	}

	now := e.now()
	e.placements[p] = &state.PendingCampPlacement{
		Player:     p,
		Kind:       state.PlacementNewSector,
		StateName:  st.Key(),
		SectorName: sectorName,
		ItemID:     e.cfg.FoundingItem,
		CreatedAt:  now,
		ExpiresAt:  now.Add(e.cfg.PlacementExpiry),
	}
	return PrepareSectorOK
}

// PlacementResult reports what a completed placement created. Nil when the
// player had no pending placement (the call is an idempotent no-op).
type PlacementResult struct {
	Kind       state.PlacementKind
	StateName  string
	SectorName string
	IsCapital  bool
	NewState   bool

	// Civil war completions carry the lineage for war bookkeeping.
	// WarStarted is false when the origin entered another war while the
	// placement was pending.
	OriginState string
	WarStarted  bool
}

// CompletePendingPlacement resolves the player's pending placement into a
// concrete sector (and camp at full HP) anchored at loc. Founding placements
// create the state itself, with the new sector as capital. Returns nil when
// no live placement exists.
func (e *Engine) CompletePendingPlacement(p state.PlayerID, loc state.Location) *PlacementResult {
	e.mu.Lock()
	defer e.mu.Unlock()

	pending, ok := e.placements[p]
	if !ok {
		return nil
	}
	now := e.now()
	if pending.Expired(now) {
		delete(e.placements, p)
		return nil
	}
	if pending.ItemID != "" && !e.consumeItem(p, pending.ItemID) {
		// Item gone since staging; the placement stays pending.
		return nil
	}
	delete(e.placements, p)

	switch pending.Kind {
	case state.PlacementFoundState:
		return e.completeFounding(pending, loc)
	case state.PlacementCivilWar:
		return e.completeSecession(pending, loc)
	default:
		return e.completeNewSector(pending, loc)
	}
}

// completeFounding materializes the state and its capital sector. Caller
// holds e.mu.
func (e *Engine) completeFounding(p *state.PendingCampPlacement, loc state.Location) *PlacementResult {
	// The name may have been claimed while the placement was pending.
	name := p.StateName
	if _, taken := e.states[state.Key(name)]; taken {
		name = e.freeStateName(name)
	}
	st := state.NewState(name, p.Ideology, p.Player)
	sec := e.newSector(p.SectorName, loc)
	st.AddSector(sec)
	st.Capital = state.Key(sec.Name)
	e.registerState(st)

	e.emit("membership", fmt.Sprintf("%s founded the state of %s", p.Player, st.Name), map[string]any{
		"state":   st.Name,
		"sector":  sec.Name,
		"capital": sec.Name,
		"captain": string(p.Player),
	})
	return &PlacementResult{
		Kind:       state.PlacementFoundState,
		StateName:  st.Name,
		SectorName: sec.Name,
		IsCapital:  true,
		NewState:   true,
	}
}

// completeNewSector anchors an additional sector. Caller holds e.mu.
func (e *Engine) completeNewSector(p *state.PendingCampPlacement, loc state.Location) *PlacementResult {
	st := e.states[p.StateName]
	if st == nil {
		return nil // state deleted while pending
	}
	name := p.SectorName
	if st.Sector(name) != nil {
		name = freeSectorName(st, name)
	}
	sec := e.newSector(name, loc)
	st.AddSector(sec)
	isCapital := false
	if st.Capital == "" {
		st.Capital = state.Key(sec.Name)
		isCapital = true
	}

	e.emit("territory", fmt.Sprintf("%s claimed the sector %s", st.Name, sec.Name), map[string]any{
		"state":   st.Name,
		"sector":  sec.Name,
		"capital": isCapital,
	})
	return &PlacementResult{
		Kind:       state.PlacementNewSector,
		StateName:  st.Name,
		SectorName: sec.Name,
		IsCapital:  isCapital,
	}
}

// newSector builds a placed sector with a fresh camp. Caller holds e.mu.
func (e *Engine) newSector(name string, loc state.Location) *state.Sector {
	l := loc
	return &state.Sector{
		Name:     name,
		Location: &l,
		Boundary: state.Boundary{HalfX: e.cfg.SectorHalfX, HalfZ: e.cfg.SectorHalfZ},
		Camp:     &state.Camp{HP: e.cfg.CampMaxHP, MaxHP: e.cfg.CampMaxHP},
	}
}

// freeStateName appends a numeric suffix until the name is unclaimed.
// Caller holds e.mu.
func (e *Engine) freeStateName(base string) string {
	for i := 2; ; i++ {
		candidate := fmt.Sprintf("%s-%d", base, i)
		if _, taken := e.states[state.Key(candidate)]; !taken {
			return candidate
		}
	}
}

// freeSectorName appends a numeric suffix until the name is free within the
// state.
func freeSectorName(st *state.State, base string) string {
	for i := 2; ; i++ {
		candidate := fmt.Sprintf("%s-%d", base, i)
		if st.Sector(candidate) == nil {
			return candidate
		}
	}
}

// CancelPendingPlacement drops the player's pending placement, if any.
// Returns true when one was removed.
func (e *Engine) CancelPendingPlacement(p state.PlayerID) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, ok := e.placements[p]; !ok {
		return false
	}
	delete(e.placements, p)
	return true
}

// InviteStatus is the outcome of sending a membership invite.
type InviteStatus int

const (
	InviteOK InviteStatus = iota
	InviteNotCaptain
	InviteTargetInState
	InviteAlreadyInvited
	InviteSelf
)

// String returns the outcome label.
func (s InviteStatus) String() string {
	switch s {
	case InviteOK:
		return "OK"
	case InviteNotCaptain:
		return "NOT_CAPTAIN"
	case InviteTargetInState:
		return "TARGET_IN_STATE"
	case InviteAlreadyInvited:
		return "ALREADY_INVITED"
	case InviteSelf:
		return "SELF"
	default:
		return "UNKNOWN"
	}
}

// Invite offers membership to a player. One outstanding invite per target.
func (e *Engine) Invite(captain, target state.PlayerID) InviteStatus {
	e.mu.Lock()
	defer e.mu.Unlock()

	st := e.stateOf(captain)
	if st == nil || st.Captain != captain {
		return InviteNotCaptain
	}
	if captain == target {
		return InviteSelf
	}
	if e.stateOf(target) != nil {
		return InviteTargetInState
	}
	if inv, ok := e.invites[target]; ok && !inv.Expired(e.now()) {
		return InviteAlreadyInvited
	}

	now := e.now()
	e.invites[target] = &state.Invite{
		StateKey:  st.Key(),
		Captain:   captain,
		Target:    target,
		CreatedAt: now,
		ExpiresAt: now.Add(e.cfg.InviteExpiry),
	}
	return InviteOK
}

// RespondInviteStatus is the outcome of accepting or denying an invite.
type RespondInviteStatus int

const (
	RespondInviteAccepted RespondInviteStatus = iota
	RespondInviteDenied
	RespondInviteNoInvite
	RespondInviteExpired
	RespondInviteAlreadyInState
	RespondInviteStateGone
)

// String returns the outcome label.
func (s RespondInviteStatus) String() string {
	switch s {
	case RespondInviteAccepted:
		return "ACCEPTED"
	case RespondInviteDenied:
		return "DENIED"
	case RespondInviteNoInvite:
		return "NO_INVITE"
	case RespondInviteExpired:
		return "EXPIRED"
	case RespondInviteAlreadyInState:
		return "ALREADY_IN_STATE"
	case RespondInviteStateGone:
		return "STATE_GONE"
	default:
		return "UNKNOWN"
	}
}

// AcceptInvite resolves the player's outstanding invite, joining the state
// if the player still has none.
func (e *Engine) AcceptInvite(target state.PlayerID) RespondInviteStatus {
	e.mu.Lock()
	defer e.mu.Unlock()

	inv, ok := e.invites[target]
	if !ok {
		return RespondInviteNoInvite
	}
	if inv.Expired(e.now()) {
		delete(e.invites, target)
		return RespondInviteExpired
	}
	delete(e.invites, target)

	if e.stateOf(target) != nil {
		return RespondInviteAlreadyInState
	}
	st, ok := e.states[inv.StateKey]
	if !ok {
		return RespondInviteStateGone
	}
	st.AddMember(target)
	e.memberOf[target] = st.Key()

	e.emit("membership", fmt.Sprintf("%s joined %s", target, st.Name), map[string]any{
		"state":  st.Name,
		"player": string(target),
	})
	return RespondInviteAccepted
}

// DenyInvite discards the player's outstanding invite.
func (e *Engine) DenyInvite(target state.PlayerID) RespondInviteStatus {
	e.mu.Lock()
	defer e.mu.Unlock()

	inv, ok := e.invites[target]
	if !ok {
		return RespondInviteNoInvite
	}
	delete(e.invites, target)
	if inv.Expired(e.now()) {
		return RespondInviteExpired
	}
	return RespondInviteDenied
}

// JoinRequestStatus is the outcome of requesting to join a state.
type JoinRequestStatus int

const (
	JoinRequestOK JoinRequestStatus = iota
	JoinRequestAlreadyInState
	JoinRequestStateNotFound
	JoinRequestAlreadyRequested
)

// String returns the outcome label.
func (s JoinRequestStatus) String() string {
	switch s {
	case JoinRequestOK:
		return "OK"
	case JoinRequestAlreadyInState:
		return "ALREADY_IN_STATE"
	case JoinRequestStateNotFound:
		return "STATE_NOT_FOUND"
	case JoinRequestAlreadyRequested:
		return "ALREADY_REQUESTED"
	default:
		return "UNKNOWN"
	}
}

// RequestJoin records a join request visible to the state's captain.
func (e *Engine) RequestJoin(p state.PlayerID, stateName string) JoinRequestStatus {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.stateOf(p) != nil {
		return JoinRequestAlreadyInState
	}
	st, ok := e.states[state.Key(stateName)]
	if !ok {
		return JoinRequestStateNotFound
	}
	if jr, ok := e.joinRequests[p]; ok && !jr.Expired(e.now()) {
		return JoinRequestAlreadyRequested
	}

	now := e.now()
	e.joinRequests[p] = &state.JoinRequest{
		Player:    p,
		StateKey:  st.Key(),
		CreatedAt: now,
		ExpiresAt: now.Add(e.cfg.JoinRequestExpiry),
	}
	return JoinRequestOK
}

// RespondJoinStatus is the outcome of resolving a join request.
type RespondJoinStatus int

const (
	RespondJoinAccepted RespondJoinStatus = iota
	RespondJoinDenied
	RespondJoinNotCaptain
	RespondJoinNoRequest
	RespondJoinExpired
	RespondJoinPlayerInState
)

// String returns the outcome label.
func (s RespondJoinStatus) String() string {
	switch s {
	case RespondJoinAccepted:
		return "ACCEPTED"
	case RespondJoinDenied:
		return "DENIED"
	case RespondJoinNotCaptain:
		return "NOT_CAPTAIN"
	case RespondJoinNoRequest:
		return "NO_REQUEST"
	case RespondJoinExpired:
		return "EXPIRED"
	case RespondJoinPlayerInState:
		return "PLAYER_IN_STATE"
	default:
		return "UNKNOWN"
	}
}

// RespondJoinRequest lets the captain accept or deny a pending join request
// aimed at their state.
func (e *Engine) RespondJoinRequest(captain state.PlayerID, accept bool, player state.PlayerID) RespondJoinStatus {
	e.mu.Lock()
	defer e.mu.Unlock()

	st := e.stateOf(captain)
	if st == nil || st.Captain != captain {
		return RespondJoinNotCaptain
	}
	jr, ok := e.joinRequests[player]
	if !ok || jr.StateKey != st.Key() {
		return RespondJoinNoRequest
	}
	if jr.Expired(e.now()) {
		delete(e.joinRequests, player)
		return RespondJoinExpired
	}
	delete(e.joinRequests, player)

	if !accept {
		return RespondJoinDenied
	}
	if e.stateOf(player) != nil {
		return RespondJoinPlayerInState
	}
	st.AddMember(player)
	e.memberOf[player] = st.Key()

	e.emit("membership", fmt.Sprintf("%s joined %s", player, st.Name), map[string]any{
		"state":  st.Name,
		"player": string(player),
	})
	return RespondJoinAccepted
}

// LeaveStatus is the outcome of leaving a state.
type LeaveStatus int

const (
	LeaveOK LeaveStatus = iota
	LeaveNotInState
	LeaveIsCaptain
)

// String returns the outcome label.
func (s LeaveStatus) String() string {
	switch s {
	case LeaveOK:
		return "OK"
	case LeaveNotInState:
		return "NOT_IN_STATE"
	case LeaveIsCaptain:
		return "IS_CAPTAIN"
	default:
		return "UNKNOWN"
	}
}

// LeaveState removes the player from their state. Captains cannot leave;
// they must delete the state or transfer it first.
func (e *Engine) LeaveState(p state.PlayerID) LeaveStatus {
	e.mu.Lock()
	defer e.mu.Unlock()

	st := e.stateOf(p)
	if st == nil {
		return LeaveNotInState
	}
	if st.Captain == p {
		return LeaveIsCaptain
	}
	st.RemoveMember(p)
	delete(e.memberOf, p)

	e.emit("membership", fmt.Sprintf("%s left %s", p, st.Name), map[string]any{
		"state":  st.Name,
		"player": string(p),
	})
	return LeaveOK
}

// KickStatus is the outcome of kicking a member.
type KickStatus int

const (
	KickOK KickStatus = iota
	KickNotCaptain
	KickNotMember
	KickIsCaptain
)

// String returns the outcome label.
func (s KickStatus) String() string {
	switch s {
	case KickOK:
		return "OK"
	case KickNotCaptain:
		return "NOT_CAPTAIN"
	case KickNotMember:
		return "NOT_MEMBER"
	case KickIsCaptain:
		return "IS_CAPTAIN"
	default:
		return "UNKNOWN"
	}
}

// KickMember removes a member from the captain's state, clearing any
// governor assignment they held.
func (e *Engine) KickMember(captain, target state.PlayerID) KickStatus {
	e.mu.Lock()
	defer e.mu.Unlock()

	st := e.stateOf(captain)
	if st == nil || st.Captain != captain {
		return KickNotCaptain
	}
	if target == captain {
		return KickIsCaptain
	}
	if !st.HasMember(target) {
		return KickNotMember
	}
	st.RemoveMember(target)
	delete(e.memberOf, target)

	e.emit("membership", fmt.Sprintf("%s was removed from %s", target, st.Name), map[string]any{
		"state":  st.Name,
		"player": string(target),
	})
	return KickOK
}

// DeleteStateStatus is the outcome of dissolving a state.
type DeleteStateStatus int

const (
	DeleteStateOK DeleteStateStatus = iota
	DeleteStateNotCaptain
)

// String returns the outcome label.
func (s DeleteStateStatus) String() string {
	switch s {
	case DeleteStateOK:
		return "OK"
	case DeleteStateNotCaptain:
		return "NOT_CAPTAIN"
	default:
		return "UNKNOWN"
	}
}

// DeleteState dissolves the captain's state, cascading to every record that
// references it.
func (e *Engine) DeleteState(captain state.PlayerID) DeleteStateStatus {
	e.mu.Lock()
	defer e.mu.Unlock()

	st := e.stateOf(captain)
	if st == nil || st.Captain != captain {
		return DeleteStateNotCaptain
	}
	e.removeState(st)

	e.emit("membership", fmt.Sprintf("the state of %s was dissolved", st.Name), map[string]any{
		"state":   st.Name,
		"captain": string(captain),
		"members": len(st.Members),
	})
	return DeleteStateOK
}

// AdminDeleteState dissolves a state by name, independent of captaincy.
// Returns false if no such state exists.
func (e *Engine) AdminDeleteState(name string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	st, ok := e.states[state.Key(name)]
	if !ok {
		return false
	}
	e.removeState(st)
	e.emit("membership", fmt.Sprintf("the state of %s was dissolved by an administrator", st.Name), map[string]any{
		"state": st.Name,
	})
	return true
}
