// Diplomacy state machine: Peace → Condemned → AtWar → (Surrender-Pending)
// → Peace, with a post-war cooldown blocking re-declaration. Disallowed
// transitions never mutate; they only return a typed outcome.
package engine

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/talgya/statecraft/internal/state"
)

// CondemnStatus is the outcome of declaring intent to war.
type CondemnStatus int

const (
	CondemnOK CondemnStatus = iota
	CondemnNotCaptain
	CondemnTargetNotFound
	CondemnSelfTarget
	CondemnNoFuel
	CondemnAlreadyAtWar
	CondemnAlreadyCondemned
	CondemnAlreadyCondemnedOther
	CondemnCooldown
)

// String returns the outcome label.
func (s CondemnStatus) String() string {
	switch s {
	case CondemnOK:
		return "OK"
	case CondemnNotCaptain:
		return "NOT_CAPTAIN"
	case CondemnTargetNotFound:
		return "TARGET_NOT_FOUND"
	case CondemnSelfTarget:
		return "SELF_TARGET"
	case CondemnNoFuel:
		return "NO_FUEL"
	case CondemnAlreadyAtWar:
		return "ALREADY_AT_WAR"
	case CondemnAlreadyCondemned:
		return "ALREADY_CONDEMNED"
	case CondemnAlreadyCondemnedOther:
		return "ALREADY_CONDEMNED_OTHER"
	case CondemnCooldown:
		return "COOLDOWN"
	default:
		return "UNKNOWN"
	}
}

// CondemnResult reports the outcome. Remaining carries the time until
// maturation (OK, ALREADY_CONDEMNED) or until the cooldown clears
// (COOLDOWN). ExistingTarget names the already-condemned state on
// ALREADY_CONDEMNED_OTHER.
type CondemnResult struct {
	Status         CondemnStatus
	Remaining      time.Duration
	ExistingTarget string
}

// Condemn declares the captain's state's intent to war on the target. War
// may only be declared after the maturation delay and only against this
// target. Requires fuel in the attacker's capital camp.
func (e *Engine) Condemn(captain state.PlayerID, targetStateName string) CondemnResult {
	e.mu.Lock()
	defer e.mu.Unlock()

	attacker := e.stateOf(captain)
	if attacker == nil || attacker.Captain != captain {
		return CondemnResult{Status: CondemnNotCaptain}
	}
	target := e.states[state.Key(targetStateName)]
	if target == nil {
		return CondemnResult{Status: CondemnTargetNotFound}
	}
	if target.Key() == attacker.Key() {
		return CondemnResult{Status: CondemnSelfTarget}
	}
	if e.warBetween(attacker.Key(), target.Key()) != nil {
		return CondemnResult{Status: CondemnAlreadyAtWar}
	}
	if rem := e.cooldownRemaining(attacker.Key()); rem > 0 {
		return CondemnResult{Status: CondemnCooldown, Remaining: rem}
	}

	now := e.now()
	if c, ok := e.condemnations[attacker.Key()]; ok && !c.Expired(now) {
		if c.Target == target.Key() {
			rem := c.MaturesAt.Sub(now)
			if rem < 0 {
				rem = 0
			}
			return CondemnResult{Status: CondemnAlreadyCondemned, Remaining: rem}
		}
		existing := c.Target
		if ts, ok := e.states[c.Target]; ok {
			existing = ts.Name
		}
		return CondemnResult{Status: CondemnAlreadyCondemnedOther, ExistingTarget: existing}
	}

	capital := attacker.CapitalSector()
	if capital == nil || capital.Camp == nil || capital.Camp.Fuel <= 0 {
		return CondemnResult{Status: CondemnNoFuel}
	}

	e.condemnations[attacker.Key()] = &state.Condemnation{
		Attacker:  attacker.Key(),
		Target:    target.Key(),
		CreatedAt: now,
		MaturesAt: now.Add(e.cfg.CondemnMaturation),
		ExpiresAt: now.Add(e.cfg.CondemnExpiry),
	}

	e.emit("diplomacy", fmt.Sprintf("%s condemned %s", attacker.Name, target.Name), map[string]any{
		"attacker":   attacker.Name,
		"target":     target.Name,
		"matures_in": e.cfg.CondemnMaturation.String(),
	})
	return CondemnResult{Status: CondemnOK, Remaining: e.cfg.CondemnMaturation}
}

// StartWarStatus is the outcome of declaring war.
type StartWarStatus int

const (
	StartWarOK StartWarStatus = iota
	StartWarNotCaptain
	StartWarTargetNotFound
	StartWarSelfTarget
	StartWarAlreadyAtWar
	StartWarCooldown
	StartWarAttackerBusy
	StartWarNoCondemnation
	StartWarCondemnationPending
	StartWarCondemnationWrongTarget
	StartWarRequirements
	StartWarCivilWarPending
)

// String returns the outcome label.
func (s StartWarStatus) String() string {
	switch s {
	case StartWarOK:
		return "OK"
	case StartWarNotCaptain:
		return "NOT_CAPTAIN"
	case StartWarTargetNotFound:
		return "TARGET_NOT_FOUND"
	case StartWarSelfTarget:
		return "SELF_TARGET"
	case StartWarAlreadyAtWar:
		return "ALREADY_AT_WAR"
	case StartWarCooldown:
		return "COOLDOWN"
	case StartWarAttackerBusy:
		return "ATTACKER_BUSY"
	case StartWarNoCondemnation:
		return "NO_CONDEMNATION"
	case StartWarCondemnationPending:
		return "CONDEMNATION_PENDING"
	case StartWarCondemnationWrongTarget:
		return "CONDEMNATION_WRONG_TARGET"
	case StartWarRequirements:
		return "REQUIREMENTS"
	case StartWarCivilWarPending:
		return "CIVIL_WAR_PENDING"
	default:
		return "UNKNOWN"
	}
}

// WarRequirements reports required versus current thresholds when war is
// refused with REQUIREMENTS.
type WarRequirements struct {
	MembersRequired int
	SectorsRequired int
	MembersCurrent  int
	SectorsCurrent  int
}

// StartWarResult reports the declaration outcome.
type StartWarResult struct {
	Status       StartWarStatus
	Remaining    time.Duration // cooldown or maturation remainder
	Requirements WarRequirements
}

// StartWar declares war on the target. A matured condemnation naming
// exactly this target must exist unless civilWar bypasses it. Either side
// already being in any war refuses the declaration.
func (e *Engine) StartWar(captain state.PlayerID, targetStateName string, civilWar bool) StartWarResult {
	e.mu.Lock()
	defer e.mu.Unlock()

	attacker := e.stateOf(captain)
	if attacker == nil || attacker.Captain != captain {
		return StartWarResult{Status: StartWarNotCaptain}
	}
	target := e.states[state.Key(targetStateName)]
	if target == nil {
		return StartWarResult{Status: StartWarTargetNotFound}
	}
	if target.Key() == attacker.Key() {
		return StartWarResult{Status: StartWarSelfTarget}
	}
	return e.startWar(attacker, target, civilWar)
}

// startWar runs the declaration checks and creates the war record. Caller
// holds e.mu.
func (e *Engine) startWar(attacker, target *state.State, civilWar bool) StartWarResult {
	if e.warFor(attacker.Key()) != nil || e.warFor(target.Key()) != nil {
		return StartWarResult{Status: StartWarAlreadyAtWar}
	}
	if rem := e.cooldownRemaining(attacker.Key()); rem > 0 {
		return StartWarResult{Status: StartWarCooldown, Remaining: rem}
	}
	if _, busy := e.surrenders[attacker.Key()]; busy {
		return StartWarResult{Status: StartWarAttackerBusy}
	}

	now := e.now()
	if civilWar {
		for _, w := range e.wars {
			if w.CivilWar && w.Involves(target.Key()) {
				return StartWarResult{Status: StartWarCivilWarPending}
			}
		}
	} else {
		c, ok := e.condemnations[attacker.Key()]
		if ok && c.Expired(now) {
			delete(e.condemnations, attacker.Key())
			ok = false
		}
		if !ok {
			return StartWarResult{Status: StartWarNoCondemnation}
		}
		if c.Target != target.Key() {
			return StartWarResult{Status: StartWarCondemnationWrongTarget}
		}
		if !c.Matured(now) {
			return StartWarResult{Status: StartWarCondemnationPending, Remaining: c.MaturesAt.Sub(now)}
		}

		req := WarRequirements{
			MembersRequired: e.cfg.WarMinMembers,
			SectorsRequired: e.cfg.WarMinSectors,
			MembersCurrent:  len(attacker.Members),
			SectorsCurrent:  len(attacker.Sectors),
		}
		if req.MembersCurrent < req.MembersRequired || req.SectorsCurrent < req.SectorsRequired {
			return StartWarResult{Status: StartWarRequirements, Requirements: req}
		}
		delete(e.condemnations, attacker.Key())
	}

	e.wars = append(e.wars, &state.WarRecord{
		Declarer:  attacker.Key(),
		Defender:  target.Key(),
		StartedAt: now,
		CivilWar:  civilWar,
	})
	e.gravesSuspend(attacker)
	e.gravesSuspend(target)

	kind := "war"
	if civilWar {
		kind = "civil war"
	}
	e.emit("diplomacy", fmt.Sprintf("%s declared %s on %s", attacker.Name, kind, target.Name), map[string]any{
		"declarer":  attacker.Name,
		"defender":  target.Name,
		"civil_war": civilWar,
	})
	return StartWarResult{Status: StartWarOK}
}

// AdminStopWar immediately terminates the war between the two named states,
// bypassing surrender negotiation. Returns the dissolved record, or nil if
// no such war exists.
func (e *Engine) AdminStopWar(stateA, stateB string) *state.WarRecord {
	e.mu.Lock()
	defer e.mu.Unlock()

	w := e.warBetween(state.Key(stateA), state.Key(stateB))
	if w == nil {
		return nil
	}
	e.endWar(w, "administrator order")
	cp := *w
	return &cp
}

// endWar removes the record, starts cooldowns for both sides, and restores
// inventory rules for any side with no remaining wars. Caller holds e.mu.
func (e *Engine) endWar(w *state.WarRecord, reason string) {
	for i, cur := range e.wars {
		if cur == w {
			e.wars = append(e.wars[:i], e.wars[i+1:]...)
			break
		}
	}
	until := e.now().Add(e.cfg.WarCooldown)
	e.cooldowns[w.Declarer] = until
	e.cooldowns[w.Defender] = until
	e.gravesRestoreIfIdle(w.Declarer)
	e.gravesRestoreIfIdle(w.Defender)

	declarer, defender := w.Declarer, w.Defender
	if st, ok := e.states[declarer]; ok {
		declarer = st.Name
	}
	if st, ok := e.states[defender]; ok {
		defender = st.Name
	}
	e.emit("diplomacy", fmt.Sprintf("the war between %s and %s has ended (%s)", declarer, defender, reason), map[string]any{
		"declarer":  declarer,
		"defender":  defender,
		"civil_war": w.CivilWar,
		"reason":    reason,
	})
}

// SurrenderStatus is the outcome of offering surrender.
type SurrenderStatus int

const (
	SurrenderOK SurrenderStatus = iota
	SurrenderNotCaptain
	SurrenderNotAtWar
	SurrenderNotPrimary
	SurrenderCaptainOffline
	SurrenderPendingSelf
	SurrenderPendingOther
)

// String returns the outcome label.
func (s SurrenderStatus) String() string {
	switch s {
	case SurrenderOK:
		return "OK"
	case SurrenderNotCaptain:
		return "NOT_CAPTAIN"
	case SurrenderNotAtWar:
		return "NOT_AT_WAR"
	case SurrenderNotPrimary:
		return "NOT_PRIMARY"
	case SurrenderCaptainOffline:
		return "CAPTAIN_OFFLINE"
	case SurrenderPendingSelf:
		return "PENDING_SELF"
	case SurrenderPendingOther:
		return "PENDING_OTHER"
	default:
		return "UNKNOWN"
	}
}

// SurrenderResult reports the offer outcome. Remaining carries the
// outstanding offer's time left on PENDING_SELF and the new offer's
// lifetime on OK.
type SurrenderResult struct {
	Status    SurrenderStatus
	Remaining time.Duration
}

// RequestSurrender offers to end the captain's state's current war. In a
// civil war only the seceding side may sue for peace; the opponent's
// captain must be online to receive the offer.
func (e *Engine) RequestSurrender(captain state.PlayerID) SurrenderResult {
	e.mu.Lock()
	defer e.mu.Unlock()

	st := e.stateOf(captain)
	if st == nil || st.Captain != captain {
		return SurrenderResult{Status: SurrenderNotCaptain}
	}
	w := e.warFor(st.Key())
	if w == nil {
		return SurrenderResult{Status: SurrenderNotAtWar}
	}
	// Civil wars are resolved by the rebellion: only the seceding declarer
	// may sue for peace.
	if w.CivilWar && w.Declarer != st.Key() {
		return SurrenderResult{Status: SurrenderNotPrimary}
	}
	oppKey := w.Opponent(st.Key())
	opp := e.states[oppKey]
	if opp != nil && !e.online(opp.Captain) {
		return SurrenderResult{Status: SurrenderCaptainOffline}
	}

	now := e.now()
	if r, ok := e.surrenders[st.Key()]; ok {
		if !r.Expired(now) {
			return SurrenderResult{Status: SurrenderPendingSelf, Remaining: r.ExpiresAt.Sub(now)}
		}
		delete(e.surrenders, st.Key())
	}
	if r, ok := e.surrenders[oppKey]; ok && !r.Expired(now) && r.Opponent == st.Key() {
		return SurrenderResult{Status: SurrenderPendingOther}
	}

	e.surrenders[st.Key()] = &state.SurrenderRequest{
		ID:        uuid.NewString(),
		Initiator: st.Key(),
		Opponent:  oppKey,
		CreatedAt: now,
		ExpiresAt: now.Add(e.cfg.SurrenderExpiry),
	}

	oppName := oppKey
	if opp != nil {
		oppName = opp.Name
	}
	e.emit("diplomacy", fmt.Sprintf("%s sued for peace with %s", st.Name, oppName), map[string]any{
		"initiator": st.Name,
		"opponent":  oppName,
	})
	return SurrenderResult{Status: SurrenderOK, Remaining: e.cfg.SurrenderExpiry}
}

// RespondSurrenderStatus is the outcome of answering a surrender offer.
type RespondSurrenderStatus int

const (
	RespondSurrenderAccepted RespondSurrenderStatus = iota
	RespondSurrenderDenied
	RespondSurrenderNotCaptain
	RespondSurrenderNoRequest
	RespondSurrenderExpired
)

// String returns the outcome label.
func (s RespondSurrenderStatus) String() string {
	switch s {
	case RespondSurrenderAccepted:
		return "ACCEPTED"
	case RespondSurrenderDenied:
		return "DENIED"
	case RespondSurrenderNotCaptain:
		return "NOT_CAPTAIN"
	case RespondSurrenderNoRequest:
		return "NO_REQUEST"
	case RespondSurrenderExpired:
		return "EXPIRED"
	default:
		return "UNKNOWN"
	}
}

// RespondSurrender resolves the surrender offer targeting the captain's
// state. Accepting dissolves the war and starts cooldowns for both sides;
// denying just removes the offer.
func (e *Engine) RespondSurrender(captain state.PlayerID, accept bool) RespondSurrenderStatus {
	e.mu.Lock()
	defer e.mu.Unlock()

	st := e.stateOf(captain)
	if st == nil || st.Captain != captain {
		return RespondSurrenderNotCaptain
	}

	var req *state.SurrenderRequest
	for _, r := range e.surrenders {
		if r.Opponent == st.Key() {
			req = r
			break
		}
	}
	if req == nil {
		return RespondSurrenderNoRequest
	}
	delete(e.surrenders, req.Initiator)
	if req.Expired(e.now()) {
		return RespondSurrenderExpired
	}
	if !accept {
		return RespondSurrenderDenied
	}

	if w := e.warBetween(req.Initiator, req.Opponent); w != nil {
		e.endWar(w, "surrender accepted")
	}
	return RespondSurrenderAccepted
}

// DamageCampStatus is the outcome of a siege hit.
type DamageCampStatus int

const (
	CampDamaged DamageCampStatus = iota
	CampBroken
	DamageCampNotAtWar
	DamageCampNotFound
	DamageCampInvalid
)

// String returns the outcome label.
func (s DamageCampStatus) String() string {
	switch s {
	case CampDamaged:
		return "DAMAGED"
	case CampBroken:
		return "BROKEN"
	case DamageCampNotAtWar:
		return "NOT_AT_WAR"
	case DamageCampNotFound:
		return "NOT_FOUND"
	case DamageCampInvalid:
		return "INVALID"
	default:
		return "UNKNOWN"
	}
}

// DamageCampResult reports the camp's HP after the hit.
type DamageCampResult struct {
	Status DamageCampStatus
	HP     int
	MaxHP  int
}

// DamageCamp applies siege damage to the named camp. The attacker state
// must be at war with the owner. HP floors at zero; BROKEN is reported
// exactly once, on the hit that reaches zero. The destructive consequence
// of a broken camp is the protection collaborator's concern — the engine's
// job ends at the signal.
func (e *Engine) DamageCamp(stateName, sectorName string, amount int, attackerStateName string) DamageCampResult {
	e.mu.Lock()
	defer e.mu.Unlock()

	if amount <= 0 {
		return DamageCampResult{Status: DamageCampInvalid}
	}
	owner := e.states[state.Key(stateName)]
	attacker := e.states[state.Key(attackerStateName)]
	if owner == nil || attacker == nil {
		return DamageCampResult{Status: DamageCampNotFound}
	}
	if e.warBetween(owner.Key(), attacker.Key()) == nil {
		return DamageCampResult{Status: DamageCampNotAtWar}
	}
	sec := owner.Sector(sectorName)
	if sec == nil || sec.Camp == nil {
		return DamageCampResult{Status: DamageCampNotFound}
	}

	camp := sec.Camp
	wasBroken := camp.Broken()
	camp.HP -= amount
	if camp.HP < 0 {
		camp.HP = 0
	}

	if camp.Broken() && !wasBroken {
		e.emit("diplomacy", fmt.Sprintf("the camp of %s in %s was broken by %s", sec.Name, owner.Name, attacker.Name), map[string]any{
			"state":    owner.Name,
			"sector":   sec.Name,
			"attacker": attacker.Name,
		})
		return DamageCampResult{Status: CampBroken, HP: camp.HP, MaxHP: camp.MaxHP}
	}
	return DamageCampResult{Status: CampDamaged, HP: camp.HP, MaxHP: camp.MaxHP}
}

// HandlePlayerDeath applies war death consequences when victim and killer
// belong to states at war with each other. Returns true when war rules
// applied. The actual inventory handling is the grave-override
// collaborator's concern.
func (e *Engine) HandlePlayerDeath(victim, killer state.PlayerID) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	vs := e.stateOf(victim)
	ks := e.stateOf(killer)
	if vs == nil || ks == nil || vs.Key() == ks.Key() {
		return false
	}
	if e.warBetween(vs.Key(), ks.Key()) == nil {
		return false
	}
	e.emit("diplomacy", fmt.Sprintf("%s of %s was slain by %s of %s", victim, vs.Name, killer, ks.Name), map[string]any{
		"victim":       string(victim),
		"victim_state": vs.Name,
		"killer":       string(killer),
		"killer_state": ks.Name,
	})
	return true
}

// WarCooldownRemaining returns how long the named state's post-war cooldown
// still runs; zero when none.
func (e *Engine) WarCooldownRemaining(stateName string) time.Duration {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.cooldownRemaining(state.Key(stateName))
}

// CondemnationRemaining returns the time until the named state's active
// condemnation matures; zero when matured or absent.
func (e *Engine) CondemnationRemaining(stateName string) time.Duration {
	e.mu.Lock()
	defer e.mu.Unlock()
	c, ok := e.condemnations[state.Key(stateName)]
	if !ok || c.Expired(e.now()) {
		return 0
	}
	rem := c.MaturesAt.Sub(e.now())
	if rem < 0 {
		return 0
	}
	return rem
}

// CondemnationTarget returns the display name of the state the named state
// is currently condemning, or "".
func (e *Engine) CondemnationTarget(stateName string) string {
	e.mu.Lock()
	defer e.mu.Unlock()
	c, ok := e.condemnations[state.Key(stateName)]
	if !ok || c.Expired(e.now()) {
		return ""
	}
	if ts, ok := e.states[c.Target]; ok {
		return ts.Name
	}
	return c.Target
}
