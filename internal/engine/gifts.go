// Sector gifting: a two-phase handshake moving a sector (and its camp)
// between states atomically.
package engine

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/talgya/statecraft/internal/state"
)

// GiftRequestStatus is the outcome of offering a sector.
type GiftRequestStatus int

const (
	GiftRequestOK GiftRequestStatus = iota
	GiftRequestNotCaptain
	GiftRequestTargetNotFound
	GiftRequestSelfTarget
	GiftRequestCaptainOffline
	GiftRequestSectorNotFound
	GiftRequestCapitalSector
	GiftRequestAlreadyPending
)

// String returns the outcome label.
func (s GiftRequestStatus) String() string {
	switch s {
	case GiftRequestOK:
		return "OK"
	case GiftRequestNotCaptain:
		return "NOT_CAPTAIN"
	case GiftRequestTargetNotFound:
		return "TARGET_NOT_FOUND"
	case GiftRequestSelfTarget:
		return "SELF_TARGET"
	case GiftRequestCaptainOffline:
		return "CAPTAIN_OFFLINE"
	case GiftRequestSectorNotFound:
		return "SECTOR_NOT_FOUND"
	case GiftRequestCapitalSector:
		return "CAPITAL_SECTOR"
	case GiftRequestAlreadyPending:
		return "ALREADY_PENDING"
	default:
		return "UNKNOWN"
	}
}

// GiftRequestResult reports the offer outcome. Remaining is set on
// ALREADY_PENDING (time until the anti-spam window clears) and on OK (time
// until the new offer expires).
type GiftRequestResult struct {
	Status    GiftRequestStatus
	Remaining time.Duration
}

// RequestSectorGift offers one of the captain's sectors to another state.
// At most one pending offer per (source, sector) pair; repeats inside the
// cooldown window report the remaining time.
func (e *Engine) RequestSectorGift(captain state.PlayerID, sectorName, targetStateName string) GiftRequestResult {
	e.mu.Lock()
	defer e.mu.Unlock()

	src := e.stateOf(captain)
	if src == nil || src.Captain != captain {
		return GiftRequestResult{Status: GiftRequestNotCaptain}
	}
	tgt := e.states[state.Key(targetStateName)]
	if tgt == nil {
		return GiftRequestResult{Status: GiftRequestTargetNotFound}
	}
	if tgt.Key() == src.Key() {
		return GiftRequestResult{Status: GiftRequestSelfTarget}
	}
	if !e.online(tgt.Captain) {
		return GiftRequestResult{Status: GiftRequestCaptainOffline}
	}
	sec := src.Sector(sectorName)
	if sec == nil {
		return GiftRequestResult{Status: GiftRequestSectorNotFound}
	}
	if src.Capital == state.Key(sec.Name) {
		return GiftRequestResult{Status: GiftRequestCapitalSector}
	}

	now := e.now()
	secKey := state.Key(sec.Name)
	for _, g := range e.gifts {
		if g.Source != src.Key() || g.Sector != secKey {
			continue
		}
		cooldownEnd := g.CreatedAt.Add(e.cfg.GiftCooldown)
		if now.Before(cooldownEnd) {
			return GiftRequestResult{Status: GiftRequestAlreadyPending, Remaining: cooldownEnd.Sub(now)}
		}
		// Cooldown lapsed; the stale offer is replaced below.
		e.dropGift(g.ID)
		break
	}

	e.gifts = append(e.gifts, &state.SectorGiftRequest{
		ID:        uuid.NewString(),
		Source:    src.Key(),
		Target:    tgt.Key(),
		Sector:    secKey,
		CreatedAt: now,
		ExpiresAt: now.Add(e.cfg.GiftExpiry),
	})
	return GiftRequestResult{Status: GiftRequestOK, Remaining: e.cfg.GiftExpiry}
}

// GiftRespondStatus is the outcome of answering a sector offer.
type GiftRespondStatus int

const (
	GiftRespondAccepted GiftRespondStatus = iota
	GiftRespondDenied
	GiftRespondNotCaptain
	GiftRespondNoRequest
	GiftRespondMultiple
	GiftRespondExpired
)

// String returns the outcome label.
func (s GiftRespondStatus) String() string {
	switch s {
	case GiftRespondAccepted:
		return "ACCEPTED"
	case GiftRespondDenied:
		return "DENIED"
	case GiftRespondNotCaptain:
		return "NOT_CAPTAIN"
	case GiftRespondNoRequest:
		return "NO_REQUEST"
	case GiftRespondMultiple:
		return "MULTIPLE"
	case GiftRespondExpired:
		return "EXPIRED"
	default:
		return "UNKNOWN"
	}
}

// GiftRespondResult reports the resolution. On ACCEPTED, SectorName is the
// sector's name in the receiving state (renamed if it collided).
type GiftRespondResult struct {
	Status      GiftRespondStatus
	SourceState string
	SectorName  string
}

// RespondSectorGift resolves a pending offer aimed at the captain's state.
// sourceStateName and sectorName narrow the choice; when omitted and more
// than one offer is pending, MULTIPLE is reported so the caller can
// disambiguate. On accept the sector and its camp move atomically.
func (e *Engine) RespondSectorGift(captain state.PlayerID, accept bool, sourceStateName, sectorName string) GiftRespondResult {
	e.mu.Lock()
	defer e.mu.Unlock()

	tgt := e.stateOf(captain)
	if tgt == nil || tgt.Captain != captain {
		return GiftRespondResult{Status: GiftRespondNotCaptain}
	}

	srcFilter := state.Key(sourceStateName)
	secFilter := state.Key(sectorName)
	now := e.now()
	var matches []*state.SectorGiftRequest
	var stale []string
	for _, g := range e.gifts {
		if g.Target != tgt.Key() {
			continue
		}
		if srcFilter != "" && g.Source != srcFilter {
			continue
		}
		if secFilter != "" && g.Sector != secFilter {
			continue
		}
		// Lapsed offers never count toward disambiguation; reap them here.
		if g.Expired(now) {
			stale = append(stale, g.ID)
			continue
		}
		matches = append(matches, g)
	}
	for _, id := range stale {
		e.dropGift(id)
	}
	if len(matches) == 0 {
		if len(stale) > 0 {
			return GiftRespondResult{Status: GiftRespondExpired}
		}
		return GiftRespondResult{Status: GiftRespondNoRequest}
	}
	if len(matches) > 1 {
		return GiftRespondResult{Status: GiftRespondMultiple}
	}

	g := matches[0]
	e.dropGift(g.ID)

	src := e.states[g.Source]
	if src == nil {
		return GiftRespondResult{Status: GiftRespondNoRequest}
	}
	if !accept {
		return GiftRespondResult{Status: GiftRespondDenied, SourceState: src.Name}
	}

	sec := src.Sectors[g.Sector]
	if sec == nil || src.Capital == g.Sector {
		// Sector vanished or became capital while the offer was pending.
		return GiftRespondResult{Status: GiftRespondNoRequest}
	}

	src.DeleteSector(sec.Name)
	if tgt.Sector(sec.Name) != nil {
		sec.Name = freeSectorName(tgt, sec.Name)
	}
	// Governors must be members of the owning state.
	sec.Governor = nil
	tgt.AddSector(sec)
	if tgt.Capital == "" {
		tgt.Capital = state.Key(sec.Name)
	}

	e.emit("territory", fmt.Sprintf("%s gifted the sector %s to %s", src.Name, sec.Name, tgt.Name), map[string]any{
		"source": src.Name,
		"target": tgt.Name,
		"sector": sec.Name,
	})
	return GiftRespondResult{Status: GiftRespondAccepted, SourceState: src.Name, SectorName: sec.Name}
}

// dropGift removes a gift request by ID. Caller holds e.mu.
func (e *Engine) dropGift(id string) {
	for i, g := range e.gifts {
		if g.ID == id {
			e.gifts = append(e.gifts[:i], e.gifts[i+1:]...)
			return
		}
	}
}

// dropGiftsForSector removes pending offers of a sector that no longer
// exists in its source state. Caller holds e.mu.
func (e *Engine) dropGiftsForSector(sourceKey, sectorKey string) {
	kept := e.gifts[:0]
	for _, g := range e.gifts {
		if g.Source == sourceKey && g.Sector == sectorKey {
			continue
		}
		kept = append(kept, g)
	}
	e.gifts = kept
}

// PendingGifts returns the offers currently aimed at the named state.
func (e *Engine) PendingGifts(targetStateName string) []*state.SectorGiftRequest {
	e.mu.Lock()
	defer e.mu.Unlock()
	key := state.Key(targetStateName)
	var out []*state.SectorGiftRequest
	for _, g := range e.gifts {
		if g.Target == key && !g.Expired(e.now()) {
			cp := *g
			out = append(out, &cp)
		}
	}
	return out
}
