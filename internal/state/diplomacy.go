// Transient diplomacy records. These reference states by lookup key, never
// by pointer — deleting a state must be able to cascade-invalidate them.
package state

import "time"

// WarRecord is an active war between two states. Declarer started it.
type WarRecord struct {
	Declarer  string    `json:"declarer"` // state key
	Defender  string    `json:"defender"` // state key
	StartedAt time.Time `json:"started_at"`
	CivilWar  bool      `json:"civil_war"`
}

// Involves reports whether the named state is a participant.
func (w *WarRecord) Involves(key string) bool {
	return w.Declarer == key || w.Defender == key
}

// Opponent returns the other participant's key, or "" if the named state is
// not a participant.
func (w *WarRecord) Opponent(key string) string {
	switch key {
	case w.Declarer:
		return w.Defender
	case w.Defender:
		return w.Declarer
	}
	return ""
}

// Condemnation is a declared intent to war. War may only be declared against
// the condemned target, and only after the maturation delay has elapsed.
type Condemnation struct {
	Attacker  string    `json:"attacker"` // state key
	Target    string    `json:"target"`   // state key
	CreatedAt time.Time `json:"created_at"`
	MaturesAt time.Time `json:"matures_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Matured reports whether war may now be declared.
func (c *Condemnation) Matured(now time.Time) bool {
	return !now.Before(c.MaturesAt)
}

// Expired reports whether the condemnation has lapsed unused.
func (c *Condemnation) Expired(now time.Time) bool {
	return now.After(c.ExpiresAt)
}

// SurrenderRequest is an offer to end a war, awaiting the opponent's answer.
type SurrenderRequest struct {
	ID        string    `json:"id"`
	Initiator string    `json:"initiator"` // state key
	Opponent  string    `json:"opponent"`  // state key
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Expired reports whether the offer has lapsed.
func (r *SurrenderRequest) Expired(now time.Time) bool {
	return now.After(r.ExpiresAt)
}

// SectorGiftRequest offers a sector to another state. At most one may be
// pending per (source, sector) pair.
type SectorGiftRequest struct {
	ID        string    `json:"id"`
	Source    string    `json:"source"` // state key
	Target    string    `json:"target"` // state key
	Sector    string    `json:"sector"` // sector key within source
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Expired reports whether the offer has lapsed.
func (r *SectorGiftRequest) Expired(now time.Time) bool {
	return now.After(r.ExpiresAt)
}

// PlacementKind distinguishes what a pending camp placement will create.
type PlacementKind uint8

const (
	PlacementFoundState PlacementKind = iota
	PlacementNewSector
	PlacementCivilWar
)

// PendingCampPlacement is the per-player record between a founding command
// and the world-placement event that completes it.
type PendingCampPlacement struct {
	Player     PlayerID      `json:"player"`
	Kind       PlacementKind `json:"kind"`
	StateName  string        `json:"state_name"`  // display name (founding) or key (existing)
	SectorName string        `json:"sector_name"` // display name of the sector to create
	Ideology   string        `json:"ideology,omitempty"`
	Relocation bool          `json:"relocation,omitempty"`
	ItemID     string        `json:"item_id,omitempty"` // placement item consumed on completion

	// Civil war lineage: the state being seceded from and the sector the
	// rebellion is centered on.
	OriginState  string `json:"origin_state,omitempty"`
	OriginSector string `json:"origin_sector,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Expired reports whether the placement window has lapsed.
func (p *PendingCampPlacement) Expired(now time.Time) bool {
	return now.After(p.ExpiresAt)
}

// Invite is a captain-to-player membership offer. One outstanding per target.
type Invite struct {
	StateKey  string    `json:"state_key"`
	Captain   PlayerID  `json:"captain"`
	Target    PlayerID  `json:"target"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Expired reports whether the invite has lapsed.
func (i *Invite) Expired(now time.Time) bool {
	return now.After(i.ExpiresAt)
}

// JoinRequest is a player-to-state membership request, resolved by the
// state's captain.
type JoinRequest struct {
	Player    PlayerID  `json:"player"`
	StateKey  string    `json:"state_key"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Expired reports whether the request has lapsed.
func (r *JoinRequest) Expired(now time.Time) bool {
	return now.After(r.ExpiresAt)
}
