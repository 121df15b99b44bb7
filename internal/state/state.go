// States, sectors, and camps — the owned entity hierarchy.
package state

import "time"

// Camp is the siege-able structure tied 1:1 to a sector. HP reaching zero
// marks the camp broken; the sector's protection is a collaborator concern.
type Camp struct {
	HP               int     `json:"hp"`
	MaxHP            int     `json:"max_hp"`
	Fuel             int     `json:"fuel"`
	FatigueAmplifier float64 `json:"fatigue_amplifier,omitempty"` // 0 = server default
}

// Broken reports whether the camp has been reduced to zero HP.
func (c *Camp) Broken() bool {
	return c.HP <= 0
}

// Sector is a named claimed area within a state. Location is nil until the
// founding placement event completes.
type Sector struct {
	Name     string    `json:"name"`
	Location *Location `json:"location,omitempty"`
	Governor *PlayerID `json:"governor,omitempty"`
	Boundary Boundary  `json:"boundary"`
	Camp     *Camp     `json:"camp"`
}

// Placed reports whether the sector has a world anchor.
func (s *Sector) Placed() bool {
	return s.Location != nil
}

// BankTransactionKind categorizes a treasury ledger entry.
type BankTransactionKind uint8

const (
	TransactionDeposit BankTransactionKind = iota
	TransactionWithdraw
	TransactionTax
	TransactionExpense
)

// Label returns the string form used in logs and persistence.
func (k BankTransactionKind) Label() string {
	switch k {
	case TransactionDeposit:
		return "DEPOSIT"
	case TransactionWithdraw:
		return "WITHDRAW"
	case TransactionTax:
		return "TAX"
	case TransactionExpense:
		return "EXPENSE"
	default:
		return "UNKNOWN"
	}
}

// TransactionKindFromLabel converts a persisted label back to its kind.
func TransactionKindFromLabel(label string) BankTransactionKind {
	switch label {
	case "WITHDRAW":
		return TransactionWithdraw
	case "TAX":
		return TransactionTax
	case "EXPENSE":
		return TransactionExpense
	default:
		return TransactionDeposit
	}
}

// BankTransaction is an immutable treasury ledger entry. Actor is nil for
// system entries (tax collection).
type BankTransaction struct {
	ID         string              `json:"id"`
	Timestamp  time.Time           `json:"timestamp"`
	Actor      *PlayerID           `json:"actor,omitempty"`
	Amount     float64             `json:"amount"`
	NewBalance float64             `json:"new_balance"`
	Kind       BankTransactionKind `json:"kind"`
}

// State is a player faction owning sectors, a member roster, and a treasury.
type State struct {
	Name     string   `json:"name"` // display casing preserved
	Ideology string   `json:"ideology,omitempty"`
	Captain  PlayerID `json:"captain"`

	// Members in join order. The captain is always a member.
	Members []PlayerID `json:"members"`

	// Sectors keyed by Key(name); SectorOrder preserves creation order.
	Sectors     map[string]*Sector `json:"sectors"`
	SectorOrder []string           `json:"sector_order"`

	// Capital is the Key of the capital sector, or "" when unset.
	Capital string `json:"capital,omitempty"`

	Balance      float64           `json:"balance"`
	TaxAmount    float64           `json:"tax_amount"`
	Transactions []BankTransaction `json:"transactions"`
}

// NewState creates an empty state with the founder as captain and sole member.
func NewState(name, ideology string, captain PlayerID) *State {
	return &State{
		Name:     name,
		Ideology: ideology,
		Captain:  captain,
		Members:  []PlayerID{captain},
		Sectors:  make(map[string]*Sector),
	}
}

// Key returns the lookup key for the state's name.
func (s *State) Key() string {
	return Key(s.Name)
}

// HasMember reports whether the player belongs to the state.
func (s *State) HasMember(p PlayerID) bool {
	for _, m := range s.Members {
		if m == p {
			return true
		}
	}
	return false
}

// AddMember appends the player to the roster if not already present.
func (s *State) AddMember(p PlayerID) {
	if !s.HasMember(p) {
		s.Members = append(s.Members, p)
	}
}

// RemoveMember drops the player from the roster and clears any governor
// assignment they held. Returns the sector they governed, if any.
func (s *State) RemoveMember(p PlayerID) *Sector {
	for i, m := range s.Members {
		if m == p {
			s.Members = append(s.Members[:i], s.Members[i+1:]...)
			break
		}
	}
	return s.ClearGovernorOf(p)
}

// Sector looks up a sector by name, case-insensitive.
func (s *State) Sector(name string) *Sector {
	return s.Sectors[Key(name)]
}

// AddSector registers a sector under its key and records creation order.
func (s *State) AddSector(sec *Sector) {
	k := Key(sec.Name)
	s.Sectors[k] = sec
	s.SectorOrder = append(s.SectorOrder, k)
}

// DeleteSector removes a sector by name. Clears the capital marker when the
// capital itself is removed. Returns the removed sector, or nil.
func (s *State) DeleteSector(name string) *Sector {
	k := Key(name)
	sec, ok := s.Sectors[k]
	if !ok {
		return nil
	}
	delete(s.Sectors, k)
	for i, o := range s.SectorOrder {
		if o == k {
			s.SectorOrder = append(s.SectorOrder[:i], s.SectorOrder[i+1:]...)
			break
		}
	}
	if s.Capital == k {
		s.Capital = ""
	}
	return sec
}

// CapitalSector returns the capital sector, or nil when unset.
func (s *State) CapitalSector() *Sector {
	if s.Capital == "" {
		return nil
	}
	return s.Sectors[s.Capital]
}

// GovernorOf returns the sector governed by the player, or nil.
func (s *State) GovernorOf(p PlayerID) *Sector {
	for _, k := range s.SectorOrder {
		sec := s.Sectors[k]
		if sec.Governor != nil && *sec.Governor == p {
			return sec
		}
	}
	return nil
}

// ClearGovernorOf removes the player's governor assignment, returning the
// sector it was cleared from, or nil.
func (s *State) ClearGovernorOf(p PlayerID) *Sector {
	sec := s.GovernorOf(p)
	if sec != nil {
		sec.Governor = nil
	}
	return sec
}

// OrderedSectors returns sectors in creation order.
func (s *State) OrderedSectors() []*Sector {
	out := make([]*Sector, 0, len(s.SectorOrder))
	for _, k := range s.SectorOrder {
		out = append(out, s.Sectors[k])
	}
	return out
}
