// Snapshot loading: rebuilds an engine.Snapshot from the saved tables.
package persistence

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/talgya/statecraft/internal/engine"
	"github.com/talgya/statecraft/internal/state"
)

type stateRow struct {
	Key         string  `db:"key"`
	Name        string  `db:"name"`
	Ideology    string  `db:"ideology"`
	Captain     string  `db:"captain"`
	Capital     string  `db:"capital"`
	Balance     float64 `db:"balance"`
	TaxAmount   float64 `db:"tax_amount"`
	Position    int     `db:"position"`
	MembersJSON string  `db:"members_json"`
}

type sectorRow struct {
	StateKey         string  `db:"state_key"`
	Key              string  `db:"key"`
	Name             string  `db:"name"`
	Governor         *string `db:"governor"`
	LocationJSON     *string `db:"location_json"`
	HalfX            float64 `db:"half_x"`
	HalfZ            float64 `db:"half_z"`
	CampHP           int     `db:"camp_hp"`
	CampMaxHP        int     `db:"camp_max_hp"`
	CampFuel         int     `db:"camp_fuel"`
	FatigueAmplifier float64 `db:"fatigue_amplifier"`
	Position         int     `db:"position"`
}

type transactionRow struct {
	ID         string  `db:"id"`
	StateKey   string  `db:"state_key"`
	TS         int64   `db:"ts"`
	Actor      *string `db:"actor"`
	Amount     float64 `db:"amount"`
	NewBalance float64 `db:"new_balance"`
	Kind       string  `db:"kind"`
	Position   int     `db:"position"`
}

type warRow struct {
	Declarer  string `db:"declarer"`
	Defender  string `db:"defender"`
	StartedAt int64  `db:"started_at"`
	CivilWar  int    `db:"civil_war"`
}

type condemnationRow struct {
	Attacker  string `db:"attacker"`
	Target    string `db:"target"`
	CreatedAt int64  `db:"created_at"`
	MaturesAt int64  `db:"matures_at"`
	ExpiresAt int64  `db:"expires_at"`
}

type surrenderRow struct {
	ID        string `db:"id"`
	Initiator string `db:"initiator"`
	Opponent  string `db:"opponent"`
	CreatedAt int64  `db:"created_at"`
	ExpiresAt int64  `db:"expires_at"`
}

type giftRow struct {
	ID        string `db:"id"`
	Source    string `db:"source"`
	Target    string `db:"target"`
	Sector    string `db:"sector"`
	CreatedAt int64  `db:"created_at"`
	ExpiresAt int64  `db:"expires_at"`
}

type cooldownRow struct {
	StateKey string `db:"state_key"`
	Until    int64  `db:"until"`
}

// LoadSnapshot reads the saved snapshot. Returns an empty snapshot when
// nothing has been saved yet.
func (db *DB) LoadSnapshot() (*engine.Snapshot, error) {
	snap := &engine.Snapshot{Cooldowns: make(map[string]time.Time)}

	var stateRows []stateRow
	if err := db.conn.Select(&stateRows, "SELECT * FROM states ORDER BY position"); err != nil {
		return nil, fmt.Errorf("load states: %w", err)
	}
	states := make(map[string]*state.State, len(stateRows))
	for _, row := range stateRows {
		var members []state.PlayerID
		if err := json.Unmarshal([]byte(row.MembersJSON), &members); err != nil {
			return nil, fmt.Errorf("decode members of %s: %w", row.Name, err)
		}
		st := &state.State{
			Name:      row.Name,
			Ideology:  row.Ideology,
			Captain:   state.PlayerID(row.Captain),
			Members:   members,
			Sectors:   make(map[string]*state.Sector),
			Capital:   row.Capital,
			Balance:   row.Balance,
			TaxAmount: row.TaxAmount,
		}
		states[row.Key] = st
		snap.States = append(snap.States, st)
	}

	var sectorRows []sectorRow
	if err := db.conn.Select(&sectorRows, "SELECT * FROM sectors ORDER BY state_key, position"); err != nil {
		return nil, fmt.Errorf("load sectors: %w", err)
	}
	for _, row := range sectorRows {
		st, ok := states[row.StateKey]
		if !ok {
			continue
		}
		sec := &state.Sector{
			Name:     row.Name,
			Boundary: state.Boundary{HalfX: row.HalfX, HalfZ: row.HalfZ},
			Camp: &state.Camp{
				HP:               row.CampHP,
				MaxHP:            row.CampMaxHP,
				Fuel:             row.CampFuel,
				FatigueAmplifier: row.FatigueAmplifier,
			},
		}
		if row.Governor != nil {
			g := state.PlayerID(*row.Governor)
			sec.Governor = &g
		}
		if row.LocationJSON != nil {
			var loc state.Location
			if err := json.Unmarshal([]byte(*row.LocationJSON), &loc); err != nil {
				return nil, fmt.Errorf("decode location of %s: %w", row.Name, err)
			}
			sec.Location = &loc
		}
		st.AddSector(sec)
	}

	var txRows []transactionRow
	if err := db.conn.Select(&txRows, "SELECT * FROM transactions ORDER BY state_key, position"); err != nil {
		return nil, fmt.Errorf("load transactions: %w", err)
	}
	for _, row := range txRows {
		st, ok := states[row.StateKey]
		if !ok {
			continue
		}
		t := state.BankTransaction{
			ID:         row.ID,
			Timestamp:  time.UnixMilli(row.TS),
			Amount:     row.Amount,
			NewBalance: row.NewBalance,
			Kind:       state.TransactionKindFromLabel(row.Kind),
		}
		if row.Actor != nil {
			a := state.PlayerID(*row.Actor)
			t.Actor = &a
		}
		st.Transactions = append(st.Transactions, t)
	}

	var warRows []warRow
	if err := db.conn.Select(&warRows, "SELECT * FROM wars"); err != nil {
		return nil, fmt.Errorf("load wars: %w", err)
	}
	for _, row := range warRows {
		snap.Wars = append(snap.Wars, &state.WarRecord{
			Declarer:  row.Declarer,
			Defender:  row.Defender,
			StartedAt: time.UnixMilli(row.StartedAt),
			CivilWar:  row.CivilWar != 0,
		})
	}

	var condemnationRows []condemnationRow
	if err := db.conn.Select(&condemnationRows, "SELECT * FROM condemnations"); err != nil {
		return nil, fmt.Errorf("load condemnations: %w", err)
	}
	for _, row := range condemnationRows {
		snap.Condemnations = append(snap.Condemnations, &state.Condemnation{
			Attacker:  row.Attacker,
			Target:    row.Target,
			CreatedAt: time.UnixMilli(row.CreatedAt),
			MaturesAt: time.UnixMilli(row.MaturesAt),
			ExpiresAt: time.UnixMilli(row.ExpiresAt),
		})
	}

	var surrenderRows []surrenderRow
	if err := db.conn.Select(&surrenderRows, "SELECT * FROM surrenders"); err != nil {
		return nil, fmt.Errorf("load surrenders: %w", err)
	}
	for _, row := range surrenderRows {
		snap.Surrenders = append(snap.Surrenders, &state.SurrenderRequest{
			ID:        row.ID,
			Initiator: row.Initiator,
			Opponent:  row.Opponent,
			CreatedAt: time.UnixMilli(row.CreatedAt),
			ExpiresAt: time.UnixMilli(row.ExpiresAt),
		})
	}

	var giftRows []giftRow
	if err := db.conn.Select(&giftRows, "SELECT * FROM gifts"); err != nil {
		return nil, fmt.Errorf("load gifts: %w", err)
	}
	for _, row := range giftRows {
		snap.Gifts = append(snap.Gifts, &state.SectorGiftRequest{
			ID:        row.ID,
			Source:    row.Source,
			Target:    row.Target,
			Sector:    row.Sector,
			CreatedAt: time.UnixMilli(row.CreatedAt),
			ExpiresAt: time.UnixMilli(row.ExpiresAt),
		})
	}

	var cooldownRows []cooldownRow
	if err := db.conn.Select(&cooldownRows, "SELECT * FROM cooldowns"); err != nil {
		return nil, fmt.Errorf("load cooldowns: %w", err)
	}
	for _, row := range cooldownRows {
		snap.Cooldowns[row.StateKey] = time.UnixMilli(row.Until)
	}

	return snap, nil
}
