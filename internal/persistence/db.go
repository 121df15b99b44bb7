// Package persistence provides SQLite-based snapshot storage for the
// territory engine: states with their sectors, camps, and ledgers, plus the
// active diplomacy records.
package persistence

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/talgya/statecraft/internal/engine"
	"github.com/talgya/statecraft/internal/state"
)

// DB wraps a SQLite connection for engine snapshot persistence.
type DB struct {
	conn *sqlx.DB
}

// Open opens or creates a SQLite database at the given path.
func Open(path string) (*DB, error) {
	conn, err := sqlx.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS states (
		key TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		ideology TEXT NOT NULL DEFAULT '',
		captain TEXT NOT NULL,
		capital TEXT NOT NULL DEFAULT '',
		balance REAL NOT NULL,
		tax_amount REAL NOT NULL,
		position INTEGER NOT NULL,
		members_json TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS sectors (
		state_key TEXT NOT NULL,
		key TEXT NOT NULL,
		name TEXT NOT NULL,
		governor TEXT,
		location_json TEXT,
		half_x REAL NOT NULL,
		half_z REAL NOT NULL,
		camp_hp INTEGER NOT NULL,
		camp_max_hp INTEGER NOT NULL,
		camp_fuel INTEGER NOT NULL,
		fatigue_amplifier REAL NOT NULL DEFAULT 0,
		position INTEGER NOT NULL,
		PRIMARY KEY (state_key, key)
	);

	CREATE TABLE IF NOT EXISTS transactions (
		id TEXT PRIMARY KEY,
		state_key TEXT NOT NULL,
		ts INTEGER NOT NULL,
		actor TEXT,
		amount REAL NOT NULL,
		new_balance REAL NOT NULL,
		kind TEXT NOT NULL,
		position INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS wars (
		declarer TEXT NOT NULL,
		defender TEXT NOT NULL,
		started_at INTEGER NOT NULL,
		civil_war INTEGER NOT NULL,
		PRIMARY KEY (declarer, defender)
	);

	CREATE TABLE IF NOT EXISTS condemnations (
		attacker TEXT PRIMARY KEY,
		target TEXT NOT NULL,
		created_at INTEGER NOT NULL,
		matures_at INTEGER NOT NULL,
		expires_at INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS surrenders (
		id TEXT PRIMARY KEY,
		initiator TEXT NOT NULL,
		opponent TEXT NOT NULL,
		created_at INTEGER NOT NULL,
		expires_at INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS gifts (
		id TEXT PRIMARY KEY,
		source TEXT NOT NULL,
		target TEXT NOT NULL,
		sector TEXT NOT NULL,
		created_at INTEGER NOT NULL,
		expires_at INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS cooldowns (
		state_key TEXT PRIMARY KEY,
		until INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS meta (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_sectors_state ON sectors(state_key);
	CREATE INDEX IF NOT EXISTS idx_transactions_state ON transactions(state_key);
	`
	_, err := db.conn.Exec(schema)
	return err
}

// SaveSnapshot writes a full snapshot, replacing the previous one, inside a
// single transaction.
func (db *DB) SaveSnapshot(snap *engine.Snapshot) error {
	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, table := range []string{"states", "sectors", "transactions", "wars", "condemnations", "surrenders", "gifts", "cooldowns"} {
		if _, err := tx.Exec("DELETE FROM " + table); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}

	for pos, st := range snap.States {
		if err := saveState(tx, st, pos); err != nil {
			return fmt.Errorf("save state %s: %w", st.Name, err)
		}
	}
	for _, w := range snap.Wars {
		_, err := tx.Exec(
			"INSERT INTO wars (declarer, defender, started_at, civil_war) VALUES (?, ?, ?, ?)",
			w.Declarer, w.Defender, w.StartedAt.UnixMilli(), boolInt(w.CivilWar),
		)
		if err != nil {
			return fmt.Errorf("insert war: %w", err)
		}
	}
	for _, c := range snap.Condemnations {
		_, err := tx.Exec(
			"INSERT INTO condemnations (attacker, target, created_at, matures_at, expires_at) VALUES (?, ?, ?, ?, ?)",
			c.Attacker, c.Target, c.CreatedAt.UnixMilli(), c.MaturesAt.UnixMilli(), c.ExpiresAt.UnixMilli(),
		)
		if err != nil {
			return fmt.Errorf("insert condemnation: %w", err)
		}
	}
	for _, r := range snap.Surrenders {
		_, err := tx.Exec(
			"INSERT INTO surrenders (id, initiator, opponent, created_at, expires_at) VALUES (?, ?, ?, ?, ?)",
			r.ID, r.Initiator, r.Opponent, r.CreatedAt.UnixMilli(), r.ExpiresAt.UnixMilli(),
		)
		if err != nil {
			return fmt.Errorf("insert surrender: %w", err)
		}
	}
	for _, g := range snap.Gifts {
		_, err := tx.Exec(
			"INSERT INTO gifts (id, source, target, sector, created_at, expires_at) VALUES (?, ?, ?, ?, ?, ?)",
			g.ID, g.Source, g.Target, g.Sector, g.CreatedAt.UnixMilli(), g.ExpiresAt.UnixMilli(),
		)
		if err != nil {
			return fmt.Errorf("insert gift: %w", err)
		}
	}
	for key, until := range snap.Cooldowns {
		_, err := tx.Exec(
			"INSERT INTO cooldowns (state_key, until) VALUES (?, ?)",
			key, until.UnixMilli(),
		)
		if err != nil {
			return fmt.Errorf("insert cooldown: %w", err)
		}
	}

	if _, err := tx.Exec(
		"INSERT OR REPLACE INTO meta (key, value) VALUES ('saved_at', ?)",
		snap.TakenAt.UTC().Format(time.RFC3339),
	); err != nil {
		return fmt.Errorf("save meta: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	slog.Info("snapshot saved", "states", len(snap.States), "wars", len(snap.Wars))
	return nil
}

func saveState(tx *sqlx.Tx, st *state.State, pos int) error {
	membersJSON, _ := json.Marshal(st.Members)
	_, err := tx.Exec(`INSERT INTO states
		(key, name, ideology, captain, capital, balance, tax_amount, position, members_json)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		st.Key(), st.Name, st.Ideology, string(st.Captain), st.Capital,
		st.Balance, st.TaxAmount, pos, string(membersJSON),
	)
	if err != nil {
		return err
	}

	for i, key := range st.SectorOrder {
		sec := st.Sectors[key]
		var locJSON *string
		if sec.Location != nil {
			b, _ := json.Marshal(sec.Location)
			s := string(b)
			locJSON = &s
		}
		var governor *string
		if sec.Governor != nil {
			g := string(*sec.Governor)
			governor = &g
		}
		_, err := tx.Exec(`INSERT INTO sectors
			(state_key, key, name, governor, location_json, half_x, half_z,
			 camp_hp, camp_max_hp, camp_fuel, fatigue_amplifier, position)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			st.Key(), key, sec.Name, governor, locJSON,
			sec.Boundary.HalfX, sec.Boundary.HalfZ,
			sec.Camp.HP, sec.Camp.MaxHP, sec.Camp.Fuel, sec.Camp.FatigueAmplifier, i,
		)
		if err != nil {
			return fmt.Errorf("insert sector %s: %w", sec.Name, err)
		}
	}

	for i, t := range st.Transactions {
		var actor *string
		if t.Actor != nil {
			a := string(*t.Actor)
			actor = &a
		}
		_, err := tx.Exec(`INSERT INTO transactions
			(id, state_key, ts, actor, amount, new_balance, kind, position)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			t.ID, st.Key(), t.Timestamp.UnixMilli(), actor,
			t.Amount, t.NewBalance, t.Kind.Label(), i,
		)
		if err != nil {
			return fmt.Errorf("insert transaction %s: %w", t.ID, err)
		}
	}
	return nil
}

// HasSnapshot reports whether a saved snapshot exists.
func (db *DB) HasSnapshot() bool {
	var count int
	if err := db.conn.Get(&count, "SELECT COUNT(*) FROM meta WHERE key = 'saved_at'"); err != nil {
		return false
	}
	return count > 0
}

// SaveMeta stores a key-value pair alongside the snapshot.
func (db *DB) SaveMeta(key, value string) error {
	_, err := db.conn.Exec(
		"INSERT OR REPLACE INTO meta (key, value) VALUES (?, ?)",
		key, value,
	)
	return err
}

// GetMeta retrieves a metadata value.
func (db *DB) GetMeta(key string) (string, error) {
	var value string
	err := db.conn.Get(&value, "SELECT value FROM meta WHERE key = ?", key)
	return value, err
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
