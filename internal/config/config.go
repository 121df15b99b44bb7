// Package config loads engine and daemon settings from the environment.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds every tunable the engine and daemon expose. All durations
// accept Go duration syntax (e.g. "90s", "10m", "2h").
type Config struct {
	// Daemon.
	Port     int    `env:"STATESD_PORT" envDefault:"8080"`
	AdminKey string `env:"STATESD_ADMIN_KEY"`
	DBPath   string `env:"STATESD_DB" envDefault:"data/statecraft.db"`

	// Treasury.
	BankEnabled bool          `env:"STATESD_BANK_ENABLED" envDefault:"true"`
	TaxInterval time.Duration `env:"STATESD_TAX_INTERVAL" envDefault:"30m"`

	// Camps.
	CampMaxHP    int    `env:"STATESD_CAMP_MAX_HP" envDefault:"50"`
	FoundingItem string `env:"STATESD_FOUNDING_ITEM" envDefault:"camp_kit"`

	// Sector claims.
	SectorHalfX float64 `env:"STATESD_SECTOR_HALF_X" envDefault:"32"`
	SectorHalfZ float64 `env:"STATESD_SECTOR_HALF_Z" envDefault:"32"`

	// Request lifetimes.
	PlacementExpiry   time.Duration `env:"STATESD_PLACEMENT_EXPIRY" envDefault:"5m"`
	InviteExpiry      time.Duration `env:"STATESD_INVITE_EXPIRY" envDefault:"2m"`
	JoinRequestExpiry time.Duration `env:"STATESD_JOIN_EXPIRY" envDefault:"5m"`
	SurrenderExpiry   time.Duration `env:"STATESD_SURRENDER_EXPIRY" envDefault:"2m"`
	GiftExpiry        time.Duration `env:"STATESD_GIFT_EXPIRY" envDefault:"2m"`
	GiftCooldown      time.Duration `env:"STATESD_GIFT_COOLDOWN" envDefault:"2m"`

	// Diplomacy.
	CondemnMaturation time.Duration `env:"STATESD_CONDEMN_MATURATION" envDefault:"10m"`
	CondemnExpiry     time.Duration `env:"STATESD_CONDEMN_EXPIRY" envDefault:"1h"`
	WarCooldown       time.Duration `env:"STATESD_WAR_COOLDOWN" envDefault:"1h"`
	WarMinMembers     int           `env:"STATESD_WAR_MIN_MEMBERS" envDefault:"3"`
	WarMinSectors     int           `env:"STATESD_WAR_MIN_SECTORS" envDefault:"2"`

	// Scheduler.
	SweepInterval time.Duration `env:"STATESD_SWEEP_INTERVAL" envDefault:"30s"`
	SaveInterval  time.Duration `env:"STATESD_SAVE_INTERVAL" envDefault:"10m"`
}

// Load parses configuration from environment variables, applying defaults.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

// Default returns the configuration with every default applied and no
// environment lookups. Used by tests.
func Default() Config {
	cfg, err := env.ParseAsWithOptions[Config](env.Options{Environment: map[string]string{}})
	if err != nil {
		panic(err)
	}
	return cfg
}
