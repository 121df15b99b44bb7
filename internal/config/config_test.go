package config

import (
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Port != 8080 {
		t.Fatalf("Port = %d, want 8080", cfg.Port)
	}
	if cfg.DBPath != "data/statecraft.db" {
		t.Fatalf("DBPath = %q", cfg.DBPath)
	}
	if !cfg.BankEnabled {
		t.Fatal("BankEnabled = false")
	}
	if cfg.CampMaxHP != 50 {
		t.Fatalf("CampMaxHP = %d, want 50", cfg.CampMaxHP)
	}
	if cfg.FoundingItem != "camp_kit" {
		t.Fatalf("FoundingItem = %q", cfg.FoundingItem)
	}
	if cfg.CondemnMaturation != 10*time.Minute {
		t.Fatalf("CondemnMaturation = %v, want 10m", cfg.CondemnMaturation)
	}
	if cfg.WarMinMembers != 3 || cfg.WarMinSectors != 2 {
		t.Fatalf("war thresholds = %d/%d, want 3/2", cfg.WarMinMembers, cfg.WarMinSectors)
	}
	if cfg.SweepInterval != 30*time.Second {
		t.Fatalf("SweepInterval = %v, want 30s", cfg.SweepInterval)
	}
}

func TestLoadReadsEnvironment(t *testing.T) {
	t.Setenv("STATESD_PORT", "9090")
	t.Setenv("STATESD_ADMIN_KEY", "hunter2")
	t.Setenv("STATESD_BANK_ENABLED", "false")
	t.Setenv("STATESD_TAX_INTERVAL", "90s")
	t.Setenv("STATESD_WAR_MIN_MEMBERS", "5")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != 9090 {
		t.Fatalf("Port = %d, want 9090", cfg.Port)
	}
	if cfg.AdminKey != "hunter2" {
		t.Fatalf("AdminKey = %q", cfg.AdminKey)
	}
	if cfg.BankEnabled {
		t.Fatal("BankEnabled = true, want false")
	}
	if cfg.TaxInterval != 90*time.Second {
		t.Fatalf("TaxInterval = %v, want 90s", cfg.TaxInterval)
	}
	if cfg.WarMinMembers != 5 {
		t.Fatalf("WarMinMembers = %d, want 5", cfg.WarMinMembers)
	}
	// Untouched keys keep their defaults.
	if cfg.GiftExpiry != 2*time.Minute {
		t.Fatalf("GiftExpiry = %v, want 2m", cfg.GiftExpiry)
	}
}

func TestLoadRejectsBadDuration(t *testing.T) {
	t.Setenv("STATESD_WAR_COOLDOWN", "not-a-duration")

	if _, err := Load(); err == nil {
		t.Fatal("Load accepted a malformed duration")
	}
}
