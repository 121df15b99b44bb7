// Command statesd runs the territory and diplomacy engine daemon.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/talgya/statecraft/internal/api"
	"github.com/talgya/statecraft/internal/config"
	"github.com/talgya/statecraft/internal/engine"
	"github.com/talgya/statecraft/internal/persistence"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	// ── Database ──────────────────────────────────────────────────────
	os.MkdirAll(filepath.Dir(cfg.DBPath), 0755)
	db, err := persistence.Open(cfg.DBPath)
	if err != nil {
		slog.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	slog.Info("database opened", "path", cfg.DBPath)

	// ── Engine ────────────────────────────────────────────────────────
	eng := engine.New(cfg)
	eng.Notify = func(ev engine.Event) {
		slog.Info("event", "category", ev.Category, "description", ev.Description)
	}

	if db.HasSnapshot() {
		snap, err := db.LoadSnapshot()
		if err != nil {
			slog.Error("failed to load snapshot", "error", err)
			os.Exit(1)
		}
		eng.Restore(snap)
		slog.Info("snapshot restored",
			"states", len(snap.States),
			"wars", len(snap.Wars),
		)
	} else {
		slog.Info("no saved snapshot found, starting fresh")
	}

	// ── Scheduler ─────────────────────────────────────────────────────
	sched := engine.NewScheduler(eng)
	sched.OnSave = func() {
		if err := db.SaveSnapshot(eng.Snapshot()); err != nil {
			slog.Error("periodic save failed", "error", err)
		}
	}
	go sched.Run()

	// ── HTTP API ──────────────────────────────────────────────────────
	if cfg.AdminKey == "" {
		slog.Warn("STATESD_ADMIN_KEY not set — admin POST endpoints will be disabled")
	}
	apiServer := &api.Server{
		Engine:   eng,
		DB:       db,
		Port:     cfg.Port,
		AdminKey: cfg.AdminKey,
	}
	apiServer.Start()

	fmt.Printf("statesd running: API on http://localhost:%d/api/v1/status\n", cfg.Port)

	// ── Shutdown ──────────────────────────────────────────────────────
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	slog.Info("received signal, shutting down", "signal", sig)
	sched.Stop()

	slog.Info("final save...")
	if err := db.SaveSnapshot(eng.Snapshot()); err != nil {
		slog.Error("final save failed", "error", err)
	}
	fmt.Println("statesd stopped. Snapshot saved.")
}
