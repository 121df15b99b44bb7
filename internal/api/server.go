// Package api provides the HTTP API over the territory engine.
// GET endpoints are public (read-only observation).
// POST endpoints require a bearer token (admin control plane).
package api

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"

	"github.com/talgya/statecraft/internal/engine"
	"github.com/talgya/statecraft/internal/persistence"
	"github.com/talgya/statecraft/internal/state"
)

// Server serves the engine state over HTTP.
type Server struct {
	Engine   *engine.Engine
	DB       *persistence.DB
	Port     int
	AdminKey string // Bearer token for POST endpoints. Empty = POST disabled.
}

// Start begins serving the HTTP API in a goroutine.
func (s *Server) Start() {
	limiter := NewRateLimiter(10, 30)

	mux := http.NewServeMux()

	// Public endpoints (GET, read-only).
	mux.HandleFunc("/api/v1/status", RateLimitMiddleware(limiter, s.handleStatus))
	mux.HandleFunc("/api/v1/states", RateLimitMiddleware(limiter, s.handleStates))
	mux.HandleFunc("/api/v1/state/", RateLimitMiddleware(limiter, s.handleStateDetail))
	mux.HandleFunc("/api/v1/wars", RateLimitMiddleware(limiter, s.handleWars))
	mux.HandleFunc("/api/v1/events", RateLimitMiddleware(limiter, s.handleEvents))

	// Admin endpoints (POST, require bearer token).
	mux.HandleFunc("/api/v1/admin/stopwar", s.adminOnly(s.handleStopWar))
	mux.HandleFunc("/api/v1/admin/snapshot", s.adminOnly(s.handleSnapshot))

	addr := fmt.Sprintf(":%d", s.Port)
	slog.Info("HTTP API starting", "addr", addr, "admin_auth", s.AdminKey != "")

	go func() {
		handler := corsMiddleware(mux)
		if err := http.ListenAndServe(addr, handler); err != nil {
			slog.Error("HTTP server error", "error", err)
		}
	}()
}

// corsMiddleware adds CORS headers for allowed frontend origins.
// Set CORS_ORIGINS to a comma-separated list of allowed origins; localhost
// dev servers are always allowed.
func corsMiddleware(next http.Handler) http.Handler {
	allowedOrigins := map[string]bool{
		"http://localhost:5173": true,
		"http://localhost:3000": true,
	}
	if env := os.Getenv("CORS_ORIGINS"); env != "" {
		for _, origin := range strings.Split(env, ",") {
			origin = strings.TrimSpace(origin)
			if origin != "" {
				allowedOrigins[origin] = true
			}
		}
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if allowedOrigins[origin] {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// adminOnly gates a handler behind the bearer token. POST disabled entirely
// when no key is configured.
func (s *Server) adminOnly(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		if s.AdminKey == "" {
			http.Error(w, "admin endpoints disabled", http.StatusForbidden)
			return
		}
		auth := r.Header.Get("Authorization")
		if auth != "Bearer "+s.AdminKey {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		next(w, r)
	}
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	states := s.Engine.StatesView()
	sectors := 0
	members := 0
	for _, st := range states {
		sectors += len(st.Sectors)
		members += len(st.Members)
	}
	writeJSON(w, map[string]any{
		"states":  len(states),
		"sectors": sectors,
		"members": members,
		"wars":    len(s.Engine.Wars()),
	})
}

type stateSummary struct {
	Name      string  `json:"name"`
	Captain   string  `json:"captain"`
	Members   int     `json:"members"`
	Sectors   int     `json:"sectors"`
	Capital   string  `json:"capital,omitempty"`
	Balance   float64 `json:"balance"`
	TaxAmount float64 `json:"tax_amount"`
}

func summarize(st *state.State) stateSummary {
	sum := stateSummary{
		Name:      st.Name,
		Captain:   string(st.Captain),
		Members:   len(st.Members),
		Sectors:   len(st.Sectors),
		Balance:   st.Balance,
		TaxAmount: st.TaxAmount,
	}
	if capital := st.CapitalSector(); capital != nil {
		sum.Capital = capital.Name
	}
	return sum
}

func (s *Server) handleStates(w http.ResponseWriter, r *http.Request) {
	states := s.Engine.StatesView()
	out := make([]stateSummary, 0, len(states))
	for _, st := range states {
		out = append(out, summarize(st))
	}
	writeJSON(w, out)
}

func (s *Server) handleStateDetail(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimPrefix(r.URL.Path, "/api/v1/state/")
	if name == "" {
		http.Error(w, "state name required", http.StatusBadRequest)
		return
	}
	st := s.Engine.StateView(name)
	if st == nil {
		http.Error(w, "state not found", http.StatusNotFound)
		return
	}

	type sectorEntry struct {
		Name     string          `json:"name"`
		Capital  bool            `json:"capital"`
		Governor string          `json:"governor,omitempty"`
		Location *state.Location `json:"location,omitempty"`
		CampHP   int             `json:"camp_hp"`
		CampMax  int             `json:"camp_max_hp"`
		Broken   bool            `json:"broken"`
	}
	sectors := make([]sectorEntry, 0, len(st.Sectors))
	for _, sec := range st.OrderedSectors() {
		entry := sectorEntry{
			Name:     sec.Name,
			Capital:  st.Capital == state.Key(sec.Name),
			Location: sec.Location,
			CampHP:   sec.Camp.HP,
			CampMax:  sec.Camp.MaxHP,
			Broken:   sec.Camp.Broken(),
		}
		if sec.Governor != nil {
			entry.Governor = string(*sec.Governor)
		}
		sectors = append(sectors, entry)
	}

	cooldown := s.Engine.WarCooldownRemaining(st.Name)
	writeJSON(w, map[string]any{
		"summary":             summarize(st),
		"members":             st.Members,
		"sectors":             sectors,
		"transactions":        s.Engine.Transactions(st.Name),
		"condemnation_target": s.Engine.CondemnationTarget(st.Name),
		"war_cooldown":        cooldown.String(),
	})
}

func (s *Server) handleWars(w http.ResponseWriter, r *http.Request) {
	type warEntry struct {
		Declarer  string `json:"declarer"`
		Defender  string `json:"defender"`
		StartedAt string `json:"started_at"`
		CivilWar  bool   `json:"civil_war"`
	}
	wars := s.Engine.Wars()
	out := make([]warEntry, 0, len(wars))
	for _, war := range wars {
		out = append(out, warEntry{
			Declarer:  war.Declarer,
			Defender:  war.Defender,
			StartedAt: war.StartedAt.UTC().Format("2006-01-02T15:04:05Z"),
			CivilWar:  war.CivilWar,
		})
	}
	writeJSON(w, out)
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.Engine.RecentEvents(100))
}

func (s *Server) handleStopWar(w http.ResponseWriter, r *http.Request) {
	var req struct {
		StateA string `json:"state_a"`
		StateB string `json:"state_b"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}
	stopped := s.Engine.AdminStopWar(req.StateA, req.StateB)
	if stopped == nil {
		http.Error(w, "no such war", http.StatusNotFound)
		return
	}
	writeJSON(w, map[string]any{
		"stopped":   true,
		"declarer":  stopped.Declarer,
		"defender":  stopped.Defender,
		"civil_war": stopped.CivilWar,
	})
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	if s.DB == nil {
		http.Error(w, "persistence disabled", http.StatusServiceUnavailable)
		return
	}
	snap := s.Engine.Snapshot()
	if err := s.DB.SaveSnapshot(snap); err != nil {
		slog.Error("snapshot save failed", "error", err)
		http.Error(w, "snapshot failed", http.StatusInternalServerError)
		return
	}
	writeJSON(w, map[string]any{"saved": true, "states": len(snap.States)})
}

func writeJSON(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.Encode(data)
}
