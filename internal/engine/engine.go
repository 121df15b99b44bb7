// Package engine implements the territory and diplomacy engine: the entity
// store for states, sectors, and camps, membership and governance workflows,
// the taxed treasury, and the condemnation/war/surrender state machine.
//
// Every operation is request/response: it takes the engine lock, validates,
// mutates only on success, and returns a typed result. Expected business
// failures are statuses in the result, never errors. Expiry of transient
// records is evaluated lazily on access; the scheduler's sweep only reclaims
// memory.
package engine

import (
	"sync"
	"time"

	"github.com/talgya/statecraft/internal/config"
	"github.com/talgya/statecraft/internal/economy"
	"github.com/talgya/statecraft/internal/state"
)

// ItemSource gates founding on possession of a placement item (e.g. a camp
// kit). Absent ⇒ founding is ungated.
type ItemSource interface {
	HasItem(p state.PlayerID, item string) bool
	ConsumeItem(p state.PlayerID, item string) bool
}

// Presence answers online checks for captain-gated handshakes. Absent ⇒
// every player counts as online.
type Presence interface {
	IsOnline(p state.PlayerID) bool
}

// GraveOverride suspends normal inventory-retention rules for a state's
// members while it is at war. Absent ⇒ no-op.
type GraveOverride interface {
	Suspend(stateName string, members []state.PlayerID)
	Restore(stateName string, members []state.PlayerID)
}

// Event is a structured notification for collaborators: enough payload to
// render UI and trigger world effects without re-querying the engine.
type Event struct {
	Time        time.Time      `json:"time"`
	Category    string         `json:"category"`
	Description string         `json:"description"`
	Meta        map[string]any `json:"meta,omitempty"`
}

// Notifier receives events as they are emitted. Called with the engine lock
// held; it must not call back into the engine.
type Notifier func(Event)

const maxEvents = 1000

// Engine owns all faction state. Public hook fields are set once at wiring
// time, before any operation runs.
type Engine struct {
	Economy  economy.Provider
	Items    ItemSource
	Presence Presence
	Graves   GraveOverride
	Notify   Notifier

	// Clock is injectable for tests. Defaults to time.Now.
	Clock func() time.Time

	cfg config.Config

	mu       sync.Mutex
	states   map[string]*state.State // key → state
	order    []string                // state keys, creation order
	memberOf map[state.PlayerID]string

	wars          []*state.WarRecord
	condemnations map[string]*state.Condemnation     // attacker key
	surrenders    map[string]*state.SurrenderRequest // initiator key
	gifts         []*state.SectorGiftRequest
	placements    map[state.PlayerID]*state.PendingCampPlacement
	invites       map[state.PlayerID]*state.Invite // target player
	joinRequests  map[state.PlayerID]*state.JoinRequest
	cooldowns     map[string]time.Time // state key → cooldown end

	events []Event
}

// New creates an empty engine with the given configuration.
func New(cfg config.Config) *Engine {
	return &Engine{
		Clock:         time.Now,
		cfg:           cfg,
		states:        make(map[string]*state.State),
		memberOf:      make(map[state.PlayerID]string),
		condemnations: make(map[string]*state.Condemnation),
		surrenders:    make(map[string]*state.SurrenderRequest),
		placements:    make(map[state.PlayerID]*state.PendingCampPlacement),
		invites:       make(map[state.PlayerID]*state.Invite),
		joinRequests:  make(map[state.PlayerID]*state.JoinRequest),
		cooldowns:     make(map[string]time.Time),
	}
}

// Config returns the engine configuration.
func (e *Engine) Config() config.Config {
	return e.cfg
}

func (e *Engine) now() time.Time {
	return e.Clock()
}

// emit records an event in the ring buffer and forwards it to the notifier.
// Caller holds e.mu.
func (e *Engine) emit(category, description string, meta map[string]any) {
	ev := Event{
		Time:        e.now(),
		Category:    category,
		Description: description,
		Meta:        meta,
	}
	e.events = append(e.events, ev)
	if len(e.events) > maxEvents {
		e.events = e.events[len(e.events)-maxEvents:]
	}
	if e.Notify != nil {
		e.Notify(ev)
	}
}

// RecentEvents returns up to limit most recent events, oldest first.
func (e *Engine) RecentEvents(limit int) []Event {
	e.mu.Lock()
	defer e.mu.Unlock()
	start := 0
	if limit > 0 && len(e.events) > limit {
		start = len(e.events) - limit
	}
	out := make([]Event, len(e.events)-start)
	copy(out, e.events[start:])
	return out
}

func (e *Engine) online(p state.PlayerID) bool {
	if e.Presence == nil {
		return true
	}
	return e.Presence.IsOnline(p)
}

func (e *Engine) hasItem(p state.PlayerID, item string) bool {
	if e.Items == nil {
		return true
	}
	return e.Items.HasItem(p, item)
}

func (e *Engine) consumeItem(p state.PlayerID, item string) bool {
	if e.Items == nil {
		return true
	}
	return e.Items.ConsumeItem(p, item)
}

func (e *Engine) gravesSuspend(st *state.State) {
	if e.Graves != nil {
		e.Graves.Suspend(st.Name, append([]state.PlayerID(nil), st.Members...))
	}
}

// gravesRestoreIfIdle lifts the drop override once the state has no other
// active wars. Caller holds e.mu.
func (e *Engine) gravesRestoreIfIdle(key string) {
	if e.Graves == nil {
		return
	}
	for _, w := range e.wars {
		if w.Involves(key) {
			return
		}
	}
	if st, ok := e.states[key]; ok {
		e.Graves.Restore(st.Name, append([]state.PlayerID(nil), st.Members...))
	}
}
