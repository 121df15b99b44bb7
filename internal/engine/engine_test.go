package engine

import (
	"testing"
	"time"

	"github.com/talgya/statecraft/internal/config"
	"github.com/talgya/statecraft/internal/state"
)

// testClock is an adjustable clock so expiry and cooldown tests never
// sleep.
type testClock struct {
	now time.Time
}

func (c *testClock) Now() time.Time {
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.now = c.now.Add(d)
}

func newTestEngine(t *testing.T) (*Engine, *testClock) {
	t.Helper()
	clk := &testClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	e := New(config.Default())
	e.Clock = clk.Now
	return e, clk
}

// foundState runs the full founding workflow: command, then placement.
func foundState(t *testing.T, e *Engine, captain state.PlayerID, name string) *state.State {
	t.Helper()
	res := e.CreateState(captain, name, "monarchy")
	if res.Status != CreateStateOK {
		t.Fatalf("CreateState(%s): expected OK, got %s", name, res.Status)
	}
	pr := e.CompletePendingPlacement(captain, state.Location{World: "overworld", X: 100, Z: 100})
	if pr == nil || !pr.NewState {
		t.Fatalf("CompletePendingPlacement(%s): expected new state, got %+v", name, pr)
	}
	st := e.FindState(name)
	if st == nil {
		t.Fatalf("FindState(%s): state missing after founding", name)
	}
	return st
}

// addSector claims an additional sector for the captain's state.
func addSector(t *testing.T, e *Engine, captain state.PlayerID, sectorName string, x, z float64) {
	t.Helper()
	if status := e.PrepareNewSector(captain, sectorName); status != PrepareSectorOK {
		t.Fatalf("PrepareNewSector(%s): expected OK, got %s", sectorName, status)
	}
	pr := e.CompletePendingPlacement(captain, state.Location{World: "overworld", X: x, Z: z})
	if pr == nil {
		t.Fatalf("CompletePendingPlacement(%s): no result", sectorName)
	}
}

// addMember runs the invite handshake.
func addMember(t *testing.T, e *Engine, captain, target state.PlayerID) {
	t.Helper()
	if status := e.Invite(captain, target); status != InviteOK {
		t.Fatalf("Invite(%s): expected OK, got %s", target, status)
	}
	if status := e.AcceptInvite(target); status != RespondInviteAccepted {
		t.Fatalf("AcceptInvite(%s): expected ACCEPTED, got %s", target, status)
	}
}

func TestFindStateCaseInsensitive(t *testing.T) {
	e, _ := newTestEngine(t)
	foundState(t, e, "alice", "Avalon")

	for _, name := range []string{"Avalon", "avalon", "AVALON", " avalon "} {
		st := e.FindState(name)
		if st == nil {
			t.Fatalf("FindState(%q): expected state, got nil", name)
		}
		if st.Name != "Avalon" {
			t.Fatalf("FindState(%q): display name %q, want Avalon", name, st.Name)
		}
	}
	if e.FindState("camelot") != nil {
		t.Fatal("FindState(camelot): expected nil")
	}
}

func TestListStatesInsertionOrder(t *testing.T) {
	e, _ := newTestEngine(t)
	foundState(t, e, "alice", "Avalon")
	foundState(t, e, "bob", "Camelot")
	foundState(t, e, "carol", "Lyonesse")

	states := e.ListStates()
	want := []string{"Avalon", "Camelot", "Lyonesse"}
	if len(states) != len(want) {
		t.Fatalf("expected %d states, got %d", len(want), len(states))
	}
	for i, name := range want {
		if states[i].Name != name {
			t.Fatalf("states[%d] = %s, want %s", i, states[i].Name, name)
		}
	}
}

func TestCaptainIsAlwaysMember(t *testing.T) {
	e, _ := newTestEngine(t)
	st := foundState(t, e, "alice", "Avalon")

	if !st.HasMember("alice") {
		t.Fatal("captain is not a member")
	}
	if !e.IsCaptain("alice") {
		t.Fatal("IsCaptain(alice) = false")
	}
	if e.IsCaptain("bob") {
		t.Fatal("IsCaptain(bob) = true for a non-member")
	}
}

func TestNoMemberInTwoStates(t *testing.T) {
	e, _ := newTestEngine(t)
	foundState(t, e, "alice", "Avalon")
	foundState(t, e, "bob", "Camelot")
	addMember(t, e, "alice", "dave")

	// A second-state invite is refused outright.
	if status := e.Invite("bob", "dave"); status != InviteTargetInState {
		t.Fatalf("Invite into second state: expected TARGET_IN_STATE, got %s", status)
	}
	// Founding a second state is refused too.
	if res := e.CreateState("dave", "Lyonesse", ""); res.Status != CreateStateAlreadyInState {
		t.Fatalf("CreateState while member: expected ALREADY_IN_STATE, got %s", res.Status)
	}
	if got := e.StateNameOf("dave"); got != "Avalon" {
		t.Fatalf("StateNameOf(dave) = %q, want Avalon", got)
	}
}

func TestCampLookupByLocation(t *testing.T) {
	e, _ := newTestEngine(t)
	foundState(t, e, "alice", "Avalon")

	ref := e.FindCampByLocation("overworld", 110, 95)
	if ref == nil {
		t.Fatal("expected camp inside boundary, got nil")
	}
	if ref.StateName != "Avalon" {
		t.Fatalf("camp owner = %s, want Avalon", ref.StateName)
	}
	if e.FindCampByLocation("overworld", 500, 500) != nil {
		t.Fatal("expected nil outside boundary")
	}
	if e.FindCampByLocation("nether", 100, 100) != nil {
		t.Fatal("expected nil in a different world")
	}

	refs := e.FindCampsInRadius("overworld", 90, 90, 50)
	if len(refs) != 1 {
		t.Fatalf("expected 1 camp in radius, got %d", len(refs))
	}
	if e.FindCampsInRadius("overworld", 0, 0, 10) != nil {
		t.Fatal("expected no camps in far radius")
	}
}
