package engine

import (
	"testing"
	"time"

	"github.com/talgya/statecraft/internal/state"
)

// fakeItems is an item source with a flat per-player count of one item kind.
type fakeItems struct {
	counts map[state.PlayerID]int
}

func (f *fakeItems) HasItem(p state.PlayerID, item string) bool {
	return f.counts[p] > 0
}

func (f *fakeItems) ConsumeItem(p state.PlayerID, item string) bool {
	if f.counts[p] <= 0 {
		return false
	}
	f.counts[p]--
	return true
}

func TestCreateStateOutcomes(t *testing.T) {
	e, _ := newTestEngine(t)
	foundState(t, e, "alice", "Avalon")

	tests := []struct {
		name     string
		founder  state.PlayerID
		newState string
		want     CreateStateStatus
	}{
		{"member already in a state", "alice", "Lyonesse", CreateStateAlreadyInState},
		{"name taken", "bob", "Avalon", CreateStateNameTaken},
		{"name taken case-insensitively", "bob", "AVALON", CreateStateNameTaken},
		{"blank name", "bob", "   ", CreateStateInvalidName},
		{"ok", "bob", "Camelot", CreateStateOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := e.CreateState(tt.founder, tt.newState, "")
			if res.Status != tt.want {
				t.Fatalf("CreateState(%s, %q) = %s, want %s", tt.founder, tt.newState, res.Status, tt.want)
			}
		})
	}

	// bob now has a staged placement, so a second command is refused.
	if res := e.CreateState("bob", "Lyonesse", ""); res.Status != CreateStateAlreadyPending {
		t.Fatalf("second CreateState while pending = %s, want ALREADY_PENDING", res.Status)
	}
}

func TestCreateStateRequiresItem(t *testing.T) {
	e, _ := newTestEngine(t)
	items := &fakeItems{counts: map[state.PlayerID]int{"alice": 1}}
	e.Items = items

	if res := e.CreateState("bob", "Camelot", ""); res.Status != CreateStateNoItem {
		t.Fatalf("CreateState without item = %s, want NO_ITEM", res.Status)
	}

	res := e.CreateState("alice", "Avalon", "")
	if res.Status != CreateStateOK {
		t.Fatalf("CreateState with item = %s, want OK", res.Status)
	}
	// The item is only consumed when the camp is placed.
	if items.counts["alice"] != 1 {
		t.Fatalf("item consumed at command time, count = %d", items.counts["alice"])
	}
	if pr := e.CompletePendingPlacement("alice", state.Location{World: "overworld"}); pr == nil || !pr.NewState {
		t.Fatalf("CompletePendingPlacement = %+v, want new state", pr)
	}
	if items.counts["alice"] != 0 {
		t.Fatalf("item not consumed on placement, count = %d", items.counts["alice"])
	}
}

func TestPlacementExpires(t *testing.T) {
	e, clk := newTestEngine(t)
	if res := e.CreateState("alice", "Avalon", ""); res.Status != CreateStateOK {
		t.Fatalf("CreateState = %s", res.Status)
	}

	clk.Advance(e.Config().PlacementExpiry + time.Second)
	if pr := e.CompletePendingPlacement("alice", state.Location{World: "overworld"}); pr != nil {
		t.Fatalf("expired placement resolved: %+v", pr)
	}
	if e.FindState("Avalon") != nil {
		t.Fatal("state exists despite expired placement")
	}
	// The slot is free again.
	if res := e.CreateState("alice", "Avalon", ""); res.Status != CreateStateOK {
		t.Fatalf("CreateState after expiry = %s, want OK", res.Status)
	}
}

func TestCompletePlacementIdempotent(t *testing.T) {
	e, _ := newTestEngine(t)
	foundState(t, e, "alice", "Avalon")

	if pr := e.CompletePendingPlacement("alice", state.Location{World: "overworld"}); pr != nil {
		t.Fatalf("second placement produced a result: %+v", pr)
	}
}

func TestDuplicateSectorNameRefused(t *testing.T) {
	e, _ := newTestEngine(t)
	foundState(t, e, "alice", "Avalon")

	// The capital sector already carries the state name.
	if status := e.PrepareNewSector("alice", "avalon"); status != PrepareSectorNameTaken {
		t.Fatalf("duplicate sector name = %s, want NAME_TAKEN", status)
	}
}

func TestFoundingNameRaceGetsSuffix(t *testing.T) {
	e, _ := newTestEngine(t)

	// Both founders stage the same name before either places a camp.
	if res := e.CreateState("alice", "Avalon", ""); res.Status != CreateStateOK {
		t.Fatalf("CreateState(alice) = %s", res.Status)
	}
	if res := e.CreateState("bob", "Avalon", ""); res.Status != CreateStateOK {
		t.Fatalf("CreateState(bob) = %s", res.Status)
	}

	if pr := e.CompletePendingPlacement("alice", state.Location{World: "overworld"}); pr == nil || pr.StateName != "Avalon" {
		t.Fatalf("first placement = %+v, want Avalon", pr)
	}
	pr := e.CompletePendingPlacement("bob", state.Location{World: "overworld", X: 500, Z: 500})
	if pr == nil || pr.StateName != "Avalon-2" {
		t.Fatalf("second placement = %+v, want Avalon-2", pr)
	}
	if e.FindState("Avalon-2") == nil {
		t.Fatal("renamed state not findable")
	}
}

func TestPrepareNewSectorCaptainOnly(t *testing.T) {
	e, _ := newTestEngine(t)
	foundState(t, e, "alice", "Avalon")
	addMember(t, e, "alice", "bob")

	if status := e.PrepareNewSector("bob", "Eastmarch"); status != PrepareSectorNotAuthorized {
		t.Fatalf("member PrepareNewSector = %s, want NOT_AUTHORIZED", status)
	}
	if status := e.PrepareNewSector("carol", "Eastmarch"); status != PrepareSectorNotInState {
		t.Fatalf("outsider PrepareNewSector = %s, want NOT_IN_STATE", status)
	}
}

func TestInviteLifecycle(t *testing.T) {
	e, clk := newTestEngine(t)
	foundState(t, e, "alice", "Avalon")

	if status := e.Invite("bob", "carol"); status != InviteNotCaptain {
		t.Fatalf("non-captain invite = %s, want NOT_CAPTAIN", status)
	}
	if status := e.Invite("alice", "alice"); status != InviteSelf {
		t.Fatalf("self invite = %s, want SELF", status)
	}
	if status := e.Invite("alice", "bob"); status != InviteOK {
		t.Fatalf("invite = %s, want OK", status)
	}
	if status := e.Invite("alice", "bob"); status != InviteAlreadyInvited {
		t.Fatalf("duplicate invite = %s, want ALREADY_INVITED", status)
	}

	// Expiry clears the invite without any answer.
	clk.Advance(e.Config().InviteExpiry + time.Second)
	if status := e.AcceptInvite("bob"); status != RespondInviteExpired {
		t.Fatalf("accept after expiry = %s, want EXPIRED", status)
	}
	if status := e.AcceptInvite("bob"); status != RespondInviteNoInvite {
		t.Fatalf("accept with no invite = %s, want NO_INVITE", status)
	}

	// A fresh invite can be denied.
	if status := e.Invite("alice", "bob"); status != InviteOK {
		t.Fatal("re-invite refused")
	}
	if status := e.DenyInvite("bob"); status != RespondInviteDenied {
		t.Fatalf("deny = %s, want DENIED", status)
	}
	if e.StateOf("bob") != nil {
		t.Fatal("denied invitee joined anyway")
	}
}

func TestAcceptInviteStateGone(t *testing.T) {
	e, _ := newTestEngine(t)
	foundState(t, e, "alice", "Avalon")
	if status := e.Invite("alice", "bob"); status != InviteOK {
		t.Fatal("invite refused")
	}
	if status := e.DeleteState("alice"); status != DeleteStateOK {
		t.Fatal("delete refused")
	}
	// The cascade purges invites with the state, so nothing is pending.
	if status := e.AcceptInvite("bob"); status != RespondInviteNoInvite {
		t.Fatalf("accept after delete = %s, want NO_INVITE", status)
	}
}

func TestJoinRequestLifecycle(t *testing.T) {
	e, _ := newTestEngine(t)
	foundState(t, e, "alice", "Avalon")

	if status := e.RequestJoin("bob", "Nowhere"); status != JoinRequestStateNotFound {
		t.Fatalf("join unknown state = %s, want STATE_NOT_FOUND", status)
	}
	if status := e.RequestJoin("bob", "avalon"); status != JoinRequestOK {
		t.Fatalf("join request = %s, want OK", status)
	}
	if status := e.RequestJoin("bob", "Avalon"); status != JoinRequestAlreadyRequested {
		t.Fatalf("duplicate join request = %s, want ALREADY_REQUESTED", status)
	}
	if status := e.RespondJoinRequest("bob", true, "bob"); status != RespondJoinNotCaptain {
		t.Fatalf("self-approve = %s, want NOT_CAPTAIN", status)
	}
	if status := e.RespondJoinRequest("alice", true, "bob"); status != RespondJoinAccepted {
		t.Fatalf("approve = %s, want ACCEPTED", status)
	}
	if got := e.StateNameOf("bob"); got != "Avalon" {
		t.Fatalf("StateNameOf(bob) = %q, want Avalon", got)
	}
	if status := e.RespondJoinRequest("alice", true, "bob"); status != RespondJoinNoRequest {
		t.Fatalf("second approve = %s, want NO_REQUEST", status)
	}
}

func TestLeaveAndKick(t *testing.T) {
	e, _ := newTestEngine(t)
	st := foundState(t, e, "alice", "Avalon")
	addMember(t, e, "alice", "bob")
	addMember(t, e, "alice", "carol")
	addSector(t, e, "alice", "Eastmarch", 300, 300)
	if res := e.AssignGovernor("alice", "bob", "Eastmarch"); res.Status != AssignGovernorOK {
		t.Fatalf("AssignGovernor = %s", res.Status)
	}

	if status := e.LeaveState("alice"); status != LeaveIsCaptain {
		t.Fatalf("captain leave = %s, want IS_CAPTAIN", status)
	}
	if status := e.LeaveState("dave"); status != LeaveNotInState {
		t.Fatalf("outsider leave = %s, want NOT_IN_STATE", status)
	}
	if status := e.LeaveState("bob"); status != LeaveOK {
		t.Fatalf("member leave = %s, want OK", status)
	}
	if st.HasMember("bob") {
		t.Fatal("bob still a member after leaving")
	}
	if gov := st.Sector("Eastmarch").Governor; gov != nil {
		t.Fatalf("departed member still governor of Eastmarch: %s", *gov)
	}

	if status := e.KickMember("alice", "alice"); status != KickIsCaptain {
		t.Fatalf("self kick = %s, want IS_CAPTAIN", status)
	}
	if status := e.KickMember("alice", "bob"); status != KickNotMember {
		t.Fatalf("kick ex-member = %s, want NOT_MEMBER", status)
	}
	if status := e.KickMember("alice", "carol"); status != KickOK {
		t.Fatalf("kick = %s, want OK", status)
	}
	if e.StateOf("carol") != nil {
		t.Fatal("kicked member still indexed")
	}
}

func TestDeleteStateCascade(t *testing.T) {
	e, _ := newTestEngine(t)
	foundState(t, e, "alice", "Avalon")
	addMember(t, e, "alice", "bob")
	foundState(t, e, "carol", "Camelot")

	if status := e.DeleteState("bob"); status != DeleteStateNotCaptain {
		t.Fatalf("member delete = %s, want NOT_CAPTAIN", status)
	}
	if status := e.DeleteState("alice"); status != DeleteStateOK {
		t.Fatalf("delete = %s, want OK", status)
	}
	if e.FindState("Avalon") != nil {
		t.Fatal("state still findable after delete")
	}
	if e.StateOf("alice") != nil || e.StateOf("bob") != nil {
		t.Fatal("member index survives state deletion")
	}
	// Unrelated states are untouched.
	if e.FindState("Camelot") == nil {
		t.Fatal("unrelated state lost")
	}

	if e.AdminDeleteState("Camelot") != true {
		t.Fatal("AdminDeleteState refused existing state")
	}
	if e.AdminDeleteState("Camelot") != false {
		t.Fatal("AdminDeleteState reported success twice")
	}
}
