package engine

import (
	"testing"
)

func TestAssignGovernor(t *testing.T) {
	e, _ := newTestEngine(t)
	foundState(t, e, "alice", "Avalon")
	addMember(t, e, "alice", "bob")
	addMember(t, e, "alice", "carol")
	addSector(t, e, "alice", "Eastmarch", 300, 300)
	addSector(t, e, "alice", "Westreach", 600, 600)

	if res := e.AssignGovernor("bob", "carol", "Eastmarch"); res.Status != AssignGovernorNotCaptain {
		t.Fatalf("member assigning = %s, want NOT_CAPTAIN", res.Status)
	}
	if res := e.AssignGovernor("alice", "", "Eastmarch"); res.Status != AssignGovernorPlayerNotFound {
		t.Fatalf("empty player = %s, want PLAYER_NOT_FOUND", res.Status)
	}
	if res := e.AssignGovernor("alice", "dave", "Eastmarch"); res.Status != AssignGovernorNotMember {
		t.Fatalf("outsider = %s, want NOT_MEMBER", res.Status)
	}
	if res := e.AssignGovernor("alice", "bob", "Nowhere"); res.Status != AssignGovernorSectorNotFound {
		t.Fatalf("unknown sector = %s, want SECTOR_NOT_FOUND", res.Status)
	}

	if res := e.AssignGovernor("alice", "bob", "Eastmarch"); res.Status != AssignGovernorOK {
		t.Fatalf("assign = %s, want OK", res.Status)
	}
	if res := e.AssignGovernor("alice", "bob", "Eastmarch"); res.Status != AssignGovernorAlreadyAssigned {
		t.Fatalf("repeat assign = %s, want ALREADY_ASSIGNED", res.Status)
	}

	// Replacing the governor of a sector reports the displaced member.
	res := e.AssignGovernor("alice", "carol", "Eastmarch")
	if res.Status != AssignGovernorOK {
		t.Fatalf("replace = %s, want OK", res.Status)
	}
	if res.ReplacedGovernor != "bob" {
		t.Fatalf("ReplacedGovernor = %q, want bob", res.ReplacedGovernor)
	}

	// Moving a governor to another sector clears the old assignment.
	res = e.AssignGovernor("alice", "carol", "Westreach")
	if res.Status != AssignGovernorOK {
		t.Fatalf("move = %s, want OK", res.Status)
	}
	if res.PreviousSector != "Eastmarch" {
		t.Fatalf("PreviousSector = %q, want Eastmarch", res.PreviousSector)
	}
	st := e.FindState("Avalon")
	if st.Sector("Eastmarch").Governor != nil {
		t.Fatal("old sector kept its governor after the move")
	}
	if gov := st.Sector("Westreach").Governor; gov == nil || *gov != "carol" {
		t.Fatal("new sector missing its governor")
	}
}

func TestRemoveGovernor(t *testing.T) {
	e, _ := newTestEngine(t)
	foundState(t, e, "alice", "Avalon")
	addMember(t, e, "alice", "bob")
	addSector(t, e, "alice", "Eastmarch", 300, 300)
	if res := e.AssignGovernor("alice", "bob", "Eastmarch"); res.Status != AssignGovernorOK {
		t.Fatalf("AssignGovernor = %s", res.Status)
	}

	if res := e.RemoveGovernor("bob", "bob"); res.Status != RemoveGovernorNotCaptain {
		t.Fatalf("member removing = %s, want NOT_CAPTAIN", res.Status)
	}
	res := e.RemoveGovernor("alice", "bob")
	if res.Status != RemoveGovernorOK || res.Sector != "Eastmarch" {
		t.Fatalf("remove = %+v, want OK/Eastmarch", res)
	}
	if res := e.RemoveGovernor("alice", "bob"); res.Status != RemoveGovernorNotGovernor {
		t.Fatalf("repeat remove = %s, want NOT_GOVERNOR", res.Status)
	}
}

func TestRemoveSector(t *testing.T) {
	e, _ := newTestEngine(t)
	st := foundState(t, e, "alice", "Avalon")
	addMember(t, e, "alice", "bob")
	addMember(t, e, "alice", "carol")
	addSector(t, e, "alice", "Eastmarch", 300, 300)
	addSector(t, e, "alice", "Westreach", 600, 600)
	if res := e.AssignGovernor("alice", "bob", "Eastmarch"); res.Status != AssignGovernorOK {
		t.Fatalf("AssignGovernor = %s", res.Status)
	}

	// The capital is removal-protected for everyone.
	if res := e.RemoveSector("alice", "Avalon"); res.Status != RemoveSectorCapital {
		t.Fatalf("remove capital = %s, want CAPITAL_SECTOR", res.Status)
	}
	// Plain members cannot remove sectors they do not govern.
	if res := e.RemoveSector("carol", "Westreach"); res.Status != RemoveSectorNotAuthorized {
		t.Fatalf("member remove = %s, want NOT_AUTHORIZED", res.Status)
	}
	if res := e.RemoveSector("bob", "Westreach"); res.Status != RemoveSectorNotAuthorized {
		t.Fatalf("governor of other sector = %s, want NOT_AUTHORIZED", res.Status)
	}
	// A governor can unclaim their own sector.
	if res := e.RemoveSector("bob", "Eastmarch"); res.Status != RemoveSectorOK {
		t.Fatalf("governor remove own = %s, want OK", res.Status)
	}
	// The captain can unclaim any non-capital sector.
	if res := e.RemoveSector("alice", "Westreach"); res.Status != RemoveSectorOK {
		t.Fatalf("captain remove = %s, want OK", res.Status)
	}
	if res := e.RemoveSector("alice", "Westreach"); res.Status != RemoveSectorNotFound {
		t.Fatalf("repeat remove = %s, want NOT_FOUND", res.Status)
	}
	if len(st.OrderedSectors()) != 1 {
		t.Fatalf("expected only the capital left, got %d sectors", len(st.OrderedSectors()))
	}
}

func TestTeleportToSector(t *testing.T) {
	e, _ := newTestEngine(t)
	foundState(t, e, "alice", "Avalon")

	if res := e.TeleportToSector("ghost", "Avalon"); res.Status != TeleportNotInState {
		t.Fatalf("outsider = %s, want NOT_IN_STATE", res.Status)
	}
	if res := e.TeleportToSector("alice", "Nowhere"); res.Status != TeleportSectorNotFound {
		t.Fatalf("unknown sector = %s, want SECTOR_NOT_FOUND", res.Status)
	}
	res := e.TeleportToSector("alice", "avalon")
	if res.Status != TeleportOK {
		t.Fatalf("teleport = %s, want OK", res.Status)
	}
	if res.Location.World != "overworld" || res.Location.X != 100 || res.Location.Z != 100 {
		t.Fatalf("anchor = %+v, want the founding location", res.Location)
	}
}
