package state

import (
	"testing"
	"time"
)

func TestWarRecordParticipants(t *testing.T) {
	w := &WarRecord{Declarer: "avalon", Defender: "camelot"}

	if !w.Involves("avalon") || !w.Involves("camelot") {
		t.Fatal("participant not recognized")
	}
	if w.Involves("lyonesse") {
		t.Fatal("bystander recognized as participant")
	}
	if got := w.Opponent("avalon"); got != "camelot" {
		t.Fatalf("Opponent(avalon) = %q, want camelot", got)
	}
	if got := w.Opponent("camelot"); got != "avalon" {
		t.Fatalf("Opponent(camelot) = %q, want avalon", got)
	}
	if got := w.Opponent("lyonesse"); got != "" {
		t.Fatalf("Opponent(bystander) = %q, want empty", got)
	}
}

func TestCondemnationWindows(t *testing.T) {
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	c := &Condemnation{
		Attacker:  "avalon",
		Target:    "camelot",
		CreatedAt: base,
		MaturesAt: base.Add(10 * time.Minute),
		ExpiresAt: base.Add(time.Hour),
	}

	if c.Matured(base) {
		t.Fatal("matured at creation")
	}
	if !c.Matured(base.Add(10 * time.Minute)) {
		t.Fatal("not matured at the maturation instant")
	}
	if c.Expired(base.Add(time.Hour)) {
		t.Fatal("expired at the expiry instant")
	}
	if !c.Expired(base.Add(time.Hour + time.Nanosecond)) {
		t.Fatal("not expired past the window")
	}
}

func TestTransientRecordExpiry(t *testing.T) {
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	end := base.Add(2 * time.Minute)

	records := []interface{ Expired(time.Time) bool }{
		&SurrenderRequest{ExpiresAt: end},
		&SectorGiftRequest{ExpiresAt: end},
		&PendingCampPlacement{ExpiresAt: end},
		&Invite{ExpiresAt: end},
		&JoinRequest{ExpiresAt: end},
	}
	for i, r := range records {
		if r.Expired(base) {
			t.Fatalf("record %d expired before its window", i)
		}
		if r.Expired(end) {
			t.Fatalf("record %d expired at the boundary instant", i)
		}
		if !r.Expired(end.Add(time.Second)) {
			t.Fatalf("record %d not expired past its window", i)
		}
	}
}
