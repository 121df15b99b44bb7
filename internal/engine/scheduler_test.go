package engine

import (
	"sync"
	"testing"
	"time"

	"github.com/talgya/statecraft/internal/config"
	"github.com/talgya/statecraft/internal/economy"
)

func TestSweepReclaimsExpiredRecords(t *testing.T) {
	e, clk := newTestEngine(t)
	warReady(t, e, "alice", "Avalon")
	foundState(t, e, "bob", "Camelot")

	if res := e.CreateState("dave", "Lyonesse", ""); res.Status != CreateStateOK {
		t.Fatalf("CreateState = %s", res.Status)
	}
	if status := e.Invite("bob", "erin"); status != InviteOK {
		t.Fatalf("Invite = %s", status)
	}
	if status := e.RequestJoin("frank", "Avalon"); status != JoinRequestOK {
		t.Fatalf("RequestJoin = %s", status)
	}
	if res := e.Condemn("alice", "Camelot"); res.Status != CondemnOK {
		t.Fatalf("Condemn = %s", res.Status)
	}

	if len(e.placements) != 1 || len(e.invites) != 1 || len(e.joinRequests) != 1 || len(e.condemnations) != 1 {
		t.Fatal("fixture records missing")
	}

	// Nothing has expired yet; the sweep must not touch live records.
	e.Sweep()
	if len(e.placements) != 1 || len(e.invites) != 1 || len(e.joinRequests) != 1 || len(e.condemnations) != 1 {
		t.Fatal("sweep reclaimed live records")
	}

	clk.Advance(e.Config().CondemnExpiry + time.Second)
	e.Sweep()
	if len(e.placements) != 0 {
		t.Fatalf("placements after sweep = %d", len(e.placements))
	}
	if len(e.invites) != 0 {
		t.Fatalf("invites after sweep = %d", len(e.invites))
	}
	if len(e.joinRequests) != 0 {
		t.Fatalf("join requests after sweep = %d", len(e.joinRequests))
	}
	if len(e.condemnations) != 0 {
		t.Fatalf("condemnations after sweep = %d", len(e.condemnations))
	}
}

func TestSweepKeepsGiftsInsideCooldown(t *testing.T) {
	cfg := config.Default()
	cfg.GiftCooldown = 3 * cfg.GiftExpiry
	e := New(cfg)
	clk := &testClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	e.Clock = clk.Now
	foundState(t, e, "alice", "Avalon")
	foundState(t, e, "bob", "Camelot")
	addSector(t, e, "alice", "Eastmarch", 300, 300)
	if res := e.RequestSectorGift("alice", "Eastmarch", "Camelot"); res.Status != GiftRequestOK {
		t.Fatalf("gift = %s", res.Status)
	}

	// Expired but still inside the anti-spam window: kept, so a repeat
	// offer can report the remaining wait.
	clk.Advance(cfg.GiftExpiry + time.Second)
	e.Sweep()
	if len(e.gifts) != 1 {
		t.Fatalf("gifts after early sweep = %d, want 1", len(e.gifts))
	}

	clk.Advance(cfg.GiftCooldown)
	e.Sweep()
	if len(e.gifts) != 0 {
		t.Fatalf("gifts after late sweep = %d, want 0", len(e.gifts))
	}
}

func TestSweepDropsLapsedCooldowns(t *testing.T) {
	e, clk := newTestEngine(t)
	warReady(t, e, "alice", "Avalon")
	warReady(t, e, "bob", "Camelot")
	declareWar(t, e, clk, "alice", "Camelot")
	if w := e.AdminStopWar("Avalon", "Camelot"); w == nil {
		t.Fatal("AdminStopWar found no war")
	}
	if len(e.cooldowns) != 2 {
		t.Fatalf("cooldowns = %d, want 2", len(e.cooldowns))
	}

	e.Sweep()
	if len(e.cooldowns) != 2 {
		t.Fatal("sweep dropped running cooldowns")
	}
	clk.Advance(e.Config().WarCooldown + time.Second)
	e.Sweep()
	if len(e.cooldowns) != 0 {
		t.Fatalf("cooldowns after sweep = %d, want 0", len(e.cooldowns))
	}
}

func TestSchedulerCadence(t *testing.T) {
	cfg := config.Default()
	cfg.SweepInterval = time.Second
	cfg.TaxInterval = 3 * time.Second
	cfg.SaveInterval = 4 * time.Second
	e := New(cfg)
	clk := &testClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	e.Clock = clk.Now

	eco := economy.NewMemory()
	e.Economy = eco
	st := foundState(t, e, "alice", "Avalon")
	eco.SetBalance("alice", 1000)
	if res := e.Deposit("alice", 500); res.Status != BankOK {
		t.Fatalf("Deposit = %s", res.Status)
	}
	if status := e.SetTaxAmount("alice", 10); status != SetTaxOK {
		t.Fatalf("SetTaxAmount = %s", status)
	}

	s := NewScheduler(e)
	saves := 0
	s.OnSave = func() { saves++ }

	for i := 0; i < 12; i++ {
		s.step()
	}

	// Twelve ticks at one per second: four tax rounds, three saves.
	if st.Balance != 500-4*10 {
		t.Fatalf("balance = %.2f, want 460", st.Balance)
	}
	if saves != 3 {
		t.Fatalf("saves = %d, want 3", saves)
	}
}

func TestSchedulerStopIdempotent(t *testing.T) {
	e, _ := newTestEngine(t)
	s := NewScheduler(e)

	done := make(chan struct{})
	go func() {
		s.Run()
		close(done)
	}()

	s.Stop()
	s.Stop() // second call must not panic
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("scheduler did not stop")
	}
}


func TestSchedulerStopConcurrent(t *testing.T) {
	e, _ := newTestEngine(t)
	s := NewScheduler(e)

	done := make(chan struct{})
	go func() {
		s.Run()
		close(done)
	}()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.Stop()
		}()
	}
	wg.Wait()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("scheduler did not stop")
	}
}
