package scan

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"auctionscan/model"
	"auctionscan/retry"
)

func testDiscoverer(ledger *fakeLedger, window, fallback uint64) *Discoverer {
	return NewDiscoverer(NewReader(ledger, testExecutor()), DiscoverConfig{
		Window:        window,
		FallbackRange: fallback,
		BatchSize:     5,
	})
}

func TestDiscoverProbesWindowAroundActiveSet(t *testing.T) {
	ledger := newFakeLedger()
	ledger.add(activeRecord(42, time.Hour), 1)
	ledger.active = []uint64{42}

	// finalized neighbor inside the [32,52] window
	finalized := activeRecord(35, -time.Hour)
	finalized.Flag = model.FlagFinalized
	ledger.add(finalized, 2)

	// existing auction outside the window must not be found
	ledger.add(activeRecord(90, time.Hour), 3)

	ids, err := testDiscoverer(ledger, 10, 20).Discover(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ids) != 2 || ids[0] != 35 || ids[1] != 42 {
		t.Fatalf("ids = %v, want [35 42]", ids)
	}
}

func TestDiscoverWindowClampsAtOne(t *testing.T) {
	ledger := newFakeLedger()
	ledger.add(activeRecord(3, time.Hour), 1)
	ledger.active = []uint64{3}

	ids, err := testDiscoverer(ledger, 10, 20).Discover(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ids) != 1 || ids[0] != 3 {
		t.Fatalf("ids = %v, want [3]", ids)
	}
}

func TestDiscoverFallbackRange(t *testing.T) {
	ledger := newFakeLedger()
	ledger.add(activeRecord(5, -time.Hour), 1)
	ledger.add(activeRecord(17, -time.Hour), 2)
	ledger.add(activeRecord(30, time.Hour), 3) // beyond fallback range

	ids, err := testDiscoverer(ledger, 10, 20).Discover(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ids) != 2 || ids[0] != 5 || ids[1] != 17 {
		t.Fatalf("ids = %v, want [5 17]", ids)
	}
}

func TestDiscoverActiveSetFailureAborts(t *testing.T) {
	ledger := newFakeLedger()
	ledger.activeErr = errors.New("execution reverted")

	if _, err := testDiscoverer(ledger, 10, 20).Discover(context.Background()); err == nil {
		t.Fatalf("expected error when the active set read fails")
	}
	if n := atomic.LoadInt32(&ledger.probed); n != 0 {
		t.Fatalf("no probes should run after the active set fails, got %v", n)
	}
}

func TestDiscoverActiveSetTimeoutExhaustsRetries(t *testing.T) {
	ledger := newFakeLedger()
	ledger.activeErr = errors.New("i/o timeout")

	_, err := testDiscoverer(ledger, 10, 20).Discover(context.Background())
	if err == nil {
		t.Fatalf("expected error when every active set attempt times out")
	}
	if !retry.IsFinal(err) {
		t.Fatalf("err = %v, want exhausted-retries failure", err)
	}
	if n := atomic.LoadInt32(&ledger.probed); n != 0 {
		t.Fatalf("no probes should run after the active set fails, got %v", n)
	}
}

func TestDiscoverSingleProbeFailureIsDropped(t *testing.T) {
	ledger := newFakeLedger()
	ledger.add(activeRecord(10, time.Hour), 1)
	ledger.add(activeRecord(12, time.Hour), 2)
	ledger.active = []uint64{10, 12}
	ledger.auctionErr[11] = errors.New("execution reverted")

	ids, err := testDiscoverer(ledger, 2, 20).Discover(context.Background())
	if err != nil {
		t.Fatalf("probe failure must not fail the pass: %v", err)
	}
	if len(ids) != 2 || ids[0] != 10 || ids[1] != 12 {
		t.Fatalf("ids = %v, want [10 12]", ids)
	}
}

func TestDiscoverCancelledReturnsPartial(t *testing.T) {
	ledger := newFakeLedger()
	ledger.add(activeRecord(50, time.Hour), 1)
	ledger.active = []uint64{50}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ids, err := testDiscoverer(ledger, 10, 20).Discover(context.Background())
	if err != nil || len(ids) != 1 {
		t.Fatalf("sanity pass failed: ids=%v err=%v", ids, err)
	}

	// cancelled before probing: active ids still come back
	ids, err = testDiscoverer(ledger, 10, 20).Discover(ctx)
	if err != nil {
		t.Fatalf("cancellation must not discard the partial set: %v", err)
	}
	if len(ids) != 1 || ids[0] != 50 {
		t.Fatalf("ids = %v, want the already-known [50]", ids)
	}
}
