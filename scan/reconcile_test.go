package scan

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"auctionscan/common/types"
)

func testRefresh(ledger *fakeLedger) func(ctx context.Context, id uint64) (*View, error) {
	reader := NewReader(ledger, testExecutor())
	return func(ctx context.Context, id uint64) (*View, error) {
		record, err := reader.Auction(ctx, id)
		if err != nil {
			return nil, err
		}
		if !record.Exists() {
			return nil, nil
		}
		tokens, err := reader.AuctionTokens(ctx, id)
		if err != nil {
			return nil, err
		}
		return Derive(record, tokens, nil, "", time.Now()), nil
	}
}

func confirmedTx(hash string, intent TxIntent, entityId uint64) *PendingTx {
	return &PendingTx{
		Hash:     types.Hash("0x" + hash),
		Intent:   intent,
		Caller:   testBidder,
		Status:   StatusConfirmed,
		EntityId: entityId,
		Payload:  Payload{AuctionId: entityId, Amount: "2500"},
	}
}

func TestReconcileCreateUpsertsOnce(t *testing.T) {
	ledger := newFakeLedger()
	ledger.add(activeRecord(5, time.Hour), 1)
	store := &fakeStore{}
	reconciler := NewReconciler(store, NewProcessedSet(), testRefresh(ledger))

	tx := confirmedTx("a1", IntentCreateAuction, 5)
	if err := reconciler.Reconcile(context.Background(), tx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// duplicate delivery of the same confirmation is an acknowledged no-op
	if err := reconciler.Reconcile(context.Background(), tx); err != nil {
		t.Fatalf("duplicate must be a no-op, got %v", err)
	}
	if n := store.count("upsert"); n != 1 {
		t.Fatalf("upserts = %v, want exactly 1", n)
	}
}

func TestReconcileConcurrentDuplicates(t *testing.T) {
	ledger := newFakeLedger()
	ledger.add(activeRecord(5, time.Hour), 1)
	store := &fakeStore{}
	reconciler := NewReconciler(store, NewProcessedSet(), testRefresh(ledger))

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			reconciler.Reconcile(context.Background(), confirmedTx("b2", IntentCreateAuction, 5))
		}()
	}
	wg.Wait()

	if n := store.count("upsert"); n != 1 {
		t.Fatalf("upserts = %v, want exactly 1 across concurrent duplicates", n)
	}
}

func TestReconcileStoreFailureRollsBackMark(t *testing.T) {
	ledger := newFakeLedger()
	ledger.add(activeRecord(5, time.Hour), 1)
	store := &fakeStore{fail: errors.New("Error 1205: Lock wait timeout exceeded")}
	processed := NewProcessedSet()
	reconciler := NewReconciler(store, processed, testRefresh(ledger))

	tx := confirmedTx("c3", IntentPlaceBid, 5)
	if err := reconciler.Reconcile(context.Background(), tx); err == nil {
		t.Fatalf("store failure must surface")
	}
	if processed.Contains(tx.Hash) {
		t.Fatalf("failed reconciliation must not leave the hash marked processed")
	}

	// the retry after the store recovers goes through
	store.fail = nil
	if err := reconciler.Reconcile(context.Background(), tx); err != nil {
		t.Fatalf("retry after rollback failed: %v", err)
	}
	if store.count("bid") != 1 || store.count("upsert") != 1 {
		t.Fatalf("bid confirmation should record the increment and refresh the row: %v", store.calls)
	}
}

func TestReconcileIntentDispatch(t *testing.T) {
	ledger := newFakeLedger()
	ledger.add(activeRecord(5, time.Hour), 1)
	store := &fakeStore{}
	reconciler := NewReconciler(store, NewProcessedSet(), testRefresh(ledger))

	if err := reconciler.Reconcile(context.Background(), confirmedTx("d1", IntentFinalize, 5)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := reconciler.Reconcile(context.Background(), confirmedTx("d2", IntentCancel, 5)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if store.count("finalize") != 1 || store.count("cancel") != 1 {
		t.Fatalf("terminal intents not dispatched: %v", store.calls)
	}
	if store.count("upsert") != 0 {
		t.Fatalf("terminal intents must not also upsert: %v", store.calls)
	}
}

func TestReconcileSkipsNonTerminalAndFailed(t *testing.T) {
	store := &fakeStore{}
	reconciler := NewReconciler(store, NewProcessedSet(), testRefresh(newFakeLedger()))

	for _, status := range []TxStatus{StatusSubmitted, StatusConfirming, StatusFailed, StatusConfirmedUnresolved} {
		tx := confirmedTx("e1", IntentPlaceBid, 5)
		tx.Status = status
		if err := reconciler.Reconcile(context.Background(), tx); err != nil {
			t.Fatalf("%v: unexpected error: %v", status, err)
		}
	}
	if len(store.calls) != 0 {
		t.Fatalf("only confirmed transactions may write: %v", store.calls)
	}
}
