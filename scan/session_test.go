package scan

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"auctionscan/common/types"
	"auctionscan/model"
	"auctionscan/node"
)

func testSession(ledger *fakeLedger, receipts *fakeReceipts, store *fakeStore, caller types.Address) *Session {
	return New(NewReader(ledger, testExecutor()), receipts, store, testContract, Config{
		Caller: caller,
		Discover: DiscoverConfig{
			Window:        10,
			FallbackRange: 20,
			BatchSize:     5,
		},
		Track: TrackConfig{
			PollInterval:  time.Millisecond,
			Timeout:       time.Second,
			LogRetries:    1,
			LogRetryDelay: time.Millisecond,
		},
	})
}

func TestSessionAuctionByIdNotFound(t *testing.T) {
	session := testSession(newFakeLedger(), newFakeReceipts(), &fakeStore{}, testBidder)
	defer session.Close()

	_, err := session.AuctionById(context.Background(), 99)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestSessionAuctionByIdWithOwnBid(t *testing.T) {
	ledger := newFakeLedger()
	ledger.add(activeRecord(4, time.Hour), 11, 12)
	ledger.bids[4] = &model.Bid{Bidder: testBidder, Amount: "3000"}

	session := testSession(ledger, newFakeReceipts(), &fakeStore{}, testBidder)
	defer session.Close()

	view, err := session.AuctionById(context.Background(), 4)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !view.HasMyBid || view.MyBid.Amount != "3000" {
		t.Fatalf("own bid not surfaced: %+v", view)
	}
	if view.NftCount != 2 || !view.IsCollection {
		t.Fatalf("item fields wrong: %+v", view)
	}
}

func TestSessionDiscoverDropsBrokenAuction(t *testing.T) {
	ledger := newFakeLedger()
	ledger.add(activeRecord(10, time.Hour), 1)
	ledger.add(activeRecord(11, time.Hour), 2)
	ledger.active = []uint64{10, 11}

	session := testSession(ledger, newFakeReceipts(), &fakeStore{}, testBidder)
	defer session.Close()

	views, err := session.DiscoverAuctions(context.Background())
	if err != nil || len(views) != 2 {
		t.Fatalf("sanity pass: views=%v err=%v", len(views), err)
	}

	// one auction starts failing, the rest of the pass survives
	ledger.auctionErr[11] = errors.New("execution reverted")
	views, err = session.DiscoverAuctions(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(views) != 1 || views[0].Id != 10 {
		t.Fatalf("views = %v, want only auction 10", len(views))
	}
}

func TestSessionSubmitTrackReconcile(t *testing.T) {
	ledger := newFakeLedger()
	ledger.add(activeRecord(5, time.Hour), 1)

	hash := types.Hash("0xf1")
	receipts := newFakeReceipts()
	receipts.receipts[hash] = successReceipt(hash, &node.EventLog{
		Address: testContract,
		Topics:  types.StrArray{topicBidPlaced, idTopic(5)},
	})

	store := &fakeStore{}
	session := testSession(ledger, receipts, store, testBidder)

	tx, err := session.SubmitAndTrack(context.Background(), IntentPlaceBid, Payload{AuctionId: 5, Amount: "2500"},
		func(ctx context.Context) (types.Hash, error) { return hash, nil })
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tx.Status != StatusSubmitted {
		t.Fatalf("fresh handle status = %v, want submitted", tx.Status)
	}

	session.Close() // waits for the watch goroutine

	final, ok := session.Pending(hash)
	if !ok || final.Status != StatusConfirmed || final.EntityId != 5 {
		t.Fatalf("final = %+v, want confirmed 5", final)
	}
	if store.count("bid") != 1 || store.count("upsert") != 1 {
		t.Fatalf("cache writes = %v, want one bid and one upsert", store.calls)
	}
}

func TestSessionHandlesAreSnapshots(t *testing.T) {
	ledger := newFakeLedger()
	ledger.add(activeRecord(5, time.Hour), 1)

	hash := types.Hash("0xf4")
	receipts := newFakeReceipts()
	receipts.pending[hash] = 20 // keep the watcher polling while readers hammer Pending
	receipts.receipts[hash] = successReceipt(hash, &node.EventLog{
		Address: testContract,
		Topics:  types.StrArray{topicBidPlaced, idTopic(5)},
	})

	session := testSession(ledger, receipts, &fakeStore{}, testBidder)

	tx, err := session.SubmitAndTrack(context.Background(), IntentPlaceBid, Payload{AuctionId: 5, Amount: "2500"},
		func(ctx context.Context) (types.Hash, error) { return hash, nil })
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var readers sync.WaitGroup
	for i := 0; i < 4; i++ {
		readers.Add(1)
		go func() {
			defer readers.Done()
			for j := 0; j < 500; j++ {
				if snap, ok := session.Pending(hash); ok && snap.Status.Terminal() {
					return
				}
				time.Sleep(time.Millisecond)
			}
		}()
	}
	readers.Wait()
	session.Close()

	if tx.Status != StatusSubmitted || tx.EntityId != 0 {
		t.Fatalf("submission handle mutated behind the caller's back: %+v", tx)
	}
}

func TestSessionPrunesStalePending(t *testing.T) {
	ledger := newFakeLedger()
	ledger.add(activeRecord(5, time.Hour), 1)

	hash := types.Hash("0xf5")
	receipts := newFakeReceipts()
	receipts.receipts[hash] = successReceipt(hash, &node.EventLog{
		Address: testContract,
		Topics:  types.StrArray{topicBidPlaced, idTopic(5)},
	})

	session := testSession(ledger, receipts, &fakeStore{}, testBidder)
	defer session.Close()

	stale := types.Hash("0xaa")
	session.pending[stale] = &PendingTx{
		Hash:        stale,
		Status:      StatusConfirmed,
		SubmittedAt: time.Now().Add(-2 * time.Hour),
	}

	// the next submission sweeps terminal entries nobody collected
	_, err := session.SubmitAndTrack(context.Background(), IntentPlaceBid, Payload{AuctionId: 5, Amount: "2500"},
		func(ctx context.Context) (types.Hash, error) { return hash, nil })
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := session.Pending(stale); ok {
		t.Fatalf("stale terminal entry survived the sweep")
	}
}

func TestSessionSubmitFailurePropagates(t *testing.T) {
	session := testSession(newFakeLedger(), newFakeReceipts(), &fakeStore{}, testBidder)
	defer session.Close()

	_, err := session.SubmitAndTrack(context.Background(), IntentPlaceBid, Payload{},
		func(ctx context.Context) (types.Hash, error) { return "", errors.New("insufficient funds") })
	if err == nil {
		t.Fatalf("submission failure must surface")
	}
	if tx, ok := session.Pending("0x"); ok || tx != nil {
		t.Fatalf("failed submission must not be tracked")
	}
}

func TestSessionPendingConsumedOnce(t *testing.T) {
	ledger := newFakeLedger()
	ledger.add(activeRecord(5, time.Hour), 1)

	hash := types.Hash("0xf2")
	receipts := newFakeReceipts()
	receipts.receipts[hash] = successReceipt(hash, &node.EventLog{
		Address: testContract,
		Topics:  types.StrArray{topicBidPlaced, idTopic(5)},
	})

	session := testSession(ledger, receipts, &fakeStore{}, testBidder)
	_, err := session.SubmitAndTrack(context.Background(), IntentPlaceBid, Payload{AuctionId: 5, Amount: "2500"},
		func(ctx context.Context) (types.Hash, error) { return hash, nil })
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	session.Close()

	tx, ok := session.Pending(hash)
	if !ok || !tx.Status.Terminal() {
		t.Fatalf("terminal resolution not handed out: %+v", tx)
	}
	if _, ok = session.Pending(hash); ok {
		t.Fatalf("terminal resolution handed out twice")
	}
}
