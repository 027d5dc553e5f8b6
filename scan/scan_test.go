package scan

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"auctionscan/common/types"
	"auctionscan/model"
	"auctionscan/node"
	"auctionscan/retry"
)

const (
	testSeller   = types.Address("0x00000000000000000000000000000000000000aa")
	testBidder   = types.Address("0x00000000000000000000000000000000000000bb")
	testContract = types.Address("0x00000000000000000000000000000000000000cc")
)

func testExecutor() *retry.Executor {
	return &retry.Executor{MaxRetries: 2, BaseDelay: time.Millisecond}
}

func activeRecord(id uint64, endsIn time.Duration) *model.AuctionRecord {
	return &model.AuctionRecord{
		Id:           id,
		Seller:       testSeller,
		Contract:     testContract,
		StartPrice:   "1000",
		ReservePrice: "2000",
		MinIncrement: "100",
		StartTime:    uint64(time.Now().Add(-time.Hour).Unix()),
		EndTime:      uint64(time.Now().Add(endsIn).Unix()),
		Flag:         model.FlagActive,
	}
}

type fakeLedger struct {
	mutex    sync.Mutex
	auctions map[uint64]*model.AuctionRecord
	tokens   map[uint64][]uint64
	bids     map[uint64]*model.Bid
	active   []uint64
	latest   map[types.Address]uint64

	activeErr  error
	auctionErr map[uint64]error
	latestErr  error
	probed     int32
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{
		auctions:   make(map[uint64]*model.AuctionRecord),
		tokens:     make(map[uint64][]uint64),
		bids:       make(map[uint64]*model.Bid),
		latest:     make(map[types.Address]uint64),
		auctionErr: make(map[uint64]error),
	}
}

func (f *fakeLedger) add(record *model.AuctionRecord, tokens ...uint64) {
	f.auctions[record.Id] = record
	f.tokens[record.Id] = tokens
	f.latest[record.Seller] = record.Id
}

func (f *fakeLedger) GetAuction(ctx context.Context, id uint64) (*model.AuctionRecord, error) {
	atomic.AddInt32(&f.probed, 1)
	f.mutex.Lock()
	defer f.mutex.Unlock()
	if err := f.auctionErr[id]; err != nil {
		return nil, err
	}
	if record, ok := f.auctions[id]; ok {
		return record, nil
	}
	return &model.AuctionRecord{Id: id}, nil // zero seller, does not exist
}

func (f *fakeLedger) GetAuctionTokens(ctx context.Context, id uint64) ([]uint64, error) {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	return f.tokens[id], nil
}

func (f *fakeLedger) GetBid(ctx context.Context, id uint64, bidder types.Address) (*model.Bid, error) {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	if bid, ok := f.bids[id]; ok && bid.Bidder == bidder {
		return bid, nil
	}
	return &model.Bid{Bidder: bidder, Amount: "0"}, nil
}

func (f *fakeLedger) ActiveAuctionIds(ctx context.Context) ([]uint64, error) {
	if f.activeErr != nil {
		return nil, f.activeErr
	}
	return f.active, nil
}

func (f *fakeLedger) LatestAuctionOf(ctx context.Context, seller types.Address) (uint64, error) {
	if f.latestErr != nil {
		return 0, f.latestErr
	}
	return f.latest[seller], nil
}

type fakeReceipts struct {
	mutex    sync.Mutex
	receipts map[types.Hash]*node.Receipt
	pending  map[types.Hash]int // polls to answer NotFound before the receipt appears
	calls    int
}

func newFakeReceipts() *fakeReceipts {
	return &fakeReceipts{
		receipts: make(map[types.Hash]*node.Receipt),
		pending:  make(map[types.Hash]int),
	}
}

func (f *fakeReceipts) TransactionReceipt(ctx context.Context, hash types.Hash) (*node.Receipt, error) {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	f.calls++
	if left := f.pending[hash]; left > 0 {
		f.pending[hash] = left - 1
		return nil, node.NotFound
	}
	receipt, ok := f.receipts[hash]
	if !ok {
		return nil, node.NotFound
	}
	return receipt, nil
}

type storeCall struct {
	op       string
	entityId uint64
	hash     types.Hash
}

type fakeStore struct {
	mutex sync.Mutex
	calls []storeCall
	fail  error // returned by every write while set
}

func (f *fakeStore) record(op string, entityId uint64, hash types.Hash) error {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	if f.fail != nil {
		return f.fail
	}
	f.calls = append(f.calls, storeCall{op: op, entityId: entityId, hash: hash})
	return nil
}

func (f *fakeStore) UpsertAuction(ctx context.Context, view *View, hash types.Hash) error {
	return f.record("upsert", view.Id, hash)
}

func (f *fakeStore) RecordBidIncrement(ctx context.Context, entityId uint64, bidder types.Address, amount types.BigInt, hash types.Hash) error {
	return f.record("bid", entityId, hash)
}

func (f *fakeStore) MarkFinalized(ctx context.Context, entityId uint64, winner types.Address, finalPrice types.BigInt, hash types.Hash) error {
	return f.record("finalize", entityId, hash)
}

func (f *fakeStore) MarkCancelled(ctx context.Context, entityId uint64, reason string, hash types.Hash) error {
	return f.record("cancel", entityId, hash)
}

func (f *fakeStore) count(op string) int {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	n := 0
	for _, call := range f.calls {
		if call.op == op {
			n++
		}
	}
	return n
}
