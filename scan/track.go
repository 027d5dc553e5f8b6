package scan

import (
	"context"
	"strings"
	"sync"
	"time"

	"auctionscan/common/types"
	"auctionscan/common/utils"
	"auctionscan/log"
	"auctionscan/node"
)

// TxIntent names what a submitted transaction was trying to do. The intent decides
// which cache mutation runs once the transaction confirms.
type TxIntent string

const (
	IntentCreateAuction TxIntent = "create-auction"
	IntentPlaceBid      TxIntent = "place-bid"
	IntentFinalize      TxIntent = "finalize"
	IntentCancel        TxIntent = "cancel"
	IntentRevealBid     TxIntent = "reveal-bid"
	IntentPublicHistory TxIntent = "public-history"
)

type TxStatus string

const (
	StatusSubmitted  TxStatus = "submitted"
	StatusConfirming TxStatus = "confirming"
	StatusConfirmed  TxStatus = "confirmed"
	// StatusConfirmedUnresolved means the transaction succeeded on the ledger but the
	// affected auction could not be identified, so the cache was not touched.
	StatusConfirmedUnresolved TxStatus = "confirmed_unresolved"
	StatusFailed              TxStatus = "failed"
)

// Terminal reports whether the status can no longer change.
func (s TxStatus) Terminal() bool {
	return s == StatusConfirmed || s == StatusConfirmedUnresolved || s == StatusFailed
}

// Payload carries the submission-time knowledge about a transaction, used both for
// entity resolution hints and for the cache write after confirmation.
type Payload struct {
	AuctionId uint64        `json:"auction_id,omitempty"` // 0 when not known at submission
	Bidder    types.Address `json:"bidder,omitempty"`
	Amount    types.BigInt  `json:"amount,omitempty"`
	Winner    types.Address `json:"winner,omitempty"`
	MetaUrl   string        `json:"meta_url,omitempty"`
	Reason    string        `json:"reason,omitempty"`
}

// PendingTx is one tracked submission. Status moves submitted -> confirming ->
// confirmed | confirmed_unresolved | failed and never backwards.
type PendingTx struct {
	Hash        types.Hash    `json:"hash"`
	Intent      TxIntent      `json:"intent"`
	Caller      types.Address `json:"caller"`
	Payload     Payload       `json:"payload"`
	Status      TxStatus      `json:"status"`
	EntityId    uint64        `json:"entity_id,omitempty"`
	Error       string        `json:"error,omitempty"`
	SubmittedAt time.Time     `json:"submitted_at"`
}

// ReceiptReader is the slice of the node client the tracker polls.
type ReceiptReader interface {
	TransactionReceipt(ctx context.Context, hash types.Hash) (*node.Receipt, error)
}

// TrackConfig bounds the polling loop.
type TrackConfig struct {
	PollInterval  time.Duration
	Timeout       time.Duration // overall watch limit per transaction
	LogRetries    int           // re-fetches of the receipt when no usable log is found
	LogRetryDelay time.Duration
}

// Tracker watches submitted transactions until a terminal status is known. Each hash
// resolves at most once; a second Watch of the same hash returns the cached outcome.
// Cached outcomes are dropped after resolvedRetention so a long-lived tracker does
// not grow without bound.
type Tracker struct {
	receipts ReceiptReader
	reader   *Reader
	contract types.Address
	cfg      TrackConfig

	// OnUpdate, when set, receives a snapshot after every status change. The watch
	// goroutine owns tx, so readers must consume snapshots, never the tx itself.
	OnUpdate func(tx PendingTx)

	mutex    sync.Mutex
	resolved map[types.Hash]resolution
}

type resolution struct {
	tx PendingTx
	at time.Time
}

const resolvedRetention = time.Hour

func NewTracker(receipts ReceiptReader, reader *Reader, contract types.Address, cfg TrackConfig) *Tracker {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 2 * time.Second
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Minute
	}
	return &Tracker{
		receipts: receipts,
		reader:   reader,
		contract: contract,
		cfg:      cfg,
		resolved: make(map[types.Hash]resolution),
	}
}

// signatures of the auction house events whose first indexed argument is the auction id
var (
	topicAuctionCreated   = string(utils.Keccak256Hash([]byte("AuctionCreated(uint256,address)")))
	topicBidPlaced        = string(utils.Keccak256Hash([]byte("BidPlaced(uint256,address,uint256)")))
	topicAuctionFinalized = string(utils.Keccak256Hash([]byte("AuctionFinalized(uint256,address,uint256)")))
	topicAuctionCancelled = string(utils.Keccak256Hash([]byte("AuctionCancelled(uint256,string)")))
	topicBidRevealed      = string(utils.Keccak256Hash([]byte("BidRevealed(uint256,address)")))
	topicHistoryEnabled   = string(utils.Keccak256Hash([]byte("PublicHistoryEnabled(uint256)")))
)

// Watch polls the ledger for tx until a terminal status is reached or the watch
// limit runs out, mutating tx in place and returning it. A timed-out watch fails
// the transaction; a cancelled context leaves the status as is.
func (t *Tracker) Watch(ctx context.Context, tx *PendingTx) *PendingTx {
	t.mutex.Lock()
	if done, ok := t.resolved[tx.Hash]; ok {
		t.mutex.Unlock()
		tx.Status, tx.EntityId, tx.Error = done.tx.Status, done.tx.EntityId, done.tx.Error
		return tx
	}
	t.mutex.Unlock()

	ctx, cancel := context.WithTimeout(ctx, t.cfg.Timeout)
	defer cancel()

	for {
		receipt, err := t.receipts.TransactionReceipt(ctx, tx.Hash)
		switch {
		case err == node.NotFound:
			if tx.Status != StatusConfirming {
				tx.Status = StatusConfirming
				t.update(tx)
			}
		case err != nil:
			log.Warnf("receipt poll for %v failed: %v", tx.Hash, err)
		case receipt.Status != nil && uint64(*receipt.Status) == 0:
			tx.Status = StatusFailed
			tx.Error = "transaction reverted"
			return t.finish(tx)
		default:
			t.resolve(ctx, tx, receipt)
			return t.finish(tx)
		}

		select {
		case <-ctx.Done():
			if ctx.Err() == context.DeadlineExceeded {
				tx.Status = StatusFailed
				tx.Error = "confirmation timed out"
				return t.finish(tx)
			}
			// session teardown, leave the status as is
			log.Warnf("stopped watching %v while %v: %v", tx.Hash, tx.Status, ctx.Err())
			return tx
		case <-time.After(t.cfg.PollInterval):
		}
	}
}

func (t *Tracker) finish(tx *PendingTx) *PendingTx {
	t.mutex.Lock()
	t.resolved[tx.Hash] = resolution{tx: *tx, at: time.Now()}
	t.pruneLocked()
	t.mutex.Unlock()
	t.update(tx)
	return tx
}

func (t *Tracker) update(tx *PendingTx) {
	if t.OnUpdate != nil {
		t.OnUpdate(*tx)
	}
}

func (t *Tracker) pruneLocked() {
	cutoff := time.Now().Add(-resolvedRetention)
	for hash, done := range t.resolved {
		if done.at.Before(cutoff) {
			delete(t.resolved, hash)
		}
	}
}

// resolve pins the confirmed transaction to an auction id: first from the receipt
// logs, re-fetching a few times because the node's log index can lag the receipt,
// then by asking the ledger for the caller's latest auction. When both come up empty
// the transaction is confirmed but unresolved and the cache stays untouched.
func (t *Tracker) resolve(ctx context.Context, tx *PendingTx, receipt *node.Receipt) {
	id, ok := t.entityFromLogs(receipt)
	for i := 0; !ok && i < t.cfg.LogRetries; i++ {
		select {
		case <-ctx.Done():
		case <-time.After(t.cfg.LogRetryDelay):
		}
		if ctx.Err() != nil {
			break
		}
		fresh, err := t.receipts.TransactionReceipt(ctx, tx.Hash)
		if err != nil {
			log.Warnf("receipt re-fetch for %v failed: %v", tx.Hash, err)
			continue
		}
		id, ok = t.entityFromLogs(fresh)
	}
	if !ok {
		log.Warnf("no auction event in %v logs, falling back to latest-for-user", tx.Hash)
		latest, err := t.reader.LatestFor(ctx, tx.Caller)
		if err == nil && latest > 0 {
			id, ok = latest, true
		}
	}
	if !ok {
		tx.Status = StatusConfirmedUnresolved
		log.Warnf("transaction %v confirmed but auction unresolvable, cache not updated", tx.Hash)
		return
	}
	tx.Status = StatusConfirmed
	tx.EntityId = id
}

// entityFromLogs scans the receipt for an auction house event and decodes the auction
// id from its first indexed topic.
func (t *Tracker) entityFromLogs(receipt *node.Receipt) (uint64, bool) {
	if receipt == nil {
		return 0, false
	}
	for _, eventLog := range receipt.Logs {
		if eventLog.Address != t.contract || len(eventLog.Topics) < 2 {
			continue
		}
		switch strings.ToLower(eventLog.Topics[0]) {
		case topicAuctionCreated, topicBidPlaced, topicAuctionFinalized,
			topicAuctionCancelled, topicBidRevealed, topicHistoryEnabled:
			id := utils.HexToUint64(strings.TrimPrefix(eventLog.Topics[1], "0x"))
			return uint64(id), true
		}
	}
	return 0, false
}
