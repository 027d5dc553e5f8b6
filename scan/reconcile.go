package scan

import (
	"context"
	"fmt"
	"sync"

	"auctionscan/common/types"
	"auctionscan/log"
)

// Store is the cache the reconciler writes into. Implementations must make each call
// idempotent per (entity, source hash) pair; the reconciler guarantees it will not ask
// twice for the same source hash anyway.
type Store interface {
	UpsertAuction(ctx context.Context, view *View, sourceTxHash types.Hash) error
	RecordBidIncrement(ctx context.Context, entityId uint64, bidder types.Address, amount types.BigInt, sourceTxHash types.Hash) error
	MarkFinalized(ctx context.Context, entityId uint64, winner types.Address, finalPrice types.BigInt, sourceTxHash types.Hash) error
	MarkCancelled(ctx context.Context, entityId uint64, reason string, sourceTxHash types.Hash) error
}

// ProcessedSet remembers which transaction hashes have already mutated the cache.
// TryAdd is the only gate: the check and the insert are one critical section, so two
// concurrent reconciliations of the same hash cannot both win.
type ProcessedSet struct {
	mutex  sync.Mutex
	hashes map[types.Hash]struct{}
}

func NewProcessedSet() *ProcessedSet {
	return &ProcessedSet{hashes: make(map[types.Hash]struct{})}
}

// TryAdd inserts the hash and reports whether it was absent before.
func (s *ProcessedSet) TryAdd(hash types.Hash) bool {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if _, ok := s.hashes[hash]; ok {
		return false
	}
	s.hashes[hash] = struct{}{}
	return true
}

// Remove drops the hash so a failed cache write can be retried later.
func (s *ProcessedSet) Remove(hash types.Hash) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	delete(s.hashes, hash)
}

func (s *ProcessedSet) Contains(hash types.Hash) bool {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	_, ok := s.hashes[hash]
	return ok
}

// Reset clears the set, for reuse across discovery sessions.
func (s *ProcessedSet) Reset() {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.hashes = make(map[types.Hash]struct{})
}

// Reconciler applies confirmed transactions to the cache exactly once each. The hash
// is marked processed before the store call; if the store fails the mark is rolled
// back so the caller may retry, and the error surfaces.
type Reconciler struct {
	store     Store
	processed *ProcessedSet
	refresh   func(ctx context.Context, entityId uint64) (*View, error)
}

// NewReconciler builds a reconciler. refresh re-reads an auction from the ledger so
// the upsert after a confirmed transaction stores current data, not submission-time
// guesses.
func NewReconciler(store Store, processed *ProcessedSet, refresh func(ctx context.Context, entityId uint64) (*View, error)) *Reconciler {
	return &Reconciler{store: store, processed: processed, refresh: refresh}
}

// Reconcile handles one resolved transaction. A hash seen before is acknowledged as a
// no-op. Only confirmed transactions with a known entity touch the cache.
func (r *Reconciler) Reconcile(ctx context.Context, tx *PendingTx) error {
	if tx.Status != StatusConfirmed || tx.EntityId == 0 {
		return nil
	}
	if !r.processed.TryAdd(tx.Hash) {
		log.Infof("transaction %v already reconciled, skipping", tx.Hash)
		return nil
	}
	if err := r.apply(ctx, tx); err != nil {
		r.processed.Remove(tx.Hash)
		return fmt.Errorf("reconcile %v for auction %v: %w", tx.Intent, tx.EntityId, err)
	}
	return nil
}

func (r *Reconciler) apply(ctx context.Context, tx *PendingTx) error {
	switch tx.Intent {
	case IntentPlaceBid:
		if err := r.store.RecordBidIncrement(ctx, tx.EntityId, tx.Caller, tx.Payload.Amount, tx.Hash); err != nil {
			return err
		}
	case IntentFinalize:
		winner, price := tx.Payload.Winner, tx.Payload.Amount
		if view, err := r.refresh(ctx, tx.EntityId); err == nil && view != nil {
			winner, price = view.HighestBidder, view.HighestBid
		}
		return r.store.MarkFinalized(ctx, tx.EntityId, winner, price, tx.Hash)
	case IntentCancel:
		return r.store.MarkCancelled(ctx, tx.EntityId, tx.Payload.Reason, tx.Hash)
	}
	view, err := r.refresh(ctx, tx.EntityId)
	if err != nil {
		return err
	}
	if view == nil {
		return fmt.Errorf("auction %v vanished after confirmation", tx.EntityId)
	}
	return r.store.UpsertAuction(ctx, view, tx.Hash)
}
