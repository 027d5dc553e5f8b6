package scan

import (
	"context"
	"errors"
	"sync"
	"time"

	"auctionscan/common/types"
	"auctionscan/log"
	"auctionscan/model"
)

// ErrNotFound is returned by AuctionById for an id the ledger has no auction under.
var ErrNotFound = errors.New("auction not found")

// Config assembles one session.
type Config struct {
	Caller   types.Address // zero for a read-only session
	Discover DiscoverConfig
	Track    TrackConfig
}

// Session is the per-consumer engine instance: it discovers auctions, derives their
// views, and tracks the consumer's submitted transactions through to the cache. Each
// session owns its own processed set and pending map; nothing is shared across
// sessions.
type Session struct {
	reader     *Reader
	discoverer *Discoverer
	tracker    *Tracker
	reconciler *Reconciler
	processed  *ProcessedSet
	caller     types.Address

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mutex   sync.Mutex
	pending map[types.Hash]*PendingTx
}

// New wires a session from its collaborators.
func New(reader *Reader, receipts ReceiptReader, store Store, contract types.Address, cfg Config) *Session {
	ctx, cancel := context.WithCancel(context.Background())
	s := &Session{
		reader:     reader,
		discoverer: NewDiscoverer(reader, cfg.Discover),
		tracker:    NewTracker(receipts, reader, contract, cfg.Track),
		processed:  NewProcessedSet(),
		caller:     cfg.Caller,
		ctx:        ctx,
		cancel:     cancel,
		pending:    make(map[types.Hash]*PendingTx),
	}
	s.reconciler = NewReconciler(store, s.processed, s.view)
	s.tracker.OnUpdate = s.publish
	return s
}

// Close stops background watches and waits for them to drain.
func (s *Session) Close() {
	s.cancel()
	s.wg.Wait()
}

// DiscoverAuctions runs a full discovery pass and returns the derived views in
// ascending id order. A single auction whose reads fail is logged and dropped; the
// pass only errors when the active set itself is unavailable.
func (s *Session) DiscoverAuctions(ctx context.Context) ([]*View, error) {
	ids, err := s.discoverer.Discover(ctx)
	if err != nil {
		return nil, err
	}
	views := make([]*View, 0, len(ids))
	for _, id := range ids {
		view, err := s.view(ctx, id)
		if err != nil {
			log.Warnf("skipping auction %v: %v", id, err)
			continue
		}
		if view != nil {
			views = append(views, view)
		}
	}
	return views, nil
}

// AuctionById reads and derives one auction, ErrNotFound when the ledger has none.
func (s *Session) AuctionById(ctx context.Context, id uint64) (*View, error) {
	view, err := s.view(ctx, id)
	if err != nil {
		return nil, err
	}
	if view == nil {
		return nil, ErrNotFound
	}
	return view, nil
}

// view assembles the record, items and caller bid for one auction and derives its
// state. A non-existent auction is (nil, nil).
func (s *Session) view(ctx context.Context, id uint64) (*View, error) {
	record, err := s.reader.Auction(ctx, id)
	if err != nil {
		return nil, err
	}
	if record == nil || !record.Exists() {
		return nil, nil
	}
	tokens, err := s.reader.AuctionTokens(ctx, id)
	if err != nil {
		return nil, err
	}
	var myBid *model.Bid
	if !s.caller.IsZero() {
		myBid, err = s.reader.Bid(ctx, id, s.caller)
		if err != nil {
			log.Warnf("bid lookup for auction %v failed, assuming none: %v", id, err)
			myBid = nil
		}
	}
	return Derive(record, tokens, myBid, s.caller, time.Now()), nil
}

// terminal entries nobody collected are swept after this long
const pendingRetention = time.Hour

// SubmitAndTrack runs the submission, registers the returned hash as pending and
// watches it in the background until resolution feeds the reconciler. The watch
// goroutine owns the transaction; what comes back is a snapshot taken at
// submission, poll Pending for live status.
func (s *Session) SubmitAndTrack(ctx context.Context, intent TxIntent, payload Payload, submit func(ctx context.Context) (types.Hash, error)) (*PendingTx, error) {
	hash, err := submit(ctx)
	if err != nil {
		return nil, err
	}
	tx := &PendingTx{
		Hash:        hash,
		Intent:      intent,
		Caller:      s.caller,
		Payload:     payload,
		Status:      StatusSubmitted,
		SubmittedAt: time.Now(),
	}
	s.mutex.Lock()
	s.prunePendingLocked()
	registered := *tx
	s.pending[hash] = &registered
	s.mutex.Unlock()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.tracker.Watch(s.ctx, tx)
		s.publish(*tx)
		if err := s.reconciler.Reconcile(s.ctx, tx); err != nil {
			log.Errorf("cache reconciliation for %v failed: %v", tx.Hash, err)
		}
	}()
	handle := *tx
	return &handle, nil
}

// publish replaces the pending entry for tx with a fresh snapshot. An entry already
// consumed through Pending stays gone.
func (s *Session) publish(tx PendingTx) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if _, ok := s.pending[tx.Hash]; ok {
		s.pending[tx.Hash] = &tx
	}
}

func (s *Session) prunePendingLocked() {
	cutoff := time.Now().Add(-pendingRetention)
	for hash, tx := range s.pending {
		if tx.Status.Terminal() && tx.SubmittedAt.Before(cutoff) {
			delete(s.pending, hash)
		}
	}
}

// Pending returns a snapshot of the tracked transaction for hash. Once a terminal
// status has been read the entry is dropped, so a resolution is handed out exactly
// once.
func (s *Session) Pending(hash types.Hash) (*PendingTx, bool) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	tx, ok := s.pending[hash]
	if !ok {
		return nil, false
	}
	snapshot := *tx
	if snapshot.Status.Terminal() {
		delete(s.pending, hash)
	}
	return &snapshot, true
}
