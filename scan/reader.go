package scan

import (
	"context"

	"auctionscan/common/types"
	"auctionscan/model"
	"auctionscan/retry"
)

// Ledger is the read surface of the auction house consumed by the engine.
type Ledger interface {
	GetAuction(ctx context.Context, id uint64) (*model.AuctionRecord, error)
	GetAuctionTokens(ctx context.Context, id uint64) ([]uint64, error)
	GetBid(ctx context.Context, id uint64, bidder types.Address) (*model.Bid, error)
	ActiveAuctionIds(ctx context.Context) ([]uint64, error)
	LatestAuctionOf(ctx context.Context, seller types.Address) (uint64, error)
}

// Reader funnels every ledger read through the retry executor. A *retry.FinalError from
// any method means the data is temporarily unavailable, never that the entity does not
// exist; non-existence is reported by the zero-seller sentinel on the record itself.
type Reader struct {
	ledger Ledger
	exec   *retry.Executor
}

func NewReader(ledger Ledger, exec *retry.Executor) *Reader {
	return &Reader{ledger: ledger, exec: exec}
}

// Auction returns the auction record, (nil, nil) when the ledger has no auction under
// the id.
func (r *Reader) Auction(ctx context.Context, id uint64) (record *model.AuctionRecord, err error) {
	err = r.exec.Do(ctx, "getAuction", func(ctx context.Context) error {
		var opErr error
		record, opErr = r.ledger.GetAuction(ctx, id)
		return opErr
	})
	if err == nil && !record.Exists() {
		record = nil
	}
	return
}

func (r *Reader) AuctionTokens(ctx context.Context, id uint64) (tokens []uint64, err error) {
	err = r.exec.Do(ctx, "getAuctionItemIds", func(ctx context.Context) error {
		var opErr error
		tokens, opErr = r.ledger.GetAuctionTokens(ctx, id)
		return opErr
	})
	return
}

func (r *Reader) Bid(ctx context.Context, id uint64, bidder types.Address) (bid *model.Bid, err error) {
	err = r.exec.Do(ctx, "getMyBid", func(ctx context.Context) error {
		var opErr error
		bid, opErr = r.ledger.GetBid(ctx, id, bidder)
		return opErr
	})
	return
}

func (r *Reader) ActiveIds(ctx context.Context) (ids []uint64, err error) {
	err = r.exec.Do(ctx, "getActiveAuctionIds", func(ctx context.Context) error {
		var opErr error
		ids, opErr = r.ledger.ActiveAuctionIds(ctx)
		return opErr
	})
	return
}

func (r *Reader) LatestFor(ctx context.Context, seller types.Address) (id uint64, err error) {
	err = r.exec.Do(ctx, "latestAuctionOf", func(ctx context.Context) error {
		var opErr error
		id, opErr = r.ledger.LatestAuctionOf(ctx, seller)
		return opErr
	})
	return
}
