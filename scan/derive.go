package scan

import (
	"time"

	"auctionscan/common/types"
	"auctionscan/model"
)

// State is the single derived lifecycle state of an auction. On-ledger flags always
// dominate clock time: a finalized auction stays finalized even if its end time is
// still in the future.
type State string

const (
	StateActive    State = "active"
	StateEnded     State = "ended_awaiting_finalization"
	StateFinalized State = "finalized"
	StateCancelled State = "cancelled"
)

// View is an auction record decorated with everything the UI layer needs and nothing
// it has to compute itself.
type View struct {
	*model.AuctionRecord
	TokenIds         []uint64    `json:"token_ids"`
	State            State       `json:"state"`
	SecondsRemaining uint64      `json:"seconds_remaining"`
	NftCount         int         `json:"nft_count"`
	IsCollection     bool        `json:"is_collection"`
	ReserveMet       bool        `json:"reserve_met"`
	HasMyBid         bool        `json:"has_my_bid"`
	CanBid           bool        `json:"can_bid"`
	MyBid            *model.Bid  `json:"my_bid,omitempty"`
}

// Derive computes the view for one auction at the given instant. The record must be an
// existing auction and tokens must be non-empty; both are preconditions of the callers
// that assemble them, so violations panic rather than limp on.
func Derive(record *model.AuctionRecord, tokens []uint64, myBid *model.Bid, caller types.Address, now time.Time) *View {
	if record == nil || !record.Exists() {
		panic("derive: record does not exist")
	}
	if len(tokens) == 0 {
		panic("derive: auction without items")
	}

	var remaining uint64
	if end, ts := record.EndTime, uint64(now.Unix()); end > ts {
		remaining = end - ts
	}

	var state State
	switch {
	case record.Flag == model.FlagCancelled:
		state = StateCancelled
	case record.Flag == model.FlagFinalized:
		state = StateFinalized
	case remaining > 0:
		state = StateActive
	default:
		state = StateEnded
	}
	if state != StateActive {
		remaining = 0
	}

	// a zero reserve is always met
	reserveMet := record.ReservePrice.Int().Sign() == 0 ||
		(record.BidCount > 0 && record.HighestBid.Int().Cmp(record.ReservePrice.Int()) >= 0)
	hasMyBid := myBid != nil && !myBid.None()
	canBid := state == StateActive && !caller.IsZero() && caller != record.Seller

	view := &View{
		AuctionRecord:    record,
		TokenIds:         tokens,
		State:            state,
		SecondsRemaining: remaining,
		NftCount:         len(tokens),
		IsCollection:     record.Kind == model.KindCollection || len(tokens) > 1,
		ReserveMet:       reserveMet,
		HasMyBid:         hasMyBid,
		CanBid:           canBid,
	}
	if hasMyBid {
		view.MyBid = myBid
	}
	return view
}
