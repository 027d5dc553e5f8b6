package model

import "auctionscan/common/types"

// AuctionKind distinguishes single item auctions from collection auctions.
type AuctionKind uint8

const (
	KindSingle     AuctionKind = 0
	KindCollection AuctionKind = 1
)

// AuctionFlag raw lifecycle flag as stored by the auction house contract. The flag only
// moves on a ledger write, so an expired auction still reads as FlagActive until someone
// finalizes it.
type AuctionFlag uint8

const (
	FlagActive    AuctionFlag = 0
	FlagFinalized AuctionFlag = 1
	FlagCancelled AuctionFlag = 2
)

// AuctionRecord auction fields read from the ledger, an immutable snapshot at read time
type AuctionRecord struct {
	Id            uint64        `json:"id"`
	Kind          AuctionKind   `json:"kind"`
	Contract      types.Address `json:"contract"`      //NFT contract holding the items
	Seller        types.Address `json:"seller"`        //zero for non-existent auctions
	StartPrice    types.BigInt  `json:"startPrice"`    //unit wei
	ReservePrice  types.BigInt  `json:"reservePrice"`  //unit wei, 0 means no reserve
	MinIncrement  types.BigInt  `json:"minIncrement"`  //unit wei
	StartTime     uint64        `json:"startTime"`     //unix seconds
	EndTime       uint64        `json:"endTime"`       //unix seconds
	Extension     uint64        `json:"extension"`     //bid extension window, seconds
	Flag          AuctionFlag   `json:"flag"`
	BidCount      uint64        `json:"bidCount"`
	BidderCount   uint64        `json:"bidderCount"`
	HighestBidder types.Address `json:"highestBidder"`
	HighestBid    types.BigInt  `json:"highestBid"` //unit wei
	PublicReveal  bool          `json:"publicReveal"`
	MetaUrl       string        `json:"metaUrl"`
}

// Exists reports whether the ledger actually holds this auction. The contract returns a
// zero-valued record for unknown ids, so the seller address doubles as the existence
// sentinel.
func (r *AuctionRecord) Exists() bool {
	return r != nil && !r.Seller.IsZero()
}

// Bid the caller's own sealed bid on one auction
type Bid struct {
	Bidder   types.Address `json:"bidder"`
	Amount   types.BigInt  `json:"amount"` //unit wei, 0 means no bid placed
	Revealed bool          `json:"revealed"`
}

// None reports whether no bid has been placed.
func (b *Bid) None() bool {
	return b == nil || b.Amount == "" || b.Amount == "0"
}
