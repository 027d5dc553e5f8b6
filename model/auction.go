package model

import "auctionscan/common/types"

// Auction cached auction row, rebuilt from the ledger on every reconciliation
type Auction struct {
	Id            uint64         `json:"id" gorm:"primaryKey;autoIncrement:false"` //ledger auction id
	Kind          AuctionKind    `json:"kind"`                                     //0单品1合集
	Contract      types.Address  `json:"contract" gorm:"type:CHAR(42);index"`      //NFT contract
	Seller        types.Address  `json:"seller" gorm:"type:CHAR(42);index"`        //seller address
	TokenIds      types.StrArray `json:"token_ids" gorm:"type:TEXT"`               //item token ids
	NftCount      int            `json:"nft_count"`                                //number of items
	StartPrice    types.BigInt   `json:"start_price" gorm:"type:VARCHAR(128)"`     //unit wei
	ReservePrice  types.BigInt   `json:"reserve_price" gorm:"type:VARCHAR(128)"`   //unit wei
	MinIncrement  types.BigInt   `json:"min_increment" gorm:"type:VARCHAR(128)"`   //unit wei
	StartTime     uint64         `json:"start_time"`                               //unix seconds
	EndTime       uint64         `json:"end_time" gorm:"index"`                    //unix seconds
	Extension     uint64         `json:"extension"`                                //seconds
	Status        string         `json:"status" gorm:"type:VARCHAR(32);index"`     //derived lifecycle state
	BidCount      uint64         `json:"bid_count"`
	BidderCount   uint64         `json:"bidder_count"`
	HighestBid    types.BigInt   `json:"highest_bid" gorm:"type:VARCHAR(128)"` //unit wei
	HighestBidder types.Address  `json:"highest_bidder" gorm:"type:CHAR(42)"`
	ReserveMet    bool           `json:"reserve_met"`
	PublicReveal  bool           `json:"public_reveal"`
	Winner        *types.Address `json:"winner" gorm:"type:CHAR(42)"`          //null until finalized
	FinalPrice    *types.BigInt  `json:"final_price" gorm:"type:VARCHAR(128)"` //null until finalized
	CancelReason  *string        `json:"cancel_reason" gorm:"type:VARCHAR(256)"`
	MetaUrl       string         `json:"meta_url"`                   //metadata URL from the ledger
	Name          *string        `json:"name" gorm:"type:VARCHAR(256)"` //from metadata, null until fetched
	Desc          *string        `json:"desc"`                       //from metadata
	ImageUrl      *string        `json:"image_url"`                  //from metadata
	TxHash        *types.Hash    `json:"tx_hash" gorm:"type:CHAR(66)"` //last transaction applied to this row
	UpdatedAt     int64          `json:"updated_at" gorm:"autoUpdateTime"`
}

// AuctionBid one recorded bid confirmation, amounts stay sealed until reveal
type AuctionBid struct {
	Id        uint64        `json:"id" gorm:"primaryKey"`
	AuctionId uint64        `json:"auction_id" gorm:"index"`
	Bidder    types.Address `json:"bidder" gorm:"type:CHAR(42);index"`
	Amount    types.BigInt  `json:"amount" gorm:"type:VARCHAR(128)"` //unit wei
	TxHash    types.Hash    `json:"tx_hash" gorm:"type:CHAR(66);uniqueIndex"`
	CreatedAt int64         `json:"created_at" gorm:"autoCreateTime"`
}
