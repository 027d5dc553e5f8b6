package service

import (
	"errors"

	"gorm.io/gorm"

	"auctionscan/model"
)

// AuctionsRes auction paging return parameters
type AuctionsRes struct {
	Total    int64           `json:"total"`    //The total number of matching auctions
	Auctions []model.Auction `json:"auctions"` //auction list
}

func FetchAuctions(status, seller string, page, size int) (res AuctionsRes, err error) {
	db := DB.Model(&model.Auction{})
	if status != "" {
		db = db.Where("status=?", status)
	}
	if seller != "" {
		db = db.Where("seller=?", seller)
	}

	err = db.Count(&res.Total).Error
	if err != nil {
		return
	}
	err = db.Order("end_time DESC").Offset((page - 1) * size).Limit(size).Find(&res.Auctions).Error
	return
}

// GetAuction returns one cached auction row, nil when the id is not cached.
func GetAuction(id uint64) (*model.Auction, error) {
	var auction model.Auction
	err := DB.Where("id=?", id).First(&auction).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &auction, nil
}

// BidsRes bid paging return parameters
type BidsRes struct {
	Total int64              `json:"total"` //The total number of recorded bids
	Bids  []model.AuctionBid `json:"bids"`  //bid list
}

// FetchBids lists the recorded bid confirmations of one auction. Amounts stay sealed
// unless the auction has public reveal enabled.
func FetchBids(auctionId uint64, page, size int) (res BidsRes, err error) {
	var auction model.Auction
	if err = DB.Where("id=?", auctionId).First(&auction).Error; err != nil {
		return
	}

	db := DB.Model(&model.AuctionBid{}).Where("auction_id=?", auctionId)
	err = db.Count(&res.Total).Error
	if err != nil {
		return
	}
	err = db.Order("created_at DESC").Offset((page - 1) * size).Limit(size).Find(&res.Bids).Error
	if err != nil {
		return
	}
	if !auction.PublicReveal {
		for i := range res.Bids {
			res.Bids[i].Amount = ""
		}
	}
	return
}
