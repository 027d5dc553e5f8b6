package service

import (
	"context"
	"strconv"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"auctionscan/common/types"
	"auctionscan/model"
	"auctionscan/scan"
)

// Store writes reconciled ledger state into the cache tables. It satisfies scan.Store;
// every write is idempotent per source transaction hash so a replay cannot double
// count.
type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// ledger-derived columns refreshed on every upsert; metadata columns are fetched
// separately and never clobbered here
var auctionColumns = []string{
	"kind", "contract", "seller", "token_ids", "nft_count", "start_price",
	"reserve_price", "min_increment", "start_time", "end_time", "extension",
	"status", "bid_count", "bidder_count", "highest_bid", "highest_bidder",
	"reserve_met", "public_reveal", "winner", "final_price", "meta_url", "tx_hash",
}

func (s *Store) UpsertAuction(ctx context.Context, view *scan.View, sourceTxHash types.Hash) error {
	row := auctionRow(view, sourceTxHash)
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns(auctionColumns),
	}).Create(row).Error
	if err != nil || row.MetaUrl == "" {
		return err
	}
	var missing int64
	s.db.Model(&model.Auction{}).Where("id=? AND name IS NULL", row.Id).Count(&missing)
	if missing > 0 {
		go SaveAuctionMeta(row.Id, row.MetaUrl)
	}
	return nil
}

// RecordBidIncrement stores one bid confirmation and bumps the bid counter. The bid
// row is keyed by transaction hash, so a replayed confirmation inserts nothing and
// leaves the counter alone.
func (s *Store) RecordBidIncrement(ctx context.Context, entityId uint64, bidder types.Address, amount types.BigInt, sourceTxHash types.Hash) error {
	db := s.db.WithContext(ctx)
	result := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&model.AuctionBid{
		AuctionId: entityId,
		Bidder:    bidder,
		Amount:    amount,
		TxHash:    sourceTxHash,
	})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return nil
	}
	return db.Model(&model.Auction{}).Where("id=?", entityId).
		UpdateColumn("bid_count", gorm.Expr("bid_count + 1")).Error
}

func (s *Store) MarkFinalized(ctx context.Context, entityId uint64, winner types.Address, finalPrice types.BigInt, sourceTxHash types.Hash) error {
	return s.db.WithContext(ctx).Model(&model.Auction{}).Where("id=?", entityId).Updates(map[string]interface{}{
		"status":      string(scan.StateFinalized),
		"winner":      winner,
		"final_price": finalPrice,
		"tx_hash":     sourceTxHash,
	}).Error
}

func (s *Store) MarkCancelled(ctx context.Context, entityId uint64, reason string, sourceTxHash types.Hash) error {
	return s.db.WithContext(ctx).Model(&model.Auction{}).Where("id=?", entityId).Updates(map[string]interface{}{
		"status":        string(scan.StateCancelled),
		"cancel_reason": reason,
		"tx_hash":       sourceTxHash,
	}).Error
}

func auctionRow(view *scan.View, sourceTxHash types.Hash) *model.Auction {
	tokenIds := make(types.StrArray, 0, len(view.TokenIds))
	for _, id := range view.TokenIds {
		tokenIds = append(tokenIds, strconv.FormatUint(id, 10))
	}
	row := &model.Auction{
		Id:            view.Id,
		Kind:          view.Kind,
		Contract:      view.Contract,
		Seller:        view.Seller,
		TokenIds:      tokenIds,
		NftCount:      view.NftCount,
		StartPrice:    view.StartPrice,
		ReservePrice:  view.ReservePrice,
		MinIncrement:  view.MinIncrement,
		StartTime:     view.StartTime,
		EndTime:       view.EndTime,
		Extension:     view.Extension,
		Status:        string(view.State),
		BidCount:      view.BidCount,
		BidderCount:   view.BidderCount,
		HighestBid:    view.HighestBid,
		HighestBidder: view.HighestBidder,
		ReserveMet:    view.ReserveMet,
		PublicReveal:  view.PublicReveal,
		MetaUrl:       view.MetaUrl,
	}
	if sourceTxHash != "" {
		row.TxHash = &sourceTxHash
	}
	if view.State == scan.StateFinalized {
		row.Winner = &view.HighestBidder
		row.FinalPrice = &view.HighestBid
	}
	return row
}
