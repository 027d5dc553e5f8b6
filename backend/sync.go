package backend

import (
	"context"
	"time"

	"auctionscan/common/types"
	"auctionscan/conf"
	"auctionscan/log"
	"auctionscan/scan"
	"auctionscan/service"
)

// syncLoop periodically rebuilds the cache from the ledger. Every pass is a fresh
// session so stale in-memory state cannot leak from one pass into the next.
func syncLoop(interval time.Duration) {
	store := service.NewStore(service.DB)
	for {
		start := time.Now()
		if err := syncPass(context.Background(), store); err != nil {
			log.Errorf("reconciliation pass failed: %v", err)
		} else {
			log.Infof("reconciliation pass done in %v", time.Since(start).Round(time.Millisecond))
		}
		time.Sleep(interval)
	}
}

// syncPass discovers the current auction set and upserts every derived view. Auctions
// gone from the ledger keep their last cached row; they age out by status, not by
// deletion.
func syncPass(ctx context.Context, store *service.Store) error {
	session := scan.New(eng.reader, eng.client, store, conf.AuctionHouse, scan.Config{
		Discover: discoverConfig(),
	})
	defer session.Close()

	views, err := session.DiscoverAuctions(ctx)
	if err != nil {
		return err
	}
	for _, view := range views {
		if err := store.UpsertAuction(ctx, view, types.Hash("")); err != nil {
			log.Warnf("cache write for auction %v failed: %v", view.Id, err)
		}
	}
	log.Infof("reconciled %v auctions", len(views))
	return nil
}
