package backend

import (
	"context"
	"fmt"
	"time"

	"auctionscan/common/types"
	"auctionscan/conf"
	"auctionscan/log"
	"auctionscan/node"
	"auctionscan/retry"
	"auctionscan/scan"
	"auctionscan/service"
)

// engine bundles the long-lived pieces shared by the sync loop and the API: the node
// connection, the contract binding and one session that tracks this process's own
// submissions.
type engine struct {
	client  *node.Client
	house   *node.AuctionHouse
	reader  *scan.Reader
	session *scan.Session
}

var eng *engine

// Run connects to the chain, wires the engine and starts the periodic reconciliation
// loop.
func Run(chainUrl string, interval time.Duration) error {
	client, err := node.Dial(chainUrl)
	if err != nil {
		return fmt.Errorf("dial %v: %w", chainUrl, err)
	}
	chainId, err := client.ChainId(context.Background())
	if err != nil {
		return fmt.Errorf("chain id: %w", err)
	}
	if int64(chainId) != conf.ChainId {
		return fmt.Errorf("node chain id %v does not match configured %v", chainId, conf.ChainId)
	}
	number, err := client.BlockNumber(context.Background())
	if err != nil {
		return fmt.Errorf("block number: %w", err)
	}
	log.Infof("connected to %v, chain %v, block %v", chainUrl, chainId, number)
	house, err := node.NewAuctionHouse(client, conf.AuctionHouse, conf.ChainId, conf.HexKey)
	if err != nil {
		return err
	}

	exec := &retry.Executor{
		MaxRetries: conf.RetryMax,
		BaseDelay:  conf.RetryDelay,
		Timeout:    conf.CallTimeout,
	}
	reader := scan.NewReader(house, exec)
	session := scan.New(reader, client, service.NewStore(service.DB), conf.AuctionHouse, scan.Config{
		Caller:   conf.Caller,
		Discover: discoverConfig(),
		Track: scan.TrackConfig{
			PollInterval:  2 * time.Second,
			Timeout:       5 * time.Minute,
			LogRetries:    2,
			LogRetryDelay: time.Second,
		},
	})

	eng = &engine{client: client, house: house, reader: reader, session: session}
	go syncLoop(interval)
	return nil
}

func discoverConfig() scan.DiscoverConfig {
	return scan.DiscoverConfig{
		Window:        conf.ProbeWindow,
		FallbackRange: conf.FallbackRange,
		BatchSize:     conf.ProbeBatch,
		BatchPause:    conf.ProbeBatchPause,
	}
}

// Discover runs a live discovery pass for one caller. Each call gets its own session
// so callers never see each other's bids or pending transactions.
func Discover(ctx context.Context, caller types.Address) ([]*scan.View, error) {
	session := scan.New(eng.reader, eng.client, service.NewStore(service.DB), conf.AuctionHouse, scan.Config{
		Caller:   caller,
		Discover: discoverConfig(),
	})
	defer session.Close()
	return session.DiscoverAuctions(ctx)
}

// AuctionById reads one auction straight from the ledger.
func AuctionById(ctx context.Context, id uint64) (*scan.View, error) {
	return eng.session.AuctionById(ctx, id)
}

// PendingTx returns the tracked transaction for hash, nil when unknown.
func PendingTx(hash types.Hash) *scan.PendingTx {
	tx, ok := eng.session.Pending(hash)
	if !ok {
		return nil
	}
	return tx
}

func CreateAuction(ctx context.Context, p node.CreateAuctionParams) (*scan.PendingTx, error) {
	intent := scan.IntentCreateAuction
	submit := eng.house.CreateSingleItemAuction
	if len(p.TokenIds) > 1 {
		submit = eng.house.CreateCollectionAuction
	}
	return eng.session.SubmitAndTrack(ctx, intent, scan.Payload{MetaUrl: p.MetaUrl}, func(ctx context.Context) (types.Hash, error) {
		return submit(ctx, p)
	})
}

func PlaceBid(ctx context.Context, id uint64, amount types.BigInt) (*scan.PendingTx, error) {
	payload := scan.Payload{AuctionId: id, Bidder: conf.Caller, Amount: amount}
	return eng.session.SubmitAndTrack(ctx, scan.IntentPlaceBid, payload, func(ctx context.Context) (types.Hash, error) {
		return eng.house.PlaceBid(ctx, id, amount)
	})
}

func FinalizeAuction(ctx context.Context, id uint64) (*scan.PendingTx, error) {
	return eng.session.SubmitAndTrack(ctx, scan.IntentFinalize, scan.Payload{AuctionId: id}, func(ctx context.Context) (types.Hash, error) {
		return eng.house.FinalizeAuction(ctx, id)
	})
}

func CancelAuction(ctx context.Context, id uint64, reason string) (*scan.PendingTx, error) {
	payload := scan.Payload{AuctionId: id, Reason: reason}
	return eng.session.SubmitAndTrack(ctx, scan.IntentCancel, payload, func(ctx context.Context) (types.Hash, error) {
		return eng.house.CancelAuction(ctx, id, reason)
	})
}

func RevealBid(ctx context.Context, id uint64) (*scan.PendingTx, error) {
	return eng.session.SubmitAndTrack(ctx, scan.IntentRevealBid, scan.Payload{AuctionId: id}, func(ctx context.Context) (types.Hash, error) {
		return eng.house.RevealBid(ctx, id)
	})
}

func EnablePublicHistory(ctx context.Context, id uint64) (*scan.PendingTx, error) {
	return eng.session.SubmitAndTrack(ctx, scan.IntentPublicHistory, scan.Payload{AuctionId: id}, func(ctx context.Context) (types.Hash, error) {
		return eng.house.EnablePublicHistory(ctx, id)
	})
}
