package node

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	gtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"

	"auctionscan/common/types"
	"auctionscan/common/utils"
	"auctionscan/model"
)

// Function selectors of the auction house contract, first 4 bytes of the keccak of the
// canonical signature.
var (
	auctionsSelector         = selector("auctions(uint256)")
	auctionTokensSelector    = selector("auctionTokens(uint256)")
	bidOfSelector            = selector("bidOf(uint256,address)")
	activeAuctionIdsSelector = selector("activeAuctionIds()")
	latestAuctionOfSelector  = selector("latestAuctionOf(address)")

	createSingleSelector     = selector("createSingleItemAuction(address,uint256,uint256,uint256,uint256,uint256,uint256,uint256,bool,string)")
	createCollectionSelector = selector("createCollectionAuction(address,uint256[],uint256,uint256,uint256,uint256,uint256,uint256,bool,string)")
	placeBidSelector         = selector("placeBid(uint256,uint256)")
	finalizeSelector         = selector("finalizeAuction(uint256)")
	revealBidSelector        = selector("revealBid(uint256)")
	publicHistorySelector    = selector("enablePublicHistory(uint256)")
	cancelSelector           = selector("cancelAuction(uint256,string)")
)

func selector(signature string) string {
	return "0x" + fmt.Sprintf("%x", utils.Keccak256([]byte(signature))[:4])
}

const writeGasLimit = 500000

// AuctionHouse typed read and write facade over the auction house contract. Reads are
// raw eth_call selectors, writes are locally signed transactions that only return the
// transaction hash.
type AuctionHouse struct {
	*Client
	Addr    types.Address
	chainId *big.Int
	key     *ecdsa.PrivateKey
	caller  common.Address
}

// NewAuctionHouse binds the facade to a contract address and a caller key, the key is
// used to sign write transactions.
func NewAuctionHouse(client *Client, addr types.Address, chainId int64, hexKey string) (*AuctionHouse, error) {
	key, err := crypto.HexToECDSA(hexKey)
	if err != nil {
		return nil, err
	}
	return &AuctionHouse{
		Client:  client,
		Addr:    addr,
		chainId: big.NewInt(chainId),
		key:     key,
		caller:  crypto.PubkeyToAddress(key.PublicKey),
	}, nil
}

// Caller returns the address write transactions are signed with.
func (h *AuctionHouse) Caller() types.Address {
	return types.Address(hexutil.Encode(h.caller.Bytes()))
}

func (h *AuctionHouse) view(ctx context.Context, data types.Data) (types.Data, error) {
	msg := map[string]interface{}{
		"to":   h.Addr,
		"data": data,
	}
	return h.CallContract(ctx, msg, nil)
}

// GetAuction reads one auction record. The record of an unknown id decodes with a zero
// seller, callers check Exists() instead of expecting an error.
func (h *AuctionHouse) GetAuction(ctx context.Context, id uint64) (*model.AuctionRecord, error) {
	data, err := utils.ABIEncodeCall(auctionsSelector, id)
	if err != nil {
		return nil, err
	}
	out, err := h.view(ctx, data)
	if err != nil {
		return nil, err
	}
	return decodeAuctionRecord(id, out)
}

func decodeAuctionRecord(id uint64, out types.Data) (*model.AuctionRecord, error) {
	words := make([]uint64, 16)
	for _, i := range []int{0, 6, 7, 8, 9, 10, 11} {
		v, err := utils.ABIDecodeUint64(out, i)
		if err != nil {
			return nil, fmt.Errorf("auction %d word %d: %w", id, i, err)
		}
		words[i] = v
	}
	contract, err := utils.ABIDecodeAddress(out, 1)
	if err != nil {
		return nil, err
	}
	seller, err := utils.ABIDecodeAddress(out, 2)
	if err != nil {
		return nil, err
	}
	startPrice, err := utils.ABIDecodeBigInt(out, 3)
	if err != nil {
		return nil, err
	}
	reserve, err := utils.ABIDecodeBigInt(out, 4)
	if err != nil {
		return nil, err
	}
	increment, err := utils.ABIDecodeBigInt(out, 5)
	if err != nil {
		return nil, err
	}
	highestBidder, err := utils.ABIDecodeAddress(out, 12)
	if err != nil {
		return nil, err
	}
	highestBid, err := utils.ABIDecodeBigInt(out, 13)
	if err != nil {
		return nil, err
	}
	publicReveal, err := utils.ABIDecodeBool(out, 14)
	if err != nil {
		return nil, err
	}
	metaUrl, err := utils.ABIDecodeString(out, 15)
	if err != nil {
		return nil, err
	}
	return &model.AuctionRecord{
		Id:            id,
		Kind:          model.AuctionKind(words[0]),
		Contract:      contract,
		Seller:        seller,
		StartPrice:    startPrice,
		ReservePrice:  reserve,
		MinIncrement:  increment,
		StartTime:     words[6],
		EndTime:       words[7],
		Extension:     words[8],
		Flag:          model.AuctionFlag(words[9]),
		BidCount:      words[10],
		BidderCount:   words[11],
		HighestBidder: highestBidder,
		HighestBid:    highestBid,
		PublicReveal:  publicReveal,
		MetaUrl:       metaUrl,
	}, nil
}

// GetAuctionTokens reads the token id list of one auction.
func (h *AuctionHouse) GetAuctionTokens(ctx context.Context, id uint64) ([]uint64, error) {
	data, err := utils.ABIEncodeCall(auctionTokensSelector, id)
	if err != nil {
		return nil, err
	}
	out, err := h.view(ctx, data)
	if err != nil {
		return nil, err
	}
	return utils.ABIDecodeUint64Slice(out)
}

// GetBid reads the caller's own sealed bid, a zero amount means no bid.
func (h *AuctionHouse) GetBid(ctx context.Context, id uint64, bidder types.Address) (*model.Bid, error) {
	data, err := utils.ABIEncodeCall(bidOfSelector, id, bidder)
	if err != nil {
		return nil, err
	}
	// the contract only answers for the bid owner
	msg := map[string]interface{}{
		"to":   h.Addr,
		"from": bidder,
		"data": data,
	}
	out, err := h.CallContract(ctx, msg, nil)
	if err != nil {
		return nil, err
	}
	amount, err := utils.ABIDecodeBigInt(out, 0)
	if err != nil {
		return nil, err
	}
	revealed, err := utils.ABIDecodeBool(out, 1)
	if err != nil {
		return nil, err
	}
	return &model.Bid{Bidder: bidder, Amount: amount, Revealed: revealed}, nil
}

// ActiveAuctionIds reads the contract's enumeration of currently active auctions. This
// is the only enumeration the ledger offers, ended and finalized auctions drop out of
// it and have to be rediscovered by probing.
func (h *AuctionHouse) ActiveAuctionIds(ctx context.Context) ([]uint64, error) {
	data, err := utils.ABIEncodeCall(activeAuctionIdsSelector)
	if err != nil {
		return nil, err
	}
	out, err := h.view(ctx, data)
	if err != nil {
		return nil, err
	}
	return utils.ABIDecodeUint64Slice(out)
}

// LatestAuctionOf reads the id of the most recent auction created by the seller, 0 if
// none.
func (h *AuctionHouse) LatestAuctionOf(ctx context.Context, seller types.Address) (uint64, error) {
	data, err := utils.ABIEncodeCall(latestAuctionOfSelector, seller)
	if err != nil {
		return 0, err
	}
	out, err := h.view(ctx, data)
	if err != nil {
		return 0, err
	}
	return utils.ABIDecodeUint64(out, 0)
}

// submit signs and broadcasts one contract call, value may be nil.
func (h *AuctionHouse) submit(ctx context.Context, data types.Data, value *big.Int) (types.Hash, error) {
	nonce, err := h.PendingNonceAt(ctx, h.Caller())
	if err != nil {
		return "", err
	}
	gasPrice, err := h.SuggestGasPrice(ctx)
	if err != nil {
		return "", err
	}
	if value == nil {
		value = new(big.Int)
	}
	payload, err := hexutil.Decode(string(data))
	if err != nil {
		return "", err
	}
	to := common.HexToAddress(string(h.Addr))
	tx := gtypes.NewTransaction(nonce, to, value, writeGasLimit, gasPrice, payload)
	signedTx, err := gtypes.SignTx(tx, gtypes.NewEIP155Signer(h.chainId), h.key)
	if err != nil {
		return "", err
	}
	raw, err := signedTx.MarshalBinary()
	if err != nil {
		return "", err
	}
	return h.SendRawTransaction(ctx, hexutil.Encode(raw))
}

// CreateAuctionParams arguments shared by both create calls
type CreateAuctionParams struct {
	Contract     types.Address
	TokenIds     []uint64
	StartPrice   types.BigInt
	ReservePrice types.BigInt
	MinIncrement types.BigInt
	StartTime    uint64
	EndTime      uint64
	Extension    uint64
	PublicReveal bool
	MetaUrl      string
}

func (h *AuctionHouse) CreateSingleItemAuction(ctx context.Context, p CreateAuctionParams) (types.Hash, error) {
	if len(p.TokenIds) != 1 {
		return "", fmt.Errorf("single item auction needs exactly one token, got %d", len(p.TokenIds))
	}
	data, err := utils.ABIEncodeCall(createSingleSelector, p.Contract, p.TokenIds[0],
		p.StartPrice, p.ReservePrice, p.MinIncrement, p.StartTime, p.EndTime, p.Extension,
		p.PublicReveal, p.MetaUrl)
	if err != nil {
		return "", err
	}
	return h.submit(ctx, data, nil)
}

func (h *AuctionHouse) CreateCollectionAuction(ctx context.Context, p CreateAuctionParams) (types.Hash, error) {
	if len(p.TokenIds) < 2 {
		return "", fmt.Errorf("collection auction needs at least two tokens, got %d", len(p.TokenIds))
	}
	data, err := utils.ABIEncodeCall(createCollectionSelector, p.Contract, p.TokenIds,
		p.StartPrice, p.ReservePrice, p.MinIncrement, p.StartTime, p.EndTime, p.Extension,
		p.PublicReveal, p.MetaUrl)
	if err != nil {
		return "", err
	}
	return h.submit(ctx, data, nil)
}

// PlaceBid escrows the bid amount with the contract, the amount rides along as the
// transaction value.
func (h *AuctionHouse) PlaceBid(ctx context.Context, id uint64, amount types.BigInt) (types.Hash, error) {
	data, err := utils.ABIEncodeCall(placeBidSelector, id, amount)
	if err != nil {
		return "", err
	}
	return h.submit(ctx, data, amount.Int())
}

func (h *AuctionHouse) FinalizeAuction(ctx context.Context, id uint64) (types.Hash, error) {
	data, err := utils.ABIEncodeCall(finalizeSelector, id)
	if err != nil {
		return "", err
	}
	return h.submit(ctx, data, nil)
}

func (h *AuctionHouse) RevealBid(ctx context.Context, id uint64) (types.Hash, error) {
	data, err := utils.ABIEncodeCall(revealBidSelector, id)
	if err != nil {
		return "", err
	}
	return h.submit(ctx, data, nil)
}

func (h *AuctionHouse) EnablePublicHistory(ctx context.Context, id uint64) (types.Hash, error) {
	data, err := utils.ABIEncodeCall(publicHistorySelector, id)
	if err != nil {
		return "", err
	}
	return h.submit(ctx, data, nil)
}

func (h *AuctionHouse) CancelAuction(ctx context.Context, id uint64, reason string) (types.Hash, error) {
	data, err := utils.ABIEncodeCall(cancelSelector, id, reason)
	if err != nil {
		return "", err
	}
	return h.submit(ctx, data, nil)
}
