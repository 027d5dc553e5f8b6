package node

import (
	"context"
	"fmt"
	"math/big"
	"strconv"

	"auctionscan/common/types"
)

var NotFound = fmt.Errorf("not found")

// Client defines typed wrappers for the Ethereum RPC API.
type Client struct {
	*RPC
}

// Dial connects a client to the given URL.
func Dial(rawurl string) (*Client, error) {
	rpc, err := NewRPC(rawurl)
	return &Client{rpc}, err
}

type Big big.Int

func (b *Big) UnmarshalJSON(input []byte) error {
	return (*big.Int)(b).UnmarshalJSON(input[1 : len(input)-1])
}

func (c *Client) ChainId(ctx context.Context) (uint64, error) {
	var result string
	if err := c.CallContext(ctx, &result, "eth_chainId"); err != nil {
		return 0, err
	}
	return strconv.ParseUint(result[2:], 16, 64)
}

func (c *Client) BlockNumber(ctx context.Context) (uint64, error) {
	var result string
	if err := c.CallContext(ctx, &result, "eth_blockNumber"); err != nil {
		return 0, err
	}
	return strconv.ParseUint(result[2:], 16, 64)
}

func (c *Client) SuggestGasPrice(ctx context.Context) (*big.Int, error) {
	var hex Big
	if err := c.CallContext(ctx, &hex, "eth_gasPrice"); err != nil {
		return nil, err
	}
	return (*big.Int)(&hex), nil
}

func (c *Client) PendingNonceAt(ctx context.Context, account types.Address) (uint64, error) {
	var result string
	err := c.CallContext(ctx, &result, "eth_getTransactionCount", account, "pending")
	if err != nil {
		return 0, err
	}
	return strconv.ParseUint(result[2:], 16, 64)
}

func (c *Client) CallContract(ctx context.Context, msg map[string]interface{}, blockNumber *types.BigInt) (types.Data, error) {
	var hex types.Data
	err := c.CallContext(ctx, &hex, "eth_call", msg, toBlockNumArg(blockNumber))
	if err != nil {
		return "", err
	}
	return hex, nil
}

func toBlockNumArg(number *types.BigInt) string {
	if number == nil {
		return "latest"
	}
	if *number == "-1" {
		return "pending"
	}
	return number.Hex()
}

// EventLog transaction log entry as returned inside a receipt
type EventLog struct {
	Address types.Address  `json:"address"`
	Topics  types.StrArray `json:"topics"`
	Data    string         `json:"data"`
	Removed bool           `json:"removed"`
	TxHash  types.Hash     `json:"transactionHash"`
	Index   types.Uint64   `json:"logIndex"`
}

// Receipt transaction receipt, Status 1: success, 0: reverted
type Receipt struct {
	Status          *types.Uint64  `json:"status,omitempty"`
	BlockNumber     types.Uint64   `json:"blockNumber"`
	ContractAddress *types.Address `json:"contractAddress"`
	GasUsed         types.Uint64   `json:"gasUsed"`
	TxHash          types.Hash     `json:"transactionHash"`
	Logs            []*EventLog    `json:"logs"`
}

// TransactionReceipt returns the receipt for a mined transaction, NotFound while the
// transaction is still pending.
func (c *Client) TransactionReceipt(ctx context.Context, txHash types.Hash) (*Receipt, error) {
	var r *Receipt
	err := c.CallContext(ctx, &r, "eth_getTransactionReceipt", txHash)
	if err == nil && r == nil {
		return nil, NotFound
	}
	return r, err
}

func (c *Client) SendRawTransaction(ctx context.Context, raw string) (types.Hash, error) {
	var hash types.Hash
	err := c.CallContext(ctx, &hash, "eth_sendRawTransaction", raw)
	return hash, err
}
