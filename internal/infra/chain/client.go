// Package chain wraps the JSON-RPC endpoint behind a small surface the sync
// engine and handlers consume. Every call carries a bounded timeout so a slow
// endpoint degrades one window instead of wedging the scheduler.
package chain

import (
	"context"
	"math/big"
	"time"

	"devhours-api/internal/domain/contract"
	"devhours-api/internal/infra"
	"devhours-api/internal/pkg/config"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"
)

type Client struct {
	eth      *ethclient.Client
	rpc      *rpc.Client
	contract common.Address
	timeout  time.Duration
}

func NewClient(cfg config.ChainConfig) (*Client, func(), error) {
	rpcClient, err := rpc.Dial(cfg.RPCURL)
	if err != nil {
		return nil, nil, infra.WrapRepoErr("failed to dial chain endpoint", err, infra.KindTransport)
	}

	c := &Client{
		eth:      ethclient.NewClient(rpcClient),
		rpc:      rpcClient,
		contract: common.HexToAddress(cfg.ContractAddress),
		timeout:  cfg.RPCTimeout,
	}
	cleanup := func() { rpcClient.Close() }

	return c, cleanup, nil
}

func (c *Client) ContractAddress() common.Address {
	return c.contract
}

func (c *Client) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, c.timeout)
}

func (c *Client) HeadBlock(ctx context.Context) (uint64, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	head, err := c.eth.BlockNumber(ctx)
	if err != nil {
		return 0, infra.WrapRepoErr("failed to fetch head block number", err, infra.KindTransport)
	}
	return head, nil
}

// FilterEvents fetches the contract's purchase and redemption logs for an
// inclusive block range in one query.
func (c *Client) FilterEvents(ctx context.Context, fromBlock, toBlock uint64) ([]types.Log, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	query := ethereum.FilterQuery{
		FromBlock: new(big.Int).SetUint64(fromBlock),
		ToBlock:   new(big.Int).SetUint64(toBlock),
		Addresses: []common.Address{c.contract},
		Topics: [][]common.Hash{
			{contract.PurchasedEventID(), contract.RedeemedEventID()},
		},
	}

	logs, err := c.eth.FilterLogs(ctx, query)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to filter contract logs", err, infra.KindTransport)
	}
	return logs, nil
}

// TransactionInput returns the calldata of a transaction for payload
// enrichment. A transaction the endpoint does not know maps to KindNotFound.
func (c *Client) TransactionInput(ctx context.Context, txHash common.Hash) ([]byte, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	tx, _, err := c.eth.TransactionByHash(ctx, txHash)
	if err != nil {
		if err == ethereum.NotFound {
			return nil, infra.WrapRepoErr("transaction not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to fetch transaction", err, infra.KindTransport)
	}
	return tx.Data(), nil
}

func (c *Client) TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	receipt, err := c.eth.TransactionReceipt(ctx, txHash)
	if err != nil {
		if err == ethereum.NotFound {
			return nil, infra.WrapRepoErr("transaction receipt not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to fetch transaction receipt", err, infra.KindTransport)
	}
	return receipt, nil
}

// BlockTimestamp resolves a block number to its timestamp. The sync engine
// caches results per window so each block is resolved at most once.
func (c *Client) BlockTimestamp(ctx context.Context, blockNumber uint64) (time.Time, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	header, err := c.eth.HeaderByNumber(ctx, new(big.Int).SetUint64(blockNumber))
	if err != nil {
		return time.Time{}, infra.WrapRepoErr("failed to fetch block header", err, infra.KindTransport)
	}
	return time.Unix(int64(header.Time), 0).UTC(), nil
}

// Proxy forwards a raw JSON-RPC call. Handlers restrict the method set before
// calling this.
func (c *Client) Proxy(ctx context.Context, result any, method string, params ...any) error {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	if err := c.rpc.CallContext(ctx, result, method, params...); err != nil {
		return infra.WrapRepoErr("rpc proxy call failed", err, infra.KindTransport)
	}
	return nil
}
