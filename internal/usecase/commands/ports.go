package commands

import (
	"context"
	"math/big"
	"time"

	"devhours-api/internal/domain/ledger"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// ChainReader is the sync engine's and verifier's view of the chain. The
// concrete implementation lives in infra/chain.
type ChainReader interface {
	HeadBlock(ctx context.Context) (uint64, error)
	FilterEvents(ctx context.Context, fromBlock, toBlock uint64) ([]types.Log, error)
	TransactionInput(ctx context.Context, txHash common.Hash) ([]byte, error)
	TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error)
	BlockTimestamp(ctx context.Context, blockNumber uint64) (time.Time, error)
	ContractAddress() common.Address
}

// ContractReader exposes the contract's view functions.
type ContractReader interface {
	BuyerNonce(ctx context.Context, buyer common.Address) (*big.Int, error)
	HourBalance(ctx context.Context, holder common.Address) (*big.Int, error)
	RemainingSupply(ctx context.Context) (*big.Int, error)
	RemainingWeeklyCapacity(ctx context.Context) (*big.Int, error)
}

type PurchaseRepository interface {
	Insert(ctx context.Context, rec *ledger.PurchaseRecord) error
	FindByTxHash(ctx context.Context, txHash string) (*ledger.PurchaseRecord, error)
	Count(ctx context.Context) (int64, error)
}

type RedemptionRepository interface {
	Insert(ctx context.Context, rec *ledger.RedemptionRecord) error
	FindByTxHash(ctx context.Context, txHash string) (*ledger.RedemptionRecord, error)
	UpdateStatus(ctx context.Context, txHash string, status ledger.Status) error
	Count(ctx context.Context) (int64, error)
}

type RequestRepository interface {
	Create(ctx context.Context, req *ledger.RedemptionRequest) error
	FindByID(ctx context.Context, id string) (*ledger.RedemptionRequest, error)
	FindByIDForOwner(ctx context.Context, id string, fid int64, addresses []string) (*ledger.RedemptionRequest, error)
	ListByOwner(ctx context.Context, fid int64, addresses []string, limit, offset int64) ([]*ledger.RedemptionRequest, error)
	CountByOwner(ctx context.Context, fid int64, addresses []string) (int64, error)
	Complete(ctx context.Context, id, txHash string, completedAt time.Time) error
}

type SyncStateRepository interface {
	Get(ctx context.Context) (block uint64, ok bool, err error)
	Set(ctx context.Context, block uint64) error
}

// AddressResolver maps FIDs to wallet addresses.
type AddressResolver interface {
	ResolveAddresses(ctx context.Context, fid int64) (*UserAddresses, error)
	CheckMutualFollow(ctx context.Context, viewerFID, fid int64) bool
}

type UserAddresses struct {
	Primary string
	All     []string
}

// NonceCache is the short-TTL lookaside in front of the contract nonce read.
type NonceCache interface {
	Get(ctx context.Context, buyer string) (*big.Int, bool)
	Set(ctx context.Context, buyer string, nonce *big.Int) error
	Invalidate(ctx context.Context, buyer string)
}

// SyncSummary reports one sync run.
type SyncSummary struct {
	FromBlock   uint64 `json:"from_block"`
	ToBlock     uint64 `json:"to_block"`
	Purchases   int    `json:"purchases"`
	Redemptions int    `json:"redemptions"`
	Skipped     int    `json:"skipped"`
	UpToDate    bool   `json:"up_to_date"`
}
