//go:build e2e

package ledger_test

import (
	"context"
	"log/slog"
	"math/big"
	"testing"
	"time"

	"devhours-api/internal/domain/contract"
	"devhours-api/internal/domain/ledger"
	"devhours-api/internal/infra"
	"devhours-api/internal/infra/readstore"
	"devhours-api/internal/infra/writerepo"
	"devhours-api/internal/pkg/config"
	"devhours-api/internal/usecase/commands"
	"devhours-api/internal/usecase/queries"
	"devhours-api/tests/common/dbtest"
	"devhours-api/tests/e2e"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

const (
	deploymentBlock = uint64(31663307)
	windowSize      = uint64(2000)
	headBlock       = uint64(31665400)
)

var (
	buyerAddr  = common.HexToAddress("0x1111111111111111111111111111111111111111")
	userAddr   = common.HexToAddress("0x2222222222222222222222222222222222222222")
	contractAt = common.HexToAddress("0x4242424242424242424242424242424242424242")
)

type ledgerSuite struct {
	e2e.SharedSuite
}

func TestLedgerSuite(t *testing.T) {
	t.Parallel()
	suite.Run(t, new(ledgerSuite))
}

type voucherTuple struct {
	Buyer common.Address
	Qty   *big.Int
	Price *big.Int
	Nonce *big.Int
	Fid   *big.Int
}

type permitTuple struct {
	Owner    common.Address
	Spender  common.Address
	Value    *big.Int
	Nonce    *big.Int
	Deadline *big.Int
	V        uint8
	R        [32]byte
	S        [32]byte
}

func emptyPermit() permitTuple {
	return permitTuple{
		Value:    big.NewInt(0),
		Nonce:    big.NewInt(0),
		Deadline: big.NewInt(0),
	}
}

func packBuyInput(t *testing.T, v voucherTuple) []byte {
	t.Helper()
	method := contract.ABI().Methods["buyWithVoucherAndPermit"]
	packed, err := method.Inputs.Pack(v, []byte{0x01}, emptyPermit())
	require.NoError(t, err)
	return append(method.ID, packed...)
}

func packRedeemInput(t *testing.T, qty, fid *big.Int, workCID string) []byte {
	t.Helper()
	method := contract.ABI().Methods["redeemWithPermit"]
	packed, err := method.Inputs.Pack(qty, fid, workCID, emptyPermit())
	require.NoError(t, err)
	return append(method.ID, packed...)
}

func purchaseLog(t *testing.T, txHash common.Hash, block uint64, index uint, qty, price int64) types.Log {
	t.Helper()
	data, err := contract.ABI().Events["TokensPurchased"].Inputs.NonIndexed().Pack(big.NewInt(qty), big.NewInt(price))
	require.NoError(t, err)
	return types.Log{
		Address:     contractAt,
		Topics:      []common.Hash{contract.PurchasedEventID(), common.BytesToHash(buyerAddr.Bytes())},
		Data:        data,
		TxHash:      txHash,
		BlockNumber: block,
		Index:       index,
	}
}

func redemptionLog(t *testing.T, txHash common.Hash, block uint64, index uint, qty int64, workCID string) types.Log {
	t.Helper()
	data, err := contract.ABI().Events["Redeemed"].Inputs.NonIndexed().Pack(big.NewInt(qty), workCID)
	require.NoError(t, err)
	return types.Log{
		Address:     contractAt,
		Topics:      []common.Hash{contract.RedeemedEventID(), common.BytesToHash(userAddr.Bytes())},
		Data:        data,
		TxHash:      txHash,
		BlockNumber: block,
		Index:       index,
	}
}

func txHashN(n byte) common.Hash {
	var h common.Hash
	for i := range h {
		h[i] = n
	}
	return h
}

// fakeChain replays canned logs; everything downstream of it is the real
// stack over the test database.
type fakeChain struct {
	head       uint64
	logs       []types.Log
	inputs     map[common.Hash][]byte
	timestamps map[uint64]time.Time
}

func newFakeChain() *fakeChain {
	return &fakeChain{
		head:       headBlock,
		inputs:     make(map[common.Hash][]byte),
		timestamps: make(map[uint64]time.Time),
	}
}

func (f *fakeChain) HeadBlock(context.Context) (uint64, error) {
	return f.head, nil
}

func (f *fakeChain) FilterEvents(_ context.Context, fromBlock, toBlock uint64) ([]types.Log, error) {
	var out []types.Log
	for _, log := range f.logs {
		if log.BlockNumber >= fromBlock && log.BlockNumber <= toBlock {
			out = append(out, log)
		}
	}
	return out, nil
}

func (f *fakeChain) TransactionInput(_ context.Context, txHash common.Hash) ([]byte, error) {
	input, ok := f.inputs[txHash]
	if !ok {
		return nil, infra.WrapRepoErr("transaction not found", nil, infra.KindNotFound)
	}
	return input, nil
}

func (f *fakeChain) TransactionReceipt(context.Context, common.Hash) (*types.Receipt, error) {
	return nil, infra.WrapRepoErr("transaction receipt not found", nil, infra.KindNotFound)
}

func (f *fakeChain) BlockTimestamp(_ context.Context, blockNumber uint64) (time.Time, error) {
	if ts, ok := f.timestamps[blockNumber]; ok {
		return ts, nil
	}
	return time.Unix(1700000000, 0).UTC(), nil
}

func (f *fakeChain) ContractAddress() common.Address {
	return contractAt
}

type ledgerFixture struct {
	chain       *fakeChain
	purchases   *writerepo.PurchaseRepository
	redemptions *writerepo.RedemptionRepository
	requests    *writerepo.RequestRepository
	syncState   *writerepo.SyncStateRepository
	sync        commands.SyncCommands
}

func (s *ledgerSuite) newFixture() *ledgerFixture {
	f := &ledgerFixture{
		chain:       newFakeChain(),
		purchases:   writerepo.NewPurchaseRepository(s.DB),
		redemptions: writerepo.NewRedemptionRepository(s.DB),
		requests:    writerepo.NewRequestRepository(s.DB),
		syncState:   writerepo.NewSyncStateRepository(s.DB),
	}
	f.sync = commands.NewSyncUseCase(
		f.chain, f.purchases, f.redemptions, f.requests, f.syncState,
		config.ChainConfig{DeploymentBlock: deploymentBlock},
		config.SyncConfig{WindowSize: windowSize},
		slog.New(slog.DiscardHandler),
	)
	return f
}

func (s *ledgerSuite) TestSyncFlow() {
	s.Run("records events and advances the persisted watermark", func() {
		f := s.newFixture()
		ctx := context.Background()

		buyTx := txHashN(0xa1)
		redeemTx := txHashN(0xa2)
		f.chain.logs = []types.Log{
			purchaseLog(s.T(), buyTx, 31663500, 0, 2, 570_000000),
			redemptionLog(s.T(), redeemTx, 31663600, 0, 1, "ipfs://QmSomeDelivery"),
		}
		f.chain.timestamps[31663500] = time.Unix(1700000100, 0).UTC()
		f.chain.timestamps[31663600] = time.Unix(1700000200, 0).UTC()
		f.chain.inputs[buyTx] = packBuyInput(s.T(), voucherTuple{
			Buyer: buyerAddr,
			Qty:   big.NewInt(2),
			Price: big.NewInt(570_000000),
			Nonce: big.NewInt(0),
			Fid:   big.NewInt(977233),
		})
		f.chain.inputs[redeemTx] = packRedeemInput(s.T(), big.NewInt(1), big.NewInt(2745), "ipfs://QmSomeDelivery")

		summary, err := f.sync.Run(ctx)
		s.Require().NoError(err)
		s.Equal(1, summary.Purchases)
		s.Equal(1, summary.Redemptions)
		s.Equal(0, summary.Skipped)

		purchase, err := f.purchases.FindByTxHash(ctx, buyTx.Hex())
		s.Require().NoError(err)
		s.Require().NotNil(purchase.FID)
		s.Equal(int64(977233), *purchase.FID)
		s.Equal("570000000", purchase.Price.String())
		s.Equal(time.Unix(1700000100, 0).UTC(), purchase.Timestamp.UTC())

		redemption, err := f.redemptions.FindByTxHash(ctx, redeemTx.Hex())
		s.Require().NoError(err)
		s.Equal(ledger.StatusPending, redemption.Status)

		watermark, ok, err := f.syncState.Get(ctx)
		s.Require().NoError(err)
		s.True(ok)
		s.Equal(deploymentBlock+windowSize, watermark)

		status := queries.NewStatusQueries(f.syncState, f.chain, f.purchases, f.redemptions, deploymentBlock-1)
		view, err := status.SyncStatus(ctx)
		s.Require().NoError(err)
		s.Equal(watermark, view.LastSyncedBlock)
		s.Equal(headBlock, view.HeadBlock)
		s.Equal(headBlock-watermark, view.BlocksBehind)
		s.Equal(int64(1), view.Purchases)
		s.Equal(int64(1), view.Redemptions)
	})

	s.Run("replaying a window inserts nothing twice", func() {
		f := s.newFixture()
		ctx := context.Background()

		buyTx := txHashN(0xb1)
		redeemTx := txHashN(0xb2)
		f.chain.logs = []types.Log{
			purchaseLog(s.T(), buyTx, 31663500, 0, 1, 300_000000),
			redemptionLog(s.T(), redeemTx, 31663600, 0, 1, "fixed the deploy script"),
		}

		_, err := f.sync.Run(ctx)
		s.Require().NoError(err)

		// Drop the watermark to force the same window through again
		_, err = s.DB.Exec(ctx, "DELETE FROM sync_state")
		s.Require().NoError(err)

		summary, err := f.sync.Run(ctx)
		s.Require().NoError(err)
		s.Equal(0, summary.Purchases)
		s.Equal(0, summary.Redemptions)
		s.Equal(2, summary.Skipped)

		s.Equal(int64(1), dbtest.CountRows(s.T(), s.DB, "purchases"))
		s.Equal(int64(1), dbtest.CountRows(s.T(), s.DB, "redemptions"))
	})

	s.Run("links a stored redemption request by its generated id", func() {
		f := s.newFixture()
		ctx := context.Background()

		requestUC := commands.NewRequestUseCase(f.requests, slog.New(slog.DiscardHandler))
		view, err := requestUC.CreateRequest(ctx, 2745, userAddr.Hex(), 1, "landing page revamp")
		s.Require().NoError(err)

		redeemTx := txHashN(0xc1)
		f.chain.logs = []types.Log{redemptionLog(s.T(), redeemTx, 31663600, 0, 1, view.ID)}

		_, err = f.sync.Run(ctx)
		s.Require().NoError(err)

		req, err := f.requests.FindByID(ctx, view.ID)
		s.Require().NoError(err)
		s.Equal(ledger.StatusCompleted, req.Status)
		s.Require().NotNil(req.TxHash)
		s.Equal(redeemTx.Hex(), *req.TxHash)
		s.Require().NotNil(req.CompletedAt)

		redemption, err := f.redemptions.FindByTxHash(ctx, redeemTx.Hex())
		s.Require().NoError(err)
		s.Equal(ledger.StatusCompleted, redemption.Status)
	})
}

func (s *ledgerSuite) TestHistoryReads() {
	s.Run("filters by address and merges the activity feed", func() {
		f := s.newFixture()
		ctx := context.Background()

		buyTx := txHashN(0xd1)
		redeemTx := txHashN(0xd2)
		f.chain.logs = []types.Log{
			purchaseLog(s.T(), buyTx, 31663500, 0, 1, 300_000000),
			redemptionLog(s.T(), redeemTx, 31663600, 0, 1, "wired up the webhook"),
		}
		f.chain.timestamps[31663500] = time.Unix(1700000100, 0).UTC()
		f.chain.timestamps[31663600] = time.Unix(1700000200, 0).UTC()

		_, err := f.sync.Run(ctx)
		s.Require().NoError(err)

		history := queries.NewHistoryQueries(readstore.NewHistoryReadStore(s.DB))

		purchases, pagination, err := history.Purchases(ctx, queries.HistoryFilter{Addresses: []string{buyerAddr.Hex()}}, 0, 0)
		s.Require().NoError(err)
		s.Require().Len(purchases, 1)
		s.Equal(buyTx.Hex(), purchases[0].TxHash)
		s.Equal(int64(1), pagination.Total)

		purchases, _, err = history.Purchases(ctx, queries.HistoryFilter{Addresses: []string{userAddr.Hex()}}, 0, 0)
		s.Require().NoError(err)
		s.Empty(purchases)

		activity, pagination, err := history.Activity(ctx, 0, 0)
		s.Require().NoError(err)
		s.Require().Len(activity, 2)
		s.Equal(int64(2), pagination.Total)
		s.Equal("redemption", activity[0].Kind)
		s.Equal("purchase", activity[1].Kind)
	})
}
