//go:build unit

package commands_test

import (
	"context"
	"errors"
	"log/slog"
	"math/big"
	"testing"
	"time"

	"devhours-api/internal/domain/contract"
	"devhours-api/internal/domain/ledger"
	"devhours-api/internal/infra"
	"devhours-api/internal/pkg/config"
	"devhours-api/internal/usecase/commands"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	deploymentBlock = uint64(31663307)
	windowSize      = uint64(2000)
)

var (
	buyerAddr  = common.HexToAddress("0x1111111111111111111111111111111111111111")
	userAddr   = common.HexToAddress("0x2222222222222222222222222222222222222222")
	contractAt = common.HexToAddress("0x4242424242424242424242424242424242424242")
)

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

type fakeChain struct {
	head       uint64
	headErr    error
	logs       []types.Log
	filterErr  error
	inputs     map[common.Hash][]byte
	inputCalls int
	timestamps map[uint64]time.Time
	tsCalls    map[uint64]int
}

func newFakeChain(head uint64) *fakeChain {
	return &fakeChain{
		head:       head,
		inputs:     make(map[common.Hash][]byte),
		timestamps: make(map[uint64]time.Time),
		tsCalls:    make(map[uint64]int),
	}
}

func (f *fakeChain) HeadBlock(context.Context) (uint64, error) {
	return f.head, f.headErr
}

func (f *fakeChain) FilterEvents(_ context.Context, fromBlock, toBlock uint64) ([]types.Log, error) {
	if f.filterErr != nil {
		return nil, f.filterErr
	}
	var out []types.Log
	for _, log := range f.logs {
		if log.BlockNumber >= fromBlock && log.BlockNumber <= toBlock {
			out = append(out, log)
		}
	}
	return out, nil
}

func (f *fakeChain) TransactionInput(_ context.Context, txHash common.Hash) ([]byte, error) {
	f.inputCalls++
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
	f.tsCalls[blockNumber]++
	if ts, ok := f.timestamps[blockNumber]; ok {
		return ts, nil
	}
	return time.Unix(1700000000, 0).UTC(), nil
}

func (f *fakeChain) ContractAddress() common.Address {
	return contractAt
}

type fakePurchaseRepo struct {
	records   map[string]*ledger.PurchaseRecord
	insertErr map[string]error
}

func newFakePurchaseRepo() *fakePurchaseRepo {
	return &fakePurchaseRepo{
		records:   make(map[string]*ledger.PurchaseRecord),
		insertErr: make(map[string]error),
	}
}

func (f *fakePurchaseRepo) Insert(_ context.Context, rec *ledger.PurchaseRecord) error {
	if err, ok := f.insertErr[rec.TxHash]; ok {
		return err
	}
	if _, ok := f.records[rec.TxHash]; ok {
		return infra.WrapRepoErr("purchase already recorded", nil, infra.KindDuplicateKey)
	}
	f.records[rec.TxHash] = rec
	return nil
}

func (f *fakePurchaseRepo) FindByTxHash(_ context.Context, txHash string) (*ledger.PurchaseRecord, error) {
	rec, ok := f.records[txHash]
	if !ok {
		return nil, infra.WrapRepoErr("purchase not found", nil, infra.KindNotFound)
	}
	return rec, nil
}

func (f *fakePurchaseRepo) Count(context.Context) (int64, error) {
	return int64(len(f.records)), nil
}

type fakeRedemptionRepo struct {
	records map[string]*ledger.RedemptionRecord
}

func newFakeRedemptionRepo() *fakeRedemptionRepo {
	return &fakeRedemptionRepo{records: make(map[string]*ledger.RedemptionRecord)}
}

func (f *fakeRedemptionRepo) Insert(_ context.Context, rec *ledger.RedemptionRecord) error {
	if _, ok := f.records[rec.TxHash]; ok {
		return infra.WrapRepoErr("redemption already recorded", nil, infra.KindDuplicateKey)
	}
	f.records[rec.TxHash] = rec
	return nil
}

func (f *fakeRedemptionRepo) FindByTxHash(_ context.Context, txHash string) (*ledger.RedemptionRecord, error) {
	rec, ok := f.records[txHash]
	if !ok {
		return nil, infra.WrapRepoErr("redemption not found", nil, infra.KindNotFound)
	}
	return rec, nil
}

func (f *fakeRedemptionRepo) UpdateStatus(_ context.Context, txHash string, status ledger.Status) error {
	rec, ok := f.records[txHash]
	if !ok {
		return infra.WrapRepoErr("redemption not found", nil, infra.KindNotFound)
	}
	rec.Status = status
	return nil
}

func (f *fakeRedemptionRepo) Count(context.Context) (int64, error) {
	return int64(len(f.records)), nil
}

type fakeRequestRepo struct {
	records map[string]*ledger.RedemptionRequest
}

func newFakeRequestRepo() *fakeRequestRepo {
	return &fakeRequestRepo{records: make(map[string]*ledger.RedemptionRequest)}
}

func (f *fakeRequestRepo) Create(_ context.Context, req *ledger.RedemptionRequest) error {
	f.records[req.ID] = req
	return nil
}

func (f *fakeRequestRepo) FindByID(_ context.Context, id string) (*ledger.RedemptionRequest, error) {
	req, ok := f.records[id]
	if !ok {
		return nil, infra.WrapRepoErr("redemption request not found", nil, infra.KindNotFound)
	}
	return req, nil
}

func (f *fakeRequestRepo) FindByIDForOwner(ctx context.Context, id string, _ int64, _ []string) (*ledger.RedemptionRequest, error) {
	return f.FindByID(ctx, id)
}

func (f *fakeRequestRepo) ListByOwner(context.Context, int64, []string, int64, int64) ([]*ledger.RedemptionRequest, error) {
	return nil, nil
}

func (f *fakeRequestRepo) CountByOwner(context.Context, int64, []string) (int64, error) {
	return int64(len(f.records)), nil
}

func (f *fakeRequestRepo) Complete(_ context.Context, id, txHash string, completedAt time.Time) error {
	req, ok := f.records[id]
	if !ok {
		return nil
	}
	if req.Status == ledger.StatusCompleted {
		return nil
	}
	req.Status = ledger.StatusCompleted
	req.TxHash = &txHash
	req.CompletedAt = &completedAt
	return nil
}

type fakeSyncState struct {
	block  *uint64
	getErr error
	setErr error
	sets   []uint64
}

func (f *fakeSyncState) Get(context.Context) (uint64, bool, error) {
	if f.getErr != nil {
		return 0, false, f.getErr
	}
	if f.block == nil {
		return 0, false, nil
	}
	return *f.block, true, nil
}

func (f *fakeSyncState) Set(_ context.Context, block uint64) error {
	if f.setErr != nil {
		return f.setErr
	}
	f.block = &block
	f.sets = append(f.sets, block)
	return nil
}

type syncFixture struct {
	chain       *fakeChain
	purchases   *fakePurchaseRepo
	redemptions *fakeRedemptionRepo
	requests    *fakeRequestRepo
	syncState   *fakeSyncState
	uc          commands.SyncCommands
}

func newSyncFixture(t *testing.T, head uint64) *syncFixture {
	t.Helper()

	f := &syncFixture{
		chain:       newFakeChain(head),
		purchases:   newFakePurchaseRepo(),
		redemptions: newFakeRedemptionRepo(),
		requests:    newFakeRequestRepo(),
		syncState:   &fakeSyncState{},
	}
	f.uc = commands.NewSyncUseCase(
		f.chain, f.purchases, f.redemptions, f.requests, f.syncState,
		config.ChainConfig{DeploymentBlock: deploymentBlock},
		config.SyncConfig{WindowSize: windowSize},
		slog.New(slog.DiscardHandler),
	)
	return f
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

func TestSyncRun_WindowBounding(t *testing.T) {
	t.Run("first run starts at the deployment block and syncs one window", func(t *testing.T) {
		f := newSyncFixture(t, 31665400)

		summary, err := f.uc.Run(context.Background())
		require.NoError(t, err)

		assert.Equal(t, uint64(31663307), summary.FromBlock)
		assert.Equal(t, uint64(31665307), summary.ToBlock)
		assert.False(t, summary.UpToDate)
		require.NotNil(t, f.syncState.block)
		assert.Equal(t, uint64(31665307), *f.syncState.block)
	})

	t.Run("the next run picks up the remaining blocks", func(t *testing.T) {
		f := newSyncFixture(t, 31665400)

		_, err := f.uc.Run(context.Background())
		require.NoError(t, err)

		summary, err := f.uc.Run(context.Background())
		require.NoError(t, err)

		assert.Equal(t, uint64(31665308), summary.FromBlock)
		assert.Equal(t, uint64(31665400), summary.ToBlock)
	})

	t.Run("no-op when the watermark has reached the head", func(t *testing.T) {
		f := newSyncFixture(t, deploymentBlock)
		w := uint64(deploymentBlock)
		f.syncState.block = &w

		summary, err := f.uc.Run(context.Background())
		require.NoError(t, err)

		assert.True(t, summary.UpToDate)
		assert.Empty(t, f.syncState.sets)
	})

	t.Run("a stored watermark below the deployment floor is ignored", func(t *testing.T) {
		f := newSyncFixture(t, 31665400)
		w := uint64(100)
		f.syncState.block = &w

		summary, err := f.uc.Run(context.Background())
		require.NoError(t, err)

		assert.Equal(t, uint64(31663307), summary.FromBlock)
	})
}

func TestSyncRun_Ingestion(t *testing.T) {
	t.Run("records purchases and redemptions with enrichment", func(t *testing.T) {
		f := newSyncFixture(t, 31665400)

		buyTx := txHashN(0xa1)
		redeemTx := txHashN(0xa2)
		f.chain.logs = []types.Log{
			purchaseLog(t, buyTx, 31663500, 0, 2, 570_000000),
			redemptionLog(t, redeemTx, 31663600, 1, 1, "ipfs://QmFreeFormWork"),
		}
		f.chain.inputs[buyTx] = packBuyInput(t, voucherTuple{
			Buyer: buyerAddr,
			Qty:   big.NewInt(2),
			Price: big.NewInt(570_000000),
			Nonce: big.NewInt(0),
			Fid:   big.NewInt(977233),
		})
		f.chain.inputs[redeemTx] = packRedeemInput(t, big.NewInt(1), big.NewInt(2745), "ipfs://QmFreeFormWork")

		summary, err := f.uc.Run(context.Background())
		require.NoError(t, err)

		assert.Equal(t, 1, summary.Purchases)
		assert.Equal(t, 1, summary.Redemptions)
		assert.Equal(t, 0, summary.Skipped)

		purchase := f.purchases.records[buyTx.Hex()]
		require.NotNil(t, purchase)
		require.NotNil(t, purchase.FID)
		assert.Equal(t, int64(977233), *purchase.FID)
		assert.Equal(t, "570000000", purchase.Price.String())
		// The event carries no discount metadata, so the columns keep their
		// zero defaults even for a discounted price.
		assert.Equal(t, int64(0), purchase.DiscountPercentage)
		assert.Nil(t, purchase.DiscountReason)

		redemption := f.redemptions.records[redeemTx.Hex()]
		require.NotNil(t, redemption)
		require.NotNil(t, redemption.FID)
		assert.Equal(t, int64(2745), *redemption.FID)
		assert.Equal(t, ledger.StatusPending, redemption.Status)
	})

	t.Run("undecodable transaction input leaves FID nil", func(t *testing.T) {
		f := newSyncFixture(t, 31665400)

		buyTx := txHashN(0xb1)
		f.chain.logs = []types.Log{purchaseLog(t, buyTx, 31663500, 0, 1, 300_000000)}
		f.chain.inputs[buyTx] = []byte{0xde, 0xad, 0xbe, 0xef}

		summary, err := f.uc.Run(context.Background())
		require.NoError(t, err)

		assert.Equal(t, 1, summary.Purchases)
		purchase := f.purchases.records[buyTx.Hex()]
		require.NotNil(t, purchase)
		assert.Nil(t, purchase.FID)
	})

	t.Run("fid zero means no farcaster identity", func(t *testing.T) {
		f := newSyncFixture(t, 31665400)

		buyTx := txHashN(0xb2)
		f.chain.logs = []types.Log{purchaseLog(t, buyTx, 31663500, 0, 1, 300_000000)}
		f.chain.inputs[buyTx] = packBuyInput(t, voucherTuple{
			Buyer: buyerAddr,
			Qty:   big.NewInt(1),
			Price: big.NewInt(300_000000),
			Nonce: big.NewInt(0),
			Fid:   big.NewInt(0),
		})

		_, err := f.uc.Run(context.Background())
		require.NoError(t, err)

		assert.Nil(t, f.purchases.records[buyTx.Hex()].FID)
	})

	t.Run("block timestamps are resolved once per block", func(t *testing.T) {
		f := newSyncFixture(t, 31665400)

		f.chain.logs = []types.Log{
			purchaseLog(t, txHashN(0xc1), 31663500, 0, 1, 300_000000),
			purchaseLog(t, txHashN(0xc2), 31663500, 1, 1, 300_000000),
			redemptionLog(t, txHashN(0xc3), 31663500, 2, 1, "free text"),
		}

		_, err := f.uc.Run(context.Background())
		require.NoError(t, err)

		assert.Equal(t, 1, f.chain.tsCalls[31663500])
	})
}

func TestSyncRun_Idempotence(t *testing.T) {
	t.Run("replaying a window inserts nothing twice", func(t *testing.T) {
		f := newSyncFixture(t, 31665400)

		buyTx := txHashN(0xd1)
		f.chain.logs = []types.Log{purchaseLog(t, buyTx, 31663500, 0, 1, 300_000000)}

		_, err := f.uc.Run(context.Background())
		require.NoError(t, err)

		// Reset the watermark to force a replay of the same window.
		f.syncState.block = nil

		summary, err := f.uc.Run(context.Background())
		require.NoError(t, err)

		assert.Equal(t, 0, summary.Purchases)
		assert.Equal(t, 1, summary.Skipped)
		assert.Len(t, f.purchases.records, 1)
	})

	t.Run("an already-recorded item costs no chain fetches on replay", func(t *testing.T) {
		f := newSyncFixture(t, 31665400)

		buyTx := txHashN(0xd2)
		f.chain.logs = []types.Log{purchaseLog(t, buyTx, 31663500, 0, 1, 300_000000)}
		f.chain.inputs[buyTx] = packBuyInput(t, voucherTuple{
			Buyer: buyerAddr,
			Qty:   big.NewInt(1),
			Price: big.NewInt(300_000000),
			Nonce: big.NewInt(0),
			Fid:   big.NewInt(977233),
		})

		_, err := f.uc.Run(context.Background())
		require.NoError(t, err)

		inputCalls := f.chain.inputCalls
		tsCalls := f.chain.tsCalls[31663500]
		f.syncState.block = nil

		_, err = f.uc.Run(context.Background())
		require.NoError(t, err)

		assert.Equal(t, inputCalls, f.chain.inputCalls)
		assert.Equal(t, tsCalls, f.chain.tsCalls[31663500])
	})
}

func TestSyncRun_PartialFailure(t *testing.T) {
	t.Run("a failing item is dropped and the watermark still advances", func(t *testing.T) {
		f := newSyncFixture(t, 31665400)

		okTx := txHashN(0xe1)
		badTx := txHashN(0xe2)
		f.chain.logs = []types.Log{
			purchaseLog(t, badTx, 31663400, 0, 1, 300_000000),
			purchaseLog(t, okTx, 31663500, 0, 1, 300_000000),
		}
		f.purchases.insertErr[badTx.Hex()] = infra.WrapRepoErr("db down", errors.New("connection refused"))

		summary, err := f.uc.Run(context.Background())
		require.NoError(t, err)

		assert.Equal(t, 1, summary.Purchases)
		assert.Equal(t, 1, summary.Skipped)
		require.NotNil(t, f.syncState.block)
		assert.Equal(t, uint64(31665307), *f.syncState.block)
		assert.Contains(t, f.purchases.records, okTx.Hex())
		assert.NotContains(t, f.purchases.records, badTx.Hex())
	})

	t.Run("a malformed log does not stop the window", func(t *testing.T) {
		f := newSyncFixture(t, 31665400)

		okTx := txHashN(0xe3)
		f.chain.logs = []types.Log{
			{
				Address:     contractAt,
				Topics:      []common.Hash{contract.PurchasedEventID(), common.BytesToHash(buyerAddr.Bytes())},
				Data:        []byte{0x01},
				TxHash:      txHashN(0xe4),
				BlockNumber: 31663400,
			},
			purchaseLog(t, okTx, 31663500, 0, 1, 300_000000),
		}

		summary, err := f.uc.Run(context.Background())
		require.NoError(t, err)

		assert.Equal(t, 1, summary.Purchases)
		assert.Equal(t, 1, summary.Skipped)
	})

	t.Run("a log without topics is ignored", func(t *testing.T) {
		f := newSyncFixture(t, 31665400)

		okTx := txHashN(0xe5)
		f.chain.logs = []types.Log{
			{
				Address:     contractAt,
				TxHash:      txHashN(0xe6),
				BlockNumber: 31663400,
			},
			purchaseLog(t, okTx, 31663500, 0, 1, 300_000000),
		}

		summary, err := f.uc.Run(context.Background())
		require.NoError(t, err)

		assert.Equal(t, 1, summary.Purchases)
		assert.Equal(t, 0, summary.Skipped)
	})

	t.Run("head fetch failure leaves the watermark untouched", func(t *testing.T) {
		f := newSyncFixture(t, 31665400)
		f.chain.headErr = errors.New("rpc timeout")

		_, err := f.uc.Run(context.Background())
		require.Error(t, err)
		assert.Nil(t, f.syncState.block)
	})
}

func TestSyncRun_RequestLinking(t *testing.T) {
	t.Run("a matching workCID completes the stored request", func(t *testing.T) {
		f := newSyncFixture(t, 31665400)

		const requestID = "V1StGXR8_Z5jdHi6B-myT"
		f.requests.records[requestID] = &ledger.RedemptionRequest{
			ID:     requestID,
			FID:    2745,
			Qty:    1,
			Status: ledger.StatusPending,
		}

		redeemTx := txHashN(0xf1)
		f.chain.logs = []types.Log{redemptionLog(t, redeemTx, 31663600, 0, 1, requestID)}

		_, err := f.uc.Run(context.Background())
		require.NoError(t, err)

		req := f.requests.records[requestID]
		assert.Equal(t, ledger.StatusCompleted, req.Status)
		require.NotNil(t, req.TxHash)
		assert.Equal(t, redeemTx.Hex(), *req.TxHash)
		require.NotNil(t, req.CompletedAt)

		assert.Equal(t, ledger.StatusCompleted, f.redemptions.records[redeemTx.Hex()].Status)
	})

	t.Run("free-text workCID is not treated as a request id", func(t *testing.T) {
		f := newSyncFixture(t, 31665400)

		redeemTx := txHashN(0xf2)
		f.chain.logs = []types.Log{redemptionLog(t, redeemTx, 31663600, 0, 1, "built the landing page")}

		_, err := f.uc.Run(context.Background())
		require.NoError(t, err)

		assert.Equal(t, ledger.StatusPending, f.redemptions.records[redeemTx.Hex()].Status)
	})

	t.Run("a matching-format id with no stored request stays pending", func(t *testing.T) {
		f := newSyncFixture(t, 31665400)

		redeemTx := txHashN(0xf3)
		f.chain.logs = []types.Log{redemptionLog(t, redeemTx, 31663600, 0, 1, "AAAAAAAAAAAAAAAAAAAAA")}

		_, err := f.uc.Run(context.Background())
		require.NoError(t, err)

		assert.Equal(t, ledger.StatusPending, f.redemptions.records[redeemTx.Hex()].Status)
	})
}
