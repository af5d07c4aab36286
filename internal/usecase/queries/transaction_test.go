//go:build unit

package queries_test

import (
	"context"
	"testing"

	"devhours-api/internal/domain/ledger"
	"devhours-api/internal/infra"
	"devhours-api/internal/pkg/errs"
	"devhours-api/internal/usecase/queries"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePurchaseReader struct {
	records map[string]*ledger.PurchaseRecord
}

func (f *fakePurchaseReader) FindByTxHash(_ context.Context, txHash string) (*ledger.PurchaseRecord, error) {
	rec, ok := f.records[txHash]
	if !ok {
		return nil, infra.WrapRepoErr("purchase not found", nil, infra.KindNotFound)
	}
	return rec, nil
}

type fakeRedemptionReader struct {
	records map[string]*ledger.RedemptionRecord
}

func (f *fakeRedemptionReader) FindByTxHash(_ context.Context, txHash string) (*ledger.RedemptionRecord, error) {
	rec, ok := f.records[txHash]
	if !ok {
		return nil, infra.WrapRepoErr("redemption not found", nil, infra.KindNotFound)
	}
	return rec, nil
}

func TestTransactionQueries_Get(t *testing.T) {
	purchaseTx := "0x" + "a1a1a1a1a1a1a1a1a1a1a1a1a1a1a1a1a1a1a1a1a1a1a1a1a1a1a1a1a1a1a1a1"
	redeemTx := "0x" + "b2b2b2b2b2b2b2b2b2b2b2b2b2b2b2b2b2b2b2b2b2b2b2b2b2b2b2b2b2b2b2b2"

	purchases := &fakePurchaseReader{records: map[string]*ledger.PurchaseRecord{
		purchaseTx: {TxHash: purchaseTx, Buyer: "0x1111", Qty: 2, Price: decimal.NewFromInt(570_000000)},
	}}
	redemptions := &fakeRedemptionReader{records: map[string]*ledger.RedemptionRecord{
		redeemTx: {TxHash: redeemTx, UserAddress: "0x2222", Qty: 1, WorkCID: "shipped it", Status: ledger.StatusPending},
	}}
	q := queries.NewTransactionQueries(purchases, redemptions)

	t.Run("finds a recorded purchase", func(t *testing.T) {
		view, err := q.Get(context.Background(), purchaseTx)
		require.NoError(t, err)
		assert.Equal(t, "purchase", view.Kind)
		require.NotNil(t, view.Purchase)
		assert.Equal(t, "570000000", view.Purchase.Price)
		assert.Nil(t, view.Redemption)
	})

	t.Run("falls through to redemptions", func(t *testing.T) {
		view, err := q.Get(context.Background(), redeemTx)
		require.NoError(t, err)
		assert.Equal(t, "redemption", view.Kind)
		require.NotNil(t, view.Redemption)
		assert.Equal(t, "pending", view.Redemption.Status)
	})

	t.Run("canonicalizes the hash casing before lookup", func(t *testing.T) {
		view, err := q.Get(context.Background(), "0x"+"A1A1A1A1A1A1A1A1A1A1A1A1A1A1A1A1A1A1A1A1A1A1A1A1A1A1A1A1A1A1A1A1")
		require.NoError(t, err)
		assert.Equal(t, "purchase", view.Kind)
	})

	t.Run("unknown hash is a not-found error", func(t *testing.T) {
		_, err := q.Get(context.Background(), "0x"+"c3c3c3c3c3c3c3c3c3c3c3c3c3c3c3c3c3c3c3c3c3c3c3c3c3c3c3c3c3c3c3c3")
		require.Error(t, err)
		assert.True(t, errs.Is(err, errs.ErrRecordNotFound))
	})
}
