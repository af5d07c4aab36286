package queries

import (
	"context"

	"devhours-api/internal/domain/ledger"
	"devhours-api/internal/infra"
	"devhours-api/internal/pkg/errs"

	"github.com/ethereum/go-ethereum/common"
)

type PurchaseReader interface {
	FindByTxHash(ctx context.Context, txHash string) (*ledger.PurchaseRecord, error)
}

type RedemptionReader interface {
	FindByTxHash(ctx context.Context, txHash string) (*ledger.RedemptionRecord, error)
}

// TransactionView reports what a recorded transaction was; exactly one of
// Purchase and Redemption is set.
type TransactionView struct {
	Kind       string          `json:"kind"`
	Purchase   *PurchaseView   `json:"purchase,omitempty"`
	Redemption *RedemptionView `json:"redemption,omitempty"`
}

type TransactionQueries interface {
	Get(ctx context.Context, txHash string) (*TransactionView, error)
}

type transactionQueriesImpl struct {
	purchases   PurchaseReader
	redemptions RedemptionReader
}

func NewTransactionQueries(purchases PurchaseReader, redemptions RedemptionReader) TransactionQueries {
	return &transactionQueriesImpl{
		purchases:   purchases,
		redemptions: redemptions,
	}
}

func (q *transactionQueriesImpl) Get(ctx context.Context, txHash string) (*TransactionView, error) {
	// Ledger rows are keyed by the canonical lowercase hash form
	txHash = common.HexToHash(txHash).Hex()

	purchase, err := q.purchases.FindByTxHash(ctx, txHash)
	if err == nil {
		return &TransactionView{Kind: "purchase", Purchase: purchaseToView(purchase)}, nil
	}
	if !infra.IsKind(err, infra.KindNotFound) {
		return nil, errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}

	redemption, err := q.redemptions.FindByTxHash(ctx, txHash)
	if err == nil {
		return &TransactionView{Kind: "redemption", Redemption: redemptionToView(redemption)}, nil
	}
	if !infra.IsKind(err, infra.KindNotFound) {
		return nil, errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}

	return nil, errs.Mark(err, errs.ErrRecordNotFound)
}

func purchaseToView(rec *ledger.PurchaseRecord) *PurchaseView {
	return &PurchaseView{
		TxHash:             rec.TxHash,
		BlockNumber:        rec.BlockNumber,
		Timestamp:          rec.Timestamp,
		Buyer:              rec.Buyer,
		FID:                rec.FID,
		Qty:                rec.Qty,
		Price:              rec.Price.String(),
		DiscountPercentage: rec.DiscountPercentage,
		DiscountReason:     rec.DiscountReason,
	}
}

func redemptionToView(rec *ledger.RedemptionRecord) *RedemptionView {
	return &RedemptionView{
		TxHash:      rec.TxHash,
		BlockNumber: rec.BlockNumber,
		Timestamp:   rec.Timestamp,
		UserAddress: rec.UserAddress,
		FID:         rec.FID,
		Qty:         rec.Qty,
		WorkCID:     rec.WorkCID,
		Status:      rec.Status.String(),
	}
}
