package commands

import (
	"context"
	"log/slog"
	"time"

	"devhours-api/internal/domain/contract"
	"devhours-api/internal/domain/ledger"
	"devhours-api/internal/infra"
	"devhours-api/internal/pkg/errs"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/shopspring/decimal"
)

// VerifyResult reports what a submitted transaction turned out to be.
type VerifyResult struct {
	TxHash          string `json:"tx_hash"`
	Kind            string `json:"kind"`
	AlreadyRecorded bool   `json:"already_recorded"`
	Qty             int64  `json:"qty"`
	FID             *int64 `json:"fid,omitempty"`
}

type VerifyCommands interface {
	VerifyTransaction(ctx context.Context, txHash string, authFID int64) (*VerifyResult, error)
}

type verifyUseCaseImpl struct {
	chain       ChainReader
	purchases   PurchaseRepository
	redemptions RedemptionRepository
	requests    RequestRepository
	nonces      NonceCache
	logger      *slog.Logger
}

func NewVerifyUseCase(
	chain ChainReader,
	purchases PurchaseRepository,
	redemptions RedemptionRepository,
	requests RequestRepository,
	nonces NonceCache,
	logger *slog.Logger,
) VerifyCommands {
	return &verifyUseCaseImpl{
		chain:       chain,
		purchases:   purchases,
		redemptions: redemptions,
		requests:    requests,
		nonces:      nonces,
		logger:      logger,
	}
}

// VerifyTransaction records a confirmed transaction immediately instead of
// waiting for the next sync window. The caller's authenticated FID fills in
// when the transaction input cannot be decoded, so wallet-relayed
// transactions still get attributed.
func (u *verifyUseCaseImpl) VerifyTransaction(ctx context.Context, txHash string, authFID int64) (*VerifyResult, error) {
	hash := common.HexToHash(txHash)
	canonical := hash.Hex()

	if rec, err := u.purchases.FindByTxHash(ctx, canonical); err == nil {
		return &VerifyResult{TxHash: canonical, Kind: "purchase", AlreadyRecorded: true, Qty: rec.Qty, FID: rec.FID}, nil
	}
	if rec, err := u.redemptions.FindByTxHash(ctx, canonical); err == nil {
		return &VerifyResult{TxHash: canonical, Kind: "redemption", AlreadyRecorded: true, Qty: rec.Qty, FID: rec.FID}, nil
	}

	receipt, err := u.chain.TransactionReceipt(ctx, hash)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, errs.Mark(err, errs.ErrTxNotFound)
		}
		return nil, errs.Mark(err, errs.ErrChainUnavailable)
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		return nil, errs.ErrTxNotConfirmed
	}

	ts, err := u.chain.BlockTimestamp(ctx, receipt.BlockNumber.Uint64())
	if err != nil {
		return nil, errs.Mark(err, errs.ErrChainUnavailable)
	}

	contractAddr := u.chain.ContractAddress()
	for _, log := range receipt.Logs {
		if log.Address != contractAddr || len(log.Topics) == 0 {
			continue
		}

		switch log.Topics[0] {
		case contract.PurchasedEventID():
			return u.recordPurchase(ctx, *log, ts, authFID)
		case contract.RedeemedEventID():
			return u.recordRedemption(ctx, *log, ts, authFID)
		}
	}

	return nil, errs.ErrTxMismatch
}

func (u *verifyUseCaseImpl) enrichFID(ctx context.Context, txHash common.Hash, authFID int64, decode func([]byte) (int64, bool)) *int64 {
	if input, err := u.chain.TransactionInput(ctx, txHash); err == nil {
		if fid, ok := decode(input); ok && fid > 0 {
			return &fid
		}
	}
	if authFID > 0 {
		return &authFID
	}
	return nil
}

func (u *verifyUseCaseImpl) recordPurchase(ctx context.Context, log types.Log, ts time.Time, authFID int64) (*VerifyResult, error) {
	event, err := contract.DecodePurchaseLog(log)
	if err != nil {
		return nil, errs.Mark(err, errs.ErrTxMismatch)
	}

	rec := &ledger.PurchaseRecord{
		TxHash:      event.TxHash.Hex(),
		BlockNumber: event.BlockNumber,
		Timestamp:   ts,
		Buyer:       event.Buyer.Hex(),
		Qty:         event.Qty.Int64(),
		Price:       decimal.NewFromBigInt(event.Price, 0),
		FID: u.enrichFID(ctx, event.TxHash, authFID, func(input []byte) (int64, bool) {
			call, err := contract.DecodeBuyCall(input)
			if err != nil {
				return 0, false
			}
			return call.FID.Int64(), true
		}),
	}

	result := &VerifyResult{TxHash: rec.TxHash, Kind: "purchase", Qty: rec.Qty, FID: rec.FID}

	if err := u.purchases.Insert(ctx, rec); err != nil {
		if infra.IsKind(err, infra.KindDuplicateKey) {
			result.AlreadyRecorded = true
			return result, nil
		}
		return nil, errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}

	// The on-chain nonce advanced with this purchase.
	u.nonces.Invalidate(ctx, rec.Buyer)

	u.logger.Info("purchase verified", "tx_hash", rec.TxHash, "qty", rec.Qty)
	return result, nil
}

func (u *verifyUseCaseImpl) recordRedemption(ctx context.Context, log types.Log, ts time.Time, authFID int64) (*VerifyResult, error) {
	event, err := contract.DecodeRedemptionLog(log)
	if err != nil {
		return nil, errs.Mark(err, errs.ErrTxMismatch)
	}

	rec := &ledger.RedemptionRecord{
		TxHash:      event.TxHash.Hex(),
		BlockNumber: event.BlockNumber,
		Timestamp:   ts,
		UserAddress: event.User.Hex(),
		Qty:         event.Qty.Int64(),
		WorkCID:     event.WorkCID,
		Status:      ledger.StatusPending,
		FID: u.enrichFID(ctx, event.TxHash, authFID, func(input []byte) (int64, bool) {
			call, err := contract.DecodeRedeemCall(input)
			if err != nil {
				return 0, false
			}
			return call.FID.Int64(), true
		}),
	}

	result := &VerifyResult{TxHash: rec.TxHash, Kind: "redemption", Qty: rec.Qty, FID: rec.FID}

	if err := u.redemptions.Insert(ctx, rec); err != nil {
		if infra.IsKind(err, infra.KindDuplicateKey) {
			result.AlreadyRecorded = true
			return result, nil
		}
		return nil, errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}

	u.linkRequest(ctx, rec, ts)

	u.logger.Info("redemption verified", "tx_hash", rec.TxHash, "qty", rec.Qty)
	return result, nil
}

// linkRequest mirrors the sync engine's linking step for verified redemptions.
func (u *verifyUseCaseImpl) linkRequest(ctx context.Context, rec *ledger.RedemptionRecord, ts time.Time) {
	l := &requestLinker{requests: u.requests, redemptions: u.redemptions, logger: u.logger}
	l.link(ctx, rec, ts)
}
