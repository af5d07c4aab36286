package commands

import (
	"context"
	"log/slog"
	"time"

	"devhours-api/internal/domain/ledger"
	"devhours-api/internal/infra"
	"devhours-api/internal/pkg/shortid"
)

// requestLinker completes the off-chain redemption request a redeem
// references through its workCID, shared by the sync engine and the manual
// verification path. Free-text CIDs are legitimate and skipped silently; a
// matching-format CID with no stored request is only noise in the log.
type requestLinker struct {
	requests    RequestRepository
	redemptions RedemptionRepository
	logger      *slog.Logger
}

func (l *requestLinker) link(ctx context.Context, rec *ledger.RedemptionRecord, ts time.Time) {
	if !shortid.IsValid(rec.WorkCID) {
		return
	}

	if _, err := l.requests.FindByID(ctx, rec.WorkCID); err != nil {
		if !infra.IsKind(err, infra.KindNotFound) {
			l.logger.Warn("request lookup failed during linking",
				"request_id", rec.WorkCID, "tx_hash", rec.TxHash, "error", err)
		}
		return
	}

	if err := l.requests.Complete(ctx, rec.WorkCID, rec.TxHash, ts); err != nil {
		l.logger.Warn("failed to complete linked request",
			"request_id", rec.WorkCID, "tx_hash", rec.TxHash, "error", err)
		return
	}

	if err := l.redemptions.UpdateStatus(ctx, rec.TxHash, ledger.StatusCompleted); err != nil {
		l.logger.Warn("failed to mark linked redemption completed",
			"tx_hash", rec.TxHash, "error", err)
	}
}
