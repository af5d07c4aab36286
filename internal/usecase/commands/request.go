package commands

import (
	"context"
	"log/slog"
	"strings"

	"devhours-api/internal/domain/ledger"
	"devhours-api/internal/pkg/errs"
	"devhours-api/internal/pkg/shortid"
	"devhours-api/internal/usecase/queries"
)

const maxRequestContentLen = 5000

var ErrInvalidRequestContent = errs.New("invalid request content")

type RequestCommands interface {
	CreateRequest(ctx context.Context, fid int64, address string, qty int64, content string) (*queries.RequestView, error)
}

type requestUseCaseImpl struct {
	requests RequestRepository
	logger   *slog.Logger
}

func NewRequestUseCase(requests RequestRepository, logger *slog.Logger) RequestCommands {
	return &requestUseCaseImpl{requests: requests, logger: logger}
}

// CreateRequest stores a work description and hands back the generated id the
// caller passes on-chain as the redeem workCID.
func (u *requestUseCaseImpl) CreateRequest(ctx context.Context, fid int64, address string, qty int64, content string) (*queries.RequestView, error) {
	content = strings.TrimSpace(content)
	if content == "" || len(content) > maxRequestContentLen {
		return nil, ErrInvalidRequestContent
	}
	if qty <= 0 {
		return nil, errs.Mark(ledger.ErrInvalidQty, errs.ErrDomainValidation)
	}

	id, err := shortid.New()
	if err != nil {
		return nil, errs.Wrap(err, "failed to generate request id")
	}

	req := &ledger.RedemptionRequest{
		ID:             id,
		FID:            fid,
		Qty:            qty,
		RequestContent: content,
		Status:         ledger.StatusPending,
	}
	if address != "" {
		normalized := ledger.NormalizeAddress(address)
		req.UserAddress = &normalized
	}

	if err := u.requests.Create(ctx, req); err != nil {
		return nil, errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}

	u.logger.Info("redemption request created", "request_id", id, "fid", fid, "qty", qty)

	created, err := u.requests.FindByID(ctx, id)
	if err != nil {
		return nil, errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}

	return &queries.RequestView{
		ID:             created.ID,
		UserAddress:    created.UserAddress,
		FID:            created.FID,
		Qty:            created.Qty,
		RequestContent: created.RequestContent,
		Status:         created.Status.String(),
		TxHash:         created.TxHash,
		CreatedAt:      created.CreatedAt,
		CompletedAt:    created.CompletedAt,
	}, nil
}
