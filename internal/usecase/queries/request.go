package queries

import (
	"context"

	"devhours-api/internal/domain/ledger"
	"devhours-api/internal/infra"
	"devhours-api/internal/pkg/errs"
)

type RequestReader interface {
	FindByIDForOwner(ctx context.Context, id string, fid int64, addresses []string) (*ledger.RedemptionRequest, error)
	ListByOwner(ctx context.Context, fid int64, addresses []string, limit, offset int64) ([]*ledger.RedemptionRequest, error)
	CountByOwner(ctx context.Context, fid int64, addresses []string) (int64, error)
}

type RequestQueries interface {
	GetForOwner(ctx context.Context, id string, fid int64, addresses []string) (*RequestView, error)
	ListForOwner(ctx context.Context, fid int64, addresses []string, limit, offset int64) ([]*RequestView, Pagination, error)
}

type requestQueriesImpl struct {
	reader RequestReader
}

func NewRequestQueries(reader RequestReader) RequestQueries {
	return &requestQueriesImpl{reader: reader}
}

func (q *requestQueriesImpl) GetForOwner(ctx context.Context, id string, fid int64, addresses []string) (*RequestView, error) {
	req, err := q.reader.FindByIDForOwner(ctx, id, fid, addresses)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, errs.Mark(err, errs.ErrRequestNotFound)
		}
		return nil, errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}
	return requestToView(req), nil
}

func (q *requestQueriesImpl) ListForOwner(ctx context.Context, fid int64, addresses []string, limit, offset int64) ([]*RequestView, Pagination, error) {
	limit, offset = NormalizePage(limit, offset)

	total, err := q.reader.CountByOwner(ctx, fid, addresses)
	if err != nil {
		return nil, Pagination{}, errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}

	reqs, err := q.reader.ListByOwner(ctx, fid, addresses, limit, offset)
	if err != nil {
		return nil, Pagination{}, errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}

	views := make([]*RequestView, len(reqs))
	for i, req := range reqs {
		views[i] = requestToView(req)
	}

	return views, NewPagination(limit, offset, total), nil
}

func requestToView(req *ledger.RedemptionRequest) *RequestView {
	return &RequestView{
		ID:             req.ID,
		UserAddress:    req.UserAddress,
		FID:            req.FID,
		Qty:            req.Qty,
		RequestContent: req.RequestContent,
		Status:         req.Status.String(),
		TxHash:         req.TxHash,
		CreatedAt:      req.CreatedAt,
		CompletedAt:    req.CompletedAt,
	}
}
