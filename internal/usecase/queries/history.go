package queries

import (
	"context"
)

// HistoryFilter narrows history queries to one identity. An empty filter
// matches everything. Addresses match after normalization, FID exactly.
type HistoryFilter struct {
	Addresses []string
	FID       *int64
}

type HistoryRepo interface {
	ListPurchases(ctx context.Context, filter HistoryFilter, limit, offset int64) ([]*PurchaseView, int64, error)
	ListRedemptions(ctx context.Context, filter HistoryFilter, limit, offset int64) ([]*RedemptionView, int64, error)
	GlobalActivity(ctx context.Context, limit, offset int64) ([]*ActivityView, int64, error)
}

type HistoryQueries interface {
	Purchases(ctx context.Context, filter HistoryFilter, limit, offset int64) ([]*PurchaseView, Pagination, error)
	Redemptions(ctx context.Context, filter HistoryFilter, limit, offset int64) ([]*RedemptionView, Pagination, error)
	Activity(ctx context.Context, limit, offset int64) ([]*ActivityView, Pagination, error)
}

type historyQueriesImpl struct {
	repo HistoryRepo
}

func NewHistoryQueries(repo HistoryRepo) HistoryQueries {
	return &historyQueriesImpl{repo: repo}
}

func (q *historyQueriesImpl) Purchases(ctx context.Context, filter HistoryFilter, limit, offset int64) ([]*PurchaseView, Pagination, error) {
	limit, offset = NormalizePage(limit, offset)

	views, total, err := q.repo.ListPurchases(ctx, filter, limit, offset)
	if err != nil {
		return nil, Pagination{}, err
	}
	return views, NewPagination(limit, offset, total), nil
}

func (q *historyQueriesImpl) Redemptions(ctx context.Context, filter HistoryFilter, limit, offset int64) ([]*RedemptionView, Pagination, error) {
	limit, offset = NormalizePage(limit, offset)

	views, total, err := q.repo.ListRedemptions(ctx, filter, limit, offset)
	if err != nil {
		return nil, Pagination{}, err
	}
	return views, NewPagination(limit, offset, total), nil
}

// The global feed is served unauthenticated, so its page size stays small.
const maxActivityLimit = 50

func (q *historyQueriesImpl) Activity(ctx context.Context, limit, offset int64) ([]*ActivityView, Pagination, error) {
	limit, offset = NormalizePage(limit, offset)
	if limit > maxActivityLimit {
		limit = maxActivityLimit
	}

	views, total, err := q.repo.GlobalActivity(ctx, limit, offset)
	if err != nil {
		return nil, Pagination{}, err
	}
	return views, NewPagination(limit, offset, total), nil
}
