package queries

import (
	"context"
)

type SyncStatusView struct {
	LastSyncedBlock uint64 `json:"last_synced_block"`
	HeadBlock       uint64 `json:"head_block"`
	BlocksBehind    uint64 `json:"blocks_behind"`
	Purchases       int64  `json:"purchases"`
	Redemptions     int64  `json:"redemptions"`
}

type SyncStateReader interface {
	Get(ctx context.Context) (block uint64, ok bool, err error)
}

type HeadReader interface {
	HeadBlock(ctx context.Context) (uint64, error)
}

type LedgerCounter interface {
	Count(ctx context.Context) (int64, error)
}

type StatusQueries interface {
	SyncStatus(ctx context.Context) (*SyncStatusView, error)
}

type statusQueriesImpl struct {
	syncState   SyncStateReader
	head        HeadReader
	purchases   LedgerCounter
	redemptions LedgerCounter
	floorBlock  uint64
}

func NewStatusQueries(syncState SyncStateReader, head HeadReader, purchases, redemptions LedgerCounter, floorBlock uint64) StatusQueries {
	return &statusQueriesImpl{
		syncState:   syncState,
		head:        head,
		purchases:   purchases,
		redemptions: redemptions,
		floorBlock:  floorBlock,
	}
}

func (q *statusQueriesImpl) SyncStatus(ctx context.Context) (*SyncStatusView, error) {
	watermark, ok, err := q.syncState.Get(ctx)
	if err != nil {
		return nil, err
	}
	if !ok {
		watermark = q.floorBlock
	}

	head, err := q.head.HeadBlock(ctx)
	if err != nil {
		return nil, err
	}

	purchases, err := q.purchases.Count(ctx)
	if err != nil {
		return nil, err
	}
	redemptions, err := q.redemptions.Count(ctx)
	if err != nil {
		return nil, err
	}

	view := &SyncStatusView{
		LastSyncedBlock: watermark,
		HeadBlock:       head,
		Purchases:       purchases,
		Redemptions:     redemptions,
	}
	if head > watermark {
		view.BlocksBehind = head - watermark
	}

	return view, nil
}
