package commands

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"devhours-api/internal/domain/contract"
	"devhours-api/internal/domain/ledger"
	"devhours-api/internal/infra"
	"devhours-api/internal/pkg/config"
	"devhours-api/internal/pkg/errs"

	"github.com/ethereum/go-ethereum/core/types"
	"github.com/shopspring/decimal"
)

var ErrSyncInProgress = errs.New("sync already in progress")

type SyncCommands interface {
	Run(ctx context.Context) (*SyncSummary, error)
}

type syncUseCaseImpl struct {
	chain       ChainReader
	purchases   PurchaseRepository
	redemptions RedemptionRepository
	requests    RequestRepository
	syncState   SyncStateRepository
	windowSize  uint64
	floorBlock  uint64
	linker      *requestLinker
	logger      *slog.Logger
	mu          sync.Mutex
}

func NewSyncUseCase(
	chain ChainReader,
	purchases PurchaseRepository,
	redemptions RedemptionRepository,
	requests RequestRepository,
	syncState SyncStateRepository,
	chainCfg config.ChainConfig,
	syncCfg config.SyncConfig,
	logger *slog.Logger,
) SyncCommands {
	return &syncUseCaseImpl{
		chain:       chain,
		purchases:   purchases,
		redemptions: redemptions,
		requests:    requests,
		syncState:   syncState,
		windowSize:  syncCfg.WindowSize,
		floorBlock:  chainCfg.DeploymentBlock - 1,
		linker:      &requestLinker{requests: requests, redemptions: redemptions, logger: logger},
		logger:      logger,
	}
}

// Run syncs one window of contract events into the ledger. The watermark
// advances to the end of the window even when individual items fail: a
// dropped item is logged and lost rather than wedging sync forever.
func (s *syncUseCaseImpl) Run(ctx context.Context) (*SyncSummary, error) {
	if !s.mu.TryLock() {
		return nil, ErrSyncInProgress
	}
	defer s.mu.Unlock()

	watermark, ok, err := s.syncState.Get(ctx)
	if err != nil {
		return nil, errs.Wrap(err, "failed to load sync watermark")
	}
	if !ok || watermark < s.floorBlock {
		watermark = s.floorBlock
	}

	head, err := s.chain.HeadBlock(ctx)
	if err != nil {
		return nil, errs.Mark(errs.Wrap(err, "failed to read chain head"), errs.ErrChainUnavailable)
	}

	if watermark >= head {
		return &SyncSummary{FromBlock: watermark, ToBlock: watermark, UpToDate: true}, nil
	}

	fromBlock := watermark + 1
	toBlock := fromBlock + s.windowSize
	if toBlock > head {
		toBlock = head
	}

	logs, err := s.chain.FilterEvents(ctx, fromBlock, toBlock)
	if err != nil {
		return nil, errs.Mark(errs.Wrap(err, "failed to filter contract events"), errs.ErrChainUnavailable)
	}

	sort.SliceStable(logs, func(i, j int) bool {
		if logs[i].BlockNumber != logs[j].BlockNumber {
			return logs[i].BlockNumber < logs[j].BlockNumber
		}
		return logs[i].Index < logs[j].Index
	})

	summary := &SyncSummary{FromBlock: fromBlock, ToBlock: toBlock}
	timestamps := make(map[uint64]time.Time)

	for _, log := range logs {
		if len(log.Topics) == 0 {
			continue
		}
		switch log.Topics[0] {
		case contract.PurchasedEventID():
			s.ingestPurchase(ctx, log, timestamps, summary)
		case contract.RedeemedEventID():
			s.ingestRedemption(ctx, log, timestamps, summary)
		}
	}

	if err := s.syncState.Set(ctx, toBlock); err != nil {
		return nil, errs.Wrap(err, "failed to advance sync watermark")
	}

	s.logger.Info("sync window completed",
		"from_block", fromBlock,
		"to_block", toBlock,
		"purchases", summary.Purchases,
		"redemptions", summary.Redemptions,
		"skipped", summary.Skipped,
	)

	return summary, nil
}

func (s *syncUseCaseImpl) blockTime(ctx context.Context, cache map[uint64]time.Time, blockNumber uint64) (time.Time, error) {
	if ts, ok := cache[blockNumber]; ok {
		return ts, nil
	}
	ts, err := s.chain.BlockTimestamp(ctx, blockNumber)
	if err != nil {
		return time.Time{}, err
	}
	cache[blockNumber] = ts
	return ts, nil
}

func (s *syncUseCaseImpl) ingestPurchase(ctx context.Context, log types.Log, timestamps map[uint64]time.Time, summary *SyncSummary) {
	event, err := contract.DecodePurchaseLog(log)
	if err != nil {
		s.logger.Warn("dropping undecodable purchase log",
			"tx_hash", log.TxHash.Hex(), "block", log.BlockNumber, "error", err)
		summary.Skipped++
		return
	}

	// Replayed windows skip the per-item chain fetches for rows already
	// in the ledger.
	if _, err := s.purchases.FindByTxHash(ctx, event.TxHash.Hex()); err == nil {
		summary.Skipped++
		return
	}

	ts, err := s.blockTime(ctx, timestamps, event.BlockNumber)
	if err != nil {
		s.logger.Warn("dropping purchase, block timestamp unavailable",
			"tx_hash", event.TxHash.Hex(), "block", event.BlockNumber, "error", err)
		summary.Skipped++
		return
	}

	// Discount metadata is not recoverable from the event; the columns keep
	// their zero defaults.
	rec := &ledger.PurchaseRecord{
		TxHash:      event.TxHash.Hex(),
		BlockNumber: event.BlockNumber,
		Timestamp:   ts,
		Buyer:       event.Buyer.Hex(),
		Qty:         event.Qty.Int64(),
		Price:       decimal.NewFromBigInt(event.Price, 0),
	}

	// Enrichment only. Undecodable or unfetchable input leaves FID nil.
	if input, err := s.chain.TransactionInput(ctx, event.TxHash); err == nil {
		if call, err := contract.DecodeBuyCall(input); err == nil {
			if fid := call.FID.Int64(); fid > 0 {
				rec.FID = &fid
			}
		}
	}

	if err := s.purchases.Insert(ctx, rec); err != nil {
		if infra.IsKind(err, infra.KindDuplicateKey) {
			summary.Skipped++
			return
		}
		s.logger.Warn("dropping purchase, insert failed",
			"tx_hash", rec.TxHash, "block", rec.BlockNumber, "error", err)
		summary.Skipped++
		return
	}

	summary.Purchases++
}

func (s *syncUseCaseImpl) ingestRedemption(ctx context.Context, log types.Log, timestamps map[uint64]time.Time, summary *SyncSummary) {
	event, err := contract.DecodeRedemptionLog(log)
	if err != nil {
		s.logger.Warn("dropping undecodable redemption log",
			"tx_hash", log.TxHash.Hex(), "block", log.BlockNumber, "error", err)
		summary.Skipped++
		return
	}

	if _, err := s.redemptions.FindByTxHash(ctx, event.TxHash.Hex()); err == nil {
		summary.Skipped++
		return
	}

	ts, err := s.blockTime(ctx, timestamps, event.BlockNumber)
	if err != nil {
		s.logger.Warn("dropping redemption, block timestamp unavailable",
			"tx_hash", event.TxHash.Hex(), "block", event.BlockNumber, "error", err)
		summary.Skipped++
		return
	}

	rec := &ledger.RedemptionRecord{
		TxHash:      event.TxHash.Hex(),
		BlockNumber: event.BlockNumber,
		Timestamp:   ts,
		UserAddress: event.User.Hex(),
		Qty:         event.Qty.Int64(),
		WorkCID:     event.WorkCID,
		Status:      ledger.StatusPending,
	}

	if input, err := s.chain.TransactionInput(ctx, event.TxHash); err == nil {
		if call, err := contract.DecodeRedeemCall(input); err == nil {
			if fid := call.FID.Int64(); fid > 0 {
				rec.FID = &fid
			}
		}
	}

	if err := s.redemptions.Insert(ctx, rec); err != nil {
		if infra.IsKind(err, infra.KindDuplicateKey) {
			summary.Skipped++
			return
		}
		s.logger.Warn("dropping redemption, insert failed",
			"tx_hash", rec.TxHash, "block", rec.BlockNumber, "error", err)
		summary.Skipped++
		return
	}

	summary.Redemptions++
	s.linker.link(ctx, rec, ts)
}
