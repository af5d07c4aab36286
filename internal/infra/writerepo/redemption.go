package writerepo

import (
	"context"

	"devhours-api/internal/domain/ledger"
	"devhours-api/internal/infra"
	"devhours-api/internal/pkg/pgconv"

	"github.com/jackc/pgx/v5/pgtype"
)

type RedemptionRepository struct {
	db infra.DBTX
}

func NewRedemptionRepository(db infra.DBTX) *RedemptionRepository {
	return &RedemptionRepository{db: db}
}

const insertRedemptionSQL = `
	INSERT INTO redemptions (
		tx_hash, block_number, ts, user_address, fid, qty, work_cid, status
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

func (r *RedemptionRepository) Insert(ctx context.Context, rec *ledger.RedemptionRecord) error {
	status := rec.Status
	if status == "" {
		status = ledger.StatusPending
	}

	_, err := r.db.Exec(ctx, insertRedemptionSQL,
		rec.TxHash,
		rec.BlockNumber,
		pgconv.TimeToPgtype(rec.Timestamp),
		ledger.NormalizeAddress(rec.UserAddress),
		pgconv.Int64PtrToPgtype(rec.FID),
		rec.Qty,
		rec.WorkCID,
		status.String(),
	)
	if err != nil {
		if infra.IsUniqueViolation(err) {
			return infra.WrapRepoErr("redemption already recorded", err, infra.KindDuplicateKey)
		}
		return infra.WrapRepoErr("failed to insert redemption", err)
	}

	return nil
}

const findRedemptionSQL = `
	SELECT tx_hash, block_number, ts, user_address, fid, qty, work_cid, status, created_at
	FROM redemptions
	WHERE tx_hash = $1`

func (r *RedemptionRepository) FindByTxHash(ctx context.Context, txHash string) (*ledger.RedemptionRecord, error) {
	var (
		rec       ledger.RedemptionRecord
		ts        pgtype.Timestamptz
		fid       pgtype.Int8
		status    string
		createdAt pgtype.Timestamptz
	)

	err := r.db.QueryRow(ctx, findRedemptionSQL, txHash).Scan(
		&rec.TxHash, &rec.BlockNumber, &ts, &rec.UserAddress, &fid, &rec.Qty,
		&rec.WorkCID, &status, &createdAt,
	)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("redemption not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find redemption by tx hash", err)
	}

	rec.Timestamp = pgconv.TimeFromPgtype(ts)
	rec.FID = pgconv.Int64PtrFromPgtype(fid)
	rec.Status = ledger.Status(status)
	rec.CreatedAt = pgconv.TimeFromPgtype(createdAt)

	return &rec, nil
}

// UpdateStatus is the only mutation path for redemption records.
func (r *RedemptionRepository) UpdateStatus(ctx context.Context, txHash string, status ledger.Status) error {
	_, err := r.db.Exec(ctx,
		`UPDATE redemptions SET status = $2 WHERE tx_hash = $1`,
		txHash, status.String(),
	)
	if err != nil {
		return infra.WrapRepoErr("failed to update redemption status", err)
	}
	return nil
}

func (r *RedemptionRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM redemptions`).Scan(&count); err != nil {
		return 0, infra.WrapRepoErr("failed to count redemptions", err)
	}
	return count, nil
}
