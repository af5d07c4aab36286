package writerepo

import (
	"context"

	"devhours-api/internal/domain/ledger"
	"devhours-api/internal/infra"
	"devhours-api/internal/pkg/pgconv"

	"github.com/jackc/pgx/v5/pgtype"
)

type PurchaseRepository struct {
	db infra.DBTX
}

func NewPurchaseRepository(db infra.DBTX) *PurchaseRepository {
	return &PurchaseRepository{db: db}
}

const insertPurchaseSQL = `
	INSERT INTO purchases (
		tx_hash, block_number, ts, buyer, fid, qty, price, discount_percentage, discount_reason
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

// Insert writes one purchase record. The primary key on tx_hash is the
// authoritative guard against double ingestion; a duplicate surfaces as
// KindDuplicateKey and callers treat it as already recorded.
func (r *PurchaseRepository) Insert(ctx context.Context, rec *ledger.PurchaseRecord) error {
	_, err := r.db.Exec(ctx, insertPurchaseSQL,
		rec.TxHash,
		rec.BlockNumber,
		pgconv.TimeToPgtype(rec.Timestamp),
		ledger.NormalizeAddress(rec.Buyer),
		pgconv.Int64PtrToPgtype(rec.FID),
		rec.Qty,
		pgconv.DecimalToPgtype(rec.Price),
		rec.DiscountPercentage,
		pgconv.StringPtrToPgtype(rec.DiscountReason),
	)
	if err != nil {
		if infra.IsUniqueViolation(err) {
			return infra.WrapRepoErr("purchase already recorded", err, infra.KindDuplicateKey)
		}
		return infra.WrapRepoErr("failed to insert purchase", err)
	}

	return nil
}

const findPurchaseSQL = `
	SELECT tx_hash, block_number, ts, buyer, fid, qty, price, discount_percentage, discount_reason, created_at
	FROM purchases
	WHERE tx_hash = $1`

func (r *PurchaseRepository) FindByTxHash(ctx context.Context, txHash string) (*ledger.PurchaseRecord, error) {
	var (
		rec       ledger.PurchaseRecord
		ts        pgtype.Timestamptz
		fid       pgtype.Int8
		price     pgtype.Numeric
		reason    pgtype.Text
		createdAt pgtype.Timestamptz
	)

	err := r.db.QueryRow(ctx, findPurchaseSQL, txHash).Scan(
		&rec.TxHash, &rec.BlockNumber, &ts, &rec.Buyer, &fid, &rec.Qty, &price,
		&rec.DiscountPercentage, &reason, &createdAt,
	)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("purchase not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find purchase by tx hash", err)
	}

	rec.Timestamp = pgconv.TimeFromPgtype(ts)
	rec.FID = pgconv.Int64PtrFromPgtype(fid)
	rec.Price = pgconv.DecimalFromPgtype(price)
	rec.DiscountReason = pgconv.StringPtrFromPgtype(reason)
	rec.CreatedAt = pgconv.TimeFromPgtype(createdAt)

	return &rec, nil
}

func (r *PurchaseRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM purchases`).Scan(&count); err != nil {
		return 0, infra.WrapRepoErr("failed to count purchases", err)
	}
	return count, nil
}
