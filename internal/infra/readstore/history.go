package readstore

import (
	"context"
	"fmt"

	"devhours-api/internal/domain/ledger"
	"devhours-api/internal/infra"
	"devhours-api/internal/pkg/pgconv"
	"devhours-api/internal/usecase/queries"

	"github.com/jackc/pgx/v5/pgtype"
)

func filterIsEmpty(f queries.HistoryFilter) bool {
	return len(f.Addresses) == 0 && f.FID == nil
}

func normalizedAddresses(f queries.HistoryFilter) []string {
	out := make([]string, 0, len(f.Addresses))
	for _, a := range f.Addresses {
		out = append(out, ledger.NormalizeAddress(a))
	}
	return out
}

type HistoryReadStore struct {
	db infra.DBTX
}

func NewHistoryReadStore(db infra.DBTX) *HistoryReadStore {
	return &HistoryReadStore{db: db}
}

// ownerClause builds the identity predicate for the given address column.
// Returns "TRUE" for an empty filter so callers can always embed it.
func ownerClause(f queries.HistoryFilter, addrCol string, args *[]any) string {
	if filterIsEmpty(f) {
		return "TRUE"
	}

	switch {
	case len(f.Addresses) > 0 && f.FID != nil:
		*args = append(*args, normalizedAddresses(f), *f.FID)
		return fmt.Sprintf("(%s = ANY($%d) OR fid = $%d)", addrCol, len(*args)-1, len(*args))
	case len(f.Addresses) > 0:
		*args = append(*args, normalizedAddresses(f))
		return fmt.Sprintf("%s = ANY($%d)", addrCol, len(*args))
	default:
		*args = append(*args, *f.FID)
		return fmt.Sprintf("fid = $%d", len(*args))
	}
}

func (r *HistoryReadStore) ListPurchases(ctx context.Context, filter queries.HistoryFilter, limit, offset int64) ([]*queries.PurchaseView, int64, error) {
	var args []any
	where := ownerClause(filter, "buyer", &args)

	var total int64
	countSQL := `SELECT COUNT(*) FROM purchases WHERE ` + where
	if err := r.db.QueryRow(ctx, countSQL, args...).Scan(&total); err != nil {
		return nil, 0, infra.WrapRepoErr("failed to count purchase history", err)
	}

	args = append(args, limit, offset)
	listSQL := fmt.Sprintf(`
		SELECT tx_hash, block_number, ts, buyer, fid, qty, price, discount_percentage, discount_reason
		FROM purchases
		WHERE %s
		ORDER BY ts DESC, tx_hash
		LIMIT $%d OFFSET $%d`, where, len(args)-1, len(args))

	rows, err := r.db.Query(ctx, listSQL, args...)
	if err != nil {
		return nil, 0, infra.WrapRepoErr("failed to list purchase history", err)
	}
	defer rows.Close()

	var views []*queries.PurchaseView
	for rows.Next() {
		var (
			v      queries.PurchaseView
			ts     pgtype.Timestamptz
			fid    pgtype.Int8
			price  pgtype.Numeric
			reason pgtype.Text
		)
		if err := rows.Scan(&v.TxHash, &v.BlockNumber, &ts, &v.Buyer, &fid, &v.Qty, &price, &v.DiscountPercentage, &reason); err != nil {
			return nil, 0, infra.WrapRepoErr("failed to scan purchase row", err)
		}
		v.Timestamp = pgconv.TimeFromPgtype(ts)
		v.FID = pgconv.Int64PtrFromPgtype(fid)
		v.Price = pgconv.DecimalFromPgtype(price).String()
		v.DiscountReason = pgconv.StringPtrFromPgtype(reason)
		views = append(views, &v)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, infra.WrapRepoErr("failed to iterate purchase history", err)
	}

	return views, total, nil
}

func (r *HistoryReadStore) ListRedemptions(ctx context.Context, filter queries.HistoryFilter, limit, offset int64) ([]*queries.RedemptionView, int64, error) {
	var args []any
	where := ownerClause(filter, "user_address", &args)

	var total int64
	countSQL := `SELECT COUNT(*) FROM redemptions WHERE ` + where
	if err := r.db.QueryRow(ctx, countSQL, args...).Scan(&total); err != nil {
		return nil, 0, infra.WrapRepoErr("failed to count redemption history", err)
	}

	args = append(args, limit, offset)
	listSQL := fmt.Sprintf(`
		SELECT tx_hash, block_number, ts, user_address, fid, qty, work_cid, status
		FROM redemptions
		WHERE %s
		ORDER BY ts DESC, tx_hash
		LIMIT $%d OFFSET $%d`, where, len(args)-1, len(args))

	rows, err := r.db.Query(ctx, listSQL, args...)
	if err != nil {
		return nil, 0, infra.WrapRepoErr("failed to list redemption history", err)
	}
	defer rows.Close()

	var views []*queries.RedemptionView
	for rows.Next() {
		var (
			v   queries.RedemptionView
			ts  pgtype.Timestamptz
			fid pgtype.Int8
		)
		if err := rows.Scan(&v.TxHash, &v.BlockNumber, &ts, &v.UserAddress, &fid, &v.Qty, &v.WorkCID, &v.Status); err != nil {
			return nil, 0, infra.WrapRepoErr("failed to scan redemption row", err)
		}
		v.Timestamp = pgconv.TimeFromPgtype(ts)
		v.FID = pgconv.Int64PtrFromPgtype(fid)
		views = append(views, &v)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, infra.WrapRepoErr("failed to iterate redemption history", err)
	}

	return views, total, nil
}

const globalActivitySQL = `
	SELECT kind, tx_hash, block_number, ts, address, fid, qty, price, work_cid FROM (
		SELECT 'purchase' AS kind, tx_hash, block_number, ts, buyer AS address, fid, qty,
		       price, NULL AS work_cid
		FROM purchases
		UNION ALL
		SELECT 'redemption' AS kind, tx_hash, block_number, ts, user_address AS address, fid, qty,
		       NULL AS price, work_cid
		FROM redemptions
	) activity
	ORDER BY ts DESC, tx_hash
	LIMIT $1 OFFSET $2`

// GlobalActivity merges purchases and redemptions into one reverse
// chronological feed.
func (r *HistoryReadStore) GlobalActivity(ctx context.Context, limit, offset int64) ([]*queries.ActivityView, int64, error) {
	var total int64
	err := r.db.QueryRow(ctx,
		`SELECT (SELECT COUNT(*) FROM purchases) + (SELECT COUNT(*) FROM redemptions)`,
	).Scan(&total)
	if err != nil {
		return nil, 0, infra.WrapRepoErr("failed to count activity", err)
	}

	rows, err := r.db.Query(ctx, globalActivitySQL, limit, offset)
	if err != nil {
		return nil, 0, infra.WrapRepoErr("failed to list activity", err)
	}
	defer rows.Close()

	var views []*queries.ActivityView
	for rows.Next() {
		var (
			v       queries.ActivityView
			ts      pgtype.Timestamptz
			fid     pgtype.Int8
			price   pgtype.Numeric
			workCID pgtype.Text
		)
		if err := rows.Scan(&v.Kind, &v.TxHash, &v.BlockNumber, &ts, &v.Address, &fid, &v.Qty, &price, &workCID); err != nil {
			return nil, 0, infra.WrapRepoErr("failed to scan activity row", err)
		}
		v.Timestamp = pgconv.TimeFromPgtype(ts)
		v.FID = pgconv.Int64PtrFromPgtype(fid)
		if price.Valid {
			s := pgconv.DecimalFromPgtype(price).String()
			v.Price = &s
		}
		v.WorkCID = pgconv.StringPtrFromPgtype(workCID)
		views = append(views, &v)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, infra.WrapRepoErr("failed to iterate activity", err)
	}

	return views, total, nil
}
