package writerepo

import (
	"context"
	"time"

	"devhours-api/internal/domain/ledger"
	"devhours-api/internal/infra"
	"devhours-api/internal/pkg/pgconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

type RequestRepository struct {
	db infra.DBTX
}

func NewRequestRepository(db infra.DBTX) *RequestRepository {
	return &RequestRepository{db: db}
}

const createRequestSQL = `
	INSERT INTO redemption_requests (
		id, user_address, fid, qty, request_content, status
	) VALUES ($1, $2, $3, $4, $5, $6)`

func (r *RequestRepository) Create(ctx context.Context, req *ledger.RedemptionRequest) error {
	status := req.Status
	if status == "" {
		status = ledger.StatusPending
	}

	var addr pgtype.Text
	if req.UserAddress != nil {
		normalized := ledger.NormalizeAddress(*req.UserAddress)
		addr = pgconv.StringToPgtype(normalized)
	}

	_, err := r.db.Exec(ctx, createRequestSQL,
		req.ID,
		addr,
		req.FID,
		req.Qty,
		req.RequestContent,
		status.String(),
	)
	if err != nil {
		if infra.IsUniqueViolation(err) {
			return infra.WrapRepoErr("redemption request id already exists", err, infra.KindDuplicateKey)
		}
		return infra.WrapRepoErr("failed to create redemption request", err)
	}

	return nil
}

const findRequestSQL = `
	SELECT id, user_address, fid, qty, request_content, status, tx_hash, created_at, completed_at
	FROM redemption_requests
	WHERE id = $1`

func (r *RequestRepository) FindByID(ctx context.Context, id string) (*ledger.RedemptionRequest, error) {
	row := r.db.QueryRow(ctx, findRequestSQL, id)
	return scanRequest(row)
}

const findRequestForOwnerSQL = `
	SELECT id, user_address, fid, qty, request_content, status, tx_hash, created_at, completed_at
	FROM redemption_requests
	WHERE id = $1 AND (fid = $2 OR user_address = ANY($3))`

// FindByIDForOwner resolves a request only when it belongs to the caller,
// matched by FID or by any of the caller's verified addresses.
func (r *RequestRepository) FindByIDForOwner(ctx context.Context, id string, fid int64, addresses []string) (*ledger.RedemptionRequest, error) {
	normalized := make([]string, 0, len(addresses))
	for _, a := range addresses {
		normalized = append(normalized, ledger.NormalizeAddress(a))
	}

	row := r.db.QueryRow(ctx, findRequestForOwnerSQL, id, fid, normalized)
	return scanRequest(row)
}

const listRequestsByOwnerSQL = `
	SELECT id, user_address, fid, qty, request_content, status, tx_hash, created_at, completed_at
	FROM redemption_requests
	WHERE fid = $1 OR user_address = ANY($2)
	ORDER BY created_at DESC
	LIMIT $3 OFFSET $4`

func (r *RequestRepository) ListByOwner(ctx context.Context, fid int64, addresses []string, limit, offset int64) ([]*ledger.RedemptionRequest, error) {
	normalized := make([]string, 0, len(addresses))
	for _, a := range addresses {
		normalized = append(normalized, ledger.NormalizeAddress(a))
	}

	rows, err := r.db.Query(ctx, listRequestsByOwnerSQL, fid, normalized, limit, offset)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list redemption requests", err)
	}
	defer rows.Close()

	var reqs []*ledger.RedemptionRequest
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		reqs = append(reqs, req)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate redemption requests", err)
	}

	return reqs, nil
}

func (r *RequestRepository) CountByOwner(ctx context.Context, fid int64, addresses []string) (int64, error) {
	normalized := make([]string, 0, len(addresses))
	for _, a := range addresses {
		normalized = append(normalized, ledger.NormalizeAddress(a))
	}

	var count int64
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM redemption_requests WHERE fid = $1 OR user_address = ANY($2)`,
		fid, normalized,
	).Scan(&count)
	if err != nil {
		return 0, infra.WrapRepoErr("failed to count redemption requests", err)
	}
	return count, nil
}

const completeRequestSQL = `
	UPDATE redemption_requests
	SET status = 'completed', tx_hash = $2, completed_at = $3
	WHERE id = $1 AND status <> 'completed'`

// Complete marks a pending request as completed with the redeeming
// transaction. Already-completed requests are left untouched so replayed
// windows cannot overwrite the first linkage.
func (r *RequestRepository) Complete(ctx context.Context, id, txHash string, completedAt time.Time) error {
	_, err := r.db.Exec(ctx, completeRequestSQL, id, txHash, pgconv.TimeToPgtype(completedAt))
	if err != nil {
		return infra.WrapRepoErr("failed to complete redemption request", err)
	}
	return nil
}

func scanRequest(row pgx.Row) (*ledger.RedemptionRequest, error) {
	var (
		req         ledger.RedemptionRequest
		addr        pgtype.Text
		status      string
		txHash      pgtype.Text
		createdAt   pgtype.Timestamptz
		completedAt pgtype.Timestamptz
	)

	err := row.Scan(
		&req.ID, &addr, &req.FID, &req.Qty, &req.RequestContent,
		&status, &txHash, &createdAt, &completedAt,
	)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("redemption request not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to scan redemption request", err)
	}

	req.UserAddress = pgconv.StringPtrFromPgtype(addr)
	req.Status = ledger.Status(status)
	req.TxHash = pgconv.StringPtrFromPgtype(txHash)
	req.CreatedAt = pgconv.TimeFromPgtype(createdAt)
	req.CompletedAt = pgconv.TimePtrFromPgtype(completedAt)

	return &req, nil
}
