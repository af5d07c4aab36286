//go:build unit || e2e

package dbtest

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
)

// ResetDB truncates every ledger table so each subtest starts from a clean
// slate without rebuilding the schema.
func ResetDB(pool *pgxpool.Pool) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := pool.Exec(ctx,
		"TRUNCATE purchases, redemptions, redemption_requests, sync_state")
	return err
}

func InsertPurchase(t *testing.T, db DBLike, txHash, buyer string, block uint64, qty int64, price string, ts time.Time) {
	t.Helper()

	_, err := db.Exec(context.Background(),
		`INSERT INTO purchases (tx_hash, block_number, ts, buyer, qty, price)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		txHash, int64(block), ts, buyer, qty, price)
	require.NoError(t, err)
}

func InsertRedemption(t *testing.T, db DBLike, txHash, userAddress string, block uint64, qty int64, workCID string, ts time.Time) {
	t.Helper()

	_, err := db.Exec(context.Background(),
		`INSERT INTO redemptions (tx_hash, block_number, ts, user_address, qty, work_cid)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		txHash, int64(block), ts, userAddress, qty, workCID)
	require.NoError(t, err)
}

func CountRows(t *testing.T, db DBLike, table string) int64 {
	t.Helper()

	var count int64
	err := db.QueryRow(context.Background(), "SELECT count(*) FROM "+table).Scan(&count)
	require.NoError(t, err)
	return count
}
