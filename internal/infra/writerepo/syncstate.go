package writerepo

import (
	"context"

	"devhours-api/internal/infra"
	"devhours-api/internal/pkg/pgconv"
)

// lastSyncedBlockKey is the single row the sync engine persists its
// watermark under.
const lastSyncedBlockKey = "last_synced_block"

type SyncStateRepository struct {
	db infra.DBTX
}

func NewSyncStateRepository(db infra.DBTX) *SyncStateRepository {
	return &SyncStateRepository{db: db}
}

// Get returns the persisted watermark. ok is false when no sync has ever
// completed, in which case callers fall back to the deployment block.
func (r *SyncStateRepository) Get(ctx context.Context) (block uint64, ok bool, err error) {
	var stored int64
	err = r.db.QueryRow(ctx,
		`SELECT block_number FROM sync_state WHERE name = $1`,
		lastSyncedBlockKey,
	).Scan(&stored)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return 0, false, nil
		}
		return 0, false, infra.WrapRepoErr("failed to read sync state", err)
	}
	return uint64(stored), true, nil
}

func (r *SyncStateRepository) Set(ctx context.Context, block uint64) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO sync_state (name, block_number) VALUES ($1, $2)
		 ON CONFLICT (name) DO UPDATE SET block_number = EXCLUDED.block_number`,
		lastSyncedBlockKey, int64(block),
	)
	if err != nil {
		return infra.WrapRepoErr("failed to persist sync state", err)
	}
	return nil
}
