package components

import (
	"devhours-api/internal/infra"
	"devhours-api/internal/infra/cache"
	"devhours-api/internal/infra/readstore"
	"devhours-api/internal/infra/writerepo"
	"devhours-api/internal/usecase/commands"
	"devhours-api/internal/usecase/queries"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/fx"
)

var RepositoryModule = fx.Module("repository",
	fx.Provide(
		NewDBTX,
		writerepo.NewPurchaseRepository,
		writerepo.NewRedemptionRepository,
		writerepo.NewRequestRepository,
		writerepo.NewSyncStateRepository,
		fx.Annotate(
			func(r *writerepo.PurchaseRepository) *writerepo.PurchaseRepository { return r },
			fx.As(new(commands.PurchaseRepository)),
			fx.As(new(queries.PurchaseReader)),
		),
		fx.Annotate(
			func(r *writerepo.RedemptionRepository) *writerepo.RedemptionRepository { return r },
			fx.As(new(commands.RedemptionRepository)),
			fx.As(new(queries.RedemptionReader)),
		),
		fx.Annotate(
			func(r *writerepo.RequestRepository) *writerepo.RequestRepository { return r },
			fx.As(new(commands.RequestRepository)),
			fx.As(new(queries.RequestReader)),
		),
		fx.Annotate(
			func(r *writerepo.SyncStateRepository) *writerepo.SyncStateRepository { return r },
			fx.As(new(commands.SyncStateRepository)),
			fx.As(new(queries.SyncStateReader)),
		),
		// Read-side store for history queries
		fx.Annotate(
			readstore.NewHistoryReadStore,
			fx.As(new(queries.HistoryRepo)),
		),
		fx.Annotate(
			cache.NewNonceCache,
			fx.As(new(commands.NonceCache)),
		),
	),
)

func NewDBTX(pool *pgxpool.Pool) infra.DBTX {
	return pool
}
