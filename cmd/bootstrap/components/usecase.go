package components

import (
	"log/slog"

	"devhours-api/internal/infra/writerepo"
	"devhours-api/internal/pkg/config"
	"devhours-api/internal/usecase/commands"
	"devhours-api/internal/usecase/queries"

	"go.uber.org/fx"
)

var UseCaseModule = fx.Module("usecase",
	usecaseCommandsModule,
	usecaseQueriesModule,
)

var usecaseCommandsModule = fx.Module("usecase/commands",
	fx.Provide(
		NewSyncCommands,
		NewVoucherCommands,
		commands.NewVerifyUseCase,
		commands.NewRequestUseCase,
	),
)

var usecaseQueriesModule = fx.Module("usecase/queries",
	fx.Provide(
		queries.NewHistoryQueries,
		queries.NewRequestQueries,
		queries.NewTransactionQueries,
		NewStatusQueries,
		NewContractQueries,
	),
)

func NewSyncCommands(
	chain commands.ChainReader,
	purchases commands.PurchaseRepository,
	redemptions commands.RedemptionRepository,
	requests commands.RequestRepository,
	syncState commands.SyncStateRepository,
	cfg config.Config,
	logger *slog.Logger,
) commands.SyncCommands {
	return commands.NewSyncUseCase(chain, purchases, redemptions, requests, syncState, cfg.Chain, cfg.Sync, logger)
}

func NewVoucherCommands(
	contract commands.ContractReader,
	signer commands.VoucherSigner,
	resolver commands.AddressResolver,
	nonces commands.NonceCache,
	cfg config.Config,
	logger *slog.Logger,
) commands.VoucherCommands {
	return commands.NewVoucherUseCase(contract, signer, resolver, nonces, cfg.Auth, logger)
}

// Both ledger counters are concrete repos here because StatusQueries needs
// one of each and fx cannot tell two LedgerCounter bindings apart.
func NewStatusQueries(
	syncState queries.SyncStateReader,
	head queries.HeadReader,
	purchases *writerepo.PurchaseRepository,
	redemptions *writerepo.RedemptionRepository,
	cfg config.Config,
) queries.StatusQueries {
	return queries.NewStatusQueries(syncState, head, purchases, redemptions, cfg.Chain.DeploymentBlock-1)
}

func NewContractQueries(
	reader queries.ContractViewReader,
	signer queries.SignerInfo,
	cfg config.Config,
) queries.ContractQueries {
	return queries.NewContractQueries(reader, signer, cfg.Chain.ContractAddress, cfg.Chain.USDCAddress, cfg.Chain.ChainID)
}
