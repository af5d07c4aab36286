package bootstrap

import (
	"context"

	"devhours-api/internal/handler/api"
	"devhours-api/internal/infra/chain"
	"devhours-api/internal/pkg/config"
	"devhours-api/internal/usecase/commands"
	"devhours-api/internal/usecase/queries"

	"go.uber.org/fx"
)

var ChainModule = fx.Module("chain",
	fx.Provide(
		NewChainClient,
		NewSigner,
		fx.Annotate(
			func(c *chain.Client) *chain.Client { return c },
			fx.As(new(commands.ChainReader)),
			fx.As(new(commands.ContractReader)),
			fx.As(new(queries.HeadReader)),
			fx.As(new(queries.ContractViewReader)),
			fx.As(new(api.RPCProxy)),
		),
		fx.Annotate(
			func(s *chain.Signer) *chain.Signer { return s },
			fx.As(new(commands.VoucherSigner)),
			fx.As(new(queries.SignerInfo)),
		),
	),
)

func NewChainClient(lc fx.Lifecycle, cfg config.Config) (*chain.Client, error) {
	client, cleanup, err := chain.NewClient(cfg.Chain)
	if err != nil {
		return nil, err
	}

	lc.Append(fx.Hook{
		OnStop: func(_ context.Context) error {
			if cleanup != nil {
				cleanup()
			}
			return nil
		},
	})

	return client, nil
}

func NewSigner(cfg config.Config) (*chain.Signer, error) {
	return chain.NewSigner(cfg.Chain)
}
