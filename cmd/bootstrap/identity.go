package bootstrap

import (
	"devhours-api/internal/handler/middleware"
	"devhours-api/internal/infra/identity"
	"devhours-api/internal/pkg/config"
	"devhours-api/internal/usecase/commands"

	"go.uber.org/fx"
)

var IdentityModule = fx.Module("identity",
	fx.Provide(
		fx.Annotate(
			func(cfg config.Config) *identity.TokenVerifier {
				return identity.NewTokenVerifier(cfg.Auth)
			},
			fx.As(new(middleware.TokenVerifier)),
		),
		fx.Annotate(
			func(cfg config.Config) *identity.FarcasterClient {
				return identity.NewFarcasterClient(cfg.Auth)
			},
			fx.As(new(commands.AddressResolver)),
		),
	),
)
