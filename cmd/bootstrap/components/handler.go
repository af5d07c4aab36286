package components

import (
	"devhours-api/internal/handler"
	"devhours-api/internal/handler/api"
	"devhours-api/internal/handler/middleware"

	"go.uber.org/fx"
)

var HandlerModule = fx.Module("handler",
	fx.Provide(
		api.NewVoucherHandler,
		api.NewTransactionHandler,
		api.NewHistoryHandler,
		api.NewRedemptionHandler,
		api.NewUserHandler,
		api.NewContractHandler,
		api.NewRPCHandler,
		api.NewAdminHandler,
		middleware.NewAuthMiddleware,
		NewHandlers,
	),
	fx.Invoke(handler.NewRouter),
)

func NewHandlers(
	voucher *api.VoucherHandler,
	transaction *api.TransactionHandler,
	history *api.HistoryHandler,
	redemption *api.RedemptionHandler,
	user *api.UserHandler,
	contract *api.ContractHandler,
	rpc *api.RPCHandler,
	admin *api.AdminHandler,
) handler.Handlers {
	return handler.Handlers{
		Voucher:     voucher,
		Transaction: transaction,
		History:     history,
		Redemption:  redemption,
		User:        user,
		Contract:    contract,
		RPC:         rpc,
		Admin:       admin,
	}
}
