package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"devhours-api/internal/handler/api"
	"devhours-api/internal/handler/middleware"
	"devhours-api/internal/pkg/config"
)

type route struct {
	Method  string
	Path    string
	Handler gin.HandlerFunc
	Mw      []gin.HandlerFunc
}

type Handlers struct {
	Voucher     *api.VoucherHandler
	Transaction *api.TransactionHandler
	History     *api.HistoryHandler
	Redemption  *api.RedemptionHandler
	User        *api.UserHandler
	Contract    *api.ContractHandler
	RPC         *api.RPCHandler
	Admin       *api.AdminHandler
}

func NewRouter(engine *gin.Engine, cfg config.Config, handlers Handlers, authMiddleware *middleware.AuthMiddleware) {
	setupMiddleware(engine, cfg)
	setupRoutes(engine, cfg, handlers, authMiddleware)
}

func setupMiddleware(engine *gin.Engine, cfg config.Config) {
	// Recovery must be first (outermost) to catch panics from all other middleware
	engine.Use(middleware.CustomRecovery())
	engine.Use(middleware.NewCORSMiddleware(cfg.CORS))
	engine.Use(middleware.NewLogger(cfg.Log).LoggingMiddleware())
	engine.Use(middleware.ErrorHandler())
}

func setupRoutes(engine *gin.Engine, cfg config.Config, h Handlers, authMiddleware *middleware.AuthMiddleware) {
	engine.GET("/health", healthCheck)

	if gin.Mode() == gin.DebugMode {
		engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	apiGroup := engine.Group("/api")
	{
		// Public surface: contract metadata, the activity feed and the
		// wallet RPC proxy need no identity. The feed still identifies the
		// caller when a token is offered, without gating on one.
		addRoutes(apiGroup, []route{
			{Method: http.MethodGet, Path: "/contract", Handler: h.Contract.Info},
			{Method: http.MethodGet, Path: "/contract/domain", Handler: h.Contract.SigningDomain},
			{Method: http.MethodGet, Path: "/contract/balance/:address", Handler: h.Contract.Balance},
			{Method: http.MethodGet, Path: "/activity", Handler: h.History.GetActivity, Mw: []gin.HandlerFunc{authMiddleware.OptionalAuth()}},
			{Method: http.MethodPost, Path: "/rpc", Handler: h.RPC.Forward},
		})

		authRequired := apiGroup.Group("")
		authRequired.Use(authMiddleware.RequireAuth())
		{
			addRoutes(authRequired, []route{
				{Method: http.MethodGet, Path: "/me", Handler: h.User.Me},
				{Method: http.MethodGet, Path: "/me/nonce", Handler: h.User.Nonce},
				{Method: http.MethodPost, Path: "/voucher", Handler: h.Voucher.CreateVoucher},
				{Method: http.MethodPost, Path: "/transactions/verify", Handler: h.Transaction.VerifyTransaction},
				{Method: http.MethodGet, Path: "/transactions/:hash", Handler: h.Transaction.GetTransaction},
				{Method: http.MethodGet, Path: "/history/purchases", Handler: h.History.GetPurchases},
				{Method: http.MethodGet, Path: "/history/redemptions", Handler: h.History.GetRedemptions},
				{Method: http.MethodPost, Path: "/redemption-requests", Handler: h.Redemption.CreateRequest},
				{Method: http.MethodGet, Path: "/redemption-requests", Handler: h.Redemption.ListRequests},
				{Method: http.MethodGet, Path: "/redemption-requests/:id", Handler: h.Redemption.GetRequest},
			})
		}

		admin := apiGroup.Group("/admin")
		admin.Use(middleware.RequireAdminKey(cfg.Admin))
		{
			addRoutes(admin, []route{
				{Method: http.MethodPost, Path: "/sync", Handler: h.Admin.TriggerSync},
				{Method: http.MethodGet, Path: "/sync-status", Handler: h.Admin.SyncStatus},
			})
		}
	}
}

// @Summary Health check
// @Description Check if the service is healthy
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health [get]
func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"message": "Service is healthy",
	})
}

func addRoutes(group *gin.RouterGroup, routes []route) {
	for _, r := range routes {
		handlers := make([]gin.HandlerFunc, 0, len(r.Mw)+1)
		handlers = append(handlers, r.Mw...)
		handlers = append(handlers, r.Handler)
		group.Handle(r.Method, r.Path, handlers...)
	}
}
