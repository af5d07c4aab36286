//go:build unit

package api_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"devhours-api/internal/handler/api"
	"devhours-api/internal/infra"
	"devhours-api/internal/pkg/errs"
	"devhours-api/internal/usecase/commands"
	"devhours-api/internal/usecase/queries"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

type fakeTransactionQueries struct {
	view *queries.TransactionView
	err  error
}

func (f *fakeTransactionQueries) Get(context.Context, string) (*queries.TransactionView, error) {
	return f.view, f.err
}

type fakeSyncCommands struct {
	summary *commands.SyncSummary
	err     error
}

func (f *fakeSyncCommands) Run(context.Context) (*commands.SyncSummary, error) {
	return f.summary, f.err
}

func performRequest(t *testing.T, register func(*gin.Engine), method, path string) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	register(engine)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, nil)
	engine.ServeHTTP(rec, req)
	return rec
}

func TestTransactionHandler_GetTransaction(t *testing.T) {
	const knownTx = "0x" + "a1a1a1a1a1a1a1a1a1a1a1a1a1a1a1a1a1a1a1a1a1a1a1a1a1a1a1a1a1a1a1a1"

	t.Run("unrecorded hash maps to 404", func(t *testing.T) {
		notFound := errs.Mark(infra.WrapRepoErr("redemption not found", nil, infra.KindNotFound), errs.ErrRecordNotFound)
		h := api.NewTransactionHandler(nil, &fakeTransactionQueries{err: notFound})

		rec := performRequest(t, func(e *gin.Engine) {
			e.GET("/transactions/:hash", h.GetTransaction)
		}, http.MethodGet, "/transactions/"+knownTx)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("malformed hash maps to 400", func(t *testing.T) {
		h := api.NewTransactionHandler(nil, &fakeTransactionQueries{})

		rec := performRequest(t, func(e *gin.Engine) {
			e.GET("/transactions/:hash", h.GetTransaction)
		}, http.MethodGet, "/transactions/nonsense")

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("recorded purchase maps to 200", func(t *testing.T) {
		view := &queries.TransactionView{Kind: "purchase", Purchase: &queries.PurchaseView{TxHash: knownTx}}
		h := api.NewTransactionHandler(nil, &fakeTransactionQueries{view: view})

		rec := performRequest(t, func(e *gin.Engine) {
			e.GET("/transactions/:hash", h.GetTransaction)
		}, http.MethodGet, "/transactions/"+knownTx)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"kind":"purchase"`)
	})
}

func TestAdminHandler_TriggerSync(t *testing.T) {
	t.Run("chain outage maps to 502", func(t *testing.T) {
		unavailable := errs.Mark(errs.New("failed to read chain head"), errs.ErrChainUnavailable)
		h := api.NewAdminHandler(&fakeSyncCommands{err: unavailable}, nil)

		rec := performRequest(t, func(e *gin.Engine) {
			e.POST("/admin/sync", h.TriggerSync)
		}, http.MethodPost, "/admin/sync")

		assert.Equal(t, http.StatusBadGateway, rec.Code)
	})

	t.Run("overlapping run maps to 409", func(t *testing.T) {
		h := api.NewAdminHandler(&fakeSyncCommands{err: commands.ErrSyncInProgress}, nil)

		rec := performRequest(t, func(e *gin.Engine) {
			e.POST("/admin/sync", h.TriggerSync)
		}, http.MethodPost, "/admin/sync")

		assert.Equal(t, http.StatusConflict, rec.Code)
	})
}
