package api

import (
	"net/http"

	"devhours-api/internal/pkg/errs"
	"devhours-api/internal/usecase/commands"
	"devhours-api/internal/usecase/queries"

	"github.com/gin-gonic/gin"
)

type AdminHandler struct {
	syncUseCase   commands.SyncCommands
	statusQueries queries.StatusQueries
}

func NewAdminHandler(syncUseCase commands.SyncCommands, statusQueries queries.StatusQueries) *AdminHandler {
	return &AdminHandler{
		syncUseCase:   syncUseCase,
		statusQueries: statusQueries,
	}
}

// @Summary Trigger sync
// @Description Run one sync window immediately instead of waiting for the scheduler
// @Tags admin
// @Produce json
// @Param X-Admin-Key header string true "Admin key"
// @Success 200 {object} commands.SyncSummary
// @Failure 401 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Failure 502 {object} map[string]string
// @Router /admin/sync [post]
func (h *AdminHandler) TriggerSync(c *gin.Context) {
	summary, err := h.syncUseCase.Run(c.Request.Context())
	if err != nil {
		switch {
		case errs.Is(err, commands.ErrSyncInProgress):
			c.JSON(http.StatusConflict, gin.H{
				"error": "Sync already in progress",
			})
		case errs.Is(err, errs.ErrChainUnavailable):
			c.JSON(http.StatusBadGateway, gin.H{
				"error": "Chain endpoint unavailable",
			})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Internal server error",
			})
		}
		return
	}

	c.JSON(http.StatusOK, summary)
}

// @Summary Sync status
// @Description Watermark position relative to the chain head plus ledger counts
// @Tags admin
// @Produce json
// @Param X-Admin-Key header string true "Admin key"
// @Success 200 {object} queries.SyncStatusView
// @Failure 401 {object} map[string]string
// @Failure 502 {object} map[string]string
// @Router /admin/sync-status [get]
func (h *AdminHandler) SyncStatus(c *gin.Context) {
	view, err := h.statusQueries.SyncStatus(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{
			"error": "Failed to read sync status",
		})
		return
	}

	c.JSON(http.StatusOK, view)
}
