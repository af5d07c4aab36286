package api

import (
	"net/http"
	"strconv"

	resdto "devhours-api/internal/handler/dto/response"
	"devhours-api/internal/handler/middleware"
	"devhours-api/internal/usecase/queries"

	"github.com/gin-gonic/gin"
)

type HistoryHandler struct {
	historyQueries queries.HistoryQueries
}

func NewHistoryHandler(historyQueries queries.HistoryQueries) *HistoryHandler {
	return &HistoryHandler{
		historyQueries: historyQueries,
	}
}

func pageParams(c *gin.Context) (int64, int64) {
	limit, _ := strconv.ParseInt(c.DefaultQuery("limit", "0"), 10, 64)
	offset, _ := strconv.ParseInt(c.DefaultQuery("offset", "0"), 10, 64)
	return limit, offset
}

// callerFilter matches history rows by any of the caller's addresses or FID.
func callerFilter(user middleware.AuthUser) queries.HistoryFilter {
	fid := user.FID
	filter := queries.HistoryFilter{FID: &fid, Addresses: user.Addresses}
	if user.PrimaryAddress != "" {
		filter.Addresses = append(filter.Addresses, user.PrimaryAddress)
	}
	return filter
}

// @Summary Purchase history
// @Description List the caller's recorded purchases
// @Tags history
// @Produce json
// @Security BearerAuth
// @Param limit query int false "Page size"
// @Param offset query int false "Page offset"
// @Success 200 {object} resdto.PurchaseListResponse
// @Failure 401 {object} map[string]string
// @Router /history/purchases [get]
func (h *HistoryHandler) GetPurchases(c *gin.Context) {
	user, ok := middleware.GetUser(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}

	limit, offset := pageParams(c)
	views, pagination, err := h.historyQueries.Purchases(c.Request.Context(), callerFilter(user), limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}
	if views == nil {
		views = []*queries.PurchaseView{}
	}

	c.JSON(http.StatusOK, resdto.PurchaseListResponse{Purchases: views, Pagination: pagination})
}

// @Summary Redemption history
// @Description List the caller's recorded redemptions
// @Tags history
// @Produce json
// @Security BearerAuth
// @Param limit query int false "Page size"
// @Param offset query int false "Page offset"
// @Success 200 {object} resdto.RedemptionListResponse
// @Failure 401 {object} map[string]string
// @Router /history/redemptions [get]
func (h *HistoryHandler) GetRedemptions(c *gin.Context) {
	user, ok := middleware.GetUser(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}

	limit, offset := pageParams(c)
	views, pagination, err := h.historyQueries.Redemptions(c.Request.Context(), callerFilter(user), limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}
	if views == nil {
		views = []*queries.RedemptionView{}
	}

	c.JSON(http.StatusOK, resdto.RedemptionListResponse{Redemptions: views, Pagination: pagination})
}

// @Summary Global activity feed
// @Description List recent purchases and redemptions across all users
// @Tags history
// @Produce json
// @Param limit query int false "Page size"
// @Param offset query int false "Page offset"
// @Success 200 {object} resdto.ActivityListResponse
// @Router /activity [get]
func (h *HistoryHandler) GetActivity(c *gin.Context) {
	limit, offset := pageParams(c)
	views, pagination, err := h.historyQueries.Activity(c.Request.Context(), limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}
	if views == nil {
		views = []*queries.ActivityView{}
	}

	c.JSON(http.StatusOK, resdto.ActivityListResponse{Activity: views, Pagination: pagination})
}
