package api

import (
	"net/http"

	reqdto "devhours-api/internal/handler/dto/request"
	resdto "devhours-api/internal/handler/dto/response"
	"devhours-api/internal/handler/middleware"
	"devhours-api/internal/pkg/errs"
	"devhours-api/internal/pkg/shortid"
	"devhours-api/internal/usecase/commands"
	"devhours-api/internal/usecase/queries"

	"github.com/gin-gonic/gin"
)

type RedemptionHandler struct {
	requestUseCase commands.RequestCommands
	requestQueries queries.RequestQueries
}

func NewRedemptionHandler(requestUseCase commands.RequestCommands, requestQueries queries.RequestQueries) *RedemptionHandler {
	return &RedemptionHandler{
		requestUseCase: requestUseCase,
		requestQueries: requestQueries,
	}
}

func ownerAddresses(user middleware.AuthUser) []string {
	addrs := user.Addresses
	if user.PrimaryAddress != "" {
		addrs = append(addrs, user.PrimaryAddress)
	}
	return addrs
}

// @Summary Create redemption request
// @Description Store a work description and return the id to pass on-chain as workCID
// @Tags redemptions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body reqdto.CreateRedemptionRequest true "Redemption request"
// @Success 201 {object} queries.RequestView
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Router /redemption-requests [post]
func (h *RedemptionHandler) CreateRequest(c *gin.Context) {
	user, ok := middleware.GetUser(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}

	var req reqdto.CreateRedemptionRequest
	if bindErr := c.ShouldBindJSON(&req); bindErr != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request format",
		})
		return
	}

	address := req.Address
	if address == "" {
		address = user.PrimaryAddress
	}

	view, err := h.requestUseCase.CreateRequest(c.Request.Context(), user.FID, address, req.Qty, req.Content)
	if err != nil {
		switch {
		case errs.Is(err, commands.ErrInvalidRequestContent), errs.Is(err, errs.ErrDomainValidation):
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Invalid request content",
			})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Internal server error",
			})
		}
		return
	}

	c.JSON(http.StatusCreated, view)
}

// @Summary Get redemption request
// @Description Fetch one of the caller's redemption requests
// @Tags redemptions
// @Produce json
// @Security BearerAuth
// @Param id path string true "Request ID"
// @Success 200 {object} queries.RequestView
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /redemption-requests/{id} [get]
func (h *RedemptionHandler) GetRequest(c *gin.Context) {
	user, ok := middleware.GetUser(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}

	id := c.Param("id")
	if !shortid.IsValid(id) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request ID format",
		})
		return
	}

	view, err := h.requestQueries.GetForOwner(c.Request.Context(), id, user.FID, ownerAddresses(user))
	if err != nil {
		switch {
		case errs.Is(err, errs.ErrRequestNotFound):
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Redemption request not found",
			})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Internal server error",
			})
		}
		return
	}

	c.JSON(http.StatusOK, view)
}

// @Summary List redemption requests
// @Description List the caller's redemption requests
// @Tags redemptions
// @Produce json
// @Security BearerAuth
// @Param limit query int false "Page size"
// @Param offset query int false "Page offset"
// @Success 200 {object} resdto.RequestListResponse
// @Failure 401 {object} map[string]string
// @Router /redemption-requests [get]
func (h *RedemptionHandler) ListRequests(c *gin.Context) {
	user, ok := middleware.GetUser(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}

	limit, offset := pageParams(c)
	views, pagination, err := h.requestQueries.ListForOwner(c.Request.Context(), user.FID, ownerAddresses(user), limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}
	if views == nil {
		views = []*queries.RequestView{}
	}

	c.JSON(http.StatusOK, resdto.RequestListResponse{Requests: views, Pagination: pagination})
}
