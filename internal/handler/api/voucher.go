package api

import (
	"net/http"

	reqdto "devhours-api/internal/handler/dto/request"
	resdto "devhours-api/internal/handler/dto/response"
	"devhours-api/internal/handler/middleware"
	"devhours-api/internal/pkg/errs"
	"devhours-api/internal/usecase/commands"

	"github.com/gin-gonic/gin"
)

type VoucherHandler struct {
	voucherUseCase commands.VoucherCommands
}

func NewVoucherHandler(voucherUseCase commands.VoucherCommands) *VoucherHandler {
	return &VoucherHandler{
		voucherUseCase: voucherUseCase,
	}
}

// @Summary Issue purchase voucher
// @Description Price dev hours for the caller and return a signed voucher
// @Tags vouchers
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body reqdto.CreateVoucherRequest true "Voucher request"
// @Success 200 {object} resdto.VoucherResponse
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Failure 502 {object} map[string]string
// @Router /voucher [post]
func (h *VoucherHandler) CreateVoucher(c *gin.Context) {
	user, ok := middleware.GetUser(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}

	var req reqdto.CreateVoucherRequest
	if bindErr := c.ShouldBindJSON(&req); bindErr != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request format",
		})
		return
	}

	result, err := h.voucherUseCase.IssueVoucher(c.Request.Context(), user.FID, req.Address, req.Qty)
	if err != nil {
		switch {
		case errs.Is(err, commands.ErrInvalidVoucherRequest):
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Invalid voucher request",
			})
		case errs.Is(err, commands.ErrAddressNotOwned):
			c.JSON(http.StatusForbidden, gin.H{
				"error": "Address does not belong to the authenticated user",
			})
		case errs.Is(err, commands.ErrNoWalletAddress):
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "No wallet address available for this account",
			})
		case errs.Is(err, errs.ErrNonceUnavailable):
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

	c.JSON(http.StatusOK, resdto.FromVoucherResult(result))
}
