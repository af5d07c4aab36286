package api

import (
	"net/http"

	"devhours-api/internal/domain/voucher"
	"devhours-api/internal/usecase/queries"

	"github.com/gin-gonic/gin"
)

type ContractHandler struct {
	contractQueries queries.ContractQueries
}

func NewContractHandler(contractQueries queries.ContractQueries) *ContractHandler {
	return &ContractHandler{
		contractQueries: contractQueries,
	}
}

// @Summary Contract info
// @Description Static contract parameters plus live supply counters
// @Tags contract
// @Produce json
// @Success 200 {object} queries.ContractInfoView
// @Failure 502 {object} map[string]string
// @Router /contract [get]
func (h *ContractHandler) Info(c *gin.Context) {
	view, err := h.contractQueries.Info(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{
			"error": "Chain endpoint unavailable",
		})
		return
	}

	c.JSON(http.StatusOK, view)
}

// @Summary Voucher signing domain
// @Description EIP-712 domain and types clients use to reproduce the voucher digest
// @Tags contract
// @Produce json
// @Success 200 {object} queries.SigningDomainView
// @Router /contract/domain [get]
func (h *ContractHandler) SigningDomain(c *gin.Context) {
	c.JSON(http.StatusOK, h.contractQueries.SigningDomain())
}

// @Summary Hour balance
// @Description Read an address's dev-hours token balance
// @Tags contract
// @Produce json
// @Param address path string true "Holder address"
// @Success 200 {object} queries.BalanceView
// @Failure 400 {object} map[string]string
// @Failure 502 {object} map[string]string
// @Router /contract/balance/{address} [get]
func (h *ContractHandler) Balance(c *gin.Context) {
	address := c.Param("address")
	if !voucher.IsValidAddress(address) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid address format",
		})
		return
	}

	view, err := h.contractQueries.Balance(c.Request.Context(), address)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{
			"error": "Chain endpoint unavailable",
		})
		return
	}

	c.JSON(http.StatusOK, view)
}
