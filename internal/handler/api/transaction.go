package api

import (
	"net/http"
	"regexp"

	reqdto "devhours-api/internal/handler/dto/request"
	resdto "devhours-api/internal/handler/dto/response"
	"devhours-api/internal/handler/middleware"
	"devhours-api/internal/pkg/errs"
	"devhours-api/internal/usecase/commands"
	"devhours-api/internal/usecase/queries"

	"github.com/gin-gonic/gin"
)

var txHashPattern = regexp.MustCompile(`^0x[a-fA-F0-9]{64}$`)

type TransactionHandler struct {
	verifyUseCase      commands.VerifyCommands
	transactionQueries queries.TransactionQueries
}

func NewTransactionHandler(verifyUseCase commands.VerifyCommands, transactionQueries queries.TransactionQueries) *TransactionHandler {
	return &TransactionHandler{
		verifyUseCase:      verifyUseCase,
		transactionQueries: transactionQueries,
	}
}

// @Summary Verify transaction
// @Description Record a confirmed purchase or redemption ahead of the next sync window
// @Tags transactions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body reqdto.VerifyTransactionRequest true "Transaction to verify"
// @Success 200 {object} resdto.VerifyTransactionResponse
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Failure 502 {object} map[string]string
// @Router /transactions/verify [post]
func (h *TransactionHandler) VerifyTransaction(c *gin.Context) {
	user, ok := middleware.GetUser(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}

	var req reqdto.VerifyTransactionRequest
	if bindErr := c.ShouldBindJSON(&req); bindErr != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request format",
		})
		return
	}
	if !txHashPattern.MatchString(req.TxHash) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid transaction hash format",
		})
		return
	}

	result, err := h.verifyUseCase.VerifyTransaction(c.Request.Context(), req.TxHash, user.FID)
	if err != nil {
		switch {
		case errs.Is(err, errs.ErrTxNotFound):
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Transaction not found",
			})
		case errs.Is(err, errs.ErrTxNotConfirmed):
			c.JSON(http.StatusConflict, gin.H{
				"error": "Transaction has not succeeded on-chain",
			})
		case errs.Is(err, errs.ErrTxMismatch):
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Transaction does not touch the dev-hours contract",
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

	c.JSON(http.StatusOK, resdto.FromVerifyResult(result))
}

// @Summary Transaction lookup
// @Description Look up a recorded transaction in both ledger tables
// @Tags transactions
// @Produce json
// @Security BearerAuth
// @Param hash path string true "Transaction hash"
// @Success 200 {object} queries.TransactionView
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /transactions/{hash} [get]
func (h *TransactionHandler) GetTransaction(c *gin.Context) {
	hash := c.Param("hash")
	if !txHashPattern.MatchString(hash) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid transaction hash format",
		})
		return
	}

	view, err := h.transactionQueries.Get(c.Request.Context(), hash)
	if err != nil {
		if errs.Is(err, errs.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Transaction not recorded",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}

	c.JSON(http.StatusOK, view)
}
