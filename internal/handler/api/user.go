package api

import (
	"net/http"

	resdto "devhours-api/internal/handler/dto/response"
	"devhours-api/internal/handler/middleware"
	"devhours-api/internal/usecase/commands"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	contractReader commands.ContractReader
	nonces         commands.NonceCache
}

func NewUserHandler(contractReader commands.ContractReader, nonces commands.NonceCache) *UserHandler {
	return &UserHandler{
		contractReader: contractReader,
		nonces:         nonces,
	}
}

// @Summary Current user
// @Description Return the authenticated caller's FID and resolved addresses
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} resdto.MeResponse
// @Failure 401 {object} map[string]string
// @Router /me [get]
func (h *UserHandler) Me(c *gin.Context) {
	user, ok := middleware.GetUser(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}

	c.JSON(http.StatusOK, resdto.MeResponse{
		FID:            user.FID,
		PrimaryAddress: user.PrimaryAddress,
		Addresses:      user.Addresses,
	})
}

// @Summary Buyer nonce
// @Description Read the caller's current voucher nonce from the contract
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} resdto.NonceResponse
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Failure 502 {object} map[string]string
// @Router /me/nonce [get]
func (h *UserHandler) Nonce(c *gin.Context) {
	user, ok := middleware.GetUser(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}

	if user.PrimaryAddress == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "No wallet address available for this account",
		})
		return
	}

	ctx := c.Request.Context()
	nonce, ok := h.nonces.Get(ctx, user.PrimaryAddress)
	if !ok {
		var err error
		nonce, err = h.contractReader.BuyerNonce(ctx, common.HexToAddress(user.PrimaryAddress))
		if err != nil {
			c.JSON(http.StatusBadGateway, gin.H{
				"error": "Chain endpoint unavailable",
			})
			return
		}
		// Cache failures only cost the next caller a contract read.
		_ = h.nonces.Set(ctx, user.PrimaryAddress, nonce)
	}

	c.JSON(http.StatusOK, resdto.NonceResponse{
		Address: user.PrimaryAddress,
		Nonce:   nonce.String(),
	})
}
