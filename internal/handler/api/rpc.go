package api

import (
	"context"
	"encoding/json"
	"net/http"

	reqdto "devhours-api/internal/handler/dto/request"
	"devhours-api/internal/infra"

	"github.com/gin-gonic/gin"
)

// RPCProxy forwards one JSON-RPC call to the chain endpoint.
type RPCProxy interface {
	Proxy(ctx context.Context, result any, method string, params ...any) error
}

// Methods the frontend legitimately needs for wallet flows. Everything else
// is rejected before touching the endpoint.
var allowedRPCMethods = map[string]struct{}{
	"eth_blockNumber":           {},
	"eth_chainId":               {},
	"eth_call":                  {},
	"eth_estimateGas":           {},
	"eth_gasPrice":              {},
	"eth_maxPriorityFeePerGas":  {},
	"eth_feeHistory":            {},
	"eth_getBalance":            {},
	"eth_getTransactionCount":   {},
	"eth_getTransactionByHash":  {},
	"eth_getTransactionReceipt": {},
	"eth_sendRawTransaction":    {},
}

type RPCHandler struct {
	proxy RPCProxy
}

func NewRPCHandler(proxy RPCProxy) *RPCHandler {
	return &RPCHandler{
		proxy: proxy,
	}
}

// @Summary JSON-RPC proxy
// @Description Forward an allowlisted JSON-RPC call to the chain endpoint
// @Tags rpc
// @Accept json
// @Produce json
// @Param request body reqdto.ProxyRequest true "JSON-RPC envelope"
// @Success 200 {object} map[string]any
// @Failure 400 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Failure 502 {object} map[string]string
// @Router /rpc [post]
func (h *RPCHandler) Forward(c *gin.Context) {
	var req reqdto.ProxyRequest
	if bindErr := c.ShouldBindJSON(&req); bindErr != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request format",
		})
		return
	}

	if _, ok := allowedRPCMethods[req.Method]; !ok {
		c.JSON(http.StatusForbidden, gin.H{
			"error": "Method not allowed",
		})
		return
	}

	var result json.RawMessage
	if err := h.proxy.Proxy(c.Request.Context(), &result, req.Method, req.Params...); err != nil {
		if infra.IsKind(err, infra.KindTransport) {
			c.JSON(http.StatusBadGateway, gin.H{
				"error": "Chain endpoint unavailable",
			})
			return
		}
		c.JSON(http.StatusBadGateway, gin.H{
			"error": "RPC call failed",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"jsonrpc": "2.0",
		"id":      req.ID,
		"result":  result,
	})
}
