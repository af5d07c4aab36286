package request

// ProxyRequest is a raw JSON-RPC envelope forwarded to the chain endpoint.
type ProxyRequest struct {
	JSONRPC string `json:"jsonrpc"`
	ID      any    `json:"id"`
	Method  string `json:"method" binding:"required"`
	Params  []any  `json:"params"`
}
