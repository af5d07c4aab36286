package request

type VerifyTransactionRequest struct {
	TxHash string `json:"tx_hash" binding:"required"`
}
