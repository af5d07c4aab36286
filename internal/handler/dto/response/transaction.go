package response

import (
	"devhours-api/internal/usecase/commands"

	"github.com/jinzhu/copier"
)

type VerifyTransactionResponse struct {
	TxHash          string `json:"tx_hash"`
	Kind            string `json:"kind"`
	AlreadyRecorded bool   `json:"already_recorded"`
	Qty             int64  `json:"qty"`
	FID             *int64 `json:"fid,omitempty"`
}

func FromVerifyResult(result *commands.VerifyResult) *VerifyTransactionResponse {
	var resp VerifyTransactionResponse
	_ = copier.Copy(&resp, result)
	return &resp
}
