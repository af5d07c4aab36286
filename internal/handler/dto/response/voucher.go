package response

import (
	"devhours-api/internal/usecase/commands"

	"github.com/jinzhu/copier"
)

type VoucherResponse struct {
	Buyer              string `json:"buyer"`
	Qty                int64  `json:"qty"`
	Price              string `json:"price"`
	Nonce              int64  `json:"nonce"`
	FID                int64  `json:"fid"`
	Signature          string `json:"signature"`
	SignerAddress      string `json:"signer_address"`
	DiscountPercentage int64  `json:"discount_percentage"`
	DiscountReason     string `json:"discount_reason,omitempty"`
}

func FromVoucherResult(result *commands.VoucherResult) *VoucherResponse {
	var resp VoucherResponse
	_ = copier.Copy(&resp, result)
	return &resp
}
