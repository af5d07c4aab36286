package request

type CreateVoucherRequest struct {
	Qty     int64  `json:"qty" binding:"required,min=1,max=50"`
	Address string `json:"address" binding:"omitempty"`
}
