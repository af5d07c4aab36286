package request

type CreateRedemptionRequest struct {
	Qty     int64  `json:"qty" binding:"required,min=1"`
	Content string `json:"content" binding:"required"`
	Address string `json:"address" binding:"omitempty"`
}
