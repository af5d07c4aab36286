package queries

import (
	"time"
)

// Read models (DTO for read side)
type PurchaseView struct {
	TxHash             string    `json:"tx_hash"`
	BlockNumber        uint64    `json:"block_number"`
	Timestamp          time.Time `json:"timestamp"`
	Buyer              string    `json:"buyer"`
	FID                *int64    `json:"fid,omitempty"`
	Qty                int64     `json:"qty"`
	Price              string    `json:"price"`
	DiscountPercentage int64     `json:"discount_percentage"`
	DiscountReason     *string   `json:"discount_reason,omitempty"`
}

type RedemptionView struct {
	TxHash      string    `json:"tx_hash"`
	BlockNumber uint64    `json:"block_number"`
	Timestamp   time.Time `json:"timestamp"`
	UserAddress string    `json:"user_address"`
	FID         *int64    `json:"fid,omitempty"`
	Qty         int64     `json:"qty"`
	WorkCID     string    `json:"work_cid"`
	Status      string    `json:"status"`
}

// ActivityView is one row in the combined activity feed. Kind is either
// "purchase" or "redemption"; kind-specific fields are nil for the other.
type ActivityView struct {
	Kind        string    `json:"kind"`
	TxHash      string    `json:"tx_hash"`
	BlockNumber uint64    `json:"block_number"`
	Timestamp   time.Time `json:"timestamp"`
	Address     string    `json:"address"`
	FID         *int64    `json:"fid,omitempty"`
	Qty         int64     `json:"qty"`
	Price       *string   `json:"price,omitempty"`
	WorkCID     *string   `json:"work_cid,omitempty"`
}

type RequestView struct {
	ID             string     `json:"id"`
	UserAddress    *string    `json:"user_address,omitempty"`
	FID            int64      `json:"fid"`
	Qty            int64      `json:"qty"`
	RequestContent string     `json:"request_content"`
	Status         string     `json:"status"`
	TxHash         *string    `json:"tx_hash,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	CompletedAt    *time.Time `json:"completed_at,omitempty"`
}

type Pagination struct {
	Limit   int64 `json:"limit"`
	Offset  int64 `json:"offset"`
	Total   int64 `json:"total"`
	HasMore bool  `json:"has_more"`
}

const (
	defaultPageLimit = 50
	maxPageLimit     = 100
)

// NormalizePage clamps caller-supplied paging values into a sane range.
func NormalizePage(limit, offset int64) (int64, int64) {
	if limit <= 0 {
		limit = defaultPageLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

func NewPagination(limit, offset, total int64) Pagination {
	return Pagination{
		Limit:   limit,
		Offset:  offset,
		Total:   total,
		HasMore: offset+limit < total,
	}
}
