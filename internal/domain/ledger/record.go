// Package ledger defines the persisted on-chain activity records. Purchase
// and redemption records are keyed by transaction hash and never deleted;
// a redemption's status transition is the only permitted mutation.
package ledger

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrInvalidTxHash = errors.New("invalid transaction hash")
	ErrInvalidQty    = errors.New("quantity must be positive")
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

func (s Status) String() string {
	return string(s)
}

func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusCompleted, StatusCancelled:
		return true
	default:
		return false
	}
}

// PurchaseRecord is one TokensPurchased observation. FID and the discount
// fields are best-effort enrichment; a nil FID means the transaction input
// could not be decoded.
type PurchaseRecord struct {
	TxHash             string
	BlockNumber        uint64
	Timestamp          time.Time
	Buyer              string
	FID                *int64
	Qty                int64
	Price              decimal.Decimal
	DiscountPercentage int64
	DiscountReason     *string
	CreatedAt          time.Time
}

// RedemptionRecord is one Redeemed observation.
type RedemptionRecord struct {
	TxHash      string
	BlockNumber uint64
	Timestamp   time.Time
	UserAddress string
	FID         *int64
	Qty         int64
	WorkCID     string
	Status      Status
	CreatedAt   time.Time
}

// RedemptionRequest is an off-chain request created before the on-chain
// redeem call; its ID becomes the workCID that links the two.
type RedemptionRequest struct {
	ID             string
	UserAddress    *string
	FID            int64
	Qty            int64
	RequestContent string
	Status         Status
	TxHash         *string
	CreatedAt      time.Time
	CompletedAt    *time.Time
}

// NormalizeAddress lowercases an address for storage and lookups. Voucher
// signing is the one place the original casing survives.
func NormalizeAddress(addr string) string {
	return strings.ToLower(addr)
}
