// Package voucher holds the purchase-authorization entity and the static
// pricing rules it is priced with.
package voucher

import (
	"errors"
	"regexp"

	"github.com/shopspring/decimal"
)

var (
	ErrInvalidQty      = errors.New("quantity must be between 1 and 50")
	ErrInvalidAddress  = errors.New("invalid ethereum address")
	ErrPriceBelowFloor = errors.New("price below contract minimum")
)

const (
	MinQty = 1
	MaxQty = 50
)

var addressPattern = regexp.MustCompile(`^0x[a-fA-F0-9]{40}$`)

// Voucher is the signed authorization the contract accepts for a purchase.
// The buyer address keeps its original casing: it is part of the signed
// message and must match what the wallet submits.
type Voucher struct {
	Buyer string
	Qty   int64
	Price decimal.Decimal
	Nonce int64
	FID   int64
}

func New(buyer string, qty int64, price decimal.Decimal, nonce, fid int64) (*Voucher, error) {
	if qty < MinQty || qty > MaxQty {
		return nil, ErrInvalidQty
	}
	if !addressPattern.MatchString(buyer) {
		return nil, ErrInvalidAddress
	}
	if price.LessThan(MinPrice(qty)) {
		return nil, ErrPriceBelowFloor
	}

	return &Voucher{
		Buyer: buyer,
		Qty:   qty,
		Price: price,
		Nonce: nonce,
		FID:   fid,
	}, nil
}

// IsValidAddress reports whether s is a well-formed 0x-prefixed address.
func IsValidAddress(s string) bool {
	return addressPattern.MatchString(s)
}
