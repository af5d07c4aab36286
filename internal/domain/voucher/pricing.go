package voucher

import "github.com/shopspring/decimal"

// Prices are in the smallest USDC unit (6 decimals). The contract enforces a
// hard floor of 100 USDC per hour regardless of discounts.
var (
	basePricePerHour = decimal.NewFromInt(300_000000)
	minPricePerHour  = decimal.NewFromInt(100_000000)
	hundred          = decimal.NewFromInt(100)
)

// Discount is a resolved discount with its display reason.
type Discount struct {
	Percentage int64
	Reason     string
}

// BasePrice returns qty hours at the undiscounted rate.
func BasePrice(qty int64) decimal.Decimal {
	return basePricePerHour.Mul(decimal.NewFromInt(qty))
}

// MinPrice returns the contract-enforced floor for qty hours.
func MinPrice(qty int64) decimal.Decimal {
	return minPricePerHour.Mul(decimal.NewFromInt(qty))
}

// Price applies a percentage discount to the base price, clamped to the
// contract floor. Discount amounts round down, matching the contract.
func Price(qty int64, discountPct int64) decimal.Decimal {
	total := BasePrice(qty)
	if discountPct <= 0 {
		return total
	}

	off := total.Mul(decimal.NewFromInt(discountPct)).Div(hundred).Floor()
	price := total.Sub(off)

	if floor := MinPrice(qty); price.LessThan(floor) {
		return floor
	}
	return price
}

// EffectivePct derives the discount percentage actually granted after floor
// clamping, rounded down.
func EffectivePct(qty int64, price decimal.Decimal) int64 {
	base := BasePrice(qty)
	if base.IsZero() || price.GreaterThanOrEqual(base) {
		return 0
	}
	return base.Sub(price).Mul(hundred).Div(base).Floor().IntPart()
}
