package valuation

import (
	"fmt"
	"math"
)

// PriceTier maps a base-price ceiling to the discount percentage applied when
// deriving the reserve price. Tiers are ordered ascending by ceiling and the
// first tier whose ceiling covers the base price wins.
type PriceTier struct {
	Ceiling    float64
	Percentage float64
}

// priceTiers is the business rule for reserve pricing, carried over verbatim
// from the pricing team's table. Note the step at 200000 (0.185 -> 0.22 -> 0.17)
// is NOT monotonic; it has been observed in every revision of the table and must
// not be "corrected" without sign-off from the pricing owner.
var priceTiers = []PriceTier{
	{15000, 0.65},
	{20000, 0.46},
	{30000, 0.37},
	{50000, 0.27},
	{60000, 0.27},
	{70000, 0.22},
	{80000, 0.23},
	{100000, 0.24},
	{130000, 0.20},
	{160000, 0.185},
	{200000, 0.22},
	{250000, 0.17},
	{300000, 0.18},
	{400000, 0.18},
	{500000, 0.16},
	{math.Inf(1), 0.145},
}

// CalculateReserve derives the reserve price from a base price using the tier
// table. Prices are whole currency units; rounding is half-up.
//
// A base price of zero or less is an upstream contract violation, not a
// recoverable condition, so it panics.
func CalculateReserve(basePrice int) int {
	if basePrice <= 0 {
		panic(fmt.Sprintf("valuation: base price must be positive, got %d", basePrice))
	}

	base := float64(basePrice)
	for _, tier := range priceTiers {
		if tier.Ceiling >= base {
			return int(math.Round(base - base*tier.Percentage))
		}
	}
	// Unreachable: the last tier's ceiling is +Inf.
	return basePrice
}
