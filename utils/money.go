package utils

import "github.com/shopspring/decimal"

// Round2 rounds to cents (half away from zero).
func Round2(x decimal.Decimal) decimal.Decimal {
	return x.Round(2)
}

// ToCents converts an amount to integer minor units for gateways that want them.
func ToCents(x decimal.Decimal) int64 {
	return Round2(x).Shift(2).IntPart()
}
