package payment

import "rentdesk/internal/common/money"

// ConversionPolicy is the bidirectional mapping between loyalty points and
// the settlement currency. Rate is points per major currency unit (the
// default 100 means 100 points = AED 1.00). MinRedemption is enforced as a
// validation error only, never as a silent clamp: an operator may enter
// fewer points and is told why the line is rejected.
type ConversionPolicy struct {
	Rate          int64
	MinRedemption int64
	Currency      money.Currency
}

// ToCurrency converts points to a currency amount, rounding half up in
// minor units.
func (p ConversionPolicy) ToCurrency(points int64) money.Money {
	minorPerMajor := money.MinorPerMajor(p.Currency)
	minor := roundDiv(points*minorPerMajor, p.Rate)
	return money.New(minor, p.Currency)
}

// ToPoints converts a currency amount to points, rounding half up.
// ToCurrency and ToPoints are mutual inverses up to rounding; exact for
// points that are a multiple of the rate.
func (p ConversionPolicy) ToPoints(amount money.Money) int64 {
	minorPerMajor := money.MinorPerMajor(p.Currency)
	return roundDiv(amount.AmountMinor*p.Rate, minorPerMajor)
}

// roundDiv divides with half-up rounding for non-negative operands.
func roundDiv(numerator, denominator int64) int64 {
	if denominator == 0 {
		return 0
	}
	if numerator < 0 {
		return -roundDiv(-numerator, denominator)
	}
	return (numerator + denominator/2) / denominator
}
