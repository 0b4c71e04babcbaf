package payment

import "rentdesk/internal/common/money"

// Catalog derives each funding source's capacity: how much of the remaining
// obligation the method may cover for a given customer profile.
type Catalog struct {
	Policy ConversionPolicy
}

// MaxAmount returns the ceiling for a line's amount. The headroom term is
// remaining + currentLine: capacity is computed as if the line being edited
// were first reset to zero, so a line can reclaim the headroom its own
// contribution is consuming. Profile-bound methods with no profile have
// zero capacity.
func (c Catalog) MaxAmount(method Method, profile *Profile, remaining, currentLine money.Money) money.Money {
	headroom := remaining.MustAdd(currentLine)
	if headroom.IsNegative() {
		headroom = money.Zero(headroom.Currency)
	}

	if !method.ProfileBound() {
		return headroom
	}
	if profile == nil {
		return money.Zero(headroom.Currency)
	}

	switch method {
	case MethodLoyaltyPoints:
		return money.Min(c.Policy.ToCurrency(profile.LoyaltyPoints), headroom)
	case MethodCustomerWallet:
		return money.Min(profile.WalletBalance, headroom)
	case MethodCredit:
		return money.Min(profile.CreditAvailable, headroom)
	default:
		return headroom
	}
}
