package payment

import "rentdesk/internal/common/money"

// Profile is the customer payment profile supplied by an external lookup.
// A nil *Profile (customer not yet selected) degrades capacity for the
// profile-bound methods to zero; it never crashes the engine.
type Profile struct {
	CustomerID      string      `json:"customer_id"`
	WalletBalance   money.Money `json:"wallet_balance"`
	LoyaltyPoints   int64       `json:"loyalty_points"`
	CreditLimit     money.Money `json:"credit_limit"`
	CreditAvailable money.Money `json:"credit_available"`
}
