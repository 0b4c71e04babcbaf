// Package payment implements the multi-source payment allocation engine:
// splitting one obligation across funding sources with per-source capacity
// limits and loyalty-point conversion.
package payment

import (
	"fmt"
	"time"

	"rentdesk/internal/common/money"
)

// Method is a closed enumeration of funding sources.
type Method string

const (
	MethodLoyaltyPoints  Method = "loyalty_points"
	MethodCustomerWallet Method = "customer_wallet"
	MethodCredit         Method = "credit"
	MethodCreditCard     Method = "credit_card"
	MethodDebitCard      Method = "debit_card"
	MethodPaymentLink    Method = "payment_link"
	MethodCash           Method = "cash"
	MethodBankTransfer   Method = "bank_transfer"
)

var allMethods = map[Method]bool{
	MethodLoyaltyPoints:  true,
	MethodCustomerWallet: true,
	MethodCredit:         true,
	MethodCreditCard:     true,
	MethodDebitCard:      true,
	MethodPaymentLink:    true,
	MethodCash:           true,
	MethodBankTransfer:   true,
}

// ParseMethod validates a method string.
func ParseMethod(s string) (Method, error) {
	m := Method(s)
	if !allMethods[m] {
		return "", fmt.Errorf("unknown payment method %q", s)
	}
	return m, nil
}

// ProfileBound reports whether the method's capacity derives from the
// customer payment profile. Other methods are bounded only by the amount
// still unallocated.
func (m Method) ProfileBound() bool {
	switch m {
	case MethodLoyaltyPoints, MethodCustomerWallet, MethodCredit:
		return true
	default:
		return false
	}
}

// LineDetail carries method-specific settlement facts. Exactly one member
// is set, matching the line's method; a card payment can never carry
// loyalty fields.
type LineDetail struct {
	Card   *CardDetail   `json:"card,omitempty"`
	Wallet *WalletDetail `json:"wallet,omitempty"`
	Link   *LinkDetail   `json:"link,omitempty"`
}

// CardDetail describes a card settlement.
type CardDetail struct {
	Last4   string `json:"last4"`
	Network string `json:"network,omitempty"`
}

// WalletDetail records wallet balances around a wallet debit.
type WalletDetail struct {
	BalanceBefore money.Money `json:"balance_before"`
	BalanceAfter  money.Money `json:"balance_after"`
}

// LinkDetail describes a deferred payment link.
type LinkDetail struct {
	Token     string     `json:"token"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}
