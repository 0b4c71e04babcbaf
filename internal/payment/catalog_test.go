package payment

import (
	"testing"

	"rentdesk/internal/common/money"
)

func aed(minor int64) money.Money {
	return money.New(minor, money.AED)
}

func testProfile() *Profile {
	return &Profile{
		CustomerID:      "C100",
		WalletBalance:   aed(30000),  // AED 300.00
		LoyaltyPoints:   50000,       // worth AED 500.00 at 100 pts / AED
		CreditLimit:     aed(100000), // AED 1000.00
		CreditAvailable: aed(20000),  // AED 200.00
	}
}

func TestCatalog_MaxAmount(t *testing.T) {
	catalog := Catalog{Policy: testPolicy()}
	profile := testProfile()

	tests := []struct {
		name        string
		method      Method
		profile     *Profile
		remaining   money.Money
		currentLine money.Money
		want        money.Money
	}{
		{
			name:      "unbounded method capped by headroom",
			method:    MethodCreditCard,
			profile:   profile,
			remaining: aed(40000),
			want:      aed(40000),
		},
		{
			name:        "current line reclaims its own headroom",
			method:      MethodCreditCard,
			profile:     profile,
			remaining:   aed(0),
			currentLine: aed(25000),
			want:        aed(25000),
		},
		{
			name:      "wallet capped by balance",
			method:    MethodCustomerWallet,
			profile:   profile,
			remaining: aed(100000),
			want:      aed(30000),
		},
		{
			name:      "wallet capped by headroom when balance exceeds it",
			method:    MethodCustomerWallet,
			profile:   profile,
			remaining: aed(10000),
			want:      aed(10000),
		},
		{
			name:      "loyalty capped by converted point balance",
			method:    MethodLoyaltyPoints,
			profile:   profile,
			remaining: aed(100000),
			want:      aed(50000),
		},
		{
			name:      "credit capped by available credit, not the limit",
			method:    MethodCredit,
			profile:   profile,
			remaining: aed(100000),
			want:      aed(20000),
		},
		{
			name:      "nil profile zeroes profile-bound capacity",
			method:    MethodCustomerWallet,
			remaining: aed(100000),
			want:      aed(0),
		},
		{
			name:      "nil profile leaves unbounded methods alone",
			method:    MethodCash,
			remaining: aed(100000),
			want:      aed(100000),
		},
		{
			name:      "negative headroom clamps to zero",
			method:    MethodCreditCard,
			profile:   profile,
			remaining: aed(-5000),
			want:      aed(0),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.currentLine.Currency == "" {
				tt.currentLine = aed(0)
			}
			got := catalog.MaxAmount(tt.method, tt.profile, tt.remaining, tt.currentLine)
			if !got.Equal(tt.want) {
				t.Errorf("MaxAmount(%s) = %s, want %s", tt.method, got, tt.want)
			}
		})
	}
}

func TestMethod_ProfileBound(t *testing.T) {
	bound := []Method{MethodLoyaltyPoints, MethodCustomerWallet, MethodCredit}
	unbound := []Method{MethodCreditCard, MethodDebitCard, MethodPaymentLink, MethodCash, MethodBankTransfer}

	for _, m := range bound {
		if !m.ProfileBound() {
			t.Errorf("%s should be profile bound", m)
		}
	}
	for _, m := range unbound {
		if m.ProfileBound() {
			t.Errorf("%s should not be profile bound", m)
		}
	}
}

func TestParseMethod(t *testing.T) {
	if _, err := ParseMethod("customer_wallet"); err != nil {
		t.Errorf("ParseMethod(customer_wallet) = %v", err)
	}
	if _, err := ParseMethod("bitcoin"); err == nil {
		t.Error("ParseMethod(bitcoin) should fail")
	}
}
