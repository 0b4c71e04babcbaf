package pricing

import (
	"testing"

	"rentdesk/internal/common/money"
)

func TestCalculator_Quote(t *testing.T) {
	calc := NewCalculator(Config{DownPaymentBps: 3000, TaxBps: 500})

	tests := []struct {
		name          string
		subtotalMinor int64
		wantTax       int64
		wantTotal     int64
		wantDown      int64
	}{
		{
			name:          "round figures",
			subtotalMinor: 100000, // 1000.00
			wantTax:       5000,   // 50.00
			wantTotal:     105000,
			wantDown:      31500, // 30% of 1050.00
		},
		{
			name:          "odd subtotal rounds half up",
			subtotalMinor: 33333,
			wantTax:       1667,
			wantTotal:     35000,
			wantDown:      10500,
		},
		{
			name:          "small amount",
			subtotalMinor: 100,
			wantTax:       5,
			wantTotal:     105,
			wantDown:      32,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := calc.Quote(money.New(tt.subtotalMinor, money.AED))
			if q.Tax.AmountMinor != tt.wantTax {
				t.Errorf("Tax = %d, want %d", q.Tax.AmountMinor, tt.wantTax)
			}
			if q.Total.AmountMinor != tt.wantTotal {
				t.Errorf("Total = %d, want %d", q.Total.AmountMinor, tt.wantTotal)
			}
			if q.DownPayment.AmountMinor != tt.wantDown {
				t.Errorf("DownPayment = %d, want %d", q.DownPayment.AmountMinor, tt.wantDown)
			}
			if got := q.DownPayment.MustAdd(q.Balance); !got.Equal(q.Total) {
				t.Errorf("down + balance = %s, want %s", got, q.Total)
			}
		})
	}
}

func TestCalculator_ZeroRates(t *testing.T) {
	calc := NewCalculator(Config{})

	q := calc.Quote(money.New(50000, money.AED))
	if !q.Tax.IsZero() {
		t.Errorf("Tax = %s, want zero", q.Tax)
	}
	if !q.Total.Equal(q.Subtotal) {
		t.Errorf("Total = %s, want subtotal", q.Total)
	}
	if !q.DownPayment.IsZero() {
		t.Errorf("DownPayment = %s, want zero", q.DownPayment)
	}
}
