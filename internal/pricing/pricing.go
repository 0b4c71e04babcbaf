// Package pricing computes reservation quotes: subtotal, tax, grand total,
// and the down payment due at confirmation.
package pricing

import "rentdesk/internal/common/money"

// Config holds the tenant-level pricing parameters in basis points.
type Config struct {
	DownPaymentBps int64 `envconfig:"PRICING_DOWN_PAYMENT_BPS" default:"3000"`
	TaxBps         int64 `envconfig:"PRICING_TAX_BPS" default:"500"`
}

// Quote is a priced reservation. DownPayment is the portion of the grand
// total the allocation engine is asked to cover at confirmation; the
// balance is collected at handover.
type Quote struct {
	Subtotal    money.Money `json:"subtotal"`
	Tax         money.Money `json:"tax"`
	Total       money.Money `json:"total"`
	DownPayment money.Money `json:"down_payment"`
	Balance     money.Money `json:"balance"`
}

// Calculator produces quotes from a subtotal.
type Calculator struct {
	cfg Config
}

// NewCalculator creates a calculator.
func NewCalculator(cfg Config) *Calculator {
	return &Calculator{cfg: cfg}
}

// Quote prices a subtotal. Tax and down payment are percentages of the
// subtotal and grand total respectively, rounded half up in minor units.
func (c *Calculator) Quote(subtotal money.Money) Quote {
	tax := subtotal.Percentage(c.cfg.TaxBps)
	total := subtotal.MustAdd(tax)
	down := total.Percentage(c.cfg.DownPaymentBps)
	return Quote{
		Subtotal:    subtotal,
		Tax:         tax,
		Total:       total,
		DownPayment: down,
		Balance:     total.MustSub(down),
	}
}
