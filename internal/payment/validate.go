package payment

import "fmt"

// ValidateAllocation produces the ordered, human-readable error list for an
// allocation. The list is deterministic: lines are checked in order, each
// contributing at most one error. Zero-amount lines are not flagged here
// (they only block submission), and the remaining-within-epsilon check is
// likewise a submission concern, so the list reflects only per-line
// problems an operator can fix in place.
func ValidateAllocation(a Allocation, profile *Profile, catalog Catalog) []string {
	var errs []string
	remaining := a.Remaining()

	for i, line := range a.Lines {
		n := i + 1

		if line.Amount.IsNegative() {
			errs = append(errs, fmt.Sprintf("payment line %d: amount cannot be negative", n))
			continue
		}

		max := catalog.MaxAmount(line.Method, profile, remaining, line.Amount)
		if line.Amount.GreaterThan(max) {
			errs = append(errs, fmt.Sprintf(
				"payment line %d: amount exceeds the %s limit of %s", n, line.Method, max))
			continue
		}

		if line.Method == MethodLoyaltyPoints && line.PointsUsed > 0 && line.PointsUsed < catalog.Policy.MinRedemption {
			errs = append(errs, fmt.Sprintf(
				"payment line %d: at least %d points must be redeemed", n, catalog.Policy.MinRedemption))
		}
	}

	return errs
}
