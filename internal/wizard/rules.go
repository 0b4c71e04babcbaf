package wizard

import "fmt"

// FieldRule validates one field of a step's data snapshot. Check returns
// true when the field is valid. Rules are pure; they never mutate the bag.
type FieldRule struct {
	Field   string
	Message string
	Check   func(value any, bag DataBag) bool
}

// RuleSet maps step numbers to their field rules. Externally supplied
// configuration; the session never hard-codes rules.
type RuleSet map[int][]FieldRule

// Validate runs a step's rules against the data bag and returns a
// field-to-message map. An empty map means the step passes. Validation
// output is data, never an error.
func (rs RuleSet) Validate(step int, bag DataBag) map[string]string {
	errs := make(map[string]string)
	for _, rule := range rs[step] {
		if !rule.Check(bag[rule.Field], bag) {
			errs[rule.Field] = rule.Message
		}
	}
	return errs
}

// Required builds a rule that fails when the field is empty.
func Required(field, label string) FieldRule {
	return FieldRule{
		Field:   field,
		Message: fmt.Sprintf("%s is required", label),
		Check: func(value any, bag DataBag) bool {
			return bag.IsSet(field)
		},
	}
}

// RequiredWhen builds a rule that fails when the field is empty while the
// controlling flag is set. This keeps the graph static while making
// required-ness data-dependent.
func RequiredWhen(field, label, flagField string) FieldRule {
	return FieldRule{
		Field:   field,
		Message: fmt.Sprintf("%s is required", label),
		Check: func(value any, bag DataBag) bool {
			if !bag.Bool(flagField) {
				return true
			}
			return bag.IsSet(field)
		},
	}
}

// Flag builds a rule that fails unless a boolean field is true.
func Flag(field, message string) FieldRule {
	return FieldRule{
		Field:   field,
		Message: message,
		Check: func(value any, bag DataBag) bool {
			return bag.Bool(field)
		},
	}
}

// DefaultLeaseRules returns the field rules for the standard lease
// agreement flow. The payment step carries no field rules; its completion
// is driven by the allocation engine.
func DefaultLeaseRules() RuleSet {
	return RuleSet{
		1: {
			Required(FieldCustomerID, "Customer"),
			Required(FieldCustomerName, "Customer name"),
			Required(FieldCustomerPhone, "Contact number"),
		},
		2: {
			Required(FieldPickupDate, "Pickup date"),
			Required(FieldReturnDate, "Return date"),
		},
		3: {
			RequiredWhen(FieldFlightNumber, "Flight number", FieldAirportPickup),
			RequiredWhen(FieldAirportTerminal, "Arrival terminal", FieldAirportPickup),
		},
		4: {
			RequiredWhen(FieldInsurancePlan, "Insurance plan", FieldInsuranceOptIn),
		},
		5: {
			Required(FieldLicenseNumber, "Driving licence number"),
		},
		6: {
			Flag(FieldReviewConfirmed, "Agreement summary must be confirmed"),
		},
	}
}
