package wizard

import "testing"

func TestRuleSet_Validate(t *testing.T) {
	rules := DefaultLeaseRules()

	tests := []struct {
		name       string
		step       int
		bag        DataBag
		wantFields []string
	}{
		{
			name:       "empty customer details fail every field",
			step:       1,
			bag:        DataBag{},
			wantFields: []string{FieldCustomerID, FieldCustomerName, FieldCustomerPhone},
		},
		{
			name: "partial customer details fail the missing fields",
			step: 1,
			bag:  DataBag{FieldCustomerID: "C100"},
			wantFields: []string{FieldCustomerName, FieldCustomerPhone},
		},
		{
			name: "complete customer details pass",
			step: 1,
			bag: DataBag{
				FieldCustomerID:    "C100",
				FieldCustomerName:  "Amira Hassan",
				FieldCustomerPhone: "+971501234567",
			},
		},
		{
			name: "flight details not required without airport pickup",
			step: 3,
			bag:  DataBag{},
		},
		{
			name:       "flight details required with airport pickup",
			step:       3,
			bag:        DataBag{FieldAirportPickup: true},
			wantFields: []string{FieldFlightNumber, FieldAirportTerminal},
		},
		{
			name: "airport pickup satisfied with flight details",
			step: 3,
			bag: DataBag{
				FieldAirportPickup:   true,
				FieldFlightNumber:    "EK202",
				FieldAirportTerminal: "T3",
			},
		},
		{
			name:       "insurance plan required when opted in",
			step:       4,
			bag:        DataBag{FieldInsuranceOptIn: true},
			wantFields: []string{FieldInsurancePlan},
		},
		{
			name:       "review must be confirmed",
			step:       6,
			bag:        DataBag{FieldReviewConfirmed: false},
			wantFields: []string{FieldReviewConfirmed},
		},
		{
			name: "payment step has no field rules",
			step: 7,
			bag:  DataBag{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := rules.Validate(tt.step, tt.bag)
			if len(errs) != len(tt.wantFields) {
				t.Fatalf("Validate() = %v, want %d errors", errs, len(tt.wantFields))
			}
			for _, f := range tt.wantFields {
				if _, ok := errs[f]; !ok {
					t.Errorf("Validate() missing error for %s: %v", f, errs)
				}
			}
		})
	}
}

func TestDataBag_IsSet(t *testing.T) {
	bag := DataBag{
		"name":  "x",
		"empty": "",
		"flag":  false,
		"nil":   nil,
	}

	if !bag.IsSet("name") {
		t.Error("non-empty string should be set")
	}
	if bag.IsSet("empty") {
		t.Error("empty string should not be set")
	}
	if !bag.IsSet("flag") {
		t.Error("a boolean value should be set regardless of truth")
	}
	if bag.IsSet("nil") {
		t.Error("nil should not be set")
	}
	if bag.IsSet("absent") {
		t.Error("absent should not be set")
	}
}

func TestNewGraph_Validation(t *testing.T) {
	if _, err := NewGraph(nil, nil); err == nil {
		t.Error("empty graph should fail")
	}

	steps := []Step{{Number: 1, Title: "A"}, {Number: 1, Title: "B"}}
	if _, err := NewGraph(steps, nil); err == nil {
		t.Error("duplicate step numbers should fail")
	}

	steps = []Step{{Number: 0, Title: "A"}}
	if _, err := NewGraph(steps, nil); err == nil {
		t.Error("zero step number should fail")
	}

	steps = []Step{{Number: 1, Title: "A"}}
	groups := []Group{{ID: "g", Steps: []int{9}}}
	if _, err := NewGraph(steps, groups); err == nil {
		t.Error("group referencing an unknown step should fail")
	}
}
