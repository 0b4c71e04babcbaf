// Package wizard implements the step progression state machine for
// reservation and lease agreement data entry.
package wizard

import (
	"fmt"
	"sort"
)

// DataBag is the cross-step payload shared by every step's form.
type DataBag map[string]any

// Bool reads a boolean flag from the bag; absent or non-bool values read as false.
func (b DataBag) Bool(field string) bool {
	v, ok := b[field].(bool)
	return ok && v
}

// String reads a string field from the bag; absent or non-string values read as "".
func (b DataBag) String(field string) string {
	v, _ := b[field].(string)
	return v
}

// IsSet reports whether a field holds a non-empty value.
func (b DataBag) IsSet(field string) bool {
	v, ok := b[field]
	if !ok || v == nil {
		return false
	}
	if s, isStr := v.(string); isStr {
		return s != ""
	}
	return true
}

// Step is one entry in the wizard's ordered sequence. Steps are immutable
// after graph construction; number is the stable 1-based ordering key.
type Step struct {
	Number      int    `json:"number"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	GroupID     string `json:"group_id,omitempty"`

	// RequiredIf decides whether the step's rules apply for the current data
	// bag. A nil predicate means the step is always required.
	RequiredIf func(bag DataBag) bool `json:"-"`
}

// Group is a progressive-disclosure grouping of steps. It has no effect
// on validity.
type Group struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Steps       []int  `json:"steps"`
}

// Graph is the static, ordered set of wizard steps. Conditional steps are
// members unconditionally; their required-ness is data-dependent.
type Graph struct {
	steps    []Step
	byNumber map[int]Step
	groups   []Group
}

// NewGraph builds a graph from step and group definitions.
func NewGraph(steps []Step, groups []Group) (*Graph, error) {
	if len(steps) == 0 {
		return nil, fmt.Errorf("graph requires at least one step")
	}

	byNumber := make(map[int]Step, len(steps))
	for _, s := range steps {
		if s.Number < 1 {
			return nil, fmt.Errorf("step %q: number must be 1-based, got %d", s.Title, s.Number)
		}
		if _, dup := byNumber[s.Number]; dup {
			return nil, fmt.Errorf("duplicate step number %d", s.Number)
		}
		byNumber[s.Number] = s
	}

	ordered := make([]Step, len(steps))
	copy(ordered, steps)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].Number < ordered[j].Number })

	for _, g := range groups {
		for _, n := range g.Steps {
			if _, ok := byNumber[n]; !ok {
				return nil, fmt.Errorf("group %q references unknown step %d", g.ID, n)
			}
		}
	}

	return &Graph{steps: ordered, byNumber: byNumber, groups: groups}, nil
}

// Steps returns the steps in order.
func (g *Graph) Steps() []Step {
	return g.steps
}

// Step looks up a step by number.
func (g *Graph) Step(number int) (Step, bool) {
	s, ok := g.byNumber[number]
	return s, ok
}

// First returns the lowest step number.
func (g *Graph) First() int {
	return g.steps[0].Number
}

// Len returns the number of steps.
func (g *Graph) Len() int {
	return len(g.steps)
}

// Groups returns the display groups.
func (g *Graph) Groups() []Group {
	return g.groups
}

// Numbers returns every step number in order.
func (g *Graph) Numbers() []int {
	nums := make([]int, len(g.steps))
	for i, s := range g.steps {
		nums[i] = s.Number
	}
	return nums
}

// IsRequired reports whether a step's rules apply given the current data bag.
// Both the status resolver and the submission gate consult this.
func (g *Graph) IsRequired(number int, bag DataBag) bool {
	s, ok := g.byNumber[number]
	if !ok {
		return false
	}
	if s.RequiredIf == nil {
		return true
	}
	return s.RequiredIf(bag)
}

// Titles maps step numbers to titles, preserving order.
func (g *Graph) Titles(numbers []int) []string {
	titles := make([]string, 0, len(numbers))
	for _, n := range numbers {
		if s, ok := g.byNumber[n]; ok {
			titles = append(titles, s.Title)
		}
	}
	return titles
}

// Well-known data bag fields used by the default lease agreement flow.
const (
	FieldCustomerID      = "customer_id"
	FieldCustomerName    = "customer_name"
	FieldCustomerPhone   = "customer_phone"
	FieldPickupDate      = "pickup_date"
	FieldReturnDate      = "return_date"
	FieldAirportPickup   = "airport_pickup"
	FieldFlightNumber    = "flight_number"
	FieldAirportTerminal = "airport_terminal"
	FieldInsuranceOptIn  = "insurance_opt_in"
	FieldInsurancePlan   = "insurance_plan"
	FieldLicenseNumber   = "license_number"
	FieldReviewConfirmed = "review_confirmed"
)

// DefaultLeaseGraph returns the standard seven-step lease agreement flow.
// Airport transfer and insurance detail steps are required only when their
// controlling flag is set in the data bag.
func DefaultLeaseGraph() *Graph {
	steps := []Step{
		{Number: 1, Title: "Customer Details", GroupID: "details"},
		{Number: 2, Title: "Rental Period", GroupID: "details"},
		{Number: 3, Title: "Airport Transfer", GroupID: "extras",
			RequiredIf: func(bag DataBag) bool { return bag.Bool(FieldAirportPickup) }},
		{Number: 4, Title: "Insurance", GroupID: "extras",
			RequiredIf: func(bag DataBag) bool { return bag.Bool(FieldInsuranceOptIn) }},
		{Number: 5, Title: "Documents", GroupID: "extras"},
		{Number: 6, Title: "Review", GroupID: "checkout"},
		{Number: 7, Title: "Payment", GroupID: "checkout"},
	}
	groups := []Group{
		{ID: "details", Title: "Agreement Details", Steps: []int{1, 2}},
		{ID: "extras", Title: "Extras & Documents", Steps: []int{3, 4, 5}},
		{ID: "checkout", Title: "Checkout", Steps: []int{6, 7}},
	}

	g, err := NewGraph(steps, groups)
	if err != nil {
		panic(err) // static definition, cannot fail
	}
	return g
}
