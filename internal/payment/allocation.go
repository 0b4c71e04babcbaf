package payment

import (
	"fmt"
	"time"

	"rentdesk/internal/common/money"
)

// LineStatus is a payment line's settlement status.
type LineStatus string

const (
	LinePending   LineStatus = "pending"
	LineCompleted LineStatus = "completed"
	LineFailed    LineStatus = "failed"
)

// Line is one split of the obligation onto a funding source. For
// loyalty_points lines PointsUsed and Amount are two views onto one
// quantity; the engine keeps them synchronized. For every other method
// PointsUsed is zero.
type Line struct {
	Method         Method      `json:"method"`
	Amount         money.Money `json:"amount"`
	PointsUsed     int64       `json:"points_used,omitempty"`
	Status         LineStatus  `json:"status"`
	TransactionRef string      `json:"transaction_ref,omitempty"`
	Detail         *LineDetail `json:"detail,omitempty"`
}

// Allocation is the assignment of a fixed total across payment lines.
// The allocated and remaining amounts are derived by summation, never
// stored, so recomputation is idempotent.
type Allocation struct {
	ID          string      `json:"id"`
	TenantID    string      `json:"tenant_id"`
	SessionID   string      `json:"session_id,omitempty"`
	CustomerID  string      `json:"customer_id,omitempty"`
	Total       money.Money `json:"total"`
	Lines       []Line      `json:"lines"`
	SubmittedAt *time.Time  `json:"submitted_at,omitempty"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

// Allocated is the sum of all line amounts, recomputed on every call.
func (a Allocation) Allocated() money.Money {
	total := money.Zero(a.Total.Currency)
	for _, l := range a.Lines {
		total = total.MustAdd(l.Amount)
	}
	return total
}

// Remaining is the total minus the allocated amount.
func (a Allocation) Remaining() money.Money {
	return a.Total.MustSub(a.Allocated())
}

// Submitted reports whether the allocation has been finalized.
func (a Allocation) Submitted() bool {
	return a.SubmittedAt != nil
}

// cloneLines copies the line slice so updates never alias a previous value.
func (a Allocation) cloneLines() []Line {
	lines := make([]Line, len(a.Lines))
	copy(lines, a.Lines)
	return lines
}

// Structural errors. The public operations make the corresponding states
// unreachable rather than detecting them after the fact.
var (
	ErrLastLine         = fmt.Errorf("an allocation must keep at least one payment line")
	ErrLineIndex        = fmt.Errorf("payment line index out of range")
	ErrAlreadySubmitted = fmt.Errorf("allocation already submitted")
)

// Config holds the allocation engine's tunable parameters.
type Config struct {
	ConversionRate      int64 `envconfig:"PAYMENT_CONVERSION_RATE" default:"100"`
	MinRedemptionPoints int64 `envconfig:"PAYMENT_MIN_REDEMPTION_POINTS" default:"1000"`
	EpsilonMinor        int64 `envconfig:"PAYMENT_EPSILON_MINOR" default:"1"`
}

// Engine applies allocation operations. Every operation takes an
// Allocation value and returns a new one; the input is never mutated,
// which makes a multi-field update (switching method and resetting the
// amount) observable only as a whole.
type Engine struct {
	policy  ConversionPolicy
	catalog Catalog
	epsilon int64
}

// NewEngine creates an engine for the given settlement currency.
func NewEngine(cfg Config, currency money.Currency) *Engine {
	policy := ConversionPolicy{
		Rate:          cfg.ConversionRate,
		MinRedemption: cfg.MinRedemptionPoints,
		Currency:      currency,
	}
	return &Engine{
		policy:  policy,
		catalog: Catalog{Policy: policy},
		epsilon: cfg.EpsilonMinor,
	}
}

// Policy returns the engine's conversion policy.
func (e *Engine) Policy() ConversionPolicy {
	return e.policy
}

// Catalog returns the engine's funding source catalog.
func (e *Engine) Catalog() Catalog {
	return e.catalog
}

// NewAllocation creates an allocation with one default line covering the
// full obligation on the default method.
func (e *Engine) NewAllocation(id, tenantID, sessionID, customerID string, total money.Money, defaultMethod Method) Allocation {
	now := time.Now().UTC()
	a := Allocation{
		ID:         id,
		TenantID:   tenantID,
		SessionID:  sessionID,
		CustomerID: customerID,
		Total:      total,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	a.Lines = []Line{{
		Method: defaultMethod,
		Amount: clampPositive(total),
		Status: LinePending,
	}}
	return a
}

// AddLine appends a line defaulting to the remaining amount (floored at
// zero when the allocation is already covered).
func (e *Engine) AddLine(a Allocation, method Method) (Allocation, error) {
	if a.Submitted() {
		return a, ErrAlreadySubmitted
	}

	line := Line{
		Method: method,
		Amount: clampPositive(a.Remaining()),
		Status: LinePending,
	}
	if method == MethodLoyaltyPoints {
		line.PointsUsed = e.policy.ToPoints(line.Amount)
	}

	a.Lines = append(a.cloneLines(), line)
	a.UpdatedAt = time.Now().UTC()
	return a, nil
}

// RemoveLine deletes a line. Removing the sole remaining line is refused;
// at least one line always exists.
func (e *Engine) RemoveLine(a Allocation, index int) (Allocation, error) {
	if a.Submitted() {
		return a, ErrAlreadySubmitted
	}
	if index < 0 || index >= len(a.Lines) {
		return a, fmt.Errorf("%w: %d", ErrLineIndex, index)
	}
	if len(a.Lines) == 1 {
		return a, ErrLastLine
	}

	lines := a.cloneLines()
	a.Lines = append(lines[:index], lines[index+1:]...)
	a.UpdatedAt = time.Now().UTC()
	return a, nil
}

// UpdateLineMethod switches a line's funding source. The amount and points
// are reset to zero in the same operation: prior conversion state is
// meaningless under the new method, and no intermediate state with the new
// method but the old amount is ever observable.
func (e *Engine) UpdateLineMethod(a Allocation, index int, method Method) (Allocation, error) {
	if a.Submitted() {
		return a, ErrAlreadySubmitted
	}
	if index < 0 || index >= len(a.Lines) {
		return a, fmt.Errorf("%w: %d", ErrLineIndex, index)
	}

	lines := a.cloneLines()
	lines[index] = Line{
		Method: method,
		Amount: money.Zero(a.Total.Currency),
		Status: LinePending,
	}
	a.Lines = lines
	a.UpdatedAt = time.Now().UTC()
	return a, nil
}

// UpdateLineAmount sets a line's amount. For loyalty_points lines the
// points are recomputed from the amount so the two views never drift.
func (e *Engine) UpdateLineAmount(a Allocation, index int, amount money.Money) (Allocation, error) {
	if a.Submitted() {
		return a, ErrAlreadySubmitted
	}
	if index < 0 || index >= len(a.Lines) {
		return a, fmt.Errorf("%w: %d", ErrLineIndex, index)
	}
	if amount.Currency != a.Total.Currency {
		return a, fmt.Errorf("currency mismatch: %s vs %s", amount.Currency, a.Total.Currency)
	}

	lines := a.cloneLines()
	lines[index].Amount = amount
	if lines[index].Method == MethodLoyaltyPoints {
		lines[index].PointsUsed = e.policy.ToPoints(amount)
	}
	a.Lines = lines
	a.UpdatedAt = time.Now().UTC()
	return a, nil
}

// UpdateLinePoints sets a loyalty line's points and recomputes the amount,
// the inverse view of UpdateLineAmount.
func (e *Engine) UpdateLinePoints(a Allocation, index int, points int64) (Allocation, error) {
	if a.Submitted() {
		return a, ErrAlreadySubmitted
	}
	if index < 0 || index >= len(a.Lines) {
		return a, fmt.Errorf("%w: %d", ErrLineIndex, index)
	}
	if a.Lines[index].Method != MethodLoyaltyPoints {
		return a, fmt.Errorf("line %d is not a loyalty_points line", index)
	}
	if points < 0 {
		return a, fmt.Errorf("points cannot be negative")
	}

	lines := a.cloneLines()
	lines[index].PointsUsed = points
	lines[index].Amount = e.policy.ToCurrency(points)
	a.Lines = lines
	a.UpdatedAt = time.Now().UTC()
	return a, nil
}

// Settled reports whether the remaining amount is within epsilon of zero.
func (e *Engine) Settled(a Allocation) bool {
	return a.Remaining().Abs().AmountMinor <= e.epsilon
}

// Validate produces the authoritative error list for the allocation
// against the profile. It delegates to ValidateAllocation.
func (e *Engine) Validate(a Allocation, profile *Profile) []string {
	return ValidateAllocation(a, profile, e.catalog)
}

// Submit finalizes the allocation: it refuses with no side effect unless
// the validator reports zero errors, every line carries a positive amount,
// and the remaining amount is within epsilon of zero. On success every
// line transitions from pending to completed.
func (e *Engine) Submit(a Allocation, profile *Profile) (Allocation, error) {
	if a.Submitted() {
		return a, ErrAlreadySubmitted
	}

	if errs := e.Validate(a, profile); len(errs) > 0 {
		return a, fmt.Errorf("allocation is not valid: %s", errs[0])
	}
	for i, l := range a.Lines {
		if !l.Amount.IsPositive() {
			return a, fmt.Errorf("payment line %d has no amount", i+1)
		}
	}
	if !e.Settled(a) {
		return a, fmt.Errorf("allocation does not cover the total: %s remaining", a.Remaining())
	}

	now := time.Now().UTC()
	lines := a.cloneLines()
	for i := range lines {
		lines[i].Status = LineCompleted
	}
	a.Lines = lines
	a.SubmittedAt = &now
	a.UpdatedAt = now
	return a, nil
}

func clampPositive(m money.Money) money.Money {
	if m.IsNegative() {
		return money.Zero(m.Currency)
	}
	return m
}
