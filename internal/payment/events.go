package payment

import "rentdesk/internal/common/money"

// Event types published by the allocation engine.
const (
	EventAllocationCreated   = "payment.allocation.created"
	EventAllocationSubmitted = "payment.allocation.submitted"
	EventLineSettled         = "payment.line.settled"
)

// AggregateType identifies the allocation aggregate in event envelopes.
const AggregateType = "payment_allocation"

// AllocationCreatedData is the data for payment.allocation.created events.
type AllocationCreatedData struct {
	AllocationID string      `json:"allocation_id"`
	SessionID    string      `json:"session_id,omitempty"`
	Total        money.Money `json:"total"`
}

// AllocationSubmittedData is the data for payment.allocation.submitted events.
type AllocationSubmittedData struct {
	AllocationID string      `json:"allocation_id"`
	SessionID    string      `json:"session_id,omitempty"`
	Total        money.Money `json:"total"`
	LineCount    int         `json:"line_count"`
}

// LineSettledData is the data for payment.line.settled events, one per
// line on submission.
type LineSettledData struct {
	AllocationID   string      `json:"allocation_id"`
	Method         Method      `json:"method"`
	Amount         money.Money `json:"amount"`
	PointsUsed     int64       `json:"points_used,omitempty"`
	TransactionRef string      `json:"transaction_ref"`
}
