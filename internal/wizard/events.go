package wizard

// Event types published by the reservation wizard.
const (
	EventDraftCreated  = "reservation.draft.created"
	EventStepCompleted = "reservation.step.completed"
	EventStepSkipped   = "reservation.step.skipped"
	EventDraftSubmitted = "reservation.submitted"
)

// AggregateType identifies the wizard aggregate in event envelopes.
const AggregateType = "reservation_draft"

// DraftCreatedData is the data for reservation.draft.created events.
type DraftCreatedData struct {
	SessionID  string `json:"session_id"`
	ActiveStep int    `json:"active_step"`
	StepCount  int    `json:"step_count"`
}

// StepCompletedData is the data for reservation.step.completed events.
type StepCompletedData struct {
	SessionID string `json:"session_id"`
	Step      int    `json:"step"`
	Title     string `json:"title"`
}

// StepSkippedData is the data for reservation.step.skipped events.
type StepSkippedData struct {
	SessionID string `json:"session_id"`
	Step      int    `json:"step"`
}

// DraftSubmittedData is the data for reservation.submitted events.
type DraftSubmittedData struct {
	SessionID      string `json:"session_id"`
	CustomerID     string `json:"customer_id,omitempty"`
	CompletedSteps []int  `json:"completed_steps"`
}
