package wizard

// Status is a step's derived display status. It is never stored
// authoritatively; it is recomputed from the step record and the active
// pointer on every read.
type Status string

const (
	StatusNotVisited Status = "not_visited"
	StatusIncomplete Status = "incomplete"
	StatusHasErrors  Status = "has_errors"
	StatusComplete   Status = "complete"
	StatusSkipped    Status = "skipped"
)

// StepRecord tracks one step's completion history inside a session.
// Skipped and Completed are mutually exclusive; the session operations
// maintain that invariant.
type StepRecord struct {
	Completed  bool              `json:"completed"`
	Skipped    bool              `json:"skipped"`
	LastErrors map[string]string `json:"last_errors,omitempty"`
}

// ResolveStatus derives a step's status. The rules apply in priority order:
// skipped wins over completed, completed over retained errors, retained
// errors over the active pointer. A step that is the active step is never
// not-visited.
func ResolveStatus(record StepRecord, isActive bool) Status {
	switch {
	case record.Skipped:
		return StatusSkipped
	case record.Completed:
		return StatusComplete
	case len(record.LastErrors) > 0:
		return StatusHasErrors
	case isActive:
		return StatusIncomplete
	default:
		return StatusNotVisited
	}
}

// IsInvalid reports whether a status blocks final submission.
func (s Status) IsInvalid() bool {
	return s == StatusHasErrors || s == StatusIncomplete || s == StatusNotVisited
}
