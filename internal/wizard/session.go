package wizard

import (
	"fmt"
	"time"
)

// ErrUnknownStep is returned when an operation names a step outside the graph.
var ErrUnknownStep = fmt.Errorf("unknown step")

// Session is the wizard state machine: the active step pointer, one record
// per visited step, and the cross-step data bag. A session has exactly one
// writer (the active operator interaction); every operation is synchronous
// and runs to completion.
type Session struct {
	ID         string              `json:"id"`
	TenantID   string              `json:"tenant_id"`
	ActiveStep int                 `json:"active_step"`
	Records    map[int]*StepRecord `json:"records"`
	Bag        DataBag             `json:"bag"`
	CreatedAt  time.Time           `json:"created_at"`
	UpdatedAt  time.Time           `json:"updated_at"`

	graph *Graph
	rules RuleSet
}

// NewSession creates a session positioned on the graph's first step.
func NewSession(id, tenantID string, graph *Graph, rules RuleSet) *Session {
	now := time.Now().UTC()
	return &Session{
		ID:         id,
		TenantID:   tenantID,
		ActiveStep: graph.First(),
		Records:    make(map[int]*StepRecord),
		Bag:        make(DataBag),
		CreatedAt:  now,
		UpdatedAt:  now,
		graph:      graph,
		rules:      rules,
	}
}

// Rehydrate reattaches the graph and rules to a session loaded from a
// persisted draft.
func (s *Session) Rehydrate(graph *Graph, rules RuleSet) {
	s.graph = graph
	s.rules = rules
	if s.Records == nil {
		s.Records = make(map[int]*StepRecord)
	}
	if s.Bag == nil {
		s.Bag = make(DataBag)
	}
}

// Graph returns the step graph the session runs on.
func (s *Session) Graph() *Graph {
	return s.graph
}

// record returns the step's record, creating it on first touch.
func (s *Session) record(step int) *StepRecord {
	rec, ok := s.Records[step]
	if !ok {
		rec = &StepRecord{}
		s.Records[step] = rec
	}
	return rec
}

func (s *Session) touch() {
	s.UpdatedAt = time.Now().UTC()
}

// SetField writes one field of the cross-step data bag.
func (s *Session) SetField(field string, value any) {
	s.Bag[field] = value
	s.touch()
}

// SetFields writes several fields in one operation.
func (s *Session) SetFields(fields map[string]any) {
	for k, v := range fields {
		s.Bag[k] = v
	}
	s.touch()
}

// validateStep runs the step's rules against the current bag. Steps whose
// required-ness predicate is off produce no errors.
func (s *Session) validateStep(step int) map[string]string {
	if !s.graph.IsRequired(step, s.Bag) {
		return map[string]string{}
	}
	return s.rules.Validate(step, s.Bag)
}

// GoToStep moves the active pointer. Navigation never blocks: outstanding
// errors on the step being left are retained on its record for later
// display, not raised. Moving forward past a step that validates cleanly
// marks it completed. Only an unknown target step is an error.
func (s *Session) GoToStep(target int) error {
	if _, ok := s.graph.Step(target); !ok {
		return fmt.Errorf("%w: %d", ErrUnknownStep, target)
	}

	leaving := s.ActiveStep
	rec := s.record(leaving)

	errs := s.validateStep(leaving)
	if len(errs) > 0 {
		rec.LastErrors = errs
		rec.Completed = false
	} else {
		rec.LastErrors = nil
		if target > leaving && !rec.Skipped {
			rec.Completed = true
		}
	}

	s.ActiveStep = target
	s.touch()
	return nil
}

// MarkStepComplete is the explicit override used by Next controls.
// Completing a step clears its skip flag.
func (s *Session) MarkStepComplete(step int) error {
	if _, ok := s.graph.Step(step); !ok {
		return fmt.Errorf("%w: %d", ErrUnknownStep, step)
	}
	rec := s.record(step)
	rec.Completed = true
	rec.Skipped = false
	rec.LastErrors = nil
	s.touch()
	return nil
}

// MarkStepIncomplete is the explicit override used by Back controls.
func (s *Session) MarkStepIncomplete(step int) error {
	if _, ok := s.graph.Step(step); !ok {
		return fmt.Errorf("%w: %d", ErrUnknownStep, step)
	}
	s.record(step).Completed = false
	s.touch()
	return nil
}

// SkipStep marks a step skipped. Skipping clears the completed flag so the
// two can never hold together.
func (s *Session) SkipStep(step int) error {
	if _, ok := s.graph.Step(step); !ok {
		return fmt.Errorf("%w: %d", ErrUnknownStep, step)
	}
	rec := s.record(step)
	rec.Skipped = true
	rec.Completed = false
	s.touch()
	return nil
}

// UnskipStep clears a step's skip flag.
func (s *Session) UnskipStep(step int) error {
	if _, ok := s.graph.Step(step); !ok {
		return fmt.Errorf("%w: %d", ErrUnknownStep, step)
	}
	s.record(step).Skipped = false
	s.touch()
	return nil
}

// StepStatus derives one step's display status from its record and the
// active pointer. Recomputing is idempotent: unchanged state yields an
// unchanged status.
func (s *Session) StepStatus(step int) Status {
	rec := s.Records[step]
	if rec == nil {
		rec = &StepRecord{}
	}
	return ResolveStatus(*rec, step == s.ActiveStep)
}

// StepErrors returns the errors retained for a step from its last
// validation, for display when the operator returns to it.
func (s *Session) StepErrors(step int) map[string]string {
	rec := s.Records[step]
	if rec == nil {
		return nil
	}
	return rec.LastErrors
}

// Statuses derives the status of every step in the graph.
func (s *Session) Statuses() map[int]Status {
	out := make(map[int]Status, s.graph.Len())
	for _, st := range s.graph.Steps() {
		out[st.Number] = s.StepStatus(st.Number)
	}
	return out
}

// SummaryResult is the step validity summary consumed by the submission gate.
type SummaryResult struct {
	IsValid      bool  `json:"is_valid"`
	InvalidSteps []int `json:"invalid_steps,omitempty"`
}

// ValidateAllRequired is the final submission gate. A step is invalid when
// its resolved status is has-errors, incomplete, or not-visited. The check
// first re-runs each step's rules against the current bag so the result is
// a function of current state, not navigation history. Steps whose
// required-ness predicate is off are checked only if listed explicitly.
func (s *Session) ValidateAllRequired(requiredSteps []int) SummaryResult {
	result := SummaryResult{IsValid: true}
	for _, n := range requiredSteps {
		if _, ok := s.graph.Step(n); !ok {
			continue
		}

		rec := s.record(n)
		if !rec.Skipped {
			if errs := s.validateStep(n); len(errs) > 0 {
				rec.LastErrors = errs
				rec.Completed = false
			}
		}

		if s.StepStatus(n).IsInvalid() {
			result.IsValid = false
			result.InvalidSteps = append(result.InvalidSteps, n)
		}
	}
	return result
}
