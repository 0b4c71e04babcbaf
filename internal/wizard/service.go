package wizard

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/oklog/ulid/v2"

	"rentdesk/internal/common/events"
)

// Service orchestrates wizard sessions: draft lifecycle, navigation, and
// the final submission gate. The state machine itself lives on Session;
// the service adds persistence and event publication around it.
type Service struct {
	graph     *Graph
	rules     RuleSet
	store     Store
	publisher events.Publisher
	logger    *slog.Logger
}

// NewService creates a wizard service.
func NewService(graph *Graph, rules RuleSet, store Store, publisher events.Publisher, logger *slog.Logger) *Service {
	return &Service{
		graph:     graph,
		rules:     rules,
		store:     store,
		publisher: publisher,
		logger:    logger,
	}
}

// Graph returns the step graph the service runs on.
func (s *Service) Graph() *Graph {
	return s.graph
}

// CreateSession starts a new wizard session and persists its draft.
func (s *Service) CreateSession(ctx context.Context, tenantID string) (*Session, error) {
	sessionID := ulid.Make().String()
	session := NewSession(sessionID, tenantID, s.graph, s.rules)

	if err := s.store.CreateDraft(ctx, session); err != nil {
		return nil, fmt.Errorf("create draft: %w", err)
	}

	s.publish(ctx, EventDraftCreated, session, DraftCreatedData{
		SessionID:  sessionID,
		ActiveStep: session.ActiveStep,
		StepCount:  s.graph.Len(),
	})

	s.logger.Info("wizard session created",
		"session_id", sessionID,
		"tenant_id", tenantID,
	)

	return session, nil
}

// GetSession loads and rehydrates a session draft.
func (s *Service) GetSession(ctx context.Context, tenantID, sessionID string) (*Session, error) {
	session, err := s.store.GetDraft(ctx, tenantID, sessionID)
	if err != nil {
		return nil, err
	}
	session.Rehydrate(s.graph, s.rules)
	return session, nil
}

// Navigate moves a session to the target step and persists the result.
// Navigation never blocks on validation errors; they are retained on the
// step being left. A step completed in passing is announced as an event.
func (s *Service) Navigate(ctx context.Context, tenantID, sessionID string, target int) (*Session, error) {
	session, err := s.GetSession(ctx, tenantID, sessionID)
	if err != nil {
		return nil, err
	}

	leaving := session.ActiveStep
	wasComplete := session.StepStatus(leaving) == StatusComplete

	if err := session.GoToStep(target); err != nil {
		return nil, err
	}

	if err := s.store.UpdateDraft(ctx, session); err != nil {
		return nil, fmt.Errorf("save draft: %w", err)
	}

	if !wasComplete && session.StepStatus(leaving) == StatusComplete {
		title := ""
		if st, ok := s.graph.Step(leaving); ok {
			title = st.Title
		}
		s.publish(ctx, EventStepCompleted, session, StepCompletedData{
			SessionID: sessionID,
			Step:      leaving,
			Title:     title,
		})
	}

	return session, nil
}

// UpdateFields writes data bag fields and persists the draft.
func (s *Service) UpdateFields(ctx context.Context, tenantID, sessionID string, fields map[string]any) (*Session, error) {
	session, err := s.GetSession(ctx, tenantID, sessionID)
	if err != nil {
		return nil, err
	}

	session.SetFields(fields)

	if err := s.store.UpdateDraft(ctx, session); err != nil {
		return nil, fmt.Errorf("save draft: %w", err)
	}
	return session, nil
}

// StepAction identifies an explicit step state override.
type StepAction string

const (
	ActionComplete   StepAction = "complete"
	ActionIncomplete StepAction = "incomplete"
	ActionSkip       StepAction = "skip"
	ActionUnskip     StepAction = "unskip"
)

// ApplyStepAction applies an explicit override (Next/Back/skip controls)
// to a step and persists the draft.
func (s *Service) ApplyStepAction(ctx context.Context, tenantID, sessionID string, step int, action StepAction) (*Session, error) {
	session, err := s.GetSession(ctx, tenantID, sessionID)
	if err != nil {
		return nil, err
	}

	switch action {
	case ActionComplete:
		err = session.MarkStepComplete(step)
	case ActionIncomplete:
		err = session.MarkStepIncomplete(step)
	case ActionSkip:
		err = session.SkipStep(step)
	case ActionUnskip:
		err = session.UnskipStep(step)
	default:
		return nil, fmt.Errorf("unknown step action %q", action)
	}
	if err != nil {
		return nil, err
	}

	if err := s.store.UpdateDraft(ctx, session); err != nil {
		return nil, fmt.Errorf("save draft: %w", err)
	}

	if action == ActionSkip {
		s.publish(ctx, EventStepSkipped, session, StepSkippedData{
			SessionID: sessionID,
			Step:      step,
		})
	}

	return session, nil
}

// SubmissionError is the blocking failure raised by the final submission
// gate. It names every invalid step by title so the operator can act
// without re-deriving the list.
type SubmissionError struct {
	InvalidSteps []int
	Titles       []string
}

func (e *SubmissionError) Error() string {
	return fmt.Sprintf("reservation cannot be submitted, incomplete steps: %s",
		strings.Join(e.Titles, ", "))
}

// Submit runs the final submission gate. It refuses (a no-op, state is
// persisted but unchanged in meaning) unless every required step resolves
// valid. Required steps default to the whole graph when nil.
func (s *Service) Submit(ctx context.Context, tenantID, sessionID string, requiredSteps []int) (*Session, error) {
	session, err := s.GetSession(ctx, tenantID, sessionID)
	if err != nil {
		return nil, err
	}

	if requiredSteps == nil {
		requiredSteps = s.graph.Numbers()
	}

	result := session.ValidateAllRequired(requiredSteps)

	// Persist retained errors so the operator sees them after remount.
	if err := s.store.UpdateDraft(ctx, session); err != nil {
		return nil, fmt.Errorf("save draft: %w", err)
	}

	if !result.IsValid {
		return session, &SubmissionError{
			InvalidSteps: result.InvalidSteps,
			Titles:       s.graph.Titles(result.InvalidSteps),
		}
	}

	var completed []int
	for _, n := range requiredSteps {
		if session.StepStatus(n) == StatusComplete {
			completed = append(completed, n)
		}
	}

	s.publish(ctx, EventDraftSubmitted, session, DraftSubmittedData{
		SessionID:      sessionID,
		CustomerID:     session.Bag.String(FieldCustomerID),
		CompletedSteps: completed,
	})

	s.logger.Info("reservation submitted",
		"session_id", sessionID,
		"tenant_id", tenantID,
		"completed_steps", len(completed),
	)

	return session, nil
}

func (s *Service) publish(ctx context.Context, eventType string, session *Session, data any) {
	event, err := events.NewEvent(eventType, session.TenantID, AggregateType, session.ID, data)
	if err != nil {
		s.logger.Error("failed to build event", "type", eventType, "error", err)
		return
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Warn("failed to publish event",
			"type", eventType,
			"session_id", session.ID,
			"error", err,
		)
	}
}
