package payment

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/oklog/ulid/v2"

	"rentdesk/internal/common/events"
	"rentdesk/internal/common/money"
)

// SettlementRequest is the instruction handed downstream for one settled
// line after a successful submission.
type SettlementRequest struct {
	AllocationID   string      `json:"allocation_id"`
	Method         Method      `json:"method"`
	Amount         money.Money `json:"amount"`
	PointsUsed     int64       `json:"points_used,omitempty"`
	TransactionRef string      `json:"transaction_ref"`
}

// Service orchestrates allocations: lifecycle, line edits, and the
// submission gate. The engine holds the allocation rules; the service adds
// persistence, profile lookup, and event publication around it.
type Service struct {
	engine    *Engine
	store     Store
	publisher events.Publisher
	logger    *slog.Logger
}

// NewService creates a payment service.
func NewService(engine *Engine, store Store, publisher events.Publisher, logger *slog.Logger) *Service {
	return &Service{
		engine:    engine,
		store:     store,
		publisher: publisher,
		logger:    logger,
	}
}

// Engine returns the allocation engine the service runs on.
func (s *Service) Engine() *Engine {
	return s.engine
}

// CreateAllocation starts an allocation for the given total with a single
// default line and persists it.
func (s *Service) CreateAllocation(ctx context.Context, tenantID, sessionID, customerID string, total money.Money, defaultMethod Method) (*Allocation, error) {
	if _, err := ParseMethod(string(defaultMethod)); err != nil {
		return nil, err
	}

	id := ulid.Make().String()
	a := s.engine.NewAllocation(id, tenantID, sessionID, customerID, total, defaultMethod)

	if err := s.store.CreateAllocation(ctx, &a); err != nil {
		return nil, fmt.Errorf("create allocation: %w", err)
	}

	s.publish(ctx, EventAllocationCreated, &a, AllocationCreatedData{
		AllocationID: id,
		SessionID:    sessionID,
		Total:        total,
	})

	s.logger.Info("allocation created",
		"allocation_id", id,
		"tenant_id", tenantID,
		"total", total.String(),
	)

	return &a, nil
}

// GetAllocation loads an allocation.
func (s *Service) GetAllocation(ctx context.Context, tenantID, id string) (*Allocation, error) {
	return s.store.GetAllocation(ctx, tenantID, id)
}

// Validate loads the allocation and its profile and returns the current
// error list alongside the allocation.
func (s *Service) Validate(ctx context.Context, tenantID, id string) (*Allocation, []string, error) {
	a, err := s.store.GetAllocation(ctx, tenantID, id)
	if err != nil {
		return nil, nil, err
	}

	profile, err := s.lookupProfile(ctx, tenantID, a.CustomerID)
	if err != nil {
		return nil, nil, err
	}

	return a, s.engine.Validate(*a, profile), nil
}

// AddLine appends a line and persists the result.
func (s *Service) AddLine(ctx context.Context, tenantID, id string, method Method) (*Allocation, error) {
	return s.edit(ctx, tenantID, id, func(a Allocation) (Allocation, error) {
		return s.engine.AddLine(a, method)
	})
}

// RemoveLine deletes a line and persists the result.
func (s *Service) RemoveLine(ctx context.Context, tenantID, id string, index int) (*Allocation, error) {
	return s.edit(ctx, tenantID, id, func(a Allocation) (Allocation, error) {
		return s.engine.RemoveLine(a, index)
	})
}

// UpdateLineMethod switches a line's funding source and persists the result.
func (s *Service) UpdateLineMethod(ctx context.Context, tenantID, id string, index int, method Method) (*Allocation, error) {
	return s.edit(ctx, tenantID, id, func(a Allocation) (Allocation, error) {
		return s.engine.UpdateLineMethod(a, index, method)
	})
}

// UpdateLineAmount sets a line's amount and persists the result.
func (s *Service) UpdateLineAmount(ctx context.Context, tenantID, id string, index int, amount money.Money) (*Allocation, error) {
	return s.edit(ctx, tenantID, id, func(a Allocation) (Allocation, error) {
		return s.engine.UpdateLineAmount(a, index, amount)
	})
}

// UpdateLinePoints sets a loyalty line's points and persists the result.
func (s *Service) UpdateLinePoints(ctx context.Context, tenantID, id string, index int, points int64) (*Allocation, error) {
	return s.edit(ctx, tenantID, id, func(a Allocation) (Allocation, error) {
		return s.engine.UpdateLinePoints(a, index, points)
	})
}

// Submit runs the submission gate and, on success, stamps transaction
// references and method details, persists the finalized allocation, and
// publishes one settlement event per line plus the submission event. The
// returned requests are the downstream settlement instructions.
func (s *Service) Submit(ctx context.Context, tenantID, id string) (*Allocation, []SettlementRequest, error) {
	a, err := s.store.GetAllocation(ctx, tenantID, id)
	if err != nil {
		return nil, nil, err
	}

	profile, err := s.lookupProfile(ctx, tenantID, a.CustomerID)
	if err != nil {
		return nil, nil, err
	}

	submitted, err := s.engine.Submit(*a, profile)
	if err != nil {
		return a, nil, err
	}

	requests := make([]SettlementRequest, 0, len(submitted.Lines))
	for i := range submitted.Lines {
		line := &submitted.Lines[i]
		line.TransactionRef = ulid.Make().String()
		line.Detail = buildDetail(line, profile)
		requests = append(requests, SettlementRequest{
			AllocationID:   submitted.ID,
			Method:         line.Method,
			Amount:         line.Amount,
			PointsUsed:     line.PointsUsed,
			TransactionRef: line.TransactionRef,
		})
	}

	if err := s.store.UpdateAllocation(ctx, &submitted); err != nil {
		return nil, nil, fmt.Errorf("save allocation: %w", err)
	}

	for _, req := range requests {
		s.publish(ctx, EventLineSettled, &submitted, LineSettledData{
			AllocationID:   req.AllocationID,
			Method:         req.Method,
			Amount:         req.Amount,
			PointsUsed:     req.PointsUsed,
			TransactionRef: req.TransactionRef,
		})
	}
	s.publish(ctx, EventAllocationSubmitted, &submitted, AllocationSubmittedData{
		AllocationID: submitted.ID,
		SessionID:    submitted.SessionID,
		Total:        submitted.Total,
		LineCount:    len(submitted.Lines),
	})

	s.logger.Info("allocation submitted",
		"allocation_id", submitted.ID,
		"tenant_id", tenantID,
		"lines", len(submitted.Lines),
	)

	return &submitted, requests, nil
}

// edit is the shared load-apply-save cycle for line operations.
func (s *Service) edit(ctx context.Context, tenantID, id string, op func(Allocation) (Allocation, error)) (*Allocation, error) {
	a, err := s.store.GetAllocation(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}

	next, err := op(*a)
	if err != nil {
		return nil, err
	}

	if err := s.store.UpdateAllocation(ctx, &next); err != nil {
		return nil, fmt.Errorf("save allocation: %w", err)
	}
	return &next, nil
}

func (s *Service) lookupProfile(ctx context.Context, tenantID, customerID string) (*Profile, error) {
	if customerID == "" {
		return nil, nil
	}
	profile, err := s.store.GetProfile(ctx, tenantID, customerID)
	if err != nil {
		return nil, fmt.Errorf("load payment profile: %w", err)
	}
	return profile, nil
}

// buildDetail attaches the method-specific settlement record to a line.
func buildDetail(line *Line, profile *Profile) *LineDetail {
	switch line.Method {
	case MethodCustomerWallet:
		if profile == nil {
			return nil
		}
		return &LineDetail{Wallet: &WalletDetail{
			BalanceBefore: profile.WalletBalance,
			BalanceAfter:  profile.WalletBalance.MustSub(line.Amount),
		}}
	case MethodPaymentLink:
		expires := time.Now().UTC().Add(48 * time.Hour)
		return &LineDetail{Link: &LinkDetail{
			Token:     ulid.Make().String(),
			ExpiresAt: &expires,
		}}
	default:
		return nil
	}
}

func (s *Service) publish(ctx context.Context, eventType string, a *Allocation, data any) {
	event, err := events.NewEvent(eventType, a.TenantID, AggregateType, a.ID, data)
	if err != nil {
		s.logger.Error("failed to build event", "type", eventType, "error", err)
		return
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Warn("failed to publish event",
			"type", eventType,
			"allocation_id", a.ID,
			"error", err,
		)
	}
}
