package payment

import (
	"context"

	"github.com/stretchr/testify/mock"

	"rentdesk/internal/common/events"
)

// MockStore is a mock implementation of Store for testing.
type MockStore struct {
	mock.Mock
}

func (m *MockStore) CreateAllocation(ctx context.Context, a *Allocation) error {
	args := m.Called(ctx, a)
	return args.Error(0)
}

func (m *MockStore) GetAllocation(ctx context.Context, tenantID, id string) (*Allocation, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Allocation), args.Error(1)
}

func (m *MockStore) UpdateAllocation(ctx context.Context, a *Allocation) error {
	args := m.Called(ctx, a)
	return args.Error(0)
}

func (m *MockStore) GetProfile(ctx context.Context, tenantID, customerID string) (*Profile, error) {
	args := m.Called(ctx, tenantID, customerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Profile), args.Error(1)
}

// MockPublisher records published events for assertions.
type MockPublisher struct {
	Events []*events.Event
}

func (p *MockPublisher) Publish(ctx context.Context, event *events.Event) error {
	p.Events = append(p.Events, event)
	return nil
}

func (p *MockPublisher) ByType(eventType string) []*events.Event {
	var out []*events.Event
	for _, e := range p.Events {
		if e.Type == eventType {
			out = append(out, e)
		}
	}
	return out
}
