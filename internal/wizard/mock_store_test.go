package wizard

import (
	"context"

	"rentdesk/internal/common/database"
	"rentdesk/internal/common/events"
)

// memStore is an in-memory Store for service tests.
type memStore struct {
	drafts map[string]*Session
}

func newMemStore() *memStore {
	return &memStore{drafts: make(map[string]*Session)}
}

func (s *memStore) key(tenantID, sessionID string) string {
	return tenantID + "/" + sessionID
}

func (s *memStore) CreateDraft(ctx context.Context, session *Session) error {
	s.drafts[s.key(session.TenantID, session.ID)] = session
	return nil
}

func (s *memStore) GetDraft(ctx context.Context, tenantID, sessionID string) (*Session, error) {
	session, ok := s.drafts[s.key(tenantID, sessionID)]
	if !ok {
		return nil, database.ErrNotFound
	}
	return session, nil
}

func (s *memStore) UpdateDraft(ctx context.Context, session *Session) error {
	key := s.key(session.TenantID, session.ID)
	if _, ok := s.drafts[key]; !ok {
		return database.ErrNotFound
	}
	s.drafts[key] = session
	return nil
}

func (s *memStore) DeleteDraft(ctx context.Context, tenantID, sessionID string) error {
	key := s.key(tenantID, sessionID)
	if _, ok := s.drafts[key]; !ok {
		return database.ErrNotFound
	}
	delete(s.drafts, key)
	return nil
}

// capturePublisher records published events for assertions.
type capturePublisher struct {
	events []*events.Event
}

func (p *capturePublisher) Publish(ctx context.Context, event *events.Event) error {
	p.events = append(p.events, event)
	return nil
}

func (p *capturePublisher) byType(eventType string) []*events.Event {
	var out []*events.Event
	for _, e := range p.events {
		if e.Type == eventType {
			out = append(out, e)
		}
	}
	return out
}
