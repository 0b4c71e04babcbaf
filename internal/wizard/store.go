package wizard

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"rentdesk/internal/common/database"
)

// Store persists wizard session drafts so an operator can resume later.
// The core never awaits the store mid-computation; it is handed complete
// snapshots.
type Store interface {
	CreateDraft(ctx context.Context, session *Session) error
	GetDraft(ctx context.Context, tenantID, sessionID string) (*Session, error)
	UpdateDraft(ctx context.Context, session *Session) error
	DeleteDraft(ctx context.Context, tenantID, sessionID string) error
}

// PostgresStore implements Store using PostgreSQL.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a new PostgreSQL store.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// CreateDraft inserts a new session draft.
func (s *PostgresStore) CreateDraft(ctx context.Context, session *Session) error {
	query := `
		INSERT INTO wizard_drafts (
			id, tenant_id, active_step, step_records, data_bag, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	records, err := json.Marshal(session.Records)
	if err != nil {
		return fmt.Errorf("marshal step records: %w", err)
	}
	bag, err := json.Marshal(session.Bag)
	if err != nil {
		return fmt.Errorf("marshal data bag: %w", err)
	}

	_, err = s.pool.Exec(ctx, query,
		session.ID, session.TenantID, session.ActiveStep,
		records, bag, session.CreatedAt, session.UpdatedAt,
	)
	return err
}

// GetDraft retrieves a session draft. The caller must Rehydrate the result
// before using it.
func (s *PostgresStore) GetDraft(ctx context.Context, tenantID, sessionID string) (*Session, error) {
	query := `
		SELECT id, tenant_id, active_step, step_records, data_bag, created_at, updated_at
		FROM wizard_drafts
		WHERE id = $1 AND tenant_id = $2
	`

	var sess Session
	var records, bag []byte
	err := s.pool.QueryRow(ctx, query, sessionID, tenantID).Scan(
		&sess.ID, &sess.TenantID, &sess.ActiveStep,
		&records, &bag, &sess.CreatedAt, &sess.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, database.ErrNotFound
		}
		return nil, err
	}

	if err := json.Unmarshal(records, &sess.Records); err != nil {
		return nil, fmt.Errorf("unmarshal step records: %w", err)
	}
	if err := json.Unmarshal(bag, &sess.Bag); err != nil {
		return nil, fmt.Errorf("unmarshal data bag: %w", err)
	}

	return &sess, nil
}

// UpdateDraft persists a mutated session draft.
func (s *PostgresStore) UpdateDraft(ctx context.Context, session *Session) error {
	query := `
		UPDATE wizard_drafts SET
			active_step = $3, step_records = $4, data_bag = $5, updated_at = $6
		WHERE id = $1 AND tenant_id = $2
	`

	records, err := json.Marshal(session.Records)
	if err != nil {
		return fmt.Errorf("marshal step records: %w", err)
	}
	bag, err := json.Marshal(session.Bag)
	if err != nil {
		return fmt.Errorf("marshal data bag: %w", err)
	}

	session.UpdatedAt = time.Now().UTC()

	tag, err := s.pool.Exec(ctx, query,
		session.ID, session.TenantID, session.ActiveStep,
		records, bag, session.UpdatedAt,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return database.ErrNotFound
	}
	return nil
}

// DeleteDraft removes a session draft.
func (s *PostgresStore) DeleteDraft(ctx context.Context, tenantID, sessionID string) error {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM wizard_drafts WHERE id = $1 AND tenant_id = $2`,
		sessionID, tenantID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return database.ErrNotFound
	}
	return nil
}
