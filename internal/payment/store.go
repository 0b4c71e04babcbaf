package payment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"rentdesk/internal/common/database"
	"rentdesk/internal/common/money"
)

// Store persists allocations and looks up customer payment profiles.
type Store interface {
	CreateAllocation(ctx context.Context, a *Allocation) error
	GetAllocation(ctx context.Context, tenantID, id string) (*Allocation, error)
	UpdateAllocation(ctx context.Context, a *Allocation) error

	// GetProfile returns nil with no error when the customer has no
	// profile on record.
	GetProfile(ctx context.Context, tenantID, customerID string) (*Profile, error)
}

// PostgresStore implements Store using PostgreSQL.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a new PostgreSQL store.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// CreateAllocation inserts a new allocation.
func (s *PostgresStore) CreateAllocation(ctx context.Context, a *Allocation) error {
	query := `
		INSERT INTO payment_allocations (
			id, tenant_id, session_id, customer_id,
			total_minor, currency, lines, submitted_at, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	lines, err := json.Marshal(a.Lines)
	if err != nil {
		return fmt.Errorf("marshal lines: %w", err)
	}

	_, err = s.pool.Exec(ctx, query,
		a.ID, a.TenantID, a.SessionID, a.CustomerID,
		a.Total.AmountMinor, a.Total.Currency, lines,
		a.SubmittedAt, a.CreatedAt, a.UpdatedAt,
	)
	if database.IsUniqueViolation(err) {
		return database.ErrAlreadyExists
	}
	return err
}

// GetAllocation retrieves an allocation by id within a tenant.
func (s *PostgresStore) GetAllocation(ctx context.Context, tenantID, id string) (*Allocation, error) {
	query := `
		SELECT id, tenant_id, session_id, customer_id,
			total_minor, currency, lines, submitted_at, created_at, updated_at
		FROM payment_allocations
		WHERE id = $1 AND tenant_id = $2
	`

	var a Allocation
	var lines []byte
	err := s.pool.QueryRow(ctx, query, id, tenantID).Scan(
		&a.ID, &a.TenantID, &a.SessionID, &a.CustomerID,
		&a.Total.AmountMinor, &a.Total.Currency, &lines,
		&a.SubmittedAt, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, database.ErrNotFound
		}
		return nil, err
	}

	if err := json.Unmarshal(lines, &a.Lines); err != nil {
		return nil, fmt.Errorf("unmarshal lines: %w", err)
	}

	return &a, nil
}

// UpdateAllocation persists a changed allocation.
func (s *PostgresStore) UpdateAllocation(ctx context.Context, a *Allocation) error {
	query := `
		UPDATE payment_allocations SET
			customer_id = $3, lines = $4, submitted_at = $5, updated_at = $6
		WHERE id = $1 AND tenant_id = $2
	`

	lines, err := json.Marshal(a.Lines)
	if err != nil {
		return fmt.Errorf("marshal lines: %w", err)
	}

	a.UpdatedAt = time.Now().UTC()

	tag, err := s.pool.Exec(ctx, query,
		a.ID, a.TenantID, a.CustomerID, lines, a.SubmittedAt, a.UpdatedAt,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return database.ErrNotFound
	}
	return nil
}

// GetProfile retrieves a customer payment profile. Absence is not an
// error: capacity simply degrades to zero for profile-bound methods.
func (s *PostgresStore) GetProfile(ctx context.Context, tenantID, customerID string) (*Profile, error) {
	query := `
		SELECT customer_id, wallet_balance_minor, loyalty_points,
			credit_limit_minor, credit_available_minor, currency
		FROM customer_payment_profiles
		WHERE customer_id = $1 AND tenant_id = $2
	`

	var p Profile
	var currency money.Currency
	err := s.pool.QueryRow(ctx, query, customerID, tenantID).Scan(
		&p.CustomerID, &p.WalletBalance.AmountMinor, &p.LoyaltyPoints,
		&p.CreditLimit.AmountMinor, &p.CreditAvailable.AmountMinor, &currency,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	p.WalletBalance.Currency = currency
	p.CreditLimit.Currency = currency
	p.CreditAvailable.Currency = currency
	return &p, nil
}
