// Package organization stores the businesses that own classification
// results and VAT invoices.
package organization

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound is returned when an organization does not exist.
var ErrNotFound = errors.New("organization not found")

// Organization is a business registered with the service.
type Organization struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	TIN       *string   `json:"tin,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Service provides organization persistence.
type Service struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// NewService creates a new organization service.
func NewService(pool *pgxpool.Pool, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{pool: pool, logger: logger}
}

// CreateParams contains the input fields for creating an organization.
type CreateParams struct {
	Name string
	TIN  *string
}

// Create inserts a new organization and returns it.
func (s *Service) Create(ctx context.Context, params CreateParams) (Organization, error) {
	row := s.pool.QueryRow(ctx, `
		INSERT INTO organizations (name, tin)
		VALUES ($1, $2)
		RETURNING id, name, tin, created_at
	`, params.Name, params.TIN)

	var org Organization
	if err := row.Scan(&org.ID, &org.Name, &org.TIN, &org.CreatedAt); err != nil {
		return Organization{}, fmt.Errorf("creating organization: %w", err)
	}

	s.logger.Info("organization created", "id", org.ID, "name", org.Name)
	return org, nil
}

// Get returns a single organization by ID.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (Organization, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT id, name, tin, created_at
		FROM organizations
		WHERE id = $1
	`, id)

	var org Organization
	if err := row.Scan(&org.ID, &org.Name, &org.TIN, &org.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Organization{}, ErrNotFound
		}
		return Organization{}, fmt.Errorf("getting organization %s: %w", id, err)
	}
	return org, nil
}

// List returns all organizations, newest first.
func (s *Service) List(ctx context.Context) ([]Organization, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, name, tin, created_at
		FROM organizations
		ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("listing organizations: %w", err)
	}
	defer rows.Close()

	var orgs []Organization
	for rows.Next() {
		var org Organization
		if err := rows.Scan(&org.ID, &org.Name, &org.TIN, &org.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning organization: %w", err)
		}
		orgs = append(orgs, org)
	}
	return orgs, rows.Err()
}
