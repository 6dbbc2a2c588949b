// Package invoice persists VAT invoices as immutable audit records. There
// are no update or delete operations: a correction is a new invoice.
package invoice

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taxpadi/api/internal/database"
	"github.com/taxpadi/api/internal/vat"
)

var (
	// ErrNotFound is returned when an invoice does not exist.
	ErrNotFound = errors.New("invoice not found")

	// ErrDuplicate is returned when an invoice number is already used
	// within the organization.
	ErrDuplicate = errors.New("invoice number already exists for organization")
)

// Service provides VAT invoice persistence.
type Service struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// NewService creates a new invoice service.
func NewService(pool *pgxpool.Pool, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{pool: pool, logger: logger}
}

// Create inserts a new invoice. The invoice number must be unique within
// the organization; a collision returns ErrDuplicate.
func (s *Service) Create(ctx context.Context, inv vat.Invoice) (vat.Invoice, error) {
	var lineItems []byte
	if len(inv.Lines) > 0 {
		var err error
		lineItems, err = json.Marshal(inv.Lines)
		if err != nil {
			return vat.Invoice{}, fmt.Errorf("marshaling line items: %w", err)
		}
	}

	row := s.pool.QueryRow(ctx, `
		INSERT INTO vat_invoices (
			organization_id, invoice_number, invoice_date, customer_name,
			customer_tin, gross_amount, vat_rate, vat_amount, total_amount,
			invoice_type, line_items
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id, created_at
	`,
		inv.OrganizationID,
		inv.InvoiceNumber,
		inv.InvoiceDate,
		inv.CustomerName,
		inv.CustomerTIN,
		inv.GrossAmount.String(),
		inv.VATRate.String(),
		inv.VATAmount.String(),
		inv.TotalAmount.String(),
		string(inv.InvoiceType),
		lineItems,
	)

	if err := row.Scan(&inv.ID, &inv.CreatedAt); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return vat.Invoice{}, ErrDuplicate
		}
		return vat.Invoice{}, fmt.Errorf("creating invoice %s: %w", inv.InvoiceNumber, err)
	}

	s.logger.Info("invoice stored",
		"id", inv.ID,
		"organization_id", inv.OrganizationID,
		"invoice_number", inv.InvoiceNumber,
		"invoice_type", inv.InvoiceType,
	)
	return inv, nil
}

// Get returns a single invoice by ID.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (vat.Invoice, error) {
	row := s.pool.QueryRow(ctx, selectColumns+` WHERE id = $1`, id)

	inv, err := scanInvoice(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return vat.Invoice{}, ErrNotFound
		}
		return vat.Invoice{}, fmt.Errorf("getting invoice %s: %w", id, err)
	}
	return inv, nil
}

// ListByOrganization returns all invoices for an organization, most
// recent invoice date first.
func (s *Service) ListByOrganization(ctx context.Context, orgID uuid.UUID) ([]vat.Invoice, error) {
	rows, err := s.pool.Query(ctx,
		selectColumns+` WHERE organization_id = $1 ORDER BY invoice_date DESC, created_at DESC`, orgID)
	if err != nil {
		return nil, fmt.Errorf("listing invoices for organization %s: %w", orgID, err)
	}
	return collectInvoices(rows)
}

// ListByPeriod returns an organization's invoices with invoice dates
// inside [start, end], both ends inclusive, ordered by invoice date.
func (s *Service) ListByPeriod(ctx context.Context, orgID uuid.UUID, start, end time.Time) ([]vat.Invoice, error) {
	rows, err := s.pool.Query(ctx,
		selectColumns+` WHERE organization_id = $1 AND invoice_date >= $2 AND invoice_date <= $3 ORDER BY invoice_date`,
		orgID, start, end)
	if err != nil {
		return nil, fmt.Errorf("listing invoices for organization %s in period: %w", orgID, err)
	}
	return collectInvoices(rows)
}

const selectColumns = `
	SELECT id, organization_id, invoice_number, invoice_date, customer_name,
	       customer_tin, gross_amount, vat_rate, vat_amount, total_amount,
	       invoice_type, line_items, created_at
	FROM vat_invoices`

func collectInvoices(rows pgx.Rows) ([]vat.Invoice, error) {
	defer rows.Close()

	var invoices []vat.Invoice
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning invoice: %w", err)
		}
		invoices = append(invoices, inv)
	}
	return invoices, rows.Err()
}

func scanInvoice(row pgx.Row) (vat.Invoice, error) {
	var (
		inv         vat.Invoice
		grossAmount pgtype.Numeric
		vatRate     pgtype.Numeric
		vatAmount   pgtype.Numeric
		totalAmount pgtype.Numeric
		lineItems   []byte
	)

	err := row.Scan(
		&inv.ID,
		&inv.OrganizationID,
		&inv.InvoiceNumber,
		&inv.InvoiceDate,
		&inv.CustomerName,
		&inv.CustomerTIN,
		&grossAmount,
		&vatRate,
		&vatAmount,
		&totalAmount,
		&inv.InvoiceType,
		&lineItems,
		&inv.CreatedAt,
	)
	if err != nil {
		return vat.Invoice{}, err
	}

	if inv.GrossAmount, err = database.NumericToDecimal(grossAmount); err != nil {
		return vat.Invoice{}, err
	}
	if inv.VATRate, err = database.NumericToDecimal(vatRate); err != nil {
		return vat.Invoice{}, err
	}
	if inv.VATAmount, err = database.NumericToDecimal(vatAmount); err != nil {
		return vat.Invoice{}, err
	}
	if inv.TotalAmount, err = database.NumericToDecimal(totalAmount); err != nil {
		return vat.Invoice{}, err
	}

	if len(lineItems) > 0 {
		if err := json.Unmarshal(lineItems, &inv.Lines); err != nil {
			return vat.Invoice{}, fmt.Errorf("unmarshaling line items: %w", err)
		}
	}

	return inv, nil
}
