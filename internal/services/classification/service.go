// Package classification persists entity classification results as an
// append-only history per organization. Stored results are immutable
// audit records; a re-classification inserts a new row.
package classification

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taxpadi/api/internal/classify"
	"github.com/taxpadi/api/internal/database"
)

// ErrNotFound is returned when a classification record does not exist.
var ErrNotFound = errors.New("classification not found")

// Record is a persisted classification result together with the input
// that produced it.
type Record struct {
	ID             uuid.UUID       `json:"id"`
	OrganizationID uuid.UUID       `json:"organization_id"`
	Input          classify.Input  `json:"input"`
	Result         classify.Result `json:"result"`
	AsOf           time.Time       `json:"as_of"`
	CreatedAt      time.Time       `json:"created_at"`
}

// Service provides classification persistence.
type Service struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// NewService creates a new classification service.
func NewService(pool *pgxpool.Pool, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{pool: pool, logger: logger}
}

// Create stores a classification result for an organization.
func (s *Service) Create(ctx context.Context, orgID uuid.UUID, input classify.Input, result classify.Result, asOf time.Time) (Record, error) {
	reasoning, err := json.Marshal(result.Reasoning)
	if err != nil {
		return Record{}, fmt.Errorf("marshaling reasoning: %w", err)
	}
	thresholds, err := json.Marshal(result.Thresholds)
	if err != nil {
		return Record{}, fmt.Errorf("marshaling thresholds: %w", err)
	}

	row := s.pool.QueryRow(ctx, `
		INSERT INTO classifications (
			organization_id, turnover, fixed_assets, is_professional_services,
			industry_code, classification, cit_exempt, dev_levy_applicable,
			cit_rate, dev_levy_rate, reasoning, thresholds, as_of
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING id, created_at
	`,
		orgID,
		input.Turnover.String(),
		input.FixedAssets.String(),
		input.IsProfessionalServices,
		nullableString(input.IndustryCode),
		string(result.Classification),
		result.CITExempt,
		result.DevLevyApplicable,
		result.TaxImplications.CITRate.String(),
		result.TaxImplications.DevLevyRate.String(),
		reasoning,
		thresholds,
		asOf,
	)

	record := Record{
		OrganizationID: orgID,
		Input:          input,
		Result:         result,
		AsOf:           asOf,
	}
	if err := row.Scan(&record.ID, &record.CreatedAt); err != nil {
		return Record{}, fmt.Errorf("creating classification for organization %s: %w", orgID, err)
	}

	s.logger.Info("classification stored",
		"id", record.ID,
		"organization_id", orgID,
		"classification", result.Classification,
	)
	return record, nil
}

// Get returns a single classification record by ID.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (Record, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT id, organization_id, turnover, fixed_assets, is_professional_services,
		       industry_code, classification, cit_exempt, dev_levy_applicable,
		       cit_rate, dev_levy_rate, reasoning, thresholds, as_of, created_at
		FROM classifications
		WHERE id = $1
	`, id)

	record, err := scanRecord(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Record{}, ErrNotFound
		}
		return Record{}, fmt.Errorf("getting classification %s: %w", id, err)
	}
	return record, nil
}

// ListByOrganization returns an organization's classification history,
// newest first.
func (s *Service) ListByOrganization(ctx context.Context, orgID uuid.UUID) ([]Record, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, organization_id, turnover, fixed_assets, is_professional_services,
		       industry_code, classification, cit_exempt, dev_levy_applicable,
		       cit_rate, dev_levy_rate, reasoning, thresholds, as_of, created_at
		FROM classifications
		WHERE organization_id = $1
		ORDER BY created_at DESC
	`, orgID)
	if err != nil {
		return nil, fmt.Errorf("listing classifications for organization %s: %w", orgID, err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning classification: %w", err)
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

// scanRecord reads one classification row. The reasoning and thresholds
// JSONB columns are unmarshaled back into the engine types.
func scanRecord(row pgx.Row) (Record, error) {
	var (
		record       Record
		turnover     pgtype.Numeric
		fixedAssets  pgtype.Numeric
		industryCode *string
		citRate      pgtype.Numeric
		devLevyRate  pgtype.Numeric
		reasoning    []byte
		thresholds   []byte
	)

	err := row.Scan(
		&record.ID,
		&record.OrganizationID,
		&turnover,
		&fixedAssets,
		&record.Input.IsProfessionalServices,
		&industryCode,
		&record.Result.Classification,
		&record.Result.CITExempt,
		&record.Result.DevLevyApplicable,
		&citRate,
		&devLevyRate,
		&reasoning,
		&thresholds,
		&record.AsOf,
		&record.CreatedAt,
	)
	if err != nil {
		return Record{}, err
	}

	if record.Input.Turnover, err = database.NumericToDecimal(turnover); err != nil {
		return Record{}, err
	}
	if record.Input.FixedAssets, err = database.NumericToDecimal(fixedAssets); err != nil {
		return Record{}, err
	}
	if record.Result.TaxImplications.CITRate, err = database.NumericToDecimal(citRate); err != nil {
		return Record{}, err
	}
	if record.Result.TaxImplications.DevLevyRate, err = database.NumericToDecimal(devLevyRate); err != nil {
		return Record{}, err
	}
	record.Result.TaxImplications.VATApplicable = true

	if industryCode != nil {
		record.Input.IndustryCode = *industryCode
	}
	if err := json.Unmarshal(reasoning, &record.Result.Reasoning); err != nil {
		return Record{}, fmt.Errorf("unmarshaling reasoning: %w", err)
	}
	if err := json.Unmarshal(thresholds, &record.Result.Thresholds); err != nil {
		return Record{}, fmt.Errorf("unmarshaling thresholds: %w", err)
	}

	return record, nil
}

func nullableString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
