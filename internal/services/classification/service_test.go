package classification_test

import (
	"context"
	"errors"
	"log"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/taxpadi/api/internal/classify"
	"github.com/taxpadi/api/internal/services/classification"
	"github.com/taxpadi/api/internal/testutil"
)

var testDB *testutil.TestDB

func TestMain(m *testing.M) {
	var code int
	defer func() { os.Exit(code) }()

	db, err := testutil.SetupTestDB()
	if err != nil {
		log.Fatalf("setting up test database: %v", err)
	}
	defer db.Close()
	testDB = db

	code = m.Run()
}

func newService() *classification.Service {
	return classification.NewService(testDB.Pool, nil)
}

// classifyFixture runs the classifier on a known input so stored records
// carry realistic reasoning and threshold snapshots.
func classifyFixture(t *testing.T, turnover, assets int64) (classify.Input, classify.Result, time.Time) {
	t.Helper()

	input := classify.Input{
		Turnover:    decimal.NewFromInt(turnover),
		FixedAssets: decimal.NewFromInt(assets),
	}
	asOf := time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC)
	result, err := classify.Classify(input, asOf)
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	return input, result, asOf
}

func TestCreateAndGet(t *testing.T) {
	testDB.Truncate(t)
	svc := newService()
	ctx := context.Background()
	orgID := uuid.MustParse(testDB.CreateOrganization(t, "Surulere Textiles"))

	input, result, asOf := classifyFixture(t, 45_000_000, 200_000_000)

	created, err := svc.Create(ctx, orgID, input, result, asOf)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.ID == uuid.Nil {
		t.Error("expected non-nil record ID")
	}

	got, err := svc.Get(ctx, created.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}

	if got.Result.Classification != classify.ClassificationSmall {
		t.Errorf("classification: got %s, want SMALL", got.Result.Classification)
	}
	if !got.Input.Turnover.Equal(input.Turnover) {
		t.Errorf("turnover round-trip: got %s, want %s", got.Input.Turnover, input.Turnover)
	}
	if !got.Result.CITExempt {
		t.Error("expected cit_exempt true")
	}
	if !got.Result.TaxImplications.CITRate.IsZero() {
		t.Errorf("cit_rate: got %s, want 0", got.Result.TaxImplications.CITRate)
	}
	if len(got.Result.Reasoning) != len(result.Reasoning) {
		t.Errorf("reasoning round-trip: got %d lines, want %d", len(got.Result.Reasoning), len(result.Reasoning))
	}
	if !got.Result.Thresholds.TurnoverThreshold.Equal(result.Thresholds.TurnoverThreshold) {
		t.Errorf("threshold snapshot round-trip: got %s, want %s",
			got.Result.Thresholds.TurnoverThreshold, result.Thresholds.TurnoverThreshold)
	}
	if !got.AsOf.Equal(asOf) {
		t.Errorf("as_of: got %s, want %s", got.AsOf, asOf)
	}
}

func TestGet_NotFound(t *testing.T) {
	testDB.Truncate(t)
	svc := newService()

	_, err := svc.Get(context.Background(), uuid.New())
	if !errors.Is(err, classification.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestListByOrganization(t *testing.T) {
	testDB.Truncate(t)
	svc := newService()
	ctx := context.Background()
	orgID := uuid.MustParse(testDB.CreateOrganization(t, "Surulere Textiles"))
	otherID := uuid.MustParse(testDB.CreateOrganization(t, "Another Ltd"))

	input, result, asOf := classifyFixture(t, 45_000_000, 200_000_000)
	for i := 0; i < 2; i++ {
		if _, err := svc.Create(ctx, orgID, input, result, asOf); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}
	if _, err := svc.Create(ctx, otherID, input, result, asOf); err != nil {
		t.Fatalf("Create for other org: %v", err)
	}

	records, err := svc.ListByOrganization(ctx, orgID)
	if err != nil {
		t.Fatalf("ListByOrganization: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	for _, r := range records {
		if r.OrganizationID != orgID {
			t.Errorf("record %s belongs to %s", r.ID, r.OrganizationID)
		}
	}
}

// Reclassifying never rewrites history: each call appends a new record.
func TestCreate_AppendOnly(t *testing.T) {
	testDB.Truncate(t)
	svc := newService()
	ctx := context.Background()
	orgID := uuid.MustParse(testDB.CreateOrganization(t, "Growing Ventures"))

	smallInput, smallResult, asOf := classifyFixture(t, 45_000_000, 200_000_000)
	first, err := svc.Create(ctx, orgID, smallInput, smallResult, asOf)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	bigInput, bigResult, _ := classifyFixture(t, 80_000_000, 200_000_000)
	second, err := svc.Create(ctx, orgID, bigInput, bigResult, asOf)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if first.ID == second.ID {
		t.Fatal("expected a new record, not an update")
	}

	got, err := svc.Get(ctx, first.ID)
	if err != nil {
		t.Fatalf("Get first: %v", err)
	}
	if got.Result.Classification != classify.ClassificationSmall {
		t.Errorf("original record changed: got %s", got.Result.Classification)
	}
}
