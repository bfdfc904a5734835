package integration_test

import (
	"context"
	"database/sql"
	"log"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	billingapp "enercom-billing/internal/billing/application"
	billing "enercom-billing/internal/billing/domain"
	billingrepo "enercom-billing/internal/billing/infrastructure/postgres"
	"enercom-billing/internal/ingest"
	ingestrepo "enercom-billing/internal/ingest/infrastructure/postgres"
	participant "enercom-billing/internal/participant/domain"
	participantrepo "enercom-billing/internal/participant/infrastructure/postgres"

	_ "github.com/jackc/pgx/v5/stdlib"
)

func TestBillingClosedLoop_Postgres(t *testing.T) {
	dsn := os.Getenv("PG_DSN")
	if dsn == "" {
		t.Skip("PG_DSN not set")
	}

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	defer db.Close()

	if err := applyBillingMigrations(db); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}

	ctx := context.Background()
	participantID := "participant-it"
	ean := "541448999000000001"

	_, _ = db.ExecContext(ctx, "DELETE FROM ledger_months WHERE participant_id = $1", participantID)
	_, _ = db.ExecContext(ctx, "DELETE FROM participant_ledgers WHERE participant_id = $1", participantID)
	_, _ = db.ExecContext(ctx, "DELETE FROM meter_readings_monthly WHERE ean = $1", ean)
	_, _ = db.ExecContext(ctx, "DELETE FROM participants WHERE id = $1", participantID)

	participants := participantrepo.NewParticipantRepository(db)
	member, err := participant.New(participantID, "Integration Tester", "it@example.org", "", ean)
	if err != nil {
		t.Fatalf("new participant: %v", err)
	}
	if err := participants.Create(ctx, member); err != nil {
		t.Fatalf("create participant: %v", err)
	}

	loaded, err := participants.GetByEAN(ctx, ean)
	if err != nil {
		t.Fatalf("get by ean: %v", err)
	}
	if loaded.ID != participantID {
		t.Fatalf("participant id mismatch: got=%s", loaded.ID)
	}

	readings := ingestrepo.NewReadingsRepository(db)
	dataset := ingest.Dataset{
		ean: {
			"2025-01": {SharedVolume: 110, ComplementaryVolume: 30, SharedInjection: 12},
			"2025-02": {SharedVolume: 90, ComplementaryVolume: 45, SharedInjection: 8, ComplementaryInjection: 3},
		},
	}
	if err := readings.Upsert(ctx, dataset); err != nil {
		t.Fatalf("upsert readings: %v", err)
	}

	// Corrected re-ingest overwrites the stored row.
	dataset[ean]["2025-02"] = billing.MonthlyVolumes{SharedVolume: 95, ComplementaryVolume: 45, SharedInjection: 8, ComplementaryInjection: 3}
	if err := readings.Upsert(ctx, dataset); err != nil {
		t.Fatalf("re-upsert readings: %v", err)
	}
	stored, err := readings.MonthlyVolumesByEAN(ctx, ean)
	if err != nil {
		t.Fatalf("load readings: %v", err)
	}
	if len(stored) != 2 {
		t.Fatalf("expected 2 stored months, got %d", len(stored))
	}
	if stored["2025-02"].SharedVolume != 95 {
		t.Fatalf("expected corrected value 95, got %v", stored["2025-02"].SharedVolume)
	}

	rates := billing.RateTable{
		SharedVolumePrice:           0.20,
		ComplementaryVolumePrice:    0.35,
		SharedInjectionPrice:        0.10,
		ComplementaryInjectionPrice: 0.04,
		VATRatePercent:              21,
	}
	costs := billing.NetworkCosts{NetworkUsage: 25, GridFee: 10}

	ledgers := billingrepo.NewLedgerRepository(db)
	service, err := billingapp.NewBillingService(ledgers, participants, readings, rates, costs, log.New(os.Stderr, "it ", log.LstdFlags))
	if err != nil {
		t.Fatalf("billing service: %v", err)
	}

	built, err := service.EnsureLedger(ctx, participantID, false)
	if err != nil {
		t.Fatalf("ensure ledger: %v", err)
	}
	if len(built.Months) != 2 {
		t.Fatalf("expected 2 ledger months, got %d", len(built.Months))
	}

	reloaded, err := ledgers.Load(ctx, participantID)
	if err != nil {
		t.Fatalf("load ledger: %v", err)
	}
	if reloaded == nil {
		t.Fatalf("expected persisted ledger")
	}
	for month, want := range built.Months {
		got, ok := reloaded.Months[month]
		if !ok {
			t.Fatalf("month %s missing after reload", month)
		}
		if math.Abs(got.MonthlyBalance-want.MonthlyBalance) > 1e-9 {
			t.Fatalf("month %s balance mismatch: got=%v want=%v", month, got.MonthlyBalance, want.MonthlyBalance)
		}
	}
	if reloaded.Rates != built.Rates {
		t.Fatalf("rates snapshot mismatch after reload")
	}

	invoice, err := service.GenerateInvoice(ctx, participantID, "2025-01", "2025-02")
	if err != nil {
		t.Fatalf("generate invoice: %v", err)
	}
	if len(invoice.Months) != 2 {
		t.Fatalf("expected invoice over 2 months, got %d", len(invoice.Months))
	}
	wantSubtotal := invoice.TotalRevenues - invoice.TotalCosts - costs.Total()
	if math.Abs(invoice.Subtotal-wantSubtotal) > 1e-9 {
		t.Fatalf("subtotal mismatch: got=%v want=%v", invoice.Subtotal, wantSubtotal)
	}
	if invoice.DueDate.Sub(invoice.IssueDate) != 30*24*time.Hour {
		t.Fatalf("due date not 30 days after issue date")
	}
}

func applyBillingMigrations(db *sql.DB) error {
	root := projectRoot()
	files := []string{
		filepath.Join(root, "migrations", "001_participants.sql"),
		filepath.Join(root, "migrations", "002_meter_readings.sql"),
		filepath.Join(root, "migrations", "003_participant_ledgers.sql"),
	}
	for _, path := range files {
		content, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		if _, err := db.Exec(string(content)); err != nil {
			return err
		}
	}
	return nil
}

func projectRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		return "."
	}
	return filepath.Clean(filepath.Join(dir, "..", "..", ".."))
}
