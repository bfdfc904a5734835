package application

import (
	"context"
	"errors"
	"log"
	"os"
	"testing"
	"time"

	billing "enercom-billing/internal/billing/domain"
	"enercom-billing/internal/billing/infrastructure/memory"
	participant "enercom-billing/internal/participant/domain"
)

type stubDirectory struct {
	members map[string]*participant.Participant
}

func (s stubDirectory) Get(_ context.Context, id string) (*participant.Participant, error) {
	member, ok := s.members[id]
	if !ok {
		return nil, participant.ErrNotFound
	}
	return member, nil
}

type stubReadings struct {
	byEAN map[string]map[billing.MonthKey]billing.MonthlyVolumes
	calls int
}

func (s *stubReadings) MonthlyVolumesByEAN(_ context.Context, ean string) (map[billing.MonthKey]billing.MonthlyVolumes, error) {
	s.calls++
	return s.byEAN[ean], nil
}

type stubClock struct {
	now time.Time
}

func (c stubClock) Now() time.Time { return c.now }

func newTestService(t *testing.T, readings *stubReadings, opts ...ServiceOption) (*BillingService, *memory.LedgerRepository) {
	t.Helper()
	repo := memory.NewLedgerRepository()
	directory := stubDirectory{members: map[string]*participant.Participant{
		"p-1": {ID: "p-1", Name: "Alice Martin", Email: "alice@example.org", EAN: "541448100000000123"},
	}}
	rates := billing.RateTable{SharedVolumePrice: 1, SharedInjectionPrice: 1, VATRatePercent: 21}
	costs := billing.NetworkCosts{NetworkUsage: 20, CapacityTariff: 15, GridFee: 15}
	service, err := NewBillingService(repo, directory, readings, rates, costs, log.New(os.Stderr, "test ", log.LstdFlags), opts...)
	if err != nil {
		t.Fatalf("new billing service: %v", err)
	}
	return service, repo
}

func threeMonthReadings() *stubReadings {
	return &stubReadings{byEAN: map[string]map[billing.MonthKey]billing.MonthlyVolumes{
		"541448100000000123": {
			"2025-01": {SharedVolume: 100, SharedInjection: 60},
			"2025-02": {SharedVolume: 100, SharedInjection: 60},
			"2025-03": {SharedVolume: 100, SharedInjection: 60},
		},
	}}
}

func TestEnsureLedgerBuildsOnceAndCaches(t *testing.T) {
	readings := threeMonthReadings()
	service, repo := newTestService(t, readings)
	ctx := context.Background()

	ledger, err := service.EnsureLedger(ctx, "p-1", false)
	if err != nil {
		t.Fatalf("first ensure: %v", err)
	}
	if len(ledger.Months) != 3 {
		t.Fatalf("expected 3 months, got %d", len(ledger.Months))
	}
	if readings.calls != 1 {
		t.Fatalf("expected one readings fetch, got %d", readings.calls)
	}

	// Second call serves the persisted ledger.
	if _, err := service.EnsureLedger(ctx, "p-1", false); err != nil {
		t.Fatalf("second ensure: %v", err)
	}
	if readings.calls != 1 {
		t.Fatalf("cached ensure refetched readings (%d calls)", readings.calls)
	}

	stored, err := repo.Load(ctx, "p-1")
	if err != nil || stored == nil {
		t.Fatalf("ledger not persisted: %v", err)
	}
}

func TestEnsureLedgerRebuildOverwrites(t *testing.T) {
	readings := threeMonthReadings()
	service, _ := newTestService(t, readings)
	ctx := context.Background()

	if _, err := service.EnsureLedger(ctx, "p-1", false); err != nil {
		t.Fatalf("ensure: %v", err)
	}
	readings.byEAN["541448100000000123"]["2025-01"] = billing.MonthlyVolumes{SharedVolume: 999}

	rebuilt, err := service.EnsureLedger(ctx, "p-1", true)
	if err != nil {
		t.Fatalf("rebuild: %v", err)
	}
	if got := rebuilt.Months["2025-01"].CostShared; got != 999 {
		t.Fatalf("rebuild did not overwrite month entry: got %v", got)
	}
	if readings.calls != 2 {
		t.Fatalf("expected 2 readings fetches, got %d", readings.calls)
	}
}

func TestEnsureLedgerUnknownParticipant(t *testing.T) {
	service, _ := newTestService(t, threeMonthReadings())
	if _, err := service.EnsureLedger(context.Background(), "nobody", false); !errors.Is(err, participant.ErrNotFound) {
		t.Fatalf("expected participant.ErrNotFound, got %v", err)
	}
}

func TestGetLedgerAbsent(t *testing.T) {
	service, _ := newTestService(t, threeMonthReadings())
	if _, err := service.GetLedger(context.Background(), "p-1"); !errors.Is(err, ErrLedgerNotFound) {
		t.Fatalf("expected ErrLedgerNotFound, got %v", err)
	}
}

func TestGenerateInvoiceEndToEnd(t *testing.T) {
	clock := stubClock{now: time.Date(2025, 4, 10, 8, 0, 0, 0, time.UTC)}
	service, _ := newTestService(t, threeMonthReadings(), WithClock(clock), WithNumberPrefix("FAC"))

	invoice, err := service.GenerateInvoice(context.Background(), "p-1", "2025-01", "2025-03")
	if err != nil {
		t.Fatalf("generate invoice: %v", err)
	}
	if invoice.Number != "FAC-202503-p-1" {
		t.Fatalf("invoice number: got %s", invoice.Number)
	}
	if invoice.Participant.EAN != "541448100000000123" {
		t.Fatalf("participant snapshot missing EAN: %+v", invoice.Participant)
	}
	// 3 x (cost 100, revenue 60), flat network total 50, VAT 21%.
	if invoice.Subtotal != -170 {
		t.Fatalf("subtotal: got %v want -170", invoice.Subtotal)
	}
	if !invoice.IssueDate.Equal(time.Date(2025, 4, 10, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("issue date: got %v", invoice.IssueDate)
	}
}

func TestGenerateInvoiceInvalidPeriodPropagates(t *testing.T) {
	service, _ := newTestService(t, threeMonthReadings())
	if _, err := service.GenerateInvoice(context.Background(), "p-1", "2025-03", "2025-01"); !errors.Is(err, billing.ErrInvalidPeriod) {
		t.Fatalf("expected ErrInvalidPeriod, got %v", err)
	}
}
