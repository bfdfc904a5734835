package application

import (
	"context"
	"errors"
	"log"
	"time"

	billing "enercom-billing/internal/billing/domain"
	"enercom-billing/internal/observability/metrics"
	participant "enercom-billing/internal/participant/domain"
)

// ErrLedgerNotFound is returned when a participant has no persisted ledger.
var ErrLedgerNotFound = errors.New("billing service: ledger not found")

// ParticipantDirectory resolves participant master data.
type ParticipantDirectory interface {
	Get(ctx context.Context, id string) (*participant.Participant, error)
}

// ReadingsSource supplies the pre-validated monthly dataset for a meter.
// The importer normalizes missing numeric fields to zero before the data
// reaches this interface.
type ReadingsSource interface {
	MonthlyVolumesByEAN(ctx context.Context, ean string) (map[billing.MonthKey]billing.MonthlyVolumes, error)
}

// BillingService orchestrates ledger builds and invoice generation around
// the pure domain calculators. Ledgers are built lazily on first access and
// persisted; invoices are computed on demand and never stored.
type BillingService struct {
	ledgers      billing.LedgerRepository
	participants ParticipantDirectory
	readings     ReadingsSource
	rates        billing.RateTable
	networkCosts billing.NetworkCosts
	numberPrefix string
	clock        billing.Clock
	logger       *log.Logger
}

// ServiceOption configures the billing service.
type ServiceOption func(*BillingService)

// WithNumberPrefix overrides the invoice number prefix.
func WithNumberPrefix(prefix string) ServiceOption {
	return func(s *BillingService) {
		if prefix != "" {
			s.numberPrefix = prefix
		}
	}
}

// WithClock overrides the service clock.
func WithClock(clock billing.Clock) ServiceOption {
	return func(s *BillingService) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// NewBillingService constructs the service.
func NewBillingService(ledgers billing.LedgerRepository, participants ParticipantDirectory, readings ReadingsSource, rates billing.RateTable, networkCosts billing.NetworkCosts, logger *log.Logger, opts ...ServiceOption) (*BillingService, error) {
	if ledgers == nil {
		return nil, errors.New("billing service: nil ledger repository")
	}
	if participants == nil {
		return nil, errors.New("billing service: nil participant directory")
	}
	if readings == nil {
		return nil, errors.New("billing service: nil readings source")
	}
	if err := rates.Validate(); err != nil {
		return nil, err
	}
	if err := networkCosts.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = log.Default()
	}
	s := &BillingService{
		ledgers:      ledgers,
		participants: participants,
		readings:     readings,
		rates:        rates,
		networkCosts: networkCosts,
		numberPrefix: billing.DefaultInvoiceNumberPrefix,
		clock:        billing.SystemClock{},
		logger:       logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// EnsureLedger returns the participant's ledger, building and persisting it
// from stored readings when absent. With rebuild set, stored readings are
// re-folded and every month entry overwritten. Concurrent first builds are
// last-write-wins at the repository; entries are deterministic so the race
// is benign.
func (s *BillingService) EnsureLedger(ctx context.Context, participantID string, rebuild bool) (*billing.ParticipantLedger, error) {
	start := time.Now()
	result := metrics.ResultSuccess
	defer func() {
		metrics.ObserveLedgerBuild(result, time.Since(start))
	}()

	if participantID == "" {
		result = metrics.ResultError
		return nil, billing.ErrEmptyParticipantID
	}

	if !rebuild {
		existing, err := s.ledgers.Load(ctx, participantID)
		if err != nil {
			result = metrics.ResultError
			return nil, err
		}
		if existing != nil {
			return existing, nil
		}
	}

	member, err := s.participants.Get(ctx, participantID)
	if err != nil {
		result = metrics.ResultError
		return nil, err
	}

	raw, err := s.readings.MonthlyVolumesByEAN(ctx, member.EAN)
	if err != nil {
		result = metrics.ResultError
		return nil, err
	}

	ledger, err := billing.BuildLedger(participantID, raw, s.networkCosts, s.rates, s.clock)
	if err != nil {
		result = metrics.ResultError
		return nil, err
	}
	if err := s.ledgers.Save(ctx, ledger); err != nil {
		result = metrics.ResultError
		return nil, err
	}
	s.logger.Printf("ledger built: participant=%s months=%d", participantID, len(ledger.Months))
	return ledger, nil
}

// GetLedger loads a persisted ledger without building.
func (s *BillingService) GetLedger(ctx context.Context, participantID string) (*billing.ParticipantLedger, error) {
	if participantID == "" {
		return nil, billing.ErrEmptyParticipantID
	}
	ledger, err := s.ledgers.Load(ctx, participantID)
	if err != nil {
		return nil, err
	}
	if ledger == nil {
		return nil, ErrLedgerNotFound
	}
	return ledger, nil
}

// GenerateInvoice aggregates the participant's ledger over the closed month
// range [startMonth, endMonth]. The ledger is built first when absent.
func (s *BillingService) GenerateInvoice(ctx context.Context, participantID, startMonth, endMonth string) (*billing.Invoice, error) {
	start := time.Now()
	result := metrics.ResultSuccess
	defer func() {
		metrics.ObserveInvoiceGenerate(result, time.Since(start))
	}()

	ledger, err := s.EnsureLedger(ctx, participantID, false)
	if err != nil {
		result = metrics.ResultError
		return nil, err
	}
	member, err := s.participants.Get(ctx, participantID)
	if err != nil {
		result = metrics.ResultError
		return nil, err
	}

	invoice, err := billing.GenerateInvoice(
		billing.ParticipantInfo{ID: member.ID, Name: member.Name, Email: member.Email, EAN: member.EAN},
		ledger,
		startMonth,
		endMonth,
		billing.WithNumberPrefix(s.numberPrefix),
		billing.WithClock(s.clock),
	)
	if err != nil {
		result = metrics.ResultError
		return nil, err
	}
	s.logger.Printf("invoice generated: participant=%s number=%s months=%d total=%.2f", participantID, invoice.Number, len(invoice.Months), invoice.TotalWithVAT)
	return invoice, nil
}
