package billing

import (
	"fmt"
	"time"
)

// DefaultInvoiceNumberPrefix is used when no prefix option is given.
const DefaultInvoiceNumberPrefix = "INV"

const dueDateDays = 30

// ParticipantInfo is the identity snapshot embedded in an invoice.
type ParticipantInfo struct {
	ID    string
	Name  string
	Email string
	EAN   string
}

// Invoice is the aggregation of a ledger over a closed month range.
// Ephemeral: this package computes invoices on demand and never stores them.
type Invoice struct {
	Number      string
	Participant ParticipantInfo

	PeriodStart MonthKey
	PeriodEnd   MonthKey
	Months      []MonthKey

	SharedVolume           float64
	ComplementaryVolume    float64
	SharedInjection        float64
	ComplementaryInjection float64

	TotalCosts       float64
	TotalRevenues    float64
	NetworkCostTotal float64

	Subtotal     float64
	VAT          float64
	TotalWithVAT float64

	IssueDate time.Time
	DueDate   time.Time
}

// InvoiceOption configures invoice generation.
type InvoiceOption func(*invoiceOptions)

type invoiceOptions struct {
	prefix string
	clock  Clock
}

// WithNumberPrefix overrides the invoice number prefix.
func WithNumberPrefix(prefix string) InvoiceOption {
	return func(o *invoiceOptions) {
		if prefix != "" {
			o.prefix = prefix
		}
	}
}

// WithClock overrides the clock used for issue and due dates.
func WithClock(clock Clock) InvoiceOption {
	return func(o *invoiceOptions) {
		if clock != nil {
			o.clock = clock
		}
	}
}

// GenerateInvoice aggregates the ledger months within [startMonth, endMonth]
// into a single invoice. Both bounds must be well-formed YYYY-MM keys with
// startMonth <= endMonth, otherwise ErrInvalidPeriod. Months in range absent
// from the ledger are skipped; an empty selection yields a zero-total
// invoice. The ledger is never mutated.
func GenerateInvoice(participant ParticipantInfo, ledger *ParticipantLedger, startMonth, endMonth string, opts ...InvoiceOption) (*Invoice, error) {
	if ledger == nil {
		return nil, ErrNilLedger
	}
	start, err := ParseMonthKey(startMonth)
	if err != nil {
		return nil, ErrInvalidPeriod
	}
	end, err := ParseMonthKey(endMonth)
	if err != nil {
		return nil, ErrInvalidPeriod
	}
	if start > end {
		return nil, ErrInvalidPeriod
	}

	options := invoiceOptions{prefix: DefaultInvoiceNumberPrefix, clock: SystemClock{}}
	for _, opt := range opts {
		opt(&options)
	}

	invoice := &Invoice{
		Number:           buildInvoiceNumber(options.prefix, end, participant.ID),
		Participant:      participant,
		PeriodStart:      start,
		PeriodEnd:        end,
		Months:           ledger.MonthsInRange(start, end),
		NetworkCostTotal: ledger.NetworkCosts.Total(),
	}

	for _, key := range invoice.Months {
		entry := ledger.Months[key]
		invoice.SharedVolume += entry.SharedVolume
		invoice.ComplementaryVolume += entry.ComplementaryVolume
		invoice.SharedInjection += entry.SharedInjection
		invoice.ComplementaryInjection += entry.ComplementaryInjection
		invoice.TotalCosts += entry.TotalCosts
		invoice.TotalRevenues += entry.TotalRemunerations
	}

	invoice.Subtotal = invoice.TotalRevenues - invoice.TotalCosts - invoice.NetworkCostTotal
	invoice.VAT = invoice.Subtotal * ledger.Rates.VATRatePercent / 100
	invoice.TotalWithVAT = invoice.Subtotal + invoice.VAT

	now := options.clock.Now()
	invoice.IssueDate = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	invoice.DueDate = invoice.IssueDate.AddDate(0, 0, dueDateDays)

	return invoice, nil
}

// buildInvoiceNumber derives the deterministic invoice number
// PREFIX-{endYear}{endMonth}-{participant id short form}. The same
// participant and end month always yield the same number; there is no
// sequence counter.
func buildInvoiceNumber(prefix string, end MonthKey, participantID string) string {
	short := participantID
	if len(short) > 8 {
		short = short[:8]
	}
	t := end.Time()
	return fmt.Sprintf("%s-%d%02d-%s", prefix, t.Year(), int(t.Month()), short)
}
