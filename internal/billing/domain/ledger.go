package billing

import (
	"sort"
	"time"
)

// Clock abstracts wall-clock time for deterministic tests.
type Clock interface {
	Now() time.Time
}

// SystemClock returns the current UTC time.
type SystemClock struct{}

// Now implements Clock.
func (SystemClock) Now() time.Time { return time.Now().UTC() }

// ParticipantLedger is the month-keyed billing record for one participant.
// It freezes the rate table and network costs used for its entries. Months
// are added or overwritten independently; rebuilding from the same raw data
// and rates reproduces identical entries.
type ParticipantLedger struct {
	ParticipantID string
	Months        map[MonthKey]MonthlyLedgerEntry
	NetworkCosts  NetworkCosts
	Rates         RateTable
	LastUpdated   time.Time

	// Optional metadata maintained by callers, never by the builder.
	PeriodStart   MonthKey
	PeriodEnd     MonthKey
	InvoiceNumber string
}

// BuildLedger folds ComputeMonth over every month present in raw, producing
// a fresh ledger. An empty raw dataset yields a ledger with an empty month
// map, not an error. LastUpdated is set from clock on every build.
func BuildLedger(participantID string, raw map[MonthKey]MonthlyVolumes, networkCosts NetworkCosts, rates RateTable, clock Clock) (*ParticipantLedger, error) {
	if participantID == "" {
		return nil, ErrEmptyParticipantID
	}
	if clock == nil {
		clock = SystemClock{}
	}

	months := make(map[MonthKey]MonthlyLedgerEntry, len(raw))
	for key, volumes := range raw {
		months[key] = ComputeMonth(volumes, rates)
	}

	return &ParticipantLedger{
		ParticipantID: participantID,
		Months:        months,
		NetworkCosts:  networkCosts,
		Rates:         rates,
		LastUpdated:   clock.Now(),
	}, nil
}

// MonthsInRange returns the ledger's month keys within [start, end],
// ascending. Months in range without an entry are skipped.
func (l *ParticipantLedger) MonthsInRange(start, end MonthKey) []MonthKey {
	if l == nil {
		return nil
	}
	keys := make([]MonthKey, 0, len(l.Months))
	for key := range l.Months {
		if key >= start && key <= end {
			keys = append(keys, key)
		}
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

// Clone returns a detached deep copy.
func (l *ParticipantLedger) Clone() *ParticipantLedger {
	if l == nil {
		return nil
	}
	copied := *l
	copied.Months = make(map[MonthKey]MonthlyLedgerEntry, len(l.Months))
	for key, entry := range l.Months {
		copied.Months[key] = entry
	}
	return &copied
}
