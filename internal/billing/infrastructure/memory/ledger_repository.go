package memory

import (
	"context"
	"sync"

	billing "enercom-billing/internal/billing/domain"
)

// LedgerRepository is an in-memory ledger store for tests and tooling.
type LedgerRepository struct {
	mu   sync.RWMutex
	data map[string]*billing.ParticipantLedger
}

// NewLedgerRepository constructs a repository.
func NewLedgerRepository() *LedgerRepository {
	return &LedgerRepository{data: make(map[string]*billing.ParticipantLedger)}
}

// Load returns a detached copy of the stored ledger, or (nil, nil) when absent.
func (r *LedgerRepository) Load(ctx context.Context, participantID string) (*billing.ParticipantLedger, error) {
	_ = ctx
	if participantID == "" {
		return nil, billing.ErrEmptyParticipantID
	}
	r.mu.RLock()
	ledger := r.data[participantID]
	r.mu.RUnlock()
	return ledger.Clone(), nil
}

// Save overwrites the stored ledger (last write wins).
func (r *LedgerRepository) Save(ctx context.Context, ledger *billing.ParticipantLedger) error {
	_ = ctx
	if ledger == nil {
		return billing.ErrNilLedger
	}
	if ledger.ParticipantID == "" {
		return billing.ErrEmptyParticipantID
	}
	copied := ledger.Clone()
	r.mu.Lock()
	r.data[ledger.ParticipantID] = copied
	r.mu.Unlock()
	return nil
}
