package billing

import "context"

// LedgerRepository persists participant ledgers. Load returns (nil, nil)
// when no ledger exists for the participant.
type LedgerRepository interface {
	Load(ctx context.Context, participantID string) (*ParticipantLedger, error)
	Save(ctx context.Context, ledger *ParticipantLedger) error
}
