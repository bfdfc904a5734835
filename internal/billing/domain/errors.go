package billing

import "errors"

var (
	// ErrInvalidPeriod is returned when an invoice period is malformed or reversed.
	ErrInvalidPeriod = errors.New("billing: invalid invoice period")
	// ErrInvalidMonthKey is returned when a month key is not YYYY-MM.
	ErrInvalidMonthKey = errors.New("billing: month key must be YYYY-MM")
	// ErrEmptyParticipantID is returned when a participant id is empty.
	ErrEmptyParticipantID = errors.New("billing: empty participant id")
	// ErrNilLedger is returned when a nil ledger is passed to the aggregator.
	ErrNilLedger = errors.New("billing: nil ledger")
)
