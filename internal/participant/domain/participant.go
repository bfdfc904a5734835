package participant

import (
	"errors"
	"strings"
	"time"
)

var (
	// ErrInvalidEAN is returned when an EAN code is not 18 digits.
	ErrInvalidEAN = errors.New("participant: ean must be 18 digits")
	// ErrEmptyID is returned when a participant id is empty.
	ErrEmptyID = errors.New("participant: empty id")
	// ErrEmptyName is returned when a participant name is empty.
	ErrEmptyName = errors.New("participant: empty name")
	// ErrNotFound is returned when a participant does not exist.
	ErrNotFound = errors.New("participant: not found")
)

// Participant is a member of the energy community, identified by its
// connection point EAN code.
type Participant struct {
	ID        string
	Name      string
	Email     string
	Address   string
	EAN       string
	CreatedAt time.Time
}

// New validates and constructs a participant.
func New(id, name, email, address, ean string) (*Participant, error) {
	if id == "" {
		return nil, ErrEmptyID
	}
	if strings.TrimSpace(name) == "" {
		return nil, ErrEmptyName
	}
	if !ValidEAN(ean) {
		return nil, ErrInvalidEAN
	}
	return &Participant{
		ID:      id,
		Name:    strings.TrimSpace(name),
		Email:   strings.TrimSpace(email),
		Address: strings.TrimSpace(address),
		EAN:     ean,
	}, nil
}

// ValidEAN reports whether code is a well-formed 18-digit EAN meter code.
func ValidEAN(code string) bool {
	if len(code) != 18 {
		return false
	}
	for _, r := range code {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
