package postgres

import (
	"context"
	"database/sql"
	"errors"

	participant "enercom-billing/internal/participant/domain"
)

// ParticipantRepository persists community participants.
type ParticipantRepository struct {
	db *sql.DB
}

// NewParticipantRepository constructs a repository.
func NewParticipantRepository(db *sql.DB) *ParticipantRepository {
	return &ParticipantRepository{db: db}
}

// Get fetches a participant by id.
func (r *ParticipantRepository) Get(ctx context.Context, id string) (*participant.Participant, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("participant repo: nil db")
	}
	if id == "" {
		return nil, participant.ErrEmptyID
	}
	row := r.db.QueryRowContext(ctx, `
SELECT id, name, email, address, ean, created_at
FROM participants
WHERE id = $1
LIMIT 1`, id)
	return scanParticipant(row)
}

// GetByEAN fetches a participant by meter code.
func (r *ParticipantRepository) GetByEAN(ctx context.Context, ean string) (*participant.Participant, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("participant repo: nil db")
	}
	if !participant.ValidEAN(ean) {
		return nil, participant.ErrInvalidEAN
	}
	row := r.db.QueryRowContext(ctx, `
SELECT id, name, email, address, ean, created_at
FROM participants
WHERE ean = $1
LIMIT 1`, ean)
	return scanParticipant(row)
}

// List returns all participants ordered by name.
func (r *ParticipantRepository) List(ctx context.Context) ([]participant.Participant, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("participant repo: nil db")
	}
	rows, err := r.db.QueryContext(ctx, `
SELECT id, name, email, address, ean, created_at
FROM participants
ORDER BY name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var members []participant.Participant
	for rows.Next() {
		var member participant.Participant
		var email, address sql.NullString
		if err := rows.Scan(&member.ID, &member.Name, &email, &address, &member.EAN, &member.CreatedAt); err != nil {
			return nil, err
		}
		member.Email = email.String
		member.Address = address.String
		members = append(members, member)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return members, nil
}

// Create inserts a participant.
func (r *ParticipantRepository) Create(ctx context.Context, member *participant.Participant) error {
	if r == nil || r.db == nil {
		return errors.New("participant repo: nil db")
	}
	if member == nil {
		return participant.ErrEmptyID
	}
	_, err := r.db.ExecContext(ctx, `
INSERT INTO participants (id, name, email, address, ean, created_at)
VALUES ($1,$2,$3,$4,$5,NOW())`,
		member.ID, member.Name, member.Email, member.Address, member.EAN)
	return err
}

func scanParticipant(row *sql.Row) (*participant.Participant, error) {
	var member participant.Participant
	var email, address sql.NullString
	err := row.Scan(&member.ID, &member.Name, &email, &address, &member.EAN, &member.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, participant.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	member.Email = email.String
	member.Address = address.String
	return &member, nil
}
