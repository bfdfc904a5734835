package postgres

import (
	"context"
	"database/sql"
	"errors"

	billing "enercom-billing/internal/billing/domain"
	"enercom-billing/internal/ingest"
)

// ReadingsRepository persists raw monthly meter readings keyed by EAN and
// month. Rows are upserted so re-ingesting a corrected workbook overwrites
// earlier values.
type ReadingsRepository struct {
	db *sql.DB
}

// NewReadingsRepository constructs a repository.
func NewReadingsRepository(db *sql.DB) *ReadingsRepository {
	return &ReadingsRepository{db: db}
}

// Upsert stores every participant-month row of the dataset.
func (r *ReadingsRepository) Upsert(ctx context.Context, dataset ingest.Dataset) error {
	if r == nil || r.db == nil {
		return errors.New("readings repo: nil db")
	}
	if len(dataset) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	for ean, months := range dataset {
		for month, volumes := range months {
			_, err := tx.ExecContext(ctx, `
INSERT INTO meter_readings_monthly (
	ean, month, shared_volume, complementary_volume, shared_injection, complementary_injection, updated_at
) VALUES ($1,$2,$3,$4,$5,$6,NOW())
ON CONFLICT (ean, month) DO UPDATE SET
	shared_volume = EXCLUDED.shared_volume,
	complementary_volume = EXCLUDED.complementary_volume,
	shared_injection = EXCLUDED.shared_injection,
	complementary_injection = EXCLUDED.complementary_injection,
	updated_at = NOW()`,
				ean, month.String(), volumes.SharedVolume, volumes.ComplementaryVolume, volumes.SharedInjection, volumes.ComplementaryInjection)
			if err != nil {
				_ = tx.Rollback()
				return err
			}
		}
	}
	return tx.Commit()
}

// MonthlyVolumesByEAN returns all stored months for a meter.
func (r *ReadingsRepository) MonthlyVolumesByEAN(ctx context.Context, ean string) (map[billing.MonthKey]billing.MonthlyVolumes, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("readings repo: nil db")
	}
	rows, err := r.db.QueryContext(ctx, `
SELECT month, shared_volume, complementary_volume, shared_injection, complementary_injection
FROM meter_readings_monthly
WHERE ean = $1
ORDER BY month ASC`, ean)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make(map[billing.MonthKey]billing.MonthlyVolumes)
	for rows.Next() {
		var month string
		var volumes billing.MonthlyVolumes
		if err := rows.Scan(&month, &volumes.SharedVolume, &volumes.ComplementaryVolume, &volumes.SharedInjection, &volumes.ComplementaryInjection); err != nil {
			return nil, err
		}
		result[billing.MonthKey(month)] = volumes
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
