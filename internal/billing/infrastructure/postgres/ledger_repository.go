package postgres

import (
	"context"
	"database/sql"
	"errors"

	billing "enercom-billing/internal/billing/domain"
)

// LedgerRepository persists participant ledgers in postgres.
// A ledger spans one row in participant_ledgers plus one row per month in
// ledger_months; Save replaces the month set atomically so the stored
// ledger always mirrors the built one.
type LedgerRepository struct {
	db *sql.DB
}

// NewLedgerRepository constructs a repository.
func NewLedgerRepository(db *sql.DB) *LedgerRepository {
	return &LedgerRepository{db: db}
}

// Load fetches a ledger, or (nil, nil) when the participant has none.
func (r *LedgerRepository) Load(ctx context.Context, participantID string) (*billing.ParticipantLedger, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("ledger repo: nil db")
	}
	if participantID == "" {
		return nil, billing.ErrEmptyParticipantID
	}

	row := r.db.QueryRowContext(ctx, `
SELECT participant_id,
	shared_volume_price, complementary_volume_price, shared_injection_price, complementary_injection_price, vat_rate_percent,
	network_usage, surcharges, capacity_tariff, metering_tariff, public_service_obligation, transport_fee, road_usage_fee, grid_fee,
	last_updated, period_start, period_end, invoice_number
FROM participant_ledgers
WHERE participant_id = $1
LIMIT 1`, participantID)

	ledger := &billing.ParticipantLedger{Months: make(map[billing.MonthKey]billing.MonthlyLedgerEntry)}
	var periodStart, periodEnd, invoiceNumber sql.NullString
	err := row.Scan(
		&ledger.ParticipantID,
		&ledger.Rates.SharedVolumePrice, &ledger.Rates.ComplementaryVolumePrice, &ledger.Rates.SharedInjectionPrice, &ledger.Rates.ComplementaryInjectionPrice, &ledger.Rates.VATRatePercent,
		&ledger.NetworkCosts.NetworkUsage, &ledger.NetworkCosts.Surcharges, &ledger.NetworkCosts.CapacityTariff, &ledger.NetworkCosts.MeteringTariff,
		&ledger.NetworkCosts.PublicServiceObligation, &ledger.NetworkCosts.TransportFee, &ledger.NetworkCosts.RoadUsageFee, &ledger.NetworkCosts.GridFee,
		&ledger.LastUpdated, &periodStart, &periodEnd, &invoiceNumber,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	ledger.PeriodStart = billing.MonthKey(periodStart.String)
	ledger.PeriodEnd = billing.MonthKey(periodEnd.String)
	ledger.InvoiceNumber = invoiceNumber.String

	rows, err := r.db.QueryContext(ctx, `
SELECT month,
	shared_volume, complementary_volume, shared_injection, complementary_injection,
	cost_shared, cost_complementary, remuneration_shared_injection, remuneration_complementary_injection,
	total_costs, total_remunerations, monthly_balance
FROM ledger_months
WHERE participant_id = $1
ORDER BY month ASC`, participantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var month string
		var entry billing.MonthlyLedgerEntry
		if err := rows.Scan(
			&month,
			&entry.SharedVolume, &entry.ComplementaryVolume, &entry.SharedInjection, &entry.ComplementaryInjection,
			&entry.CostShared, &entry.CostComplementary, &entry.RemunerationSharedInjection, &entry.RemunerationComplementaryInjection,
			&entry.TotalCosts, &entry.TotalRemunerations, &entry.MonthlyBalance,
		); err != nil {
			return nil, err
		}
		ledger.Months[billing.MonthKey(month)] = entry
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return ledger, nil
}

// Save upserts the ledger row and replaces its month entries.
func (r *LedgerRepository) Save(ctx context.Context, ledger *billing.ParticipantLedger) error {
	if r == nil || r.db == nil {
		return errors.New("ledger repo: nil db")
	}
	if ledger == nil {
		return billing.ErrNilLedger
	}
	if ledger.ParticipantID == "" {
		return billing.ErrEmptyParticipantID
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, `
INSERT INTO participant_ledgers (
	participant_id,
	shared_volume_price, complementary_volume_price, shared_injection_price, complementary_injection_price, vat_rate_percent,
	network_usage, surcharges, capacity_tariff, metering_tariff, public_service_obligation, transport_fee, road_usage_fee, grid_fee,
	last_updated, period_start, period_end, invoice_number
) VALUES (
	$1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18
)
ON CONFLICT (participant_id) DO UPDATE SET
	shared_volume_price = EXCLUDED.shared_volume_price,
	complementary_volume_price = EXCLUDED.complementary_volume_price,
	shared_injection_price = EXCLUDED.shared_injection_price,
	complementary_injection_price = EXCLUDED.complementary_injection_price,
	vat_rate_percent = EXCLUDED.vat_rate_percent,
	network_usage = EXCLUDED.network_usage,
	surcharges = EXCLUDED.surcharges,
	capacity_tariff = EXCLUDED.capacity_tariff,
	metering_tariff = EXCLUDED.metering_tariff,
	public_service_obligation = EXCLUDED.public_service_obligation,
	transport_fee = EXCLUDED.transport_fee,
	road_usage_fee = EXCLUDED.road_usage_fee,
	grid_fee = EXCLUDED.grid_fee,
	last_updated = EXCLUDED.last_updated,
	period_start = EXCLUDED.period_start,
	period_end = EXCLUDED.period_end,
	invoice_number = EXCLUDED.invoice_number`,
		ledger.ParticipantID,
		ledger.Rates.SharedVolumePrice, ledger.Rates.ComplementaryVolumePrice, ledger.Rates.SharedInjectionPrice, ledger.Rates.ComplementaryInjectionPrice, ledger.Rates.VATRatePercent,
		ledger.NetworkCosts.NetworkUsage, ledger.NetworkCosts.Surcharges, ledger.NetworkCosts.CapacityTariff, ledger.NetworkCosts.MeteringTariff,
		ledger.NetworkCosts.PublicServiceObligation, ledger.NetworkCosts.TransportFee, ledger.NetworkCosts.RoadUsageFee, ledger.NetworkCosts.GridFee,
		ledger.LastUpdated, nullableKey(ledger.PeriodStart), nullableKey(ledger.PeriodEnd), nullableString(ledger.InvoiceNumber),
	)
	if err != nil {
		_ = tx.Rollback()
		return err
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM ledger_months WHERE participant_id = $1`, ledger.ParticipantID); err != nil {
		_ = tx.Rollback()
		return err
	}
	for month, entry := range ledger.Months {
		_, err := tx.ExecContext(ctx, `
INSERT INTO ledger_months (
	participant_id, month,
	shared_volume, complementary_volume, shared_injection, complementary_injection,
	cost_shared, cost_complementary, remuneration_shared_injection, remuneration_complementary_injection,
	total_costs, total_remunerations, monthly_balance
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)`,
			ledger.ParticipantID, month.String(),
			entry.SharedVolume, entry.ComplementaryVolume, entry.SharedInjection, entry.ComplementaryInjection,
			entry.CostShared, entry.CostComplementary, entry.RemunerationSharedInjection, entry.RemunerationComplementaryInjection,
			entry.TotalCosts, entry.TotalRemunerations, entry.MonthlyBalance,
		)
		if err != nil {
			_ = tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

func nullableKey(key billing.MonthKey) sql.NullString {
	return nullableString(key.String())
}

func nullableString(value string) sql.NullString {
	if value == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: value, Valid: true}
}
