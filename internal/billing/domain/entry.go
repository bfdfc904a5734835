package billing

// MonthlyVolumes are the raw energy quantities for one participant-month,
// in kWh. Fields absent upstream arrive as zero; negative corrections are
// passed through unclamped.
type MonthlyVolumes struct {
	SharedVolume           float64
	ComplementaryVolume    float64
	SharedInjection        float64
	ComplementaryInjection float64
}

// MonthlyLedgerEntry is the derived billing record for one participant-month.
// Immutable once computed.
type MonthlyLedgerEntry struct {
	SharedVolume           float64
	ComplementaryVolume    float64
	SharedInjection        float64
	ComplementaryInjection float64

	CostShared                         float64
	CostComplementary                  float64
	RemunerationSharedInjection        float64
	RemunerationComplementaryInjection float64

	TotalCosts         float64
	TotalRemunerations float64
	MonthlyBalance     float64
}

// ComputeMonth derives the ledger entry for one month of raw volumes.
// Pure and deterministic: the same volumes and rates always produce
// bit-identical output.
func ComputeMonth(volumes MonthlyVolumes, rates RateTable) MonthlyLedgerEntry {
	entry := MonthlyLedgerEntry{
		SharedVolume:           volumes.SharedVolume,
		ComplementaryVolume:    volumes.ComplementaryVolume,
		SharedInjection:        volumes.SharedInjection,
		ComplementaryInjection: volumes.ComplementaryInjection,

		CostShared:                         volumes.SharedVolume * rates.SharedVolumePrice,
		CostComplementary:                  volumes.ComplementaryVolume * rates.ComplementaryVolumePrice,
		RemunerationSharedInjection:        volumes.SharedInjection * rates.SharedInjectionPrice,
		RemunerationComplementaryInjection: volumes.ComplementaryInjection * rates.ComplementaryInjectionPrice,
	}
	entry.TotalCosts = entry.CostShared + entry.CostComplementary
	entry.TotalRemunerations = entry.RemunerationSharedInjection + entry.RemunerationComplementaryInjection
	entry.MonthlyBalance = entry.TotalRemunerations - entry.TotalCosts
	return entry
}
