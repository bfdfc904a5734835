package billing

import "errors"

// RateTable holds the per-kWh prices and VAT rate applied by a ledger.
// A ledger freezes the table it was built with; later rate changes never
// alter historical months.
type RateTable struct {
	SharedVolumePrice           float64
	ComplementaryVolumePrice    float64
	SharedInjectionPrice        float64
	ComplementaryInjectionPrice float64
	VATRatePercent              float64
}

// DefaultRates is the fallback rate table. Callers pass it explicitly;
// nothing in this package reads it as ambient state.
var DefaultRates = RateTable{
	SharedVolumePrice:           0.20,
	ComplementaryVolumePrice:    0.35,
	SharedInjectionPrice:        0.10,
	ComplementaryInjectionPrice: 0.04,
	VATRatePercent:              21,
}

// Validate checks price and VAT bounds.
func (r RateTable) Validate() error {
	if r.SharedVolumePrice < 0 || r.ComplementaryVolumePrice < 0 ||
		r.SharedInjectionPrice < 0 || r.ComplementaryInjectionPrice < 0 {
		return errors.New("billing: negative price in rate table")
	}
	if r.VATRatePercent < 0 || r.VATRatePercent > 100 {
		return errors.New("billing: vat rate must be between 0 and 100")
	}
	return nil
}

// NetworkCosts are the fixed monthly network charges attributed to a
// participant. They are only ever used as a flat total.
type NetworkCosts struct {
	NetworkUsage            float64
	Surcharges              float64
	CapacityTariff          float64
	MeteringTariff          float64
	PublicServiceObligation float64
	TransportFee            float64
	RoadUsageFee            float64
	GridFee                 float64
}

// Total returns the flat sum of all components.
func (n NetworkCosts) Total() float64 {
	return n.NetworkUsage + n.Surcharges + n.CapacityTariff + n.MeteringTariff +
		n.PublicServiceObligation + n.TransportFee + n.RoadUsageFee + n.GridFee
}

// Validate checks that no component is negative.
func (n NetworkCosts) Validate() error {
	for _, v := range []float64{
		n.NetworkUsage, n.Surcharges, n.CapacityTariff, n.MeteringTariff,
		n.PublicServiceObligation, n.TransportFee, n.RoadUsageFee, n.GridFee,
	} {
		if v < 0 {
			return errors.New("billing: negative network cost component")
		}
	}
	return nil
}
