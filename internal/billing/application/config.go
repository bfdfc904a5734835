package application

import (
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	billing "enercom-billing/internal/billing/domain"
)

// RatesConfig defines the rate table and network costs supplied to the
// billing service. Values come from defaults, then an optional yaml file
// (BILLING_RATES_CONFIG), then env overrides, in that order.
type RatesConfig struct {
	Rates        ratesYAML        `yaml:"rates"`
	NetworkCosts networkCostsYAML `yaml:"network_costs"`
	NumberPrefix string           `yaml:"invoice_number_prefix"`
}

type ratesYAML struct {
	SharedVolumePrice           float64 `yaml:"shared_volume_price"`
	ComplementaryVolumePrice    float64 `yaml:"complementary_volume_price"`
	SharedInjectionPrice        float64 `yaml:"shared_injection_price"`
	ComplementaryInjectionPrice float64 `yaml:"complementary_injection_price"`
	VATRatePercent              float64 `yaml:"vat_rate_percent"`
}

type networkCostsYAML struct {
	NetworkUsage            float64 `yaml:"network_usage"`
	Surcharges              float64 `yaml:"surcharges"`
	CapacityTariff          float64 `yaml:"capacity_tariff"`
	MeteringTariff          float64 `yaml:"metering_tariff"`
	PublicServiceObligation float64 `yaml:"public_service_obligation"`
	TransportFee            float64 `yaml:"transport_fee"`
	RoadUsageFee            float64 `yaml:"road_usage_fee"`
	GridFee                 float64 `yaml:"grid_fee"`
}

// LoadRatesConfig resolves the rate table, network costs and invoice number
// prefix for service wiring.
func LoadRatesConfig() (billing.RateTable, billing.NetworkCosts, string, error) {
	cfg := RatesConfig{
		Rates: ratesYAML{
			SharedVolumePrice:           billing.DefaultRates.SharedVolumePrice,
			ComplementaryVolumePrice:    billing.DefaultRates.ComplementaryVolumePrice,
			SharedInjectionPrice:        billing.DefaultRates.SharedInjectionPrice,
			ComplementaryInjectionPrice: billing.DefaultRates.ComplementaryInjectionPrice,
			VATRatePercent:              billing.DefaultRates.VATRatePercent,
		},
		NumberPrefix: billing.DefaultInvoiceNumberPrefix,
	}

	if path := os.Getenv("BILLING_RATES_CONFIG"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return billing.RateTable{}, billing.NetworkCosts{}, "", err
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return billing.RateTable{}, billing.NetworkCosts{}, "", err
		}
	}

	applyFloatEnv("BILLING_SHARED_VOLUME_PRICE", &cfg.Rates.SharedVolumePrice)
	applyFloatEnv("BILLING_COMPLEMENTARY_VOLUME_PRICE", &cfg.Rates.ComplementaryVolumePrice)
	applyFloatEnv("BILLING_SHARED_INJECTION_PRICE", &cfg.Rates.SharedInjectionPrice)
	applyFloatEnv("BILLING_COMPLEMENTARY_INJECTION_PRICE", &cfg.Rates.ComplementaryInjectionPrice)
	applyFloatEnv("BILLING_VAT_RATE_PERCENT", &cfg.Rates.VATRatePercent)
	if prefix := os.Getenv("BILLING_INVOICE_NUMBER_PREFIX"); prefix != "" {
		cfg.NumberPrefix = prefix
	}

	rates := billing.RateTable{
		SharedVolumePrice:           cfg.Rates.SharedVolumePrice,
		ComplementaryVolumePrice:    cfg.Rates.ComplementaryVolumePrice,
		SharedInjectionPrice:        cfg.Rates.SharedInjectionPrice,
		ComplementaryInjectionPrice: cfg.Rates.ComplementaryInjectionPrice,
		VATRatePercent:              cfg.Rates.VATRatePercent,
	}
	costs := billing.NetworkCosts{
		NetworkUsage:            cfg.NetworkCosts.NetworkUsage,
		Surcharges:              cfg.NetworkCosts.Surcharges,
		CapacityTariff:          cfg.NetworkCosts.CapacityTariff,
		MeteringTariff:          cfg.NetworkCosts.MeteringTariff,
		PublicServiceObligation: cfg.NetworkCosts.PublicServiceObligation,
		TransportFee:            cfg.NetworkCosts.TransportFee,
		RoadUsageFee:            cfg.NetworkCosts.RoadUsageFee,
		GridFee:                 cfg.NetworkCosts.GridFee,
	}

	if err := rates.Validate(); err != nil {
		return billing.RateTable{}, billing.NetworkCosts{}, "", err
	}
	if err := costs.Validate(); err != nil {
		return billing.RateTable{}, billing.NetworkCosts{}, "", err
	}
	return rates, costs, cfg.NumberPrefix, nil
}

func applyFloatEnv(key string, target *float64) {
	value := os.Getenv(key)
	if value == "" {
		return
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return
	}
	*target = parsed
}
