package application

import (
	"os"
	"path/filepath"
	"testing"

	billing "enercom-billing/internal/billing/domain"
)

func TestLoadRatesConfigDefaults(t *testing.T) {
	rates, costs, prefix, err := LoadRatesConfig()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if rates != billing.DefaultRates {
		t.Fatalf("expected default rates, got %+v", rates)
	}
	if costs.Total() != 0 {
		t.Fatalf("expected zero network costs, got %v", costs.Total())
	}
	if prefix != billing.DefaultInvoiceNumberPrefix {
		t.Fatalf("expected default prefix, got %s", prefix)
	}
}

func TestLoadRatesConfigFromYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rates.yaml")
	content := `rates:
  shared_volume_price: 0.18
  complementary_volume_price: 0.32
  shared_injection_price: 0.08
  complementary_injection_price: 0.03
  vat_rate_percent: 6
network_costs:
  network_usage: 12.5
  grid_fee: 4.5
invoice_number_prefix: FAC
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("BILLING_RATES_CONFIG", path)

	rates, costs, prefix, err := LoadRatesConfig()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if rates.SharedVolumePrice != 0.18 || rates.VATRatePercent != 6 {
		t.Fatalf("yaml rates not applied: %+v", rates)
	}
	if costs.Total() != 17 {
		t.Fatalf("yaml network costs not applied: got %v want 17", costs.Total())
	}
	if prefix != "FAC" {
		t.Fatalf("prefix: got %s want FAC", prefix)
	}
}

func TestLoadRatesConfigEnvOverride(t *testing.T) {
	t.Setenv("BILLING_VAT_RATE_PERCENT", "6")
	rates, _, _, err := LoadRatesConfig()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if rates.VATRatePercent != 6 {
		t.Fatalf("env override not applied: %v", rates.VATRatePercent)
	}
}

func TestLoadRatesConfigRejectsInvalidVAT(t *testing.T) {
	t.Setenv("BILLING_VAT_RATE_PERCENT", "140")
	if _, _, _, err := LoadRatesConfig(); err == nil {
		t.Fatalf("expected validation error for vat > 100")
	}
}
