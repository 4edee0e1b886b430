package calculator

import (
	"testing"

	"globlex/internal/model"
)

func TestValidateConfig_Default(t *testing.T) {
	if errs := ValidateConfig(model.DefaultCostConfig()); len(errs) != 0 {
		t.Fatalf("default config should be valid, got: %v", errs)
	}
}

func TestValidateConfig_Rules(t *testing.T) {
	cfg := model.DefaultCostConfig()
	cfg.MarkupPercent = -1
	cfg.Expenses.Rental = -10
	cfg.Rates.Multipliers[model.CurrencySAR] = 0

	errs := ValidateConfig(cfg)
	for _, want := range []string{
		"markupPercent must be >= 0",
		`operating expense "Rental" must be >= 0`,
		"conversion rate for SAR must be > 0",
	} {
		if !containsString(errs, want) {
			t.Errorf("expected %q in %v", want, errs)
		}
	}
}

func TestValidateRow(t *testing.T) {
	if errs := ValidateRow(model.ProductRow{UnitCost: 1, Units: 1}); len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	errs := ValidateRow(model.ProductRow{UnitCost: -1, Units: 0})
	if len(errs) != 2 {
		t.Fatalf("expected 2 errors, got %v", errs)
	}
}

func containsString(items []string, want string) bool {
	for _, it := range items {
		if it == want {
			return true
		}
	}
	return false
}
