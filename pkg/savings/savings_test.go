package savings

import (
	"errors"
	"testing"
)

func TestCalculateReferenceValues(t *testing.T) {
	// 2400 * 0.75 * (30/5) = 10800
	res, err := Calculate(Inputs{Usage: 300, Tariff: 8, Sunlight: 5, Efficiency: 75})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.MonthlyCost != 2400 {
		t.Fatalf("monthlyCost=%v want 2400", res.MonthlyCost)
	}
	if res.MonthlySavings != 10800 {
		t.Fatalf("monthlySavings=%v want 10800", res.MonthlySavings)
	}
	if res.YearlySavings != 129600 {
		t.Fatalf("yearlySavings=%v want 129600", res.YearlySavings)
	}
}

func TestCalculateRejectsZeroSunlight(t *testing.T) {
	_, err := Calculate(Inputs{Usage: 300, Tariff: 8, Sunlight: 0, Efficiency: 75})
	var iie *InvalidInputError
	if !errors.As(err, &iie) {
		t.Fatalf("expected InvalidInputError got %v", err)
	}
	if iie.Field != "sunlight" {
		t.Fatalf("field=%q want sunlight", iie.Field)
	}
}

func TestCalculateRejectsMissingUsageAndTariff(t *testing.T) {
	_, err := Calculate(Inputs{Usage: 0, Tariff: 8, Sunlight: 5, Efficiency: 75})
	var iie *InvalidInputError
	if !errors.As(err, &iie) || iie.Field != "usage" {
		t.Fatalf("expected usage error got %v", err)
	}
	_, err = Calculate(Inputs{Usage: 300, Tariff: -1, Sunlight: 5, Efficiency: 75})
	if !errors.As(err, &iie) || iie.Field != "tariff" {
		t.Fatalf("expected tariff error got %v", err)
	}
}

func TestNewInputsFillsDefaults(t *testing.T) {
	in := NewInputs(300, 8, nil, nil)
	if in.Sunlight != DefaultSunlightHours {
		t.Fatalf("sunlight=%v want %v", in.Sunlight, DefaultSunlightHours)
	}
	if in.Efficiency != DefaultEfficiencyPct {
		t.Fatalf("efficiency=%v want %v", in.Efficiency, DefaultEfficiencyPct)
	}
	sun, eff := 6.5, 80.0
	in = NewInputs(300, 8, &sun, &eff)
	if in.Sunlight != 6.5 || in.Efficiency != 80 {
		t.Fatalf("overrides not applied: %+v", in)
	}
}

func TestCalculatePermissiveEfficiency(t *testing.T) {
	// Out-of-range efficiency is unusual but deliberately not rejected.
	res, err := Calculate(Inputs{Usage: 100, Tariff: 10, Sunlight: 5, Efficiency: 150})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.MonthlySavings != 9000 {
		t.Fatalf("monthlySavings=%v want 9000", res.MonthlySavings)
	}
}

func TestRounded(t *testing.T) {
	r := Result{MonthlyCost: 10.005, MonthlySavings: 3.14159, YearlySavings: 2.675}
	got := r.Rounded()
	if got.MonthlyCost != 10.01 && got.MonthlyCost != 10 {
		// 10.005 is not exactly representable; either neighbor is fine.
		t.Fatalf("monthlyCost=%v", got.MonthlyCost)
	}
	if got.MonthlySavings != 3.14 {
		t.Fatalf("monthlySavings=%v want 3.14", got.MonthlySavings)
	}
}
