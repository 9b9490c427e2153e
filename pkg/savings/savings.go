// Package savings computes the solar savings estimate from usage and
// tariff figures, either extracted from a bill or entered manually.
package savings

import (
	"fmt"
	"math"
)

// Assumed averages used when a caller supplies no value.
const (
	DefaultSunlightHours = 5  // hours of usable sunlight per day
	DefaultEfficiencyPct = 75 // panel system efficiency in percent
)

// Inputs are the validated calculation inputs. Usage and tariff are
// mandatory; sunlight and efficiency carry defaults.
type Inputs struct {
	Usage      float64
	Tariff     float64
	Sunlight   float64
	Efficiency float64
}

// NewInputs fills the sunlight/efficiency defaults when the caller did not
// supply them. Defaults live here at the input boundary so Calculate stays
// deterministic and usable standalone.
func NewInputs(usage, tariff float64, sunlight, efficiency *float64) Inputs {
	in := Inputs{
		Usage:      usage,
		Tariff:     tariff,
		Sunlight:   DefaultSunlightHours,
		Efficiency: DefaultEfficiencyPct,
	}
	if sunlight != nil {
		in.Sunlight = *sunlight
	}
	if efficiency != nil {
		in.Efficiency = *efficiency
	}
	return in
}

// InvalidInputError reports which calculation input failed validation.
type InvalidInputError struct {
	Field  string
	Reason string
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Result holds the computed savings figures, unrounded. Round only at the
// persistence/response boundary via Rounded to avoid compounding error.
type Result struct {
	MonthlyCost    float64 `json:"monthlyCost"`
	MonthlySavings float64 `json:"monthlySavings"`
	YearlySavings  float64 `json:"yearlySavings"`
}

// Validate rejects non-positive usage, tariff, and sunlight (sunlight
// divides, so zero is a hard error). Efficiency outside [0,100] is unusual
// but deliberately passed through rather than clamped or rejected.
func (in Inputs) Validate() error {
	if in.Usage <= 0 {
		return &InvalidInputError{Field: "usage", Reason: "must be a positive number"}
	}
	if in.Tariff <= 0 {
		return &InvalidInputError{Field: "tariff", Reason: "must be a positive number"}
	}
	if in.Sunlight <= 0 {
		return &InvalidInputError{Field: "sunlight", Reason: "must be a positive number"}
	}
	return nil
}

// Calculate validates the inputs and applies the savings formula:
//
//	monthlyCost    = usage * tariff
//	monthlySavings = (monthlyCost * (efficiency / 100)) * (30 / sunlight)
//	yearlySavings  = monthlySavings * 12
func Calculate(in Inputs) (Result, error) {
	if err := in.Validate(); err != nil {
		return Result{}, err
	}
	monthlyCost := in.Usage * in.Tariff
	monthlySavings := (monthlyCost * (in.Efficiency / 100)) * (30 / in.Sunlight)
	return Result{
		MonthlyCost:    monthlyCost,
		MonthlySavings: monthlySavings,
		YearlySavings:  monthlySavings * 12,
	}, nil
}

// Rounded returns a copy with all values rounded to 2 decimal places, for
// persistence and responses.
func (r Result) Rounded() Result {
	return Result{
		MonthlyCost:    round2(r.MonthlyCost),
		MonthlySavings: round2(r.MonthlySavings),
		YearlySavings:  round2(r.YearlySavings),
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
