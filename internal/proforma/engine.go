// Package proforma computes the stabilized proforma for a deal from its
// assumption inputs. Compute is pure: no I/O, no side effects, fully
// reproducible given identical input.
package proforma

import (
	"strings"

	"github.com/dealdesk/dealdesk/internal/model"
)

// Input holds the assumption values for one computation. Nil means the
// assumption is absent; the six pointer fields are required. ClosingCosts
// and CapexBudget default to zero when the assumptions omit them.
type Input struct {
	RentPSFYr     *float64
	SquareFeet    *float64
	VacancyRate   *float64
	OpexRatio     *float64
	CapRate       *float64
	PurchasePrice *float64
	ClosingCosts  float64
	CapexBudget   float64
}

// Output is the derived proforma. Immutable; every field is a deterministic
// function of the input.
type Output struct {
	GrossRevenue      float64
	EffectiveRevenue  float64
	OperatingExpenses float64
	NOIStabilized     float64
	ExitValue         float64
	TotalCost         float64
	Profit            float64
	ProfitMarginPct   float64
}

// requiredFields pairs each required input with its assumption key, in the
// order missing keys are reported.
var requiredFields = []struct {
	key string
	get func(*Input) *float64
}{
	{"rent_psf_yr", func(in *Input) *float64 { return in.RentPSFYr }},
	{"square_feet", func(in *Input) *float64 { return in.SquareFeet }},
	{"vacancy_rate", func(in *Input) *float64 { return in.VacancyRate }},
	{"opex_ratio", func(in *Input) *float64 { return in.OpexRatio }},
	{"cap_rate", func(in *Input) *float64 { return in.CapRate }},
	{"purchase_price", func(in *Input) *float64 { return in.PurchasePrice }},
}

// Compute derives the proforma output from in.
//
// Every missing required field is reported in a single validation error. A
// cap rate of exactly zero is rejected before the division. Vacancy rate and
// opex ratio are deliberately not range-checked: out-of-range inputs flow
// through the arithmetic unclamped.
func Compute(in Input) (*Output, error) {
	var missing []string
	for _, f := range requiredFields {
		if f.get(&in) == nil {
			missing = append(missing, f.key)
		}
	}
	if len(missing) > 0 {
		return nil, model.Validationf("proforma: missing required fields: %s", strings.Join(missing, ", "))
	}

	if *in.CapRate == 0.0 {
		return nil, model.Validationf("proforma: cap_rate must be non-zero")
	}

	grossRevenue := *in.RentPSFYr * *in.SquareFeet
	effectiveRevenue := grossRevenue * (1 - *in.VacancyRate)
	operatingExpenses := *in.OpexRatio * effectiveRevenue
	noi := effectiveRevenue - operatingExpenses

	exitValue := noi / *in.CapRate
	totalCost := *in.PurchasePrice + in.ClosingCosts + in.CapexBudget
	profit := exitValue - totalCost

	marginPct := 0.0
	if totalCost != 0 {
		marginPct = (profit / totalCost) * 100
	}

	return &Output{
		GrossRevenue:      grossRevenue,
		EffectiveRevenue:  effectiveRevenue,
		OperatingExpenses: operatingExpenses,
		NOIStabilized:     noi,
		ExitValue:         exitValue,
		TotalCost:         totalCost,
		Profit:            profit,
		ProfitMarginPct:   marginPct,
	}, nil
}
