package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"

	"github.com/dealdesk/dealdesk/internal/model"
	"github.com/dealdesk/dealdesk/internal/proforma"
	"github.com/dealdesk/dealdesk/internal/store"
)

// ProformaService computes and persists model results for assumption sets.
type ProformaService struct {
	store store.Store
}

// NewProformaService wires the proforma service.
func NewProformaService(st store.Store) *ProformaService {
	return &ProformaService{store: st}
}

// Compute runs the proforma for the set's current assumptions and persists
// the result. The deal's square footage backfills a missing square_feet
// assumption; everything else must come from the set.
func (s *ProformaService) Compute(ctx context.Context, setID uuid.UUID) (*model.ModelResult, error) {
	set, err := s.store.GetAssumptionSet(ctx, setID)
	if err != nil {
		return nil, err
	}
	assumptions, err := s.store.ListAssumptions(ctx, setID)
	if err != nil {
		return nil, err
	}

	in := buildInput(assumptions)
	if in.SquareFeet == nil {
		deal, err := s.store.GetDeal(ctx, set.DealID)
		if err != nil {
			return nil, err
		}
		in.SquareFeet = deal.SquareFeet
	}

	out, err := proforma.Compute(in)
	if err != nil {
		return nil, err
	}

	result, err := s.store.CreateModelResult(ctx, model.ModelResult{
		SetID:           setID,
		NOIStabilized:   out.NOIStabilized,
		ExitValue:       out.ExitValue,
		TotalCost:       out.TotalCost,
		Profit:          out.Profit,
		ProfitMarginPct: out.ProfitMarginPct,
	})
	if err != nil {
		return nil, eris.Wrapf(err, "service: persist model result for set %s", setID)
	}
	return result, nil
}

// Latest returns the set's most recent result, or nil when never computed.
func (s *ProformaService) Latest(ctx context.Context, setID uuid.UUID) (*model.ModelResult, error) {
	return s.store.LatestModelResult(ctx, setID)
}

func buildInput(assumptions []model.Assumption) proforma.Input {
	values := make(map[string]*float64, len(assumptions))
	for _, a := range assumptions {
		values[a.Key] = a.ValueNumber
	}

	in := proforma.Input{
		RentPSFYr:     values["rent_psf_yr"],
		SquareFeet:    values["square_feet"],
		VacancyRate:   values["vacancy_rate"],
		OpexRatio:     values["opex_ratio"],
		CapRate:       values["cap_rate"],
		PurchasePrice: values["purchase_price"],
	}
	if v := values["closing_costs"]; v != nil {
		in.ClosingCosts = *v
	}
	if v := values["capex_budget"]; v != nil {
		in.CapexBudget = *v
	}
	return in
}
