package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/dealdesk/dealdesk/internal/model"
	"github.com/dealdesk/dealdesk/internal/store"
	"github.com/dealdesk/dealdesk/internal/validation"
)

type validator interface {
	Validate(ctx context.Context, phase model.ValidationPhase, req validation.Request) ([]model.FieldValidationResult, []model.SearchStep, error)
}

// ValidationService runs the two-phase market validation and persists the
// verdicts per (deal, field) pair.
type ValidationService struct {
	store store.Store
	orch  validator
}

// NewValidationService wires the validation service.
func NewValidationService(st store.Store, orch validator) *ValidationService {
	return &ValidationService{store: st, orch: orch}
}

// List returns the deal's persisted validations.
func (s *ValidationService) List(ctx context.Context, dealID uuid.UUID) ([]model.FieldValidation, error) {
	return s.store.ListValidations(ctx, dealID)
}

// ValidateFields runs one phase of market validation for the deal. The deep
// phase feeds the persisted quick verdicts back into the prompt and carries
// the quick search trail forward, so the stored steps read quick-then-deep.
func (s *ValidationService) ValidateFields(ctx context.Context, dealID uuid.UUID, phase model.ValidationPhase) ([]model.FieldValidation, error) {
	deal, err := s.store.GetDeal(ctx, dealID)
	if err != nil {
		return nil, err
	}
	fields, err := s.store.ListNumericFields(ctx, dealID)
	if err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		zap.L().Info("no numeric fields to validate", zap.String("deal_id", dealID.String()))
		return []model.FieldValidation{}, nil
	}

	benchmarks, err := s.latestAssumptions(ctx, dealID)
	if err != nil {
		return nil, err
	}

	var prior []model.FieldValidationResult
	var priorSteps []model.SearchStep
	var persisted []model.FieldValidation
	if phase == model.PhaseDeep {
		persisted, err = s.store.ListValidations(ctx, dealID)
		if err != nil {
			return nil, err
		}
		prior = toResults(persisted)
		if len(persisted) > 0 {
			priorSteps = persisted[0].SearchSteps
		}
	}

	results, steps, err := s.orch.Validate(ctx, phase, validation.Request{
		Deal:       deal,
		Fields:     fields,
		Benchmarks: benchmarks,
		Prior:      prior,
	})
	if err != nil {
		return nil, eris.Wrapf(err, "service: %s validation for deal %s", phase, dealID)
	}

	if phase == model.PhaseDeep && len(results) == 0 {
		zap.L().Warn("deep validation produced no verdicts, keeping quick results",
			zap.String("deal_id", dealID.String()))
		return persisted, nil
	}

	allSteps := append(append([]model.SearchStep{}, priorSteps...), steps...)

	omValues := make(map[string]*float64, len(fields))
	for _, f := range fields {
		omValues[f.FieldKey] = f.ValueNumber
	}

	saved := make([]model.FieldValidation, 0, len(results))
	for _, r := range results {
		omValue := r.OMValue
		if omValue == nil {
			omValue = omValues[r.FieldKey]
		}
		v, err := s.store.UpsertValidation(ctx, model.FieldValidation{
			DealID:      dealID,
			FieldKey:    r.FieldKey,
			OMValue:     omValue,
			MarketValue: r.MarketValue,
			Status:      r.Status,
			Explanation: r.Explanation,
			Sources:     r.Sources,
			Confidence:  r.Confidence,
			SearchSteps: allSteps,
		})
		if err != nil {
			return nil, eris.Wrapf(err, "service: persist validation %s", r.FieldKey)
		}
		saved = append(saved, *v)
	}
	return saved, nil
}

// latestAssumptions returns the most recent assumption set's contents, or
// nothing when the deal has no sets yet.
func (s *ValidationService) latestAssumptions(ctx context.Context, dealID uuid.UUID) ([]model.Assumption, error) {
	sets, err := s.store.ListAssumptionSets(ctx, dealID)
	if err != nil {
		return nil, err
	}
	if len(sets) == 0 {
		return nil, nil
	}
	return s.store.ListAssumptions(ctx, sets[0].ID)
}

func toResults(validations []model.FieldValidation) []model.FieldValidationResult {
	results := make([]model.FieldValidationResult, 0, len(validations))
	for _, v := range validations {
		results = append(results, model.FieldValidationResult{
			FieldKey:    v.FieldKey,
			OMValue:     v.OMValue,
			MarketValue: v.MarketValue,
			Status:      v.Status,
			Explanation: v.Explanation,
			Sources:     v.Sources,
			Confidence:  v.Confidence,
		})
	}
	return results
}
