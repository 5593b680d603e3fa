package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dealdesk/dealdesk/internal/model"
	"github.com/dealdesk/dealdesk/internal/validation"
)

type stubValidator struct {
	results []model.FieldValidationResult
	steps   []model.SearchStep
	err     error
	phase   model.ValidationPhase
	req     validation.Request
}

func (s *stubValidator) Validate(_ context.Context, phase model.ValidationPhase, req validation.Request) ([]model.FieldValidationResult, []model.SearchStep, error) {
	s.phase = phase
	s.req = req
	return s.results, s.steps, s.err
}

func validationFixtures(t *testing.T, st *MockStore) uuid.UUID {
	t.Helper()
	dealID := uuid.New()
	rent := 30.0
	setID := uuid.New()

	st.On("GetDeal", mock.Anything, dealID).
		Return(&model.Deal{ID: dealID, Name: "Oakwood", City: "Austin", State: "TX", PropertyType: model.PropertyMultifamily}, nil)
	st.On("ListNumericFields", mock.Anything, dealID).
		Return([]model.ExtractedField{{FieldKey: "rent_psf_yr", ValueNumber: &rent, Confidence: 0.9}}, nil)
	st.On("ListAssumptionSets", mock.Anything, dealID).
		Return([]model.AssumptionSet{{ID: setID, DealID: dealID, Name: "Base Case"}}, nil)
	st.On("ListAssumptions", mock.Anything, setID).
		Return([]model.Assumption{{SetID: setID, Key: "rent_psf_yr", SourceType: model.SourceAI}}, nil)
	return dealID
}

func TestValidateFields_QuickPersistsVerdicts(t *testing.T) {
	st := &MockStore{}
	dealID := validationFixtures(t, st)

	market := 26.0
	orch := &stubValidator{
		results: []model.FieldValidationResult{
			{FieldKey: "rent_psf_yr", MarketValue: &market, Status: model.StatusAboveMarket, Explanation: "above submarket", Confidence: 0.8},
		},
		steps: []model.SearchStep{{Phase: model.PhaseQuick, Query: "austin rent psf", Results: []model.SearchHit{}}},
	}

	st.On("UpsertValidation", mock.Anything, mock.MatchedBy(func(v model.FieldValidation) bool {
		return v.DealID == dealID &&
			v.FieldKey == "rent_psf_yr" &&
			v.OMValue != nil && *v.OMValue == 30.0 && // backfilled from the extracted field
			len(v.SearchSteps) == 1 &&
			v.SearchSteps[0].Phase == model.PhaseQuick
	})).Return(&model.FieldValidation{ID: uuid.New(), DealID: dealID, FieldKey: "rent_psf_yr", Status: model.StatusAboveMarket}, nil)

	svc := NewValidationService(st, orch)
	saved, err := svc.ValidateFields(context.Background(), dealID, model.PhaseQuick)
	require.NoError(t, err)
	require.Len(t, saved, 1)
	assert.Equal(t, model.PhaseQuick, orch.phase)
	assert.Empty(t, orch.req.Prior)
	st.AssertExpectations(t)
}

func TestValidateFields_DeepCarriesQuickStepsAndPrior(t *testing.T) {
	st := &MockStore{}
	dealID := validationFixtures(t, st)

	quickStep := model.SearchStep{Phase: model.PhaseQuick, Query: "austin rent psf", Results: []model.SearchHit{}}
	st.On("ListValidations", mock.Anything, dealID).
		Return([]model.FieldValidation{{
			DealID:      dealID,
			FieldKey:    "rent_psf_yr",
			Status:      model.StatusAboveMarket,
			SearchSteps: []model.SearchStep{quickStep},
		}}, nil)

	market := 25.0
	orch := &stubValidator{
		results: []model.FieldValidationResult{
			{FieldKey: "rent_psf_yr", MarketValue: &market, Status: model.StatusAboveMarket, Explanation: "confirmed", Confidence: 0.9},
		},
		steps: []model.SearchStep{{Phase: model.PhaseDeep, Query: "austin class b office asking rents 2026", Results: []model.SearchHit{}}},
	}

	st.On("UpsertValidation", mock.Anything, mock.MatchedBy(func(v model.FieldValidation) bool {
		return len(v.SearchSteps) == 2 &&
			v.SearchSteps[0].Phase == model.PhaseQuick &&
			v.SearchSteps[1].Phase == model.PhaseDeep
	})).Return(&model.FieldValidation{ID: uuid.New(), FieldKey: "rent_psf_yr"}, nil)

	svc := NewValidationService(st, orch)
	_, err := svc.ValidateFields(context.Background(), dealID, model.PhaseDeep)
	require.NoError(t, err)
	require.Len(t, orch.req.Prior, 1)
	assert.Equal(t, "rent_psf_yr", orch.req.Prior[0].FieldKey)
	st.AssertExpectations(t)
}

func TestValidateFields_DeepEmptyKeepsQuickResults(t *testing.T) {
	st := &MockStore{}
	dealID := validationFixtures(t, st)

	persisted := []model.FieldValidation{{DealID: dealID, FieldKey: "rent_psf_yr", Status: model.StatusAboveMarket}}
	st.On("ListValidations", mock.Anything, dealID).Return(persisted, nil)

	svc := NewValidationService(st, &stubValidator{})
	saved, err := svc.ValidateFields(context.Background(), dealID, model.PhaseDeep)
	require.NoError(t, err)
	assert.Equal(t, persisted, saved)
	st.AssertNotCalled(t, "UpsertValidation", mock.Anything, mock.Anything)
}

func TestValidateFields_NoNumericFieldsSkipsLLM(t *testing.T) {
	st := &MockStore{}
	dealID := uuid.New()
	st.On("GetDeal", mock.Anything, dealID).Return(&model.Deal{ID: dealID}, nil)
	st.On("ListNumericFields", mock.Anything, dealID).Return([]model.ExtractedField{}, nil)

	orch := &stubValidator{}
	svc := NewValidationService(st, orch)
	saved, err := svc.ValidateFields(context.Background(), dealID, model.PhaseQuick)
	require.NoError(t, err)
	assert.Empty(t, saved)
	assert.Empty(t, orch.phase)
	st.AssertNotCalled(t, "ListAssumptionSets", mock.Anything, mock.Anything)
}

func TestValidateFields_OrchestratorError(t *testing.T) {
	st := &MockStore{}
	dealID := validationFixtures(t, st)

	svc := NewValidationService(st, &stubValidator{err: eris.New("validation: create message: 500")})
	_, err := svc.ValidateFields(context.Background(), dealID, model.PhaseQuick)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "quick validation")
}
