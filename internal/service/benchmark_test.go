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
)

type stubBenchmarker struct {
	suggestions []model.BenchmarkSuggestion
	err         error
	city        string
	state       string
}

func (s *stubBenchmarker) Generate(_ context.Context, city, state string, _ model.PropertyType) ([]model.BenchmarkSuggestion, error) {
	s.city = city
	s.state = state
	return s.suggestions, s.err
}

func TestBenchmarkGenerate(t *testing.T) {
	st := &MockStore{}
	dealID := uuid.New()
	setID := uuid.New()

	st.On("GetDeal", mock.Anything, dealID).
		Return(&model.Deal{ID: dealID, City: "Austin", State: "TX", PropertyType: model.PropertyMultifamily}, nil)
	st.On("ListAssumptionSets", mock.Anything, dealID).
		Return([]model.AssumptionSet{{ID: setID, DealID: dealID, Name: "Base Case"}}, nil)
	st.On("BulkUpsertAssumptions", mock.Anything, mock.MatchedBy(func(as []model.Assumption) bool {
		return len(as) == 2 &&
			as[0].SetID == setID &&
			as[0].SourceType == model.SourceAI &&
			as[0].Key == "cap_rate" &&
			*as[0].ValueNumber == 0.055
	})).Return(int64(2), nil)
	st.On("ListAssumptions", mock.Anything, setID).
		Return([]model.Assumption{{SetID: setID, Key: "cap_rate"}, {SetID: setID, Key: "vacancy_rate"}}, nil)

	gen := &stubBenchmarker{suggestions: []model.BenchmarkSuggestion{
		{Key: "cap_rate", Value: 0.055, RangeMin: 0.05, RangeMax: 0.06, Source: "CBRE H1 2026 cap rate survey", Confidence: 0.7},
		{Key: "vacancy_rate", Value: 0.07, RangeMin: 0.05, RangeMax: 0.09, Confidence: 0.6},
	}}

	svc := NewBenchmarkService(st, gen)
	assumptions, err := svc.Generate(context.Background(), dealID)
	require.NoError(t, err)
	assert.Len(t, assumptions, 2)
	assert.Equal(t, "Austin", gen.city)
	assert.Equal(t, "TX", gen.state)
	st.AssertExpectations(t)
}

func TestBenchmarkGenerate_NoSets(t *testing.T) {
	st := &MockStore{}
	dealID := uuid.New()
	st.On("GetDeal", mock.Anything, dealID).Return(&model.Deal{ID: dealID}, nil)
	st.On("ListAssumptionSets", mock.Anything, dealID).Return([]model.AssumptionSet{}, nil)

	svc := NewBenchmarkService(st, &stubBenchmarker{})
	_, err := svc.Generate(context.Background(), dealID)
	require.Error(t, err)
	assert.True(t, model.IsNotFound(err))
}

func TestBenchmarkGenerate_GeneratorError(t *testing.T) {
	st := &MockStore{}
	dealID := uuid.New()
	st.On("GetDeal", mock.Anything, dealID).Return(&model.Deal{ID: dealID}, nil)
	st.On("ListAssumptionSets", mock.Anything, dealID).
		Return([]model.AssumptionSet{{ID: uuid.New(), DealID: dealID}}, nil)

	svc := NewBenchmarkService(st, &stubBenchmarker{err: eris.New("benchmark: create message: 500")})
	_, err := svc.Generate(context.Background(), dealID)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "generate benchmarks")
}
