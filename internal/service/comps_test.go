package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dealdesk/dealdesk/internal/model"
)

type stubCompSearcher struct {
	comps []model.Comp
}

func (s *stubCompSearcher) SearchComps(context.Context, *model.Deal, []model.ExtractedField) []model.Comp {
	return s.comps
}

func TestCompsRefresh_ReplacesSet(t *testing.T) {
	st := &MockStore{}
	dealID := uuid.New()
	st.On("GetDeal", mock.Anything, dealID).Return(&model.Deal{ID: dealID, City: "Austin"}, nil)
	st.On("ListNumericFields", mock.Anything, dealID).Return([]model.ExtractedField{}, nil)
	st.On("ReplaceComps", mock.Anything, dealID, mock.MatchedBy(func(comps []model.Comp) bool {
		return len(comps) == 2 && comps[0].DealID == dealID && comps[1].DealID == dealID
	})).Return(nil)

	agg := &stubCompSearcher{comps: []model.Comp{
		{Address: "123 Main St", Source: model.CompSourceRentcast},
		{Address: "456 Oak Ave", Source: model.CompSourceTavily},
	}}

	svc := NewCompsService(st, agg)
	comps, err := svc.Refresh(context.Background(), dealID)
	require.NoError(t, err)
	assert.Len(t, comps, 2)
	st.AssertExpectations(t)
}

func TestCompsRefresh_EmptySearchKeepsExisting(t *testing.T) {
	st := &MockStore{}
	dealID := uuid.New()
	existing := []model.Comp{{DealID: dealID, Address: "123 Main St"}}

	st.On("GetDeal", mock.Anything, dealID).Return(&model.Deal{ID: dealID}, nil)
	st.On("ListNumericFields", mock.Anything, dealID).Return([]model.ExtractedField{}, nil)
	st.On("ListComps", mock.Anything, dealID).Return(existing, nil)

	svc := NewCompsService(st, &stubCompSearcher{})
	comps, err := svc.Refresh(context.Background(), dealID)
	require.NoError(t, err)
	assert.Equal(t, existing, comps)
	st.AssertNotCalled(t, "ReplaceComps", mock.Anything, mock.Anything, mock.Anything)
}

func TestCompsRefresh_DealNotFound(t *testing.T) {
	st := &MockStore{}
	dealID := uuid.New()
	st.On("GetDeal", mock.Anything, dealID).Return(nil, model.NotFoundf("deal %s", dealID))

	svc := NewCompsService(st, &stubCompSearcher{})
	_, err := svc.Refresh(context.Background(), dealID)
	require.Error(t, err)
	assert.True(t, model.IsNotFound(err))
}
