package service

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dealdesk/dealdesk/internal/model"
	"github.com/dealdesk/dealdesk/internal/storage"
)

func TestExport(t *testing.T) {
	st := &MockStore{}
	dealID := uuid.New()
	setID := uuid.New()

	st.On("GetDeal", mock.Anything, dealID).
		Return(&model.Deal{ID: dealID, Name: "Oakwood", City: "Austin", State: "TX", PropertyType: model.PropertyMultifamily}, nil)
	st.On("GetAssumptionSet", mock.Anything, setID).
		Return(&model.AssumptionSet{ID: setID, DealID: dealID, Name: "Base Case"}, nil)
	st.On("ListAssumptions", mock.Anything, setID).
		Return([]model.Assumption{{SetID: setID, Key: "cap_rate", ValueNumber: fp(0.065), SourceType: model.SourceAI}}, nil)
	st.On("ListValidations", mock.Anything, dealID).Return([]model.FieldValidation{}, nil)
	st.On("ListComps", mock.Anything, dealID).Return([]model.Comp{}, nil)
	st.On("LatestModelResult", mock.Anything, setID).
		Return(&model.ModelResult{SetID: setID, NOIStabilized: 926_250}, nil)
	st.On("CreateExport", mock.Anything, mock.MatchedBy(func(e model.Export) bool {
		return e.DealID == dealID && e.SetID == setID && e.ExportType == model.ExportXLSX && e.FilePath != ""
	})).Return(&model.Export{ID: uuid.New(), DealID: dealID, SetID: setID, FilePath: "exports/x.xlsx"}, nil)

	files := storage.NewLocal(t.TempDir())
	svc := NewExportService(st, files)

	exp, err := svc.Export(context.Background(), dealID, setID)
	require.NoError(t, err)
	assert.Equal(t, dealID, exp.DealID)

	// The workbook bytes must exist on disk.
	created := st.Calls[len(st.Calls)-1].Arguments.Get(1).(model.Export)
	path, err := files.Resolve(created.FilePath)
	require.NoError(t, err)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotEmpty(t, data)
	st.AssertExpectations(t)
}

func TestExport_SetMismatch(t *testing.T) {
	st := &MockStore{}
	dealID := uuid.New()
	setID := uuid.New()

	st.On("GetDeal", mock.Anything, dealID).Return(&model.Deal{ID: dealID, Name: "Oakwood"}, nil)
	st.On("GetAssumptionSet", mock.Anything, setID).
		Return(&model.AssumptionSet{ID: setID, DealID: uuid.New()}, nil)

	svc := NewExportService(st, storage.NewLocal(t.TempDir()))
	_, err := svc.Export(context.Background(), dealID, setID)
	require.Error(t, err)
	assert.True(t, model.IsValidation(err))
}
