package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/dealdesk/dealdesk/internal/model"
)

// MockStore is a testify mock of store.Store.
type MockStore struct {
	mock.Mock
}

func (m *MockStore) CreateDeal(ctx context.Context, deal model.Deal) (*model.Deal, error) {
	args := m.Called(ctx, deal)
	if d := args.Get(0); d != nil {
		return d.(*model.Deal), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockStore) GetDeal(ctx context.Context, dealID uuid.UUID) (*model.Deal, error) {
	args := m.Called(ctx, dealID)
	if d := args.Get(0); d != nil {
		return d.(*model.Deal), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockStore) UpdateDeal(ctx context.Context, deal model.Deal) error {
	return m.Called(ctx, deal).Error(0)
}

func (m *MockStore) ListDeals(ctx context.Context, filter model.DealFilter) ([]model.Deal, error) {
	args := m.Called(ctx, filter)
	if d := args.Get(0); d != nil {
		return d.([]model.Deal), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockStore) CreateDocument(ctx context.Context, doc model.Document) (*model.Document, error) {
	args := m.Called(ctx, doc)
	if d := args.Get(0); d != nil {
		return d.(*model.Document), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockStore) GetDocument(ctx context.Context, docID uuid.UUID) (*model.Document, error) {
	args := m.Called(ctx, docID)
	if d := args.Get(0); d != nil {
		return d.(*model.Document), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockStore) ListDocuments(ctx context.Context, dealID uuid.UUID) ([]model.Document, error) {
	args := m.Called(ctx, dealID)
	if d := args.Get(0); d != nil {
		return d.([]model.Document), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockStore) UpdateDocumentStatus(ctx context.Context, docID uuid.UUID, status model.ProcessingStatus, errMsg string) error {
	return m.Called(ctx, docID, status, errMsg).Error(0)
}

func (m *MockStore) UpdateDocumentSteps(ctx context.Context, docID uuid.UUID, steps []model.ProcessingStep) error {
	return m.Called(ctx, docID, steps).Error(0)
}

func (m *MockStore) UpdateDocumentPageCount(ctx context.Context, docID uuid.UUID, pages int) error {
	return m.Called(ctx, docID, pages).Error(0)
}

func (m *MockStore) CreateExtractedFields(ctx context.Context, fields []model.ExtractedField) (int64, error) {
	args := m.Called(ctx, fields)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockStore) ListNumericFields(ctx context.Context, dealID uuid.UUID) ([]model.ExtractedField, error) {
	args := m.Called(ctx, dealID)
	if d := args.Get(0); d != nil {
		return d.([]model.ExtractedField), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockStore) CreateMarketTables(ctx context.Context, tables []model.MarketTable) (int64, error) {
	args := m.Called(ctx, tables)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockStore) ListMarketTables(ctx context.Context, docID uuid.UUID) ([]model.MarketTable, error) {
	args := m.Called(ctx, docID)
	if d := args.Get(0); d != nil {
		return d.([]model.MarketTable), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockStore) CreateAssumptionSet(ctx context.Context, dealID uuid.UUID, name string) (*model.AssumptionSet, error) {
	args := m.Called(ctx, dealID, name)
	if d := args.Get(0); d != nil {
		return d.(*model.AssumptionSet), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockStore) GetAssumptionSet(ctx context.Context, setID uuid.UUID) (*model.AssumptionSet, error) {
	args := m.Called(ctx, setID)
	if d := args.Get(0); d != nil {
		return d.(*model.AssumptionSet), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockStore) ListAssumptionSets(ctx context.Context, dealID uuid.UUID) ([]model.AssumptionSet, error) {
	args := m.Called(ctx, dealID)
	if d := args.Get(0); d != nil {
		return d.([]model.AssumptionSet), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockStore) ListAssumptions(ctx context.Context, setID uuid.UUID) ([]model.Assumption, error) {
	args := m.Called(ctx, setID)
	if d := args.Get(0); d != nil {
		return d.([]model.Assumption), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockStore) UpsertAssumption(ctx context.Context, a model.Assumption) (*model.Assumption, error) {
	args := m.Called(ctx, a)
	if d := args.Get(0); d != nil {
		return d.(*model.Assumption), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockStore) BulkUpsertAssumptions(ctx context.Context, assumptions []model.Assumption) (int64, error) {
	args := m.Called(ctx, assumptions)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockStore) ListValidations(ctx context.Context, dealID uuid.UUID) ([]model.FieldValidation, error) {
	args := m.Called(ctx, dealID)
	if d := args.Get(0); d != nil {
		return d.([]model.FieldValidation), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockStore) UpsertValidation(ctx context.Context, v model.FieldValidation) (*model.FieldValidation, error) {
	args := m.Called(ctx, v)
	if d := args.Get(0); d != nil {
		return d.(*model.FieldValidation), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockStore) ListComps(ctx context.Context, dealID uuid.UUID) ([]model.Comp, error) {
	args := m.Called(ctx, dealID)
	if d := args.Get(0); d != nil {
		return d.([]model.Comp), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockStore) ReplaceComps(ctx context.Context, dealID uuid.UUID, comps []model.Comp) error {
	return m.Called(ctx, dealID, comps).Error(0)
}

func (m *MockStore) CreateModelResult(ctx context.Context, r model.ModelResult) (*model.ModelResult, error) {
	args := m.Called(ctx, r)
	if d := args.Get(0); d != nil {
		return d.(*model.ModelResult), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockStore) LatestModelResult(ctx context.Context, setID uuid.UUID) (*model.ModelResult, error) {
	args := m.Called(ctx, setID)
	if d := args.Get(0); d != nil {
		return d.(*model.ModelResult), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockStore) CreateExport(ctx context.Context, e model.Export) (*model.Export, error) {
	args := m.Called(ctx, e)
	if d := args.Get(0); d != nil {
		return d.(*model.Export), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockStore) ListExports(ctx context.Context, dealID uuid.UUID) ([]model.Export, error) {
	args := m.Called(ctx, dealID)
	if d := args.Get(0); d != nil {
		return d.([]model.Export), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockStore) Migrate(ctx context.Context) error { return m.Called(ctx).Error(0) }
func (m *MockStore) Ping(ctx context.Context) error    { return m.Called(ctx).Error(0) }
func (m *MockStore) Close() error                      { return m.Called().Error(0) }
