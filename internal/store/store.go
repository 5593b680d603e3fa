package store

import (
	"context"

	"github.com/google/uuid"

	"github.com/dealdesk/dealdesk/internal/model"
)

// Store defines the persistence interface for the deal evaluation pipeline.
type Store interface {
	// Deals
	CreateDeal(ctx context.Context, deal model.Deal) (*model.Deal, error)
	GetDeal(ctx context.Context, dealID uuid.UUID) (*model.Deal, error)
	UpdateDeal(ctx context.Context, deal model.Deal) error
	ListDeals(ctx context.Context, filter model.DealFilter) ([]model.Deal, error)

	// Documents
	CreateDocument(ctx context.Context, doc model.Document) (*model.Document, error)
	GetDocument(ctx context.Context, docID uuid.UUID) (*model.Document, error)
	ListDocuments(ctx context.Context, dealID uuid.UUID) ([]model.Document, error)
	UpdateDocumentStatus(ctx context.Context, docID uuid.UUID, status model.ProcessingStatus, errMsg string) error
	UpdateDocumentSteps(ctx context.Context, docID uuid.UUID, steps []model.ProcessingStep) error
	UpdateDocumentPageCount(ctx context.Context, docID uuid.UUID, pages int) error

	// Extracted fields and tables
	CreateExtractedFields(ctx context.Context, fields []model.ExtractedField) (int64, error)
	ListNumericFields(ctx context.Context, dealID uuid.UUID) ([]model.ExtractedField, error)
	CreateMarketTables(ctx context.Context, tables []model.MarketTable) (int64, error)
	ListMarketTables(ctx context.Context, docID uuid.UUID) ([]model.MarketTable, error)

	// Assumption sets
	CreateAssumptionSet(ctx context.Context, dealID uuid.UUID, name string) (*model.AssumptionSet, error)
	GetAssumptionSet(ctx context.Context, setID uuid.UUID) (*model.AssumptionSet, error)
	ListAssumptionSets(ctx context.Context, dealID uuid.UUID) ([]model.AssumptionSet, error)
	ListAssumptions(ctx context.Context, setID uuid.UUID) ([]model.Assumption, error)
	UpsertAssumption(ctx context.Context, a model.Assumption) (*model.Assumption, error)
	BulkUpsertAssumptions(ctx context.Context, assumptions []model.Assumption) (int64, error)

	// Field validations
	ListValidations(ctx context.Context, dealID uuid.UUID) ([]model.FieldValidation, error)
	UpsertValidation(ctx context.Context, v model.FieldValidation) (*model.FieldValidation, error)

	// Comps
	ListComps(ctx context.Context, dealID uuid.UUID) ([]model.Comp, error)
	ReplaceComps(ctx context.Context, dealID uuid.UUID, comps []model.Comp) error

	// Model results and exports
	CreateModelResult(ctx context.Context, r model.ModelResult) (*model.ModelResult, error)
	LatestModelResult(ctx context.Context, setID uuid.UUID) (*model.ModelResult, error)
	CreateExport(ctx context.Context, e model.Export) (*model.Export, error)
	ListExports(ctx context.Context, dealID uuid.UUID) ([]model.Export, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Ping(ctx context.Context) error
	Close() error
}
