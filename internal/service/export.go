package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"

	"github.com/dealdesk/dealdesk/internal/export"
	"github.com/dealdesk/dealdesk/internal/model"
	"github.com/dealdesk/dealdesk/internal/storage"
	"github.com/dealdesk/dealdesk/internal/store"
)

// ExportService renders deal evaluations to xlsx and records the artifacts.
type ExportService struct {
	store store.Store
	files storage.FileStorage
}

// NewExportService wires the export service.
func NewExportService(st store.Store, files storage.FileStorage) *ExportService {
	return &ExportService{store: st, files: files}
}

// List returns the deal's export history, newest first.
func (s *ExportService) List(ctx context.Context, dealID uuid.UUID) ([]model.Export, error) {
	return s.store.ListExports(ctx, dealID)
}

// Resolve returns the on-disk location of an export's workbook.
func (s *ExportService) Resolve(path string) (string, error) {
	return s.files.Resolve(path)
}

// Export renders the deal and assumption set into an xlsx workbook, stores
// it, and records the export.
func (s *ExportService) Export(ctx context.Context, dealID, setID uuid.UUID) (*model.Export, error) {
	deal, err := s.store.GetDeal(ctx, dealID)
	if err != nil {
		return nil, err
	}
	set, err := s.store.GetAssumptionSet(ctx, setID)
	if err != nil {
		return nil, err
	}
	if set.DealID != dealID {
		return nil, model.Validationf("assumption set %s does not belong to deal %s", setID, dealID)
	}

	assumptions, err := s.store.ListAssumptions(ctx, setID)
	if err != nil {
		return nil, err
	}
	validations, err := s.store.ListValidations(ctx, dealID)
	if err != nil {
		return nil, err
	}
	comps, err := s.store.ListComps(ctx, dealID)
	if err != nil {
		return nil, err
	}
	result, err := s.store.LatestModelResult(ctx, setID)
	if err != nil {
		return nil, err
	}

	data, err := export.Workbook(export.Input{
		Deal:        deal,
		Set:         set,
		Assumptions: assumptions,
		Validations: validations,
		Comps:       comps,
		Result:      result,
	})
	if err != nil {
		return nil, eris.Wrapf(err, "service: render export for deal %s", dealID)
	}

	path := fmt.Sprintf("exports/%s/%s_%d.xlsx", dealID, setID, time.Now().UTC().Unix())
	if err := s.files.Store(data, path); err != nil {
		return nil, eris.Wrapf(err, "service: store export for deal %s", dealID)
	}

	return s.store.CreateExport(ctx, model.Export{
		DealID:     dealID,
		SetID:      setID,
		FilePath:   path,
		ExportType: model.ExportXLSX,
	})
}
