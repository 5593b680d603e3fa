package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/dealdesk/dealdesk/internal/docproc"
	"github.com/dealdesk/dealdesk/internal/model"
	"github.com/dealdesk/dealdesk/internal/storage"
	"github.com/dealdesk/dealdesk/internal/store"
)

// Ingestion step names, in pipeline order.
const (
	stepExtractText     = "extract_text"
	stepExtractTables   = "extract_tables"
	stepNormalizeFields = "normalize_fields"
)

// Step statuses mirrored into the document's processing_steps list.
const (
	stepPending    = "pending"
	stepInProgress = "in_progress"
	stepComplete   = "complete"
	stepFailed     = "failed"
)

// pageExcerptLimit caps how much of each page feeds field normalization.
const pageExcerptLimit = 2000

type normalizer interface {
	Normalize(ctx context.Context, raw []model.RawField) ([]model.NormalizedField, error)
}

type dealExtractor interface {
	QuickExtract(ctx context.Context, pages []model.PageText) (*model.QuickExtract, error)
	ApplyQuickExtract(ctx context.Context, dealID uuid.UUID, qe *model.QuickExtract) error
}

// DocumentService handles uploads and drives each document through text
// extraction, table extraction, and field normalization.
type DocumentService struct {
	store store.Store
	files storage.FileStorage
	proc  docproc.Processor
	norm  normalizer
	deals dealExtractor
}

// NewDocumentService wires the document service.
func NewDocumentService(st store.Store, files storage.FileStorage, proc docproc.Processor, norm normalizer, deals dealExtractor) *DocumentService {
	return &DocumentService{store: st, files: files, proc: proc, norm: norm, deals: deals}
}

// Upload stores the file bytes and creates a pending document with all
// pipeline steps queued.
func (s *DocumentService) Upload(ctx context.Context, dealID uuid.UUID, docType model.DocumentType, filename string, data []byte) (*model.Document, error) {
	if len(data) == 0 {
		return nil, model.Validationf("document is empty")
	}
	if _, err := s.store.GetDeal(ctx, dealID); err != nil {
		return nil, err
	}

	path := fmt.Sprintf("documents/%s/%s", dealID, filename)
	if err := s.files.Store(data, path); err != nil {
		return nil, eris.Wrapf(err, "service: store upload %s", filename)
	}

	doc := model.Document{
		DealID:           dealID,
		DocumentType:     docType,
		FilePath:         path,
		OriginalFilename: filename,
		ProcessingStatus: model.ProcessingPending,
		ProcessingSteps: []model.ProcessingStep{
			{Name: stepExtractText, Status: stepPending},
			{Name: stepExtractTables, Status: stepPending},
			{Name: stepNormalizeFields, Status: stepPending},
		},
	}
	return s.store.CreateDocument(ctx, doc)
}

// Get returns the document with its current processing state.
func (s *DocumentService) Get(ctx context.Context, docID uuid.UUID) (*model.Document, error) {
	return s.store.GetDocument(ctx, docID)
}

// List returns the deal's documents, newest first.
func (s *DocumentService) List(ctx context.Context, dealID uuid.UUID) ([]model.Document, error) {
	return s.store.ListDocuments(ctx, dealID)
}

// Process runs the full ingestion pipeline on an uploaded document. A step
// failure marks the document failed with the step's error and stops the
// pipeline; earlier steps' output stays persisted.
func (s *DocumentService) Process(ctx context.Context, docID uuid.UUID) error {
	doc, err := s.store.GetDocument(ctx, docID)
	if err != nil {
		return err
	}
	log := zap.L().With(zap.String("document_id", docID.String()), zap.String("deal_id", doc.DealID.String()))

	path, err := s.files.Resolve(doc.FilePath)
	if err != nil {
		return s.fail(ctx, doc, stepExtractText, err)
	}

	// Text extraction
	s.setStatus(ctx, doc, model.ProcessingExtractingText)
	s.setStep(ctx, doc, stepExtractText, stepInProgress, "")
	pages, err := s.proc.ExtractText(ctx, path)
	if err != nil {
		return s.fail(ctx, doc, stepExtractText, err)
	}
	if err := s.store.UpdateDocumentPageCount(ctx, doc.ID, len(pages)); err != nil {
		log.Warn("failed to record page count", zap.Error(err))
	}
	s.setStep(ctx, doc, stepExtractText, stepComplete, fmt.Sprintf("%d pages", len(pages)))
	log.Info("extracted document text", zap.Int("pages", len(pages)))

	// Deal identity backfill is best effort.
	if qe, qeErr := s.deals.QuickExtract(ctx, pages); qeErr != nil {
		log.Warn("quick extract failed", zap.Error(qeErr))
	} else if applyErr := s.deals.ApplyQuickExtract(ctx, doc.DealID, qe); applyErr != nil {
		log.Warn("quick extract apply failed", zap.Error(applyErr))
	}

	// Table extraction
	s.setStatus(ctx, doc, model.ProcessingExtractingTables)
	s.setStep(ctx, doc, stepExtractTables, stepInProgress, "")
	tables, err := s.proc.ExtractTables(ctx, path)
	if err != nil {
		return s.fail(ctx, doc, stepExtractTables, err)
	}
	marketTables := make([]model.MarketTable, 0, len(tables))
	for _, t := range tables {
		page := t.PageNumber
		marketTables = append(marketTables, model.MarketTable{
			DocumentID: doc.ID,
			TableType:  classifyTable(t.Headers),
			Headers:    t.Headers,
			Rows:       t.Rows,
			SourcePage: &page,
			Confidence: t.Confidence,
		})
	}
	if _, err := s.store.CreateMarketTables(ctx, marketTables); err != nil {
		return s.fail(ctx, doc, stepExtractTables, err)
	}
	s.setStep(ctx, doc, stepExtractTables, stepComplete, fmt.Sprintf("%d tables", len(tables)))

	// Field normalization
	s.setStatus(ctx, doc, model.ProcessingNormalizing)
	s.setStep(ctx, doc, stepNormalizeFields, stepInProgress, "")
	normalized, err := s.norm.Normalize(ctx, rawFields(pages))
	if err != nil {
		return s.fail(ctx, doc, stepNormalizeFields, err)
	}
	fields := make([]model.ExtractedField, 0, len(normalized))
	for _, n := range normalized {
		fields = append(fields, model.ExtractedField{
			DocumentID:  doc.ID,
			FieldKey:    n.Key,
			ValueText:   n.ValueText,
			ValueNumber: n.ValueNumber,
			Unit:        n.Unit,
			Confidence:  n.Confidence,
		})
	}
	if _, err := s.store.CreateExtractedFields(ctx, fields); err != nil {
		return s.fail(ctx, doc, stepNormalizeFields, err)
	}
	s.setStep(ctx, doc, stepNormalizeFields, stepComplete, fmt.Sprintf("%d fields", len(fields)))

	s.setStatus(ctx, doc, model.ProcessingComplete)
	log.Info("document processing complete",
		zap.Int("tables", len(tables)),
		zap.Int("fields", len(fields)))
	return nil
}

func (s *DocumentService) setStatus(ctx context.Context, doc *model.Document, status model.ProcessingStatus) {
	doc.ProcessingStatus = status
	if err := s.store.UpdateDocumentStatus(ctx, doc.ID, status, ""); err != nil {
		zap.L().Warn("failed to update document status",
			zap.String("document_id", doc.ID.String()),
			zap.String("status", string(status)),
			zap.Error(err))
	}
}

func (s *DocumentService) setStep(ctx context.Context, doc *model.Document, name, status, detail string) {
	for i := range doc.ProcessingSteps {
		if doc.ProcessingSteps[i].Name == name {
			doc.ProcessingSteps[i].Status = status
			doc.ProcessingSteps[i].Detail = detail
		}
	}
	if err := s.store.UpdateDocumentSteps(ctx, doc.ID, doc.ProcessingSteps); err != nil {
		zap.L().Warn("failed to update document steps",
			zap.String("document_id", doc.ID.String()),
			zap.Error(err))
	}
}

func (s *DocumentService) fail(ctx context.Context, doc *model.Document, step string, err error) error {
	s.setStep(ctx, doc, step, stepFailed, err.Error())
	if updErr := s.store.UpdateDocumentStatus(ctx, doc.ID, model.ProcessingFailed, err.Error()); updErr != nil {
		zap.L().Warn("failed to mark document failed",
			zap.String("document_id", doc.ID.String()),
			zap.Error(updErr))
	}
	return eris.Wrapf(err, "service: process document %s: %s", doc.ID, step)
}

// rawFields trims each page to the excerpt the normalizer sees.
func rawFields(pages []model.PageText) []model.RawField {
	raw := make([]model.RawField, 0, len(pages))
	for _, p := range pages {
		text := p.Text
		if len(text) > pageExcerptLimit {
			text = text[:pageExcerptLimit]
		}
		if strings.TrimSpace(text) == "" {
			continue
		}
		raw = append(raw, model.RawField{Key: "page_text", Value: text, SourcePage: p.PageNumber})
	}
	return raw
}

// classifyTable guesses a table's type from its header row.
func classifyTable(headers []string) string {
	joined := strings.ToLower(strings.Join(headers, " "))
	switch {
	case strings.Contains(joined, "rent") || strings.Contains(joined, "unit"):
		return "rent_roll"
	case strings.Contains(joined, "expense") || strings.Contains(joined, "operating"):
		return "expenses"
	case strings.Contains(joined, "sale") || strings.Contains(joined, "comp"):
		return "sales_comps"
	default:
		return "other"
	}
}
