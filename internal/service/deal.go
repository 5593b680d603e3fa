// Package service composes the store, document processing, validation,
// comps, proforma, and export layers into the operations the CLI and HTTP
// API expose.
package service

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/dealdesk/dealdesk/internal/model"
	"github.com/dealdesk/dealdesk/internal/store"
	"github.com/dealdesk/dealdesk/pkg/anthropic"
)

// baseCaseName is the assumption set every deal starts with.
const baseCaseName = "Base Case"

// DealService manages deal lifecycle and the LLM quick extraction of deal
// identity from document text.
type DealService struct {
	store     store.Store
	llm       anthropic.Client
	model     string
	maxTokens int64
}

// NewDealService wires the deal service.
func NewDealService(st store.Store, llm anthropic.Client, llmModel string, maxTokens int64) *DealService {
	return &DealService{store: st, llm: llm, model: llmModel, maxTokens: maxTokens}
}

// Create persists a new deal and its base assumption set.
func (s *DealService) Create(ctx context.Context, deal model.Deal) (*model.Deal, error) {
	if strings.TrimSpace(deal.Name) == "" {
		return nil, model.Validationf("deal name is required")
	}

	created, err := s.store.CreateDeal(ctx, deal)
	if err != nil {
		return nil, eris.Wrap(err, "service: create deal")
	}
	if _, err := s.store.CreateAssumptionSet(ctx, created.ID, baseCaseName); err != nil {
		return nil, eris.Wrapf(err, "service: create base assumption set for deal %s", created.ID)
	}
	return created, nil
}

func (s *DealService) Get(ctx context.Context, dealID uuid.UUID) (*model.Deal, error) {
	return s.store.GetDeal(ctx, dealID)
}

func (s *DealService) List(ctx context.Context, filter model.DealFilter) ([]model.Deal, error) {
	return s.store.ListDeals(ctx, filter)
}

func (s *DealService) Update(ctx context.Context, deal model.Deal) error {
	return s.store.UpdateDeal(ctx, deal)
}

const quickExtractPrompt = `You are reading the opening pages of a commercial real estate Offering Memorandum.

Respond with ONLY a JSON object of this shape, using null for anything the text does not state:
{
  "name": "Oakwood Apartments",
  "address": "400 Elm St",
  "city": "Austin",
  "state": "TX",
  "property_type": "multifamily",
  "square_feet": 50000
}

property_type must be one of: multifamily, office, retail, industrial, mixed_use, other. Do not wrap the JSON in markdown fences.`

// quickExtractPageLimit bounds how many opening pages feed the extraction.
const quickExtractPageLimit = 3

// QuickExtract pulls basic deal identity from the opening pages of a
// document. An unparseable response yields an empty extract, not an error.
func (s *DealService) QuickExtract(ctx context.Context, pages []model.PageText) (*model.QuickExtract, error) {
	if len(pages) > quickExtractPageLimit {
		pages = pages[:quickExtractPageLimit]
	}

	var b strings.Builder
	for _, p := range pages {
		b.WriteString(p.Text)
		b.WriteString("\n\n")
	}

	resp, err := s.llm.CreateMessage(ctx, anthropic.MessageRequest{
		Model:     s.model,
		MaxTokens: s.maxTokens,
		System:    []anthropic.SystemBlock{{Text: quickExtractPrompt}},
		Messages:  []anthropic.Message{{Role: "user", Content: b.String()}},
	})
	if err != nil {
		return nil, eris.Wrap(err, "service: quick extract")
	}
	resp.Usage.LogCost(s.model, "quick_extract")

	return parseQuickExtract(resp.Text()), nil
}

// ApplyQuickExtract fills in deal fields the user left blank from the
// extracted values. Populated fields are never overwritten.
func (s *DealService) ApplyQuickExtract(ctx context.Context, dealID uuid.UUID, qe *model.QuickExtract) error {
	if qe == nil {
		return nil
	}
	deal, err := s.store.GetDeal(ctx, dealID)
	if err != nil {
		return err
	}

	changed := false
	if deal.Address == "" && qe.Address != nil {
		deal.Address = *qe.Address
		changed = true
	}
	if deal.City == "" && qe.City != nil {
		deal.City = *qe.City
		changed = true
	}
	if deal.State == "" && qe.State != nil {
		deal.State = *qe.State
		changed = true
	}
	if (deal.PropertyType == "" || deal.PropertyType == model.PropertyOther) && qe.PropertyType != nil {
		deal.PropertyType = model.ParsePropertyType(*qe.PropertyType, deal.PropertyType)
		changed = true
	}
	if deal.SquareFeet == nil && qe.SquareFeet != nil {
		deal.SquareFeet = qe.SquareFeet
		changed = true
	}
	if !changed {
		return nil
	}
	return s.store.UpdateDeal(ctx, *deal)
}

func parseQuickExtract(text string) *model.QuickExtract {
	cleaned := anthropic.CleanJSON(text)

	var qe model.QuickExtract
	if err := json.Unmarshal([]byte(cleaned), &qe); err != nil {
		zap.L().Warn("unparseable quick extract response", zap.Error(err))
		return &model.QuickExtract{}
	}
	return &qe
}
