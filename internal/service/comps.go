package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/dealdesk/dealdesk/internal/model"
	"github.com/dealdesk/dealdesk/internal/store"
)

type compSearcher interface {
	SearchComps(ctx context.Context, deal *model.Deal, fields []model.ExtractedField) []model.Comp
}

// CompsService refreshes and lists comparable transactions for a deal.
type CompsService struct {
	store store.Store
	agg   compSearcher
}

// NewCompsService wires the comps service.
func NewCompsService(st store.Store, agg compSearcher) *CompsService {
	return &CompsService{store: st, agg: agg}
}

// List returns the deal's persisted comps.
func (s *CompsService) List(ctx context.Context, dealID uuid.UUID) ([]model.Comp, error) {
	return s.store.ListComps(ctx, dealID)
}

// Refresh searches all providers and replaces the deal's comps with the
// fresh set. An empty search keeps the prior comps in place.
func (s *CompsService) Refresh(ctx context.Context, dealID uuid.UUID) ([]model.Comp, error) {
	deal, err := s.store.GetDeal(ctx, dealID)
	if err != nil {
		return nil, err
	}
	fields, err := s.store.ListNumericFields(ctx, dealID)
	if err != nil {
		return nil, err
	}

	found := s.agg.SearchComps(ctx, deal, fields)
	if len(found) == 0 {
		zap.L().Warn("comp search returned nothing, keeping existing comps",
			zap.String("deal_id", dealID.String()))
		return s.store.ListComps(ctx, dealID)
	}

	for i := range found {
		found[i].DealID = dealID
	}
	if err := s.store.ReplaceComps(ctx, dealID, found); err != nil {
		return nil, eris.Wrapf(err, "service: replace comps for deal %s", dealID)
	}
	return found, nil
}
