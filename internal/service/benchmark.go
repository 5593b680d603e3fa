package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"

	"github.com/dealdesk/dealdesk/internal/model"
	"github.com/dealdesk/dealdesk/internal/store"
)

type benchmarker interface {
	Generate(ctx context.Context, city, state string, propertyType model.PropertyType) ([]model.BenchmarkSuggestion, error)
}

// BenchmarkService fills a deal's assumption set with AI market benchmarks.
type BenchmarkService struct {
	store store.Store
	gen   benchmarker
}

// NewBenchmarkService wires the benchmark service.
func NewBenchmarkService(st store.Store, gen benchmarker) *BenchmarkService {
	return &BenchmarkService{store: st, gen: gen}
}

// Generate produces market benchmarks for the deal's location and upserts
// them into the most recent assumption set. Keys already present in the set
// are overwritten with the fresh AI values.
func (s *BenchmarkService) Generate(ctx context.Context, dealID uuid.UUID) ([]model.Assumption, error) {
	deal, err := s.store.GetDeal(ctx, dealID)
	if err != nil {
		return nil, err
	}
	sets, err := s.store.ListAssumptionSets(ctx, dealID)
	if err != nil {
		return nil, err
	}
	if len(sets) == 0 {
		return nil, model.NotFoundf("deal %s has no assumption sets", dealID)
	}
	target := sets[0]

	suggestions, err := s.gen.Generate(ctx, deal.City, deal.State, deal.PropertyType)
	if err != nil {
		return nil, eris.Wrapf(err, "service: generate benchmarks for deal %s", dealID)
	}

	assumptions := make([]model.Assumption, 0, len(suggestions))
	for _, sg := range suggestions {
		value := sg.Value
		rangeMin := sg.RangeMin
		rangeMax := sg.RangeMax
		a := model.Assumption{
			SetID:       target.ID,
			Key:         sg.Key,
			ValueNumber: &value,
			RangeMin:    &rangeMin,
			RangeMax:    &rangeMax,
			SourceType:  model.SourceAI,
		}
		if sg.Unit != "" {
			unit := sg.Unit
			a.Unit = &unit
		}
		if sg.Source != "" {
			ref := sg.Source
			a.SourceRef = &ref
		}
		assumptions = append(assumptions, a)
	}

	if _, err := s.store.BulkUpsertAssumptions(ctx, assumptions); err != nil {
		return nil, eris.Wrapf(err, "service: persist benchmarks for set %s", target.ID)
	}
	return s.store.ListAssumptions(ctx, target.ID)
}
