package comps

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/dealdesk/dealdesk/internal/model"
)

// Aggregator fans out to every provider concurrently and merges their
// results. Provider order is preference order: on an address collision the
// earlier provider's comp wins.
type Aggregator struct {
	providers []Provider
}

// NewAggregator wires the aggregator. Providers are queried in the given
// order of preference.
func NewAggregator(providers ...Provider) *Aggregator {
	return &Aggregator{providers: providers}
}

// SearchComps queries all providers concurrently. A provider failure is
// absorbed into an empty contribution; the aggregate call never fails on a
// provider error.
func (a *Aggregator) SearchComps(ctx context.Context, deal *model.Deal, fields []model.ExtractedField) []model.Comp {
	results := make([][]model.Comp, len(a.providers))

	g, gctx := errgroup.WithContext(ctx)
	for i, p := range a.providers {
		g.Go(func() error {
			comps, err := p.SearchComps(gctx, deal, fields)
			if err != nil {
				zap.L().Warn("comps provider failed",
					zap.String("provider", p.Name()),
					zap.String("deal_id", deal.ID.String()),
					zap.Error(err))
				return nil
			}
			results[i] = comps
			return nil
		})
	}
	_ = g.Wait()

	seen := make(map[string]struct{})
	var merged []model.Comp
	for _, comps := range results {
		for _, c := range comps {
			key := c.DedupKey()
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			merged = append(merged, c)
		}
	}

	zap.L().Info("comps aggregated",
		zap.String("deal_id", deal.ID.String()),
		zap.Int("count", len(merged)))
	return merged
}
