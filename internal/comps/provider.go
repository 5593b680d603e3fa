// Package comps finds comparable property transactions for a deal from two
// independent providers and merges their results.
package comps

import (
	"context"

	"github.com/dealdesk/dealdesk/internal/model"
)

// Provider searches comparable transactions for a deal. Each implementation
// is independently fallible; callers absorb failures into an empty
// contribution.
type Provider interface {
	Name() string
	SearchComps(ctx context.Context, deal *model.Deal, fields []model.ExtractedField) ([]model.Comp, error)
}
