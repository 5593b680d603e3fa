package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Comp is a comparable property transaction attached to a deal. Address is
// the natural dedup key within a deal; a full comp search replaces all prior
// comps for the deal.
type Comp struct {
	ID           uuid.UUID    `json:"id"`
	DealID       uuid.UUID    `json:"deal_id"`
	Address      string       `json:"address"`
	City         string       `json:"city"`
	State        string       `json:"state"`
	PropertyType PropertyType `json:"property_type"`
	Source       CompSource   `json:"source"`

	// Physical
	YearBuilt  *int     `json:"year_built,omitempty"`
	UnitCount  *int     `json:"unit_count,omitempty"`
	SquareFeet *float64 `json:"square_feet,omitempty"`

	// Pricing
	SalePrice    *float64 `json:"sale_price,omitempty"`
	PricePerUnit *float64 `json:"price_per_unit,omitempty"`
	PricePerSqft *float64 `json:"price_per_sqft,omitempty"`
	CapRate      *float64 `json:"cap_rate,omitempty"`

	// Income
	RentPerUnit   *float64 `json:"rent_per_unit,omitempty"`
	OccupancyRate *float64 `json:"occupancy_rate,omitempty"`
	NOI           *float64 `json:"noi,omitempty"`

	// Expenses
	ExpenseRatio *float64 `json:"expense_ratio,omitempty"`
	OpexPerUnit  *float64 `json:"opex_per_unit,omitempty"`

	SourceURL *string   `json:"source_url,omitempty"`
	FetchedAt time.Time `json:"fetched_at"`
	CreatedAt time.Time `json:"created_at"`
}

// DedupKey normalizes the comp address for case-insensitive,
// whitespace-trimmed deduplication within a deal.
func (c *Comp) DedupKey() string {
	return strings.ToLower(strings.TrimSpace(c.Address))
}
