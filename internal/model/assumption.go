package model

import (
	"time"

	"github.com/google/uuid"
)

// AssumptionSet groups a scenario's assumptions for a deal. Every deal gets
// a base set at creation time.
type AssumptionSet struct {
	ID        uuid.UUID `json:"id"`
	DealID    uuid.UUID `json:"deal_id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Assumption is one keyed input to the proforma model. Key is unique within
// its set; writes are upserts on (set_id, key).
type Assumption struct {
	ID          uuid.UUID  `json:"id"`
	SetID       uuid.UUID  `json:"set_id"`
	Key         string     `json:"key"`
	ValueNumber *float64   `json:"value_number,omitempty"`
	Unit        *string    `json:"unit,omitempty"`
	RangeMin    *float64   `json:"range_min,omitempty"`
	RangeMax    *float64   `json:"range_max,omitempty"`
	SourceType  SourceType `json:"source_type"`
	SourceRef   *string    `json:"source_ref,omitempty"`
	Notes       *string    `json:"notes,omitempty"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// BenchmarkSuggestion is a single market assumption proposed by the
// benchmark generator.
type BenchmarkSuggestion struct {
	Key        string  `json:"key"`
	Value      float64 `json:"value"`
	Unit       string  `json:"unit"`
	RangeMin   float64 `json:"range_min"`
	RangeMax   float64 `json:"range_max"`
	Source     string  `json:"source"`
	Confidence float64 `json:"confidence"`
}
