package model

import (
	"time"

	"github.com/google/uuid"
)

// ValidationSource is one cited web source backing a verdict. Persisted as
// part of an ordered JSONB list and must round-trip losslessly.
type ValidationSource struct {
	URL     string `json:"url"`
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
}

// SearchHit is a single result returned for one executed search query.
type SearchHit struct {
	URL     string `json:"url"`
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
}

// SearchStep records one executed web search during validation. Steps
// accumulate in call order across both phases and are never reordered or
// deduplicated.
type SearchStep struct {
	Phase   ValidationPhase `json:"phase"`
	Query   string          `json:"query"`
	Results []SearchHit     `json:"results"`
}

// FieldValidationResult is the orchestrator's parsed verdict for one field,
// before persistence.
type FieldValidationResult struct {
	FieldKey    string             `json:"field_key"`
	OMValue     *float64           `json:"om_value"`
	MarketValue *float64           `json:"market_value"`
	Status      ValidationStatus   `json:"status"`
	Explanation string             `json:"explanation"`
	Sources     []ValidationSource `json:"sources"`
	Confidence  float64            `json:"confidence"`
}

// FieldValidation is the persisted verdict for a (deal, field_key) pair.
// A later validation run overwrites the prior row for the same key.
type FieldValidation struct {
	ID          uuid.UUID          `json:"id"`
	DealID      uuid.UUID          `json:"deal_id"`
	FieldKey    string             `json:"field_key"`
	OMValue     *float64           `json:"om_value,omitempty"`
	MarketValue *float64           `json:"market_value,omitempty"`
	Status      ValidationStatus   `json:"status"`
	Explanation string             `json:"explanation"`
	Sources     []ValidationSource `json:"sources"`
	Confidence  float64            `json:"confidence"`
	SearchSteps []SearchStep       `json:"search_steps"`
	CreatedAt   time.Time          `json:"created_at"`
}
