package model

import "github.com/google/uuid"

// ExtractedField is a normalized financial field pulled from a document.
// Fields are created in bulk by the normalization step and never updated
// individually afterwards.
type ExtractedField struct {
	ID          uuid.UUID `json:"id"`
	DocumentID  uuid.UUID `json:"document_id"`
	FieldKey    string    `json:"field_key"`
	ValueText   *string   `json:"value_text,omitempty"`
	ValueNumber *float64  `json:"value_number,omitempty"`
	Unit        *string   `json:"unit,omitempty"`
	Confidence  float64   `json:"confidence"`
	SourcePage  *int      `json:"source_page,omitempty"`
}

// MarketTable is a raw table persisted from document extraction.
type MarketTable struct {
	ID         uuid.UUID  `json:"id"`
	DocumentID uuid.UUID  `json:"document_id"`
	TableType  string     `json:"table_type"`
	Headers    []string   `json:"headers"`
	Rows       [][]string `json:"rows"`
	SourcePage *int       `json:"source_page,omitempty"`
	Confidence float64    `json:"confidence"`
}

// RawField is pre-normalization extractor output handed to the LLM.
type RawField struct {
	Key        string `json:"key"`
	Value      string `json:"value"`
	SourcePage int    `json:"source_page"`
}

// NormalizedField is the LLM's canonical form of a raw field.
type NormalizedField struct {
	Key         string   `json:"key"`
	ValueText   *string  `json:"value_text"`
	ValueNumber *float64 `json:"value_number"`
	Unit        *string  `json:"unit"`
	Confidence  float64  `json:"confidence"`
}
