package model

// PropertyType is the closed internal vocabulary for property classes.
type PropertyType string

const (
	PropertyMultifamily PropertyType = "multifamily"
	PropertyOffice      PropertyType = "office"
	PropertyRetail      PropertyType = "retail"
	PropertyIndustrial  PropertyType = "industrial"
	PropertyMixedUse    PropertyType = "mixed_use"
	PropertyOther       PropertyType = "other"
)

// ValidPropertyTypes lists every accepted property type, in display order.
var ValidPropertyTypes = []PropertyType{
	PropertyMultifamily,
	PropertyOffice,
	PropertyRetail,
	PropertyIndustrial,
	PropertyMixedUse,
	PropertyOther,
}

// ParsePropertyType maps an open external vocabulary onto the closed enum.
// Unrecognized values fall back to the supplied default rather than
// propagating as raw strings.
func ParsePropertyType(raw string, fallback PropertyType) PropertyType {
	for _, pt := range ValidPropertyTypes {
		if string(pt) == raw {
			return pt
		}
	}
	return fallback
}

// ProcessingStatus tracks a document through the ingestion pipeline.
type ProcessingStatus string

const (
	ProcessingPending          ProcessingStatus = "pending"
	ProcessingExtractingText   ProcessingStatus = "extracting_text"
	ProcessingExtractingTables ProcessingStatus = "extracting_tables"
	ProcessingNormalizing      ProcessingStatus = "normalizing"
	ProcessingComplete         ProcessingStatus = "complete"
	ProcessingFailed           ProcessingStatus = "failed"
)

// SourceType classifies where an assumption value came from.
type SourceType string

const (
	SourceOM       SourceType = "om"
	SourceAI       SourceType = "ai"
	SourceManual   SourceType = "manual"
	SourceAIEdited SourceType = "ai_edited"
)

// DocumentType classifies an uploaded document.
type DocumentType string

const (
	DocOfferingMemorandum DocumentType = "offering_memorandum"
	DocRentRoll           DocumentType = "rent_roll"
	DocFinancialStatement DocumentType = "financial_statement"
	DocOther              DocumentType = "other"
)

// ExportType identifies the export artifact format.
type ExportType string

// ExportXLSX is the only supported export format.
const ExportXLSX ExportType = "xlsx"

// ValidationStatus is the verdict for a single validated field.
type ValidationStatus string

const (
	StatusWithinRange      ValidationStatus = "within_range"
	StatusAboveMarket      ValidationStatus = "above_market"
	StatusBelowMarket      ValidationStatus = "below_market"
	StatusSuspicious       ValidationStatus = "suspicious"
	StatusInsufficientData ValidationStatus = "insufficient_data"
)

// Valid reports whether s is one of the five enumerated verdicts.
func (s ValidationStatus) Valid() bool {
	switch s {
	case StatusWithinRange, StatusAboveMarket, StatusBelowMarket,
		StatusSuspicious, StatusInsufficientData:
		return true
	}
	return false
}

// CompSource tags a comparable with its provider provenance.
type CompSource string

const (
	CompSourceRentcast CompSource = "rentcast"
	CompSourceTavily   CompSource = "tavily"
)

// ValidationPhase labels which pass of the market-validation pipeline
// produced a search step.
type ValidationPhase string

const (
	PhaseQuick ValidationPhase = "quick"
	PhaseDeep  ValidationPhase = "deep"
)
