package model

import (
	"time"

	"github.com/google/uuid"
)

// ModelResult is a persisted proforma computation for an assumption set.
type ModelResult struct {
	ID              uuid.UUID `json:"id"`
	SetID           uuid.UUID `json:"set_id"`
	NOIStabilized   float64   `json:"noi_stabilized"`
	ExitValue       float64   `json:"exit_value"`
	TotalCost       float64   `json:"total_cost"`
	Profit          float64   `json:"profit"`
	ProfitMarginPct float64   `json:"profit_margin_pct"`
	ComputedAt      time.Time `json:"computed_at"`
}

// Export records a generated artifact for a deal and assumption set.
type Export struct {
	ID         uuid.UUID  `json:"id"`
	DealID     uuid.UUID  `json:"deal_id"`
	SetID      uuid.UUID  `json:"set_id"`
	FilePath   string     `json:"file_path"`
	ExportType ExportType `json:"export_type"`
	CreatedAt  time.Time  `json:"created_at"`
}
