package model

import (
	"time"

	"github.com/google/uuid"
)

// Document is an uploaded file attached to a deal.
type Document struct {
	ID               uuid.UUID        `json:"id"`
	DealID           uuid.UUID        `json:"deal_id"`
	DocumentType     DocumentType     `json:"document_type"`
	FilePath         string           `json:"file_path"`
	OriginalFilename string           `json:"original_filename"`
	ProcessingStatus ProcessingStatus `json:"processing_status"`
	ProcessingSteps  []ProcessingStep `json:"processing_steps"`
	ErrorMessage     string           `json:"error_message,omitempty"`
	PageCount        *int             `json:"page_count,omitempty"`
	CreatedAt        time.Time        `json:"created_at"`
	UpdatedAt        time.Time        `json:"updated_at"`
}

// ProcessingStep records progress of one ingestion stage. Steps are stored
// as a JSONB list on the document row.
type ProcessingStep struct {
	Name   string `json:"name"`
	Status string `json:"status"` // pending, in_progress, complete, failed
	Detail string `json:"detail,omitempty"`
}

// PageText is one page of extracted document text, in page order.
type PageText struct {
	PageNumber int    `json:"page_number"`
	Text       string `json:"text"`
}

// ExtractedTable is a table lifted from a document page.
type ExtractedTable struct {
	PageNumber int        `json:"page_number"`
	Headers    []string   `json:"headers"`
	Rows       [][]string `json:"rows"`
	Confidence float64    `json:"confidence"`
}
