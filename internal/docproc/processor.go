// Package docproc extracts text and tables from uploaded documents and
// normalizes raw page content into canonical financial fields.
package docproc

import (
	"context"

	"github.com/dealdesk/dealdesk/internal/model"
)

// Processor extracts page text and tables from a document on disk.
type Processor interface {
	ExtractText(ctx context.Context, path string) ([]model.PageText, error)
	ExtractTables(ctx context.Context, path string) ([]model.ExtractedTable, error)
}
