package docproc

import (
	"bytes"
	"context"
	"os/exec"
	"regexp"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/dealdesk/dealdesk/internal/model"
)

// PdfToText extracts text from PDFs using the pdftotext CLI tool. Pages are
// delimited by form feeds in -layout output; tables are recovered
// heuristically from aligned column whitespace.
type PdfToText struct {
	binPath string
}

// NewPdfToText creates a PdfToText extractor. If binPath is empty,
// "pdftotext" is used.
func NewPdfToText(binPath string) *PdfToText {
	if binPath == "" {
		binPath = "pdftotext"
	}
	return &PdfToText{binPath: binPath}
}

func (p *PdfToText) run(ctx context.Context, pdfPath string) (string, error) {
	cmd := exec.CommandContext(ctx, p.binPath, "-layout", pdfPath, "-")

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", eris.Wrapf(err, "docproc: pdftotext failed for %s: %s", pdfPath, stderr.String())
	}

	return stdout.String(), nil
}

// ExtractText runs pdftotext -layout and splits the output into pages.
func (p *PdfToText) ExtractText(ctx context.Context, pdfPath string) ([]model.PageText, error) {
	raw, err := p.run(ctx, pdfPath)
	if err != nil {
		return nil, err
	}
	return splitPages(raw), nil
}

// ExtractTables recovers whitespace-aligned tables from the layout output.
func (p *PdfToText) ExtractTables(ctx context.Context, pdfPath string) ([]model.ExtractedTable, error) {
	raw, err := p.run(ctx, pdfPath)
	if err != nil {
		return nil, err
	}

	var tables []model.ExtractedTable
	for _, page := range splitPages(raw) {
		tables = append(tables, parseTables(page.PageNumber, page.Text)...)
	}
	return tables, nil
}

// splitPages splits pdftotext output on form feeds. A trailing empty page
// from the final form feed is dropped.
func splitPages(raw string) []model.PageText {
	parts := strings.Split(raw, "\f")
	if len(parts) > 1 && strings.TrimSpace(parts[len(parts)-1]) == "" {
		parts = parts[:len(parts)-1]
	}

	pages := make([]model.PageText, 0, len(parts))
	for i, part := range parts {
		pages = append(pages, model.PageText{
			PageNumber: i + 1,
			Text:       part,
		})
	}
	return pages
}

var columnSplit = regexp.MustCompile(`\s{2,}`)

// tableConfidence is fixed: column alignment is a heuristic, not a parse.
const tableConfidence = 0.5

// parseTables treats runs of consecutive lines that split into two or more
// whitespace-aligned columns as a table. The first line of a run becomes the
// header row; a run needs at least one data row to count.
func parseTables(pageNumber int, text string) []model.ExtractedTable {
	var tables []model.ExtractedTable
	var block [][]string

	flush := func() {
		if len(block) >= 2 {
			tables = append(tables, model.ExtractedTable{
				PageNumber: pageNumber,
				Headers:    block[0],
				Rows:       block[1:],
				Confidence: tableConfidence,
			})
		}
		block = nil
	}

	for _, line := range strings.Split(text, "\n") {
		cells := columnSplit.Split(strings.TrimSpace(line), -1)
		if len(cells) >= 2 && cells[0] != "" {
			block = append(block, cells)
			continue
		}
		flush()
	}
	flush()

	return tables
}
