// Package export renders deal evaluations into xlsx workbooks.
package export

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/dealdesk/dealdesk/internal/model"
)

// Input carries everything the workbook renders. Result may be nil when the
// proforma has never been computed; the summary sheet then omits outputs.
type Input struct {
	Deal        *model.Deal
	Set         *model.AssumptionSet
	Assumptions []model.Assumption
	Validations []model.FieldValidation
	Comps       []model.Comp
	Result      *model.ModelResult
}

// printer formats dollar amounts with US digit grouping.
var printer = message.NewPrinter(language.AmericanEnglish)

// Workbook renders the evaluation into xlsx bytes with four sheets:
// Summary, Assumptions, Validation, and Comps.
func Workbook(in Input) ([]byte, error) {
	if in.Deal == nil {
		return nil, eris.New("export: deal is required")
	}

	f := xlsx.NewFile()
	if err := addSummarySheet(f, in); err != nil {
		return nil, err
	}
	if err := addAssumptionsSheet(f, in.Assumptions); err != nil {
		return nil, err
	}
	if err := addValidationSheet(f, in.Validations); err != nil {
		return nil, err
	}
	if err := addCompsSheet(f, in.Comps); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, eris.Wrap(err, "export: write workbook")
	}
	return buf.Bytes(), nil
}

func addSummarySheet(f *xlsx.File, in Input) error {
	sheet, err := f.AddSheet("Summary")
	if err != nil {
		return eris.Wrap(err, "export: add summary sheet")
	}

	addPair(sheet, "Deal", in.Deal.Name)
	addPair(sheet, "Address", in.Deal.Address)
	addPair(sheet, "City", fmt.Sprintf("%s, %s", in.Deal.City, in.Deal.State))
	addPair(sheet, "Property Type", string(in.Deal.PropertyType))
	if in.Deal.SquareFeet != nil {
		addPair(sheet, "Square Feet", printer.Sprintf("%.0f", *in.Deal.SquareFeet))
	}
	if in.Set != nil {
		addPair(sheet, "Scenario", in.Set.Name)
	}

	if in.Result == nil {
		return nil
	}

	sheet.AddRow()
	addPair(sheet, "Stabilized NOI", money(in.Result.NOIStabilized))
	addPair(sheet, "Exit Value", money(in.Result.ExitValue))
	addPair(sheet, "Total Cost", money(in.Result.TotalCost))
	addPair(sheet, "Profit", money(in.Result.Profit))
	addPair(sheet, "Profit Margin", fmt.Sprintf("%.2f%%", in.Result.ProfitMarginPct))
	return nil
}

func addAssumptionsSheet(f *xlsx.File, assumptions []model.Assumption) error {
	sheet, err := f.AddSheet("Assumptions")
	if err != nil {
		return eris.Wrap(err, "export: add assumptions sheet")
	}

	addHeader(sheet, "Key", "Value", "Unit", "Range Min", "Range Max", "Source", "Notes")
	for _, a := range assumptions {
		row := sheet.AddRow()
		row.AddCell().SetString(a.Key)
		addOptFloat(row, a.ValueNumber)
		addOptString(row, a.Unit)
		addOptFloat(row, a.RangeMin)
		addOptFloat(row, a.RangeMax)
		row.AddCell().SetString(string(a.SourceType))
		addOptString(row, a.Notes)
	}
	return nil
}

func addValidationSheet(f *xlsx.File, validations []model.FieldValidation) error {
	sheet, err := f.AddSheet("Validation")
	if err != nil {
		return eris.Wrap(err, "export: add validation sheet")
	}

	addHeader(sheet, "Field", "OM Value", "Market Value", "Status", "Confidence", "Explanation", "Sources")
	for _, v := range validations {
		row := sheet.AddRow()
		row.AddCell().SetString(v.FieldKey)
		addOptFloat(row, v.OMValue)
		addOptFloat(row, v.MarketValue)
		row.AddCell().SetString(string(v.Status))
		row.AddCell().SetFloat(v.Confidence)
		row.AddCell().SetString(v.Explanation)

		urls := make([]string, 0, len(v.Sources))
		for _, src := range v.Sources {
			urls = append(urls, src.URL)
		}
		row.AddCell().SetString(strings.Join(urls, "\n"))
	}
	return nil
}

func addCompsSheet(f *xlsx.File, comps []model.Comp) error {
	sheet, err := f.AddSheet("Comps")
	if err != nil {
		return eris.Wrap(err, "export: add comps sheet")
	}

	addHeader(sheet, "Address", "City", "State", "Type", "Source",
		"Year Built", "Units", "SqFt", "Sale Price", "$/Unit", "$/SqFt",
		"Cap Rate", "Rent/Unit", "Occupancy")
	for _, c := range comps {
		row := sheet.AddRow()
		row.AddCell().SetString(c.Address)
		row.AddCell().SetString(c.City)
		row.AddCell().SetString(c.State)
		row.AddCell().SetString(string(c.PropertyType))
		row.AddCell().SetString(string(c.Source))
		addOptInt(row, c.YearBuilt)
		addOptInt(row, c.UnitCount)
		addOptFloat(row, c.SquareFeet)
		addOptMoney(row, c.SalePrice)
		addOptMoney(row, c.PricePerUnit)
		addOptMoney(row, c.PricePerSqft)
		addOptFloat(row, c.CapRate)
		addOptMoney(row, c.RentPerUnit)
		addOptFloat(row, c.OccupancyRate)
	}
	return nil
}

func money(v float64) string {
	return printer.Sprintf("$%.0f", v)
}

func addPair(sheet *xlsx.Sheet, label, value string) {
	row := sheet.AddRow()
	row.AddCell().SetString(label)
	row.AddCell().SetString(value)
}

func addHeader(sheet *xlsx.Sheet, labels ...string) {
	row := sheet.AddRow()
	for _, l := range labels {
		row.AddCell().SetString(l)
	}
}

func addOptString(row *xlsx.Row, v *string) {
	cell := row.AddCell()
	if v != nil {
		cell.SetString(*v)
	}
}

func addOptFloat(row *xlsx.Row, v *float64) {
	cell := row.AddCell()
	if v != nil {
		cell.SetFloat(*v)
	}
}

func addOptInt(row *xlsx.Row, v *int) {
	cell := row.AddCell()
	if v != nil {
		cell.SetInt(*v)
	}
}

func addOptMoney(row *xlsx.Row, v *float64) {
	cell := row.AddCell()
	if v != nil {
		cell.SetString(money(*v))
	}
}
