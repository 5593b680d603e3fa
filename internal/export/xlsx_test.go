package export

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"

	"github.com/dealdesk/dealdesk/internal/model"
)

func fptr(v float64) *float64 { return &v }

func testInput() Input {
	sqft := 50_000.0
	return Input{
		Deal: &model.Deal{
			ID:           uuid.New(),
			Name:         "Oakwood Apartments",
			Address:      "400 Elm St",
			City:         "Austin",
			State:        "TX",
			PropertyType: model.PropertyMultifamily,
			SquareFeet:   &sqft,
		},
		Set: &model.AssumptionSet{Name: "Base Case"},
		Assumptions: []model.Assumption{
			{Key: "cap_rate", ValueNumber: fptr(0.065), SourceType: model.SourceAI},
			{Key: "purchase_price", ValueNumber: fptr(15_000_000), SourceType: model.SourceOM},
		},
		Validations: []model.FieldValidation{
			{
				FieldKey:    "rent_psf_yr",
				OMValue:     fptr(30),
				MarketValue: fptr(26),
				Status:      model.StatusAboveMarket,
				Explanation: "OM rent exceeds the submarket average.",
				Sources:     []model.ValidationSource{{URL: "https://example.com/report"}},
				Confidence:  0.8,
			},
		},
		Comps: []model.Comp{
			{Address: "123 Main St", City: "Austin", State: "TX", PropertyType: model.PropertyMultifamily,
				Source: model.CompSourceRentcast, SalePrice: fptr(12_000_000), CapRate: fptr(0.06)},
		},
		Result: &model.ModelResult{
			NOIStabilized:   926_250,
			ExitValue:       14_250_000,
			TotalCost:       15_950_000,
			Profit:          -1_700_000,
			ProfitMarginPct: -10.6583,
		},
	}
}

func TestWorkbook(t *testing.T) {
	data, err := Workbook(testInput())
	require.NoError(t, err)

	f, err := xlsx.OpenBinary(data)
	require.NoError(t, err)
	require.Len(t, f.Sheets, 4)
	assert.Equal(t, "Summary", f.Sheets[0].Name)
	assert.Equal(t, "Assumptions", f.Sheets[1].Name)
	assert.Equal(t, "Validation", f.Sheets[2].Name)
	assert.Equal(t, "Comps", f.Sheets[3].Name)

	summary := f.Sheets[0]
	assert.Equal(t, "Deal", summary.Rows[0].Cells[0].String())
	assert.Equal(t, "Oakwood Apartments", summary.Rows[0].Cells[1].String())

	var foundNOI bool
	for _, row := range summary.Rows {
		if len(row.Cells) >= 2 && row.Cells[0].String() == "Stabilized NOI" {
			foundNOI = true
			assert.Equal(t, "$926,250", row.Cells[1].String())
		}
	}
	assert.True(t, foundNOI)

	assumptions := f.Sheets[1]
	require.GreaterOrEqual(t, len(assumptions.Rows), 3)
	assert.Equal(t, "Key", assumptions.Rows[0].Cells[0].String())
	assert.Equal(t, "cap_rate", assumptions.Rows[1].Cells[0].String())

	validation := f.Sheets[2]
	require.Len(t, validation.Rows, 2)
	assert.Equal(t, "rent_psf_yr", validation.Rows[1].Cells[0].String())
	assert.Equal(t, "above_market", validation.Rows[1].Cells[3].String())
	assert.Contains(t, validation.Rows[1].Cells[6].String(), "https://example.com/report")

	comps := f.Sheets[3]
	require.Len(t, comps.Rows, 2)
	assert.Equal(t, "123 Main St", comps.Rows[1].Cells[0].String())
	assert.Equal(t, "$12,000,000", comps.Rows[1].Cells[8].String())
}

func TestWorkbook_NoResultOmitsOutputs(t *testing.T) {
	in := testInput()
	in.Result = nil

	data, err := Workbook(in)
	require.NoError(t, err)

	f, err := xlsx.OpenBinary(data)
	require.NoError(t, err)
	for _, row := range f.Sheets[0].Rows {
		if len(row.Cells) > 0 {
			assert.NotEqual(t, "Stabilized NOI", row.Cells[0].String())
		}
	}
}

func TestWorkbook_RequiresDeal(t *testing.T) {
	_, err := Workbook(Input{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "deal is required")
}
