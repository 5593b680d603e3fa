package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dealdesk/dealdesk/internal/model"
)

func TestParseValidations(t *testing.T) {
	text := `{
		"validations": [
			{
				"field_key": "vacancy_rate",
				"om_value": 0.03,
				"market_value": 0.07,
				"status": "suspicious",
				"explanation": "OM vacancy is well under [market](https://example.com).",
				"sources": [{"url": "https://example.com", "title": "Survey", "snippet": "7% average"}],
				"confidence": 0.85
			}
		]
	}`

	out := parseValidations(text)
	require.Len(t, out, 1)
	v := out[0]
	assert.Equal(t, "vacancy_rate", v.FieldKey)
	require.NotNil(t, v.OMValue)
	assert.InDelta(t, 0.03, *v.OMValue, 0.0001)
	require.NotNil(t, v.MarketValue)
	assert.InDelta(t, 0.07, *v.MarketValue, 0.0001)
	assert.Equal(t, model.StatusSuspicious, v.Status)
	assert.InDelta(t, 0.85, v.Confidence, 0.0001)
	require.Len(t, v.Sources, 1)
	assert.Equal(t, "https://example.com", v.Sources[0].URL)
}

func TestParseValidations_MarkdownFences(t *testing.T) {
	text := "Here you go:\n```json\n{\"validations\": [{\"field_key\": \"cap_rate\", \"status\": \"within_range\", \"explanation\": \"ok\"}]}\n```"
	out := parseValidations(text)
	require.Len(t, out, 1)
	assert.Equal(t, "cap_rate", out[0].FieldKey)
	assert.Zero(t, out[0].Confidence)
	assert.Nil(t, out[0].OMValue)
}

func TestParseValidations_MissingRequiredKeys(t *testing.T) {
	text := `{
		"validations": [
			{"field_key": "cap_rate", "explanation": "no status"},
			{"status": "within_range", "explanation": "no field key"},
			{"field_key": "opex_ratio", "status": "within_range", "explanation": "keeper"}
		]
	}`
	out := parseValidations(text)
	require.Len(t, out, 1)
	assert.Equal(t, "opex_ratio", out[0].FieldKey)
}

func TestParseValidations_UnknownStatusDropped(t *testing.T) {
	text := `{
		"validations": [
			{"field_key": "cap_rate", "status": "way_too_high", "explanation": "bad status"}
		]
	}`
	assert.Empty(t, parseValidations(text))
}

func TestParseValidations_Unparseable(t *testing.T) {
	assert.Empty(t, parseValidations("no json at all"))
	assert.Empty(t, parseValidations(""))
	assert.Empty(t, parseValidations(`{"validations": "not a list"}`))
}
