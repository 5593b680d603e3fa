package docproc

import (
	"context"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dealdesk/dealdesk/internal/model"
	"github.com/dealdesk/dealdesk/pkg/anthropic"
)

type stubLLM struct {
	resp   *anthropic.MessageResponse
	err    error
	called bool
	req    anthropic.MessageRequest
}

func (s *stubLLM) CreateMessage(_ context.Context, req anthropic.MessageRequest) (*anthropic.MessageResponse, error) {
	s.called = true
	s.req = req
	return s.resp, s.err
}

func TestNormalize(t *testing.T) {
	llm := &stubLLM{resp: &anthropic.MessageResponse{
		Content: []anthropic.ContentBlock{{Type: "text", Text: `{
			"fields": [
				{"key": "purchase_price", "value_text": "$15,000,000", "value_number": 15000000, "unit": "$", "confidence": 0.9},
				{"key": "cap_rate", "value_number": 0.058, "confidence": 0.8}
			]
		}`}},
	}}

	n := NewNormalizer(llm, "claude-haiku-4-5-20251001", 4096)
	out, err := n.Normalize(context.Background(), []model.RawField{
		{Key: "page_text", Value: "Asking price: $15,000,000 at a 5.8% cap", SourcePage: 2},
	})
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, "purchase_price", out[0].Key)
	require.NotNil(t, out[0].ValueNumber)
	assert.InDelta(t, 15_000_000, *out[0].ValueNumber, 0.01)
	assert.Equal(t, "cap_rate", out[1].Key)

	assert.Contains(t, llm.req.Messages[0].Content, "[page 2]")
	assert.Contains(t, llm.req.Messages[0].Content, "Asking price")
}

func TestNormalize_DropsFieldsOutsideCatalog(t *testing.T) {
	llm := &stubLLM{resp: &anthropic.MessageResponse{
		Content: []anthropic.ContentBlock{{Type: "text", Text: `{
			"fields": [
				{"key": "cap_rate", "value_number": 5.8, "confidence": 0.8},
				{"key": "asking_rent_total", "value_number": 120000, "confidence": 0.9},
				{"key": "vacancy_rate", "value_number": 0.07, "confidence": 0.85}
			]
		}`}},
	}}

	n := NewNormalizer(llm, "claude-haiku-4-5-20251001", 4096)
	out, err := n.Normalize(context.Background(), []model.RawField{
		{Key: "page_text", Value: "5.8% cap, 7% vacancy", SourcePage: 4},
	})
	require.NoError(t, err)

	// cap_rate of 5.8 is a percentage the model failed to convert; the
	// unknown key is not canonical. Only vacancy_rate survives.
	require.Len(t, out, 1)
	assert.Equal(t, "vacancy_rate", out[0].Key)

	assert.Contains(t, llm.req.System[0].Text, "purchase_price")
	assert.Contains(t, llm.req.System[0].Text, "capex_budget")
}

func TestNormalize_EmptyInputSkipsLLM(t *testing.T) {
	llm := &stubLLM{}
	n := NewNormalizer(llm, "claude-haiku-4-5-20251001", 4096)

	out, err := n.Normalize(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, out)
	assert.False(t, llm.called)
}

func TestNormalize_LLMError(t *testing.T) {
	llm := &stubLLM{err: eris.New("anthropic: create message: 500")}
	n := NewNormalizer(llm, "claude-haiku-4-5-20251001", 4096)

	_, err := n.Normalize(context.Background(), []model.RawField{{Key: "page_text", Value: "text", SourcePage: 1}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "docproc: normalize fields")
}

func TestParseNormalized_SkipsValuelessRecords(t *testing.T) {
	out := parseNormalized(`{
		"fields": [
			{"key": "cap_rate"},
			{"value_number": 1},
			{"key": "noi", "value_number": 926250, "confidence": 0.7}
		]
	}`)
	require.Len(t, out, 1)
	assert.Equal(t, "noi", out[0].Key)
}

func TestParseNormalized_Unparseable(t *testing.T) {
	assert.Empty(t, parseNormalized("no structured data here"))
}
