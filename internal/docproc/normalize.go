package docproc

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/dealdesk/dealdesk/internal/model"
	"github.com/dealdesk/dealdesk/pkg/anthropic"
)

// Normalizer turns raw page text into canonical financial fields with a
// single structured LLM call.
type Normalizer struct {
	llm       anthropic.Client
	model     string
	maxTokens int64
	catalog   *Catalog
}

// NewNormalizer wires the normalizer with its LLM client and the built-in
// field catalog.
func NewNormalizer(llm anthropic.Client, llmModel string, maxTokens int64) *Normalizer {
	return &Normalizer{llm: llm, model: llmModel, maxTokens: maxTokens, catalog: DefaultCatalog()}
}

// WithCatalog swaps in a custom field catalog.
func (n *Normalizer) WithCatalog(c *Catalog) *Normalizer {
	n.catalog = c
	return n
}

const normalizeSystemPrompt = `You are extracting financial fields from Offering Memorandum page text.

Respond with ONLY a JSON object of this shape:
{
  "fields": [
    {
      "key": "purchase_price",
      "value_text": "$15,000,000",
      "value_number": 15000000,
      "unit": "$",
      "confidence": 0.9
    }
  ]
}

Use these canonical keys where the text supports them: %s. Rates are decimals (0.05, not 5). Omit fields the text does not support; never invent values. Do not wrap the JSON in markdown fences.`

// Normalize extracts canonical fields from the raw page excerpts. An
// unparseable response yields an empty slice, not an error.
func (n *Normalizer) Normalize(ctx context.Context, raw []model.RawField) ([]model.NormalizedField, error) {
	if len(raw) == 0 {
		return nil, nil
	}

	var b strings.Builder
	for _, f := range raw {
		fmt.Fprintf(&b, "[page %d]\n%s\n\n", f.SourcePage, f.Value)
	}

	system := fmt.Sprintf(normalizeSystemPrompt, strings.Join(n.catalog.Keys(), ", "))
	resp, err := n.llm.CreateMessage(ctx, anthropic.MessageRequest{
		Model:     n.model,
		MaxTokens: n.maxTokens,
		System:    []anthropic.SystemBlock{{Text: system}},
		Messages:  []anthropic.Message{{Role: "user", Content: b.String()}},
	})
	if err != nil {
		return nil, eris.Wrap(err, "docproc: normalize fields")
	}
	resp.Usage.LogCost(n.model, "normalize_fields")

	fields := parseNormalized(resp.Text())
	kept := fields[:0]
	for _, f := range fields {
		if !n.catalog.Accepts(f.Key, f.ValueNumber) {
			zap.L().Warn("dropping field outside catalog bounds", zap.String("key", f.Key))
			continue
		}
		kept = append(kept, f)
	}
	return kept, nil
}

func parseNormalized(text string) []model.NormalizedField {
	cleaned := anthropic.CleanJSON(text)

	var raw struct {
		Fields []struct {
			Key         *string  `json:"key"`
			ValueText   *string  `json:"value_text"`
			ValueNumber *float64 `json:"value_number"`
			Unit        *string  `json:"unit"`
			Confidence  float64  `json:"confidence"`
		} `json:"fields"`
	}
	if err := json.Unmarshal([]byte(cleaned), &raw); err != nil {
		zap.L().Warn("unparseable normalization response", zap.Error(err))
		return nil
	}

	out := make([]model.NormalizedField, 0, len(raw.Fields))
	for _, f := range raw.Fields {
		if f.Key == nil || (f.ValueText == nil && f.ValueNumber == nil) {
			zap.L().Warn("normalized field missing required keys")
			continue
		}
		out = append(out, model.NormalizedField{
			Key:         *f.Key,
			ValueText:   f.ValueText,
			ValueNumber: f.ValueNumber,
			Unit:        f.Unit,
			Confidence:  f.Confidence,
		})
	}
	return out
}
