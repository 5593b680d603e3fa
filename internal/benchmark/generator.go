// Package benchmark generates market assumption suggestions for a deal with
// a single structured LLM call.
package benchmark

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/dealdesk/dealdesk/internal/model"
	"github.com/dealdesk/dealdesk/pkg/anthropic"
)

// Generator produces benchmark suggestions for a location and property type.
type Generator struct {
	llm       anthropic.Client
	model     string
	maxTokens int64
}

// NewGenerator wires the generator with its LLM client.
func NewGenerator(llm anthropic.Client, llmModel string, maxTokens int64) *Generator {
	return &Generator{llm: llm, model: llmModel, maxTokens: maxTokens}
}

const benchmarkSystemPrompt = `You are a commercial real estate analyst producing market benchmark assumptions.

Respond with ONLY a JSON object of this shape:
{
  "benchmarks": [
    {
      "key": "rent_psf_yr",
      "value": 28.5,
      "unit": "$/sf/yr",
      "range_min": 24.0,
      "range_max": 33.0,
      "source": "short description of the basis for this estimate",
      "confidence": 0.7
    }
  ]
}

Include at minimum: rent_psf_yr, vacancy_rate, cap_rate, opex_ratio and purchase_price. Rates are decimals (0.06, not 6). Add further keys when you can estimate them. Do not wrap the JSON in markdown fences.`

// Generate runs a single-shot benchmark call. An unparseable response yields
// an empty slice, not an error.
func (g *Generator) Generate(ctx context.Context, city, state string, propertyType model.PropertyType) ([]model.BenchmarkSuggestion, error) {
	prompt := fmt.Sprintf("Produce market benchmark assumptions for a %s property in %s, %s.",
		propertyType, city, state)

	resp, err := g.llm.CreateMessage(ctx, anthropic.MessageRequest{
		Model:     g.model,
		MaxTokens: g.maxTokens,
		System:    []anthropic.SystemBlock{{Text: benchmarkSystemPrompt}},
		Messages:  []anthropic.Message{{Role: "user", Content: prompt}},
	})
	if err != nil {
		return nil, eris.Wrap(err, "benchmark: create message")
	}
	resp.Usage.LogCost(g.model, "benchmark")

	return parseBenchmarks(resp.Text()), nil
}

func parseBenchmarks(text string) []model.BenchmarkSuggestion {
	cleaned := anthropic.CleanJSON(text)

	var raw struct {
		Benchmarks []struct {
			Key        *string  `json:"key"`
			Value      *float64 `json:"value"`
			Unit       string   `json:"unit"`
			RangeMin   float64  `json:"range_min"`
			RangeMax   float64  `json:"range_max"`
			Source     string   `json:"source"`
			Confidence float64  `json:"confidence"`
		} `json:"benchmarks"`
	}
	if err := json.Unmarshal([]byte(cleaned), &raw); err != nil {
		zap.L().Warn("unparseable benchmark response", zap.Error(err))
		return nil
	}

	out := make([]model.BenchmarkSuggestion, 0, len(raw.Benchmarks))
	for _, b := range raw.Benchmarks {
		if b.Key == nil || b.Value == nil {
			zap.L().Warn("benchmark record missing required keys")
			continue
		}
		out = append(out, model.BenchmarkSuggestion{
			Key:        *b.Key,
			Value:      *b.Value,
			Unit:       b.Unit,
			RangeMin:   b.RangeMin,
			RangeMax:   b.RangeMax,
			Source:     b.Source,
			Confidence: b.Confidence,
		})
	}
	return out
}
