package validation

import (
	"encoding/json"

	"go.uber.org/zap"

	"github.com/dealdesk/dealdesk/internal/model"
	"github.com/dealdesk/dealdesk/pkg/anthropic"
)

type wireSource struct {
	URL     string `json:"url"`
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
}

// wireValidation mirrors the model's answer shape. Pointer fields distinguish
// absent keys from zero values so required keys can be checked explicitly.
type wireValidation struct {
	FieldKey    *string      `json:"field_key"`
	OMValue     *float64     `json:"om_value"`
	MarketValue *float64     `json:"market_value"`
	Status      *string      `json:"status"`
	Explanation *string      `json:"explanation"`
	Sources     []wireSource `json:"sources"`
	Confidence  *float64     `json:"confidence"`
}

// parseValidations parses the model's final answer. The response is external
// and not fully trusted: a record missing a required key or carrying an
// unknown status is dropped with a warning, and an unparseable envelope
// yields an empty set.
func parseValidations(text string) []model.FieldValidationResult {
	cleaned := anthropic.CleanJSON(text)

	var raw struct {
		Validations []wireValidation `json:"validations"`
	}
	if err := json.Unmarshal([]byte(cleaned), &raw); err != nil {
		zap.L().Warn("unparseable validation response", zap.Error(err))
		return nil
	}

	out := make([]model.FieldValidationResult, 0, len(raw.Validations))
	for _, v := range raw.Validations {
		if v.FieldKey == nil || v.Status == nil || v.Explanation == nil {
			zap.L().Warn("validation record missing required keys")
			continue
		}
		status := model.ValidationStatus(*v.Status)
		if !status.Valid() {
			zap.L().Warn("validation record has unknown status",
				zap.String("field_key", *v.FieldKey),
				zap.String("status", *v.Status))
			continue
		}

		confidence := 0.0
		if v.Confidence != nil {
			confidence = *v.Confidence
		}

		sources := make([]model.ValidationSource, 0, len(v.Sources))
		for _, s := range v.Sources {
			sources = append(sources, model.ValidationSource{
				URL:     s.URL,
				Title:   s.Title,
				Snippet: s.Snippet,
			})
		}

		out = append(out, model.FieldValidationResult{
			FieldKey:    *v.FieldKey,
			OMValue:     v.OMValue,
			MarketValue: v.MarketValue,
			Status:      status,
			Explanation: *v.Explanation,
			Sources:     sources,
			Confidence:  confidence,
		})
	}
	return out
}
