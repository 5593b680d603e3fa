package validation

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/dealdesk/dealdesk/internal/model"
)

const validationSystemPrompt = `You are a commercial real estate analyst validating financial metrics from an Offering Memorandum against current market data.

Use the web_search tool to find market evidence for each metric. When you have enough evidence, respond with ONLY a JSON object of this shape:
{
  "validations": [
    {
      "field_key": "cap_rate",
      "om_value": 0.055,
      "market_value": 0.06,
      "status": "below_market",
      "explanation": "Markdown explanation citing sources as inline links.",
      "sources": [{"url": "https://...", "title": "...", "snippet": "..."}],
      "confidence": 0.8
    }
  ]
}

status must be one of: within_range, above_market, below_market, suspicious, insufficient_data.
Validate financial and operational metrics only. Do not validate descriptive fields such as the address, deal name or square footage.
Every explanation must cite its sources as inline markdown links. Do not wrap the JSON in markdown fences or add commentary around it.`

func buildUserPrompt(phase model.ValidationPhase, req Request) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Subject property: %s, a %s at %s, %s, %s.\n\n",
		req.Deal.Name, req.Deal.PropertyType, req.Deal.Address, req.Deal.City, req.Deal.State)

	b.WriteString("OM extracted fields:\n")
	for _, f := range req.Fields {
		if f.ValueNumber == nil {
			continue
		}
		unit := ""
		if f.Unit != nil {
			unit = " " + *f.Unit
		}
		fmt.Fprintf(&b, "- %s: %g%s (confidence %.2f)\n", f.FieldKey, *f.ValueNumber, unit, f.Confidence)
	}

	if len(req.Benchmarks) > 0 {
		b.WriteString("\nBenchmark assumptions:\n")
		for _, a := range req.Benchmarks {
			if a.ValueNumber == nil {
				continue
			}
			fmt.Fprintf(&b, "- %s: %g", a.Key, *a.ValueNumber)
			if a.RangeMin != nil && a.RangeMax != nil {
				fmt.Fprintf(&b, " (range %g-%g)", *a.RangeMin, *a.RangeMax)
			}
			b.WriteString("\n")
		}
	}

	if phase == model.PhaseDeep && len(req.Prior) > 0 {
		b.WriteString("\nEarlier quick-pass verdicts (confirm or revise each with further targeted searches):\n")
		prior, _ := json.Marshal(req.Prior)
		b.Write(prior)
		b.WriteString("\n")
	}

	if phase == model.PhaseDeep {
		b.WriteString("\nRun a thorough validation. Issue targeted searches per metric and revise any verdict the evidence contradicts.")
	} else {
		b.WriteString("\nRun a quick first-pass validation with a handful of broad searches.")
	}

	return b.String()
}
