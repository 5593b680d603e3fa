package comps

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/dealdesk/dealdesk/internal/model"
	"github.com/dealdesk/dealdesk/pkg/anthropic"
	"github.com/dealdesk/dealdesk/pkg/tavily"
)

// TavilyProvider searches listing sites for recent transactions and extracts
// structured comps from the raw results with an LLM.
type TavilyProvider struct {
	search    tavily.Client
	llm       anthropic.Client
	model     string
	maxTokens int64
}

// NewTavilyProvider wires the provider with its search and LLM clients.
func NewTavilyProvider(search tavily.Client, llm anthropic.Client, llmModel string, maxTokens int64) *TavilyProvider {
	return &TavilyProvider{search: search, llm: llm, model: llmModel, maxTokens: maxTokens}
}

func (p *TavilyProvider) Name() string { return "tavily" }

const compExtractionPrompt = `You are extracting comparable property data from web search results for a %s property in %s, %s.

Return ONLY a JSON object of this shape:
{
  "comps": [
    {
      "address": "street address only",
      "city": "city",
      "state": "2-letter state",
      "property_type": "%s",
      "year_built": null,
      "unit_count": null,
      "square_feet": null,
      "sale_price": null,
      "price_per_unit": null,
      "price_per_sqft": null,
      "cap_rate": null,
      "rent_per_unit": null,
      "occupancy_rate": null,
      "expense_ratio": null,
      "source_url": "url of the source"
    }
  ]
}

cap_rate and occupancy_rate are decimals (0.062, not 6.2). Only include properties with at least an address and one financial metric. Return {"comps": []} if none found.`

// SearchComps runs two fixed searches and extracts any comparable
// transactions the results describe.
func (p *TavilyProvider) SearchComps(ctx context.Context, deal *model.Deal, _ []model.ExtractedField) ([]model.Comp, error) {
	location := fmt.Sprintf("%s, %s", deal.City, deal.State)
	queries := []string{
		fmt.Sprintf("%s sold %s 2025 2026 comparable properties", deal.PropertyType, location),
		fmt.Sprintf("%s comps %s cap rate price per unit site:zillow.com OR site:loopnet.com", deal.PropertyType, location),
	}

	var searchText strings.Builder
	found := 0
	for _, q := range queries {
		resp, err := p.search.Search(ctx, tavily.SearchRequest{
			Query:       q,
			SearchDepth: tavily.DepthBasic,
			MaxResults:  5,
		})
		if err != nil {
			zap.L().Warn("tavily comp search failed", zap.String("query", q), zap.Error(err))
			continue
		}
		for _, r := range resp.Results {
			content := r.Content
			if len(content) > 500 {
				content = content[:500]
			}
			fmt.Fprintf(&searchText, "URL: %s\nTitle: %s\nContent: %s\n\n", r.URL, r.Title, content)
			found++
		}
	}

	if found == 0 {
		return nil, nil
	}

	resp, err := p.llm.CreateMessage(ctx, anthropic.MessageRequest{
		Model:     p.model,
		MaxTokens: p.maxTokens,
		System: []anthropic.SystemBlock{{
			Text: fmt.Sprintf(compExtractionPrompt, deal.PropertyType, deal.City, deal.State, deal.PropertyType),
		}},
		Messages: []anthropic.Message{{Role: "user", Content: "Search results:\n\n" + searchText.String()}},
	})
	if err != nil {
		return nil, eris.Wrap(err, "comps: tavily extraction")
	}
	resp.Usage.LogCost(p.model, "comp_extraction")

	comps := parseComps(resp.Text(), deal)
	zap.L().Info("tavily comps extracted",
		zap.String("deal_id", deal.ID.String()),
		zap.Int("count", len(comps)))
	return comps, nil
}

type wireComp struct {
	Address       string   `json:"address"`
	City          string   `json:"city"`
	State         string   `json:"state"`
	PropertyType  string   `json:"property_type"`
	YearBuilt     *int     `json:"year_built"`
	UnitCount     *int     `json:"unit_count"`
	SquareFeet    *float64 `json:"square_feet"`
	SalePrice     *float64 `json:"sale_price"`
	PricePerUnit  *float64 `json:"price_per_unit"`
	PricePerSqft  *float64 `json:"price_per_sqft"`
	CapRate       *float64 `json:"cap_rate"`
	RentPerUnit   *float64 `json:"rent_per_unit"`
	OccupancyRate *float64 `json:"occupancy_rate"`
	ExpenseRatio  *float64 `json:"expense_ratio"`
	SourceURL     *string  `json:"source_url"`
}

func parseComps(text string, deal *model.Deal) []model.Comp {
	cleaned := anthropic.CleanJSON(text)

	var raw struct {
		Comps []wireComp `json:"comps"`
	}
	if err := json.Unmarshal([]byte(cleaned), &raw); err != nil {
		zap.L().Warn("unparseable comp extraction response", zap.Error(err))
		return nil
	}

	fetchedAt := time.Now().UTC()
	out := make([]model.Comp, 0, len(raw.Comps))
	for _, c := range raw.Comps {
		address := strings.TrimSpace(c.Address)
		if address == "" {
			continue
		}
		city := c.City
		if city == "" {
			city = deal.City
		}
		state := c.State
		if state == "" {
			state = deal.State
		}

		out = append(out, model.Comp{
			DealID:        deal.ID,
			Address:       address,
			City:          city,
			State:         state,
			PropertyType:  model.ParsePropertyType(c.PropertyType, deal.PropertyType),
			Source:        model.CompSourceTavily,
			SourceURL:     c.SourceURL,
			YearBuilt:     c.YearBuilt,
			UnitCount:     c.UnitCount,
			SquareFeet:    c.SquareFeet,
			SalePrice:     c.SalePrice,
			PricePerUnit:  c.PricePerUnit,
			PricePerSqft:  c.PricePerSqft,
			CapRate:       c.CapRate,
			RentPerUnit:   c.RentPerUnit,
			OccupancyRate: c.OccupancyRate,
			ExpenseRatio:  c.ExpenseRatio,
			FetchedAt:     fetchedAt,
		})
	}
	return out
}
