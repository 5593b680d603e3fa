// Package validation drives the two-phase agentic market validation loop: a
// bounded tool-calling conversation with the LLM where the only tool is a web
// search, followed by structured parsing of the final verdict.
package validation

import (
	"context"
	"encoding/json"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/dealdesk/dealdesk/internal/config"
	"github.com/dealdesk/dealdesk/internal/model"
	"github.com/dealdesk/dealdesk/pkg/anthropic"
	"github.com/dealdesk/dealdesk/pkg/tavily"
)

// Request carries the context for one validation run.
type Request struct {
	Deal       *model.Deal
	Fields     []model.ExtractedField
	Benchmarks []model.Assumption
	// Prior holds earlier verdicts serialized into the deep phase prompt.
	// Empty for the quick phase.
	Prior []model.FieldValidationResult
}

// Orchestrator runs one phase of the validation loop at a time. Rounds within
// a phase are strictly sequential; each round's search results feed the next
// model call.
type Orchestrator struct {
	llm       anthropic.Client
	search    tavily.Client
	model     string
	maxTokens int64
	quick     config.PhaseConfig
	deep      config.PhaseConfig
}

// NewOrchestrator wires the orchestrator with its clients and phase bounds.
func NewOrchestrator(llm anthropic.Client, search tavily.Client, llmModel string, maxTokens int64, cfg config.ValidationConfig) *Orchestrator {
	return &Orchestrator{
		llm:       llm,
		search:    search,
		model:     llmModel,
		maxTokens: maxTokens,
		quick:     cfg.Quick,
		deep:      cfg.Deep,
	}
}

var webSearchTool = anthropic.Tool{
	Name:        "web_search",
	Description: "Search the web for current market data. Returns a JSON list of results with url, title and snippet.",
	InputSchema: anthropic.ToolInputSchema{
		Properties: map[string]any{
			"query": map[string]any{
				"type":        "string",
				"description": "The search query.",
			},
		},
		Required: []string{"query"},
	},
}

// Validate runs the requested phase and returns the parsed verdicts plus
// every search step executed, in call order. An unparseable final answer
// yields an empty verdict set, not an error.
func (o *Orchestrator) Validate(ctx context.Context, phase model.ValidationPhase, req Request) ([]model.FieldValidationResult, []model.SearchStep, error) {
	bounds := o.quick
	if phase == model.PhaseDeep {
		bounds = o.deep
	}

	msgs := []anthropic.Message{
		{Role: "user", Content: buildUserPrompt(phase, req)},
	}

	var steps []model.SearchStep
	var last *anthropic.MessageResponse

	for round := 0; round < bounds.MaxRounds; round++ {
		resp, err := o.llm.CreateMessage(ctx, anthropic.MessageRequest{
			Model:     o.model,
			MaxTokens: o.maxTokens,
			System:    []anthropic.SystemBlock{{Text: validationSystemPrompt}},
			Messages:  msgs,
			Tools:     []anthropic.Tool{webSearchTool},
		})
		if err != nil {
			return nil, steps, eris.Wrap(err, "validation: create message")
		}
		resp.Usage.LogCost(o.model, string(phase)+"_validation")
		last = resp

		if len(resp.ToolCalls) == 0 {
			return parseValidations(resp.Text()), steps, nil
		}

		msgs = append(msgs, anthropic.Message{
			Role:      "assistant",
			Content:   resp.Text(),
			ToolCalls: resp.ToolCalls,
		})

		results := make([]anthropic.ToolResult, 0, len(resp.ToolCalls))
		for _, tc := range resp.ToolCalls {
			query := toolQuery(tc)
			hits, err := o.runSearch(ctx, query, bounds)
			steps = append(steps, model.SearchStep{
				Phase:   phase,
				Query:   query,
				Results: hits,
			})
			if err != nil {
				zap.L().Warn("web search failed",
					zap.String("phase", string(phase)),
					zap.String("query", query),
					zap.Error(err))
				results = append(results, anthropic.ToolResult{
					ToolCallID: tc.ID,
					Content:    "search failed: " + err.Error(),
					IsError:    true,
				})
				continue
			}
			payload, _ := json.Marshal(hits)
			results = append(results, anthropic.ToolResult{
				ToolCallID: tc.ID,
				Content:    string(payload),
			})
		}
		msgs = append(msgs, anthropic.Message{Role: "user", ToolResults: results})
	}

	// Round cap exceeded without a final answer. Best effort: parse whatever
	// the last response said.
	zap.L().Warn("validation round cap exceeded",
		zap.String("phase", string(phase)),
		zap.Int("max_rounds", bounds.MaxRounds))
	if last == nil {
		return nil, steps, nil
	}
	return parseValidations(last.Text()), steps, nil
}

func (o *Orchestrator) runSearch(ctx context.Context, query string, bounds config.PhaseConfig) ([]model.SearchHit, error) {
	resp, err := o.search.Search(ctx, tavily.SearchRequest{
		Query:       query,
		SearchDepth: bounds.SearchDepth,
		MaxResults:  bounds.MaxResults,
	})
	if err != nil {
		return nil, err
	}

	hits := make([]model.SearchHit, 0, len(resp.Results))
	for _, r := range resp.Results {
		hits = append(hits, model.SearchHit{
			URL:     r.URL,
			Title:   r.Title,
			Snippet: r.Content,
		})
	}
	return hits, nil
}

func toolQuery(tc anthropic.ToolCall) string {
	var in struct {
		Query string `json:"query"`
	}
	if err := json.Unmarshal(tc.Input, &in); err != nil {
		zap.L().Warn("malformed tool input", zap.String("tool", tc.Name), zap.Error(err))
		return ""
	}
	return in.Query
}
