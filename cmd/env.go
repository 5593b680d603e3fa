package main

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/dealdesk/dealdesk/internal/benchmark"
	"github.com/dealdesk/dealdesk/internal/comps"
	"github.com/dealdesk/dealdesk/internal/docproc"
	"github.com/dealdesk/dealdesk/internal/service"
	"github.com/dealdesk/dealdesk/internal/storage"
	"github.com/dealdesk/dealdesk/internal/store"
	"github.com/dealdesk/dealdesk/internal/validation"
	anthropicpkg "github.com/dealdesk/dealdesk/pkg/anthropic"
	"github.com/dealdesk/dealdesk/pkg/rentcast"
	"github.com/dealdesk/dealdesk/pkg/tavily"
)

// appEnv holds the initialized store and services shared by the commands.
type appEnv struct {
	Store       store.Store
	Deals       *service.DealService
	Documents   *service.DocumentService
	Validations *service.ValidationService
	Benchmarks  *service.BenchmarkService
	Comps       *service.CompsService
	Proforma    *service.ProformaService
	Exports     *service.ExportService
}

// Close releases resources held by the environment.
func (e *appEnv) Close() {
	if e.Store != nil {
		_ = e.Store.Close()
	}
}

// initEnv sets up the store, API clients, and all services. Callers should
// defer env.Close().
func initEnv(ctx context.Context) (*appEnv, error) {
	if cfg.Store.DatabaseURL == "" {
		return nil, eris.New("DEALDESK_STORE_DATABASE_URL is required")
	}
	if cfg.Anthropic.Key == "" {
		return nil, eris.New("DEALDESK_ANTHROPIC_KEY is required")
	}

	st, err := store.NewPostgres(ctx, cfg.Store.DatabaseURL, &store.PoolConfig{
		MaxConns: cfg.Store.MaxConns,
		MinConns: cfg.Store.MinConns,
	})
	if err != nil {
		return nil, err
	}
	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, eris.Wrap(err, "migrate store")
	}

	llm := anthropicpkg.NewClient(cfg.Anthropic.Key)
	search := tavily.NewClient(cfg.Tavily.Key,
		tavily.WithBaseURL(cfg.Tavily.BaseURL),
		tavily.WithRateLimit(cfg.Tavily.RequestsPerSec))
	rentcastClient := rentcast.NewClient(cfg.Rentcast.Key, rentcast.WithBaseURL(cfg.Rentcast.BaseURL))

	files := storage.NewLocal(cfg.Storage.Dir)
	processor := docproc.NewPdfToText(cfg.OCR.PdfToTextPath)
	normalizer := docproc.NewNormalizer(llm, cfg.Anthropic.HaikuModel, cfg.Anthropic.MaxTokens)
	if cfg.OCR.FieldCatalogPath != "" {
		catalog, err := docproc.LoadCatalog(cfg.OCR.FieldCatalogPath)
		if err != nil {
			_ = st.Close()
			return nil, err
		}
		normalizer = normalizer.WithCatalog(catalog)
	}

	orch := validation.NewOrchestrator(llm, search, cfg.Anthropic.SonnetModel, cfg.Anthropic.MaxTokens, cfg.Validation)
	gen := benchmark.NewGenerator(llm, cfg.Anthropic.SonnetModel, cfg.Anthropic.MaxTokens)
	agg := comps.NewAggregator(
		comps.NewRentcastProvider(rentcastClient, cfg.Rentcast.Key, cfg.Rentcast.RadiusMiles, cfg.Rentcast.Limit),
		comps.NewTavilyProvider(search, llm, cfg.Anthropic.HaikuModel, cfg.Anthropic.MaxTokens),
	)

	deals := service.NewDealService(st, llm, cfg.Anthropic.HaikuModel, cfg.Anthropic.MaxTokens)

	return &appEnv{
		Store:       st,
		Deals:       deals,
		Documents:   service.NewDocumentService(st, files, processor, normalizer, deals),
		Validations: service.NewValidationService(st, orch),
		Benchmarks:  service.NewBenchmarkService(st, gen),
		Comps:       service.NewCompsService(st, agg),
		Proforma:    service.NewProformaService(st),
		Exports:     service.NewExportService(st, files),
	}, nil
}
