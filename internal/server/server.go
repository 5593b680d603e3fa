// Package server exposes the deal evaluation pipeline over HTTP.
package server

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/dealdesk/dealdesk/internal/model"
	"github.com/dealdesk/dealdesk/internal/store"
)

// DealAPI is the deal surface the server depends on.
type DealAPI interface {
	Create(ctx context.Context, deal model.Deal) (*model.Deal, error)
	Get(ctx context.Context, dealID uuid.UUID) (*model.Deal, error)
	List(ctx context.Context, filter model.DealFilter) ([]model.Deal, error)
}

// DocumentAPI is the document surface the server depends on.
type DocumentAPI interface {
	Upload(ctx context.Context, dealID uuid.UUID, docType model.DocumentType, filename string, data []byte) (*model.Document, error)
	Process(ctx context.Context, docID uuid.UUID) error
	Get(ctx context.Context, docID uuid.UUID) (*model.Document, error)
	List(ctx context.Context, dealID uuid.UUID) ([]model.Document, error)
}

// ValidationAPI is the market validation surface the server depends on.
type ValidationAPI interface {
	ValidateFields(ctx context.Context, dealID uuid.UUID, phase model.ValidationPhase) ([]model.FieldValidation, error)
	List(ctx context.Context, dealID uuid.UUID) ([]model.FieldValidation, error)
}

// BenchmarkAPI generates AI market benchmarks for a deal.
type BenchmarkAPI interface {
	Generate(ctx context.Context, dealID uuid.UUID) ([]model.Assumption, error)
}

// CompsAPI is the comparable-search surface the server depends on.
type CompsAPI interface {
	Refresh(ctx context.Context, dealID uuid.UUID) ([]model.Comp, error)
	List(ctx context.Context, dealID uuid.UUID) ([]model.Comp, error)
}

// ProformaAPI computes and reads model results.
type ProformaAPI interface {
	Compute(ctx context.Context, setID uuid.UUID) (*model.ModelResult, error)
	Latest(ctx context.Context, setID uuid.UUID) (*model.ModelResult, error)
}

// ExportAPI renders and lists xlsx exports.
type ExportAPI interface {
	Export(ctx context.Context, dealID, setID uuid.UUID) (*model.Export, error)
	List(ctx context.Context, dealID uuid.UUID) ([]model.Export, error)
}

// Server routes HTTP requests to the services.
type Server struct {
	store       store.Store
	deals       DealAPI
	documents   DocumentAPI
	validations ValidationAPI
	benchmarks  BenchmarkAPI
	comps       CompsAPI
	proforma    ProformaAPI
	exports     ExportAPI
}

// New wires the server with its services.
func New(st store.Store, deals DealAPI, documents DocumentAPI, validations ValidationAPI,
	benchmarks BenchmarkAPI, comps CompsAPI, proforma ProformaAPI, exports ExportAPI) *Server {
	return &Server{
		store:       st,
		deals:       deals,
		documents:   documents,
		validations: validations,
		benchmarks:  benchmarks,
		comps:       comps,
		proforma:    proforma,
		exports:     exports,
	}
}

// Router builds the chi router with all API routes mounted.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Route("/deals", func(r chi.Router) {
			r.Post("/", s.createDeal)
			r.Get("/", s.listDeals)
			r.Route("/{dealID}", func(r chi.Router) {
				r.Get("/", s.getDeal)
				r.Post("/documents", s.uploadDocument)
				r.Get("/documents", s.listDocuments)
				r.Post("/validate", s.validateDeal)
				r.Get("/validations", s.listValidations)
				r.Post("/benchmarks", s.generateBenchmarks)
				r.Get("/comps", s.listComps)
				r.Post("/comps/refresh", s.refreshComps)
				r.Get("/sets", s.listAssumptionSets)
				r.Post("/exports", s.createExport)
				r.Get("/exports", s.listExports)
			})
		})
		r.Get("/documents/{documentID}", s.getDocument)
		r.Route("/sets/{setID}", func(r chi.Router) {
			r.Get("/assumptions", s.listAssumptions)
			r.Put("/assumptions/{key}", s.upsertAssumption)
			r.Post("/model", s.computeModel)
			r.Get("/model", s.latestModel)
		})
	})

	return r
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Warn("failed to encode response", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case model.IsNotFound(err):
		status = http.StatusNotFound
	case model.IsValidation(err):
		status = http.StatusBadRequest
	}
	if status == http.StatusInternalServerError {
		zap.L().Error("request failed", zap.Error(err))
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func pathUUID(r *http.Request, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		return uuid.Nil, model.Validationf("invalid %s", name)
	}
	return id, nil
}
