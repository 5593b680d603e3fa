package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/dealdesk/dealdesk/internal/model"
)

// maxUploadBytes caps uploaded document size at 50MB.
const maxUploadBytes = 50 << 20

func (s *Server) createDeal(w http.ResponseWriter, r *http.Request) {
	var deal model.Deal
	if err := json.NewDecoder(r.Body).Decode(&deal); err != nil {
		writeError(w, model.Validationf("invalid request body"))
		return
	}
	created, err := s.deals.Create(r.Context(), deal)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) listDeals(w http.ResponseWriter, r *http.Request) {
	filter := model.DealFilter{
		PropertyType: model.PropertyType(r.URL.Query().Get("property_type")),
		City:         r.URL.Query().Get("city"),
	}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, model.Validationf("invalid limit"))
			return
		}
		filter.Limit = limit
	}
	deals, err := s.deals.List(r.Context(), filter)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, deals)
}

func (s *Server) getDeal(w http.ResponseWriter, r *http.Request) {
	dealID, err := pathUUID(r, "dealID")
	if err != nil {
		writeError(w, err)
		return
	}
	deal, err := s.deals.Get(r.Context(), dealID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, deal)
}

// uploadDocument accepts a multipart PDF upload and kicks off processing in
// the background. The response carries the document in its pending state.
func (s *Server) uploadDocument(w http.ResponseWriter, r *http.Request) {
	dealID, err := pathUUID(r, "dealID")
	if err != nil {
		writeError(w, err)
		return
	}
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, model.Validationf("invalid multipart form"))
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, model.Validationf("file field is required"))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxUploadBytes))
	if err != nil {
		writeError(w, err)
		return
	}

	docType := model.DocumentType(r.FormValue("document_type"))
	if docType == "" {
		docType = model.DocOfferingMemorandum
	}

	doc, err := s.documents.Upload(r.Context(), dealID, docType, header.Filename, data)
	if err != nil {
		writeError(w, err)
		return
	}

	go func() {
		ctx := context.WithoutCancel(r.Context())
		if err := s.documents.Process(ctx, doc.ID); err != nil {
			zap.L().Error("document processing failed",
				zap.String("document_id", doc.ID.String()),
				zap.Error(err))
		}
	}()

	writeJSON(w, http.StatusAccepted, doc)
}

func (s *Server) listDocuments(w http.ResponseWriter, r *http.Request) {
	dealID, err := pathUUID(r, "dealID")
	if err != nil {
		writeError(w, err)
		return
	}
	docs, err := s.documents.List(r.Context(), dealID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, docs)
}

func (s *Server) getDocument(w http.ResponseWriter, r *http.Request) {
	docID, err := pathUUID(r, "documentID")
	if err != nil {
		writeError(w, err)
		return
	}
	doc, err := s.documents.Get(r.Context(), docID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func (s *Server) validateDeal(w http.ResponseWriter, r *http.Request) {
	dealID, err := pathUUID(r, "dealID")
	if err != nil {
		writeError(w, err)
		return
	}
	phase := model.ValidationPhase(r.URL.Query().Get("phase"))
	if phase == "" {
		phase = model.PhaseQuick
	}
	if phase != model.PhaseQuick && phase != model.PhaseDeep {
		writeError(w, model.Validationf("phase must be quick or deep"))
		return
	}
	results, err := s.validations.ValidateFields(r.Context(), dealID, phase)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, results)
}

func (s *Server) listValidations(w http.ResponseWriter, r *http.Request) {
	dealID, err := pathUUID(r, "dealID")
	if err != nil {
		writeError(w, err)
		return
	}
	results, err := s.validations.List(r.Context(), dealID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, results)
}

func (s *Server) generateBenchmarks(w http.ResponseWriter, r *http.Request) {
	dealID, err := pathUUID(r, "dealID")
	if err != nil {
		writeError(w, err)
		return
	}
	assumptions, err := s.benchmarks.Generate(r.Context(), dealID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, assumptions)
}

func (s *Server) listComps(w http.ResponseWriter, r *http.Request) {
	dealID, err := pathUUID(r, "dealID")
	if err != nil {
		writeError(w, err)
		return
	}
	found, err := s.comps.List(r.Context(), dealID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, found)
}

func (s *Server) refreshComps(w http.ResponseWriter, r *http.Request) {
	dealID, err := pathUUID(r, "dealID")
	if err != nil {
		writeError(w, err)
		return
	}
	found, err := s.comps.Refresh(r.Context(), dealID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, found)
}

func (s *Server) listAssumptionSets(w http.ResponseWriter, r *http.Request) {
	dealID, err := pathUUID(r, "dealID")
	if err != nil {
		writeError(w, err)
		return
	}
	sets, err := s.store.ListAssumptionSets(r.Context(), dealID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sets)
}

func (s *Server) listAssumptions(w http.ResponseWriter, r *http.Request) {
	setID, err := pathUUID(r, "setID")
	if err != nil {
		writeError(w, err)
		return
	}
	assumptions, err := s.store.ListAssumptions(r.Context(), setID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, assumptions)
}

// upsertAssumption writes a manual override. The key comes from the path;
// the body supplies value, unit, and notes.
func (s *Server) upsertAssumption(w http.ResponseWriter, r *http.Request) {
	setID, err := pathUUID(r, "setID")
	if err != nil {
		writeError(w, err)
		return
	}
	key := chi.URLParam(r, "key")
	if key == "" {
		writeError(w, model.Validationf("assumption key is required"))
		return
	}

	var a model.Assumption
	if err := json.NewDecoder(r.Body).Decode(&a); err != nil {
		writeError(w, model.Validationf("invalid request body"))
		return
	}
	a.SetID = setID
	a.Key = key
	if a.SourceType == "" {
		a.SourceType = model.SourceManual
	}

	saved, err := s.store.UpsertAssumption(r.Context(), a)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, saved)
}

func (s *Server) computeModel(w http.ResponseWriter, r *http.Request) {
	setID, err := pathUUID(r, "setID")
	if err != nil {
		writeError(w, err)
		return
	}
	result, err := s.proforma.Compute(r.Context(), setID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) latestModel(w http.ResponseWriter, r *http.Request) {
	setID, err := pathUUID(r, "setID")
	if err != nil {
		writeError(w, err)
		return
	}
	result, err := s.proforma.Latest(r.Context(), setID)
	if err != nil {
		writeError(w, err)
		return
	}
	if result == nil {
		writeError(w, model.NotFoundf("no model result for set %s", setID))
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) createExport(w http.ResponseWriter, r *http.Request) {
	dealID, err := pathUUID(r, "dealID")
	if err != nil {
		writeError(w, err)
		return
	}
	setID, err := uuid.Parse(r.URL.Query().Get("set"))
	if err != nil {
		writeError(w, model.Validationf("set query parameter is required"))
		return
	}
	exp, err := s.exports.Export(r.Context(), dealID, setID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, exp)
}

func (s *Server) listExports(w http.ResponseWriter, r *http.Request) {
	dealID, err := pathUUID(r, "dealID")
	if err != nil {
		writeError(w, err)
		return
	}
	exports, err := s.exports.List(r.Context(), dealID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, exports)
}
