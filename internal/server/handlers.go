package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/lexfold/lexfold/internal/models"
	"github.com/lexfold/lexfold/internal/render"
	"github.com/lexfold/lexfold/internal/storage"
	"github.com/lexfold/lexfold/internal/templates"
)

// tenantHeader carries the caller's tenant. Missing or empty means the
// global scope.
const tenantHeader = "X-Tenant-ID"

const maxUploadBytes = 32 << 20

func tenantID(r *http.Request) string {
	return strings.TrimSpace(r.Header.Get(tenantHeader))
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	docCount, err := s.deps.Search.DocCount()
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"documents":         docCount,
		"catalog_size":      s.deps.Catalog.Len(),
		"vector_index_size": s.deps.Vectors.Size(),
		"pending_jobs":      s.deps.Jobs.Pending(),
		"config": map[string]interface{}{
			"embedding_dimensions": s.deps.Config.Embedding.Dimensions,
			"full_text_weight":     s.deps.Config.Search.FullTextWeight,
			"semantic_weight":      s.deps.Config.Search.SemanticWeight,
			"template_directory":   s.deps.Config.Templates.Directory,
		},
	})
}

func (s *Server) handleListTemplates(w http.ResponseWriter, r *http.Request) {
	names, err := s.deps.Templates.List(r.Context(), tenantID(r))
	if err != nil {
		s.logger.Error("list templates failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{"templates": names})
}

func (s *Server) handleTemplateSchema(w http.ResponseWriter, r *http.Request) {
	filename := chi.URLParam(r, "filename")
	schema, err := s.deps.Templates.Schema(r.Context(), tenantID(r), filename)
	if err != nil {
		if errors.Is(err, templates.ErrTemplateNotFound) {
			s.respondError(w, http.StatusNotFound, "template not found")
			return
		}
		s.logger.Error("schema inference failed", zap.String("template", filename), zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"success":       true,
		"template_id":   schema.TemplateID,
		"template_type": schema.TemplateType,
		"sections":      schema.Sections,
	})
}

type generateRequest struct {
	Filename         string                `json:"filename"`
	StructuredInputs map[string]string     `json:"structured_inputs"`
	SelectedClauses  []string              `json:"selected_clauses"`
	CustomClauses    []models.CustomClause `json:"custom_clauses"`
	Constraints      []models.Constraint   `json:"constraints"`
}

// tenantClauses adapts tenant-scoped storage to the clause library the
// rendering engine expects.
type tenantClauses struct {
	store    storage.Storage
	tenantID string
}

func (c *tenantClauses) GetClause(ctx context.Context, clauseID string) (string, error) {
	clause, err := c.store.GetClause(ctx, c.tenantID, clauseID)
	if err != nil {
		return "", err
	}
	return clause.Content, nil
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Filename == "" {
		s.respondError(w, http.StatusBadRequest, "filename is required")
		return
	}
	tenant := tenantID(r)

	schema, err := s.deps.Templates.RenderSchema(r.Context(), tenant, req.Filename)
	if err != nil {
		if errors.Is(err, templates.ErrTemplateNotFound) {
			s.respondError(w, http.StatusNotFound, "template not found")
			return
		}
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	renderer := render.NewEngine(&tenantClauses{store: s.deps.Storage, tenantID: tenant})
	result, err := renderer.Render(r.Context(), schema, &models.RenderRequest{
		StructuredInputs: req.StructuredInputs,
		SelectedClauses:  req.SelectedClauses,
		CustomClauses:    req.CustomClauses,
		Constraints:      req.Constraints,
	})
	if err != nil {
		s.logger.Error("rendering failed", zap.String("template", req.Filename), zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"success":           true,
		"template_type":     schema.TemplateType,
		"rendered_text":     result.RenderedText,
		"unresolved_fields": result.Unresolved,
	})
}

type extractRequest struct {
	Text  string `json:"text"`
	Title string `json:"title,omitempty"`
	// ID, when set, persists the contract with its extracted metadata and
	// indexes it for search.
	ID string `json:"id,omitempty"`
}

func (s *Server) handleExtract(w http.ResponseWriter, r *http.Request) {
	var req extractRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Text == "" {
		s.respondError(w, http.StatusBadRequest, "text is required")
		return
	}
	tenant := tenantID(r)

	metadata := s.deps.Extractor.Extract(req.Text)

	if req.ID != "" {
		contract := &models.Contract{
			ID:       req.ID,
			TenantID: tenant,
			Title:    req.Title,
			Text:     req.Text,
			Metadata: metadata,
		}
		if err := s.deps.Storage.SaveContract(r.Context(), contract); err != nil {
			s.logger.Error("save contract failed", zap.String("id", req.ID), zap.Error(err))
			s.respondError(w, http.StatusInternalServerError, err.Error())
			return
		}
		if err := s.indexContract(r.Context(), contract); err != nil {
			s.logger.Error("index contract failed", zap.String("id", req.ID), zap.Error(err))
			s.respondError(w, http.StatusInternalServerError, err.Error())
			return
		}
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"success":  true,
		"metadata": metadata,
	})
}

func (s *Server) indexContract(ctx context.Context, contract *models.Contract) error {
	var keywords []string
	if contract.Metadata != nil {
		keywords = contract.Metadata.IdentifiedClauses
	}
	return s.deps.Indexer.IndexDocument(ctx, &models.SearchDocument{
		TenantID:   contract.TenantID,
		EntityType: models.EntityContract,
		EntityID:   contract.ID,
		Title:      contract.Title,
		Content:    contract.Text,
		Keywords:   keywords,
	})
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "file is required")
		return
	}
	defer file.Close()

	content, err := io.ReadAll(io.LimitReader(file, maxUploadBytes))
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "read upload failed")
		return
	}

	text, err := s.deps.Converter.FromBytes(content, strings.ToLower(filepath.Ext(header.Filename)))
	if err != nil {
		s.respondError(w, http.StatusUnprocessableEntity, fmt.Sprintf("conversion failed: %v", err))
		return
	}

	tenant := tenantID(r)
	title := r.FormValue("title")
	if title == "" {
		title = header.Filename
	}
	contract := &models.Contract{
		ID:       uuid.New().String(),
		TenantID: tenant,
		Title:    title,
		Text:     text,
	}
	if err := s.deps.Storage.SaveContract(r.Context(), contract); err != nil {
		s.logger.Error("save uploaded contract failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	// Extraction and indexing run in the background; deleting the document
	// cancels them before stale results can land.
	key := models.DocumentKey(tenant, models.EntityContract, contract.ID)
	s.deps.Jobs.Submit(key, func(ctx context.Context) {
		metadata := s.deps.Extractor.Extract(contract.Text)
		if ctx.Err() != nil {
			return
		}
		contract.Metadata = metadata
		if err := s.deps.Storage.SaveContract(ctx, contract); err != nil {
			s.logger.Error("save extracted metadata failed", zap.String("id", contract.ID), zap.Error(err))
			return
		}
		if err := s.indexContract(ctx, contract); err != nil {
			s.logger.Error("index uploaded contract failed", zap.String("id", contract.ID), zap.Error(err))
		}
	})

	s.respondJSON(w, http.StatusAccepted, map[string]interface{}{
		"id":     contract.ID,
		"title":  title,
		"status": "processing",
	})
}

type redactRequest struct {
	Text string `json:"text"`
}

func (s *Server) handleRedact(w http.ResponseWriter, r *http.Request) {
	var req redactRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	redacted, counts := s.deps.Redactor.Redact(req.Text)
	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"success":          true,
		"redacted_text":    redacted,
		"redaction_counts": counts,
	})
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var query models.SearchQuery
	if err := json.NewDecoder(r.Body).Decode(&query); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	response, err := s.deps.Search.Query(r.Context(), tenantID(r), &query)
	if err != nil {
		if errors.Is(err, models.ErrInvalidWeights) || strings.Contains(err.Error(), "query cannot be empty") ||
			strings.Contains(err.Error(), "unknown search mode") {
			s.respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		s.logger.Error("search failed", zap.String("query", query.Query), zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, response)
}

func (s *Server) handleSuggest(w http.ResponseWriter, r *http.Request) {
	prefix := r.URL.Query().Get("q")
	if prefix == "" {
		s.respondError(w, http.StatusBadRequest, "q is required")
		return
	}
	suggestions, err := s.deps.Search.Suggest(r.Context(), tenantID(r), prefix)
	if err != nil {
		s.logger.Error("suggest failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if suggestions == nil {
		suggestions = []string{}
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{"suggestions": suggestions})
}

func (s *Server) handleFacets(w http.ResponseWriter, r *http.Request) {
	facets, err := s.deps.Search.Facets(r.Context(), tenantID(r))
	if err != nil {
		s.logger.Error("facets failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, facets)
}

func (s *Server) handleDeleteDocument(w http.ResponseWriter, r *http.Request) {
	entityType := models.EntityType(chi.URLParam(r, "entityType"))
	id := chi.URLParam(r, "id")
	if entityType != models.EntityContract && entityType != models.EntityClause {
		s.respondError(w, http.StatusBadRequest, "unknown entity type")
		return
	}
	tenant := tenantID(r)

	if err := s.deps.Indexer.Delete(r.Context(), tenant, entityType, id); err != nil {
		s.logger.Error("delete document failed", zap.String("id", id), zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if entityType == models.EntityContract {
		if err := s.deps.Storage.DeleteContract(r.Context(), tenant, id); err != nil && !errors.Is(err, storage.ErrNotFound) {
			s.logger.Error("delete contract failed", zap.String("id", id), zap.Error(err))
			s.respondError(w, http.StatusInternalServerError, err.Error())
			return
		}
	}
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}
