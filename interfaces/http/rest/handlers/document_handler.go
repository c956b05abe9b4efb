package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"memgate/application/ports"
	"memgate/application/services"
	"memgate/pkg/auth"
	"memgate/pkg/common"
	"memgate/pkg/utils"
)

// maxDocumentBody bounds request bodies carrying document content.
const maxDocumentBody = 4 << 20

// DocumentHandler handles document-related HTTP requests
type DocumentHandler struct {
	documents *services.DocumentService
	logger    *zap.Logger
}

// NewDocumentHandler creates a new document handler
func NewDocumentHandler(documents *services.DocumentService, logger *zap.Logger) *DocumentHandler {
	return &DocumentHandler{
		documents: documents,
		logger:    logger,
	}
}

// AddDocumentsRequest represents the request body for adding documents
type AddDocumentsRequest struct {
	Documents []DocumentPayload `json:"documents" validate:"required,min=1,max=100,dive"`
}

// DocumentPayload is one document in an add or update request
type DocumentPayload struct {
	ID       string                 `json:"id,omitempty"`
	Content  string                 `json:"content" validate:"required"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}

// QueryRequest represents the request body for a semantic query.
// Oversized limits are accepted and flagged by the smell monitor
// rather than rejected.
type QueryRequest struct {
	Query  string                 `json:"query" validate:"required,min=1"`
	Limit  int                    `json:"limit,omitempty" validate:"omitempty,gte=1,lte=1000"`
	Filter map[string]interface{} `json:"filter,omitempty"`
}

// Add handles POST /collections/{name}/documents
func (h *DocumentHandler) Add(w http.ResponseWriter, r *http.Request) {
	collection := chi.URLParam(r, "name")

	var req AddDocumentsRequest
	if err := common.ParseJSONBody(w, r, &req, maxDocumentBody); err != nil {
		common.RespondError(w, http.StatusBadRequest, "BAD_REQUEST", "Invalid request body: "+err.Error())
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		common.RespondError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	docs := make([]ports.Document, len(req.Documents))
	for i, d := range req.Documents {
		docs[i] = ports.Document{ID: d.ID, Content: d.Content, Metadata: d.Metadata}
	}

	project := auth.ProjectFromContext(r.Context())
	ids, err := h.documents.Add(r.Context(), collection, project, docs)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusCreated, map[string]interface{}{
		"collection": collection,
		"ids":        ids,
	})
}

// Query handles POST /collections/{name}/query
func (h *DocumentHandler) Query(w http.ResponseWriter, r *http.Request) {
	collection := chi.URLParam(r, "name")

	var req QueryRequest
	if err := common.ParseJSONBody(w, r, &req, 1<<20); err != nil {
		common.RespondError(w, http.StatusBadRequest, "BAD_REQUEST", "Invalid request body: "+err.Error())
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		common.RespondError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	project := auth.ProjectFromContext(r.Context())
	matches, err := h.documents.Query(r.Context(), collection, project, req.Query, req.Limit, req.Filter)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"collection": collection,
		"query":      req.Query,
		"matches":    matches,
		"count":      len(matches),
	})
}

// Get handles GET /collections/{name}/documents/{id}
func (h *DocumentHandler) Get(w http.ResponseWriter, r *http.Request) {
	collection := chi.URLParam(r, "name")
	id := chi.URLParam(r, "id")

	doc, err := h.documents.Get(r.Context(), collection, id)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, doc)
}

// Update handles PUT /collections/{name}/documents/{id}
func (h *DocumentHandler) Update(w http.ResponseWriter, r *http.Request) {
	collection := chi.URLParam(r, "name")
	id := chi.URLParam(r, "id")

	var payload DocumentPayload
	if err := common.ParseJSONBody(w, r, &payload, maxDocumentBody); err != nil {
		common.RespondError(w, http.StatusBadRequest, "BAD_REQUEST", "Invalid request body: "+err.Error())
		return
	}
	if err := utils.ValidateStruct(payload); err != nil {
		common.RespondError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	doc := ports.Document{ID: id, Content: payload.Content, Metadata: payload.Metadata}
	if err := h.documents.Update(r.Context(), collection, doc); err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, map[string]string{
		"id":      id,
		"message": "document updated",
	})
}

// Delete handles DELETE /collections/{name}/documents/{id}
func (h *DocumentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	collection := chi.URLParam(r, "name")
	id := chi.URLParam(r, "id")

	if err := h.documents.Delete(r.Context(), collection, id); err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, map[string]string{
		"id":      id,
		"message": "document deleted",
	})
}
