package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"memgate/application/services"
	"memgate/pkg/common"
	"memgate/pkg/utils"
)

// CollectionHandler handles collection-related HTTP requests
type CollectionHandler struct {
	collections *services.CollectionService
	logger      *zap.Logger
}

// NewCollectionHandler creates a new collection handler
func NewCollectionHandler(collections *services.CollectionService, logger *zap.Logger) *CollectionHandler {
	return &CollectionHandler{
		collections: collections,
		logger:      logger,
	}
}

// CreateCollectionRequest represents the request body for creating a collection
type CreateCollectionRequest struct {
	Name        string `json:"name" validate:"required,min=1,max=128"`
	Description string `json:"description,omitempty" validate:"omitempty,max=512"`
}

// List handles GET /collections
func (h *CollectionHandler) List(w http.ResponseWriter, r *http.Request) {
	infos, err := h.collections.List(r.Context())
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"collections": infos,
		"count":       len(infos),
	})
}

// Create handles POST /collections
func (h *CollectionHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateCollectionRequest
	if err := common.ParseJSONBody(w, r, &req, 1<<20); err != nil {
		common.RespondError(w, http.StatusBadRequest, "BAD_REQUEST", "Invalid request body: "+err.Error())
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		common.RespondError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	if err := h.collections.Create(r.Context(), req.Name, req.Description); err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusCreated, map[string]string{
		"name":    req.Name,
		"message": "collection created",
	})
}

// Get handles GET /collections/{name}
func (h *CollectionHandler) Get(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	info, err := h.collections.Get(r.Context(), name)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, info)
}

// Count handles GET /collections/{name}/count
func (h *CollectionHandler) Count(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	count, err := h.collections.Count(r.Context(), name)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"collection": name,
		"count":      count,
	})
}

// ForkCollectionRequest represents the request body for forking a collection
type ForkCollectionRequest struct {
	NewName string `json:"new_name" validate:"required,min=1,max=128"`
}

// Peek handles GET /collections/{name}/peek?limit=...
func (h *CollectionHandler) Peek(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			common.RespondError(w, http.StatusBadRequest, "BAD_REQUEST", "limit must be a positive integer")
			return
		}
		limit = n
	}

	docs, err := h.collections.Peek(r.Context(), name, limit)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"collection": name,
		"documents":  docs,
		"count":      len(docs),
	})
}

// Fork handles POST /collections/{name}/fork
func (h *CollectionHandler) Fork(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	var req ForkCollectionRequest
	if err := common.ParseJSONBody(w, r, &req, 1<<20); err != nil {
		common.RespondError(w, http.StatusBadRequest, "BAD_REQUEST", "Invalid request body: "+err.Error())
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		common.RespondError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	copied, err := h.collections.Fork(r.Context(), name, req.NewName)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusCreated, map[string]interface{}{
		"source":    name,
		"target":    req.NewName,
		"documents": copied,
	})
}

// Delete handles DELETE /collections/{name}
func (h *CollectionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	if err := h.collections.Delete(r.Context(), name); err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, map[string]string{
		"name":    name,
		"message": "collection deleted",
	})
}
