package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"memgate/domain/memory"
	"memgate/pkg/auth"
	"memgate/pkg/common"
	"memgate/pkg/keycodec"
	"memgate/pkg/utils"
)

// MemoryHandler exposes the tenant cache over HTTP
type MemoryHandler struct {
	cache  *memory.Cache
	logger *zap.Logger
}

// NewMemoryHandler creates a new memory handler
func NewMemoryHandler(cache *memory.Cache, logger *zap.Logger) *MemoryHandler {
	return &MemoryHandler{
		cache:  cache,
		logger: logger,
	}
}

// SetEntryRequest represents the request body for storing a cache entry
type SetEntryRequest struct {
	Key        string      `json:"key,omitempty" validate:"omitempty,max=256"`
	Data       interface{} `json:"data" validate:"required"`
	TTLSeconds int         `json:"ttl_seconds,omitempty" validate:"omitempty,gte=1"`
}

// Set handles POST /memory/entries. When no key is given one is
// derived from the data itself, so identical payloads share an entry.
func (h *MemoryHandler) Set(w http.ResponseWriter, r *http.Request) {
	var req SetEntryRequest
	if err := common.ParseJSONBody(w, r, &req, 1<<20); err != nil {
		common.RespondError(w, http.StatusBadRequest, "BAD_REQUEST", "Invalid request body: "+err.Error())
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		common.RespondError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	key := req.Key
	if key == "" {
		derived, err := keycodec.Sum(req.Data)
		if err != nil {
			common.RespondError(w, http.StatusBadRequest, "BAD_REQUEST", "Data is not cacheable: "+err.Error())
			return
		}
		key = derived
	}

	project := auth.ProjectFromContext(r.Context())
	ttl := time.Duration(req.TTLSeconds) * time.Second
	stored := h.cache.Set(key, req.Data, ttl, project)

	common.RespondJSON(w, http.StatusCreated, map[string]string{
		"key": stored,
	})
}

// Get handles GET /memory/entries/{key}
func (h *MemoryHandler) Get(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	project := auth.ProjectFromContext(r.Context())

	data, ok := h.cache.Get(key, project)
	if !ok {
		common.RespondError(w, http.StatusNotFound, "NOT_FOUND", "cache entry not found or expired")
		return
	}
	common.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"key":  key,
		"data": data,
	})
}

// Stats handles GET /memory/stats
func (h *MemoryHandler) Stats(w http.ResponseWriter, r *http.Request) {
	project := auth.ProjectFromContext(r.Context())
	common.RespondJSON(w, http.StatusOK, h.cache.Stats(project))
}

// Clear handles POST /memory/clear. It empties the caller's scope.
func (h *MemoryHandler) Clear(w http.ResponseWriter, r *http.Request) {
	project := auth.ProjectFromContext(r.Context())
	h.cache.Clear(project)

	h.logger.Info("Cache scope cleared", zap.String("project", project))
	common.RespondJSON(w, http.StatusOK, map[string]string{
		"message": "cache cleared",
	})
}

// ClearAll handles POST /memory/clear-all. It drops every project
// scope while leaving the global scope in place.
func (h *MemoryHandler) ClearAll(w http.ResponseWriter, r *http.Request) {
	h.cache.ClearAllProjects()

	h.logger.Info("All project cache scopes cleared")
	common.RespondJSON(w, http.StatusOK, map[string]string{
		"message": "all project caches cleared",
	})
}
