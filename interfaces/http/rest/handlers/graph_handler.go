package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"memgate/domain/graph"
	"memgate/pkg/common"
	"memgate/pkg/utils"
)

// defaultMaxDepth bounds path searches when the caller does not say.
const defaultMaxDepth = 5

// GraphHandler exposes the entity-relationship graph over HTTP
type GraphHandler struct {
	graph  *graph.Graph
	logger *zap.Logger
}

// NewGraphHandler creates a new graph handler
func NewGraphHandler(g *graph.Graph, logger *zap.Logger) *GraphHandler {
	return &GraphHandler{
		graph:  g,
		logger: logger,
	}
}

// CreateEntityRequest represents the request body for adding an entity
type CreateEntityRequest struct {
	ID         string                 `json:"id,omitempty" validate:"omitempty,max=256"`
	Type       string                 `json:"type" validate:"required,min=1,max=128"`
	Properties map[string]interface{} `json:"properties,omitempty"`
}

// CreateRelationshipRequest represents the request body for adding a relationship
type CreateRelationshipRequest struct {
	ID         string                 `json:"id,omitempty" validate:"omitempty,max=256"`
	Source     string                 `json:"source" validate:"required"`
	Target     string                 `json:"target" validate:"required"`
	Type       string                 `json:"type" validate:"required,min=1,max=128"`
	Properties map[string]interface{} `json:"properties,omitempty"`
}

// CreateEntity handles POST /graph/entities
func (h *GraphHandler) CreateEntity(w http.ResponseWriter, r *http.Request) {
	var req CreateEntityRequest
	if err := common.ParseJSONBody(w, r, &req, 1<<20); err != nil {
		common.RespondError(w, http.StatusBadRequest, "BAD_REQUEST", "Invalid request body: "+err.Error())
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		common.RespondError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	if req.ID == "" {
		req.ID = uuid.New().String()
	}
	entity := h.graph.AddEntity(req.ID, req.Type, req.Properties)

	common.RespondJSON(w, http.StatusCreated, entity)
}

// GetEntity handles GET /graph/entities/{id}
func (h *GraphHandler) GetEntity(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	entity, ok := h.graph.GetEntity(id)
	if !ok {
		common.RespondError(w, http.StatusNotFound, "NOT_FOUND", "entity not found")
		return
	}
	common.RespondJSON(w, http.StatusOK, entity)
}

// ListEntities handles GET /graph/entities?type=...
func (h *GraphHandler) ListEntities(w http.ResponseWriter, r *http.Request) {
	entityType := r.URL.Query().Get("type")
	if entityType == "" {
		common.RespondError(w, http.StatusBadRequest, "BAD_REQUEST", "type query parameter is required")
		return
	}

	entities := h.graph.GetEntitiesByType(entityType)
	common.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"type":     entityType,
		"entities": entities,
		"count":    len(entities),
	})
}

// GetConnected handles GET /graph/entities/{id}/connected?type=...
func (h *GraphHandler) GetConnected(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	relType := r.URL.Query().Get("type")

	if _, ok := h.graph.GetEntity(id); !ok {
		common.RespondError(w, http.StatusNotFound, "NOT_FOUND", "entity not found")
		return
	}

	connections := h.graph.GetConnected(id, relType)
	common.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"entity":      id,
		"connections": connections,
		"count":       len(connections),
	})
}

// CreateRelationship handles POST /graph/relationships
func (h *GraphHandler) CreateRelationship(w http.ResponseWriter, r *http.Request) {
	var req CreateRelationshipRequest
	if err := common.ParseJSONBody(w, r, &req, 1<<20); err != nil {
		common.RespondError(w, http.StatusBadRequest, "BAD_REQUEST", "Invalid request body: "+err.Error())
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		common.RespondError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	if req.ID == "" {
		req.ID = uuid.New().String()
	}
	rel, ok := h.graph.AddRelationship(req.ID, req.Source, req.Target, req.Type, req.Properties)
	if !ok {
		common.RespondError(w, http.StatusUnprocessableEntity, "UNKNOWN_ENTITY", "source or target entity does not exist")
		return
	}

	common.RespondJSON(w, http.StatusCreated, rel)
}

// GetRelationshipsBetween handles GET /graph/relationships?source=...&target=...
func (h *GraphHandler) GetRelationshipsBetween(w http.ResponseWriter, r *http.Request) {
	source := r.URL.Query().Get("source")
	target := r.URL.Query().Get("target")
	if source == "" || target == "" {
		common.RespondError(w, http.StatusBadRequest, "BAD_REQUEST", "source and target query parameters are required")
		return
	}

	rels := h.graph.GetRelationshipsBetween(source, target)
	common.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"source":        source,
		"target":        target,
		"relationships": rels,
		"count":         len(rels),
	})
}

// FindPath handles GET /graph/path?source=...&target=...&max_depth=...
func (h *GraphHandler) FindPath(w http.ResponseWriter, r *http.Request) {
	source := r.URL.Query().Get("source")
	target := r.URL.Query().Get("target")
	if source == "" || target == "" {
		common.RespondError(w, http.StatusBadRequest, "BAD_REQUEST", "source and target query parameters are required")
		return
	}

	maxDepth := defaultMaxDepth
	if raw := r.URL.Query().Get("max_depth"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			common.RespondError(w, http.StatusBadRequest, "BAD_REQUEST", "max_depth must be a positive integer")
			return
		}
		maxDepth = n
	}

	path, found := h.graph.FindPath(source, target, maxDepth)
	common.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"source": source,
		"target": target,
		"found":  found,
		"path":   path,
	})
}

// Statistics handles GET /graph/stats
func (h *GraphHandler) Statistics(w http.ResponseWriter, r *http.Request) {
	common.RespondJSON(w, http.StatusOK, h.graph.Statistics())
}

// Export handles GET /graph/export
func (h *GraphHandler) Export(w http.ResponseWriter, r *http.Request) {
	common.RespondJSON(w, http.StatusOK, h.graph.Export())
}

// Import handles POST /graph/import. The current graph is replaced
// wholesale; relationships referencing unknown entities are dropped.
func (h *GraphHandler) Import(w http.ResponseWriter, r *http.Request) {
	var data graph.ExportData
	if err := common.ParseJSONBody(w, r, &data, 16<<20); err != nil {
		common.RespondError(w, http.StatusBadRequest, "BAD_REQUEST", "Invalid request body: "+err.Error())
		return
	}

	h.graph.Import(data)
	stats := h.graph.Statistics()

	h.logger.Info("Graph imported",
		zap.Int("entities", stats.TotalEntities),
		zap.Int("relationships", stats.TotalRelationships))
	common.RespondJSON(w, http.StatusOK, stats)
}
