package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"memgate/domain/swarm"
	"memgate/pkg/common"
)

// defaultTrailLimit caps hot-trail listings when the caller does not
// ask for a specific count.
const defaultTrailLimit = 20

// SwarmHandler exposes usage trails, access patterns, and detected
// operation smells over HTTP
type SwarmHandler struct {
	trails *swarm.Tracker
	smells *swarm.SmellMonitor
	logger *zap.Logger
}

// NewSwarmHandler creates a new swarm handler
func NewSwarmHandler(trails *swarm.Tracker, smells *swarm.SmellMonitor, logger *zap.Logger) *SwarmHandler {
	return &SwarmHandler{
		trails: trails,
		smells: smells,
		logger: logger,
	}
}

// HotTrails handles GET /swarm/trails?min_strength=...&limit=...
func (h *SwarmHandler) HotTrails(w http.ResponseWriter, r *http.Request) {
	minStrength := 0.5
	if raw := r.URL.Query().Get("min_strength"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil || v < 0 || v > 1 {
			common.RespondError(w, http.StatusBadRequest, "BAD_REQUEST", "min_strength must be between 0 and 1")
			return
		}
		minStrength = v
	}

	limit := defaultTrailLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			common.RespondError(w, http.StatusBadRequest, "BAD_REQUEST", "limit must be a positive integer")
			return
		}
		limit = n
	}

	hot := h.trails.GetHotTrails(minStrength, limit)
	common.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"trails": hot,
		"count":  len(hot),
	})
}

// CollectionPatterns handles GET /swarm/patterns/{collection}
func (h *SwarmHandler) CollectionPatterns(w http.ResponseWriter, r *http.Request) {
	collection := chi.URLParam(r, "collection")
	common.RespondJSON(w, http.StatusOK, h.trails.GetCollectionPatterns(collection))
}

// Smells handles GET /swarm/smells
func (h *SwarmHandler) Smells(w http.ResponseWriter, r *http.Request) {
	common.RespondJSON(w, http.StatusOK, h.smells.Report())
}
