package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"memgate/infrastructure/maintenance"
	"memgate/pkg/common"
	"memgate/pkg/utils"
)

// AdminHandler exposes maintenance introspection and scaling analysis
type AdminHandler struct {
	scheduler  *maintenance.Scheduler
	autoScaler *maintenance.AutoScaler
	logger     *zap.Logger
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(scheduler *maintenance.Scheduler, autoScaler *maintenance.AutoScaler, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{
		scheduler:  scheduler,
		autoScaler: autoScaler,
		logger:     logger,
	}
}

// AnalyzeScalingRequest carries one load sample for analysis
type AnalyzeScalingRequest struct {
	CPUPercent    float64 `json:"cpu_percent" validate:"gte=0,lte=100"`
	MemoryPercent float64 `json:"memory_percent" validate:"gte=0,lte=100"`
}

// Jobs handles GET /admin/jobs
func (h *AdminHandler) Jobs(w http.ResponseWriter, r *http.Request) {
	jobs := h.scheduler.Jobs()
	common.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"jobs":  jobs,
		"count": len(jobs),
	})
}

// AnalyzeScaling handles POST /admin/scaling/analyze
func (h *AdminHandler) AnalyzeScaling(w http.ResponseWriter, r *http.Request) {
	var req AnalyzeScalingRequest
	if err := common.ParseJSONBody(w, r, &req, 1<<16); err != nil {
		common.RespondError(w, http.StatusBadRequest, "BAD_REQUEST", "Invalid request body: "+err.Error())
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		common.RespondError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	rec := h.autoScaler.Analyze(req.CPUPercent, req.MemoryPercent)
	if rec.ScaleUp || rec.ScaleDown {
		h.logger.Info("scaling recommendation issued",
			zap.Bool("scale_up", rec.ScaleUp),
			zap.Bool("scale_down", rec.ScaleDown),
			zap.String("reason", rec.Reason))
	}
	common.RespondJSON(w, http.StatusOK, rec)
}

// ScalingHistory handles GET /admin/scaling/history
func (h *AdminHandler) ScalingHistory(w http.ResponseWriter, r *http.Request) {
	samples := h.autoScaler.History()
	common.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"samples": samples,
		"count":   len(samples),
	})
}
