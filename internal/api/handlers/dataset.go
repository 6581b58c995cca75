package handlers

import (
	"net/http"

	"github.com/rideinsights/backend/internal/engine"
	"github.com/rideinsights/backend/internal/pipeline"
	"github.com/rideinsights/backend/pkg/logger"
)

// DatasetHandler serves dataset lifecycle endpoints
type DatasetHandler struct {
	engine   *engine.Engine
	pipeline *pipeline.Pipeline
	logger   *logger.Logger
}

// NewDatasetHandler creates a new dataset handler
func NewDatasetHandler(eng *engine.Engine, p *pipeline.Pipeline, log *logger.Logger) *DatasetHandler {
	return &DatasetHandler{engine: eng, pipeline: p, logger: log}
}

// Summary handles GET /api/dataset/summary
func (h *DatasetHandler) Summary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.engine.Summarize(r.Context())
	if err != nil {
		h.logger.WithError(err).Error("Failed to summarize dataset")
		respondError(w, http.StatusInternalServerError, "failed to summarize dataset")
		return
	}

	respondJSON(w, http.StatusOK, summary)
}

// Refresh handles POST /api/dataset/refresh. It forces a rebuild from the
// raw source, bypassing the cache.
func (h *DatasetHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	if err := h.pipeline.Refresh(r.Context()); err != nil {
		if pipeline.IsSourceUnavailable(err) {
			respondError(w, http.StatusServiceUnavailable, "raw source not available")
			return
		}

		h.logger.WithError(err).Error("Dataset refresh failed")
		respondError(w, http.StatusInternalServerError, "dataset refresh failed")
		return
	}

	summary, err := h.engine.Summarize(r.Context())
	if err != nil {
		h.logger.WithError(err).Error("Failed to summarize dataset after refresh")
		respondError(w, http.StatusInternalServerError, "refresh succeeded but summary failed")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "refreshed",
		"summary": summary,
	})
}
