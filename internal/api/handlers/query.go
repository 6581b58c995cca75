package handlers

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/rideinsights/backend/internal/catalog"
	"github.com/rideinsights/backend/internal/engine"
	"github.com/rideinsights/backend/pkg/logger"
)

// QueryHandler serves the analytical query catalog and the derived charts
type QueryHandler struct {
	engine *engine.Engine
	logger *logger.Logger
}

// NewQueryHandler creates a new query handler
func NewQueryHandler(eng *engine.Engine, log *logger.Logger) *QueryHandler {
	return &QueryHandler{engine: eng, logger: log}
}

// queryInfo is a catalog entry as listed, without results.
type queryInfo struct {
	Name  string `json:"name"`
	Title string `json:"title"`
}

// List handles GET /api/queries
func (h *QueryHandler) List(w http.ResponseWriter, r *http.Request) {
	specs := catalog.Queries()
	infos := make([]queryInfo, len(specs))
	for i, s := range specs {
		infos[i] = queryInfo{Name: s.Name, Title: s.Title}
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"queries": infos,
		"count":   len(infos),
	})
}

// Run handles GET /api/queries/{name}
func (h *QueryHandler) Run(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	if _, ok := catalog.Lookup(name); !ok {
		respondError(w, http.StatusNotFound, "unknown query: "+name)
		return
	}

	h.runSpec(w, r, name)
}

// DailyRides handles GET /api/charts/daily
func (h *QueryHandler) DailyRides(w http.ResponseWriter, r *http.Request) {
	h.runSpec(w, r, catalog.ChartRidesPerDay)
}

// StatusBreakdown handles GET /api/charts/status
func (h *QueryHandler) StatusBreakdown(w http.ResponseWriter, r *http.Request) {
	h.runSpec(w, r, catalog.ChartStatusBreakdown)
}

// runSpec executes one catalog spec and writes the result. A failed query
// stays isolated: the handler reports it and every other endpoint keeps
// working.
func (h *QueryHandler) runSpec(w http.ResponseWriter, r *http.Request, name string) {
	result, err := h.engine.Run(r.Context(), name)
	if err != nil {
		var qerr *engine.QueryError
		if errors.As(err, &qerr) {
			h.logger.WithFields(map[string]interface{}{
				"query":  name,
				"reason": qerr.Reason,
			}).Warn("Catalog query failed")
			respondError(w, http.StatusUnprocessableEntity, qerr.Error())
			return
		}

		h.logger.WithError(err).Error("Catalog query failed")
		respondError(w, http.StatusInternalServerError, "query execution failed")
		return
	}

	respondJSON(w, http.StatusOK, result)
}
