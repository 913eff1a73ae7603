package rest

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"github.com/soluk/zamboni/internal/store"
	"github.com/soluk/zamboni/internal/store/repository"
)

// Rebuilder triggers a lookup-table rebuild. The scheduler implements it.
type Rebuilder interface {
	TriggerRebuild(ctx context.Context, forceRefresh bool) error
}

// Handler contains dependencies for HTTP handlers
type Handler struct {
	db        *store.Database
	runs      *repository.RunRepository
	scores    *repository.ScoreRepository
	lookup    *repository.LookupRepository
	rebuilder Rebuilder
}

// NewHandler creates a new handler
func NewHandler(db *store.Database, rebuilder Rebuilder) *Handler {
	return &Handler{
		db:        db,
		runs:      repository.NewRunRepository(db),
		scores:    repository.NewScoreRepository(db),
		lookup:    repository.NewLookupRepository(db),
		rebuilder: rebuilder,
	}
}

// HealthCheck handles health check requests
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	status := "healthy"
	code := http.StatusOK
	if err := h.db.HealthCheck(); err != nil {
		status = "degraded"
		code = http.StatusServiceUnavailable
	}

	respondJSON(w, code, map[string]string{
		"status":  status,
		"service": "zamboni",
		"version": "1.0.0",
	})
}

// GetLookup returns the full lookup table from the latest run
func (h *Handler) GetLookup(w http.ResponseWriter, r *http.Request) {
	rows, err := h.lookup.GetLatest(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to fetch lookup table", err)
		return
	}

	respondJSON(w, http.StatusOK, rows)
}

// GetLookupByTeam returns one team's lookup rows from the latest run
func (h *Handler) GetLookupByTeam(w http.ResponseWriter, r *http.Request) {
	team := strings.ToUpper(mux.Vars(r)["team"])

	rows, err := h.lookup.GetByTeam(r.Context(), team)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to fetch lookup rows", err)
		return
	}
	if len(rows) == 0 {
		respondError(w, http.StatusNotFound, "No lookup rows for team "+team, nil)
		return
	}

	respondJSON(w, http.StatusOK, rows)
}

// GetScores returns all team defense scores from the latest run
func (h *Handler) GetScores(w http.ResponseWriter, r *http.Request) {
	scores, err := h.scores.GetLatest(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to fetch defense scores", err)
		return
	}

	respondJSON(w, http.StatusOK, scores)
}

// GetScoreByTeam returns one team's latest defense score
func (h *Handler) GetScoreByTeam(w http.ResponseWriter, r *http.Request) {
	team := strings.ToUpper(mux.Vars(r)["team"])

	score, err := h.scores.GetByTeam(r.Context(), team)
	if err != nil {
		respondError(w, http.StatusNotFound, "No score for team "+team, err)
		return
	}

	respondJSON(w, http.StatusOK, score)
}

// GetLatestRun returns the most recent pipeline run record
func (h *Handler) GetLatestRun(w http.ResponseWriter, r *http.Request) {
	run, err := h.runs.GetLatest(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to fetch latest run", err)
		return
	}
	if run == nil {
		respondError(w, http.StatusNotFound, "No pipeline runs yet", nil)
		return
	}

	respondJSON(w, http.StatusOK, run)
}

// TriggerRebuild kicks off a rebuild. force_refresh=true bypasses the stat
// cache for this run only.
func (h *Handler) TriggerRebuild(w http.ResponseWriter, r *http.Request) {
	if h.rebuilder == nil {
		respondError(w, http.StatusServiceUnavailable, "Rebuilds are not enabled on this instance", nil)
		return
	}

	force := r.URL.Query().Get("force_refresh") == "true"

	if err := h.rebuilder.TriggerRebuild(r.Context(), force); err != nil {
		respondError(w, http.StatusConflict, "Rebuild not started", err)
		return
	}

	respondJSON(w, http.StatusAccepted, map[string]interface{}{
		"message":       "Rebuild started",
		"force_refresh": force,
	})
}

// respondJSON writes a JSON response
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// respondError writes an error response
func respondError(w http.ResponseWriter, status int, message string, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	response := map[string]interface{}{
		"error":  message,
		"status": status,
	}

	if err != nil {
		response["details"] = err.Error()
	}

	json.NewEncoder(w).Encode(response)
}
