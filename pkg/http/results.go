package http

import (
	"encoding/json"
	"net/http"

	"github.com/sirupsen/logrus"

	"speechwell-server/pkg/errors"
	"speechwell-server/pkg/store"
)

// ResultsHandler serves the stored analysis results over the REST API.
type ResultsHandler struct {
	logger *logrus.Entry
	store  *store.ResultStore
}

// NewResultsHandler creates a results API handler backed by the store.
func NewResultsHandler(logger *logrus.Logger, resultStore *store.ResultStore) *ResultsHandler {
	return &ResultsHandler{
		logger: logger.WithField("component", "results_api"),
		store:  resultStore,
	}
}

// HandleList handles GET /api/results and returns all stored results,
// oldest first.
func (h *ResultsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	results := h.store.All()
	response := map[string]interface{}{
		"count":   len(results),
		"results": results,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(response); err != nil {
		h.logger.WithError(err).Error("Failed to encode results response")
	}
}

// HandleLatest handles GET /api/results/latest and returns the most
// recently stored result.
func (h *ResultsHandler) HandleLatest(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	latest, ok := h.store.Latest()
	if !ok {
		errors.WriteError(w, errors.NewResultNotFound("no results stored yet"))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(latest); err != nil {
		h.logger.WithError(err).Error("Failed to encode latest result response")
	}
}
