package handlers

import (
	"errors"
	"io/fs"
	"net/http"

	"sweep-runner/core/results"

	"github.com/gorilla/mux"
)

// ResultsHandler serves aggregated evaluation metrics from the work tree
type ResultsHandler struct {
	workDir string
}

// NewResultsHandler creates a new results handler
func NewResultsHandler(workDir string) *ResultsHandler {
	return &ResultsHandler{workDir: workDir}
}

// GetResults handles GET /v1/results/{phase}/{model}
func (h *ResultsHandler) GetResults(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	phase := vars["phase"]
	model := vars["model"]
	method := r.URL.Query().Get("method")

	summaries, err := results.Aggregate(h.workDir, phase, model, method)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			http.Error(w, "No results for this model", http.StatusNotFound)
			return
		}
		http.Error(w, "Failed to aggregate results: "+err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, summaries)
}
