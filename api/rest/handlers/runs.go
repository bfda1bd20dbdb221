package handlers

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"sweep-runner/core/models"
	"sweep-runner/core/repository"

	"github.com/gorilla/mux"
)

// RunHandler handles run-history HTTP requests
type RunHandler struct {
	runRepo   *repository.RunRepository
	jobRepo   *repository.JobRepository
	eventRepo *repository.EventRepository
}

// NewRunHandler creates a new run handler
func NewRunHandler(
	runRepo *repository.RunRepository,
	jobRepo *repository.JobRepository,
	eventRepo *repository.EventRepository,
) *RunHandler {
	return &RunHandler{
		runRepo:   runRepo,
		jobRepo:   jobRepo,
		eventRepo: eventRepo,
	}
}

// RunResponse represents one sweep run in API responses
type RunResponse struct {
	ID          string     `json:"id"`
	Mode        string     `json:"mode"`
	Phase       string     `json:"phase"`
	Model       string     `json:"model"`
	Method      string     `json:"method,omitempty"`
	Status      string     `json:"status"`
	TotalJobs   int        `json:"total_jobs"`
	Succeeded   int        `json:"succeeded_jobs"`
	Failed      int        `json:"failed_jobs"`
	CreatedAt   time.Time  `json:"created_at"`
	StartedAt   *time.Time `json:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

func runResponse(run *models.SweepRun) RunResponse {
	return RunResponse{
		ID:          run.ID,
		Mode:        string(run.Mode),
		Phase:       run.Phase,
		Model:       run.Model,
		Method:      run.Method,
		Status:      string(run.Status),
		TotalJobs:   run.TotalJobs,
		Succeeded:   run.Succeeded,
		Failed:      run.Failed,
		CreatedAt:   run.CreatedAt,
		StartedAt:   run.StartedAt,
		CompletedAt: run.CompletedAt,
	}
}

// ListRuns handles GET /v1/runs
func (h *RunHandler) ListRuns(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			http.Error(w, "Invalid limit", http.StatusBadRequest)
			return
		}
		limit = n
	}

	runs, err := h.runRepo.ListRuns(limit)
	if err != nil {
		http.Error(w, "Failed to list runs: "+err.Error(), http.StatusInternalServerError)
		return
	}

	response := make([]RunResponse, 0, len(runs))
	for _, run := range runs {
		response = append(response, runResponse(run))
	}

	writeJSON(w, response)
}

// GetRun handles GET /v1/runs/{id}
func (h *RunHandler) GetRun(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	run, err := h.runRepo.GetRun(id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			http.Error(w, "Run not found", http.StatusNotFound)
			return
		}
		http.Error(w, "Failed to get run: "+err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, runResponse(run))
}

// GetRunJobs handles GET /v1/runs/{id}/jobs
func (h *RunHandler) GetRunJobs(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	jobs, err := h.jobRepo.ListRunJobs(id)
	if err != nil {
		http.Error(w, "Failed to list jobs: "+err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, jobs)
}

// GetRunEvents handles GET /v1/runs/{id}/events
func (h *RunHandler) GetRunEvents(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	events, err := h.eventRepo.GetRunEvents(id, 100)
	if err != nil {
		http.Error(w, "Failed to list events: "+err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, events)
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}
