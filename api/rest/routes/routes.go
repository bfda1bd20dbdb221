package routes

import (
	"sweep-runner/api/rest/handlers"
	"sweep-runner/core/repository"

	"github.com/gorilla/mux"
)

// SetupRoutes configures all API routes
func SetupRoutes(r *mux.Router, db *repository.DB, workDir, metafileDir string) {
	runRepo := repository.NewRunRepository(db)
	jobRepo := repository.NewJobRepository(db)
	eventRepo := repository.NewEventRepository(db)

	runHandler := handlers.NewRunHandler(runRepo, jobRepo, eventRepo)
	resultsHandler := handlers.NewResultsHandler(workDir)
	metafileHandler := handlers.NewMetafileHandler(metafileDir)

	api := r.PathPrefix("/v1").Subrouter()

	// Run history endpoints
	api.HandleFunc("/runs", runHandler.ListRuns).Methods("GET")
	api.HandleFunc("/runs/{id}", runHandler.GetRun).Methods("GET")
	api.HandleFunc("/runs/{id}/jobs", runHandler.GetRunJobs).Methods("GET")
	api.HandleFunc("/runs/{id}/events", runHandler.GetRunEvents).Methods("GET")

	// Aggregated evaluation metrics
	api.HandleFunc("/results/{phase}/{model}", resultsHandler.GetResults).Methods("GET")

	// Model collection metadata
	api.HandleFunc("/metafiles", metafileHandler.ListMetafiles).Methods("GET")
}
