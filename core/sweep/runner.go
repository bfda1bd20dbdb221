package sweep

import (
	"context"
	"fmt"
	"log"

	"sweep-runner/core/executor"
	"sweep-runner/core/models"
	"sweep-runner/core/repository"

	"github.com/google/uuid"
)

// ArtifactUploader pushes a finished job's output to remote storage
type ArtifactUploader interface {
	UploadJobOutput(ctx context.Context, spec *models.JobSpec) error
}

// Runner executes a planned sweep strictly sequentially. Each job invocation
// is synchronous and runs to completion before the next starts. A failing
// job is recorded and skipped; only configuration errors abort the sweep.
type Runner struct {
	exec    executor.JobExecutor
	runRepo *repository.RunRepository // nil when no database is configured
	jobRepo *repository.JobRepository // nil when no database is configured
	store   ArtifactUploader          // nil when artifact upload is not configured
}

// NewRunner creates a sweep runner. runRepo, jobRepo and store may be nil.
func NewRunner(exec executor.JobExecutor, runRepo *repository.RunRepository, jobRepo *repository.JobRepository, store ArtifactUploader) *Runner {
	return &Runner{
		exec:    exec,
		runRepo: runRepo,
		jobRepo: jobRepo,
		store:   store,
	}
}

// Run plans and executes the sweep, returning its summary. The returned
// error is non-nil only for configuration errors or context cancellation;
// individual job failures are reported through the summary.
func (r *Runner) Run(ctx context.Context, sw *models.Sweep) (*models.RunSummary, error) {
	runID := uuid.New().String()

	jobs, err := Plan(sw, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to plan sweep: %w", err)
	}

	summary := &models.RunSummary{
		RunID: runID,
		Total: len(jobs),
	}

	if r.runRepo != nil {
		run := &models.SweepRun{
			ID:        runID,
			Mode:      sw.Mode,
			Phase:     sw.Phase,
			Model:     sw.Model,
			Method:    sw.Method,
			Status:    models.RunStatusPending,
			SpecYAML:  sw.SpecYAML,
			TotalJobs: len(jobs),
		}
		if err := r.runRepo.CreateRun(run); err != nil {
			return nil, fmt.Errorf("failed to record run: %w", err)
		}
		if err := r.runRepo.UpdateRunStatus(runID, models.RunStatusPending, models.RunStatusRunning, "run_started", nil); err != nil {
			log.Printf("Failed to update run status: %v", err)
		}
	}

	log.Printf("Sweep %s: %d job(s) planned (mode=%s, model=%s, phase=%s)",
		runID, len(jobs), sw.Mode, sw.Model, sw.Phase)

	for i := range jobs {
		if ctx.Err() != nil {
			r.finish(summary, models.RunStatusAborted)
			return summary, ctx.Err()
		}

		job := &jobs[i]
		log.Printf("Running combination (axis=%s, epoch=%d) [%d/%d] -> %s",
			job.Axis, job.Epoch, i+1, len(jobs), job.OutputDir)

		var jobID string
		if r.jobRepo != nil {
			var err error
			jobID, err = r.jobRepo.CreateJob(runID, job)
			if err != nil {
				log.Printf("Failed to record job: %v", err)
			}
			if jobID != "" {
				if err := r.jobRepo.StartJob(jobID); err != nil {
					log.Printf("Failed to mark job running: %v", err)
				}
			}
		}

		result := r.exec.Execute(ctx, job)

		if r.jobRepo != nil && jobID != "" {
			if err := r.jobRepo.FinishJob(jobID, result); err != nil {
				log.Printf("Failed to record job result: %v", err)
			}
		}

		if !result.Succeeded() {
			// Best-effort semantics: record the failure and keep going
			log.Printf("Job (axis=%s, epoch=%d) failed: %s", job.Axis, job.Epoch, result.Error)
			summary.Failed = append(summary.Failed, *job)
			continue
		}

		summary.Succeeded++

		if r.store != nil {
			if err := r.store.UploadJobOutput(ctx, job); err != nil {
				log.Printf("Failed to upload output of (axis=%s, epoch=%d): %v", job.Axis, job.Epoch, err)
			}
		}
	}

	r.finish(summary, models.RunStatusCompleted)

	log.Printf("Sweep %s finished: %d succeeded, %d failed of %d",
		runID, summary.Succeeded, len(summary.Failed), summary.Total)
	for _, failed := range summary.Failed {
		log.Printf("  failed: (axis=%s, epoch=%d)", failed.Axis, failed.Epoch)
	}

	return summary, nil
}

func (r *Runner) finish(summary *models.RunSummary, status models.RunStatus) {
	if r.runRepo == nil {
		return
	}
	if err := r.runRepo.FinishRun(summary.RunID, status, summary.Succeeded, len(summary.Failed)); err != nil {
		log.Printf("Failed to record run completion: %v", err)
	}
}
