package repository

import (
	"database/sql"
	"time"

	"sweep-runner/core/models"

	"github.com/google/uuid"
)

// JobRepository handles database operations for sweep jobs
type JobRepository struct {
	db *DB
}

// NewJobRepository creates a new job repository
func NewJobRepository(db *DB) *JobRepository {
	return &JobRepository{db: db}
}

// CreateJob records a planned job invocation and returns its ID
func (r *JobRepository) CreateJob(runID string, spec *models.JobSpec) (string, error) {
	query := `
		INSERT INTO sweep_jobs (
			id, run_id, axis, epoch, output_dir, checkpoint_path, status, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	jobID := uuid.New()
	_, err := r.db.Exec(query,
		jobID,
		runID,
		spec.Axis,
		spec.Epoch,
		spec.OutputDir,
		spec.CheckpointPath,
		models.JobStatusPending,
		time.Now(),
	)
	if err != nil {
		return "", err
	}

	return jobID.String(), nil
}

// StartJob marks a pending job as running just before its invocation
func (r *JobRepository) StartJob(jobID string) error {
	query := `UPDATE sweep_jobs SET status = $1 WHERE id = $2`
	_, err := r.db.Exec(query, models.JobStatusRunning, jobID)
	return err
}

// FinishJob records the outcome of a job invocation
func (r *JobRepository) FinishJob(jobID string, result *models.JobResult) error {
	status := models.JobStatusSucceeded
	if !result.Succeeded() {
		status = models.JobStatusFailed
	}

	query := `
		UPDATE sweep_jobs
		SET status = $1, exit_code = $2, duration_ms = $3, finished_at = NOW()
		WHERE id = $4
	`
	_, err := r.db.Exec(query, status, result.ExitCode, result.Duration().Milliseconds(), jobID)
	return err
}

// ListRunJobs lists the jobs of a run in invocation order
func (r *JobRepository) ListRunJobs(runID string) ([]models.SweepJob, error) {
	query := `
		SELECT id, run_id, axis, epoch, output_dir, checkpoint_path,
			status, exit_code, duration_ms, created_at, finished_at
		FROM sweep_jobs
		WHERE run_id = $1
		ORDER BY created_at ASC
	`

	rows, err := r.db.Query(query, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var jobs []models.SweepJob
	for rows.Next() {
		var job models.SweepJob
		var exitCode sql.NullInt32
		var durationMS sql.NullInt64
		var finishedAt sql.NullTime

		err := rows.Scan(
			&job.ID,
			&job.RunID,
			&job.Axis,
			&job.Epoch,
			&job.OutputDir,
			&job.CheckpointPath,
			&job.Status,
			&exitCode,
			&durationMS,
			&job.CreatedAt,
			&finishedAt,
		)
		if err != nil {
			continue
		}

		if exitCode.Valid {
			code := int(exitCode.Int32)
			job.ExitCode = &code
		}
		if durationMS.Valid {
			job.DurationMS = &durationMS.Int64
		}
		if finishedAt.Valid {
			job.FinishedAt = &finishedAt.Time
		}

		jobs = append(jobs, job)
	}

	return jobs, nil
}
