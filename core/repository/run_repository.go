package repository

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"sweep-runner/core/models"

	"github.com/google/uuid"
)

// RunRepository handles database operations for sweep runs
type RunRepository struct {
	db *DB
}

// NewRunRepository creates a new run repository
func NewRunRepository(db *DB) *RunRepository {
	return &RunRepository{db: db}
}

// CreateRun creates a new sweep run record
func (r *RunRepository) CreateRun(run *models.SweepRun) error {
	query := `
		INSERT INTO sweep_runs (
			id, mode, phase, model, method, status, spec_yaml,
			total_jobs, succeeded_jobs, failed_jobs, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	runID := uuid.New()
	if run.ID != "" {
		var err error
		runID, err = uuid.Parse(run.ID)
		if err != nil {
			return err
		}
	}

	_, err := r.db.Exec(query,
		runID,
		run.Mode,
		run.Phase,
		run.Model,
		run.Method,
		run.Status,
		run.SpecYAML,
		run.TotalJobs,
		run.Succeeded,
		run.Failed,
		time.Now(),
	)
	if err != nil {
		return err
	}

	run.ID = runID.String()
	run.CreatedAt = time.Now()

	// Create initial event
	return r.CreateRunEvent(run.ID, nil, run.Status, "run_created", nil)
}

// GetRun retrieves a sweep run by ID
func (r *RunRepository) GetRun(id string) (*models.SweepRun, error) {
	query := `
		SELECT id, mode, phase, model, method, status, spec_yaml,
			total_jobs, succeeded_jobs, failed_jobs,
			created_at, started_at, completed_at
		FROM sweep_runs
		WHERE id = $1
	`

	var run models.SweepRun
	var startedAt sql.NullTime
	var completedAt sql.NullTime

	err := r.db.QueryRow(query, id).Scan(
		&run.ID,
		&run.Mode,
		&run.Phase,
		&run.Model,
		&run.Method,
		&run.Status,
		&run.SpecYAML,
		&run.TotalJobs,
		&run.Succeeded,
		&run.Failed,
		&run.CreatedAt,
		&startedAt,
		&completedAt,
	)
	if err != nil {
		return nil, err
	}

	if startedAt.Valid {
		run.StartedAt = &startedAt.Time
	}
	if completedAt.Valid {
		run.CompletedAt = &completedAt.Time
	}

	return &run, nil
}

// ListRuns lists the most recent sweep runs
func (r *RunRepository) ListRuns(limit int) ([]*models.SweepRun, error) {
	query := `
		SELECT id, mode, phase, model, method, status,
			total_jobs, succeeded_jobs, failed_jobs, created_at
		FROM sweep_runs
		ORDER BY created_at DESC
		LIMIT $1
	`

	rows, err := r.db.Query(query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []*models.SweepRun
	for rows.Next() {
		var run models.SweepRun
		err := rows.Scan(
			&run.ID,
			&run.Mode,
			&run.Phase,
			&run.Model,
			&run.Method,
			&run.Status,
			&run.TotalJobs,
			&run.Succeeded,
			&run.Failed,
			&run.CreatedAt,
		)
		if err != nil {
			continue
		}
		runs = append(runs, &run)
	}

	return runs, nil
}

// UpdateRunStatus updates run status atomically with event logging
func (r *RunRepository) UpdateRunStatus(runID string, fromStatus, toStatus models.RunStatus, reason string, meta map[string]interface{}) error {
	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	updateQuery := `UPDATE sweep_runs SET status = $1 WHERE id = $2`
	if toStatus == models.RunStatusRunning {
		updateQuery = `UPDATE sweep_runs SET status = $1, started_at = NOW() WHERE id = $2`
	}
	_, err = tx.Exec(updateQuery, toStatus, runID)
	if err != nil {
		return err
	}

	if err := r.createRunEventTx(tx, runID, &fromStatus, toStatus, reason, meta); err != nil {
		return err
	}

	return tx.Commit()
}

// FinishRun records the final status and outcome counts of a run
func (r *RunRepository) FinishRun(runID string, status models.RunStatus, succeeded, failed int) error {
	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := `
		UPDATE sweep_runs
		SET status = $1, succeeded_jobs = $2, failed_jobs = $3, completed_at = NOW()
		WHERE id = $4
	`
	_, err = tx.Exec(query, status, succeeded, failed, runID)
	if err != nil {
		return err
	}

	meta := map[string]interface{}{"succeeded": succeeded, "failed": failed}
	running := models.RunStatusRunning
	if err := r.createRunEventTx(tx, runID, &running, status, "run_finished", meta); err != nil {
		return err
	}

	return tx.Commit()
}

// CreateRunEvent creates a run event
func (r *RunRepository) CreateRunEvent(runID string, fromStatus *models.RunStatus, toStatus models.RunStatus, reason string, meta map[string]interface{}) error {
	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := r.createRunEventTx(tx, runID, fromStatus, toStatus, reason, meta); err != nil {
		return err
	}

	return tx.Commit()
}

func (r *RunRepository) createRunEventTx(tx *sql.Tx, runID string, fromStatus *models.RunStatus, toStatus models.RunStatus, reason string, meta map[string]interface{}) error {
	query := `
		INSERT INTO run_events (run_id, from_status, to_status, reason, meta_json)
		VALUES ($1, $2, $3, $4, $5)
	`

	var fromStatusStr *string
	if fromStatus != nil {
		s := string(*fromStatus)
		fromStatusStr = &s
	}

	metaJSON := "{}"
	if meta != nil {
		metaBytes, err := json.Marshal(meta)
		if err != nil {
			return fmt.Errorf("failed to marshal event meta: %w", err)
		}
		metaJSON = string(metaBytes)
	}

	_, err := tx.Exec(query, runID, fromStatusStr, toStatus, reason, metaJSON)
	return err
}
