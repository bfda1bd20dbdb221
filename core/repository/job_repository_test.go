package repository

import (
	"testing"
	"time"

	"sweep-runner/core/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockDB(t *testing.T) (*DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return &DB{DB: db}, mock
}

func TestCreateJobInsertsPending(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewJobRepository(db)

	mock.ExpectExec("INSERT INTO sweep_jobs").
		WithArgs(sqlmock.AnyArg(), "run-1", "lr_0.01", 91,
			"work_dirs/phase1/swin/test/lr_0.01/epoch_91",
			"work_dirs/phase1/swin/lr_0.01/epoch_91.pth",
			string(models.JobStatusPending), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	jobID, err := repo.CreateJob("run-1", &models.JobSpec{
		Axis:           "lr_0.01",
		Epoch:          91,
		OutputDir:      "work_dirs/phase1/swin/test/lr_0.01/epoch_91",
		CheckpointPath: "work_dirs/phase1/swin/lr_0.01/epoch_91.pth",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, jobID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStartJobMarksRunning(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewJobRepository(db)

	mock.ExpectExec("UPDATE sweep_jobs SET status").
		WithArgs(string(models.JobStatusRunning), "job-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.StartJob("job-1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFinishJobRecordsOutcome(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewJobRepository(db)

	started := time.Now()
	failed := &models.JobResult{
		ExitCode:   1,
		Error:      "process exited with code 1",
		StartedAt:  started,
		FinishedAt: started.Add(3 * time.Second),
	}

	mock.ExpectExec("UPDATE sweep_jobs").
		WithArgs(string(models.JobStatusFailed), 1, int64(3000), "job-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.FinishJob("job-1", failed))
	assert.NoError(t, mock.ExpectationsWereMet())
}
