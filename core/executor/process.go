package executor

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"sweep-runner/core/models"
)

// JobExecutor runs one external training or evaluation process. The process
// is an opaque black box: the exit code and its log output are the only
// observable outcome.
type JobExecutor interface {
	Execute(ctx context.Context, spec *models.JobSpec) *models.JobResult
}

// ProcessExecutor invokes the training framework as a local subprocess
type ProcessExecutor struct {
	python      string
	trainScript string
	testScript  string
}

// NewProcessExecutor creates a local process executor
func NewProcessExecutor(python, trainScript, testScript string) *ProcessExecutor {
	return &ProcessExecutor{
		python:      python,
		trainScript: trainScript,
		testScript:  testScript,
	}
}

// BuildCommand builds the argument vector for one job invocation, excluding
// the interpreter itself
func BuildCommand(trainScript, testScript string, spec *models.JobSpec) []string {
	script := trainScript
	if spec.Mode == models.ModeTest {
		script = testScript
	}

	args := []string{script, spec.ConfigPath}
	if spec.CheckpointPath != "" {
		args = append(args, "--checkpoint", spec.CheckpointPath)
	}
	args = append(args, "--work-dir", spec.OutputDir)
	if spec.Mode == models.ModeTrain && spec.LR > 0 {
		args = append(args, "--cfg-options", fmt.Sprintf("optim_wrapper.optimizer.lr=%g", spec.LR))
	}

	return args
}

// Execute runs the job synchronously and captures its output to job.log
// inside the job's output directory
func (e *ProcessExecutor) Execute(ctx context.Context, spec *models.JobSpec) *models.JobResult {
	result := &models.JobResult{
		Spec:      *spec,
		StartedAt: time.Now(),
	}

	// An unwritable output directory fails this job only
	if err := os.MkdirAll(spec.OutputDir, 0o755); err != nil {
		result.ExitCode = -1
		result.Error = fmt.Sprintf("failed to create output dir: %v", err)
		result.FinishedAt = time.Now()
		return result
	}

	logPath := filepath.Join(spec.OutputDir, "job.log")
	logFile, err := os.Create(logPath)
	if err != nil {
		result.ExitCode = -1
		result.Error = fmt.Sprintf("failed to create job log: %v", err)
		result.FinishedAt = time.Now()
		return result
	}
	defer logFile.Close()
	result.LogPath = logPath

	args := BuildCommand(e.trainScript, e.testScript, spec)
	cmd := exec.CommandContext(ctx, e.python, args...)
	cmd.Stdout = logFile
	cmd.Stderr = logFile

	err = cmd.Run()
	result.FinishedAt = time.Now()

	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			result.ExitCode = exitErr.ExitCode()
			result.Error = fmt.Sprintf("process exited with code %d", result.ExitCode)
		} else {
			result.ExitCode = -1
			result.Error = err.Error()
		}
		return result
	}

	log.Printf("Job (%s, epoch %d) finished in %s", spec.Axis, spec.Epoch, result.Duration().Round(time.Millisecond))
	return result
}
