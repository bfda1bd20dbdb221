package executor

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"sweep-runner/core/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildCommandTestMode(t *testing.T) {
	spec := &models.JobSpec{
		Mode:           models.ModeTest,
		ConfigPath:     "config/phase1/swin_sgd0_01.py",
		CheckpointPath: "work_dirs/phase1/swin/lr_0.01/epoch_91.pth",
		OutputDir:      "work_dirs/phase1/swin/test/lr_0.01/epoch_91",
	}

	args := BuildCommand("tools/train.py", "tools/test.py", spec)

	assert.Equal(t, []string{
		"tools/test.py",
		"config/phase1/swin_sgd0_01.py",
		"--checkpoint", "work_dirs/phase1/swin/lr_0.01/epoch_91.pth",
		"--work-dir", "work_dirs/phase1/swin/test/lr_0.01/epoch_91",
	}, args)
}

func TestBuildCommandTrainModeWithLROverride(t *testing.T) {
	spec := &models.JobSpec{
		Mode:       models.ModeTrain,
		LR:         0.001,
		ConfigPath: "config/phase1/swin_sgd0_01.py",
		OutputDir:  "work_dirs/phase1/swin/train/lr_0.001",
	}

	args := BuildCommand("tools/train.py", "tools/test.py", spec)

	assert.Equal(t, []string{
		"tools/train.py",
		"config/phase1/swin_sgd0_01.py",
		"--work-dir", "work_dirs/phase1/swin/train/lr_0.001",
		"--cfg-options", "optim_wrapper.optimizer.lr=0.001",
	}, args)
}

func TestBuildCommandTrainModeWithoutOverride(t *testing.T) {
	spec := &models.JobSpec{
		Mode:       models.ModeTrain,
		ConfigPath: "cfg.py",
		OutputDir:  "out",
	}

	args := BuildCommand("tools/train.py", "tools/test.py", spec)
	assert.Equal(t, []string{"tools/train.py", "cfg.py", "--work-dir", "out"}, args)
}

// writeScript writes a shell script the executor invokes in place of the
// training framework
func writeScript(t *testing.T, dir, body string) string {
	t.Helper()
	path := filepath.Join(dir, "fake_test.py")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o755))
	return path
}

func TestExecuteCapturesOutputToJobLog(t *testing.T) {
	dir := t.TempDir()
	script := writeScript(t, dir, "echo evaluating \"$@\"\n")

	pe := NewProcessExecutor("sh", script, script)
	spec := &models.JobSpec{
		Mode:       models.ModeTest,
		ConfigPath: "cfg.py",
		OutputDir:  filepath.Join(dir, "out", "epoch_91"),
	}

	result := pe.Execute(context.Background(), spec)

	assert.True(t, result.Succeeded())
	assert.Zero(t, result.ExitCode)
	require.Equal(t, filepath.Join(spec.OutputDir, "job.log"), result.LogPath)

	data, err := os.ReadFile(result.LogPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "evaluating cfg.py")
}

func TestExecuteMapsNonZeroExit(t *testing.T) {
	dir := t.TempDir()
	script := writeScript(t, dir, "echo loading checkpoint\nexit 3\n")

	pe := NewProcessExecutor("sh", script, script)
	spec := &models.JobSpec{
		Mode:       models.ModeTest,
		ConfigPath: "cfg.py",
		OutputDir:  filepath.Join(dir, "out", "epoch_92"),
	}

	result := pe.Execute(context.Background(), spec)

	assert.False(t, result.Succeeded())
	assert.Equal(t, 3, result.ExitCode)
	assert.Equal(t, "process exited with code 3", result.Error)

	// The log still holds whatever the process printed before exiting
	data, err := os.ReadFile(filepath.Join(spec.OutputDir, "job.log"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "loading checkpoint")
}

func TestExecuteFailsJobWhenOutputDirBlocked(t *testing.T) {
	dir := t.TempDir()

	// A regular file occupying the parent path makes MkdirAll fail
	blocked := filepath.Join(dir, "occupied")
	require.NoError(t, os.WriteFile(blocked, nil, 0o644))

	pe := NewProcessExecutor("sh", "tools/train.py", "tools/test.py")
	spec := &models.JobSpec{
		Mode:       models.ModeTest,
		ConfigPath: "cfg.py",
		OutputDir:  filepath.Join(blocked, "epoch_91"),
	}

	result := pe.Execute(context.Background(), spec)

	assert.Equal(t, -1, result.ExitCode)
	assert.Contains(t, result.Error, "failed to create output dir")
	assert.Empty(t, result.LogPath)
}

func TestShellQuote(t *testing.T) {
	assert.Equal(t, "'plain'", shellQuote("plain"))
	assert.Equal(t, `'it'\''s'`, shellQuote("it's"))
}
