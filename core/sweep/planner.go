package sweep

import (
	"fmt"
	"path/filepath"
	"sort"

	"sweep-runner/core/models"
)

// Plan expands a sweep into its ordered job sequence. Axes are visited in
// declaration order, epochs ascending within an axis. A disabled axis or a
// test-mode axis with no epochs contributes zero jobs. The mapping from
// combination to paths is a pure function of the sweep: identical inputs
// always produce the identical sequence.
func Plan(sweep *models.Sweep, runID string) ([]models.JobSpec, error) {
	var jobs []models.JobSpec

	for _, axis := range sweep.Axes {
		if !axis.Enabled {
			continue
		}

		switch sweep.Mode {
		case models.ModeTrain:
			jobs = append(jobs, models.JobSpec{
				RunID:      runID,
				Axis:       axis.Name,
				LR:         axis.LR,
				Mode:       models.ModeTrain,
				ConfigPath: sweep.ConfigPath,
				OutputDir:  trainOutputDir(sweep, axis.Name),
			})

		case models.ModeTest:
			epochs := append([]int(nil), axis.Epochs...)
			sort.Ints(epochs)
			for _, epoch := range epochs {
				jobs = append(jobs, models.JobSpec{
					RunID:          runID,
					Axis:           axis.Name,
					Epoch:          epoch,
					Mode:           models.ModeTest,
					ConfigPath:     sweep.ConfigPath,
					CheckpointPath: CheckpointPath(sweep, axis.Name, epoch),
					OutputDir:      testOutputDir(sweep, axis.Name, epoch),
				})
			}

		default:
			return nil, fmt.Errorf("invalid sweep mode %q", sweep.Mode)
		}
	}

	// Distinct combinations must never share an output directory
	seen := make(map[string]models.JobSpec, len(jobs))
	for _, job := range jobs {
		if prev, ok := seen[job.OutputDir]; ok {
			return nil, fmt.Errorf("output dir collision between (%s, %d) and (%s, %d): %s",
				prev.Axis, prev.Epoch, job.Axis, job.Epoch, job.OutputDir)
		}
		seen[job.OutputDir] = job
	}

	return jobs, nil
}

// CheckpointPath returns the checkpoint file a test job evaluates:
// work_dir/<phase>/<model>/<method>/<axis>/epoch_<n><ext>
func CheckpointPath(sweep *models.Sweep, axis string, epoch int) string {
	return filepath.Join(sweep.WorkDir, sweep.Phase, sweep.Model, sweep.Method,
		axis, fmt.Sprintf("epoch_%d%s", epoch, sweep.CheckpointExt))
}

// testOutputDir returns
// work_dir/<phase>/<model>/test/<method>/<axis>/epoch_<n>
func testOutputDir(sweep *models.Sweep, axis string, epoch int) string {
	return filepath.Join(sweep.WorkDir, sweep.Phase, sweep.Model, string(models.ModeTest),
		sweep.Method, axis, fmt.Sprintf("epoch_%d", epoch))
}

// trainOutputDir returns
// work_dir/<phase>/<model>/train/<method>/<axis>
func trainOutputDir(sweep *models.Sweep, axis string) string {
	return filepath.Join(sweep.WorkDir, sweep.Phase, sweep.Model, string(models.ModeTrain),
		sweep.Method, axis)
}
