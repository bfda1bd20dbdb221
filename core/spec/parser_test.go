package spec

import (
	"os"
	"path/filepath"
	"testing"

	"sweep-runner/core/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validSweepYAML = `
sweep:
  phase: phase3
  model: swin
  method: ros25_aug_pretrained_focal2
  mode: test
  config: config/phase3/swin_ros25.py
  axes:
    - name: lr_0.01
      lr: 0.01
      epochs: [91, 92, 93]
    - name: lr_decr
      lr: 0.01
      epochs: [100]
      enabled: false
`

func TestParseSweepSpec(t *testing.T) {
	sweep, err := ParseSweepSpec(validSweepYAML)
	require.NoError(t, err)

	assert.Equal(t, "phase3", sweep.Phase)
	assert.Equal(t, "swin", sweep.Model)
	assert.Equal(t, "ros25_aug_pretrained_focal2", sweep.Method)
	assert.Equal(t, models.ModeTest, sweep.Mode)
	assert.Equal(t, "config/phase3/swin_ros25.py", sweep.ConfigPath)

	require.Len(t, sweep.Axes, 2)
	assert.Equal(t, "lr_0.01", sweep.Axes[0].Name)
	assert.Equal(t, 0.01, sweep.Axes[0].LR)
	assert.Equal(t, []int{91, 92, 93}, sweep.Axes[0].Epochs)
	assert.True(t, sweep.Axes[0].Enabled)
	assert.False(t, sweep.Axes[1].Enabled)
}

func TestParseSweepSpecDefaults(t *testing.T) {
	sweep, err := ParseSweepSpec(`
sweep:
  phase: phase1
  model: resnet50
  config: config/phase1/resnet50_sgd0_01.py
`)
	require.NoError(t, err)

	assert.Equal(t, models.ModeTest, sweep.Mode)
	assert.Equal(t, "work_dirs", sweep.WorkDir)
	assert.Equal(t, ".pth", sweep.CheckpointExt)
	assert.Equal(t, "python3", sweep.Python)
	assert.Equal(t, "tools/train.py", sweep.TrainScript)
	assert.Equal(t, "tools/test.py", sweep.TestScript)
	assert.Empty(t, sweep.Method)
}

func TestParseSweepSpecKeepsOriginalYAML(t *testing.T) {
	sweep, err := ParseSweepSpec(validSweepYAML)
	require.NoError(t, err)
	assert.Equal(t, validSweepYAML, sweep.SpecYAML)
}

func TestParseSweepSpecRejectsDuplicateAxes(t *testing.T) {
	_, err := ParseSweepSpec(`
sweep:
  phase: phase1
  model: resnet50
  config: cfg.py
  axes:
    - name: lr_0.01
      epochs: [91]
    - name: lr_0.01
      epochs: [92]
`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate axis")
}

func TestParseSweepSpecValidation(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"missing phase", "sweep:\n  model: resnet50\n  config: cfg.py\n"},
		{"missing model", "sweep:\n  phase: phase1\n  config: cfg.py\n"},
		{"missing config", "sweep:\n  phase: phase1\n  model: resnet50\n"},
		{"bad mode", "sweep:\n  phase: phase1\n  model: resnet50\n  config: cfg.py\n  mode: evaluate\n"},
		{"unnamed axis", "sweep:\n  phase: phase1\n  model: resnet50\n  config: cfg.py\n  axes:\n    - epochs: [91]\n"},
		{"non-positive epoch", "sweep:\n  phase: phase1\n  model: resnet50\n  config: cfg.py\n  axes:\n    - name: lr_0.01\n      epochs: [0]\n"},
		{"malformed yaml", "sweep: [unclosed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseSweepSpec(tt.yaml)
			assert.Error(t, err)
		})
	}
}

func TestLoadSweepSpec(t *testing.T) {
	dir := t.TempDir()

	configPath := filepath.Join(dir, "cfg.py")
	require.NoError(t, os.WriteFile(configPath, []byte("model = dict()\n"), 0o644))

	specPath := filepath.Join(dir, "sweep.yaml")
	specYAML := "sweep:\n  phase: phase1\n  model: resnet50\n  config: " + configPath + "\n"
	require.NoError(t, os.WriteFile(specPath, []byte(specYAML), 0o644))

	sweep, err := LoadSweepSpec(specPath)
	require.NoError(t, err)
	assert.Equal(t, "resnet50", sweep.Model)
}

func TestLoadSweepSpecMissingConfigFails(t *testing.T) {
	dir := t.TempDir()

	specPath := filepath.Join(dir, "sweep.yaml")
	specYAML := "sweep:\n  phase: phase1\n  model: resnet50\n  config: " + filepath.Join(dir, "absent.py") + "\n"
	require.NoError(t, os.WriteFile(specPath, []byte(specYAML), 0o644))

	_, err := LoadSweepSpec(specPath)
	assert.Error(t, err)
}

func TestLoadSweepSpecMissingFileFails(t *testing.T) {
	_, err := LoadSweepSpec(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}
