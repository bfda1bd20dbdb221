package spec

import (
	"fmt"
	"os"

	"sweep-runner/core/models"

	"gopkg.in/yaml.v3"
)

// SweepSpec represents the YAML sweep specification
type SweepSpec struct {
	Sweep SweepSpecSweep `yaml:"sweep"`
}

// SweepSpecSweep represents the sweep section of the spec
type SweepSpecSweep struct {
	Phase         string          `yaml:"phase"`
	Model         string          `yaml:"model"`
	Method        string          `yaml:"method,omitempty"`
	Mode          string          `yaml:"mode,omitempty"`
	Config        string          `yaml:"config"`
	WorkDir       string          `yaml:"work_dir,omitempty"`
	CheckpointExt string          `yaml:"checkpoint_ext,omitempty"`
	Python        string          `yaml:"python,omitempty"`
	TrainScript   string          `yaml:"train_script,omitempty"`
	TestScript    string          `yaml:"test_script,omitempty"`
	Axes          []SweepSpecAxis `yaml:"axes"`
}

// SweepSpecAxis represents one variant dimension of the sweep
type SweepSpecAxis struct {
	Name    string   `yaml:"name"`
	LR      *float64 `yaml:"lr,omitempty"`
	Epochs  []int    `yaml:"epochs,omitempty"`
	Enabled *bool    `yaml:"enabled,omitempty"`
}

// ParseSweepSpec parses a YAML sweep specification into a Sweep model
func ParseSweepSpec(specYAML string) (*models.Sweep, error) {
	var spec SweepSpec
	if err := yaml.Unmarshal([]byte(specYAML), &spec); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	sweep := &models.Sweep{
		Phase:         spec.Sweep.Phase,
		Model:         spec.Sweep.Model,
		Method:        spec.Sweep.Method,
		Mode:          models.Mode(spec.Sweep.Mode),
		ConfigPath:    spec.Sweep.Config,
		WorkDir:       spec.Sweep.WorkDir,
		CheckpointExt: spec.Sweep.CheckpointExt,
		Python:        spec.Sweep.Python,
		TrainScript:   spec.Sweep.TrainScript,
		TestScript:    spec.Sweep.TestScript,
		SpecYAML:      specYAML,
	}

	// Set defaults
	if sweep.Mode == "" {
		sweep.Mode = models.ModeTest
	}
	if sweep.WorkDir == "" {
		sweep.WorkDir = "work_dirs"
	}
	if sweep.CheckpointExt == "" {
		sweep.CheckpointExt = ".pth"
	}
	if sweep.Python == "" {
		sweep.Python = "python3"
	}
	if sweep.TrainScript == "" {
		sweep.TrainScript = "tools/train.py"
	}
	if sweep.TestScript == "" {
		sweep.TestScript = "tools/test.py"
	}

	// Parse axes
	for _, axisSpec := range spec.Sweep.Axes {
		axis := models.Axis{
			Name:    axisSpec.Name,
			Epochs:  axisSpec.Epochs,
			Enabled: true,
		}
		if axisSpec.LR != nil {
			axis.LR = *axisSpec.LR
		}
		if axisSpec.Enabled != nil {
			axis.Enabled = *axisSpec.Enabled
		}
		sweep.Axes = append(sweep.Axes, axis)
	}

	if err := validateSweep(sweep); err != nil {
		return nil, err
	}

	return sweep, nil
}

// LoadSweepSpec reads and parses a sweep specification file. It also verifies
// that the base config file the spec points at exists, since a missing config
// must abort the sweep before any job runs.
func LoadSweepSpec(path string) (*models.Sweep, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read sweep spec %s: %w", path, err)
	}

	sweep, err := ParseSweepSpec(string(data))
	if err != nil {
		return nil, err
	}

	if _, err := os.Stat(sweep.ConfigPath); err != nil {
		return nil, fmt.Errorf("base config %s: %w", sweep.ConfigPath, err)
	}

	return sweep, nil
}

// validateSweep checks the invariants a sweep must satisfy before any job
// may run. Violations are fatal configuration errors.
func validateSweep(sweep *models.Sweep) error {
	if sweep.Phase == "" {
		return fmt.Errorf("sweep phase is required")
	}
	if sweep.Model == "" {
		return fmt.Errorf("sweep model is required")
	}
	if sweep.ConfigPath == "" {
		return fmt.Errorf("sweep config is required")
	}
	if sweep.Mode != models.ModeTrain && sweep.Mode != models.ModeTest {
		return fmt.Errorf("invalid sweep mode %q", sweep.Mode)
	}

	// Duplicate axis names would collide on output directories
	seen := make(map[string]bool)
	for _, axis := range sweep.Axes {
		if axis.Name == "" {
			return fmt.Errorf("axis name is required")
		}
		if seen[axis.Name] {
			return fmt.Errorf("duplicate axis name %q", axis.Name)
		}
		seen[axis.Name] = true

		for _, epoch := range axis.Epochs {
			if epoch <= 0 {
				return fmt.Errorf("axis %q: epoch must be positive, got %d", axis.Name, epoch)
			}
		}
	}

	return nil
}
