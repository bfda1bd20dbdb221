package models

import "time"

// Mode selects which external entrypoint a sweep invokes
type Mode string

const (
	ModeTrain Mode = "train"
	ModeTest  Mode = "test"
)

// Axis is one named variant dimension of a sweep, typically a learning-rate
// schedule. In test mode every listed epoch produces one evaluation job; in
// train mode the axis itself produces exactly one training job.
type Axis struct {
	Name    string
	LR      float64 // optimizer learning-rate override for train jobs, 0 = use config value
	Epochs  []int   // checkpoint epochs evaluated in test mode
	Enabled bool
}

// Sweep is the fully resolved sweep configuration
type Sweep struct {
	Phase         string // experiment phase, e.g. "phase3"
	Model         string // model identifier, e.g. "swin"
	Method        string // training method variant, may be empty
	Mode          Mode
	ConfigPath    string // base framework config file
	WorkDir       string
	CheckpointExt string // e.g. ".pth"
	Python        string // python interpreter
	TrainScript   string
	TestScript    string
	Axes          []Axis
	SpecYAML      string // original spec for replay/debug
}

// JobSpec is one resolved (axis, epoch) combination of a sweep. The mapping
// from combination to paths is deterministic; distinct combinations never
// share an output directory.
type JobSpec struct {
	RunID          string
	Axis           string
	Epoch          int     // 0 for train jobs
	LR             float64 // 0 = no override
	Mode           Mode
	ConfigPath     string
	CheckpointPath string // empty for train jobs
	OutputDir      string
}

// JobStatus represents the current status of a sweep job
type JobStatus string

const (
	JobStatusPending   JobStatus = "pending"
	JobStatusRunning   JobStatus = "running"
	JobStatusSucceeded JobStatus = "succeeded"
	JobStatusFailed    JobStatus = "failed"
)

// RunStatus represents the current status of a sweep run
type RunStatus string

const (
	RunStatusPending   RunStatus = "pending"
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusAborted   RunStatus = "aborted"
)

// JobResult is the observable outcome of one job invocation
type JobResult struct {
	Spec       JobSpec
	ExitCode   int
	Error      string // empty on success
	LogPath    string
	StartedAt  time.Time
	FinishedAt time.Time
}

// Duration returns the wall-clock duration of the invocation
func (r *JobResult) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

// Succeeded reports whether the invocation exited cleanly
func (r *JobResult) Succeeded() bool {
	return r.ExitCode == 0 && r.Error == ""
}

// RunSummary reports the outcome of a completed sweep
type RunSummary struct {
	RunID     string
	Total     int
	Succeeded int
	Failed    []JobSpec
}

// SweepRun is the persisted record of one sweep execution
type SweepRun struct {
	ID          string
	Mode        Mode
	Phase       string
	Model       string
	Method      string
	Status      RunStatus
	SpecYAML    string
	TotalJobs   int
	Succeeded   int
	Failed      int
	CreatedAt   time.Time
	StartedAt   *time.Time
	CompletedAt *time.Time
}

// SweepJob is the persisted record of one job invocation within a run
type SweepJob struct {
	ID             string     `json:"id"`
	RunID          string     `json:"run_id"`
	Axis           string     `json:"axis"`
	Epoch          int        `json:"epoch"`
	OutputDir      string     `json:"output_dir"`
	CheckpointPath string     `json:"checkpoint_path,omitempty"`
	Status         JobStatus  `json:"status"`
	ExitCode       *int       `json:"exit_code,omitempty"`
	DurationMS     *int64     `json:"duration_ms,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	FinishedAt     *time.Time `json:"finished_at,omitempty"`
}
