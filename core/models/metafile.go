package models

// ModelCollection describes a published family of model checkpoints. These
// records are documentation data served read-only over the API; the sweep
// planner never consumes them.
type ModelCollection struct {
	Name         string         `json:"name"`
	Architecture []string       `json:"architecture,omitempty"`
	Paper        PaperReference `json:"paper,omitempty"`
	Models       []ModelRecord  `json:"models"`
}

// PaperReference points at the paper a collection implements
type PaperReference struct {
	Title string `json:"title,omitempty"`
	URL   string `json:"url,omitempty"`
}

// ModelRecord describes a single checkpoint within a collection
type ModelRecord struct {
	Name       string `json:"name"`
	FLOPs      int64  `json:"flops"`
	Parameters int64  `json:"parameters"`
	Config     string `json:"config,omitempty"`
	Weights    string `json:"weights,omitempty"`
}
