package results

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Metric keys written by the evaluation framework
const (
	keyAccuracy  = "accuracy/top1"
	keyPrecision = "single-label/precision_classwise"
	keyRecall    = "single-label/recall_classwise"
	keyF1        = "single-label/f1-score_classwise"
)

// AxisSummary is the element-wise average of every epoch evaluation found
// for one axis. Classwise slices keep the class order of the metric files.
type AxisSummary struct {
	Axis      string    `json:"axis"`
	Runs      int       `json:"runs"`
	Accuracy  float64   `json:"accuracy"`
	Precision []float64 `json:"precision_classwise"`
	Recall    []float64 `json:"recall_classwise"`
	F1        []float64 `json:"f1_classwise"`
}

type jobMetrics struct {
	accuracy  float64
	precision []float64
	recall    []float64
	f1        []float64
}

// Aggregate walks the evaluation output tree
// work_dir/<phase>/<model>/test/<method> and averages the metrics of every
// epoch evaluation per axis. Axes are returned in name order.
func Aggregate(workDir, phase, model, method string) ([]AxisSummary, error) {
	base := filepath.Join(workDir, phase, model, "test", method)

	entries, err := os.ReadDir(base)
	if err != nil {
		return nil, fmt.Errorf("failed to read results dir %s: %w", base, err)
	}

	var axes []string
	for _, entry := range entries {
		if entry.IsDir() {
			axes = append(axes, entry.Name())
		}
	}
	sort.Strings(axes)

	// Non-nil so an empty result serializes as an empty list
	summaries := []AxisSummary{}
	for _, axis := range axes {
		metrics, err := collectAxisMetrics(filepath.Join(base, axis))
		if err != nil {
			return nil, fmt.Errorf("axis %s: %w", axis, err)
		}
		if len(metrics) == 0 {
			continue
		}

		summary, err := average(axis, metrics)
		if err != nil {
			return nil, fmt.Errorf("axis %s: %w", axis, err)
		}
		summaries = append(summaries, summary)
	}

	return summaries, nil
}

// collectAxisMetrics reads every metrics JSON file below an axis directory.
// The evaluation framework nests its output (epoch dir, then a timestamped
// dir), so the walk is recursive rather than fixed-depth.
func collectAxisMetrics(axisDir string) ([]jobMetrics, error) {
	var collected []jobMetrics

	err := filepath.WalkDir(axisDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(path, ".json") {
			return nil
		}

		metrics, ok, err := readMetricsFile(path)
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		if ok {
			collected = append(collected, metrics)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return collected, nil
}

// readMetricsFile parses one metrics JSON file. Files without the accuracy
// key are not evaluation outputs and are skipped.
func readMetricsFile(path string) (jobMetrics, bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return jobMetrics{}, false, err
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return jobMetrics{}, false, fmt.Errorf("invalid JSON: %w", err)
	}

	accRaw, ok := raw[keyAccuracy]
	if !ok {
		return jobMetrics{}, false, nil
	}

	var metrics jobMetrics
	if err := json.Unmarshal(accRaw, &metrics.accuracy); err != nil {
		return jobMetrics{}, false, fmt.Errorf("%s: %w", keyAccuracy, err)
	}
	for key, dst := range map[string]*[]float64{
		keyPrecision: &metrics.precision,
		keyRecall:    &metrics.recall,
		keyF1:        &metrics.f1,
	} {
		value, ok := raw[key]
		if !ok {
			continue
		}
		if err := json.Unmarshal(value, dst); err != nil {
			return jobMetrics{}, false, fmt.Errorf("%s: %w", key, err)
		}
	}

	return metrics, true, nil
}

// average computes the element-wise mean of the collected metrics, rounded
// to four decimals
func average(axis string, metrics []jobMetrics) (AxisSummary, error) {
	summary := AxisSummary{
		Axis: axis,
		Runs: len(metrics),
	}

	var accSum float64
	for _, m := range metrics {
		accSum += m.accuracy
	}
	summary.Accuracy = round4(accSum / float64(len(metrics)))

	var err error
	if summary.Precision, err = meanClasswise(metrics, func(m jobMetrics) []float64 { return m.precision }); err != nil {
		return summary, fmt.Errorf("precision: %w", err)
	}
	if summary.Recall, err = meanClasswise(metrics, func(m jobMetrics) []float64 { return m.recall }); err != nil {
		return summary, fmt.Errorf("recall: %w", err)
	}
	if summary.F1, err = meanClasswise(metrics, func(m jobMetrics) []float64 { return m.f1 }); err != nil {
		return summary, fmt.Errorf("f1-score: %w", err)
	}

	return summary, nil
}

func meanClasswise(metrics []jobMetrics, get func(jobMetrics) []float64) ([]float64, error) {
	var sums []float64
	var count int

	for _, m := range metrics {
		values := get(m)
		if values == nil {
			continue
		}
		if sums == nil {
			sums = make([]float64, len(values))
		}
		if len(values) != len(sums) {
			return nil, fmt.Errorf("classwise length mismatch: %d vs %d", len(values), len(sums))
		}
		for i, v := range values {
			sums[i] += v
		}
		count++
	}

	if count == 0 {
		return nil, nil
	}
	for i := range sums {
		sums[i] = round4(sums[i] / float64(count))
	}
	return sums, nil
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}
