package results

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeMetrics(t *testing.T, dir, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "metrics.json"), []byte(content), 0o644))
}

func TestAggregateAveragesPerAxis(t *testing.T) {
	workDir := t.TempDir()
	base := filepath.Join(workDir, "phase1", "resnet50", "test")

	writeMetrics(t, filepath.Join(base, "lr_0.01", "epoch_91"), `{
		"accuracy/top1": 90.0,
		"single-label/precision_classwise": [80.0, 90.0],
		"single-label/recall_classwise": [70.0, 95.0],
		"single-label/f1-score_classwise": [74.0, 92.0]
	}`)
	writeMetrics(t, filepath.Join(base, "lr_0.01", "epoch_92"), `{
		"accuracy/top1": 92.0,
		"single-label/precision_classwise": [84.0, 92.0],
		"single-label/recall_classwise": [72.0, 97.0],
		"single-label/f1-score_classwise": [78.0, 94.0]
	}`)
	writeMetrics(t, filepath.Join(base, "lr_decr", "epoch_100"), `{
		"accuracy/top1": 88.5,
		"single-label/precision_classwise": [81.0, 89.0],
		"single-label/recall_classwise": [69.0, 94.0],
		"single-label/f1-score_classwise": [73.0, 91.0]
	}`)

	summaries, err := Aggregate(workDir, "phase1", "resnet50", "")
	require.NoError(t, err)
	require.Len(t, summaries, 2)

	// Axes come back in name order
	assert.Equal(t, "lr_0.01", summaries[0].Axis)
	assert.Equal(t, 2, summaries[0].Runs)
	assert.Equal(t, 91.0, summaries[0].Accuracy)
	assert.Equal(t, []float64{82.0, 91.0}, summaries[0].Precision)
	assert.Equal(t, []float64{71.0, 96.0}, summaries[0].Recall)
	assert.Equal(t, []float64{76.0, 93.0}, summaries[0].F1)

	assert.Equal(t, "lr_decr", summaries[1].Axis)
	assert.Equal(t, 1, summaries[1].Runs)
	assert.Equal(t, 88.5, summaries[1].Accuracy)
}

func TestAggregateRoundsToFourDecimals(t *testing.T) {
	workDir := t.TempDir()
	base := filepath.Join(workDir, "phase1", "resnet50", "test")

	writeMetrics(t, filepath.Join(base, "lr_0.01", "epoch_91"), `{"accuracy/top1": 90.0}`)
	writeMetrics(t, filepath.Join(base, "lr_0.01", "epoch_92"), `{"accuracy/top1": 90.00005}`)

	summaries, err := Aggregate(workDir, "phase1", "resnet50", "")
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.Equal(t, 90.0, summaries[0].Accuracy)
}

func TestAggregateSkipsNonMetricJSON(t *testing.T) {
	workDir := t.TempDir()
	base := filepath.Join(workDir, "phase3", "swin", "test", "ros25")

	writeMetrics(t, filepath.Join(base, "lr_0.01", "epoch_91"), `{"accuracy/top1": 90.0}`)

	// A config dump without metric keys must not contribute a run
	other := filepath.Join(base, "lr_0.01", "epoch_91", "vis_data")
	require.NoError(t, os.MkdirAll(other, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(other, "config.json"), []byte(`{"lr": 0.01}`), 0o644))

	summaries, err := Aggregate(workDir, "phase3", "swin", "ros25")
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.Equal(t, 1, summaries[0].Runs)
}

func TestAggregateClasswiseLengthMismatchFails(t *testing.T) {
	workDir := t.TempDir()
	base := filepath.Join(workDir, "phase1", "resnet50", "test")

	writeMetrics(t, filepath.Join(base, "lr_0.01", "epoch_91"),
		`{"accuracy/top1": 90.0, "single-label/recall_classwise": [70.0, 95.0]}`)
	writeMetrics(t, filepath.Join(base, "lr_0.01", "epoch_92"),
		`{"accuracy/top1": 91.0, "single-label/recall_classwise": [70.0, 95.0, 80.0]}`)

	_, err := Aggregate(workDir, "phase1", "resnet50", "")
	assert.Error(t, err)
}

func TestAggregateWithoutMetricsReturnsEmptySlice(t *testing.T) {
	workDir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(workDir, "phase1", "resnet50", "test", "lr_0.01"), 0o755))

	summaries, err := Aggregate(workDir, "phase1", "resnet50", "")
	require.NoError(t, err)
	assert.NotNil(t, summaries)
	assert.Empty(t, summaries)
}

func TestAggregateMissingDirFails(t *testing.T) {
	_, err := Aggregate(t.TempDir(), "phase1", "resnet50", "")
	assert.Error(t, err)
}

func TestWriteReport(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.txt")

	summaries := []AxisSummary{{
		Axis:      "lr_0.01",
		Runs:      2,
		Accuracy:  91.0,
		Precision: []float64{82.0, 91.0},
		Recall:    []float64{71.0, 96.0},
		F1:        []float64{76.0, 93.0},
	}}

	require.NoError(t, WriteReport(path, "ResNet50", summaries))
	// Appending a second block must not truncate the first
	require.NoError(t, WriteReport(path, "ResNet50", summaries))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	content := string(data)
	assert.Contains(t, content, "Model: ResNet50 with schedule: lr_0.01")
	assert.Contains(t, content, "Accuracy: \t 91.0000")
	assert.Contains(t, content, "Classwise Recall: \t [71.0000, 96.0000]")
	assert.Equal(t, 2, strings.Count(content, "Model: ResNet50"))
}
