package results

import (
	"fmt"
	"os"
	"strings"
)

// WriteReport appends a per-axis text report to path, one block per axis
func WriteReport(path, model string, summaries []AxisSummary) error {
	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open report %s: %w", path, err)
	}
	defer file.Close()

	for _, summary := range summaries {
		fmt.Fprintf(file, "\n\nModel: %s with schedule: %s \n", model, summary.Axis)
		fmt.Fprintf(file, "Accuracy: \t %.4f \n", summary.Accuracy)
		fmt.Fprintf(file, "Classwise Recall: \t %s \n", formatClasswise(summary.Recall))
		fmt.Fprintf(file, "Classwise Precision: \t %s \n", formatClasswise(summary.Precision))
		fmt.Fprintf(file, "Classwise F1-Score: \t %s \n", formatClasswise(summary.F1))
	}

	return nil
}

func formatClasswise(values []float64) string {
	if values == nil {
		return "[]"
	}
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = fmt.Sprintf("%.4f", v)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
