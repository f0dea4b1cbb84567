package anomaly

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// DefaultReportDir is where run reports land unless overridden.
const DefaultReportDir = "reports"

// WriteReport persists the report as a timestamped JSON artifact and returns
// its path. The filename uses the report's own timestamp so repeated runs
// never collide.
func WriteReport(dir string, report *Report) (string, error) {
	if dir == "" {
		dir = DefaultReportDir
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create report directory: %w", err)
	}

	name := fmt.Sprintf("price_anomalies_%s.json", report.Timestamp.Format("20060102_150405"))
	path := filepath.Join(dir, name)

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal report: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write report: %w", err)
	}
	return path, nil
}
