package verify

import (
	"fmt"
	"math"
	"strings"
)

// Stats are collected on every run, whatever the outcome.
type Stats struct {
	// TotalRequests counts non-blank lines, valid or not.
	TotalRequests   int      `json:"total_requests"`
	UniqueCustomIDs int      `json:"unique_custom_ids"`
	EndpointsUsed   []string `json:"endpoints_used"`
	// FileSizeMB is rounded to two decimals.
	FileSizeMB float64 `json:"file_size_mb"`
}

// Result is the report of one validation run. Errors make the file invalid;
// warnings never do.
type Result struct {
	Valid    bool     `json:"is_valid"`
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
	Stats    Stats    `json:"stats"`
}

func (r *Result) addError(format string, args ...any) {
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
	r.Valid = false
}

func (r *Result) addWarning(format string, args ...any) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

// String renders the status line, the errors, the warnings and then the
// statistics in a fixed key order.
func (r *Result) String() string {
	var b strings.Builder
	status := "PASSED"
	if !r.Valid {
		status = "FAILED"
	}
	fmt.Fprintf(&b, "Validation: %s\n", status)

	if len(r.Errors) > 0 {
		fmt.Fprintf(&b, "\nErrors (%d):\n", len(r.Errors))
		for _, e := range r.Errors {
			fmt.Fprintf(&b, "  - %s\n", e)
		}
	}
	if len(r.Warnings) > 0 {
		fmt.Fprintf(&b, "\nWarnings (%d):\n", len(r.Warnings))
		for _, w := range r.Warnings {
			fmt.Fprintf(&b, "  - %s\n", w)
		}
	}

	b.WriteString("\nStatistics:\n")
	fmt.Fprintf(&b, "  total_requests: %d\n", r.Stats.TotalRequests)
	fmt.Fprintf(&b, "  unique_custom_ids: %d\n", r.Stats.UniqueCustomIDs)
	fmt.Fprintf(&b, "  endpoints_used: [%s]\n", strings.Join(r.Stats.EndpointsUsed, ", "))
	fmt.Fprintf(&b, "  file_size_mb: %.2f\n", r.Stats.FileSizeMB)
	return b.String()
}

const mib = 1 << 20

func roundMB(bytes int64) float64 {
	return math.Round(float64(bytes)/mib*100) / 100
}

// formatMB prints whole mebibytes without decimals.
func formatMB(bytes int64) string {
	if bytes%mib == 0 {
		return fmt.Sprintf("%d", bytes/mib)
	}
	return fmt.Sprintf("%.2f", float64(bytes)/mib)
}
