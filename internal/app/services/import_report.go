package services

import "github.com/yigit/studentadmin/internal/pkg/csvimport"

// ImportFailure describes one row that could not be imported.
type ImportFailure struct {
	Line   int
	Row    map[string]string
	Reason string
}

// ImportSummary is the outcome of one import call.
// Inserted + Skipped + Failed always equals Total.
type ImportSummary struct {
	Inserted int
	Skipped  int
	Failed   int
	Total    int
	Failures []ImportFailure
}

// ImportReport accumulates per-row outcomes in the order rows were processed.
type ImportReport struct {
	inserted int
	skipped  int
	failures []ImportFailure
}

// NewImportReport creates an empty report.
func NewImportReport() *ImportReport {
	return &ImportReport{failures: make([]ImportFailure, 0)}
}

// RecordInserted counts a persisted row.
func (r *ImportReport) RecordInserted() { r.inserted++ }

// RecordSkipped counts a row whose matric number already existed.
func (r *ImportReport) RecordSkipped() { r.skipped++ }

// RecordFailed keeps the original row and the reason it was rejected.
func (r *ImportReport) RecordFailed(row csvimport.Row, reason string) {
	r.failures = append(r.failures, ImportFailure{
		Line:   row.Line,
		Row:    row.Fields,
		Reason: reason,
	})
}

// Summary returns the counts and a copy of the failures.
func (r *ImportReport) Summary() ImportSummary {
	failures := make([]ImportFailure, len(r.failures))
	copy(failures, r.failures)
	failed := len(failures)
	return ImportSummary{
		Inserted: r.inserted,
		Skipped:  r.skipped,
		Failed:   failed,
		Total:    r.inserted + r.skipped + failed,
		Failures: failures,
	}
}
