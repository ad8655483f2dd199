package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/yigit/studentadmin/internal/pkg/csvimport"
	"github.com/yigit/studentadmin/internal/pkg/logger"
)

// StudentImporter drives a decoded upload through duplicate detection and
// ingestion, one row at a time. Rows are independent: there is no batch
// transaction and a failed row never stops the ones after it.
type StudentImporter struct {
	checker      DuplicateChecker
	writer       StudentWriter
	validate     *validator.Validate
	credentials  CredentialSource
	stopOnCancel bool
}

// ImporterOption configures a StudentImporter.
type ImporterOption func(*StudentImporter)

// WithStopOnCancel makes Import stop between rows once its context is done.
// By default the batch runs to completion.
func WithStopOnCancel(stop bool) ImporterOption {
	return func(si *StudentImporter) { si.stopOnCancel = stop }
}

// NewStudentImporter creates an importer.
func NewStudentImporter(checker DuplicateChecker, writer StudentWriter, validate *validator.Validate, credentials CredentialSource, opts ...ImporterOption) *StudentImporter {
	si := &StudentImporter{
		checker:     checker,
		writer:      writer,
		validate:    validate,
		credentials: credentials,
	}
	for _, opt := range opts {
		opt(si)
	}
	return si
}

// Import consumes every row of dec. A non-nil error means the batch stopped
// early; the summary still reports every row handled before that.
func (si *StudentImporter) Import(ctx context.Context, dec *csvimport.Decoder) (ImportSummary, error) {
	report := NewImportReport()
	start := time.Now()

	// Every row of a batch shares one hash of the initial password.
	hash, err := si.credentials.Hash()
	if err != nil {
		return report.Summary(), fmt.Errorf("failed to prepare initial credential: %w", err)
	}
	ingestor := NewRecordIngestor(si.writer, si.validate, hash)

	for row, err := range dec.Rows() {
		if err != nil {
			return report.Summary(), err
		}
		if si.stopOnCancel {
			if err := ctx.Err(); err != nil {
				logger.Warn().Err(err).Int("line", row.Line).Msg("Import cancelled")
				return report.Summary(), err
			}
		}
		si.processRow(ctx, ingestor, report, row)
	}

	summary := report.Summary()
	logger.Info().
		Int("inserted", summary.Inserted).
		Int("skipped", summary.Skipped).
		Int("failed", summary.Failed).
		Int("total", summary.Total).
		Dur("took", time.Since(start)).
		Msg("Student import finished")
	return summary, nil
}

func (si *StudentImporter) processRow(ctx context.Context, ingestor *RecordIngestor, report *ImportReport, row csvimport.Row) {
	if matNo := cell(row, "mat_no"); matNo != "" {
		exists, err := si.checker.MatricExists(ctx, matNo)
		if err != nil {
			logger.Warn().Err(err).Int("line", row.Line).Msg("Duplicate lookup failed")
			report.RecordFailed(row, "could not check matric number")
			return
		}
		if exists {
			logger.Debug().Int("line", row.Line).Str("matric", matNo).Msg("Skipping existing student")
			report.RecordSkipped()
			return
		}
	}

	if _, err := ingestor.Ingest(ctx, row); err != nil {
		reason := err.Error()
		var rowErr *RowError
		if errors.As(err, &rowErr) {
			reason = rowErr.Reason
		}
		logger.Warn().Int("line", row.Line).Str("reason", reason).Msg("Rejected import row")
		report.RecordFailed(row, reason)
		return
	}
	report.RecordInserted()
}
