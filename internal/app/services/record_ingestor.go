package services

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/yigit/studentadmin/internal/app/models"
	"github.com/yigit/studentadmin/internal/pkg/apperrors"
	"github.com/yigit/studentadmin/internal/pkg/csvimport"
	"github.com/yigit/studentadmin/internal/pkg/logger"
	"github.com/yigit/studentadmin/internal/pkg/validation"
)

// ImportColumns is the header an upload must carry.
var ImportColumns = []string{"department_id", "level_id", "first_name", "last_name", "email", "mat_no", "username"}

// ImportRecord is an uploaded row parsed into typed fields.
type ImportRecord struct {
	DepartmentID int64  `csv:"department_id" validate:"gt=0"`
	LevelID      int64  `csv:"level_id" validate:"gt=0"`
	FirstName    string `csv:"first_name" validate:"notblank"`
	LastName     string `csv:"last_name" validate:"notblank"`
	Email        string `csv:"email" validate:"notblank,email"`
	MatricNumber string `csv:"mat_no" validate:"notblank"`
	Username     string `csv:"username" validate:"notblank"`
}

// RowError is a reason for rejecting a single row.
type RowError struct {
	Field  string
	Reason string
	Err    error
}

func (e *RowError) Error() string { return e.Reason }

func (e *RowError) Unwrap() error { return e.Err }

func cell(row csvimport.Row, name string) string {
	v, _ := row.Get(name)
	return strings.TrimSpace(v)
}

func parseID(row csvimport.Row, name string) (int64, error) {
	raw := cell(row, name)
	if raw == "" {
		return 0, &RowError{Field: name, Reason: name + " is required"}
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, &RowError{Field: name, Reason: name + " must be an integer", Err: err}
	}
	return id, nil
}

// ParseImportRecord converts row into a validated ImportRecord.
func ParseImportRecord(v *validator.Validate, row csvimport.Row) (*ImportRecord, error) {
	deptID, err := parseID(row, "department_id")
	if err != nil {
		return nil, err
	}
	levelID, err := parseID(row, "level_id")
	if err != nil {
		return nil, err
	}

	rec := &ImportRecord{
		DepartmentID: deptID,
		LevelID:      levelID,
		FirstName:    cell(row, "first_name"),
		LastName:     cell(row, "last_name"),
		Email:        cell(row, "email"),
		MatricNumber: cell(row, "mat_no"),
		Username:     cell(row, "username"),
	}
	if err := v.Struct(rec); err != nil {
		if field, reason, ok := validation.FirstError(err); ok {
			return nil, &RowError{Field: field, Reason: reason, Err: apperrors.ErrValidationFailed}
		}
		return nil, &RowError{Reason: "invalid record", Err: err}
	}
	return rec, nil
}

// RecordIngestor validates and persists one row at a time.
type RecordIngestor struct {
	writer       StudentWriter
	validate     *validator.Validate
	passwordHash string
}

// NewRecordIngestor creates an ingestor that gives every new student passwordHash.
func NewRecordIngestor(writer StudentWriter, validate *validator.Validate, passwordHash string) *RecordIngestor {
	return &RecordIngestor{writer: writer, validate: validate, passwordHash: passwordHash}
}

// Ingest stores row as a new student and returns its ID. Every error it
// returns is a *RowError.
func (ri *RecordIngestor) Ingest(ctx context.Context, row csvimport.Row) (int64, error) {
	rec, err := ParseImportRecord(ri.validate, row)
	if err != nil {
		return 0, err
	}

	student := &models.Student{
		DepartmentID: rec.DepartmentID,
		LevelID:      rec.LevelID,
		FirstName:    rec.FirstName,
		LastName:     rec.LastName,
		Email:        rec.Email,
		MatricNumber: rec.MatricNumber,
		Username:     rec.Username,
		PasswordHash: ri.passwordHash,
	}
	if err := ri.writer.Create(ctx, student); err != nil {
		switch {
		case errors.Is(err, apperrors.ErrMatricNumberExists),
			errors.Is(err, apperrors.ErrEmailAlreadyExists),
			errors.Is(err, apperrors.ErrUnknownDeptOrLevel),
			errors.Is(err, apperrors.ErrConflict):
			return 0, &RowError{Reason: err.Error(), Err: err}
		default:
			logger.Error().Err(err).Int("line", row.Line).Msg("Storage error while importing row")
			return 0, &RowError{Reason: "could not save record", Err: err}
		}
	}
	return student.ID, nil
}
