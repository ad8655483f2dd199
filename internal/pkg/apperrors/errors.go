package apperrors

import "errors"

// Common errors
var (
	// Resource errors
	ErrResourceNotFound = errors.New("resource not found")
	ErrConflict         = errors.New("conflict")

	// Authorization errors
	ErrPermissionDenied = errors.New("permission denied")
	ErrUnauthorized     = errors.New("authentication required")

	// Validation errors
	ErrValidationFailed = errors.New("validation failed")
	ErrBadRequest       = errors.New("bad request")
	ErrInvalidQuery     = errors.New("invalid query")

	// Upload errors
	ErrInvalidFormat = errors.New("invalid file format")
	ErrDecode        = errors.New("file could not be decoded")
	ErrFileTooLarge  = errors.New("file too large")
)

// Student Errors
var (
	ErrStudentNotFound     = errors.New("student not found")
	ErrMatricNumberExists  = errors.New("matric number already exists")
	ErrEmailAlreadyExists  = errors.New("email already exists")
	ErrInvalidStudentID    = errors.New("invalid student ID")
	ErrUnknownDeptOrLevel  = errors.New("department or level does not exist")
	ErrNoStudentsToExport  = errors.New("no students found")
	ErrNoDepartmentMatches = errors.New("no students found for this department")
)

// NewConflictError creates a new custom error for conflict situations with a message
func NewConflictError(message string) error {
	return &CustomError{
		Err:     ErrConflict,
		Message: message,
	}
}

// NewBadRequestError creates a new custom error for bad request with a message
func NewBadRequestError(message string) error {
	return &CustomError{
		Err:     ErrBadRequest,
		Message: message,
	}
}

// NewValidationError creates a validation error for a single field
func NewValidationError(field, message string) error {
	return &CustomError{
		Err:     ErrValidationFailed,
		Message: message,
		Details: map[string]interface{}{"field": field},
	}
}

// NewInvalidQueryError reports listing parameters that cannot produce a finite page.
func NewInvalidQueryError(message string) error {
	return &CustomError{
		Err:     ErrInvalidQuery,
		Message: message,
	}
}

// NewDecodeError wraps a parse failure of an uploaded file.
func NewDecodeError(message string, cause error) error {
	ce := &CustomError{
		Err:     ErrDecode,
		Message: message,
	}
	if cause != nil {
		ce.Details = map[string]interface{}{"cause": cause.Error()}
	}
	return ce
}

// NewInvalidFormatError reports an upload whose declared extension is not accepted.
func NewInvalidFormatError(message string) error {
	return &CustomError{
		Err:     ErrInvalidFormat,
		Message: message,
	}
}

// Is returns whether target matches any of the errors in errList
func Is(err, target error, errList ...error) bool {
	if errors.Is(err, target) {
		return true
	}

	for _, e := range errList {
		if errors.Is(err, e) {
			return true
		}
	}

	return false
}

// CustomError represents application-specific errors with additional context
type CustomError struct {
	Err     error
	Message string
	Details map[string]interface{}
}

// Error implements error interface
func (e *CustomError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "unknown error"
}

// Unwrap implements errors.Unwrap interface
func (e *CustomError) Unwrap() error {
	return e.Err
}

// Message returns the user-facing message of err when it carries one,
// falling back to fallback otherwise.
func Message(err error, fallback string) string {
	var ce *CustomError
	if errors.As(err, &ce) && ce.Message != "" {
		return ce.Message
	}
	return fallback
}
