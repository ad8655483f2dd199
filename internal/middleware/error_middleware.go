package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/studentadmin/internal/app/models/dto"
	"github.com/yigit/studentadmin/internal/pkg/apperrors"
	"github.com/yigit/studentadmin/internal/pkg/logger"
)

type errorMapping struct {
	target  error
	status  int
	code    dto.ErrorCode
	message string
}

// Checked in order: specific student errors before the generic sentinels.
var errorMappings = []errorMapping{
	{apperrors.ErrStudentNotFound, http.StatusNotFound, dto.ErrorCodeResourceNotFound, "Student not found"},
	{apperrors.ErrNoStudentsToExport, http.StatusNotFound, dto.ErrorCodeResourceNotFound, "No students found"},
	{apperrors.ErrNoDepartmentMatches, http.StatusNotFound, dto.ErrorCodeResourceNotFound, "No students found for this department"},
	{apperrors.ErrInvalidStudentID, http.StatusBadRequest, dto.ErrorCodeValidationFailed, "Invalid student ID"},
	{apperrors.ErrMatricNumberExists, http.StatusConflict, dto.ErrorCodeConflict, "Student with this matric number already exists"},
	{apperrors.ErrEmailAlreadyExists, http.StatusConflict, dto.ErrorCodeConflict, "Student with this email already exists"},
	{apperrors.ErrUnknownDeptOrLevel, http.StatusBadRequest, dto.ErrorCodeValidationFailed, "Department or level does not exist"},
	{apperrors.ErrResourceNotFound, http.StatusNotFound, dto.ErrorCodeResourceNotFound, "Resource not found"},
	{apperrors.ErrConflict, http.StatusConflict, dto.ErrorCodeConflict, "Resource already exists"},
	{apperrors.ErrPermissionDenied, http.StatusForbidden, dto.ErrorCodeForbidden, "Permission denied"},
	{apperrors.ErrUnauthorized, http.StatusUnauthorized, dto.ErrorCodeUnauthorized, "Authentication required"},
	{apperrors.ErrValidationFailed, http.StatusBadRequest, dto.ErrorCodeValidationFailed, "Validation failed"},
	{apperrors.ErrBadRequest, http.StatusBadRequest, dto.ErrorCodeValidationFailed, "Bad request"},
	{apperrors.ErrInvalidQuery, http.StatusBadRequest, dto.ErrorCodeInvalidQuery, "Invalid query parameters"},
	{apperrors.ErrInvalidFormat, http.StatusBadRequest, dto.ErrorCodeInvalidFormat, "Invalid file format"},
	{apperrors.ErrDecode, http.StatusBadRequest, dto.ErrorCodeDecodeFailed, "Error parsing CSV file"},
	{apperrors.ErrFileTooLarge, http.StatusRequestEntityTooLarge, dto.ErrorCodeFileTooLarge, "File too large"},
}

// HandleAPIError handles common API errors and returns appropriate responses
func HandleAPIError(c *gin.Context, err error) {
	for _, m := range errorMappings {
		if !errors.Is(err, m.target) {
			continue
		}
		detail := dto.NewErrorDetail(m.code, apperrors.Message(err, m.message))
		var ce *apperrors.CustomError
		if errors.As(err, &ce) && len(ce.Details) > 0 {
			if field, ok := ce.Details["field"].(string); ok {
				detail = detail.WithField(field)
			}
			detail = detail.WithDetails(ce.Details)
		}
		c.JSON(m.status, dto.NewErrorResponse(detail))
		return
	}

	logger.Error().Err(err).
		Str("path", c.Request.URL.Path).
		Str("requestID", c.GetString(ContextRequestID)).
		Msg("Unhandled error")
	c.JSON(http.StatusInternalServerError,
		dto.NewErrorResponse(dto.NewErrorDetail(dto.ErrorCodeInternalServer, "Internal server error")))
}
