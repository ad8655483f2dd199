package controllers

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yigit/studentadmin/internal/app/models"
	"github.com/yigit/studentadmin/internal/app/models/dto"
	"github.com/yigit/studentadmin/internal/app/services"
	"github.com/yigit/studentadmin/internal/middleware"
	"github.com/yigit/studentadmin/internal/pkg/apperrors"
	"github.com/yigit/studentadmin/internal/pkg/csvimport"
	"github.com/yigit/studentadmin/internal/pkg/helpers"
	"github.com/yigit/studentadmin/internal/pkg/logger"
)

// UploadFormField is the multipart field carrying an uploaded file.
const UploadFormField = "file"

// Importer runs a decoded CSV upload.
type Importer interface {
	Import(ctx context.Context, dec *csvimport.Decoder) (services.ImportSummary, error)
}

// UploadOptions bounds bulk uploads.
type UploadOptions struct {
	MaxBytes           int64
	CancelOnDisconnect bool
}

// StudentController handles student administration endpoints
type StudentController struct {
	studentService services.StudentService
	importer       Importer
	upload         UploadOptions
}

// NewStudentController creates a new StudentController
func NewStudentController(studentService services.StudentService, importer Importer, upload UploadOptions) *StudentController {
	return &StudentController{
		studentService: studentService,
		importer:       importer,
		upload:         upload,
	}
}

func parseStudentID(ctx *gin.Context) (int64, error) {
	id, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperrors.ErrInvalidStudentID
	}
	return id, nil
}

// readUpload returns the uploaded file's name and content.
func (c *StudentController) readUpload(ctx *gin.Context) (string, []byte, error) {
	fileHeader, err := ctx.FormFile(UploadFormField)
	if err != nil {
		return "", nil, apperrors.NewValidationError(UploadFormField, "file is required")
	}
	if c.upload.MaxBytes > 0 && fileHeader.Size > c.upload.MaxBytes {
		return "", nil, apperrors.ErrFileTooLarge
	}

	file, err := fileHeader.Open()
	if err != nil {
		return "", nil, apperrors.NewBadRequestError("uploaded file could not be read")
	}
	defer file.Close()

	var src io.Reader = file
	if c.upload.MaxBytes > 0 {
		src = io.LimitReader(file, c.upload.MaxBytes+1)
	}
	data, err := io.ReadAll(src)
	if err != nil {
		return "", nil, apperrors.NewBadRequestError("uploaded file could not be read")
	}
	if c.upload.MaxBytes > 0 && int64(len(data)) > c.upload.MaxBytes {
		return "", nil, apperrors.ErrFileTooLarge
	}
	return fileHeader.Filename, data, nil
}

// BulkUpload handles CSV batch ingestion
func (c *StudentController) BulkUpload(ctx *gin.Context) {
	filename, data, err := c.readUpload(ctx)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	dec, err := csvimport.NewDecoder(data, filename, services.ImportColumns)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	importCtx := ctx.Request.Context()
	if !c.upload.CancelOnDisconnect {
		importCtx = context.WithoutCancel(importCtx)
	}

	summary, err := c.importer.Import(importCtx, dec)
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		logger.Warn().Err(err).Int("processed", summary.Total).Msg("Student upload stopped early")
		detail := dto.NewErrorDetail(dto.ErrorCodeInterrupted, "Upload stopped before every row was processed").
			WithSeverity(dto.ErrorSeverityWarning)
		ctx.JSON(http.StatusServiceUnavailable, dto.NewPartialResponse(toImportResult(summary), detail))
		return
	}
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewStructuredResponse(toImportResult(summary), "Students uploaded successfully"))
}

func toImportResult(summary services.ImportSummary) dto.ImportResultResponse {
	failures := make([]dto.ImportFailureResponse, 0, len(summary.Failures))
	for _, f := range summary.Failures {
		failures = append(failures, dto.ImportFailureResponse{Line: f.Line, Row: f.Row, Reason: f.Reason})
	}
	return dto.ImportResultResponse{
		Inserted: summary.Inserted,
		Skipped:  summary.Skipped,
		Failed:   summary.Failed,
		Total:    summary.Total,
		Errors:   failures,
	}
}

// BulkDownload handles the CSV export of every student
func (c *StudentController) BulkDownload(ctx *gin.Context) {
	data, err := c.studentService.ExportCSV(ctx.Request.Context())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.Header("Content-Disposition", "attachment; filename=students.csv")
	ctx.DataFromReader(http.StatusOK, int64(len(data)), "text/csv", bytes.NewReader(data), nil)
}

// ListStudents handles the filtered, paginated listing of unblocked students
func (c *StudentController) ListStudents(ctx *gin.Context) {
	filter, err := parseStudentFilter(ctx)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	page, err := c.studentService.ListStudents(ctx.Request.Context(), filter)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewStructuredResponse(dto.StudentListResponse{
		Students: page.Items,
		Pagination: dto.PaginationInfo{
			Page:       page.Page,
			Limit:      page.Limit,
			Total:      page.Total,
			TotalPages: page.TotalPages,
		},
	}, "Students retrieved successfully"))
}

func parseStudentFilter(ctx *gin.Context) (models.StudentFilter, error) {
	var filter models.StudentFilter
	var err error

	if filter.Page, err = helpers.ParsePage(ctx, "page"); err != nil {
		return filter, err
	}
	if filter.Limit, err = helpers.ParseOptionalPositiveInt(ctx, "limit"); err != nil {
		return filter, err
	}
	if filter.DepartmentID, err = helpers.ParseOptionalID(ctx, "department"); err != nil {
		return filter, err
	}
	if filter.LevelID, err = helpers.ParseOptionalID(ctx, "level"); err != nil {
		return filter, err
	}
	return filter, nil
}

// StudentsByDepartment handles the department-scoped lookup. Blocked students
// are included and the result is not paginated.
func (c *StudentController) StudentsByDepartment(ctx *gin.Context) {
	departmentID, err := helpers.ParseOptionalID(ctx, "departmentId")
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	if departmentID == nil {
		middleware.HandleAPIError(ctx, apperrors.NewValidationError("departmentId", "Department ID is required"))
		return
	}
	levelID, err := helpers.ParseOptionalID(ctx, "levelId")
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	students, err := c.studentService.StudentsByDepartment(ctx.Request.Context(), *departmentID, levelID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	total := int64(len(students))
	ctx.JSON(http.StatusOK, dto.NewStructuredResponse(dto.DepartmentStudentsResponse{
		Students: students,
		Pagination: dto.PaginationInfo{
			Page:       helpers.DefaultPage,
			Total:      total,
			TotalPages: helpers.TotalPages(total, nil),
		},
	}, "Students retrieved successfully"))
}

// CreateStudent handles direct creation of one student
func (c *StudentController) CreateStudent(ctx *gin.Context) {
	var req dto.CreateStudentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleBindError(ctx, err)
		return
	}

	student, err := c.studentService.CreateStudent(ctx.Request.Context(), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewStructuredResponse(dto.NewStudentResponse(student), "Student created successfully"))
}

// GetStudent handles retrieving a student by ID
func (c *StudentController) GetStudent(ctx *gin.Context) {
	id, err := parseStudentID(ctx)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	student, err := c.studentService.GetStudent(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewStructuredResponse(dto.NewStudentResponse(student), "Student retrieved successfully"))
}

// UpdateStudent handles replacing a student's editable fields
func (c *StudentController) UpdateStudent(ctx *gin.Context) {
	id, err := parseStudentID(ctx)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	var req dto.UpdateStudentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleBindError(ctx, err)
		return
	}

	student, err := c.studentService.UpdateStudent(ctx.Request.Context(), id, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewStructuredResponse(dto.NewStudentResponse(student), "Student updated successfully"))
}

// DeleteStudent handles permanent removal of a student
func (c *StudentController) DeleteStudent(ctx *gin.Context) {
	id, err := parseStudentID(ctx)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	if err := c.studentService.DeleteStudent(ctx.Request.Context(), id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewStructuredResponse(nil, "Student deleted successfully"))
}

// ToggleBlock handles blocking or unblocking a student
func (c *StudentController) ToggleBlock(ctx *gin.Context) {
	id, err := parseStudentID(ctx)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	blocked, err := c.studentService.ToggleBlock(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	message := "Student unblocked successfully"
	if blocked {
		message = "Student blocked successfully"
	}
	ctx.JSON(http.StatusOK, dto.NewStructuredResponse(dto.BlockStatusResponse{ID: id, Blocked: blocked}, message))
}

// ResetPassword handles restoring one student's initial password
func (c *StudentController) ResetPassword(ctx *gin.Context) {
	id, err := parseStudentID(ctx)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	if err := c.studentService.ResetPassword(ctx.Request.Context(), id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewStructuredResponse(nil, "Password reset successfully"))
}

// ResetAllPasswords handles restoring every student's initial password
func (c *StudentController) ResetAllPasswords(ctx *gin.Context) {
	n, err := c.studentService.ResetAllPasswords(ctx.Request.Context())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewStructuredResponse(dto.PasswordResetResponse{Updated: n}, "Passwords reset successfully"))
}

// GetProfile handles retrieving the signed-in student's record
func (c *StudentController) GetProfile(ctx *gin.Context) {
	userID, ok := middleware.UserID(ctx)
	if !ok {
		middleware.HandleAPIError(ctx, apperrors.ErrUnauthorized)
		return
	}

	student, err := c.studentService.GetProfile(ctx.Request.Context(), userID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewStructuredResponse(dto.NewStudentResponse(student), "Profile retrieved successfully"))
}

// UpdatePicture handles uploading the signed-in student's photo
func (c *StudentController) UpdatePicture(ctx *gin.Context) {
	userID, ok := middleware.UserID(ctx)
	if !ok {
		middleware.HandleAPIError(ctx, apperrors.ErrUnauthorized)
		return
	}

	filename, data, err := c.readUpload(ctx)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	url, err := c.studentService.UpdatePhoto(ctx.Request.Context(), userID, bytes.NewReader(data), filename)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewStructuredResponse(dto.PhotoResponse{Photo: url}, "Picture updated successfully"))
}
