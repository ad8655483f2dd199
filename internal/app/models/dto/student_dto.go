package dto

import "github.com/yigit/studentadmin/internal/app/models"

// CreateStudentRequest represents the body of a direct student creation.
type CreateStudentRequest struct {
	DepartmentID int64  `json:"departmentId" binding:"required,gt=0"`
	LevelID      int64  `json:"levelId" binding:"required,gt=0"`
	FirstName    string `json:"firstName" binding:"required,notblank"`
	LastName     string `json:"lastName" binding:"required,notblank"`
	Email        string `json:"email" binding:"required,email"`
	MatricNumber string `json:"matric" binding:"required,notblank"`
	Username     string `json:"username" binding:"required,notblank"`
}

// UpdateStudentRequest replaces a student's editable fields.
type UpdateStudentRequest struct {
	DepartmentID int64  `json:"departmentId" binding:"required,gt=0"`
	LevelID      int64  `json:"levelId" binding:"required,gt=0"`
	FirstName    string `json:"firstName" binding:"required,notblank"`
	LastName     string `json:"lastName" binding:"required,notblank"`
	Email        string `json:"email" binding:"required,email"`
	Username     string `json:"username" binding:"required,notblank"`
}

// StudentResponse is the detail view of a single student.
type StudentResponse struct {
	ID           int64   `json:"id"`
	DepartmentID int64   `json:"departmentId"`
	LevelID      int64   `json:"levelId"`
	FirstName    string  `json:"firstName"`
	LastName     string  `json:"lastName"`
	Email        string  `json:"email"`
	MatricNumber string  `json:"matric"`
	Username     string  `json:"username"`
	Blocked      bool    `json:"blocked"`
	Photo        *string `json:"photo,omitempty"`
}

// NewStudentResponse maps a student model without its credential.
func NewStudentResponse(s *models.Student) *StudentResponse {
	if s == nil {
		return nil
	}
	return &StudentResponse{
		ID:           s.ID,
		DepartmentID: s.DepartmentID,
		LevelID:      s.LevelID,
		FirstName:    s.FirstName,
		LastName:     s.LastName,
		Email:        s.Email,
		MatricNumber: s.MatricNumber,
		Username:     s.Username,
		Blocked:      s.Blocked,
		Photo:        s.Photo,
	}
}

// StudentListResponse is the general listing payload.
type StudentListResponse struct {
	Students   []models.StudentListItem `json:"students"`
	Pagination PaginationInfo           `json:"pagination"`
}

// DepartmentStudentsResponse is the department lookup payload.
type DepartmentStudentsResponse struct {
	Students   []models.DepartmentStudent `json:"students"`
	Pagination PaginationInfo             `json:"pagination"`
}

// ImportFailureResponse reports one rejected CSV row.
type ImportFailureResponse struct {
	Line   int               `json:"line" example:"3"`
	Row    map[string]string `json:"row"`
	Reason string            `json:"reason" example:"email must be a valid email address"`
}

// ImportResultResponse summarizes a bulk upload.
type ImportResultResponse struct {
	Inserted int                     `json:"inserted" example:"2"`
	Skipped  int                     `json:"skipped" example:"1"`
	Failed   int                     `json:"failed" example:"0"`
	Total    int                     `json:"total" example:"3"`
	Errors   []ImportFailureResponse `json:"errors"`
}

// BlockStatusResponse reports the block flag after a toggle.
type BlockStatusResponse struct {
	ID      int64 `json:"id"`
	Blocked bool  `json:"blocked"`
}

// PasswordResetResponse reports how many accounts received the default credential.
type PasswordResetResponse struct {
	Updated int64 `json:"updated"`
}

// PhotoResponse carries the public URL of an uploaded picture.
type PhotoResponse struct {
	Photo string `json:"photo"`
}
