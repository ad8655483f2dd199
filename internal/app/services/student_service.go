package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/yigit/studentadmin/internal/app/models"
	"github.com/yigit/studentadmin/internal/app/models/dto"
	"github.com/yigit/studentadmin/internal/pkg/apperrors"
	"github.com/yigit/studentadmin/internal/pkg/csvexport"
	"github.com/yigit/studentadmin/internal/pkg/helpers"
	"github.com/yigit/studentadmin/internal/pkg/logger"
)

// StudentService defines the administrative operations on student records
type StudentService interface {
	CreateStudent(ctx context.Context, req *dto.CreateStudentRequest) (*models.Student, error)
	GetStudent(ctx context.Context, id int64) (*models.Student, error)
	UpdateStudent(ctx context.Context, id int64, req *dto.UpdateStudentRequest) (*models.Student, error)
	DeleteStudent(ctx context.Context, id int64) error
	ToggleBlock(ctx context.Context, id int64) (bool, error)
	ResetPassword(ctx context.Context, id int64) error
	ResetAllPasswords(ctx context.Context) (int64, error)
	ListStudents(ctx context.Context, filter models.StudentFilter) (helpers.PageResult[models.StudentListItem], error)
	StudentsByDepartment(ctx context.Context, departmentID int64, levelID *int64) ([]models.DepartmentStudent, error)
	ExportCSV(ctx context.Context) ([]byte, error)
	GetProfile(ctx context.Context, studentID int64) (*models.Student, error)
	UpdatePhoto(ctx context.Context, studentID int64, src io.Reader, filename string) (string, error)
}

// studentServiceImpl implements StudentService
type studentServiceImpl struct {
	store       StudentStore
	credentials CredentialSource
	photos      PhotoStorage
}

// NewStudentService creates a new StudentService
func NewStudentService(store StudentStore, credentials CredentialSource, photos PhotoStorage) StudentService {
	return &studentServiceImpl{
		store:       store,
		credentials: credentials,
		photos:      photos,
	}
}

func validateStudentID(id int64) error {
	if id <= 0 {
		return apperrors.ErrInvalidStudentID
	}
	return nil
}

// CreateStudent registers one student with the initial password. Matric
// number and email must both be unused.
func (s *studentServiceImpl) CreateStudent(ctx context.Context, req *dto.CreateStudentRequest) (*models.Student, error) {
	matNo := strings.TrimSpace(req.MatricNumber)
	email := strings.TrimSpace(req.Email)

	exists, err := s.store.MatricExists(ctx, matNo)
	if err != nil {
		return nil, fmt.Errorf("error checking matric number: %w", err)
	}
	if exists {
		return nil, apperrors.ErrMatricNumberExists
	}

	exists, err = s.store.EmailExists(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("error checking email: %w", err)
	}
	if exists {
		return nil, apperrors.ErrEmailAlreadyExists
	}

	hash, err := s.credentials.Hash()
	if err != nil {
		return nil, err
	}

	student := &models.Student{
		DepartmentID: req.DepartmentID,
		LevelID:      req.LevelID,
		FirstName:    strings.TrimSpace(req.FirstName),
		LastName:     strings.TrimSpace(req.LastName),
		Email:        email,
		MatricNumber: matNo,
		Username:     strings.TrimSpace(req.Username),
		PasswordHash: hash,
	}
	if err := s.store.Create(ctx, student); err != nil {
		return nil, err
	}

	logger.Info().Int64("studentID", student.ID).Str("matric", student.MatricNumber).Msg("Student created")
	return student, nil
}

// GetStudent retrieves a student by ID
func (s *studentServiceImpl) GetStudent(ctx context.Context, id int64) (*models.Student, error) {
	if err := validateStudentID(id); err != nil {
		return nil, err
	}
	return s.store.GetByID(ctx, id)
}

// UpdateStudent replaces a student's editable fields. The matric number is
// immutable.
func (s *studentServiceImpl) UpdateStudent(ctx context.Context, id int64, req *dto.UpdateStudentRequest) (*models.Student, error) {
	student, err := s.GetStudent(ctx, id)
	if err != nil {
		return nil, err
	}

	email := strings.TrimSpace(req.Email)
	if !strings.EqualFold(email, student.Email) {
		exists, err := s.store.EmailExists(ctx, email)
		if err != nil {
			return nil, fmt.Errorf("error checking email: %w", err)
		}
		if exists {
			return nil, apperrors.ErrEmailAlreadyExists
		}
	}

	student.DepartmentID = req.DepartmentID
	student.LevelID = req.LevelID
	student.FirstName = strings.TrimSpace(req.FirstName)
	student.LastName = strings.TrimSpace(req.LastName)
	student.Email = email
	student.Username = strings.TrimSpace(req.Username)

	if err := s.store.Update(ctx, student); err != nil {
		return nil, err
	}
	return student, nil
}

// DeleteStudent removes a student permanently
func (s *studentServiceImpl) DeleteStudent(ctx context.Context, id int64) error {
	if err := validateStudentID(id); err != nil {
		return err
	}
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}
	logger.Info().Int64("studentID", id).Msg("Student deleted")
	return nil
}

// ToggleBlock flips the blocked flag and returns the new state.
func (s *studentServiceImpl) ToggleBlock(ctx context.Context, id int64) (bool, error) {
	if err := validateStudentID(id); err != nil {
		return false, err
	}
	blocked, err := s.store.ToggleBlocked(ctx, id)
	if err != nil {
		return false, err
	}
	logger.Info().Int64("studentID", id).Bool("blocked", blocked).Msg("Student block toggled")
	return blocked, nil
}

// ResetPassword gives one student the initial password again.
func (s *studentServiceImpl) ResetPassword(ctx context.Context, id int64) error {
	if err := validateStudentID(id); err != nil {
		return err
	}
	hash, err := s.credentials.Hash()
	if err != nil {
		return err
	}
	return s.store.UpdatePassword(ctx, id, hash)
}

// ResetAllPasswords gives every student the initial password again.
func (s *studentServiceImpl) ResetAllPasswords(ctx context.Context) (int64, error) {
	hash, err := s.credentials.Hash()
	if err != nil {
		return 0, err
	}
	n, err := s.store.UpdateAllPasswords(ctx, hash)
	if err != nil {
		return 0, err
	}
	logger.Warn().Int64("updated", n).Msg("All student passwords reset")
	return n, nil
}

// ListStudents returns one page of unblocked students.
func (s *studentServiceImpl) ListStudents(ctx context.Context, filter models.StudentFilter) (helpers.PageResult[models.StudentListItem], error) {
	items, total, err := s.store.List(ctx, filter)
	if err != nil {
		return helpers.PageResult[models.StudentListItem]{}, err
	}
	return helpers.Paginate(items, total, filter.Page, filter.Limit), nil
}

// StudentsByDepartment returns the students of a department, optionally for one level.
func (s *studentServiceImpl) StudentsByDepartment(ctx context.Context, departmentID int64, levelID *int64) ([]models.DepartmentStudent, error) {
	students, err := s.store.ListByDepartment(ctx, departmentID, levelID)
	if err != nil {
		return nil, err
	}
	if len(students) == 0 {
		return nil, apperrors.ErrNoDepartmentMatches
	}
	return students, nil
}

// ExportCSV renders every student as a fully quoted CSV document.
func (s *studentServiceImpl) ExportCSV(ctx context.Context) ([]byte, error) {
	rows, err := s.store.ListForExport(ctx)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, apperrors.ErrNoStudentsToExport
	}

	var buf bytes.Buffer
	w := csvexport.NewWriter(&buf)
	if err := w.Write(models.StudentExportHeader); err != nil {
		return nil, err
	}
	for _, row := range rows {
		if err := w.Write(row.Record()); err != nil {
			return nil, fmt.Errorf("error writing export row: %w", err)
		}
	}
	if err := w.Flush(); err != nil {
		return nil, fmt.Errorf("error flushing export: %w", err)
	}
	return buf.Bytes(), nil
}

// GetProfile returns the record of the signed-in student.
func (s *studentServiceImpl) GetProfile(ctx context.Context, studentID int64) (*models.Student, error) {
	return s.GetStudent(ctx, studentID)
}

// UpdatePhoto stores a new picture for the student and removes the previous one.
func (s *studentServiceImpl) UpdatePhoto(ctx context.Context, studentID int64, src io.Reader, filename string) (string, error) {
	student, err := s.GetStudent(ctx, studentID)
	if err != nil {
		return "", err
	}

	url, err := s.photos.SaveImage(src, filename)
	if err != nil {
		return "", err
	}
	if err := s.store.UpdatePhoto(ctx, studentID, url); err != nil {
		if delErr := s.photos.DeleteByURL(url); delErr != nil {
			logger.Warn().Err(delErr).Str("url", url).Msg("Failed to remove orphaned photo")
		}
		return "", err
	}

	if student.Photo != nil && *student.Photo != "" {
		if err := s.photos.DeleteByURL(*student.Photo); err != nil {
			logger.Warn().Err(err).Int64("studentID", studentID).Msg("Failed to remove previous photo")
		}
	}
	return url, nil
}
