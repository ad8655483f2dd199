// Package services holds the business rules behind the student endpoints:
// the CSV import pipeline and the administrative operations on records.
package services

import (
	"context"
	"io"

	"github.com/yigit/studentadmin/internal/app/models"
)

// DuplicateChecker answers whether a matric number is already taken.
type DuplicateChecker interface {
	MatricExists(ctx context.Context, matNo string) (bool, error)
}

// StudentWriter persists one new student atomically and sets its ID.
type StudentWriter interface {
	Create(ctx context.Context, student *models.Student) error
}

// StudentStore is the storage the student service works against.
// *repositories.StudentRepository implements it.
type StudentStore interface {
	DuplicateChecker
	StudentWriter
	EmailExists(ctx context.Context, email string) (bool, error)
	GetByID(ctx context.Context, id int64) (*models.Student, error)
	Update(ctx context.Context, student *models.Student) error
	Delete(ctx context.Context, id int64) error
	ToggleBlocked(ctx context.Context, id int64) (bool, error)
	UpdatePassword(ctx context.Context, id int64, hash string) error
	UpdateAllPasswords(ctx context.Context, hash string) (int64, error)
	UpdatePhoto(ctx context.Context, id int64, url string) error
	List(ctx context.Context, filter models.StudentFilter) ([]models.StudentListItem, int64, error)
	ListByDepartment(ctx context.Context, departmentID int64, levelID *int64) ([]models.DepartmentStudent, error)
	ListForExport(ctx context.Context) ([]models.StudentExportRow, error)
}

// CredentialSource hands out hashes of the initial password.
type CredentialSource interface {
	Hash() (string, error)
}

// PhotoStorage keeps uploaded pictures and serves them by URL.
type PhotoStorage interface {
	SaveImage(src io.Reader, originalName string) (string, error)
	DeleteByURL(url string) error
}
