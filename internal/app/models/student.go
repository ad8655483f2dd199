package models

import "time"

// Student defines the student model based on the 'students' table
type Student struct {
	ID           int64     `json:"id" db:"id"`
	DepartmentID int64     `json:"departmentId" db:"department_id"`
	LevelID      int64     `json:"levelId" db:"level_id"`
	FirstName    string    `json:"firstName" db:"first_name"`
	LastName     string    `json:"lastName" db:"last_name"`
	Email        string    `json:"email" db:"email"`
	MatricNumber string    `json:"matric" db:"mat_no"` // natural key, unique
	Username     string    `json:"username" db:"username"`
	PasswordHash string    `json:"-" db:"password"`
	Blocked      bool      `json:"blocked" db:"blocked"`
	Photo        *string   `json:"photo,omitempty" db:"photo"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time `json:"updatedAt" db:"updated_at"`
}

// FullName joins first and last name the way exports display it.
func (s *Student) FullName() string {
	return s.FirstName + " " + s.LastName
}

// StudentFilter selects students for the general listing.
// Page is 1-based; a nil Limit disables pagination.
type StudentFilter struct {
	DepartmentID *int64
	LevelID      *int64
	Page         int
	Limit        *int
}

// StudentListItem is the projection returned by the general listing.
type StudentListItem struct {
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	Email      string `json:"email"`
	Matric     string `json:"matric"`
	Username   string `json:"username"`
	Department string `json:"department"`
	Level      string `json:"level"`
	School     string `json:"school"`
	SchoolID   int64  `json:"schoolId"`
}

// DepartmentStudent is the projection returned by the department lookup.
type DepartmentStudent struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	Matric       string `json:"matric"`
	Username     string `json:"username"`
	Email        string `json:"email"`
	Department   string `json:"department"`
	DepartmentID int64  `json:"departmentId"`
	School       string `json:"school"`
	SchoolID     int64  `json:"schoolId"`
	Level        string `json:"level"`
	LevelID      int64  `json:"levelId"`
}

// StudentExportRow is one line of the CSV download.
type StudentExportRow struct {
	MatricNumber string
	Fullname     string
	Email        string
	Department   string
	Level        string
	Faculty      string
}

// Record returns the row in export header order.
func (r StudentExportRow) Record() []string {
	return []string{r.MatricNumber, r.Fullname, r.Email, r.Department, r.Level, r.Faculty}
}

// StudentExportHeader is the fixed header of the CSV download.
var StudentExportHeader = []string{"MatricNumber", "Fullname", "Email", "Department", "Level", "Faculty"}
