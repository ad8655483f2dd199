package models

// Department represents a department in a faculty
type Department struct {
	ID        int64    `json:"id"`
	FacultyID int64    `json:"faculty_id"`
	Name      string   `json:"name"`
	Faculty   *Faculty `json:"faculty,omitempty"`
}

// Level is a year of study (100 level, 200 level, ...).
type Level struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}
