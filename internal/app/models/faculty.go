package models

// Faculty groups departments; the export labels it as the student's Faculty.
type Faculty struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}
