package dto

// PaginationInfo describes one page of a listing. TotalPages is 1 for a
// non-empty unpaginated listing and 0 for an empty one.
type PaginationInfo struct {
	Page       int   `json:"page" example:"1"`
	Limit      *int  `json:"limit" example:"20"`
	Total      int64 `json:"total" example:"57"`
	TotalPages int   `json:"totalPages" example:"3"`
}
