package helpers

import (
	"math"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/yigit/studentadmin/internal/pkg/apperrors"
)

// DefaultPage is the 1-based page used when the request names none.
const DefaultPage = 1

// PageResult is one bounded slice of an ordered collection plus the metadata
// needed to reconstruct its full extent. A nil Limit means pagination was off
// and Items holds every matching row.
type PageResult[T any] struct {
	Items      []T   `json:"items"`
	Page       int   `json:"page"`
	Limit      *int  `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"totalPages"`
}

// OffsetFits reports whether the offset of page fits a Postgres BIGINT.
func OffsetFits(page, limit int) bool {
	if page < 1 || limit <= 0 {
		return false
	}
	return int64(page-1) <= math.MaxInt64/int64(limit)
}

// CalculateOffset converts a 1-based page into a row offset. Callers check
// OffsetFits first; an offset that does not fit yields 0.
func CalculateOffset(page, limit int) uint64 {
	if !OffsetFits(page, limit) {
		return 0
	}
	return uint64(page-1) * uint64(limit)
}

// TotalPages is ceil(total/limit) for a positive limit. Without a limit every
// row sits on a single page, so the result is 1, or 0 for an empty set.
func TotalPages(total int64, limit *int) int {
	if total <= 0 {
		return 0
	}
	if limit == nil || *limit <= 0 {
		return 1
	}
	l := int64(*limit)
	return int((total + l - 1) / l)
}

// Paginate wraps an executed page of rows and the total match count.
func Paginate[T any](items []T, total int64, page int, limit *int) PageResult[T] {
	if items == nil {
		items = []T{}
	}
	return PageResult[T]{
		Items:      items,
		Page:       page,
		Limit:      limit,
		Total:      total,
		TotalPages: TotalPages(total, limit),
	}
}

// ParsePage reads the 1-based page parameter, defaulting to DefaultPage.
// Anything that is not a positive integer is rejected rather than clamped.
func ParsePage(c *gin.Context, name string) (int, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return DefaultPage, nil
	}
	page, err := strconv.Atoi(raw)
	if err != nil || page < 1 {
		return 0, apperrors.NewInvalidQueryError(name + " must be a positive integer")
	}
	return page, nil
}

// ParseOptionalPositiveInt reads an optional positive integer parameter.
func ParseOptionalPositiveInt(c *gin.Context, name string) (*int, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v <= 0 {
		return nil, apperrors.NewInvalidQueryError(name + " must be a positive integer")
	}
	return &v, nil
}

// ParseOptionalID reads an optional positive int64 identifier parameter.
func ParseOptionalID(c *gin.Context, name string) (*int64, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || v <= 0 {
		return nil, apperrors.NewInvalidQueryError(name + " must be a positive integer")
	}
	return &v, nil
}
