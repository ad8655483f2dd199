package repositories

import (
	"github.com/Masterminds/squirrel"
	"github.com/yigit/studentadmin/internal/app/models"
	"github.com/yigit/studentadmin/internal/pkg/apperrors"
	"github.com/yigit/studentadmin/internal/pkg/helpers"
)

// Joins shared by every student projection. The count query must use the
// same FROM clause as its data query or totals drift from the rows returned.
const (
	studentFrom        = "students s"
	studentDeptJoin    = "departments d ON s.department_id = d.id"
	studentLevelJoin   = "levels l ON s.level_id = l.id"
	studentFacultyJoin = "faculties f ON d.faculty_id = f.id"
)

// ListQueries pairs a bounded data query with the count query built from
// the same predicate set.
type ListQueries struct {
	Data  squirrel.SelectBuilder
	Count squirrel.SelectBuilder
}

// StudentQueryBuilder composes the parameterized statements used to browse students.
type StudentQueryBuilder struct {
	sb squirrel.StatementBuilderType
}

// NewStudentQueryBuilder creates a builder emitting $n placeholders.
func NewStudentQueryBuilder() StudentQueryBuilder {
	return StudentQueryBuilder{sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)}
}

func (b StudentQueryBuilder) joined(sel squirrel.SelectBuilder) squirrel.SelectBuilder {
	return sel.From(studentFrom).
		Join(studentDeptJoin).
		Join(studentLevelJoin).
		Join(studentFacultyJoin)
}

// BuildList returns the listing queries for filter. Blocked students are
// never listed. Pagination applies to the data query only.
func (b StudentQueryBuilder) BuildList(filter models.StudentFilter) (ListQueries, error) {
	if filter.Page < 1 {
		return ListQueries{}, apperrors.NewInvalidQueryError("page must be a positive integer")
	}
	if filter.Limit != nil && *filter.Limit <= 0 {
		return ListQueries{}, apperrors.NewInvalidQueryError("limit must be a positive integer")
	}
	if filter.Limit != nil && !helpers.OffsetFits(filter.Page, *filter.Limit) {
		return ListQueries{}, apperrors.NewInvalidQueryError("page is out of range for this limit")
	}

	where := squirrel.And{squirrel.Eq{"s.blocked": false}}
	if filter.DepartmentID != nil {
		where = append(where, squirrel.Eq{"s.department_id": *filter.DepartmentID})
	}
	if filter.LevelID != nil {
		where = append(where, squirrel.Eq{"s.level_id": *filter.LevelID})
	}

	data := b.joined(b.sb.Select(
		"s.first_name", "s.last_name", "s.email", "s.mat_no", "s.username",
		"d.name AS department", "l.name AS level",
		"f.name AS school", "f.id AS school_id",
	)).Where(where).OrderBy("s.id")

	if filter.Limit != nil {
		data = data.Limit(uint64(*filter.Limit)).
			Offset(helpers.CalculateOffset(filter.Page, *filter.Limit))
	}

	count := b.joined(b.sb.Select("COUNT(*)")).Where(where)

	return ListQueries{Data: data, Count: count}, nil
}

// BuildDepartmentLookup returns every student of a department, optionally
// narrowed to one level. Unlike BuildList it does not exclude blocked students.
func (b StudentQueryBuilder) BuildDepartmentLookup(departmentID int64, levelID *int64) (squirrel.SelectBuilder, error) {
	if departmentID <= 0 {
		return squirrel.SelectBuilder{}, apperrors.NewInvalidQueryError("departmentId must be a positive integer")
	}

	where := squirrel.And{squirrel.Eq{"s.department_id": departmentID}}
	if levelID != nil {
		where = append(where, squirrel.Eq{"s.level_id": *levelID})
	}

	return b.joined(b.sb.Select(
		"s.id", "s.first_name || ' ' || s.last_name AS name",
		"s.first_name", "s.last_name", "s.mat_no", "s.username", "s.email",
		"d.name AS department", "d.id AS department_id",
		"f.name AS school", "f.id AS school_id",
		"l.name AS level", "l.id AS level_id",
	)).Where(where).OrderBy("s.id"), nil
}

// BuildExport returns every student with the labels the CSV download shows.
func (b StudentQueryBuilder) BuildExport() squirrel.SelectBuilder {
	return b.joined(b.sb.Select(
		"s.mat_no", "s.first_name || ' ' || s.last_name AS fullname", "s.email",
		"d.name AS department", "l.name AS level", "f.name AS faculty",
	)).OrderBy("s.mat_no DESC")
}
