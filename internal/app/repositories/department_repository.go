package repositories

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/yigit/studentadmin/internal/app/models"
	"github.com/yigit/studentadmin/internal/pkg/logger"
)

// DepartmentRepository handles database operations for departments and levels
type DepartmentRepository struct {
	db DBTX
	sb squirrel.StatementBuilderType
}

// NewDepartmentRepository creates a new department repository
func NewDepartmentRepository(db DBTX) *DepartmentRepository {
	return &DepartmentRepository{
		db: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Ensure inserts department under its faculty when the pair is new and sets
// department.ID either way.
func (r *DepartmentRepository) Ensure(ctx context.Context, department *models.Department) error {
	sql, args, err := r.sb.Insert("departments").
		Columns("faculty_id", "name").
		Values(department.FacultyID, department.Name).
		Suffix("ON CONFLICT (faculty_id, name) DO UPDATE SET name = EXCLUDED.name RETURNING id").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build ensure department query: %w", err)
	}

	if err := r.db.QueryRow(ctx, sql, args...).Scan(&department.ID); err != nil {
		logger.Error().Err(err).Str("name", department.Name).Msg("Error ensuring department")
		return fmt.Errorf("error ensuring department: %w", err)
	}
	return nil
}

// EnsureLevel inserts a level when its name is new and sets level.ID either way.
func (r *DepartmentRepository) EnsureLevel(ctx context.Context, level *models.Level) error {
	sql, args, err := r.sb.Insert("levels").
		Columns("name").
		Values(level.Name).
		Suffix("ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name RETURNING id").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build ensure level query: %w", err)
	}

	if err := r.db.QueryRow(ctx, sql, args...).Scan(&level.ID); err != nil {
		logger.Error().Err(err).Str("name", level.Name).Msg("Error ensuring level")
		return fmt.Errorf("error ensuring level: %w", err)
	}
	return nil
}

// GetAll retrieves all departments with their faculty
func (r *DepartmentRepository) GetAll(ctx context.Context) ([]*models.Department, error) {
	sql, args, err := r.sb.Select("d.id", "d.faculty_id", "d.name", "f.name").
		From("departments d").
		Join("faculties f ON d.faculty_id = f.id").
		OrderBy("d.id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list departments query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error listing departments: %w", err)
	}
	defer rows.Close()

	var departments []*models.Department
	for rows.Next() {
		d := &models.Department{Faculty: &models.Faculty{}}
		if err := rows.Scan(&d.ID, &d.FacultyID, &d.Name, &d.Faculty.Name); err != nil {
			return nil, fmt.Errorf("error scanning department: %w", err)
		}
		d.Faculty.ID = d.FacultyID
		departments = append(departments, d)
	}
	return departments, rows.Err()
}
