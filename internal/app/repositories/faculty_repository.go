package repositories

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/yigit/studentadmin/internal/app/models"
	"github.com/yigit/studentadmin/internal/pkg/logger"
)

// FacultyRepository handles faculty database operations
type FacultyRepository struct {
	db DBTX
	sb squirrel.StatementBuilderType
}

// NewFacultyRepository creates a new FacultyRepository
func NewFacultyRepository(db DBTX) *FacultyRepository {
	return &FacultyRepository{
		db: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Ensure inserts faculty when its name is new and sets faculty.ID either way.
func (r *FacultyRepository) Ensure(ctx context.Context, faculty *models.Faculty) error {
	sql, args, err := r.sb.Insert("faculties").
		Columns("name").
		Values(faculty.Name).
		Suffix("ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name RETURNING id").
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building ensure faculty SQL")
		return fmt.Errorf("failed to build ensure faculty query: %w", err)
	}

	if err := r.db.QueryRow(ctx, sql, args...).Scan(&faculty.ID); err != nil {
		logger.Error().Err(err).Str("name", faculty.Name).Msg("Error ensuring faculty")
		return fmt.Errorf("error ensuring faculty: %w", err)
	}
	return nil
}
