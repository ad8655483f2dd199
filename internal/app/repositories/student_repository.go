package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/yigit/studentadmin/internal/app/models"
	"github.com/yigit/studentadmin/internal/pkg/apperrors"
	"github.com/yigit/studentadmin/internal/pkg/dberrors"
	"github.com/yigit/studentadmin/internal/pkg/logger"
)

// Unique constraints on the students table.
const (
	StudentMatricConstraint = "students_mat_no_key"
	StudentEmailConstraint  = "students_email_key"

	// ErrMsgStudentExists reports a unique violation on any other constraint.
	ErrMsgStudentExists = "student already exists"
)

var studentColumns = []string{
	"id", "department_id", "level_id", "first_name", "last_name", "email",
	"mat_no", "username", "password", "blocked", "photo", "created_at", "updated_at",
}

// StudentRepository handles student database operations
type StudentRepository struct {
	db DBTX
	sb squirrel.StatementBuilderType
	qb StudentQueryBuilder
}

// NewStudentRepository creates a new StudentRepository
func NewStudentRepository(db DBTX) *StudentRepository {
	return &StudentRepository{
		db: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
		qb: NewStudentQueryBuilder(),
	}
}

// mapWriteError translates constraint violations of an insert or update.
func mapWriteError(err error) error {
	switch {
	case dberrors.IsDuplicateConstraintError(err, StudentMatricConstraint):
		return apperrors.ErrMatricNumberExists
	case dberrors.IsDuplicateConstraintError(err, StudentEmailConstraint):
		return apperrors.ErrEmailAlreadyExists
	case dberrors.IsForeignKeyViolation(err):
		return apperrors.ErrUnknownDeptOrLevel
	case dberrors.IsUniqueViolation(err):
		return apperrors.NewConflictError(ErrMsgStudentExists)
	default:
		return nil
	}
}

func (r *StudentRepository) exists(ctx context.Context, column, value string) (bool, error) {
	sql, args, err := r.sb.Select("1").
		From("students").
		Where(squirrel.Eq{column: value}).
		Prefix("SELECT EXISTS (").Suffix(")").
		Limit(1).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("failed to build student exists query: %w", err)
	}

	var exists bool
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&exists); err != nil {
		logger.Error().Err(err).Str("column", column).Msg("Error checking student existence")
		return false, fmt.Errorf("error checking student %s: %w", column, err)
	}
	return exists, nil
}

// MatricExists reports whether a student already holds matNo.
func (r *StudentRepository) MatricExists(ctx context.Context, matNo string) (bool, error) {
	return r.exists(ctx, "mat_no", matNo)
}

// EmailExists reports whether a student already uses email.
func (r *StudentRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	return r.exists(ctx, "email", email)
}

// Create inserts a student and sets its ID. The insert is a single statement,
// so a failed row leaves nothing behind.
func (r *StudentRepository) Create(ctx context.Context, student *models.Student) error {
	now := time.Now()
	sql, args, err := r.sb.Insert("students").
		Columns("department_id", "level_id", "first_name", "last_name", "email",
			"mat_no", "username", "password", "blocked", "created_at", "updated_at").
		Values(student.DepartmentID, student.LevelID, student.FirstName, student.LastName, student.Email,
			student.MatricNumber, student.Username, student.PasswordHash, false, now, now).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building create student SQL")
		return fmt.Errorf("failed to build create student query: %w", err)
	}

	if err := r.db.QueryRow(ctx, sql, args...).Scan(&student.ID); err != nil {
		if mapped := mapWriteError(err); mapped != nil {
			logger.Warn().Str("matric", student.MatricNumber).Err(err).Msg("Student insert rejected by constraint")
			return mapped
		}
		logger.Error().Err(err).Str("matric", student.MatricNumber).Msg("Error executing create student query")
		return fmt.Errorf("error creating student: %w", err)
	}

	student.Blocked = false
	student.CreatedAt = now
	student.UpdatedAt = now
	return nil
}

// GetByID retrieves a student by ID
func (r *StudentRepository) GetByID(ctx context.Context, id int64) (*models.Student, error) {
	sql, args, err := r.sb.Select(studentColumns...).
		From("students").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get student query: %w", err)
	}

	var s models.Student
	err = r.db.QueryRow(ctx, sql, args...).Scan(
		&s.ID, &s.DepartmentID, &s.LevelID, &s.FirstName, &s.LastName, &s.Email,
		&s.MatricNumber, &s.Username, &s.PasswordHash, &s.Blocked, &s.Photo, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrStudentNotFound
		}
		logger.Error().Err(err).Int64("studentID", id).Msg("Error retrieving student")
		return nil, fmt.Errorf("error retrieving student: %w", err)
	}
	return &s, nil
}

// Update replaces the editable fields of a student.
func (r *StudentRepository) Update(ctx context.Context, student *models.Student) error {
	now := time.Now()
	sql, args, err := r.sb.Update("students").
		Set("department_id", student.DepartmentID).
		Set("level_id", student.LevelID).
		Set("first_name", student.FirstName).
		Set("last_name", student.LastName).
		Set("email", student.Email).
		Set("username", student.Username).
		Set("updated_at", now).
		Where(squirrel.Eq{"id": student.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update student query: %w", err)
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		if mapped := mapWriteError(err); mapped != nil {
			return mapped
		}
		logger.Error().Err(err).Int64("studentID", student.ID).Msg("Error executing update student query")
		return fmt.Errorf("error updating student: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrStudentNotFound
	}
	student.UpdatedAt = now
	return nil
}

// Delete removes a student permanently.
func (r *StudentRepository) Delete(ctx context.Context, id int64) error {
	sql, args, err := r.sb.Delete("students").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("failed to build delete student query: %w", err)
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("studentID", id).Msg("Error executing delete student query")
		return fmt.Errorf("error deleting student: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrStudentNotFound
	}
	return nil
}

// ToggleBlocked flips the blocked flag and returns its new value.
func (r *StudentRepository) ToggleBlocked(ctx context.Context, id int64) (bool, error) {
	sql, args, err := r.sb.Update("students").
		Set("blocked", squirrel.Expr("NOT blocked")).
		Set("updated_at", time.Now()).
		Where(squirrel.Eq{"id": id}).
		Suffix("RETURNING blocked").
		ToSql()
	if err != nil {
		return false, fmt.Errorf("failed to build toggle block query: %w", err)
	}

	var blocked bool
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&blocked); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, apperrors.ErrStudentNotFound
		}
		logger.Error().Err(err).Int64("studentID", id).Msg("Error toggling student block")
		return false, fmt.Errorf("error toggling student block: %w", err)
	}
	return blocked, nil
}

// UpdatePassword stores a new credential hash for one student.
func (r *StudentRepository) UpdatePassword(ctx context.Context, id int64, hash string) error {
	sql, args, err := r.sb.Update("students").
		Set("password", hash).
		Set("updated_at", time.Now()).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update password query: %w", err)
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("studentID", id).Msg("Error updating student password")
		return fmt.Errorf("error updating student password: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrStudentNotFound
	}
	return nil
}

// UpdateAllPasswords stores hash for every student and returns the count.
func (r *StudentRepository) UpdateAllPasswords(ctx context.Context, hash string) (int64, error) {
	sql, args, err := r.sb.Update("students").
		Set("password", hash).
		Set("updated_at", time.Now()).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build reset passwords query: %w", err)
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error resetting student passwords")
		return 0, fmt.Errorf("error resetting student passwords: %w", err)
	}
	return tag.RowsAffected(), nil
}

// UpdatePhoto stores the public URL of a student's picture.
func (r *StudentRepository) UpdatePhoto(ctx context.Context, id int64, url string) error {
	sql, args, err := r.sb.Update("students").
		Set("photo", url).
		Set("updated_at", time.Now()).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update photo query: %w", err)
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("studentID", id).Msg("Error updating student photo")
		return fmt.Errorf("error updating student photo: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrStudentNotFound
	}
	return nil
}

// List runs the listing queries for filter and returns one page plus the total match count.
func (r *StudentRepository) List(ctx context.Context, filter models.StudentFilter) ([]models.StudentListItem, int64, error) {
	q, err := r.qb.BuildList(filter)
	if err != nil {
		return nil, 0, err
	}

	countSQL, countArgs, err := q.Count.ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building count students SQL")
		return nil, 0, fmt.Errorf("failed to build count students query: %w", err)
	}

	var total int64
	if err := r.db.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		logger.Error().Err(err).Msg("Error executing count students query")
		return nil, 0, fmt.Errorf("failed to count students: %w", err)
	}
	if total == 0 {
		return []models.StudentListItem{}, 0, nil
	}

	dataSQL, dataArgs, err := q.Data.ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building list students SQL")
		return nil, 0, fmt.Errorf("failed to build list students query: %w", err)
	}

	rows, err := r.db.Query(ctx, dataSQL, dataArgs...)
	if err != nil {
		logger.Error().Err(err).Msg("Error executing list students query")
		return nil, 0, fmt.Errorf("failed to query students: %w", err)
	}
	defer rows.Close()

	items := make([]models.StudentListItem, 0)
	for rows.Next() {
		var it models.StudentListItem
		if err := rows.Scan(
			&it.FirstName, &it.LastName, &it.Email, &it.Matric, &it.Username,
			&it.Department, &it.Level, &it.School, &it.SchoolID,
		); err != nil {
			logger.Error().Err(err).Msg("Error scanning student row")
			return nil, 0, fmt.Errorf("failed to scan student row: %w", err)
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating student rows: %w", err)
	}

	return items, total, nil
}

// ListByDepartment returns every student of a department, blocked ones included.
func (r *StudentRepository) ListByDepartment(ctx context.Context, departmentID int64, levelID *int64) ([]models.DepartmentStudent, error) {
	sel, err := r.qb.BuildDepartmentLookup(departmentID, levelID)
	if err != nil {
		return nil, err
	}
	sql, args, err := sel.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build department students query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("departmentID", departmentID).Msg("Error executing department students query")
		return nil, fmt.Errorf("failed to query department students: %w", err)
	}
	defer rows.Close()

	students := make([]models.DepartmentStudent, 0)
	for rows.Next() {
		var ds models.DepartmentStudent
		if err := rows.Scan(
			&ds.ID, &ds.Name, &ds.FirstName, &ds.LastName, &ds.Matric, &ds.Username, &ds.Email,
			&ds.Department, &ds.DepartmentID, &ds.School, &ds.SchoolID, &ds.Level, &ds.LevelID,
		); err != nil {
			return nil, fmt.Errorf("failed to scan department student row: %w", err)
		}
		students = append(students, ds)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating department student rows: %w", err)
	}
	return students, nil
}

// ListForExport returns every student labelled for the CSV download, newest matric first.
func (r *StudentRepository) ListForExport(ctx context.Context) ([]models.StudentExportRow, error) {
	sql, args, err := r.qb.BuildExport().ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build export query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error executing export students query")
		return nil, fmt.Errorf("failed to query students for export: %w", err)
	}
	defer rows.Close()

	out := make([]models.StudentExportRow, 0)
	for rows.Next() {
		var row models.StudentExportRow
		if err := rows.Scan(&row.MatricNumber, &row.Fullname, &row.Email, &row.Department, &row.Level, &row.Faculty); err != nil {
			return nil, fmt.Errorf("failed to scan export row: %w", err)
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating export rows: %w", err)
	}
	return out, nil
}
