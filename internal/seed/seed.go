// Package seed inserts the reference data students point at.
package seed

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"github.com/yigit/studentadmin/internal/app/models"
	"github.com/yigit/studentadmin/internal/app/repositories"
	"github.com/yigit/studentadmin/internal/db"
)

// Levels are the study levels every institution offers.
var Levels = []string{"100", "200", "300", "400", "500"}

// Faculties maps each default faculty to its departments.
var Faculties = []struct {
	Name        string
	Departments []string
}{
	{Name: "Engineering", Departments: []string{"Computer Engineering", "Electrical Engineering"}},
	{Name: "Science", Departments: []string{"Mathematics", "Physics"}},
}

// CreateDefaultData ensures the default faculties, departments and levels
// exist. Rows already present keep their IDs.
func CreateDefaultData(ctx context.Context, conn db.TxBeginner, lgr zerolog.Logger) error {
	lgr.Info().Msg("Checking/Creating default data (faculties, departments, levels)...")

	err := db.RunInTx(ctx, conn, func(ctx context.Context, tx pgx.Tx) error {
		repos := repositories.NewRepositories(tx)
		var errs error

		for _, name := range Levels {
			level := &models.Level{Name: name}
			if err := repos.DepartmentRepository.EnsureLevel(ctx, level); err != nil {
				errs = errors.Join(errs, err)
			}
		}

		for _, f := range Faculties {
			faculty := &models.Faculty{Name: f.Name}
			if err := repos.FacultyRepository.Ensure(ctx, faculty); err != nil {
				errs = errors.Join(errs, err)
				continue
			}
			for _, name := range f.Departments {
				dept := &models.Department{FacultyID: faculty.ID, Name: name}
				if err := repos.DepartmentRepository.Ensure(ctx, dept); err != nil {
					errs = errors.Join(errs, err)
				}
			}
		}
		if errs != nil {
			return errs
		}

		departments, err := repos.DepartmentRepository.GetAll(ctx)
		if err != nil {
			return err
		}
		lgr.Info().Int("departments", len(departments)).Int("levels", len(Levels)).Msg("Default data present")
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to create default data: %w", err)
	}
	return nil
}
