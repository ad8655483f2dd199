package repositories

import (
	"errors"
	"math"
	"reflect"
	"strings"
	"testing"

	"github.com/Masterminds/squirrel"
	"github.com/yigit/studentadmin/internal/app/models"
	"github.com/yigit/studentadmin/internal/pkg/apperrors"
)

func int64Ptr(v int64) *int64 { return &v }
func intPtr(v int) *int       { return &v }

func toSQL(t *testing.T, sel squirrel.SelectBuilder) (string, []interface{}) {
	t.Helper()
	sql, args, err := sel.ToSql()
	if err != nil {
		t.Fatalf("ToSql: %v", err)
	}
	return sql, args
}

// whereClause returns the text between WHERE and the next clause keyword.
func whereClause(sql string) string {
	i := strings.Index(sql, " WHERE ")
	if i < 0 {
		return ""
	}
	rest := sql[i+len(" WHERE "):]
	for _, kw := range []string{" ORDER BY ", " LIMIT ", " OFFSET "} {
		if j := strings.Index(rest, kw); j >= 0 {
			rest = rest[:j]
		}
	}
	return rest
}

func TestBuildList_SharedPredicates(t *testing.T) {
	b := NewStudentQueryBuilder()

	tests := []struct {
		name     string
		filter   models.StudentFilter
		wantArgs []interface{}
		contains []string
		absent   []string
	}{
		{
			name:     "no filters",
			filter:   models.StudentFilter{Page: 1},
			wantArgs: []interface{}{false},
			contains: []string{"s.blocked = $1"},
			absent:   []string{"s.department_id =", "s.level_id ="},
		},
		{
			name:     "department only",
			filter:   models.StudentFilter{Page: 1, DepartmentID: int64Ptr(3)},
			wantArgs: []interface{}{false, int64(3)},
			contains: []string{"s.blocked = $1", "s.department_id = $2"},
			absent:   []string{"s.level_id ="},
		},
		{
			name:     "level only",
			filter:   models.StudentFilter{Page: 1, LevelID: int64Ptr(2)},
			wantArgs: []interface{}{false, int64(2)},
			contains: []string{"s.level_id = $2"},
			absent:   []string{"s.department_id ="},
		},
		{
			name:     "department and level",
			filter:   models.StudentFilter{Page: 1, DepartmentID: int64Ptr(3), LevelID: int64Ptr(2)},
			wantArgs: []interface{}{false, int64(3), int64(2)},
			contains: []string{"s.blocked = $1 AND s.department_id = $2 AND s.level_id = $3"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := b.BuildList(tt.filter)
			if err != nil {
				t.Fatalf("BuildList: %v", err)
			}
			dataSQL, dataArgs := toSQL(t, q.Data)
			countSQL, countArgs := toSQL(t, q.Count)

			if whereClause(dataSQL) != whereClause(countSQL) {
				t.Errorf("predicates differ:\n data:  %s\n count: %s", whereClause(dataSQL), whereClause(countSQL))
			}
			if !reflect.DeepEqual(dataArgs, tt.wantArgs) || !reflect.DeepEqual(countArgs, tt.wantArgs) {
				t.Errorf("args: data %v, count %v, want %v", dataArgs, countArgs, tt.wantArgs)
			}
			for _, frag := range tt.contains {
				if !strings.Contains(dataSQL, frag) {
					t.Errorf("data query missing %q: %s", frag, dataSQL)
				}
			}
			for _, frag := range tt.absent {
				if strings.Contains(whereClause(dataSQL), frag) {
					t.Errorf("predicates should not contain %q: %s", frag, dataSQL)
				}
			}
			if !strings.HasPrefix(countSQL, "SELECT COUNT(*) FROM students s JOIN departments d") {
				t.Errorf("unexpected count query: %s", countSQL)
			}
			if strings.Contains(countSQL, "LIMIT") || strings.Contains(countSQL, "ORDER BY") {
				t.Errorf("count query must not be bounded: %s", countSQL)
			}
		})
	}
}

func TestBuildList_Pagination(t *testing.T) {
	b := NewStudentQueryBuilder()

	q, err := b.BuildList(models.StudentFilter{Page: 3, Limit: intPtr(2)})
	if err != nil {
		t.Fatalf("BuildList: %v", err)
	}
	dataSQL, _ := toSQL(t, q.Data)
	if !strings.HasSuffix(dataSQL, "ORDER BY s.id LIMIT 2 OFFSET 4") {
		t.Errorf("unexpected bounding: %s", dataSQL)
	}

	q, err = b.BuildList(models.StudentFilter{Page: 5})
	if err != nil {
		t.Fatalf("BuildList: %v", err)
	}
	dataSQL, _ = toSQL(t, q.Data)
	if strings.Contains(dataSQL, "LIMIT") || strings.Contains(dataSQL, "OFFSET") {
		t.Errorf("page without limit must not bound the query: %s", dataSQL)
	}
}

func TestBuildList_InvalidFilter(t *testing.T) {
	b := NewStudentQueryBuilder()

	for _, f := range []models.StudentFilter{
		{Page: 0},
		{Page: -2},
		{Page: 1, Limit: intPtr(0)},
		{Page: 1, Limit: intPtr(-5)},
		{Page: 1<<32 + 1, Limit: intPtr(1 << 32)},
		{Page: 3, Limit: intPtr(math.MaxInt64)},
	} {
		if _, err := b.BuildList(f); !errors.Is(err, apperrors.ErrInvalidQuery) {
			t.Errorf("filter %+v: err = %v, want ErrInvalidQuery", f, err)
		}
	}
}

func TestBuildDepartmentLookup(t *testing.T) {
	b := NewStudentQueryBuilder()

	sel, err := b.BuildDepartmentLookup(4, nil)
	if err != nil {
		t.Fatalf("BuildDepartmentLookup: %v", err)
	}
	sql, args := toSQL(t, sel)
	if strings.Contains(sql, "blocked") {
		t.Errorf("department lookup must not filter blocked students: %s", sql)
	}
	if !reflect.DeepEqual(args, []interface{}{int64(4)}) {
		t.Errorf("args = %v", args)
	}

	sel, err = b.BuildDepartmentLookup(4, int64Ptr(1))
	if err != nil {
		t.Fatalf("BuildDepartmentLookup: %v", err)
	}
	sql, args = toSQL(t, sel)
	if !strings.Contains(sql, "s.department_id = $1 AND s.level_id = $2") {
		t.Errorf("unexpected predicates: %s", sql)
	}
	if !reflect.DeepEqual(args, []interface{}{int64(4), int64(1)}) {
		t.Errorf("args = %v", args)
	}
	if strings.Contains(sql, "LIMIT") {
		t.Errorf("department lookup is not paginated: %s", sql)
	}

	if _, err := b.BuildDepartmentLookup(0, nil); !errors.Is(err, apperrors.ErrInvalidQuery) {
		t.Errorf("err = %v, want ErrInvalidQuery", err)
	}
}

func TestBuildExport(t *testing.T) {
	sql, args := toSQL(t, NewStudentQueryBuilder().BuildExport())
	if !strings.HasSuffix(sql, "ORDER BY s.mat_no DESC") {
		t.Errorf("unexpected ordering: %s", sql)
	}
	if len(args) != 0 {
		t.Errorf("args = %v, want none", args)
	}
}
