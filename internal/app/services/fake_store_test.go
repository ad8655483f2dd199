package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/yigit/studentadmin/internal/app/models"
	"github.com/yigit/studentadmin/internal/pkg/apperrors"
)

// memoryStore is an in-memory StudentStore.
type memoryStore struct {
	nextID   int64
	students map[int64]*models.Student

	existsCalls int
	lookupErr   error
	createErr   map[string]error // keyed by matric number
	exportRows  []models.StudentExportRow
	deptRows    []models.DepartmentStudent
}

func newMemoryStore() *memoryStore {
	return &memoryStore{students: make(map[int64]*models.Student), createErr: make(map[string]error)}
}

func (m *memoryStore) MatricExists(_ context.Context, matNo string) (bool, error) {
	m.existsCalls++
	if m.lookupErr != nil {
		return false, m.lookupErr
	}
	for _, s := range m.students {
		if s.MatricNumber == matNo {
			return true, nil
		}
	}
	return false, nil
}

func (m *memoryStore) EmailExists(_ context.Context, email string) (bool, error) {
	for _, s := range m.students {
		if strings.EqualFold(s.Email, email) {
			return true, nil
		}
	}
	return false, nil
}

func (m *memoryStore) Create(_ context.Context, student *models.Student) error {
	if err, ok := m.createErr[student.MatricNumber]; ok {
		return err
	}
	for _, s := range m.students {
		if s.MatricNumber == student.MatricNumber {
			return apperrors.ErrMatricNumberExists
		}
	}
	m.nextID++
	student.ID = m.nextID
	cp := *student
	m.students[cp.ID] = &cp
	return nil
}

func (m *memoryStore) GetByID(_ context.Context, id int64) (*models.Student, error) {
	s, ok := m.students[id]
	if !ok {
		return nil, apperrors.ErrStudentNotFound
	}
	cp := *s
	return &cp, nil
}

func (m *memoryStore) Update(_ context.Context, student *models.Student) error {
	if _, ok := m.students[student.ID]; !ok {
		return apperrors.ErrStudentNotFound
	}
	cp := *student
	m.students[student.ID] = &cp
	return nil
}

func (m *memoryStore) Delete(_ context.Context, id int64) error {
	if _, ok := m.students[id]; !ok {
		return apperrors.ErrStudentNotFound
	}
	delete(m.students, id)
	return nil
}

func (m *memoryStore) ToggleBlocked(_ context.Context, id int64) (bool, error) {
	s, ok := m.students[id]
	if !ok {
		return false, apperrors.ErrStudentNotFound
	}
	s.Blocked = !s.Blocked
	return s.Blocked, nil
}

func (m *memoryStore) UpdatePassword(_ context.Context, id int64, hash string) error {
	s, ok := m.students[id]
	if !ok {
		return apperrors.ErrStudentNotFound
	}
	s.PasswordHash = hash
	return nil
}

func (m *memoryStore) UpdateAllPasswords(_ context.Context, hash string) (int64, error) {
	for _, s := range m.students {
		s.PasswordHash = hash
	}
	return int64(len(m.students)), nil
}

func (m *memoryStore) UpdatePhoto(_ context.Context, id int64, url string) error {
	s, ok := m.students[id]
	if !ok {
		return apperrors.ErrStudentNotFound
	}
	s.Photo = &url
	return nil
}

func (m *memoryStore) List(_ context.Context, filter models.StudentFilter) ([]models.StudentListItem, int64, error) {
	var ids []int64
	for id, s := range m.students {
		if s.Blocked {
			continue
		}
		if filter.DepartmentID != nil && s.DepartmentID != *filter.DepartmentID {
			continue
		}
		if filter.LevelID != nil && s.LevelID != *filter.LevelID {
			continue
		}
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	total := int64(len(ids))
	if filter.Limit != nil {
		start := (filter.Page - 1) * *filter.Limit
		if start > len(ids) {
			start = len(ids)
		}
		end := start + *filter.Limit
		if end > len(ids) {
			end = len(ids)
		}
		ids = ids[start:end]
	}

	items := make([]models.StudentListItem, 0, len(ids))
	for _, id := range ids {
		s := m.students[id]
		items = append(items, models.StudentListItem{FirstName: s.FirstName, LastName: s.LastName, Matric: s.MatricNumber})
	}
	return items, total, nil
}

// ListByDepartment returns deptRows when set. Otherwise it filters the stored
// students by department and level, keeping blocked ones.
func (m *memoryStore) ListByDepartment(_ context.Context, departmentID int64, levelID *int64) ([]models.DepartmentStudent, error) {
	if m.deptRows != nil {
		return m.deptRows, nil
	}
	var ids []int64
	for id, s := range m.students {
		if s.DepartmentID != departmentID || (levelID != nil && s.LevelID != *levelID) {
			continue
		}
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	var out []models.DepartmentStudent
	for _, id := range ids {
		s := m.students[id]
		out = append(out, models.DepartmentStudent{ID: s.ID, Matric: s.MatricNumber, DepartmentID: s.DepartmentID})
	}
	return out, nil
}

func (m *memoryStore) ListForExport(_ context.Context) ([]models.StudentExportRow, error) {
	return m.exportRows, nil
}

func (m *memoryStore) byMatric(matNo string) *models.Student {
	for _, s := range m.students {
		if s.MatricNumber == matNo {
			return s
		}
	}
	return nil
}

// memoryPhotos is an in-memory PhotoStorage.
type memoryPhotos struct {
	saved   map[string][]byte
	deleted []string
}

func newMemoryPhotos() *memoryPhotos {
	return &memoryPhotos{saved: make(map[string][]byte)}
}

func (p *memoryPhotos) SaveImage(src io.Reader, originalName string) (string, error) {
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, src); err != nil {
		return "", err
	}
	url := fmt.Sprintf("/uploads/%d-%s", len(p.saved)+1, originalName)
	p.saved[url] = buf.Bytes()
	return url, nil
}

func (p *memoryPhotos) DeleteByURL(url string) error {
	p.deleted = append(p.deleted, url)
	delete(p.saved, url)
	return nil
}
