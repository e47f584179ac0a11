package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/student-marks-api/internal/models"
	appErrors "github.com/noah-isme/student-marks-api/pkg/errors"
	"github.com/noah-isme/student-marks-api/pkg/pagination"
)

type mockStudentRepo struct {
	students  map[string]models.StudentDetail
	createErr error
	updateErr error
}

func newMockStudentRepo() *mockStudentRepo {
	return &mockStudentRepo{students: make(map[string]models.StudentDetail)}
}

func (m *mockStudentRepo) List(ctx context.Context, p pagination.Params) ([]models.StudentDetail, int, error) {
	var result []models.StudentDetail
	for _, s := range m.students {
		result = append(result, s)
	}
	return result, len(m.students), nil
}

func (m *mockStudentRepo) FindByID(ctx context.Context, id string) (*models.StudentDetail, error) {
	if s, ok := m.students[id]; ok {
		return &s, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockStudentRepo) Create(ctx context.Context, student *models.Student) error {
	if m.createErr != nil {
		return m.createErr
	}
	if student.ID == "" {
		student.ID = "stu-" + student.Email
	}
	m.students[student.ID] = models.StudentDetail{Student: *student, Marks: []models.Mark{}}
	return nil
}

func (m *mockStudentRepo) Update(ctx context.Context, student *models.Student) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	detail := m.students[student.ID]
	detail.Student = *student
	m.students[student.ID] = detail
	return nil
}

func (m *mockStudentRepo) Delete(ctx context.Context, id string) error {
	delete(m.students, id)
	return nil
}

func TestStudentServiceCreateDefaultsGender(t *testing.T) {
	repo := newMockStudentRepo()
	svc := NewStudentService(repo, nil, zap.NewNop())

	student, err := svc.Create(context.Background(), CreateStudentRequest{
		FirstName:   "Jane",
		LastName:    "Doe",
		Email:       "jane@example.com",
		DateOfBirth: "2005-04-17",
	})
	require.NoError(t, err)
	assert.Equal(t, models.GenderOther, student.Gender)
	assert.Equal(t, time.Date(2005, 4, 17, 0, 0, 0, 0, time.UTC), student.DateOfBirth)
}

func TestStudentServiceCreateCollectsAllFieldErrors(t *testing.T) {
	svc := NewStudentService(newMockStudentRepo(), nil, zap.NewNop())

	_, err := svc.Create(context.Background(), CreateStudentRequest{
		FirstName:   "J",
		LastName:    "Doe",
		Email:       "not-an-email",
		DateOfBirth: "17/04/2005",
		Gender:      "UNKNOWN",
	})
	require.Error(t, err)

	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, 400, appErr.Status)
	assert.ElementsMatch(t, []string{"firstName", "email", "dateOfBirth", "gender"}, fieldNames(err))
}

func TestStudentServiceCreateDuplicateEmail(t *testing.T) {
	repo := newMockStudentRepo()
	repo.createErr = &pq.Error{Code: "23505", Constraint: "uq_student_email"}
	svc := NewStudentService(repo, nil, zap.NewNop())

	_, err := svc.Create(context.Background(), CreateStudentRequest{
		FirstName:   "Jane",
		LastName:    "Doe",
		Email:       "dup@example.com",
		DateOfBirth: "2005-04-17",
	})
	require.Error(t, err)

	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, 400, appErr.Status)
	assert.Equal(t, []string{"email"}, fieldNames(err))
	assert.Empty(t, repo.students)
}

func TestStudentServiceUpdatePartial(t *testing.T) {
	repo := newMockStudentRepo()
	repo.students["stu-1"] = models.StudentDetail{
		Student: models.Student{
			ID:        "stu-1",
			FirstName: "Jane",
			LastName:  "Doe",
			Email:     "jane@example.com",
			Gender:    models.GenderFemale,
		},
		Marks: []models.Mark{},
	}
	svc := NewStudentService(repo, nil, zap.NewNop())

	email := "jane.doe@example.com"
	updated, err := svc.Update(context.Background(), "stu-1", UpdateStudentRequest{Email: &email})
	require.NoError(t, err)
	assert.Equal(t, "jane.doe@example.com", updated.Email)
	assert.Equal(t, "Jane", updated.FirstName, "unsupplied field must keep its value")
	assert.Equal(t, models.GenderFemale, updated.Gender)
}

func TestStudentServiceUpdateNotFound(t *testing.T) {
	svc := NewStudentService(newMockStudentRepo(), nil, zap.NewNop())

	email := "ghost@example.com"
	_, err := svc.Update(context.Background(), "missing", UpdateStudentRequest{Email: &email})
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, 404, appErr.Status)
}

func TestStudentServiceDelete(t *testing.T) {
	repo := newMockStudentRepo()
	repo.students["stu-1"] = models.StudentDetail{Student: models.Student{ID: "stu-1"}, Marks: []models.Mark{}}
	svc := NewStudentService(repo, nil, zap.NewNop())

	require.NoError(t, svc.Delete(context.Background(), "stu-1"))
	assert.Empty(t, repo.students)

	err := svc.Delete(context.Background(), "stu-1")
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, 404, appErr.Status)
}

func TestStudentServiceListMeta(t *testing.T) {
	repo := newMockStudentRepo()
	for _, id := range []string{"a", "b", "c"} {
		repo.students[id] = models.StudentDetail{Student: models.Student{ID: id}, Marks: []models.Mark{}}
	}
	svc := NewStudentService(repo, nil, zap.NewNop())

	_, meta, err := svc.List(context.Background(), pagination.Params{Page: 1, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, 3, meta.Total)
	assert.Equal(t, 2, meta.TotalPages)
}
