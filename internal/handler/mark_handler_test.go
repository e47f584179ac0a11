package handler

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/student-marks-api/internal/models"
	"github.com/noah-isme/student-marks-api/internal/service"
	"github.com/noah-isme/student-marks-api/pkg/pagination"
)

type stubMarkRepo struct {
	marks []models.MarkDetail
}

func (s *stubMarkRepo) List(ctx context.Context, filter models.MarkFilter, p pagination.Params) ([]models.MarkDetail, int, error) {
	var result []models.MarkDetail
	for _, m := range s.marks {
		if filter.StudentID != "" && filter.StudentID != m.StudentID {
			continue
		}
		result = append(result, m)
	}
	return result, len(result), nil
}

func (s *stubMarkRepo) FindByID(ctx context.Context, id string) (*models.MarkDetail, error) {
	for _, m := range s.marks {
		if m.ID == id {
			return &m, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (s *stubMarkRepo) Create(ctx context.Context, mark *models.Mark) error {
	if mark.ID == "" {
		mark.ID = uuid.NewString()
	}
	s.marks = append(s.marks, models.MarkDetail{Mark: *mark})
	return nil
}

func (s *stubMarkRepo) Update(ctx context.Context, mark *models.Mark) error {
	for i := range s.marks {
		if s.marks[i].ID == mark.ID {
			s.marks[i].Mark = *mark
		}
	}
	return nil
}

func (s *stubMarkRepo) Delete(ctx context.Context, id string) error {
	kept := s.marks[:0]
	for _, m := range s.marks {
		if m.ID != id {
			kept = append(kept, m)
		}
	}
	s.marks = kept
	return nil
}

type stubStudentReader struct {
	ids map[string]bool
}

func (s *stubStudentReader) FindByID(ctx context.Context, id string) (*models.StudentDetail, error) {
	if s.ids[id] {
		return &models.StudentDetail{Student: models.Student{ID: id}, Marks: []models.Mark{}}, nil
	}
	return nil, sql.ErrNoRows
}

func newMarkRouter(repo *stubMarkRepo, students *stubStudentReader) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewMarkHandler(service.NewMarkService(repo, students, nil, zap.NewNop()))

	r := gin.New()
	group := r.Group("/api/marks")
	group.GET("", h.List)
	group.GET("/student/:studentId", h.ListByStudent)
	group.GET("/:id", h.Get)
	group.POST("", h.Create)
	group.PUT("/:id", h.Update)
	group.DELETE("/:id", h.Delete)
	return r
}

func TestMarkHandlerCreate(t *testing.T) {
	repo := &stubMarkRepo{}
	r := newMarkRouter(repo, &stubStudentReader{})

	payload := fmt.Sprintf(`{"studentId":%q,"subjectId":%q,"score":85.5,"semester":1,"academicYear":"2023-2024"}`,
		uuid.NewString(), uuid.NewString())
	w := performRequest(t, r, http.MethodPost, "/api/marks", payload)
	require.Equal(t, http.StatusCreated, w.Code)

	var mark models.MarkDetail
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &mark))
	assert.NotEmpty(t, mark.ID)
	assert.Equal(t, 85.5, mark.Score)
}

func TestMarkHandlerCreateScoreOutOfRange(t *testing.T) {
	r := newMarkRouter(&stubMarkRepo{}, &stubStudentReader{})

	payload := fmt.Sprintf(`{"studentId":%q,"subjectId":%q,"score":150,"semester":1,"academicYear":"2023-2024"}`,
		uuid.NewString(), uuid.NewString())
	w := performRequest(t, r, http.MethodPost, "/api/marks", payload)
	require.Equal(t, http.StatusBadRequest, w.Code)

	var body struct {
		Status string `json:"status"`
		Errors []struct {
			Field string `json:"field"`
		} `json:"errors"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "error", body.Status)
	require.Len(t, body.Errors, 1)
	assert.Equal(t, "score", body.Errors[0].Field)
}

func TestMarkHandlerListByStudent(t *testing.T) {
	studentID := uuid.NewString()
	repo := &stubMarkRepo{marks: []models.MarkDetail{
		{Mark: models.Mark{ID: uuid.NewString(), StudentID: studentID, SubjectID: uuid.NewString(), Score: 72, Semester: 2, AcademicYear: "2023-2024"}},
		{Mark: models.Mark{ID: uuid.NewString(), StudentID: uuid.NewString(), SubjectID: uuid.NewString(), Score: 90, Semester: 2, AcademicYear: "2023-2024"}},
	}}
	students := &stubStudentReader{ids: map[string]bool{studentID: true}}
	r := newMarkRouter(repo, students)

	w := performRequest(t, r, http.MethodGet, "/api/marks/student/"+studentID, "")
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Data []models.MarkDetail `json:"data"`
		Meta pagination.Meta     `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.Data, 1)
	assert.Equal(t, studentID, body.Data[0].StudentID)
	assert.Equal(t, 1, body.Meta.Total)
}

func TestMarkHandlerListByStudentMissingStudent(t *testing.T) {
	r := newMarkRouter(&stubMarkRepo{}, &stubStudentReader{})

	w := performRequest(t, r, http.MethodGet, "/api/marks/student/"+uuid.NewString(), "")
	require.Equal(t, http.StatusNotFound, w.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "Student not found", body["message"])
}

func TestMarkHandlerListClampsLimit(t *testing.T) {
	r := newMarkRouter(&stubMarkRepo{}, &stubStudentReader{})

	w := performRequest(t, r, http.MethodGet, "/api/marks?page=0&limit=500", "")
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Meta pagination.Meta `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, 1, body.Meta.Page)
	assert.Equal(t, pagination.MaxLimit, body.Meta.Limit)
}

func TestMarkHandlerGetNotFound(t *testing.T) {
	r := newMarkRouter(&stubMarkRepo{}, &stubStudentReader{})

	w := performRequest(t, r, http.MethodGet, "/api/marks/"+uuid.NewString(), "")
	require.Equal(t, http.StatusNotFound, w.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "Mark not found", body["message"])
}
