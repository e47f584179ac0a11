package service

import (
	"context"
	"database/sql"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/student-marks-api/internal/models"
	"github.com/noah-isme/student-marks-api/internal/repository"
	appErrors "github.com/noah-isme/student-marks-api/pkg/errors"
	"github.com/noah-isme/student-marks-api/pkg/pagination"
)

type markRepository interface {
	List(ctx context.Context, filter models.MarkFilter, p pagination.Params) ([]models.MarkDetail, int, error)
	FindByID(ctx context.Context, id string) (*models.MarkDetail, error)
	Create(ctx context.Context, mark *models.Mark) error
	Update(ctx context.Context, mark *models.Mark) error
	Delete(ctx context.Context, id string) error
}

// studentReader is the slice of the student repository the mark service
// needs for the list-by-student existence check.
type studentReader interface {
	FindByID(ctx context.Context, id string) (*models.StudentDetail, error)
}

// CreateMarkRequest captures fields for recording a mark. Score is a
// pointer so a legitimate 0 passes the required check.
type CreateMarkRequest struct {
	StudentID    string   `json:"studentId" validate:"required,uuid"`
	SubjectID    string   `json:"subjectId" validate:"required,uuid"`
	Score        *float64 `json:"score" validate:"required,gte=0,lte=100"`
	Semester     int      `json:"semester" validate:"required,gte=1,lte=8"`
	AcademicYear string   `json:"academicYear" validate:"required,academic_year"`
}

// UpdateMarkRequest carries a partial mark update.
type UpdateMarkRequest struct {
	StudentID    *string  `json:"studentId" validate:"omitempty,uuid"`
	SubjectID    *string  `json:"subjectId" validate:"omitempty,uuid"`
	Score        *float64 `json:"score" validate:"omitempty,gte=0,lte=100"`
	Semester     *int     `json:"semester" validate:"omitempty,gte=1,lte=8"`
	AcademicYear *string  `json:"academicYear" validate:"omitempty,academic_year"`
}

// MarkService handles mark domain workflows.
type MarkService struct {
	repo      markRepository
	students  studentReader
	validator *validator.Validate
	logger    *zap.Logger
}

// NewMarkService creates a new mark service.
func NewMarkService(repo markRepository, students studentReader, validate *validator.Validate, logger *zap.Logger) *MarkService {
	if validate == nil {
		validate = NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MarkService{repo: repo, students: students, validator: validate, logger: logger}
}

// List returns a page of marks with student and subject loaded.
func (s *MarkService) List(ctx context.Context, p pagination.Params) ([]models.MarkDetail, pagination.Meta, error) {
	marks, total, err := s.repo.List(ctx, models.MarkFilter{}, p)
	if err != nil {
		return nil, pagination.Meta{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list marks")
	}
	return marks, pagination.NewMeta(total, p), nil
}

// ListByStudent returns the marks of one student. A missing student is a
// 404 rather than an empty page so typoed ids do not read as "no marks".
func (s *MarkService) ListByStudent(ctx context.Context, studentID string, p pagination.Params) ([]models.MarkDetail, pagination.Meta, error) {
	if _, err := s.students.FindByID(ctx, studentID); err != nil {
		if err == sql.ErrNoRows {
			return nil, pagination.Meta{}, appErrors.Clone(appErrors.ErrNotFound, "Student not found")
		}
		return nil, pagination.Meta{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}

	marks, total, err := s.repo.List(ctx, models.MarkFilter{StudentID: studentID}, p)
	if err != nil {
		return nil, pagination.Meta{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list student marks")
	}
	return marks, pagination.NewMeta(total, p), nil
}

// Get returns a mark by identifier.
func (s *MarkService) Get(ctx context.Context, id string) (*models.MarkDetail, error) {
	mark, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "Mark not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load mark")
	}
	return mark, nil
}

// Create validates and persists a new mark. The foreign keys arbitrate
// dangling student/subject references.
func (s *MarkService) Create(ctx context.Context, req CreateMarkRequest) (*models.MarkDetail, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err)
	}

	mark := &models.Mark{
		StudentID:    req.StudentID,
		SubjectID:    req.SubjectID,
		Score:        *req.Score,
		Semester:     req.Semester,
		AcademicYear: req.AcademicYear,
	}

	if err := s.repo.Create(ctx, mark); err != nil {
		if mapped := mapMarkReferenceError(err); mapped != nil {
			return nil, mapped
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create mark")
	}

	detail, err := s.repo.FindByID(ctx, mark.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load created mark")
	}
	return detail, nil
}

// Update merges the supplied fields into the stored mark and persists.
func (s *MarkService) Update(ctx context.Context, id string, req UpdateMarkRequest) (*models.MarkDetail, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err)
	}

	detail, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "Mark not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load mark")
	}

	if req.StudentID != nil {
		detail.StudentID = *req.StudentID
	}
	if req.SubjectID != nil {
		detail.SubjectID = *req.SubjectID
	}
	if req.Score != nil {
		detail.Score = *req.Score
	}
	if req.Semester != nil {
		detail.Semester = *req.Semester
	}
	if req.AcademicYear != nil {
		detail.AcademicYear = *req.AcademicYear
	}

	if err := s.repo.Update(ctx, &detail.Mark); err != nil {
		if mapped := mapMarkReferenceError(err); mapped != nil {
			return nil, mapped
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update mark")
	}

	updated, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load updated mark")
	}
	return updated, nil
}

// Delete removes a mark.
func (s *MarkService) Delete(ctx context.Context, id string) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if err == sql.ErrNoRows {
			return appErrors.Clone(appErrors.ErrNotFound, "Mark not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load mark")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete mark")
	}
	return nil
}

// mapMarkReferenceError attributes a foreign-key failure to the referenced
// entity based on the constraint name.
func mapMarkReferenceError(err error) error {
	constraint, ok := repository.ForeignKeyViolation(err)
	if !ok {
		return nil
	}
	if strings.Contains(constraint, "subject") {
		return constraintError("subjectId", "Referenced subject does not exist")
	}
	return constraintError("studentId", "Referenced student does not exist")
}
