package service

import (
	"context"
	"database/sql"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/student-marks-api/internal/models"
	"github.com/noah-isme/student-marks-api/internal/repository"
	appErrors "github.com/noah-isme/student-marks-api/pkg/errors"
	"github.com/noah-isme/student-marks-api/pkg/pagination"
)

const dateLayout = "2006-01-02"

type studentRepository interface {
	List(ctx context.Context, p pagination.Params) ([]models.StudentDetail, int, error)
	FindByID(ctx context.Context, id string) (*models.StudentDetail, error)
	Create(ctx context.Context, student *models.Student) error
	Update(ctx context.Context, student *models.Student) error
	Delete(ctx context.Context, id string) error
}

// CreateStudentRequest captures fields for registering a student.
type CreateStudentRequest struct {
	FirstName   string `json:"firstName" validate:"required,min=2"`
	LastName    string `json:"lastName" validate:"required,min=2"`
	Email       string `json:"email" validate:"required,email"`
	DateOfBirth string `json:"dateOfBirth" validate:"required,datetime=2006-01-02"`
	Gender      string `json:"gender" validate:"omitempty,oneof=MALE FEMALE OTHER"`
}

// UpdateStudentRequest carries a partial student update; absent fields are
// left untouched.
type UpdateStudentRequest struct {
	FirstName   *string `json:"firstName" validate:"omitempty,min=2"`
	LastName    *string `json:"lastName" validate:"omitempty,min=2"`
	Email       *string `json:"email" validate:"omitempty,email"`
	DateOfBirth *string `json:"dateOfBirth" validate:"omitempty,datetime=2006-01-02"`
	Gender      *string `json:"gender" validate:"omitempty,oneof=MALE FEMALE OTHER"`
}

// StudentService handles student domain workflows.
type StudentService struct {
	repo      studentRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewStudentService creates a new student service.
func NewStudentService(repo studentRepository, validate *validator.Validate, logger *zap.Logger) *StudentService {
	if validate == nil {
		validate = NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StudentService{repo: repo, validator: validate, logger: logger}
}

// List returns a page of students with pagination metadata.
func (s *StudentService) List(ctx context.Context, p pagination.Params) ([]models.StudentDetail, pagination.Meta, error) {
	students, total, err := s.repo.List(ctx, p)
	if err != nil {
		return nil, pagination.Meta{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list students")
	}
	return students, pagination.NewMeta(total, p), nil
}

// Get returns a student by identifier.
func (s *StudentService) Get(ctx context.Context, id string) (*models.StudentDetail, error) {
	student, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "Student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	return student, nil
}

// Create validates and persists a new student. The unique email constraint
// arbitrates concurrent duplicates.
func (s *StudentService) Create(ctx context.Context, req CreateStudentRequest) (*models.Student, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err)
	}

	dob, _ := time.Parse(dateLayout, req.DateOfBirth)
	gender := models.Gender(req.Gender)
	if gender == "" {
		gender = models.GenderOther
	}

	student := &models.Student{
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Email:       req.Email,
		DateOfBirth: dob,
		Gender:      gender,
	}

	if err := s.repo.Create(ctx, student); err != nil {
		if _, ok := repository.UniqueViolation(err); ok {
			return nil, constraintError("email", "Email already exists")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create student")
	}
	return student, nil
}

// Update merges the supplied fields into the stored student and persists.
func (s *StudentService) Update(ctx context.Context, id string, req UpdateStudentRequest) (*models.StudentDetail, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err)
	}

	detail, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "Student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}

	if req.FirstName != nil {
		detail.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		detail.LastName = *req.LastName
	}
	if req.Email != nil {
		detail.Email = *req.Email
	}
	if req.DateOfBirth != nil {
		dob, _ := time.Parse(dateLayout, *req.DateOfBirth)
		detail.DateOfBirth = dob
	}
	if req.Gender != nil {
		detail.Gender = models.Gender(*req.Gender)
	}

	if err := s.repo.Update(ctx, &detail.Student); err != nil {
		if _, ok := repository.UniqueViolation(err); ok {
			return nil, constraintError("email", "Email already exists")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update student")
	}
	return detail, nil
}

// Delete removes a student together with its marks (storage cascade).
func (s *StudentService) Delete(ctx context.Context, id string) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if err == sql.ErrNoRows {
			return appErrors.Clone(appErrors.ErrNotFound, "Student not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete student")
	}
	return nil
}
