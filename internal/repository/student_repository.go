package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/student-marks-api/internal/models"
	"github.com/noah-isme/student-marks-api/pkg/pagination"
)

// StudentRepository manages persistence for student records.
type StudentRepository struct {
	db *sqlx.DB
}

// NewStudentRepository constructs a StudentRepository.
func NewStudentRepository(db *sqlx.DB) *StudentRepository {
	return &StudentRepository{db: db}
}

const studentColumns = "id, first_name, last_name, email, date_of_birth, gender, created_at, updated_at"

// List returns a page of students in insertion order with their marks
// eagerly loaded. The id tiebreak keeps pages stable when rows share a
// creation timestamp.
func (r *StudentRepository) List(ctx context.Context, p pagination.Params) ([]models.StudentDetail, int, error) {
	query := fmt.Sprintf("SELECT %s FROM student ORDER BY created_at ASC, id ASC LIMIT $1 OFFSET $2", studentColumns)
	var students []models.Student
	if err := r.db.SelectContext(ctx, &students, query, p.Limit, p.Offset()); err != nil {
		return nil, 0, fmt.Errorf("list students: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM student"); err != nil {
		return nil, 0, fmt.Errorf("count students: %w", err)
	}

	ids := make([]string, len(students))
	for i, s := range students {
		ids[i] = s.ID
	}
	marks, err := r.marksByStudentIDs(ctx, ids)
	if err != nil {
		return nil, 0, err
	}

	details := make([]models.StudentDetail, len(students))
	for i, s := range students {
		details[i] = models.StudentDetail{Student: s, Marks: marks[s.ID]}
		if details[i].Marks == nil {
			details[i].Marks = []models.Mark{}
		}
	}
	return details, total, nil
}

// FindByID fetches a student with marks loaded.
func (r *StudentRepository) FindByID(ctx context.Context, id string) (*models.StudentDetail, error) {
	query := fmt.Sprintf("SELECT %s FROM student WHERE id = $1", studentColumns)
	var student models.Student
	if err := r.db.GetContext(ctx, &student, query, id); err != nil {
		return nil, err
	}

	marks, err := r.marksByStudentIDs(ctx, []string{id})
	if err != nil {
		return nil, err
	}

	detail := models.StudentDetail{Student: student, Marks: marks[id]}
	if detail.Marks == nil {
		detail.Marks = []models.Mark{}
	}
	return &detail, nil
}

// Create inserts a new student row.
func (r *StudentRepository) Create(ctx context.Context, student *models.Student) error {
	if student.ID == "" {
		student.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if student.CreatedAt.IsZero() {
		student.CreatedAt = now
	}
	student.UpdatedAt = now
	const query = `INSERT INTO student (id, first_name, last_name, email, date_of_birth, gender, created_at, updated_at)
        VALUES (:id, :first_name, :last_name, :email, :date_of_birth, :gender, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, student); err != nil {
		return fmt.Errorf("create student: %w", err)
	}
	return nil
}

// Update persists the full student row. Field merging happens in the
// service before the call.
func (r *StudentRepository) Update(ctx context.Context, student *models.Student) error {
	student.UpdatedAt = time.Now().UTC()
	const query = `UPDATE student SET first_name = :first_name, last_name = :last_name, email = :email, date_of_birth = :date_of_birth, gender = :gender, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, student); err != nil {
		return fmt.Errorf("update student: %w", err)
	}
	return nil
}

// Delete removes a student. Dependent marks go with it via the ON DELETE
// CASCADE constraint.
func (r *StudentRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM student WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete student: %w", err)
	}
	return nil
}

func (r *StudentRepository) marksByStudentIDs(ctx context.Context, ids []string) (map[string][]models.Mark, error) {
	if len(ids) == 0 {
		return map[string][]models.Mark{}, nil
	}

	query, args, err := sqlx.In(`SELECT id, student_id, subject_id, score, semester, academic_year, created_at, updated_at
        FROM mark WHERE student_id IN (?) ORDER BY created_at ASC, id ASC`, ids)
	if err != nil {
		return nil, fmt.Errorf("build marks query: %w", err)
	}

	var marks []models.Mark
	if err := r.db.SelectContext(ctx, &marks, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("load student marks: %w", err)
	}

	grouped := make(map[string][]models.Mark, len(ids))
	for _, m := range marks {
		grouped[m.StudentID] = append(grouped[m.StudentID], m)
	}
	return grouped, nil
}
