package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/student-marks-api/internal/models"
	"github.com/noah-isme/student-marks-api/pkg/pagination"
)

// MarkRepository manages persistence for marks.
type MarkRepository struct {
	db *sqlx.DB
}

// NewMarkRepository constructs a MarkRepository.
func NewMarkRepository(db *sqlx.DB) *MarkRepository {
	return &MarkRepository{db: db}
}

const markColumns = "id, student_id, subject_id, score, semester, academic_year, created_at, updated_at"

// List returns a page of marks in insertion order with their student and
// subject eagerly loaded. The filter narrows the page to one student.
func (r *MarkRepository) List(ctx context.Context, filter models.MarkFilter, p pagination.Params) ([]models.MarkDetail, int, error) {
	base := "FROM mark"
	args := []interface{}{}
	if filter.StudentID != "" {
		base += " WHERE student_id = $1"
		args = append(args, filter.StudentID)
	}

	query := fmt.Sprintf("SELECT %s %s ORDER BY created_at ASC, id ASC LIMIT $%d OFFSET $%d",
		markColumns, base, len(args)+1, len(args)+2)
	var marks []models.Mark
	if err := r.db.SelectContext(ctx, &marks, query, append(args, p.Limit, p.Offset())...); err != nil {
		return nil, 0, fmt.Errorf("list marks: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, fmt.Sprintf("SELECT COUNT(*) %s", base), args...); err != nil {
		return nil, 0, fmt.Errorf("count marks: %w", err)
	}

	details, err := r.attachRelations(ctx, marks)
	if err != nil {
		return nil, 0, err
	}
	return details, total, nil
}

// FindByID returns a mark with its student and subject loaded, or
// sql.ErrNoRows when absent.
func (r *MarkRepository) FindByID(ctx context.Context, id string) (*models.MarkDetail, error) {
	query := fmt.Sprintf("SELECT %s FROM mark WHERE id = $1", markColumns)
	var mark models.Mark
	if err := r.db.GetContext(ctx, &mark, query, id); err != nil {
		return nil, err
	}

	details, err := r.attachRelations(ctx, []models.Mark{mark})
	if err != nil {
		return nil, err
	}
	return &details[0], nil
}

// Create inserts a new mark. Foreign-key constraints arbitrate dangling
// student/subject references.
func (r *MarkRepository) Create(ctx context.Context, mark *models.Mark) error {
	if mark.ID == "" {
		mark.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if mark.CreatedAt.IsZero() {
		mark.CreatedAt = now
	}
	mark.UpdatedAt = now

	const query = `INSERT INTO mark (id, student_id, subject_id, score, semester, academic_year, created_at, updated_at)
        VALUES (:id, :student_id, :subject_id, :score, :semester, :academic_year, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, mark); err != nil {
		return fmt.Errorf("create mark: %w", err)
	}
	return nil
}

// Update persists the full mark row.
func (r *MarkRepository) Update(ctx context.Context, mark *models.Mark) error {
	mark.UpdatedAt = time.Now().UTC()
	const query = `UPDATE mark SET student_id = :student_id, subject_id = :subject_id, score = :score, semester = :semester, academic_year = :academic_year, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, mark); err != nil {
		return fmt.Errorf("update mark: %w", err)
	}
	return nil
}

// Delete removes a mark record.
func (r *MarkRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM mark WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete mark: %w", err)
	}
	return nil
}

// attachRelations batch-loads the students and subjects referenced by the
// given marks and builds the detail projections.
func (r *MarkRepository) attachRelations(ctx context.Context, marks []models.Mark) ([]models.MarkDetail, error) {
	details := make([]models.MarkDetail, len(marks))
	if len(marks) == 0 {
		return details, nil
	}

	studentIDs := make([]string, 0, len(marks))
	subjectIDs := make([]string, 0, len(marks))
	for i, m := range marks {
		details[i] = models.MarkDetail{Mark: m}
		studentIDs = append(studentIDs, m.StudentID)
		subjectIDs = append(subjectIDs, m.SubjectID)
	}

	students, err := r.studentsByIDs(ctx, studentIDs)
	if err != nil {
		return nil, err
	}
	subjects, err := r.subjectsByIDs(ctx, subjectIDs)
	if err != nil {
		return nil, err
	}

	for i := range details {
		if s, ok := students[details[i].StudentID]; ok {
			student := s
			details[i].Student = &student
		}
		if s, ok := subjects[details[i].SubjectID]; ok {
			subject := s
			details[i].Subject = &subject
		}
	}
	return details, nil
}

func (r *MarkRepository) studentsByIDs(ctx context.Context, ids []string) (map[string]models.Student, error) {
	query, args, err := sqlx.In(fmt.Sprintf("SELECT %s FROM student WHERE id IN (?)", studentColumns), ids)
	if err != nil {
		return nil, fmt.Errorf("build students query: %w", err)
	}

	var students []models.Student
	if err := r.db.SelectContext(ctx, &students, r.db.Rebind(query), args...); err != nil && err != sql.ErrNoRows {
		return nil, fmt.Errorf("load mark students: %w", err)
	}

	byID := make(map[string]models.Student, len(students))
	for _, s := range students {
		byID[s.ID] = s
	}
	return byID, nil
}

func (r *MarkRepository) subjectsByIDs(ctx context.Context, ids []string) (map[string]models.Subject, error) {
	query, args, err := sqlx.In(fmt.Sprintf("SELECT %s FROM subject WHERE id IN (?)", subjectColumns), ids)
	if err != nil {
		return nil, fmt.Errorf("build subjects query: %w", err)
	}

	var subjects []models.Subject
	if err := r.db.SelectContext(ctx, &subjects, r.db.Rebind(query), args...); err != nil && err != sql.ErrNoRows {
		return nil, fmt.Errorf("load mark subjects: %w", err)
	}

	byID := make(map[string]models.Subject, len(subjects))
	for _, s := range subjects {
		byID[s.ID] = s
	}
	return byID, nil
}
