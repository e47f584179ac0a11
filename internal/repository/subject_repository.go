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

// SubjectRepository handles persistence for subjects.
type SubjectRepository struct {
	db *sqlx.DB
}

// NewSubjectRepository creates a new repository instance.
func NewSubjectRepository(db *sqlx.DB) *SubjectRepository {
	return &SubjectRepository{db: db}
}

const subjectColumns = "id, name, code, created_at, updated_at"

// List returns a page of subjects in insertion order with marks loaded.
func (r *SubjectRepository) List(ctx context.Context, p pagination.Params) ([]models.SubjectDetail, int, error) {
	query := fmt.Sprintf("SELECT %s FROM subject ORDER BY created_at ASC, id ASC LIMIT $1 OFFSET $2", subjectColumns)
	var subjects []models.Subject
	if err := r.db.SelectContext(ctx, &subjects, query, p.Limit, p.Offset()); err != nil {
		return nil, 0, fmt.Errorf("list subjects: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM subject"); err != nil {
		return nil, 0, fmt.Errorf("count subjects: %w", err)
	}

	ids := make([]string, len(subjects))
	for i, s := range subjects {
		ids[i] = s.ID
	}
	marks, err := r.marksBySubjectIDs(ctx, ids)
	if err != nil {
		return nil, 0, err
	}

	details := make([]models.SubjectDetail, len(subjects))
	for i, s := range subjects {
		details[i] = models.SubjectDetail{Subject: s, Marks: marks[s.ID]}
		if details[i].Marks == nil {
			details[i].Marks = []models.Mark{}
		}
	}
	return details, total, nil
}

// FindByID returns a subject with marks loaded.
func (r *SubjectRepository) FindByID(ctx context.Context, id string) (*models.SubjectDetail, error) {
	query := fmt.Sprintf("SELECT %s FROM subject WHERE id = $1", subjectColumns)
	var subject models.Subject
	if err := r.db.GetContext(ctx, &subject, query, id); err != nil {
		return nil, err
	}

	marks, err := r.marksBySubjectIDs(ctx, []string{id})
	if err != nil {
		return nil, err
	}

	detail := models.SubjectDetail{Subject: subject, Marks: marks[id]}
	if detail.Marks == nil {
		detail.Marks = []models.Mark{}
	}
	return &detail, nil
}

// Create persists a new subject.
func (r *SubjectRepository) Create(ctx context.Context, subject *models.Subject) error {
	if subject.ID == "" {
		subject.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if subject.CreatedAt.IsZero() {
		subject.CreatedAt = now
	}
	subject.UpdatedAt = now

	const query = `INSERT INTO subject (id, name, code, created_at, updated_at) VALUES (:id, :name, :code, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, subject); err != nil {
		return fmt.Errorf("create subject: %w", err)
	}
	return nil
}

// Update persists the full subject row.
func (r *SubjectRepository) Update(ctx context.Context, subject *models.Subject) error {
	subject.UpdatedAt = time.Now().UTC()
	const query = `UPDATE subject SET name = :name, code = :code, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, subject); err != nil {
		return fmt.Errorf("update subject: %w", err)
	}
	return nil
}

// Delete removes a subject record; dependent marks cascade.
func (r *SubjectRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM subject WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete subject: %w", err)
	}
	return nil
}

func (r *SubjectRepository) marksBySubjectIDs(ctx context.Context, ids []string) (map[string][]models.Mark, error) {
	if len(ids) == 0 {
		return map[string][]models.Mark{}, nil
	}

	query, args, err := sqlx.In(`SELECT id, student_id, subject_id, score, semester, academic_year, created_at, updated_at
        FROM mark WHERE subject_id IN (?) ORDER BY created_at ASC, id ASC`, ids)
	if err != nil {
		return nil, fmt.Errorf("build marks query: %w", err)
	}

	var marks []models.Mark
	if err := r.db.SelectContext(ctx, &marks, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("load subject marks: %w", err)
	}

	grouped := make(map[string][]models.Mark, len(ids))
	for _, m := range marks {
		grouped[m.SubjectID] = append(grouped[m.SubjectID], m)
	}
	return grouped, nil
}
