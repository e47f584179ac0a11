package models

import "time"

// Mark is a score a student received in a subject for one semester.
type Mark struct {
	ID           string    `db:"id" json:"id"`
	StudentID    string    `db:"student_id" json:"studentId"`
	SubjectID    string    `db:"subject_id" json:"subjectId"`
	Score        float64   `db:"score" json:"score"`
	Semester     int       `db:"semester" json:"semester"`
	AcademicYear string    `db:"academic_year" json:"academicYear"`
	CreatedAt    time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt    time.Time `db:"updated_at" json:"updatedAt"`
}

// MarkDetail is a mark with its owning student and subject eagerly loaded.
type MarkDetail struct {
	Mark
	Student *Student `json:"student,omitempty"`
	Subject *Subject `json:"subject,omitempty"`
}

// MarkFilter captures supported filters for listing marks.
type MarkFilter struct {
	StudentID string
}
