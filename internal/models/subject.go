package models

import "time"

// Subject represents an academic subject students are marked in.
type Subject struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Code      string    `db:"code" json:"code"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// SubjectDetail is a subject with its marks eagerly loaded.
type SubjectDetail struct {
	Subject
	Marks []Mark `json:"marks"`
}
