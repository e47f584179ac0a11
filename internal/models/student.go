package models

import "time"

// Gender enumerates the accepted student gender values.
type Gender string

const (
	GenderMale   Gender = "MALE"
	GenderFemale Gender = "FEMALE"
	GenderOther  Gender = "OTHER"
)

// Student represents a learner registered in the system.
type Student struct {
	ID          string    `db:"id" json:"id"`
	FirstName   string    `db:"first_name" json:"firstName"`
	LastName    string    `db:"last_name" json:"lastName"`
	Email       string    `db:"email" json:"email"`
	DateOfBirth time.Time `db:"date_of_birth" json:"dateOfBirth"`
	Gender      Gender    `db:"gender" json:"gender"`
	CreatedAt   time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt   time.Time `db:"updated_at" json:"updatedAt"`
}

// StudentDetail is a student with its marks eagerly loaded.
type StudentDetail struct {
	Student
	Marks []Mark `json:"marks"`
}
