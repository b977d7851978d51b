package model

import (
	"time"

	"github.com/google/uuid"
)

type UserRole string

const (
	UserRolePatient UserRole = "patient"
	UserRoleDoctor  UserRole = "doctor"
)

// User is the identity record managed by the auth service. This subsystem
// only reads it: patient metadata feeds the analysis engine and the doctor
// report listing.
type User struct {
	ID        uuid.UUID `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Email     string    `db:"email" json:"email"`
	Role      UserRole  `db:"role" json:"role"`
	Age       int       `db:"age" json:"age"`
	Gender    string    `db:"gender" json:"gender"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

func (u *User) IsDoctor() bool {
	return u.Role == UserRoleDoctor
}

// PatientSummary is the slice of a patient record joined onto doctor
// report listings.
type PatientSummary struct {
	ID     uuid.UUID `json:"id"`
	Name   string    `json:"name"`
	Age    int       `json:"age"`
	Gender string    `json:"gender"`
}
