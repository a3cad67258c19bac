package models

import "time"

// StudentProfile is the academic-store record paired with a STUDENT identity.
type StudentProfile struct {
	ID         string    `db:"id" json:"id"`
	IdentityID string    `db:"identity_id" json:"identity_id"`
	FullName   string    `db:"full_name" json:"full_name"`
	Email      string    `db:"email" json:"email"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// InstructorProfile is the academic-store record paired with an INSTRUCTOR identity.
type InstructorProfile struct {
	ID         string    `db:"id" json:"id"`
	IdentityID string    `db:"identity_id" json:"identity_id"`
	FullName   string    `db:"full_name" json:"full_name"`
	Email      string    `db:"email" json:"email"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// OrphanedIdentity is an identity committed to the credentials store with no
// matching academic profile. These can exist after a crash between the two
// store commits; reconciliation surfaces them instead of hiding the gap.
type OrphanedIdentity struct {
	IdentityID string    `json:"identity_id"`
	Email      string    `json:"email"`
	Role       UserRole  `json:"role"`
	CreatedAt  time.Time `json:"created_at"`
}
