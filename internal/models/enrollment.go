package models

import "time"

// Enrollment is the ledger entry linking a student to a section.
// Unique on (student_id, section_id).
type Enrollment struct {
	ID             string    `db:"id" json:"id"`
	StudentID      string    `db:"student_id" json:"student_id"`
	SectionID      string    `db:"section_id" json:"section_id"`
	EnrollmentDate time.Time `db:"enrollment_date" json:"enrollment_date"`
}

// EnrollmentDetail enriches Enrollment with section and course info.
type EnrollmentDetail struct {
	Enrollment
	CourseCode  string `db:"course_code" json:"course_code"`
	CourseTitle string `db:"course_title" json:"course_title"`
	TimeSlot    string `db:"time_slot" json:"time_slot"`
}
