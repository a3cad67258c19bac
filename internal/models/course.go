package models

import "time"

// Course is a catalog entry a section is scheduled from.
type Course struct {
	ID          string    `db:"id" json:"id"`
	Code        string    `db:"code" json:"code"`
	Title       string    `db:"title" json:"title"`
	Credits     int       `db:"credits" json:"credits"`
	Description *string   `db:"description" json:"description,omitempty"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// Section is a scheduled instance of a course with a seat capacity.
// enrolled_count is the authoritative seat counter; enrollment rows are the
// detail ledger and the two must agree after every committed operation.
type Section struct {
	ID            string    `db:"id" json:"id"`
	CourseID      string    `db:"course_id" json:"course_id"`
	InstructorID  *string   `db:"instructor_id" json:"instructor_id,omitempty"`
	TimeSlot      string    `db:"time_slot" json:"time_slot"`
	Capacity      int       `db:"capacity" json:"capacity"`
	EnrolledCount int       `db:"enrolled_count" json:"enrolled_count"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time `db:"updated_at" json:"updated_at"`
}

// SectionDetail enriches Section with course and instructor info.
type SectionDetail struct {
	Section
	CourseCode     string  `db:"course_code" json:"course_code"`
	CourseTitle    string  `db:"course_title" json:"course_title"`
	InstructorName *string `db:"instructor_name" json:"instructor_name,omitempty"`
}

// SeatsLeft returns the number of open seats.
func (s *Section) SeatsLeft() int {
	left := s.Capacity - s.EnrolledCount
	if left < 0 {
		return 0
	}
	return left
}
