package models

import "time"

// LetterGrade is the banded result of the weighted score computation.
type LetterGrade string

const (
	GradeA LetterGrade = "A"
	GradeB LetterGrade = "B"
	GradeC LetterGrade = "C"
	GradeD LetterGrade = "D"
	GradeF LetterGrade = "F"
	// GradeUngraded marks a record whose weighted score is negative, i.e.
	// component scores have not been entered yet.
	GradeUngraded LetterGrade = "-"
)

// GradeRecord holds component scores and the derived final grade for a
// student within a section. At most one row per (student_id, section_id).
type GradeRecord struct {
	ID            string      `db:"id" json:"id"`
	StudentID     string      `db:"student_id" json:"student_id"`
	SectionID     string      `db:"section_id" json:"section_id"`
	QuizScore     float64     `db:"quiz_score" json:"quiz_score"`
	MidtermScore  float64     `db:"midterm_score" json:"midterm_score"`
	FinalScore    float64     `db:"final_score" json:"final_score"`
	WeightedScore float64     `db:"weighted_score" json:"weighted_score"`
	FinalGrade    LetterGrade `db:"final_grade" json:"final_grade"`
	UpdatedAt     time.Time   `db:"updated_at" json:"updated_at"`
}

// TranscriptRow joins a grade record with its course context.
type TranscriptRow struct {
	SectionID     string      `db:"section_id" json:"section_id"`
	CourseCode    string      `db:"course_code" json:"course_code"`
	CourseTitle   string      `db:"course_title" json:"course_title"`
	QuizScore     float64     `db:"quiz_score" json:"quiz_score"`
	MidtermScore  float64     `db:"midterm_score" json:"midterm_score"`
	FinalScore    float64     `db:"final_score" json:"final_score"`
	WeightedScore float64     `db:"weighted_score" json:"weighted_score"`
	FinalGrade    LetterGrade `db:"final_grade" json:"final_grade"`
}

// Transcript is a student's full set of graded sections.
type Transcript struct {
	StudentID string          `json:"student_id"`
	Rows      []TranscriptRow `json:"rows"`
}
