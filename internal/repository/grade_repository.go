package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/campusworks/registrar-api/internal/models"
)

// GradeRepository persists grade records in the academic database.
type GradeRepository struct {
	db *sqlx.DB
}

// NewGradeRepository constructs the repository.
func NewGradeRepository(db *sqlx.DB) *GradeRepository {
	return &GradeRepository{db: db}
}

// Upsert writes the grade record for (student_id, section_id), overwriting
// any prior component scores and derived grade. Concurrent writers race on
// the unique constraint rather than a lock; the conflict path updates in
// place so the second writer wins.
func (r *GradeRepository) Upsert(ctx context.Context, record *models.GradeRecord) error {
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	record.UpdatedAt = time.Now().UTC()
	const query = `INSERT INTO grade_records (id, student_id, section_id, quiz_score, midterm_score, final_score, weighted_score, final_grade, updated_at)
VALUES (:id, :student_id, :section_id, :quiz_score, :midterm_score, :final_score, :weighted_score, :final_grade, :updated_at)
ON CONFLICT (student_id, section_id)
DO UPDATE SET quiz_score = EXCLUDED.quiz_score, midterm_score = EXCLUDED.midterm_score,
              final_score = EXCLUDED.final_score, weighted_score = EXCLUDED.weighted_score,
              final_grade = EXCLUDED.final_grade, updated_at = EXCLUDED.updated_at`
	if _, err := r.db.NamedExecContext(ctx, query, record); err != nil {
		return fmt.Errorf("upsert grade record: %w", err)
	}
	return nil
}

// FindByStudentAndSection returns the grade record for the pair.
func (r *GradeRepository) FindByStudentAndSection(ctx context.Context, studentID, sectionID string) (*models.GradeRecord, error) {
	const query = `SELECT id, student_id, section_id, quiz_score, midterm_score, final_score, weighted_score, final_grade, updated_at
FROM grade_records WHERE student_id = $1 AND section_id = $2 LIMIT 1`
	var record models.GradeRecord
	if err := r.db.GetContext(ctx, &record, query, studentID, sectionID); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find grade record: %w", err)
	}
	return &record, nil
}

// Transcript returns all graded sections for a student with course context.
func (r *GradeRepository) Transcript(ctx context.Context, studentID string) ([]models.TranscriptRow, error) {
	const query = `SELECT g.section_id, c.code AS course_code, c.title AS course_title,
        g.quiz_score, g.midterm_score, g.final_score, g.weighted_score, g.final_grade
        FROM grade_records g
        JOIN sections s ON s.id = g.section_id
        JOIN courses c ON c.id = s.course_id
        WHERE g.student_id = $1
        ORDER BY c.code ASC`
	var rows []models.TranscriptRow
	if err := r.db.SelectContext(ctx, &rows, query, studentID); err != nil {
		return nil, fmt.Errorf("load transcript: %w", err)
	}
	return rows, nil
}
