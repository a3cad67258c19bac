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

// SectionRepository handles persistence of course sections. Seat counters
// are mutated only by EnrollmentRepository; this repository initializes
// enrolled_count to zero on creation and otherwise reads.
type SectionRepository struct {
	db *sqlx.DB
}

// NewSectionRepository constructs the repository.
func NewSectionRepository(db *sqlx.DB) *SectionRepository {
	return &SectionRepository{db: db}
}

// ListByCourse returns sections of a course with instructor context.
func (r *SectionRepository) ListByCourse(ctx context.Context, courseID string) ([]models.SectionDetail, error) {
	const query = `SELECT s.id, s.course_id, s.instructor_id, s.time_slot, s.capacity, s.enrolled_count, s.created_at, s.updated_at,
        c.code AS course_code, c.title AS course_title, i.full_name AS instructor_name
        FROM sections s
        JOIN courses c ON c.id = s.course_id
        LEFT JOIN instructors i ON i.id = s.instructor_id
        WHERE s.course_id = $1
        ORDER BY s.time_slot ASC`
	var sections []models.SectionDetail
	if err := r.db.SelectContext(ctx, &sections, query, courseID); err != nil {
		return nil, fmt.Errorf("list course sections: %w", err)
	}
	return sections, nil
}

// FindByID returns a section by identifier.
func (r *SectionRepository) FindByID(ctx context.Context, id string) (*models.Section, error) {
	const query = `SELECT id, course_id, instructor_id, time_slot, capacity, enrolled_count, created_at, updated_at FROM sections WHERE id = $1 LIMIT 1`
	var section models.Section
	if err := r.db.GetContext(ctx, &section, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find section: %w", err)
	}
	return &section, nil
}

// Create persists a new section with an empty roster.
func (r *SectionRepository) Create(ctx context.Context, section *models.Section) error {
	if section.ID == "" {
		section.ID = uuid.NewString()
	}
	section.EnrolledCount = 0
	now := time.Now().UTC()
	section.CreatedAt = now
	section.UpdatedAt = now
	const query = `INSERT INTO sections (id, course_id, instructor_id, time_slot, capacity, enrolled_count, created_at, updated_at)
VALUES (:id, :course_id, :instructor_id, :time_slot, :capacity, :enrolled_count, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, section); err != nil {
		return fmt.Errorf("create section: %w", err)
	}
	return nil
}
