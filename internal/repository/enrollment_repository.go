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

// EnrollmentRepository handles persistence of enrollments against the
// academic database. Register and Drop are the only mutators of
// sections.enrolled_count; both run inside a single transaction so the
// counter and the ledger never disagree in committed state.
type EnrollmentRepository struct {
	db *sqlx.DB
}

// NewEnrollmentRepository constructs the repository.
func NewEnrollmentRepository(db *sqlx.DB) *EnrollmentRepository {
	return &EnrollmentRepository{db: db}
}

// Register inserts an enrollment after a capacity check performed under an
// exclusive row lock on the section. The lock is held across the
// read-check-write sequence, so concurrent registrations on the same section
// serialize and at most `capacity` enrollments ever commit.
//
// Returns ErrSectionNotFound, ErrSectionFull or ErrAlreadyEnrolled for the
// classified outcomes; any other error is a store failure after rollback.
func (r *EnrollmentRepository) Register(ctx context.Context, studentID, sectionID string) (enrollment *models.Enrollment, err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin register transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var seat struct {
		Capacity      int `db:"capacity"`
		EnrolledCount int `db:"enrolled_count"`
	}
	const lockQuery = `SELECT capacity, enrolled_count FROM sections WHERE id = $1 FOR UPDATE`
	if err = tx.GetContext(ctx, &seat, lockQuery, sectionID); err != nil {
		if err == sql.ErrNoRows {
			err = ErrSectionNotFound
			return nil, err
		}
		return nil, fmt.Errorf("lock section: %w", err)
	}

	if seat.EnrolledCount >= seat.Capacity {
		err = ErrSectionFull
		return nil, err
	}

	enrollment = &models.Enrollment{
		ID:             uuid.NewString(),
		StudentID:      studentID,
		SectionID:      sectionID,
		EnrollmentDate: time.Now().UTC(),
	}
	const insertQuery = `INSERT INTO enrollments (id, student_id, section_id, enrollment_date)
VALUES ($1, $2, $3, $4)`
	if _, err = tx.ExecContext(ctx, insertQuery, enrollment.ID, enrollment.StudentID, enrollment.SectionID, enrollment.EnrollmentDate); err != nil {
		if isUniqueViolation(err) {
			err = ErrAlreadyEnrolled
			return nil, err
		}
		return nil, fmt.Errorf("insert enrollment: %w", err)
	}

	const countQuery = `UPDATE sections SET enrolled_count = enrolled_count + 1, updated_at = $2 WHERE id = $1`
	if _, err = tx.ExecContext(ctx, countQuery, sectionID, time.Now().UTC()); err != nil {
		return nil, fmt.Errorf("increment enrolled count: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit register transaction: %w", err)
	}
	return enrollment, nil
}

// Drop deletes the ledger row and decrements the seat counter in one
// transaction. The delete is the serialization point; no pre-read lock is
// needed because there is no ceiling to protect on the decrement path.
func (r *EnrollmentRepository) Drop(ctx context.Context, studentID, sectionID string) (err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin drop transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	const deleteQuery = `DELETE FROM enrollments WHERE student_id = $1 AND section_id = $2`
	res, err := tx.ExecContext(ctx, deleteQuery, studentID, sectionID)
	if err != nil {
		return fmt.Errorf("delete enrollment: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("inspect drop result: %w", err)
	}
	if affected == 0 {
		err = ErrNotEnrolled
		return err
	}

	const countQuery = `UPDATE sections SET enrolled_count = GREATEST(enrolled_count - 1, 0), updated_at = $2 WHERE id = $1`
	if _, err = tx.ExecContext(ctx, countQuery, sectionID, time.Now().UTC()); err != nil {
		return fmt.Errorf("decrement enrolled count: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit drop transaction: %w", err)
	}
	return nil
}

// ListByStudent returns a student's enrollments with course context.
func (r *EnrollmentRepository) ListByStudent(ctx context.Context, studentID string) ([]models.EnrollmentDetail, error) {
	const query = `SELECT e.id, e.student_id, e.section_id, e.enrollment_date,
        c.code AS course_code, c.title AS course_title, s.time_slot
        FROM enrollments e
        JOIN sections s ON s.id = e.section_id
        JOIN courses c ON c.id = s.course_id
        WHERE e.student_id = $1
        ORDER BY e.enrollment_date DESC`
	var enrollments []models.EnrollmentDetail
	if err := r.db.SelectContext(ctx, &enrollments, query, studentID); err != nil {
		return nil, fmt.Errorf("list student enrollments: %w", err)
	}
	return enrollments, nil
}

// CountBySection returns the number of ledger rows for a section.
func (r *EnrollmentRepository) CountBySection(ctx context.Context, sectionID string) (int, error) {
	const query = `SELECT COUNT(*) FROM enrollments WHERE section_id = $1`
	var count int
	if err := r.db.GetContext(ctx, &count, query, sectionID); err != nil {
		return 0, fmt.Errorf("count section enrollments: %w", err)
	}
	return count, nil
}

// Exists reports whether a ledger row exists for the pair.
func (r *EnrollmentRepository) Exists(ctx context.Context, studentID, sectionID string) (bool, error) {
	const query = `SELECT 1 FROM enrollments WHERE student_id = $1 AND section_id = $2 LIMIT 1`
	var one int
	if err := r.db.GetContext(ctx, &one, query, studentID, sectionID); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check enrollment: %w", err)
	}
	return true, nil
}
