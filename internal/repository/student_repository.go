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

// StudentRepository handles student profiles in the academic database.
type StudentRepository struct {
	db *sqlx.DB
}

// NewStudentRepository constructs the repository.
func NewStudentRepository(db *sqlx.DB) *StudentRepository {
	return &StudentRepository{db: db}
}

// CreateTx inserts a student profile inside an already-open academic
// transaction, used by the provisioning coordinator.
func (r *StudentRepository) CreateTx(ctx context.Context, tx *sqlx.Tx, profile *models.StudentProfile) error {
	if profile.ID == "" {
		profile.ID = uuid.NewString()
	}
	profile.CreatedAt = time.Now().UTC()
	const query = `INSERT INTO students (id, identity_id, full_name, email, created_at)
VALUES (:id, :identity_id, :full_name, :email, :created_at)`
	if _, err := tx.NamedExecContext(ctx, query, profile); err != nil {
		return fmt.Errorf("create student profile: %w", err)
	}
	return nil
}

// FindByIdentityID returns the profile linked to a credentials identity.
func (r *StudentRepository) FindByIdentityID(ctx context.Context, identityID string) (*models.StudentProfile, error) {
	const query = `SELECT id, identity_id, full_name, email, created_at FROM students WHERE identity_id = $1 LIMIT 1`
	var profile models.StudentProfile
	if err := r.db.GetContext(ctx, &profile, query, identityID); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find student by identity: %w", err)
	}
	return &profile, nil
}

// FindByID returns a student profile by identifier.
func (r *StudentRepository) FindByID(ctx context.Context, id string) (*models.StudentProfile, error) {
	const query = `SELECT id, identity_id, full_name, email, created_at FROM students WHERE id = $1 LIMIT 1`
	var profile models.StudentProfile
	if err := r.db.GetContext(ctx, &profile, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find student: %w", err)
	}
	return &profile, nil
}
