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

// InstructorRepository handles instructor profiles in the academic database.
type InstructorRepository struct {
	db *sqlx.DB
}

// NewInstructorRepository constructs the repository.
func NewInstructorRepository(db *sqlx.DB) *InstructorRepository {
	return &InstructorRepository{db: db}
}

// CreateTx inserts an instructor profile inside an already-open academic
// transaction, used by the provisioning coordinator.
func (r *InstructorRepository) CreateTx(ctx context.Context, tx *sqlx.Tx, profile *models.InstructorProfile) error {
	if profile.ID == "" {
		profile.ID = uuid.NewString()
	}
	profile.CreatedAt = time.Now().UTC()
	const query = `INSERT INTO instructors (id, identity_id, full_name, email, created_at)
VALUES (:id, :identity_id, :full_name, :email, :created_at)`
	if _, err := tx.NamedExecContext(ctx, query, profile); err != nil {
		return fmt.Errorf("create instructor profile: %w", err)
	}
	return nil
}

// List returns all instructor profiles ordered by name.
func (r *InstructorRepository) List(ctx context.Context) ([]models.InstructorProfile, error) {
	const query = `SELECT id, identity_id, full_name, email, created_at FROM instructors ORDER BY full_name ASC`
	var profiles []models.InstructorProfile
	if err := r.db.SelectContext(ctx, &profiles, query); err != nil {
		return nil, fmt.Errorf("list instructors: %w", err)
	}
	return profiles, nil
}

// FindByIdentityID returns the profile linked to a credentials identity.
func (r *InstructorRepository) FindByIdentityID(ctx context.Context, identityID string) (*models.InstructorProfile, error) {
	const query = `SELECT id, identity_id, full_name, email, created_at FROM instructors WHERE identity_id = $1 LIMIT 1`
	var profile models.InstructorProfile
	if err := r.db.GetContext(ctx, &profile, query, identityID); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find instructor by identity: %w", err)
	}
	return &profile, nil
}
