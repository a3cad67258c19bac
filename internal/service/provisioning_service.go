package service

import (
	"context"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/campusworks/registrar-api/internal/models"
	"github.com/campusworks/registrar-api/internal/repository"
	appErrors "github.com/campusworks/registrar-api/pkg/errors"
)

type provisioningStore interface {
	CreateUserWithProfile(ctx context.Context, insertIdentity func(ctx context.Context, tx *sqlx.Tx) error, insertProfile repository.ProfileInserter) error
	ProfiledIdentityIDs(ctx context.Context) (map[string]bool, error)
}

type identityWriter interface {
	CreateTx(ctx context.Context, tx *sqlx.Tx, user *models.User) error
	ListProvisionable(ctx context.Context) ([]models.User, error)
}

type studentProfileWriter interface {
	CreateTx(ctx context.Context, tx *sqlx.Tx, profile *models.StudentProfile) error
}

type instructorProfileWriter interface {
	CreateTx(ctx context.Context, tx *sqlx.Tx, profile *models.InstructorProfile) error
}

// ProfileCreator writes the role-specific academic profile for a new
// identity inside the coordinator's academic transaction.
type ProfileCreator interface {
	Create(ctx context.Context, tx *sqlx.Tx, identity *models.User) error
}

// StudentProfileCreator creates student profiles.
type StudentProfileCreator struct {
	students studentProfileWriter
}

// NewStudentProfileCreator constructs the creator.
func NewStudentProfileCreator(students studentProfileWriter) *StudentProfileCreator {
	return &StudentProfileCreator{students: students}
}

// Create writes the student profile row.
func (c *StudentProfileCreator) Create(ctx context.Context, tx *sqlx.Tx, identity *models.User) error {
	return c.students.CreateTx(ctx, tx, &models.StudentProfile{
		IdentityID: identity.ID,
		FullName:   identity.FullName,
		Email:      identity.Email,
	})
}

// InstructorProfileCreator creates instructor profiles.
type InstructorProfileCreator struct {
	instructors instructorProfileWriter
}

// NewInstructorProfileCreator constructs the creator.
func NewInstructorProfileCreator(instructors instructorProfileWriter) *InstructorProfileCreator {
	return &InstructorProfileCreator{instructors: instructors}
}

// Create writes the instructor profile row.
func (c *InstructorProfileCreator) Create(ctx context.Context, tx *sqlx.Tx, identity *models.User) error {
	return c.instructors.CreateTx(ctx, tx, &models.InstructorProfile{
		IdentityID: identity.ID,
		FullName:   identity.FullName,
		Email:      identity.Email,
	})
}

// CreateUserRequest carries the provisioning payload.
type CreateUserRequest struct {
	FullName        string          `json:"full_name" validate:"required"`
	Email           string          `json:"email" validate:"required,email"`
	Role            models.UserRole `json:"role" validate:"required"`
	InitialPassword string          `json:"initial_password" validate:"required,min=8"`
}

// ProvisioningService creates accounts spanning the credentials and academic
// stores as one logical operation with compensating rollback. It does not
// promise true cross-store atomicity; the crash window between the two
// commits is surfaced through Reconcile.
type ProvisioningService struct {
	store     provisioningStore
	users     identityWriter
	creators  map[models.UserRole]ProfileCreator
	validator *validator.Validate
	logger    *zap.Logger
}

// NewProvisioningService constructs ProvisioningService. ADMIN identities
// have no academic profile and intentionally have no creator entry.
func NewProvisioningService(store provisioningStore, users identityWriter, students studentProfileWriter, instructors instructorProfileWriter, validate *validator.Validate, logger *zap.Logger) *ProvisioningService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProvisioningService{
		store: store,
		users: users,
		creators: map[models.UserRole]ProfileCreator{
			models.RoleStudent:    NewStudentProfileCreator(students),
			models.RoleInstructor: NewInstructorProfileCreator(instructors),
		},
		validator: validate,
		logger:    logger,
	}
}

// CreateUser validates the request, then runs the two-store commit. On any
// failure both transactions are rolled back and no identity id is returned.
func (s *ProvisioningService) CreateUser(ctx context.Context, req CreateUserRequest) (*models.User, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid provisioning payload")
	}
	if !req.Role.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unrecognized role")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.InitialPassword), bcrypt.DefaultCost)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash password")
	}

	user := &models.User{
		Email:        req.Email,
		PasswordHash: string(hash),
		FullName:     req.FullName,
		Role:         req.Role,
		Active:       true,
	}

	insertIdentity := func(ctx context.Context, tx *sqlx.Tx) error {
		return s.users.CreateTx(ctx, tx, user)
	}

	var insertProfile repository.ProfileInserter
	if creator, ok := s.creators[req.Role]; ok {
		insertProfile = func(ctx context.Context, tx *sqlx.Tx) error {
			return creator.Create(ctx, tx, user)
		}
	}

	if err := s.store.CreateUserWithProfile(ctx, insertIdentity, insertProfile); err != nil {
		s.logger.Error("provisioning failed",
			zap.String("email", req.Email),
			zap.String("role", string(req.Role)),
			zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrProvisioningFailed.Code, appErrors.ErrProvisioningFailed.Status, "account provisioning failed")
	}

	s.logger.Info("user provisioned",
		zap.String("identity_id", user.ID),
		zap.String("role", string(req.Role)))
	return user, nil
}

// Reconcile lists identities committed to the credentials store that have no
// matching academic profile. Such rows can exist after a crash between the
// two store commits.
func (s *ProvisioningService) Reconcile(ctx context.Context) ([]models.OrphanedIdentity, error) {
	identities, err := s.users.ListProvisionable(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list identities")
	}
	profiled, err := s.store.ProfiledIdentityIDs(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list profiles")
	}

	orphans := make([]models.OrphanedIdentity, 0)
	for _, identity := range identities {
		if !profiled[identity.ID] {
			orphans = append(orphans, models.OrphanedIdentity{
				IdentityID: identity.ID,
				Email:      identity.Email,
				Role:       identity.Role,
				CreatedAt:  identity.CreatedAt,
			})
		}
	}
	return orphans, nil
}
