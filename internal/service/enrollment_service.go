package service

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/campusworks/registrar-api/internal/models"
	"github.com/campusworks/registrar-api/internal/repository"
	appErrors "github.com/campusworks/registrar-api/pkg/errors"
)

type enrollmentRepo interface {
	Register(ctx context.Context, studentID, sectionID string) (*models.Enrollment, error)
	Drop(ctx context.Context, studentID, sectionID string) error
	ListByStudent(ctx context.Context, studentID string) ([]models.EnrollmentDetail, error)
}

type maintenanceGate interface {
	IsMaintenanceOn(ctx context.Context) (bool, error)
}

// RegisterRequest describes a seat registration payload.
type RegisterRequest struct {
	StudentID string `json:"student_id" validate:"required"`
	SectionID string `json:"section_id" validate:"required"`
}

// DropRequest describes a drop payload.
type DropRequest struct {
	StudentID string `json:"student_id" validate:"required"`
	SectionID string `json:"section_id" validate:"required"`
}

// EnrollmentService orchestrates capacity-checked registration and drops.
// The service holds no state between calls; serialization happens in the
// store through the exclusive section row lock.
type EnrollmentService struct {
	repo      enrollmentRepo
	gate      maintenanceGate
	validator *validator.Validate
	logger    *zap.Logger
}

// NewEnrollmentService constructs EnrollmentService.
func NewEnrollmentService(repo enrollmentRepo, gate maintenanceGate, validate *validator.Validate, logger *zap.Logger) *EnrollmentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EnrollmentService{repo: repo, gate: gate, validator: validate, logger: logger}
}

// Register enrolls a student into a section if a seat is available. The
// maintenance gate is consulted before any transaction is opened; when it is
// on the call short-circuits without touching section state.
func (s *EnrollmentService) Register(ctx context.Context, req RegisterRequest) (*models.Enrollment, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid registration payload")
	}
	if err := s.checkGate(ctx); err != nil {
		return nil, err
	}

	enrollment, err := s.repo.Register(ctx, req.StudentID, req.SectionID)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrSectionNotFound):
			return nil, appErrors.Clone(appErrors.ErrNotFound, "section not found")
		case errors.Is(err, repository.ErrSectionFull):
			return nil, appErrors.ErrSectionFull
		case errors.Is(err, repository.ErrAlreadyEnrolled):
			return nil, appErrors.ErrDuplicateEnrollment
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to register enrollment")
	}
	s.logger.Info("student registered",
		zap.String("student_id", req.StudentID),
		zap.String("section_id", req.SectionID))
	return enrollment, nil
}

// Drop removes a student's enrollment and frees the seat.
func (s *EnrollmentService) Drop(ctx context.Context, req DropRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid drop payload")
	}
	if err := s.checkGate(ctx); err != nil {
		return err
	}

	if err := s.repo.Drop(ctx, req.StudentID, req.SectionID); err != nil {
		if errors.Is(err, repository.ErrNotEnrolled) {
			return appErrors.ErrNotEnrolled
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to drop enrollment")
	}
	s.logger.Info("student dropped",
		zap.String("student_id", req.StudentID),
		zap.String("section_id", req.SectionID))
	return nil
}

// ListByStudent returns a student's current enrollments.
func (s *EnrollmentService) ListByStudent(ctx context.Context, studentID string) ([]models.EnrollmentDetail, error) {
	enrollments, err := s.repo.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list enrollments")
	}
	return enrollments, nil
}

func (s *EnrollmentService) checkGate(ctx context.Context) error {
	on, err := s.gate.IsMaintenanceOn(ctx)
	if err != nil {
		return err
	}
	if on {
		return appErrors.ErrMaintenance
	}
	return nil
}
