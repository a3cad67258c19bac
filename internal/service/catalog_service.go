package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/campusworks/registrar-api/internal/models"
	appErrors "github.com/campusworks/registrar-api/pkg/errors"
)

type courseRepo interface {
	List(ctx context.Context) ([]models.Course, error)
	FindByID(ctx context.Context, id string) (*models.Course, error)
	Create(ctx context.Context, course *models.Course) error
}

type sectionRepo interface {
	ListByCourse(ctx context.Context, courseID string) ([]models.SectionDetail, error)
	FindByID(ctx context.Context, id string) (*models.Section, error)
	Create(ctx context.Context, section *models.Section) error
}

type instructorReader interface {
	List(ctx context.Context) ([]models.InstructorProfile, error)
}

type catalogCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	DeleteByPattern(ctx context.Context, pattern string) error
}

// CreateCourseRequest describes a course creation payload.
type CreateCourseRequest struct {
	Code        string  `json:"code" validate:"required"`
	Title       string  `json:"title" validate:"required"`
	Credits     int     `json:"credits" validate:"required,min=1"`
	Description *string `json:"description"`
}

// CreateSectionRequest describes a section creation payload.
type CreateSectionRequest struct {
	CourseID     string  `json:"course_id" validate:"required"`
	InstructorID *string `json:"instructor_id"`
	TimeSlot     string  `json:"time_slot" validate:"required"`
	Capacity     int     `json:"capacity" validate:"min=0"`
}

// CatalogService serves read-mostly catalog data with a redis cache in
// front of the listing queries. Listings are plain reads with no
// concurrency contract; cache entries are invalidated on catalog mutation.
type CatalogService struct {
	courses     courseRepo
	sections    sectionRepo
	instructors instructorReader
	cache       catalogCache
	cacheTTL    time.Duration
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewCatalogService constructs CatalogService.
func NewCatalogService(courses courseRepo, sections sectionRepo, instructors instructorReader, cache catalogCache, cacheTTL time.Duration, validate *validator.Validate, logger *zap.Logger) *CatalogService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CatalogService{
		courses:     courses,
		sections:    sections,
		instructors: instructors,
		cache:       cache,
		cacheTTL:    cacheTTL,
		validator:   validate,
		logger:      logger,
	}
}

// ListCourses returns the course catalog.
func (s *CatalogService) ListCourses(ctx context.Context) ([]models.Course, error) {
	const key = "catalog:courses"
	var cached []models.Course
	if err := s.cache.Get(ctx, key, &cached); err == nil {
		return cached, nil
	} else if !errors.Is(err, appErrors.ErrCacheMiss) {
		s.logger.Warn("course cache read failed", zap.Error(err))
	}

	courses, err := s.courses.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list courses")
	}
	if err := s.cache.Set(ctx, key, courses, s.cacheTTL); err != nil {
		s.logger.Warn("course cache write failed", zap.Error(err))
	}
	return courses, nil
}

// ListSections returns the sections of a course with seat availability.
func (s *CatalogService) ListSections(ctx context.Context, courseID string) ([]models.SectionDetail, error) {
	if _, err := s.courses.FindByID(ctx, courseID); err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
	}

	// Seat counts change on every registration; section listings are served
	// fresh rather than cached so availability is not stale.
	sections, err := s.sections.ListByCourse(ctx, courseID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list sections")
	}
	return sections, nil
}

// ListInstructors returns all instructor profiles.
func (s *CatalogService) ListInstructors(ctx context.Context) ([]models.InstructorProfile, error) {
	const key = "catalog:instructors"
	var cached []models.InstructorProfile
	if err := s.cache.Get(ctx, key, &cached); err == nil {
		return cached, nil
	} else if !errors.Is(err, appErrors.ErrCacheMiss) {
		s.logger.Warn("instructor cache read failed", zap.Error(err))
	}

	instructors, err := s.instructors.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list instructors")
	}
	if err := s.cache.Set(ctx, key, instructors, s.cacheTTL); err != nil {
		s.logger.Warn("instructor cache write failed", zap.Error(err))
	}
	return instructors, nil
}

// CreateCourse adds a catalog course and invalidates course listings.
func (s *CatalogService) CreateCourse(ctx context.Context, req CreateCourseRequest) (*models.Course, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid course payload")
	}
	course := &models.Course{Code: req.Code, Title: req.Title, Credits: req.Credits, Description: req.Description}
	if err := s.courses.Create(ctx, course); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create course")
	}
	s.invalidate(ctx, "catalog:courses*")
	return course, nil
}

// CreateSection schedules a new section with an empty roster.
func (s *CatalogService) CreateSection(ctx context.Context, req CreateSectionRequest) (*models.Section, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid section payload")
	}
	if _, err := s.courses.FindByID(ctx, req.CourseID); err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
	}
	section := &models.Section{
		CourseID:     req.CourseID,
		InstructorID: req.InstructorID,
		TimeSlot:     req.TimeSlot,
		Capacity:     req.Capacity,
	}
	if err := s.sections.Create(ctx, section); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create section")
	}
	s.invalidate(ctx, fmt.Sprintf("catalog:sections:%s*", req.CourseID))
	return section, nil
}

// GetSection returns a single section.
func (s *CatalogService) GetSection(ctx context.Context, id string) (*models.Section, error) {
	section, err := s.sections.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "section not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load section")
	}
	return section, nil
}

func (s *CatalogService) invalidate(ctx context.Context, pattern string) {
	if err := s.cache.DeleteByPattern(ctx, pattern); err != nil {
		s.logger.Warn("cache invalidation failed", zap.String("pattern", pattern), zap.Error(err))
	}
}
