package service

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/campusworks/registrar-api/internal/models"
	appErrors "github.com/campusworks/registrar-api/pkg/errors"
	"github.com/campusworks/registrar-api/pkg/export"
)

// Component weights of the final score.
const (
	quizWeight    = 0.20
	midtermWeight = 0.30
	finalWeight   = 0.50
)

type gradeRepo interface {
	Upsert(ctx context.Context, record *models.GradeRecord) error
	FindByStudentAndSection(ctx context.Context, studentID, sectionID string) (*models.GradeRecord, error)
	Transcript(ctx context.Context, studentID string) ([]models.TranscriptRow, error)
}

// RecordScoresRequest carries the three component scores for a pair.
type RecordScoresRequest struct {
	StudentID    string  `json:"student_id" validate:"required"`
	SectionID    string  `json:"section_id" validate:"required"`
	QuizScore    float64 `json:"quiz_score"`
	MidtermScore float64 `json:"midterm_score"`
	FinalScore   float64 `json:"final_score"`
}

// GradeService converts weighted component scores into a letter grade and
// persists the result. Recomputation from identical inputs is deterministic;
// a second call for the same pair overwrites the first.
type GradeService struct {
	repo      gradeRepo
	gate      maintenanceGate
	validator *validator.Validate
	logger    *zap.Logger
}

// NewGradeService constructs GradeService.
func NewGradeService(repo gradeRepo, gate maintenanceGate, validate *validator.Validate, logger *zap.Logger) *GradeService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GradeService{repo: repo, gate: gate, validator: validate, logger: logger}
}

// RecordScores computes the weighted score and letter grade, then upserts
// the grade record. Blocked entirely when maintenance mode is on.
func (s *GradeService) RecordScores(ctx context.Context, req RecordScoresRequest) (*models.GradeRecord, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid grade payload")
	}
	on, err := s.gate.IsMaintenanceOn(ctx)
	if err != nil {
		return nil, err
	}
	if on {
		return nil, appErrors.ErrMaintenance
	}

	weighted := weightedScore(req.QuizScore, req.MidtermScore, req.FinalScore)
	record := &models.GradeRecord{
		StudentID:     req.StudentID,
		SectionID:     req.SectionID,
		QuizScore:     req.QuizScore,
		MidtermScore:  req.MidtermScore,
		FinalScore:    req.FinalScore,
		WeightedScore: weighted,
		FinalGrade:    letterFor(weighted),
	}
	if err := s.repo.Upsert(ctx, record); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist grade record")
	}
	s.logger.Info("scores recorded",
		zap.String("student_id", req.StudentID),
		zap.String("section_id", req.SectionID),
		zap.Float64("weighted", weighted),
		zap.String("grade", string(record.FinalGrade)))
	return record, nil
}

// Get returns the grade record for a pair.
func (s *GradeService) Get(ctx context.Context, studentID, sectionID string) (*models.GradeRecord, error) {
	record, err := s.repo.FindByStudentAndSection(ctx, studentID, sectionID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "grade record not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load grade record")
	}
	return record, nil
}

// Transcript returns a student's graded sections.
func (s *GradeService) Transcript(ctx context.Context, studentID string) (*models.Transcript, error) {
	rows, err := s.repo.Transcript(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load transcript")
	}
	return &models.Transcript{StudentID: studentID, Rows: rows}, nil
}

// TranscriptDataset renders the transcript as a tabular dataset for export.
func (s *GradeService) TranscriptDataset(ctx context.Context, studentID string) (export.Dataset, error) {
	transcript, err := s.Transcript(ctx, studentID)
	if err != nil {
		return export.Dataset{}, err
	}
	data := export.Dataset{
		Headers: []string{"Course", "Title", "Quiz", "Midterm", "Final", "Weighted", "Grade"},
	}
	for _, row := range transcript.Rows {
		data.Rows = append(data.Rows, map[string]string{
			"Course":   row.CourseCode,
			"Title":    row.CourseTitle,
			"Quiz":     fmt.Sprintf("%.1f", row.QuizScore),
			"Midterm":  fmt.Sprintf("%.1f", row.MidtermScore),
			"Final":    fmt.Sprintf("%.1f", row.FinalScore),
			"Weighted": fmt.Sprintf("%.2f", row.WeightedScore),
			"Grade":    string(row.FinalGrade),
		})
	}
	return data, nil
}

func weightedScore(quiz, midterm, final float64) float64 {
	return quiz*quizWeight + midterm*midtermWeight + final*finalWeight
}

// letterFor bands a weighted score into a letter grade. A negative weighted
// score means scores have not been entered; the check sits after the >= bands
// since a negative value cannot satisfy any of them.
func letterFor(weighted float64) models.LetterGrade {
	switch {
	case weighted >= 90:
		return models.GradeA
	case weighted >= 80:
		return models.GradeB
	case weighted >= 70:
		return models.GradeC
	case weighted >= 60:
		return models.GradeD
	case weighted < 0:
		return models.GradeUngraded
	default:
		return models.GradeF
	}
}
