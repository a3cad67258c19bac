package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campusworks/registrar-api/internal/models"
	appErrors "github.com/campusworks/registrar-api/pkg/errors"
)

type gradeRepoStub struct {
	upserted  []*models.GradeRecord
	upsertErr error
	record    *models.GradeRecord
	findErr   error
	rows      []models.TranscriptRow
	rowsErr   error
}

func (s *gradeRepoStub) Upsert(ctx context.Context, record *models.GradeRecord) error {
	s.upserted = append(s.upserted, record)
	return s.upsertErr
}

func (s *gradeRepoStub) FindByStudentAndSection(ctx context.Context, studentID, sectionID string) (*models.GradeRecord, error) {
	return s.record, s.findErr
}

func (s *gradeRepoStub) Transcript(ctx context.Context, studentID string) ([]models.TranscriptRow, error) {
	return s.rows, s.rowsErr
}

func TestGradeServiceRecordScores(t *testing.T) {
	repo := &gradeRepoStub{}
	svc := NewGradeService(repo, gateStub{}, nil, nil)

	record, err := svc.RecordScores(context.Background(), RecordScoresRequest{
		StudentID:    "stu-1",
		SectionID:    "sec-1",
		QuizScore:    80,
		MidtermScore: 85,
		FinalScore:   90,
	})
	require.NoError(t, err)
	// 80*0.20 + 85*0.30 + 90*0.50 = 86.5
	assert.InDelta(t, 86.5, record.WeightedScore, 0.001)
	assert.Equal(t, models.GradeB, record.FinalGrade)
	require.Len(t, repo.upserted, 1)
	assert.Equal(t, record, repo.upserted[0])
}

func TestGradeServiceRecordScoresBlockedByMaintenance(t *testing.T) {
	repo := &gradeRepoStub{}
	svc := NewGradeService(repo, gateStub{on: true}, nil, nil)

	_, err := svc.RecordScores(context.Background(), RecordScoresRequest{StudentID: "stu-1", SectionID: "sec-1"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrMaintenance.Code, appErrors.FromError(err).Code)
	assert.Empty(t, repo.upserted)
}

func TestGradeServiceRecordScoresValidation(t *testing.T) {
	repo := &gradeRepoStub{}
	svc := NewGradeService(repo, gateStub{}, nil, nil)

	_, err := svc.RecordScores(context.Background(), RecordScoresRequest{SectionID: "sec-1"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestLetterBands(t *testing.T) {
	cases := []struct {
		name     string
		weighted float64
		want     models.LetterGrade
	}{
		{"exactly ninety is an A", 90, models.GradeA},
		{"high score", 97.3, models.GradeA},
		{"exactly eighty is a B", 80, models.GradeB},
		{"mid seventies", 74.9, models.GradeC},
		{"exactly sixty is a D", 60, models.GradeD},
		{"just below sixty", 59.99, models.GradeF},
		{"zero", 0, models.GradeF},
		{"negative means not graded", -1, models.GradeUngraded},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, letterFor(tc.weighted))
		})
	}
}

func TestWeightedScore(t *testing.T) {
	assert.InDelta(t, 100, weightedScore(100, 100, 100), 0.001)
	assert.InDelta(t, 0, weightedScore(0, 0, 0), 0.001)
	assert.InDelta(t, 50, weightedScore(100, 100, 0), 0.001)
}

func TestGradeServiceGetMissing(t *testing.T) {
	repo := &gradeRepoStub{findErr: sql.ErrNoRows}
	svc := NewGradeService(repo, gateStub{}, nil, nil)

	_, err := svc.Get(context.Background(), "stu-1", "sec-1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestGradeServiceTranscript(t *testing.T) {
	repo := &gradeRepoStub{rows: []models.TranscriptRow{
		{CourseCode: "CS101", WeightedScore: 86.5, FinalGrade: models.GradeB},
	}}
	svc := NewGradeService(repo, gateStub{}, nil, nil)

	transcript, err := svc.Transcript(context.Background(), "stu-1")
	require.NoError(t, err)
	assert.Equal(t, "stu-1", transcript.StudentID)
	require.Len(t, transcript.Rows, 1)
	assert.Equal(t, "CS101", transcript.Rows[0].CourseCode)
}

func TestGradeServiceTranscriptDataset(t *testing.T) {
	repo := &gradeRepoStub{rows: []models.TranscriptRow{
		{CourseCode: "CS101", CourseTitle: "Intro to Computing", QuizScore: 80, MidtermScore: 85, FinalScore: 90, WeightedScore: 86.5, FinalGrade: models.GradeB},
	}}
	svc := NewGradeService(repo, gateStub{}, nil, nil)

	dataset, err := svc.TranscriptDataset(context.Background(), "stu-1")
	require.NoError(t, err)
	require.Len(t, dataset.Rows, 1)
	assert.Equal(t, "CS101", dataset.Rows[0]["Course"])
	assert.Equal(t, "86.50", dataset.Rows[0]["Weighted"])
	assert.Equal(t, "B", dataset.Rows[0]["Grade"])
}
