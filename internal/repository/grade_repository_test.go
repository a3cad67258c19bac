package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campusworks/registrar-api/internal/models"
)

func newGradeRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	sqlxDB := sqlx.NewDb(db, "postgres")
	cleanup := func() {
		_ = sqlxDB.Close()
		db.Close()
	}
	return sqlxDB, mock, cleanup
}

func TestGradeRepositoryUpsert(t *testing.T) {
	db, mock, cleanup := newGradeRepoMock(t)
	defer cleanup()
	repo := NewGradeRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO grade_records")).
		WillReturnResult(sqlmock.NewResult(1, 1))

	record := &models.GradeRecord{
		StudentID:     "stu-1",
		SectionID:     "sec-1",
		QuizScore:     80,
		MidtermScore:  85,
		FinalScore:    90,
		WeightedScore: 86.5,
		FinalGrade:    models.GradeB,
	}
	err := repo.Upsert(context.Background(), record)
	require.NoError(t, err)
	assert.NotEmpty(t, record.ID)
	assert.False(t, record.UpdatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGradeRepositoryUpsertKeepsExistingID(t *testing.T) {
	db, mock, cleanup := newGradeRepoMock(t)
	defer cleanup()
	repo := NewGradeRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO grade_records")).
		WillReturnResult(sqlmock.NewResult(1, 1))

	record := &models.GradeRecord{ID: "grade-1", StudentID: "stu-1", SectionID: "sec-1"}
	err := repo.Upsert(context.Background(), record)
	require.NoError(t, err)
	assert.Equal(t, "grade-1", record.ID)
}

func TestGradeRepositoryFindByStudentAndSection(t *testing.T) {
	db, mock, cleanup := newGradeRepoMock(t)
	defer cleanup()
	repo := NewGradeRepository(db)

	rows := sqlmock.NewRows([]string{"id", "student_id", "section_id", "quiz_score", "midterm_score", "final_score", "weighted_score", "final_grade", "updated_at"}).
		AddRow("grade-1", "stu-1", "sec-1", 90.0, 90.0, 90.0, 90.0, "A", time.Now().UTC())
	mock.ExpectQuery(regexp.QuoteMeta("FROM grade_records WHERE student_id = $1 AND section_id = $2")).
		WithArgs("stu-1", "sec-1").
		WillReturnRows(rows)

	record, err := repo.FindByStudentAndSection(context.Background(), "stu-1", "sec-1")
	require.NoError(t, err)
	assert.Equal(t, models.GradeA, record.FinalGrade)
	assert.InDelta(t, 90.0, record.WeightedScore, 0.001)
}

func TestGradeRepositoryFindMissing(t *testing.T) {
	db, mock, cleanup := newGradeRepoMock(t)
	defer cleanup()
	repo := NewGradeRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM grade_records")).
		WithArgs("stu-1", "sec-9").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByStudentAndSection(context.Background(), "stu-1", "sec-9")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestGradeRepositoryTranscript(t *testing.T) {
	db, mock, cleanup := newGradeRepoMock(t)
	defer cleanup()
	repo := NewGradeRepository(db)

	rows := sqlmock.NewRows([]string{"section_id", "course_code", "course_title", "quiz_score", "midterm_score", "final_score", "weighted_score", "final_grade"}).
		AddRow("sec-1", "CS101", "Intro to Computing", 80.0, 85.0, 90.0, 86.5, "B").
		AddRow("sec-2", "MA201", "Linear Algebra", 95.0, 92.0, 94.0, 93.6, "A")
	mock.ExpectQuery(regexp.QuoteMeta("FROM grade_records g")).
		WithArgs("stu-1").
		WillReturnRows(rows)

	transcript, err := repo.Transcript(context.Background(), "stu-1")
	require.NoError(t, err)
	require.Len(t, transcript, 2)
	assert.Equal(t, "CS101", transcript[0].CourseCode)
	assert.Equal(t, models.GradeA, transcript[1].FinalGrade)
}
