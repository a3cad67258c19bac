package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campusworks/registrar-api/internal/models"
	"github.com/campusworks/registrar-api/internal/repository"
	appErrors "github.com/campusworks/registrar-api/pkg/errors"
)

type enrollmentRepoStub struct {
	enrollment    *models.Enrollment
	registerErr   error
	dropErr       error
	details       []models.EnrollmentDetail
	listErr       error
	registerCalls int
	dropCalls     int
}

func (s *enrollmentRepoStub) Register(ctx context.Context, studentID, sectionID string) (*models.Enrollment, error) {
	s.registerCalls++
	return s.enrollment, s.registerErr
}

func (s *enrollmentRepoStub) Drop(ctx context.Context, studentID, sectionID string) error {
	s.dropCalls++
	return s.dropErr
}

func (s *enrollmentRepoStub) ListByStudent(ctx context.Context, studentID string) ([]models.EnrollmentDetail, error) {
	return s.details, s.listErr
}

type gateStub struct {
	on  bool
	err error
}

func (s gateStub) IsMaintenanceOn(ctx context.Context) (bool, error) {
	return s.on, s.err
}

func TestEnrollmentServiceRegister(t *testing.T) {
	repo := &enrollmentRepoStub{enrollment: &models.Enrollment{ID: "enr-1", StudentID: "stu-1", SectionID: "sec-1"}}
	svc := NewEnrollmentService(repo, gateStub{}, nil, nil)

	enrollment, err := svc.Register(context.Background(), RegisterRequest{StudentID: "stu-1", SectionID: "sec-1"})
	require.NoError(t, err)
	assert.Equal(t, "enr-1", enrollment.ID)
	assert.Equal(t, 1, repo.registerCalls)
}

func TestEnrollmentServiceRegisterValidation(t *testing.T) {
	repo := &enrollmentRepoStub{}
	svc := NewEnrollmentService(repo, gateStub{}, nil, nil)

	_, err := svc.Register(context.Background(), RegisterRequest{StudentID: "stu-1"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
	assert.Zero(t, repo.registerCalls)
}

func TestEnrollmentServiceRegisterBlockedByMaintenance(t *testing.T) {
	repo := &enrollmentRepoStub{}
	svc := NewEnrollmentService(repo, gateStub{on: true}, nil, nil)

	_, err := svc.Register(context.Background(), RegisterRequest{StudentID: "stu-1", SectionID: "sec-1"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrMaintenance.Code, appErrors.FromError(err).Code)
	assert.Zero(t, repo.registerCalls, "the store must not be touched while maintenance is on")
}

func TestEnrollmentServiceRegisterSectionFull(t *testing.T) {
	repo := &enrollmentRepoStub{registerErr: repository.ErrSectionFull}
	svc := NewEnrollmentService(repo, gateStub{}, nil, nil)

	_, err := svc.Register(context.Background(), RegisterRequest{StudentID: "stu-1", SectionID: "sec-1"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrSectionFull.Code, appErrors.FromError(err).Code)
}

func TestEnrollmentServiceRegisterDuplicate(t *testing.T) {
	repo := &enrollmentRepoStub{registerErr: repository.ErrAlreadyEnrolled}
	svc := NewEnrollmentService(repo, gateStub{}, nil, nil)

	_, err := svc.Register(context.Background(), RegisterRequest{StudentID: "stu-1", SectionID: "sec-1"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrDuplicateEnrollment.Code, appErrors.FromError(err).Code)
}

func TestEnrollmentServiceRegisterSectionMissing(t *testing.T) {
	repo := &enrollmentRepoStub{registerErr: repository.ErrSectionNotFound}
	svc := NewEnrollmentService(repo, gateStub{}, nil, nil)

	_, err := svc.Register(context.Background(), RegisterRequest{StudentID: "stu-1", SectionID: "sec-9"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestEnrollmentServiceRegisterStoreFailure(t *testing.T) {
	repo := &enrollmentRepoStub{registerErr: errors.New("connection reset")}
	svc := NewEnrollmentService(repo, gateStub{}, nil, nil)

	_, err := svc.Register(context.Background(), RegisterRequest{StudentID: "stu-1", SectionID: "sec-1"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInternal.Code, appErrors.FromError(err).Code)
}

func TestEnrollmentServiceDrop(t *testing.T) {
	repo := &enrollmentRepoStub{}
	svc := NewEnrollmentService(repo, gateStub{}, nil, nil)

	err := svc.Drop(context.Background(), DropRequest{StudentID: "stu-1", SectionID: "sec-1"})
	require.NoError(t, err)
	assert.Equal(t, 1, repo.dropCalls)
}

func TestEnrollmentServiceDropNotEnrolled(t *testing.T) {
	repo := &enrollmentRepoStub{dropErr: repository.ErrNotEnrolled}
	svc := NewEnrollmentService(repo, gateStub{}, nil, nil)

	err := svc.Drop(context.Background(), DropRequest{StudentID: "stu-1", SectionID: "sec-1"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotEnrolled.Code, appErrors.FromError(err).Code)
}

func TestEnrollmentServiceDropBlockedByMaintenance(t *testing.T) {
	repo := &enrollmentRepoStub{}
	svc := NewEnrollmentService(repo, gateStub{on: true}, nil, nil)

	err := svc.Drop(context.Background(), DropRequest{StudentID: "stu-1", SectionID: "sec-1"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrMaintenance.Code, appErrors.FromError(err).Code)
	assert.Zero(t, repo.dropCalls)
}

// sectionLedgerStub keeps the seat counter and ledger rows in lockstep the way
// the store does, so sequences of calls exercise the counter bookkeeping.
type sectionLedgerStub struct {
	capacity int
	enrolled int
	members  map[string]bool
}

func newSectionLedgerStub(capacity int) *sectionLedgerStub {
	return &sectionLedgerStub{capacity: capacity, members: make(map[string]bool)}
}

func (s *sectionLedgerStub) Register(ctx context.Context, studentID, sectionID string) (*models.Enrollment, error) {
	if s.enrolled >= s.capacity {
		return nil, repository.ErrSectionFull
	}
	if s.members[studentID] {
		return nil, repository.ErrAlreadyEnrolled
	}
	s.members[studentID] = true
	s.enrolled++
	return &models.Enrollment{ID: "enr-" + studentID, StudentID: studentID, SectionID: sectionID}, nil
}

func (s *sectionLedgerStub) Drop(ctx context.Context, studentID, sectionID string) error {
	if !s.members[studentID] {
		return repository.ErrNotEnrolled
	}
	delete(s.members, studentID)
	s.enrolled--
	return nil
}

func (s *sectionLedgerStub) ListByStudent(ctx context.Context, studentID string) ([]models.EnrollmentDetail, error) {
	return nil, nil
}

func TestEnrollmentServiceRegisterDropRegisterAgain(t *testing.T) {
	ledger := newSectionLedgerStub(1)
	svc := NewEnrollmentService(ledger, gateStub{}, nil, nil)
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterRequest{StudentID: "stu-1", SectionID: "sec-1"})
	require.NoError(t, err)
	assert.Equal(t, 1, ledger.enrolled)

	_, err = svc.Register(ctx, RegisterRequest{StudentID: "stu-2", SectionID: "sec-1"})
	require.Error(t, err, "section of one seat is full after the first registration")
	assert.Equal(t, appErrors.ErrSectionFull.Code, appErrors.FromError(err).Code)

	require.NoError(t, svc.Drop(ctx, DropRequest{StudentID: "stu-1", SectionID: "sec-1"}))
	assert.Equal(t, 0, ledger.enrolled, "drop must return the seat")

	enrollment, err := svc.Register(ctx, RegisterRequest{StudentID: "stu-1", SectionID: "sec-1"})
	require.NoError(t, err, "re-registering after a drop must succeed")
	assert.Equal(t, "stu-1", enrollment.StudentID)
	assert.Equal(t, 1, ledger.enrolled, "counter ends where a single registration would leave it")
}

func TestEnrollmentServiceListByStudent(t *testing.T) {
	repo := &enrollmentRepoStub{details: []models.EnrollmentDetail{{CourseCode: "CS101"}}}
	svc := NewEnrollmentService(repo, gateStub{}, nil, nil)

	items, err := svc.ListByStudent(context.Background(), "stu-1")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "CS101", items[0].CourseCode)
}
