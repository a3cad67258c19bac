package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campusworks/registrar-api/internal/middleware"
	"github.com/campusworks/registrar-api/internal/models"
	"github.com/campusworks/registrar-api/internal/repository"
	"github.com/campusworks/registrar-api/internal/service"
)

type enrollmentStoreMock struct {
	enrollment  *models.Enrollment
	registerErr error
	dropErr     error
}

func (m *enrollmentStoreMock) Register(ctx context.Context, studentID, sectionID string) (*models.Enrollment, error) {
	return m.enrollment, m.registerErr
}

func (m *enrollmentStoreMock) Drop(ctx context.Context, studentID, sectionID string) error {
	return m.dropErr
}

func (m *enrollmentStoreMock) ListByStudent(ctx context.Context, studentID string) ([]models.EnrollmentDetail, error) {
	return nil, nil
}

type gateMock struct {
	on bool
}

func (m gateMock) IsMaintenanceOn(ctx context.Context) (bool, error) {
	return m.on, nil
}

func newEnrollmentHandlerTest(store *enrollmentStoreMock, gate gateMock) *EnrollmentHandler {
	svc := service.NewEnrollmentService(store, gate, nil, nil)
	return NewEnrollmentHandler(svc, service.NewMetricsService())
}

func postEnrollment(t *testing.T, h *EnrollmentHandler, claims *models.JWTClaims, payload interface{}) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	body, err := json.Marshal(payload)
	require.NoError(t, err)
	req, _ := http.NewRequest(http.MethodPost, "/enrollments", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	if claims != nil {
		c.Set(middleware.ContextUserKey, claims)
	}
	h.Register(c)
	return w
}

func TestEnrollmentHandlerRegister(t *testing.T) {
	store := &enrollmentStoreMock{enrollment: &models.Enrollment{ID: "enr-1", StudentID: "stu-1", SectionID: "sec-1"}}
	h := newEnrollmentHandlerTest(store, gateMock{})

	w := postEnrollment(t, h, &models.JWTClaims{UserID: "stu-1", Role: models.RoleStudent},
		service.RegisterRequest{StudentID: "stu-1", SectionID: "sec-1"})
	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestEnrollmentHandlerRegisterForOtherStudent(t *testing.T) {
	store := &enrollmentStoreMock{}
	h := newEnrollmentHandlerTest(store, gateMock{})

	w := postEnrollment(t, h, &models.JWTClaims{UserID: "stu-2", Role: models.RoleStudent},
		service.RegisterRequest{StudentID: "stu-1", SectionID: "sec-1"})
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestEnrollmentHandlerRegisterAsAdminForStudent(t *testing.T) {
	store := &enrollmentStoreMock{enrollment: &models.Enrollment{ID: "enr-1", StudentID: "stu-1", SectionID: "sec-1"}}
	h := newEnrollmentHandlerTest(store, gateMock{})

	w := postEnrollment(t, h, &models.JWTClaims{UserID: "admin-1", Role: models.RoleAdmin},
		service.RegisterRequest{StudentID: "stu-1", SectionID: "sec-1"})
	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestEnrollmentHandlerRegisterSectionFull(t *testing.T) {
	store := &enrollmentStoreMock{registerErr: repository.ErrSectionFull}
	h := newEnrollmentHandlerTest(store, gateMock{})

	w := postEnrollment(t, h, &models.JWTClaims{UserID: "stu-1", Role: models.RoleStudent},
		service.RegisterRequest{StudentID: "stu-1", SectionID: "sec-1"})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "SECTION_FULL")
}

func TestEnrollmentHandlerRegisterMaintenance(t *testing.T) {
	store := &enrollmentStoreMock{}
	h := newEnrollmentHandlerTest(store, gateMock{on: true})

	w := postEnrollment(t, h, &models.JWTClaims{UserID: "stu-1", Role: models.RoleStudent},
		service.RegisterRequest{StudentID: "stu-1", SectionID: "sec-1"})
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "MAINTENANCE_MODE")
}

func TestEnrollmentHandlerRegisterInvalidBody(t *testing.T) {
	h := newEnrollmentHandlerTest(&enrollmentStoreMock{}, gateMock{})

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/enrollments", bytes.NewReader([]byte(`not json`)))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	h.Register(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestEnrollmentHandlerDrop(t *testing.T) {
	store := &enrollmentStoreMock{}
	h := newEnrollmentHandlerTest(store, gateMock{})

	// Routed through an engine so the 204 status, which carries no body to
	// flush it, is actually written to the recorder.
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.DELETE("/enrollments", func(c *gin.Context) {
		c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "stu-1", Role: models.RoleStudent})
		h.Drop(c)
	})

	body, _ := json.Marshal(service.DropRequest{StudentID: "stu-1", SectionID: "sec-1"})
	req, _ := http.NewRequest(http.MethodDelete, "/enrollments", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
}
