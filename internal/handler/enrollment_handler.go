package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/campusworks/registrar-api/internal/models"
	"github.com/campusworks/registrar-api/internal/service"
	appErrors "github.com/campusworks/registrar-api/pkg/errors"
	"github.com/campusworks/registrar-api/pkg/response"
)

// EnrollmentHandler exposes registration endpoints.
type EnrollmentHandler struct {
	enrollments *service.EnrollmentService
	metrics     *service.MetricsService
}

// NewEnrollmentHandler constructs EnrollmentHandler.
func NewEnrollmentHandler(enrollments *service.EnrollmentService, metrics *service.MetricsService) *EnrollmentHandler {
	return &EnrollmentHandler{enrollments: enrollments, metrics: metrics}
}

// Register godoc
// @Summary Register a student into a section
// @Tags Enrollments
// @Accept json
// @Produce json
// @Param payload body service.RegisterRequest true "Registration payload"
// @Success 201 {object} response.Envelope
// @Router /enrollments [post]
func (h *EnrollmentHandler) Register(c *gin.Context) {
	var req service.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid request body"))
		return
	}

	// Students may only register themselves.
	claims := claimsFromContext(c)
	if claims != nil && claims.Role == models.RoleStudent && claims.UserID != req.StudentID {
		response.Error(c, appErrors.ErrForbidden)
		return
	}

	enrollment, err := h.enrollments.Register(c.Request.Context(), req)
	if err != nil {
		h.observe(err)
		response.Error(c, err)
		return
	}
	h.metrics.ObserveRegistration("success")
	response.Created(c, enrollment)
}

// Drop godoc
// @Summary Drop a student's enrollment
// @Tags Enrollments
// @Accept json
// @Produce json
// @Param payload body service.DropRequest true "Drop payload"
// @Success 204
// @Router /enrollments [delete]
func (h *EnrollmentHandler) Drop(c *gin.Context) {
	var req service.DropRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid request body"))
		return
	}

	claims := claimsFromContext(c)
	if claims != nil && claims.Role == models.RoleStudent && claims.UserID != req.StudentID {
		response.Error(c, appErrors.ErrForbidden)
		return
	}

	if err := h.enrollments.Drop(c.Request.Context(), req); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// ListByStudent godoc
// @Summary List a student's enrollments
// @Tags Enrollments
// @Produce json
// @Param id path string true "Student identity id"
// @Success 200 {object} response.Envelope
// @Router /students/{id}/enrollments [get]
func (h *EnrollmentHandler) ListByStudent(c *gin.Context) {
	studentID := c.Param("id")
	enrollments, err := h.enrollments.ListByStudent(c.Request.Context(), studentID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, enrollments, nil)
}

func (h *EnrollmentHandler) observe(err error) {
	appErr := appErrors.FromError(err)
	switch appErr.Code {
	case appErrors.ErrSectionFull.Code:
		h.metrics.ObserveRegistration("full")
	case appErrors.ErrDuplicateEnrollment.Code:
		h.metrics.ObserveRegistration("duplicate")
	case appErrors.ErrMaintenance.Code:
		h.metrics.ObserveRegistration("maintenance")
	default:
		h.metrics.ObserveRegistration("error")
	}
}
