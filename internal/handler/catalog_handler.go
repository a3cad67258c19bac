package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/campusworks/registrar-api/internal/service"
	appErrors "github.com/campusworks/registrar-api/pkg/errors"
	"github.com/campusworks/registrar-api/pkg/response"
)

// CatalogHandler exposes course, section and instructor catalog endpoints.
type CatalogHandler struct {
	catalog *service.CatalogService
}

// NewCatalogHandler constructs CatalogHandler.
func NewCatalogHandler(catalog *service.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalog: catalog}
}

// ListCourses godoc
// @Summary List the course catalog
// @Tags Catalog
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /courses [get]
func (h *CatalogHandler) ListCourses(c *gin.Context) {
	courses, err := h.catalog.ListCourses(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, courses, nil)
}

// CreateCourse godoc
// @Summary Add a course to the catalog
// @Tags Catalog
// @Accept json
// @Produce json
// @Param payload body service.CreateCourseRequest true "Course payload"
// @Success 201 {object} response.Envelope
// @Router /courses [post]
func (h *CatalogHandler) CreateCourse(c *gin.Context) {
	var req service.CreateCourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid request body"))
		return
	}

	course, err := h.catalog.CreateCourse(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, course)
}

// ListSections godoc
// @Summary List a course's sections with seat availability
// @Tags Catalog
// @Produce json
// @Param id path string true "Course id"
// @Success 200 {object} response.Envelope
// @Router /courses/{id}/sections [get]
func (h *CatalogHandler) ListSections(c *gin.Context) {
	sections, err := h.catalog.ListSections(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, sections, nil)
}

// CreateSection godoc
// @Summary Schedule a new section
// @Tags Catalog
// @Accept json
// @Produce json
// @Param payload body service.CreateSectionRequest true "Section payload"
// @Success 201 {object} response.Envelope
// @Router /sections [post]
func (h *CatalogHandler) CreateSection(c *gin.Context) {
	var req service.CreateSectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid request body"))
		return
	}

	section, err := h.catalog.CreateSection(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, section)
}

// GetSection godoc
// @Summary Fetch a single section
// @Tags Catalog
// @Produce json
// @Param id path string true "Section id"
// @Success 200 {object} response.Envelope
// @Router /sections/{id} [get]
func (h *CatalogHandler) GetSection(c *gin.Context) {
	section, err := h.catalog.GetSection(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, section, nil)
}

// ListInstructors godoc
// @Summary List instructor profiles
// @Tags Catalog
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /instructors [get]
func (h *CatalogHandler) ListInstructors(c *gin.Context) {
	instructors, err := h.catalog.ListInstructors(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, instructors, nil)
}
