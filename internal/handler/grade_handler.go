package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/campusworks/registrar-api/internal/service"
	appErrors "github.com/campusworks/registrar-api/pkg/errors"
	"github.com/campusworks/registrar-api/pkg/export"
	"github.com/campusworks/registrar-api/pkg/response"
)

// GradeHandler exposes grading and transcript endpoints.
type GradeHandler struct {
	grades *service.GradeService
	csv    *export.CSVExporter
	pdf    *export.PDFExporter
}

// NewGradeHandler constructs GradeHandler.
func NewGradeHandler(grades *service.GradeService) *GradeHandler {
	return &GradeHandler{
		grades: grades,
		csv:    export.NewCSVExporter(),
		pdf:    export.NewPDFExporter(),
	}
}

// RecordScores godoc
// @Summary Record component scores and compute the final grade
// @Tags Grades
// @Accept json
// @Produce json
// @Param payload body service.RecordScoresRequest true "Component scores"
// @Success 200 {object} response.Envelope
// @Router /grades [put]
func (h *GradeHandler) RecordScores(c *gin.Context) {
	var req service.RecordScoresRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid request body"))
		return
	}

	record, err := h.grades.RecordScores(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, record, nil)
}

// Transcript godoc
// @Summary Student transcript
// @Tags Grades
// @Produce json
// @Param id path string true "Student identity id"
// @Success 200 {object} response.Envelope
// @Router /students/{id}/transcript [get]
func (h *GradeHandler) Transcript(c *gin.Context) {
	transcript, err := h.grades.Transcript(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, transcript, nil)
}

// ExportTranscript godoc
// @Summary Download a transcript as CSV or PDF
// @Tags Grades
// @Produce application/octet-stream
// @Param id path string true "Student identity id"
// @Param format query string false "csv or pdf" default(csv)
// @Success 200 {file} binary
// @Router /students/{id}/transcript/export [get]
func (h *GradeHandler) ExportTranscript(c *gin.Context) {
	studentID := c.Param("id")
	dataset, err := h.grades.TranscriptDataset(c.Request.Context(), studentID)
	if err != nil {
		response.Error(c, err)
		return
	}

	switch c.DefaultQuery("format", "csv") {
	case "pdf":
		payload, err := h.pdf.Render(dataset, fmt.Sprintf("Transcript %s", studentID))
		if err != nil {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render transcript"))
			return
		}
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=transcript-%s.pdf", studentID))
		c.Data(http.StatusOK, "application/pdf", payload)
	case "csv":
		payload, err := h.csv.Render(dataset)
		if err != nil {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render transcript"))
			return
		}
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=transcript-%s.csv", studentID))
		c.Data(http.StatusOK, "text/csv", payload)
	default:
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "unsupported export format"))
	}
}
