package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/campusworks/registrar-api/internal/service"
	appErrors "github.com/campusworks/registrar-api/pkg/errors"
	"github.com/campusworks/registrar-api/pkg/response"
)

// SettingsHandler exposes the maintenance-mode switch.
type SettingsHandler struct {
	settings *service.SettingsService
}

// NewSettingsHandler constructs SettingsHandler.
func NewSettingsHandler(settings *service.SettingsService) *SettingsHandler {
	return &SettingsHandler{settings: settings}
}

type maintenancePayload struct {
	Maintenance bool `json:"maintenance"`
}

// GetMaintenance godoc
// @Summary Read the maintenance flag
// @Tags Settings
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /admin/settings/maintenance [get]
func (h *SettingsHandler) GetMaintenance(c *gin.Context) {
	on, err := h.settings.IsMaintenanceOn(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, maintenancePayload{Maintenance: on}, nil)
}

// SetMaintenance godoc
// @Summary Toggle the maintenance flag
// @Tags Settings
// @Accept json
// @Produce json
// @Param payload body maintenancePayload true "Desired state"
// @Success 200 {object} response.Envelope
// @Router /admin/settings/maintenance [put]
func (h *SettingsHandler) SetMaintenance(c *gin.Context) {
	var req maintenancePayload
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid request body"))
		return
	}

	updatedBy := ""
	if claims := claimsFromContext(c); claims != nil {
		updatedBy = claims.UserID
	}

	if err := h.settings.SetMaintenance(c.Request.Context(), req.Maintenance, updatedBy); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, maintenancePayload{Maintenance: req.Maintenance}, nil)
}
