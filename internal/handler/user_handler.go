package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/campusworks/registrar-api/internal/service"
	appErrors "github.com/campusworks/registrar-api/pkg/errors"
	"github.com/campusworks/registrar-api/pkg/response"
)

// UserHandler exposes account provisioning endpoints.
type UserHandler struct {
	provisioning *service.ProvisioningService
}

// NewUserHandler constructs UserHandler.
func NewUserHandler(provisioning *service.ProvisioningService) *UserHandler {
	return &UserHandler{provisioning: provisioning}
}

// Create godoc
// @Summary Provision a new account across both stores
// @Tags Users
// @Accept json
// @Produce json
// @Param payload body service.CreateUserRequest true "Provisioning payload"
// @Success 201 {object} response.Envelope
// @Router /admin/users [post]
func (h *UserHandler) Create(c *gin.Context) {
	var req service.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid request body"))
		return
	}

	user, err := h.provisioning.CreateUser(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, user)
}

// Orphans godoc
// @Summary List identities without an academic profile
// @Tags Users
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /admin/provisioning/orphans [get]
func (h *UserHandler) Orphans(c *gin.Context) {
	orphans, err := h.provisioning.Reconcile(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, orphans, nil, map[string]interface{}{
		"count": len(orphans),
	})
}
