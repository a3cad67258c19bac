package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/campusworks/registrar-api/internal/models"
	appErrors "github.com/campusworks/registrar-api/pkg/errors"
)

type settingsRepo interface {
	GetBool(ctx context.Context, key string) (bool, error)
	SetBool(ctx context.Context, key string, value bool, updatedBy *string) error
}

// SettingsService reads and toggles process-wide settings, most importantly
// the maintenance flag that gates every mutating operation. Reads hit the
// database on every call so a committed toggle is visible immediately.
type SettingsService struct {
	repo   settingsRepo
	logger *zap.Logger
}

// NewSettingsService constructs SettingsService.
func NewSettingsService(repo settingsRepo, logger *zap.Logger) *SettingsService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SettingsService{repo: repo, logger: logger}
}

// IsMaintenanceOn reports the most recently committed maintenance state.
func (s *SettingsService) IsMaintenanceOn(ctx context.Context) (bool, error) {
	on, err := s.repo.GetBool(ctx, models.SettingMaintenanceMode)
	if err != nil {
		return false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read maintenance flag")
	}
	return on, nil
}

// SetMaintenance toggles the maintenance flag.
func (s *SettingsService) SetMaintenance(ctx context.Context, on bool, updatedBy string) error {
	var by *string
	if updatedBy != "" {
		by = &updatedBy
	}
	if err := s.repo.SetBool(ctx, models.SettingMaintenanceMode, on, by); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update maintenance flag")
	}
	s.logger.Info("maintenance flag updated", zap.Bool("on", on), zap.String("updated_by", updatedBy))
	return nil
}
