package service

import (
	"context"
	"errors"

	"storefront-api/internal/apperrors"
	"storefront-api/internal/models"
)

type SettingsService struct {
	settings SettingsStore
}

func NewSettingsService(settings SettingsStore) *SettingsService {
	return &SettingsService{settings: settings}
}

// load devuelve la configuración guardada o los valores de fábrica sin
// persistirlos
func (s *SettingsService) load(ctx context.Context) (*models.PortalSettings, bool, error) {
	settings, err := s.settings.Get(ctx)
	if err == nil {
		return settings, true, nil
	}

	var notFound *apperrors.NotFoundError
	if !errors.As(err, &notFound) {
		return nil, false, apperrors.Internal("load portal settings", err)
	}
	defaults := models.DefaultPortalSettings()
	return &defaults, false, nil
}

// Get devuelve la configuración; la primera lectura guarda los defaults
func (s *SettingsService) Get(ctx context.Context) (*models.PortalSettings, error) {
	settings, stored, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	if !stored {
		if err := s.settings.Save(ctx, settings); err != nil {
			return nil, apperrors.Internal("create portal settings", err)
		}
	}
	return settings, nil
}

func (s *SettingsService) Update(ctx context.Context, update models.PortalSettingsUpdate) (*models.PortalSettings, error) {
	settings, _, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	update.Apply(settings)
	if err := s.settings.Save(ctx, settings); err != nil {
		return nil, apperrors.Internal("update portal settings", err)
	}
	return settings, nil
}

// SetLogo guarda el nombre del archivo subido como logo
func (s *SettingsService) SetLogo(ctx context.Context, filename string) (*models.PortalSettings, error) {
	return s.Update(ctx, models.PortalSettingsUpdate{Logo: &filename})
}

// Reset borra todo y vuelve a los valores de fábrica
func (s *SettingsService) Reset(ctx context.Context) (*models.PortalSettings, error) {
	if err := s.settings.DeleteAll(ctx); err != nil {
		return nil, apperrors.Internal("reset portal settings", err)
	}

	defaults := models.DefaultPortalSettings()
	if err := s.settings.Save(ctx, &defaults); err != nil {
		return nil, apperrors.Internal("reset portal settings", err)
	}
	return &defaults, nil
}

// RegistrationOpen indica si el portal acepta altas de clientes
func (s *SettingsService) RegistrationOpen(ctx context.Context) (bool, error) {
	settings, _, err := s.load(ctx)
	if err != nil {
		return false, err
	}
	return settings.Features.CustomerRegistration, nil
}
