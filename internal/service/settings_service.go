package service

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/evtcal-api/internal/calendar"
	"github.com/noah-isme/evtcal-api/internal/models"
	appErrors "github.com/noah-isme/evtcal-api/pkg/errors"
)

type settingsRepository interface {
	Get(ctx context.Context) (models.CalendarSettings, error)
}

// SettingsService hands out sanitized settings snapshots.
type SettingsService struct {
	repo      settingsRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewSettingsService constructs the settings service.
func NewSettingsService(repo settingsRepository, validate *validator.Validate, logger *zap.Logger) *SettingsService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SettingsService{repo: repo, validator: validate, logger: logger}
}

// Snapshot loads the current settings. Colours that are not valid hex values
// fall back to the defaults and a blank label becomes the default label.
func (s *SettingsService) Snapshot(ctx context.Context) (models.CalendarSettings, error) {
	settings, err := s.repo.Get(ctx)
	if err != nil {
		return models.CalendarSettings{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load calendar settings")
	}

	settings.Label = strings.TrimSpace(settings.Label)
	if settings.Label == "" {
		settings.Label = calendar.DefaultLabel
	}
	settings.Button.BackgroundColor = s.color(settings.Button.BackgroundColor, models.DefaultButtonBackground)
	settings.Button.HoverColor = s.color(settings.Button.HoverColor, models.DefaultButtonHover)
	settings.Button.TextColor = s.color(settings.Button.TextColor, models.DefaultButtonText)
	return settings, nil
}

func (s *SettingsService) color(value, fallback string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return fallback
	}
	if err := s.validator.Var(value, "hexcolor"); err != nil {
		s.logger.Warn("invalid button colour, using default", zap.String("value", value), zap.String("default", fallback))
		return fallback
	}
	return value
}
