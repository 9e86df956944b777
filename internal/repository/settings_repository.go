package repository

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/noah-isme/evtcal-api/internal/models"
)

// StaticSettingsRepository always returns the settings it was built with.
type StaticSettingsRepository struct {
	settings models.CalendarSettings
}

// NewStaticSettingsRepository constructs a fixed settings source.
func NewStaticSettingsRepository(settings models.CalendarSettings) *StaticSettingsRepository {
	return &StaticSettingsRepository{settings: settings}
}

// Get returns the configured settings.
func (r *StaticSettingsRepository) Get(context.Context) (models.CalendarSettings, error) {
	return r.settings, nil
}

// settingsFile is the on-disk layout. Pointers distinguish an absent key from
// an explicit false so a file may override only part of the defaults.
type settingsFile struct {
	Label     *string `yaml:"label"`
	Providers struct {
		Google     *bool `yaml:"google"`
		Office365  *bool `yaml:"office365"`
		OutlookCom *bool `yaml:"outlook_com"`
		Yahoo      *bool `yaml:"yahoo"`
		ICS        *bool `yaml:"ics"`
	} `yaml:"providers"`
	Button struct {
		BackgroundColor *string `yaml:"background_color"`
		HoverColor      *string `yaml:"hover_color"`
		TextColor       *string `yaml:"text_color"`
	} `yaml:"button"`
}

// FileSettingsRepository reads settings from a YAML file on every call so
// edits apply without a restart. Missing keys keep the fallback values.
type FileSettingsRepository struct {
	path     string
	fallback models.CalendarSettings
	logger   *zap.Logger
}

// NewFileSettingsRepository constructs a YAML-backed settings source.
func NewFileSettingsRepository(path string, fallback models.CalendarSettings, logger *zap.Logger) *FileSettingsRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FileSettingsRepository{path: path, fallback: fallback, logger: logger}
}

// Get loads the file and overlays it on the fallback settings. A missing file
// yields the fallback unchanged.
func (r *FileSettingsRepository) Get(ctx context.Context) (models.CalendarSettings, error) {
	if err := ctx.Err(); err != nil {
		return models.CalendarSettings{}, err
	}

	raw, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			r.logger.Debug("settings file missing, using defaults", zap.String("path", r.path))
			return r.fallback, nil
		}
		return models.CalendarSettings{}, fmt.Errorf("read settings %s: %w", r.path, err)
	}

	var file settingsFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return models.CalendarSettings{}, fmt.Errorf("decode settings %s: %w", r.path, err)
	}

	return file.apply(r.fallback), nil
}

func (f settingsFile) apply(base models.CalendarSettings) models.CalendarSettings {
	out := base
	if f.Label != nil {
		out.Label = *f.Label
	}
	setBool(&out.Providers.Google, f.Providers.Google)
	setBool(&out.Providers.Office365, f.Providers.Office365)
	setBool(&out.Providers.OutlookCom, f.Providers.OutlookCom)
	setBool(&out.Providers.Yahoo, f.Providers.Yahoo)
	setBool(&out.Providers.ICS, f.Providers.ICS)
	setString(&out.Button.BackgroundColor, f.Button.BackgroundColor)
	setString(&out.Button.HoverColor, f.Button.HoverColor)
	setString(&out.Button.TextColor, f.Button.TextColor)
	return out
}

func setBool(dst *bool, v *bool) {
	if v != nil {
		*dst = *v
	}
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}
