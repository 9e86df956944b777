package repository

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/evtcal-api/internal/models"
)

func writeSettings(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "calendar.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestFileSettingsRepositoryOverlaysPartialFile(t *testing.T) {
	path := writeSettings(t, `
label: Save the date
providers:
  yahoo: false
  ics: false
button:
  background_color: "#123abc"
`)
	repo := NewFileSettingsRepository(path, models.DefaultCalendarSettings(), nil)

	settings, err := repo.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Save the date", settings.Label)
	assert.True(t, settings.Providers.Google)
	assert.True(t, settings.Providers.Office365)
	assert.True(t, settings.Providers.OutlookCom)
	assert.False(t, settings.Providers.Yahoo)
	assert.False(t, settings.Providers.ICS)
	assert.Equal(t, "#123abc", settings.Button.BackgroundColor)
	assert.Equal(t, models.DefaultButtonText, settings.Button.TextColor)
}

func TestFileSettingsRepositoryRereadsOnEveryCall(t *testing.T) {
	path := writeSettings(t, "providers:\n  google: false\n")
	repo := NewFileSettingsRepository(path, models.DefaultCalendarSettings(), nil)

	first, err := repo.Get(context.Background())
	require.NoError(t, err)
	assert.False(t, first.Providers.Google)

	require.NoError(t, os.WriteFile(path, []byte("providers:\n  google: true\n"), 0o600))
	second, err := repo.Get(context.Background())
	require.NoError(t, err)
	assert.True(t, second.Providers.Google)
}

func TestFileSettingsRepositoryMissingFileUsesFallback(t *testing.T) {
	fallback := models.DefaultCalendarSettings()
	fallback.Label = "Fallback"
	repo := NewFileSettingsRepository(filepath.Join(t.TempDir(), "absent.yaml"), fallback, nil)

	settings, err := repo.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, fallback, settings)
}

func TestFileSettingsRepositoryRejectsMalformedYAML(t *testing.T) {
	path := writeSettings(t, "providers: [google\n")
	repo := NewFileSettingsRepository(path, models.DefaultCalendarSettings(), nil)

	_, err := repo.Get(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode settings")
}

func TestStaticSettingsRepository(t *testing.T) {
	want := models.DefaultCalendarSettings()
	want.Providers.Google = false
	settings, err := NewStaticSettingsRepository(want).Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, want, settings)
}
