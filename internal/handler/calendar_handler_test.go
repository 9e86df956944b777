package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/evtcal-api/internal/calendar"
	"github.com/noah-isme/evtcal-api/internal/dto"
	"github.com/noah-isme/evtcal-api/internal/models"
	appErrors "github.com/noah-isme/evtcal-api/pkg/errors"
	"github.com/noah-isme/evtcal-api/pkg/response"
)

type calendarServiceMock struct {
	links        *dto.CalendarLinksResponse
	output       calendar.Output
	err          error
	captured     dto.CalendarEventRequest
	capturedDL   dto.CalendarDownloadRequest
	capturedHost string
}

func (m *calendarServiceMock) Links(ctx context.Context, req dto.CalendarEventRequest) (*dto.CalendarLinksResponse, error) {
	m.captured = req
	return m.links, m.err
}

func (m *calendarServiceMock) Download(ctx context.Context, req dto.CalendarDownloadRequest, host string) (calendar.Output, error) {
	m.capturedDL = req
	m.capturedHost = host
	return m.output, m.err
}

type settingsServiceMock struct {
	settings models.CalendarSettings
}

func (m settingsServiceMock) Snapshot(context.Context) (models.CalendarSettings, error) {
	return m.settings, nil
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) (response.Envelope, map[string]interface{}) {
	t.Helper()
	var env response.Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	data, _ := env.Data.(map[string]interface{})
	return env, data
}

func TestCalendarHandlerLinksBindsQuery(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc := &calendarServiceMock{links: &dto.CalendarLinksResponse{
		Label: "Add to Calendar",
		Links: []dto.CalendarLink{{Provider: "google", Name: "Google Calendar", URL: "https://calendar.google.com/x"}},
	}}
	h := NewCalendarHandler(svc, settingsServiceMock{})
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet,
		"/calendar/links?title=Launch%20party&start=2025-07-15%2014:00:00&end=2025-07-15%2016:00:00&tz=Europe/Berlin&label=Save", nil)

	h.Links(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Launch party", svc.captured.Title)
	assert.Equal(t, "2025-07-15 14:00:00", svc.captured.Start)
	assert.Equal(t, "Europe/Berlin", svc.captured.Timezone)
	assert.Equal(t, "Save", svc.captured.Label)
	env, data := decodeEnvelope(t, w)
	assert.Nil(t, env.Meta)
	assert.Len(t, data["links"], 1)
}

func TestCalendarHandlerCreateLinksBindsJSON(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc := &calendarServiceMock{links: &dto.CalendarLinksResponse{Links: []dto.CalendarLink{}}}
	h := NewCalendarHandler(svc, settingsServiceMock{})
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	body := `{"title":"Team, sync","start":"2025-07-15 14:00:00","end":"2025-07-15 16:00:00","tz":"Asia/Tokyo"}`
	c.Request = httptest.NewRequest(http.MethodPost, "/calendar/links", strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")

	h.CreateLinks(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Team, sync", svc.captured.Title)
	assert.Equal(t, "Asia/Tokyo", svc.captured.Timezone)
	env, _ := decodeEnvelope(t, w)
	require.NotNil(t, env.Meta)
	assert.Equal(t, "no calendar providers are enabled", env.Meta["message"])
}

func TestCalendarHandlerCreateLinksRejectsBadJSON(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := NewCalendarHandler(&calendarServiceMock{}, settingsServiceMock{})
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/calendar/links", strings.NewReader(`{"title":`))
	c.Request.Header.Set("Content-Type", "application/json")

	h.CreateLinks(c)

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "VALIDATION_ERROR")
}

func TestCalendarHandlerLinksSurfacesErrorCode(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc := &calendarServiceMock{err: appErrors.Clone(appErrors.ErrUnknownTimezone, "unknown timezone \"Mars/Base\"")}
	h := NewCalendarHandler(svc, settingsServiceMock{})
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/calendar/links?start=a&end=b&tz=Mars/Base", nil)

	h.Links(c)

	require.Equal(t, http.StatusBadRequest, w.Code)
	env, _ := decodeEnvelope(t, w)
	require.NotNil(t, env.Error)
	assert.Equal(t, "UNKNOWN_TIMEZONE", env.Error.Code)
	assert.Nil(t, env.Data)
}

func TestCalendarHandlerDownloadWritesAttachment(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc := &calendarServiceMock{output: calendar.Output{
		Provider:    calendar.ProviderICSFile,
		Body:        []byte("BEGIN:VCALENDAR\r\nEND:VCALENDAR"),
		Filename:    calendar.ICSFilename,
		ContentType: calendar.ICSContentType,
	}}
	h := NewCalendarHandler(svc, settingsServiceMock{})
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/calendar/ics?start=2025-07-15%2014:00:00&end=2025-07-15%2016:00:00&token=tok", nil)
	c.Request.Host = "events.example.com:8443"

	h.Download(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "tok", svc.capturedDL.Token)
	assert.Equal(t, "2025-07-15 14:00:00", svc.capturedDL.Start)
	assert.Equal(t, "events.example.com", svc.capturedHost)
	assert.Equal(t, calendar.ICSContentType, w.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="event.ics"`, w.Header().Get("Content-Disposition"))
	assert.Equal(t, "no-cache, must-revalidate, no-store", w.Header().Get("Cache-Control"))
	assert.Equal(t, "Sat, 26 Jul 1997 05:00:00 GMT", w.Header().Get("Expires"))
	assert.Equal(t, "BEGIN:VCALENDAR\r\nEND:VCALENDAR", w.Body.String())
}

func TestCalendarHandlerDownloadRejectsToken(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc := &calendarServiceMock{err: appErrors.Clone(appErrors.ErrIntegrityToken, "")}
	h := NewCalendarHandler(svc, settingsServiceMock{})
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/calendar/ics?start=x&end=y&token=bad", nil)

	h.Download(c)

	require.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "INTEGRITY_TOKEN_INVALID")
	assert.Empty(t, w.Header().Get("Content-Disposition"))
}

func TestCalendarHandlerSettings(t *testing.T) {
	gin.SetMode(gin.TestMode)
	settings := models.DefaultCalendarSettings()
	settings.Providers.Yahoo = false
	h := NewCalendarHandler(&calendarServiceMock{}, settingsServiceMock{settings: settings})
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/calendar/settings", nil)

	h.Settings(c)

	require.Equal(t, http.StatusOK, w.Code)
	_, data := decodeEnvelope(t, w)
	providers, ok := data["providers"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, false, providers["yahoo"])
	assert.Equal(t, true, providers["icsFile"])
	button, ok := data["button"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "#000000", button["backgroundColor"])
}

func TestRequestHostStripsPort(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Host = "[::1]:8080"
	assert.Equal(t, "::1", requestHost(req))
	req.Host = "events.example.com"
	assert.Equal(t, "events.example.com", requestHost(req))
}
