package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	ical "github.com/arran4/golang-ical"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/evtcal-api/internal/calendar"
	internalmiddleware "github.com/noah-isme/evtcal-api/internal/middleware"
	"github.com/noah-isme/evtcal-api/internal/models"
	"github.com/noah-isme/evtcal-api/internal/repository"
	"github.com/noah-isme/evtcal-api/internal/service"
	"github.com/noah-isme/evtcal-api/pkg/signing"
)

type linksEnvelope struct {
	Data struct {
		Label  string `json:"label"`
		ICSURL string `json:"icsUrl"`
		Links  []struct {
			Provider string `json:"provider"`
			URL      string `json:"url"`
		} `json:"links"`
	} `json:"data"`
	Error *struct {
		Code string `json:"code"`
	} `json:"error"`
}

func buildCalendarRouter(settings models.CalendarSettings, checks map[string]ReadinessCheck) *gin.Engine {
	gin.SetMode(gin.TestMode)
	metrics := service.NewMetricsService()
	settingsSvc := service.NewSettingsService(repository.NewStaticSettingsRepository(settings), nil, nil)
	calendarSvc := service.NewCalendarService(
		settingsSvc,
		calendar.NewNormalizer(nil),
		calendar.NewRenderer(calendar.RendererOptions{}),
		signing.NewSignedURLSigner("integration-secret", time.Hour, "evtcal"),
		repository.NewMemoryNonceRepository(),
		metrics,
		nil,
		nil,
		service.CalendarServiceConfig{DownloadURL: "http://events.test/api/v1/calendar/ics", SingleUse: true},
	)

	router := gin.New()
	router.Use(internalmiddleware.Metrics(metrics, "/metrics"))
	RegisterOpsRoutes(router, NewMetricsHandler(metrics, checks))
	RegisterCalendarRoutes(router.Group("/api/v1"), NewCalendarHandler(calendarSvc, settingsSvc), "/calendar/ics")
	return router
}

func performRequest(router *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestCalendarRoutesIntegration(t *testing.T) {
	router := buildCalendarRouter(models.DefaultCalendarSettings(), nil)

	query := url.Values{}
	query.Set("title", "Launch; party, v2")
	query.Set("description", "Line one\nLine two")
	query.Set("location", "Dock 7")
	query.Set("start", "2025-11-03 01:30:00")
	query.Set("end", "2025-11-03 03:00:00")
	query.Set("tz", "America/New_York")

	resp := performRequest(router, httptest.NewRequest(http.MethodGet, "/api/v1/calendar/links?"+query.Encode(), nil))
	require.Equal(t, http.StatusOK, resp.Code)

	var env linksEnvelope
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &env))
	require.Len(t, env.Data.Links, 5)
	require.NotEmpty(t, env.Data.ICSURL)

	download, err := url.Parse(env.Data.ICSURL)
	require.NoError(t, err)

	t.Run("download once", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, download.RequestURI(), nil)
		req.Host = "events.test"
		resp := performRequest(router, req)
		require.Equal(t, http.StatusOK, resp.Code)
		assert.Equal(t, calendar.ICSContentType, resp.Header().Get("Content-Type"))

		cal, err := ical.ParseCalendar(bytes.NewReader(resp.Body.Bytes()))
		require.NoError(t, err)
		require.Len(t, cal.Events(), 1)
		ev := cal.Events()[0]
		assert.True(t, strings.HasSuffix(ev.Id(), "@events.test"))
		start, err := ev.GetStartAt()
		require.NoError(t, err)
		assert.Equal(t, "20251103T063000Z", calendar.FormatBasic(start))
		summary := ev.GetProperty(ical.ComponentPropertySummary)
		require.NotNil(t, summary)
		assert.Equal(t, "Launch; party, v2", ical.FromText(summary.Value))
	})

	t.Run("replay rejected", func(t *testing.T) {
		resp := performRequest(router, httptest.NewRequest(http.MethodGet, download.RequestURI(), nil))
		require.Equal(t, http.StatusForbidden, resp.Code)
		assert.Contains(t, resp.Body.String(), "INTEGRITY_TOKEN_INVALID")
	})

	t.Run("missing dates", func(t *testing.T) {
		resp := performRequest(router, httptest.NewRequest(http.MethodGet, "/api/v1/calendar/ics?token=x", nil))
		require.Equal(t, http.StatusBadRequest, resp.Code)
		assert.Contains(t, resp.Body.String(), "MISSING_REQUIRED_FIELD")
	})

	t.Run("invalid event fails closed", func(t *testing.T) {
		bad := url.Values{}
		bad.Set("start", "2025-07-15 14:00")
		bad.Set("end", "2025-07-15 16:00:00")
		bad.Set("tz", "UTC")
		resp := performRequest(router, httptest.NewRequest(http.MethodGet, "/api/v1/calendar/links?"+bad.Encode(), nil))
		require.Equal(t, http.StatusBadRequest, resp.Code)
		var env linksEnvelope
		require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &env))
		require.NotNil(t, env.Error)
		assert.Equal(t, "INVALID_DATETIME", env.Error.Code)
		assert.Empty(t, env.Data.Links)
	})

	t.Run("metrics exposed", func(t *testing.T) {
		resp := performRequest(router, httptest.NewRequest(http.MethodGet, "/metrics", nil))
		require.Equal(t, http.StatusOK, resp.Code)
		assert.Contains(t, resp.Body.String(), `calendar_downloads_total{outcome="served"} 1`)
	})
}

func TestCalendarRoutesDownloadDisabled(t *testing.T) {
	settings := models.DefaultCalendarSettings()
	settings.Providers.ICS = false
	router := buildCalendarRouter(settings, nil)

	resp := performRequest(router, httptest.NewRequest(http.MethodGet, "/api/v1/calendar/ics?start=a&end=b&token=c", nil))
	require.Equal(t, http.StatusNotFound, resp.Code)
	assert.Contains(t, resp.Body.String(), "PROVIDER_DISABLED")
}

func TestReadyReportsFailingChecks(t *testing.T) {
	router := buildCalendarRouter(models.DefaultCalendarSettings(), map[string]ReadinessCheck{
		"redis": func(context.Context) error { return errors.New("connection refused") },
	})

	resp := performRequest(router, httptest.NewRequest(http.MethodGet, "/ready", nil))
	require.Equal(t, http.StatusServiceUnavailable, resp.Code)
	assert.Contains(t, resp.Body.String(), "connection refused")

	resp = performRequest(router, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, resp.Code)
}
