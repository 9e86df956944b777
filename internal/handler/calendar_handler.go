package handler

import (
	"context"
	"net"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/evtcal-api/internal/calendar"
	"github.com/noah-isme/evtcal-api/internal/dto"
	"github.com/noah-isme/evtcal-api/internal/models"
	appErrors "github.com/noah-isme/evtcal-api/pkg/errors"
	"github.com/noah-isme/evtcal-api/pkg/response"
)

type calendarService interface {
	Links(ctx context.Context, req dto.CalendarEventRequest) (*dto.CalendarLinksResponse, error)
	Download(ctx context.Context, req dto.CalendarDownloadRequest, host string) (calendar.Output, error)
}

type calendarSettingsService interface {
	Snapshot(ctx context.Context) (models.CalendarSettings, error)
}

// CalendarHandler exposes the add-to-calendar endpoints.
type CalendarHandler struct {
	service  calendarService
	settings calendarSettingsService
}

// NewCalendarHandler constructs the handler.
func NewCalendarHandler(service calendarService, settings calendarSettingsService) *CalendarHandler {
	return &CalendarHandler{service: service, settings: settings}
}

// Links godoc
// @Summary Add-to-calendar links for one event
// @Tags Calendar
// @Produce json
// @Param title query string false "Event title"
// @Param description query string false "Event description"
// @Param location query string false "Event location"
// @Param start query string true "Start (YYYY-MM-DD HH:MM:SS, wall clock in tz)"
// @Param end query string true "End (YYYY-MM-DD HH:MM:SS, wall clock in tz)"
// @Param tz query string true "IANA timezone"
// @Param label query string false "Button label"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /calendar/links [get]
func (h *CalendarHandler) Links(c *gin.Context) {
	var req dto.CalendarEventRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid query"))
		return
	}
	h.links(c, req)
}

// CreateLinks godoc
// @Summary Add-to-calendar links for one event (JSON body)
// @Tags Calendar
// @Accept json
// @Produce json
// @Param payload body dto.CalendarEventRequest true "Event"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /calendar/links [post]
func (h *CalendarHandler) CreateLinks(c *gin.Context) {
	var req dto.CalendarEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload"))
		return
	}
	h.links(c, req)
}

func (h *CalendarHandler) links(c *gin.Context, req dto.CalendarEventRequest) {
	resp, err := h.service.Links(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	if len(resp.Links) == 0 {
		response.JSON(c, http.StatusOK, resp, map[string]interface{}{"message": "no calendar providers are enabled"})
		return
	}
	response.JSON(c, http.StatusOK, resp)
}

// Download godoc
// @Summary Download the event as an iCalendar file
// @Tags Calendar
// @Produce text/calendar
// @Param title query string false "Event title"
// @Param description query string false "Event description"
// @Param location query string false "Event location"
// @Param start query string true "Start (YYYY-MM-DD HH:MM:SS)"
// @Param end query string true "End (YYYY-MM-DD HH:MM:SS)"
// @Param tz query string false "IANA timezone, defaults to UTC"
// @Param token query string true "Integrity token issued with the link"
// @Success 200 {string} string "iCalendar body"
// @Failure 400 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /calendar/ics [get]
func (h *CalendarHandler) Download(c *gin.Context) {
	var req dto.CalendarDownloadRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid query"))
		return
	}

	out, err := h.service.Download(c.Request.Context(), req, requestHost(c.Request))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, out.Filename, out.ContentType, out.Body)
}

// Settings godoc
// @Summary Current calendar button settings
// @Tags Calendar
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /calendar/settings [get]
func (h *CalendarHandler) Settings(c *gin.Context) {
	settings, err := h.settings.Snapshot(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	providers := make(map[string]bool, len(calendar.Providers()))
	for _, p := range calendar.Providers() {
		providers[p.String()] = settings.Providers.Enabled(p)
	}
	response.JSON(c, http.StatusOK, dto.CalendarSettingsResponse{
		Label:     settings.Label,
		Providers: providers,
		Button: dto.ButtonStyle{
			BackgroundColor: settings.Button.BackgroundColor,
			HoverColor:      settings.Button.HoverColor,
			TextColor:       settings.Button.TextColor,
		},
	})
}

// requestHost returns the request host without its port.
func requestHost(r *http.Request) string {
	host := r.Host
	if h, _, err := net.SplitHostPort(host); err == nil {
		return h
	}
	return host
}
