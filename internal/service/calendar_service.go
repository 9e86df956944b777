package service

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/evtcal-api/internal/calendar"
	"github.com/noah-isme/evtcal-api/internal/dto"
	"github.com/noah-isme/evtcal-api/internal/models"
	appErrors "github.com/noah-isme/evtcal-api/pkg/errors"
	"github.com/noah-isme/evtcal-api/pkg/signing"
)

// DefaultDownloadTimezone is applied when a download request omits tz.
const DefaultDownloadTimezone = "UTC"

type calendarSettingsProvider interface {
	Snapshot(ctx context.Context) (models.CalendarSettings, error)
}

type eventNormalizer interface {
	Normalize(raw calendar.RawEvent) (calendar.Event, error)
}

type downloadTokenSigner interface {
	Generate(digest string) (string, time.Time, error)
	Parse(token string) (*signing.DownloadClaims, error)
}

type nonceStore interface {
	Consume(ctx context.Context, nonce string, ttl time.Duration) (bool, error)
}

// CalendarServiceConfig holds the wiring that is not a collaborator.
type CalendarServiceConfig struct {
	// DownloadURL is the absolute URL of the calendar file endpoint.
	DownloadURL string
	// SingleUse makes each download token valid for one download only.
	SingleUse bool
}

// CalendarService turns event requests into provider links and calendar files.
type CalendarService struct {
	settings   calendarSettingsProvider
	normalizer eventNormalizer
	renderer   *calendar.Renderer
	signer     downloadTokenSigner
	nonces     nonceStore
	metrics    *MetricsService
	validator  *validator.Validate
	logger     *zap.Logger
	cfg        CalendarServiceConfig
	now        func() time.Time
}

// NewCalendarService constructs the calendar service.
func NewCalendarService(
	settings calendarSettingsProvider,
	normalizer eventNormalizer,
	renderer *calendar.Renderer,
	signer downloadTokenSigner,
	nonces nonceStore,
	metrics *MetricsService,
	validate *validator.Validate,
	logger *zap.Logger,
	cfg CalendarServiceConfig,
) *CalendarService {
	if normalizer == nil {
		normalizer = calendar.NewNormalizer(nil)
	}
	if renderer == nil {
		renderer = calendar.NewRenderer(calendar.RendererOptions{})
	}
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CalendarService{
		settings:   settings,
		normalizer: normalizer,
		renderer:   renderer,
		signer:     signer,
		nonces:     nonces,
		metrics:    metrics,
		validator:  validate,
		logger:     logger,
		cfg:        cfg,
		now:        time.Now,
	}
}

// Links renders the enabled providers for one event. A request that fails
// normalization yields an error and no links at all.
func (s *CalendarService) Links(ctx context.Context, req dto.CalendarEventRequest) (*dto.CalendarLinksResponse, error) {
	if err := requireDates(req); err != nil {
		return nil, err
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid event payload")
	}

	settings, err := s.settings.Snapshot(ctx)
	if err != nil {
		return nil, err
	}

	raw := req.RawEvent()
	ev, err := s.normalize(raw)
	if err != nil {
		return nil, err
	}

	label := strings.TrimSpace(req.Label)
	if label == "" {
		label = settings.Label
	}

	resp := &dto.CalendarLinksResponse{
		Label:    label,
		Title:    ev.Title,
		StartUTC: calendar.FormatExtended(ev.Start),
		EndUTC:   calendar.FormatExtended(ev.End),
		Timezone: ev.Timezone,
		Links:    []dto.CalendarLink{},
	}

	for _, provider := range settings.Providers.EnabledProviders() {
		if provider.IsFile() {
			link, err := s.downloadLink(raw)
			if err != nil {
				return nil, err
			}
			resp.Links = append(resp.Links, link)
			resp.ICSURL = link.URL
			continue
		}

		out, err := s.renderer.Render(ev, provider, label)
		if err != nil {
			return nil, err
		}
		s.metrics.ObserveRender(provider.String())
		resp.Links = append(resp.Links, dto.CalendarLink{
			Provider: provider.String(),
			Name:     provider.DisplayName(),
			URL:      out.URL,
		})
	}

	if len(resp.Links) == 0 {
		s.logger.Debug("no calendar providers enabled")
	}
	return resp, nil
}

// Download verifies the integrity token and renders the calendar file. host
// is used for the UID when no UID domain is configured.
func (s *CalendarService) Download(ctx context.Context, req dto.CalendarDownloadRequest, host string) (calendar.Output, error) {
	settings, err := s.settings.Snapshot(ctx)
	if err != nil {
		return calendar.Output{}, err
	}
	if !settings.Providers.ICS {
		return calendar.Output{}, appErrors.Clone(appErrors.ErrProviderDisabled, "calendar file download is disabled")
	}
	if err := requireDates(req.CalendarEventRequest); err != nil {
		s.metrics.ObserveDownload(DownloadRejected)
		return calendar.Output{}, err
	}

	raw := req.RawEvent()
	claims, err := s.verifyToken(req.Token, raw)
	if err != nil {
		s.metrics.ObserveDownload(DownloadRejected)
		return calendar.Output{}, err
	}

	if strings.TrimSpace(raw.Timezone) == "" {
		raw.Timezone = DefaultDownloadTimezone
	}
	ev, err := s.normalize(raw)
	if err != nil {
		s.metrics.ObserveDownload(DownloadRejected)
		return calendar.Output{}, err
	}

	if s.cfg.SingleUse {
		if err := s.consume(ctx, claims); err != nil {
			return calendar.Output{}, err
		}
	}

	out, err := s.renderer.ForHost(host).Render(ev, calendar.ProviderICSFile, "")
	if err != nil {
		return calendar.Output{}, err
	}
	s.metrics.ObserveRender(calendar.ProviderICSFile.String())
	s.metrics.ObserveDownload(DownloadServed)
	return out, nil
}

func (s *CalendarService) normalize(raw calendar.RawEvent) (calendar.Event, error) {
	ev, err := s.normalizer.Normalize(raw)
	if err != nil {
		code := appErrors.FromError(err).Code
		s.metrics.ObserveNormalizationFailure(code)
		s.logger.Debug("event rejected", zap.String("code", code), zap.Error(err))
		return calendar.Event{}, err
	}
	if ev.Backwards() {
		s.logger.Warn("event ends before it starts",
			zap.Time("start", ev.Start),
			zap.Time("end", ev.End),
			zap.String("timezone", ev.Timezone),
		)
	}
	return ev, nil
}

func (s *CalendarService) downloadLink(raw calendar.RawEvent) (dto.CalendarLink, error) {
	if s.signer == nil {
		return dto.CalendarLink{}, appErrors.Clone(appErrors.ErrInternal, "download signing not configured")
	}
	token, expiresAt, err := s.signer.Generate(EventDigest(raw))
	if err != nil {
		return dto.CalendarLink{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign download link")
	}

	query := url.Values{}
	query.Set("title", raw.Title)
	query.Set("description", raw.Description)
	query.Set("location", raw.Location)
	query.Set("start", raw.Start)
	query.Set("end", raw.End)
	query.Set("tz", raw.Timezone)
	query.Set("token", token)

	return dto.CalendarLink{
		Provider:  calendar.ProviderICSFile.String(),
		Name:      calendar.ProviderICSFile.DisplayName(),
		URL:       s.cfg.DownloadURL + "?" + query.Encode(),
		Download:  true,
		ExpiresAt: &expiresAt,
	}, nil
}

func (s *CalendarService) verifyToken(token string, raw calendar.RawEvent) (*signing.DownloadClaims, error) {
	if s.signer == nil {
		return nil, appErrors.Clone(appErrors.ErrIntegrityToken, "")
	}
	claims, err := s.signer.Parse(token)
	if err != nil {
		s.logger.Debug("download token rejected", zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrIntegrityToken.Code, appErrors.ErrIntegrityToken.Status, appErrors.ErrIntegrityToken.Message)
	}
	if subtle.ConstantTimeCompare([]byte(claims.Digest), []byte(EventDigest(raw))) != 1 {
		s.logger.Debug("download token digest mismatch", zap.String("jti", claims.ID))
		return nil, appErrors.Clone(appErrors.ErrIntegrityToken, "")
	}
	return claims, nil
}

func (s *CalendarService) consume(ctx context.Context, claims *signing.DownloadClaims) error {
	if s.nonces == nil {
		return nil
	}
	ttl := time.Minute
	if claims.ExpiresAt != nil {
		if remaining := claims.ExpiresAt.Time.Sub(s.now()); remaining > ttl {
			ttl = remaining
		}
	}
	fresh, err := s.nonces.Consume(ctx, claims.ID, ttl)
	if err != nil {
		s.logger.Error("nonce store unavailable", zap.Error(err))
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to verify download link")
	}
	if !fresh {
		s.metrics.ObserveDownload(DownloadReplayed)
		return appErrors.Clone(appErrors.ErrIntegrityToken, "download link already used")
	}
	return nil
}

func requireDates(req dto.CalendarEventRequest) error {
	var missing []string
	if strings.TrimSpace(req.Start) == "" {
		missing = append(missing, "start")
	}
	if strings.TrimSpace(req.End) == "" {
		missing = append(missing, "end")
	}
	if len(missing) > 0 {
		return appErrors.Clone(appErrors.ErrMissingField, fmt.Sprintf("missing required field: %s", strings.Join(missing, ", ")))
	}
	return nil
}

// EventDigest fingerprints the raw event fields exactly as sent. Each field is
// length-prefixed so no two field sets share a digest by concatenation.
func EventDigest(raw calendar.RawEvent) string {
	h := sha256.New()
	for _, field := range []string{raw.Title, raw.Description, raw.Location, raw.Start, raw.End, raw.Timezone} {
		fmt.Fprintf(h, "%d:%s;", len(field), field)
	}
	return hex.EncodeToString(h.Sum(nil))
}
