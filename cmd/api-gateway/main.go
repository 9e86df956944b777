package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/evtcal-api/api/swagger"
	"github.com/noah-isme/evtcal-api/internal/calendar"
	"github.com/noah-isme/evtcal-api/internal/handler"
	internalmiddleware "github.com/noah-isme/evtcal-api/internal/middleware"
	"github.com/noah-isme/evtcal-api/internal/models"
	"github.com/noah-isme/evtcal-api/internal/repository"
	"github.com/noah-isme/evtcal-api/internal/service"
	"github.com/noah-isme/evtcal-api/pkg/cache"
	"github.com/noah-isme/evtcal-api/pkg/config"
	"github.com/noah-isme/evtcal-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/evtcal-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/evtcal-api/pkg/middleware/requestid"
	"github.com/noah-isme/evtcal-api/pkg/signing"
)

// @title evtcal API
// @version 1.0.0
// @description Add-to-calendar links and iCalendar downloads for single events
// @BasePath /api/v1
// @schemes http https

type nonceStore interface {
	Consume(ctx context.Context, nonce string, ttl time.Duration) (bool, error)
}

type settingsSource interface {
	Get(ctx context.Context) (models.CalendarSettings, error)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
		if cfg.Calendar.TokenSecret == "dev_ics_secret" {
			logr.Warn("ICS_TOKEN_SECRET is the development default")
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	checks := map[string]handler.ReadinessCheck{}
	var nonces nonceStore = repository.NewMemoryNonceRepository()
	if cfg.Redis.Enabled {
		client, err := cache.NewRedis(ctx, cfg.Redis)
		if err != nil {
			logr.Fatal("failed to connect redis", zap.Error(err))
		}
		defer client.Close() //nolint:errcheck
		nonces = repository.NewNonceRepository(client, logr)
		checks["redis"] = cache.Ping(client)
	}

	fallback := settingsFromConfig(cfg)
	var settingsRepo settingsSource = repository.NewStaticSettingsRepository(fallback)
	if cfg.Calendar.SettingsFile != "" {
		settingsRepo = repository.NewFileSettingsRepository(cfg.Calendar.SettingsFile, fallback, logr)
	}

	validate := validator.New()
	metrics := service.NewMetricsService()
	settingsSvc := service.NewSettingsService(settingsRepo, validate, logr)
	renderer := calendar.NewRenderer(calendar.RendererOptions{
		ProductID: cfg.Calendar.ProductID,
		UIDDomain: cfg.Calendar.UIDDomain,
	})
	signer := signing.NewSignedURLSigner(cfg.Calendar.TokenSecret, cfg.Calendar.TokenTTL, cfg.Calendar.TokenIssuer)
	calendarSvc := service.NewCalendarService(
		settingsSvc,
		calendar.NewNormalizer(nil),
		renderer,
		signer,
		nonces,
		metrics,
		validate,
		logr,
		service.CalendarServiceConfig{
			DownloadURL: cfg.PublicBaseURL + cfg.APIPrefix + cfg.Calendar.DownloadRoute,
			SingleUse:   cfg.Calendar.SingleUse,
		},
	)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(internalmiddleware.Metrics(metrics, "/metrics"))

	handler.RegisterOpsRoutes(r, handler.NewMetricsHandler(metrics, checks))
	handler.RegisterCalendarRoutes(r.Group(cfg.APIPrefix), handler.NewCalendarHandler(calendarSvc, settingsSvc), cfg.Calendar.DownloadRoute)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      r,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env, "redis", cfg.Redis.Enabled)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}
}

func settingsFromConfig(cfg *config.Config) models.CalendarSettings {
	return models.CalendarSettings{
		Providers: models.ProviderToggles{
			Google:     cfg.Providers.Google,
			Office365:  cfg.Providers.Office365,
			OutlookCom: cfg.Providers.OutlookCom,
			Yahoo:      cfg.Providers.Yahoo,
			ICS:        cfg.Providers.ICS,
		},
		Button: models.ButtonStyle{
			BackgroundColor: cfg.Button.BackgroundColor,
			HoverColor:      cfg.Button.HoverColor,
			TextColor:       cfg.Button.TextColor,
		},
		Label: cfg.Calendar.DefaultLabel,
	}
}
