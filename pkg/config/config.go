package config

import (
	"errors"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Env           string
	Port          int
	APIPrefix     string
	PublicBaseURL string

	HTTP      HTTPConfig
	Redis     RedisConfig
	CORS      CORSConfig
	Log       LogConfig
	Calendar  CalendarConfig
	Providers ProvidersConfig
	Button    ButtonConfig
}

type HTTPConfig struct {
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// CalendarConfig tunes link rendering and the calendar file download.
type CalendarConfig struct {
	TokenSecret   string
	TokenTTL      time.Duration
	TokenIssuer   string
	SingleUse     bool
	ProductID     string
	UIDDomain     string
	DefaultLabel  string
	SettingsFile  string
	DownloadRoute string
}

// ProvidersConfig is the env-backed default of which providers are offered.
type ProvidersConfig struct {
	Google     bool
	Office365  bool
	OutlookCom bool
	Yahoo      bool
	ICS        bool
}

// ButtonConfig holds the button colours handed to the presentation layer.
type ButtonConfig struct {
	BackgroundColor string
	HoverColor      string
	TextColor       string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	return fromViper(v), nil
}

func fromViper(v *viper.Viper) *Config {
	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")
	cfg.PublicBaseURL = strings.TrimRight(v.GetString("PUBLIC_BASE_URL"), "/")

	cfg.HTTP = HTTPConfig{
		ReadTimeout:  parseDuration(v.GetString("HTTP_READ_TIMEOUT"), 10*time.Second),
		WriteTimeout: parseDuration(v.GetString("HTTP_WRITE_TIMEOUT"), 10*time.Second),
	}

	cfg.Redis = RedisConfig{
		Enabled:  v.GetBool("REDIS_ENABLED"),
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Calendar = CalendarConfig{
		TokenSecret:   v.GetString("ICS_TOKEN_SECRET"),
		TokenTTL:      parseDuration(v.GetString("ICS_TOKEN_TTL"), 24*time.Hour),
		TokenIssuer:   v.GetString("ICS_TOKEN_ISSUER"),
		SingleUse:     v.GetBool("ICS_SINGLE_USE"),
		ProductID:     v.GetString("ICS_PRODUCT_ID"),
		UIDDomain:     v.GetString("ICS_UID_DOMAIN"),
		DefaultLabel:  v.GetString("CALENDAR_DEFAULT_LABEL"),
		SettingsFile:  v.GetString("CALENDAR_SETTINGS_FILE"),
		DownloadRoute: v.GetString("ICS_DOWNLOAD_ROUTE"),
	}

	cfg.Providers = ProvidersConfig{
		Google:     v.GetBool("ENABLE_GOOGLE"),
		Office365:  v.GetBool("ENABLE_OFFICE365"),
		OutlookCom: v.GetBool("ENABLE_OUTLOOK"),
		Yahoo:      v.GetBool("ENABLE_YAHOO"),
		ICS:        v.GetBool("ENABLE_ICS"),
	}

	cfg.Button = ButtonConfig{
		BackgroundColor: v.GetString("BUTTON_BG_COLOR"),
		HoverColor:      v.GetString("BUTTON_HOVER_COLOR"),
		TextColor:       v.GetString("BUTTON_TEXT_COLOR"),
	}

	return cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")
	v.SetDefault("PUBLIC_BASE_URL", "http://localhost:8080")
	v.SetDefault("HTTP_READ_TIMEOUT", "10s")
	v.SetDefault("HTTP_WRITE_TIMEOUT", "10s")

	v.SetDefault("REDIS_ENABLED", false)
	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("ICS_TOKEN_SECRET", "dev_ics_secret")
	v.SetDefault("ICS_TOKEN_TTL", "24h")
	v.SetDefault("ICS_TOKEN_ISSUER", "evtcal")
	v.SetDefault("ICS_SINGLE_USE", true)
	v.SetDefault("ICS_PRODUCT_ID", "-//evtcal//Event Add to Calendar//EN")
	v.SetDefault("ICS_UID_DOMAIN", "")
	v.SetDefault("ICS_DOWNLOAD_ROUTE", "/calendar/ics")
	v.SetDefault("CALENDAR_DEFAULT_LABEL", "Add to Calendar")
	v.SetDefault("CALENDAR_SETTINGS_FILE", "")

	v.SetDefault("ENABLE_GOOGLE", true)
	v.SetDefault("ENABLE_OFFICE365", true)
	v.SetDefault("ENABLE_OUTLOOK", true)
	v.SetDefault("ENABLE_YAHOO", true)
	v.SetDefault("ENABLE_ICS", true)

	v.SetDefault("BUTTON_BG_COLOR", "#000000")
	v.SetDefault("BUTTON_HOVER_COLOR", "#333333")
	v.SetDefault("BUTTON_TEXT_COLOR", "#ffffff")
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
