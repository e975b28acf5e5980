package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	defaultHTTPAddr        = ":8080"
	defaultDatabaseURL     = "dinein.db"
	defaultJWTSecret       = "change-me-jwt-secret"
	defaultJWTTTL          = "12h"
	defaultTaxPercent      = "9.5"
	defaultOpenHour        = "10"
	defaultCloseHour       = "22"
	defaultBookingMin      = "1h"
	defaultBookingMax      = "2h"
	defaultBookingBuffer   = "15m"
	defaultAllotDirectly   = "false"
	defaultOverlapMode     = "symmetric"
	defaultTimezone        = "UTC"
	defaultExpireSweepSpec = "*/5 * * * *"
)

type Config struct {
	AppEnv          string
	HTTPAddr        string
	DatabaseURL     string
	JWTSecret       string
	JWTTTL          time.Duration
	ExpireSweepSpec string
	CORSOrigins     []string
	Twilio          TwilioConfig
	Engine          Engine
}

type TwilioConfig struct {
	AccountSID string
	AuthToken  string
	FromNumber string
}

// Enabled is true only when every credential is present.
func (t TwilioConfig) Enabled() bool {
	return t.AccountSID != "" && t.AuthToken != "" && t.FromNumber != ""
}

func Load() (*Config, error) {
	cfg := &Config{}
	appEnv := strings.TrimSpace(os.Getenv("APP_ENV"))
	if appEnv == "" {
		appEnv = "dev"
	}
	cfg.AppEnv = strings.ToLower(appEnv)

	cfg.HTTPAddr = strings.TrimSpace(getEnv("HTTP_ADDR", defaultHTTPAddr))
	cfg.DatabaseURL = strings.TrimSpace(getEnv("DATABASE_URL", defaultDatabaseURL))
	cfg.JWTSecret = strings.TrimSpace(getEnv("JWT_SECRET", defaultJWTSecret))
	cfg.ExpireSweepSpec = strings.TrimSpace(getEnv("EXPIRE_SWEEP_SPEC", defaultExpireSweepSpec))
	cfg.CORSOrigins = splitList(os.Getenv("CORS_ALLOWED_ORIGINS"))
	cfg.Twilio = TwilioConfig{
		AccountSID: strings.TrimSpace(os.Getenv("TWILIO_ACCOUNT_SID")),
		AuthToken:  strings.TrimSpace(os.Getenv("TWILIO_AUTH_TOKEN")),
		FromNumber: strings.TrimSpace(os.Getenv("TWILIO_FROM_NUMBER")),
	}

	var err error
	cfg.JWTTTL, err = parseDurationEnv("JWT_TTL", defaultJWTTTL)
	if err != nil {
		return nil, err
	}

	cfg.Engine, err = loadEngine()
	if err != nil {
		return nil, err
	}

	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	log.Printf("engine config: tax=%.2f hours=%d-%d duration=%s-%s buffer=%s allot_directly=%t overlap=%s tz=%s",
		cfg.Engine.TaxPercent, cfg.Engine.OpenHour, cfg.Engine.CloseHour,
		cfg.Engine.MinDuration, cfg.Engine.MaxDuration, cfg.Engine.Buffer,
		cfg.Engine.AllotTableDirectly, cfg.Engine.Overlap, cfg.Engine.Loc())

	return cfg, nil
}

func loadEngine() (Engine, error) {
	e := Engine{}

	var err error
	e.TaxPercent, err = parseFloatEnv("TAX_PERCENT", defaultTaxPercent)
	if err != nil {
		return e, err
	}
	e.OpenHour, err = parseIntEnv("WORKING_HOURS_START", defaultOpenHour)
	if err != nil {
		return e, err
	}
	e.CloseHour, err = parseIntEnv("WORKING_HOURS_END", defaultCloseHour)
	if err != nil {
		return e, err
	}
	e.MinDuration, err = parseDurationEnv("BOOKING_MIN", defaultBookingMin)
	if err != nil {
		return e, err
	}
	e.MaxDuration, err = parseDurationEnv("BOOKING_MAX", defaultBookingMax)
	if err != nil {
		return e, err
	}
	e.Buffer, err = parseDurationEnv("BOOKING_BUFFER", defaultBookingBuffer)
	if err != nil {
		return e, err
	}
	e.AllotTableDirectly = parseBoolEnv("ALLOT_TABLE_DIRECTLY", defaultAllotDirectly)
	e.Overlap = parseOverlapMode(getEnv("OVERLAP_MODE", defaultOverlapMode))

	tz := strings.TrimSpace(getEnv("TIMEZONE", defaultTimezone))
	e.Location, err = time.LoadLocation(tz)
	if err != nil {
		return e, fmt.Errorf("invalid TIMEZONE value %q: %w", tz, err)
	}

	return e, e.Validate()
}

func validateConfig(cfg *Config) error {
	if cfg.HTTPAddr == "" {
		return fmt.Errorf("HTTP_ADDR must not be empty")
	}
	if cfg.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL must not be empty")
	}
	if cfg.JWTTTL <= 0 {
		return fmt.Errorf("JWT_TTL must be > 0")
	}
	if cfg.ExpireSweepSpec == "" {
		return fmt.Errorf("EXPIRE_SWEEP_SPEC must not be empty")
	}
	if isProdLike(cfg.AppEnv) && isEmptyOrDefault(cfg.JWTSecret, defaultJWTSecret) {
		return fmt.Errorf("in prod/release JWT_SECRET must be set and not default")
	}
	return nil
}

// IsProd reports whether APP_ENV names a production-like environment.
func (c *Config) IsProd() bool {
	return isProdLike(c.AppEnv)
}

func isProdLike(env string) bool {
	env = strings.ToLower(strings.TrimSpace(env))
	return env == "prod" || env == "production" || env == "release"
}

func isEmptyOrDefault(v, def string) bool {
	trimmed := strings.TrimSpace(v)
	return trimmed == "" || trimmed == def
}

func parseDurationEnv(name, fallback string) (time.Duration, error) {
	value := strings.TrimSpace(getEnv(name, fallback))
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", name, value, err)
	}
	return d, nil
}

func parseFloatEnv(name, fallback string) (float64, error) {
	value := strings.TrimSpace(getEnv(name, fallback))
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", name, value, err)
	}
	return f, nil
}

func parseIntEnv(name, fallback string) (int, error) {
	value := strings.TrimSpace(getEnv(name, fallback))
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", name, value, err)
	}
	return n, nil
}

func parseBoolEnv(name, fallback string) bool {
	value := strings.ToLower(strings.TrimSpace(getEnv(name, fallback)))
	return value == "1" || value == "true" || value == "yes" || value == "on"
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func getEnv(name, fallback string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return fallback
}
