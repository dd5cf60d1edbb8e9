package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/biglesias-tp2023/tphub-claudecode-sub007/internal/core/domain"
)

// Config is loaded from the environment. Alert secrets are optional at load time:
// handlers report missing configuration per request instead of refusing to start.
type Config struct {
	AppEnv   string `env:"APP_ENV" envDefault:"local"`
	HTTPPort int    `env:"HTTP_PORT" envDefault:"8080"`

	DatabaseConfig
	Identity IdentityConfig
	Slack    SlackConfig
	Email    EmailConfig
	Alerts   AlertConfig
}

func Load() (*Config, error) {
	_ = godotenv.Load() //nolint:errcheck // .env file is optional, error is expected when not present

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing environment config: %w", err)
	}

	applyIdentityAliases(cfg)
	applyPortAliases(cfg)

	return cfg, nil
}

// CategoryThresholds returns the scoring thresholds derived from config.
func (c *Config) CategoryThresholds() domain.CategoryThresholds {
	return domain.CategoryThresholds{
		Orders:  c.Alerts.OrderThreshold,
		Reviews: c.Alerts.ReviewThreshold,
		Ads:     c.Alerts.AdsROASThreshold,
		Promos:  c.Alerts.PromosThreshold,
	}
}

// QueryThresholds returns the thresholds passed to the anomaly queries.
func (c *Config) QueryThresholds() domain.Thresholds {
	return c.CategoryThresholds().Query()
}

// The dashboard frontend ships the identity provider settings under its build-tool prefixes.
func applyIdentityAliases(cfg *Config) {
	if !hasEnv("SUPABASE_URL") {
		setStringFromEnv("VITE_SUPABASE_URL", &cfg.Identity.URL)
	}

	if !hasEnv("SUPABASE_URL") && cfg.Identity.URL == "" {
		setStringFromEnv("NEXT_PUBLIC_SUPABASE_URL", &cfg.Identity.URL)
	}

	if !hasEnv("SUPABASE_ANON_KEY") {
		setStringFromEnv("VITE_SUPABASE_ANON_KEY", &cfg.Identity.AnonKey)
	}

	cfg.Identity.URL = strings.TrimSuffix(cfg.Identity.URL, "/")
}

func applyPortAliases(cfg *Config) {
	if !hasEnv("HTTP_PORT") {
		setIntFromEnv("PORT", &cfg.HTTPPort)
	}
}

func hasEnv(key string) bool {
	_, ok := os.LookupEnv(key)
	return ok
}

func setStringFromEnv(key string, target *string) {
	val, ok := os.LookupEnv(key)
	if !ok {
		return
	}

	val = strings.TrimSpace(val)
	if val == "" {
		return
	}

	*target = val
}

func setIntFromEnv(key string, target *int) {
	val, ok := os.LookupEnv(key)
	if !ok {
		return
	}

	parsed, err := strconv.Atoi(strings.TrimSpace(val))
	if err != nil {
		return
	}

	*target = parsed
}
