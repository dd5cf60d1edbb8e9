package config

import "time"

// DatabaseConfig holds database connection settings.
// An empty PostgresDSN leaves the anomaly data source unconfigured.
type DatabaseConfig struct {
	PostgresDSN       string        `env:"POSTGRES_DSN"`
	MaxConnections    int32         `env:"DB_MAX_CONNECTIONS" envDefault:"10"`
	MinConnections    int32         `env:"DB_MIN_CONNECTIONS" envDefault:"1"`
	MaxConnIdleTime   time.Duration `env:"DB_MAX_CONN_IDLE_TIME" envDefault:"30m"`
	MaxConnLifetime   time.Duration `env:"DB_MAX_CONN_LIFETIME" envDefault:"1h"`
	HealthCheckPeriod time.Duration `env:"DB_HEALTH_CHECK_PERIOD" envDefault:"1m"`
	Migrate           bool          `env:"DB_MIGRATE" envDefault:"true"`
}

// IdentityConfig holds identity provider settings used to verify session tokens.
type IdentityConfig struct {
	URL            string        `env:"SUPABASE_URL"`
	AnonKey        string        `env:"SUPABASE_ANON_KEY"`
	ServiceRoleKey string        `env:"SUPABASE_SERVICE_ROLE_KEY"`
	Timeout        time.Duration `env:"SUPABASE_TIMEOUT" envDefault:"10s"`
}

// Configured reports whether tokens can be verified.
func (c IdentityConfig) Configured() bool {
	return c.URL != "" && c.APIKey() != ""
}

// APIKey returns the key sent as the apikey header. The public key wins.
func (c IdentityConfig) APIKey() string {
	if c.AnonKey != "" {
		return c.AnonKey
	}

	return c.ServiceRoleKey
}

// SlackConfig holds Slack incoming webhook settings.
type SlackConfig struct {
	WebhookURL string        `env:"SLACK_WEBHOOK_URL"`
	Timeout    time.Duration `env:"SLACK_TIMEOUT" envDefault:"10s"`
}

// EmailConfig holds Resend settings for the email channel.
type EmailConfig struct {
	ResendAPIKey string `env:"RESEND_API_KEY"`
	From         string `env:"ALERT_EMAIL_FROM"`
	FromName     string `env:"ALERT_EMAIL_FROM_NAME" envDefault:"TPHub Alertas"`
}

// AlertConfig holds thresholds and scheduling for the alert pipeline.
type AlertConfig struct {
	CronSecret           string  `env:"CRON_SECRET"`
	OrderThreshold       float64 `env:"ALERT_THRESHOLD" envDefault:"-20"`
	ReviewThreshold      float64 `env:"ALERT_REVIEW_THRESHOLD" envDefault:"4.0"`
	AdsROASThreshold     float64 `env:"ALERT_ADS_ROAS_THRESHOLD" envDefault:"3.0"`
	PromosThreshold      float64 `env:"ALERT_PROMOS_THRESHOLD" envDefault:"15"`
	AllowedEmailDomain   string  `env:"ALERT_ALLOWED_EMAIL_DOMAIN" envDefault:"@thinkpaladar.com"`
	Timezone             string  `env:"ALERT_TIMEZONE" envDefault:"Europe/Madrid"`
	DailyHour            int     `env:"ALERT_DAILY_HOUR" envDefault:"8"`
	DispatchRPS          float64 `env:"ALERT_DISPATCH_RPS" envDefault:"1"`
	DashboardURL         string  `env:"ALERT_DASHBOARD_URL"`
	SchedulerPollSeconds int     `env:"ALERT_SCHEDULER_POLL_SECONDS" envDefault:"60"`
}
