package config

import (
	"os"
	"testing"
)

// Test environment variable keys.
const (
	testEnvSupabaseURL     = "SUPABASE_URL"
	testEnvViteSupabaseURL = "VITE_SUPABASE_URL"
	testEnvAlertThreshold  = "ALERT_THRESHOLD"
	testEnvCronSecret      = "CRON_SECRET"
	testEnvPort            = "PORT"
	testEnvHTTPPort        = "HTTP_PORT"
)

const testErrLoad = "Load() error = %v"

func TestLoad_Defaults(t *testing.T) {
	os.Unsetenv(testEnvAlertThreshold)
	os.Unsetenv(testEnvCronSecret)

	cfg, err := Load()
	if err != nil {
		t.Fatalf(testErrLoad, err)
	}

	if cfg.AppEnv == "" {
		t.Error("AppEnv should have a default")
	}

	if cfg.Alerts.OrderThreshold != -20 {
		t.Errorf("OrderThreshold = %v, want -20", cfg.Alerts.OrderThreshold)
	}

	if cfg.Alerts.AllowedEmailDomain != "@thinkpaladar.com" {
		t.Errorf("AllowedEmailDomain = %q", cfg.Alerts.AllowedEmailDomain)
	}

	if cfg.Alerts.CronSecret != "" {
		t.Errorf("CronSecret = %q, want empty", cfg.Alerts.CronSecret)
	}
}

func TestLoad_ThresholdOverride(t *testing.T) {
	t.Setenv(testEnvAlertThreshold, "-35")

	cfg, err := Load()
	if err != nil {
		t.Fatalf(testErrLoad, err)
	}

	if cfg.Alerts.OrderThreshold != -35 {
		t.Errorf("OrderThreshold = %v, want -35", cfg.Alerts.OrderThreshold)
	}

	if got := cfg.QueryThresholds().OrderDeviationPct; got != -35 {
		t.Errorf("QueryThresholds().OrderDeviationPct = %v, want -35", got)
	}

	if got := cfg.CategoryThresholds().Orders; got != -35 {
		t.Errorf("CategoryThresholds().Orders = %v, want -35", got)
	}
}

func TestLoad_InvalidThreshold(t *testing.T) {
	t.Setenv(testEnvAlertThreshold, "not-a-number")

	if _, err := Load(); err == nil {
		t.Error("expected error for invalid ALERT_THRESHOLD")
	}
}

func TestLoad_IdentityAliases(t *testing.T) {
	t.Run("vite alias used when primary missing", func(t *testing.T) {
		os.Unsetenv(testEnvSupabaseURL)
		t.Setenv(testEnvViteSupabaseURL, "https://abc.supabase.co/")

		cfg, err := Load()
		if err != nil {
			t.Fatalf(testErrLoad, err)
		}

		if cfg.Identity.URL != "https://abc.supabase.co" {
			t.Errorf("Identity.URL = %q", cfg.Identity.URL)
		}
	})

	t.Run("primary wins over alias", func(t *testing.T) {
		t.Setenv(testEnvSupabaseURL, "https://primary.supabase.co")
		t.Setenv(testEnvViteSupabaseURL, "https://alias.supabase.co")

		cfg, err := Load()
		if err != nil {
			t.Fatalf(testErrLoad, err)
		}

		if cfg.Identity.URL != "https://primary.supabase.co" {
			t.Errorf("Identity.URL = %q", cfg.Identity.URL)
		}
	})
}

func TestLoad_PortAlias(t *testing.T) {
	os.Unsetenv(testEnvHTTPPort)
	t.Setenv(testEnvPort, "3000")

	cfg, err := Load()
	if err != nil {
		t.Fatalf(testErrLoad, err)
	}

	if cfg.HTTPPort != 3000 {
		t.Errorf("HTTPPort = %d, want 3000", cfg.HTTPPort)
	}

	t.Setenv(testEnvHTTPPort, "9090")

	cfg, err = Load()
	if err != nil {
		t.Fatalf(testErrLoad, err)
	}

	if cfg.HTTPPort != 9090 {
		t.Errorf("HTTPPort = %d, want 9090", cfg.HTTPPort)
	}
}

func TestIdentityConfig_Configured(t *testing.T) {
	tests := []struct {
		name string
		cfg  IdentityConfig
		want bool
	}{
		{name: "empty", cfg: IdentityConfig{}, want: false},
		{name: "url only", cfg: IdentityConfig{URL: "https://x"}, want: false},
		{name: "url and anon key", cfg: IdentityConfig{URL: "https://x", AnonKey: "k"}, want: true},
		{name: "url and service key", cfg: IdentityConfig{URL: "https://x", ServiceRoleKey: "s"}, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.cfg.Configured(); got != tt.want {
				t.Errorf("Configured() = %v, want %v", got, tt.want)
			}
		})
	}
}
