package config

import (
	"testing"

	"github.com/thevickypedia/fbgate/internal/domain/ratelimit"
)

func minimalValidConfig() *EnvConfig {
	cfg := &EnvConfig{
		Database:  "auth_errors.db",
		ErrorPage: "error.html",
		WarnPage:  "warn.html",
	}
	cfg.SetDefaults()
	return cfg
}

func TestValidateValidConfig(t *testing.T) {
	cfg := minimalValidConfig()
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() unexpected error: %v", err)
	}
}

func TestValidateRejectsNonPositivePort(t *testing.T) {
	cfg := minimalValidConfig()
	cfg.Port = 0
	if err := cfg.Validate(); err == nil {
		t.Error("expected validation error for zero port")
	}
}

func TestValidateRejectsPunctuationInBrowserName(t *testing.T) {
	cfg := minimalValidConfig()
	cfg.UnsupportedBrowsers = []string{"Internet Explorer 6!"}
	if err := cfg.Validate(); err == nil {
		t.Error("expected validation error for punctuation in browser name")
	}
}

func TestValidateAcceptsPlainBrowserName(t *testing.T) {
	cfg := minimalValidConfig()
	cfg.UnsupportedBrowsers = []string{"Internet Explorer"}
	if err := cfg.Validate(); err != nil {
		t.Errorf("unexpected error for plain browser name: %v", err)
	}
}

func TestValidateRejectsNonPositiveRateLimitFields(t *testing.T) {
	cfg := minimalValidConfig()
	cfg.RateLimit = []ratelimit.Rule{{MaxRequests: 0, Seconds: 60}}
	if err := cfg.Validate(); err == nil {
		t.Error("expected validation error for zero max_requests")
	}
}

func TestValidateRejectsMissingDatabase(t *testing.T) {
	cfg := minimalValidConfig()
	cfg.Database = ""
	if err := cfg.Validate(); err == nil {
		t.Error("expected validation error for missing database path")
	}
}
