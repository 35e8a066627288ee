// Package config provides the proxy's immutable environment configuration.
//
// EnvConfig is loaded once at startup from the process environment and an
// optional ".proxy.env" file, validated, and never mutated afterward. The
// live, mutable counterpart is internal/domain/session.Session.
package config

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/thevickypedia/fbgate/internal/domain/ratelimit"
)

// EnvConfig is the proxy's environment-driven configuration, per spec.md §4.2
// and §6.
type EnvConfig struct {
	Host    string `mapstructure:"host" validate:"required"`
	Port    int    `mapstructure:"port" validate:"required,gt=0"`
	Workers int    `mapstructure:"workers" validate:"omitempty,gt=0"`
	Debug   bool   `mapstructure:"debug"`

	Origins  []string `mapstructure:"origins"`
	Database string   `mapstructure:"database" validate:"required"`

	AllowPublicIP  bool `mapstructure:"allow_public_ip"`
	AllowPrivateIP bool `mapstructure:"allow_private_ip"`
	OriginRefresh  int  `mapstructure:"origin_refresh"`

	RateLimit []ratelimit.Rule `mapstructure:"rate_limit"`

	UnsupportedBrowsers []string `mapstructure:"unsupported_browsers"`

	ErrorPage string `mapstructure:"error_page" validate:"required"`
	WarnPage  string `mapstructure:"warn_page" validate:"required"`
}

// browserNamePattern rejects punctuation and whitespace in a configured
// unsupported-browser entry, per spec.md §4.2.
var browserNamePattern = regexp.MustCompile(`^[A-Za-z ]+$`)

// SetDefaults fills in the zero-value fields of an EnvConfig with the
// proxy's defaults.
func (c *EnvConfig) SetDefaults() {
	if c.Host == "" {
		c.Host = "127.0.0.1"
	}
	if c.Port == 0 {
		c.Port = 8000
	}
	if c.Workers == 0 {
		c.Workers = 1
	}
	if c.Database == "" {
		c.Database = "auth_errors.db"
	}
	if c.ErrorPage == "" {
		c.ErrorPage = "error.html"
	}
	if c.WarnPage == "" {
		c.WarnPage = "warn.html"
	}
}

// Normalize strips each static origin down to its bare host component and
// de-duplicates the list, per spec.md §4.2 and the §8 invariant that
// allowed_origins entries are never a scheme, port, or path.
func (c *EnvConfig) Normalize() {
	c.Origins = normalizeOrigins(c.Origins)
}

func normalizeOrigins(raw []string) []string {
	seen := make(map[string]struct{}, len(raw))
	out := make([]string, 0, len(raw))
	for _, origin := range raw {
		host := hostOnly(strings.TrimSpace(origin))
		if host == "" {
			continue
		}
		if _, ok := seen[host]; ok {
			continue
		}
		seen[host] = struct{}{}
		out = append(out, host)
	}
	return out
}

// hostOnly strips a scheme, port, and path from a raw origin entry, e.g.
// "https://example.com:8080/path" -> "example.com".
func hostOnly(origin string) string {
	if origin == "" {
		return ""
	}
	candidate := origin
	if !strings.Contains(candidate, "://") {
		candidate = "http://" + candidate
	}
	u, err := url.Parse(candidate)
	if err != nil || u.Hostname() == "" {
		return ""
	}
	return u.Hostname()
}
