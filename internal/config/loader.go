package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// envKeys are every EnvConfig field viper will look up. rate_limit is a
// JSON array and is decoded separately, since viper's own array support
// does not cover arrays of objects coming from a flat environment variable.
var envKeys = []string{
	"host", "port", "workers", "debug",
	"origins", "database",
	"allow_public_ip", "allow_private_ip", "origin_refresh",
	"unsupported_browsers",
	"error_page", "warn_page",
}

// LoadEnvConfig builds Viper from the process environment plus an optional
// ".proxy.env" dotenv file, applies defaults, normalizes origins, and
// validates the result.
func LoadEnvConfig(envFile string) (*EnvConfig, error) {
	v := viper.New()
	v.SetConfigType("env")
	if envFile != "" {
		if _, err := os.Stat(envFile); err == nil {
			v.SetConfigFile(envFile)
			if err := v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("failed to read env file %q: %w", envFile, err)
			}
		} else if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to stat env file %q: %w", envFile, err)
		}
	}
	v.AutomaticEnv()
	for _, key := range envKeys {
		_ = v.BindEnv(key, strings.ToUpper(key))
	}

	cfg := &EnvConfig{
		Host:                v.GetString("host"),
		Port:                v.GetInt("port"),
		Workers:             v.GetInt("workers"),
		Debug:               v.GetBool("debug"),
		Origins:             splitCommaList(v.GetStringSlice("origins")),
		Database:            v.GetString("database"),
		AllowPublicIP:       v.GetBool("allow_public_ip"),
		AllowPrivateIP:      v.GetBool("allow_private_ip"),
		OriginRefresh:       v.GetInt("origin_refresh"),
		UnsupportedBrowsers: v.GetStringSlice("unsupported_browsers"),
		ErrorPage:           v.GetString("error_page"),
		WarnPage:            v.GetString("warn_page"),
	}

	if raw := v.GetString("rate_limit"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &cfg.RateLimit); err != nil {
			return nil, fmt.Errorf("failed to parse rate_limit: %w", err)
		}
	}

	cfg.SetDefaults()
	cfg.Normalize()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// splitCommaList splits each entry on commas, so a list may be given as
// "a,b" as well as whitespace-separated, and drops empty parts.
func splitCommaList(values []string) []string {
	var out []string
	for _, value := range values {
		for _, part := range strings.Split(value, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
