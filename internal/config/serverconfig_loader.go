package config

import (
	"strings"

	"github.com/spf13/viper"

	"github.com/thevickypedia/fbgate/internal/domain/serverconfig"
)

// serverKeys are the root/server-section keys (no prefix), per spec.md §6
// "server/root" having no env-var prefix.
var serverKeys = []string{
	"root", "base_url", "socket", "tls_key", "tls_cert", "port", "address",
	"log", "enable_thumbnails", "resize_preview", "enable_exec",
	"type_detection_by_header", "auth_hook", "token_expiration_time",
}

// settingsKeys are the top-level settings-section keys (no prefix).
var settingsKeys = []string{
	"signup", "create_user_dir", "user_home_base_path", "auth_method", "auth_header",
}

var brandingKeys = []string{"name", "disable_external", "disable_used_percentage", "files", "theme", "color"}
var tusKeys = []string{"chunk_size", "retry_count"}
var defaultsKeys = []string{"scope", "locale", "view_mode", "single_click", "hide_dotfiles", "date_format"}
var authKeys = []string{"host", "key", "secret"}

// LoadServerConfig builds a serverconfig.ConfigSettings from the process
// environment, following the prefix convention in spec.md §6: "branding_",
// "tus_", "defaults_", "commands_", "auth_", and no prefix for server/root.
func LoadServerConfig() (*serverconfig.ConfigSettings, error) {
	v := viper.New()
	v.AutomaticEnv()
	bindAll(v, "", serverKeys)
	bindAll(v, "", settingsKeys)
	bindAll(v, "branding_", brandingKeys)
	bindAll(v, "tus_", tusKeys)
	bindAll(v, "defaults_", defaultsKeys)
	bindAll(v, "auth_", authKeys)

	cfg := &serverconfig.ConfigSettings{
		Server: serverconfig.Server{
			Root:                  v.GetString("root"),
			BaseURL:               v.GetString("base_url"),
			Socket:                v.GetString("socket"),
			TLSKey:                v.GetString("tls_key"),
			TLSCert:               v.GetString("tls_cert"),
			Port:                  v.GetInt("port"),
			Address:               v.GetString("address"),
			Log:                   v.GetString("log"),
			EnableThumbnails:      v.GetBool("enable_thumbnails"),
			ResizePreview:         v.GetBool("resize_preview"),
			EnableExec:            v.GetBool("enable_exec"),
			TypeDetectionByHeader: v.GetBool("type_detection_by_header"),
			AuthHook:              v.GetString("auth_hook"),
			TokenExpirationTime:   v.GetString("token_expiration_time"),
		},
		Settings: serverconfig.Settings{
			Signup:           v.GetBool("signup"),
			CreateUserDir:    v.GetBool("create_user_dir"),
			UserHomeBasePath: v.GetString("user_home_base_path"),
			AuthMethod:       v.GetString("auth_method"),
			AuthHeader:       v.GetString("auth_header"),
			Branding: serverconfig.Branding{
				Name:                  v.GetString("branding_name"),
				DisableExternal:       v.GetBool("branding_disable_external"),
				DisableUsedPercentage: v.GetBool("branding_disable_used_percentage"),
				Files:                 v.GetString("branding_files"),
				Theme:                 v.GetString("branding_theme"),
				Color:                 v.GetString("branding_color"),
			},
			Tus: serverconfig.Tus{
				ChunkSize:  v.GetInt("tus_chunk_size"),
				RetryCount: v.GetInt("tus_retry_count"),
			},
			Defaults: serverconfig.Defaults{
				Scope:        v.GetString("defaults_scope"),
				Locale:       v.GetString("defaults_locale"),
				ViewMode:     v.GetString("defaults_view_mode"),
				SingleClick:  v.GetBool("defaults_single_click"),
				HideDotfiles: v.GetBool("defaults_hide_dotfiles"),
				DateFormat:   v.GetBool("defaults_date_format"),
			},
		},
	}

	if v.GetString("auth_host") != "" || v.GetString("auth_key") != "" || v.GetString("auth_secret") != "" {
		cfg.Auther.Recaptcha = &serverconfig.ReCAPTCHA{
			Host:   v.GetString("auth_host"),
			Key:    v.GetString("auth_key"),
			Secret: v.GetString("auth_secret"),
		}
	}

	return cfg, nil
}

func bindAll(v *viper.Viper, prefix string, keys []string) {
	for _, key := range keys {
		full := prefix + key
		_ = v.BindEnv(full, strings.ToUpper(full))
	}
}
