// Package serverconfig models the three nested records the supervisor
// writes to the child's config.json: server, settings, auther.
package serverconfig

import (
	"fmt"
	"os"
)

// Branding configures the child's custom branding (env prefix "branding_").
type Branding struct {
	Name                  string `json:"name" yaml:"name" mapstructure:"name"`
	DisableExternal       bool   `json:"disableExternal" yaml:"disableExternal" mapstructure:"disable_external"`
	DisableUsedPercentage bool   `json:"disableUsedPercentage" yaml:"disableUsedPercentage" mapstructure:"disable_used_percentage"`
	Files                 string `json:"files" yaml:"files" mapstructure:"files"`
	Theme                 string `json:"theme" yaml:"theme" mapstructure:"theme" validate:"omitempty,oneof=light dark"`
	Color                 string `json:"color" yaml:"color" mapstructure:"color"`
}

// Tus configures chunked-upload behavior (env prefix "tus_").
type Tus struct {
	ChunkSize  int `json:"chunkSize" yaml:"chunkSize" mapstructure:"chunk_size" validate:"omitempty,gt=0"`
	RetryCount int `json:"retryCount" yaml:"retryCount" mapstructure:"retry_count" validate:"omitempty,gt=0"`
}

// DefaultTus mirrors the child's own built-in defaults.
func DefaultTus() Tus { return Tus{ChunkSize: 10 * 1024 * 1024, RetryCount: 5} }

// Defaults configures the baseline profile settings applied to new users
// (env prefix "defaults_").
type Defaults struct {
	Scope        string   `json:"scope" yaml:"scope" mapstructure:"scope"`
	Locale       string   `json:"locale" yaml:"locale" mapstructure:"locale"`
	ViewMode     string   `json:"viewMode" yaml:"viewMode" mapstructure:"view_mode" validate:"omitempty,oneof=list mosaic gallery"`
	SingleClick  bool     `json:"singleClick" yaml:"singleClick" mapstructure:"single_click"`
	Commands     []string `json:"commands" yaml:"commands" mapstructure:"commands"`
	HideDotfiles bool     `json:"hideDotfiles" yaml:"hideDotfiles" mapstructure:"hide_dotfiles"`
	DateFormat   bool     `json:"dateFormat" yaml:"dateFormat" mapstructure:"date_format"`
}

// DefaultDefaults returns the child's baseline defaults section.
func DefaultDefaults() Defaults {
	return Defaults{Scope: ".", Locale: "en", ViewMode: "list", HideDotfiles: true}
}

// Commands configures pre/post command hooks (env prefix "commands_").
type Commands struct {
	AfterCopy    []string `json:"after_copy" yaml:"after_copy" mapstructure:"after_copy"`
	AfterDelete  []string `json:"after_delete" yaml:"after_delete" mapstructure:"after_delete"`
	AfterRename  []string `json:"after_rename" yaml:"after_rename" mapstructure:"after_rename"`
	AfterSave    []string `json:"after_save" yaml:"after_save" mapstructure:"after_save"`
	AfterUpload  []string `json:"after_upload" yaml:"after_upload" mapstructure:"after_upload"`
	BeforeCopy   []string `json:"before_copy" yaml:"before_copy" mapstructure:"before_copy"`
	BeforeDelete []string `json:"before_delete" yaml:"before_delete" mapstructure:"before_delete"`
	BeforeRename []string `json:"before_rename" yaml:"before_rename" mapstructure:"before_rename"`
	BeforeSave   []string `json:"before_save" yaml:"before_save" mapstructure:"before_save"`
	BeforeUpload []string `json:"before_upload" yaml:"before_upload" mapstructure:"before_upload"`
}

// ReCAPTCHA configures an optional reCAPTCHA challenge on login.
type ReCAPTCHA struct {
	Host   string `json:"host" yaml:"host" mapstructure:"host" validate:"omitempty,url"`
	Key    string `json:"key" yaml:"key" mapstructure:"key"`
	Secret string `json:"secret" yaml:"secret" mapstructure:"secret"`
}

// Server is the `server` top-level config.json section: bind address,
// root directory, TLS material, and feature toggles.
type Server struct {
	Root                  string `json:"root" yaml:"root" mapstructure:"root" validate:"required"`
	BaseURL               string `json:"baseURL" yaml:"baseURL" mapstructure:"base_url"`
	Socket                string `json:"socket" yaml:"socket" mapstructure:"socket"`
	TLSKey                string `json:"tlsKey" yaml:"tlsKey" mapstructure:"tls_key"`
	TLSCert               string `json:"tlsCert" yaml:"tlsCert" mapstructure:"tls_cert"`
	Port                  int    `json:"port" yaml:"port" mapstructure:"port" validate:"required,gt=0"`
	Address               string `json:"address" yaml:"address" mapstructure:"address"`
	Log                   string `json:"log" yaml:"log" mapstructure:"log" validate:"omitempty,oneof=stdout file"`
	EnableThumbnails      bool   `json:"enableThumbnails" yaml:"enableThumbnails" mapstructure:"enable_thumbnails"`
	ResizePreview         bool   `json:"resizePreview" yaml:"resizePreview" mapstructure:"resize_preview"`
	EnableExec            bool   `json:"enableExec" yaml:"enableExec" mapstructure:"enable_exec"`
	TypeDetectionByHeader bool   `json:"typeDetectionByHeader" yaml:"typeDetectionByHeader" mapstructure:"type_detection_by_header"`
	AuthHook              string `json:"authHook" yaml:"authHook" mapstructure:"auth_hook"`
	TokenExpirationTime   string `json:"tokenExpirationTime" yaml:"tokenExpirationTime" mapstructure:"token_expiration_time"`
}

// Settings is the `settings` top-level config.json section (historically
// named "config" in the child's own schema; spec.md names it "settings").
type Settings struct {
	Signup           bool      `json:"signup" yaml:"signup" mapstructure:"signup"`
	CreateUserDir    bool      `json:"createUserDir" yaml:"createUserDir" mapstructure:"create_user_dir"`
	UserHomeBasePath string    `json:"userHomeBasePath" yaml:"userHomeBasePath" mapstructure:"user_home_base_path"`
	Defaults         Defaults  `json:"defaults" yaml:"defaults" mapstructure:"defaults"`
	AuthMethod       string    `json:"authMethod" yaml:"authMethod" mapstructure:"auth_method"`
	AuthHeader       string    `json:"authHeader" yaml:"authHeader" mapstructure:"auth_header"`
	Branding         Branding  `json:"branding" yaml:"branding" mapstructure:"branding"`
	Tus              Tus       `json:"tus" yaml:"tus" mapstructure:"tus"`
	Commands         Commands  `json:"commands" yaml:"commands" mapstructure:"commands"`
	Shell_           []string  `json:"shell_" yaml:"shell_" mapstructure:"shell"`
	Rules            []string  `json:"rules" yaml:"rules" mapstructure:"rules"`
}

// Auther is the `auther` top-level config.json section (env prefix "auth_").
type Auther struct {
	Recaptcha *ReCAPTCHA `json:"recaptcha,omitempty" yaml:"recaptcha,omitempty" mapstructure:"recaptcha"`
}

// ConfigSettings wraps the three sections into the JSON object written to
// <settings_dir>/config.json.
type ConfigSettings struct {
	Settings Settings `json:"settings" mapstructure:"settings"`
	Server   Server   `json:"server" mapstructure:"server"`
	Auther   Auther   `json:"auther" mapstructure:"auther"`
}

// ApplyDefaults fills unset fields with the child's own baseline defaults.
func (c *ConfigSettings) ApplyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.Address == "" {
		c.Server.Address = "127.0.0.1"
	}
	if c.Server.Log == "" {
		c.Server.Log = "stdout"
	}
	if c.Settings.AuthMethod == "" {
		c.Settings.AuthMethod = "json"
	}
	if c.Settings.Defaults.Scope == "" {
		c.Settings.Defaults = DefaultDefaults()
	}
	if c.Settings.Tus.ChunkSize == 0 {
		c.Settings.Tus = DefaultTus()
	}
}

// ForceProxyMode applies the invariant required when the supervisor runs
// the hardening proxy in front of the child: the child must trust the
// proxy's rewritten Authorization header unconditionally.
func (c *ConfigSettings) ForceProxyMode() {
	c.Settings.AuthMethod = "json"
	c.Settings.AuthHeader = ""
}

// Validate checks the cross-field invariants spec.md requires beyond
// simple struct tags: a positive port, and a resolvable user-home base
// path when createUserDir is enabled.
func (c *ConfigSettings) Validate() error {
	if c.Server.Port <= 0 {
		return fmt.Errorf("server.port must be a positive integer, got %d", c.Server.Port)
	}
	if c.Settings.CreateUserDir {
		if c.Settings.UserHomeBasePath == "" {
			return fmt.Errorf("settings.userHomeBasePath is required when createUserDir is true")
		}
		info, err := os.Stat(c.Settings.UserHomeBasePath)
		if err != nil {
			return fmt.Errorf("settings.userHomeBasePath %q: %w", c.Settings.UserHomeBasePath, err)
		}
		if !info.IsDir() {
			return fmt.Errorf("settings.userHomeBasePath %q is not a directory", c.Settings.UserHomeBasePath)
		}
	}
	return nil
}
