package config

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/viper"

	"github.com/thevickypedia/fbgate/internal/domain/profile"
)

// userProfileKeys are the per-profile env keys read out of each "*user*.env"
// file, per spec.md §6 "User-profile env files follow *user*.env pattern".
var userProfileKeys = []string{
	"username", "password", "admin",
	"scope", "locale", "lock_password", "view_mode", "single_click",
	"hide_dotfiles", "date_format",
}

// LoadProfiles scans secretsDir for files matching "*user*.env" and parses
// each into a profile.UserProfile. Files are processed in sorted order so
// that id assignment in users.json is deterministic across runs.
func LoadProfiles(secretsDir string) ([]profile.UserProfile, error) {
	matches, err := filepath.Glob(filepath.Join(secretsDir, "*user*.env"))
	if err != nil {
		return nil, fmt.Errorf("glob user profile files in %q: %w", secretsDir, err)
	}
	sort.Strings(matches)

	profiles := make([]profile.UserProfile, 0, len(matches))
	for _, path := range matches {
		p, err := loadOneProfile(path)
		if err != nil {
			return nil, fmt.Errorf("load user profile %q: %w", path, err)
		}
		if err := profile.ValidateComplexity(p.Authentication.Password); err != nil {
			return nil, fmt.Errorf("user profile %q: %w", path, err)
		}
		profiles = append(profiles, p)
	}
	return profiles, nil
}

func loadOneProfile(path string) (profile.UserProfile, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("env")
	if err := v.ReadInConfig(); err != nil {
		return profile.UserProfile{}, fmt.Errorf("read: %w", err)
	}
	for _, key := range userProfileKeys {
		_ = v.BindEnv(key, strings.ToUpper(key))
	}

	p := profile.UserProfile{
		Authentication: profile.Authentication{
			Username: v.GetString("username"),
			Password: v.GetString("password"),
			Admin:    v.GetBool("admin"),
		},
		Scope:        v.GetString("scope"),
		Locale:       v.GetString("locale"),
		LockPassword: v.GetBool("lock_password"),
		ViewMode:     v.GetString("view_mode"),
		SingleClick:  v.GetBool("single_click"),
		HideDotfiles: v.GetBool("hide_dotfiles"),
		DateFormat:   v.GetBool("date_format"),
	}
	if p.Authentication.Username == "" {
		return profile.UserProfile{}, fmt.Errorf("username is required")
	}
	return p, nil
}
